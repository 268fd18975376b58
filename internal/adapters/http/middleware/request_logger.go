package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"agency-rbac/internal/application"
	"agency-rbac/internal/ports"
)

func RequestLogger(logger ports.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			duration := time.Since(started)
			req := c.Request()
			ctx := req.Context()
			args := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"route_pattern", c.Path(),
				"status", c.Response().Status,
				"duration", duration.String(),
			}
			if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
				args = append(args, "request_id", id)
			}
			if actor, ok := application.ActorFromContext(ctx); ok {
				args = append(args, "actor_id", actor.ID)
			}
			if err != nil {
				args = append(args, "error", err)
			}
			logger.Info(ctx, "http request", args...)
			return nil
		}
	}
}
