package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"agency-rbac/internal/application"
	"agency-rbac/internal/config"
	"agency-rbac/internal/domain"
)

const (
	HeaderActorID    = "X-Actor-ID"
	HeaderActorEmail = "X-Actor-Email"

	// SystemActor acts for unauthenticated local requests without actor headers.
	SystemActor = "system"
)

// Authorizer answers permission checks for the operator making a request.
type Authorizer interface {
	IsAllowed(ctx context.Context, userID, permissionID string) (bool, error)
}

// ActorMiddleware resolves who is making the request and stores it on the
// request context. Cognito mode trusts only token claims; the other modes read
// the actor headers.
func ActorMiddleware(mode config.AuthMode) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			actor := domain.Actor{
				IPAddress: c.RealIP(),
				UserAgent: req.UserAgent(),
			}
			if mode == config.AuthCognito {
				actor.ID, _ = c.Get("user_id").(string)
				actor.Email, _ = c.Get("email").(string)
			} else {
				actor.ID = req.Header.Get(HeaderActorID)
				actor.Email = req.Header.Get(HeaderActorEmail)
				if actor.ID == "" && mode == config.AuthNone {
					actor.ID = SystemActor
				}
			}
			if actor.ID == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unable to identify actor"})
			}
			c.SetRequest(req.WithContext(application.WithActor(req.Context(), actor)))
			return next(c)
		}
	}
}

// RequirePermission rejects requests whose actor lacks permissionID.
func RequirePermission(authz Authorizer, permissionID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			actor, ok := application.ActorFromContext(ctx)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unable to identify actor"})
			}
			allowed, err := authz.IsAllowed(ctx, actor.ID, permissionID)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidInput) {
					return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
				}
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}
			if !allowed {
				return c.JSON(http.StatusForbidden, map[string]string{"error": domain.ErrPermissionDeny.Error()})
			}
			return next(c)
		}
	}
}
