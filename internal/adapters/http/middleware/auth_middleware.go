package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"agency-rbac/internal/config"
)

const HeaderAPIKey = "X-API-Key"

// AuthMiddleware authenticates requests according to mode. The cognito
// handler is required for cognito mode; apiKey is required for api_key mode.
func AuthMiddleware(mode config.AuthMode, apiKey string, cognito echo.MiddlewareFunc) (echo.MiddlewareFunc, error) {
	switch mode {
	case config.AuthNone:
	case config.AuthAPIKey:
		if apiKey == "" {
			return nil, errors.New("api key is required when AUTH_MODE=api_key")
		}
	case config.AuthCognito:
		if cognito == nil {
			return nil, errors.New("cognito middleware is required when AUTH_MODE=cognito")
		}
	default:
		return nil, errors.New("invalid auth mode")
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch mode {
			case config.AuthAPIKey:
				got := c.Request().Header.Get(HeaderAPIKey)
				if subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
				}
				return next(c)
			case config.AuthCognito:
				return cognito(next)(c)
			default:
				return next(c)
			}
		}
	}, nil
}
