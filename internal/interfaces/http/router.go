package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Middleware carries the cross-cutting handlers installed by NewMainRouter.
// Nil entries are skipped. RequireManage guards mutating routes and
// RequireAuditRead guards the audit views.
type Middleware struct {
	XRay             echo.MiddlewareFunc
	RequestLogger    echo.MiddlewareFunc
	Metrics          echo.MiddlewareFunc
	Auth             echo.MiddlewareFunc
	Actor            echo.MiddlewareFunc
	RequireManage    echo.MiddlewareFunc
	RequireAuditRead echo.MiddlewareFunc
}

type Handlers struct {
	Catalog       *CatalogHandler
	Roles         *RolesHandler
	Users         *UsersHandler
	Security      *SecurityHandler
	Audit         *AuditHandler
	Authorization *AuthorizationHandler
	Metrics       echo.HandlerFunc
}

func chain(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, mw := range mws {
		if mw != nil {
			out = append(out, mw)
		}
	}
	return out
}

func newEcho(m Middleware) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(chain(m.XRay, m.Metrics, m.RequestLogger)...)
	return e
}

func NewMainRouter(h Handlers, m Middleware) *echo.Echo {
	e := newEcho(m)
	e.GET("/healthz", Health)
	if h.Metrics != nil {
		e.GET("/metrics", h.Metrics)
	}

	read := chain(m.Auth, m.Actor)
	write := chain(m.Auth, m.Actor, m.RequireManage)
	audit := chain(m.Auth, m.Actor, m.RequireAuditRead)

	e.GET("/permissions", h.Catalog.List, read...)

	e.GET("/roles", h.Roles.List, read...)
	e.PUT("/roles/:role_id/permissions/:permission_id", h.Roles.SetPermission, write...)

	e.PUT("/users/:user_id", h.Users.Upsert, write...)
	e.GET("/users/:user_id", h.Users.Get, read...)
	e.PUT("/users/:user_id/role", h.Users.ChangeRole, write...)
	e.GET("/users/:user_id/permissions", h.Users.Permissions, read...)
	e.POST("/users/:user_id/permissions/:permission_id/toggle", h.Users.TogglePermission, write...)
	e.GET("/users/:user_id/effective-permissions", h.Users.EffectivePermissions, read...)

	e.GET("/users/:user_id/security", h.Security.Get, read...)
	e.PUT("/users/:user_id/security", h.Security.Update, write...)

	e.GET("/audit-logs", h.Audit.List, audit...)
	e.GET("/admin-activities", h.Audit.Activities, audit...)

	e.POST("/authorize", h.Authorization.Authorize, read...)
	return e
}
