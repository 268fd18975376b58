package http

import (
	"errors"
	stdhttp "net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"agency-rbac/internal/application"
	"agency-rbac/internal/domain"
)

func handleError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrPermissionDeny):
		return c.JSON(stdhttp.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(stdhttp.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrUnknownPermission), errors.Is(err, domain.ErrUnknownRole):
		return c.JSON(stdhttp.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		return c.JSON(stdhttp.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func invalidPayload(c echo.Context) error {
	return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
}

func unauthorized(c echo.Context) error {
	return c.JSON(stdhttp.StatusUnauthorized, map[string]string{"error": "unable to identify actor"})
}

func Health(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{"status": "ok"})
}

type CatalogHandler struct{ service *application.CatalogService }

func NewCatalogHandler(service *application.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) List(c echo.Context) error {
	permissions, err := h.service.ListPermissions(c.Request().Context())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, permissions)
}

type RolesHandler struct{ service *application.RoleService }

func NewRolesHandler(service *application.RoleService) *RolesHandler {
	return &RolesHandler{service: service}
}

func (h *RolesHandler) List(c echo.Context) error {
	roles, err := h.service.ListRoles(c.Request().Context())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, roles)
}

func (h *RolesHandler) SetPermission(c echo.Context) error {
	actor, ok := application.ActorFromContext(c.Request().Context())
	if !ok {
		return unauthorized(c)
	}
	var req struct {
		Granted *bool `json:"granted"`
	}
	if err := c.Bind(&req); err != nil || req.Granted == nil {
		return invalidPayload(c)
	}
	role, err := h.service.SetRolePermission(c.Request().Context(), actor, c.Param("role_id"), c.Param("permission_id"), *req.Granted)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, role)
}

type UsersHandler struct {
	users     *application.UserService
	roles     *application.RoleService
	overrides *application.OverrideService
	authz     *application.AuthorizationService
}

func NewUsersHandler(users *application.UserService, roles *application.RoleService, overrides *application.OverrideService, authz *application.AuthorizationService) *UsersHandler {
	return &UsersHandler{users: users, roles: roles, overrides: overrides, authz: authz}
}

func (h *UsersHandler) Upsert(c echo.Context) error {
	actor, ok := application.ActorFromContext(c.Request().Context())
	if !ok {
		return unauthorized(c)
	}
	var req struct {
		Email  string `json:"email"`
		RoleID string `json:"role_id"`
	}
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}
	user, err := h.users.Upsert(c.Request().Context(), actor, domain.User{ID: c.Param("user_id"), Email: req.Email, RoleID: req.RoleID})
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, user)
}

func (h *UsersHandler) Get(c echo.Context) error {
	user, err := h.users.Get(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, user)
}

func (h *UsersHandler) ChangeRole(c echo.Context) error {
	actor, ok := application.ActorFromContext(c.Request().Context())
	if !ok {
		return unauthorized(c)
	}
	var req struct {
		RoleID string `json:"role_id"`
	}
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}
	if err := h.roles.ChangeUserRole(c.Request().Context(), actor, c.Param("user_id"), req.RoleID); err != nil {
		return handleError(c, err)
	}
	return c.NoContent(stdhttp.StatusNoContent)
}

func (h *UsersHandler) Permissions(c echo.Context) error {
	permissions, err := h.overrides.GetUserPermissions(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, map[string]any{"user_id": c.Param("user_id"), "permissions": permissions})
}

func (h *UsersHandler) TogglePermission(c echo.Context) error {
	actor, ok := application.ActorFromContext(c.Request().Context())
	if !ok {
		return unauthorized(c)
	}
	granted, err := h.overrides.TogglePermission(c.Request().Context(), actor, c.Param("user_id"), c.Param("permission_id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, map[string]any{
		"user_id":       c.Param("user_id"),
		"permission_id": c.Param("permission_id"),
		"granted":       granted,
	})
}

func (h *UsersHandler) EffectivePermissions(c echo.Context) error {
	permissions, err := h.authz.EffectivePermissions(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, map[string]any{"user_id": c.Param("user_id"), "permissions": permissions})
}

type SecurityHandler struct{ service *application.SecurityService }

func NewSecurityHandler(service *application.SecurityService) *SecurityHandler {
	return &SecurityHandler{service: service}
}

func (h *SecurityHandler) Get(c echo.Context) error {
	controls, err := h.service.GetSecurityControls(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, controls)
}

func (h *SecurityHandler) Update(c echo.Context) error {
	actor, ok := application.ActorFromContext(c.Request().Context())
	if !ok {
		return unauthorized(c)
	}
	var req struct {
		ForceLogout          bool    `json:"force_logout"`
		RequirePasswordReset bool    `json:"require_password_reset"`
		Enable2FA            bool    `json:"enable_2fa"`
		AccessExpiration     *string `json:"access_expiration"`
		Status               string  `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}
	controls := domain.SecurityControls{
		ForceLogout:          req.ForceLogout,
		RequirePasswordReset: req.RequirePasswordReset,
		Enable2FA:            req.Enable2FA,
		Status:               domain.AccountStatus(req.Status),
	}
	if req.AccessExpiration != nil && *req.AccessExpiration != "" {
		exp, err := parseExpiration(*req.AccessExpiration)
		if err != nil {
			return invalidPayload(c)
		}
		controls.AccessExpiration = &exp
	}
	if err := h.service.UpdateSecurityControls(c.Request().Context(), actor, c.Param("user_id"), controls); err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, controls)
}

// parseExpiration accepts an RFC 3339 timestamp or a bare date.
func parseExpiration(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}

type AuditHandler struct{ service *application.AuditService }

func NewAuditHandler(service *application.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

func (h *AuditHandler) List(c echo.Context) error {
	limit, err := queryLimit(c)
	if err != nil {
		return invalidPayload(c)
	}
	entries, err := h.service.List(c.Request().Context(), domain.AuditFilter{
		SubjectID: c.QueryParam("subject_id"),
		Action:    domain.AuditAction(c.QueryParam("action")),
		Limit:     limit,
	})
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, entries)
}

func (h *AuditHandler) Activities(c echo.Context) error {
	limit, err := queryLimit(c)
	if err != nil {
		return invalidPayload(c)
	}
	entries, err := h.service.ListActivities(c.Request().Context(), limit)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, entries)
}

func queryLimit(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, domain.ErrInvalidInput
	}
	return limit, nil
}

type AuthorizationHandler struct {
	service *application.AuthorizationService
}

func NewAuthorizationHandler(service *application.AuthorizationService) *AuthorizationHandler {
	return &AuthorizationHandler{service: service}
}

func (h *AuthorizationHandler) Authorize(c echo.Context) error {
	var req struct {
		UserID     string `json:"user_id"`
		Permission string `json:"permission"`
	}
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}
	if req.UserID == "" {
		if actor, ok := application.ActorFromContext(c.Request().Context()); ok {
			req.UserID = actor.ID
		}
	}
	allowed, err := h.service.IsAllowed(c.Request().Context(), req.UserID, req.Permission)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stdhttp.StatusOK, map[string]bool{"allowed": allowed})
}
