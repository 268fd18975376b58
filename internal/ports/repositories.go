package ports

import (
	"context"
	"time"

	"agency-rbac/internal/domain"
)

type PermissionRepository interface {
	Upsert(ctx context.Context, permission domain.Permission) error
	List(ctx context.Context) ([]domain.Permission, error)
}

type RoleRepository interface {
	// CreateIfMissing writes the role only when no role with the same id exists.
	CreateIfMissing(ctx context.Context, role domain.Role) (bool, error)
	GetByID(ctx context.Context, roleID string) (domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	// SetPermission adds or removes one default permission and stamps the role
	// with at.
	SetPermission(ctx context.Context, roleID, permissionID string, granted bool, at time.Time) error
}

type UserRepository interface {
	Put(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, userID string) (domain.User, error)
	// SetRole swaps the user's role pointer and returns the previous role id.
	SetRole(ctx context.Context, userID, roleID string, at time.Time) (string, error)
	SetSecurity(ctx context.Context, userID string, controls domain.SecurityControls, at time.Time) error
}

type OverrideRepository interface {
	Get(ctx context.Context, userID, permissionID string) (domain.UserOverride, error)
	Put(ctx context.Context, override domain.UserOverride) error
	Delete(ctx context.Context, userID, permissionID string) error
	ListByUser(ctx context.Context, userID string) ([]domain.UserOverride, error)
}

// AuditRepository is append-only: there is no update or delete.
type AuditRepository interface {
	Append(ctx context.Context, entry domain.AuditLogEntry) error
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditLogEntry, error)
}
