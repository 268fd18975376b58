package domain

import (
	"slices"
	"time"
)

type Permission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasPermission reports whether the role grants permissionID by default.
func (r Role) HasPermission(permissionID string) bool {
	return slices.Contains(r.Permissions, permissionID)
}

// Clone returns a copy whose permission slice does not alias r.
func (r Role) Clone() Role {
	r.Permissions = slices.Clone(r.Permissions)
	return r
}

type User struct {
	ID        string           `json:"id"`
	Email     string           `json:"email"`
	RoleID    string           `json:"role_id"`
	Security  SecurityControls `json:"security"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// UserOverride is one explicitly granted permission on top of a user's role.
type UserOverride struct {
	UserID       string    `json:"user_id"`
	PermissionID string    `json:"permission_id"`
	GrantedAt    time.Time `json:"granted_at"`
	GrantedBy    string    `json:"granted_by"`
}

// OverrideKey is the record id of an override in the userPermissions collection.
func OverrideKey(userID, permissionID string) string {
	return userID + "_" + permissionID
}

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
	AccountStatusReadOnly  AccountStatus = "readonly"
)

func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusActive, AccountStatusSuspended, AccountStatusReadOnly:
		return true
	}
	return false
}

type SecurityControls struct {
	ForceLogout          bool          `json:"force_logout"`
	RequirePasswordReset bool          `json:"require_password_reset"`
	Enable2FA            bool          `json:"enable_2fa"`
	AccessExpiration     *time.Time    `json:"access_expiration,omitempty"`
	Status               AccountStatus `json:"status"`
}

// DefaultSecurityControls is what a user record carries before any operator edit.
func DefaultSecurityControls() SecurityControls {
	return SecurityControls{Status: AccountStatusActive}
}
