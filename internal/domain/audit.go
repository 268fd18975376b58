package domain

import "time"

// Audit collections. Security-relevant entries are written to both.
const (
	CollectionAuditLogs  = "permissionAuditLogs"
	CollectionActivities = "admin-activities"
)

type AuditAction string

const (
	ActionPermissionGranted     AuditAction = "permission_granted"
	ActionPermissionRevoked     AuditAction = "permission_revoked"
	ActionRoleUpdated           AuditAction = "role_updated"
	ActionRolePermissionAdded   AuditAction = "role_permission_added"
	ActionRolePermissionRemoved AuditAction = "role_permission_removed"
	ActionSecurityUpdated       AuditAction = "security_updated"
)

func (a AuditAction) Valid() bool {
	switch a {
	case ActionPermissionGranted, ActionPermissionRevoked, ActionRoleUpdated,
		ActionRolePermissionAdded, ActionRolePermissionRemoved, ActionSecurityUpdated:
		return true
	}
	return false
}

type SubjectType string

const (
	SubjectUser SubjectType = "user"
	SubjectRole SubjectType = "role"
)

// AuditLogEntry is immutable once appended.
type AuditLogEntry struct {
	ID             string      `json:"id"`
	SubjectType    SubjectType `json:"subject_type"`
	SubjectID      string      `json:"subject_id"`
	PermissionID   string      `json:"permission_id,omitempty"`
	Action         AuditAction `json:"action"`
	ChangedBy      string      `json:"changed_by"`
	ChangedByEmail string      `json:"changed_by_email"`
	IPAddress      string      `json:"ip_address"`
	UserAgent      string      `json:"user_agent"`
	Timestamp      time.Time   `json:"timestamp"`
	Details        string      `json:"details"`
	OldValue       string      `json:"old_value,omitempty"`
	NewValue       string      `json:"new_value,omitempty"`
}

type AuditFilter struct {
	SubjectID string
	Action    AuditAction
	Limit     int
}

// Actor identifies the operator performing a mutation.
type Actor struct {
	ID        string
	Email     string
	IPAddress string
	UserAgent string
}
