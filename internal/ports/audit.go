package ports

import (
	"context"

	"agency-rbac/internal/domain"
)

// AuditSink receives every published audit entry it accepts.
type AuditSink interface {
	Name() string
	Accepts(entry domain.AuditLogEntry) bool
	Write(ctx context.Context, entry domain.AuditLogEntry) error
}

// IPResolver returns a best-effort fallback address for audit entries whose
// request carried none, "unknown" when it cannot. Implementations that query
// an echo service report the service's egress address.
type IPResolver interface {
	ClientIP(ctx context.Context) string
}

// MutationRecorder observes outcomes of domain mutations.
type MutationRecorder interface {
	Mutation(operation, outcome string)
	Rollback(operation string)
	AuditSinkFailure(sink string)
}
