package application

import (
	"context"

	"agency-rbac/internal/domain"
)

type actorKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	if ctx == nil {
		return domain.Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok && actor.ID != ""
}

func newAuditEntry(actor domain.Actor, action domain.AuditAction, subjectType domain.SubjectType, subjectID string) domain.AuditLogEntry {
	return domain.AuditLogEntry{
		SubjectType:    subjectType,
		SubjectID:      subjectID,
		Action:         action,
		ChangedBy:      actor.ID,
		ChangedByEmail: actor.Email,
		IPAddress:      actor.IPAddress,
		UserAgent:      actor.UserAgent,
	}
}
