package application

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"agency-rbac/internal/domain"
	"agency-rbac/internal/ports"
)

type OverrideService struct {
	repo    ports.OverrideRepository
	users   ports.UserRepository
	catalog PermissionLookup
	audit   Auditor
	logger  ports.Logger
	opts    options
}

func NewOverrideService(repo ports.OverrideRepository, users ports.UserRepository, catalog PermissionLookup, audit Auditor, logger ports.Logger, opts ...Option) *OverrideService {
	return &OverrideService{repo: repo, users: users, catalog: catalog, audit: audit, logger: logger, opts: newOptions(opts)}
}

// GetUserPermissions returns only the user's override set, not role defaults.
func (s *OverrideService) GetUserPermissions(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	overrides, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "list user overrides failed", "user_id", userID, "error", err)
		return nil, err
	}
	return overrideIDs(overrides), nil
}

// TogglePermission removes the override if present and creates it otherwise.
// It reports whether the permission is granted afterwards. Each call is
// audited independently.
func (s *OverrideService) TogglePermission(ctx context.Context, actor domain.Actor, userID, permissionID string) (bool, error) {
	const op = "toggle_permission"
	if actor.ID == "" || userID == "" || permissionID == "" {
		return false, domain.ErrInvalidInput
	}
	if _, err := s.catalog.Lookup(ctx, permissionID); err != nil {
		return false, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return false, fmt.Errorf("user %q: %w", userID, err)
	}

	_, err := s.repo.Get(ctx, userID, permissionID)
	var granted bool
	switch {
	case err == nil:
		err = s.repo.Delete(ctx, userID, permissionID)
	case errors.Is(err, domain.ErrNotFound):
		granted = true
		err = s.repo.Put(ctx, domain.UserOverride{
			UserID:       userID,
			PermissionID: permissionID,
			GrantedAt:    s.opts.now(),
			GrantedBy:    actor.ID,
		})
	}
	if err != nil {
		s.opts.recorder.Mutation(op, outcomeFailure)
		s.logger.Error(ctx, "toggle permission failed", "user_id", userID, "permission_id", permissionID, "error", err)
		return false, err
	}
	s.opts.recorder.Mutation(op, outcomeSuccess)

	action := domain.ActionPermissionGranted
	details := fmt.Sprintf("permission %s granted to user %s", permissionID, userID)
	if !granted {
		action = domain.ActionPermissionRevoked
		details = fmt.Sprintf("permission %s revoked from user %s", permissionID, userID)
	}
	entry := newAuditEntry(actor, action, domain.SubjectUser, userID)
	entry.PermissionID = permissionID
	entry.Details = details
	entry.OldValue = fmt.Sprint(!granted)
	entry.NewValue = fmt.Sprint(granted)
	s.audit.Append(ctx, entry)
	return granted, nil
}

func overrideIDs(overrides []domain.UserOverride) []string {
	out := make([]string, 0, len(overrides))
	for _, o := range overrides {
		out = append(out, o.PermissionID)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
