package application

import (
	"context"
	"errors"
	"fmt"

	"agency-rbac/internal/domain"
	"agency-rbac/internal/ports"
)

type UserService struct {
	repo   ports.UserRepository
	roles  ports.RoleRepository
	audit  Auditor
	logger ports.Logger
	opts   options
}

func NewUserService(repo ports.UserRepository, roles ports.RoleRepository, audit Auditor, logger ports.Logger, opts ...Option) *UserService {
	return &UserService{repo: repo, roles: roles, audit: audit, logger: logger, opts: newOptions(opts)}
}

// Upsert creates or replaces a user's identity fields. Security controls and
// creation time of an existing record are preserved. A change of role pointer
// is audited like ChangeUserRole.
func (s *UserService) Upsert(ctx context.Context, actor domain.Actor, user domain.User) (domain.User, error) {
	const op = "upsert_user"
	if actor.ID == "" || user.ID == "" || user.Email == "" || user.RoleID == "" {
		return domain.User{}, domain.ErrInvalidInput
	}
	if _, err := s.roles.GetByID(ctx, user.RoleID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, fmt.Errorf("role %q: %w", user.RoleID, domain.ErrUnknownRole)
		}
		return domain.User{}, err
	}
	now := s.opts.now()
	existing, err := s.repo.GetByID(ctx, user.ID)
	switch {
	case err == nil:
		user.CreatedAt = existing.CreatedAt
		user.Security = existing.Security
	case errors.Is(err, domain.ErrNotFound):
		user.CreatedAt = now
		user.Security = domain.DefaultSecurityControls()
	default:
		return domain.User{}, err
	}
	user.UpdatedAt = now
	if err := s.repo.Put(ctx, user); err != nil {
		s.opts.recorder.Mutation(op, outcomeFailure)
		s.logger.Error(ctx, "upsert user failed", "user_id", user.ID, "error", err)
		return domain.User{}, err
	}
	s.opts.recorder.Mutation(op, outcomeSuccess)

	if existing.RoleID != user.RoleID {
		entry := newAuditEntry(actor, domain.ActionRoleUpdated, domain.SubjectUser, user.ID)
		entry.Details = fmt.Sprintf("role changed from %s to %s", displayID(existing.RoleID), user.RoleID)
		entry.OldValue = existing.RoleID
		entry.NewValue = user.RoleID
		s.audit.Append(ctx, entry)
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (domain.User, error) {
	if userID == "" {
		return domain.User{}, domain.ErrInvalidInput
	}
	return s.repo.GetByID(ctx, userID)
}

// EnsureUser creates the user when absent and leaves an existing record alone.
func (s *UserService) EnsureUser(ctx context.Context, user domain.User) (bool, error) {
	if user.ID == "" || user.RoleID == "" {
		return false, domain.ErrInvalidInput
	}
	_, err := s.repo.GetByID(ctx, user.ID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	now := s.opts.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Security = domain.DefaultSecurityControls()
	if err := s.repo.Put(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}
