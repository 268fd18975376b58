package application

import (
	"context"
	"fmt"

	"agency-rbac/internal/domain"
	"agency-rbac/internal/ports"
)

type SecurityService struct {
	users  ports.UserRepository
	audit  Auditor
	logger ports.Logger
	opts   options
}

func NewSecurityService(users ports.UserRepository, audit Auditor, logger ports.Logger, opts ...Option) *SecurityService {
	return &SecurityService{users: users, audit: audit, logger: logger, opts: newOptions(opts)}
}

func (s *SecurityService) GetSecurityControls(ctx context.Context, userID string) (domain.SecurityControls, error) {
	if userID == "" {
		return domain.SecurityControls{}, domain.ErrInvalidInput
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.SecurityControls{}, err
	}
	return user.Security, nil
}

// UpdateSecurityControls replaces the user's embedded controls wholesale. The
// flags are only recorded here; enforcement belongs to the authentication side.
func (s *SecurityService) UpdateSecurityControls(ctx context.Context, actor domain.Actor, userID string, controls domain.SecurityControls) error {
	const op = "update_security_controls"
	if actor.ID == "" || userID == "" || !controls.Status.Valid() {
		return domain.ErrInvalidInput
	}
	if controls.AccessExpiration != nil {
		exp := controls.AccessExpiration.UTC()
		controls.AccessExpiration = &exp
	}
	if err := s.users.SetSecurity(ctx, userID, controls, s.opts.now()); err != nil {
		s.opts.recorder.Mutation(op, outcomeFailure)
		s.logger.Error(ctx, "update security controls failed", "user_id", userID, "error", err)
		return err
	}
	s.opts.recorder.Mutation(op, outcomeSuccess)

	entry := newAuditEntry(actor, domain.ActionSecurityUpdated, domain.SubjectUser, userID)
	entry.Details = describeControls(controls)
	s.audit.Append(ctx, entry)
	return nil
}

func describeControls(c domain.SecurityControls) string {
	expiration := "none"
	if c.AccessExpiration != nil {
		expiration = c.AccessExpiration.Format("2006-01-02")
	}
	return fmt.Sprintf("security controls updated: status=%s force_logout=%t require_password_reset=%t 2fa=%t access_expiration=%s",
		c.Status, c.ForceLogout, c.RequirePasswordReset, c.Enable2FA, expiration)
}
