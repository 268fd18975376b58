package application

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"agency-rbac/internal/domain"
	"agency-rbac/internal/ports"
)

type AuthorizationService struct {
	users     ports.UserRepository
	roles     ports.RoleRepository
	overrides ports.OverrideRepository
	logger    ports.Logger
}

func NewAuthorizationService(users ports.UserRepository, roles ports.RoleRepository, overrides ports.OverrideRepository, logger ports.Logger) *AuthorizationService {
	return &AuthorizationService{users: users, roles: roles, overrides: overrides, logger: logger}
}

// EffectivePermissions is the union of the user's role defaults and overrides,
// sorted and deduplicated. It is recomputed from the store on every call.
func (s *AuthorizationService) EffectivePermissions(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	var (
		role      domain.Role
		overrides []domain.UserOverride
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		user, err := s.users.GetByID(gctx, userID)
		if err != nil {
			return err
		}
		if user.RoleID == "" {
			return fmt.Errorf("user %q has no role: %w", userID, domain.ErrUnknownRole)
		}
		role, err = s.roles.GetByID(gctx, user.RoleID)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("role %q of user %q: %w", user.RoleID, userID, domain.ErrUnknownRole)
		}
		return err
	})
	g.Go(func() error {
		var err error
		overrides, err = s.overrides.ListByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	effective := make([]string, 0, len(role.Permissions)+len(overrides))
	effective = append(effective, role.Permissions...)
	for _, o := range overrides {
		effective = append(effective, o.PermissionID)
	}
	slices.Sort(effective)
	return slices.Compact(effective), nil
}

// IsAllowed reports whether permissionID is in the user's effective set.
// Unknown users and users without a resolvable role are denied.
func (s *AuthorizationService) IsAllowed(ctx context.Context, userID, permissionID string) (bool, error) {
	if userID == "" || permissionID == "" {
		return false, domain.ErrInvalidInput
	}
	effective, err := s.EffectivePermissions(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return false, nil
		case errors.Is(err, domain.ErrUnknownRole):
			s.logger.Warn(ctx, "authorization denied, user has no resolvable role", "user_id", userID, "error", err)
			return false, nil
		}
		s.logger.Error(ctx, "authorization check failed", "user_id", userID, "permission_id", permissionID, "error", err)
		return false, err
	}
	_, found := slices.BinarySearch(effective, permissionID)
	return found, nil
}
