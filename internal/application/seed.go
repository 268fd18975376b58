package application

import (
	"context"
	"errors"
	"fmt"

	"agency-rbac/internal/domain"
	"agency-rbac/internal/ports"
)

type Seed struct {
	Permissions []domain.Permission
	Roles       []domain.Role
	// Admin, when set, is created on first run so an operator exists to
	// configure the access matrix.
	Admin *domain.User
}

type Seeder struct {
	catalog *CatalogService
	roles   *RoleService
	users   *UserService
	logger  ports.Logger
}

func NewSeeder(catalog *CatalogService, roles *RoleService, users *UserService, logger ports.Logger) *Seeder {
	return &Seeder{catalog: catalog, roles: roles, users: users, logger: logger}
}

// EnsureSeeded is safe to run on every startup.
func (s *Seeder) EnsureSeeded(ctx context.Context, seed Seed) error {
	var errs []error
	if err := s.catalog.Seed(ctx, seed.Permissions); err != nil {
		errs = append(errs, fmt.Errorf("seed catalog: %w", err))
	}
	if err := s.roles.Seed(ctx, seed.Roles); err != nil {
		errs = append(errs, fmt.Errorf("seed roles: %w", err))
	}
	if seed.Admin != nil {
		created, err := s.users.EnsureUser(ctx, *seed.Admin)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("seed admin: %w", err))
		case created:
			s.logger.Info(ctx, "created bootstrap admin", "user_id", seed.Admin.ID)
		}
	}
	err := errors.Join(errs...)
	if err == nil {
		s.logger.Info(ctx, "seeding complete", "permissions", len(seed.Permissions), "roles", len(seed.Roles))
	}
	return err
}
