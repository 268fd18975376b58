package application

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"agency-rbac/internal/domain"
	"agency-rbac/internal/ports"
)

// PermissionLookup validates permission ids against the catalog.
type PermissionLookup interface {
	Lookup(ctx context.Context, permissionID string) (domain.Permission, error)
}

type CatalogService struct {
	repo   ports.PermissionRepository
	logger ports.Logger
	opts   options

	mu   sync.RWMutex
	byID map[string]domain.Permission
}

func NewCatalogService(repo ports.PermissionRepository, logger ports.Logger, opts ...Option) *CatalogService {
	return &CatalogService{repo: repo, logger: logger, opts: newOptions(opts)}
}

// ListPermissions returns the catalog in seed order and refreshes the
// in-process snapshot used by Lookup.
func (s *CatalogService) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	permissions, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error(ctx, "list permissions failed", "error", err)
		return nil, err
	}
	slices.SortStableFunc(permissions, func(a, b domain.Permission) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), strings.Compare(a.ID, b.ID))
	})
	byID := make(map[string]domain.Permission, len(permissions))
	for _, p := range permissions {
		byID[p.ID] = p
	}
	s.mu.Lock()
	s.byID = byID
	s.mu.Unlock()
	return slices.Clone(permissions), nil
}

// Lookup resolves a permission id. A miss in the snapshot forces one reload
// before the id is rejected with ErrUnknownPermission.
func (s *CatalogService) Lookup(ctx context.Context, permissionID string) (domain.Permission, error) {
	if permissionID == "" {
		return domain.Permission{}, domain.ErrInvalidInput
	}
	if p, ok := s.cached(permissionID); ok {
		return p, nil
	}
	if _, err := s.ListPermissions(ctx); err != nil {
		return domain.Permission{}, err
	}
	if p, ok := s.cached(permissionID); ok {
		return p, nil
	}
	return domain.Permission{}, fmt.Errorf("permission %q: %w", permissionID, domain.ErrUnknownPermission)
}

func (s *CatalogService) cached(permissionID string) (domain.Permission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[permissionID]
	return p, ok
}

// Seed upserts permissions by id in the given order. Re-running overwrites
// names and descriptions; it never removes permissions.
func (s *CatalogService) Seed(ctx context.Context, permissions []domain.Permission) error {
	var errs []error
	now := s.opts.now()
	for i, p := range permissions {
		if p.ID == "" || p.Name == "" {
			errs = append(errs, fmt.Errorf("seed permission #%d: %w", i, domain.ErrInvalidInput))
			continue
		}
		p.Position = i
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if err := s.repo.Upsert(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("seed permission %q: %w", p.ID, err))
		}
	}
	if _, err := s.ListPermissions(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
