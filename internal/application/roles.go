package application

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"agency-rbac/internal/domain"
	"agency-rbac/internal/ports"
)

type RoleService struct {
	repo    ports.RoleRepository
	users   ports.UserRepository
	catalog PermissionLookup
	audit   Auditor
	logger  ports.Logger
	opts    options

	mu       sync.Mutex
	registry map[string]domain.Role
}

func NewRoleService(repo ports.RoleRepository, users ports.UserRepository, catalog PermissionLookup, audit Auditor, logger ports.Logger, opts ...Option) *RoleService {
	return &RoleService{
		repo:     repo,
		users:    users,
		catalog:  catalog,
		audit:    audit,
		logger:   logger,
		opts:     newOptions(opts),
		registry: map[string]domain.Role{},
	}
}

func (s *RoleService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error(ctx, "list roles failed", "error", err)
		return nil, err
	}
	sortRoles(roles)
	registry := make(map[string]domain.Role, len(roles))
	out := make([]domain.Role, 0, len(roles))
	for _, r := range roles {
		r.Permissions = normalizeIDs(r.Permissions)
		registry[r.ID] = r
		out = append(out, r.Clone())
	}
	s.mu.Lock()
	s.registry = registry
	s.mu.Unlock()
	return out, nil
}

// Snapshot returns the in-process view of a role.
func (s *RoleService) Snapshot(roleID string) (domain.Role, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.registry[roleID]
	return r.Clone(), ok
}

// SetRolePermission grants or removes a default permission on a role. The
// registry is updated before the store commit; if the commit fails the inverse
// patch is applied and the store error is returned.
func (s *RoleService) SetRolePermission(ctx context.Context, actor domain.Actor, roleID, permissionID string, granted bool) (domain.Role, error) {
	const op = "set_role_permission"
	if actor.ID == "" || roleID == "" || permissionID == "" {
		return domain.Role{}, domain.ErrInvalidInput
	}
	if _, err := s.catalog.Lookup(ctx, permissionID); err != nil {
		return domain.Role{}, err
	}
	current, err := s.repo.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Role{}, fmt.Errorf("role %q: %w", roleID, domain.ErrUnknownRole)
		}
		return domain.Role{}, err
	}
	current.Permissions = normalizeIDs(current.Permissions)

	now := s.opts.now()
	s.mu.Lock()
	s.registry[roleID] = current
	hadBefore := current.HasPermission(permissionID)
	tentative := s.patchLocked(roleID, permissionID, granted, now)
	s.mu.Unlock()

	if err := s.repo.SetPermission(ctx, roleID, permissionID, granted, now); err != nil {
		if hadBefore != granted {
			s.mu.Lock()
			s.patchLocked(roleID, permissionID, hadBefore, current.UpdatedAt)
			s.mu.Unlock()
			s.opts.recorder.Rollback(op)
		}
		s.opts.recorder.Mutation(op, outcomeFailure)
		s.logger.Error(ctx, "role permission commit failed, reverted",
			"role_id", roleID,
			"permission_id", permissionID,
			"granted", granted,
			"error", err,
		)
		return domain.Role{}, err
	}
	s.opts.recorder.Mutation(op, outcomeSuccess)

	action := domain.ActionRolePermissionAdded
	verb := "added to"
	if !granted {
		action = domain.ActionRolePermissionRemoved
		verb = "removed from"
	}
	entry := newAuditEntry(actor, action, domain.SubjectRole, roleID)
	entry.PermissionID = permissionID
	entry.Details = fmt.Sprintf("permission %s %s role %s", permissionID, verb, roleID)
	entry.OldValue = fmt.Sprint(hadBefore)
	entry.NewValue = fmt.Sprint(granted)
	s.audit.Append(ctx, entry)
	return tentative, nil
}

// patchLocked sets permissionID's membership on the registry copy of roleID.
func (s *RoleService) patchLocked(roleID, permissionID string, granted bool, at time.Time) domain.Role {
	role := s.registry[roleID].Clone()
	has := role.HasPermission(permissionID)
	switch {
	case granted && !has:
		role.Permissions = normalizeIDs(append(role.Permissions, permissionID))
	case !granted && has:
		role.Permissions = slices.DeleteFunc(role.Permissions, func(p string) bool { return p == permissionID })
	}
	role.UpdatedAt = at
	s.registry[roleID] = role
	return role.Clone()
}

// ChangeUserRole points the user at newRoleID. Overrides are left untouched.
func (s *RoleService) ChangeUserRole(ctx context.Context, actor domain.Actor, userID, newRoleID string) error {
	const op = "change_user_role"
	if actor.ID == "" || userID == "" || newRoleID == "" {
		return domain.ErrInvalidInput
	}
	if err := s.requireRole(ctx, newRoleID); err != nil {
		return err
	}
	oldRoleID, err := s.users.SetRole(ctx, userID, newRoleID, s.opts.now())
	if err != nil {
		s.opts.recorder.Mutation(op, outcomeFailure)
		s.logger.Error(ctx, "change user role failed", "user_id", userID, "role_id", newRoleID, "error", err)
		return err
	}
	s.opts.recorder.Mutation(op, outcomeSuccess)

	entry := newAuditEntry(actor, domain.ActionRoleUpdated, domain.SubjectUser, userID)
	entry.Details = fmt.Sprintf("role changed from %s to %s", displayID(oldRoleID), newRoleID)
	entry.OldValue = oldRoleID
	entry.NewValue = newRoleID
	s.audit.Append(ctx, entry)
	return nil
}

func (s *RoleService) requireRole(ctx context.Context, roleID string) error {
	if _, err := s.repo.GetByID(ctx, roleID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("role %q: %w", roleID, domain.ErrUnknownRole)
		}
		return err
	}
	return nil
}

// Seed creates missing roles. Existing roles keep their operator-edited
// permissions. Every referenced permission must exist in the catalog.
func (s *RoleService) Seed(ctx context.Context, roles []domain.Role) error {
	var errs []error
	now := s.opts.now()
	for i, role := range roles {
		if role.ID == "" || role.Name == "" {
			errs = append(errs, fmt.Errorf("seed role #%d: %w", i, domain.ErrInvalidInput))
			continue
		}
		if err := s.validatePermissions(ctx, role.Permissions); err != nil {
			errs = append(errs, fmt.Errorf("seed role %q: %w", role.ID, err))
			continue
		}
		role.Permissions = normalizeIDs(role.Permissions)
		role.Position = i
		role.CreatedAt = now
		role.UpdatedAt = now
		created, err := s.repo.CreateIfMissing(ctx, role)
		if err != nil {
			errs = append(errs, fmt.Errorf("seed role %q: %w", role.ID, err))
			continue
		}
		if created {
			s.logger.Info(ctx, "seeded role", "role_id", role.ID, "permissions", len(role.Permissions))
		}
	}
	return errors.Join(errs...)
}

func (s *RoleService) validatePermissions(ctx context.Context, permissionIDs []string) error {
	for _, id := range permissionIDs {
		if _, err := s.catalog.Lookup(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func sortRoles(roles []domain.Role) {
	slices.SortStableFunc(roles, func(a, b domain.Role) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), strings.Compare(a.ID, b.ID))
	})
}

// normalizeIDs sorts and deduplicates an id set.
func normalizeIDs(in []string) []string {
	out := slices.Clone(in)
	if out == nil {
		return []string{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func displayID(id string) string {
	if id == "" {
		return "(none)"
	}
	return id
}
