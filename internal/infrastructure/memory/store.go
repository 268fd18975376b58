// Package memory is an in-process document store implementing the repository
// ports. It backs STORE_BACKEND=memory and router-level tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"agency-rbac/internal/domain"
)

type Store struct {
	mu          sync.RWMutex
	permissions map[string]domain.Permission
	roles       map[string]domain.Role
	users       map[string]domain.User
	overrides   map[overrideKey]domain.UserOverride
	logs        map[string][]domain.AuditLogEntry
}

func NewStore() *Store {
	return &Store{
		permissions: map[string]domain.Permission{},
		roles:       map[string]domain.Role{},
		users:       map[string]domain.User{},
		overrides:   map[overrideKey]domain.UserOverride{},
		logs:        map[string][]domain.AuditLogEntry{},
	}
}

// overrideKey identifies an override by its parts. The joined OverrideKey
// string is ambiguous once ids contain the separator.
type overrideKey struct {
	userID       string
	permissionID string
}

type PermissionRepository struct{ store *Store }

type RoleRepository struct{ store *Store }

type UserRepository struct{ store *Store }

type OverrideRepository struct{ store *Store }

type AuditRepository struct {
	store      *Store
	collection string
}

func NewPermissionRepository(store *Store) *PermissionRepository {
	return &PermissionRepository{store: store}
}

func NewRoleRepository(store *Store) *RoleRepository {
	return &RoleRepository{store: store}
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func NewOverrideRepository(store *Store) *OverrideRepository {
	return &OverrideRepository{store: store}
}

func NewAuditRepository(store *Store, collection string) *AuditRepository {
	return &AuditRepository{store: store, collection: collection}
}

func (r *PermissionRepository) Upsert(_ context.Context, permission domain.Permission) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing, ok := r.store.permissions[permission.ID]; ok {
		permission.CreatedAt = existing.CreatedAt
	}
	r.store.permissions[permission.ID] = permission
	return nil
}

func (r *PermissionRepository) List(_ context.Context) ([]domain.Permission, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]domain.Permission, 0, len(r.store.permissions))
	for _, p := range r.store.permissions {
		out = append(out, p)
	}
	return out, nil
}

func (r *RoleRepository) CreateIfMissing(_ context.Context, role domain.Role) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.roles[role.ID]; ok {
		return false, nil
	}
	r.store.roles[role.ID] = role.Clone()
	return true, nil
}

func (r *RoleRepository) GetByID(_ context.Context, roleID string) (domain.Role, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	role, ok := r.store.roles[roleID]
	if !ok {
		return domain.Role{}, domain.ErrNotFound
	}
	return role.Clone(), nil
}

func (r *RoleRepository) List(_ context.Context) ([]domain.Role, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]domain.Role, 0, len(r.store.roles))
	for _, role := range r.store.roles {
		out = append(out, role.Clone())
	}
	return out, nil
}

func (r *RoleRepository) SetPermission(_ context.Context, roleID, permissionID string, granted bool, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	role, ok := r.store.roles[roleID]
	if !ok {
		return domain.ErrNotFound
	}
	role = role.Clone()
	has := role.HasPermission(permissionID)
	switch {
	case granted && !has:
		role.Permissions = append(role.Permissions, permissionID)
		slices.Sort(role.Permissions)
	case !granted && has:
		role.Permissions = slices.DeleteFunc(role.Permissions, func(p string) bool { return p == permissionID })
	}
	role.UpdatedAt = at
	r.store.roles[roleID] = role
	return nil
}

func (r *UserRepository) Put(_ context.Context, user domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.users[user.ID] = user
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, userID string) (domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	user, ok := r.store.users[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) SetRole(_ context.Context, userID, roleID string, at time.Time) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[userID]
	if !ok {
		return "", domain.ErrNotFound
	}
	old := user.RoleID
	user.RoleID = roleID
	user.UpdatedAt = at
	r.store.users[userID] = user
	return old, nil
}

func (r *UserRepository) SetSecurity(_ context.Context, userID string, controls domain.SecurityControls, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	user.Security = controls
	user.UpdatedAt = at
	r.store.users[userID] = user
	return nil
}

func (r *OverrideRepository) Get(_ context.Context, userID, permissionID string) (domain.UserOverride, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	o, ok := r.store.overrides[overrideKey{userID, permissionID}]
	if !ok {
		return domain.UserOverride{}, domain.ErrNotFound
	}
	return o, nil
}

func (r *OverrideRepository) Put(_ context.Context, override domain.UserOverride) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.overrides[overrideKey{override.UserID, override.PermissionID}] = override
	return nil
}

func (r *OverrideRepository) Delete(_ context.Context, userID, permissionID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := overrideKey{userID, permissionID}
	if _, ok := r.store.overrides[key]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store.overrides, key)
	return nil
}

func (r *OverrideRepository) ListByUser(_ context.Context, userID string) ([]domain.UserOverride, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []domain.UserOverride
	for _, o := range r.store.overrides {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b domain.UserOverride) int {
		return strings.Compare(a.PermissionID, b.PermissionID)
	})
	return out, nil
}

func (r *AuditRepository) Append(_ context.Context, entry domain.AuditLogEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.logs[r.collection] = append(r.store.logs[r.collection], entry)
	return nil
}

// List walks the collection newest first.
func (r *AuditRepository) List(_ context.Context, filter domain.AuditFilter) ([]domain.AuditLogEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	entries := r.store.logs[r.collection]
	out := make([]domain.AuditLogEntry, 0, min(len(entries), max(filter.Limit, 0)))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if filter.SubjectID != "" && e.SubjectID != filter.SubjectID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}
