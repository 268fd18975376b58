package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"agency-rbac/internal/domain"
)

func newAuthorizationFixture() (*AuthorizationService, *userRepoMock, *roleRepoMock, *overrideRepoMock) {
	users, roles, overrides := new(userRepoMock), new(roleRepoMock), new(overrideRepoMock)
	return NewAuthorizationService(users, roles, overrides, nopLogger{}), users, roles, overrides
}

func TestAuthorizationService_EffectivePermissionsIsUnion(t *testing.T) {
	svc, users, roles, overrides := newAuthorizationFixture()
	users.On("GetByID", mock.Anything, "u1").Return(domain.User{ID: "u1", RoleID: "intern"}, nil)
	roles.On("GetByID", mock.Anything, "intern").Return(domain.Role{ID: "intern", Permissions: []string{"view_dashboard", "manage_tasks"}}, nil)
	overrides.On("ListByUser", mock.Anything, "u1").Return([]domain.UserOverride{
		{PermissionID: "view_analytics"},
		{PermissionID: "manage_tasks"},
	}, nil)

	effective, err := svc.EffectivePermissions(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"manage_tasks", "view_analytics", "view_dashboard"}, effective)
}

func TestAuthorizationService_EffectivePermissionsErrors(t *testing.T) {
	t.Run("invalid input", func(t *testing.T) {
		svc, _, _, _ := newAuthorizationFixture()
		_, err := svc.EffectivePermissions(context.Background(), "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
	t.Run("user without role", func(t *testing.T) {
		svc, users, _, overrides := newAuthorizationFixture()
		users.On("GetByID", mock.Anything, "u1").Return(domain.User{ID: "u1"}, nil)
		overrides.On("ListByUser", mock.Anything, "u1").Return([]domain.UserOverride{}, nil)
		_, err := svc.EffectivePermissions(context.Background(), "u1")
		assert.ErrorIs(t, err, domain.ErrUnknownRole)
	})
	t.Run("dangling role", func(t *testing.T) {
		svc, users, roles, overrides := newAuthorizationFixture()
		users.On("GetByID", mock.Anything, "u1").Return(domain.User{ID: "u1", RoleID: "gone"}, nil)
		roles.On("GetByID", mock.Anything, "gone").Return(domain.Role{}, domain.ErrNotFound)
		overrides.On("ListByUser", mock.Anything, "u1").Return([]domain.UserOverride{}, nil)
		_, err := svc.EffectivePermissions(context.Background(), "u1")
		assert.ErrorIs(t, err, domain.ErrUnknownRole)
	})
	t.Run("override read failure", func(t *testing.T) {
		svc, users, roles, overrides := newAuthorizationFixture()
		users.On("GetByID", mock.Anything, "u1").Return(domain.User{ID: "u1", RoleID: "intern"}, nil)
		roles.On("GetByID", mock.Anything, "intern").Return(domain.Role{ID: "intern"}, nil)
		storeErr := errors.New("throttled")
		overrides.On("ListByUser", mock.Anything, "u1").Return([]domain.UserOverride(nil), storeErr)
		_, err := svc.EffectivePermissions(context.Background(), "u1")
		assert.ErrorIs(t, err, storeErr)
	})
}

func TestAuthorizationService_IsAllowed(t *testing.T) {
	svc, users, roles, overrides := newAuthorizationFixture()
	users.On("GetByID", mock.Anything, "u1").Return(domain.User{ID: "u1", RoleID: "client"}, nil)
	users.On("GetByID", mock.Anything, "ghost").Return(domain.User{}, domain.ErrNotFound)
	users.On("GetByID", mock.Anything, "orphan").Return(domain.User{ID: "orphan"}, nil)
	roles.On("GetByID", mock.Anything, "client").Return(domain.Role{ID: "client", Permissions: []string{"view_dashboard"}}, nil)
	overrides.On("ListByUser", mock.Anything, mock.Anything).Return([]domain.UserOverride{{PermissionID: "view_campaigns"}}, nil)

	tests := []struct {
		user, permission string
		want             bool
	}{
		{"u1", "view_dashboard", true},
		{"u1", "view_campaigns", true},
		{"u1", "manage_users", false},
		{"ghost", "view_dashboard", false},
		{"orphan", "view_campaigns", false},
	}
	for _, tt := range tests {
		allowed, err := svc.IsAllowed(context.Background(), tt.user, tt.permission)
		require.NoError(t, err, tt.user)
		assert.Equal(t, tt.want, allowed, "%s/%s", tt.user, tt.permission)
	}

	_, err := svc.IsAllowed(context.Background(), "u1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAuthorizationService_IsAllowedPropagatesStoreErrors(t *testing.T) {
	svc, users, _, overrides := newAuthorizationFixture()
	storeErr := errors.New("down")
	users.On("GetByID", mock.Anything, "u1").Return(domain.User{}, storeErr)
	overrides.On("ListByUser", mock.Anything, "u1").Return([]domain.UserOverride{}, nil)

	_, err := svc.IsAllowed(context.Background(), "u1", "view_dashboard")
	assert.ErrorIs(t, err, storeErr)
}
