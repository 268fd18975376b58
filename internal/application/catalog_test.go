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

func TestCatalogService_ListPermissionsInSeedOrder(t *testing.T) {
	repo := new(permissionRepoMock)
	svc := NewCatalogService(repo, nopLogger{})
	repo.On("List", mock.Anything).Return([]domain.Permission{
		{ID: "manage_users", Position: 1},
		{ID: "view_dashboard", Position: 0},
		{ID: "b_later", Position: 2},
		{ID: "a_later", Position: 2},
	}, nil)

	permissions, err := svc.ListPermissions(context.Background())
	require.NoError(t, err)
	got := make([]string, 0, len(permissions))
	for _, p := range permissions {
		got = append(got, p.ID)
	}
	assert.Equal(t, []string{"view_dashboard", "manage_users", "a_later", "b_later"}, got)
}

func TestCatalogService_LookupReloadsOnceOnMiss(t *testing.T) {
	repo := new(permissionRepoMock)
	svc := NewCatalogService(repo, nopLogger{})
	repo.On("List", mock.Anything).Return([]domain.Permission{{ID: "view_dashboard"}}, nil).Once()
	repo.On("List", mock.Anything).Return([]domain.Permission{{ID: "view_dashboard"}, {ID: "view_analytics"}}, nil).Once()

	p, err := svc.Lookup(context.Background(), "view_dashboard")
	require.NoError(t, err)
	assert.Equal(t, "view_dashboard", p.ID)

	_, err = svc.Lookup(context.Background(), "view_dashboard")
	require.NoError(t, err)

	p, err = svc.Lookup(context.Background(), "view_analytics")
	require.NoError(t, err)
	assert.Equal(t, "view_analytics", p.ID)
	repo.AssertNumberOfCalls(t, "List", 2)
}

func TestCatalogService_LookupUnknown(t *testing.T) {
	repo := new(permissionRepoMock)
	svc := NewCatalogService(repo, nopLogger{})
	repo.On("List", mock.Anything).Return([]domain.Permission{{ID: "view_dashboard"}}, nil)

	_, err := svc.Lookup(context.Background(), "fly")
	assert.ErrorIs(t, err, domain.ErrUnknownPermission)

	_, err = svc.Lookup(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCatalogService_LookupStoreFailure(t *testing.T) {
	repo := new(permissionRepoMock)
	svc := NewCatalogService(repo, nopLogger{})
	storeErr := errors.New("down")
	repo.On("List", mock.Anything).Return([]domain.Permission(nil), storeErr)

	_, err := svc.Lookup(context.Background(), "view_dashboard")
	assert.ErrorIs(t, err, storeErr)
}

func TestCatalogService_Seed(t *testing.T) {
	repo := new(permissionRepoMock)
	svc := NewCatalogService(repo, nopLogger{}, fixedClock())
	repo.On("Upsert", mock.Anything, domain.Permission{ID: "view_dashboard", Name: "View dashboard", Position: 0, CreatedAt: fixedNow}).Return(nil)
	repo.On("Upsert", mock.Anything, domain.Permission{ID: "manage_users", Name: "Manage users", Position: 1, CreatedAt: fixedNow}).Return(errors.New("throttled"))
	repo.On("List", mock.Anything).Return([]domain.Permission{{ID: "view_dashboard"}}, nil)

	err := svc.Seed(context.Background(), []domain.Permission{
		{ID: "view_dashboard", Name: "View dashboard"},
		{ID: "manage_users", Name: "Manage users"},
		{ID: "nameless"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorContains(t, err, "throttled")
	repo.AssertNumberOfCalls(t, "Upsert", 2)

	_, err = svc.Lookup(context.Background(), "view_dashboard")
	require.NoError(t, err)
}
