package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterlogger "agency-rbac/internal/adapters/logger"
	"agency-rbac/internal/config"
	"agency-rbac/internal/domain"
)

func memoryConfig() config.Config {
	return config.Config{Store: config.StoreMemory, AuthMode: config.AuthNone, Port: "0"}
}

func quietLogger() *adapterlogger.SlogLogger {
	return adapterlogger.NewWithWriter(io.Discard, slog.LevelError)
}

func TestNew_MemoryStoreSeedsCatalog(t *testing.T) {
	cfg := memoryConfig()
	cfg.BootstrapAdminID = "admin-1"
	cfg.BootstrapAdminEmail = "admin@agency.test"

	a, err := New(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	require.NoError(t, a.Seed(context.Background()))

	admin, err := a.Users.Get(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, adminRoleID, admin.RoleID)

	allowed, err := a.Authorization.IsAllowed(context.Background(), "admin-1", manageCapability)
	require.NoError(t, err)
	assert.True(t, allowed)

	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_CustomSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	doc := "permissions:\n  - id: only\n    name: Only\nroles:\n  - id: solo\n    name: Solo\n    permissions: [only]\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	cfg := memoryConfig()
	cfg.SeedFile = path

	a, err := New(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	require.NoError(t, a.Seed(context.Background()))

	roles, err := a.Roles.ListRoles(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "solo", roles[0].ID)
}

func TestNew_SeededCatalogRejectsUnknownPermission(t *testing.T) {
	cfg := memoryConfig()
	cfg.BootstrapAdminID = "admin-1"
	cfg.BootstrapAdminEmail = "admin@agency.test"
	cfg.SeedFile = filepath.Join(t.TempDir(), "seed.yaml")
	doc := "permissions:\n  - id: view\n    name: View\nroles:\n  - id: admin\n    name: Admin\n    permissions: [view]\n"
	require.NoError(t, os.WriteFile(cfg.SeedFile, []byte(doc), 0o600))

	a, err := New(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	require.NoError(t, a.Seed(context.Background()))

	_, err = a.Roles.SetRolePermission(context.Background(), domain.Actor{ID: "admin-1"}, "admin", "ghost", true)
	assert.ErrorIs(t, err, domain.ErrUnknownPermission)
}

func TestNew_Errors(t *testing.T) {
	cfg := memoryConfig()
	cfg.SeedFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := New(context.Background(), cfg, quietLogger())
	assert.Error(t, err)

	cfg = memoryConfig()
	cfg.Store = "postgres"
	_, err = New(context.Background(), cfg, quietLogger())
	assert.Error(t, err)

	cfg = memoryConfig()
	cfg.AuthMode = config.AuthAPIKey
	_, err = New(context.Background(), cfg, quietLogger())
	assert.Error(t, err)
}
