package application

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"agency-rbac/internal/domain"
)

type permissionRepoMock struct{ mock.Mock }

func (m *permissionRepoMock) Upsert(ctx context.Context, permission domain.Permission) error {
	args := m.Called(ctx, permission)
	return args.Error(0)
}

func (m *permissionRepoMock) List(ctx context.Context) ([]domain.Permission, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Permission), args.Error(1)
}

type roleRepoMock struct{ mock.Mock }

func (m *roleRepoMock) CreateIfMissing(ctx context.Context, role domain.Role) (bool, error) {
	args := m.Called(ctx, role)
	return args.Bool(0), args.Error(1)
}

func (m *roleRepoMock) GetByID(ctx context.Context, roleID string) (domain.Role, error) {
	args := m.Called(ctx, roleID)
	return args.Get(0).(domain.Role), args.Error(1)
}

func (m *roleRepoMock) List(ctx context.Context) ([]domain.Role, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Role), args.Error(1)
}

func (m *roleRepoMock) SetPermission(ctx context.Context, roleID, permissionID string, granted bool, at time.Time) error {
	args := m.Called(ctx, roleID, permissionID, granted, at)
	return args.Error(0)
}

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) Put(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *userRepoMock) GetByID(ctx context.Context, userID string) (domain.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *userRepoMock) SetRole(ctx context.Context, userID, roleID string, at time.Time) (string, error) {
	args := m.Called(ctx, userID, roleID, at)
	return args.String(0), args.Error(1)
}

func (m *userRepoMock) SetSecurity(ctx context.Context, userID string, controls domain.SecurityControls, at time.Time) error {
	args := m.Called(ctx, userID, controls, at)
	return args.Error(0)
}

type overrideRepoMock struct{ mock.Mock }

func (m *overrideRepoMock) Get(ctx context.Context, userID, permissionID string) (domain.UserOverride, error) {
	args := m.Called(ctx, userID, permissionID)
	return args.Get(0).(domain.UserOverride), args.Error(1)
}

func (m *overrideRepoMock) Put(ctx context.Context, override domain.UserOverride) error {
	args := m.Called(ctx, override)
	return args.Error(0)
}

func (m *overrideRepoMock) Delete(ctx context.Context, userID, permissionID string) error {
	args := m.Called(ctx, userID, permissionID)
	return args.Error(0)
}

func (m *overrideRepoMock) ListByUser(ctx context.Context, userID string) ([]domain.UserOverride, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.UserOverride), args.Error(1)
}

type auditRepoMock struct{ mock.Mock }

func (m *auditRepoMock) Append(ctx context.Context, entry domain.AuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *auditRepoMock) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditLogEntry, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.AuditLogEntry), args.Error(1)
}

type lookupMock struct{ mock.Mock }

func (m *lookupMock) Lookup(ctx context.Context, permissionID string) (domain.Permission, error) {
	args := m.Called(ctx, permissionID)
	return args.Get(0).(domain.Permission), args.Error(1)
}

// auditRecorder is an in-memory Auditor capturing appended entries.
type auditRecorder struct {
	mu      sync.Mutex
	entries []domain.AuditLogEntry
}

func (r *auditRecorder) Append(_ context.Context, entry domain.AuditLogEntry) domain.AuditLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return entry
}

func (r *auditRecorder) all() []domain.AuditLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuditLogEntry(nil), r.entries...)
}

type metricsRecorder struct {
	mu           sync.Mutex
	mutations    map[string]int
	rollbacks    map[string]int
	sinkFailures map[string]int
}

func newMetricsRecorder() *metricsRecorder {
	return &metricsRecorder{mutations: map[string]int{}, rollbacks: map[string]int{}, sinkFailures: map[string]int{}}
}

func (r *metricsRecorder) Mutation(op, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations[op+"/"+outcome]++
}

func (r *metricsRecorder) Rollback(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollbacks[op]++
}

func (r *metricsRecorder) AuditSinkFailure(sink string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinkFailures[sink]++
}

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Debug(context.Context, string, ...any) {}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() Option { return WithClock(func() time.Time { return fixedNow }) }

var operator = domain.Actor{ID: "op-1", Email: "op@agency.test", IPAddress: "198.51.100.7", UserAgent: "test"}
