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

type ipResolverStub string

func (s ipResolverStub) ClientIP(context.Context) string { return string(s) }

func newAuditFixture(ips ipResolverStub) (*AuditService, *auditRepoMock, *auditRepoMock, *metricsRecorder) {
	logs, activities := new(auditRepoMock), new(auditRepoMock)
	recorder := newMetricsRecorder()
	svc := NewAuditService(logs, activities, ips, nopLogger{}, WithRecorder(recorder), fixedClock())
	svc.Subscribe(NewCollectionSink(domain.CollectionAuditLogs, logs))
	svc.Subscribe(NewCollectionSink(domain.CollectionActivities, activities, domain.ActionSecurityUpdated))
	return svc, logs, activities, recorder
}

func TestAuditService_AppendStampsAndWritesAuditLog(t *testing.T) {
	svc, logs, activities, _ := newAuditFixture("")
	logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	entry := newAuditEntry(operator, domain.ActionPermissionGranted, domain.SubjectUser, "u1")
	got := svc.Append(context.Background(), entry)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, fixedNow, got.Timestamp)
	assert.Equal(t, operator.IPAddress, got.IPAddress)
	logs.AssertCalled(t, "Append", mock.Anything, got)
	activities.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestAuditService_SecurityEventsAreDualWritten(t *testing.T) {
	svc, logs, activities, _ := newAuditFixture("")
	logs.On("Append", mock.Anything, mock.Anything).Return(nil)
	activities.On("Append", mock.Anything, mock.Anything).Return(nil)

	got := svc.Append(context.Background(), newAuditEntry(operator, domain.ActionSecurityUpdated, domain.SubjectUser, "u1"))

	logs.AssertCalled(t, "Append", mock.Anything, got)
	activities.AssertCalled(t, "Append", mock.Anything, got)
}

func TestAuditService_SinkFailureIsSwallowed(t *testing.T) {
	svc, logs, activities, recorder := newAuditFixture("")
	logs.On("Append", mock.Anything, mock.Anything).Return(nil)
	activities.On("Append", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	got := svc.Append(context.Background(), newAuditEntry(operator, domain.ActionSecurityUpdated, domain.SubjectUser, "u1"))

	assert.NotEmpty(t, got.ID)
	logs.AssertCalled(t, "Append", mock.Anything, got)
	assert.Equal(t, 1, recorder.sinkFailures[domain.CollectionActivities])
}

func TestAuditService_ResolvesMissingIP(t *testing.T) {
	t.Run("resolver", func(t *testing.T) {
		svc, logs, _, _ := newAuditFixture("203.0.113.5")
		logs.On("Append", mock.Anything, mock.Anything).Return(nil)

		got := svc.Append(context.Background(), newAuditEntry(domain.Actor{ID: "op"}, domain.ActionRoleUpdated, domain.SubjectUser, "u1"))
		assert.Equal(t, "203.0.113.5", got.IPAddress)
	})
	t.Run("request address wins", func(t *testing.T) {
		svc, logs, _, _ := newAuditFixture("203.0.113.5")
		logs.On("Append", mock.Anything, mock.Anything).Return(nil)

		got := svc.Append(context.Background(), newAuditEntry(domain.Actor{ID: "op", IPAddress: "198.51.100.7"}, domain.ActionRoleUpdated, domain.SubjectUser, "u1"))
		assert.Equal(t, "198.51.100.7", got.IPAddress)
	})
	t.Run("unknown", func(t *testing.T) {
		svc, logs, _, _ := newAuditFixture("")
		logs.On("Append", mock.Anything, mock.Anything).Return(nil)

		got := svc.Append(context.Background(), newAuditEntry(domain.Actor{ID: "op"}, domain.ActionRoleUpdated, domain.SubjectUser, "u1"))
		assert.Equal(t, "unknown", got.IPAddress)
	})
}

func TestAuditService_DropsMalformedEntries(t *testing.T) {
	svc, logs, _, _ := newAuditFixture("")

	svc.Append(context.Background(), domain.AuditLogEntry{Action: "deleted", SubjectID: "u1"})
	svc.Append(context.Background(), domain.AuditLogEntry{Action: domain.ActionRoleUpdated})

	logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestAuditService_IDsAreOrderedByAppend(t *testing.T) {
	svc, logs, _, _ := newAuditFixture("")
	logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	first := svc.Append(context.Background(), newAuditEntry(operator, domain.ActionPermissionGranted, domain.SubjectUser, "u1"))
	second := svc.Append(context.Background(), newAuditEntry(operator, domain.ActionPermissionRevoked, domain.SubjectUser, "u1"))

	assert.Less(t, first.ID, second.ID)
}

func TestAuditService_List(t *testing.T) {
	svc, logs, activities, _ := newAuditFixture("")
	logs.On("List", mock.Anything, domain.AuditFilter{SubjectID: "u1", Limit: defaultAuditLimit}).
		Return([]domain.AuditLogEntry{{ID: "2"}, {ID: "1"}}, nil)
	logs.On("List", mock.Anything, domain.AuditFilter{Action: domain.ActionRoleUpdated, Limit: maxAuditLimit}).
		Return([]domain.AuditLogEntry{}, nil)
	activities.On("List", mock.Anything, domain.AuditFilter{Limit: 5}).
		Return([]domain.AuditLogEntry{{ID: "9"}}, nil)

	entries, err := svc.List(context.Background(), domain.AuditFilter{SubjectID: "u1"})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = svc.List(context.Background(), domain.AuditFilter{Action: domain.ActionRoleUpdated, Limit: 50000})
	require.NoError(t, err)

	_, err = svc.List(context.Background(), domain.AuditFilter{Action: "deleted"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	activity, err := svc.ListActivities(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "9", activity[0].ID)
}
