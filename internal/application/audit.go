package application

import (
	"context"
	"fmt"
	"sync"

	"agency-rbac/internal/domain"
	"agency-rbac/internal/ids"
	"agency-rbac/internal/ports"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
	unknownIP         = "unknown"
)

// Auditor is the append side of the audit log as seen by mutating services.
type Auditor interface {
	Append(ctx context.Context, entry domain.AuditLogEntry) domain.AuditLogEntry
}

// CollectionSink writes accepted entries to one audit collection. A sink
// created without actions accepts every entry.
type CollectionSink struct {
	name    string
	repo    ports.AuditRepository
	actions map[domain.AuditAction]struct{}
}

func NewCollectionSink(name string, repo ports.AuditRepository, actions ...domain.AuditAction) *CollectionSink {
	var set map[domain.AuditAction]struct{}
	if len(actions) > 0 {
		set = make(map[domain.AuditAction]struct{}, len(actions))
		for _, a := range actions {
			set[a] = struct{}{}
		}
	}
	return &CollectionSink{name: name, repo: repo, actions: set}
}

func (s *CollectionSink) Name() string { return s.name }

func (s *CollectionSink) Accepts(entry domain.AuditLogEntry) bool {
	if s.actions == nil {
		return true
	}
	_, ok := s.actions[entry.Action]
	return ok
}

func (s *CollectionSink) Write(ctx context.Context, entry domain.AuditLogEntry) error {
	return s.repo.Append(ctx, entry)
}

type AuditService struct {
	logs       ports.AuditRepository
	activities ports.AuditRepository
	ips        ports.IPResolver
	logger     ports.Logger
	opts       options

	mu    sync.RWMutex
	sinks []ports.AuditSink
}

func NewAuditService(logs, activities ports.AuditRepository, ips ports.IPResolver, logger ports.Logger, opts ...Option) *AuditService {
	return &AuditService{
		logs:       logs,
		activities: activities,
		ips:        ips,
		logger:     logger,
		opts:       newOptions(opts),
	}
}

// Subscribe registers a sink for every subsequently appended entry.
func (s *AuditService) Subscribe(sink ports.AuditSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

// Append stamps the entry and publishes it to all accepting sinks. Sink
// failures are logged and never reach the caller; the returned entry is the
// stamped value regardless of delivery.
func (s *AuditService) Append(ctx context.Context, entry domain.AuditLogEntry) domain.AuditLogEntry {
	if !entry.Action.Valid() || entry.SubjectID == "" {
		s.logger.Error(ctx, "dropping malformed audit entry", "action", entry.Action, "subject_id", entry.SubjectID)
		return entry
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.opts.now()
	}
	entry.ID = ids.New(entry.Timestamp)
	if entry.IPAddress == "" {
		entry.IPAddress = s.lookupIP(ctx)
	}

	s.mu.RLock()
	sinks := append([]ports.AuditSink(nil), s.sinks...)
	s.mu.RUnlock()

	for _, sink := range sinks {
		if !sink.Accepts(entry) {
			continue
		}
		if err := sink.Write(ctx, entry); err != nil {
			s.opts.recorder.AuditSinkFailure(sink.Name())
			s.logger.Warn(ctx, "audit sink write failed",
				"sink", sink.Name(),
				"action", entry.Action,
				"subject_id", entry.SubjectID,
				"error", err,
			)
		}
	}
	return entry
}

func (s *AuditService) lookupIP(ctx context.Context) string {
	if s.ips == nil {
		return unknownIP
	}
	if ip := s.ips.ClientIP(ctx); ip != "" {
		return ip
	}
	return unknownIP
}

// List returns audit entries newest first.
func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditLogEntry, error) {
	if filter.Action != "" && !filter.Action.Valid() {
		return nil, fmt.Errorf("action %q: %w", filter.Action, domain.ErrInvalidInput)
	}
	filter.Limit = clampLimit(filter.Limit)
	entries, err := s.logs.List(ctx, filter)
	if err != nil {
		s.logger.Error(ctx, "list audit logs failed", "error", err)
		return nil, err
	}
	return entries, nil
}

// ListActivities returns the operational activity feed newest first.
func (s *AuditService) ListActivities(ctx context.Context, limit int) ([]domain.AuditLogEntry, error) {
	entries, err := s.activities.List(ctx, domain.AuditFilter{Limit: clampLimit(limit)})
	if err != nil {
		s.logger.Error(ctx, "list admin activities failed", "error", err)
		return nil, err
	}
	return entries, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultAuditLimit
	case limit > maxAuditLimit:
		return maxAuditLimit
	default:
		return limit
	}
}
