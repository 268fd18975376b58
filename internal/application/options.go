package application

import (
	"time"

	"agency-rbac/internal/ports"
)

type Option func(*options)

type options struct {
	recorder ports.MutationRecorder
	now      func() time.Time
}

func WithRecorder(r ports.MutationRecorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		recorder: nopRecorder{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type nopRecorder struct{}

func (nopRecorder) Mutation(string, string) {}
func (nopRecorder) Rollback(string)         {}
func (nopRecorder) AuditSinkFailure(string) {}

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)
