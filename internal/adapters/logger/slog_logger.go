package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// SlogLogger writes JSON records and stamps each one with the X-Ray trace
// of the request context, when there is one.
type SlogLogger struct {
	logger *slog.Logger
}

func New(level slog.Leveler) *SlogLogger {
	return NewWithWriter(os.Stdout, level)
}

func NewWithWriter(w io.Writer, level slog.Leveler) *SlogLogger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &SlogLogger{logger: slog.New(traceHandler{Handler: h})}
}

// ParseLevel accepts debug, info, warn or error; empty means info.
func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", raw)
	}
}

// With returns a logger that adds args to every record.
func (l *SlogLogger) With(args ...any) *SlogLogger {
	return &SlogLogger{logger: l.logger.With(args...)}
}

func (l *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

func (l *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

func (l *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

type traceHandler struct {
	slog.Handler
}

func (h traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if seg := xray.GetSegment(ctx); seg != nil {
			root := seg
			if seg.ParentSegment != nil {
				root = seg.ParentSegment
			}
			if root.TraceID != "" {
				r.AddAttrs(slog.String("trace_id", root.TraceID), slog.String("segment_id", seg.ID))
			}
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{Handler: h.Handler.WithGroup(name)}
}
