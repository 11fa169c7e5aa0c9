// Package logging provides structured logging with trace propagation.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	// TraceIDKey carries the request trace ID.
	TraceIDKey contextKey = "trace_id"
	// UserIDKey carries the authenticated principal ID.
	UserIDKey contextKey = "user_id"
	// RoleKey carries the authenticated principal role.
	RoleKey contextKey = "role"
)

// Logger wraps a logrus entry bound to a component name.
type Logger struct {
	*logrus.Entry
}

// New creates a logger for the named component.
// level is a logrus level name; format is "json" or "text".
func New(component, level, format string) *Logger {
	return NewWithOutput(component, level, format, os.Stderr)
}

// NewWithOutput is New with an explicit sink.
func NewWithOutput(component, level, format string, out io.Writer) *Logger {
	base := logrus.New()
	base.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return &Logger{Entry: base.WithField("component", component)}
}

// Default returns an info-level text logger.
func Default(component string) *Logger {
	return New(component, "info", "text")
}

// Discard returns a logger that writes nowhere. Handy in tests.
func Discard() *Logger {
	return NewWithOutput("discard", "panic", "text", io.Discard)
}

// WithContext returns an entry annotated with the trace and principal found in ctx.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Entry
	if ctx == nil {
		return entry
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		entry = entry.WithField(string(TraceIDKey), traceID)
	}
	if userID := GetUserID(ctx); userID != "" {
		entry = entry.WithField(string(UserIDKey), userID)
	}
	return entry
}

// WithFields returns an entry with the given fields.
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	return l.Entry.WithFields(logrus.Fields(fields))
}

// LogRequest records a completed HTTP request.
func (l *Logger) LogRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": duration.Milliseconds(),
	})
	switch {
	case status >= 500:
		entry.Error("HTTP request")
	case status >= 400:
		entry.Warn("HTTP request")
	default:
		entry.Info("HTTP request")
	}
}

// LogSecurityEvent records an auth or abuse related event.
func (l *Logger) LogSecurityEvent(ctx context.Context, event string, fields map[string]interface{}) {
	l.WithContext(ctx).WithFields(logrus.Fields(fields)).WithField("security_event", event).Warn("Security event")
}

// NewTraceID returns a fresh trace ID.
func NewTraceID() string {
	return uuid.NewString()
}

// WithTraceID stores a trace ID in ctx.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID reads the trace ID from ctx.
func GetTraceID(ctx context.Context) string {
	v, _ := ctx.Value(TraceIDKey).(string)
	return v
}

// WithUserID stores the principal ID in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID reads the principal ID from ctx.
func GetUserID(ctx context.Context) string {
	v, _ := ctx.Value(UserIDKey).(string)
	return v
}

// WithRole stores the principal role in ctx.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, RoleKey, role)
}

// GetRole reads the principal role from ctx.
func GetRole(ctx context.Context) string {
	v, _ := ctx.Value(RoleKey).(string)
	return v
}
