// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// UserIDKey is the context key for user ID
	UserIDKey contextKey = "user_id"
	// ManagerIDKey is the context key for the manager scope of a request
	ManagerIDKey contextKey = "manager_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter creates a logger writing to w. Tests use it with a buffer.
func NewWithWriter(env string, w io.Writer) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithContext returns a logger with request_id, user_id and manager_id
// extracted from ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = newLogger.WithRequestID(requestID)
	}

	if userID, ok := ctx.Value(UserIDKey).(string); ok && userID != "" {
		newLogger = newLogger.WithUserID(userID)
	}

	if managerID, ok := ctx.Value(ManagerIDKey).(string); ok && managerID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("manager_id", managerID)),
		}
	}

	return newLogger
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// WithUserID returns a logger with user ID
func (l *Logger) WithUserID(userID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("user_id", userID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}

// IngestSummary logs the outcome of one ingest run. A run with a failed
// write half is logged at warn level.
func (l *Logger) IngestSummary(managerID string, inserted, quarantined, batchSkipped, rejected int, freshErr, duplicateErr error) {
	attrs := []any{
		slog.String("manager_id", managerID),
		slog.Int("inserted", inserted),
		slog.Int("quarantined", quarantined),
		slog.Int("batch_skipped", batchSkipped),
		slog.Int("rejected", rejected),
	}
	if freshErr == nil && duplicateErr == nil {
		l.Info("lead_ingest", attrs...)
		return
	}
	if freshErr != nil {
		attrs = append(attrs, slog.String("fresh_error", freshErr.Error()))
	}
	if duplicateErr != nil {
		attrs = append(attrs, slog.String("duplicate_error", duplicateErr.Error()))
	}
	l.Warn("lead_ingest", attrs...)
}

// DistributionSummary logs the outcome of one assignment run.
func (l *Logger) DistributionSummary(managerID, policy string, assigned, failed int) {
	level := slog.LevelInfo
	if failed > 0 {
		level = slog.LevelWarn
	}
	l.Log(context.Background(), level, "lead_distribution",
		slog.String("manager_id", managerID),
		slog.String("policy", policy),
		slog.Int("assigned", assigned),
		slog.Int("failed", failed),
	)
}
