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
	// LeadIDKey is the context key for the lead being processed
	LeadIDKey contextKey = "lead_id"
	// ActorKey is the context key for the authenticated operator
	ActorKey contextKey = "actor"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter creates a logger that writes to w. Tests use io.Discard.
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
	return NewWithWriter("production", io.Discard)
}

// WithContext returns a logger with context values extracted.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = newLogger.WithRequestID(requestID)
	}

	if leadID, ok := ctx.Value(LeadIDKey).(string); ok && leadID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("lead_id", leadID)),
		}
	}

	if actor, ok := ctx.Value(ActorKey).(string); ok && actor != "" {
		newLogger = newLogger.WithActor(actor)
	}

	return newLogger
}

// WithActor returns a logger tagged with the operator behind the request.
func (l *Logger) WithActor(actor string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("actor", actor)),
	}
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
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

// HTTPError logs an HTTP error
func (l *Logger) HTTPError(method, path string, status int, err error, clientIP string) {
	l.Error("http_error",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
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

// FollowUpDispatched logs a follow-up that reached the send service.
func (l *Logger) FollowUpDispatched(followUpID, leadID, contact string) {
	l.Info("followup_dispatched",
		slog.String("followup_id", followUpID),
		slog.String("lead_id", leadID),
		slog.String("contact", contact),
	)
}

// FollowUpFailed logs a follow-up send failure; the row stays pending.
func (l *Logger) FollowUpFailed(followUpID, leadID string, attempts int, err error) {
	l.Warn("followup_failed",
		slog.String("followup_id", followUpID),
		slog.String("lead_id", leadID),
		slog.Int("attempts", attempts),
		slog.String("error", err.Error()),
	)
}

// HandoffCompleted logs a lead handed to a broker.
func (l *Logger) HandoffCompleted(leadID, brokerID, brokerEmail string, cancelled int64) {
	l.Info("handoff_completed",
		slog.String("lead_id", leadID),
		slog.String("broker_id", brokerID),
		slog.String("broker_email", brokerEmail),
		slog.Int64("cancelled_followups", cancelled),
	)
}

// CollaboratorFailure logs a failed call to an external service.
func (l *Logger) CollaboratorFailure(collaborator, operation string, err error) {
	l.Warn("collaborator_failure",
		slog.String("collaborator", collaborator),
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
