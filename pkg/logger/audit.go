package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent represents a security audit event
type AuditEvent struct {
	EventType     string
	Username      string
	IPAddress     string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger provides structured security audit logging on top of slog.
// Every write is best-effort: the logger never returns an error to its
// caller.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogAuthAttempt logs login attempts and lockout decisions
func (al *AuditLogger) LogAuthAttempt(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.Username != "" {
		attrs = append(attrs, slog.String("username", event.Username))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	if event.Success {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit", attrs...)
	}
}

// LogAccountAction logs administrative account actions (lock, unlock,
// password reset)
func (al *AuditLogger) LogAccountAction(eventType, username, actor string, metadata map[string]string) {
	attrs := []slog.Attr{
		slog.String("audit_type", "account"),
		slog.String("event_type", eventType),
		slog.String("username", username),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if actor != "" {
		attrs = append(attrs, slog.String("actor", actor))
	}
	for key, val := range metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
}

// LogAlertEvent logs alert creation and resolution
func (al *AuditLogger) LogAlertEvent(eventType string, alertID int64, rule, stationID string) {
	attrs := []slog.Attr{
		slog.String("audit_type", "alert"),
		slog.String("event_type", eventType),
		slog.Int64("alert_id", alertID),
		slog.String("rule", rule),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if stationID != "" {
		attrs = append(attrs, slog.String("station_id", stationID))
	}

	al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
}
