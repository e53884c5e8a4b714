package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent is one security-relevant action.
type AuditEvent struct {
	EventType     string
	UserID        string
	IPAddress     string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger writes audit records through the application logger, tagged
// so they can be routed separately.
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// LogAuthAttempt records a login, refresh or logout.
func (al *AuditLogger) LogAuthAttempt(ctx context.Context, event AuditEvent) {
	al.log(ctx, "auth", event)
}

// LogVerificationDecision records an admin approving or rejecting a request.
func (al *AuditLogger) LogVerificationDecision(ctx context.Context, adminID, requestID, decision string) {
	al.log(ctx, "verification", AuditEvent{
		EventType: "verification_" + decision,
		UserID:    adminID,
		Success:   true,
		Metadata:  map[string]string{"request_id": requestID},
	})
}

// LogRoleChange records a user's role moving from one value to another.
func (al *AuditLogger) LogRoleChange(ctx context.Context, userID, from, to string) {
	al.log(ctx, "account", AuditEvent{
		EventType: "role_change",
		UserID:    userID,
		Success:   true,
		Metadata:  map[string]string{"from_role": from, "to_role": to},
	})
}

func (al *AuditLogger) log(ctx context.Context, auditType string, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", auditType),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
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

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}
