// Package notify sends user-facing e-mail about workflow outcomes.
package notify

import (
	"context"
	"log/slog"

	pkglogger "github.com/mbnr/matrimonial/pkg/logger"
)

// Notifier delivers workflow notifications. Implementations must be safe for
// concurrent use.
type Notifier interface {
	VerificationProcessed(ctx context.Context, msg VerificationProcessed) error
	ConnectionReceived(ctx context.Context, msg ConnectionReceived) error
}

// VerificationProcessed tells a user the outcome of their identity check.
type VerificationProcessed struct {
	To              string
	Name            string
	Decision        string // approved or rejected
	RejectionReason string
}

// ConnectionReceived tells a user someone sent them a connection request.
type ConnectionReceived struct {
	To         string
	Name       string
	SenderName string
	Message    string
}

// LogNotifier records notifications in the log instead of sending them.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) VerificationProcessed(ctx context.Context, msg VerificationProcessed) error {
	n.logger.InfoContext(ctx, "notification skipped: email disabled",
		slog.String("kind", "verification_processed"),
		slog.String("to", pkglogger.MaskEmail(msg.To)),
		slog.String("decision", msg.Decision),
	)
	return nil
}

func (n *LogNotifier) ConnectionReceived(ctx context.Context, msg ConnectionReceived) error {
	n.logger.InfoContext(ctx, "notification skipped: email disabled",
		slog.String("kind", "connection_received"),
		slog.String("to", pkglogger.MaskEmail(msg.To)),
	)
	return nil
}
