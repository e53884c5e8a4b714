package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mbnr/matrimonial/internal/events"
	"github.com/mbnr/matrimonial/internal/models"
)

// clientError returns err unchanged when it is a workflow error safe to show
// to clients. Constraint rejections become the bare ErrBadRequest or
// ErrValidation sentinel so driver detail never reaches the response.
// Anything else is logged and replaced with ErrInternalServer.
func clientError(ctx context.Context, logger *slog.Logger, msg string, err error, attrs ...any) error {
	var wfErr *models.WorkflowError
	if errors.As(err, &wfErr) {
		return wfErr
	}
	for _, kind := range []error{models.ErrValidation, models.ErrBadRequest} {
		if errors.Is(err, kind) {
			logger.WarnContext(ctx, msg, append(attrs, slog.Any("error", err))...)
			return kind
		}
	}
	logger.ErrorContext(ctx, msg, append(attrs, slog.Any("error", err))...)
	return models.ErrInternalServer
}

// publish emits eventType once the workflow has committed. A broker outage
// never fails the request.
func publish(ctx context.Context, pub events.Publisher, logger *slog.Logger, eventType string, data any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, eventType, data); err != nil {
		logger.WarnContext(ctx, "failed to publish event",
			slog.String("event_type", eventType),
			slog.Any("error", err))
	}
}

// normalizePage clamps page and limit to the list defaults.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = models.DefaultPageSize
	}
	if limit > models.MaxPageSize {
		limit = models.MaxPageSize
	}
	return page, limit
}
