package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mbnr/matrimonial/internal/events"
	"github.com/mbnr/matrimonial/internal/models"
	"github.com/mbnr/matrimonial/internal/notify"
	pkglogger "github.com/mbnr/matrimonial/pkg/logger"
)

// VerificationRepository defines the storage operations for identity verification
type VerificationRepository interface {
	Create(ctx context.Context, v *models.VerificationRequest) (*models.VerificationRequest, error)
	HasPending(ctx context.Context, userID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*models.VerificationRequest, error)
	ListPending(ctx context.Context) ([]*models.VerificationRequest, error)
	Process(ctx context.Context, id, decision, reviewerID, rejectionReason string) (*models.VerificationRequest, error)
}

// SubmitVerificationInput is a user's identity document submission.
type SubmitVerificationInput struct {
	DocumentType   string
	DocumentNumber string
	DocumentImage  string
}

// VerificationService runs the identity verification workflow
type VerificationService struct {
	repo        VerificationRepository
	users       UserRepository
	notifier    notify.Notifier
	publisher   events.Publisher
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewVerificationService(repo VerificationRepository, users UserRepository, notifier notify.Notifier, publisher events.Publisher, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *VerificationService {
	return &VerificationService{
		repo:        repo,
		users:       users,
		notifier:    notifier,
		publisher:   publisher,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Submit records a new pending request for userID. A user may hold at most
// one pending request at a time.
func (s *VerificationService) Submit(ctx context.Context, userID string, in SubmitVerificationInput) (*models.VerificationRequest, error) {
	if !models.IsValidDocumentType(in.DocumentType) {
		return nil, models.ErrInvalidDocumentType
	}

	pending, err := s.repo.HasPending(ctx, userID)
	if err != nil {
		return nil, clientError(ctx, s.logger, "failed to check pending verification", err, slog.String("user_id", userID))
	}
	if pending {
		return nil, models.ErrDuplicateActiveRequest
	}

	created, err := s.repo.Create(ctx, &models.VerificationRequest{
		UserID:         userID,
		DocumentType:   in.DocumentType,
		DocumentNumber: strings.TrimSpace(in.DocumentNumber),
		DocumentImage:  strings.TrimSpace(in.DocumentImage),
	})
	if err != nil {
		// the partial unique index catches a submit racing this one
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrDuplicateActiveRequest
		}
		return nil, clientError(ctx, s.logger, "failed to create verification request", err, slog.String("user_id", userID))
	}

	s.logger.InfoContext(ctx, "verification request submitted",
		slog.String("user_id", userID),
		slog.String("request_id", created.ID),
		slog.String("document_type", created.DocumentType))

	publish(ctx, s.publisher, s.logger, events.VerificationSubmitted, events.VerificationEvent{
		RequestID: created.ID,
		UserID:    userID,
		Status:    created.Status,
	})

	return created, nil
}

// GetStatus returns every request userID has submitted, newest first.
func (s *VerificationService) GetStatus(ctx context.Context, userID string) ([]*models.VerificationRequest, error) {
	requests, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, clientError(ctx, s.logger, "failed to list verification requests", err, slog.String("user_id", userID))
	}
	return requests, nil
}

// ListPending returns the admin review queue, oldest first.
func (s *VerificationService) ListPending(ctx context.Context) ([]*models.VerificationRequest, error) {
	requests, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, clientError(ctx, s.logger, "failed to list pending verifications", err)
	}
	return requests, nil
}

// Process applies an admin decision to a pending request. Approval marks the
// submitter verified, and their agent record too when they have one.
func (s *VerificationService) Process(ctx context.Context, requestID, decision, adminID, rejectionReason string) (*models.VerificationRequest, error) {
	if !models.IsValidVerificationDecision(decision) {
		return nil, models.ErrInvalidVerificationDecision
	}
	if decision == models.VerificationApproved {
		rejectionReason = ""
	}

	processed, err := s.repo.Process(ctx, requestID, decision, adminID, strings.TrimSpace(rejectionReason))
	if err != nil {
		return nil, clientError(ctx, s.logger, "failed to process verification request", err,
			slog.String("request_id", requestID))
	}

	s.logger.InfoContext(ctx, "verification request processed",
		slog.String("request_id", processed.ID),
		slog.String("user_id", processed.UserID),
		slog.String("status", processed.Status))
	s.auditLogger.LogVerificationDecision(ctx, adminID, processed.ID, processed.Status)

	publish(ctx, s.publisher, s.logger, events.VerificationProcessed, events.VerificationEvent{
		RequestID: processed.ID,
		UserID:    processed.UserID,
		Status:    processed.Status,
		AdminID:   adminID,
	})
	s.notifyProcessed(ctx, processed)

	return processed, nil
}

func (s *VerificationService) notifyProcessed(ctx context.Context, v *models.VerificationRequest) {
	if s.notifier == nil {
		return
	}

	user, err := s.users.GetByID(ctx, v.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "skipping verification notification: user lookup failed",
			slog.String("user_id", v.UserID), slog.Any("error", err))
		return
	}

	err = s.notifier.VerificationProcessed(ctx, notify.VerificationProcessed{
		To:              user.Email,
		Name:            user.Name,
		Decision:        v.Status,
		RejectionReason: v.RejectionReason,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to send verification notification",
			slog.String("user_id", v.UserID), slog.Any("error", err))
	}
}
