package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mbnr/matrimonial/internal/events"
	"github.com/mbnr/matrimonial/internal/models"
	"github.com/mbnr/matrimonial/internal/notify"
)

// ConnectionRepository defines the storage operations for connection requests
type ConnectionRepository interface {
	Create(ctx context.Context, c *models.Connection) (*models.Connection, error)
	ExistsBetween(ctx context.Context, a, b string) (bool, error)
	Respond(ctx context.Context, id, responderID, decision string) (*models.Connection, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Connection, error)
}

// ConnectionService runs the connection request workflow between two users
type ConnectionService struct {
	repo      ConnectionRepository
	users     UserRepository
	notifier  notify.Notifier
	publisher events.Publisher
	logger    *slog.Logger
}

func NewConnectionService(repo ConnectionRepository, users UserRepository, notifier notify.Notifier, publisher events.Publisher, logger *slog.Logger) *ConnectionService {
	return &ConnectionService{
		repo:      repo,
		users:     users,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
	}
}

// Send creates a pending request from senderID to receiverID. At most one
// request ever exists per unordered pair of users.
func (s *ConnectionService) Send(ctx context.Context, senderID, receiverID, message string) (*models.Connection, error) {
	if senderID == receiverID {
		return nil, models.ErrSelfConnection
	}

	receiver, err := s.users.GetByID(ctx, receiverID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrReceiverNotFound
		}
		return nil, clientError(ctx, s.logger, "failed to load connection receiver", err, slog.String("receiver_id", receiverID))
	}

	// The stored id is canonical; the path parameter may differ in case.
	receiverID = receiver.ID
	if receiverID == senderID {
		return nil, models.ErrSelfConnection
	}

	exists, err := s.repo.ExistsBetween(ctx, senderID, receiverID)
	if err != nil {
		return nil, clientError(ctx, s.logger, "failed to check existing connection", err, slog.String("sender_id", senderID))
	}
	if exists {
		return nil, models.ErrDuplicateConnection
	}

	if message = strings.TrimSpace(message); message == "" {
		message = models.DefaultConnectionMessage
	}

	created, err := s.repo.Create(ctx, &models.Connection{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    message,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrDuplicateConnection
		}
		return nil, clientError(ctx, s.logger, "failed to create connection", err, slog.String("sender_id", senderID))
	}

	s.logger.InfoContext(ctx, "connection request sent",
		slog.String("connection_id", created.ID),
		slog.String("sender_id", senderID),
		slog.String("receiver_id", receiverID))

	publish(ctx, s.publisher, s.logger, events.ConnectionRequested, events.ConnectionEvent{
		ConnectionID: created.ID,
		SenderID:     senderID,
		ReceiverID:   receiverID,
		Status:       created.Status,
	})
	s.notifyReceiver(ctx, receiver, created)

	return created, nil
}

// Respond records the receiver's accept or reject decision on a pending request.
func (s *ConnectionService) Respond(ctx context.Context, connectionID, responderID, decision string) (*models.Connection, error) {
	if !models.IsValidConnectionDecision(decision) {
		return nil, models.ErrInvalidConnectionDecision
	}

	updated, err := s.repo.Respond(ctx, connectionID, responderID, decision)
	if err != nil {
		return nil, clientError(ctx, s.logger, "failed to respond to connection", err,
			slog.String("connection_id", connectionID))
	}

	s.logger.InfoContext(ctx, "connection request answered",
		slog.String("connection_id", updated.ID),
		slog.String("status", updated.Status))

	publish(ctx, s.publisher, s.logger, events.ConnectionResponded, events.ConnectionEvent{
		ConnectionID: updated.ID,
		SenderID:     updated.SenderID,
		ReceiverID:   updated.ReceiverID,
		Status:       updated.Status,
	})

	return updated, nil
}

// ListMine partitions every connection touching userID into its views.
func (s *ConnectionService) ListMine(ctx context.Context, userID string) (*models.ConnectionBuckets, error) {
	conns, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, clientError(ctx, s.logger, "failed to list connections", err, slog.String("user_id", userID))
	}
	return models.PartitionConnections(userID, conns), nil
}

func (s *ConnectionService) notifyReceiver(ctx context.Context, receiver *models.User, c *models.Connection) {
	if s.notifier == nil {
		return
	}

	senderName := ""
	if c.Sender != nil {
		senderName = c.Sender.Name
	}

	err := s.notifier.ConnectionReceived(ctx, notify.ConnectionReceived{
		To:         receiver.Email,
		Name:       receiver.Name,
		SenderName: senderName,
		Message:    c.Message,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to send connection notification",
			slog.String("receiver_id", receiver.ID), slog.Any("error", err))
	}
}
