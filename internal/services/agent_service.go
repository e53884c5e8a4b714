package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mbnr/matrimonial/internal/events"
	"github.com/mbnr/matrimonial/internal/models"
	pkglogger "github.com/mbnr/matrimonial/pkg/logger"
)

// AgentRepository defines the storage operations for agents, their reviews and clients
type AgentRepository interface {
	GetByID(ctx context.Context, id string) (*models.Agent, error)
	GetByUserID(ctx context.Context, userID string) (*models.Agent, error)
	CreateForUser(ctx context.Context, a *models.Agent) (*models.Agent, error)
	UpdateByUserID(ctx context.Context, userID string, upd *models.AgentUpdate) (*models.Agent, error)
	List(ctx context.Context, f models.AgentFilter) ([]*models.Agent, int, error)
	AddReview(ctx context.Context, review *models.Review) (*models.Agent, error)
	AddClient(ctx context.Context, ownerUserID, clientID string) (*models.Agent, error)
}

// QRCodeRenderer renders the share code for an agent's public page.
type QRCodeRenderer interface {
	AgentProfilePNG(agentID string) ([]byte, error)
}

// RegisterAgentInput is the business profile a user submits to become an agent.
type RegisterAgentInput struct {
	BusinessName   string
	Experience     int
	Specialization []string
	ServingAreas   []string
	ContactInfo    models.ContactInfo
	Description    string
}

// AgentPage is one page of the agent directory.
type AgentPage struct {
	Agents []*models.Agent
	models.Page
}

// AgentService handles agent registration, the public directory, reviews and client rosters
type AgentService struct {
	repo        AgentRepository
	users       UserRepository
	profiles    ProfileRepository
	qr          QRCodeRenderer
	publisher   events.Publisher
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewAgentService(repo AgentRepository, users UserRepository, profiles ProfileRepository, qr QRCodeRenderer, publisher events.Publisher, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AgentService {
	return &AgentService{
		repo:        repo,
		users:       users,
		profiles:    profiles,
		qr:          qr,
		publisher:   publisher,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Register creates the agent record for userID and moves a plain user to the agent role.
func (s *AgentService) Register(ctx context.Context, userID string, in RegisterAgentInput) (*models.Agent, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, clientError(ctx, s.logger, "failed to load user for agent registration", err, slog.String("user_id", userID))
	}

	if _, err := s.repo.GetByUserID(ctx, userID); err == nil {
		return nil, models.ErrAlreadyAgent
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, clientError(ctx, s.logger, "failed to check existing agent", err, slog.String("user_id", userID))
	}

	created, err := s.repo.CreateForUser(ctx, &models.Agent{
		UserID:         userID,
		BusinessName:   strings.TrimSpace(in.BusinessName),
		Experience:     in.Experience,
		Specialization: nonNil(in.Specialization),
		ServingAreas:   nonNil(in.ServingAreas),
		ContactInfo:    in.ContactInfo,
		Description:    in.Description,
	})
	if err != nil {
		return nil, clientError(ctx, s.logger, "failed to create agent", err, slog.String("user_id", userID))
	}

	s.logger.InfoContext(ctx, "agent registered",
		slog.String("agent_id", created.ID),
		slog.String("user_id", userID))
	if user.Role == models.RoleUser {
		s.auditLogger.LogRoleChange(ctx, userID, models.RoleUser, models.RoleAgent)
	}

	publish(ctx, s.publisher, s.logger, events.AgentRegistered, events.AgentEvent{
		AgentID: created.ID,
		UserID:  userID,
	})

	return created, nil
}

// UpdateProfile applies the allow-listed changes in upd to the agent owned by userID.
func (s *AgentService) UpdateProfile(ctx context.Context, userID string, upd *models.AgentUpdate) (*models.Agent, error) {
	updated, err := s.repo.UpdateByUserID(ctx, userID, upd)
	if err != nil {
		return nil, clientError(ctx, s.logger, "failed to update agent", err, slog.String("user_id", userID))
	}
	return updated, nil
}

// List returns one page of the public directory.
func (s *AgentService) List(ctx context.Context, f models.AgentFilter) (*AgentPage, error) {
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)

	agents, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, clientError(ctx, s.logger, "failed to list agents", err)
	}

	return &AgentPage{
		Agents: agents,
		Page:   models.NewPage(f.Page, f.Limit, total),
	}, nil
}

func (s *AgentService) GetByID(ctx context.Context, agentID string) (*models.Agent, error) {
	agent, err := s.repo.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrAgentNotFound
		}
		return nil, clientError(ctx, s.logger, "failed to get agent", err, slog.String("agent_id", agentID))
	}
	return agent, nil
}

// AddReview records reviewerID's rating of agentID and returns the agent with
// its recomputed mean rating. Each reviewer may review an agent once.
func (s *AgentService) AddReview(ctx context.Context, agentID, reviewerID string, rating int, comment string) (*models.Agent, error) {
	if rating < 1 || rating > 5 {
		return nil, models.ErrInvalidRating
	}

	updated, err := s.repo.AddReview(ctx, &models.Review{
		AgentID:    agentID,
		ReviewerID: reviewerID,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
	})
	if err != nil {
		return nil, clientError(ctx, s.logger, "failed to add review", err,
			slog.String("agent_id", agentID), slog.String("reviewer_id", reviewerID))
	}

	s.logger.InfoContext(ctx, "agent reviewed",
		slog.String("agent_id", updated.ID),
		slog.String("reviewer_id", reviewerID),
		slog.Float64("rating", updated.Rating))

	publish(ctx, s.publisher, s.logger, events.AgentReviewed, events.AgentEvent{
		AgentID:     updated.ID,
		UserID:      updated.UserID,
		ActorID:     reviewerID,
		Rating:      updated.Rating,
		ClientCount: updated.ClientCount,
	})

	return updated, nil
}

// AddClient adds clientID to the roster of the agent owned by ownerUserID.
func (s *AgentService) AddClient(ctx context.Context, ownerUserID, clientID string) (*models.Agent, error) {
	updated, err := s.repo.AddClient(ctx, ownerUserID, clientID)
	if err != nil {
		return nil, clientError(ctx, s.logger, "failed to add client", err,
			slog.String("user_id", ownerUserID), slog.String("client_id", clientID))
	}

	s.logger.InfoContext(ctx, "agent client added",
		slog.String("agent_id", updated.ID),
		slog.String("client_id", clientID),
		slog.Int("client_count", updated.ClientCount))

	publish(ctx, s.publisher, s.logger, events.AgentClientAdded, events.AgentEvent{
		AgentID:     updated.ID,
		UserID:      ownerUserID,
		ActorID:     clientID,
		Rating:      updated.Rating,
		ClientCount: updated.ClientCount,
	})

	return updated, nil
}

// ListClients returns the profiles of every client on the roster of the agent
// owned by ownerUserID. Clients without a profile are omitted.
func (s *AgentService) ListClients(ctx context.Context, ownerUserID string) ([]*models.Profile, error) {
	agent, err := s.repo.GetByUserID(ctx, ownerUserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrAgentNotFound
		}
		return nil, clientError(ctx, s.logger, "failed to get agent", err, slog.String("user_id", ownerUserID))
	}

	if len(agent.Clients) == 0 {
		return []*models.Profile{}, nil
	}

	profiles, err := s.profiles.ListByUserIDs(ctx, agent.Clients)
	if err != nil {
		return nil, clientError(ctx, s.logger, "failed to load client profiles", err, slog.String("agent_id", agent.ID))
	}
	return profiles, nil
}

// QRCode renders the PNG share code for an existing agent.
func (s *AgentService) QRCode(ctx context.Context, agentID string) ([]byte, error) {
	agent, err := s.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	png, err := s.qr.AgentProfilePNG(agent.ID)
	if err != nil {
		return nil, clientError(ctx, s.logger, "failed to render agent QR code", err, slog.String("agent_id", agent.ID))
	}
	return png, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
