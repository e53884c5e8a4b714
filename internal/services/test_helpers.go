package services

import (
	"context"
	"sync"
	"time"

	"github.com/mbnr/matrimonial/internal/models"
	"github.com/mbnr/matrimonial/internal/notify"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc    func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	ListFunc       func(ctx context.Context, limit, offset int) ([]*models.User, error)
	CountFunc      func(ctx context.Context) (int, error)
	CreateFunc     func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc     func(ctx context.Context, id string, user *models.User) (*models.User, error)
	DeleteFunc     func(ctx context.Context, id string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, user)
	}
	return user, nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockTokenRevocationRepository implements TokenRevocationRepository for testing
type MockTokenRevocationRepository struct {
	RevokeTokenFunc    func(ctx context.Context, jti, userID, tokenType string, expiresAt time.Time, reason string) error
	IsTokenRevokedFunc func(ctx context.Context, jti string) (bool, error)
}

func (m *MockTokenRevocationRepository) RevokeToken(ctx context.Context, jti, userID, tokenType string, expiresAt time.Time, reason string) error {
	if m.RevokeTokenFunc != nil {
		return m.RevokeTokenFunc(ctx, jti, userID, tokenType, expiresAt, reason)
	}
	return nil
}

func (m *MockTokenRevocationRepository) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if m.IsTokenRevokedFunc != nil {
		return m.IsTokenRevokedFunc(ctx, jti)
	}
	return false, nil
}

// MockVerificationRepository implements VerificationRepository for testing
type MockVerificationRepository struct {
	CreateFunc      func(ctx context.Context, v *models.VerificationRequest) (*models.VerificationRequest, error)
	HasPendingFunc  func(ctx context.Context, userID string) (bool, error)
	ListByUserFunc  func(ctx context.Context, userID string) ([]*models.VerificationRequest, error)
	ListPendingFunc func(ctx context.Context) ([]*models.VerificationRequest, error)
	ProcessFunc     func(ctx context.Context, id, decision, reviewerID, rejectionReason string) (*models.VerificationRequest, error)
}

func (m *MockVerificationRepository) Create(ctx context.Context, v *models.VerificationRequest) (*models.VerificationRequest, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, v)
	}
	v.ID = "vr_1"
	v.Status = models.VerificationPending
	return v, nil
}

func (m *MockVerificationRepository) HasPending(ctx context.Context, userID string) (bool, error) {
	if m.HasPendingFunc != nil {
		return m.HasPendingFunc(ctx, userID)
	}
	return false, nil
}

func (m *MockVerificationRepository) ListByUser(ctx context.Context, userID string) ([]*models.VerificationRequest, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return []*models.VerificationRequest{}, nil
}

func (m *MockVerificationRepository) ListPending(ctx context.Context) ([]*models.VerificationRequest, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx)
	}
	return []*models.VerificationRequest{}, nil
}

func (m *MockVerificationRepository) Process(ctx context.Context, id, decision, reviewerID, rejectionReason string) (*models.VerificationRequest, error) {
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, id, decision, reviewerID, rejectionReason)
	}
	return nil, models.ErrVerificationNotFound
}

// MockConnectionRepository implements ConnectionRepository for testing
type MockConnectionRepository struct {
	CreateFunc        func(ctx context.Context, c *models.Connection) (*models.Connection, error)
	ExistsBetweenFunc func(ctx context.Context, a, b string) (bool, error)
	RespondFunc       func(ctx context.Context, id, responderID, decision string) (*models.Connection, error)
	ListForUserFunc   func(ctx context.Context, userID string) ([]*models.Connection, error)
}

func (m *MockConnectionRepository) Create(ctx context.Context, c *models.Connection) (*models.Connection, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	c.ID = "conn_1"
	c.Status = models.ConnectionPending
	return c, nil
}

func (m *MockConnectionRepository) ExistsBetween(ctx context.Context, a, b string) (bool, error) {
	if m.ExistsBetweenFunc != nil {
		return m.ExistsBetweenFunc(ctx, a, b)
	}
	return false, nil
}

func (m *MockConnectionRepository) Respond(ctx context.Context, id, responderID, decision string) (*models.Connection, error) {
	if m.RespondFunc != nil {
		return m.RespondFunc(ctx, id, responderID, decision)
	}
	return nil, models.ErrConnectionNotFound
}

func (m *MockConnectionRepository) ListForUser(ctx context.Context, userID string) ([]*models.Connection, error) {
	if m.ListForUserFunc != nil {
		return m.ListForUserFunc(ctx, userID)
	}
	return []*models.Connection{}, nil
}

// MockAgentRepository implements AgentRepository for testing
type MockAgentRepository struct {
	GetByIDFunc        func(ctx context.Context, id string) (*models.Agent, error)
	GetByUserIDFunc    func(ctx context.Context, userID string) (*models.Agent, error)
	CreateForUserFunc  func(ctx context.Context, a *models.Agent) (*models.Agent, error)
	UpdateByUserIDFunc func(ctx context.Context, userID string, upd *models.AgentUpdate) (*models.Agent, error)
	ListFunc           func(ctx context.Context, f models.AgentFilter) ([]*models.Agent, int, error)
	AddReviewFunc      func(ctx context.Context, review *models.Review) (*models.Agent, error)
	AddClientFunc      func(ctx context.Context, ownerUserID, clientID string) (*models.Agent, error)
}

func (m *MockAgentRepository) GetByID(ctx context.Context, id string) (*models.Agent, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAgentRepository) GetByUserID(ctx context.Context, userID string) (*models.Agent, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

func (m *MockAgentRepository) CreateForUser(ctx context.Context, a *models.Agent) (*models.Agent, error) {
	if m.CreateForUserFunc != nil {
		return m.CreateForUserFunc(ctx, a)
	}
	a.ID = "agent_1"
	return a, nil
}

func (m *MockAgentRepository) UpdateByUserID(ctx context.Context, userID string, upd *models.AgentUpdate) (*models.Agent, error) {
	if m.UpdateByUserIDFunc != nil {
		return m.UpdateByUserIDFunc(ctx, userID, upd)
	}
	return nil, models.ErrAgentNotFound
}

func (m *MockAgentRepository) List(ctx context.Context, f models.AgentFilter) ([]*models.Agent, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f)
	}
	return []*models.Agent{}, 0, nil
}

func (m *MockAgentRepository) AddReview(ctx context.Context, review *models.Review) (*models.Agent, error) {
	if m.AddReviewFunc != nil {
		return m.AddReviewFunc(ctx, review)
	}
	return nil, models.ErrAgentNotFound
}

func (m *MockAgentRepository) AddClient(ctx context.Context, ownerUserID, clientID string) (*models.Agent, error) {
	if m.AddClientFunc != nil {
		return m.AddClientFunc(ctx, ownerUserID, clientID)
	}
	return nil, models.ErrAgentNotFound
}

// MockProfileRepository implements ProfileRepository for testing
type MockProfileRepository struct {
	CreateFunc         func(ctx context.Context, p *models.Profile) (*models.Profile, error)
	GetByUserIDFunc    func(ctx context.Context, userID string) (*models.Profile, error)
	UpdateByUserIDFunc func(ctx context.Context, userID string, upd *models.ProfileUpdate) (*models.Profile, error)
	SearchFunc         func(ctx context.Context, s models.ProfileSearch) ([]*models.Profile, int, error)
	ListByUserIDsFunc  func(ctx context.Context, userIDs []string) ([]*models.Profile, error)
}

func (m *MockProfileRepository) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	p.ID = "profile_1"
	return p, nil
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

func (m *MockProfileRepository) UpdateByUserID(ctx context.Context, userID string, upd *models.ProfileUpdate) (*models.Profile, error) {
	if m.UpdateByUserIDFunc != nil {
		return m.UpdateByUserIDFunc(ctx, userID, upd)
	}
	return nil, models.ErrProfileNotFound
}

func (m *MockProfileRepository) Search(ctx context.Context, s models.ProfileSearch) ([]*models.Profile, int, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, s)
	}
	return []*models.Profile{}, 0, nil
}

func (m *MockProfileRepository) ListByUserIDs(ctx context.Context, userIDs []string) ([]*models.Profile, error) {
	if m.ListByUserIDsFunc != nil {
		return m.ListByUserIDsFunc(ctx, userIDs)
	}
	return []*models.Profile{}, nil
}

// MockNotifier records every notification it is asked to send.
type MockNotifier struct {
	mu           sync.Mutex
	Err          error
	Verification []notify.VerificationProcessed
	Connection   []notify.ConnectionReceived
}

func (m *MockNotifier) VerificationProcessed(ctx context.Context, msg notify.VerificationProcessed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Verification = append(m.Verification, msg)
	return m.Err
}

func (m *MockNotifier) ConnectionReceived(ctx context.Context, msg notify.ConnectionReceived) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Connection = append(m.Connection, msg)
	return m.Err
}

// MockPublisher records published event types.
type MockPublisher struct {
	mu     sync.Mutex
	Err    error
	Types  []string
	Events []any
}

func (m *MockPublisher) Publish(ctx context.Context, eventType string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Types = append(m.Types, eventType)
	m.Events = append(m.Events, data)
	return m.Err
}

func (m *MockPublisher) Close() error { return nil }

// MockQRCodeRenderer implements QRCodeRenderer for testing
type MockQRCodeRenderer struct {
	AgentProfilePNGFunc func(agentID string) ([]byte, error)
}

func (m *MockQRCodeRenderer) AgentProfilePNG(agentID string) ([]byte, error) {
	if m.AgentProfilePNGFunc != nil {
		return m.AgentProfilePNGFunc(agentID)
	}
	return []byte("png:" + agentID), nil
}

// NewTestUser builds an active user with the user role
func NewTestUser(id, email, name string) *models.User {
	now := time.Now()
	return &models.User{
		ID:        id,
		Email:     email,
		Name:      name,
		Status:    models.StatusActive,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestUserWithStatus creates a user with specified status
func NewTestUserWithStatus(id, email, name, status string) *models.User {
	user := NewTestUser(id, email, name)
	user.Status = status
	return user
}

// NewTestAdmin creates an active admin
func NewTestAdmin(id string) *models.User {
	user := NewTestUser(id, id+"@example.com", "Admin "+id)
	user.Role = models.RoleAdmin
	return user
}
