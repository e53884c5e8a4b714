package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mbnr/matrimonial/internal/auth"
	"github.com/mbnr/matrimonial/internal/models"
	"github.com/mbnr/matrimonial/internal/services"
	pkghttp "github.com/mbnr/matrimonial/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithCurrentUser adds the access claims and the loaded account to the
// request context, as AuthMiddleware and RequireRole would.
func WithCurrentUser(req *http.Request, user *models.User) *http.Request {
	claims := &models.TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Type:   models.TokenTypeAccess,
	}
	ctx := context.WithValue(req.Context(), auth.UserContextKey, claims)
	ctx = context.WithValue(ctx, auth.CurrentUserContextKey, user)
	return req.WithContext(ctx)
}

// WithURLParams sets chi route parameters on req.
func WithURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// NewTestUser returns an active account with the given role.
func NewTestUser(id, role string) *models.User {
	now := time.Now()
	return &models.User{
		ID:        id,
		Email:     id + "@example.com",
		Name:      "User " + id,
		Role:      role,
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) pkghttp.ErrorResponse {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
	return resp
}

// MockVerificationService implements VerificationService for testing
type MockVerificationService struct {
	SubmitFunc      func(ctx context.Context, userID string, in services.SubmitVerificationInput) (*models.VerificationRequest, error)
	GetStatusFunc   func(ctx context.Context, userID string) ([]*models.VerificationRequest, error)
	ListPendingFunc func(ctx context.Context) ([]*models.VerificationRequest, error)
	ProcessFunc     func(ctx context.Context, requestID, decision, adminID, rejectionReason string) (*models.VerificationRequest, error)
}

func (m *MockVerificationService) Submit(ctx context.Context, userID string, in services.SubmitVerificationInput) (*models.VerificationRequest, error) {
	if m.SubmitFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.SubmitFunc(ctx, userID, in)
}

func (m *MockVerificationService) GetStatus(ctx context.Context, userID string) ([]*models.VerificationRequest, error) {
	if m.GetStatusFunc == nil {
		return nil, nil
	}
	return m.GetStatusFunc(ctx, userID)
}

func (m *MockVerificationService) ListPending(ctx context.Context) ([]*models.VerificationRequest, error) {
	if m.ListPendingFunc == nil {
		return nil, nil
	}
	return m.ListPendingFunc(ctx)
}

func (m *MockVerificationService) Process(ctx context.Context, requestID, decision, adminID, rejectionReason string) (*models.VerificationRequest, error) {
	if m.ProcessFunc == nil {
		return nil, models.ErrVerificationNotFound
	}
	return m.ProcessFunc(ctx, requestID, decision, adminID, rejectionReason)
}

// MockConnectionService implements ConnectionService for testing
type MockConnectionService struct {
	SendFunc     func(ctx context.Context, senderID, receiverID, message string) (*models.Connection, error)
	RespondFunc  func(ctx context.Context, connectionID, responderID, decision string) (*models.Connection, error)
	ListMineFunc func(ctx context.Context, userID string) (*models.ConnectionBuckets, error)
}

func (m *MockConnectionService) Send(ctx context.Context, senderID, receiverID, message string) (*models.Connection, error) {
	if m.SendFunc == nil {
		return nil, models.ErrReceiverNotFound
	}
	return m.SendFunc(ctx, senderID, receiverID, message)
}

func (m *MockConnectionService) Respond(ctx context.Context, connectionID, responderID, decision string) (*models.Connection, error) {
	if m.RespondFunc == nil {
		return nil, models.ErrConnectionNotFound
	}
	return m.RespondFunc(ctx, connectionID, responderID, decision)
}

func (m *MockConnectionService) ListMine(ctx context.Context, userID string) (*models.ConnectionBuckets, error) {
	if m.ListMineFunc == nil {
		return models.PartitionConnections(userID, nil), nil
	}
	return m.ListMineFunc(ctx, userID)
}

// MockAgentService implements AgentService for testing
type MockAgentService struct {
	RegisterFunc      func(ctx context.Context, userID string, in services.RegisterAgentInput) (*models.Agent, error)
	UpdateProfileFunc func(ctx context.Context, userID string, upd *models.AgentUpdate) (*models.Agent, error)
	ListFunc          func(ctx context.Context, f models.AgentFilter) (*services.AgentPage, error)
	GetByIDFunc       func(ctx context.Context, agentID string) (*models.Agent, error)
	AddReviewFunc     func(ctx context.Context, agentID, reviewerID string, rating int, comment string) (*models.Agent, error)
	AddClientFunc     func(ctx context.Context, ownerUserID, clientID string) (*models.Agent, error)
	ListClientsFunc   func(ctx context.Context, ownerUserID string) ([]*models.Profile, error)
	QRCodeFunc        func(ctx context.Context, agentID string) ([]byte, error)
}

func (m *MockAgentService) Register(ctx context.Context, userID string, in services.RegisterAgentInput) (*models.Agent, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrAlreadyAgent
	}
	return m.RegisterFunc(ctx, userID, in)
}

func (m *MockAgentService) UpdateProfile(ctx context.Context, userID string, upd *models.AgentUpdate) (*models.Agent, error) {
	if m.UpdateProfileFunc == nil {
		return nil, models.ErrAgentNotFound
	}
	return m.UpdateProfileFunc(ctx, userID, upd)
}

func (m *MockAgentService) List(ctx context.Context, f models.AgentFilter) (*services.AgentPage, error) {
	if m.ListFunc == nil {
		return &services.AgentPage{Page: models.NewPage(1, models.DefaultPageSize, 0)}, nil
	}
	return m.ListFunc(ctx, f)
}

func (m *MockAgentService) GetByID(ctx context.Context, agentID string) (*models.Agent, error) {
	if m.GetByIDFunc == nil {
		return nil, models.ErrAgentNotFound
	}
	return m.GetByIDFunc(ctx, agentID)
}

func (m *MockAgentService) AddReview(ctx context.Context, agentID, reviewerID string, rating int, comment string) (*models.Agent, error) {
	if m.AddReviewFunc == nil {
		return nil, models.ErrAgentNotFound
	}
	return m.AddReviewFunc(ctx, agentID, reviewerID, rating, comment)
}

func (m *MockAgentService) AddClient(ctx context.Context, ownerUserID, clientID string) (*models.Agent, error) {
	if m.AddClientFunc == nil {
		return nil, models.ErrAgentNotFound
	}
	return m.AddClientFunc(ctx, ownerUserID, clientID)
}

func (m *MockAgentService) ListClients(ctx context.Context, ownerUserID string) ([]*models.Profile, error) {
	if m.ListClientsFunc == nil {
		return nil, nil
	}
	return m.ListClientsFunc(ctx, ownerUserID)
}

func (m *MockAgentService) QRCode(ctx context.Context, agentID string) ([]byte, error) {
	if m.QRCodeFunc == nil {
		return nil, models.ErrAgentNotFound
	}
	return m.QRCodeFunc(ctx, agentID)
}

// MockProfileService implements ProfileService for testing
type MockProfileService struct {
	CreateFunc      func(ctx context.Context, userID string, p *models.Profile) (*models.Profile, error)
	GetMineFunc     func(ctx context.Context, userID string) (*models.Profile, error)
	GetByUserIDFunc func(ctx context.Context, viewerID, ownerID string) (*models.Profile, error)
	UpdateFunc      func(ctx context.Context, userID string, upd *models.ProfileUpdate) (*models.Profile, error)
	SearchFunc      func(ctx context.Context, q models.ProfileSearch) (*services.ProfilePage, error)
}

func (m *MockProfileService) Create(ctx context.Context, userID string, p *models.Profile) (*models.Profile, error) {
	if m.CreateFunc == nil {
		return nil, models.ErrProfileExists
	}
	return m.CreateFunc(ctx, userID, p)
}

func (m *MockProfileService) GetMine(ctx context.Context, userID string) (*models.Profile, error) {
	if m.GetMineFunc == nil {
		return nil, models.ErrProfileNotFound
	}
	return m.GetMineFunc(ctx, userID)
}

func (m *MockProfileService) GetByUserID(ctx context.Context, viewerID, ownerID string) (*models.Profile, error) {
	if m.GetByUserIDFunc == nil {
		return nil, models.ErrProfileNotFound
	}
	return m.GetByUserIDFunc(ctx, viewerID, ownerID)
}

func (m *MockProfileService) Update(ctx context.Context, userID string, upd *models.ProfileUpdate) (*models.Profile, error) {
	if m.UpdateFunc == nil {
		return nil, models.ErrProfileNotFound
	}
	return m.UpdateFunc(ctx, userID, upd)
}

func (m *MockProfileService) Search(ctx context.Context, q models.ProfileSearch) (*services.ProfilePage, error) {
	if m.SearchFunc == nil {
		return &services.ProfilePage{Page: models.NewPage(1, models.DefaultPageSize, 0)}, nil
	}
	return m.SearchFunc(ctx, q)
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	RegisterFunc     func(ctx context.Context, in services.RegisterInput) (*services.AuthResponse, error)
	LoginFunc        func(ctx context.Context, email, password, ip string) (*services.AuthResponse, error)
	RefreshTokenFunc func(ctx context.Context, refreshToken string) (*services.AuthResponse, error)
	LogoutFunc       func(ctx context.Context, accessClaims *models.TokenClaims, refreshToken string) error
}

func (m *MockAuthService) Register(ctx context.Context, in services.RegisterInput) (*services.AuthResponse, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrEmailTaken
	}
	return m.RegisterFunc(ctx, in)
}

func (m *MockAuthService) Login(ctx context.Context, email, password, ip string) (*services.AuthResponse, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrInvalidCredentials
	}
	return m.LoginFunc(ctx, email, password, ip)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*services.AuthResponse, error) {
	if m.RefreshTokenFunc == nil {
		return nil, models.ErrInvalidRefreshToken
	}
	return m.RefreshTokenFunc(ctx, refreshToken)
}

func (m *MockAuthService) Logout(ctx context.Context, accessClaims *models.TokenClaims, refreshToken string) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx, accessClaims, refreshToken)
}

// MockUserService implements UserService for testing
type MockUserService struct {
	GetUserByIDFunc func(ctx context.Context, requester *models.User, id string) (*models.User, error)
	ListUsersFunc   func(ctx context.Context, page, limit int) (*services.UserPage, error)
	UpdateUserFunc  func(ctx context.Context, requester *models.User, id string, upd services.UserUpdate) (*models.User, error)
	DeleteUserFunc  func(ctx context.Context, requester *models.User, id string) error
}

func (m *MockUserService) GetUserByID(ctx context.Context, requester *models.User, id string) (*models.User, error) {
	if m.GetUserByIDFunc == nil {
		return nil, models.ErrUserNotFound
	}
	return m.GetUserByIDFunc(ctx, requester, id)
}

func (m *MockUserService) ListUsers(ctx context.Context, page, limit int) (*services.UserPage, error) {
	if m.ListUsersFunc == nil {
		return &services.UserPage{Page: models.NewPage(1, models.DefaultPageSize, 0)}, nil
	}
	return m.ListUsersFunc(ctx, page, limit)
}

func (m *MockUserService) UpdateUser(ctx context.Context, requester *models.User, id string, upd services.UserUpdate) (*models.User, error) {
	if m.UpdateUserFunc == nil {
		return nil, models.ErrUserNotFound
	}
	return m.UpdateUserFunc(ctx, requester, id, upd)
}

func (m *MockUserService) DeleteUser(ctx context.Context, requester *models.User, id string) error {
	if m.DeleteUserFunc == nil {
		return models.ErrUserNotFound
	}
	return m.DeleteUserFunc(ctx, requester, id)
}

// MockHealthChecker implements HealthChecker for testing
type MockHealthChecker struct {
	Err error
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.Err
}
