package routes

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mbnr/matrimonial/internal/auth"
	"github.com/mbnr/matrimonial/internal/handlers"
	"github.com/mbnr/matrimonial/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers map[string]*models.User

func (s stubUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, models.ErrNotFound
}

type noRevocations struct{}

func (noRevocations) IsTokenRevoked(ctx context.Context, jti string) (bool, error) { return false, nil }

func newTestRouter(t *testing.T, users stubUsers) (http.Handler, *auth.TokenManager) {
	t.Helper()

	tm := auth.NewTokenManager("routes-test-secret-0123456789", time.Minute, time.Hour)
	agents := &handlers.MockAgentService{
		ListClientsFunc: func(ctx context.Context, ownerUserID string) ([]*models.Profile, error) {
			return []*models.Profile{}, nil
		},
	}

	h := Handlers{
		Auth:         handlers.NewAuthHandler(&handlers.MockAuthService{}, nil),
		Users:        handlers.NewUserHandler(&handlers.MockUserService{}),
		Profiles:     handlers.NewProfileHandler(&handlers.MockProfileService{}),
		Connections:  handlers.NewConnectionHandler(&handlers.MockConnectionService{}),
		Verification: handlers.NewVerificationHandler(&handlers.MockVerificationService{}),
		Agents:       handlers.NewAgentHandler(agents),
	}

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		RegisterRoutes(r, h, tm, users, noRevocations{}, nil,
			Limits{AuthPerMinute: 100, WritePerMinute: 100},
			slog.New(slog.NewTextHandler(io.Discard, nil)))
	})
	return router, tm
}

func testUser(id, role, status string) *models.User {
	return &models.User{ID: id, Email: id + "@example.com", Name: id, Role: role, Status: status}
}

func do(t *testing.T, h http.Handler, tm *auth.TokenManager, method, path, userID string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if userID != "" {
		token, err := tm.GenerateAccessToken(userID, userID+"@example.com")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRoutes_Access(t *testing.T) {
	users := stubUsers{
		"user":      testUser("user", models.RoleUser, models.StatusActive),
		"agent":     testUser("agent", models.RoleAgent, models.StatusActive),
		"admin":     testUser("admin", models.RoleAdmin, models.StatusActive),
		"suspended": testUser("suspended", models.RoleUser, models.StatusSuspended),
	}
	router, tm := newTestRouter(t, users)

	tests := []struct {
		name       string
		method     string
		path       string
		userID     string
		wantStatus int
	}{
		{"public agent directory", http.MethodGet, "/api/agents", "", http.StatusOK},
		{"public agent detail", http.MethodGet, "/api/agents/a1", "", http.StatusNotFound},
		{"verification needs token", http.MethodGet, "/api/verification/status", "", http.StatusUnauthorized},
		{"user reads own status", http.MethodGet, "/api/verification/status", "user", http.StatusOK},
		{"suspended account rejected", http.MethodGet, "/api/verification/status", "suspended", http.StatusForbidden},
		{"unknown account rejected", http.MethodGet, "/api/verification/status", "ghost", http.StatusUnauthorized},
		{"pending list is admin only", http.MethodGet, "/api/verification/pending", "user", http.StatusForbidden},
		{"admin lists pending", http.MethodGet, "/api/verification/pending", "admin", http.StatusOK},
		{"user list is admin only", http.MethodGet, "/api/users", "agent", http.StatusForbidden},
		{"clients is agent only", http.MethodGet, "/api/agents/clients", "user", http.StatusForbidden},
		{"agent lists clients", http.MethodGet, "/api/agents/clients", "agent", http.StatusOK},
		{"admin lists clients", http.MethodGet, "/api/agents/clients", "admin", http.StatusOK},
		{"connections of current user", http.MethodGet, "/api/profiles/connections/me", "user", http.StatusOK},
		{"delete needs token", http.MethodDelete, "/api/users/user", "", http.StatusUnauthorized},
		{"delete reaches user service", http.MethodDelete, "/api/users/user", "user", http.StatusNotFound},
		{"logout needs token", http.MethodPost, "/api/auth/logout", "", http.StatusUnauthorized},
		{"logout", http.MethodPost, "/api/auth/logout", "user", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, tm, tt.method, tt.path, tt.userID)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestRoutes_AuthEndpointsAreRateLimited(t *testing.T) {
	tm := auth.NewTokenManager("routes-test-secret-0123456789", time.Minute, time.Hour)
	h := Handlers{
		Auth:         handlers.NewAuthHandler(&handlers.MockAuthService{}, nil),
		Users:        handlers.NewUserHandler(&handlers.MockUserService{}),
		Profiles:     handlers.NewProfileHandler(&handlers.MockProfileService{}),
		Connections:  handlers.NewConnectionHandler(&handlers.MockConnectionService{}),
		Verification: handlers.NewVerificationHandler(&handlers.MockVerificationService{}),
		Agents:       handlers.NewAgentHandler(&handlers.MockAgentService{}),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, h, tm, stubUsers{}, noRevocations{}, nil,
		Limits{AuthPerMinute: 2, WritePerMinute: 100},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	var last int
	for i := 0; i < 3; i++ {
		last = do(t, router, tm, http.MethodPost, "/auth/login", "").Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestRoutes_AdminOwningAgentRecordManagesIt(t *testing.T) {
	users := stubUsers{
		"admin": testUser("admin", models.RoleAdmin, models.StatusActive),
		"u2":    testUser("u2", models.RoleUser, models.StatusActive),
	}
	tm := auth.NewTokenManager("routes-test-secret-0123456789", time.Minute, time.Hour)

	var owners []string
	agents := &handlers.MockAgentService{
		UpdateProfileFunc: func(ctx context.Context, userID string, upd *models.AgentUpdate) (*models.Agent, error) {
			owners = append(owners, userID)
			return &models.Agent{ID: "agent_1", UserID: userID}, nil
		},
		AddClientFunc: func(ctx context.Context, ownerUserID, clientID string) (*models.Agent, error) {
			owners = append(owners, ownerUserID)
			return &models.Agent{ID: "agent_1", UserID: ownerUserID, Clients: []string{clientID}, ClientCount: 1}, nil
		},
	}
	h := Handlers{
		Auth:         handlers.NewAuthHandler(&handlers.MockAuthService{}, nil),
		Users:        handlers.NewUserHandler(&handlers.MockUserService{}),
		Profiles:     handlers.NewProfileHandler(&handlers.MockProfileService{}),
		Connections:  handlers.NewConnectionHandler(&handlers.MockConnectionService{}),
		Verification: handlers.NewVerificationHandler(&handlers.MockVerificationService{}),
		Agents:       handlers.NewAgentHandler(agents),
	}
	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		RegisterRoutes(r, h, tm, users, noRevocations{}, nil,
			Limits{AuthPerMinute: 100, WritePerMinute: 100},
			slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	token, err := tm.GenerateAccessToken("admin", "admin@example.com")
	require.NoError(t, err)

	update := httptest.NewRequest(http.MethodPut, "/api/agents", strings.NewReader(`{"description":"Matchmaking for the city"}`))
	update.Header.Set("Authorization", "Bearer "+token)
	update.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, update)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, router, tm, http.MethodPost, "/api/agents/clients/u2", "admin")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, []string{"admin", "admin"}, owners)
}
