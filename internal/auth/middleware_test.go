package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mbnr/matrimonial/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s *stubRevocations) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return s.revoked[jti], s.err
}

type stubUsers struct {
	users map[string]*models.User
	err   error
}

func (s *stubUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Minute, time.Hour)
	access, err := tm.GenerateAccessToken("user-1", "")
	require.NoError(t, err)
	refresh, err := tm.GenerateRefreshToken("user-1", "")
	require.NoError(t, err)

	accessClaims, err := tm.ValidateToken(access)
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		h := AuthMiddlewareWithRevocation(tm, nil, RevocationConfig{}, discardLogger())(okHandler(t))
		assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	})

	t.Run("malformed token", func(t *testing.T) {
		h := AuthMiddlewareWithRevocation(tm, nil, RevocationConfig{}, discardLogger())(okHandler(t))
		assert.Equal(t, http.StatusUnauthorized, serve(h, "not-a-jwt").Code)
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		h := AuthMiddlewareWithRevocation(tm, nil, RevocationConfig{}, discardLogger())(okHandler(t))
		assert.Equal(t, http.StatusUnauthorized, serve(h, refresh).Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		checker := &stubRevocations{revoked: map[string]bool{accessClaims.ID: true}}
		h := AuthMiddlewareWithRevocation(tm, checker, RevocationConfig{}, discardLogger())(okHandler(t))
		assert.Equal(t, http.StatusUnauthorized, serve(h, access).Code)
	})

	t.Run("revocation store down fails closed", func(t *testing.T) {
		checker := &stubRevocations{err: errors.New("db down")}
		h := AuthMiddlewareWithRevocation(tm, checker, RevocationConfig{FailClosed: true}, discardLogger())(okHandler(t))
		assert.Equal(t, http.StatusServiceUnavailable, serve(h, access).Code)
	})

	t.Run("revocation store down fails open", func(t *testing.T) {
		checker := &stubRevocations{err: errors.New("db down")}
		h := AuthMiddlewareWithRevocation(tm, checker, RevocationConfig{FailClosed: false}, discardLogger())(okHandler(t))
		assert.Equal(t, http.StatusOK, serve(h, access).Code)
	})

	t.Run("valid token sets claims", func(t *testing.T) {
		var got *models.TokenClaims
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = GetUserFromContext(r)
		})
		h := AuthMiddlewareWithRevocation(tm, &stubRevocations{}, RevocationConfig{}, discardLogger())(next)
		serve(h, access)
		require.NotNil(t, got)
		assert.Equal(t, "user-1", got.UserID)
	})
}

func TestRequireRole(t *testing.T) {
	users := &stubUsers{users: map[string]*models.User{
		"u":         {ID: "u", Role: models.RoleUser, Status: models.StatusActive},
		"a":         {ID: "a", Role: models.RoleAdmin, Status: models.StatusActive},
		"g":         {ID: "g", Role: models.RoleAgent, Status: models.StatusActive},
		"suspended": {ID: "suspended", Role: models.RoleAdmin, Status: models.StatusSuspended},
	}}

	withClaims := func(userID string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if userID == "" {
			return req
		}
		ctx := context.WithValue(req.Context(), UserContextKey, &models.TokenClaims{UserID: userID})
		return req.WithContext(ctx)
	}

	tests := []struct {
		name   string
		userID string
		roles  []string
		want   int
	}{
		{"no claims", "", []string{models.RoleAdmin}, http.StatusUnauthorized},
		{"unknown user", "missing", nil, http.StatusUnauthorized},
		{"admin allowed", "a", []string{models.RoleAdmin}, http.StatusOK},
		{"user denied admin route", "u", []string{models.RoleAdmin}, http.StatusForbidden},
		{"agent allowed", "g", []string{models.RoleAgent}, http.StatusOK},
		{"any role", "u", nil, http.StatusOK},
		{"suspended denied", "suspended", []string{models.RoleAdmin}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var current *models.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				current = GetCurrentUser(r)
				w.WriteHeader(http.StatusOK)
			})
			w := httptest.NewRecorder()
			RequireRole(users, tt.roles...)(next).ServeHTTP(w, withClaims(tt.userID))

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				require.NotNil(t, current)
				assert.Equal(t, tt.userID, current.ID)
			}
		})
	}

	t.Run("store error", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireRole(&stubUsers{err: errors.New("boom")})(okHandler(t)).ServeHTTP(w, withClaims("u"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
