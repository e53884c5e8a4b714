package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/mbnr/matrimonial/internal/models"
	pkghttp "github.com/mbnr/matrimonial/pkg/http"
)

type contextKey string

const (
	// UserContextKey holds the validated *models.TokenClaims.
	UserContextKey contextKey = "user"
	// CurrentUserContextKey holds the *models.User loaded by RequireRole.
	CurrentUserContextKey contextKey = "current_user"
)

// TokenRevocationChecker defines the interface for checking if tokens are revoked
type TokenRevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// UserRepository loads the account behind a token.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// RevocationConfig controls what happens when the revocation store is unreachable.
type RevocationConfig struct {
	FailClosed bool
}

// AuthMiddlewareWithRevocation validates the bearer access token, rejects
// revoked tokens and stores the claims in the request context.
func AuthMiddlewareWithRevocation(tm *TokenManager, revocationChecker TokenRevocationChecker, cfg RevocationConfig, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				pkghttp.WriteUnauthorized(w, "Not authorized, no token")
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Not authorized, token failed")
				return
			}

			if claims.Type != models.TokenTypeAccess {
				pkghttp.WriteUnauthorized(w, "Refresh tokens cannot be used for API access")
				return
			}

			if revocationChecker != nil && claims.ID != "" {
				revoked, err := revocationChecker.IsTokenRevoked(r.Context(), claims.ID)
				if err != nil {
					logger.Error("token revocation check failed",
						slog.String("user_id", claims.UserID),
						slog.Any("error", err),
					)
					if cfg.FailClosed {
						pkghttp.WriteError(w, http.StatusServiceUnavailable, "unavailable", "Unable to verify token status")
						return
					}
				}
				if revoked {
					pkghttp.WriteUnauthorized(w, "Token has been revoked")
					return
				}
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole loads the caller's account fresh from the store, rejects
// inactive accounts and callers whose role is not in roles, and stores the
// account for GetCurrentUser. With no roles any active account passes.
func RequireRole(userRepo UserRepository, roles ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r)
			if claims == nil {
				pkghttp.WriteUnauthorized(w, "Not authorized")
				return
			}

			user, err := userRepo.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteUnauthorized(w, "User not found")
					return
				}
				pkghttp.WriteInternalError(w)
				return
			}

			if user.Status != models.StatusActive {
				pkghttp.WriteForbidden(w, "Account is "+user.Status)
				return
			}

			if len(roles) > 0 && !slices.Contains(roles, user.Role) {
				pkghttp.WriteForbidden(w, "Not authorized as "+strings.Join(roles, " or "))
				return
			}

			ctx := context.WithValue(r.Context(), CurrentUserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext extracts user claims from request context
func GetUserFromContext(r *http.Request) *models.TokenClaims {
	claims, ok := r.Context().Value(UserContextKey).(*models.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

// GetCurrentUser returns the account loaded by RequireRole, or nil.
func GetCurrentUser(r *http.Request) *models.User {
	user, ok := r.Context().Value(CurrentUserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
