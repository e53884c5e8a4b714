package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mbnr/matrimonial/internal/auth"
	"github.com/mbnr/matrimonial/internal/models"
	pkgauth "github.com/mbnr/matrimonial/pkg/auth"
	pkglogger "github.com/mbnr/matrimonial/pkg/logger"
)

// TokenRevocationRepository defines the interface for token revocation operations
type TokenRevocationRepository interface {
	RevokeToken(ctx context.Context, jti, userID, tokenType string, expiresAt time.Time, reason string) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthService handles authentication business logic
type AuthService struct {
	repo        UserRepository
	revokeRepo  TokenRevocationRepository
	tm          *auth.TokenManager
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(repo UserRepository, tm *auth.TokenManager, revokeRepo TokenRevocationRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		repo:        repo,
		revokeRepo:  revokeRepo,
		tm:          tm,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// RegisterInput is a new account request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Gender   string
	DOB      *time.Time
}

// UserResponse represents a user in the HTTP response
type UserResponse struct {
	ID         string     `json:"_id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Gender     string     `json:"gender,omitempty"`
	DOB        *time.Time `json:"dob,omitempty"`
	Role       string     `json:"userType"`
	IsVerified bool       `json:"isVerified"`
	Status     string     `json:"status"`
	CreatedAt  string     `json:"createdAt"`
	UpdatedAt  string     `json:"updatedAt"`
}

// AuthResponse represents the response from auth operations
type AuthResponse struct {
	*UserResponse
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Register creates a new account with the user role and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)

	if email == "" || name == "" {
		return nil, &models.WorkflowError{Kind: models.ErrValidation, Msg: "name and email are required"}
	}

	if err := pkgauth.ValidatePassword(in.Password); err != nil {
		return nil, &models.WorkflowError{Kind: models.ErrValidation, Msg: err.Error()}
	}

	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		s.logger.InfoContext(ctx, "registration failed: user already exists")
		return nil, models.ErrEmailTaken
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.ErrorContext(ctx, "failed to check if user exists", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hashedPassword, err := pkgauth.HashPassword(in.Password)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	createdUser, err := s.repo.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
		Gender:       in.Gender,
		DOB:          in.DOB,
		Role:         models.RoleUser,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrEmailTaken
		}
		s.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", createdUser.ID))
	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: "user_registered",
		UserID:    createdUser.ID,
		Success:   true,
	})

	return s.issueTokens(ctx, createdUser)
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*AuthResponse, error) {
	if email = strings.ToLower(strings.TrimSpace(email)); email == "" {
		s.logger.WarnContext(ctx, "login attempt with empty email")
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Log login failure without exposing email
			s.logger.InfoContext(ctx, "login failed: invalid credentials")
			s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
				EventType:     "login_failed",
				IPAddress:     ip,
				FailureReason: "invalid_credentials",
			})
			return nil, models.ErrInvalidCredentials
		}
		s.logger.ErrorContext(ctx, "failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := validateAccountState(user); err != nil {
		s.logger.InfoContext(ctx, "login blocked due to account state",
			slog.String("user_id", user.ID),
			slog.String("status", user.Status))
		s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			IPAddress:     ip,
			FailureReason: "account_blocked",
		})
		return nil, err
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.InfoContext(ctx, "login failed: invalid credentials")
		s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			IPAddress:     ip,
			FailureReason: "invalid_credentials",
		})
		return nil, models.ErrInvalidCredentials
	}

	resp, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		IPAddress: ip,
		Success:   true,
	})

	return resp, nil
}

// RefreshToken exchanges a refresh token for a new pair. The presented
// refresh token is revoked so it cannot be replayed.
func (s *AuthService) RefreshToken(ctx context.Context, refreshTokenString string) (*AuthResponse, error) {
	if refreshTokenString = strings.TrimSpace(refreshTokenString); refreshTokenString == "" {
		return nil, models.ErrInvalidRefreshToken
	}

	claims, err := s.tm.ValidateToken(refreshTokenString)
	if err != nil {
		s.logger.InfoContext(ctx, "refresh token validation failed", slog.Any("error", err))
		return nil, models.ErrInvalidRefreshToken
	}

	if claims.Type != models.TokenTypeRefresh {
		s.logger.WarnContext(ctx, "refresh attempt with non-refresh token", slog.String("user_id", claims.UserID))
		return nil, models.ErrInvalidRefreshToken
	}

	revoked, err := s.revokeRepo.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to check refresh token revocation", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if revoked {
		s.logger.WarnContext(ctx, "revoked refresh token presented", slog.String("user_id", claims.UserID))
		return nil, models.ErrInvalidRefreshToken
	}

	// Fetch fresh user data
	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.InfoContext(ctx, "user not found for token refresh", slog.String("user_id", claims.UserID))
			return nil, models.ErrInvalidRefreshToken
		}
		s.logger.ErrorContext(ctx, "failed to get user for token refresh", slog.String("user_id", claims.UserID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := validateAccountState(user); err != nil {
		s.logger.InfoContext(ctx, "token refresh blocked due to account state",
			slog.String("user_id", user.ID),
			slog.String("status", user.Status))
		return nil, models.ErrInvalidRefreshToken
	}

	if err := s.revokeRepo.RevokeToken(ctx, claims.ID, claims.UserID, claims.Type, claims.ExpiresAt.Time, "rotated"); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke rotated refresh token", slog.String("jti", claims.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.InfoContext(ctx, "token refreshed", slog.String("user_id", user.ID))
	return s.issueTokens(ctx, user)
}

// Logout revokes the presented access token and, when given, its refresh token.
func (s *AuthService) Logout(ctx context.Context, accessClaims *models.TokenClaims, refreshToken string) error {
	err := s.revokeRepo.RevokeToken(ctx, accessClaims.ID, accessClaims.UserID, accessClaims.Type, accessClaims.ExpiresAt.Time, "logout")
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke token", slog.String("jti", accessClaims.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if refreshToken = strings.TrimSpace(refreshToken); refreshToken != "" {
		claims, err := s.tm.ValidateToken(refreshToken)
		// a refresh token belonging to someone else is ignored, not revoked
		if err == nil && claims.Type == models.TokenTypeRefresh && claims.UserID == accessClaims.UserID {
			if err := s.revokeRepo.RevokeToken(ctx, claims.ID, claims.UserID, claims.Type, claims.ExpiresAt.Time, "logout"); err != nil {
				s.logger.ErrorContext(ctx, "failed to revoke refresh token", slog.String("jti", claims.ID), slog.Any("error", err))
				return models.ErrInternalServer
			}
		}
	}

	s.logger.InfoContext(ctx, "user logged out", slog.String("user_id", accessClaims.UserID))
	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: "logout",
		UserID:    accessClaims.UserID,
		Success:   true,
	})
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*AuthResponse, error) {
	accessToken, err := s.tm.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to generate access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	refreshToken, err := s.tm.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to generate refresh token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &AuthResponse{
		UserResponse: NewUserResponse(user),
		Token:        accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// validateAccountState checks if user account is in valid state for authentication
func validateAccountState(user *models.User) error {
	switch user.Status {
	case models.StatusDisabled:
		return models.ErrAccountDisabled
	case models.StatusSuspended:
		return models.ErrAccountSuspended
	case models.StatusActive:
		return nil
	default:
		return fmt.Errorf("unknown account status: %s", user.Status)
	}
}

// NewUserResponse converts a user model to its response DTO
func NewUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Gender:     user.Gender,
		DOB:        user.DOB,
		Role:       user.Role,
		IsVerified: user.Verified,
		Status:     user.Status,
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  user.UpdatedAt.Format(time.RFC3339),
	}
}
