package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mbnr/matrimonial/internal/auth"
	"github.com/mbnr/matrimonial/internal/models"
	"github.com/mbnr/matrimonial/internal/services"
	pkghttp "github.com/mbnr/matrimonial/pkg/http"
)

// dobLayout is the wire format of date-of-birth fields.
const dobLayout = "2006-01-02"

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResponse, error)
	Login(ctx context.Context, email, password, ip string) (*services.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.AuthResponse, error)
	Logout(ctx context.Context, accessClaims *models.TokenClaims, refreshToken string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service AuthServiceInterface
	ips     *pkghttp.IPResolver
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, ips *pkghttp.IPResolver) *AuthHandler {
	return &AuthHandler{
		service: service,
		ips:     ips,
	}
}

// Request DTOs

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Gender   string `json:"gender" validate:"omitempty,max=20"`
	DOB      string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutRequest optionally names the refresh token to revoke alongside the access token
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register handles user registration
// @Summary User registration
// @Accept json
// @Param request body RegisterRequest true "Register request"
// @Produce json
// @Success 201 {object} services.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Gender:   req.Gender,
	}
	if req.DOB != "" {
		// format already checked by the datetime tag
		dob, _ := time.Parse(dobLayout, req.DOB)
		in.DOB = &dob
	}

	authResp, err := h.service.Register(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, authResp)
}

// Login handles user login
// @Summary User login
// @Accept json
// @Param request body LoginRequest true "Login request"
// @Produce json
// @Success 200 {object} services.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	authResp, err := h.service.Login(r.Context(), req.Email, req.Password, h.ips.ClientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrAccountDisabled),
			errors.Is(err, models.ErrAccountSuspended):
			// Same response as bad credentials to prevent user enumeration
			pkghttp.WriteUnauthorized(w, models.ErrInvalidCredentials.Msg)
		default:
			writeServiceError(w, err)
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, authResp)
}

// RefreshToken handles token refresh. The presented refresh token is revoked.
// @Summary Refresh access token
// @Accept json
// @Param request body RefreshTokenRequest true "Refresh token request"
// @Produce json
// @Success 200 {object} services.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	authResp, err := h.service.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrAccountDisabled),
			errors.Is(err, models.ErrAccountSuspended):
			pkghttp.WriteUnauthorized(w, models.ErrInvalidRefreshToken.Msg)
		default:
			writeServiceError(w, err)
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, authResp)
}

// Logout handles user logout by revoking the access token
// @Summary User logout
// @Accept json
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil || claims.Type != models.TokenTypeAccess {
		pkghttp.WriteUnauthorized(w, "Not authorized")
		return
	}

	var req LogoutRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	if err := h.service.Logout(r.Context(), claims, req.RefreshToken); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
