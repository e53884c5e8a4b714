package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mbnr/matrimonial/internal/auth"
	"github.com/mbnr/matrimonial/internal/models"
	"github.com/mbnr/matrimonial/internal/services"
	pkghttp "github.com/mbnr/matrimonial/pkg/http"
)

// UserService defines the interface for user business logic
type UserService interface {
	GetUserByID(ctx context.Context, requester *models.User, id string) (*models.User, error)
	ListUsers(ctx context.Context, page, limit int) (*services.UserPage, error)
	UpdateUser(ctx context.Context, requester *models.User, id string, upd services.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, requester *models.User, id string) error
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	service UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// UpdateUserRequest represents the request body for updating a user
type UpdateUserRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=100"`
	Gender *string `json:"gender" validate:"omitempty,max=20"`
	DOB    *string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
}

// ListUsersResponse represents one page of users
type ListUsersResponse struct {
	Users []*services.UserResponse `json:"users"`
	models.Page
}

// GetUser retrieves a user by ID
//
// @Summary Get user by ID
// @Param id path string true "User ID"
// @Produce json
// @Success 200 {object} services.UserResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUserByID(r.Context(), auth.GetCurrentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, services.NewUserResponse(user))
}

// ListUsers retrieves a page of users
//
// @Summary List users
// @Param page query int false "Page (default 1)" default(1)
// @Param limit query int false "Limit (default 10)" default(10)
// @Produce json
// @Success 200 {object} ListUsersResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, ok := parseIntParam(w, q.Get("page"), "page", maxPageParam)
	if !ok {
		return
	}
	limit, ok := parseIntParam(w, q.Get("limit"), "limit", maxLimitParam)
	if !ok {
		return
	}

	result, err := h.service.ListUsers(r.Context(), page, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	users := make([]*services.UserResponse, len(result.Users))
	for i, u := range result.Users {
		users[i] = services.NewUserResponse(u)
	}

	pkghttp.WriteJSON(w, http.StatusOK, ListUsersResponse{
		Users: users,
		Page:  result.Page,
	})
}

// UpdateUser updates the account fields of a user
//
// @Summary Update user
// @Param id path string true "User ID"
// @Accept json
// @Param request body UpdateUserRequest true "Update user request"
// @Produce json
// @Success 200 {object} services.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	upd := services.UserUpdate{
		Name:   req.Name,
		Gender: req.Gender,
	}
	if req.DOB != nil {
		dob, _ := time.Parse(dobLayout, *req.DOB)
		upd.DOB = &dob
	}

	user, err := h.service.UpdateUser(r.Context(), auth.GetCurrentUser(r), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, services.NewUserResponse(user))
}

// DeleteUser deletes a user account and everything it owns
//
// @Summary Delete a user
// @Param id path string true "User ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), auth.GetCurrentUser(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
