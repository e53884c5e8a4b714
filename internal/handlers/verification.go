package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mbnr/matrimonial/internal/auth"
	"github.com/mbnr/matrimonial/internal/models"
	"github.com/mbnr/matrimonial/internal/services"
	pkghttp "github.com/mbnr/matrimonial/pkg/http"
)

// VerificationService defines the verification workflow used by the handler
type VerificationService interface {
	Submit(ctx context.Context, userID string, in services.SubmitVerificationInput) (*models.VerificationRequest, error)
	GetStatus(ctx context.Context, userID string) ([]*models.VerificationRequest, error)
	ListPending(ctx context.Context) ([]*models.VerificationRequest, error)
	Process(ctx context.Context, requestID, decision, adminID, rejectionReason string) (*models.VerificationRequest, error)
}

// VerificationHandler handles identity verification requests
type VerificationHandler struct {
	service VerificationService
}

func NewVerificationHandler(service VerificationService) *VerificationHandler {
	return &VerificationHandler{service: service}
}

// SubmitVerificationRequest represents the request body for a verification submission
type SubmitVerificationRequest struct {
	DocumentType   string `json:"documentType" validate:"required,oneof=id_card passport driver_license business_license other"`
	DocumentNumber string `json:"documentNumber" validate:"required,max=100"`
	DocumentImage  string `json:"documentImage" validate:"required,max=2048"`
}

// ProcessVerificationRequest represents an admin decision
type ProcessVerificationRequest struct {
	Status          string `json:"status" validate:"required,oneof=approved rejected"`
	RejectionReason string `json:"rejectionReason" validate:"max=500"`
}

// VerificationResponse wraps a single request with a status message
type VerificationResponse struct {
	Message      string                      `json:"message"`
	Verification *models.VerificationRequest `json:"verification"`
}

// Submit handles POST /verification
func (h *VerificationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)

	var req SubmitVerificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v, err := h.service.Submit(r.Context(), user.ID, services.SubmitVerificationInput{
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		DocumentImage:  req.DocumentImage,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, VerificationResponse{
		Message:      "Verification request submitted successfully",
		Verification: v,
	})
}

// GetStatus handles GET /verification/status
func (h *VerificationHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)

	requests, err := h.service.GetStatus(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, nonNilSlice(requests))
}

// ListPending handles GET /verification/pending (admin)
func (h *VerificationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.ListPending(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, nonNilSlice(requests))
}

// Process handles PUT /verification/{id} (admin)
func (h *VerificationHandler) Process(w http.ResponseWriter, r *http.Request) {
	admin := auth.GetCurrentUser(r)

	var req ProcessVerificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v, err := h.service.Process(r.Context(), chi.URLParam(r, "id"), req.Status, admin.ID, req.RejectionReason)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, VerificationResponse{
		Message:      "Verification request " + v.Status,
		Verification: v,
	})
}

// nonNilSlice makes empty lists encode as [] rather than null.
func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
