package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mbnr/matrimonial/internal/auth"
	"github.com/mbnr/matrimonial/internal/models"
	pkghttp "github.com/mbnr/matrimonial/pkg/http"
)

// ConnectionService defines the connection workflow used by the handler
type ConnectionService interface {
	Send(ctx context.Context, senderID, receiverID, message string) (*models.Connection, error)
	Respond(ctx context.Context, connectionID, responderID, decision string) (*models.Connection, error)
	ListMine(ctx context.Context, userID string) (*models.ConnectionBuckets, error)
}

// ConnectionHandler handles connection requests between users
type ConnectionHandler struct {
	service ConnectionService
}

func NewConnectionHandler(service ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{service: service}
}

// SendConnectionRequest is the optional body of a connection request
type SendConnectionRequest struct {
	Message string `json:"message" validate:"max=500"`
}

// RespondConnectionRequest carries the receiver's decision
type RespondConnectionRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}

type ConnectionResponse struct {
	Message    string             `json:"message"`
	Connection *models.Connection `json:"connection"`
}

// Send handles POST /profiles/connect/{id}. The body is optional.
func (h *ConnectionHandler) Send(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)

	var req SendConnectionRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	conn, err := h.service.Send(r.Context(), user.ID, chi.URLParam(r, "id"), req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, ConnectionResponse{
		Message:    "Connection request sent successfully",
		Connection: conn,
	})
}

// Respond handles PUT /profiles/connect/{id}
func (h *ConnectionHandler) Respond(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)

	var req RespondConnectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	conn, err := h.service.Respond(r.Context(), chi.URLParam(r, "id"), user.ID, req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, ConnectionResponse{
		Message:    "Connection request " + conn.Status,
		Connection: conn,
	})
}

// ListMine handles GET /profiles/connections/me
func (h *ConnectionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)

	buckets, err := h.service.ListMine(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, buckets)
}
