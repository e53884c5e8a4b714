package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mbnr/matrimonial/internal/auth"
	"github.com/mbnr/matrimonial/internal/models"
	"github.com/mbnr/matrimonial/internal/services"
	pkghttp "github.com/mbnr/matrimonial/pkg/http"
)

// AgentService defines the agent operations used by the handler
type AgentService interface {
	Register(ctx context.Context, userID string, in services.RegisterAgentInput) (*models.Agent, error)
	UpdateProfile(ctx context.Context, userID string, upd *models.AgentUpdate) (*models.Agent, error)
	List(ctx context.Context, f models.AgentFilter) (*services.AgentPage, error)
	GetByID(ctx context.Context, agentID string) (*models.Agent, error)
	AddReview(ctx context.Context, agentID, reviewerID string, rating int, comment string) (*models.Agent, error)
	AddClient(ctx context.Context, ownerUserID, clientID string) (*models.Agent, error)
	ListClients(ctx context.Context, ownerUserID string) ([]*models.Profile, error)
	QRCode(ctx context.Context, agentID string) ([]byte, error)
}

// AgentHandler handles agent registration, the directory, reviews and clients
type AgentHandler struct {
	service AgentService
}

func NewAgentHandler(service AgentService) *AgentHandler {
	return &AgentHandler{service: service}
}

type ContactInfoRequest struct {
	Phone   string `json:"phone" validate:"required,max=30"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"max=300"`
}

// RegisterAgentRequest represents the request body for becoming an agent
type RegisterAgentRequest struct {
	BusinessName   string             `json:"businessName" validate:"required,max=200"`
	Experience     int                `json:"experience" validate:"gte=0,lte=100"`
	Specialization []string           `json:"specialization" validate:"max=20,dive,required,max=100"`
	ServingAreas   []string           `json:"servingAreas" validate:"required,min=1,max=50,dive,required,max=100"`
	ContactInfo    ContactInfoRequest `json:"contactInfo"`
	Description    string             `json:"description" validate:"required,max=1000"`
}

// UpdateAgentRequest holds the fields an agent may change. Omitted fields are left as they are.
type UpdateAgentRequest struct {
	BusinessName      *string             `json:"businessName" validate:"omitempty,min=1,max=200"`
	Experience        *int                `json:"experience" validate:"omitempty,gte=0,lte=100"`
	Specialization    []string            `json:"specialization" validate:"omitempty,max=20,dive,required,max=100"`
	ServingAreas      []string            `json:"servingAreas" validate:"omitempty,max=50,dive,required,max=100"`
	ContactInfo       *ContactInfoRequest `json:"contactInfo"`
	Description       *string             `json:"description" validate:"omitempty,max=1000"`
	SuccessfulMatches *int                `json:"successfulMatches" validate:"omitempty,gte=0"`
	IsActive          *bool               `json:"isActive"`
}

func (req *UpdateAgentRequest) toUpdate() *models.AgentUpdate {
	upd := &models.AgentUpdate{
		BusinessName:      req.BusinessName,
		Experience:        req.Experience,
		Specialization:    req.Specialization,
		ServingAreas:      req.ServingAreas,
		Description:       req.Description,
		SuccessfulMatches: req.SuccessfulMatches,
		IsActive:          req.IsActive,
	}
	if req.ContactInfo != nil {
		upd.ContactInfo = &models.ContactInfo{
			Phone:   req.ContactInfo.Phone,
			Email:   req.ContactInfo.Email,
			Address: req.ContactInfo.Address,
		}
	}
	return upd
}

type AddReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

type AgentResponse struct {
	Message string        `json:"message"`
	Agent   *models.Agent `json:"agent"`
}

// AgentListResponse is one page of the agent directory
type AgentListResponse struct {
	Agents []*models.Agent `json:"agents"`
	models.Page
}

// Register handles POST /agents
func (h *AgentHandler) Register(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)

	var req RegisterAgentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	agent, err := h.service.Register(r.Context(), user.ID, services.RegisterAgentInput{
		BusinessName:   req.BusinessName,
		Experience:     req.Experience,
		Specialization: req.Specialization,
		ServingAreas:   req.ServingAreas,
		ContactInfo: models.ContactInfo{
			Phone:   req.ContactInfo.Phone,
			Email:   req.ContactInfo.Email,
			Address: req.ContactInfo.Address,
		},
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, AgentResponse{
		Message: "Agent registered successfully",
		Agent:   agent,
	})
}

// Update handles PUT /agents
func (h *AgentHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)

	var req UpdateAgentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	agent, err := h.service.UpdateProfile(r.Context(), user.ID, req.toUpdate())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, agent)
}

// List handles GET /agents
// Query: specialization, location (comma separated), rating, verified, page, limit
func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := models.AgentFilter{
		Specializations: splitList(q.Get("specialization")),
		Locations:       splitList(q.Get("location")),
		VerifiedOnly:    q.Get("verified") == "true",
	}

	var ok bool
	if filter.MinRating, ok = parseFloatParam(w, q.Get("rating"), "rating"); !ok {
		return
	}
	if filter.Page, ok = parseIntParam(w, q.Get("page"), "page", maxPageParam); !ok {
		return
	}
	if filter.Limit, ok = parseIntParam(w, q.Get("limit"), "limit", maxLimitParam); !ok {
		return
	}

	page, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, AgentListResponse{
		Agents: nonNilSlice(page.Agents),
		Page:   page.Page,
	})
}

// GetByID handles GET /agents/{id}
func (h *AgentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	agent, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, agent)
}

// AddReview handles POST /agents/{id}/reviews
func (h *AgentHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)

	var req AddReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	agent, err := h.service.AddReview(r.Context(), chi.URLParam(r, "id"), user.ID, req.Rating, req.Comment)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, AgentResponse{
		Message: "Review added successfully",
		Agent:   agent,
	})
}

// AddClient handles POST /agents/clients/{userId}
func (h *AgentHandler) AddClient(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)

	agent, err := h.service.AddClient(r.Context(), user.ID, chi.URLParam(r, "userId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, AgentResponse{
		Message: "Client added successfully",
		Agent:   agent,
	})
}

// ListClients handles GET /agents/clients
func (h *AgentHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)

	profiles, err := h.service.ListClients(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, nonNilSlice(profiles))
}

// QRCode handles GET /agents/{id}/qrcode
func (h *AgentHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.service.QRCode(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// splitList parses a comma separated query value, dropping blanks.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Upper bounds for numeric query parameters. Larger values would overflow
// offsets or date arithmetic in the database.
const (
	maxPageParam  = 100000
	maxLimitParam = 1000
	maxAgeParam   = 120
)

// parseIntParam parses an optional query integer in [0, upper].
func parseIntParam(w http.ResponseWriter, raw, name string, upper int) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > upper {
		pkghttp.WriteBadRequest(w, "Invalid "+name+" parameter")
		return 0, false
	}
	return n, true
}

func parseFloatParam(w http.ResponseWriter, raw, name string) (float64, bool) {
	if raw == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		pkghttp.WriteBadRequest(w, "Invalid "+name+" parameter")
		return 0, false
	}
	return f, true
}
