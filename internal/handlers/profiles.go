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

// ProfileService defines the profile operations used by the handler
type ProfileService interface {
	Create(ctx context.Context, userID string, p *models.Profile) (*models.Profile, error)
	GetMine(ctx context.Context, userID string) (*models.Profile, error)
	GetByUserID(ctx context.Context, viewerID, ownerID string) (*models.Profile, error)
	Update(ctx context.Context, userID string, upd *models.ProfileUpdate) (*models.Profile, error)
	Search(ctx context.Context, q models.ProfileSearch) (*services.ProfilePage, error)
}

// ProfileHandler handles matrimonial profiles
type ProfileHandler struct {
	service ProfileService
}

func NewProfileHandler(service ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

type FamilyDetailsRequest struct {
	FatherOccupation string `json:"fatherOccupation" validate:"max=100"`
	MotherOccupation string `json:"motherOccupation" validate:"max=100"`
	Siblings         string `json:"siblings" validate:"max=200"`
	FamilyType       string `json:"familyType" validate:"omitempty,oneof=Joint Nuclear"`
	FamilyValues     string `json:"familyValues" validate:"omitempty,oneof=Traditional Moderate Liberal"`
}

type PartnerPreferencesRequest struct {
	AgeRange struct {
		Min int `json:"min" validate:"gte=18,lte=100"`
		Max int `json:"max" validate:"gte=18,lte=100,gtefield=Min"`
	} `json:"ageRange"`
	HeightRange struct {
		Min string `json:"min" validate:"max=20"`
		Max string `json:"max" validate:"max=20"`
	} `json:"heightRange"`
	MaritalStatus []string `json:"maritalStatus" validate:"dive,oneof='Never Married' Divorced Widowed Separated"`
	Education     string   `json:"education" validate:"max=100"`
	Occupation    string   `json:"occupation" validate:"max=100"`
	Religion      string   `json:"religion" validate:"max=100"`
	Caste         string   `json:"caste" validate:"max=100"`
	Location      string   `json:"location" validate:"max=200"`
}

func (p *PartnerPreferencesRequest) model() models.PartnerPreferences {
	prefs := models.PartnerPreferences{
		AgeRange:      models.AgeRange{Min: p.AgeRange.Min, Max: p.AgeRange.Max},
		HeightRange:   models.HeightRange{Min: p.HeightRange.Min, Max: p.HeightRange.Max},
		MaritalStatus: p.MaritalStatus,
		Education:     p.Education,
		Occupation:    p.Occupation,
		Religion:      p.Religion,
		Caste:         p.Caste,
		Location:      p.Location,
	}
	if len(prefs.MaritalStatus) == 0 {
		prefs.MaritalStatus = []string{"Never Married"}
	}
	return prefs
}

func (f *FamilyDetailsRequest) model() models.FamilyDetails {
	return models.FamilyDetails{
		FatherOccupation: f.FatherOccupation,
		MotherOccupation: f.MotherOccupation,
		Siblings:         f.Siblings,
		FamilyType:       f.FamilyType,
		FamilyValues:     f.FamilyValues,
	}
}

// CreateProfileRequest represents the request body for creating a profile
type CreateProfileRequest struct {
	Height             string                    `json:"height" validate:"required,max=20"`
	MaritalStatus      string                    `json:"maritalStatus" validate:"required,oneof='Never Married' Divorced Widowed Separated"`
	Religion           string                    `json:"religion" validate:"required,max=100"`
	Caste              string                    `json:"caste" validate:"max=100"`
	MotherTongue       string                    `json:"motherTongue" validate:"max=100"`
	Location           string                    `json:"location" validate:"required,max=200"`
	Education          string                    `json:"education" validate:"required,max=100"`
	Occupation         string                    `json:"occupation" validate:"required,max=100"`
	Company            string                    `json:"company" validate:"max=200"`
	Income             string                    `json:"income" validate:"max=100"`
	About              string                    `json:"about" validate:"required,max=1000"`
	Interests          []string                  `json:"interests" validate:"max=50,dive,max=100"`
	FamilyDetails      FamilyDetailsRequest      `json:"familyDetails"`
	PartnerPreferences PartnerPreferencesRequest `json:"partnerPreferences"`
	ProfileVisibility  string                    `json:"profileVisibility" validate:"omitempty,oneof=public private members"`
	ProfilePhoto       string                    `json:"profilePhoto" validate:"max=2048"`
	Photos             []string                  `json:"photos" validate:"max=20,dive,max=2048"`
}

// UpdateProfileRequest holds the profile fields a user may change. Omitted fields are left as they are.
type UpdateProfileRequest struct {
	Height             *string                    `json:"height" validate:"omitempty,min=1,max=20"`
	MaritalStatus      *string                    `json:"maritalStatus" validate:"omitempty,oneof='Never Married' Divorced Widowed Separated"`
	Religion           *string                    `json:"religion" validate:"omitempty,min=1,max=100"`
	Caste              *string                    `json:"caste" validate:"omitempty,max=100"`
	MotherTongue       *string                    `json:"motherTongue" validate:"omitempty,max=100"`
	Location           *string                    `json:"location" validate:"omitempty,min=1,max=200"`
	Education          *string                    `json:"education" validate:"omitempty,min=1,max=100"`
	Occupation         *string                    `json:"occupation" validate:"omitempty,min=1,max=100"`
	Company            *string                    `json:"company" validate:"omitempty,max=200"`
	Income             *string                    `json:"income" validate:"omitempty,max=100"`
	About              *string                    `json:"about" validate:"omitempty,min=1,max=1000"`
	Interests          []string                   `json:"interests" validate:"omitempty,max=50,dive,max=100"`
	FamilyDetails      *FamilyDetailsRequest      `json:"familyDetails"`
	PartnerPreferences *PartnerPreferencesRequest `json:"partnerPreferences"`
	ProfileVisibility  *string                    `json:"profileVisibility" validate:"omitempty,oneof=public private members"`
	ProfilePhoto       *string                    `json:"profilePhoto" validate:"omitempty,max=2048"`
	Photos             []string                   `json:"photos" validate:"omitempty,max=20,dive,max=2048"`
	IsActive           *bool                      `json:"isActive"`
}

func (req *UpdateProfileRequest) toUpdate() *models.ProfileUpdate {
	upd := &models.ProfileUpdate{
		Height:            req.Height,
		MaritalStatus:     req.MaritalStatus,
		Religion:          req.Religion,
		Caste:             req.Caste,
		MotherTongue:      req.MotherTongue,
		Location:          req.Location,
		Education:         req.Education,
		Occupation:        req.Occupation,
		Company:           req.Company,
		Income:            req.Income,
		About:             req.About,
		Interests:         req.Interests,
		ProfileVisibility: req.ProfileVisibility,
		ProfilePhoto:      req.ProfilePhoto,
		Photos:            req.Photos,
		IsActive:          req.IsActive,
	}
	if req.FamilyDetails != nil {
		fd := req.FamilyDetails.model()
		upd.FamilyDetails = &fd
	}
	if req.PartnerPreferences != nil {
		pp := req.PartnerPreferences.model()
		upd.PartnerPreferences = &pp
	}
	return upd
}

// ProfileListResponse is one page of search results
type ProfileListResponse struct {
	Profiles []*models.Profile `json:"profiles"`
	models.Page
}

// Create handles POST /profiles
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)

	var req CreateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.service.Create(r.Context(), user.ID, &models.Profile{
		Height:             req.Height,
		MaritalStatus:      req.MaritalStatus,
		Religion:           req.Religion,
		Caste:              req.Caste,
		MotherTongue:       req.MotherTongue,
		Location:           req.Location,
		Education:          req.Education,
		Occupation:         req.Occupation,
		Company:            req.Company,
		Income:             req.Income,
		About:              req.About,
		Interests:          req.Interests,
		FamilyDetails:      req.FamilyDetails.model(),
		PartnerPreferences: req.PartnerPreferences.model(),
		ProfileVisibility:  req.ProfileVisibility,
		ProfilePhoto:       req.ProfilePhoto,
		Photos:             req.Photos,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, profile)
}

// GetMine handles GET /profiles/me
func (h *ProfileHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)

	profile, err := h.service.GetMine(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, profile)
}

// GetByUserID handles GET /profiles/{id}, where id is the owning user's id
func (h *ProfileHandler) GetByUserID(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)

	profile, err := h.service.GetByUserID(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, profile)
}

// Update handles PUT /profiles
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)

	var req UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.service.Update(r.Context(), user.ID, req.toUpdate())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, profile)
}

// Search handles GET /profiles/search
// Query: gender, ageMin, ageMax, religion, caste, maritalStatus, location, page, limit
func (h *ProfileHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	search := models.ProfileSearch{
		Gender:        q.Get("gender"),
		Religion:      q.Get("religion"),
		Caste:         q.Get("caste"),
		MaritalStatus: q.Get("maritalStatus"),
		Location:      q.Get("location"),
	}

	var ok bool
	if search.AgeMin, ok = parseIntParam(w, q.Get("ageMin"), "ageMin", maxAgeParam); !ok {
		return
	}
	if search.AgeMax, ok = parseIntParam(w, q.Get("ageMax"), "ageMax", maxAgeParam); !ok {
		return
	}
	if search.Page, ok = parseIntParam(w, q.Get("page"), "page", maxPageParam); !ok {
		return
	}
	if search.Limit, ok = parseIntParam(w, q.Get("limit"), "limit", maxLimitParam); !ok {
		return
	}

	page, err := h.service.Search(r.Context(), search)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, ProfileListResponse{
		Profiles: nonNilSlice(page.Profiles),
		Page:     page.Page,
	})
}
