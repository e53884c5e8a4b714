package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mbnr/matrimonial/internal/models"
)

// ProfileRepository defines the storage operations for matrimonial profiles
type ProfileRepository interface {
	Create(ctx context.Context, p *models.Profile) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	UpdateByUserID(ctx context.Context, userID string, upd *models.ProfileUpdate) (*models.Profile, error)
	Search(ctx context.Context, s models.ProfileSearch) ([]*models.Profile, int, error)
	ListByUserIDs(ctx context.Context, userIDs []string) ([]*models.Profile, error)
}

// ProfilePage is one page of profile search results.
type ProfilePage struct {
	Profiles []*models.Profile
	models.Page
}

type ProfileService struct {
	repo   ProfileRepository
	logger *slog.Logger
}

func NewProfileService(repo ProfileRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{repo: repo, logger: logger}
}

// Create stores the profile for userID, filling in defaults for unset fields.
func (s *ProfileService) Create(ctx context.Context, userID string, p *models.Profile) (*models.Profile, error) {
	p.UserID = userID
	p.IsActive = true
	if p.ProfileVisibility == "" {
		p.ProfileVisibility = models.VisibilityPublic
	}
	if p.ProfilePhoto == "" {
		p.ProfilePhoto = models.DefaultProfilePhoto
	}
	p.Interests = nonNil(p.Interests)
	p.Photos = nonNil(p.Photos)
	p.PartnerPreferences.MaritalStatus = nonNil(p.PartnerPreferences.MaritalStatus)

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrProfileExists
		}
		return nil, clientError(ctx, s.logger, "failed to create profile", err, slog.String("user_id", userID))
	}

	s.logger.InfoContext(ctx, "profile created", slog.String("user_id", userID), slog.String("profile_id", created.ID))
	return created, nil
}

func (s *ProfileService) GetMine(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrProfileNotFound
		}
		return nil, clientError(ctx, s.logger, "failed to get profile", err, slog.String("user_id", userID))
	}
	return p, nil
}

// GetByUserID returns ownerID's profile as seen by viewerID. Private profiles
// are visible to their owner only.
func (s *ProfileService) GetByUserID(ctx context.Context, viewerID, ownerID string) (*models.Profile, error) {
	p, err := s.GetMine(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if p.ProfileVisibility == models.VisibilityPrivate && viewerID != ownerID {
		return nil, models.ErrProfilePrivate
	}
	return p, nil
}

func (s *ProfileService) Update(ctx context.Context, userID string, upd *models.ProfileUpdate) (*models.Profile, error) {
	p, err := s.repo.UpdateByUserID(ctx, userID, upd)
	if err != nil {
		return nil, clientError(ctx, s.logger, "failed to update profile", err, slog.String("user_id", userID))
	}
	return p, nil
}

// Search returns one page of visible profiles matching q.
func (s *ProfileService) Search(ctx context.Context, q models.ProfileSearch) (*ProfilePage, error) {
	q.Page, q.Limit = normalizePage(q.Page, q.Limit)

	profiles, total, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, clientError(ctx, s.logger, "failed to search profiles", err)
	}

	return &ProfilePage{
		Profiles: profiles,
		Page:     models.NewPage(q.Page, q.Limit, total),
	}, nil
}
