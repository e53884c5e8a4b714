package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/mbnr/matrimonial/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_Create_Defaults(t *testing.T) {
	var stored *models.Profile
	repo := &MockProfileRepository{
		CreateFunc: func(ctx context.Context, p *models.Profile) (*models.Profile, error) {
			stored = p
			p.ID = "p1"
			return p, nil
		},
	}
	svc := NewProfileService(repo, slog.Default())

	_, err := svc.Create(context.Background(), "u1", &models.Profile{Religion: "Hindu", IsActive: false})

	require.NoError(t, err)
	assert.Equal(t, "u1", stored.UserID)
	assert.True(t, stored.IsActive)
	assert.Equal(t, models.VisibilityPublic, stored.ProfileVisibility)
	assert.Equal(t, models.DefaultProfilePhoto, stored.ProfilePhoto)
	assert.NotNil(t, stored.Interests)
	assert.NotNil(t, stored.Photos)
}

func TestProfileService_Create_Exists(t *testing.T) {
	repo := &MockProfileRepository{
		CreateFunc: func(ctx context.Context, p *models.Profile) (*models.Profile, error) {
			return nil, models.ErrProfileExists
		},
	}
	svc := NewProfileService(repo, slog.Default())

	_, err := svc.Create(context.Background(), "u1", &models.Profile{})

	assert.ErrorIs(t, err, models.ErrProfileExists)
}

func TestProfileService_GetByUserID_Visibility(t *testing.T) {
	profiles := map[string]*models.Profile{
		"public":  {ID: "p1", UserID: "public", ProfileVisibility: models.VisibilityPublic},
		"private": {ID: "p2", UserID: "private", ProfileVisibility: models.VisibilityPrivate},
	}
	repo := &MockProfileRepository{
		GetByUserIDFunc: func(ctx context.Context, userID string) (*models.Profile, error) {
			if p, ok := profiles[userID]; ok {
				return p, nil
			}
			return nil, models.ErrNotFound
		},
	}
	svc := NewProfileService(repo, slog.Default())
	ctx := context.Background()

	tests := []struct {
		name    string
		viewer  string
		owner   string
		wantErr error
	}{
		{"public seen by stranger", "x", "public", nil},
		{"private seen by owner", "private", "private", nil},
		{"private hidden from stranger", "x", "private", models.ErrProfilePrivate},
		{"missing", "x", "nobody", models.ErrProfileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetByUserID(ctx, tt.viewer, tt.owner)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, got.UserID)
		})
	}
}

func TestProfileService_Search_Paging(t *testing.T) {
	var seen models.ProfileSearch
	repo := &MockProfileRepository{
		SearchFunc: func(ctx context.Context, s models.ProfileSearch) ([]*models.Profile, int, error) {
			seen = s
			return []*models.Profile{}, 21, nil
		},
	}
	svc := NewProfileService(repo, slog.Default())

	got, err := svc.Search(context.Background(), models.ProfileSearch{Religion: "Sikh", Page: 3})

	require.NoError(t, err)
	assert.Equal(t, models.DefaultPageSize, seen.Limit)
	assert.Equal(t, 20, seen.Offset())
	assert.Equal(t, 3, got.Pages)
	assert.Equal(t, 3, got.Page.Page)
}

func TestProfileService_Update_Missing(t *testing.T) {
	svc := NewProfileService(&MockProfileRepository{}, slog.Default())

	about := "hello"
	_, err := svc.Update(context.Background(), "u1", &models.ProfileUpdate{About: &about})

	assert.ErrorIs(t, err, models.ErrProfileNotFound)
}
