//go:build integration

package repositories_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbnr/matrimonial/internal/models"
	"github.com/mbnr/matrimonial/internal/repositories"
)

func newRequest(userID string) *models.VerificationRequest {
	return &models.VerificationRequest{
		UserID:         userID,
		DocumentType:   models.DocumentPassport,
		DocumentNumber: "P1234567",
		DocumentImage:  "uploads/passport.jpg",
	}
}

func TestVerificationRepository_OnePendingPerUser(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repositories.NewVerificationRepository(testDB)
	u := seedUser(t, "asha")

	var wg sync.WaitGroup
	var mu sync.Mutex
	var created, conflicts int

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, newRequest(u.ID))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, models.ErrConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 7, conflicts)

	pending, err := repo.HasPending(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestVerificationRepository_ProcessApproveMarksUserAndAgent(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repositories.NewVerificationRepository(testDB)
	agents := repositories.NewAgentRepository(testDB)
	users := repositories.NewUserRepository(testDB)

	owner := seedUser(t, "ravi")
	admin := seedUser(t, "admin")

	_, err := agents.CreateForUser(ctx, &models.Agent{
		UserID:       owner.ID,
		BusinessName: "Ravi Matches",
		Experience:   3,
		ContactInfo:  models.ContactInfo{Phone: "555", Email: "ravi@example.com"},
		Description:  "Matchmaking",
	})
	require.NoError(t, err)

	req, err := repo.Create(ctx, newRequest(owner.ID))
	require.NoError(t, err)

	processed, err := repo.Process(ctx, req.ID, models.VerificationApproved, admin.ID, "ignored")
	require.NoError(t, err)
	assert.Equal(t, models.VerificationApproved, processed.Status)
	assert.Empty(t, processed.RejectionReason)
	require.NotNil(t, processed.VerifiedBy)
	assert.Equal(t, admin.ID, *processed.VerifiedBy)
	assert.NotNil(t, processed.VerifiedAt)

	u, err := users.GetByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.True(t, u.Verified)

	a, err := agents.GetByUserID(ctx, owner.ID)
	require.NoError(t, err)
	assert.True(t, a.IsVerified)

	_, err = repo.Process(ctx, req.ID, models.VerificationRejected, admin.ID, "")
	assert.ErrorIs(t, err, models.ErrAlreadyProcessed)
}

func TestVerificationRepository_ProcessReject(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repositories.NewVerificationRepository(testDB)
	users := repositories.NewUserRepository(testDB)

	owner := seedUser(t, "meera")
	admin := seedUser(t, "admin")

	req, err := repo.Create(ctx, newRequest(owner.ID))
	require.NoError(t, err)

	processed, err := repo.Process(ctx, req.ID, models.VerificationRejected, admin.ID, "blurry image")
	require.NoError(t, err)
	assert.Equal(t, models.VerificationRejected, processed.Status)
	assert.Equal(t, "blurry image", processed.RejectionReason)

	u, err := users.GetByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.False(t, u.Verified)

	// A new request is allowed once nothing is pending.
	_, err = repo.Create(ctx, newRequest(owner.ID))
	require.NoError(t, err)

	history, err := repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.VerificationPending, history[0].Status)
	assert.Equal(t, models.VerificationRejected, history[1].Status)
}

func TestVerificationRepository_ProcessUnknown(t *testing.T) {
	resetTables(t)
	repo := repositories.NewVerificationRepository(testDB)
	admin := seedUser(t, "admin")

	_, err := repo.Process(context.Background(), "00000000-0000-0000-0000-000000000000", models.VerificationApproved, admin.ID, "")
	assert.ErrorIs(t, err, models.ErrVerificationNotFound)

	_, err = repo.Process(context.Background(), "not-a-uuid", models.VerificationApproved, admin.ID, "")
	assert.ErrorIs(t, err, models.ErrVerificationNotFound)
}

func TestVerificationRepository_ListPendingOldestFirst(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repositories.NewVerificationRepository(testDB)

	first := seedUser(t, "first")
	second := seedUser(t, "second")

	_, err := repo.Create(ctx, newRequest(first.ID))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newRequest(second.ID))
	require.NoError(t, err)

	pending, err := repo.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].UserID)
	require.NotNil(t, pending[0].User)
	assert.Equal(t, "first", pending[0].User.Name)
	assert.Equal(t, first.Email, pending[0].User.Email)
	assert.Equal(t, models.RoleUser, pending[0].User.Role)
}
