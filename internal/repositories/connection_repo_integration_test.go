//go:build integration

package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbnr/matrimonial/internal/models"
	"github.com/mbnr/matrimonial/internal/repositories"
)

func TestConnectionRepository_PairIsUniqueInBothDirections(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repositories.NewConnectionRepository(testDB)

	a := seedUser(t, "a")
	b := seedUser(t, "b")

	c, err := repo.Create(ctx, &models.Connection{SenderID: a.ID, ReceiverID: b.ID, Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPending, c.Status)
	assert.Equal(t, "a", c.Sender.Name)
	assert.Equal(t, "b", c.Receiver.Name)

	_, err = repo.Create(ctx, &models.Connection{SenderID: a.ID, ReceiverID: b.ID})
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = repo.Create(ctx, &models.Connection{SenderID: b.ID, ReceiverID: a.ID})
	assert.ErrorIs(t, err, models.ErrConflict)

	exists, err := repo.ExistsBetween(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestConnectionRepository_Respond(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repositories.NewConnectionRepository(testDB)

	a := seedUser(t, "a")
	b := seedUser(t, "b")

	c, err := repo.Create(ctx, &models.Connection{SenderID: a.ID, ReceiverID: b.ID, Message: "hi"})
	require.NoError(t, err)

	_, err = repo.Respond(ctx, c.ID, a.ID, models.ConnectionAccepted)
	assert.ErrorIs(t, err, models.ErrNotConnectionTarget)

	updated, err := repo.Respond(ctx, c.ID, b.ID, models.ConnectionAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionAccepted, updated.Status)

	_, err = repo.Respond(ctx, c.ID, b.ID, models.ConnectionRejected)
	assert.ErrorIs(t, err, models.ErrConnectionResponded)

	_, err = repo.Respond(ctx, "00000000-0000-0000-0000-000000000000", b.ID, models.ConnectionAccepted)
	assert.ErrorIs(t, err, models.ErrConnectionNotFound)

	forA, err := repo.ListForUser(ctx, a.ID)
	require.NoError(t, err)
	buckets := models.PartitionConnections(a.ID, forA)
	assert.Len(t, buckets.Accepted, 1)

	forB, err := repo.ListForUser(ctx, b.ID)
	require.NoError(t, err)
	buckets = models.PartitionConnections(b.ID, forB)
	assert.Len(t, buckets.Accepted, 1)
}
