//go:build integration

package repositories_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbnr/matrimonial/internal/models"
	"github.com/mbnr/matrimonial/internal/repositories"
)

func TestUserRepository_GetByIDReturnsCanonicalID(t *testing.T) {
	resetTables(t)
	users := repositories.NewUserRepository(testDB)

	u := seedUser(t, "casey")

	got, err := users.GetByID(context.Background(), strings.ToUpper(u.ID))
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	users := repositories.NewUserRepository(testDB)
	conns := repositories.NewConnectionRepository(testDB)

	a := seedUser(t, "a")
	b := seedUser(t, "b")

	_, err := conns.Create(ctx, &models.Connection{SenderID: a.ID, ReceiverID: b.ID, Message: "hi"})
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, a.ID))

	_, err = users.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	received, err := conns.ListForUser(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, received)

	assert.ErrorIs(t, users.Delete(ctx, a.ID), models.ErrNotFound)
	assert.ErrorIs(t, users.Delete(ctx, "not-a-uuid"), models.ErrNotFound)
}

func TestConnectionRepository_SelfConnectionRejectedByConstraint(t *testing.T) {
	resetTables(t)
	conns := repositories.NewConnectionRepository(testDB)

	a := seedUser(t, "a")

	_, err := conns.Create(context.Background(), &models.Connection{SenderID: a.ID, ReceiverID: a.ID})
	assert.ErrorIs(t, err, models.ErrBadRequest)
}
