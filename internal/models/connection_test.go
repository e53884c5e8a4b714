package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionConnections(t *testing.T) {
	conns := []*Connection{
		{ID: "sent", SenderID: "me", ReceiverID: "b", Status: ConnectionPending},
		{ID: "received", SenderID: "c", ReceiverID: "me", Status: ConnectionPending},
		{ID: "accepted-out", SenderID: "me", ReceiverID: "d", Status: ConnectionAccepted},
		{ID: "accepted-in", SenderID: "e", ReceiverID: "me", Status: ConnectionAccepted},
		{ID: "rejected-in", SenderID: "f", ReceiverID: "me", Status: ConnectionRejected},
		{ID: "rejected-out", SenderID: "me", ReceiverID: "g", Status: ConnectionRejected},
	}

	b := PartitionConnections("me", conns)

	ids := func(cs []*Connection) []string {
		out := make([]string, 0, len(cs))
		for _, c := range cs {
			out = append(out, c.ID)
		}
		return out
	}

	assert.Equal(t, []string{"sent"}, ids(b.Sent))
	assert.Equal(t, []string{"received"}, ids(b.Received))
	assert.Equal(t, []string{"accepted-out", "accepted-in"}, ids(b.Accepted))
	assert.Equal(t, []string{"rejected-in"}, ids(b.Rejected))
}

func TestPartitionConnections_EmptyListsNotNil(t *testing.T) {
	b := PartitionConnections("me", nil)

	assert.NotNil(t, b.Sent)
	assert.NotNil(t, b.Received)
	assert.NotNil(t, b.Accepted)
	assert.NotNil(t, b.Rejected)
}

func TestIsValidConnectionDecision(t *testing.T) {
	assert.True(t, IsValidConnectionDecision(ConnectionAccepted))
	assert.True(t, IsValidConnectionDecision(ConnectionRejected))
	assert.False(t, IsValidConnectionDecision(ConnectionPending))
	assert.False(t, IsValidConnectionDecision("cancelled"))
}

func TestWorkflowError_UnwrapsToKind(t *testing.T) {
	assert.ErrorIs(t, ErrDuplicateConnection, ErrConflict)
	assert.ErrorIs(t, ErrConnectionNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrNotConnectionTarget, ErrForbidden)
	assert.Equal(t, "connection request already exists", ErrDuplicateConnection.Error())
}
