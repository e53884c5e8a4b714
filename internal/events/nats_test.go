package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	msgs    []*nats.Msg
	err     error
	drained bool
}

func (f *fakeConn) PublishMsg(m *nats.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, m)
	return nil
}

func (f *fakeConn) FlushWithContext(ctx context.Context) error { return nil }

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestNATSPublisher_Publish(t *testing.T) {
	conn := &fakeConn{}
	p := newNATSPublisher(conn, "matrimonial", slog.New(slog.NewTextHandler(io.Discard, nil)))
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	err := p.Publish(context.Background(), AgentReviewed, map[string]any{"agentId": "a1", "rating": 4.0})
	require.NoError(t, err)
	require.Len(t, conn.msgs, 1)

	msg := conn.msgs[0]
	assert.Equal(t, "matrimonial.agent.reviewed", msg.Subject)
	assert.NotEmpty(t, msg.Header.Get(nats.MsgIdHdr))

	var env struct {
		ID         string         `json:"id"`
		Type       string         `json:"type"`
		OccurredAt time.Time      `json:"occurredAt"`
		Data       map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &env))
	assert.Equal(t, msg.Header.Get(nats.MsgIdHdr), env.ID)
	assert.Equal(t, AgentReviewed, env.Type)
	assert.True(t, fixed.Equal(env.OccurredAt))
	assert.Equal(t, "a1", env.Data["agentId"])
}

func TestNATSPublisher_NoPrefix(t *testing.T) {
	conn := &fakeConn{}
	p := newNATSPublisher(conn, "", slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, p.Publish(context.Background(), ConnectionRequested, nil))
	assert.Equal(t, "connection.requested", conn.msgs[0].Subject)
}

func TestNATSPublisher_PublishError(t *testing.T) {
	conn := &fakeConn{err: nats.ErrConnectionClosed}
	p := newNATSPublisher(conn, "m", slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := p.Publish(context.Background(), AgentRegistered, nil)
	assert.True(t, errors.Is(err, nats.ErrConnectionClosed))
}

func TestNATSPublisher_CloseDrains(t *testing.T) {
	conn := &fakeConn{}
	p := newNATSPublisher(conn, "m", slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, p.Close())
	assert.True(t, conn.drained)
}
