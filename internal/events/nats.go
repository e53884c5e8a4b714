package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// natsConn is the subset of *nats.Conn used by NATSPublisher.
type natsConn interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// NATSPublisher publishes events on core NATS subjects "<prefix>.<type>".
type NATSPublisher struct {
	conn   natsConn
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

// NewNATSPublisher connects to url and keeps reconnecting for the life of the process.
func NewNATSPublisher(url, prefix string, logger *slog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("matrimonial-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(500*time.Millisecond),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(3*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", slog.Any("error", err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	logger.Info("nats connection established", slog.String("url", nc.ConnectedUrl()))

	return newNATSPublisher(nc, prefix, logger), nil
}

func newNATSPublisher(conn natsConn, prefix string, logger *slog.Logger) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix, logger: logger, now: time.Now}
}

func (p *NATSPublisher) Publish(ctx context.Context, eventType string, data any) error {
	env := Envelope{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: p.now().UTC(),
		Data:       data,
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}

	msg := nats.NewMsg(p.subject(eventType))
	msg.Header.Set(nats.MsgIdHdr, env.ID)
	msg.Header.Set("Content-Type", "application/json")
	msg.Data = body

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	return nil
}

func (p *NATSPublisher) subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

// Close flushes buffered messages and drains the connection.
func (p *NATSPublisher) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.conn.FlushWithContext(ctx); err != nil {
		p.logger.Warn("nats flush failed", slog.Any("error", err))
	}
	return p.conn.Drain()
}
