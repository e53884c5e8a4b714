// Package events publishes domain events after a workflow commits.
package events

import (
	"context"
	"time"
)

// Event types, appended to the configured subject prefix.
const (
	VerificationSubmitted = "verification.submitted"
	VerificationProcessed = "verification.processed"
	ConnectionRequested   = "connection.requested"
	ConnectionResponded   = "connection.responded"
	AgentRegistered       = "agent.registered"
	AgentReviewed         = "agent.reviewed"
	AgentClientAdded      = "agent.client_added"
)

// Envelope is the JSON body of every published event.
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// Publisher emits domain events. Publishing is best effort: callers log
// failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data any) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, eventType string, data any) error { return nil }

func (NopPublisher) Close() error { return nil }

// VerificationEvent is the payload of verification.* events.
type VerificationEvent struct {
	RequestID string `json:"requestId"`
	UserID    string `json:"userId"`
	Status    string `json:"status"`
	AdminID   string `json:"adminId,omitempty"`
}

// ConnectionEvent is the payload of connection.* events.
type ConnectionEvent struct {
	ConnectionID string `json:"connectionId"`
	SenderID     string `json:"senderId"`
	ReceiverID   string `json:"receiverId"`
	Status       string `json:"status"`
}

// AgentEvent is the payload of agent.* events. Rating and ClientCount carry
// the values after the change.
type AgentEvent struct {
	AgentID     string  `json:"agentId"`
	UserID      string  `json:"userId"`
	ActorID     string  `json:"actorId,omitempty"`
	Rating      float64 `json:"rating"`
	ClientCount int     `json:"clientCount"`
}
