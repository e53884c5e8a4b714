package models

import (
	"time"
)

// Connection statuses. pending moves once to accepted or rejected.
const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
	ConnectionRejected = "rejected"
)

// DefaultConnectionMessage is used when the sender leaves the message empty.
const DefaultConnectionMessage = "I would like to connect with you"

// Connection is a directed interest request between two users.
type Connection struct {
	ID         string       `json:"_id"`
	SenderID   string       `json:"-"`
	ReceiverID string       `json:"-"`
	Sender     *UserSummary `json:"sender"`
	Receiver   *UserSummary `json:"receiver"`
	Status     string       `json:"status"`
	Message    string       `json:"message"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// ConnectionBuckets is the per-user partition returned by ListMine.
type ConnectionBuckets struct {
	Sent     []*Connection `json:"sent"`
	Received []*Connection `json:"received"`
	Accepted []*Connection `json:"accepted"`
	Rejected []*Connection `json:"rejected"`
}

// IsValidConnectionDecision reports whether d is a receiver decision.
func IsValidConnectionDecision(d string) bool {
	return d == ConnectionAccepted || d == ConnectionRejected
}

// PartitionConnections splits every connection touching userID into the
// sent, received, accepted and rejected views. Records that match none of
// the predicates (for example a request the user sent that was rejected)
// are left out.
func PartitionConnections(userID string, conns []*Connection) *ConnectionBuckets {
	b := &ConnectionBuckets{
		Sent:     make([]*Connection, 0),
		Received: make([]*Connection, 0),
		Accepted: make([]*Connection, 0),
		Rejected: make([]*Connection, 0),
	}

	for _, c := range conns {
		switch {
		case c.Status == ConnectionPending && c.SenderID == userID:
			b.Sent = append(b.Sent, c)
		case c.Status == ConnectionPending && c.ReceiverID == userID:
			b.Received = append(b.Received, c)
		case c.Status == ConnectionAccepted && (c.SenderID == userID || c.ReceiverID == userID):
			b.Accepted = append(b.Accepted, c)
		case c.Status == ConnectionRejected && c.ReceiverID == userID:
			b.Rejected = append(b.Rejected, c)
		}
	}

	return b
}
