package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mbnr/matrimonial/internal/database"
	"github.com/mbnr/matrimonial/internal/models"
)

// connectionSelect joins both parties so every connection carries names.
const connectionSelect = `
	SELECT c.id, c.sender_id, c.receiver_id, c.status, c.message, c.created_at, c.updated_at,
		s.name, r.name
	FROM connections c
	JOIN users s ON s.id = c.sender_id
	JOIN users r ON r.id = c.receiver_id`

type ConnectionRepository struct {
	db   *database.DB
	pool *pgxpool.Pool
}

func NewConnectionRepository(db *database.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db, pool: db.Pool}
}

func scanConnectionRow(scanner rowScanner) (*models.Connection, error) {
	var c models.Connection
	var senderName, receiverName string

	err := scanner.Scan(
		&c.ID, &c.SenderID, &c.ReceiverID, &c.Status, &c.Message, &c.CreatedAt, &c.UpdatedAt,
		&senderName, &receiverName,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	c.Sender = &models.UserSummary{ID: c.SenderID, Name: senderName}
	c.Receiver = &models.UserSummary{ID: c.ReceiverID, Name: receiverName}

	return &c, nil
}

func scanConnectionRows(rows pgx.Rows) ([]*models.Connection, error) {
	defer rows.Close()

	conns := make([]*models.Connection, 0)

	for rows.Next() {
		c, err := scanConnectionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		conns = append(conns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return conns, nil
}

// Create inserts a pending connection. Any existing record for the unordered
// pair violates uq_connections_pair and yields ErrConflict.
func (r *ConnectionRepository) Create(ctx context.Context, c *models.Connection) (*models.Connection, error) {
	c.ID = uuid.New().String()
	c.Status = models.ConnectionPending

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	var created *models.Connection
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO connections (id, sender_id, receiver_id, status, message, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.ID, c.SenderID, c.ReceiverID, c.Status, c.Message, c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return database.MapPostgresError(err)
		}

		created, err = scanConnectionRow(tx.QueryRow(ctx, connectionSelect+` WHERE c.id = $1`, c.ID))
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// ExistsBetween reports whether any record exists for {a, b} in either direction.
func (r *ConnectionRepository) ExistsBetween(ctx context.Context, a, b string) (bool, error) {
	query := `SELECT EXISTS(
		SELECT 1 FROM connections
		WHERE LEAST(sender_id, receiver_id) = LEAST($1::uuid, $2::uuid)
		  AND GREATEST(sender_id, receiver_id) = GREATEST($1::uuid, $2::uuid))`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, a, b).Scan(&exists); err != nil {
		return false, database.MapPostgresError(err)
	}
	return exists, nil
}

func (r *ConnectionRepository) GetByID(ctx context.Context, id string) (*models.Connection, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrNotFound
	}
	return scanConnectionRow(r.pool.QueryRow(ctx, connectionSelect+` WHERE c.id = $1`, id))
}

// Respond applies the receiver's decision. The record is locked for the
// duration of the check so two concurrent answers cannot both succeed.
func (r *ConnectionRepository) Respond(ctx context.Context, id, responderID, decision string) (*models.Connection, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrConnectionNotFound
	}

	var updated *models.Connection

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		c, err := scanConnectionRow(tx.QueryRow(ctx, connectionSelect+` WHERE c.id = $1 FOR UPDATE OF c`, id))
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrConnectionNotFound
		}
		if err != nil {
			return err
		}

		if c.ReceiverID != responderID {
			return models.ErrNotConnectionTarget
		}
		if c.Status != models.ConnectionPending {
			return models.ErrConnectionResponded
		}

		c.Status = decision
		c.UpdatedAt = time.Now()

		if _, err := tx.Exec(ctx, `UPDATE connections SET status = $2, updated_at = $3 WHERE id = $1`, c.ID, c.Status, c.UpdatedAt); err != nil {
			return database.MapPostgresError(err)
		}

		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// ListForUser returns every connection where userID is sender or receiver, newest first.
func (r *ConnectionRepository) ListForUser(ctx context.Context, userID string) ([]*models.Connection, error) {
	query := connectionSelect + `
		WHERE c.sender_id = $1 OR c.receiver_id = $1
		ORDER BY c.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}

	return scanConnectionRows(rows)
}
