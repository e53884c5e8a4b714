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

const verificationColumns = `v.id, v.user_id, v.document_type, v.document_number, v.document_image, v.status,
	v.rejection_reason, v.verified_by, v.verified_at, v.created_at, v.updated_at`

type VerificationRepository struct {
	db   *database.DB
	pool *pgxpool.Pool
}

func NewVerificationRepository(db *database.DB) *VerificationRepository {
	return &VerificationRepository{db: db, pool: db.Pool}
}

func scanVerificationRow(scanner rowScanner, extra ...interface{}) (*models.VerificationRequest, error) {
	var v models.VerificationRequest

	dest := []interface{}{
		&v.ID, &v.UserID, &v.DocumentType, &v.DocumentNumber, &v.DocumentImage, &v.Status,
		&v.RejectionReason, &v.VerifiedBy, &v.VerifiedAt, &v.CreatedAt, &v.UpdatedAt,
	}
	if err := scanner.Scan(append(dest, extra...)...); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &v, nil
}

func scanVerificationRows(rows pgx.Rows) ([]*models.VerificationRequest, error) {
	defer rows.Close()

	requests := make([]*models.VerificationRequest, 0)

	for rows.Next() {
		v, err := scanVerificationRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verification request: %w", err)
		}
		requests = append(requests, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return requests, nil
}

// Create inserts a pending request. A second pending request for the same
// user violates uq_verification_requests_one_pending and yields ErrConflict.
func (r *VerificationRepository) Create(ctx context.Context, v *models.VerificationRequest) (*models.VerificationRequest, error) {
	v.ID = uuid.New().String()
	v.Status = models.VerificationPending

	now := time.Now()
	v.CreatedAt = now
	v.UpdatedAt = now

	query := `
		INSERT INTO verification_requests AS v (id, user_id, document_type, document_number, document_image, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + verificationColumns

	return scanVerificationRow(r.pool.QueryRow(ctx, query,
		v.ID, v.UserID, v.DocumentType, v.DocumentNumber, v.DocumentImage, v.Status, v.CreatedAt, v.UpdatedAt,
	))
}

func (r *VerificationRepository) HasPending(ctx context.Context, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM verification_requests WHERE user_id = $1 AND status = 'pending')`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, database.MapPostgresError(err)
	}
	return exists, nil
}

// ListByUser returns every request the user submitted, newest first.
func (r *VerificationRepository) ListByUser(ctx context.Context, userID string) ([]*models.VerificationRequest, error) {
	query := `SELECT ` + verificationColumns + `
		FROM verification_requests v
		WHERE v.user_id = $1
		ORDER BY v.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query verification requests: %w", err)
	}

	return scanVerificationRows(rows)
}

// ListPending returns pending requests oldest first, each carrying the
// submitter's name, email and role.
func (r *VerificationRepository) ListPending(ctx context.Context) ([]*models.VerificationRequest, error) {
	query := `SELECT ` + verificationColumns + `, u.name, u.email, u.role
		FROM verification_requests v
		JOIN users u ON u.id = v.user_id
		WHERE v.status = 'pending'
		ORDER BY v.created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending verification requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.VerificationRequest, 0)
	for rows.Next() {
		var submitter models.UserSummary
		v, err := scanVerificationRow(rows, &submitter.Name, &submitter.Email, &submitter.Role)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verification request: %w", err)
		}
		submitter.ID = v.UserID
		v.User = &submitter
		requests = append(requests, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return requests, nil
}

// Process moves a pending request to decision. The status guard in the
// UPDATE makes concurrent decisions race-free: exactly one wins and the rest
// see ErrAlreadyProcessed. Approval also marks the user, and the user's agent
// record if any, as verified in the same transaction.
func (r *VerificationRepository) Process(ctx context.Context, id, decision, reviewerID, rejectionReason string) (*models.VerificationRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrVerificationNotFound
	}

	if decision != models.VerificationRejected {
		rejectionReason = ""
	}

	var processed *models.VerificationRequest

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		now := time.Now()

		query := `
			UPDATE verification_requests AS v
			SET status = $2, rejection_reason = $3, verified_by = $4, verified_at = $5, updated_at = $5
			WHERE v.id = $1 AND v.status = 'pending'
			RETURNING ` + verificationColumns

		v, err := scanVerificationRow(tx.QueryRow(ctx, query, id, decision, rejectionReason, reviewerID, now))
		if errors.Is(err, models.ErrNotFound) {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM verification_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
				return database.MapPostgresError(err)
			}
			if !exists {
				return models.ErrVerificationNotFound
			}
			return models.ErrAlreadyProcessed
		}
		if err != nil {
			return err
		}

		if decision == models.VerificationApproved {
			if _, err := tx.Exec(ctx, `UPDATE users SET verified = TRUE, updated_at = $2 WHERE id = $1`, v.UserID, now); err != nil {
				return database.MapPostgresError(err)
			}
			if _, err := tx.Exec(ctx, `UPDATE agents SET is_verified = TRUE, updated_at = $2 WHERE user_id = $1`, v.UserID, now); err != nil {
				return database.MapPostgresError(err)
			}
		}

		processed = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	return processed, nil
}
