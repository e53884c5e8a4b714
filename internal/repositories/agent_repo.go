package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/mbnr/matrimonial/internal/database"
	"github.com/mbnr/matrimonial/internal/models"
)

const agentSelect = `
	SELECT a.id, a.user_id, a.business_name, a.experience, a.specialization, a.serving_areas,
		a.contact_phone, a.contact_email, a.contact_address, a.description,
		a.client_count, a.successful_matches, a.is_verified, a.rating, a.is_active,
		a.created_at, a.updated_at, u.name, u.email
	FROM agents a
	JOIN users u ON u.id = a.user_id`

// querier is the read surface shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type AgentRepository struct {
	db   *database.DB
	pool *pgxpool.Pool
}

func NewAgentRepository(db *database.DB) *AgentRepository {
	return &AgentRepository{db: db, pool: db.Pool}
}

func scanAgentRow(scanner rowScanner) (*models.Agent, error) {
	var a models.Agent
	var owner models.UserSummary

	err := scanner.Scan(
		&a.ID, &a.UserID, &a.BusinessName, &a.Experience, &a.Specialization, &a.ServingAreas,
		&a.ContactInfo.Phone, &a.ContactInfo.Email, &a.ContactInfo.Address, &a.Description,
		&a.ClientCount, &a.SuccessfulMatches, &a.IsVerified, &a.Rating, &a.IsActive,
		&a.CreatedAt, &a.UpdatedAt, &owner.Name, &owner.Email,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	owner.ID = a.UserID
	a.User = &owner
	a.Reviews = make([]*models.Review, 0)
	a.Clients = make([]string, 0)

	return &a, nil
}

func scanAgentRows(rows pgx.Rows) ([]*models.Agent, error) {
	defer rows.Close()

	agents := make([]*models.Agent, 0)

	for rows.Next() {
		a, err := scanAgentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return agents, nil
}

// loadRelations fills Reviews and Clients for every agent with one query each.
func loadRelations(ctx context.Context, q querier, agents []*models.Agent) error {
	if len(agents) == 0 {
		return nil
	}

	byID := make(map[string]*models.Agent, len(agents))
	ids := make([]string, 0, len(agents))
	for _, a := range agents {
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	if err := loadReviews(ctx, q, ids, byID); err != nil {
		return err
	}
	return loadClients(ctx, q, ids, byID)
}

func loadReviews(ctx context.Context, q querier, ids []string, byID map[string]*models.Agent) error {
	rows, err := q.Query(ctx, `
		SELECT r.id, r.agent_id, r.reviewer_id, u.name, r.rating, r.comment, r.created_at
		FROM agent_reviews r
		JOIN users u ON u.id = r.reviewer_id
		WHERE r.agent_id = ANY($1::uuid[])
		ORDER BY r.created_at ASC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query agent reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rv models.Review
		var reviewerName string
		if err := rows.Scan(&rv.ID, &rv.AgentID, &rv.ReviewerID, &reviewerName, &rv.Rating, &rv.Comment, &rv.Date); err != nil {
			return fmt.Errorf("failed to scan agent review: %w", err)
		}
		rv.Reviewer = &models.UserSummary{ID: rv.ReviewerID, Name: reviewerName}
		if a, ok := byID[rv.AgentID]; ok {
			a.Reviews = append(a.Reviews, &rv)
		}
	}

	return rows.Err()
}

func loadClients(ctx context.Context, q querier, ids []string, byID map[string]*models.Agent) error {
	rows, err := q.Query(ctx, `
		SELECT agent_id, client_id FROM agent_clients
		WHERE agent_id = ANY($1::uuid[])
		ORDER BY added_at ASC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query agent clients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var agentID, clientID string
		if err := rows.Scan(&agentID, &clientID); err != nil {
			return fmt.Errorf("failed to scan agent client: %w", err)
		}
		if a, ok := byID[agentID]; ok {
			a.Clients = append(a.Clients, clientID)
		}
	}

	return rows.Err()
}

func (r *AgentRepository) getOne(ctx context.Context, q querier, where string, arg string) (*models.Agent, error) {
	a, err := scanAgentRow(q.QueryRow(ctx, agentSelect+` WHERE `+where, arg))
	if err != nil {
		return nil, err
	}
	if err := loadRelations(ctx, q, []*models.Agent{a}); err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID returns the agent with its owner, reviews and clients.
func (r *AgentRepository) GetByID(ctx context.Context, id string) (*models.Agent, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrNotFound
	}
	return r.getOne(ctx, r.pool, `a.id = $1`, id)
}

func (r *AgentRepository) GetByUserID(ctx context.Context, userID string) (*models.Agent, error) {
	return r.getOne(ctx, r.pool, `a.user_id = $1`, userID)
}

// CreateForUser inserts the agent record and promotes its owner to the agent
// role in one transaction. Admins keep their role.
func (r *AgentRepository) CreateForUser(ctx context.Context, a *models.Agent) (*models.Agent, error) {
	a.ID = uuid.New().String()

	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	var created *models.Agent

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO agents (id, user_id, business_name, experience, specialization, serving_areas,
				contact_phone, contact_email, contact_address, description,
				client_count, successful_matches, is_verified, rating, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, 0, FALSE, 0, TRUE, $11, $11)`,
			a.ID, a.UserID, a.BusinessName, a.Experience, pq.Array(a.Specialization), pq.Array(a.ServingAreas),
			a.ContactInfo.Phone, a.ContactInfo.Email, a.ContactInfo.Address, a.Description, now,
		)
		if err != nil {
			if database.IsUniqueViolation(err, "agents_user_id_key") {
				return models.ErrAlreadyAgent
			}
			return database.MapPostgresError(err)
		}

		_, err = tx.Exec(ctx, `UPDATE users SET role = $2, updated_at = $3 WHERE id = $1 AND role = $4`,
			a.UserID, models.RoleAgent, now, models.RoleUser)
		if err != nil {
			return database.MapPostgresError(err)
		}

		created, err = r.getOne(ctx, tx, `a.id = $1`, a.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateByUserID merges the allow-listed fields of upd into the agent owned by userID.
func (r *AgentRepository) UpdateByUserID(ctx context.Context, userID string, upd *models.AgentUpdate) (*models.Agent, error) {
	var updated *models.Agent

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		a, err := scanAgentRow(tx.QueryRow(ctx, agentSelect+` WHERE a.user_id = $1 FOR UPDATE OF a`, userID))
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrAgentNotFound
		}
		if err != nil {
			return err
		}

		upd.Apply(a)
		a.UpdatedAt = time.Now()

		_, err = tx.Exec(ctx, `
			UPDATE agents SET business_name = $2, experience = $3, specialization = $4, serving_areas = $5,
				contact_phone = $6, contact_email = $7, contact_address = $8, description = $9,
				successful_matches = $10, is_active = $11, updated_at = $12
			WHERE id = $1`,
			a.ID, a.BusinessName, a.Experience, pq.Array(a.Specialization), pq.Array(a.ServingAreas),
			a.ContactInfo.Phone, a.ContactInfo.Email, a.ContactInfo.Address, a.Description,
			a.SuccessfulMatches, a.IsActive, a.UpdatedAt,
		)
		if err != nil {
			return database.MapPostgresError(err)
		}

		if err := loadRelations(ctx, tx, []*models.Agent{a}); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// List returns one page of active agents matching f, best rated first, and
// the total number of matches.
func (r *AgentRepository) List(ctx context.Context, f models.AgentFilter) ([]*models.Agent, int, error) {
	conditions := []string{"a.is_active"}
	args := make([]any, 0, 6)

	addArg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.Specializations) > 0 {
		conditions = append(conditions, "a.specialization && "+addArg(pq.Array(f.Specializations))+"::text[]")
	}
	if len(f.Locations) > 0 {
		conditions = append(conditions, "a.serving_areas && "+addArg(pq.Array(f.Locations))+"::text[]")
	}
	if f.MinRating > 0 {
		conditions = append(conditions, "a.rating >= "+addArg(f.MinRating))
	}
	if f.VerifiedOnly {
		conditions = append(conditions, "a.is_verified")
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM agents a`+where, args...).Scan(&total); err != nil {
		return nil, 0, database.MapPostgresError(err)
	}

	query := agentSelect + where +
		` ORDER BY a.rating DESC, a.created_at ASC LIMIT ` + addArg(f.Limit) + ` OFFSET ` + addArg(f.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query agents: %w", err)
	}

	agents, err := scanAgentRows(rows)
	if err != nil {
		return nil, 0, err
	}

	if err := loadRelations(ctx, r.pool, agents); err != nil {
		return nil, 0, err
	}

	return agents, total, nil
}

// AddReview appends a review and recomputes the agent's mean rating. The
// agent row stays locked from the duplicate check to the rating write, so
// concurrent reviews on the same agent are applied one at a time.
func (r *AgentRepository) AddReview(ctx context.Context, review *models.Review) (*models.Agent, error) {
	if _, err := uuid.Parse(review.AgentID); err != nil {
		return nil, models.ErrAgentNotFound
	}

	review.ID = uuid.New().String()
	review.Date = time.Now()

	var updated *models.Agent

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		a, err := scanAgentRow(tx.QueryRow(ctx, agentSelect+` WHERE a.id = $1 FOR UPDATE OF a`, review.AgentID))
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrAgentNotFound
		}
		if err != nil {
			return err
		}

		if err := loadRelations(ctx, tx, []*models.Agent{a}); err != nil {
			return err
		}

		if models.HasReviewFrom(a.Reviews, review.ReviewerID) {
			return models.ErrDuplicateReview
		}

		var reviewerName string
		if err := tx.QueryRow(ctx, `SELECT name FROM users WHERE id = $1`, review.ReviewerID).Scan(&reviewerName); err != nil {
			return database.MapPostgresError(err)
		}
		review.Reviewer = &models.UserSummary{ID: review.ReviewerID, Name: reviewerName}

		_, err = tx.Exec(ctx, `
			INSERT INTO agent_reviews (id, agent_id, reviewer_id, rating, comment, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			review.ID, review.AgentID, review.ReviewerID, review.Rating, review.Comment, review.Date,
		)
		if err != nil {
			if database.IsUniqueViolation(err, "") {
				return models.ErrDuplicateReview
			}
			return database.MapPostgresError(err)
		}

		a.Reviews = append(a.Reviews, review)
		a.Rating = models.AverageRating(a.Reviews)
		a.UpdatedAt = review.Date

		if _, err := tx.Exec(ctx, `UPDATE agents SET rating = $2, updated_at = $3 WHERE id = $1`, a.ID, a.Rating, a.UpdatedAt); err != nil {
			return database.MapPostgresError(err)
		}

		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// AddClient adds clientID to the roster of the agent owned by ownerUserID and
// resyncs client_count under the agent row lock.
func (r *AgentRepository) AddClient(ctx context.Context, ownerUserID, clientID string) (*models.Agent, error) {
	var updated *models.Agent

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		a, err := scanAgentRow(tx.QueryRow(ctx, agentSelect+` WHERE a.user_id = $1 FOR UPDATE OF a`, ownerUserID))
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrAgentNotFound
		}
		if err != nil {
			return err
		}

		if _, err := uuid.Parse(clientID); err != nil {
			return models.ErrClientNotFound
		}
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, clientID).Scan(&exists); err != nil {
			return database.MapPostgresError(err)
		}
		if !exists {
			return models.ErrClientNotFound
		}

		if err := loadRelations(ctx, tx, []*models.Agent{a}); err != nil {
			return err
		}

		if models.HasClient(a.Clients, clientID) {
			return models.ErrAlreadyClient
		}

		now := time.Now()
		if _, err := tx.Exec(ctx, `INSERT INTO agent_clients (agent_id, client_id, added_at) VALUES ($1, $2, $3)`, a.ID, clientID, now); err != nil {
			if database.IsUniqueViolation(err, "") {
				return models.ErrAlreadyClient
			}
			return database.MapPostgresError(err)
		}

		a.Clients = append(a.Clients, clientID)
		a.ClientCount = models.ClientCount(a.Clients)
		a.UpdatedAt = now

		if _, err := tx.Exec(ctx, `UPDATE agents SET client_count = $2, updated_at = $3 WHERE id = $1`, a.ID, a.ClientCount, a.UpdatedAt); err != nil {
			return database.MapPostgresError(err)
		}

		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
