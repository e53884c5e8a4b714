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

const profileSelect = `
	SELECT p.id, p.user_id, p.height, p.marital_status, p.religion, p.caste, p.mother_tongue,
		p.location, p.education, p.occupation, p.company, p.income, p.about, p.interests,
		p.family_details, p.partner_preferences, p.profile_visibility, p.profile_photo, p.photos,
		p.is_active, p.created_at, p.updated_at,
		u.name, u.email, u.gender, u.dob, u.verified
	FROM profiles p
	JOIN users u ON u.id = p.user_id`

type ProfileRepository struct {
	db   *database.DB
	pool *pgxpool.Pool
}

func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{db: db, pool: db.Pool}
}

func scanProfileRow(scanner rowScanner) (*models.Profile, error) {
	var p models.Profile
	var owner models.ProfileOwner

	err := scanner.Scan(
		&p.ID, &p.UserID, &p.Height, &p.MaritalStatus, &p.Religion, &p.Caste, &p.MotherTongue,
		&p.Location, &p.Education, &p.Occupation, &p.Company, &p.Income, &p.About, &p.Interests,
		&p.FamilyDetails, &p.PartnerPreferences, &p.ProfileVisibility, &p.ProfilePhoto, &p.Photos,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&owner.Name, &owner.Email, &owner.Gender, &owner.DOB, &p.IsVerified,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	owner.ID = p.UserID
	p.User = &owner

	return &p, nil
}

func scanProfileRows(rows pgx.Rows) ([]*models.Profile, error) {
	defer rows.Close()

	profiles := make([]*models.Profile, 0)

	for rows.Next() {
		p, err := scanProfileRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return profiles, nil
}

// Create inserts the user's profile. A user owns at most one profile.
func (r *ProfileRepository) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	p.ID = uuid.New().String()

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	var created *models.Profile

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO profiles (id, user_id, height, marital_status, religion, caste, mother_tongue,
				location, education, occupation, company, income, about, interests,
				family_details, partner_preferences, profile_visibility, profile_photo, photos,
				is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $21)`,
			p.ID, p.UserID, p.Height, p.MaritalStatus, p.Religion, p.Caste, p.MotherTongue,
			p.Location, p.Education, p.Occupation, p.Company, p.Income, p.About, pq.Array(p.Interests),
			p.FamilyDetails, p.PartnerPreferences, p.ProfileVisibility, p.ProfilePhoto, pq.Array(p.Photos),
			p.IsActive, now,
		)
		if err != nil {
			if database.IsUniqueViolation(err, "profiles_user_id_key") {
				return models.ErrProfileExists
			}
			return database.MapPostgresError(err)
		}

		created, err = scanProfileRow(tx.QueryRow(ctx, profileSelect+` WHERE p.id = $1`, p.ID))
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, models.ErrNotFound
	}
	return scanProfileRow(r.pool.QueryRow(ctx, profileSelect+` WHERE p.user_id = $1`, userID))
}

// UpdateByUserID merges the allow-listed fields of upd into the user's profile.
func (r *ProfileRepository) UpdateByUserID(ctx context.Context, userID string, upd *models.ProfileUpdate) (*models.Profile, error) {
	var updated *models.Profile

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		p, err := scanProfileRow(tx.QueryRow(ctx, profileSelect+` WHERE p.user_id = $1 FOR UPDATE OF p`, userID))
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrProfileNotFound
		}
		if err != nil {
			return err
		}

		upd.Apply(p)
		p.UpdatedAt = time.Now()

		_, err = tx.Exec(ctx, `
			UPDATE profiles SET height = $2, marital_status = $3, religion = $4, caste = $5, mother_tongue = $6,
				location = $7, education = $8, occupation = $9, company = $10, income = $11, about = $12,
				interests = $13, family_details = $14, partner_preferences = $15, profile_visibility = $16,
				profile_photo = $17, photos = $18, is_active = $19, updated_at = $20
			WHERE id = $1`,
			p.ID, p.Height, p.MaritalStatus, p.Religion, p.Caste, p.MotherTongue,
			p.Location, p.Education, p.Occupation, p.Company, p.Income, p.About,
			pq.Array(p.Interests), p.FamilyDetails, p.PartnerPreferences, p.ProfileVisibility,
			p.ProfilePhoto, pq.Array(p.Photos), p.IsActive, p.UpdatedAt,
		)
		if err != nil {
			return database.MapPostgresError(err)
		}

		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Search returns one page of active, non-private profiles matching s and the
// total number of matches. Text filters are case-insensitive substring
// matches; age bounds are evaluated against the owner's date of birth.
func (r *ProfileRepository) Search(ctx context.Context, s models.ProfileSearch) ([]*models.Profile, int, error) {
	conditions := []string{"p.is_active", "p.profile_visibility <> 'private'"}
	args := make([]any, 0, 10)

	addArg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	contains := func(column, value string) {
		if value != "" {
			conditions = append(conditions, column+" ILIKE "+addArg("%"+escapeLike(value)+"%"))
		}
	}

	if s.Gender != "" {
		conditions = append(conditions, "lower(u.gender) = lower("+addArg(s.Gender)+")")
	}
	if s.AgeMin > 0 {
		conditions = append(conditions, "u.dob <= CURRENT_DATE - make_interval(years => "+addArg(s.AgeMin)+")")
	}
	if s.AgeMax > 0 {
		conditions = append(conditions, "u.dob > CURRENT_DATE - make_interval(years => "+addArg(s.AgeMax+1)+")")
	}
	if s.MaritalStatus != "" {
		conditions = append(conditions, "p.marital_status = "+addArg(s.MaritalStatus))
	}
	contains("p.religion", s.Religion)
	contains("p.caste", s.Caste)
	contains("p.location", s.Location)

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM profiles p JOIN users u ON u.id = p.user_id` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, database.MapPostgresError(err)
	}

	query := profileSelect + where +
		` ORDER BY p.created_at DESC LIMIT ` + addArg(s.Limit) + ` OFFSET ` + addArg(s.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search profiles: %w", err)
	}

	profiles, err := scanProfileRows(rows)
	if err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

// ListByUserIDs returns the profiles owned by userIDs in the order given.
// Users without a profile are skipped.
func (r *ProfileRepository) ListByUserIDs(ctx context.Context, userIDs []string) ([]*models.Profile, error) {
	if len(userIDs) == 0 {
		return make([]*models.Profile, 0), nil
	}

	query := profileSelect + `
		WHERE p.user_id = ANY($1::uuid[])
		ORDER BY array_position($1::uuid[], p.user_id)`

	rows, err := r.pool.Query(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}

	return scanProfileRows(rows)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
