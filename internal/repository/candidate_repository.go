package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testgest/testgest-backend/internal/model"
)

// CandidateRepository handles candidate data access.
type CandidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(pool *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{pool: pool}
}

const candidateColumns = `id, first_name, last_name, email, phone, school, validated, access_code, created_at`

func scanCandidate(row interface{ Scan(...any) error }) (*model.Candidate, error) {
	c := &model.Candidate{}
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.School, &c.Validated, &c.AccessCode, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves a candidate by primary key.
func (r *CandidateRepository) GetByID(ctx context.Context, id int) (*model.Candidate, error) {
	return scanCandidate(r.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
}

// GetByAccessCode retrieves a candidate by their unique access code.
func (r *CandidateRepository) GetByAccessCode(ctx context.Context, code string) (*model.Candidate, error) {
	return scanCandidate(r.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE access_code = $1`, code))
}

// ExistsByEmail reports whether a candidate is already registered with the email.
func (r *CandidateRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM candidates WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

// ExistsByAccessCode reports whether the access code is already assigned.
func (r *CandidateRepository) ExistsByAccessCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM candidates WHERE access_code = $1)`, code).Scan(&exists)
	return exists, err
}

// Create inserts a new candidate (not validated, no access code yet).
func (r *CandidateRepository) Create(ctx context.Context, c *model.Candidate) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO candidates (first_name, last_name, email, phone, school, validated)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		c.FirstName, c.LastName, c.Email, c.Phone, c.School, c.Validated,
	).Scan(&c.ID, &c.CreatedAt)
}

// Update persists editable candidate fields plus validation state and code.
func (r *CandidateRepository) Update(ctx context.Context, c *model.Candidate) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE candidates
		 SET first_name = $1, last_name = $2, email = $3, phone = $4, school = $5,
		     validated = $6, access_code = $7
		 WHERE id = $8`,
		c.FirstName, c.LastName, c.Email, c.Phone, c.School, c.Validated, c.AccessCode, c.ID)
	return err
}

// Delete removes a candidate and, via cascades, their enrollments and sessions.
func (r *CandidateRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	return err
}

// List retrieves candidates, optionally filtered by a search term matched
// against name and school, newest first.
func (r *CandidateRepository) List(ctx context.Context, search string, limit int) ([]model.Candidate, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+candidateColumns+`
		 FROM candidates
		 WHERE $1 = '' OR first_name ILIKE '%' || $1 || '%'
		    OR last_name ILIKE '%' || $1 || '%'
		    OR school ILIKE '%' || $1 || '%'
		 ORDER BY created_at DESC
		 LIMIT $2`, search, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []model.Candidate
	for rows.Next() {
		var c model.Candidate
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.School, &c.Validated, &c.AccessCode, &c.CreatedAt); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
