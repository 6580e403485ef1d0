package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testgest/testgest-backend/internal/model"
)

// AdminRepository handles administrator data access.
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepository.
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// GetByEmail retrieves an administrator by email.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*model.Administrator, error) {
	a := &model.Administrator{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at
		 FROM administrators WHERE email = $1`, email,
	).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an administrator by primary key.
func (r *AdminRepository) GetByID(ctx context.Context, id int) (*model.Administrator, error) {
	a := &model.Administrator{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at
		 FROM administrators WHERE id = $1`, id,
	).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new administrator.
func (r *AdminRepository) Create(ctx context.Context, a *model.Administrator) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO administrators (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
		 RETURNING id, created_at`,
		a.Name, a.Email, a.PasswordHash,
	).Scan(&a.ID, &a.CreatedAt)
}
