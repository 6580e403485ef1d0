package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testgest/testgest-backend/internal/model"
)

// ThemeRepository handles theme data access.
type ThemeRepository struct {
	pool *pgxpool.Pool
}

// NewThemeRepository creates a new ThemeRepository.
func NewThemeRepository(pool *pgxpool.Pool) *ThemeRepository {
	return &ThemeRepository{pool: pool}
}

// List retrieves all themes in a stable order.
func (r *ThemeRepository) List(ctx context.Context) ([]model.Theme, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description FROM themes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var themes []model.Theme
	for rows.Next() {
		var t model.Theme
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, err
		}
		themes = append(themes, t)
	}
	return themes, rows.Err()
}

// GetByID retrieves one theme.
func (r *ThemeRepository) GetByID(ctx context.Context, id int) (*model.Theme, error) {
	t := &model.Theme{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description FROM themes WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Description)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a new theme.
func (r *ThemeRepository) Create(ctx context.Context, t *model.Theme) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO themes (name, description) VALUES ($1, $2) RETURNING id`,
		t.Name, t.Description,
	).Scan(&t.ID)
}

// Update persists theme fields.
func (r *ThemeRepository) Update(ctx context.Context, t *model.Theme) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE themes SET name = $1, description = $2 WHERE id = $3`,
		t.Name, t.Description, t.ID)
	return err
}

// Delete removes a theme. Fails if questions still reference it.
func (r *ThemeRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM themes WHERE id = $1`, id)
	return err
}
