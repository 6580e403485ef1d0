package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testgest/testgest-backend/internal/model"
)

// TimeSlotRepository handles time slot data access.
type TimeSlotRepository struct {
	pool *pgxpool.Pool
}

// NewTimeSlotRepository creates a new TimeSlotRepository.
func NewTimeSlotRepository(pool *pgxpool.Pool) *TimeSlotRepository {
	return &TimeSlotRepository{pool: pool}
}

const slotColumns = `id, exam_date, start_time, duration_minutes, capacity, is_full, created_at`

// GetByID retrieves a time slot by primary key.
func (r *TimeSlotRepository) GetByID(ctx context.Context, id int) (*model.TimeSlot, error) {
	s := &model.TimeSlot{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+slotColumns+` FROM time_slots WHERE id = $1`, id,
	).Scan(&s.ID, &s.ExamDate, &s.StartTime, &s.DurationMinutes, &s.Capacity, &s.Full, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves all slots ordered by date and start time.
func (r *TimeSlotRepository) List(ctx context.Context) ([]model.TimeSlot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+slotColumns+` FROM time_slots ORDER BY exam_date, start_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []model.TimeSlot
	for rows.Next() {
		var s model.TimeSlot
		if err := rows.Scan(&s.ID, &s.ExamDate, &s.StartTime, &s.DurationMinutes, &s.Capacity, &s.Full, &s.CreatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// ListOpen retrieves future slots that are not marked full.
func (r *TimeSlotRepository) ListOpen(ctx context.Context) ([]model.TimeSlot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+slotColumns+`
		 FROM time_slots
		 WHERE NOT is_full AND exam_date >= CURRENT_DATE
		 ORDER BY exam_date, start_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []model.TimeSlot
	for rows.Next() {
		var s model.TimeSlot
		if err := rows.Scan(&s.ID, &s.ExamDate, &s.StartTime, &s.DurationMinutes, &s.Capacity, &s.Full, &s.CreatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// Create inserts a new slot.
func (r *TimeSlotRepository) Create(ctx context.Context, s *model.TimeSlot) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO time_slots (exam_date, start_time, duration_minutes, capacity, is_full)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		s.ExamDate, s.StartTime, s.DurationMinutes, s.Capacity, s.Full,
	).Scan(&s.ID, &s.CreatedAt)
}

// Update persists slot fields.
func (r *TimeSlotRepository) Update(ctx context.Context, s *model.TimeSlot) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE time_slots
		 SET exam_date = $1, start_time = $2, duration_minutes = $3, capacity = $4, is_full = $5
		 WHERE id = $6`,
		s.ExamDate, s.StartTime, s.DurationMinutes, s.Capacity, s.Full, s.ID)
	return err
}

// SetFull flips the full flag.
func (r *TimeSlotRepository) SetFull(ctx context.Context, id int, full bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE time_slots SET is_full = $1 WHERE id = $2`, full, id)
	return err
}

// Delete removes a slot.
func (r *TimeSlotRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM time_slots WHERE id = $1`, id)
	return err
}

// InUse reports whether any enrolled candidate of this slot has a test
// session. Such slots are immutable.
func (r *TimeSlotRepository) InUse(ctx context.Context, id int) (bool, error) {
	var used bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1
		   FROM enrollments e
		   JOIN candidates c ON e.candidate_id = c.id
		   JOIN test_sessions ts ON ts.candidate_id = c.id
		   WHERE e.slot_id = $1
		 )`, id).Scan(&used)
	return used, err
}
