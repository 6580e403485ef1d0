package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testgest/testgest-backend/internal/model"
)

// EnrollmentRepository handles candidate-to-slot enrollment data access.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// Create inserts a new enrollment. The (candidate, slot) pair is unique.
func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO enrollments (candidate_id, slot_id, confirmed)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		e.CandidateID, e.SlotID, e.Confirmed,
	).Scan(&e.ID, &e.CreatedAt)
}

// ListByCandidate retrieves a candidate's enrollments with their slots hydrated.
func (r *EnrollmentRepository) ListByCandidate(ctx context.Context, candidateID int) ([]model.Enrollment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.candidate_id, e.slot_id, e.confirmed, e.created_at,
		        s.id, s.exam_date, s.start_time, s.duration_minutes, s.capacity, s.is_full, s.created_at
		 FROM enrollments e
		 JOIN time_slots s ON e.slot_id = s.id
		 WHERE e.candidate_id = $1
		 ORDER BY s.exam_date, s.start_time`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []model.Enrollment
	for rows.Next() {
		var e model.Enrollment
		var s model.TimeSlot
		if err := rows.Scan(
			&e.ID, &e.CandidateID, &e.SlotID, &e.Confirmed, &e.CreatedAt,
			&s.ID, &s.ExamDate, &s.StartTime, &s.DurationMinutes, &s.Capacity, &s.Full, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Slot = &s
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

// CountBySlot returns the number of enrollments in a slot, used against capacity.
func (r *EnrollmentRepository) CountBySlot(ctx context.Context, slotID int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE slot_id = $1`, slotID).Scan(&n)
	return n, err
}

// Confirm marks an enrollment as confirmed.
func (r *EnrollmentRepository) Confirm(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `UPDATE enrollments SET confirmed = TRUE WHERE id = $1`, id)
	return err
}
