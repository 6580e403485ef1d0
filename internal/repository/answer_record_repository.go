package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testgest/testgest-backend/internal/model"
)

// AnswerRecordRepository handles answer record data access.
type AnswerRecordRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRecordRepository creates a new AnswerRecordRepository.
func NewAnswerRecordRepository(pool *pgxpool.Pool) *AnswerRecordRepository {
	return &AnswerRecordRepository{pool: pool}
}

// GetBySessionQuestion retrieves the (at most one) record of a session question.
func (r *AnswerRecordRepository) GetBySessionQuestion(ctx context.Context, sessionQuestionID int) (*model.AnswerRecord, error) {
	rec := &model.AnswerRecord{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, session_question_id, possible_answer_id, answer_text, elapsed_seconds, is_correct, updated_at
		 FROM answer_records WHERE session_question_id = $1`, sessionQuestionID,
	).Scan(&rec.ID, &rec.SessionQuestionID, &rec.PossibleAnswerID, &rec.AnswerText, &rec.ElapsedSeconds, &rec.IsCorrect, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListBySession retrieves all records belonging to one session's questions.
func (r *AnswerRecordRepository) ListBySession(ctx context.Context, sessionID int) ([]model.AnswerRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ar.id, ar.session_question_id, ar.possible_answer_id, ar.answer_text, ar.elapsed_seconds, ar.is_correct, ar.updated_at
		 FROM answer_records ar
		 JOIN session_questions sq ON ar.session_question_id = sq.id
		 WHERE sq.session_id = $1
		 ORDER BY sq.display_order`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.AnswerRecord
	for rows.Next() {
		var rec model.AnswerRecord
		if err := rows.Scan(&rec.ID, &rec.SessionQuestionID, &rec.PossibleAnswerID, &rec.AnswerText, &rec.ElapsedSeconds, &rec.IsCorrect, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Upsert writes the record for a session question; the unique constraint on
// session_question_id enforces at most one record, last write wins.
func (r *AnswerRecordRepository) Upsert(ctx context.Context, rec *model.AnswerRecord) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO answer_records (session_question_id, possible_answer_id, answer_text, elapsed_seconds, is_correct, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (session_question_id) DO UPDATE
		 SET possible_answer_id = EXCLUDED.possible_answer_id,
		     answer_text = EXCLUDED.answer_text,
		     elapsed_seconds = EXCLUDED.elapsed_seconds,
		     is_correct = EXCLUDED.is_correct,
		     updated_at = NOW()
		 RETURNING id, updated_at`,
		rec.SessionQuestionID, rec.PossibleAnswerID, rec.AnswerText, rec.ElapsedSeconds, rec.IsCorrect,
	).Scan(&rec.ID, &rec.UpdatedAt)
}
