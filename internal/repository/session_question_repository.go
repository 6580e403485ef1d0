package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testgest/testgest-backend/internal/model"
)

// SessionQuestionRepository handles per-attempt question snapshot data access.
type SessionQuestionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionQuestionRepository creates a new SessionQuestionRepository.
func NewSessionQuestionRepository(pool *pgxpool.Pool) *SessionQuestionRepository {
	return &SessionQuestionRepository{pool: pool}
}

// ListBySession retrieves the session's questions in display order, without
// content hydration. Used by the scorer.
func (r *SessionQuestionRepository) ListBySession(ctx context.Context, sessionID int) ([]model.SessionQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, question_id, display_order, allotted_seconds
		 FROM session_questions
		 WHERE session_id = $1
		 ORDER BY display_order`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.SessionQuestion
	for rows.Next() {
		var q model.SessionQuestion
		if err := rows.Scan(&q.ID, &q.SessionID, &q.QuestionID, &q.DisplayOrder, &q.AllottedSeconds); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ListBySessionHydrated retrieves the session's questions in display order
// with question text, type and possible answers joined in, for the candidate
// portal.
func (r *SessionQuestionRepository) ListBySessionHydrated(ctx context.Context, sessionID int) ([]model.SessionQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT sq.id, sq.session_id, sq.question_id, sq.display_order, sq.allotted_seconds,
		        q.theme_id, q.type_id, q.text, q.explanation, t.name,
		        pa.id, pa.text, pa.correct
		 FROM session_questions sq
		 JOIN questions q ON sq.question_id = q.id
		 JOIN question_types t ON q.type_id = t.id
		 LEFT JOIN possible_answers pa ON pa.question_id = q.id
		 WHERE sq.session_id = $1
		 ORDER BY sq.display_order, pa.id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out     []model.SessionQuestion
		current *model.SessionQuestion
	)
	for rows.Next() {
		var (
			sq       model.SessionQuestion
			q        model.Question
			typeName string
			paID     *int
			paText   *string
			paOK     *bool
		)
		if err := rows.Scan(
			&sq.ID, &sq.SessionID, &sq.QuestionID, &sq.DisplayOrder, &sq.AllottedSeconds,
			&q.ThemeID, &q.TypeID, &q.Text, &q.Explanation, &typeName,
			&paID, &paText, &paOK,
		); err != nil {
			return nil, err
		}

		if current == nil || current.ID != sq.ID {
			q.ID = sq.QuestionID
			q.Type = &model.QuestionType{ID: q.TypeID, Name: typeName}
			sq.Question = &q
			out = append(out, sq)
			current = &out[len(out)-1]
		}
		if paID != nil {
			current.Question.PossibleAnswers = append(current.Question.PossibleAnswers, model.PossibleAnswer{
				ID:         *paID,
				QuestionID: current.QuestionID,
				Text:       *paText,
				Correct:    *paOK,
			})
		}
	}
	return out, rows.Err()
}

// GetBySessionAndQuestion resolves the session question for a
// (session, question) pair.
func (r *SessionQuestionRepository) GetBySessionAndQuestion(ctx context.Context, sessionID, questionID int) (*model.SessionQuestion, error) {
	q := &model.SessionQuestion{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, session_id, question_id, display_order, allotted_seconds
		 FROM session_questions
		 WHERE session_id = $1 AND question_id = $2`, sessionID, questionID,
	).Scan(&q.ID, &q.SessionID, &q.QuestionID, &q.DisplayOrder, &q.AllottedSeconds)
	if err != nil {
		return nil, err
	}
	return q, nil
}
