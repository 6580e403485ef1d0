package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testgest/testgest-backend/internal/model"
)

// QuestionRepository handles question and possible-answer data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByTheme retrieves the bare questions of one theme (no answers hydrated).
func (r *QuestionRepository) ListByTheme(ctx context.Context, themeID int) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, theme_id, type_id, text, explanation
		 FROM questions WHERE theme_id = $1 ORDER BY id`, themeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.ThemeID, &q.TypeID, &q.Text, &q.Explanation); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetByID retrieves one question with its type and possible answers.
func (r *QuestionRepository) GetByID(ctx context.Context, id int) (*model.Question, error) {
	q := &model.Question{Type: &model.QuestionType{}}
	err := r.pool.QueryRow(ctx,
		`SELECT q.id, q.theme_id, q.type_id, q.text, q.explanation, t.name
		 FROM questions q
		 JOIN question_types t ON q.type_id = t.id
		 WHERE q.id = $1`, id,
	).Scan(&q.ID, &q.ThemeID, &q.TypeID, &q.Text, &q.Explanation, &q.Type.Name)
	if err != nil {
		return nil, err
	}
	q.Type.ID = q.TypeID

	rows, err := r.pool.Query(ctx,
		`SELECT id, question_id, text, correct
		 FROM possible_answers WHERE question_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a model.PossibleAnswer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Text, &a.Correct); err != nil {
			return nil, err
		}
		q.PossibleAnswers = append(q.PossibleAnswers, a)
	}
	return q, rows.Err()
}

// GetPossibleAnswer retrieves one possible answer, used to fix correctness
// at answer-record write time.
func (r *QuestionRepository) GetPossibleAnswer(ctx context.Context, id int) (*model.PossibleAnswer, error) {
	a := &model.PossibleAnswer{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, question_id, text, correct FROM possible_answers WHERE id = $1`, id,
	).Scan(&a.ID, &a.QuestionID, &a.Text, &a.Correct)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a question and its possible answers in one transaction.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO questions (theme_id, type_id, text, explanation)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			q.ThemeID, q.TypeID, q.Text, q.Explanation,
		).Scan(&q.ID)
		if err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
		for i := range q.PossibleAnswers {
			a := &q.PossibleAnswers[i]
			a.QuestionID = q.ID
			if err := tx.QueryRow(ctx,
				`INSERT INTO possible_answers (question_id, text, correct)
				 VALUES ($1, $2, $3) RETURNING id`,
				a.QuestionID, a.Text, a.Correct,
			).Scan(&a.ID); err != nil {
				return fmt.Errorf("insert possible answer: %w", err)
			}
		}
		return nil
	})
}

// Update replaces the question fields and its whole answer set.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE questions SET theme_id = $1, type_id = $2, text = $3, explanation = $4
			 WHERE id = $5`,
			q.ThemeID, q.TypeID, q.Text, q.Explanation, q.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM possible_answers WHERE question_id = $1`, q.ID); err != nil {
			return err
		}
		for i := range q.PossibleAnswers {
			a := &q.PossibleAnswers[i]
			a.QuestionID = q.ID
			if err := tx.QueryRow(ctx,
				`INSERT INTO possible_answers (question_id, text, correct)
				 VALUES ($1, $2, $3) RETURNING id`,
				a.QuestionID, a.Text, a.Correct,
			).Scan(&a.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a question and its answers.
func (r *QuestionRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}
