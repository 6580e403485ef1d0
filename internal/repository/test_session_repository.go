package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testgest/testgest-backend/internal/model"
)

// SessionResult combines candidate data with their session outcome, used by
// the result listing and CSV export.
type SessionResult struct {
	SessionID  int        `json:"session_id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Email      string     `json:"email"`
	School     string     `json:"school"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	Terminated bool       `json:"terminated"`
	ScoreTotal int        `json:"score_total"`
	ScoreMax   int        `json:"score_max"`
	Percentage float64    `json:"percentage"`
}

// SessionStats aggregates recent session outcomes.
type SessionStats struct {
	TotalSessions     int     `json:"total_sessions"`
	Terminated        int     `json:"terminated"`
	AveragePercentage float64 `json:"average_percentage"`
}

// TestSessionRepository handles test session data access.
type TestSessionRepository struct {
	pool *pgxpool.Pool
}

// NewTestSessionRepository creates a new TestSessionRepository.
func NewTestSessionRepository(pool *pgxpool.Pool) *TestSessionRepository {
	return &TestSessionRepository{pool: pool}
}

const sessionColumns = `id, candidate_id, access_code, started_at, ended_at, terminated, score_total, score_max, percentage`

func scanSession(row interface{ Scan(...any) error }) (*model.TestSession, error) {
	s := &model.TestSession{}
	err := row.Scan(&s.ID, &s.CandidateID, &s.AccessCode, &s.StartedAt, &s.EndedAt, &s.Terminated, &s.ScoreTotal, &s.ScoreMax, &s.Percentage)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a session by primary key.
func (r *TestSessionRepository) GetByID(ctx context.Context, id int) (*model.TestSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions WHERE id = $1`, id))
}

// GetByAccessCode retrieves the (at most one) session keyed by the access code.
func (r *TestSessionRepository) GetByAccessCode(ctx context.Context, code string) (*model.TestSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions WHERE access_code = $1`, code))
}

// CreateWithQuestions inserts a new session row together with its question
// set in one transaction, so a half-created session can never be resumed.
// Display order must already be assigned by the caller.
func (r *TestSessionRepository) CreateWithQuestions(ctx context.Context, s *model.TestSession, questions []model.SessionQuestion) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO test_sessions (candidate_id, access_code, started_at, terminated, score_total, score_max, percentage)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			s.CandidateID, s.AccessCode, s.StartedAt, s.Terminated, s.ScoreTotal, s.ScoreMax, s.Percentage,
		).Scan(&s.ID); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		for i := range questions {
			q := &questions[i]
			q.SessionID = s.ID
			if err := tx.QueryRow(ctx,
				`INSERT INTO session_questions (session_id, question_id, display_order, allotted_seconds)
				 VALUES ($1, $2, $3, $4)
				 RETURNING id`,
				q.SessionID, q.QuestionID, q.DisplayOrder, q.AllottedSeconds,
			).Scan(&q.ID); err != nil {
				return fmt.Errorf("insert session question %d: %w", q.DisplayOrder, err)
			}
		}
		return nil
	})
}

// Reset reopens a terminated session in one transaction: its answer records
// are deleted and the session row is rewritten from s. A failure rolls both
// back, leaving the finished attempt untouched.
func (r *TestSessionRepository) Reset(ctx context.Context, s *model.TestSession) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM answer_records
			 WHERE session_question_id IN (
			   SELECT id FROM session_questions WHERE session_id = $1
			 )`, s.ID); err != nil {
			return fmt.Errorf("delete answers: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE test_sessions
			 SET started_at = $1, ended_at = $2, terminated = $3,
			     score_total = $4, score_max = $5, percentage = $6
			 WHERE id = $7`,
			s.StartedAt, s.EndedAt, s.Terminated, s.ScoreTotal, s.ScoreMax, s.Percentage, s.ID); err != nil {
			return fmt.Errorf("reopen session: %w", err)
		}
		return nil
	})
}

// Update persists the mutable session fields in one statement so that
// score/percentage/terminated stay consistent for concurrent readers.
func (r *TestSessionRepository) Update(ctx context.Context, s *model.TestSession) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE test_sessions
		 SET started_at = $1, ended_at = $2, terminated = $3,
		     score_total = $4, score_max = $5, percentage = $6
		 WHERE id = $7`,
		s.StartedAt, s.EndedAt, s.Terminated, s.ScoreTotal, s.ScoreMax, s.Percentage, s.ID)
	return err
}

// ListByCandidate retrieves all sessions of one candidate, newest first.
func (r *TestSessionRepository) ListByCandidate(ctx context.Context, candidateID int) ([]model.TestSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+`
		 FROM test_sessions WHERE candidate_id = $1
		 ORDER BY started_at DESC`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.TestSession
	for rows.Next() {
		var s model.TestSession
		if err := rows.Scan(&s.ID, &s.CandidateID, &s.AccessCode, &s.StartedAt, &s.EndedAt, &s.Terminated, &s.ScoreTotal, &s.ScoreMax, &s.Percentage); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ListResults retrieves recent session outcomes with candidate data.
func (r *TestSessionRepository) ListResults(ctx context.Context, limit int) ([]SessionResult, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx,
		`SELECT ts.id, c.first_name, c.last_name, c.email, c.school,
		        ts.started_at, ts.ended_at, ts.terminated,
		        ts.score_total, ts.score_max, ts.percentage
		 FROM test_sessions ts
		 JOIN candidates c ON ts.candidate_id = c.id
		 ORDER BY ts.started_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SessionResult
	for rows.Next() {
		var res SessionResult
		if err := rows.Scan(
			&res.SessionID, &res.FirstName, &res.LastName, &res.Email, &res.School,
			&res.StartedAt, &res.EndedAt, &res.Terminated,
			&res.ScoreTotal, &res.ScoreMax, &res.Percentage,
		); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// Stats aggregates session counts and the average percentage of terminated
// sessions, rounded to two decimals.
func (r *TestSessionRepository) Stats(ctx context.Context) (*SessionStats, error) {
	st := &SessionStats{}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE terminated),
		        COALESCE(ROUND(AVG(percentage) FILTER (WHERE terminated)::numeric, 2), 0)
		 FROM test_sessions`,
	).Scan(&st.TotalSessions, &st.Terminated, &st.AveragePercentage)
	if err != nil {
		return nil, err
	}
	return st, nil
}
