package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/testgest/testgest-backend/internal/model"
	"github.com/testgest/testgest-backend/internal/notify"
)

// TestDuration is the wall-clock budget of one test attempt, counted from
// the session start. Expiry is evaluated lazily on the next write.
const TestDuration = 120 * time.Minute

// EligibilityChecker reports whether an access code may start a test now.
type EligibilityChecker interface {
	CheckEligibility(ctx context.Context, code string) (bool, error)
}

// Assembler builds the question set for a new session.
type Assembler interface {
	Assemble(ctx context.Context) ([]model.SessionQuestion, error)
}

// TestSessionService owns the session lifecycle: start (create, resume or
// reset), answer recording, termination with scoring, and the read side of
// the candidate portal. All writes for one access code are serialized
// through the locker.
type TestSessionService struct {
	sessions         SessionStore
	sessionQuestions SessionQuestionStore
	answers          AnswerStore
	questions        QuestionStore
	candidates       CandidateStore
	eligibility      EligibilityChecker
	assembler        Assembler
	locker           Locker
	notifier         Notifier
	now              func() time.Time
	logger           zerolog.Logger
}

// NewTestSessionService creates a new TestSessionService.
func NewTestSessionService(
	sessions SessionStore,
	sessionQuestions SessionQuestionStore,
	answers AnswerStore,
	questions QuestionStore,
	candidates CandidateStore,
	eligibility EligibilityChecker,
	assembler Assembler,
	locker Locker,
	notifier Notifier,
) *TestSessionService {
	return &TestSessionService{
		sessions:         sessions,
		sessionQuestions: sessionQuestions,
		answers:          answers,
		questions:        questions,
		candidates:       candidates,
		eligibility:      eligibility,
		assembler:        assembler,
		locker:           locker,
		notifier:         notifier,
		now:              time.Now,
		logger:           log.With().Str("component", "test_session_service").Logger(),
	}
}

// StartSession starts or resumes the test for an access code.
//
//   - No session yet: assemble a fresh question set and create one.
//   - Active session: resume it unchanged, whatever time remains.
//   - Terminated session: reset it in place. The question set is kept,
//     answer records are deleted, the score is zeroed and the clock restarts.
//
// Returns the session with its questions in display order.
func (s *TestSessionService) StartSession(ctx context.Context, code string) (*model.TestSession, []model.SessionQuestion, error) {
	release, err := s.locker.Acquire(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	eligible, err := s.eligibility.CheckEligibility(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if !eligible {
		return nil, nil, ErrNotEligible
	}

	// Eligibility guarantees the candidate exists.
	cand, err := s.candidates.GetByAccessCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	sess, err := s.sessions.GetByAccessCode(ctx, code)
	switch {
	case err == nil && !sess.Terminated:
		questions, err := s.sessionQuestions.ListBySessionHydrated(ctx, sess.ID)
		if err != nil {
			return nil, nil, err
		}
		s.logger.Info().Int("session_id", sess.ID).Msg("Resumed active session")
		return sess, sanitizeQuestions(questions), nil

	case err == nil && sess.Terminated:
		return s.resetSession(ctx, sess)

	case errors.Is(err, pgx.ErrNoRows):
		return s.createSession(ctx, cand, code)

	default:
		return nil, nil, err
	}
}

func (s *TestSessionService) createSession(ctx context.Context, cand *model.Candidate, code string) (*model.TestSession, []model.SessionQuestion, error) {
	set, err := s.assembler.Assemble(ctx)
	if err != nil {
		return nil, nil, err
	}

	sess := &model.TestSession{
		CandidateID: cand.ID,
		AccessCode:  code,
		StartedAt:   s.now(),
	}
	sess.ApplyScore(0, len(set))
	// One transaction: a session row without its question set must never
	// become visible, or the access code would resume an empty attempt.
	if err := s.sessions.CreateWithQuestions(ctx, sess, set); err != nil {
		return nil, nil, err
	}

	questions, err := s.sessionQuestions.ListBySessionHydrated(ctx, sess.ID)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info().Int("session_id", sess.ID).Int("questions", len(set)).Msg("Created new session")
	return sess, sanitizeQuestions(questions), nil
}

func (s *TestSessionService) resetSession(ctx context.Context, sess *model.TestSession) (*model.TestSession, []model.SessionQuestion, error) {
	questions, err := s.sessionQuestions.ListBySessionHydrated(ctx, sess.ID)
	if err != nil {
		return nil, nil, err
	}

	sess.StartedAt = s.now()
	sess.EndedAt = nil
	sess.Terminated = false
	sess.ApplyScore(0, len(questions))
	// Reset clears the old answers and reopens the session in one
	// transaction, so a failure leaves the previous attempt intact.
	if err := s.sessions.Reset(ctx, sess); err != nil {
		return nil, nil, err
	}
	s.logger.Info().Int("session_id", sess.ID).Msg("Reset terminated session in place")
	return sess, sanitizeQuestions(questions), nil
}

// RecordAnswer upserts the candidate's answer to one session question.
// Correctness is fixed at write time from the referenced possible answer;
// free-text answers are never auto-graded. A multi-select payload is written
// item by item and the last successful write wins. Writing past the time
// budget terminates the session and returns ErrTimeExpired.
func (s *TestSessionService) RecordAnswer(ctx context.Context, code string, questionID int, payload model.AnswerPayload) (*model.AnswerRecord, error) {
	release, err := s.locker.Acquire(ctx, code)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := s.getSession(ctx, code)
	if err != nil {
		return nil, err
	}
	if sess.Terminated {
		return nil, ErrSessionTerminated
	}
	if s.now().Sub(sess.StartedAt) > TestDuration {
		if _, err := s.terminateLocked(ctx, sess); err != nil {
			return nil, err
		}
		return nil, ErrTimeExpired
	}

	sq, err := s.sessionQuestions.GetBySessionAndQuestion(ctx, sess.ID, questionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQuestionNotInSession
	}
	if err != nil {
		return nil, err
	}

	if len(payload.PossibleAnswerIDs) > 0 {
		var (
			last    *model.AnswerRecord
			lastErr error
		)
		for _, paID := range payload.PossibleAnswerIDs {
			id := paID
			rec, err := s.writeAnswer(ctx, sq, questionID, &id, nil, payload.ElapsedSeconds)
			if err != nil {
				s.logger.Warn().Err(err).
					Int("session_id", sess.ID).
					Int("possible_answer_id", paID).
					Msg("Multi-select item rejected")
				lastErr = err
				continue
			}
			last = rec
		}
		if last == nil {
			return nil, lastErr
		}
		return last, nil
	}

	return s.writeAnswer(ctx, sq, questionID, payload.PossibleAnswerID, payload.AnswerText, payload.ElapsedSeconds)
}

// writeAnswer builds and upserts one answer record. The possible answer, if
// referenced, must belong to the question being answered.
func (s *TestSessionService) writeAnswer(ctx context.Context, sq *model.SessionQuestion, questionID int, paID *int, text *string, elapsed *int) (*model.AnswerRecord, error) {
	rec := &model.AnswerRecord{
		SessionQuestionID: sq.ID,
		AnswerText:        text,
		ElapsedSeconds:    elapsed,
	}
	if paID != nil {
		pa, err := s.questions.GetPossibleAnswer(ctx, *paID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotInSession
		}
		if err != nil {
			return nil, err
		}
		if pa.QuestionID != questionID {
			return nil, ErrQuestionNotInSession
		}
		rec.PossibleAnswerID = paID
		rec.IsCorrect = pa.Correct
	}
	if err := s.answers.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// TerminateSession ends the session, scores it and persists the outcome.
// Terminating an already terminated session is a no-op returning the stored
// result.
func (s *TestSessionService) TerminateSession(ctx context.Context, code string) (*model.TestSession, error) {
	release, err := s.locker.Acquire(ctx, code)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := s.getSession(ctx, code)
	if err != nil {
		return nil, err
	}
	if sess.Terminated {
		return sess, nil
	}
	return s.terminateLocked(ctx, sess)
}

// terminateLocked scores and closes the session. Callers must hold the
// access code lock.
func (s *TestSessionService) terminateLocked(ctx context.Context, sess *model.TestSession) (*model.TestSession, error) {
	questions, err := s.sessionQuestions.ListBySession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	records, err := s.answers.ListBySession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, rec := range records {
		if rec.IsCorrect {
			total++
		}
	}

	now := s.now()
	sess.EndedAt = &now
	sess.Terminated = true
	sess.ApplyScore(total, len(questions))
	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info().
		Int("session_id", sess.ID).
		Int("score_total", sess.ScoreTotal).
		Int("score_max", sess.ScoreMax).
		Float64("percentage", sess.Percentage).
		Msg("Terminated session")

	s.notifyResult(ctx, sess)
	return sess, nil
}

// notifyResult enqueues the result email. Failures are logged only; the
// termination itself has already been persisted.
func (s *TestSessionService) notifyResult(ctx context.Context, sess *model.TestSession) {
	cand, err := s.candidates.GetByID(ctx, sess.CandidateID)
	if err != nil {
		s.logger.Error().Err(err).Int("candidate_id", sess.CandidateID).Msg("Result notification skipped, candidate lookup failed")
		return
	}
	s.notifier.Notify(ctx, notify.Payload{
		Kind:       notify.KindResult,
		Email:      cand.Email,
		Name:       cand.FullName(),
		ScoreTotal: sess.ScoreTotal,
		ScoreMax:   sess.ScoreMax,
		Percentage: sess.Percentage,
	})
}

// RemainingSeconds returns the whole seconds left on the session clock.
// Missing or terminated sessions, and sessions past the budget, report zero.
func (s *TestSessionService) RemainingSeconds(ctx context.Context, code string) (int, error) {
	sess, err := s.sessions.GetByAccessCode(ctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if sess.Terminated {
		return 0, nil
	}
	remaining := TestDuration - s.now().Sub(sess.StartedAt)
	if remaining < 0 {
		return 0, nil
	}
	return int(remaining.Seconds()), nil
}

// GetSessionQuestions returns the session's questions in display order with
// content hydrated and grading data stripped.
func (s *TestSessionService) GetSessionQuestions(ctx context.Context, code string) ([]model.SessionQuestion, error) {
	sess, err := s.getSession(ctx, code)
	if err != nil {
		return nil, err
	}
	questions, err := s.sessionQuestions.ListBySessionHydrated(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	return sanitizeQuestions(questions), nil
}

// ActiveSession returns the session for an access code, terminated or not.
func (s *TestSessionService) ActiveSession(ctx context.Context, code string) (*model.TestSession, error) {
	return s.getSession(ctx, code)
}

// SessionAnswers returns the answers recorded so far, so a resuming candidate
// can restore their progress.
func (s *TestSessionService) SessionAnswers(ctx context.Context, code string) ([]model.AnswerRecord, error) {
	sess, err := s.getSession(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.answers.ListBySession(ctx, sess.ID)
}

func (s *TestSessionService) getSession(ctx context.Context, code string) (*model.TestSession, error) {
	sess, err := s.sessions.GetByAccessCode(ctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// sanitizeQuestions strips correctness flags and explanations before
// question content leaves the server toward a candidate.
func sanitizeQuestions(questions []model.SessionQuestion) []model.SessionQuestion {
	for i := range questions {
		q := questions[i].Question
		if q == nil {
			continue
		}
		q.Explanation = ""
		for j := range q.PossibleAnswers {
			q.PossibleAnswers[j].Correct = false
		}
	}
	return questions
}
