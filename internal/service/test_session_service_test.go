package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/testgest/testgest-backend/internal/model"
	"github.com/testgest/testgest-backend/internal/notify"
)

const testCode = "TEST0001"

type sessionHarness struct {
	candidates *fakeCandidateStore
	sessions   *fakeSessionStore
	snapshots  *fakeSessionQuestionStore
	answers    *fakeAnswerStore
	questions  *fakeQuestionStore
	notifier   *fakeNotifier
	svc        *TestSessionService
}

// newSessionHarness wires a service over three questions: two single-choice
// (IDs 1 and 2) and one free text (ID 3). Possible answer 11 is the correct
// answer of question 1, 22 the correct answer of question 2.
func newSessionHarness(eligible bool) *sessionHarness {
	questions := newFakeQuestionStore()
	questions.add(&model.Question{
		ID: 1, ThemeID: 1, TypeID: 1, Text: "q1", Explanation: "because",
		PossibleAnswers: []model.PossibleAnswer{
			{ID: 11, Text: "right", Correct: true},
			{ID: 12, Text: "wrong"},
		},
	})
	questions.add(&model.Question{
		ID: 2, ThemeID: 1, TypeID: 1, Text: "q2",
		PossibleAnswers: []model.PossibleAnswer{
			{ID: 21, Text: "wrong"},
			{ID: 22, Text: "right", Correct: true},
		},
	})
	questions.add(&model.Question{ID: 3, ThemeID: 1, TypeID: 3, Text: "q3"})

	themes := &fakeThemeStore{rows: []model.Theme{{ID: 1, Name: "general"}}}
	settings := &fakeSettings{values: map[string]int{
		SettingQuestionsPerTheme:  10,
		SettingSecondsPerQuestion: 60,
	}}
	assembler := NewQuestionSetAssembler(themes, questions, settings)
	assembler.newRand = func() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

	candidates := newFakeCandidateStore()
	candidates.add(&model.Candidate{
		FirstName:  "Ana",
		LastName:   "Silva",
		Email:      "ana@example.com",
		AccessCode: strPtr(testCode),
		Validated:  true,
	})

	snapshots := newFakeSessionQuestionStore(questions)
	answers := newFakeAnswerStore(snapshots)
	sessions := newFakeSessionStore(snapshots, answers)
	notifier := &fakeNotifier{}

	svc := NewTestSessionService(
		sessions, snapshots, answers, questions, candidates,
		staticEligibility{eligible: eligible}, assembler, nopLocker{}, notifier,
	)
	return &sessionHarness{
		candidates: candidates,
		sessions:   sessions,
		snapshots:  snapshots,
		answers:    answers,
		questions:  questions,
		notifier:   notifier,
		svc:        svc,
	}
}

func intPtr(n int) *int { return &n }

func TestStartSessionCreatesNew(t *testing.T) {
	h := newSessionHarness(true)
	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	h.svc.now = func() time.Time { return started }

	sess, questions, err := h.svc.StartSession(context.Background(), testCode)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Terminated {
		t.Error("new session must not be terminated")
	}
	if !sess.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", sess.StartedAt, started)
	}
	if sess.ScoreTotal != 0 || sess.ScoreMax != 3 || sess.Percentage != 0 {
		t.Errorf("score = %d/%d (%.2f%%), want 0/3 (0%%)", sess.ScoreTotal, sess.ScoreMax, sess.Percentage)
	}
	if len(questions) != 3 {
		t.Fatalf("len(questions) = %d, want 3", len(questions))
	}
	for i, sq := range questions {
		if sq.DisplayOrder != i+1 {
			t.Errorf("questions[%d].DisplayOrder = %d, want %d", i, sq.DisplayOrder, i+1)
		}
		if sq.Question == nil {
			t.Fatalf("questions[%d] not hydrated", i)
		}
		if sq.Question.Explanation != "" {
			t.Errorf("questions[%d] leaks explanation", i)
		}
		for _, pa := range sq.Question.PossibleAnswers {
			if pa.Correct {
				t.Errorf("questions[%d] leaks correctness flag", i)
			}
		}
	}
}

func TestStartSessionNotEligible(t *testing.T) {
	h := newSessionHarness(false)

	_, _, err := h.svc.StartSession(context.Background(), testCode)
	if !errors.Is(err, ErrNotEligible) {
		t.Errorf("err = %v, want ErrNotEligible", err)
	}
}

func TestStartSessionEmptyPool(t *testing.T) {
	h := newSessionHarness(true)
	h.questions.questions = map[int]*model.Question{}

	_, _, err := h.svc.StartSession(context.Background(), testCode)
	if !errors.Is(err, ErrNoQuestionsAvailable) {
		t.Errorf("err = %v, want ErrNoQuestionsAvailable", err)
	}
}

func TestStartSessionResumesActive(t *testing.T) {
	h := newSessionHarness(true)
	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	h.svc.now = func() time.Time { return started }

	first, _, err := h.svc.StartSession(context.Background(), testCode)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.RecordAnswer(context.Background(), testCode, 1, model.AnswerPayload{PossibleAnswerID: intPtr(11)}); err != nil {
		t.Fatal(err)
	}

	// Starting again later must resume, not restart the clock or drop answers.
	h.svc.now = func() time.Time { return started.Add(20 * time.Minute) }
	second, _, err := h.svc.StartSession(context.Background(), testCode)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("resumed session ID = %d, want %d", second.ID, first.ID)
	}
	if !second.StartedAt.Equal(started) {
		t.Errorf("resume changed StartedAt to %v", second.StartedAt)
	}
	recs, _ := h.answers.ListBySession(context.Background(), first.ID)
	if len(recs) != 1 {
		t.Errorf("resume dropped answers, have %d", len(recs))
	}
}

func TestStartSessionResetsTerminated(t *testing.T) {
	h := newSessionHarness(true)
	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	h.svc.now = func() time.Time { return started }

	first, firstQuestions, err := h.svc.StartSession(context.Background(), testCode)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.RecordAnswer(context.Background(), testCode, 1, model.AnswerPayload{PossibleAnswerID: intPtr(11)}); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.TerminateSession(context.Background(), testCode); err != nil {
		t.Fatal(err)
	}

	restarted := started.Add(45 * time.Minute)
	h.svc.now = func() time.Time { return restarted }
	second, secondQuestions, err := h.svc.StartSession(context.Background(), testCode)
	if err != nil {
		t.Fatal(err)
	}

	if second.ID != first.ID {
		t.Errorf("reset created a new session %d, want in-place reset of %d", second.ID, first.ID)
	}
	if second.Terminated || second.EndedAt != nil {
		t.Error("reset session must be active again")
	}
	if !second.StartedAt.Equal(restarted) {
		t.Errorf("StartedAt = %v, want %v", second.StartedAt, restarted)
	}
	if second.ScoreTotal != 0 || second.ScoreMax != 3 || second.Percentage != 0 {
		t.Errorf("score = %d/%d (%.2f%%), want 0/3 (0%%)", second.ScoreTotal, second.ScoreMax, second.Percentage)
	}

	// The question set must be the original one.
	if len(secondQuestions) != len(firstQuestions) {
		t.Fatalf("question set size changed: %d -> %d", len(firstQuestions), len(secondQuestions))
	}
	for i := range firstQuestions {
		if secondQuestions[i].ID != firstQuestions[i].ID || secondQuestions[i].QuestionID != firstQuestions[i].QuestionID {
			t.Errorf("question set changed at position %d", i)
		}
	}

	recs, _ := h.answers.ListBySession(context.Background(), first.ID)
	if len(recs) != 0 {
		t.Errorf("reset kept %d answer records", len(recs))
	}
}

func TestStartSessionFailedCreateLeavesNoOrphan(t *testing.T) {
	h := newSessionHarness(true)
	h.sessions.createErr = errors.New("connection reset")

	// A failed create must not leave a zero-question session behind that
	// every later start would silently resume.
	if _, _, err := h.svc.StartSession(context.Background(), testCode); err == nil {
		t.Fatal("expected the injected create failure")
	}
	if _, err := h.sessions.GetByAccessCode(context.Background(), testCode); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("orphaned session persisted after failed create: err = %v", err)
	}

	sess, questions, err := h.svc.StartSession(context.Background(), testCode)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Terminated {
		t.Error("retried start must yield an active session")
	}
	if len(questions) != 3 {
		t.Errorf("len(questions) = %d, want 3 on retry", len(questions))
	}
}

func TestStartSessionTerminatedButNoLongerEligible(t *testing.T) {
	h := newSessionHarness(true)
	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	h.svc.now = func() time.Time { return started }

	first, _, err := h.svc.StartSession(context.Background(), testCode)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.RecordAnswer(context.Background(), testCode, 1, model.AnswerPayload{PossibleAnswerID: intPtr(11)}); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.TerminateSession(context.Background(), testCode); err != nil {
		t.Fatal(err)
	}

	// The candidate's slot window has closed since the attempt ended.
	h.svc.eligibility = staticEligibility{eligible: false}

	h.svc.now = func() time.Time { return started.Add(3 * time.Hour) }
	if _, _, err := h.svc.StartSession(context.Background(), testCode); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("err = %v, want ErrNotEligible", err)
	}

	// The finished attempt must be untouched: still terminated, score kept.
	stored, err := h.sessions.GetByID(context.Background(), first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.Terminated {
		t.Error("rejected restart reset the session")
	}
	if !stored.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", stored.StartedAt, started)
	}
	if stored.ScoreTotal != 1 || stored.ScoreMax != 3 {
		t.Errorf("score = %d/%d, want 1/3", stored.ScoreTotal, stored.ScoreMax)
	}
	recs, _ := h.answers.ListBySession(context.Background(), first.ID)
	if len(recs) != 1 {
		t.Errorf("rejected restart dropped answers, have %d", len(recs))
	}
}

func TestRecordAnswerCorrectnessFixedAtWrite(t *testing.T) {
	h := newSessionHarness(true)
	if _, _, err := h.svc.StartSession(context.Background(), testCode); err != nil {
		t.Fatal(err)
	}

	rec, err := h.svc.RecordAnswer(context.Background(), testCode, 1, model.AnswerPayload{PossibleAnswerID: intPtr(11)})
	if err != nil {
		t.Fatal(err)
	}
	if !rec.IsCorrect {
		t.Error("correct choice must be graded correct")
	}

	rec, err = h.svc.RecordAnswer(context.Background(), testCode, 2, model.AnswerPayload{PossibleAnswerID: intPtr(21)})
	if err != nil {
		t.Fatal(err)
	}
	if rec.IsCorrect {
		t.Error("wrong choice must be graded incorrect")
	}

	text := "free answer"
	rec, err = h.svc.RecordAnswer(context.Background(), testCode, 3, model.AnswerPayload{AnswerText: &text, ElapsedSeconds: intPtr(42)})
	if err != nil {
		t.Fatal(err)
	}
	if rec.IsCorrect {
		t.Error("free text must never be auto-graded correct")
	}
	if rec.AnswerText == nil || *rec.AnswerText != text {
		t.Error("free text not stored")
	}
}

func TestRecordAnswerLastWriteWins(t *testing.T) {
	h := newSessionHarness(true)
	sess, _, err := h.svc.StartSession(context.Background(), testCode)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := h.svc.RecordAnswer(context.Background(), testCode, 1, model.AnswerPayload{PossibleAnswerID: intPtr(11)}); err != nil {
		t.Fatal(err)
	}
	rec, err := h.svc.RecordAnswer(context.Background(), testCode, 1, model.AnswerPayload{PossibleAnswerID: intPtr(12)})
	if err != nil {
		t.Fatal(err)
	}
	if rec.IsCorrect {
		t.Error("overwritten answer must re-grade against the new choice")
	}

	recs, _ := h.answers.ListBySession(context.Background(), sess.ID)
	if len(recs) != 1 {
		t.Errorf("have %d records for one question, want 1", len(recs))
	}
}

func TestRecordAnswerMultiSelect(t *testing.T) {
	h := newSessionHarness(true)
	if _, _, err := h.svc.StartSession(context.Background(), testCode); err != nil {
		t.Fatal(err)
	}

	// An invalid item is logged and skipped; the last valid item wins.
	rec, err := h.svc.RecordAnswer(context.Background(), testCode, 1, model.AnswerPayload{
		PossibleAnswerIDs: []int{12, 999, 11},
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.PossibleAnswerID == nil || *rec.PossibleAnswerID != 11 {
		t.Errorf("stored answer = %v, want 11", rec.PossibleAnswerID)
	}
	if !rec.IsCorrect {
		t.Error("final multi-select item is correct, record must be correct")
	}
}

func TestRecordAnswerQuestionNotInSession(t *testing.T) {
	h := newSessionHarness(true)
	if _, _, err := h.svc.StartSession(context.Background(), testCode); err != nil {
		t.Fatal(err)
	}

	if _, err := h.svc.RecordAnswer(context.Background(), testCode, 99, model.AnswerPayload{PossibleAnswerID: intPtr(11)}); !errors.Is(err, ErrQuestionNotInSession) {
		t.Errorf("unknown question: err = %v, want ErrQuestionNotInSession", err)
	}

	// Possible answer 21 belongs to question 2, not question 1.
	if _, err := h.svc.RecordAnswer(context.Background(), testCode, 1, model.AnswerPayload{PossibleAnswerID: intPtr(21)}); !errors.Is(err, ErrQuestionNotInSession) {
		t.Errorf("foreign possible answer: err = %v, want ErrQuestionNotInSession", err)
	}
}

func TestRecordAnswerOnTerminatedSession(t *testing.T) {
	h := newSessionHarness(true)
	if _, _, err := h.svc.StartSession(context.Background(), testCode); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.TerminateSession(context.Background(), testCode); err != nil {
		t.Fatal(err)
	}

	_, err := h.svc.RecordAnswer(context.Background(), testCode, 1, model.AnswerPayload{PossibleAnswerID: intPtr(11)})
	if !errors.Is(err, ErrSessionTerminated) {
		t.Errorf("err = %v, want ErrSessionTerminated", err)
	}
}

func TestRecordAnswerAfterExpiryTerminates(t *testing.T) {
	h := newSessionHarness(true)
	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	h.svc.now = func() time.Time { return started }

	sess, _, err := h.svc.StartSession(context.Background(), testCode)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.RecordAnswer(context.Background(), testCode, 1, model.AnswerPayload{PossibleAnswerID: intPtr(11)}); err != nil {
		t.Fatal(err)
	}

	h.svc.now = func() time.Time { return started.Add(TestDuration + time.Minute) }
	_, err = h.svc.RecordAnswer(context.Background(), testCode, 2, model.AnswerPayload{PossibleAnswerID: intPtr(22)})
	if !errors.Is(err, ErrTimeExpired) {
		t.Fatalf("err = %v, want ErrTimeExpired", err)
	}

	// The expired write terminated and scored the session with what existed.
	stored, err := h.sessions.GetByID(context.Background(), sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.Terminated {
		t.Error("expired session must be terminated")
	}
	if stored.ScoreTotal != 1 || stored.ScoreMax != 3 {
		t.Errorf("score = %d/%d, want 1/3", stored.ScoreTotal, stored.ScoreMax)
	}
}

func TestTerminateSessionScoresAndNotifies(t *testing.T) {
	h := newSessionHarness(true)
	if _, _, err := h.svc.StartSession(context.Background(), testCode); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.RecordAnswer(context.Background(), testCode, 1, model.AnswerPayload{PossibleAnswerID: intPtr(11)}); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.RecordAnswer(context.Background(), testCode, 2, model.AnswerPayload{PossibleAnswerID: intPtr(21)}); err != nil {
		t.Fatal(err)
	}

	sess, err := h.svc.TerminateSession(context.Background(), testCode)
	if err != nil {
		t.Fatal(err)
	}
	if !sess.Terminated || sess.EndedAt == nil {
		t.Error("session must be closed")
	}
	if sess.ScoreTotal != 1 || sess.ScoreMax != 3 {
		t.Errorf("score = %d/%d, want 1/3", sess.ScoreTotal, sess.ScoreMax)
	}
	if sess.Percentage != 33.33 {
		t.Errorf("percentage = %v, want 33.33", sess.Percentage)
	}

	if len(h.notifier.payloads) != 1 {
		t.Fatalf("have %d notifications, want 1", len(h.notifier.payloads))
	}
	p := h.notifier.payloads[0]
	if p.Kind != notify.KindResult || p.Email != "ana@example.com" || p.ScoreTotal != 1 {
		t.Errorf("unexpected result payload %+v", p)
	}
}

func TestTerminateSessionIdempotent(t *testing.T) {
	h := newSessionHarness(true)
	if _, _, err := h.svc.StartSession(context.Background(), testCode); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.RecordAnswer(context.Background(), testCode, 1, model.AnswerPayload{PossibleAnswerID: intPtr(11)}); err != nil {
		t.Fatal(err)
	}

	first, err := h.svc.TerminateSession(context.Background(), testCode)
	if err != nil {
		t.Fatal(err)
	}
	second, err := h.svc.TerminateSession(context.Background(), testCode)
	if err != nil {
		t.Fatal(err)
	}
	if second.ScoreTotal != first.ScoreTotal || !second.EndedAt.Equal(*first.EndedAt) {
		t.Error("second terminate must return the stored result unchanged")
	}
	if len(h.notifier.payloads) != 1 {
		t.Errorf("repeated terminate sent %d notifications, want 1", len(h.notifier.payloads))
	}
}

func TestTerminateSessionNotFound(t *testing.T) {
	h := newSessionHarness(true)

	_, err := h.svc.TerminateSession(context.Background(), "MISSING1")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestRemainingSeconds(t *testing.T) {
	h := newSessionHarness(true)
	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	h.svc.now = func() time.Time { return started }

	// No session yet: zero, no error.
	remaining, err := h.svc.RemainingSeconds(context.Background(), testCode)
	if err != nil {
		t.Fatal(err)
	}
	if remaining != 0 {
		t.Errorf("remaining = %d, want 0 for missing session", remaining)
	}

	if _, _, err := h.svc.StartSession(context.Background(), testCode); err != nil {
		t.Fatal(err)
	}

	h.svc.now = func() time.Time { return started.Add(30 * time.Minute) }
	remaining, err = h.svc.RemainingSeconds(context.Background(), testCode)
	if err != nil {
		t.Fatal(err)
	}
	if remaining != 90*60 {
		t.Errorf("remaining = %d, want %d", remaining, 90*60)
	}

	// Past the budget the clock reports zero even before a write expires it.
	h.svc.now = func() time.Time { return started.Add(TestDuration + time.Second) }
	remaining, err = h.svc.RemainingSeconds(context.Background(), testCode)
	if err != nil {
		t.Fatal(err)
	}
	if remaining != 0 {
		t.Errorf("remaining = %d, want 0 past budget", remaining)
	}

	h.svc.now = func() time.Time { return started }
	if _, err := h.svc.TerminateSession(context.Background(), testCode); err != nil {
		t.Fatal(err)
	}
	remaining, err = h.svc.RemainingSeconds(context.Background(), testCode)
	if err != nil {
		t.Fatal(err)
	}
	if remaining != 0 {
		t.Errorf("remaining = %d, want 0 for terminated session", remaining)
	}
}

func TestGetSessionQuestionsSanitized(t *testing.T) {
	h := newSessionHarness(true)
	if _, _, err := h.svc.StartSession(context.Background(), testCode); err != nil {
		t.Fatal(err)
	}

	questions, err := h.svc.GetSessionQuestions(context.Background(), testCode)
	if err != nil {
		t.Fatal(err)
	}
	if len(questions) != 3 {
		t.Fatalf("len(questions) = %d, want 3", len(questions))
	}
	for _, sq := range questions {
		if sq.Question == nil {
			t.Fatal("question not hydrated")
		}
		if sq.Question.Explanation != "" {
			t.Error("explanation leaked to candidate")
		}
		for _, pa := range sq.Question.PossibleAnswers {
			if pa.Correct {
				t.Error("correctness flag leaked to candidate")
			}
		}
	}
}

func TestGetSessionQuestionsNotFound(t *testing.T) {
	h := newSessionHarness(true)

	_, err := h.svc.GetSessionQuestions(context.Background(), "MISSING1")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionAnswersReturnsRecorded(t *testing.T) {
	h := newSessionHarness(true)
	if _, _, err := h.svc.StartSession(context.Background(), testCode); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.RecordAnswer(context.Background(), testCode, 1, model.AnswerPayload{PossibleAnswerID: intPtr(11)}); err != nil {
		t.Fatal(err)
	}

	answers, err := h.svc.SessionAnswers(context.Background(), testCode)
	if err != nil {
		t.Fatal(err)
	}
	if len(answers) != 1 {
		t.Fatalf("len(answers) = %d, want 1", len(answers))
	}
	if answers[0].PossibleAnswerID == nil || *answers[0].PossibleAnswerID != 11 {
		t.Errorf("PossibleAnswerID = %v, want 11", answers[0].PossibleAnswerID)
	}

	if _, err := h.svc.SessionAnswers(context.Background(), "MISSING1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}
