package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/testgest/testgest-backend/internal/model"
	"github.com/testgest/testgest-backend/internal/notify"
	"github.com/testgest/testgest-backend/internal/repository"
)

// In-memory fakes for the store interfaces. They mimic the pgx repositories,
// including pgx.ErrNoRows on missing rows.

type fakeCandidateStore struct {
	nextID int
	rows   map[int]*model.Candidate
}

func newFakeCandidateStore() *fakeCandidateStore {
	return &fakeCandidateStore{rows: make(map[int]*model.Candidate)}
}

func (f *fakeCandidateStore) add(c *model.Candidate) *model.Candidate {
	f.nextID++
	c.ID = f.nextID
	f.rows[c.ID] = c
	return c
}

func (f *fakeCandidateStore) GetByID(_ context.Context, id int) (*model.Candidate, error) {
	c, ok := f.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCandidateStore) GetByAccessCode(_ context.Context, code string) (*model.Candidate, error) {
	for _, c := range f.rows {
		if c.AccessCode != nil && *c.AccessCode == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCandidateStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, c := range f.rows {
		if c.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCandidateStore) ExistsByAccessCode(_ context.Context, code string) (bool, error) {
	for _, c := range f.rows {
		if c.AccessCode != nil && *c.AccessCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCandidateStore) Create(_ context.Context, c *model.Candidate) error {
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Now()
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeCandidateStore) Update(_ context.Context, c *model.Candidate) error {
	if _, ok := f.rows[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeCandidateStore) Delete(_ context.Context, id int) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeCandidateStore) List(_ context.Context, _ string, _ int) ([]model.Candidate, error) {
	var out []model.Candidate
	for _, c := range f.rows {
		out = append(out, *c)
	}
	return out, nil
}

type fakeEnrollmentStore struct {
	nextID int
	rows   []*model.Enrollment
}

func (f *fakeEnrollmentStore) Create(_ context.Context, e *model.Enrollment) error {
	f.nextID++
	e.ID = f.nextID
	e.CreatedAt = time.Now()
	cp := *e
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeEnrollmentStore) ListByCandidate(_ context.Context, candidateID int) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for _, e := range f.rows {
		if e.CandidateID == candidateID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEnrollmentStore) CountBySlot(_ context.Context, slotID int) (int, error) {
	n := 0
	for _, e := range f.rows {
		if e.SlotID == slotID {
			n++
		}
	}
	return n, nil
}

func (f *fakeEnrollmentStore) Confirm(_ context.Context, id int) error {
	for _, e := range f.rows {
		if e.ID == id {
			e.Confirmed = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeSlotStore struct {
	nextID int
	rows   map[int]*model.TimeSlot
	inUse  map[int]bool
}

func newFakeSlotStore() *fakeSlotStore {
	return &fakeSlotStore{rows: make(map[int]*model.TimeSlot), inUse: make(map[int]bool)}
}

func (f *fakeSlotStore) add(s *model.TimeSlot) *model.TimeSlot {
	f.nextID++
	s.ID = f.nextID
	f.rows[s.ID] = s
	return s
}

func (f *fakeSlotStore) GetByID(_ context.Context, id int) (*model.TimeSlot, error) {
	s, ok := f.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSlotStore) List(_ context.Context) ([]model.TimeSlot, error) {
	var out []model.TimeSlot
	for _, s := range f.rows {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSlotStore) ListOpen(ctx context.Context) ([]model.TimeSlot, error) {
	return f.List(ctx)
}

func (f *fakeSlotStore) Create(_ context.Context, s *model.TimeSlot) error {
	f.nextID++
	s.ID = f.nextID
	cp := *s
	f.rows[s.ID] = &cp
	return nil
}

func (f *fakeSlotStore) Update(_ context.Context, s *model.TimeSlot) error {
	if _, ok := f.rows[s.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *s
	f.rows[s.ID] = &cp
	return nil
}

func (f *fakeSlotStore) SetFull(_ context.Context, id int, full bool) error {
	s, ok := f.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	s.Full = full
	return nil
}

func (f *fakeSlotStore) Delete(_ context.Context, id int) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeSlotStore) InUse(_ context.Context, id int) (bool, error) {
	return f.inUse[id], nil
}

type fakeThemeStore struct {
	rows []model.Theme
}

func (f *fakeThemeStore) List(_ context.Context) ([]model.Theme, error) {
	return append([]model.Theme(nil), f.rows...), nil
}

func (f *fakeThemeStore) GetByID(_ context.Context, id int) (*model.Theme, error) {
	for _, t := range f.rows {
		if t.ID == id {
			cp := t
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeThemeStore) Create(_ context.Context, t *model.Theme) error {
	t.ID = len(f.rows) + 1
	f.rows = append(f.rows, *t)
	return nil
}

func (f *fakeThemeStore) Update(_ context.Context, t *model.Theme) error {
	for i := range f.rows {
		if f.rows[i].ID == t.ID {
			f.rows[i] = *t
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeThemeStore) Delete(_ context.Context, id int) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeQuestionStore struct {
	questions map[int]*model.Question
	answers   map[int]*model.PossibleAnswer
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{
		questions: make(map[int]*model.Question),
		answers:   make(map[int]*model.PossibleAnswer),
	}
}

func (f *fakeQuestionStore) add(q *model.Question) *model.Question {
	f.questions[q.ID] = q
	for i := range q.PossibleAnswers {
		a := q.PossibleAnswers[i]
		a.QuestionID = q.ID
		f.answers[a.ID] = &a
	}
	return q
}

func (f *fakeQuestionStore) ListByTheme(_ context.Context, themeID int) ([]model.Question, error) {
	var out []model.Question
	for _, q := range f.questions {
		if q.ThemeID == themeID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeQuestionStore) GetByID(_ context.Context, id int) (*model.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuestionStore) GetPossibleAnswer(_ context.Context, id int) (*model.PossibleAnswer, error) {
	a, ok := f.answers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (f *fakeQuestionStore) Create(_ context.Context, q *model.Question) error {
	q.ID = len(f.questions) + 1
	f.add(q)
	return nil
}

func (f *fakeQuestionStore) Update(_ context.Context, q *model.Question) error {
	if _, ok := f.questions[q.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.questions[q.ID] = q
	return nil
}

func (f *fakeQuestionStore) Delete(_ context.Context, id int) error {
	delete(f.questions, id)
	return nil
}

type fakeSessionStore struct {
	nextID    int
	rows      map[int]*model.TestSession
	snapshots *fakeSessionQuestionStore
	answers   *fakeAnswerStore

	// createErr makes the next CreateWithQuestions fail atomically, writing
	// nothing. Consumed on use.
	createErr error
}

func newFakeSessionStore(snapshots *fakeSessionQuestionStore, answers *fakeAnswerStore) *fakeSessionStore {
	return &fakeSessionStore{
		rows:      make(map[int]*model.TestSession),
		snapshots: snapshots,
		answers:   answers,
	}
}

func (f *fakeSessionStore) GetByID(_ context.Context, id int) (*model.TestSession, error) {
	s, ok := f.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) GetByAccessCode(_ context.Context, code string) (*model.TestSession, error) {
	for _, s := range f.rows {
		if s.AccessCode == code {
			cp := *s
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSessionStore) CreateWithQuestions(_ context.Context, s *model.TestSession, questions []model.SessionQuestion) error {
	if f.createErr != nil {
		err := f.createErr
		f.createErr = nil
		return err
	}
	f.nextID++
	s.ID = f.nextID
	for i := range questions {
		questions[i].SessionID = s.ID
	}
	f.snapshots.addBatch(questions)
	cp := *s
	f.rows[s.ID] = &cp
	return nil
}

func (f *fakeSessionStore) Reset(_ context.Context, s *model.TestSession) error {
	if _, ok := f.rows[s.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.answers.deleteBySession(s.ID)
	cp := *s
	f.rows[s.ID] = &cp
	return nil
}

func (f *fakeSessionStore) Update(_ context.Context, s *model.TestSession) error {
	if _, ok := f.rows[s.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *s
	f.rows[s.ID] = &cp
	return nil
}

func (f *fakeSessionStore) ListResults(_ context.Context, _ int) ([]repository.SessionResult, error) {
	return nil, nil
}

func (f *fakeSessionStore) Stats(_ context.Context) (*repository.SessionStats, error) {
	return &repository.SessionStats{}, nil
}

type fakeSessionQuestionStore struct {
	nextID    int
	rows      []*model.SessionQuestion
	questions *fakeQuestionStore
}

func newFakeSessionQuestionStore(questions *fakeQuestionStore) *fakeSessionQuestionStore {
	return &fakeSessionQuestionStore{questions: questions}
}

func (f *fakeSessionQuestionStore) addBatch(questions []model.SessionQuestion) {
	for i := range questions {
		f.nextID++
		questions[i].ID = f.nextID
		cp := questions[i]
		f.rows = append(f.rows, &cp)
	}
}

func (f *fakeSessionQuestionStore) ListBySession(_ context.Context, sessionID int) ([]model.SessionQuestion, error) {
	var out []model.SessionQuestion
	for _, sq := range f.rows {
		if sq.SessionID == sessionID {
			out = append(out, *sq)
		}
	}
	return out, nil
}

func (f *fakeSessionQuestionStore) ListBySessionHydrated(ctx context.Context, sessionID int) ([]model.SessionQuestion, error) {
	out, _ := f.ListBySession(ctx, sessionID)
	for i := range out {
		if q, ok := f.questions.questions[out[i].QuestionID]; ok {
			cp := *q
			cp.PossibleAnswers = append([]model.PossibleAnswer(nil), q.PossibleAnswers...)
			out[i].Question = &cp
		}
	}
	return out, nil
}

func (f *fakeSessionQuestionStore) GetBySessionAndQuestion(_ context.Context, sessionID, questionID int) (*model.SessionQuestion, error) {
	for _, sq := range f.rows {
		if sq.SessionID == sessionID && sq.QuestionID == questionID {
			cp := *sq
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeAnswerStore struct {
	nextID           int
	rows             map[int]*model.AnswerRecord // keyed by session question ID
	sessionQuestions *fakeSessionQuestionStore
}

func newFakeAnswerStore(sq *fakeSessionQuestionStore) *fakeAnswerStore {
	return &fakeAnswerStore{rows: make(map[int]*model.AnswerRecord), sessionQuestions: sq}
}

func (f *fakeAnswerStore) GetBySessionQuestion(_ context.Context, sessionQuestionID int) (*model.AnswerRecord, error) {
	rec, ok := f.rows[sessionQuestionID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeAnswerStore) ListBySession(_ context.Context, sessionID int) ([]model.AnswerRecord, error) {
	var out []model.AnswerRecord
	for _, sq := range f.sessionQuestions.rows {
		if sq.SessionID != sessionID {
			continue
		}
		if rec, ok := f.rows[sq.ID]; ok {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeAnswerStore) Upsert(_ context.Context, rec *model.AnswerRecord) error {
	if existing, ok := f.rows[rec.SessionQuestionID]; ok {
		rec.ID = existing.ID
	} else {
		f.nextID++
		rec.ID = f.nextID
	}
	rec.UpdatedAt = time.Now()
	cp := *rec
	f.rows[rec.SessionQuestionID] = &cp
	return nil
}

func (f *fakeAnswerStore) deleteBySession(sessionID int) {
	for _, sq := range f.sessionQuestions.rows {
		if sq.SessionID == sessionID {
			delete(f.rows, sq.ID)
		}
	}
}

type fakeNotifier struct {
	payloads []notify.Payload
}

func (f *fakeNotifier) Notify(_ context.Context, p notify.Payload) {
	f.payloads = append(f.payloads, p)
}

type fakeSettings struct {
	values map[string]int
}

func (f *fakeSettings) Int(_ context.Context, key string) int {
	if v, ok := f.values[key]; ok {
		return v
	}
	return settingDefaults[key]
}

type staticEligibility struct {
	eligible bool
	err      error
}

func (s staticEligibility) CheckEligibility(_ context.Context, _ string) (bool, error) {
	return s.eligible, s.err
}

type nopLocker struct{}

func (nopLocker) Acquire(_ context.Context, _ string) (func(), error) {
	return func() {}, nil
}
