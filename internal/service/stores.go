package service

import (
	"context"

	"github.com/testgest/testgest-backend/internal/model"
	"github.com/testgest/testgest-backend/internal/notify"
	"github.com/testgest/testgest-backend/internal/repository"
)

// Store interfaces are declared where they are consumed so services can be
// unit tested with in-memory fakes. The pgx repositories satisfy them
// structurally.

// CandidateStore is the candidate persistence surface.
type CandidateStore interface {
	GetByID(ctx context.Context, id int) (*model.Candidate, error)
	GetByAccessCode(ctx context.Context, code string) (*model.Candidate, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByAccessCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, c *model.Candidate) error
	Update(ctx context.Context, c *model.Candidate) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, search string, limit int) ([]model.Candidate, error)
}

// EnrollmentStore is the enrollment persistence surface.
type EnrollmentStore interface {
	Create(ctx context.Context, e *model.Enrollment) error
	ListByCandidate(ctx context.Context, candidateID int) ([]model.Enrollment, error)
	CountBySlot(ctx context.Context, slotID int) (int, error)
	Confirm(ctx context.Context, id int) error
}

// SlotStore is the time slot persistence surface.
type SlotStore interface {
	GetByID(ctx context.Context, id int) (*model.TimeSlot, error)
	List(ctx context.Context) ([]model.TimeSlot, error)
	ListOpen(ctx context.Context) ([]model.TimeSlot, error)
	Create(ctx context.Context, s *model.TimeSlot) error
	Update(ctx context.Context, s *model.TimeSlot) error
	SetFull(ctx context.Context, id int, full bool) error
	Delete(ctx context.Context, id int) error
	InUse(ctx context.Context, id int) (bool, error)
}

// ThemeStore is the theme persistence surface.
type ThemeStore interface {
	List(ctx context.Context) ([]model.Theme, error)
	GetByID(ctx context.Context, id int) (*model.Theme, error)
	Create(ctx context.Context, t *model.Theme) error
	Update(ctx context.Context, t *model.Theme) error
	Delete(ctx context.Context, id int) error
}

// QuestionStore is the question persistence surface.
type QuestionStore interface {
	ListByTheme(ctx context.Context, themeID int) ([]model.Question, error)
	GetByID(ctx context.Context, id int) (*model.Question, error)
	GetPossibleAnswer(ctx context.Context, id int) (*model.PossibleAnswer, error)
	Create(ctx context.Context, q *model.Question) error
	Update(ctx context.Context, q *model.Question) error
	Delete(ctx context.Context, id int) error
}

// SessionStore is the test session persistence surface. CreateWithQuestions
// and Reset are atomic: a session is never observable without its question
// set, and a reset never leaves answers deleted on a still-terminated row.
type SessionStore interface {
	GetByID(ctx context.Context, id int) (*model.TestSession, error)
	GetByAccessCode(ctx context.Context, code string) (*model.TestSession, error)
	CreateWithQuestions(ctx context.Context, s *model.TestSession, questions []model.SessionQuestion) error
	Reset(ctx context.Context, s *model.TestSession) error
	Update(ctx context.Context, s *model.TestSession) error
	ListResults(ctx context.Context, limit int) ([]repository.SessionResult, error)
	Stats(ctx context.Context) (*repository.SessionStats, error)
}

// SessionQuestionStore is the per-attempt question snapshot surface.
type SessionQuestionStore interface {
	ListBySession(ctx context.Context, sessionID int) ([]model.SessionQuestion, error)
	ListBySessionHydrated(ctx context.Context, sessionID int) ([]model.SessionQuestion, error)
	GetBySessionAndQuestion(ctx context.Context, sessionID, questionID int) (*model.SessionQuestion, error)
}

// AnswerStore is the answer record persistence surface.
type AnswerStore interface {
	GetBySessionQuestion(ctx context.Context, sessionQuestionID int) (*model.AnswerRecord, error)
	ListBySession(ctx context.Context, sessionID int) ([]model.AnswerRecord, error)
	Upsert(ctx context.Context, rec *model.AnswerRecord) error
}

// AdminStore is the administrator persistence surface.
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (*model.Administrator, error)
	GetByID(ctx context.Context, id int) (*model.Administrator, error)
	Create(ctx context.Context, a *model.Administrator) error
}

// SettingStore is the app settings persistence surface.
type SettingStore interface {
	GetAll(ctx context.Context) ([]model.AppSetting, error)
	GetByKey(ctx context.Context, key string) (*model.AppSetting, error)
	Upsert(ctx context.Context, key, value string) error
}

// Locker serializes writers per access code. Acquire blocks until the key is
// held and returns the release function.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// Notifier enqueues candidate notifications. Implementations never return
// errors to the caller; delivery problems are logged downstream.
type Notifier interface {
	Notify(ctx context.Context, p notify.Payload)
}
