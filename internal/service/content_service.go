package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/testgest/testgest-backend/internal/model"
)

// ContentService handles theme and question administration.
type ContentService struct {
	themes    ThemeStore
	questions QuestionStore
	logger    zerolog.Logger
}

// NewContentService creates a new ContentService.
func NewContentService(themes ThemeStore, questions QuestionStore) *ContentService {
	return &ContentService{
		themes:    themes,
		questions: questions,
		logger:    log.With().Str("component", "content_service").Logger(),
	}
}

// ListThemes retrieves all themes.
func (s *ContentService) ListThemes(ctx context.Context) ([]model.Theme, error) {
	return s.themes.List(ctx)
}

// CreateTheme adds a theme.
func (s *ContentService) CreateTheme(ctx context.Context, req *model.ThemeRequest) (*model.Theme, error) {
	t := &model.Theme{Name: req.Name, Description: req.Description}
	if err := s.themes.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTheme edits a theme.
func (s *ContentService) UpdateTheme(ctx context.Context, id int, req *model.ThemeRequest) (*model.Theme, error) {
	t, err := s.themes.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}
	t.Name = req.Name
	t.Description = req.Description
	if err := s.themes.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTheme removes a theme without questions.
func (s *ContentService) DeleteTheme(ctx context.Context, id int) error {
	if _, err := s.themes.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrContentNotFound
		}
		return err
	}
	return s.themes.Delete(ctx, id)
}

// ListQuestions retrieves the bare questions of one theme.
func (s *ContentService) ListQuestions(ctx context.Context, themeID int) ([]model.Question, error) {
	if _, err := s.themes.GetByID(ctx, themeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	return s.questions.ListByTheme(ctx, themeID)
}

// GetQuestion retrieves one question with type and answers.
func (s *ContentService) GetQuestion(ctx context.Context, id int) (*model.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// CreateQuestion adds a question with its possible answers.
func (s *ContentService) CreateQuestion(ctx context.Context, req *model.QuestionRequest) (*model.Question, error) {
	q := questionFromRequest(req)
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, err
	}
	s.logger.Info().Int("question_id", q.ID).Int("theme_id", q.ThemeID).Msg("Created question")
	return q, nil
}

// UpdateQuestion replaces a question and its whole answer set.
func (s *ContentService) UpdateQuestion(ctx context.Context, id int, req *model.QuestionRequest) (*model.Question, error) {
	q := questionFromRequest(req)
	q.ID = id
	err := s.questions.Update(ctx, q)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// DeleteQuestion removes a question and its answers.
func (s *ContentService) DeleteQuestion(ctx context.Context, id int) error {
	if _, err := s.questions.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrContentNotFound
		}
		return err
	}
	return s.questions.Delete(ctx, id)
}

func questionFromRequest(req *model.QuestionRequest) *model.Question {
	q := &model.Question{
		ThemeID:     req.ThemeID,
		TypeID:      req.TypeID,
		Text:        req.Text,
		Explanation: req.Explanation,
	}
	for _, a := range req.PossibleAnswers {
		q.PossibleAnswers = append(q.PossibleAnswers, model.PossibleAnswer{
			Text:    a.Text,
			Correct: a.Correct,
		})
	}
	return q
}
