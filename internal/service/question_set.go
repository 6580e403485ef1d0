package service

import (
	"context"
	"math/rand/v2"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/testgest/testgest-backend/internal/model"
)

// SettingSource resolves integer settings with built-in defaults.
type SettingSource interface {
	Int(ctx context.Context, key string) int
}

// QuestionSetAssembler draws the question set for a new test session: from
// each theme it samples up to the configured number of questions uniformly
// at random, then shuffles the combined set so themes are interleaved.
// Themes with fewer questions than the sample size contribute all of them.
type QuestionSetAssembler struct {
	themes    ThemeStore
	questions QuestionStore
	settings  SettingSource
	newRand   func() *rand.Rand
	logger    zerolog.Logger
}

// NewQuestionSetAssembler creates a new QuestionSetAssembler.
func NewQuestionSetAssembler(themes ThemeStore, questions QuestionStore, settings SettingSource) *QuestionSetAssembler {
	return &QuestionSetAssembler{
		themes:    themes,
		questions: questions,
		settings:  settings,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
		logger: log.With().Str("component", "question_set_assembler").Logger(),
	}
}

// Assemble builds the ordered question set for one attempt. Display order is
// 1-based and the per-question time allotment comes from settings. Returns
// ErrNoQuestionsAvailable when the content pool is empty.
func (a *QuestionSetAssembler) Assemble(ctx context.Context) ([]model.SessionQuestion, error) {
	// A stored setting can hold any integer; a non-positive sample size must
	// not slice below zero.
	perTheme := max(0, a.settings.Int(ctx, SettingQuestionsPerTheme))
	allotted := a.settings.Int(ctx, SettingSecondsPerQuestion)

	themes, err := a.themes.List(ctx)
	if err != nil {
		return nil, err
	}

	rng := a.newRand()
	var picked []model.Question
	for _, t := range themes {
		pool, err := a.questions.ListByTheme(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		rng.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
		n := min(perTheme, len(pool))
		picked = append(picked, pool[:n]...)
	}

	if len(picked) == 0 {
		return nil, ErrNoQuestionsAvailable
	}

	rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	set := make([]model.SessionQuestion, len(picked))
	for i, q := range picked {
		set[i] = model.SessionQuestion{
			QuestionID:      q.ID,
			DisplayOrder:    i + 1,
			AllottedSeconds: allotted,
		}
	}
	a.logger.Debug().Int("questions", len(set)).Int("per_theme", perTheme).Msg("Assembled question set")
	return set, nil
}
