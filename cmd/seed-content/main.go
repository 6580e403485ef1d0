package main

import (
	"context"
	"fmt"
	"time"

	"github.com/testgest/testgest-backend/internal/config"
	"github.com/testgest/testgest-backend/internal/database"
	"github.com/testgest/testgest-backend/internal/logger"
	"github.com/testgest/testgest-backend/internal/model"
	"github.com/testgest/testgest-backend/internal/repository"
)

// Question type IDs as seeded by the initial migration.
const (
	typeSingleChoice   = 1
	typeMultipleChoice = 2
	typeFreeText       = 3
)

type seedQuestion struct {
	typeID      int
	text        string
	explanation string
	answers     []model.PossibleAnswer
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	themeRepo := repository.NewThemeRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	slotRepo := repository.NewTimeSlotRepository(pool)
	settingRepo := repository.NewSettingRepository(pool)

	fmt.Println("=== Seeding Demo Content ===")

	themes := map[string][]seedQuestion{
		"Mathematics": {
			{
				typeID: typeSingleChoice,
				text:   "What is the value of 7 * 8?",
				answers: []model.PossibleAnswer{
					{Text: "54"}, {Text: "56", Correct: true}, {Text: "64"}, {Text: "49"},
				},
			},
			{
				typeID:      typeSingleChoice,
				text:        "Which of these numbers is prime?",
				explanation: "91 = 7 * 13, 87 = 3 * 29, 93 = 3 * 31.",
				answers: []model.PossibleAnswer{
					{Text: "91"}, {Text: "87"}, {Text: "89", Correct: true}, {Text: "93"},
				},
			},
			{
				typeID: typeMultipleChoice,
				text:   "Which of the following are even numbers?",
				answers: []model.PossibleAnswer{
					{Text: "12", Correct: true}, {Text: "7"}, {Text: "20", Correct: true}, {Text: "33"},
				},
			},
			{
				typeID: typeFreeText,
				text:   "Explain in your own words what a prime number is.",
			},
		},
		"General Knowledge": {
			{
				typeID: typeSingleChoice,
				text:   "Which planet is closest to the Sun?",
				answers: []model.PossibleAnswer{
					{Text: "Venus"}, {Text: "Mercury", Correct: true}, {Text: "Mars"}, {Text: "Earth"},
				},
			},
			{
				typeID: typeSingleChoice,
				text:   "In which year did the Berlin Wall fall?",
				answers: []model.PossibleAnswer{
					{Text: "1987"}, {Text: "1989", Correct: true}, {Text: "1991"}, {Text: "1993"},
				},
			},
			{
				typeID: typeFreeText,
				text:   "Name a country that borders three or more oceans and justify your answer.",
			},
		},
		"Logic": {
			{
				typeID:      typeSingleChoice,
				text:        "All roses are flowers. Some flowers fade quickly. Which statement must be true?",
				explanation: "The premises say nothing certain about roses fading.",
				answers: []model.PossibleAnswer{
					{Text: "All roses fade quickly"},
					{Text: "Some roses fade quickly"},
					{Text: "No conclusion about roses fading follows", Correct: true},
				},
			},
			{
				typeID: typeSingleChoice,
				text:   "What comes next in the sequence 2, 6, 18, 54, ...?",
				answers: []model.PossibleAnswer{
					{Text: "108"}, {Text: "162", Correct: true}, {Text: "216"}, {Text: "96"},
				},
			},
		},
	}

	questionCount := 0
	for name, questions := range themes {
		theme := &model.Theme{Name: name}
		if err := themeRepo.Create(ctx, theme); err != nil {
			log.Fatal().Err(err).Str("theme", name).Msg("Failed to create theme")
		}
		fmt.Printf("Created theme %q with ID: %d\n", name, theme.ID)

		for _, sq := range questions {
			q := &model.Question{
				ThemeID:         theme.ID,
				TypeID:          sq.typeID,
				Text:            sq.text,
				Explanation:     sq.explanation,
				PossibleAnswers: sq.answers,
			}
			if err := questionRepo.Create(ctx, q); err != nil {
				fmt.Printf("Error creating question %q: %v\n", sq.text, err)
				continue
			}
			questionCount++
		}
	}

	// A slot one week out so the demo data is usable right after seeding.
	slot := &model.TimeSlot{
		ExamDate:        time.Now().AddDate(0, 0, 7).Truncate(24 * time.Hour),
		StartTime:       "09:00",
		DurationMinutes: 180,
		Capacity:        30,
	}
	if err := slotRepo.Create(ctx, slot); err != nil {
		log.Fatal().Err(err).Msg("Failed to create time slot")
	}
	fmt.Printf("Created time slot with ID: %d (%s %s)\n", slot.ID, slot.ExamDate.Format("2006-01-02"), slot.StartTime)

	defaults := map[string]string{
		"questions_per_theme":  "5",
		"seconds_per_question": "120",
	}
	for key, value := range defaults {
		if err := settingRepo.Upsert(ctx, key, value); err != nil {
			fmt.Printf("Error seeding setting %s: %v\n", key, err)
		}
	}

	fmt.Printf("\nSeed completed! %d themes, %d questions.\n", len(themes), questionCount)
}
