package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/testgest/testgest-backend/internal/config"
	"github.com/testgest/testgest-backend/internal/database"
	"github.com/testgest/testgest-backend/internal/handler"
	"github.com/testgest/testgest-backend/internal/lock"
	"github.com/testgest/testgest-backend/internal/logger"
	"github.com/testgest/testgest-backend/internal/notify"
	"github.com/testgest/testgest-backend/internal/repository"
	"github.com/testgest/testgest-backend/internal/router"
	"github.com/testgest/testgest-backend/internal/service"
	"github.com/testgest/testgest-backend/internal/validator"
	"github.com/testgest/testgest-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting TestGest Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	adminRepo := repository.NewAdminRepository(pool)
	candidateRepo := repository.NewCandidateRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	slotRepo := repository.NewTimeSlotRepository(pool)
	themeRepo := repository.NewThemeRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	sessionRepo := repository.NewTestSessionRepository(pool)
	sessionQuestionRepo := repository.NewSessionQuestionRepository(pool)
	answerRepo := repository.NewAnswerRecordRepository(pool)
	settingRepo := repository.NewSettingRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	notifier := notify.NewQueueNotifier(rdb)
	sessionLock := lock.NewRedisMutex(rdb)

	authService := service.NewAuthService(adminRepo, cfg.JWTSecret, cfg.JWTExpiry)
	settingService := service.NewSettingService(settingRepo, rdb)
	eligibilityService := service.NewEligibilityService(candidateRepo, enrollmentRepo)
	assembler := service.NewQuestionSetAssembler(themeRepo, questionRepo, settingService)
	sessionService := service.NewTestSessionService(
		sessionRepo,
		sessionQuestionRepo,
		answerRepo,
		questionRepo,
		candidateRepo,
		eligibilityService,
		assembler,
		sessionLock,
		notifier,
	)
	candidateService := service.NewCandidateService(candidateRepo, enrollmentRepo, slotRepo, notifier)
	slotService := service.NewTimeSlotService(slotRepo)
	contentService := service.NewContentService(themeRepo, questionRepo)
	resultService := service.NewResultService(sessionRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Registration: handler.NewRegistrationHandler(candidateService, slotService),
		Portal:       handler.NewPortalHandler(sessionService, eligibilityService),
		Candidate:    handler.NewCandidateHandler(candidateService),
		TimeSlot:     handler.NewTimeSlotHandler(slotService),
		Content:      handler.NewContentHandler(contentService),
		Result:       handler.NewResultHandler(resultService),
		Setting:      handler.NewSettingHandler(settingService),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	notifyWorker := worker.NewNotifyWorker(rdb, cfg, log)
	go notifyWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the notification worker and let it finish the current item.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
