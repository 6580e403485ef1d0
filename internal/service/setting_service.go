package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/testgest/testgest-backend/internal/config"
	"github.com/testgest/testgest-backend/internal/model"
)

// Setting keys.
const (
	SettingQuestionsPerTheme  = "questions_per_theme"
	SettingSecondsPerQuestion = "seconds_per_question"
)

// settingDefaults are used when a key has no stored value or the stored
// value does not parse.
var settingDefaults = map[string]int{
	SettingQuestionsPerTheme:  5,
	SettingSecondsPerQuestion: 120,
}

const settingCacheTTL = time.Hour

// SettingService serves tunable application settings with a Redis
// read-through cache in front of Postgres.
type SettingService struct {
	settings SettingStore
	rdb      *redis.Client
	logger   zerolog.Logger
}

// NewSettingService creates a new SettingService.
func NewSettingService(settings SettingStore, rdb *redis.Client) *SettingService {
	return &SettingService{
		settings: settings,
		rdb:      rdb,
		logger:   log.With().Str("component", "setting_service").Logger(),
	}
}

// Int resolves an integer setting: Redis cache first, then Postgres (healing
// the cache), then the compiled-in default. Lookup problems degrade to the
// default rather than failing the caller.
func (s *SettingService) Int(ctx context.Context, key string) int {
	cacheKey := config.CacheKey.SettingKey(key)

	if s.rdb != nil {
		if v, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", key).Msg("Setting cache read failed")
		}
	}

	row, err := s.settings.GetByKey(ctx, key)
	if err == nil {
		if n, convErr := strconv.Atoi(row.Value); convErr == nil {
			if s.rdb != nil {
				if err := s.rdb.Set(ctx, cacheKey, row.Value, settingCacheTTL).Err(); err != nil {
					s.logger.Warn().Err(err).Str("key", key).Msg("Setting cache write failed")
				}
			}
			return n
		}
		s.logger.Warn().Str("key", key).Str("value", row.Value).Msg("Stored setting is not an integer, using default")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		s.logger.Warn().Err(err).Str("key", key).Msg("Setting lookup failed, using default")
	}

	return settingDefaults[key]
}

// All lists every stored setting, backfilling defaults for known keys that
// have no row yet.
func (s *SettingService) All(ctx context.Context) ([]model.AppSetting, error) {
	stored, err := s.settings.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(stored))
	for _, row := range stored {
		seen[row.Key] = true
	}
	for key, def := range settingDefaults {
		if !seen[key] {
			stored = append(stored, model.AppSetting{Key: key, Value: strconv.Itoa(def)})
		}
	}
	return stored, nil
}

// Update writes a known setting and refreshes the cache. Both known keys are
// counts, so the value must be a positive integer.
func (s *SettingService) Update(ctx context.Context, key, value string) error {
	if _, known := settingDefaults[key]; !known {
		return ErrSettingUnknown
	}
	if n, err := strconv.Atoi(value); err != nil || n <= 0 {
		return ErrSettingInvalid
	}
	if err := s.settings.Upsert(ctx, key, value); err != nil {
		return err
	}
	if s.rdb != nil {
		if err := s.rdb.Set(ctx, config.CacheKey.SettingKey(key), value, settingCacheTTL).Err(); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Setting cache refresh failed")
		}
	}
	return nil
}
