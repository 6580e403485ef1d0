package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EligibilityService decides whether an access code may start a test right
// now: the code must belong to a validated candidate with at least one
// enrollment whose slot window contains the current time. Both window bounds
// are inclusive.
type EligibilityService struct {
	candidates  CandidateStore
	enrollments EnrollmentStore
	now         func() time.Time
	logger      zerolog.Logger
}

// NewEligibilityService creates a new EligibilityService.
func NewEligibilityService(candidates CandidateStore, enrollments EnrollmentStore) *EligibilityService {
	return &EligibilityService{
		candidates:  candidates,
		enrollments: enrollments,
		now:         time.Now,
		logger:      log.With().Str("component", "eligibility_service").Logger(),
	}
}

// CheckEligibility reports whether the access code may start a test at this
// moment. Unknown codes, unvalidated candidates and codes with no enrollment
// inside an open window all yield false without an error.
func (s *EligibilityService) CheckEligibility(ctx context.Context, code string) (bool, error) {
	c, err := s.candidates.GetByAccessCode(ctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !c.Validated {
		return false, nil
	}

	enrollments, err := s.enrollments.ListByCandidate(ctx, c.ID)
	if err != nil {
		return false, err
	}

	now := s.now()
	for _, e := range enrollments {
		if e.Slot == nil {
			continue
		}
		day := e.Slot.ExamDate
		anchor := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())
		start, end, err := e.Slot.Window(anchor)
		if err != nil {
			s.logger.Warn().Err(err).Int("slot_id", e.SlotID).Msg("Skipping slot with unparsable start time")
			continue
		}
		if !now.Before(start) && !now.After(end) {
			return true, nil
		}
	}
	return false, nil
}
