package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/testgest/testgest-backend/internal/model"
	"github.com/testgest/testgest-backend/internal/notify"
)

const (
	accessCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	accessCodeLength   = 8
	// accessCodeAttempts bounds collision retries before giving up.
	accessCodeAttempts = 100
)

// CandidateService handles candidate registration, admin validation (access
// code assignment) and candidate administration.
type CandidateService struct {
	candidates  CandidateStore
	enrollments EnrollmentStore
	slots       SlotStore
	notifier    Notifier
	randIntN    func(n int) int
	logger      zerolog.Logger
}

// NewCandidateService creates a new CandidateService.
func NewCandidateService(candidates CandidateStore, enrollments EnrollmentStore, slots SlotStore, notifier Notifier) *CandidateService {
	return &CandidateService{
		candidates:  candidates,
		enrollments: enrollments,
		slots:       slots,
		notifier:    notifier,
		randIntN:    rand.IntN,
		logger:      log.With().Str("component", "candidate_service").Logger(),
	}
}

// Register creates a candidate and enrolls them into the chosen slot. The
// email must be unused and the slot must have capacity left. The candidate
// starts unvalidated and without an access code.
func (s *CandidateService) Register(ctx context.Context, req *model.RegisterCandidateRequest) (*model.Candidate, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	taken, err := s.candidates.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	slot, err := s.slots.GetByID(ctx, req.SlotID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	if slot.Full {
		return nil, ErrSlotFull
	}
	enrolled, err := s.enrollments.CountBySlot(ctx, slot.ID)
	if err != nil {
		return nil, err
	}
	if enrolled >= slot.Capacity {
		if err := s.slots.SetFull(ctx, slot.ID, true); err != nil {
			s.logger.Warn().Err(err).Int("slot_id", slot.ID).Msg("Failed to flag slot full")
		}
		return nil, ErrSlotFull
	}

	c := &model.Candidate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     email,
		Phone:     req.Phone,
		School:    req.School,
	}
	if err := s.candidates.Create(ctx, c); err != nil {
		return nil, err
	}
	if err := s.enrollments.Create(ctx, &model.Enrollment{CandidateID: c.ID, SlotID: slot.ID}); err != nil {
		return nil, err
	}
	if enrolled+1 >= slot.Capacity {
		if err := s.slots.SetFull(ctx, slot.ID, true); err != nil {
			s.logger.Warn().Err(err).Int("slot_id", slot.ID).Msg("Failed to flag slot full")
		}
	}

	s.logger.Info().Int("candidate_id", c.ID).Int("slot_id", slot.ID).Msg("Registered candidate")
	s.notifier.Notify(ctx, notify.Payload{
		Kind:  notify.KindRegistered,
		Email: c.Email,
		Name:  c.FullName(),
	})
	return c, nil
}

// Validate marks a candidate as validated and assigns their access code. The
// code is generated exactly once; revalidating keeps the existing code.
// Validation also confirms the candidate's enrollments.
func (s *CandidateService) Validate(ctx context.Context, candidateID int) (*model.Candidate, error) {
	c, err := s.getCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	if c.AccessCode == nil {
		code, err := s.generateAccessCode(ctx)
		if err != nil {
			return nil, err
		}
		c.AccessCode = &code
	}
	if !c.Validated {
		c.Validated = true
	}
	if err := s.candidates.Update(ctx, c); err != nil {
		return nil, err
	}

	enrollments, err := s.enrollments.ListByCandidate(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	for _, e := range enrollments {
		if e.Confirmed {
			continue
		}
		if err := s.enrollments.Confirm(ctx, e.ID); err != nil {
			s.logger.Warn().Err(err).Int("enrollment_id", e.ID).Msg("Failed to confirm enrollment")
		}
	}

	s.logger.Info().Int("candidate_id", c.ID).Msg("Validated candidate")
	s.notifier.Notify(ctx, notify.Payload{
		Kind:       notify.KindValidated,
		Email:      c.Email,
		Name:       c.FullName(),
		AccessCode: *c.AccessCode,
	})
	return c, nil
}

// generateAccessCode draws random 8-character codes over A-Z0-9 until one is
// unused, bounded by accessCodeAttempts.
func (s *CandidateService) generateAccessCode(ctx context.Context) (string, error) {
	buf := make([]byte, accessCodeLength)
	for attempt := 0; attempt < accessCodeAttempts; attempt++ {
		for i := range buf {
			buf[i] = accessCodeAlphabet[s.randIntN(len(accessCodeAlphabet))]
		}
		code := string(buf)
		taken, err := s.candidates.ExistsByAccessCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique access code after %d attempts", accessCodeAttempts)
}

// Get retrieves one candidate.
func (s *CandidateService) Get(ctx context.Context, id int) (*model.Candidate, error) {
	return s.getCandidate(ctx, id)
}

// List retrieves candidates for the admin view.
func (s *CandidateService) List(ctx context.Context, search string, limit int) ([]model.Candidate, error) {
	return s.candidates.List(ctx, search, limit)
}

// Enrollments retrieves a candidate's enrollments with slots hydrated.
func (s *CandidateService) Enrollments(ctx context.Context, candidateID int) ([]model.Enrollment, error) {
	if _, err := s.getCandidate(ctx, candidateID); err != nil {
		return nil, err
	}
	return s.enrollments.ListByCandidate(ctx, candidateID)
}

// Update edits candidate identity fields. Validation state and access code
// are untouched.
func (s *CandidateService) Update(ctx context.Context, id int, req *model.UpdateCandidateRequest) (*model.Candidate, error) {
	c, err := s.getCandidate(ctx, id)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != c.Email {
		taken, err := s.candidates.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailTaken
		}
	}

	c.FirstName = req.FirstName
	c.LastName = req.LastName
	c.Email = email
	c.Phone = req.Phone
	c.School = req.School
	if err := s.candidates.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a candidate and, through cascades, their enrollments,
// session and answers.
func (s *CandidateService) Delete(ctx context.Context, id int) error {
	if _, err := s.getCandidate(ctx, id); err != nil {
		return err
	}
	return s.candidates.Delete(ctx, id)
}

func (s *CandidateService) getCandidate(ctx context.Context, id int) (*model.Candidate, error) {
	c, err := s.candidates.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCandidateNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
