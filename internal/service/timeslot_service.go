package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/testgest/testgest-backend/internal/model"
)

// TimeSlotService handles exam window administration. Slots referenced by a
// test session are immutable.
type TimeSlotService struct {
	slots  SlotStore
	logger zerolog.Logger
}

// NewTimeSlotService creates a new TimeSlotService.
func NewTimeSlotService(slots SlotStore) *TimeSlotService {
	return &TimeSlotService{
		slots:  slots,
		logger: log.With().Str("component", "timeslot_service").Logger(),
	}
}

// List retrieves all slots.
func (s *TimeSlotService) List(ctx context.Context) ([]model.TimeSlot, error) {
	return s.slots.List(ctx)
}

// ListOpen retrieves future slots with capacity left, for the public
// registration form.
func (s *TimeSlotService) ListOpen(ctx context.Context) ([]model.TimeSlot, error) {
	return s.slots.ListOpen(ctx)
}

// Get retrieves one slot.
func (s *TimeSlotService) Get(ctx context.Context, id int) (*model.TimeSlot, error) {
	return s.getSlot(ctx, id)
}

// Create adds a new slot.
func (s *TimeSlotService) Create(ctx context.Context, req *model.TimeSlotRequest) (*model.TimeSlot, error) {
	slot, err := slotFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, err
	}
	s.logger.Info().Int("slot_id", slot.ID).Msg("Created time slot")
	return slot, nil
}

// Update edits a slot that is not yet referenced by any test session.
func (s *TimeSlotService) Update(ctx context.Context, id int, req *model.TimeSlotRequest) (*model.TimeSlot, error) {
	existing, err := s.getSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	used, err := s.slots.InUse(ctx, id)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, ErrSlotInUse
	}

	slot, err := slotFromRequest(req)
	if err != nil {
		return nil, err
	}
	slot.ID = existing.ID
	slot.Full = existing.Full
	slot.CreatedAt = existing.CreatedAt
	if err := s.slots.Update(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// Delete removes a slot that is not yet referenced by any test session.
func (s *TimeSlotService) Delete(ctx context.Context, id int) error {
	if _, err := s.getSlot(ctx, id); err != nil {
		return err
	}
	used, err := s.slots.InUse(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return ErrSlotInUse
	}
	return s.slots.Delete(ctx, id)
}

func (s *TimeSlotService) getSlot(ctx context.Context, id int) (*model.TimeSlot, error) {
	slot, err := s.slots.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func slotFromRequest(req *model.TimeSlotRequest) (*model.TimeSlot, error) {
	// Binding already validated the formats; a parse failure here is a bug.
	examDate, err := time.Parse("2006-01-02", req.ExamDate)
	if err != nil {
		return nil, err
	}
	return &model.TimeSlot{
		ExamDate:        examDate,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Capacity:        req.Capacity,
	}, nil
}
