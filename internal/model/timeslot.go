package model

import (
	"fmt"
	"time"
)

// TimeSlot is a scheduled exam window. The end time is derived from the
// start time plus the duration. A slot referenced by a test session is
// immutable.
type TimeSlot struct {
	ID              int       `json:"id"`
	ExamDate        time.Time `json:"exam_date"`
	StartTime       string    `json:"start_time"` // "HH:MM"
	DurationMinutes int       `json:"duration_minutes"`
	Capacity        int       `json:"capacity"`
	Full            bool      `json:"full"`
	CreatedAt       time.Time `json:"created_at"`
}

// EndTime returns the derived "HH:MM" end of the slot.
func (s *TimeSlot) EndTime() string {
	start, err := time.Parse("15:04", s.StartTime)
	if err != nil {
		return ""
	}
	return start.Add(time.Duration(s.DurationMinutes) * time.Minute).Format("15:04")
}

// Window returns the [start, end] eligibility bounds of the slot anchored to
// the given day (only the year/month/day of day are used). Both bounds are
// inclusive for eligibility purposes.
func (s *TimeSlot) Window(day time.Time) (time.Time, time.Time, error) {
	t, err := time.Parse("15:04", s.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse slot start time %q: %w", s.StartTime, err)
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location())
	end := start.Add(time.Duration(s.DurationMinutes) * time.Minute)
	return start, end, nil
}

// TimeSlotRequest is the payload for creating or updating a time slot.
type TimeSlotRequest struct {
	ExamDate        string `json:"exam_date" binding:"required,datetime=2006-01-02"`
	StartTime       string `json:"start_time" binding:"required,datetime=15:04"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1,max=1440"`
	Capacity        int    `json:"capacity" binding:"required,min=1"`
}
