package model

import "time"

// Candidate represents a registered test candidate. The access code is
// assigned exactly once, when an administrator validates the registration,
// and is never regenerated afterwards.
type Candidate struct {
	ID         int       `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	School     string    `json:"school"`
	Validated  bool      `json:"validated"`
	AccessCode *string   `json:"access_code,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// FullName returns the candidate's display name.
func (c *Candidate) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Enrollment links one candidate to one time slot. Unique per (candidate, slot).
type Enrollment struct {
	ID          int       `json:"id"`
	CandidateID int       `json:"candidate_id"`
	SlotID      int       `json:"slot_id"`
	Confirmed   bool      `json:"confirmed"`
	CreatedAt   time.Time `json:"created_at"`

	// Slot is hydrated by list queries that join the time slot row.
	Slot *TimeSlot `json:"slot,omitempty"`
}

// RegisterCandidateRequest is the payload for public candidate registration.
type RegisterCandidateRequest struct {
	FirstName string `json:"first_name" binding:"required,min=1,max=100"`
	LastName  string `json:"last_name" binding:"required,min=1,max=100"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Phone     string `json:"phone" binding:"max=30"`
	School    string `json:"school" binding:"required,min=1,max=255"`
	SlotID    int    `json:"slot_id" binding:"required,min=1"`
}

// UpdateCandidateRequest is the payload for admin candidate edits.
type UpdateCandidateRequest struct {
	FirstName string `json:"first_name" binding:"required,min=1,max=100"`
	LastName  string `json:"last_name" binding:"required,min=1,max=100"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Phone     string `json:"phone" binding:"max=30"`
	School    string `json:"school" binding:"required,min=1,max=255"`
}
