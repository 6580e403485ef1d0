package service

import "errors"

// Sentinel errors returned by services. Handlers map them to HTTP status
// codes and response error codes.
var (
	ErrNotEligible          = errors.New("candidate is not eligible to start a test now")
	ErrNoQuestionsAvailable = errors.New("no questions available to assemble a test")
	ErrSessionNotFound      = errors.New("test session not found")
	ErrSessionTerminated    = errors.New("test session is terminated")
	ErrTimeExpired          = errors.New("test time has expired")
	ErrQuestionNotInSession = errors.New("question is not part of this session")

	ErrEmailTaken        = errors.New("email is already registered")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrSlotNotFound      = errors.New("time slot not found")
	ErrSlotFull          = errors.New("time slot is full")
	ErrSlotInUse         = errors.New("time slot is referenced by a test session")
	ErrContentNotFound   = errors.New("content not found")
	ErrSettingUnknown    = errors.New("unknown setting key")
	ErrSettingInvalid    = errors.New("setting value must be a positive integer")

	ErrInvalidCredentials = errors.New("invalid email or password")
)
