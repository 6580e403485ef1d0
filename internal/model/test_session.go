package model

import (
	"math"
	"time"
)

// TestSession is one test attempt by one candidate, keyed by the candidate's
// access code (unique). A terminated session restarted through the lifecycle
// is reset in place and keeps its session questions.
type TestSession struct {
	ID          int        `json:"id"`
	CandidateID int        `json:"candidate_id"`
	AccessCode  string     `json:"access_code"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	Terminated  bool       `json:"terminated"`
	ScoreTotal  int        `json:"score_total"`
	ScoreMax    int        `json:"score_max"`
	Percentage  float64    `json:"percentage"`
}

// ApplyScore sets both score fields and recomputes the percentage
// (two decimals, half-up). A zero max yields a zero percentage.
func (s *TestSession) ApplyScore(total, max int) {
	s.ScoreTotal = total
	s.ScoreMax = max
	if max <= 0 {
		s.Percentage = 0
		return
	}
	s.Percentage = math.Round(float64(total)/float64(max)*100*100) / 100
}

// SessionQuestion is a frozen per-attempt reference to one question: display
// order and allotted time are fixed at session start and never change.
type SessionQuestion struct {
	ID              int `json:"id"`
	SessionID       int `json:"session_id"`
	QuestionID      int `json:"question_id"`
	DisplayOrder    int `json:"display_order"` // 1-based
	AllottedSeconds int `json:"allotted_seconds"`

	// Question is hydrated by queries that join the content tables.
	Question *Question `json:"question,omitempty"`
}

// AnswerRecord is the candidate's recorded response to one session question.
// At most one record exists per session question; repeated submissions
// overwrite it. Correctness is fixed at write time from the referenced
// possible answer and is always false for free text.
type AnswerRecord struct {
	ID                int       `json:"id"`
	SessionQuestionID int       `json:"session_question_id"`
	PossibleAnswerID  *int      `json:"possible_answer_id,omitempty"`
	AnswerText        *string   `json:"answer_text,omitempty"`
	ElapsedSeconds    *int      `json:"elapsed_seconds,omitempty"`
	IsCorrect         bool      `json:"is_correct"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AnswerPayload is one submitted answer: a single possible-answer reference,
// a list of references (multi-select), or free text. Exactly one of the three
// should be set.
type AnswerPayload struct {
	PossibleAnswerID  *int    `json:"possible_answer_id"`
	PossibleAnswerIDs []int   `json:"possible_answer_ids"`
	AnswerText        *string `json:"answer_text"`
	ElapsedSeconds    *int    `json:"elapsed_seconds"`
}

// StartTestRequest carries the candidate's access code.
type StartTestRequest struct {
	AccessCode string `json:"access_code" binding:"required,min=4,max=50"`
}

// RecordAnswerRequest is the payload for answering one question in a session.
type RecordAnswerRequest struct {
	QuestionID int `json:"question_id" binding:"required,min=1"`
	AnswerPayload
}

// SubmitTestRequest records the final answer map and terminates the session.
// Keys are question IDs in decimal form.
type SubmitTestRequest struct {
	Answers map[string]AnswerPayload `json:"answers" binding:"required"`
}
