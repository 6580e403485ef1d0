package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/testgest/testgest-backend/internal/model"
	"github.com/testgest/testgest-backend/internal/response"
	"github.com/testgest/testgest-backend/internal/service"
	"github.com/testgest/testgest-backend/internal/validator"
)

// PortalHandler handles the candidate portal: eligibility, the session
// lifecycle and answer recording. All endpoints are keyed by access code;
// candidates do not authenticate beyond it.
type PortalHandler struct {
	sessionService     *service.TestSessionService
	eligibilityService *service.EligibilityService
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(sessionService *service.TestSessionService, eligibilityService *service.EligibilityService) *PortalHandler {
	return &PortalHandler{
		sessionService:     sessionService,
		eligibilityService: eligibilityService,
	}
}

// CheckEligibility godoc
// GET /api/v1/portal/eligibility/:code
// Reports whether the access code may start a test right now.
func (h *PortalHandler) CheckEligibility(c *gin.Context) {
	eligible, err := h.eligibilityService.CheckEligibility(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"eligible": eligible})
}

// StartTest godoc
// POST /api/v1/portal/sessions
// Starts, resumes or resets the test for an access code and returns the
// session with its questions.
func (h *PortalHandler) StartTest(c *gin.Context) {
	var req model.StartTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, questions, err := h.sessionService.StartSession(c.Request.Context(), req.AccessCode)
	if err != nil {
		h.failSession(c, err)
		return
	}

	remaining, err := h.sessionService.RemainingSeconds(c.Request.Context(), req.AccessCode)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session":           sess,
		"questions":         questions,
		"remaining_seconds": remaining,
	})
}

// GetSession godoc
// GET /api/v1/portal/sessions/:code
// Returns the session state, its recorded answers and the remaining time, so
// a resuming candidate can restore where they left off.
func (h *PortalHandler) GetSession(c *gin.Context) {
	code := c.Param("code")

	sess, err := h.sessionService.ActiveSession(c.Request.Context(), code)
	if err != nil {
		h.failSession(c, err)
		return
	}
	answers, err := h.sessionService.SessionAnswers(c.Request.Context(), code)
	if err != nil {
		h.failSession(c, err)
		return
	}
	remaining, err := h.sessionService.RemainingSeconds(c.Request.Context(), code)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session":           sess,
		"answers":           answers,
		"remaining_seconds": remaining,
	})
}

// GetQuestions godoc
// GET /api/v1/portal/sessions/:code/questions
// Returns the session's questions in display order, without grading data.
func (h *PortalHandler) GetQuestions(c *gin.Context) {
	questions, err := h.sessionService.GetSessionQuestions(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// GetRemaining godoc
// GET /api/v1/portal/sessions/:code/remaining
// Returns the whole seconds left on the session clock (zero when there is no
// active session).
func (h *PortalHandler) GetRemaining(c *gin.Context) {
	remaining, err := h.sessionService.RemainingSeconds(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"remaining_seconds": remaining})
}

// RecordAnswer godoc
// POST /api/v1/portal/sessions/:code/answers
// Records or overwrites the answer to one question of the session.
func (h *PortalHandler) RecordAnswer(c *gin.Context) {
	var req model.RecordAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rec, err := h.sessionService.RecordAnswer(c.Request.Context(), c.Param("code"), req.QuestionID, req.AnswerPayload)
	if err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"answer": rec})
}

// SubmitTest godoc
// POST /api/v1/portal/sessions/:code/submit
// Records the final answer map, then terminates and scores the session.
// Individual answer failures do not block the termination.
func (h *PortalHandler) SubmitTest(c *gin.Context) {
	code := c.Param("code")

	var req model.SubmitTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	for rawID, payload := range req.Answers {
		questionID, err := strconv.Atoi(rawID)
		if err != nil {
			continue
		}
		if _, err := h.sessionService.RecordAnswer(c.Request.Context(), code, questionID, payload); err != nil {
			if errors.Is(err, service.ErrTimeExpired) || errors.Is(err, service.ErrSessionTerminated) {
				break
			}
			// Rejected answers (unknown question, foreign choice) are dropped.
			continue
		}
	}

	sess, err := h.sessionService.TerminateSession(c.Request.Context(), code)
	if err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": sess})
}

// Terminate godoc
// POST /api/v1/portal/sessions/:code/terminate
// Ends the session without submitting further answers. Idempotent.
func (h *PortalHandler) Terminate(c *gin.Context) {
	sess, err := h.sessionService.TerminateSession(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": sess})
}

// failSession maps session service sentinels to HTTP responses.
func (h *PortalHandler) failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotEligible):
		response.Fail(c, http.StatusForbidden, response.ErrNotEligible)
	case errors.Is(err, service.ErrNoQuestionsAvailable):
		response.Fail(c, http.StatusConflict, response.ErrNoQuestionsAvailable)
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrSessionTerminated):
		response.Fail(c, http.StatusConflict, response.ErrSessionTerminated)
	case errors.Is(err, service.ErrTimeExpired):
		response.Fail(c, http.StatusConflict, response.ErrTimeExpired)
	case errors.Is(err, service.ErrQuestionNotInSession):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrQuestionNotInSession)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
