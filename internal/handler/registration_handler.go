package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/testgest/testgest-backend/internal/model"
	"github.com/testgest/testgest-backend/internal/response"
	"github.com/testgest/testgest-backend/internal/service"
	"github.com/testgest/testgest-backend/internal/validator"
)

// RegistrationHandler handles the public registration endpoints.
type RegistrationHandler struct {
	candidateService *service.CandidateService
	slotService      *service.TimeSlotService
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(candidateService *service.CandidateService, slotService *service.TimeSlotService) *RegistrationHandler {
	return &RegistrationHandler{
		candidateService: candidateService,
		slotService:      slotService,
	}
}

// ListOpenSlots godoc
// GET /api/v1/public/slots
// Lists future time slots with seats left, for the registration form.
func (h *RegistrationHandler) ListOpenSlots(c *gin.Context) {
	slots, err := h.slotService.ListOpen(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slots": slots})
}

// Register godoc
// POST /api/v1/public/register
// Creates a candidate and enrolls them into the chosen slot.
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req model.RegisterCandidateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	candidate, err := h.candidateService.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
		case errors.Is(err, service.ErrSlotNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrSlotFull):
			response.Fail(c, http.StatusConflict, response.ErrSlotFull)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"candidate": candidate})
}
