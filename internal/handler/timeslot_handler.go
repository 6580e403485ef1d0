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

// TimeSlotHandler handles time slot administration endpoints.
type TimeSlotHandler struct {
	slotService *service.TimeSlotService
}

// NewTimeSlotHandler creates a new TimeSlotHandler.
func NewTimeSlotHandler(slotService *service.TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{slotService: slotService}
}

// List godoc
// GET /api/v1/admin/slots
func (h *TimeSlotHandler) List(c *gin.Context) {
	slots, err := h.slotService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slots": slots})
}

// Create godoc
// POST /api/v1/admin/slots
func (h *TimeSlotHandler) Create(c *gin.Context) {
	var req model.TimeSlotRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	slot, err := h.slotService.Create(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"slot": slot})
}

// Update godoc
// PUT /api/v1/admin/slots/:id
// Slots referenced by a test session are immutable.
func (h *TimeSlotHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req model.TimeSlotRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	slot, err := h.slotService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slot": slot})
}

// Delete godoc
// DELETE /api/v1/admin/slots/:id
func (h *TimeSlotHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.slotService.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

func (h *TimeSlotHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSlotNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrSlotInUse):
		response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
