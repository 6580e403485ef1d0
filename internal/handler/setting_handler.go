package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/testgest/testgest-backend/internal/response"
	"github.com/testgest/testgest-backend/internal/service"
	"github.com/testgest/testgest-backend/internal/validator"
)

// SettingHandler handles app setting administration endpoints.
type SettingHandler struct {
	settingService *service.SettingService
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(settingService *service.SettingService) *SettingHandler {
	return &SettingHandler{settingService: settingService}
}

type updateSettingRequest struct {
	Value string `json:"value" binding:"required,max=50"`
}

// List godoc
// GET /api/v1/admin/settings
func (h *SettingHandler) List(c *gin.Context) {
	settings, err := h.settingService.All(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": settings})
}

// Update godoc
// PUT /api/v1/admin/settings/:key
func (h *SettingHandler) Update(c *gin.Context) {
	var req updateSettingRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	key := c.Param("key")
	if err := h.settingService.Update(c.Request.Context(), key, req.Value); err != nil {
		switch {
		case errors.Is(err, service.ErrSettingUnknown):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrSettingInvalid):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"key": key, "value": req.Value})
}
