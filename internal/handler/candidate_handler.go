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

// CandidateHandler handles candidate administration endpoints.
type CandidateHandler struct {
	candidateService *service.CandidateService
}

// NewCandidateHandler creates a new CandidateHandler.
func NewCandidateHandler(candidateService *service.CandidateService) *CandidateHandler {
	return &CandidateHandler{candidateService: candidateService}
}

// List godoc
// GET /api/v1/admin/candidates?search=&limit=
func (h *CandidateHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	candidates, err := h.candidateService.List(c.Request.Context(), c.Query("search"), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"candidates": candidates})
}

// Get godoc
// GET /api/v1/admin/candidates/:id
func (h *CandidateHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	candidate, err := h.candidateService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	enrollments, err := h.candidateService.Enrollments(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"candidate":   candidate,
		"enrollments": enrollments,
	})
}

// Validate godoc
// POST /api/v1/admin/candidates/:id/validate
// Marks the candidate validated and assigns their access code (once).
func (h *CandidateHandler) Validate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	candidate, err := h.candidateService.Validate(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"candidate": candidate})
}

// Update godoc
// PUT /api/v1/admin/candidates/:id
func (h *CandidateHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req model.UpdateCandidateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	candidate, err := h.candidateService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"candidate": candidate})
}

// Delete godoc
// DELETE /api/v1/admin/candidates/:id
func (h *CandidateHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.candidateService.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

func (h *CandidateHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCandidateNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrEmailTaken):
		response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// pathID parses the :id path parameter, failing the request on bad input.
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}
