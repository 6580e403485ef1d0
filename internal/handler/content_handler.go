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

// ContentHandler handles theme and question administration endpoints.
type ContentHandler struct {
	contentService *service.ContentService
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(contentService *service.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// ListThemes godoc
// GET /api/v1/admin/themes
func (h *ContentHandler) ListThemes(c *gin.Context) {
	themes, err := h.contentService.ListThemes(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"themes": themes})
}

// CreateTheme godoc
// POST /api/v1/admin/themes
func (h *ContentHandler) CreateTheme(c *gin.Context) {
	var req model.ThemeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	theme, err := h.contentService.CreateTheme(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"theme": theme})
}

// UpdateTheme godoc
// PUT /api/v1/admin/themes/:id
func (h *ContentHandler) UpdateTheme(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req model.ThemeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	theme, err := h.contentService.UpdateTheme(c.Request.Context(), id, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"theme": theme})
}

// DeleteTheme godoc
// DELETE /api/v1/admin/themes/:id
func (h *ContentHandler) DeleteTheme(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.contentService.DeleteTheme(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// ListQuestions godoc
// GET /api/v1/admin/themes/:id/questions
func (h *ContentHandler) ListQuestions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	questions, err := h.contentService.ListQuestions(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// GetQuestion godoc
// GET /api/v1/admin/questions/:id
func (h *ContentHandler) GetQuestion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	question, err := h.contentService.GetQuestion(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// CreateQuestion godoc
// POST /api/v1/admin/questions
func (h *ContentHandler) CreateQuestion(c *gin.Context) {
	var req model.QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	question, err := h.contentService.CreateQuestion(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// UpdateQuestion godoc
// PUT /api/v1/admin/questions/:id
// Replaces the question fields and its whole answer set.
func (h *ContentHandler) UpdateQuestion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req model.QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	question, err := h.contentService.UpdateQuestion(c.Request.Context(), id, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/questions/:id
func (h *ContentHandler) DeleteQuestion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.contentService.DeleteQuestion(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

func (h *ContentHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrContentNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
