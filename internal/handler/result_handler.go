package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/testgest/testgest-backend/internal/response"
	"github.com/testgest/testgest-backend/internal/service"
)

// ResultHandler handles session result endpoints for the admin dashboard.
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// List godoc
// GET /api/v1/admin/results?limit=
func (h *ResultHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	results, err := h.resultService.List(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// Stats godoc
// GET /api/v1/admin/results/stats
func (h *ResultHandler) Stats(c *gin.Context) {
	stats, err := h.resultService.Stats(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// ExportCSV godoc
// GET /api/v1/admin/results/export
// Streams the result listing as a CSV attachment.
func (h *ResultHandler) ExportCSV(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="results.csv"`)
	if err := h.resultService.ExportCSV(c.Request.Context(), c.Writer, limit); err != nil {
		// Headers may already be written; just stop the stream.
		c.Status(http.StatusInternalServerError)
	}
}
