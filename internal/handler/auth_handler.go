package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/testgest/testgest-backend/internal/middleware"
	"github.com/testgest/testgest-backend/internal/model"
	"github.com/testgest/testgest-backend/internal/response"
	"github.com/testgest/testgest-backend/internal/service"
	"github.com/testgest/testgest-backend/internal/validator"
)

// AuthHandler handles administrator authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// POST /api/v1/auth/login
// Validates email + password and returns a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, admin, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"admin": gin.H{
			"id":    admin.ID,
			"name":  admin.Name,
			"email": admin.Email,
		},
	})
}

// Me godoc
// GET /api/v1/admin/me
// Returns the profile of the currently authenticated administrator.
func (h *AuthHandler) Me(c *gin.Context) {
	adminID := middleware.GetAdminID(c)
	if adminID == 0 {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	admin, err := h.authService.GetAdmin(c.Request.Context(), adminID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"admin": gin.H{
			"id":    admin.ID,
			"name":  admin.Name,
			"email": admin.Email,
		},
	})
}
