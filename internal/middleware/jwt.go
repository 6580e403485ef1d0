package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/testgest/testgest-backend/internal/response"
	"github.com/testgest/testgest-backend/internal/service"
)

// ContextKeyAdminID is the Gin context key for the authenticated admin ID.
const ContextKeyAdminID = "admin_id"

// RequireAdminJWT validates an admin JWT from the Authorization header and
// checks that the administrator still exists.
func RequireAdminJWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		adminID, err := authService.VerifyToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}
		if _, err := authService.GetAdmin(c.Request.Context(), adminID); err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		c.Set(ContextKeyAdminID, adminID)
		c.Next()
	}
}

// GetAdminID retrieves the authenticated admin ID from the Gin context.
// Returns 0 when the middleware did not run.
func GetAdminID(c *gin.Context) int {
	val, exists := c.Get(ContextKeyAdminID)
	if !exists {
		return 0
	}
	id, ok := val.(int)
	if !ok {
		return 0
	}
	return id
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
