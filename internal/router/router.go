package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/testgest/testgest-backend/internal/config"
	"github.com/testgest/testgest-backend/internal/handler"
	"github.com/testgest/testgest-backend/internal/middleware"
	"github.com/testgest/testgest-backend/internal/response"
	"github.com/testgest/testgest-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Registration *handler.RegistrationHandler
	Portal       *handler.PortalHandler
	Candidate    *handler.CandidateHandler
	TimeSlot     *handler.TimeSlotHandler
	Content      *handler.ContentHandler
	Result       *handler.ResultHandler
	Setting      *handler.SettingHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for unauthenticated routes (30 requests per minute per IP).
	publicLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Public group: registration form, no auth.
	publicAPI := router.Group("/api/v1/public")
	publicAPI.Use(publicLimiter.Middleware())
	{
		publicAPI.GET("/slots", handlers.Registration.ListOpenSlots)
		publicAPI.POST("/register", handlers.Registration.Register)
	}

	// Candidate portal group: keyed by access code, no auth.
	portalAPI := router.Group("/api/v1/portal")
	portalAPI.Use(publicLimiter.Middleware())
	{
		portalAPI.GET("/eligibility/:code", handlers.Portal.CheckEligibility)
		portalAPI.POST("/sessions", handlers.Portal.StartTest)
		portalAPI.GET("/sessions/:code", handlers.Portal.GetSession)
		portalAPI.GET("/sessions/:code/questions", handlers.Portal.GetQuestions)
		portalAPI.GET("/sessions/:code/remaining", handlers.Portal.GetRemaining)
		portalAPI.POST("/sessions/:code/answers", handlers.Portal.RecordAnswer)
		portalAPI.POST("/sessions/:code/submit", handlers.Portal.SubmitTest)
		portalAPI.POST("/sessions/:code/terminate", handlers.Portal.Terminate)
	}

	// Auth group.
	auth := router.Group("/api/v1/auth")
	auth.Use(publicLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
	}

	// Admin group (JWT).
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.GET("/me", handlers.Auth.Me)

		// Candidate management
		adminAPI.GET("/candidates", handlers.Candidate.List)
		adminAPI.GET("/candidates/:id", handlers.Candidate.Get)
		adminAPI.POST("/candidates/:id/validate", handlers.Candidate.Validate)
		adminAPI.PUT("/candidates/:id", handlers.Candidate.Update)
		adminAPI.DELETE("/candidates/:id", handlers.Candidate.Delete)

		// Time slot management
		adminAPI.GET("/slots", handlers.TimeSlot.List)
		adminAPI.POST("/slots", handlers.TimeSlot.Create)
		adminAPI.PUT("/slots/:id", handlers.TimeSlot.Update)
		adminAPI.DELETE("/slots/:id", handlers.TimeSlot.Delete)

		// Content management
		adminAPI.GET("/themes", handlers.Content.ListThemes)
		adminAPI.POST("/themes", handlers.Content.CreateTheme)
		adminAPI.PUT("/themes/:id", handlers.Content.UpdateTheme)
		adminAPI.DELETE("/themes/:id", handlers.Content.DeleteTheme)
		adminAPI.GET("/themes/:id/questions", handlers.Content.ListQuestions)
		adminAPI.GET("/questions/:id", handlers.Content.GetQuestion)
		adminAPI.POST("/questions", handlers.Content.CreateQuestion)
		adminAPI.PUT("/questions/:id", handlers.Content.UpdateQuestion)
		adminAPI.DELETE("/questions/:id", handlers.Content.DeleteQuestion)

		// Results
		adminAPI.GET("/results", handlers.Result.List)
		adminAPI.GET("/results/stats", handlers.Result.Stats)
		adminAPI.GET("/results/export", handlers.Result.ExportCSV)

		// App settings
		adminAPI.GET("/settings", handlers.Setting.List)
		adminAPI.PUT("/settings/:key", handlers.Setting.Update)
	}

	return router
}
