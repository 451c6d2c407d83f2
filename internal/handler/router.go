package handler

import (
	"context"
	"net/http"

	"blog_backend/internal/logging"
	"blog_backend/internal/middleware"
	"blog_backend/internal/model"
	"blog_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	Auth     service.AuthService
	Posts    service.PostService
	Comments service.CommentService
	Admin    service.UserAdminService

	Tokens middleware.TokenValidator
	Users  middleware.UserLookup
	Ping   func(ctx context.Context) error
	Log    logging.Logger

	CORSAllowedOrigins []string
	RateLimitEnabled   bool
	AuthRateLimitRPS   float64
	AuthRateLimitBurst int
}

// NewRouter builds the HTTP API under /api/v1 plus /health.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(cfg.Log),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			cfg.Log.Error(c.Request.Context(), "panic recovered",
				"request_id", c.GetString(middleware.RequestIDKey), "panic", recovered)
			abortWith(c, http.StatusInternalServerError, model.CodeInternal, "An unexpected error occurred")
		}),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.AccessFilter(cfg.Tokens, cfg.Users, cfg.Log),
	)

	requireAuth := middleware.RequireAuth()
	adminMW := middleware.AdminMiddleware()
	authRateLimit := middleware.AuthRateLimit(cfg.RateLimitEnabled, cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst)

	apiGroup := router.Group("/api/v1")
	NewAuthHandler(cfg.Auth, cfg.Log).RegisterAuthRoutes(apiGroup, requireAuth, authRateLimit)
	NewPostHandler(cfg.Posts, cfg.Log).RegisterPostRoutes(apiGroup, requireAuth)
	NewCommentHandler(cfg.Comments, cfg.Log).RegisterCommentRoutes(apiGroup, requireAuth)
	NewAdminHandler(cfg.Admin, cfg.Log).RegisterAdminRoutes(apiGroup, requireAuth, adminMW)

	router.GET("/health", NewHealthHandler(cfg.Ping).Health)
	router.NoRoute(func(c *gin.Context) {
		abortWith(c, http.StatusNotFound, model.CodeNotFound, "Resource not found")
	})

	return router
}
