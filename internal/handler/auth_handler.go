package handler

import (
	"net/http"

	"blog_backend/internal/logging"
	"blog_backend/internal/middleware"
	"blog_backend/internal/model"
	"blog_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
	log     logging.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, log logging.Logger) *AuthHandler {
	registerValidators()
	return &AuthHandler{service: s, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, model.UserResponse{ID: user.ID, Username: user.Username})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{
		Token: token,
		User:  model.UserResponse{ID: user.ID, Username: user.Username},
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.UserResponse{ID: user.ID, Username: user.Username})
}

// RegisterAuthRoutes registers auth routes. rateLimit guards the credential
// endpoints only.
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, requireAuth, rateLimit gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", rateLimit, h.Register)
		authGroup.POST("/login", rateLimit, h.Login)
		authGroup.GET("/me", requireAuth, h.Me)
	}
}
