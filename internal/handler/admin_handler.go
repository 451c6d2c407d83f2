package handler

import (
	"net/http"

	"blog_backend/internal/logging"
	"blog_backend/internal/model"
	"blog_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles account management for administrators
type AdminHandler struct {
	service service.UserAdminService
	log     logging.Logger
}

func NewAdminHandler(s service.UserAdminService, log logging.Logger) *AdminHandler {
	registerValidators()
	return &AdminHandler{service: s, log: log}
}

func (h *AdminHandler) SetUserEnabled(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.SetUserEnabledRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.service.SetUserEnabled(c.Request.Context(), userID, *req.Enabled)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.UserStatusResponse{ID: user.ID, Username: user.Username, Enabled: user.Enabled})
}

// RegisterAdminRoutes registers admin routes behind authentication and the
// admin role check.
func (h *AdminHandler) RegisterAdminRoutes(rg *gin.RouterGroup, requireAuth, adminMW gin.HandlerFunc) {
	adminRoutes := rg.Group("/admin")
	adminRoutes.Use(requireAuth)
	adminRoutes.Use(adminMW)
	{
		adminRoutes.PUT("/users/:id/enabled", h.SetUserEnabled)
	}
}
