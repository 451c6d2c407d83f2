package handler

import (
	"net/http"

	"blog_backend/internal/logging"
	"blog_backend/internal/middleware"
	"blog_backend/internal/model"
	"blog_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// CommentHandler handles comment requests nested under a post
type CommentHandler struct {
	service service.CommentService
	log     logging.Logger
}

func NewCommentHandler(s service.CommentService, log logging.Logger) *CommentHandler {
	registerValidators()
	return &CommentHandler{service: s, log: log}
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	comments, err := h.service.ListComments(c.Request.Context(), postID, middleware.CurrentIdentity(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) AddComment(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), postID, middleware.CurrentIdentity(c).UserID, req.Content)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) UpdateComment(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}
	var req model.CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.service.UpdateComment(c.Request.Context(), postID, commentID,
		middleware.CurrentIdentity(c).UserID, req.Content, req.Version)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}

	err := h.service.DeleteComment(c.Request.Context(), postID, commentID, middleware.CurrentIdentity(c).UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterCommentRoutes registers comment routes
func (h *CommentHandler) RegisterCommentRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	comments := rg.Group("/posts/:id/comments")
	{
		comments.GET("", h.ListComments)
		comments.POST("", requireAuth, h.AddComment)
		comments.PUT("/:commentId", requireAuth, h.UpdateComment)
		comments.DELETE("/:commentId", requireAuth, h.DeleteComment)
	}
}
