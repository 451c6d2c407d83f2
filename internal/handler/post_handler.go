package handler

import (
	"net/http"
	"strings"

	"blog_backend/internal/logging"
	"blog_backend/internal/middleware"
	"blog_backend/internal/model"
	"blog_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// PostHandler handles post requests
type PostHandler struct {
	service service.PostService
	log     logging.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(s service.PostService, log logging.Logger) *PostHandler {
	registerValidators()
	return &PostHandler{service: s, log: log}
}

// ListPosts serves one page of posts, or a search when ?search= is non-blank.
func (h *PostHandler) ListPosts(c *gin.Context) {
	viewer := middleware.CurrentIdentity(c)
	if q := strings.TrimSpace(c.Query("search")); q != "" {
		h.search(c, viewer, q)
		return
	}

	number, ok := queryInt(c, "page")
	if !ok {
		return
	}
	size, ok := queryInt(c, "size")
	if !ok {
		return
	}
	page, err := service.NewPage(number, size)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	posts, err := h.service.ListPosts(c.Request.Context(), viewer, page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) SearchPosts(c *gin.Context) {
	h.search(c, middleware.CurrentIdentity(c), c.Query("q"))
}

func (h *PostHandler) search(c *gin.Context, viewer *model.Identity, q string) {
	posts, err := h.service.SearchPosts(c.Request.Context(), viewer, q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	post, err := h.service.GetPost(c.Request.Context(), id, middleware.CurrentIdentity(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) VerifyPassword(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.VerifyPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.service.VerifySecretPassword(c.Request.Context(), id, middleware.CurrentIdentity(c), req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	var req model.CreatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), middleware.CurrentIdentity(c).UserID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.UpdatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.service.UpdatePost(c.Request.Context(), id, middleware.CurrentIdentity(c).UserID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeletePost(c.Request.Context(), id, middleware.CurrentIdentity(c).UserID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterPostRoutes registers post routes. Reads and password checks are
// open to anonymous callers; writes sit behind requireAuth.
func (h *PostHandler) RegisterPostRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	posts := rg.Group("/posts")
	{
		posts.GET("", h.ListPosts)
		posts.GET("/search", h.SearchPosts)
		posts.GET("/:id", h.GetPost)
		posts.POST("/:id/verify-password", h.VerifyPassword)

		posts.POST("", requireAuth, h.CreatePost)
		posts.PUT("/:id", requireAuth, h.UpdatePost)
		posts.DELETE("/:id", requireAuth, h.DeletePost)
	}
}
