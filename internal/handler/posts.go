package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"forge/internal/catalog"
	"forge/internal/content"
	"forge/internal/seo"
	"forge/internal/store"
)

type PostHandler struct {
	Posts  *content.Posts
	Logger *zap.Logger
}

func (h *PostHandler) Register(r *gin.Engine, requireAuth gin.HandlerFunc) {
	group := r.Group("/api/v1/posts")
	group.GET("", h.list)
	group.GET("/:slug", h.get)
	group.POST("/:slug/views", h.view)
	group.POST("/:slug/likes", h.like)

	admin := group.Group("", requireAuth)
	admin.POST("", h.create)
	admin.PUT("/:slug", h.update)
	admin.DELETE("/:slug", h.remove)
}

// @Summary List published blog posts
// @Tags posts
// @Param search query string false "substring match on title, excerpt, tags, author"
// @Param category query string false "category filter, 'all' disables"
// @Param tag query string false "tag filter, 'all' disables"
// @Success 200 {object} map[string]any
// @Router /api/v1/posts [get]
func (h *PostHandler) list(c *gin.Context) {
	posts, err := h.fetch(c)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	query := catalog.PostQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
	}
	filtered := query.Apply(posts)
	Ok(c, filtered, map[string]any{
		"total":      len(posts),
		"matching":   len(filtered),
		"categories": catalog.Categories(posts),
	})
}

func (h *PostHandler) fetch(c *gin.Context) ([]content.Post, error) {
	ctx := c.Request.Context()
	if category := c.Query("byCategory"); category != "" {
		return h.Posts.ListByCategory(ctx, category)
	}
	if author := c.Query("byAuthor"); author != "" {
		return h.Posts.ListByAuthor(ctx, author)
	}
	return h.Posts.ListAll(ctx)
}

// @Summary Blog post detail with SEO schema
// @Tags posts
// @Param slug path string true "post slug"
// @Success 200 {object} map[string]any
// @Router /api/v1/posts/{slug} [get]
func (h *PostHandler) get(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	post, err := h.Posts.GetBySlug(c.Request.Context(), slug)
	if errors.Is(err, store.ErrNotFound) {
		Error(c, http.StatusNotFound, "post not found", nil)
		return
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	// Reading the detail page counts as a view. Counter failures never
	// affect the response.
	h.Posts.IncrementViews(c.Request.Context(), post.ID)
	projected := seo.ProjectPost(post)
	Ok(c, map[string]any{
		"post":   projected,
		"schema": seo.PostSchema(projected),
	}, nil)
}

// @Summary Count a view for a blog post
// @Tags posts
// @Param slug path string true "post slug"
// @Success 200 {object} map[string]any
// @Router /api/v1/posts/{slug}/views [post]
func (h *PostHandler) view(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	post, err := h.Posts.GetBySlug(c.Request.Context(), slug)
	if errors.Is(err, store.ErrNotFound) {
		Error(c, http.StatusNotFound, "post not found", nil)
		return
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	h.Posts.IncrementViews(c.Request.Context(), post.ID)
	Ok(c, gin.H{"viewed": post.Slug}, nil)
}

// @Summary Like a blog post
// @Tags posts
// @Param slug path string true "post slug"
// @Success 200 {object} map[string]any
// @Router /api/v1/posts/{slug}/likes [post]
func (h *PostHandler) like(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	post, err := h.Posts.GetBySlug(c.Request.Context(), slug)
	if errors.Is(err, store.ErrNotFound) {
		Error(c, http.StatusNotFound, "post not found", nil)
		return
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	h.Posts.Like(c.Request.Context(), post.ID)
	Ok(c, gin.H{"liked": post.Slug}, nil)
}

// @Summary Create blog post
// @Tags posts
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router /api/v1/posts [post]
func (h *PostHandler) create(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	post, err := h.Posts.Create(c.Request.Context(), payload)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, post, nil)
}

// @Summary Update blog post
// @Tags posts
// @Security BearerAuth
// @Param slug path string true "post slug"
// @Success 200 {object} map[string]any
// @Router /api/v1/posts/{slug} [put]
func (h *PostHandler) update(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	// Unfiltered lookup: drafts must stay editable.
	post, err := h.Posts.FindBySlug(c.Request.Context(), slug)
	if errors.Is(err, store.ErrNotFound) {
		Error(c, http.StatusNotFound, "post not found", nil)
		return
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	var partial map[string]any
	if err := c.ShouldBindJSON(&partial); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	updated, err := h.Posts.Update(c.Request.Context(), post.ID, partial)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, updated, nil)
}

// @Summary Delete blog post
// @Tags posts
// @Security BearerAuth
// @Param slug path string true "post slug"
// @Success 200 {object} map[string]any
// @Router /api/v1/posts/{slug} [delete]
func (h *PostHandler) remove(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	post, err := h.Posts.FindBySlug(c.Request.Context(), slug)
	if errors.Is(err, store.ErrNotFound) {
		Error(c, http.StatusNotFound, "post not found", nil)
		return
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if err := h.Posts.Delete(c.Request.Context(), post.ID); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"deleted": post.Slug}, nil)
}
