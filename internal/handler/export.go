package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"forge/internal/cache"
	"forge/internal/content"
	"forge/internal/export"
	"forge/internal/service"
	"forge/internal/store"
)

// ExportHandler serves the crawler-facing documents: the XML sitemap,
// the AI strategy catalog, and per-strategy AI detail JSON. Rendered
// documents are cached; the warmer keeps the hot keys fresh.
type ExportHandler struct {
	Strategies *content.Strategies
	Posts      *content.Posts
	Cache      cache.Store
	TTL        time.Duration
	Logger     *zap.Logger
}

func (h *ExportHandler) Register(r *gin.Engine) {
	r.GET("/sitemap.xml", h.sitemap)
	r.GET("/ai/sitemap.json", h.aiCatalog)
	r.GET("/ai/:slug", h.aiDetail)
}

// @Summary XML sitemap
// @Tags export
// @Produce xml
// @Success 200 {string} string
// @Router /sitemap.xml [get]
func (h *ExportHandler) sitemap(c *gin.Context) {
	ctx := c.Request.Context()
	if body, found, _ := h.Cache.Get(ctx, service.CacheKeySitemap); found {
		c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
		return
	}
	strategies, err := h.Strategies.ListAll(ctx)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	posts, err := h.Posts.ListAll(ctx)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	body, err := export.SitemapXML(export.SitemapEntries(strategies, posts))
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	h.cacheSet(c, service.CacheKeySitemap, body)
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

// @Summary AI strategy catalog
// @Tags export
// @Produce json
// @Success 200 {array} export.CatalogEntry
// @Router /ai/sitemap.json [get]
func (h *ExportHandler) aiCatalog(c *gin.Context) {
	ctx := c.Request.Context()
	if body, found, _ := h.Cache.Get(ctx, service.CacheKeyAICatalog); found {
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
		return
	}
	strategies, err := h.Strategies.ListAll(ctx)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load sitemap", "message": err.Error()})
		return
	}
	body, err := json.MarshalIndent(export.AICatalog(strategies), "", "  ")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load sitemap", "message": err.Error()})
		return
	}
	h.cacheSet(c, service.CacheKeyAICatalog, body)
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// @Summary AI strategy detail document
// @Tags export
// @Produce json
// @Param slug path string true "strategy id with .json suffix"
// @Success 200 {object} export.Detail
// @Router /ai/{slug} [get]
func (h *ExportHandler) aiDetail(c *gin.Context) {
	slug := strings.TrimSuffix(strings.TrimSpace(c.Param("slug")), ".json")
	if slug == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Strategy not found", "slug": slug})
		return
	}
	ctx := c.Request.Context()
	key := "export:ai:" + slug
	if body, found, _ := h.Cache.Get(ctx, key); found {
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
		return
	}
	strategy, err := h.Strategies.GetByID(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Strategy not found", "slug": slug})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Strategy not found", "message": err.Error()})
		return
	}
	body, err := json.MarshalIndent(export.AIDetail(strategy), "", "  ")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Strategy not found", "message": err.Error()})
		return
	}
	h.cacheSet(c, key, body)
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *ExportHandler) cacheSet(c *gin.Context, key string, body []byte) {
	if err := h.Cache.Set(c.Request.Context(), key, body, h.TTL); err != nil && h.Logger != nil {
		h.Logger.Warn("export cache write failed", zap.String("key", key), zap.Error(err))
	}
}
