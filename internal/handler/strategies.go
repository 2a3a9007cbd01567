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

type StrategyHandler struct {
	Strategies *content.Strategies
	Logger     *zap.Logger
}

// Register mounts the strategy routes. Mutations go behind the auth
// middleware; reads are public.
func (h *StrategyHandler) Register(r *gin.Engine, requireAuth gin.HandlerFunc) {
	group := r.Group("/api/v1/strategies")
	group.GET("", h.list)
	group.GET("/:id", h.get)

	admin := group.Group("", requireAuth)
	admin.POST("", h.create)
	admin.PUT("/:id", h.update)
	admin.DELETE("/:id", h.remove)
}

// @Summary List strategies
// @Tags strategies
// @Param search query string false "substring match on name, description, tags, author"
// @Param category query string false "category filter, 'all' disables"
// @Param risk query string false "risk filter, 'all' disables"
// @Param sort query string false "apy | tvl | risk | name"
// @Success 200 {object} map[string]any
// @Router /api/v1/strategies [get]
func (h *StrategyHandler) list(c *gin.Context) {
	strategies, err := h.fetch(c)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	query := catalog.StrategyQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Risk:     c.Query("risk"),
		SortBy:   c.DefaultQuery("sort", "apy"),
	}
	filtered := query.Apply(strategies)
	Ok(c, filtered, map[string]any{
		"total":    len(strategies),
		"matching": len(filtered),
	})
}

func (h *StrategyHandler) fetch(c *gin.Context) ([]content.Strategy, error) {
	ctx := c.Request.Context()
	if category := c.Query("byCategory"); category != "" {
		return h.Strategies.ListByCategory(ctx, category)
	}
	if author := c.Query("byAuthor"); author != "" {
		return h.Strategies.ListByAuthor(ctx, author)
	}
	return h.Strategies.ListAll(ctx)
}

// @Summary Strategy detail with SEO schema
// @Tags strategies
// @Param id path string true "strategy id"
// @Success 200 {object} map[string]any
// @Router /api/v1/strategies/{id} [get]
func (h *StrategyHandler) get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	strategy, err := h.Strategies.GetByID(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		Error(c, http.StatusNotFound, "strategy not found", nil)
		return
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	projected := seo.ProjectStrategy(strategy)
	Ok(c, map[string]any{
		"strategy": projected,
		"schema":   seo.StrategySchema(projected),
	}, nil)
}

// @Summary Create strategy
// @Tags strategies
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router /api/v1/strategies [post]
func (h *StrategyHandler) create(c *gin.Context) {
	// The payload is a schema-less field bag by design: the admin form
	// stores whatever it assembled, including numeric strings.
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	strategy, err := h.Strategies.Create(c.Request.Context(), payload)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, strategy, nil)
}

// @Summary Update strategy
// @Tags strategies
// @Security BearerAuth
// @Param id path string true "strategy id"
// @Success 200 {object} map[string]any
// @Router /api/v1/strategies/{id} [put]
func (h *StrategyHandler) update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	var partial map[string]any
	if err := c.ShouldBindJSON(&partial); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	strategy, err := h.Strategies.Update(c.Request.Context(), id, partial)
	if errors.Is(err, store.ErrNotFound) {
		Error(c, http.StatusNotFound, "strategy not found", nil)
		return
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, strategy, nil)
}

// @Summary Delete strategy
// @Tags strategies
// @Security BearerAuth
// @Param id path string true "strategy id"
// @Success 200 {object} map[string]any
// @Router /api/v1/strategies/{id} [delete]
func (h *StrategyHandler) remove(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := h.Strategies.Delete(c.Request.Context(), id); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"deleted": id}, nil)
}
