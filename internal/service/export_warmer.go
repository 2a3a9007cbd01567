package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"forge/internal/cache"
	"forge/internal/content"
	"forge/internal/export"
	"forge/internal/view"
)

// Cache keys for the rendered exporter documents.
const (
	CacheKeySitemap   = "export:sitemap.xml"
	CacheKeyAICatalog = "export:ai-catalog.json"
)

// ExportWarmer pre-renders the sitemap and the AI catalog into the
// cache so crawler hits are served without walking the store. It runs
// once at boot and then on a cron spec.
type ExportWarmer struct {
	Strategies *content.Strategies
	Posts      *content.Posts
	Cache      cache.Store
	Logger     *zap.Logger
	TTL        time.Duration

	strategyLoader view.Loader[[]content.Strategy]
	postLoader     view.Loader[[]content.Post]
	once           sync.Once
}

func (w *ExportWarmer) init() {
	w.strategyLoader.Fetch = w.Strategies.ListAll
	w.postLoader.Fetch = w.Posts.ListAll
}

// Warm fetches both collections in parallel and refreshes the cached
// documents. One bad record never produces a broken document; a fetch
// failure leaves the previous cache entry in place.
func (w *ExportWarmer) Warm(ctx context.Context) error {
	w.once.Do(w.init)

	var wg sync.WaitGroup
	var strategies []content.Strategy
	var posts []content.Post
	var strategyErr, postErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		strategies, strategyErr = w.strategyLoader.Refetch(ctx)
	}()
	go func() {
		defer wg.Done()
		posts, postErr = w.postLoader.Refetch(ctx)
	}()
	wg.Wait()
	if strategyErr != nil {
		return strategyErr
	}
	if postErr != nil {
		return postErr
	}

	sitemap, err := export.SitemapXML(export.SitemapEntries(strategies, posts))
	if err != nil {
		return err
	}
	if err := w.Cache.Set(ctx, CacheKeySitemap, sitemap, w.TTL); err != nil {
		return err
	}

	catalog, err := json.MarshalIndent(export.AICatalog(strategies), "", "  ")
	if err != nil {
		return err
	}
	if err := w.Cache.Set(ctx, CacheKeyAICatalog, catalog, w.TTL); err != nil {
		return err
	}

	if w.Logger != nil {
		w.Logger.Info("export cache warmed",
			zap.Int("strategies", len(strategies)),
			zap.Int("posts", len(posts)),
		)
	}
	return nil
}
