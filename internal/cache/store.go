package cache

import (
	"context"
	"time"
)

// Store caches rendered exporter documents (sitemap XML, AI JSON) so
// the document store is not re-walked on every crawler hit.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
