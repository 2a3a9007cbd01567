package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Collection names used by the service. The store is schema-less: a
// collection is just a namespace of JSON documents.
const (
	CollectionStrategies = "strategies"
	CollectionBlogPosts  = "blog_posts"
	CollectionWaitlist   = "waitlist"
	CollectionTest       = "test"
)

// ErrNotFound is returned by Get when no document matches the id.
var ErrNotFound = errors.New("document not found")

// QueryError marks a filtered/ordered list query rejected by the store
// backend (missing index, unsupported expression). Callers are expected
// to fall back to a plain fetch and filter in memory.
type QueryError struct {
	Collection string
	Err        error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query on %s rejected: %v", e.Collection, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Record is a single schema-less document. Data holds the raw field bag;
// CreatedAt/UpdatedAt are store-assigned write timestamps kept outside
// the bag, mirroring a managed document database.
type Record struct {
	ID        string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Query narrows and orders a List call. Eq entries compare document
// fields for string equality. OrderBy of "createdAt"/"updatedAt" sorts
// on the write timestamps; any other value sorts on a document field.
type Query struct {
	Eq      map[string]string
	OrderBy string
	Desc    bool
	Limit   int
}

// RecordStore is the narrow document-store contract the content layer
// consumes. Implementations: gormstore (postgres jsonb) and memstore
// (in-memory fake for tests and dev mode).
type RecordStore interface {
	List(ctx context.Context, collection string, q Query) ([]Record, error)
	Get(ctx context.Context, collection, id string) (Record, error)
	Create(ctx context.Context, collection string, data map[string]any) (Record, error)
	// Update performs a shallow merge: top-level keys in partial replace
	// the stored values wholesale (replacing an array replaces the whole
	// array) and UpdatedAt is refreshed.
	Update(ctx context.Context, collection, id string, partial map[string]any) (Record, error)
	// Delete is idempotent: deleting an absent document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Increment atomically adds delta to a numeric document field,
	// treating a missing or non-numeric value as 0.
	Increment(ctx context.Context, collection, id, field string, delta int64) error
}
