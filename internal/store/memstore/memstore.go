package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"forge/internal/store"
)

// Store is an in-memory RecordStore used by tests and dev mode. With
// FailFiltered set, any filtered or ordered List is rejected with a
// QueryError, exercising the accessors' fallback path the way a missing
// composite index would on a managed document database.
type Store struct {
	mu           sync.RWMutex
	collections  map[string]map[string]store.Record
	FailFiltered bool

	// now is swappable so tests can control write timestamps.
	now func() time.Time
}

func New() *Store {
	return &Store{
		collections: map[string]map[string]store.Record{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) List(_ context.Context, collection string, q store.Query) ([]store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	filtered := len(q.Eq) > 0 || q.OrderBy != ""
	if filtered && s.FailFiltered {
		return nil, &store.QueryError{Collection: collection, Err: errors.New("query requires an index")}
	}
	var records []store.Record
	for _, rec := range s.collections[collection] {
		if !matches(rec, q.Eq) {
			continue
		}
		records = append(records, cloneRecord(rec))
	}
	sortRecords(records, q.OrderBy, q.Desc)
	if q.Limit > 0 && len(records) > q.Limit {
		records = records[:q.Limit]
	}
	return records, nil
}

func (s *Store) Get(_ context.Context, collection, id string) (store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.collections[collection][id]
	if !ok {
		return store.Record{}, store.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (s *Store) Create(_ context.Context, collection string, data map[string]any) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collections[collection] == nil {
		s.collections[collection] = map[string]store.Record{}
	}
	now := s.now()
	rec := store.Record{
		ID:        uuid.NewString(),
		Data:      cloneData(data),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.collections[collection][rec.ID] = rec
	return cloneRecord(rec), nil
}

func (s *Store) Update(_ context.Context, collection, id string, partial map[string]any) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.collections[collection][id]
	if !ok {
		return store.Record{}, store.ErrNotFound
	}
	for k, v := range partial {
		rec.Data[k] = v
	}
	rec.UpdatedAt = s.now()
	s.collections[collection][id] = rec
	return cloneRecord(rec), nil
}

func (s *Store) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}

func (s *Store) Increment(_ context.Context, collection, id, field string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.collections[collection][id]
	if !ok {
		return store.ErrNotFound
	}
	var current float64
	switch v := rec.Data[field].(type) {
	case float64:
		current = v
	case int:
		current = float64(v)
	case int64:
		current = float64(v)
	}
	rec.Data[field] = current + float64(delta)
	s.collections[collection][id] = rec
	return nil
}

func matches(rec store.Record, eq map[string]string) bool {
	for field, want := range eq {
		got, ok := rec.Data[field]
		if !ok {
			return false
		}
		if fmt.Sprintf("%v", got) != want {
			return false
		}
	}
	return true
}

func sortRecords(records []store.Record, orderBy string, desc bool) {
	if orderBy == "" {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		var less bool
		switch orderBy {
		case "createdAt":
			less = records[i].CreatedAt.Before(records[j].CreatedAt)
		case "updatedAt":
			less = records[i].UpdatedAt.Before(records[j].UpdatedAt)
		default:
			less = fmt.Sprintf("%v", records[i].Data[orderBy]) < fmt.Sprintf("%v", records[j].Data[orderBy])
		}
		if desc {
			return !less
		}
		return less
	})
}

func cloneRecord(rec store.Record) store.Record {
	rec.Data = cloneData(rec.Data)
	return rec
}

func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
