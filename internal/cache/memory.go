package cache

import (
	"context"
	"sync"
	"time"
)

type memItem struct {
	value   []byte
	expires time.Time
}

// MemoryStore is the in-process cache backend. Entries with no TTL
// never expire; expired entries are dropped lazily on read.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string]memItem{}}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	item, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !item.expires.IsZero() && time.Now().After(item.expires) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return cloneBytes(item.value), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	item := memItem{value: cloneBytes(value)}
	if ttl > 0 {
		item.expires = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.items[key] = item
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
