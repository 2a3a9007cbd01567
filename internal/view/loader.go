package view

import (
	"context"
	"sync"
)

// Loader holds the fetch state for one collection view: the last data,
// the last error, and whether a fetch is in flight. Each Refetch bumps a
// generation counter captured before the fetch runs; a slower, older
// fetch that resolves after a newer one finds its generation stale and
// is discarded instead of overwriting fresher state.
type Loader[T any] struct {
	Fetch func(ctx context.Context) (T, error)

	mu         sync.Mutex
	generation uint64
	data       T
	err        error
	loading    bool
	loaded     bool
}

// State is a snapshot of the loader.
type State[T any] struct {
	Data    T
	Err     error
	Loading bool
}

// Get returns the cached data, fetching first if nothing has loaded yet.
func (l *Loader[T]) Get(ctx context.Context) (T, error) {
	l.mu.Lock()
	if l.loaded {
		data, err := l.data, l.err
		l.mu.Unlock()
		return data, err
	}
	l.mu.Unlock()
	return l.Refetch(ctx)
}

// Refetch runs the fetch and stores the outcome, unless a newer Refetch
// started in the meantime, in which case the result is dropped.
func (l *Loader[T]) Refetch(ctx context.Context) (T, error) {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.loading = true
	l.mu.Unlock()

	data, err := l.Fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.generation {
		// A newer fetch owns the state now.
		return data, err
	}
	l.data = data
	l.err = err
	l.loading = false
	l.loaded = true
	return data, err
}

// State snapshots the loader without fetching.
func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return State[T]{Data: l.data, Err: l.err, Loading: l.loading}
}

// Invalidate forgets cached data so the next Get fetches again.
func (l *Loader[T]) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = false
}
