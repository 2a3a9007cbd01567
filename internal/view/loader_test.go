package view

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestLoaderGetFetchesOnceThenCaches(t *testing.T) {
	calls := 0
	l := &Loader[int]{Fetch: func(context.Context) (int, error) {
		calls++
		return 42, nil
	}}
	for i := 0; i < 3; i++ {
		got, err := l.Get(context.Background())
		if err != nil || got != 42 {
			t.Fatalf("get #%d = (%v, %v)", i, got, err)
		}
	}
	if calls != 1 {
		t.Fatalf("fetch called %d times, want 1", calls)
	}
}

func TestLoaderCachesErrors(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	l := &Loader[int]{Fetch: func(context.Context) (int, error) {
		calls++
		return 0, boom
	}}
	if _, err := l.Get(context.Background()); err != boom {
		t.Fatalf("err=%v want=boom", err)
	}
	if _, err := l.Get(context.Background()); err != boom {
		t.Fatalf("cached err=%v want=boom", err)
	}
	if calls != 1 {
		t.Fatalf("fetch called %d times, want 1", calls)
	}
}

func TestLoaderInvalidateForcesRefetch(t *testing.T) {
	calls := 0
	l := &Loader[int]{Fetch: func(context.Context) (int, error) {
		calls++
		return calls, nil
	}}
	if got, _ := l.Get(context.Background()); got != 1 {
		t.Fatalf("first get=%d want=1", got)
	}
	l.Invalidate()
	if got, _ := l.Get(context.Background()); got != 2 {
		t.Fatalf("get after invalidate=%d want=2", got)
	}
}

func TestLoaderStaleRefetchDiscarded(t *testing.T) {
	// A slow fetch overtaken by a newer Refetch must not overwrite the
	// newer state when it finally resolves.
	slowStarted := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	l := &Loader[int]{Fetch: func(context.Context) (int, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(slowStarted)
			<-release
			return 1, nil
		}
		return 2, nil
	}}

	done := make(chan struct{})
	go func() {
		l.Refetch(context.Background())
		close(done)
	}()
	<-slowStarted

	if got, err := l.Refetch(context.Background()); err != nil || got != 2 {
		t.Fatalf("fast refetch = (%v, %v)", got, err)
	}

	close(release)
	<-done

	if state := l.State(); state.Data != 2 {
		t.Fatalf("state.Data=%d want=2 (stale result must be dropped)", state.Data)
	}
}
