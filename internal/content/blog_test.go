package content

import (
	"context"
	"testing"
	"time"

	"forge/internal/store"
	"forge/internal/store/memstore"
)

func seedPost(t *testing.T, ms *memstore.Store, data map[string]any) store.Record {
	t.Helper()
	rec, err := ms.Create(context.Background(), store.CollectionBlogPosts, data)
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return rec
}

func TestPostsListAllExcludesDrafts(t *testing.T) {
	ms := memstore.New()
	seedPost(t, ms, map[string]any{"slug": "live", "title": "Live", "status": "published"})
	seedPost(t, ms, map[string]any{"slug": "wip", "title": "WIP", "status": "draft"})
	seedPost(t, ms, map[string]any{"slug": "legacy", "title": "Legacy"})

	svc := &Posts{Store: ms}
	got, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len=%d want=2 (draft excluded, legacy without status kept)", len(got))
	}
	for _, p := range got {
		if p.Slug == "wip" {
			t.Fatalf("draft post leaked into listing")
		}
	}
}

func TestPostsDraftExcludedOnFallbackPathToo(t *testing.T) {
	ms := memstore.New()
	seedPost(t, ms, map[string]any{"slug": "live", "status": "published"})
	seedPost(t, ms, map[string]any{"slug": "wip", "status": "draft"})
	ms.FailFiltered = true

	svc := &Posts{Store: ms}
	got, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list should fall back, got error: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "live" {
		t.Fatalf("fallback listing=%+v want only live", got)
	}
}

func TestPostsGetBySlug(t *testing.T) {
	ms := memstore.New()
	seedPost(t, ms, map[string]any{"slug": "defi-intro", "title": "DeFi Intro", "status": "published"})

	svc := &Posts{Store: ms}
	got, err := svc.GetBySlug(context.Background(), "defi-intro")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if got.Title != "DeFi Intro" {
		t.Fatalf("title=%q want=DeFi Intro", got.Title)
	}

	if _, err := svc.GetBySlug(context.Background(), "absent"); err != store.ErrNotFound {
		t.Fatalf("err=%v want=ErrNotFound", err)
	}
}

func TestPostsGetBySlugSkipsDrafts(t *testing.T) {
	ms := memstore.New()
	seedPost(t, ms, map[string]any{"slug": "hidden", "status": "draft"})

	svc := &Posts{Store: ms}
	if _, err := svc.GetBySlug(context.Background(), "hidden"); err != store.ErrNotFound {
		t.Fatalf("draft should not resolve by slug, err=%v", err)
	}
}

func TestPostsFindBySlugIncludesDrafts(t *testing.T) {
	ms := memstore.New()
	seedPost(t, ms, map[string]any{"slug": "wip", "title": "WIP", "status": "draft"})

	svc := &Posts{Store: ms}
	got, err := svc.FindBySlug(context.Background(), "wip")
	if err != nil {
		t.Fatalf("find by slug: %v", err)
	}
	if got.Status != "draft" || got.Title != "WIP" {
		t.Fatalf("post=%+v", got)
	}

	if _, err := svc.FindBySlug(context.Background(), "absent"); err != store.ErrNotFound {
		t.Fatalf("err=%v want=ErrNotFound", err)
	}
}

func TestPostsCreateDefaults(t *testing.T) {
	svc := &Posts{Store: memstore.New()}
	created, err := svc.Create(context.Background(), map[string]any{"slug": "hello", "title": "Hello"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != "published" {
		t.Fatalf("status=%q want=published", created.Status)
	}
	if created.Views != 0 || created.Likes != 0 {
		t.Fatalf("counters views=%d likes=%d want 0/0", created.Views, created.Likes)
	}
}

func TestPostsIncrementViews(t *testing.T) {
	ms := memstore.New()
	rec := seedPost(t, ms, map[string]any{"slug": "counted", "status": "published"})

	svc := &Posts{Store: ms}
	svc.IncrementViews(context.Background(), rec.ID)
	svc.IncrementViews(context.Background(), rec.ID)
	svc.Like(context.Background(), rec.ID)

	got, err := svc.GetByID(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Views != 2 {
		t.Fatalf("views=%d want=2", got.Views)
	}
	if got.Likes != 1 {
		t.Fatalf("likes=%d want=1", got.Likes)
	}
}

func TestPostsIncrementMissingIDDoesNotError(t *testing.T) {
	svc := &Posts{Store: memstore.New()}
	// Must not panic or surface the store error.
	svc.IncrementViews(context.Background(), "ghost")
	svc.Like(context.Background(), "ghost")
}

func TestPostPublishDate(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		publishedAt string
		want        time.Time
	}{
		{"rfc3339", "2025-05-10T08:00:00Z", time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)},
		{"plain date", "2025-05-10", time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)},
		{"empty falls back", "", created},
		{"garbage falls back", "soon", created},
	}
	for _, tt := range tests {
		p := Post{PublishedAt: tt.publishedAt, CreatedAt: created}
		if got := p.PublishDate(); !got.Equal(tt.want) {
			t.Fatalf("%s: got=%s want=%s", tt.name, got, tt.want)
		}
	}
}
