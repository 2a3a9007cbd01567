package content

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"forge/internal/store"
)

// Post is the decoded view of one blog post document.
type Post struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Views       int       `json:"views"`
	Likes       int       `json:"likes"`
	Status      string    `json:"status"`
	ReadTime    int       `json:"readTime"`
	Featured    bool      `json:"featured"`
	PublishedAt string    `json:"publishedAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PublishDate is the ordering date for listings: the author-facing
// publish date when present and parseable, else the write timestamp.
func (p Post) PublishDate() time.Time {
	if t, ok := fieldTime(p.PublishedAt); ok {
		return t
	}
	return p.CreatedAt
}

func PostFromRecord(rec store.Record) Post {
	data := rec.Data
	return Post{
		ID:          rec.ID,
		Slug:        fieldString(data, "slug"),
		Title:       fieldString(data, "title"),
		Excerpt:     fieldString(data, "excerpt"),
		Content:     fieldString(data, "content"),
		Author:      fieldString(data, "author"),
		Category:    fieldString(data, "category"),
		Tags:        fieldStrings(data, "tags"),
		Views:       fieldInt(data, "views"),
		Likes:       fieldInt(data, "likes"),
		Status:      fieldString(data, "status"),
		ReadTime:    fieldInt(data, "readTime"),
		Featured:    fieldBool(data, "featured"),
		PublishedAt: fieldString(data, "publishedAt"),
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

// Posts exposes the blog post collection.
type Posts struct {
	Store  store.RecordStore
	Logger *zap.Logger
}

// ListAll returns published posts, newest first. Posts written before
// the status field existed count as published, so the predicate runs in
// memory on both the ordered and the fallback path.
func (p *Posts) ListAll(ctx context.Context) ([]Post, error) {
	records, err := p.listWithFallback(ctx, store.Query{OrderBy: "createdAt", Desc: true})
	if err != nil {
		p.logError("list posts failed", err)
		return nil, err
	}
	return decodePublished(records), nil
}

func (p *Posts) ListByCategory(ctx context.Context, category string) ([]Post, error) {
	records, err := p.listWithFallback(ctx, store.Query{
		Eq:      map[string]string{"category": category},
		OrderBy: "createdAt",
		Desc:    true,
	})
	if err != nil {
		p.logError("list posts by category failed", err)
		return nil, err
	}
	return decodePublished(records), nil
}

func (p *Posts) ListByAuthor(ctx context.Context, authorID string) ([]Post, error) {
	records, err := p.listWithFallback(ctx, store.Query{
		Eq:      map[string]string{"authorId": authorID},
		OrderBy: "createdAt",
		Desc:    true,
	})
	if err != nil {
		p.logError("list posts by author failed", err)
		return nil, err
	}
	return decodePublished(records), nil
}

func (p *Posts) GetByID(ctx context.Context, id string) (Post, error) {
	rec, err := p.Store.Get(ctx, store.CollectionBlogPosts, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			p.logError("get post failed", err)
		}
		return Post{}, err
	}
	return PostFromRecord(rec), nil
}

// GetBySlug looks a post up by its routing slug. Slug uniqueness is a
// convention the store does not enforce; on duplicates the first match
// in listing order wins.
func (p *Posts) GetBySlug(ctx context.Context, slug string) (Post, error) {
	posts, err := p.ListAll(ctx)
	if err != nil {
		return Post{}, err
	}
	for _, post := range posts {
		if post.Slug == slug {
			return post, nil
		}
	}
	return Post{}, store.ErrNotFound
}

// FindBySlug resolves a slug regardless of publish status. The admin
// surface uses this so drafts stay reachable for editing and deletion;
// public reads go through GetBySlug, which sees published posts only.
func (p *Posts) FindBySlug(ctx context.Context, slug string) (Post, error) {
	records, err := p.listWithFallback(ctx, store.Query{OrderBy: "createdAt", Desc: true})
	if err != nil {
		p.logError("find post by slug failed", err)
		return Post{}, err
	}
	for _, rec := range records {
		if fieldString(rec.Data, "slug") == slug {
			return PostFromRecord(rec), nil
		}
	}
	return Post{}, store.ErrNotFound
}

// Create stores a new post. Status defaults to "published"; views and
// likes start at 0.
func (p *Posts) Create(ctx context.Context, data map[string]any) (Post, error) {
	payload := make(map[string]any, len(data)+3)
	for k, v := range data {
		payload[k] = v
	}
	if _, ok := payload["status"]; !ok {
		payload["status"] = "published"
	}
	if _, ok := payload["views"]; !ok {
		payload["views"] = 0
	}
	if _, ok := payload["likes"]; !ok {
		payload["likes"] = 0
	}
	rec, err := p.Store.Create(ctx, store.CollectionBlogPosts, payload)
	if err != nil {
		p.logError("create post failed", err)
		return Post{}, err
	}
	return PostFromRecord(rec), nil
}

func (p *Posts) Update(ctx context.Context, id string, partial map[string]any) (Post, error) {
	rec, err := p.Store.Update(ctx, store.CollectionBlogPosts, id, partial)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			p.logError("update post failed", err)
		}
		return Post{}, err
	}
	return PostFromRecord(rec), nil
}

func (p *Posts) Delete(ctx context.Context, id string) error {
	if err := p.Store.Delete(ctx, store.CollectionBlogPosts, id); err != nil {
		p.logError("delete post failed", err)
		return err
	}
	return nil
}

// IncrementViews bumps the view counter. Counter failures are logged
// and swallowed: a broken counter must never break a page.
func (p *Posts) IncrementViews(ctx context.Context, id string) {
	if err := p.Store.Increment(ctx, store.CollectionBlogPosts, id, "views", 1); err != nil {
		p.logError("increment views failed", err)
	}
}

// Like bumps the like counter with the same swallow-and-log policy.
func (p *Posts) Like(ctx context.Context, id string) {
	if err := p.Store.Increment(ctx, store.CollectionBlogPosts, id, "likes", 1); err != nil {
		p.logError("like post failed", err)
	}
}

func (p *Posts) listWithFallback(ctx context.Context, q store.Query) ([]store.Record, error) {
	records, err := p.Store.List(ctx, store.CollectionBlogPosts, q)
	if err == nil {
		return records, nil
	}
	var qerr *store.QueryError
	if !errors.As(err, &qerr) {
		return nil, err
	}
	if p.Logger != nil {
		p.Logger.Warn("post query rejected, falling back to plain fetch", zap.Error(err))
	}
	records, err = p.Store.List(ctx, store.CollectionBlogPosts, store.Query{})
	if err != nil {
		return nil, err
	}
	records = filterRecords(records, q.Eq)
	sortNewestFirst(records)
	return records, nil
}

func (p *Posts) logError(msg string, err error) {
	if p.Logger != nil {
		p.Logger.Error(msg, zap.Error(err))
	}
}

func decodePublished(records []store.Record) []Post {
	out := make([]Post, 0, len(records))
	for _, rec := range records {
		status := fieldString(rec.Data, "status")
		if status != "" && status != "published" {
			continue
		}
		out = append(out, PostFromRecord(rec))
	}
	return out
}
