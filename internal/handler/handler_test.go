package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"forge/internal/auth"
	"forge/internal/cache"
	"forge/internal/config"
	"forge/internal/content"
	"forge/internal/outbound"
	"forge/internal/store"
	"forge/internal/store/memstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine *gin.Engine
	store  *memstore.Store
	jwt    auth.JWT
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ms := memstore.New()
	strategies := &content.Strategies{Store: ms}
	posts := &content.Posts{Store: ms}
	j := auth.JWT{Secret: []byte("test-secret"), TokenTTL: time.Hour}
	requireAuth := auth.RequireAuth(j)

	r := gin.New()
	(&StrategyHandler{Strategies: strategies}).Register(r, requireAuth)
	(&PostHandler{Posts: posts}).Register(r, requireAuth)
	(&ExportHandler{
		Strategies: strategies,
		Posts:      posts,
		Cache:      cache.NewMemoryStore(),
		TTL:        time.Minute,
	}).Register(r)
	(&AuthHandler{
		Provider: auth.StaticProvider{Email: "admin@forge.test", Password: "hunter2"},
		JWT:      j,
	}).Register(r)
	(&WaitlistHandler{
		Subscriber: outbound.New(ms, nil, config.OutboundConfig{Timeout: time.Second}),
	}).Register(r)

	return &testServer{engine: r, store: ms, jwt: j}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := s.jwt.Sign(auth.Claims{Email: "admin@forge.test", Role: "admin"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func (s *testServer) seedStrategy(t *testing.T, data map[string]any) store.Record {
	t.Helper()
	rec, err := s.store.Create(context.Background(), store.CollectionStrategies, data)
	if err != nil {
		t.Fatalf("seed strategy: %v", err)
	}
	return rec
}

func (s *testServer) seedPost(t *testing.T, data map[string]any) store.Record {
	t.Helper()
	rec, err := s.store.Create(context.Background(), store.CollectionBlogPosts, data)
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return rec
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestStrategyListFiltersAndMeta(t *testing.T) {
	s := newTestServer(t)
	s.seedStrategy(t, map[string]any{"name": "Lido Staking", "category": "staking", "risk": "Low", "apy": 5.0})
	s.seedStrategy(t, map[string]any{"name": "GMX LP", "category": "lp", "risk": "High", "apy": 20.0})

	w := s.do(t, http.MethodGet, "/api/v1/strategies?search=lido", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	body := decodeEnvelope(t, w)
	meta := body["meta"].(map[string]any)
	if meta["total"].(float64) != 2 || meta["matching"].(float64) != 1 {
		t.Fatalf("meta=%v want total=2 matching=1", meta)
	}
	data := body["data"].([]any)
	if len(data) != 1 || data[0].(map[string]any)["name"] != "Lido Staking" {
		t.Fatalf("data=%v", data)
	}
}

func TestStrategyListDefaultSortIsAPY(t *testing.T) {
	s := newTestServer(t)
	s.seedStrategy(t, map[string]any{"name": "low", "apy": 3.0})
	s.seedStrategy(t, map[string]any{"name": "high", "apy": 30.0})

	w := s.do(t, http.MethodGet, "/api/v1/strategies", nil, nil)
	body := decodeEnvelope(t, w)
	data := body["data"].([]any)
	if len(data) != 2 || data[0].(map[string]any)["name"] != "high" {
		t.Fatalf("default sort not apy desc: %v", data)
	}
}

func TestStrategyDetailIncludesSchema(t *testing.T) {
	s := newTestServer(t)
	rec := s.seedStrategy(t, map[string]any{"name": "Curve 3Pool"})

	w := s.do(t, http.MethodGet, "/api/v1/strategies/"+rec.ID, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	body := decodeEnvelope(t, w)
	data := body["data"].(map[string]any)
	strategy := data["strategy"].(map[string]any)
	if strategy["risk"] != "Unknown" {
		t.Fatalf("risk default missing: %v", strategy["risk"])
	}
	schema := data["schema"].(map[string]any)
	if schema["@type"] != "Product" {
		t.Fatalf("schema=%v", schema)
	}
}

func TestStrategyDetailNotFound(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/v1/strategies/ghost", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d want=404", w.Code)
	}
}

func TestStrategyMutationsRequireAuth(t *testing.T) {
	s := newTestServer(t)
	payload := map[string]any{"name": "New"}

	if w := s.do(t, http.MethodPost, "/api/v1/strategies", payload, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated create status=%d want=401", w.Code)
	}

	headers := map[string]string{"Authorization": "Bearer " + s.adminToken(t)}
	w := s.do(t, http.MethodPost, "/api/v1/strategies", payload, headers)
	if w.Code != http.StatusOK {
		t.Fatalf("authenticated create status=%d body=%s", w.Code, w.Body.String())
	}
	body := decodeEnvelope(t, w)
	data := body["data"].(map[string]any)
	if data["status"] != "active" {
		t.Fatalf("created status=%v want=active", data["status"])
	}
}

func TestStrategyCreateRejectsBadToken(t *testing.T) {
	s := newTestServer(t)
	headers := map[string]string{"Authorization": "Bearer not-a-token"}
	if w := s.do(t, http.MethodPost, "/api/v1/strategies", map[string]any{}, headers); w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d want=401", w.Code)
	}
}

func TestPostDetailCountsView(t *testing.T) {
	s := newTestServer(t)
	rec := s.seedPost(t, map[string]any{"slug": "hello", "title": "Hello", "status": "published"})

	if w := s.do(t, http.MethodGet, "/api/v1/posts/hello", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	got, err := s.store.Get(context.Background(), store.CollectionBlogPosts, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if views, _ := got.Data["views"].(float64); views != 1 {
		t.Fatalf("views=%v want=1", got.Data["views"])
	}
}

func TestPostViewEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := s.seedPost(t, map[string]any{"slug": "hello", "status": "published"})

	if w := s.do(t, http.MethodPost, "/api/v1/posts/hello/views", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got, _ := s.store.Get(context.Background(), store.CollectionBlogPosts, rec.ID)
	if views, _ := got.Data["views"].(float64); views != 1 {
		t.Fatalf("views=%v want=1", got.Data["views"])
	}
}

func TestPostLike(t *testing.T) {
	s := newTestServer(t)
	rec := s.seedPost(t, map[string]any{"slug": "hello", "status": "published"})

	if w := s.do(t, http.MethodPost, "/api/v1/posts/hello/likes", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got, _ := s.store.Get(context.Background(), store.CollectionBlogPosts, rec.ID)
	if likes, _ := got.Data["likes"].(float64); likes != 1 {
		t.Fatalf("likes=%v want=1", got.Data["likes"])
	}
}

func TestPostListMetaCategories(t *testing.T) {
	s := newTestServer(t)
	s.seedPost(t, map[string]any{"slug": "a", "category": "guides", "status": "published"})
	s.seedPost(t, map[string]any{"slug": "b", "category": "news", "status": "published"})
	s.seedPost(t, map[string]any{"slug": "c", "category": "guides", "status": "draft"})

	w := s.do(t, http.MethodGet, "/api/v1/posts", nil, nil)
	body := decodeEnvelope(t, w)
	meta := body["meta"].(map[string]any)
	categories := meta["categories"].([]any)
	if len(categories) != 2 {
		t.Fatalf("categories=%v want 2 entries", categories)
	}
	if meta["total"].(float64) != 2 {
		t.Fatalf("draft counted in total: %v", meta["total"])
	}
}

func TestSitemapXMLServed(t *testing.T) {
	s := newTestServer(t)
	s.seedStrategy(t, map[string]any{"name": "Lido"})

	w := s.do(t, http.MethodGet, "/sitemap.xml", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Fatalf("content-type=%q", ct)
	}
	if !strings.Contains(w.Body.String(), "<urlset") {
		t.Fatalf("body=%q", w.Body.String())
	}

	// Second hit is served from cache and must be identical.
	w2 := s.do(t, http.MethodGet, "/sitemap.xml", nil, nil)
	if w2.Body.String() != w.Body.String() {
		t.Fatalf("cached sitemap differs")
	}
}

func TestAICatalogServed(t *testing.T) {
	s := newTestServer(t)
	rec := s.seedStrategy(t, map[string]any{"name": "Lido"})

	w := s.do(t, http.MethodGet, "/ai/sitemap.json", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var entries []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0]["url"].(string), "/ai/"+rec.ID+".json") {
		t.Fatalf("entries=%v", entries)
	}
}

func TestAIDetailTrimsJSONSuffix(t *testing.T) {
	s := newTestServer(t)
	rec := s.seedStrategy(t, map[string]any{"name": "Lido"})

	w := s.do(t, http.MethodGet, "/ai/"+rec.ID+".json", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var detail map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail["slug"] != rec.ID || detail["title"] != "Lido" {
		t.Fatalf("detail=%v", detail)
	}
}

func TestAIDetailNotFoundBody(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/ai/ghost.json", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d want=404", w.Code)
	}
	body := decodeEnvelope(t, w)
	if body["error"] != "Strategy not found" || body["slug"] != "ghost" {
		t.Fatalf("body=%v", body)
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]any{"email": "admin@forge.test", "password": "wrong"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status=%d want=401", w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]any{"email": "admin@forge.test", "password": "hunter2"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	body := decodeEnvelope(t, w)
	data := body["data"].(map[string]any)
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatalf("no token in %v", data)
	}

	// The issued token must pass the admin middleware.
	headers := map[string]string{"Authorization": "Bearer " + token}
	if w := s.do(t, http.MethodPost, "/api/v1/strategies", map[string]any{"name": "x"}, headers); w.Code != http.StatusOK {
		t.Fatalf("token rejected: status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestWaitlistValidation(t *testing.T) {
	s := newTestServer(t)

	if w := s.do(t, http.MethodPost, "/api/v1/waitlist", map[string]any{}, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("empty email status=%d want=400", w.Code)
	}

	w := s.do(t, http.MethodPost, "/api/v1/waitlist", map[string]any{"email": "dev@example.com"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	recs, err := s.store.List(context.Background(), store.CollectionWaitlist, store.Query{})
	if err != nil || len(recs) != 1 {
		t.Fatalf("waitlist records=%v err=%v", recs, err)
	}
	if recs[0].Data["email"] != "dev@example.com" || recs[0].Data["source"] != "website" {
		t.Fatalf("record=%v", recs[0].Data)
	}
}

func TestPostAdminCanPublishDraft(t *testing.T) {
	s := newTestServer(t)
	s.seedPost(t, map[string]any{"slug": "wip", "title": "WIP", "status": "draft"})
	headers := map[string]string{"Authorization": "Bearer " + s.adminToken(t)}

	// Drafts are invisible to the public detail route but must stay
	// reachable for admin edits.
	if w := s.do(t, http.MethodGet, "/api/v1/posts/wip", nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("public draft read status=%d want=404", w.Code)
	}

	w := s.do(t, http.MethodPut, "/api/v1/posts/wip", map[string]any{"status": "published"}, headers)
	if w.Code != http.StatusOK {
		t.Fatalf("draft update status=%d body=%s", w.Code, w.Body.String())
	}

	if w := s.do(t, http.MethodGet, "/api/v1/posts/wip", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("published post still hidden: status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestPostAdminCanDeleteDraft(t *testing.T) {
	s := newTestServer(t)
	rec := s.seedPost(t, map[string]any{"slug": "wip", "status": "draft"})
	headers := map[string]string{"Authorization": "Bearer " + s.adminToken(t)}

	if w := s.do(t, http.MethodDelete, "/api/v1/posts/wip", nil, headers); w.Code != http.StatusOK {
		t.Fatalf("draft delete status=%d body=%s", w.Code, w.Body.String())
	}
	if _, err := s.store.Get(context.Background(), store.CollectionBlogPosts, rec.ID); err != store.ErrNotFound {
		t.Fatalf("draft still stored after delete: err=%v", err)
	}
}

func TestPostAdminUpdateBySlug(t *testing.T) {
	s := newTestServer(t)
	s.seedPost(t, map[string]any{"slug": "hello", "title": "Hello", "status": "published"})
	headers := map[string]string{"Authorization": "Bearer " + s.adminToken(t)}

	w := s.do(t, http.MethodPut, "/api/v1/posts/hello", map[string]any{"title": "Hello v2"}, headers)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	body := decodeEnvelope(t, w)
	data := body["data"].(map[string]any)
	if data["title"] != "Hello v2" {
		t.Fatalf("title=%v want=Hello v2", data["title"])
	}
}
