package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/guestbook/internal/domain"
	"github.com/listenupapp/guestbook/internal/metrics"
	"github.com/listenupapp/guestbook/internal/render"
	"github.com/listenupapp/guestbook/internal/search"
	"github.com/listenupapp/guestbook/internal/service"
	"github.com/listenupapp/guestbook/internal/store"
	"github.com/listenupapp/guestbook/internal/store/badgerdb"
)

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

// testServer wraps the API server with direct access to its store.
type testServer struct {
	*Server
	api   humatest.TestAPI
	store store.Store
}

type testOption func(*Services, *Options)

func withRenderer(r *render.Renderer) testOption {
	return func(s *Services, _ *Options) { s.Renderer = r }
}

func withOptions(fn func(*Options)) testOption {
	return func(_ *Services, o *Options) { fn(o) }
}

func withoutSearch() testOption {
	return func(s *Services, _ *Options) { s.Search = nil }
}

// setupTestServer creates a server over an in-memory badger store, an
// in-memory search index and the embedded templates.
func setupTestServer(t *testing.T, opts ...testOption) *testServer {
	t.Helper()

	st, err := badgerdb.NewInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.NewSearchIndex(search.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	logger := slog.New(slog.DiscardHandler)
	searchService := service.NewSearchService(index, st, logger)
	m := metrics.New()

	renderer, err := render.New(render.Options{Logger: logger})
	require.NoError(t, err)

	services := &Services{
		Guestbook: service.NewGuestbookService(st, logger,
			service.WithClock(func() time.Time { return fixedNow }),
			service.WithSearchIndexer(searchService),
			service.WithMetrics(m),
		),
		Search:   searchService,
		Renderer: renderer,
		Metrics:  m,
	}
	var serverOpts Options
	for _, opt := range opts {
		opt(services, &serverOpts)
	}

	s := NewServer(services, serverOpts, logger)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		store:  st,
	}
}

// do sends a request through the full middleware stack.
func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	return ts.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// postForm posts urlencoded form values.
func (ts *testServer) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ts.do(req)
}

func (ts *testServer) createBook(t *testing.T, name string) *domain.Book {
	t.Helper()
	book, err := ts.services.Guestbook.CreateBook(context.Background(), name)
	require.NoError(t, err)
	return book
}

func TestServer_RequestIDGenerated(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.get("/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get(headerRequestID), 36)
}

func TestServer_RequestIDPropagated(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := ts.do(req)

	assert.Equal(t, "req-123", rec.Header().Get(headerRequestID))
}

func TestServer_RequestIDTooLongIsReplaced(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerRequestID, strings.Repeat("x", maxRequestIDLen+1))
	rec := ts.do(req)

	assert.Len(t, rec.Header().Get(headerRequestID), 36)
}

func TestServer_Metrics(t *testing.T) {
	ts := setupTestServer(t)
	book := ts.createBook(t, "Alice's Library")

	ts.get(book.Path())
	rec := ts.get("/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `guestbook_http_requests_total{method="GET",route="/books/{id:[0-9]+}",status="200"} 1`)
	assert.Contains(t, body, "guestbook_books_created_total 1")
}

func TestServer_MetricsDisabled(t *testing.T) {
	ts := setupTestServer(t, func(s *Services, _ *Options) { s.Metrics = nil })

	rec := ts.get("/metrics")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_CORS(t *testing.T) {
	ts := setupTestServer(t, withOptions(func(o *Options) {
		o.AllowedOrigins = []string{"http://app.example"}
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/books", nil)
	req.Header.Set("Origin", "http://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := ts.do(req)

	assert.Equal(t, "http://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = ts.do(req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_OpenAPI(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.get("/openapi.json")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"/api/v1/books/{id}/greetings"`)
	assert.Contains(t, rec.Body.String(), `"/api/v1/search"`)
}

func TestServer_OpenAPIWithoutSearch(t *testing.T) {
	ts := setupTestServer(t, withoutSearch())

	rec := ts.get("/openapi.json")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"/api/v1/search"`)
}
