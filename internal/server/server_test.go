package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtg9ny/recipe-backend/internal/catalog"
	"github.com/mtg9ny/recipe-backend/internal/config"
	"github.com/mtg9ny/recipe-backend/internal/domain"
	"github.com/mtg9ny/recipe-backend/internal/storage"
	"github.com/mtg9ny/recipe-backend/internal/storage/inmemory"
	"github.com/mtg9ny/recipe-backend/internal/views"
)

type closeRecorder struct {
	*inmemory.Backend
	closed bool
	err    error
}

func (b *closeRecorder) Close(ctx context.Context) error {
	b.closed = true
	return b.err
}

func testConfig() *config.Config {
	return &config.Config{
		Address:         "127.0.0.1",
		Port:            0,
		Storage:         config.StorageInMemory,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		IdleTimeout:     time.Second,
		ShutdownTimeout: time.Second,
	}
}

func newTestServer(t *testing.T, backend storage.Backend) *Server {
	t.Helper()
	renderer, err := views.New()
	require.NoError(t, err)

	var handlers []*catalog.Handler
	for _, kind := range []domain.Kind{domain.RecipeKind, domain.PostKind} {
		store, err := backend.Open(context.Background(), kind)
		require.NoError(t, err)
		handlers = append(handlers, catalog.New(kind, store, renderer))
	}
	return New(testConfig(), catalog.NewRouter(renderer, handlers...), renderer, backend)
}

func serve(s *Server, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t, inmemory.NewBackend())

	tests := []struct {
		name     string
		method   string
		path     string
		header   map[string]string
		status   int
		contains string
	}{
		{"root redirects", http.MethodGet, "/", nil, http.StatusFound, ""},
		{"catalog index", http.MethodGet, "/catalog/", nil, http.StatusOK, "Recipe Home"},
		{"catalog list", http.MethodGet, "/catalog/recipes?format=json", nil, http.StatusOK, `"recipes":[]`},
		{"health", http.MethodGet, "/health", nil, http.StatusOK, `"status":"healthy"`},
		{"static", http.MethodGet, "/static/style.css", nil, http.StatusOK, ".sidebar"},
		{"unknown html", http.MethodGet, "/nowhere", nil, http.StatusNotFound, "Page not found"},
		{"unknown catalog json", http.MethodGet, "/catalog/nowhere", map[string]string{"Accept": "application/json"}, http.StatusNotFound, `"msg":"Page not found"`},
		{"wrong method", http.MethodDelete, "/catalog/recipes", nil, http.StatusMethodNotAllowed, "Method not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, tt.method, tt.path, tt.header)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}

	rec := serve(s, http.MethodGet, "/", nil)
	assert.Equal(t, "/catalog/", rec.Header().Get("Location"))
}

func TestReady(t *testing.T) {
	s := newTestServer(t, inmemory.NewBackend())

	rec := serve(s, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_ready")

	s.SetReady(true)
	rec = serve(s, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, inmemory.NewBackend())
	serve(s, http.MethodGet, "/catalog/recipe/abc", map[string]string{"Accept": "application/json"})

	rec := serve(s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "catalog_http_requests_total")
	assert.Contains(t, body, `route="/catalog/recipe/{id}"`)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, inmemory.NewBackend())

	rec := serve(s, http.MethodGet, "/health", map[string]string{"Origin": "http://example.com"})
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryMiddleware(t *testing.T) {
	renderer, err := views.New()
	require.NoError(t, err)

	h := recoveryMiddleware(catalog.InternalError(renderer))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(errors.New("boom"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?format=json", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"errors":[{"msg":"Internal server error"}]}`, rec.Body.String())
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)
	assert.Equal(t, http.StatusOK, rw.Status())

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusTeapot)
	_, err := rw.Write([]byte("ok"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rw.Status())
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Same(t, rec, rw.Unwrap())
}

func TestServe(t *testing.T) {
	s := newTestServer(t, inmemory.NewBackend())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "healthy")
	assert.True(t, s.isReady())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.False(t, s.isReady())
}

func TestRun_ClosesBackend(t *testing.T) {
	backend := &closeRecorder{Backend: inmemory.NewBackend()}
	s := newTestServer(t, backend)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, s.Run(ctx))
	assert.True(t, backend.closed)
}

func TestRun_ReportsCloseError(t *testing.T) {
	backend := &closeRecorder{Backend: inmemory.NewBackend(), err: errors.New("close failed")}
	s := newTestServer(t, backend)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.EqualError(t, s.Run(ctx), "close failed")
}
