package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userapi/userapi/internal/config"
	"github.com/userapi/userapi/internal/handler"
	"github.com/userapi/userapi/internal/metrics"
	"github.com/userapi/userapi/internal/repository"
	"github.com/userapi/userapi/internal/service"
	"github.com/userapi/userapi/internal/testutil"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func testConfig() *config.Config {
	cfg := testutil.NewConfig()
	cfg.MaxRequestBodySize = 1 << 10
	return cfg
}

func newTestRouter(t *testing.T, cfg *config.Config, health handler.HealthChecker) (http.Handler, *metrics.PrometheusRecorder) {
	t.Helper()

	logger := testutil.DiscardLogger()
	recorder := metrics.NewPrometheus()
	svc := service.NewUserService(repository.NewUserStore(), recorder, logger)

	r := NewRouter(RouterParams{
		Config:         cfg,
		Logger:         logger,
		Users:          handler.NewUserHandler(svc, logger),
		Health:         handler.NewHealthHandler(health),
		Metrics:        recorder,
		MetricsHandler: recorder.Handler(),
	})
	return r, recorder
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.1:1234"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	r, _ := newTestRouter(t, testConfig(), nil)

	rec := serve(r, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestRouter_UserLifecycle(t *testing.T) {
	r, _ := newTestRouter(t, testConfig(), nil)

	rec := serve(r, http.MethodPost, "/api/users", `{"name":"John Doe","email":"john@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"id":1`)

	rec = serve(r, http.MethodPut, "/api/users/1", `{"name":"Jane"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Jane"`)
	assert.Contains(t, rec.Body.String(), `"email":"john@example.com"`)

	rec = serve(r, http.MethodGet, "/api/users/count", "")
	assert.JSONEq(t, `{"total_users":1}`, rec.Body.String())

	rec = serve(r, http.MethodDelete, "/api/users/1", "")
	assert.JSONEq(t, `{"message":"User deleted successfully"}`, rec.Body.String())

	rec = serve(r, http.MethodGet, "/api/users/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	r, _ := newTestRouter(t, testConfig(), nil)

	rec := serve(r, http.MethodGet, "/api/widgets", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"resource not found"}`, rec.Body.String())

	rec = serve(r, http.MethodPatch, "/api/users/1", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"method not allowed"}`, rec.Body.String())
}

func TestRouter_BodyTooLarge(t *testing.T) {
	r, _ := newTestRouter(t, testConfig(), nil)

	body := `{"name":"` + strings.Repeat("x", 2<<10) + `","email":"a@b.c"}`
	rec := serve(r, http.MethodPost, "/api/users", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"Request body too large"}`, rec.Body.String())
}

func TestRouter_Probes(t *testing.T) {
	t.Run("without redis", func(t *testing.T) {
		r, _ := newTestRouter(t, testConfig(), nil)

		rec := serve(r, http.MethodGet, "/healthz", "")
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

		rec = serve(r, http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("redis down", func(t *testing.T) {
		r, _ := newTestRouter(t, testConfig(), failingPinger{})

		rec := serve(r, http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestRouter_Metrics(t *testing.T) {
	r, _ := newTestRouter(t, testConfig(), nil)

	serve(r, http.MethodPost, "/api/users", `{"name":"John Doe","email":"john@example.com"}`)
	serve(r, http.MethodGet, "/api/users/7", "")

	rec := serve(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	out := rec.Body.String()
	assert.Contains(t, out, `userapi_user_operations_total{op="create"} 1`)
	assert.Contains(t, out, `route="/api/users/{id}"`)
	assert.Contains(t, out, "userapi_http_request_duration_seconds")
}

func TestRouter_MetricsUnmounted(t *testing.T) {
	logger := testutil.DiscardLogger()
	svc := service.NewUserService(repository.NewUserStore(), nil, logger)
	r := NewRouter(RouterParams{
		Config: testConfig(),
		Logger: logger,
		Users:  handler.NewUserHandler(svc, logger),
		Health: handler.NewHealthHandler(nil),
	})

	rec := serve(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitEnabled = true
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 2
	r, _ := newTestRouter(t, cfg, nil)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/users", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/users", "").Code)

	rec := serve(r, http.MethodGet, "/api/users", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Rate limit exceeded"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Probes sit outside /api and are never limited.
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/healthz", "").Code)
}
