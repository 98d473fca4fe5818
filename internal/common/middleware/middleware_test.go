package middleware_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/central-university-dev/go-tubecord/internal/common/metrics"
	"github.com/central-university-dev/go-tubecord/internal/common/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(handler http.Handler, remoteAddr, forwarded string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", http.NoBody)
	req.RemoteAddr = remoteAddr

	if forwarded != "" {
		req.Header.Set("X-Forwarded-For", forwarded)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestRateLimiterMiddleware_LimitsPerClient(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := middleware.NewRateLimiterMiddleware(ctx, 3, time.Minute, false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := limiter.Middleware(okHandler())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.1:1234", "").Code)
	}

	rec := doRequest(handler, "10.0.0.1:5678", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "20", rec.Header().Get("Retry-After"))
	assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.2:1234", "").Code)
}

func TestRateLimiterMiddleware_ForwardedFor(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := middleware.NewRateLimiterMiddleware(ctx, 1, time.Minute, true, slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := limiter.Middleware(okHandler())

	assert.Equal(t, http.StatusOK, doRequest(handler, "127.0.0.1:1", "203.0.113.5, 10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, doRequest(handler, "127.0.0.1:1", "203.0.113.6").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, "127.0.0.1:2", "203.0.113.5").Code)
}

func TestMetricsMiddleware_RecordsRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.NewMetricsMiddleware("middleware_test").Middleware(mux)

	counter := metrics.HTTPRequestsTotal.WithLabelValues("middleware_test", http.MethodGet, "GET /health", "success")
	before := testutil.ToFloat64(counter)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	assert.InDelta(t, before+1, testutil.ToFloat64(counter), 0.001)

	missing := metrics.HTTPRequestsTotal.WithLabelValues("middleware_test", http.MethodGet, "unmatched", "error")
	beforeMissing := testutil.ToFloat64(missing)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/random/path", http.NoBody))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.InDelta(t, beforeMissing+1, testutil.ToFloat64(missing), 0.001)
}
