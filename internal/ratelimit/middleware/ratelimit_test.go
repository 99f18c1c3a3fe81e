package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/ratelimit/metrics"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/ratelimit/models"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/ratelimit/store/bucket"
	testhttp "github.com/werterpires/salt-in-forms-back-sub000/pkg/testutil"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*models.Result, error) {
	return nil, errors.New("redis down")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func request(ip string) *http.Request {
	return testhttp.WithClientIP(httptest.NewRequest(http.MethodPost, "/form-candidates/x/answers", nil), ip)
}

func TestPerClientRejectsOverLimit(t *testing.T) {
	mt := metrics.New(prometheus.NewRegistry())
	m := New(bucket.NewInMemoryBucketStore(), quietLogger(), WithMetrics(mt))
	h := m.PerClient("answers", models.Policy{Limit: 2, Window: time.Minute})(okHandler())

	for range 2 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, request("192.0.2.1"))
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := testhttp.Do(h, request("192.0.2.1"))
	testhttp.AssertAPIError(t, rec, http.StatusTooManyRequests, "rate_limit_exceeded")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.Rejections.WithLabelValues("answers")))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, request("192.0.2.2"))
	assert.Equal(t, http.StatusNoContent, rec.Code, "other clients keep their own window")
}

func TestPerClientFailsOpen(t *testing.T) {
	mt := metrics.New(prometheus.NewRegistry())
	m := New(failingStore{}, quietLogger(), WithMetrics(mt))
	h := m.PerClient("answers", models.Policy{Limit: 1, Window: time.Minute})(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request("192.0.2.1"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.StoreErrors))
}

func TestPerClientDisabled(t *testing.T) {
	tests := []struct {
		name   string
		opts   []Option
		policy models.Policy
	}{
		{"disabled option", []Option{WithDisabled(true)}, models.Policy{Limit: 1, Window: time.Minute}},
		{"zero policy", nil, models.Policy{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(failingStore{}, quietLogger(), tt.opts...)
			h := m.PerClient("answers", tt.policy)(okHandler())
			for range 3 {
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, request("192.0.2.1"))
				assert.Equal(t, http.StatusNoContent, rec.Code)
				assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
			}
		})
	}
}
