package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/ratelimit/metrics"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/ratelimit/models"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/httputil"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/middleware/metadata"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/requestcontext"
)

const keyPrefix = "forms:rl:"

// BucketStore is a sliding-window counter.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

type Middleware struct {
	store    BucketStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled turns every limit into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) { m.disabled = disabled }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) { m.metrics = mt }
}

func New(store BucketStore, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{store: store, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// PerClient limits each client address to policy within one endpoint class.
// Store failures let the request through.
func (m *Middleware) PerClient(class string, policy models.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m.disabled || !policy.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := metadata.FromContext(ctx).IP
			if ip == "" {
				ip = metadata.ClientIPFromRequest(r)
			}
			key := keyPrefix + class + ":" + models.SanitizeKeySegment(ip)

			result, err := m.store.Allow(ctx, key, policy.Limit, policy.Window)
			if err != nil {
				m.metrics.IncStoreError()
				m.logger.ErrorContext(ctx, "rate limit check failed",
					"class", class,
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			addHeaders(w, result)
			if !result.Allowed {
				m.metrics.IncRejected(class)
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"class", class,
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteJSON(w, http.StatusTooManyRequests, models.ExceededResponse{
					Error:      "rate_limit_exceeded",
					Message:    "Too many requests. Please try again later.",
					RetryAfter: result.RetryAfter,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func addHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
