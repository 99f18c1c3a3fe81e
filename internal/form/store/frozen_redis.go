package store

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/circuit"
)

var frozenLookupDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "forms_frozen_lookup_duration_ms",
	Help:    "Latency of frozen-form cache lookups in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

const frozenKeyPrefix = "form:frozen:"

// RedisFrozenCache records forms that have received answers, so structural
// edits can be refused without querying the answers table. Markers never
// expire unless a TTL is configured; a form never thaws.
//
// With a breaker configured, an unreachable Redis is skipped: lookups report
// "not cached" and callers fall through to the store.
type RedisFrozenCache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *circuit.Breaker
}

type RedisFrozenOption func(*RedisFrozenCache)

// WithFrozenTTL bounds how long markers live. Zero keeps them forever.
func WithFrozenTTL(ttl time.Duration) RedisFrozenOption {
	return func(c *RedisFrozenCache) {
		c.ttl = ttl
	}
}

// WithFrozenBreaker guards Redis calls with b.
func WithFrozenBreaker(b *circuit.Breaker) RedisFrozenOption {
	return func(c *RedisFrozenCache) {
		c.breaker = b
	}
}

func NewRedisFrozenCache(client *redis.Client, opts ...RedisFrozenOption) *RedisFrozenCache {
	c := &RedisFrozenCache{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *RedisFrozenCache) IsFrozen(ctx context.Context, formID id.FormID) (bool, error) {
	start := time.Now()
	defer func() {
		frozenLookupDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if !c.allow() {
		return false, nil
	}
	_, err := c.client.Get(ctx, frozenKeyPrefix+formID.String()).Result()
	if errors.Is(err, redis.Nil) {
		c.record(nil)
		return false, nil
	}
	if c.record(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisFrozenCache) MarkFrozen(ctx context.Context, formID id.FormID) error {
	if !c.allow() {
		return nil
	}
	err := c.client.Set(ctx, frozenKeyPrefix+formID.String(), "1", c.ttl).Err()
	if c.record(err) {
		return nil
	}
	return err
}

func (c *RedisFrozenCache) allow() bool {
	return c.breaker == nil || c.breaker.Allow()
}

// record feeds the breaker and reports whether the error should be swallowed
// because the breaker is now open.
func (c *RedisFrozenCache) record(err error) bool {
	if c.breaker == nil {
		return false
	}
	if err == nil {
		c.breaker.RecordSuccess()
		return false
	}
	useFallback, _ := c.breaker.RecordFailure()
	return useFallback
}

