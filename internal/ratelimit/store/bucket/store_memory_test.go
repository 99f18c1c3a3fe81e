package bucket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(now *time.Time) *InMemoryBucketStore {
	s := NewInMemoryBucketStore()
	s.now = func() time.Time { return *now }
	return s
}

func TestInMemoryAllowUpToLimit(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	s := newTestStore(&now)
	ctx := context.Background()

	for i := range 3 {
		res, err := s.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 3-(i+1), res.Remaining)
	}

	res, err := s.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, now.Add(time.Minute), res.ResetAt)
	assert.Equal(t, 60, res.RetryAfter)
}

func TestInMemoryWindowSlides(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	s := newTestStore(&now)
	ctx := context.Background()

	_, _ = s.Allow(ctx, "k", 2, time.Minute)
	now = now.Add(30 * time.Second)
	_, _ = s.Allow(ctx, "k", 2, time.Minute)

	res, _ := s.Allow(ctx, "k", 2, time.Minute)
	require.False(t, res.Allowed)
	assert.Equal(t, 30, res.RetryAfter, "oldest entry expires in 30s")

	now = now.Add(30 * time.Second)
	res, _ = s.Allow(ctx, "k", 2, time.Minute)
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestInMemoryKeysAreIndependent(t *testing.T) {
	now := time.Now()
	s := newTestStore(&now)
	ctx := context.Background()

	res, _ := s.Allow(ctx, "a", 1, time.Minute)
	require.True(t, res.Allowed)
	res, _ = s.Allow(ctx, "a", 1, time.Minute)
	require.False(t, res.Allowed)

	res, _ = s.Allow(ctx, "b", 1, time.Minute)
	assert.True(t, res.Allowed)

	require.NoError(t, s.Reset(ctx, "a"))
	res, _ = s.Allow(ctx, "a", 1, time.Minute)
	assert.True(t, res.Allowed)
}

func TestInMemoryAllowNAllOrNothing(t *testing.T) {
	now := time.Now()
	s := newTestStore(&now)
	ctx := context.Background()

	res, _ := s.AllowN(ctx, "k", 3, 4, time.Minute)
	require.True(t, res.Allowed)
	res, _ = s.AllowN(ctx, "k", 2, 4, time.Minute)
	assert.False(t, res.Allowed)
	res, _ = s.AllowN(ctx, "k", 1, 4, time.Minute)
	assert.True(t, res.Allowed)
}
