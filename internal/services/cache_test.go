package services

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/longball/internal/scoring"
)

// newUnreachableCache builds a cache whose Redis client cannot connect,
// exercising the in-process fallback path.
func newUnreachableCache() *CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		ReadTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewCacheService(client, logger)
}

func TestCacheFallbackRoundTrip(t *testing.T) {
	cache := newUnreachableCache()
	ctx := context.Background()

	payload := map[string]float64{"hr_score": 0.31}
	require.NoError(t, cache.Set(ctx, "predictions:2025-06-01:", payload, time.Minute))

	var got map[string]float64
	require.NoError(t, cache.Get(ctx, "predictions:2025-06-01:", &got))
	assert.Equal(t, 0.31, got["hr_score"])
}

func TestCacheFallbackExpiry(t *testing.T) {
	cache := newUnreachableCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "stale", "value", -time.Second))

	var got string
	err := cache.Get(ctx, "stale", &got)
	assert.Error(t, err)
}

func TestCacheDeleteClearsFallback(t *testing.T) {
	cache := newUnreachableCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "doomed", "value", time.Minute))

	// Redis is down so Del errors, but the local copy must still go.
	_ = cache.Delete(ctx, "doomed")

	var got string
	err := cache.Get(ctx, "doomed", &got)
	assert.Error(t, err)
}

func TestCacheSimpleHelpers(t *testing.T) {
	cache := newUnreachableCache()

	require.NoError(t, cache.SetSimple("simple", 42, time.Minute))

	var got int
	require.NoError(t, cache.GetSimple("simple", &got))
	assert.Equal(t, 42, got)
}

func TestPredictionCacheKeys(t *testing.T) {
	keys := PredictionCacheKeys("2025-06-01")

	assert.Equal(t, []string{
		"predictions:2025-06-01:",
		"predictions:2025-06-01:" + scoring.TierLock,
		"predictions:2025-06-01:" + scoring.TierSleeper,
		"predictions:2025-06-01:" + scoring.TierRisky,
	}, keys)
}
