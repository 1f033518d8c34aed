package cache

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/joho/godotenv"
	"github.com/parsakhaledi/paydar/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type countingProvider struct {
	mu    sync.Mutex
	calls int
}

func (p *countingProvider) GetHabitStats(context.Context, string, string, string) (*domain.StatsReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return &domain.StatsReport{All: p.calls, Type: domain.StatsTypeDaily}, nil
}

func (p *countingProvider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestCachedStatsProvider_Integration(t *testing.T) {
	_ = godotenv.Load("../../../.env")

	addr := getEnv("REDIS_HOST", "localhost") + ":" + getEnv("REDIS_PORT", "6379")
	rdb, err := NewRedisClient(addr, os.Getenv("REDIS_PASSWORD"), 1)
	if err != nil {
		t.Skipf("Skipping Redis integration test: %v", err)
	}
	defer rdb.Close()

	ctx := context.Background()
	require.NoError(t, rdb.FlushDB(ctx).Err())

	next := &countingProvider{}
	provider := NewCachedStatsProvider(next, rdb)

	first, err := provider.GetHabitStats(ctx, "habit-1", "persian", "")
	require.NoError(t, err)
	assert.Equal(t, 1, next.count())

	// second read is served from Redis
	second, err := provider.GetHabitStats(ctx, "habit-1", "persian", "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.count())

	// a different calendar or as-of date is its own entry
	_, err = provider.GetHabitStats(ctx, "habit-1", "gregorian", "")
	require.NoError(t, err)
	_, err = provider.GetHabitStats(ctx, "habit-1", "persian", "2024-03-20")
	require.NoError(t, err)
	assert.Equal(t, 3, next.count())

	// invalidation drops all of the habit's entries
	require.NoError(t, provider.Invalidate(ctx, "habit-1"))
	_, err = provider.GetHabitStats(ctx, "habit-1", "persian", "")
	require.NoError(t, err)
	assert.Equal(t, 4, next.count())
}

func TestCacheKeyDefaults(t *testing.T) {
	p := &CachedStatsProvider{}
	assert.Equal(t, p.cacheKey("h", "gregorian", "today"), p.cacheKey("h", "", ""))
	assert.NotEqual(t, p.cacheKey("h", "persian", ""), p.cacheKey("h", "", ""))
}
