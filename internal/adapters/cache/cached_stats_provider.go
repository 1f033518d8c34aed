package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/parsakhaledi/paydar/internal/core/calendar"
	"github.com/parsakhaledi/paydar/internal/core/domain"
	"github.com/parsakhaledi/paydar/internal/core/services"
	"github.com/redis/go-redis/v9"
)

var _ services.StatsProvider = (*CachedStatsProvider)(nil)

// CachedStatsProvider memoizes per-habit reports in Redis. Entries expire
// at the end of the UTC day, since every report is anchored to "today";
// writes go through Invalidate so a fresh log never serves a stale streak.
type CachedStatsProvider struct {
	next  services.StatsProvider
	cache *redis.Client
	now   func() time.Time
}

func NewCachedStatsProvider(next services.StatsProvider, cache *redis.Client) *CachedStatsProvider {
	return &CachedStatsProvider{
		next:  next,
		cache: cache,
		now:   time.Now,
	}
}

func (p *CachedStatsProvider) cacheKey(habitID, calendarTag, asOfDate string) string {
	if calendarTag == "" {
		calendarTag = string(calendar.Gregorian)
	}
	if asOfDate == "" {
		asOfDate = "today"
	}
	return fmt.Sprintf("stats:%s:%s:%s", habitID, calendarTag, asOfDate)
}

func (p *CachedStatsProvider) GetHabitStats(ctx context.Context, habitID, calendarTag, asOfDate string) (*domain.StatsReport, error) {
	key := p.cacheKey(habitID, calendarTag, asOfDate)

	val, err := p.cache.Get(ctx, key).Result()
	if err == nil {
		var report domain.StatsReport
		if err := json.Unmarshal([]byte(val), &report); err == nil {
			return &report, nil
		}

		log.Printf("[CACHE] Corrupted report at %s, cleaning up key", key)
		p.cache.Del(ctx, key)
	} else if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	report, err := p.next.GetHabitStats(ctx, habitID, calendarTag, asOfDate)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(report); err == nil {
		ttl := time.Duration(calendar.SecondsUntilEndOfDay(p.now())) * time.Second
		if setErr := p.cache.Set(ctx, key, data, ttl).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return report, nil
}

// Invalidate drops every cached report for one habit, across calendars and
// as-of dates.
func (p *CachedStatsProvider) Invalidate(ctx context.Context, habitID string) error {
	pattern := fmt.Sprintf("stats:%s:*", habitID)

	iter := p.cache.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := p.cache.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to drop cached report %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached reports for habit %s: %w", habitID, err)
	}
	return nil
}
