package workers

import (
	"context"
	"log"

	"github.com/parsakhaledi/paydar/internal/core/calendar"
	"github.com/parsakhaledi/paydar/internal/core/domain"
)

type StatsProvider interface {
	GetHabitStats(ctx context.Context, habitID, calendarTag, asOfDate string) (*domain.StatsReport, error)
}

type ReportCache interface {
	Invalidate(ctx context.Context, habitID string) error
}

type RefreshJob struct {
	HabitID string
}

// StatsWorker rebuilds a habit's cached reports in the background after a
// log or schedule change, so reads stay fast without serving stale numbers.
type StatsWorker struct {
	stats StatsProvider
	cache ReportCache
	jobs  chan RefreshJob
}

func NewStatsWorker(stats StatsProvider, cache ReportCache) *StatsWorker {
	return &StatsWorker{
		stats: stats,
		cache: cache,
		jobs:  make(chan RefreshJob, 100),
	}
}

func (w *StatsWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Stats Worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Stats Worker shutting down...")
				return
			}
		}
	}()
}

func (w *StatsWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- RefreshJob{HabitID: habitID}:
	default:
		log.Printf("Stats Worker queue full! Dropping job for habit %s", habitID)
	}
}

func (w *StatsWorker) processJob(ctx context.Context, job RefreshJob) {
	if w.cache != nil {
		if err := w.cache.Invalidate(ctx, job.HabitID); err != nil {
			log.Printf("Worker Error invalidating reports for %s: %v", job.HabitID, err)
			return
		}
	}

	// rewarm both calendars for today
	for _, sys := range []calendar.System{calendar.Gregorian, calendar.Persian} {
		if _, err := w.stats.GetHabitStats(ctx, job.HabitID, string(sys), ""); err != nil {
			log.Printf("Worker Error rebuilding %s report for %s: %v", sys, job.HabitID, err)
			return
		}
	}

	log.Printf("Reports rebuilt for habit %s", job.HabitID)
}
