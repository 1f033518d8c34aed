package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/parsakhaledi/paydar/internal/core/calendar"
	"github.com/parsakhaledi/paydar/internal/core/domain"
)

// maxConcurrentHabitStats bounds the fan-out when computing reports for a
// whole habit collection.
const maxConcurrentHabitStats = 4

// StatsProvider is the single inbound entry point of the stats engine.
type StatsProvider interface {
	GetHabitStats(ctx context.Context, habitID, calendarTag, asOfDate string) (*domain.StatsReport, error)
}

// StatsService computes completion statistics and streaks for one habit
// under one calendar. It is a pure read-side computation: the only I/O is
// through the injected query ports, and it never mutates habit or log rows.
type StatsService struct {
	habits domain.HabitRepository
	logs   domain.LogQuery

	now func() time.Time
}

func NewStatsService(habits domain.HabitRepository, logs domain.LogQuery) *StatsService {
	return &StatsService{
		habits: habits,
		logs:   logs,
		now:    time.Now,
	}
}

func queryFailed(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrQueryFailed, err)
}

// HabitForUser fetches one habit and checks it belongs to userID. Habits
// owned by someone else are reported as not found.
func (s *StatsService) HabitForUser(ctx context.Context, habitID, userID string) (*domain.Habit, error) {
	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			return nil, err
		}
		return nil, queryFailed(err)
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

// GetHabitStats validates calendarTag and asOfDate before touching storage,
// then aggregates window counts, the monthly histogram and the
// frequency-appropriate streak report.
func (s *StatsService) GetHabitStats(ctx context.Context, habitID, calendarTag, asOfDate string) (*domain.StatsReport, error) {
	sys, err := calendar.ParseSystem(calendarTag)
	if err != nil {
		return nil, err
	}

	var asOf calendar.Date
	hasAsOf := asOfDate != ""
	if hasAsOf {
		// asOfDate is always a Gregorian string, like every date crossing
		// the API boundary; it is re-rendered per calendar internally.
		asOf, err = calendar.Parse(calendar.Gregorian, asOfDate)
		if err != nil {
			return nil, err
		}
	}

	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			return nil, err
		}
		return nil, queryFailed(err)
	}

	today := calendar.Today(sys, s.now())
	if hasAsOf {
		today = asOf.Convert(sys)
	}

	report := &domain.StatsReport{}
	if err := s.timesCompleted(ctx, habit, sys, today, report); err != nil {
		return nil, err
	}

	hist, err := s.logs.MonthlyHistogram(ctx, habit, sys)
	if err != nil {
		return nil, queryFailed(err)
	}
	if hist == nil {
		hist = map[int]map[int]int{}
	}
	report.MonthlyBreakdown = hist

	if habit.Goal.Type == domain.GoalNumeric {
		report.Unit = habit.Goal.Unit
	}

	if habit.Frequency.Kind == domain.FreqDaysPerWeek {
		report.Type = domain.StatsTypeWeekly
		report.Weekly, err = s.weeklyStats(ctx, habit, sys, asOf, hasAsOf)
	} else {
		report.Type = domain.StatsTypeDaily
		report.Daily, err = s.dailyStats(ctx, habit, asOf, hasAsOf)
	}
	if err != nil {
		return nil, err
	}

	return report, nil
}

// timesCompleted fills the four fixed-window counts. The sub-queries are
// independent and run concurrently; any failure aborts the whole
// aggregation.
func (s *StatsService) timesCompleted(ctx context.Context, habit *domain.Habit, sys calendar.System, today calendar.Date, report *domain.StatsReport) error {
	type window struct {
		from, to string
		dest     *int
	}
	windows := []window{
		{today.FirstOfWeek().String(), today.LastOfWeek().String(), &report.ThisWeek},
		{today.FirstOfMonth().String(), today.LastOfMonth().String(), &report.ThisMonth},
		{today.FirstOfYear().String(), today.LastOfYear().String(), &report.ThisYear},
		{"", "", &report.All},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range windows {
		g.Go(func() error {
			n, err := s.logs.CountQualifying(gctx, habit, w.from, w.to, sys)
			if err != nil {
				return err
			}
			*w.dest = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return queryFailed(err)
	}
	return nil
}

// HabitStatsResult is one habit's slot in a collection-wide evaluation.
// Error is set instead of Report when that habit's computation failed.
type HabitStatsResult struct {
	HabitID string              `json:"habit_id"`
	Name    string              `json:"name"`
	Report  *domain.StatsReport `json:"report,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// GetAllStats evaluates every habit of a user with bounded concurrency.
// One habit failing does not abort the others.
func (s *StatsService) GetAllStats(ctx context.Context, userID, calendarTag, asOfDate string) ([]HabitStatsResult, error) {
	if _, err := calendar.ParseSystem(calendarTag); err != nil {
		return nil, err
	}
	if asOfDate != "" {
		if _, err := calendar.Parse(calendar.Gregorian, asOfDate); err != nil {
			return nil, err
		}
	}

	habits, err := s.habits.ListByUserID(ctx, userID)
	if err != nil {
		return nil, queryFailed(err)
	}

	results := make([]HabitStatsResult, len(habits))

	var g errgroup.Group
	g.SetLimit(maxConcurrentHabitStats)
	for i, habit := range habits {
		g.Go(func() error {
			res := HabitStatsResult{HabitID: habit.ID, Name: habit.Name}
			report, err := s.GetHabitStats(ctx, habit.ID, calendarTag, asOfDate)
			if err != nil {
				res.Error = err.Error()
			} else {
				res.Report = report
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}
