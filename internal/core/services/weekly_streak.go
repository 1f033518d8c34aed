package services

import (
	"context"

	"github.com/parsakhaledi/paydar/internal/core/calendar"
	"github.com/parsakhaledi/paydar/internal/core/domain"
)

// Weekly-frequency evaluation covers days-per-week habits: logs are
// partitioned into calendar weeks of the requested system, a week is
// complete when it holds at least the weekly quota of qualifying logs, and
// streaks run over consecutive complete weeks. The in-progress current week
// never breaks a streak; it either extends it or is left out.

func (s *StatsService) weeklyStats(ctx context.Context, habit *domain.Habit, sys calendar.System, asOf calendar.Date, hasAsOf bool) (*domain.WeeklyStats, error) {
	realToday := calendar.Today(sys, s.now())
	today := realToday
	if hasAsOf {
		today = asOf.Convert(sys)
		if today.After(realToday) {
			today = realToday
		}
	}

	start, err := calendar.Parse(calendar.Gregorian, habit.StartDate)
	if err != nil {
		return nil, err
	}
	start = start.Convert(sys)

	end := today
	if habit.EndDate != "" {
		habitEnd, err := calendar.Parse(calendar.Gregorian, habit.EndDate)
		if err != nil {
			return nil, err
		}
		if habitEnd = habitEnd.Convert(sys); today.After(habitEnd) {
			end = habitEnd
		}
	}

	if end.Before(start) {
		return &domain.WeeklyStats{}, nil
	}

	live := end.Equal(today)
	quota := habit.Frequency.DaysPerWeek

	dates, err := s.logs.ListQualifyingDates(ctx, habit, sys, end.String(), domain.Ascending)
	if err != nil {
		return nil, queryFailed(err)
	}

	score, anchors := partitionWeeks(dates, sys, quota)
	streak, best := weeklyStreaks(anchors, start, end, live)

	totalWeeks := calendar.WeeksBetween(start, end)

	return &domain.WeeklyStats{
		Streak:          streak,
		BestStreak:      best,
		CompleteWeeks:   len(anchors),
		IncompleteWeeks: totalWeeks - len(anchors),
		TotalWeeks:      totalWeeks,
		HabitScore:      score * 100 / (quota * max(1, totalWeeks)),
	}, nil
}

// partitionWeeks groups ascending qualifying dates into consecutive
// calendar weeks, starting at the week of the earliest log. A complete week
// contributes the full quota to the accumulated score and its last day to
// the anchor list; an incomplete week contributes its raw count.
func partitionWeeks(dates []string, sys calendar.System, quota int) (score int, anchors []string) {
	if len(dates) == 0 {
		return 0, nil
	}

	first, err := calendar.Parse(sys, dates[0])
	if err != nil {
		return 0, nil
	}
	endOfWeek := first.LastOfWeek()
	count := 0

	flush := func() {
		if count >= quota {
			anchors = append(anchors, endOfWeek.String())
			score += quota
		} else {
			score += count
		}
	}

	for _, ds := range dates {
		d, err := calendar.Parse(sys, ds)
		if err != nil {
			continue
		}
		if d.After(endOfWeek) {
			flush()
			endOfWeek = d.LastOfWeek()
			count = 1
		} else {
			count++
		}
	}
	flush()

	return score, anchors
}

// weeklyStreaks folds the anchor list into current and best streaks. Runs
// are consecutive anchors exactly one week apart; the current streak only
// counts when the final run reaches the week of end, or the week before it
// when evaluating live (the current week is still in progress then).
func weeklyStreaks(anchors []string, start, end calendar.Date, live bool) (streak, best int) {
	if len(anchors) == 0 {
		return 0, 0
	}

	run := 0
	lastWeek := start.LastOfWeek().AddDays(-7)
	for _, a := range anchors {
		lastWeek = lastWeek.AddDays(7)
		if lastWeek.String() == a {
			run++
			continue
		}
		if run > best {
			best = run
		}
		if d, err := calendar.Parse(start.System(), a); err == nil {
			lastWeek = d
		}
		run = 1
	}
	if run > best {
		best = run
	}

	finalWeek := end.LastOfWeek()
	last := anchors[len(anchors)-1]
	switch {
	case finalWeek.String() == last:
		streak = run
	case live && finalWeek.AddDays(-7).String() == last:
		streak = run
	}

	return streak, best
}
