package services

import (
	"context"
	"errors"

	"github.com/parsakhaledi/paydar/internal/core/calendar"
	"github.com/parsakhaledi/paydar/internal/core/domain"
)

// Daily-frequency evaluation covers every-day and specific-weekday habits.
// Streaks are reconstructed from a single descending scan of qualifying log
// dates, walked in lockstep with the habit's scheduled days. Always
// Gregorian: a daily streak does not depend on how dates are rendered.

func (s *StatsService) dailyStats(ctx context.Context, habit *domain.Habit, asOf calendar.Date, hasAsOf bool) (*domain.DailyStats, error) {
	today := calendar.Today(calendar.Gregorian, s.now())
	if hasAsOf {
		today = asOf.Convert(calendar.Gregorian)
	}

	start, err := calendar.Parse(calendar.Gregorian, habit.StartDate)
	if err != nil {
		return nil, err
	}

	end := today
	if habit.EndDate != "" {
		habitEnd, err := calendar.Parse(calendar.Gregorian, habit.EndDate)
		if err != nil {
			return nil, err
		}
		if today.After(habitEnd) {
			end = habitEnd
		}
	}

	if end.Before(start) {
		return &domain.DailyStats{}, nil
	}

	// live means the evaluation day itself is the scan boundary, so the
	// day may still be completed and gets the pending treatment below.
	live := end.Equal(today)
	freq := habit.Frequency

	dates, err := s.logs.ListQualifyingDates(ctx, habit, calendar.Gregorian, end.String(), domain.Descending)
	if err != nil {
		return nil, queryFailed(err)
	}

	streak, best := 0, 0
	pendingToday := false

	if len(dates) > 0 {
		countCurrent := true
		scanStart := end

		if live && freq.ValidDay(end.Weekday()) {
			todayLog, err := s.logs.FindByDate(ctx, habit.ID, end.String())
			switch {
			case errors.Is(err, domain.ErrLogNotFound):
				// no log yet: today is not broken, scan from the
				// previous scheduled day
				scanStart = prevValidDay(end, freq)
			case err != nil:
				return nil, queryFailed(err)
			case !todayLog.Qualifies(habit.Goal):
				if habit.Goal.Type == domain.GoalBoolean {
					// a failed boolean day is terminal
					countCurrent = false
				} else {
					pendingToday = true
					scanStart = prevValidDay(end, freq)
				}
			}
		}

		streak, best = walkDailyStreak(dates, scanStart, freq, countCurrent)
	}

	success := len(dates)

	fail, err := s.logs.CountFailing(ctx, habit, end.String())
	if err != nil {
		return nil, queryFailed(err)
	}
	if pendingToday {
		fail--
	}

	var total int
	if freq.Kind == domain.FreqSpecificWeekdays {
		total = calendar.WeekdaysBetween(start, end, freq.WeekdaySet())
	} else {
		total = calendar.DaysBetween(start, end)
	}

	return &domain.DailyStats{
		Streak:     streak,
		BestStreak: best,
		Success:    success,
		Fail:       fail,
		Pending:    total - success - fail,
		Total:      total,
		HabitScore: success * 100 / max(1, total),
	}, nil
}

// prevValidDay steps back to the closest earlier day the habit is
// scheduled on.
func prevValidDay(d calendar.Date, freq domain.Frequency) calendar.Date {
	d = d.AddDays(-1)
	for !freq.ValidDay(d.Weekday()) {
		d = d.AddDays(-1)
	}
	return d
}

// walkDailyStreak folds the descending qualifying dates against the
// sequence of scheduled days ending at start, carrying (run, best, cursor)
// through the walk. Each exact match extends the run; the first mismatch
// ends the current streak, and later runs only compete for the best streak.
// With countCurrent false the current streak is pinned to zero and the walk
// feeds best-streak tracking only.
func walkDailyStreak(dates []string, start calendar.Date, freq domain.Frequency, countCurrent bool) (streak, best int) {
	cursor := start
	if !freq.ValidDay(cursor.Weekday()) {
		cursor = prevValidDay(cursor, freq)
	}

	i := 0
	if countCurrent {
		for ; i < len(dates); i++ {
			if dates[i] != cursor.String() {
				break
			}
			streak++
			cursor = prevValidDay(cursor, freq)
		}
		best = streak
	}

	if i < len(dates) {
		if d, err := calendar.Parse(calendar.Gregorian, dates[i]); err == nil {
			cursor = d
		}
	}

	run := 0
	for ; i < len(dates); i++ {
		if dates[i] != cursor.String() {
			if run > best {
				best = run
			}
			run = 0
			if d, err := calendar.Parse(calendar.Gregorian, dates[i]); err == nil {
				cursor = d
			}
		}
		run++
		cursor = prevValidDay(cursor, freq)
	}
	if run > best {
		best = run
	}

	return streak, best
}
