package domain

import (
	"context"
	"errors"

	"github.com/parsakhaledi/paydar/internal/core/calendar"
)

var (
	ErrHabitNotFound = errors.New("habit not found")

	// ErrQueryFailed classifies storage-level failures surfaced by the
	// read ports. The stats engine never retries: a partially failed
	// query mid-scan would silently corrupt a reconstructed streak.
	ErrQueryFailed = errors.New("log query failed")
)

type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// LogQuery is the read-only port the stats engine consumes. Date arguments
// and results are YYYY-MM-DD strings rendered in the requested system;
// empty range bounds mean unbounded. Implementations must never mutate.
type LogQuery interface {
	// CountQualifying counts logs in [from, to] whose value satisfies the
	// habit's goal predicate.
	CountQualifying(ctx context.Context, habit *Habit, from, to string, sys calendar.System) (int, error)

	// CountFailing counts logs up to and including maxDate whose value
	// does not satisfy the goal predicate. Always Gregorian.
	CountFailing(ctx context.Context, habit *Habit, maxDate string) (int, error)

	// ListQualifyingDates returns the dates of all qualifying logs up to
	// and including maxDate, sorted by date in the given order.
	ListQualifyingDates(ctx context.Context, habit *Habit, sys calendar.System, maxDate string, order SortOrder) ([]string, error)

	// FindByDate looks up the single log for (habit, Gregorian date);
	// ErrLogNotFound when none exists.
	FindByDate(ctx context.Context, habitID, date string) (*LogEntry, error)

	// MonthlyHistogram groups all qualifying logs by the requested
	// calendar's year and month.
	MonthlyHistogram(ctx context.Context, habit *Habit, sys calendar.System) (map[int]map[int]int, error)
}

// HabitProvider hands the engine a read snapshot of one habit.
type HabitProvider interface {
	GetByID(ctx context.Context, id string) (*Habit, error)
}

type HabitRepository interface {
	HabitProvider

	Create(ctx context.Context, habit *Habit) error
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)
	Update(ctx context.Context, habit *Habit) error
	Delete(ctx context.Context, id string) error
}

// LogRepository is the full log store: the engine's query port plus the
// mutations owned by the surrounding application.
type LogRepository interface {
	LogQuery

	Create(ctx context.Context, entry *LogEntry) error
	Update(ctx context.Context, entry *LogEntry) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*LogEntry, error)
	ListByHabitID(ctx context.Context, habitID string, from, to string) ([]*LogEntry, error)

	// DeleteOutsideRange removes logs dated before start or, when end is
	// non-empty, after end. Used when a habit is rescheduled.
	DeleteOutsideRange(ctx context.Context, habitID, start, end string) error

	// DeleteOnExcludedWeekdays removes logs whose weekday left the
	// habit's schedule.
	DeleteOnExcludedWeekdays(ctx context.Context, habitID string, allowed []string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
