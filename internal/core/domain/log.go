package domain

import (
	"errors"
	"time"

	"github.com/parsakhaledi/paydar/internal/core/calendar"
)

var (
	ErrLogNotFound     = errors.New("log not found")
	ErrDuplicateLog    = errors.New("a log already exists for this habit and date")
	ErrLogBeforeStart  = errors.New("log date is before the habit's start date")
	ErrLogAfterEnd     = errors.New("log date is after the habit's end date")
	ErrLogInvalidDay   = errors.New("habit is not scheduled on this weekday")
	ErrLogValueInvalid = errors.New("log value must be non-negative")
	ErrLogBooleanValue = errors.New("boolean habit logs take value 0 or 1")
)

// LogEntry is one day's record for a habit. The Gregorian date is the
// storage key; the Persian rendering is derived once at creation so the
// engine can range and group by either calendar without converting rows
// at query time.
type LogEntry struct {
	ID      string `json:"id" db:"id"`
	HabitID string `json:"habit_id" db:"habit_id"`

	Date        string `json:"date" db:"log_date"`
	DatePersian string `json:"-" db:"log_date_persian"`
	Value       int    `json:"value" db:"value"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewLogEntry validates a log against its habit's configuration: the date
// must be a real day inside the habit's active range and, for
// specific-weekday habits, fall on a scheduled weekday.
func NewLogEntry(habit *Habit, date string, value int) (*LogEntry, error) {
	if value < 0 {
		return nil, ErrLogValueInvalid
	}
	if habit.Goal.Type == GoalBoolean && value > 1 {
		return nil, ErrLogBooleanValue
	}

	day, err := calendar.Parse(calendar.Gregorian, date)
	if err != nil {
		return nil, err
	}

	start, err := calendar.Parse(calendar.Gregorian, habit.StartDate)
	if err != nil {
		return nil, err
	}
	if day.Before(start) {
		return nil, ErrLogBeforeStart
	}
	if habit.EndDate != "" {
		end, err := calendar.Parse(calendar.Gregorian, habit.EndDate)
		if err != nil {
			return nil, err
		}
		if day.After(end) {
			return nil, ErrLogAfterEnd
		}
	}
	if !habit.Frequency.ValidDay(day.Weekday()) {
		return nil, ErrLogInvalidDay
	}

	now := time.Now().UTC()
	return &LogEntry{
		HabitID:     habit.ID,
		Date:        date,
		DatePersian: day.Convert(calendar.Persian).String(),
		Value:       value,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Qualifies reports whether this log meets the goal for its day.
func (l *LogEntry) Qualifies(goal Goal) bool {
	return goal.Satisfied(l.Value)
}
