package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parsakhaledi/paydar/internal/core/calendar"
)

var (
	ErrHabitNameEmpty     = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong   = errors.New("habit name is too long (max 100 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidCategory    = errors.New("invalid habit category")
	ErrInvalidGoal        = errors.New("invalid habit goal")
	ErrInvalidFrequency   = errors.New("invalid habit frequency")
	ErrInvalidDateRange   = errors.New("end date must not be before start date")
	ErrInvalidReminder    = errors.New("invalid reminder format (must be HH:MM 24h)")
)

const (
	GoalBoolean = "boolean"
	GoalNumeric = "numeric"

	CompareAtLeast = "at-least"
	CompareExactly = "exactly"

	FreqEveryDay         = "every-day"
	FreqDaysPerWeek      = "days-per-week"
	FreqSpecificWeekdays = "specific-days-of-week"

	MaxNameLen = 100
)

var habitCategories = map[string]bool{
	"Study": true, "Work": true, "Health": true,
	"Entertainment": true, "Social": true, "Other": true,
}

// Goal is a tagged variant: the numeric branch's fields do not exist for
// boolean habits, whose implicit daily target is 1.
type Goal struct {
	Type       string `json:"type"`
	DailyGoal  int    `json:"daily_goal,omitempty"`
	Comparison string `json:"comparison,omitempty"`
	Unit       string `json:"unit,omitempty"`
}

func BooleanGoal() Goal {
	return Goal{Type: GoalBoolean}
}

func NumericGoal(dailyGoal int, comparison, unit string) (Goal, error) {
	if dailyGoal < 1 {
		return Goal{}, fmt.Errorf("%w: daily goal must be at least 1", ErrInvalidGoal)
	}
	if comparison != CompareAtLeast && comparison != CompareExactly {
		return Goal{}, fmt.Errorf("%w: unknown comparison %q", ErrInvalidGoal, comparison)
	}
	if strings.TrimSpace(unit) == "" {
		return Goal{}, fmt.Errorf("%w: numeric habits need a unit", ErrInvalidGoal)
	}
	return Goal{Type: GoalNumeric, DailyGoal: dailyGoal, Comparison: comparison, Unit: unit}, nil
}

func (g Goal) Validate() error {
	switch g.Type {
	case GoalBoolean:
		if g.DailyGoal != 0 || g.Comparison != "" || g.Unit != "" {
			return fmt.Errorf("%w: boolean goals carry no numeric fields", ErrInvalidGoal)
		}
		return nil
	case GoalNumeric:
		_, err := NumericGoal(g.DailyGoal, g.Comparison, g.Unit)
		return err
	}
	return fmt.Errorf("%w: unknown type %q", ErrInvalidGoal, g.Type)
}

// Target is the value a single day's log must reach.
func (g Goal) Target() int {
	if g.Type == GoalBoolean {
		return 1
	}
	return g.DailyGoal
}

// Satisfied reports whether a log value qualifies under this goal.
func (g Goal) Satisfied(value int) bool {
	if g.Type == GoalNumeric && g.Comparison == CompareExactly {
		return value == g.DailyGoal
	}
	return value >= g.Target()
}

// Frequency is a tagged variant; exactly one branch is populated, matching
// Kind. Use the constructors rather than building it by hand.
type Frequency struct {
	Kind        string   `json:"kind"`
	DaysPerWeek int      `json:"days_per_week,omitempty"`
	Weekdays    []string `json:"weekdays,omitempty"`
}

func EveryDay() Frequency {
	return Frequency{Kind: FreqEveryDay}
}

func DaysPerWeek(n int) (Frequency, error) {
	if n < 1 || n > 6 {
		return Frequency{}, fmt.Errorf("%w: days per week must be 1..6, got %d", ErrInvalidFrequency, n)
	}
	return Frequency{Kind: FreqDaysPerWeek, DaysPerWeek: n}, nil
}

func SpecificWeekdays(days ...string) (Frequency, error) {
	if len(days) < 1 || len(days) > 6 {
		return Frequency{}, fmt.Errorf("%w: between one and six weekdays required", ErrInvalidFrequency)
	}
	seen := make(map[string]bool, len(days))
	normalized := make([]string, 0, len(days))
	for _, d := range days {
		if _, err := calendar.ParseWeekday(d); err != nil {
			return Frequency{}, fmt.Errorf("%w: unknown weekday %q", ErrInvalidFrequency, d)
		}
		if seen[d] {
			return Frequency{}, fmt.Errorf("%w: duplicate weekday %q", ErrInvalidFrequency, d)
		}
		seen[d] = true
		normalized = append(normalized, d)
	}
	return Frequency{Kind: FreqSpecificWeekdays, Weekdays: normalized}, nil
}

func (f Frequency) Validate() error {
	switch f.Kind {
	case FreqEveryDay:
		if f.DaysPerWeek != 0 || len(f.Weekdays) != 0 {
			return fmt.Errorf("%w: every-day carries no extra fields", ErrInvalidFrequency)
		}
		return nil
	case FreqDaysPerWeek:
		if len(f.Weekdays) != 0 {
			return fmt.Errorf("%w: days-per-week carries no weekday set", ErrInvalidFrequency)
		}
		_, err := DaysPerWeek(f.DaysPerWeek)
		return err
	case FreqSpecificWeekdays:
		if f.DaysPerWeek != 0 {
			return fmt.Errorf("%w: specific weekdays carry no weekly quota", ErrInvalidFrequency)
		}
		_, err := SpecificWeekdays(f.Weekdays...)
		return err
	}
	return fmt.Errorf("%w: unknown kind %q", ErrInvalidFrequency, f.Kind)
}

// WeekdaySet returns the scheduled weekdays; nil for every-day and
// days-per-week habits, where no weekday is excluded.
func (f Frequency) WeekdaySet() map[calendar.Weekday]bool {
	if f.Kind != FreqSpecificWeekdays {
		return nil
	}
	set := make(map[calendar.Weekday]bool, len(f.Weekdays))
	for _, name := range f.Weekdays {
		if wd, err := calendar.ParseWeekday(name); err == nil {
			set[wd] = true
		}
	}
	return set
}

// ValidDay reports whether the habit is scheduled on the given weekday.
func (f Frequency) ValidDay(wd calendar.Weekday) bool {
	if f.Kind != FreqSpecificWeekdays {
		return true
	}
	return f.WeekdaySet()[wd]
}

type Habit struct {
	ID       string `json:"id" db:"id"`
	UserID   string `json:"user_id" db:"user_id"`
	Name     string `json:"name" db:"name"`
	Category string `json:"category" db:"category"`

	Goal      Goal      `json:"goal"`
	Frequency Frequency `json:"frequency"`

	// Inclusive active range. Dates are canonical Gregorian YYYY-MM-DD
	// strings; EndDate is empty for open-ended habits.
	StartDate string `json:"start_date" db:"start_date"`
	EndDate   string `json:"end_date,omitempty" db:"end_date"`

	Reminder *string `json:"reminder,omitempty" db:"reminder"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewHabit(userID, name, category string, goal Goal, freq Frequency, startDate, endDate string) (*Habit, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrHabitNameEmpty
	}
	if len(name) > MaxNameLen {
		return nil, ErrHabitNameTooLong
	}
	if !habitCategories[category] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	if err := goal.Validate(); err != nil {
		return nil, err
	}
	if err := freq.Validate(); err != nil {
		return nil, err
	}

	start, err := calendar.Parse(calendar.Gregorian, startDate)
	if err != nil {
		return nil, err
	}
	if endDate != "" {
		end, err := calendar.Parse(calendar.Gregorian, endDate)
		if err != nil {
			return nil, err
		}
		if end.Before(start) {
			return nil, ErrInvalidDateRange
		}
	}

	now := time.Now().UTC()
	return &Habit{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Category:  category,
		Goal:      goal,
		Frequency: freq,
		StartDate: startDate,
		EndDate:   endDate,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Reschedule changes the active range, keeping the range invariant.
func (h *Habit) Reschedule(startDate, endDate string) error {
	start, err := calendar.Parse(calendar.Gregorian, startDate)
	if err != nil {
		return err
	}
	if endDate != "" {
		end, err := calendar.Parse(calendar.Gregorian, endDate)
		if err != nil {
			return err
		}
		if end.Before(start) {
			return ErrInvalidDateRange
		}
	}
	h.StartDate = startDate
	h.EndDate = endDate
	h.UpdatedAt = time.Now().UTC()
	return nil
}

// SetReminder accepts a HH:MM 24h wall-clock time, or clears it with "".
func (h *Habit) SetReminder(hhmm string) error {
	if hhmm == "" {
		h.Reminder = nil
		h.UpdatedAt = time.Now().UTC()
		return nil
	}
	var hour, minute int
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return ErrInvalidReminder
	}
	if _, err := fmt.Sscanf(hhmm, "%2d:%2d", &hour, &minute); err != nil ||
		hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return ErrInvalidReminder
	}
	h.Reminder = &hhmm
	h.UpdatedAt = time.Now().UTC()
	return nil
}
