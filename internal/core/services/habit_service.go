package services

import (
	"context"
	"fmt"

	"github.com/parsakhaledi/paydar/internal/core/domain"
)

// Refresher re-derives cached statistics for a habit after its data
// changed. Implemented by the background stats worker.
type Refresher interface {
	Enqueue(habitID string)
}

type noopRefresher struct{}

func (noopRefresher) Enqueue(string) {}

type HabitService struct {
	repo      domain.HabitRepository
	logs      domain.LogRepository
	refresher Refresher
}

func NewHabitService(repo domain.HabitRepository, logs domain.LogRepository, refresher Refresher) *HabitService {
	if refresher == nil {
		refresher = noopRefresher{}
	}
	return &HabitService{
		repo:      repo,
		logs:      logs,
		refresher: refresher,
	}
}

type CreateHabitInput struct {
	UserID   string
	Name     string
	Category string

	GoalType       string
	DailyGoal      int
	GoalComparison string
	GoalUnit       string

	Frequency   string
	DaysPerWeek int
	Weekdays    []string

	StartDate string
	EndDate   string
	Reminder  string
}

type UpdateHabitInput struct {
	ID     string
	UserID string

	Name     string
	Category string

	Frequency   string
	DaysPerWeek int
	Weekdays    []string

	StartDate string
	EndDate   string
	Reminder  string
}

func buildGoal(goalType string, dailyGoal int, comparison, unit string) (domain.Goal, error) {
	switch goalType {
	case domain.GoalBoolean:
		return domain.BooleanGoal(), nil
	case domain.GoalNumeric:
		return domain.NumericGoal(dailyGoal, comparison, unit)
	}
	return domain.Goal{}, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidGoal, goalType)
}

func buildFrequency(kind string, daysPerWeek int, weekdays []string) (domain.Frequency, error) {
	switch kind {
	case domain.FreqEveryDay:
		return domain.EveryDay(), nil
	case domain.FreqDaysPerWeek:
		return domain.DaysPerWeek(daysPerWeek)
	case domain.FreqSpecificWeekdays:
		return domain.SpecificWeekdays(weekdays...)
	}
	return domain.Frequency{}, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidFrequency, kind)
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	goal, err := buildGoal(input.GoalType, input.DailyGoal, input.GoalComparison, input.GoalUnit)
	if err != nil {
		return nil, err
	}

	freq, err := buildFrequency(input.Frequency, input.DaysPerWeek, input.Weekdays)
	if err != nil {
		return nil, err
	}

	habit, err := domain.NewHabit(input.UserID, input.Name, input.Category, goal, freq, input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}
	if input.Reminder != "" {
		if err := habit.SetReminder(input.Reminder); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) GetByID(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Update applies the editable fields. Goal type is immutable; frequency and
// the active range may change, in which case logs that fell outside the new
// schedule are removed and the habit's cached reports are refreshed.
func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		habit.Name = input.Name
	}
	if input.Category != "" {
		habit.Category = input.Category
	}

	rangeChanged := false
	start, end := habit.StartDate, habit.EndDate
	if input.StartDate != "" && input.StartDate != habit.StartDate {
		start = input.StartDate
		rangeChanged = true
	}
	if input.EndDate != habit.EndDate {
		end = input.EndDate
		rangeChanged = true
	}
	if rangeChanged {
		if err := habit.Reschedule(start, end); err != nil {
			return nil, err
		}
	}

	weekdaysChanged := false
	if input.Frequency != "" {
		freq, err := buildFrequency(input.Frequency, input.DaysPerWeek, input.Weekdays)
		if err != nil {
			return nil, err
		}
		weekdaysChanged = freq.Kind == domain.FreqSpecificWeekdays &&
			!sameWeekdays(habit.Frequency.Weekdays, freq.Weekdays)
		habit.Frequency = freq
	}

	if input.Reminder != "" {
		if err := habit.SetReminder(input.Reminder); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	// cascade: drop logs the new configuration cannot explain
	if rangeChanged {
		if err := s.logs.DeleteOutsideRange(ctx, habit.ID, habit.StartDate, habit.EndDate); err != nil {
			return nil, err
		}
	}
	if weekdaysChanged {
		if err := s.logs.DeleteOnExcludedWeekdays(ctx, habit.ID, habit.Frequency.Weekdays); err != nil {
			return nil, err
		}
	}
	if rangeChanged || weekdaysChanged {
		s.refresher.Enqueue(habit.ID)
	}

	return habit, nil
}

func (s *HabitService) Delete(ctx context.Context, id, userID string) error {
	habit, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	// logs cascade through the habit's foreign key; the repo owns that
	return s.repo.Delete(ctx, habit.ID)
}

func sameWeekdays(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, d := range a {
		set[d] = true
	}
	for _, d := range b {
		if !set[d] {
			return false
		}
	}
	return true
}
