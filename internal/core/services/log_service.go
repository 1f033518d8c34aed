package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/parsakhaledi/paydar/internal/core/domain"
)

type LogService struct {
	habits    domain.HabitRepository
	logs      domain.LogRepository
	refresher Refresher
}

func NewLogService(habits domain.HabitRepository, logs domain.LogRepository, refresher Refresher) *LogService {
	if refresher == nil {
		refresher = noopRefresher{}
	}
	return &LogService{
		habits:    habits,
		logs:      logs,
		refresher: refresher,
	}
}

type LogInput struct {
	HabitID string
	UserID  string
	Date    string
	Value   int
}

// Log records a value for one day. A habit holds at most one log per date,
// so logging the same date again overwrites the previous value.
func (s *LogService) Log(ctx context.Context, input LogInput) (*domain.LogEntry, error) {
	habit, err := s.ownedHabit(ctx, input.HabitID, input.UserID)
	if err != nil {
		return nil, err
	}

	entry, err := domain.NewLogEntry(habit, input.Date, input.Value)
	if err != nil {
		return nil, err
	}

	existing, err := s.logs.FindByDate(ctx, habit.ID, entry.Date)
	switch {
	case err == nil:
		existing.Value = entry.Value
		existing.UpdatedAt = time.Now().UTC()
		if err := s.logs.Update(ctx, existing); err != nil {
			return nil, err
		}
		entry = existing
	case errors.Is(err, domain.ErrLogNotFound):
		entry.ID = uuid.NewString()
		if err := s.logs.Create(ctx, entry); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	s.refresher.Enqueue(habit.ID)
	return entry, nil
}

func (s *LogService) ListByHabitID(ctx context.Context, habitID, userID, from, to string) ([]*domain.LogEntry, error) {
	if _, err := s.ownedHabit(ctx, habitID, userID); err != nil {
		return nil, err
	}
	return s.logs.ListByHabitID(ctx, habitID, from, to)
}

func (s *LogService) Delete(ctx context.Context, logID, userID string) error {
	entry, err := s.logs.GetByID(ctx, logID)
	if err != nil {
		return err
	}
	if _, err := s.ownedHabit(ctx, entry.HabitID, userID); err != nil {
		return err
	}
	if err := s.logs.Delete(ctx, entry.ID); err != nil {
		return err
	}
	s.refresher.Enqueue(entry.HabitID)
	return nil
}

func (s *LogService) ownedHabit(ctx context.Context, habitID, userID string) (*domain.Habit, error) {
	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}
