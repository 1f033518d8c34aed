package repository

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/parsakhaledi/paydar/internal/core/calendar"
	"github.com/parsakhaledi/paydar/internal/core/domain"
)

// In-memory implementations of the repository ports, used in tests and
// for running the API without Postgres.

type MemoryHabitRepository struct {
	mu     sync.RWMutex
	habits map[string]*domain.Habit
}

func NewMemoryHabitRepository() *MemoryHabitRepository {
	return &MemoryHabitRepository{habits: make(map[string]*domain.Habit)}
}

func (r *MemoryHabitRepository) Create(_ context.Context, h *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *h
	r.habits[h.ID] = &cp
	return nil
}

func (r *MemoryHabitRepository) GetByID(_ context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.habits[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	cp := *h
	return &cp, nil
}

func (r *MemoryHabitRepository) ListByUserID(_ context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Habit
	for _, h := range r.habits {
		if h.UserID == userID {
			cp := *h
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryHabitRepository) Update(_ context.Context, h *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.habits[h.ID]; !ok {
		return domain.ErrHabitNotFound
	}
	cp := *h
	r.habits[h.ID] = &cp
	return nil
}

func (r *MemoryHabitRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.habits[id]; !ok {
		return domain.ErrHabitNotFound
	}
	delete(r.habits, id)
	return nil
}

type MemoryLogRepository struct {
	mu   sync.RWMutex
	logs map[string]*domain.LogEntry
}

func NewMemoryLogRepository() *MemoryLogRepository {
	return &MemoryLogRepository{logs: make(map[string]*domain.LogEntry)}
}

func (r *MemoryLogRepository) forHabit(habitID string) []*domain.LogEntry {
	var out []*domain.LogEntry
	for _, e := range r.logs {
		if e.HabitID == habitID {
			out = append(out, e)
		}
	}
	return out
}

func dateOf(e *domain.LogEntry, sys calendar.System) string {
	if sys == calendar.Persian {
		return e.DatePersian
	}
	return e.Date
}

func inRange(date, from, to string) bool {
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

func (r *MemoryLogRepository) CountQualifying(_ context.Context, habit *domain.Habit, from, to string, sys calendar.System) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, e := range r.forHabit(habit.ID) {
		if e.Qualifies(habit.Goal) && inRange(dateOf(e, sys), from, to) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryLogRepository) CountFailing(_ context.Context, habit *domain.Habit, maxDate string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, e := range r.forHabit(habit.ID) {
		if !e.Qualifies(habit.Goal) && inRange(e.Date, "", maxDate) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryLogRepository) ListQualifyingDates(_ context.Context, habit *domain.Habit, sys calendar.System, maxDate string, order domain.SortOrder) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var dates []string
	for _, e := range r.forHabit(habit.ID) {
		d := dateOf(e, sys)
		if e.Qualifies(habit.Goal) && inRange(d, "", maxDate) {
			dates = append(dates, d)
		}
	}
	if order == domain.Descending {
		sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	} else {
		sort.Strings(dates)
	}
	return dates, nil
}

func (r *MemoryLogRepository) FindByDate(_ context.Context, habitID, date string) (*domain.LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.forHabit(habitID) {
		if e.Date == date {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrLogNotFound
}

func (r *MemoryLogRepository) MonthlyHistogram(_ context.Context, habit *domain.Habit, sys calendar.System) (map[int]map[int]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	histogram := make(map[int]map[int]int)
	for _, e := range r.forHabit(habit.ID) {
		if !e.Qualifies(habit.Goal) {
			continue
		}
		d := dateOf(e, sys)
		parts := strings.SplitN(d, "-", 3)
		if len(parts) != 3 {
			continue
		}
		year, _ := strconv.Atoi(parts[0])
		month, _ := strconv.Atoi(parts[1])
		if histogram[year] == nil {
			histogram[year] = make(map[int]int)
		}
		histogram[year][month]++
	}
	return histogram, nil
}

func (r *MemoryLogRepository) Create(_ context.Context, entry *domain.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.forHabit(entry.HabitID) {
		if e.Date == entry.Date {
			return domain.ErrDuplicateLog
		}
	}
	cp := *entry
	r.logs[entry.ID] = &cp
	return nil
}

func (r *MemoryLogRepository) Update(_ context.Context, entry *domain.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.logs[entry.ID]; !ok {
		return domain.ErrLogNotFound
	}
	cp := *entry
	r.logs[entry.ID] = &cp
	return nil
}

func (r *MemoryLogRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.logs[id]; !ok {
		return domain.ErrLogNotFound
	}
	delete(r.logs, id)
	return nil
}

func (r *MemoryLogRepository) GetByID(_ context.Context, id string) (*domain.LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.logs[id]
	if !ok {
		return nil, domain.ErrLogNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *MemoryLogRepository) ListByHabitID(_ context.Context, habitID, from, to string) ([]*domain.LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.LogEntry
	for _, e := range r.forHabit(habitID) {
		if inRange(e.Date, from, to) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *MemoryLogRepository) DeleteOutsideRange(_ context.Context, habitID, start, end string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.logs {
		if e.HabitID != habitID {
			continue
		}
		if e.Date < start || (end != "" && e.Date > end) {
			delete(r.logs, id)
		}
	}
	return nil
}

func (r *MemoryLogRepository) DeleteOnExcludedWeekdays(_ context.Context, habitID string, allowed []string) error {
	if len(allowed) == 0 {
		return nil
	}
	keep := make(map[calendar.Weekday]bool, len(allowed))
	for _, name := range allowed {
		wd, err := calendar.ParseWeekday(name)
		if err != nil {
			return err
		}
		keep[wd] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.logs {
		if e.HabitID != habitID {
			continue
		}
		day, err := calendar.Parse(calendar.Gregorian, e.Date)
		if err != nil {
			continue
		}
		if !keep[day.Weekday()] {
			delete(r.logs, id)
		}
	}
	return nil
}

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*domain.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}
