package domain_test

import (
	"testing"

	"github.com/parsakhaledi/paydar/internal/core/calendar"
	"github.com/parsakhaledi/paydar/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogEntry(t *testing.T) {
	habit, err := domain.NewHabit("user-1", "Read", "Study",
		domain.BooleanGoal(), domain.EveryDay(), "2024-01-01", "2024-06-30")
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		entry, err := domain.NewLogEntry(habit, "2024-03-20", 1)
		require.NoError(t, err)
		assert.Equal(t, habit.ID, entry.HabitID)
		assert.Equal(t, "2024-03-20", entry.Date)
		assert.Equal(t, "1403-01-01", entry.DatePersian)
	})

	t.Run("negative value", func(t *testing.T) {
		_, err := domain.NewLogEntry(habit, "2024-03-20", -1)
		assert.ErrorIs(t, err, domain.ErrLogValueInvalid)
	})

	t.Run("boolean value above one", func(t *testing.T) {
		_, err := domain.NewLogEntry(habit, "2024-03-20", 2)
		assert.ErrorIs(t, err, domain.ErrLogBooleanValue)
	})

	t.Run("malformed date", func(t *testing.T) {
		_, err := domain.NewLogEntry(habit, "2024-3-20", 1)
		assert.ErrorIs(t, err, calendar.ErrInvalidDate)
	})

	t.Run("before start", func(t *testing.T) {
		_, err := domain.NewLogEntry(habit, "2023-12-31", 1)
		assert.ErrorIs(t, err, domain.ErrLogBeforeStart)
	})

	t.Run("after end", func(t *testing.T) {
		_, err := domain.NewLogEntry(habit, "2024-07-01", 1)
		assert.ErrorIs(t, err, domain.ErrLogAfterEnd)
	})
}

func TestNewLogEntryWeekdaySchedule(t *testing.T) {
	freq, err := domain.SpecificWeekdays("Mon", "Wed")
	require.NoError(t, err)
	habit, err := domain.NewHabit("user-1", "Gym", "Health",
		domain.BooleanGoal(), freq, "2024-01-01", "")
	require.NoError(t, err)

	// 2024-03-20 is a Wednesday
	_, err = domain.NewLogEntry(habit, "2024-03-20", 1)
	assert.NoError(t, err)

	// 2024-03-21 is a Thursday
	_, err = domain.NewLogEntry(habit, "2024-03-21", 1)
	assert.ErrorIs(t, err, domain.ErrLogInvalidDay)
}

func TestQualifies(t *testing.T) {
	goal, err := domain.NumericGoal(8, domain.CompareAtLeast, "glasses")
	require.NoError(t, err)
	numeric, err := domain.NewHabit("user-1", "Hydrate", "Health",
		goal, domain.EveryDay(), "2024-01-01", "")
	require.NoError(t, err)

	entry, err := domain.NewLogEntry(numeric, "2024-02-01", 5)
	require.NoError(t, err)
	assert.False(t, entry.Qualifies(numeric.Goal))

	entry.Value = 9
	assert.True(t, entry.Qualifies(numeric.Goal))
}
