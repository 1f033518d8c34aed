package calendar_test

import (
	"testing"
	"time"

	"github.com/parsakhaledi/paydar/internal/core/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, sys calendar.System, s string) calendar.Date {
	t.Helper()
	d, err := calendar.Parse(sys, s)
	require.NoError(t, err)
	return d
}

func TestParseSystem(t *testing.T) {
	sys, err := calendar.ParseSystem("")
	assert.NoError(t, err)
	assert.Equal(t, calendar.Gregorian, sys)

	sys, err = calendar.ParseSystem("persian")
	assert.NoError(t, err)
	assert.Equal(t, calendar.Persian, sys)

	_, err = calendar.ParseSystem("lunar")
	assert.ErrorIs(t, err, calendar.ErrUnknownSystem)
}

func TestParseRejectsMalformedDates(t *testing.T) {
	bad := []string{
		"2024-3-02",
		"2024/03/02",
		"20240302",
		"2024-13-01",
		"2024-00-10",
		"2024-02-30",
		"2023-02-29",
		"not-a-date",
		"",
	}
	for _, s := range bad {
		_, err := calendar.Parse(calendar.Gregorian, s)
		assert.ErrorIs(t, err, calendar.ErrInvalidDate, "input %q", s)
	}

	// 1402 is a common Persian year, Esfand has 29 days
	_, err := calendar.Parse(calendar.Persian, "1402-12-30")
	assert.ErrorIs(t, err, calendar.ErrInvalidDate)

	// 1403 is a leap year, Esfand 30 exists
	_, err = calendar.Parse(calendar.Persian, "1403-12-30")
	assert.NoError(t, err)
}

func TestGregorianPersianAnchors(t *testing.T) {
	cases := []struct {
		gregorian string
		persian   string
	}{
		{"2024-03-20", "1403-01-01"}, // Nowruz
		{"2024-03-19", "1402-12-29"},
		{"2025-03-20", "1403-12-30"}, // leap Esfand
		{"2025-03-21", "1404-01-01"},
		{"2021-03-21", "1400-01-01"},
		{"2024-09-22", "1403-07-01"},
		{"2024-12-31", "1403-10-11"},
	}

	for _, tc := range cases {
		g := mustDate(t, calendar.Gregorian, tc.gregorian)
		p := mustDate(t, calendar.Persian, tc.persian)

		assert.Equal(t, tc.persian, g.Convert(calendar.Persian).String(), "gregorian %s", tc.gregorian)
		assert.Equal(t, tc.gregorian, p.Convert(calendar.Gregorian).String(), "persian %s", tc.persian)
		assert.Equal(t, g.Abs(), p.Abs())
	}
}

func TestConversionRoundTrip(t *testing.T) {
	start := mustDate(t, calendar.Gregorian, "2019-01-01")
	end := mustDate(t, calendar.Gregorian, "2031-12-31")

	for abs := start.Abs(); abs <= end.Abs(); abs++ {
		g := calendar.FromAbs(calendar.Gregorian, abs)
		p := g.Convert(calendar.Persian)

		require.Equal(t, abs, p.Abs())
		require.Equal(t, g.String(), p.Convert(calendar.Gregorian).String())

		reparsed, err := calendar.Parse(calendar.Persian, p.String())
		require.NoError(t, err, "persian rendering %s of %s", p, g)
		require.Equal(t, abs, reparsed.Abs())
	}
}

func TestWeekday(t *testing.T) {
	assert.Equal(t, "Wed", mustDate(t, calendar.Gregorian, "2024-03-20").Weekday().String())
	assert.Equal(t, "Mon", mustDate(t, calendar.Gregorian, "0001-01-01").Weekday().String())
	assert.Equal(t, "Sun", mustDate(t, calendar.Gregorian, "2024-03-24").Weekday().String())

	// weekday is a property of the day, not of the rendering
	p := mustDate(t, calendar.Persian, "1403-01-01")
	assert.Equal(t, "Wed", p.Weekday().String())

	_, err := calendar.ParseWeekday("Funday")
	assert.Error(t, err)
}

func TestWeekBoundariesPerCalendar(t *testing.T) {
	// Gregorian weeks run Sunday through Saturday
	g := mustDate(t, calendar.Gregorian, "2024-03-20")
	assert.Equal(t, "2024-03-17", g.FirstOfWeek().String())
	assert.Equal(t, "2024-03-23", g.LastOfWeek().String())

	// Persian weeks run Saturday through Friday
	p := mustDate(t, calendar.Persian, "1403-01-01")
	assert.Equal(t, "1402-12-26", p.FirstOfWeek().String())
	assert.Equal(t, "1403-01-03", p.LastOfWeek().String())
}

func TestMonthAndYearBoundaries(t *testing.T) {
	g := mustDate(t, calendar.Gregorian, "2024-02-10")
	assert.Equal(t, "2024-02-01", g.FirstOfMonth().String())
	assert.Equal(t, "2024-02-29", g.LastOfMonth().String())
	assert.Equal(t, "2024-01-01", g.FirstOfYear().String())
	assert.Equal(t, "2024-12-31", g.LastOfYear().String())

	p := mustDate(t, calendar.Persian, "1403-07-15")
	assert.Equal(t, "1403-07-01", p.FirstOfMonth().String())
	assert.Equal(t, "1403-07-30", p.LastOfMonth().String())
	assert.Equal(t, "1403-01-01", p.FirstOfYear().String())
	assert.Equal(t, "1403-12-30", p.LastOfYear().String())

	common := mustDate(t, calendar.Persian, "1402-06-01")
	assert.Equal(t, "1402-06-31", common.LastOfMonth().String())
	assert.Equal(t, "1402-12-29", common.LastOfYear().String())
}

func TestDaysBetween(t *testing.T) {
	a := mustDate(t, calendar.Gregorian, "2024-01-01")
	b := mustDate(t, calendar.Gregorian, "2024-01-07")

	assert.Equal(t, 7, calendar.DaysBetween(a, b))
	assert.Equal(t, 1, calendar.DaysBetween(a, a))
	assert.Equal(t, 0, calendar.DaysBetween(b, a))
}

func TestWeekdaysBetween(t *testing.T) {
	mon := mustDate(t, calendar.Gregorian, "2024-01-01")
	sun := mustDate(t, calendar.Gregorian, "2024-01-07")
	days := map[calendar.Weekday]bool{
		calendar.Monday:    true,
		calendar.Wednesday: true,
	}

	assert.Equal(t, 2, calendar.WeekdaysBetween(mon, sun, days))

	fourWeeks := mustDate(t, calendar.Gregorian, "2024-01-28")
	assert.Equal(t, 8, calendar.WeekdaysBetween(mon, fourWeeks, days))

	assert.Equal(t, 0, calendar.WeekdaysBetween(sun, mon, days))
}

func TestWeeksBetween(t *testing.T) {
	a := mustDate(t, calendar.Gregorian, "2024-03-20")
	assert.Equal(t, 1, calendar.WeeksBetween(a, a))

	b := mustDate(t, calendar.Gregorian, "2024-03-24") // next Sunday
	assert.Equal(t, 2, calendar.WeeksBetween(a, b))

	// Persian boundaries differ: Saturday 2024-03-23 starts a new week
	pa := a.Convert(calendar.Persian)
	pb := mustDate(t, calendar.Gregorian, "2024-03-23").Convert(calendar.Persian)
	assert.Equal(t, 2, calendar.WeeksBetween(pa, pb))
}

func TestAddDaysCrossesYears(t *testing.T) {
	d := mustDate(t, calendar.Gregorian, "2023-12-31")
	assert.Equal(t, "2024-01-01", d.AddDays(1).String())
	assert.Equal(t, "2023-12-01", d.AddDays(-30).String())

	p := mustDate(t, calendar.Persian, "1402-12-29")
	assert.Equal(t, "1403-01-01", p.AddDays(1).String())
}

func TestTodayUsesClock(t *testing.T) {
	now := time.Date(2024, 3, 20, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "2024-03-20", calendar.Today(calendar.Gregorian, now).String())
	assert.Equal(t, "1403-01-01", calendar.Today(calendar.Persian, now).String())
}

func TestSecondsUntilEndOfDay(t *testing.T) {
	now := time.Date(2024, 3, 20, 23, 59, 58, 0, time.UTC)
	assert.Equal(t, 1, calendar.SecondsUntilEndOfDay(now))

	noon := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 12*3600-1, calendar.SecondsUntilEndOfDay(noon))
}
