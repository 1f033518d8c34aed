// Package calendar implements day-level date arithmetic over two calendar
// systems, Gregorian and Persian (Solar Hijri). Every Date is backed by an
// absolute day number (Rata Die: day 1 = Gregorian 0001-01-01), so comparing,
// shifting and converting between systems never drifts regardless of how the
// date is rendered.
package calendar

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrUnknownSystem = errors.New("unknown calendar system")
)

type System string

const (
	Gregorian System = "gregorian"
	Persian   System = "persian"
)

// ParseSystem maps a request-level calendar tag to a System.
// The empty string defaults to Gregorian.
func ParseSystem(tag string) (System, error) {
	switch tag {
	case "", string(Gregorian):
		return Gregorian, nil
	case string(Persian):
		return Persian, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSystem, tag)
}

type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func (w Weekday) String() string {
	if w < 0 || w > 6 {
		return "???"
	}
	return weekdayNames[w]
}

// ParseWeekday accepts the short names used throughout the API ("Sun".."Sat").
func ParseWeekday(name string) (Weekday, error) {
	for i, n := range weekdayNames {
		if n == name {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: weekday %q", ErrInvalidDate, name)
}

// Date is one calendar day: an absolute day number plus its rendering in a
// single system. The zero value is not a valid date.
type Date struct {
	abs   int
	sys   System
	year  int
	month int
	day   int
}

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// New builds a Date from rendered fields, rejecting days that do not exist
// in the given system (e.g. Esfand 30 of a common Persian year).
func New(sys System, year, month, day int) (Date, error) {
	switch sys {
	case Gregorian:
		if year < 1 || month < 1 || month > 12 || day < 1 || day > daysInGregorianMonth(year, month) {
			return Date{}, fmt.Errorf("%w: %04d-%02d-%02d (%s)", ErrInvalidDate, year, month, day, sys)
		}
		return Date{abs: gregorianToAbs(year, month, day), sys: sys, year: year, month: month, day: day}, nil
	case Persian:
		if year < persianMinYear || year > persianMaxYear || month < 1 || month > 12 ||
			day < 1 || day > daysInPersianMonth(year, month) {
			return Date{}, fmt.Errorf("%w: %04d-%02d-%02d (%s)", ErrInvalidDate, year, month, day, sys)
		}
		return Date{abs: persianToAbs(year, month, day), sys: sys, year: year, month: month, day: day}, nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrUnknownSystem, sys)
}

// Parse reads a strict YYYY-MM-DD string in the given system.
func Parse(sys System, s string) (Date, error) {
	if !dateRe.MatchString(s) {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	var y, m, d int
	if _, err := fmt.Sscanf(s, "%4d-%2d-%2d", &y, &m, &d); err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return New(sys, y, m, d)
}

// FromAbs renders an absolute day number in the given system.
func FromAbs(sys System, abs int) Date {
	switch sys {
	case Persian:
		y, m, d := absToPersian(abs)
		return Date{abs: abs, sys: Persian, year: y, month: m, day: d}
	default:
		y, m, d := absToGregorian(abs)
		return Date{abs: abs, sys: Gregorian, year: y, month: m, day: d}
	}
}

// FromTime takes the civil date of t in UTC.
func FromTime(sys System, t time.Time) Date {
	y, m, d := t.UTC().Date()
	g := Date{abs: gregorianToAbs(y, int(m), d), sys: Gregorian, year: y, month: int(m), day: d}
	return g.Convert(sys)
}

// Today is the current day rendered in sys.
func Today(sys System, now time.Time) Date {
	return FromTime(sys, now)
}

func (d Date) Abs() int       { return d.abs }
func (d Date) System() System { return d.sys }
func (d Date) Year() int      { return d.year }
func (d Date) Month() int     { return d.month }
func (d Date) Day() int       { return d.day }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
}

// Convert re-renders the same absolute day in another system. Converting back
// returns the original date exactly.
func (d Date) Convert(sys System) Date {
	if d.sys == sys {
		return d
	}
	return FromAbs(sys, d.abs)
}

func (d Date) AddDays(n int) Date { return FromAbs(d.sys, d.abs+n) }

// Compare orders by absolute day number: -1 before, 0 equal, 1 after.
// Rendering system is irrelevant; the same day compares equal in both.
func (d Date) Compare(other Date) int {
	switch {
	case d.abs < other.abs:
		return -1
	case d.abs > other.abs:
		return 1
	}
	return 0
}

func (d Date) Equal(other Date) bool  { return d.abs == other.abs }
func (d Date) Before(other Date) bool { return d.abs < other.abs }
func (d Date) After(other Date) bool  { return d.abs > other.abs }

// Weekday is Sunday-first in both systems; Rata Die 1 is a Monday.
func (d Date) Weekday() Weekday {
	return Weekday(((d.abs % 7) + 7) % 7)
}

// weekStart is the weekday a week opens on: Sunday for Gregorian weeks,
// Saturday for Persian ones.
func (d Date) weekStart() Weekday {
	if d.sys == Persian {
		return Saturday
	}
	return Sunday
}

func (d Date) FirstOfWeek() Date {
	offset := (int(d.Weekday()) - int(d.weekStart()) + 7) % 7
	return d.AddDays(-offset)
}

func (d Date) LastOfWeek() Date {
	return d.FirstOfWeek().AddDays(6)
}

func (d Date) FirstOfMonth() Date {
	first, _ := New(d.sys, d.year, d.month, 1)
	return first
}

func (d Date) LastOfMonth() Date {
	var n int
	if d.sys == Persian {
		n = daysInPersianMonth(d.year, d.month)
	} else {
		n = daysInGregorianMonth(d.year, d.month)
	}
	last, _ := New(d.sys, d.year, d.month, n)
	return last
}

func (d Date) FirstOfYear() Date {
	first, _ := New(d.sys, d.year, 1, 1)
	return first
}

func (d Date) LastOfYear() Date {
	n := 29
	if d.sys == Persian {
		if isPersianLeap(d.year) {
			n = 30
		}
	} else {
		n = 31
	}
	last, _ := New(d.sys, d.year, 12, n)
	return last
}

// DaysBetween counts days from a to b, both inclusive. Returns 0 when b
// precedes a.
func DaysBetween(a, b Date) int {
	if b.abs < a.abs {
		return 0
	}
	return b.abs - a.abs + 1
}

// WeekdaysBetween counts the days in [a, b] whose weekday is in days.
func WeekdaysBetween(a, b Date, days map[Weekday]bool) int {
	total := DaysBetween(a, b)
	if total == 0 {
		return 0
	}
	count := (total / 7) * len(days)
	cur := a.AddDays((total / 7) * 7)
	for !cur.After(b) {
		if days[cur.Weekday()] {
			count++
		}
		cur = cur.AddDays(1)
	}
	return count
}

// WeeksBetween counts the calendar weeks touched by [a, b], inclusive,
// using a's system for week boundaries.
func WeeksBetween(a, b Date) int {
	start := a.FirstOfWeek()
	end := b.Convert(a.sys).LastOfWeek()
	if end.abs < start.abs {
		return 0
	}
	return (end.abs - start.abs + 1) / 7
}

// SecondsUntilEndOfDay is the TTL left before the civil day of now rolls
// over, used to expire per-day caches.
func SecondsUntilEndOfDay(now time.Time) int {
	now = now.UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)
	secs := int(end.Sub(now).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}
