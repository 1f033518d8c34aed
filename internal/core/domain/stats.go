package domain

const (
	StatsTypeDaily  = "daily"
	StatsTypeWeekly = "weekly"
)

// DailyStats is the streak report for every-day and specific-weekday habits.
// Invariant: Success + Fail + Pending == Total.
type DailyStats struct {
	Streak     int `json:"streak"`
	BestStreak int `json:"bestStreak"`
	Success    int `json:"success"`
	Fail       int `json:"fail"`
	Pending    int `json:"pending"`
	Total      int `json:"total"`
	HabitScore int `json:"habitScore"`
}

// WeeklyStats is the streak report for days-per-week habits; streaks are
// measured in whole calendar weeks.
type WeeklyStats struct {
	Streak          int `json:"streak"`
	BestStreak      int `json:"bestStreak"`
	CompleteWeeks   int `json:"completeWeeks"`
	IncompleteWeeks int `json:"incompleteWeeks"`
	TotalWeeks      int `json:"totalWeeks"`
	HabitScore      int `json:"habitScore"`
}

// StatsReport is the combined statistics for one habit under one calendar.
// Exactly one of Daily and Weekly is set, matching Type.
type StatsReport struct {
	ThisWeek  int `json:"thisWeek"`
	ThisMonth int `json:"thisMonth"`
	ThisYear  int `json:"thisYear"`
	All       int `json:"all"`

	// MonthlyBreakdown maps year -> month -> qualifying log count in the
	// requested calendar's rendering; empty when no log qualifies.
	MonthlyBreakdown map[int]map[int]int `json:"monthlyBreakdown"`

	Unit string `json:"unit,omitempty"`

	Type   string       `json:"type"`
	Daily  *DailyStats  `json:"daily,omitempty"`
	Weekly *WeeklyStats `json:"weekly,omitempty"`
}
