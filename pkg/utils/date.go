package utils

import (
	"time"
)

// TargetTradingDay returns the trading session a news timestamp belongs to.
// News published after the market close at closingHour:closingMinute rolls
// over to the next calendar day, and weekend days roll forward to Monday.
// A Friday item published after close therefore lands on the following
// Monday. Exchange holidays are not considered.
func TargetTradingDay(t time.Time, closingHour, closingMinute int) time.Time {
	closeAt := time.Date(t.Year(), t.Month(), t.Day(), closingHour, closingMinute, 0, 0, t.Location())

	if t.After(closeAt) {
		t = t.AddDate(0, 0, 1)
	}

	switch t.Weekday() {
	case time.Saturday:
		t = t.AddDate(0, 0, 2)
	case time.Sunday:
		t = t.AddDate(0, 0, 1)
	}

	return t
}

// DayString formats a time as the YYYY-MM-DD day portion.
func DayString(t time.Time) string {
	return t.Format("2006-01-02")
}

// TruncateToDay zeroes out the clock portion of t, keeping its location.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
