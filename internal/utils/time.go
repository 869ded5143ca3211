package utils

import (
	"strings"
	"time"
)

const (
	LayoutDate     = "2006-01-02"
	LayoutMonth    = "2006-01"
	LayoutDateTime = "2006-01-02 15:04:05"
)

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfMonth returns the first instant of t's calendar month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthKey is the YYYY-MM bucket finance rows are grouped by.
func MonthKey(t time.Time) string {
	return t.Format(LayoutMonth)
}

// ParseDate parses YYYY-MM-DD at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(LayoutDate, strings.TrimSpace(s), loc)
}

func FormatDate(t time.Time) string {
	return t.Format(LayoutDate)
}

func FormatDateTime(t time.Time) string {
	return t.Format(LayoutDateTime)
}
