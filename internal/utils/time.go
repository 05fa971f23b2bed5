package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/roadplan/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// TodayIn returns today's day key in the specified timezone.
func TodayIn(timezone string) (string, error) {
	now, err := NowInTimezone(timezone)
	if err != nil {
		return "", err
	}
	return DayKey(now), nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}

// ParseTime parses a time string in the standard format (HH:MM).
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(constants.TimeFormat, timeStr)
}

// ValidateTimeFormat checks if the string matches the standard time format.
func ValidateTimeFormat(timeStr string) bool {
	_, err := ParseTime(timeStr)
	return err == nil
}

// DayKey returns the canonical calendar-day key (YYYY-MM-DD) for t.
// Every day key stored or looked up anywhere must come from here.
func DayKey(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ParseDay parses a canonical day key into midnight UTC of that day.
func ParseDay(key string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, strings.TrimSpace(key))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", key, err)
	}
	return t, nil
}

// DayLabel formats a day for display (DD/MM/YYYY).
func DayLabel(t time.Time) string {
	return t.Format(constants.DayLabelFormat)
}

// LabelForKey converts a day key into its display label. Unparseable keys are returned unchanged.
func LabelForKey(key string) string {
	t, err := ParseDay(key)
	if err != nil {
		return key
	}
	return DayLabel(t)
}

// DaysBetween returns every calendar day from `from` to `to` inclusive.
// Returns nil when to is before from.
func DaysBetween(from, to time.Time) []time.Time {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, from.Location())
	if end.Before(start) {
		return nil
	}

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// WeekBucket returns the week bucket key for t: ISO year and ISO week number
// (weeks start on Monday), e.g. "2025-Semana-10".
func WeekBucket(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf(constants.WeekBucketFormat, year, week)
}

// ParseWeekBucket splits a week bucket key into its year and week number.
func ParseWeekBucket(key string) (int, int, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 3 || parts[1] != "Semana" {
		return 0, 0, fmt.Errorf("invalid week bucket %q (expected YYYY-Semana-N)", key)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in week bucket %q: %w", key, err)
	}
	week, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid week in week bucket %q: %w", key, err)
	}
	if week < 1 || week > 53 {
		return 0, 0, fmt.Errorf("invalid week in week bucket %q: must be between 1 and 53", key)
	}
	return year, week, nil
}

// WeekStart returns the Monday of the given ISO week.
func WeekStart(year, week int) time.Time {
	// January 4th is always in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset)
	return monday.AddDate(0, 0, (week-1)*7)
}

// WeekBounds returns the working-week span (Monday to Friday) of the given ISO week.
func WeekBounds(year, week int) (time.Time, time.Time) {
	start := WeekStart(year, week)
	return start, start.AddDate(0, 0, 4)
}

// WeekTitle renders a week for display, e.g. "Week 10 (03/03 - 07/03)".
func WeekTitle(year, week int) string {
	start, end := WeekBounds(year, week)
	return fmt.Sprintf("Week %d (%s - %s)", week,
		start.Format(constants.ShortDayLabelFormat),
		end.Format(constants.ShortDayLabelFormat))
}
