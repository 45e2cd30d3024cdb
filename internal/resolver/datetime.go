package resolver

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLabelLayout = "Jan 2, 2006"
	timeLabelLayout = "3:04 PM"
)

// DateTimeLabels are the display strings for an event's schedule.
type DateTimeLabels struct {
	Date string // e.g. "Jan 6, 2023"
	Time string // e.g. "2:30 PM"
}

// FormatEventDateTime splits a timestamp into date and 12-hour clock labels.
// Both labels are rendered in UTC regardless of the timestamp's location.
func FormatEventDateTime(t time.Time) DateTimeLabels {
	t = t.UTC()
	return DateTimeLabels{
		Date: t.Format(dateLabelLayout),
		Time: t.Format(timeLabelLayout),
	}
}

// FormatTimestamp parses an ISO-8601 timestamp and formats it like FormatEventDateTime.
func FormatTimestamp(ts string) (DateTimeLabels, error) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return DateTimeLabels{}, fmt.Errorf("invalid timestamp %q: %w", ts, err)
	}
	return FormatEventDateTime(t), nil
}

var clockLayouts = []string{"15:04", "3:04 PM", "3:04PM", "15:04:05"}

// ParseEventDateTime combines a "YYYY-MM-DD" date and a clock string into a
// UTC timestamp. The clock may be 24-hour ("14:30") or 12-hour ("2:30 PM").
func ParseEventDateTime(date, clock string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", date)
	}

	clock = strings.ToUpper(strings.TrimSpace(clock))
	for _, layout := range clockLayouts {
		if c, err := time.ParseInLocation(layout, clock, time.UTC); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(),
				c.Hour(), c.Minute(), c.Second(), 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q, use HH:MM or H:MM AM/PM", clock)
}
