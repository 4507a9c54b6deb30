package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// closeApproachLayout is the cad.json "cd" format, e.g. "1900-Dec-27 01:30".
	closeApproachLayout = "2006-Jan-02 15:04"
	// dateTimeLayout is the canonical seconds-free output format.
	dateTimeLayout = "2006-01-02 15:04"
	// dateLayout is the calendar-date format accepted by queries.
	dateLayout = "2006-01-02"
)

// ParseCloseApproachDate parses a JPL calendar date string into a UTC time.
func ParseCloseApproachDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(closeApproachLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse close approach date %q: %w", s, err)
	}
	return t, nil
}

// FormatDateTime renders t in UTC as "YYYY-MM-DD hh:mm".
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(dateTimeLayout)
}

// ParseDate parses a "YYYY-MM-DD" calendar date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
