package core

import (
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidInput, date)
	}
	return t, nil
}

// ParseMonth parses a YYYY-MM month.
func ParseMonth(month string) (time.Time, error) {
	t, err := time.Parse(monthLayout, month)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month %q is not YYYY-MM", ErrInvalidInput, month)
	}
	return t, nil
}

// MonthOf returns the YYYY-MM prefix of a valid date string.
func MonthOf(date string) string {
	return date[:len(monthLayout)]
}

// MonthBounds returns the first and last date of month, both inclusive.
func MonthBounds(month string) (first, last string, err error) {
	start, err := ParseMonth(month)
	if err != nil {
		return "", "", err
	}
	end := start.AddDate(0, 1, -1)
	return start.Format(dateLayout), end.Format(dateLayout), nil
}

// datesBetween lists every date from..to inclusive.
func datesBetween(from, to time.Time) []string {
	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(dateLayout))
	}
	return dates
}
