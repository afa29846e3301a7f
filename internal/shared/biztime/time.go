// Package biztime provides time utilities for billing calculations.
// All storage and transport use UTC; usage month keys ("YYYY-MM") are
// always derived from UTC so counters are unambiguous across regions.
package biztime

import (
	"fmt"
	"regexp"
	"time"
)

// MonthKeyLayout is the layout of a usage month key.
const MonthKeyLayout = "2006-01"

var monthKeyPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// MonthKey returns the "YYYY-MM" key for the month containing t, in UTC.
func MonthKey(t time.Time) string {
	return t.UTC().Format(MonthKeyLayout)
}

// CurrentMonthKey returns the key for the current UTC month.
func CurrentMonthKey() string {
	return MonthKey(NowUTC())
}

// PreviousMonthKey returns the key for the UTC month preceding the one
// containing t. Used by the monthly reset job, which clears the previous
// month rather than the current one to avoid racing the boundary instant.
func PreviousMonthKey(t time.Time) string {
	u := t.UTC()
	firstOfMonth := time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
	return MonthKey(firstOfMonth.AddDate(0, -1, 0))
}

// ValidateMonthKey checks that the given string is a well-formed month key.
func ValidateMonthKey(key string) error {
	if !monthKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid month key %q, expected YYYY-MM", key)
	}
	return nil
}

// MonthStart returns the UTC instant at which the given month key begins.
func MonthStart(key string) (time.Time, error) {
	if err := ValidateMonthKey(key); err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(MonthKeyLayout, key, time.UTC)
}
