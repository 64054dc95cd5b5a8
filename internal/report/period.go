package report

import (
	"regexp"
	"time"
)

var periodPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ValidPeriod reports whether token is a month-granularity period ("YYYY-MM").
func ValidPeriod(token string) bool {
	return periodPattern.MatchString(token)
}

// PeriodLess orders period tokens for display: valid periods first, newest
// to oldest; any valid period before any malformed token; malformed tokens
// in plain lexicographic order.
func PeriodLess(a, b string) bool {
	validA, validB := ValidPeriod(a), ValidPeriod(b)
	switch {
	case validA && validB:
		return a > b
	case validA:
		return true
	case validB:
		return false
	default:
		return a < b
	}
}

// CurrentPeriod returns the period token for the current month.
func CurrentPeriod() string {
	return time.Now().Format("2006-01")
}
