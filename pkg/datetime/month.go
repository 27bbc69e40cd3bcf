// Package datetime provides date and month utility functions.
package datetime

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/instax-forecast/pkg/constants"
)

// Season groups sales months by expected demand.
type Season string

const (
	// SeasonSummer covers May through August.
	SeasonSummer Season = "summer"
	// SeasonYearEnd covers November and December.
	SeasonYearEnd Season = "year-end"
	// SeasonRegular covers every other month.
	SeasonRegular Season = "regular"
)

// CurrentMonth returns the calendar month of now as 1 through 12.
func CurrentMonth(now time.Time) int {
	return int(now.Month())
}

// ValidMonth reports whether month lies in 1 through 12.
func ValidMonth(month int) bool {
	return month >= constants.MinMonth && month <= constants.MaxMonth
}

// ParseMonth parses a month given either as a number ("6", "06") or as an
// English month name or abbreviation ("June", "jun").
func ParseMonth(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("month is required")
	}

	if n, err := strconv.Atoi(trimmed); err == nil {
		if !ValidMonth(n) {
			return 0, fmt.Errorf("month %d out of range %d-%d", n, constants.MinMonth, constants.MaxMonth)
		}
		return n, nil
	}

	lower := strings.ToLower(trimmed)
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if lower == name || (len(lower) >= 3 && strings.HasPrefix(name, lower)) {
			return int(m), nil
		}
	}
	return 0, fmt.Errorf("invalid month %q", value)
}

// MonthName returns the English name of month, or an empty string if month is
// out of range.
func MonthName(month int) string {
	if !ValidMonth(month) {
		return ""
	}
	return time.Month(month).String()
}

// SeasonOf classifies a month for the seasonal insight in reports.
func SeasonOf(month int) Season {
	switch month {
	case 5, 6, 7, 8:
		return SeasonSummer
	case 11, 12:
		return SeasonYearEnd
	default:
		return SeasonRegular
	}
}
