// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"fmt"
	"math"

	"github.com/iwvelando/instax-forecast/pkg/constants"
)

// RoundingPolicy selects how a raw prediction becomes a whole unit count.
type RoundingPolicy string

const (
	// Round rounds half away from zero.
	Round RoundingPolicy = constants.RoundingRound
	// HalfEven rounds half to even, matching Python's round().
	HalfEven RoundingPolicy = constants.RoundingHalfEven
	// Truncate truncates toward zero, matching Python's int().
	Truncate RoundingPolicy = constants.RoundingTruncate
)

// ParseRoundingPolicy converts a configuration string into a RoundingPolicy.
// An empty string selects the default policy.
func ParseRoundingPolicy(value string) (RoundingPolicy, error) {
	switch value {
	case "":
		return RoundingPolicy(constants.DefaultRounding), nil
	case constants.RoundingRound, constants.RoundingHalfEven, constants.RoundingTruncate:
		return RoundingPolicy(value), nil
	default:
		return "", fmt.Errorf("unsupported rounding policy %q", value)
	}
}

// Apply converts val to a whole count according to the policy. Values outside
// the int64 range saturate.
func (p RoundingPolicy) Apply(val float64) int64 {
	var whole float64
	switch p {
	case HalfEven:
		whole = math.RoundToEven(val)
	case Truncate:
		whole = math.Trunc(val)
	default:
		whole = math.Round(val)
	}
	return clampInt64(whole)
}

// RoundTo2 rounds a value to two decimals for display.
func RoundTo2(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsFinite reports whether val is neither NaN nor an infinity.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// AllFinite reports whether every value is finite.
func AllFinite(values []float64) bool {
	for _, v := range values {
		if !IsFinite(v) {
			return false
		}
	}
	return true
}

func clampInt64(val float64) int64 {
	if math.IsNaN(val) {
		return 0
	}
	if val >= math.MaxInt64 {
		return math.MaxInt64
	}
	if val <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(val)
}
