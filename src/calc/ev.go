package calc

import (
	"math"
	"strconv"
)

// ComputeEV derives the expected value in whole dollars from the minimum and
// maximum commitment bounds and a likelihood percentage. Inputs come straight
// off a field snapshot, so each one may be a JSON number, a numeric string,
// or missing entirely.
//
// A zero bound paired with a strictly positive one is treated as unset: users
// leave one side of the range empty far more often than they mean "worth
// zero", and averaging the zero in would silently halve the result.
//
// Rounding is half away from zero, which matches round-half-up for the
// non-negative midpoints seen in practice.
func ComputeEV(min, max, likelihood interface{}) int {
	minVal := toNumber(min)
	maxVal := toNumber(max)

	if minVal != nil && maxVal != nil {
		if *minVal == 0 && *maxVal > 0 {
			minVal = nil
		} else if *maxVal == 0 && *minVal > 0 {
			maxVal = nil
		}
	}

	var midpoint float64
	switch {
	case minVal != nil && maxVal != nil:
		midpoint = (*minVal + *maxVal) / 2
	case minVal != nil:
		midpoint = *minVal
	case maxVal != nil:
		midpoint = *maxVal
	}

	pct := 0.0
	if p := toNumber(likelihood); p != nil {
		pct = math.Min(math.Max(*p, 0), 100)
	}

	return int(math.Round(midpoint * pct / 100))
}

// toNumber coerces a snapshot value to a finite float64, or nil when the
// value is absent, non-numeric, or non-finite.
func toNumber(v interface{}) *float64 {
	var n float64

	switch val := v.(type) {
	case float64:
		n = val
	case float32:
		n = float64(val)
	case int:
		n = float64(val)
	case int64:
		n = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}

	return &n
}
