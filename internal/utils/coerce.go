/*
This file contains helpers for coercing loosely-typed JSON values into the
canonical numeric and string forms used by the pool normalizer. Every helper
is total: absent or malformed input degrades to a default value, never an error.
*/

package utils

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CoerceFloat64 converts an arbitrary decoded JSON value to a float64.
// Absent, non-numeric, or non-finite inputs coerce to 0.
func CoerceFloat64(value any) float64 {
	switch v := value.(type) {
	case float64:
		return Finite(v)
	case float32:
		return Finite(float64(v))
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return Finite(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return Finite(f)
	default:
		return 0
	}
}

// CoerceString converts an arbitrary decoded JSON value to a string.
// Non-string or blank inputs coerce to the provided default.
func CoerceString(value any, defaultValue string) string {
	s, ok := value.(string)
	if !ok {
		return defaultValue
	}
	if strings.TrimSpace(s) == "" {
		return defaultValue
	}
	return s
}

// Finite replaces NaN and +/-Inf with 0 so downstream math stays defined.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Clamp bounds v to the inclusive range [lower, upper].
func Clamp(v, lower, upper float64) float64 {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}
