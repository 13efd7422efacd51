package util

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToFloat coerces a decoded JSON value to a finite float64.
// Numbers and numeric strings succeed; null, booleans, blanks, NaN and ±Inf do not.
func ToFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		x, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return 0, false
		}
		f = x
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = x
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FloatOrZero returns the coerced value or 0.
func FloatOrZero(v any) float64 {
	f, _ := ToFloat(v)
	return f
}

// FloatPtr returns the coerced value, or nil when v is not a finite number.
func FloatPtr(v any) *float64 {
	f, ok := ToFloat(v)
	if !ok {
		return nil
	}
	return &f
}
