package util

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// ParseReading converts free-form decimal text into a float.
// The boolean result is false if the text is empty or not a number.
func ParseReading(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	f, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}
