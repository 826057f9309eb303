package core

import (
	"fmt"
	"math"
	"strings"
)

const (
	// LowScale converts a 33 kV feeder meter delta into energy units
	LowScale float64 = 1000

	// HighScale converts a 132 kV transformer meter delta into energy units
	HighScale float64 = 4000
)

// Rounding is the policy applied to a solved transformer reading
type Rounding int

const (
	// RoundNone keeps the solved reading at full precision
	RoundNone Rounding = iota
	// RoundWhole rounds the solved reading to the nearest whole meter unit
	RoundWhole
)

var roundings = map[string]Rounding{
	"none":  RoundNone,
	"whole": RoundWhole,
}

// RoundingString converts a config value into a Rounding
func RoundingString(s string) (Rounding, error) {
	if s == "" {
		return RoundNone, nil
	}
	if r, ok := roundings[strings.ToLower(s)]; ok {
		return r, nil
	}
	return RoundNone, fmt.Errorf("invalid rounding: %s", s)
}

func (r Rounding) String() string {
	if r == RoundWhole {
		return "whole"
	}
	return "none"
}

func (r Rounding) apply(f float64) float64 {
	if r == RoundWhole {
		return math.Round(f)
	}
	return f
}

// Presence renders a boolean flag in CLI output
var Presence = map[bool]string{false: "—", true: "✓"}
