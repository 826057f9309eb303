package core

import (
	"math"

	"github.com/fieldcalc/fieldcalc/api"
)

// SolveReactivePower derives reactive power Q = √(S² − P²) from real power P and apparent power S
func SolveReactivePower(realPower, apparentPower float64) api.ReactivePowerResult {
	if realPower < 0 || apparentPower < 0 {
		return invalidPower(api.ErrNegativeValue)
	}

	if realPower > apparentPower {
		return invalidPower(api.ErrInvertedMagnitude)
	}

	// rounding may leave a tiny negative radicand for S == P
	radicand := math.Max(0, apparentPower*apparentPower-realPower*realPower)

	return api.ReactivePowerResult{
		ReactivePower: math.Sqrt(radicand),
		Valid:         true,
	}
}

func invalidPower(err api.InvalidInputError) api.ReactivePowerResult {
	return api.ReactivePowerResult{Error: err.Error()}
}
