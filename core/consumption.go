package core

import (
	"math"

	"github.com/fieldcalc/fieldcalc/api"
)

// Engine computes consumption results using the configured rounding policy
type Engine struct {
	Rounding Rounding
}

// ComputeConsumption computes normalized deltas for both metering points keeping full precision
func ComputeConsumption(lowToday, lowPrevious, highToday, highPrevious float64, d api.Directive) api.ConsumptionResult {
	return Engine{}.Compute(lowToday, lowPrevious, highToday, highPrevious, d)
}

// Compute converts feeder and transformer readings into normalized deltas.
// For adjusting directives the transformer reading is back-solved from the feeder delta.
func (e Engine) Compute(lowToday, lowPrevious, highToday, highPrevious float64, d api.Directive) api.ConsumptionResult {
	if lowToday < 0 || lowPrevious < 0 || highToday < 0 || highPrevious < 0 {
		return api.ConsumptionResult{Error: api.ErrNegativeValue.Error()}
	}

	res := api.ConsumptionResult{
		DeltaLow: lowToday - lowPrevious,
	}
	res.NormalizedLow = res.DeltaLow * LowScale

	adjusted, ok := e.resolve(res.NormalizedLow, highToday, highPrevious, d)
	if !ok {
		res.Error = api.ErrNegativeReading.Error()
		return res
	}

	res.AdjustedHighReading = adjusted
	res.DeltaHigh = adjusted - highPrevious
	res.NormalizedHigh = res.DeltaHigh * HighScale
	res.DisplayedDifference = res.NormalizedHigh - res.NormalizedLow
	res.Valid = true

	return res
}

// resolve returns the effective transformer reading. It is false if the solved reading is negative.
func (e Engine) resolve(normalizedLow, highToday, highPrevious float64, d api.Directive) (float64, bool) {
	var target float64

	switch d.Kind {
	case api.Equalize:
	case api.TargetOffset:
		// transformer side exceeds feeder side by the offset
		target = math.Abs(d.Offset)
	default:
		return highToday, true
	}

	adjusted := e.Rounding.apply(highPrevious + (normalizedLow+target)/HighScale)

	return adjusted, adjusted >= 0
}
