package core

import (
	"github.com/benbjohnson/clock"
	"github.com/fieldcalc/fieldcalc/api"
	"github.com/fieldcalc/fieldcalc/util"
	"github.com/google/uuid"
)

// Calculator parses raw user input, runs the calculations and records applied adjustments
type Calculator struct {
	log    *util.Logger
	clock  clock.Clock
	engine Engine
	audit  api.AuditLogger
}

// NewCalculator creates a calculator. The audit logger may be nil.
func NewCalculator(rounding Rounding, audit api.AuditLogger) *Calculator {
	return &Calculator{
		log:    util.NewLogger("core"),
		clock:  clock.New(),
		engine: Engine{Rounding: rounding},
		audit:  audit,
	}
}

// ReactivePower solves the power triangle. It is false if either value is missing.
func (c *Calculator) ReactivePower(in api.PowerInputs) (api.ReactivePowerResult, bool) {
	mw, okMW := util.ParseReading(in.MW)
	mva, okMVA := util.ParseReading(in.MVA)
	if !okMW || !okMVA {
		return api.ReactivePowerResult{}, false
	}

	res := SolveReactivePower(mw, mva)
	observe("mvar", res.Valid)

	if res.Valid {
		c.log.DEBUG.Printf("mvar: P=%g S=%g Q=%.3f", mw, mva, res.ReactivePower)
	} else {
		c.log.DEBUG.Printf("mvar: P=%g S=%g: %s", mw, mva, res.Error)
	}

	return res, true
}

// Consumption computes the consumption result. It is false if the readings are insufficient:
// the feeder needs both readings, the transformer needs its previous reading and, unless
// the reading is back-solved, today's reading.
func (c *Calculator) Consumption(in api.ConsumptionInputs) (api.ConsumptionResult, bool) {
	lowToday, okLowToday := util.ParseReading(in.Today33)
	lowPrevious, okLowPrevious := util.ParseReading(in.Previous33)
	highToday, okHighToday := util.ParseReading(in.Today132)
	highPrevious, okHighPrevious := util.ParseReading(in.Previous132)

	d := in.Adjustment
	if !okLowToday || !okLowPrevious || !okHighPrevious || (!okHighToday && !d.Adjusting()) {
		return api.ConsumptionResult{}, false
	}

	res := c.engine.Compute(lowToday, lowPrevious, highToday, highPrevious, d)
	observe("consumption", res.Valid)

	if !res.Valid {
		c.log.DEBUG.Printf("consumption (%s): %s", d, res.Error)
		return res, true
	}

	c.log.DEBUG.Printf("consumption (%s): net33=%.1f net132=%.1f difference=%.1f", d, res.NormalizedLow, res.NormalizedHigh, res.DisplayedDifference)

	if d.Adjusting() {
		adjustmentsTotal.WithLabelValues(d.String()).Inc()

		if okHighToday {
			c.record(api.AuditEntry{
				Directive:           d,
				OriginalHighReading: highToday,
				AdjustedHighReading: res.AdjustedHighReading,
				NormalizedLow:       res.NormalizedLow,
				NormalizedHigh:      res.NormalizedHigh,
			})
		}
	}

	return res, true
}

// record hands the entry to the audit logger. Failures are logged only.
func (c *Calculator) record(entry api.AuditEntry) {
	if c.audit == nil {
		return
	}

	entry.ID = uuid.New().String()
	entry.Timestamp = c.clock.Now().UTC()

	if err := c.audit.Log(entry); err != nil {
		auditFailuresTotal.Inc()
		c.log.WARN.Printf("audit: %v", err)
	}
}
