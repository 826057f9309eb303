package core

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fieldcalc/fieldcalc/api"
	"github.com/fieldcalc/fieldcalc/mock"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatorReactivePower(t *testing.T) {
	c := NewCalculator(RoundNone, nil)

	tc := []struct {
		in    api.PowerInputs
		ok    bool
		valid bool
	}{
		{api.PowerInputs{MW: "3", MVA: "5"}, true, true},
		{api.PowerInputs{MW: "10", MVA: "5"}, true, false},
		{api.PowerInputs{MW: "3", MVA: ""}, false, false},
		{api.PowerInputs{MW: "", MVA: "5"}, false, false},
		{api.PowerInputs{MW: "abc", MVA: "5"}, false, false},
		{api.PowerInputs{MW: " 3.125 ", MVA: "5.000"}, true, true},
	}

	for _, tc := range tc {
		res, ok := c.ReactivePower(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.valid, res.Valid, tc.in)
	}
}

func TestCalculatorInsufficientReadings(t *testing.T) {
	ctrl := gomock.NewController(t)
	audit := mock.NewMockAuditLogger(ctrl)

	c := NewCalculator(RoundNone, audit)

	for _, in := range []api.ConsumptionInputs{
		{},
		{Today33: "100", Previous33: "90"},
		{Today33: "100", Today132: "50", Previous132: "45"},
		{Today33: "100", Previous33: "90", Today132: "50"},
		{Today33: "100", Previous33: "90", Previous132: "45"},
		{Today33: "x", Previous33: "90", Today132: "50", Previous132: "45"},
	} {
		res, ok := c.Consumption(in)
		assert.False(t, ok, in)
		assert.Equal(t, api.ConsumptionResult{}, res, in)
	}
}

func TestCalculatorAudit(t *testing.T) {
	ctrl := gomock.NewController(t)
	audit := mock.NewMockAuditLogger(ctrl)

	c := NewCalculator(RoundNone, audit)
	clck := clock.NewMock()
	clck.Set(time.Date(2024, 3, 1, 6, 30, 0, 0, time.UTC))
	c.clock = clck

	var entry api.AuditEntry
	audit.EXPECT().Log(gomock.Any()).DoAndReturn(func(e api.AuditEntry) error {
		entry = e
		return nil
	}).Times(1)

	res, ok := c.Consumption(api.ConsumptionInputs{
		Today33: "100", Previous33: "90", Today132: "50", Previous132: "45",
		Adjustment: api.Offset(200),
	})
	require.True(t, ok)
	require.True(t, res.Valid)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, clck.Now().UTC(), entry.Timestamp)
	assert.Equal(t, api.Offset(200), entry.Directive)
	assert.Equal(t, 50.0, entry.OriginalHighReading)
	assert.InDelta(t, 47.55, entry.AdjustedHighReading, tolerance)
	assert.Equal(t, res.NormalizedLow, entry.NormalizedLow)
	assert.Equal(t, res.NormalizedHigh, entry.NormalizedHigh)
}

func TestCalculatorNoAuditWithoutAdjustment(t *testing.T) {
	ctrl := gomock.NewController(t)
	audit := mock.NewMockAuditLogger(ctrl)

	c := NewCalculator(RoundNone, audit)

	// no calls expected
	res, ok := c.Consumption(api.ConsumptionInputs{
		Today33: "100", Previous33: "90", Today132: "50", Previous132: "45",
	})
	assert.True(t, ok)
	assert.True(t, res.Valid)

	// solved without raw transformer reading
	res, ok = c.Consumption(api.ConsumptionInputs{
		Today33: "100", Previous33: "90", Previous132: "45",
		Adjustment: api.Equal(),
	})
	assert.True(t, ok)
	assert.True(t, res.Valid)
	assert.Equal(t, 47.5, res.AdjustedHighReading)

	// invalid result
	res, ok = c.Consumption(api.ConsumptionInputs{
		Today33: "0", Previous33: "100", Today132: "50", Previous132: "10",
		Adjustment: api.Equal(),
	})
	assert.True(t, ok)
	assert.False(t, res.Valid)
	assert.Equal(t, api.ErrNegativeReading, res.Err())
}

func TestCalculatorAuditFailureKeepsResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	audit := mock.NewMockAuditLogger(ctrl)
	audit.EXPECT().Log(gomock.Any()).Return(errors.New("disk full"))

	c := NewCalculator(RoundNone, audit)
	in := api.ConsumptionInputs{
		Today33: "100", Previous33: "90", Today132: "50", Previous132: "45",
		Adjustment: api.Equal(),
	}

	before := testutil.ToFloat64(auditFailuresTotal)
	res, ok := c.Consumption(in)

	assert.True(t, ok)
	assert.Equal(t, ComputeConsumption(100, 90, 50, 45, api.Equal()), res)
	assert.Equal(t, before+1, testutil.ToFloat64(auditFailuresTotal))
}

func TestCalculatorRounding(t *testing.T) {
	c := NewCalculator(RoundWhole, nil)

	res, ok := c.Consumption(api.ConsumptionInputs{
		Today33: "1000", Previous33: "950", Today132: "500", Previous132: "475",
		Adjustment: api.Offset(300),
	})
	require.True(t, ok)
	assert.Equal(t, 488.0, res.AdjustedHighReading)
	assert.Equal(t, 2000.0, res.DisplayedDifference)
}
