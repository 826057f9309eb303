package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fieldcalc/fieldcalc/api"
	"github.com/fieldcalc/fieldcalc/audit"
	"github.com/fieldcalc/fieldcalc/core"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	file := filepath.Join(t.TempDir(), "fieldcalc.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
log: debug
levels:
  core: trace
calculator:
  rounding: whole
audit:
- type: memory
  size: 5
`), 0o644))

	viper.SetConfigFile(file)

	var conf config
	require.NoError(t, loadConfig(&conf))

	assert.Equal(t, "debug", conf.Log)
	assert.Equal(t, map[string]string{"core": "trace"}, conf.Levels)
	assert.Equal(t, "whole", conf.Calculator.Rounding)
	require.Len(t, conf.Audit, 1)
	assert.Equal(t, "memory", conf.Audit[0].Type)
	assert.EqualValues(t, 5, conf.Audit[0].Other["size"])

	// defaults
	assert.Equal(t, "0.0.0.0:7080", conf.URI)
	assert.Equal(t, "settings.json", conf.Settings)
}

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.AddConfigPath(t.TempDir())
	viper.SetConfigName("fieldcalc")

	var conf config
	require.NoError(t, loadConfig(&conf))

	assert.Equal(t, "error", conf.Log)
	assert.Equal(t, "none", conf.Calculator.Rounding)
	require.Len(t, conf.Audit, 1)
	assert.Equal(t, "file", conf.Audit[0].Type)
	assert.Empty(t, conf.Logsheet)
}

func TestLoadConfigUnknownKey(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	file := filepath.Join(t.TempDir(), "fieldcalc.yaml")
	require.NoError(t, os.WriteFile(file, []byte("foo: bar\n"), 0o644))
	viper.SetConfigFile(file)

	var conf config
	assert.Error(t, loadConfig(&conf))
}

func TestConfigureAudit(t *testing.T) {
	dispatcher, shutdown, err := configureAudit([]audit.Config{
		{Type: "memory", Other: map[string]interface{}{"size": 2}},
	})
	require.NoError(t, err)
	defer shutdown()

	calc, err := configureCalculator(calculatorConfig{Rounding: "whole"}, dispatcher)
	require.NoError(t, err)

	_, ok := calc.Consumption(api.ConsumptionInputs{
		Today33: "1100", Previous33: "1000", Today132: "530", Previous132: "500", Adjustment: api.Equal(),
	})
	require.True(t, ok)

	entries, err := dispatcher.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 525.0, entries[0].AdjustedHighReading)

	_, _, err = configureAudit([]audit.Config{{Type: "foo"}})
	assert.Error(t, err)

	_, err = configureCalculator(calculatorConfig{Rounding: "half"}, nil)
	assert.Error(t, err)
}

func TestConfigureLogsheet(t *testing.T) {
	ls, err := configureLogsheet(nil)
	assert.NoError(t, err)
	assert.Nil(t, ls)

	_, err = configureLogsheet(map[string]interface{}{"webhook": "http://localhost"})
	assert.Error(t, err)
}

func TestRenderPower(t *testing.T) {
	var b bytes.Buffer
	renderPower(&b, core.SolveReactivePower(30, 50))

	assert.Contains(t, b.String(), "40.000")
	assert.Contains(t, b.String(), core.Presence[true])
}

func TestRenderConsumption(t *testing.T) {
	var b bytes.Buffer
	renderConsumption(&b, api.Offset(200), core.ComputeConsumption(1100, 1000, 0, 500, api.Offset(200)))

	assert.Contains(t, b.String(), "100,000.000")
	assert.Contains(t, b.String(), "Reading (200)")
	assert.NotContains(t, b.String(), "invalid")

	b.Reset()
	renderConsumption(&b, api.Auto(), core.ComputeConsumption(-1, 1000, 0, 500, api.Auto()))
	assert.Contains(t, b.String(), api.ErrNegativeValue.Error())
}

func TestRenderAudit(t *testing.T) {
	entries := []api.AuditEntry{{
		ID:                  "e1",
		Timestamp:           time.Now().Add(-time.Hour),
		Directive:           api.Equal(),
		OriginalHighReading: 530,
		AdjustedHighReading: 525,
		NormalizedLow:       100000,
		NormalizedHigh:      100000,
	}}

	var b bytes.Buffer
	require.NoError(t, renderAudit(&b, "table", entries))
	assert.Contains(t, b.String(), "Equal")
	assert.Contains(t, b.String(), "1 hour ago")

	b.Reset()
	require.NoError(t, renderAudit(&b, "yaml", entries))
	assert.Contains(t, b.String(), "adjustment: Equal")
	assert.Contains(t, b.String(), "today132_adj: 525")

	assert.Error(t, renderAudit(&b, "csv", entries))
}
