package api

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirective(t *testing.T) {
	tc := []struct {
		token string
		d     Directive
		err   bool
	}{
		{"Auto", Auto(), false},
		{"", Auto(), false},
		{"auto", Auto(), false},
		{"Equal", Equal(), false},
		{"100", Offset(100), false},
		{"500", Offset(500), false},
		{" 300 ", Offset(300), false},
		{"-100", Directive{}, true},
		{"12.5", Directive{}, true},
		{"Max", Directive{}, true},
	}

	for _, tc := range tc {
		d, err := ParseDirective(tc.token)
		if tc.err {
			assert.Error(t, err, tc.token)
			continue
		}

		require.NoError(t, err, tc.token)
		assert.Equal(t, tc.d, d, tc.token)
	}
}

func TestDirectiveTokens(t *testing.T) {
	for _, tok := range append([]string{TokenAuto, TokenEqual}, OffsetTokens...) {
		d, err := ParseDirective(tok)
		require.NoError(t, err)
		assert.Equal(t, tok, d.String())
	}

	assert.False(t, Auto().Adjusting())
	assert.True(t, Equal().Adjusting())
	assert.True(t, Offset(100).Adjusting())
}

func TestDirectiveJSON(t *testing.T) {
	var in ConsumptionInputs
	require.NoError(t, json.Unmarshal([]byte(`{"today33":"100","adjustment":"200"}`), &in))
	assert.Equal(t, "100", in.Today33)
	assert.Equal(t, Offset(200), in.Adjustment)

	b, err := json.Marshal(AuditEntry{Directive: Equal()})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"adjustment":"Equal"`)

	assert.Error(t, json.Unmarshal([]byte(`{"adjustment":"Max"}`), &in))
}

func TestInvalidInputError(t *testing.T) {
	for _, err := range []error{ErrNegativeValue, ErrInvertedMagnitude, ErrNegativeReading} {
		assert.True(t, errors.Is(err, ErrInvalidInput), err)
	}

	assert.NoError(t, ConsumptionResult{Valid: true}.Err())
	assert.Equal(t, ErrNegativeReading, ConsumptionResult{Error: ErrNegativeReading.Error()}.Err())
}

func TestThemeString(t *testing.T) {
	th, ok := ThemeString("dark")
	assert.True(t, ok)
	assert.Equal(t, ThemeDark, th)

	_, ok = ThemeString("neon")
	assert.False(t, ok)
}
