package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validLine() map[string]any {
	return map[string]any{
		"name":        "Spent solvent",
		"quantity_kg": 120.5,
		"labeled_yes": true,
		"labeled_no":  false,
		"packaging":   "drum",
	}
}

func TestDefaultRulesAcceptValidLine(t *testing.T) {
	v, err := NewWasteRuleValidator(DefaultWasteRules())
	require.NoError(t, err)

	assert.NoError(t, v.Validate(validLine()))
}

func TestDefaultRulesRejections(t *testing.T) {
	v, err := NewWasteRuleValidator(DefaultWasteRules())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"empty name", func(l map[string]any) { l["name"] = "" }},
		{"negative quantity", func(l map[string]any) { l["quantity_kg"] = -0.5 }},
		{"both labeling flags set", func(l map[string]any) { l["labeled_no"] = true }},
		{"neither labeling flag set", func(l map[string]any) { l["labeled_yes"] = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := validLine()
			tt.mutate(line)
			assert.Error(t, v.Validate(line))
		})
	}
}

func TestZeroQuantityIsAllowed(t *testing.T) {
	v, err := NewWasteRuleValidator(DefaultWasteRules())
	require.NoError(t, err)

	line := validLine()
	line["quantity_kg"] = 0.0
	assert.NoError(t, v.Validate(line))
}

func TestCompiledProgramsAreCached(t *testing.T) {
	v, err := NewWasteRuleValidator(DefaultWasteRules())
	require.NoError(t, err)

	require.NoError(t, v.Validate(validLine()))
	first := v.CacheSize()
	require.NoError(t, v.Validate(validLine()))
	assert.Equal(t, first, v.CacheSize())
	assert.Equal(t, len(DefaultWasteRules()), first)
}

func TestCustomRule(t *testing.T) {
	v, err := NewWasteRuleValidator([]Rule{{
		Name:       "quantity_cap",
		Expression: "line.quantity_kg <= 10000.0",
		Message:    "quantity exceeds the transport cap",
	}})
	require.NoError(t, err)

	line := validLine()
	require.NoError(t, v.Validate(line))

	line["quantity_kg"] = 20000.0
	err = v.Validate(line)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity exceeds the transport cap")
}
