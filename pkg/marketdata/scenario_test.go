package marketdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerturbationMatching(t *testing.T) {
	exact := Perturbation{KeyPattern: "Quote:USD-DEPO-3M/MarketValue"}
	prefix := Perturbation{KeyPattern: "Quote:USD-*"}

	usd := NewQuoteKey("USD-DEPO-3M")
	eur := NewQuoteKey("EUR-DEPO-3M")

	assert.True(t, exact.Matches(usd))
	assert.False(t, exact.Matches(eur))
	assert.True(t, prefix.Matches(usd))
	assert.False(t, prefix.Matches(eur))
}

func TestPerturbationApply(t *testing.T) {
	abs := Perturbation{Shift: ShiftAbsolute, Amount: 0.0025}
	rel := Perturbation{Shift: ShiftRelative, Amount: 0.01}

	assert.InDelta(t, 0.0475, abs.Apply(0.045), 1e-12)
	assert.InDelta(t, 1.01, rel.Apply(1.0), 1e-12)
}

func TestScenarioDefinitionCountNeverZero(t *testing.T) {
	assert.Equal(t, 1, ScenarioDefinition{}.ScenarioCount())
	assert.Equal(t, 3, BaseScenarios(3).ScenarioCount())
}

func TestBoxForUntouchedKeyIsShared(t *testing.T) {
	def := ScenarioDefinition{
		Name: "stress",
		Scenarios: []Scenario{
			{Name: "base"},
			{Name: "up", Perturbations: []Perturbation{
				{KeyPattern: "Quote:FX:*", Shift: ShiftRelative, Amount: 0.01},
			}},
		},
	}

	fxQuote := NewQuoteKey("FX:EUR/USD")
	rateQuote := NewQuoteKey("USD-DEPO-3M")

	perturbed := def.BoxFor(fxQuote, 1.10)
	assert.True(t, perturbed.IsScenarioDependent())
	assert.Equal(t, 2, perturbed.ScenarioCount())
	assert.InDelta(t, 1.10, perturbed.At(0).(float64), 1e-12)
	assert.InDelta(t, 1.111, perturbed.At(1).(float64), 1e-12)

	untouched := def.BoxFor(rateQuote, 0.045)
	assert.False(t, untouched.IsScenarioDependent())
	assert.Equal(t, 0.045, untouched.At(0))
}

func TestStackedPerturbationsApplyInOrder(t *testing.T) {
	s := Scenario{
		Name: "combo",
		Perturbations: []Perturbation{
			{KeyPattern: "Quote:X/MarketValue", Shift: ShiftAbsolute, Amount: 1},
			{KeyPattern: "Quote:X*", Shift: ShiftRelative, Amount: 0.5},
		},
	}
	// (10 + 1) * 1.5
	assert.InDelta(t, 16.5, s.apply(NewQuoteKey("X"), 10), 1e-12)
}

func TestLoadScenarioDefinition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenarios.yaml")
	content := []byte(`
name: stress
scenarios:
  - name: base
  - name: shock
    perturbations:
      - key: "Quote:FX:*"
        shift: relative
        amount: -0.05
`)
	assert.NoError(t, os.WriteFile(path, content, 0o644))

	def, err := LoadScenarioDefinition(path)
	assert.NoError(t, err)
	assert.Equal(t, "stress", def.Name)
	assert.Equal(t, 2, def.ScenarioCount())
	assert.Equal(t, ShiftRelative, def.Scenarios[1].Perturbations[0].Shift)
	assert.True(t, def.Touches(NewQuoteKey("FX:EUR/USD")))
}
