package marketdata

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ShiftType is how a perturbation amount is applied to a base value.
type ShiftType string

const (
	// ShiftAbsolute adds the amount to the base value.
	ShiftAbsolute ShiftType = "absolute"
	// ShiftRelative multiplies the base value by (1 + amount).
	ShiftRelative ShiftType = "relative"
)

// Perturbation shifts the observable values whose key names match KeyPattern.
// A pattern is an exact key name, or a prefix ending in '*'.
type Perturbation struct {
	KeyPattern string    `yaml:"key" json:"key"`
	Shift      ShiftType `yaml:"shift" json:"shift"`
	Amount     float64   `yaml:"amount" json:"amount"`
}

// Matches reports whether the perturbation applies to the key.
func (p Perturbation) Matches(k Key) bool {
	name := k.Name()
	if strings.HasSuffix(p.KeyPattern, "*") {
		return strings.HasPrefix(name, strings.TrimSuffix(p.KeyPattern, "*"))
	}
	return name == p.KeyPattern
}

// Apply shifts a base value.
func (p Perturbation) Apply(base float64) float64 {
	switch p.Shift {
	case ShiftRelative:
		return base * (1 + p.Amount)
	default:
		return base + p.Amount
	}
}

// Scenario is one hypothetical market state.
type Scenario struct {
	Name          string         `yaml:"name" json:"name"`
	Perturbations []Perturbation `yaml:"perturbations" json:"perturbations"`
}

func (s Scenario) apply(k Key, base float64) float64 {
	v := base
	for _, p := range s.Perturbations {
		if p.Matches(k) {
			v = p.Apply(v)
		}
	}
	return v
}

// ScenarioDefinition names the set of scenarios evaluated together. An empty
// definition means a single unperturbed base scenario.
type ScenarioDefinition struct {
	Name      string     `yaml:"name" json:"name"`
	Scenarios []Scenario `yaml:"scenarios" json:"scenarios"`
}

// BaseScenarios returns a definition of count unperturbed scenarios.
func BaseScenarios(count int) ScenarioDefinition {
	scens := make([]Scenario, count)
	for i := range scens {
		scens[i] = Scenario{Name: fmt.Sprintf("base-%d", i)}
	}
	return ScenarioDefinition{Name: "base", Scenarios: scens}
}

// ScenarioCount returns the number of scenarios, never less than 1.
func (d ScenarioDefinition) ScenarioCount() int {
	if len(d.Scenarios) == 0 {
		return 1
	}
	return len(d.Scenarios)
}

// Touches reports whether any scenario perturbs the key.
func (d ScenarioDefinition) Touches(k Key) bool {
	for _, s := range d.Scenarios {
		for _, p := range s.Perturbations {
			if p.Matches(k) {
				return true
			}
		}
	}
	return false
}

// BoxFor wraps a sourced base value: a shared box when no scenario perturbs
// the key, otherwise one shifted value per scenario.
func (d ScenarioDefinition) BoxFor(k Key, base float64) Box {
	if !d.Touches(k) {
		return SharedBox(base)
	}
	values := make([]float64, len(d.Scenarios))
	for i, s := range d.Scenarios {
		values[i] = s.apply(k, base)
	}
	return ScenarioFloats(values)
}

// LoadScenarioDefinition reads a scenario definition from a YAML file.
func LoadScenarioDefinition(path string) (ScenarioDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ScenarioDefinition{}, fmt.Errorf("marketdata: read scenarios %s: %w", path, err)
	}
	var def ScenarioDefinition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return ScenarioDefinition{}, fmt.Errorf("marketdata: parse scenarios %s: %w", path, err)
	}
	return def, nil
}
