package marketdata

import (
	"fmt"
	"sort"
	"time"

	"riskgrid/pkg/result"
)

// Box holds the value(s) for one key: either a single value shared by every
// scenario, or an ordered sequence with exactly one value per scenario.
type Box struct {
	shared    any
	scenarios []any
}

// SharedBox wraps a scenario-independent value.
func SharedBox(v any) Box { return Box{shared: v} }

// ScenarioBox wraps per-scenario values, index aligned with the environment's
// scenario ordering.
func ScenarioBox(values []any) Box { return Box{scenarios: values} }

// ScenarioFloats wraps a per-scenario float sequence.
func ScenarioFloats(values []float64) Box {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return Box{scenarios: out}
}

// IsScenarioDependent reports whether the box holds per-scenario values.
func (b Box) IsScenarioDependent() bool { return b.scenarios != nil }

// ScenarioCount returns the sequence length, 0 for shared boxes.
func (b Box) ScenarioCount() int { return len(b.scenarios) }

// At returns the value for scenario i. Shared boxes return the same value for
// every index.
func (b Box) At(i int) any {
	if b.scenarios == nil {
		return b.shared
	}
	return b.scenarios[i]
}

// Environment is the immutable scenario-indexed market data store shared by
// every calculation of a request. Readers need no locking.
type Environment struct {
	scenarioCount int
	dates         []time.Time
	boxes         map[Key]Box
	failures      map[Key]*result.Failure
}

// ScenarioCount returns the number of scenarios the environment was built for.
func (e *Environment) ScenarioCount() int { return e.scenarioCount }

// ValuationDate returns the valuation date for scenario i.
func (e *Environment) ValuationDate(i int) time.Time {
	if len(e.dates) == 1 {
		return e.dates[0]
	}
	return e.dates[i]
}

// Box returns the stored box for a key.
func (e *Environment) Box(k Key) (Box, bool) {
	b, ok := e.boxes[k]
	return b, ok
}

// Failure returns the recorded build failure for a key, if any.
func (e *Environment) Failure(k Key) (*result.Failure, bool) {
	f, ok := e.failures[k]
	return f, ok
}

// Value returns the value for key k in scenario i, surfacing recorded build
// failures and absent keys as typed failures.
func (e *Environment) Value(k Key, i int) (any, error) {
	if f, ok := e.failures[k]; ok {
		return nil, f
	}
	b, ok := e.boxes[k]
	if !ok {
		return nil, result.Failf(result.MissingMarketData, "no market data for %s", k.Name())
	}
	if i < 0 || i >= e.scenarioCount {
		return nil, result.Failf(result.ScenarioMismatch,
			"scenario index %d out of range, environment has %d scenarios", i, e.scenarioCount)
	}
	return b.At(i), nil
}

// Keys returns every stored key sorted by name.
func (e *Environment) Keys() []Key {
	out := make([]Key, 0, len(e.boxes))
	for k := range e.boxes {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// EnvironmentBuilder assembles an Environment, rejecting sequences whose
// length disagrees with the scenario count at build time.
type EnvironmentBuilder struct {
	scenarioCount int
	dates         []time.Time
	boxes         map[Key]Box
	failures      map[Key]*result.Failure
}

// NewEnvironmentBuilder starts a builder for the given scenario count and
// valuation date(s): either one shared date or one per scenario.
func NewEnvironmentBuilder(scenarioCount int, dates ...time.Time) (*EnvironmentBuilder, error) {
	if scenarioCount < 1 {
		return nil, fmt.Errorf("marketdata: scenario count must be at least 1, got %d", scenarioCount)
	}
	if len(dates) != 1 && len(dates) != scenarioCount {
		return nil, fmt.Errorf("marketdata: need 1 or %d valuation dates, got %d", scenarioCount, len(dates))
	}
	return &EnvironmentBuilder{
		scenarioCount: scenarioCount,
		dates:         append([]time.Time(nil), dates...),
		boxes:         make(map[Key]Box),
		failures:      make(map[Key]*result.Failure),
	}, nil
}

// Set stores a box, validating per-scenario lengths.
func (b *EnvironmentBuilder) Set(k Key, box Box) error {
	if box.IsScenarioDependent() && box.ScenarioCount() != b.scenarioCount {
		return result.Failf(result.ScenarioMismatch,
			"%s: sequence has %d values, environment has %d scenarios",
			k.Name(), box.ScenarioCount(), b.scenarioCount)
	}
	delete(b.failures, k)
	b.boxes[k] = box
	return nil
}

// SetShared stores a scenario-independent value.
func (b *EnvironmentBuilder) SetShared(k Key, v any) {
	b.boxes[k] = SharedBox(v)
	delete(b.failures, k)
}

// SetFailure records a typed failure for a key. The failure is isolated: it
// surfaces only when the key (or a dependent) is read.
func (b *EnvironmentBuilder) SetFailure(k Key, f *result.Failure) {
	delete(b.boxes, k)
	b.failures[k] = f
}

// Has reports whether the key already holds a value.
func (b *EnvironmentBuilder) Has(k Key) bool {
	_, ok := b.boxes[k]
	return ok
}

// FailureFor returns a recorded failure during construction.
func (b *EnvironmentBuilder) FailureFor(k Key) (*result.Failure, bool) {
	f, ok := b.failures[k]
	return f, ok
}

// Snapshot exposes a read view of the partially built environment so market
// data functions can read their already-built dependencies.
func (b *EnvironmentBuilder) Snapshot() *Environment {
	return &Environment{
		scenarioCount: b.scenarioCount,
		dates:         b.dates,
		boxes:         b.boxes,
		failures:      b.failures,
	}
}

// Build finalises the environment. The builder must not be reused afterwards.
func (b *EnvironmentBuilder) Build() *Environment {
	return &Environment{
		scenarioCount: b.scenarioCount,
		dates:         b.dates,
		boxes:         b.boxes,
		failures:      b.failures,
	}
}
