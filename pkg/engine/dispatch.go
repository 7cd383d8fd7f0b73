package engine

import (
	"fmt"
	"sort"

	"riskgrid/pkg/result"
)

// FunctionGroup is an immutable registry from measure to calculation function
// for one target type. A group registers each measure at most once.
type FunctionGroup struct {
	name       string
	targetType TargetType
	fns        map[Measure]CalculationFunction
}

// Name returns the group's name.
func (g *FunctionGroup) Name() string { return g.name }

// TargetType returns the target type the group prices.
func (g *FunctionGroup) TargetType() TargetType { return g.targetType }

// Function returns the registered function for a measure.
func (g *FunctionGroup) Function(m Measure) (CalculationFunction, bool) {
	fn, ok := g.fns[m]
	return fn, ok
}

// Measures returns the supported measures, sorted.
func (g *FunctionGroup) Measures() []Measure {
	out := make([]Measure, 0, len(g.fns))
	for m := range g.fns {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FunctionGroupBuilder assembles a FunctionGroup; duplicate measures fail at
// Build so misconfiguration surfaces at startup, not at dispatch.
type FunctionGroupBuilder struct {
	name       string
	targetType TargetType
	fns        map[Measure]CalculationFunction
	err        error
}

// NewFunctionGroup starts a builder for the named group.
func NewFunctionGroup(name string, targetType TargetType) *FunctionGroupBuilder {
	return &FunctionGroupBuilder{
		name:       name,
		targetType: targetType,
		fns:        make(map[Measure]CalculationFunction),
	}
}

// Add registers a function for a measure.
func (b *FunctionGroupBuilder) Add(m Measure, fn CalculationFunction) *FunctionGroupBuilder {
	if b.err != nil {
		return b
	}
	if fn == nil {
		b.err = fmt.Errorf("engine: group %s: nil function for measure %s", b.name, m)
		return b
	}
	if _, dup := b.fns[m]; dup {
		b.err = fmt.Errorf("engine: group %s registers measure %s twice", b.name, m)
		return b
	}
	b.fns[m] = fn
	return b
}

// Build finalises the group.
func (b *FunctionGroupBuilder) Build() (*FunctionGroup, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &FunctionGroup{name: b.name, targetType: b.targetType, fns: b.fns}, nil
}

// MustBuild is Build panicking on error, for startup wiring.
func (b *FunctionGroupBuilder) MustBuild() *FunctionGroup {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}

// PricingRules selects the calculation function for a (target type, measure)
// pair. Several groups may exist per target type (e.g. alternative
// methodologies); the earliest registered group providing the measure wins.
// Built once at startup and immutable afterwards, so dispatch needs no locks.
type PricingRules struct {
	groups map[TargetType][]*FunctionGroup
}

// NewPricingRules constructs rules over the given groups.
func NewPricingRules(groups ...*FunctionGroup) *PricingRules {
	p := &PricingRules{groups: make(map[TargetType][]*FunctionGroup)}
	for _, g := range groups {
		p.groups[g.targetType] = append(p.groups[g.targetType], g)
	}
	return p
}

// Lookup returns the function for the pair, or an UnsupportedMeasure failure
// scoped to that pair.
func (p *PricingRules) Lookup(t TargetType, m Measure) (CalculationFunction, *result.Failure) {
	for _, g := range p.groups[t] {
		if fn, ok := g.Function(m); ok {
			return fn, nil
		}
	}
	return nil, result.Failf(result.UnsupportedMeasure,
		"no function group provides measure %s for target type %s", m, t)
}
