// Package engine orchestrates scenario calculations: it gathers market data
// requirements for requested (target, measure) pairs, has the environment
// built, dispatches each pair to its calculation function, and assembles a
// grid of per-scenario results with optional reporting-currency conversion.
package engine

import (
	"riskgrid/pkg/currency"
	"riskgrid/pkg/marketdata"
)

// Measure names an analytic output requestable per target.
type Measure string

const (
	// MeasurePresentValue is the present value of the target.
	MeasurePresentValue Measure = "PresentValue"
	// MeasurePV01 is the present value change for a one basis point rate shift.
	MeasurePV01 Measure = "PV01"
	// MeasureParRate is the rate at which the target prices to zero.
	MeasureParRate Measure = "ParRate"
)

// TargetType is the stable identifier of a target's kind, used to select the
// function group that prices it.
type TargetType string

// Target is the trade or position a measure is computed for.
type Target interface {
	TargetType() TargetType
}

// CurrencyAware targets declare the currencies their results may be
// denominated in. When a reporting currency is requested, the runner requires
// the conversion rates for these currencies up front, so the rates are in the
// environment by the time results convert.
type CurrencyAware interface {
	ResultCurrencies() []currency.Currency
}

// CalculationFunction computes one measure for targets of one type. The
// function sees the whole scenario dimension through the market data view and
// produces an index-aligned result covering every scenario. Implementations
// are stateless and shared across requests.
type CalculationFunction interface {
	// Requirements declares the market data keys the calculation needs
	// directly. Transitive requirements are discovered by the resolver.
	Requirements(target Target, cfg *marketdata.Config) (marketdata.Requirements, error)
	// Calculate computes the measure for every scenario.
	Calculate(target Target, md ScenarioMarketData) (ScenarioResult, error)
}
