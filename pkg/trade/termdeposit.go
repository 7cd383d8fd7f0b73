package trade

import (
	"fmt"
	"math"

	"riskgrid/pkg/currency"
	"riskgrid/pkg/engine"
	"riskgrid/pkg/marketdata"
)

// TypeTermDeposit identifies term deposit targets.
const TypeTermDeposit engine.TargetType = "TermDeposit"

// TermDeposit pays notional * (1 + rate * maturity) at maturity against the
// notional invested today.
type TermDeposit struct {
	ID       string            `json:"id" yaml:"id"`
	Currency currency.Currency `json:"currency" yaml:"currency"`
	Notional float64           `json:"notional" yaml:"notional"`
	Rate     float64           `json:"rate" yaml:"rate"`
	// Maturity is the deposit term in years from the valuation date.
	Maturity   float64 `json:"maturity" yaml:"maturity"`
	CurveGroup string  `json:"curveGroup,omitempty" yaml:"curveGroup,omitempty"`
}

// TargetType implements engine.Target.
func (TermDeposit) TargetType() engine.TargetType { return TypeTermDeposit }

// ResultCurrencies implements engine.CurrencyAware.
func (t TermDeposit) ResultCurrencies() []currency.Currency {
	return []currency.Currency{t.Currency}
}

func (t TermDeposit) curveGroup() string {
	if t.CurveGroup == "" {
		return DefaultCurveGroup
	}
	return t.CurveGroup
}

func (t TermDeposit) curveKey() marketdata.CurveKey {
	return marketdata.CurveKey{Group: t.curveGroup(), Currency: t.Currency}
}

func (t TermDeposit) pv(curve *marketdata.Curve, bump float64) float64 {
	df := curve.DiscountFactor(t.Maturity)
	if bump != 0 {
		// A parallel zero-rate bump scales the discount factor directly.
		df = curve.DiscountFactor(t.Maturity) * discountBump(bump, t.Maturity)
	}
	return t.Notional*(1+t.Rate*t.Maturity)*df - t.Notional
}

// TermDepositPvFunction computes present value.
type TermDepositPvFunction struct{}

// Requirements implements engine.CalculationFunction.
func (TermDepositPvFunction) Requirements(target engine.Target, _ *marketdata.Config) (marketdata.Requirements, error) {
	t, ok := target.(TermDeposit)
	if !ok {
		return marketdata.Requirements{}, fmt.Errorf("trade: TermDepositPvFunction got %T", target)
	}
	return marketdata.RequirementsOf(t.curveKey()), nil
}

// Calculate implements engine.CalculationFunction.
func (TermDepositPvFunction) Calculate(target engine.Target, md engine.ScenarioMarketData) (engine.ScenarioResult, error) {
	t, ok := target.(TermDeposit)
	if !ok {
		return nil, fmt.Errorf("trade: TermDepositPvFunction got %T", target)
	}
	return depositScenarios(t, md, func(curve *marketdata.Curve) any {
		return currency.NewAmount(t.Currency, t.pv(curve, 0))
	})
}

// TermDepositPv01Function computes the present value change for a one basis
// point parallel shift of the discount curve.
type TermDepositPv01Function struct{}

// Requirements implements engine.CalculationFunction.
func (TermDepositPv01Function) Requirements(target engine.Target, _ *marketdata.Config) (marketdata.Requirements, error) {
	t, ok := target.(TermDeposit)
	if !ok {
		return marketdata.Requirements{}, fmt.Errorf("trade: TermDepositPv01Function got %T", target)
	}
	return marketdata.RequirementsOf(t.curveKey()), nil
}

// Calculate implements engine.CalculationFunction.
func (TermDepositPv01Function) Calculate(target engine.Target, md engine.ScenarioMarketData) (engine.ScenarioResult, error) {
	t, ok := target.(TermDeposit)
	if !ok {
		return nil, fmt.Errorf("trade: TermDepositPv01Function got %T", target)
	}
	const bp = 1e-4
	return depositScenarios(t, md, func(curve *marketdata.Curve) any {
		return currency.NewAmount(t.Currency, t.pv(curve, bp)-t.pv(curve, 0))
	})
}

// TermDepositParRateFunction computes the rate at which the deposit prices
// to zero. The result is a plain per-scenario number, not a monetary amount.
type TermDepositParRateFunction struct{}

// Requirements implements engine.CalculationFunction.
func (TermDepositParRateFunction) Requirements(target engine.Target, _ *marketdata.Config) (marketdata.Requirements, error) {
	t, ok := target.(TermDeposit)
	if !ok {
		return marketdata.Requirements{}, fmt.Errorf("trade: TermDepositParRateFunction got %T", target)
	}
	return marketdata.RequirementsOf(t.curveKey()), nil
}

// Calculate implements engine.CalculationFunction.
func (TermDepositParRateFunction) Calculate(target engine.Target, md engine.ScenarioMarketData) (engine.ScenarioResult, error) {
	t, ok := target.(TermDeposit)
	if !ok {
		return nil, fmt.Errorf("trade: TermDepositParRateFunction got %T", target)
	}
	if t.Maturity <= 0 {
		return nil, fmt.Errorf("trade: deposit %s has non-positive maturity", t.ID)
	}
	return depositScenarios(t, md, func(curve *marketdata.Curve) any {
		df := curve.DiscountFactor(t.Maturity)
		return (1/df - 1) / t.Maturity
	})
}

func depositScenarios(t TermDeposit, md engine.ScenarioMarketData,
	value func(curve *marketdata.Curve) any) (engine.ScenarioResult, error) {

	n := md.ScenarioCount()
	values := make([]any, n)
	for i := 0; i < n; i++ {
		curve, err := md.Curve(t.curveGroup(), t.Currency, i)
		if err != nil {
			return nil, err
		}
		values[i] = value(curve)
	}
	return engine.Collect(values, true), nil
}

func discountBump(bump, t float64) float64 {
	// exp(-(z+bump)t) / exp(-zt)
	return math.Exp(-bump * t)
}
