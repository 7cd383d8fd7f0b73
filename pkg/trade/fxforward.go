// Package trade provides the built-in tradeable targets and their calculation
// functions. The pricing here is deliberately thin: discount factors from the
// curve group and FX conversion at the scenario's rate. Anything heavier
// belongs in a dedicated pricer behind the same interfaces.
package trade

import (
	"fmt"

	"riskgrid/pkg/currency"
	"riskgrid/pkg/engine"
	"riskgrid/pkg/marketdata"
)

// DefaultCurveGroup is the curve group used when a trade names none.
const DefaultCurveGroup = "DISC"

// TypeFxForward identifies FX forward targets.
const TypeFxForward engine.TargetType = "FxForward"

// FxForward exchanges two fixed amounts at maturity.
type FxForward struct {
	ID string `json:"id" yaml:"id"`
	// Pay is the amount paid at maturity (positive magnitude).
	Pay currency.Amount `json:"pay" yaml:"pay"`
	// Receive is the amount received at maturity.
	Receive currency.Amount `json:"receive" yaml:"receive"`
	// Maturity is the time to settlement in years from the valuation date.
	Maturity float64 `json:"maturity" yaml:"maturity"`
	// CurveGroup selects the discount curves; empty means DefaultCurveGroup.
	CurveGroup string `json:"curveGroup,omitempty" yaml:"curveGroup,omitempty"`
}

// TargetType implements engine.Target.
func (FxForward) TargetType() engine.TargetType { return TypeFxForward }

// ResultCurrencies implements engine.CurrencyAware. Results are reported in
// the receive currency.
func (t FxForward) ResultCurrencies() []currency.Currency {
	return []currency.Currency{t.Receive.Currency}
}

func (t FxForward) curveGroup() string {
	if t.CurveGroup == "" {
		return DefaultCurveGroup
	}
	return t.CurveGroup
}

// FxForwardPvFunction computes present value in the receive currency: the
// discounted receive leg minus the discounted pay leg converted at the
// scenario's FX rate.
type FxForwardPvFunction struct{}

// Requirements implements engine.CalculationFunction.
func (FxForwardPvFunction) Requirements(target engine.Target, cfg *marketdata.Config) (marketdata.Requirements, error) {
	t, ok := target.(FxForward)
	if !ok {
		return marketdata.Requirements{}, fmt.Errorf("trade: FxForwardPvFunction got %T", target)
	}
	b := marketdata.NewRequirementsBuilder()
	b.Add(
		marketdata.CurveKey{Group: t.curveGroup(), Currency: t.Receive.Currency},
		marketdata.CurveKey{Group: t.curveGroup(), Currency: t.Pay.Currency},
	)
	if t.Pay.Currency != t.Receive.Currency {
		b.Add(marketdata.CanonicalFxRateKey(cfg.Conventions(), t.Pay.Currency, t.Receive.Currency))
	}
	return b.Build(), nil
}

// Calculate implements engine.CalculationFunction.
func (FxForwardPvFunction) Calculate(target engine.Target, md engine.ScenarioMarketData) (engine.ScenarioResult, error) {
	t, ok := target.(FxForward)
	if !ok {
		return nil, fmt.Errorf("trade: FxForwardPvFunction got %T", target)
	}
	n := md.ScenarioCount()
	values := make([]any, n)
	for i := 0; i < n; i++ {
		recCurve, err := md.Curve(t.curveGroup(), t.Receive.Currency, i)
		if err != nil {
			return nil, err
		}
		payCurve, err := md.Curve(t.curveGroup(), t.Pay.Currency, i)
		if err != nil {
			return nil, err
		}
		payInRec := t.Pay.Value
		if t.Pay.Currency != t.Receive.Currency {
			rate, err := md.FxRate(t.Pay.Currency, t.Receive.Currency, i)
			if err != nil {
				return nil, err
			}
			payInRec *= rate
		}
		pv := t.Receive.Value*recCurve.DiscountFactor(t.Maturity) -
			payInRec*payCurve.DiscountFactor(t.Maturity)
		values[i] = currency.NewAmount(t.Receive.Currency, pv)
	}
	return engine.Collect(values, true), nil
}
