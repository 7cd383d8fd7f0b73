package engine

import (
	"fmt"
	"time"

	"riskgrid/pkg/currency"
	"riskgrid/pkg/marketdata"
	"riskgrid/pkg/result"
)

// ScenarioMarketData is the per-request facade calculation functions query.
// Lookups are phrased in domain terms and answered for a specific scenario
// index; the view translates them into environment queries, applying pair
// canonicalisation and rate direction.
type ScenarioMarketData interface {
	ScenarioCount() int
	ValuationDate(scenario int) time.Time
	// FxRate returns the rate converting one unit of from into to.
	FxRate(from, to currency.Currency, scenario int) (float64, error)
	// Curve returns the discount curve of a group for a currency.
	Curve(group string, ccy currency.Currency, scenario int) (*marketdata.Curve, error)
	// Quote returns a raw observable quote.
	Quote(ticker string, scenario int) (float64, error)
	// Fixing returns an observed index fixing.
	Fixing(index string, scenario int) (float64, error)
}

type environmentView struct {
	env *marketdata.Environment
	cfg *marketdata.Config
}

// NewView wraps a built environment as a ScenarioMarketData.
func NewView(env *marketdata.Environment, cfg *marketdata.Config) ScenarioMarketData {
	return &environmentView{env: env, cfg: cfg}
}

func (v *environmentView) ScenarioCount() int { return v.env.ScenarioCount() }

func (v *environmentView) ValuationDate(scenario int) time.Time {
	return v.env.ValuationDate(scenario)
}

func (v *environmentView) FxRate(from, to currency.Currency, scenario int) (float64, error) {
	if from == to {
		return 1, nil
	}
	key := marketdata.CanonicalFxRateKey(v.cfg.Conventions(), from, to)
	raw, err := v.env.Value(key, scenario)
	if err != nil {
		return 0, err
	}
	rate, ok := raw.(currency.FxRate)
	if !ok {
		return 0, fmt.Errorf("engine: %s holds %T, expected FxRate", key.Name(), raw)
	}
	return rate.RateFor(from, to)
}

func (v *environmentView) Curve(group string, ccy currency.Currency, scenario int) (*marketdata.Curve, error) {
	key := marketdata.CurveKey{Group: group, Currency: ccy}
	raw, err := v.env.Value(key, scenario)
	if err != nil {
		return nil, err
	}
	curve, ok := raw.(*marketdata.Curve)
	if !ok {
		return nil, fmt.Errorf("engine: %s holds %T, expected curve", key.Name(), raw)
	}
	return curve, nil
}

func (v *environmentView) Quote(ticker string, scenario int) (float64, error) {
	raw, err := v.env.Value(marketdata.NewQuoteKey(ticker), scenario)
	if err != nil {
		return 0, err
	}
	quote, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("engine: quote %s holds %T, expected float64", ticker, raw)
	}
	return quote, nil
}

func (v *environmentView) Fixing(index string, scenario int) (float64, error) {
	raw, err := v.env.Value(marketdata.FixingKey{Index: index}, scenario)
	if err != nil {
		return 0, err
	}
	fixing, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("engine: fixing %s holds %T, expected float64", index, raw)
	}
	return fixing, nil
}

// scenarioRates collects the per-scenario rates for one conversion direction,
// classifying missing rate data as ConversionUnavailable.
func scenarioRates(md ScenarioMarketData, from, to currency.Currency) ([]float64, error) {
	n := md.ScenarioCount()
	rates := make([]float64, n)
	for i := 0; i < n; i++ {
		rate, err := md.FxRate(from, to, i)
		if err != nil {
			if f, ok := err.(*result.Failure); ok && f.Reason == result.MissingMarketData {
				return nil, result.Failf(result.ConversionUnavailable,
					"no FX rate data for %s/%s: %s", from, to, f.Message)
			}
			return nil, err
		}
		rates[i] = rate
	}
	return rates, nil
}
