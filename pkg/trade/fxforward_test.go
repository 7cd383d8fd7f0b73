package trade

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"riskgrid/pkg/currency"
	"riskgrid/pkg/engine"
	"riskgrid/pkg/marketdata"
)

// fxView extends depositView with an EUR/USD spot rate per scenario.
func fxView(t *testing.T, scenarios int, zeros map[string][]float64, eurUsd []float64) engine.ScenarioMarketData {
	t.Helper()
	cfg := depositConfig()

	envb, err := marketdata.NewEnvironmentBuilder(scenarios, valuation)
	assert.NoError(t, err)
	for ticker, perScenario := range zeros {
		key := marketdata.NewQuoteKey(ticker)
		if len(perScenario) == 1 {
			envb.SetShared(key, perScenario[0])
		} else {
			assert.NoError(t, envb.Set(key, marketdata.ScenarioFloats(perScenario)))
		}
	}
	pair := currency.NewPair(currency.EUR, currency.USD)
	rateKey := marketdata.FxRateKey{Pair: pair}
	if len(eurUsd) == 1 {
		rate, err := currency.NewFxRate(pair, eurUsd[0])
		assert.NoError(t, err)
		envb.SetShared(rateKey, rate)
	} else if len(eurUsd) > 1 {
		rates := make([]any, len(eurUsd))
		for i, r := range eurUsd {
			rate, err := currency.NewFxRate(pair, r)
			assert.NoError(t, err)
			rates[i] = rate
		}
		assert.NoError(t, envb.Set(rateKey, marketdata.ScenarioBox(rates)))
	}
	for _, ccy := range []currency.Currency{currency.USD, currency.EUR} {
		key := marketdata.CurveKey{Group: DefaultCurveGroup, Currency: ccy}
		box, err := marketdata.DiscountCurveFunction{}.Build(key, envb.Snapshot(), cfg)
		if err != nil {
			continue
		}
		assert.NoError(t, envb.Set(key, box))
	}
	return engine.NewView(envb.Build(), cfg)
}

func TestFxForwardPv(t *testing.T) {
	md := fxView(t, 1,
		map[string][]float64{"USD-DEPO-1Y": {0.05}, "EUR-DEPO-1Y": {0.03}},
		[]float64{1.10})
	fwd := FxForward{
		ID:       "FXF-1",
		Pay:      currency.NewAmount(currency.EUR, 1_000_000),
		Receive:  currency.NewAmount(currency.USD, 1_120_000),
		Maturity: 1,
	}

	sr, err := FxForwardPvFunction{}.Calculate(fwd, md)
	assert.NoError(t, err)

	dfUsd := math.Exp(-0.05)
	dfEur := math.Exp(-0.03)
	// Pay leg converted at spot, both legs discounted on their own curves.
	want := 1_120_000*dfUsd - 1_000_000*1.10*dfEur
	arr, ok := sr.(engine.CurrencyValuesArray)
	assert.True(t, ok)
	assert.Equal(t, currency.USD, arr.Currency())
	assert.InDelta(t, want, arr.Values()[0], 1e-6)
}

func TestFxForwardPvAcrossScenarios(t *testing.T) {
	md := fxView(t, 2,
		map[string][]float64{"USD-DEPO-1Y": {0.05}, "EUR-DEPO-1Y": {0.03}},
		[]float64{1.10, 1.20})
	fwd := FxForward{
		ID:       "FXF-1",
		Pay:      currency.NewAmount(currency.EUR, 1_000_000),
		Receive:  currency.NewAmount(currency.USD, 1_120_000),
		Maturity: 1,
	}

	sr, err := FxForwardPvFunction{}.Calculate(fwd, md)
	assert.NoError(t, err)
	assert.Equal(t, 2, sr.ScenarioCount())

	dfUsd := math.Exp(-0.05)
	dfEur := math.Exp(-0.03)
	arr := sr.(engine.CurrencyValuesArray)
	assert.InDelta(t, 1_120_000*dfUsd-1_000_000*1.10*dfEur, arr.Values()[0], 1e-6)
	assert.InDelta(t, 1_120_000*dfUsd-1_000_000*1.20*dfEur, arr.Values()[1], 1e-6)
}

func TestFxForwardSameCurrencyNeedsNoFxRate(t *testing.T) {
	// Both legs in USD: no FX rate in the environment, none required.
	md := fxView(t, 1, map[string][]float64{"USD-DEPO-1Y": {0.05}}, nil)
	fwd := FxForward{
		ID:       "FXF-2",
		Pay:      currency.NewAmount(currency.USD, 1_000_000),
		Receive:  currency.NewAmount(currency.USD, 1_050_000),
		Maturity: 1,
	}

	sr, err := FxForwardPvFunction{}.Calculate(fwd, md)
	assert.NoError(t, err)

	df := math.Exp(-0.05)
	assert.InDelta(t, (1_050_000-1_000_000)*df, sr.(engine.CurrencyValuesArray).Values()[0], 1e-6)

	reqs, err := FxForwardPvFunction{}.Requirements(fwd, depositConfig())
	assert.NoError(t, err)
	for _, k := range reqs.Keys() {
		_, isFx := k.(marketdata.FxRateKey)
		assert.False(t, isFx)
	}
}

func TestFxForwardRequirements(t *testing.T) {
	cfg := depositConfig()
	fwd := FxForward{
		ID:       "FXF-1",
		Pay:      currency.NewAmount(currency.EUR, 1_000_000),
		Receive:  currency.NewAmount(currency.USD, 1_120_000),
		Maturity: 1,
	}

	reqs, err := FxForwardPvFunction{}.Requirements(fwd, cfg)
	assert.NoError(t, err)
	assert.Equal(t, []marketdata.Key{
		marketdata.CurveKey{Group: DefaultCurveGroup, Currency: currency.USD},
		marketdata.CurveKey{Group: DefaultCurveGroup, Currency: currency.EUR},
		marketdata.FxRateKey{Pair: currency.NewPair(currency.EUR, currency.USD)},
	}, reqs.Derived())

	_, err = FxForwardPvFunction{}.Requirements(TermDeposit{}, cfg)
	assert.Error(t, err)
}

func TestFxForwardRequirementsCanonicaliseThePair(t *testing.T) {
	// USD pay / EUR receive still requires the canonical EUR/USD key.
	cfg := depositConfig()
	fwd := FxForward{
		ID:       "FXF-3",
		Pay:      currency.NewAmount(currency.USD, 1_120_000),
		Receive:  currency.NewAmount(currency.EUR, 1_000_000),
		Maturity: 1,
	}

	reqs, err := FxForwardPvFunction{}.Requirements(fwd, cfg)
	assert.NoError(t, err)

	var fxKeys []marketdata.Key
	for _, k := range reqs.Keys() {
		if _, ok := k.(marketdata.FxRateKey); ok {
			fxKeys = append(fxKeys, k)
		}
	}
	assert.Equal(t, []marketdata.Key{
		marketdata.FxRateKey{Pair: currency.NewPair(currency.EUR, currency.USD)},
	}, fxKeys)
}

func TestFxForwardMissingCurveSurfacesError(t *testing.T) {
	// GBP has no curve configured.
	md := fxView(t, 1, map[string][]float64{"USD-DEPO-1Y": {0.05}}, nil)
	fwd := FxForward{
		ID:       "FXF-4",
		Pay:      currency.NewAmount(currency.GBP, 1_000_000),
		Receive:  currency.NewAmount(currency.GBP, 1_050_000),
		Maturity: 1,
	}
	_, err := FxForwardPvFunction{}.Calculate(fwd, md)
	assert.Error(t, err)
}
