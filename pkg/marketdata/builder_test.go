package marketdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"riskgrid/pkg/currency"
	"riskgrid/pkg/result"
)

func testSource() *StaticSource {
	return NewStaticSource(map[string]float64{
		"Quote:FX:EUR/USD/MarketValue":  1.25,
		"Quote:FX:GBP/USD/MarketValue":  1.60,
		"Quote:USD-DEPO-3M/MarketValue": 0.044,
		"Quote:USD-DEPO-1Y/MarketValue": 0.045,
	})
}

func testBuilder() *Builder {
	return &Builder{
		Registry: StandardRegistry(),
		Mappings: NewMappings("test"),
		Source:   testSource(),
	}
}

func TestBuildEndToEnd(t *testing.T) {
	cfg := testConfig()
	root := RequirementsOf(
		FxRateKey{Pair: currency.NewPair(currency.EUR, currency.GBP)},
		CurveKey{Group: "DISC", Currency: currency.USD},
	)

	env, err := testBuilder().Build(context.Background(), root, ScenarioDefinition{}, cfg, testDate)
	assert.NoError(t, err)
	assert.Equal(t, 1, env.ScenarioCount())

	v, err := env.Value(FxRateKey{Pair: currency.NewPair(currency.EUR, currency.GBP)}, 0)
	assert.NoError(t, err)
	assert.InDelta(t, 1.25/1.60, v.(currency.FxRate).Rate, 1e-12)

	cv, err := env.Value(CurveKey{Group: "DISC", Currency: currency.USD}, 0)
	assert.NoError(t, err)
	assert.InDelta(t, 0.045, cv.(*Curve).ZeroRate(1), 1e-12)
}

func TestBuildAppliesScenarios(t *testing.T) {
	cfg := testConfig()
	scen := ScenarioDefinition{
		Name: "fx-stress",
		Scenarios: []Scenario{
			{Name: "base"},
			{Name: "eur-up", Perturbations: []Perturbation{
				{KeyPattern: "Quote:FX:EUR/USD*", Shift: ShiftRelative, Amount: 0.10},
			}},
		},
	}
	root := RequirementsOf(FxRateKey{Pair: currency.NewPair(currency.EUR, currency.USD)})

	env, err := testBuilder().Build(context.Background(), root, scen, cfg, testDate)
	assert.NoError(t, err)
	assert.Equal(t, 2, env.ScenarioCount())

	k := FxRateKey{Pair: currency.NewPair(currency.EUR, currency.USD)}
	v0, err := env.Value(k, 0)
	assert.NoError(t, err)
	assert.InDelta(t, 1.25, v0.(currency.FxRate).Rate, 1e-12)
	v1, err := env.Value(k, 1)
	assert.NoError(t, err)
	assert.InDelta(t, 1.375, v1.(currency.FxRate).Rate, 1e-12)
}

func TestBuildIsolatesMissingObservables(t *testing.T) {
	cfg := testConfig()
	cfg.AddCurve(CurveKey{Group: "DISC", Currency: currency.EUR}, CurveConfig{
		Nodes: []CurveNode{{Ticker: "EUR-DEPO-1Y", YearFraction: 1}},
	})

	usdCurve := CurveKey{Group: "DISC", Currency: currency.USD}
	eurCurve := CurveKey{Group: "DISC", Currency: currency.EUR}
	root := RequirementsOf(usdCurve, eurCurve)

	// The source has no EUR node quote; only the EUR curve may fail.
	env, err := testBuilder().Build(context.Background(), root, ScenarioDefinition{}, cfg, testDate)
	assert.NoError(t, err)

	_, err = env.Value(usdCurve, 0)
	assert.NoError(t, err)

	_, err = env.Value(eurCurve, 0)
	f := result.AsFailure(err)
	assert.Equal(t, result.BuildFailure, f.Reason)
	assert.Contains(t, f.Message, eurCurve.Name())

	// The missing quote itself carries the original reason.
	_, err = env.Value(NewQuoteKey("EUR-DEPO-1Y"), 0)
	assert.Equal(t, result.MissingMarketData, result.AsFailure(err).Reason)
}

func TestBuildPropagatesResolutionFailures(t *testing.T) {
	cfg := testConfig()
	orphan := CurveKey{Group: "ORPHAN", Currency: currency.USD}

	env, err := testBuilder().Build(context.Background(), RequirementsOf(orphan), ScenarioDefinition{}, cfg, testDate)
	assert.NoError(t, err)

	_, err = env.Value(orphan, 0)
	assert.Error(t, err)
}

func TestBuildRequiresSource(t *testing.T) {
	b := &Builder{Registry: StandardRegistry(), Mappings: NewMappings("test")}
	_, err := b.Build(context.Background(), RequirementsOf(NewQuoteKey("A")), ScenarioDefinition{}, testConfig(), testDate)
	assert.Error(t, err)
}

func TestBuildCancelledContextFailsRemainingLayers(t *testing.T) {
	cfg := testConfig()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	k := FxRateKey{Pair: currency.NewPair(currency.EUR, currency.USD)}
	env, err := testBuilder().Build(ctx, RequirementsOf(k), ScenarioDefinition{}, cfg, testDate)
	assert.NoError(t, err)

	_, err = env.Value(k, 0)
	f := result.AsFailure(err)
	assert.Equal(t, result.BuildFailure, f.Reason)
	assert.Contains(t, f.Message, "cancelled")
}
