package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"riskgrid/pkg/currency"
	"riskgrid/pkg/marketdata"
	"riskgrid/pkg/result"
)

var valuation = time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)

func runnerConfig() *marketdata.Config {
	cfg := marketdata.NewConfig(nil, nil)
	cfg.AddQuotedPair(currency.NewPair(currency.EUR, currency.USD))
	cfg.AddQuotedPair(currency.NewPair(currency.GBP, currency.USD))
	return cfg
}

func runnerBuilder() *marketdata.Builder {
	return &marketdata.Builder{
		Registry: marketdata.StandardRegistry(),
		Mappings: marketdata.NewMappings("test"),
		Source: marketdata.NewStaticSource(map[string]float64{
			"Quote:FX:EUR/USD/MarketValue": 1.25,
			"Quote:FX:GBP/USD/MarketValue": 1.60,
			"Quote:SPOT/MarketValue":       100,
		}),
	}
}

// ccyTarget is a stub target declaring its result currency.
type ccyTarget struct {
	kind TargetType
	ccy  currency.Currency
}

func (t ccyTarget) TargetType() TargetType                { return t.kind }
func (t ccyTarget) ResultCurrencies() []currency.Currency { return []currency.Currency{t.ccy} }

// spotFunction prices a stub target as its quoted spot value in a currency.
type spotFunction struct {
	ccy currency.Currency
}

func (f spotFunction) Requirements(Target, *marketdata.Config) (marketdata.Requirements, error) {
	return marketdata.RequirementsOf(marketdata.NewQuoteKey("SPOT")), nil
}

func (f spotFunction) Calculate(_ Target, md ScenarioMarketData) (ScenarioResult, error) {
	values := make([]any, md.ScenarioCount())
	for i := range values {
		spot, err := md.Quote("SPOT", i)
		if err != nil {
			return nil, err
		}
		values[i] = currency.NewAmount(f.ccy, spot)
	}
	return Collect(values, true), nil
}

func spotRules(ccy currency.Currency) *PricingRules {
	g := NewFunctionGroup("spot", "stub").
		Add(MeasurePresentValue, spotFunction{ccy: ccy}).
		MustBuild()
	return NewPricingRules(g)
}

func TestCalculateGridAcrossScenarios(t *testing.T) {
	r := &Runner{Rules: spotRules(currency.USD), Builder: runnerBuilder(), Config: runnerConfig()}
	scen := marketdata.ScenarioDefinition{
		Name: "spot-stress",
		Scenarios: []marketdata.Scenario{
			{Name: "base"},
			{Name: "up", Perturbations: []marketdata.Perturbation{
				{KeyPattern: "Quote:SPOT*", Shift: marketdata.ShiftRelative, Amount: 0.10},
			}},
		},
	}
	req := CalculationRequest{
		Targets:       []Target{stubTarget{kind: "stub"}, stubTarget{kind: "stub"}},
		Measures:      []Measure{MeasurePresentValue},
		Scenarios:     scen,
		ValuationDate: valuation,
	}

	grid, err := r.Calculate(context.Background(), req)
	assert.NoError(t, err)
	assert.Equal(t, 0, grid.FailureCount())

	for ti := 0; ti < 2; ti++ {
		res, ok := grid.Get(ti, MeasurePresentValue)
		assert.True(t, ok)
		sr, err := res.Get()
		assert.NoError(t, err)
		arr, ok := sr.(CurrencyValuesArray)
		assert.True(t, ok)
		assert.InDeltaSlice(t, []float64{100, 110}, arr.Values(), 1e-12)
	}
}

func TestCalculateConvertsToReportingCurrency(t *testing.T) {
	r := &Runner{Rules: spotRules(currency.GBP), Builder: runnerBuilder(), Config: runnerConfig()}
	req := CalculationRequest{
		Targets:           []Target{ccyTarget{kind: "stub", ccy: currency.GBP}},
		Measures:          []Measure{MeasurePresentValue},
		ValuationDate:     valuation,
		ReportingCurrency: currency.USD,
	}

	grid, err := r.Calculate(context.Background(), req)
	assert.NoError(t, err)

	res, _ := grid.Get(0, MeasurePresentValue)
	sr, err := res.Get()
	assert.NoError(t, err)
	arr := sr.(CurrencyValuesArray)
	assert.Equal(t, currency.USD, arr.Currency())
	assert.InDeltaSlice(t, []float64{160}, arr.Values(), 1e-12)
}

func TestCalculateIdentityReportingCurrencySkipsLookup(t *testing.T) {
	// No FX quote exists for converting USD to USD; identity must not need one.
	builder := &marketdata.Builder{
		Registry: marketdata.StandardRegistry(),
		Mappings: marketdata.NewMappings("test"),
		Source: marketdata.NewStaticSource(map[string]float64{
			"Quote:SPOT/MarketValue": 100,
		}),
	}
	r := &Runner{Rules: spotRules(currency.USD), Builder: builder, Config: runnerConfig()}
	req := CalculationRequest{
		Targets:           []Target{stubTarget{kind: "stub"}},
		Measures:          []Measure{MeasurePresentValue},
		ValuationDate:     valuation,
		ReportingCurrency: currency.USD,
	}

	grid, err := r.Calculate(context.Background(), req)
	assert.NoError(t, err)
	res, _ := grid.Get(0, MeasurePresentValue)
	assert.True(t, res.IsSuccess())
}

func TestCalculateConversionWithoutRateDataFails(t *testing.T) {
	builder := &marketdata.Builder{
		Registry: marketdata.StandardRegistry(),
		Mappings: marketdata.NewMappings("test"),
		Source: marketdata.NewStaticSource(map[string]float64{
			"Quote:SPOT/MarketValue": 100,
		}),
	}
	// GBP result, USD reporting, but GBP/USD is not a quoted pair here.
	cfg := marketdata.NewConfig(nil, nil)
	r := &Runner{Rules: spotRules(currency.GBP), Builder: builder, Config: cfg}
	req := CalculationRequest{
		Targets:           []Target{stubTarget{kind: "stub"}},
		Measures:          []Measure{MeasurePresentValue},
		ValuationDate:     valuation,
		ReportingCurrency: currency.USD,
	}

	grid, err := r.Calculate(context.Background(), req)
	assert.NoError(t, err)

	res, _ := grid.Get(0, MeasurePresentValue)
	assert.False(t, res.IsSuccess())
	assert.Equal(t, result.ConversionUnavailable, res.Failure().Reason)
}

func TestCalculateUnsupportedMeasureIsolatedPerCell(t *testing.T) {
	r := &Runner{Rules: spotRules(currency.USD), Builder: runnerBuilder(), Config: runnerConfig()}
	req := CalculationRequest{
		Targets:       []Target{stubTarget{kind: "stub"}},
		Measures:      []Measure{MeasurePresentValue, MeasurePV01},
		ValuationDate: valuation,
	}

	grid, err := r.Calculate(context.Background(), req)
	assert.NoError(t, err)
	assert.Equal(t, 1, grid.FailureCount())

	ok, _ := grid.Get(0, MeasurePresentValue)
	assert.True(t, ok.IsSuccess())

	bad, _ := grid.Get(0, MeasurePV01)
	assert.False(t, bad.IsSuccess())
	assert.Equal(t, result.UnsupportedMeasure, bad.Failure().Reason)
}

func TestCalculateScenarioCountMismatchCaught(t *testing.T) {
	short := stubFunction{calculate: func(Target, ScenarioMarketData) (ScenarioResult, error) {
		return NewDefaultScenarioResult([]any{1.0}), nil
	}}
	g := NewFunctionGroup("short", "stub").Add(MeasurePresentValue, short).MustBuild()
	r := &Runner{Rules: NewPricingRules(g), Builder: runnerBuilder(), Config: runnerConfig()}
	req := CalculationRequest{
		Targets:       []Target{stubTarget{kind: "stub"}},
		Measures:      []Measure{MeasurePresentValue},
		Scenarios:     marketdata.BaseScenarios(3),
		ValuationDate: valuation,
	}

	grid, err := r.Calculate(context.Background(), req)
	assert.NoError(t, err)

	res, _ := grid.Get(0, MeasurePresentValue)
	assert.Equal(t, result.ScenarioMismatch, res.Failure().Reason)
}

func TestCalculateContractViolations(t *testing.T) {
	r := &Runner{Rules: spotRules(currency.USD), Builder: runnerBuilder(), Config: runnerConfig()}

	_, err := r.Calculate(context.Background(), CalculationRequest{
		Measures: []Measure{MeasurePresentValue}, ValuationDate: valuation,
	})
	assert.Error(t, err)

	_, err = r.Calculate(context.Background(), CalculationRequest{
		Targets: []Target{stubTarget{kind: "stub"}}, ValuationDate: valuation,
	})
	assert.Error(t, err)

	_, err = r.Calculate(context.Background(), CalculationRequest{
		Targets: []Target{stubTarget{kind: "stub"}}, Measures: []Measure{MeasurePresentValue},
	})
	assert.Error(t, err)

	_, err = r.Calculate(context.Background(), CalculationRequest{
		Targets:       []Target{nil},
		Measures:      []Measure{MeasurePresentValue},
		ValuationDate: valuation,
	})
	assert.Error(t, err)
}

func TestCalculateEmptyRequirementsSkipsBuild(t *testing.T) {
	constant := stubFunction{calculate: func(_ Target, md ScenarioMarketData) (ScenarioResult, error) {
		values := make([]any, md.ScenarioCount())
		for i := range values {
			values[i] = 42.0
		}
		return NewDefaultScenarioResult(values), nil
	}}
	g := NewFunctionGroup("const", "stub").Add(MeasurePresentValue, constant).MustBuild()
	// A nil source would error if the build ran.
	builder := &marketdata.Builder{Registry: marketdata.StandardRegistry(), Mappings: marketdata.NewMappings("test")}
	r := &Runner{Rules: NewPricingRules(g), Builder: builder, Config: runnerConfig()}

	grid, err := r.Calculate(context.Background(), CalculationRequest{
		Targets:       []Target{stubTarget{kind: "stub"}},
		Measures:      []Measure{MeasurePresentValue},
		ValuationDate: valuation,
	})
	assert.NoError(t, err)
	res, _ := grid.Get(0, MeasurePresentValue)
	sr, err := res.Get()
	assert.NoError(t, err)
	assert.Equal(t, 42.0, sr.At(0))
}
