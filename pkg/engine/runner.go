package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"riskgrid/pkg/currency"
	"riskgrid/pkg/marketdata"
	"riskgrid/pkg/result"
)

const defaultCellWorkers = 8

// CalculationRequest is one engine invocation: the targets, the measures
// requested for every target, the scenario set, and an optional reporting
// currency results are converted into.
type CalculationRequest struct {
	Targets           []Target
	Measures          []Measure
	Scenarios         marketdata.ScenarioDefinition
	ValuationDate     time.Time
	ReportingCurrency currency.Currency
}

// CellRef addresses one cell of the results grid.
type CellRef struct {
	Target  int
	Measure Measure
}

// Results is the (target x measure) grid. Every requested cell is present,
// holding either a scenario result or a typed failure; one failing cell never
// hides its siblings.
type Results struct {
	TargetCount int
	Measures    []Measure
	cells       map[CellRef]result.Result[ScenarioResult]
}

// Get returns the cell for a target index and measure.
func (r *Results) Get(target int, m Measure) (result.Result[ScenarioResult], bool) {
	res, ok := r.cells[CellRef{Target: target, Measure: m}]
	return res, ok
}

// Each visits every cell in target-major, measure order.
func (r *Results) Each(visit func(ref CellRef, res result.Result[ScenarioResult])) {
	for t := 0; t < r.TargetCount; t++ {
		for _, m := range r.Measures {
			ref := CellRef{Target: t, Measure: m}
			if res, ok := r.cells[ref]; ok {
				visit(ref, res)
			}
		}
	}
}

// FailureCount returns the number of failed cells.
func (r *Results) FailureCount() int {
	n := 0
	for _, res := range r.cells {
		if !res.IsSuccess() {
			n++
		}
	}
	return n
}

// Runner drives a calculation request end to end. All fields are wired once
// at startup; the runner itself is stateless across requests and safe for
// concurrent use.
type Runner struct {
	Rules   *PricingRules
	Builder *marketdata.Builder
	Config  *marketdata.Config
	// Workers caps concurrently executing cells. Zero means the default.
	Workers int
}

type cellPlan struct {
	ref CellRef
	fn  CalculationFunction
}

// Calculate runs the request: gather requirements, build market data once,
// then execute every (target, measure) cell in parallel against the shared
// read-only environment. Contract violations error immediately; per-cell
// problems land in the grid.
func (r *Runner) Calculate(ctx context.Context, req CalculationRequest) (*Results, error) {
	if r.Rules == nil || r.Builder == nil || r.Config == nil {
		return nil, errors.New("engine: runner not fully configured")
	}
	if len(req.Targets) == 0 {
		return nil, errors.New("engine: request has no targets")
	}
	if len(req.Measures) == 0 {
		return nil, errors.New("engine: request has no measures")
	}
	for i, t := range req.Targets {
		if t == nil {
			return nil, fmt.Errorf("engine: target %d is nil", i)
		}
	}
	if req.ValuationDate.IsZero() {
		return nil, errors.New("engine: request has no valuation date")
	}

	started := time.Now()
	scenarioCount := req.Scenarios.ScenarioCount()
	grid := &Results{
		TargetCount: len(req.Targets),
		Measures:    append([]Measure(nil), req.Measures...),
		cells:       make(map[CellRef]result.Result[ScenarioResult], len(req.Targets)*len(req.Measures)),
	}

	// Requirements pass: dispatch each cell and gather what it needs. Cells
	// that cannot dispatch or declare requirements fail here, without
	// blocking the rest of the request.
	plans := make([]cellPlan, 0, len(req.Targets)*len(req.Measures))
	reqsBuilder := marketdata.NewRequirementsBuilder()
	for ti, target := range req.Targets {
		if req.ReportingCurrency != "" {
			// Require the conversion rates now; the result currencies are not
			// knowable once calculation has already run.
			if ca, ok := target.(CurrencyAware); ok {
				for _, ccy := range ca.ResultCurrencies() {
					if ccy != req.ReportingCurrency {
						reqsBuilder.Add(marketdata.CanonicalFxRateKey(
							r.Config.Conventions(), ccy, req.ReportingCurrency))
					}
				}
			}
		}
		for _, m := range req.Measures {
			ref := CellRef{Target: ti, Measure: m}
			fn, failure := r.Rules.Lookup(target.TargetType(), m)
			if failure != nil {
				grid.cells[ref] = result.Fail[ScenarioResult](failure)
				continue
			}
			cellReqs, err := fn.Requirements(target, r.Config)
			if err != nil {
				grid.cells[ref] = result.FailErr[ScenarioResult](err)
				continue
			}
			reqsBuilder.Merge(cellReqs)
			plans = append(plans, cellPlan{ref: ref, fn: fn})
		}
	}

	merged := reqsBuilder.Build()
	var env *marketdata.Environment
	if merged.IsEmpty() {
		// Constant or target-only measures: skip the market data build.
		envb, err := marketdata.NewEnvironmentBuilder(scenarioCount, req.ValuationDate)
		if err != nil {
			return nil, err
		}
		env = envb.Build()
	} else {
		var err error
		env, err = r.Builder.Build(ctx, merged, req.Scenarios, r.Config, req.ValuationDate)
		if err != nil {
			return nil, err
		}
	}
	view := NewView(env, r.Config)

	workers := r.Workers
	if workers <= 0 {
		workers = defaultCellWorkers
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, plan := range plans {
		if ctx.Err() != nil {
			// Stop scheduling; completed cells stay valid.
			mu.Lock()
			grid.cells[plan.ref] = result.Fail[ScenarioResult](result.Failf(result.BuildFailure,
				"calculation cancelled before target %d measure %s was scheduled",
				plan.ref.Target, plan.ref.Measure))
			mu.Unlock()
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(p cellPlan) {
			defer wg.Done()
			defer func() { <-sem }()
			res := r.executeCell(p, req.Targets[p.ref.Target], view, scenarioCount, req.ReportingCurrency)
			mu.Lock()
			grid.cells[p.ref] = res
			mu.Unlock()
		}(plan)
	}
	wg.Wait()

	logx.Infof("engine: %d targets x %d measures over %d scenarios in %s (%d failed cells)",
		len(req.Targets), len(req.Measures), scenarioCount,
		time.Since(started).Round(time.Millisecond), grid.FailureCount())
	return grid, nil
}

func (r *Runner) executeCell(p cellPlan, target Target, view ScenarioMarketData,
	scenarioCount int, reporting currency.Currency) result.Result[ScenarioResult] {

	sr, err := p.fn.Calculate(target, view)
	if err != nil {
		return result.FailErr[ScenarioResult](err)
	}
	if sr.ScenarioCount() != scenarioCount {
		return result.Fail[ScenarioResult](result.Failf(result.ScenarioMismatch,
			"target %d measure %s produced %d values for %d scenarios",
			p.ref.Target, p.ref.Measure, sr.ScenarioCount(), scenarioCount))
	}
	if reporting == "" {
		return result.Ok(sr)
	}
	return convertResult(sr, reporting, view)
}

// convertResult converts convertible results into the reporting currency.
// Non-convertible results pass through unchanged.
func convertResult(sr ScenarioResult, to currency.Currency, view ScenarioMarketData) result.Result[ScenarioResult] {
	switch v := sr.(type) {
	case CurrencyValuesArray:
		if v.Currency() == to {
			return result.Ok(sr)
		}
		rates, err := scenarioRates(view, v.Currency(), to)
		if err != nil {
			return result.FailErr[ScenarioResult](err)
		}
		converted, err := v.ConvertedTo(to, rates)
		if err != nil {
			return result.FailErr[ScenarioResult](err)
		}
		return result.Ok[ScenarioResult](converted)
	case FxConvertibleList:
		converted, err := v.ConvertedTo(to, func(from, target currency.Currency, i int) (float64, error) {
			rate, err := view.FxRate(from, target, i)
			if err != nil {
				if f, ok := err.(*result.Failure); ok && f.Reason == result.MissingMarketData {
					return 0, result.Failf(result.ConversionUnavailable,
						"no FX rate data for %s/%s: %s", from, target, f.Message)
				}
				return 0, err
			}
			return rate, nil
		})
		if err != nil {
			return result.FailErr[ScenarioResult](err)
		}
		return result.Ok[ScenarioResult](converted)
	default:
		return result.Ok(sr)
	}
}
