package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"riskgrid/internal/svc"
	"riskgrid/internal/types"
	"riskgrid/pkg/currency"
	"riskgrid/pkg/engine"
	"riskgrid/pkg/journal"
	"riskgrid/pkg/result"
	"riskgrid/pkg/trade"
)

// CalcHandler prices a portfolio across the configured scenario set and
// returns the (trade, measure) results grid.
func CalcHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CalcRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		calcReq, err := BuildCalculationRequest(&req, svcCtx)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		started := time.Now()
		grid, err := svcCtx.Runner.Calculate(r.Context(), *calcReq)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		resp := RenderResults(grid, calcReq)
		WriteJournal(svcCtx, calcReq, resp, time.Since(started))
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

// HealthHandler reports readiness and the loaded scenario set.
func HealthHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.OkJsonCtx(r.Context(), w, map[string]any{
			"status":    "ok",
			"scenarios": svcCtx.Scenarios.ScenarioCount(),
		})
	}
}

// BuildCalculationRequest translates the transport request into an engine
// request against the service's configured scenarios.
func BuildCalculationRequest(req *types.CalcRequest, svcCtx *svc.ServiceContext) (*engine.CalculationRequest, error) {
	targets, err := ParseTargets(req.Trades)
	if err != nil {
		return nil, err
	}
	measures := make([]engine.Measure, 0, len(req.Measures))
	for _, m := range req.Measures {
		measures = append(measures, engine.Measure(m))
	}
	valuationDate, err := time.Parse("2006-01-02", req.ValuationDate)
	if err != nil {
		return nil, fmt.Errorf("invalid valuation date %q: %w", req.ValuationDate, err)
	}
	reporting := currency.Currency("")
	if req.ReportingCurrency != "" {
		reporting, err = currency.Parse(req.ReportingCurrency)
		if err != nil {
			return nil, err
		}
	} else if svcCtx.Config.Engine.ReportingCurrency != "" {
		reporting, err = currency.Parse(svcCtx.Config.Engine.ReportingCurrency)
		if err != nil {
			return nil, err
		}
	}
	return &engine.CalculationRequest{
		Targets:           targets,
		Measures:          measures,
		Scenarios:         svcCtx.Scenarios,
		ValuationDate:     valuationDate,
		ReportingCurrency: reporting,
	}, nil
}

// ParseTargets converts trade specs into engine targets.
func ParseTargets(specs []types.TradeSpec) ([]engine.Target, error) {
	targets := make([]engine.Target, 0, len(specs))
	for i, spec := range specs {
		switch spec.Kind {
		case "fx-forward":
			if spec.FxForward == nil {
				return nil, fmt.Errorf("trade %d: fx-forward payload missing", i)
			}
			payCcy, err := currency.Parse(spec.FxForward.PayCurrency)
			if err != nil {
				return nil, fmt.Errorf("trade %d: %w", i, err)
			}
			recCcy, err := currency.Parse(spec.FxForward.ReceiveCurrency)
			if err != nil {
				return nil, fmt.Errorf("trade %d: %w", i, err)
			}
			targets = append(targets, trade.FxForward{
				ID:         spec.FxForward.Id,
				Pay:        currency.NewAmount(payCcy, spec.FxForward.PayAmount),
				Receive:    currency.NewAmount(recCcy, spec.FxForward.ReceiveAmount),
				Maturity:   spec.FxForward.Maturity,
				CurveGroup: spec.FxForward.CurveGroup,
			})
		case "term-deposit":
			if spec.TermDeposit == nil {
				return nil, fmt.Errorf("trade %d: term-deposit payload missing", i)
			}
			ccy, err := currency.Parse(spec.TermDeposit.Currency)
			if err != nil {
				return nil, fmt.Errorf("trade %d: %w", i, err)
			}
			targets = append(targets, trade.TermDeposit{
				ID:         spec.TermDeposit.Id,
				Currency:   ccy,
				Notional:   spec.TermDeposit.Notional,
				Rate:       spec.TermDeposit.Rate,
				Maturity:   spec.TermDeposit.Maturity,
				CurveGroup: spec.TermDeposit.CurveGroup,
			})
		default:
			return nil, fmt.Errorf("trade %d: unknown kind %q", i, spec.Kind)
		}
	}
	return targets, nil
}

// RenderResults flattens the results grid into the transport response.
func RenderResults(grid *engine.Results, req *engine.CalculationRequest) *types.CalcResponse {
	resp := &types.CalcResponse{
		ValuationDate:     req.ValuationDate.Format("2006-01-02"),
		ScenarioCount:     req.Scenarios.ScenarioCount(),
		ReportingCurrency: string(req.ReportingCurrency),
		FailedCells:       grid.FailureCount(),
	}
	grid.Each(func(ref engine.CellRef, res result.Result[engine.ScenarioResult]) {
		cell := types.CellResult{Trade: ref.Target, Measure: string(ref.Measure)}
		if f := res.Failure(); f != nil {
			cell.Reason = string(f.Reason)
			cell.Message = f.Message
		} else {
			cell.Ok = true
			cell.Currency, cell.Values = flattenScenarioResult(res.Value())
		}
		resp.Cells = append(resp.Cells, cell)
	})
	return resp
}

// flattenScenarioResult extracts a currency tag and per-scenario magnitudes
// where the result shape allows it.
func flattenScenarioResult(sr engine.ScenarioResult) (string, []float64) {
	switch v := sr.(type) {
	case engine.CurrencyValuesArray:
		return string(v.Currency()), v.Values()
	default:
		values := make([]float64, 0, sr.ScenarioCount())
		for i := 0; i < sr.ScenarioCount(); i++ {
			switch x := sr.At(i).(type) {
			case float64:
				values = append(values, x)
			case currency.Amount:
				values = append(values, x.Value)
			default:
				return "", nil
			}
		}
		return "", values
	}
}

// WriteJournal records a completed run; both the HTTP handler and the batch
// runner call it.
func WriteJournal(svcCtx *svc.ServiceContext, req *engine.CalculationRequest, resp *types.CalcResponse, took time.Duration) {
	if svcCtx.Journal == nil {
		return
	}
	measures := make([]string, 0, len(req.Measures))
	for _, m := range req.Measures {
		measures = append(measures, string(m))
	}
	cells := make([]journal.CellRecord, 0, len(resp.Cells))
	for _, c := range resp.Cells {
		cells = append(cells, journal.CellRecord{
			Target:   c.Trade,
			Measure:  c.Measure,
			Ok:       c.Ok,
			Reason:   c.Reason,
			Message:  c.Message,
			Currency: c.Currency,
			Values:   c.Values,
		})
	}
	rec := &journal.RunRecord{
		ValuationDate:     resp.ValuationDate,
		ScenarioSet:       req.Scenarios.Name,
		ScenarioCount:     resp.ScenarioCount,
		ReportingCurrency: resp.ReportingCurrency,
		Targets:           len(req.Targets),
		Measures:          measures,
		FailedCells:       resp.FailedCells,
		DurationMs:        took.Milliseconds(),
		Cells:             cells,
	}
	if path, err := svcCtx.Journal.WriteRun(rec); err != nil {
		logx.Errorf("journal write failed: %v", err)
	} else {
		logx.Infof("journal written: %s", path)
	}
}
