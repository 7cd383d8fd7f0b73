package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"riskgrid/internal/cli"
	"riskgrid/internal/config"
	"riskgrid/internal/handler"
	"riskgrid/internal/svc"
	"riskgrid/internal/types"
	"riskgrid/pkg/marketdata"
)

var (
	configFile    = flag.String("f", "etc/riskgrid.yaml", "the config file")
	portfolioFile = flag.String("portfolio", "etc/portfolio.yaml", "the portfolio file")
	measuresFlag  = flag.String("measures", "PresentValue", "comma-separated measures")
	valuationFlag = flag.String("date", "", "valuation date (YYYY-MM-DD), defaults to today")
	reportingFlag = flag.String("reporting", "", "reporting currency override")
	replayFlag    = flag.String("replay", "", "market data snapshot file to replay as the quote source")
)

// portfolio is the on-disk portfolio shape for batch runs.
type portfolio struct {
	Trades []portfolioTrade `yaml:"trades"`
}

type portfolioTrade struct {
	Kind        string                 `yaml:"kind"`
	FxForward   *types.FxForwardSpec   `yaml:"fxForward"`
	TermDeposit *types.TermDepositSpec `yaml:"termDeposit"`
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("[main] Starting batch calculation run...")

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("[main] Failed to load config: %v", err)
	}
	for _, line := range cli.ConfigSummaryLines(cfg) {
		log.Printf("  - %s", line)
	}

	svcCtx := svc.NewServiceContext(*cfg)

	if *replayFlag != "" {
		snap, err := marketdata.LoadSnapshotFile(*replayFlag)
		if err != nil {
			log.Fatalf("[main] Failed to load snapshot: %v", err)
		}
		svcCtx.Runner.Builder.Source = snap.Source()
		log.Printf("[main] Replaying %d quotes from snapshot %q taken %s",
			len(snap.Quotes), snap.Name, snap.TakenAt.Format(time.RFC3339))
	}

	pf, err := loadPortfolio(*portfolioFile)
	if err != nil {
		log.Fatalf("[main] Failed to load portfolio: %v", err)
	}

	valuationDate := *valuationFlag
	if valuationDate == "" {
		valuationDate = time.Now().Format("2006-01-02")
	}

	req := &types.CalcRequest{
		ValuationDate:     valuationDate,
		Measures:          splitMeasures(*measuresFlag),
		ReportingCurrency: *reportingFlag,
	}
	for _, t := range pf.Trades {
		req.Trades = append(req.Trades, types.TradeSpec{
			Kind:        t.Kind,
			FxForward:   t.FxForward,
			TermDeposit: t.TermDeposit,
		})
	}

	calcReq, err := handler.BuildCalculationRequest(req, svcCtx)
	if err != nil {
		log.Fatalf("[main] Invalid request: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	grid, err := svcCtx.Runner.Calculate(ctx, *calcReq)
	if err != nil {
		log.Fatalf("[main] Calculation failed: %v", err)
	}
	elapsed := time.Since(started)

	resp := handler.RenderResults(grid, calcReq)
	handler.WriteJournal(svcCtx, calcReq, resp, elapsed)
	log.Printf("[main] %d trades x %d measures over %d scenarios in %dms (%d failed cells)",
		len(req.Trades), len(req.Measures), resp.ScenarioCount, elapsed.Milliseconds(), resp.FailedCells)

	for _, cell := range resp.Cells {
		if !cell.Ok {
			log.Printf("[cell %d/%s] [FAIL] %s: %s", cell.Trade, cell.Measure, cell.Reason, cell.Message)
			continue
		}
		switch {
		case len(cell.Values) == 0:
			log.Printf("[cell %d/%s] [OK]", cell.Trade, cell.Measure)
		case cell.Currency != "":
			log.Printf("[cell %d/%s] [OK] %s base=%.4f (%d scenarios)",
				cell.Trade, cell.Measure, cell.Currency, cell.Values[0], len(cell.Values))
		default:
			log.Printf("[cell %d/%s] [OK] base=%.6f (%d scenarios)",
				cell.Trade, cell.Measure, cell.Values[0], len(cell.Values))
		}
	}

	if resp.FailedCells > 0 {
		os.Exit(1)
	}
}

func loadPortfolio(path string) (*portfolio, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pf portfolio
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, err
	}
	return &pf, nil
}

func splitMeasures(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if clean := strings.TrimSpace(p); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}
