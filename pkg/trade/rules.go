package trade

import "riskgrid/pkg/engine"

// DefaultPricingRules wires the built-in function groups. Called once at
// startup; the returned rules are immutable.
func DefaultPricingRules() *engine.PricingRules {
	fxForward := engine.NewFunctionGroup("fx-forward-discounting", TypeFxForward).
		Add(engine.MeasurePresentValue, FxForwardPvFunction{}).
		MustBuild()
	termDeposit := engine.NewFunctionGroup("term-deposit-discounting", TypeTermDeposit).
		Add(engine.MeasurePresentValue, TermDepositPvFunction{}).
		Add(engine.MeasurePV01, TermDepositPv01Function{}).
		Add(engine.MeasureParRate, TermDepositParRateFunction{}).
		MustBuild()
	return engine.NewPricingRules(fxForward, termDeposit)
}
