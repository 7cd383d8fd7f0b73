// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package types

// TradeSpec describes one portfolio entry in a calculation request. Kind
// selects which of the embedded trade payloads is populated.
type TradeSpec struct {
	Kind        string           `json:"kind"` // fx-forward | term-deposit
	FxForward   *FxForwardSpec   `json:"fxForward,optional"`
	TermDeposit *TermDepositSpec `json:"termDeposit,optional"`
}

type FxForwardSpec struct {
	Id              string  `json:"id"`
	PayCurrency     string  `json:"payCurrency"`
	PayAmount       float64 `json:"payAmount"`
	ReceiveCurrency string  `json:"receiveCurrency"`
	ReceiveAmount   float64 `json:"receiveAmount"`
	Maturity        float64 `json:"maturity"` // years from valuation
	CurveGroup      string  `json:"curveGroup,optional"`
}

type TermDepositSpec struct {
	Id         string  `json:"id"`
	Currency   string  `json:"currency"`
	Notional   float64 `json:"notional"`
	Rate       float64 `json:"rate"`
	Maturity   float64 `json:"maturity"`
	CurveGroup string  `json:"curveGroup,optional"`
}

type CalcRequest struct {
	Trades            []TradeSpec `json:"trades"`
	Measures          []string    `json:"measures"`
	ValuationDate     string      `json:"valuationDate"` // YYYY-MM-DD
	ReportingCurrency string      `json:"reportingCurrency,optional"`
}

// CellResult is one (trade, measure) cell of the response grid. Failed cells
// carry a reason code and message instead of values.
type CellResult struct {
	Trade    int       `json:"trade"`
	Measure  string    `json:"measure"`
	Ok       bool      `json:"ok"`
	Reason   string    `json:"reason,omitempty"`
	Message  string    `json:"message,omitempty"`
	Currency string    `json:"currency,omitempty"`
	Values   []float64 `json:"values,omitempty"`
}

type CalcResponse struct {
	ValuationDate     string       `json:"valuationDate"`
	ScenarioCount     int          `json:"scenarioCount"`
	ReportingCurrency string       `json:"reportingCurrency,omitempty"`
	FailedCells       int          `json:"failedCells"`
	Cells             []CellResult `json:"cells"`
}
