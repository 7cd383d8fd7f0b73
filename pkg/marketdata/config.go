package marketdata

import (
	"riskgrid/pkg/currency"
	"riskgrid/pkg/refdata"
)

// CurveNode is one quoted point of a curve: the quote ticker and its time in
// years from the valuation date.
type CurveNode struct {
	Ticker       string  `json:"ticker" yaml:"ticker"`
	YearFraction float64 `json:"yearFraction" yaml:"yearFraction"`
}

// CurveConfig lists the nodes a curve is built from.
type CurveConfig struct {
	Nodes []CurveNode `json:"nodes" yaml:"nodes"`
}

// Config carries the market data configuration consulted by functions during
// requirements gathering and build: pair conventions, reference data, the set
// of directly quoted FX pairs, and curve definitions. Assembled once per
// process and read-only afterwards.
type Config struct {
	conventions *currency.Conventions
	refData     *refdata.Chain
	quotedPairs map[currency.Pair]struct{}
	curves      map[CurveKey]CurveConfig
}

// NewConfig constructs an empty config over the given conventions and
// reference data chain. Nil arguments fall back to defaults.
func NewConfig(conv *currency.Conventions, chain *refdata.Chain) *Config {
	if conv == nil {
		conv = currency.DefaultConventions()
	}
	if chain == nil {
		chain = refdata.NewChain(refdata.Standard())
	}
	return &Config{
		conventions: conv,
		refData:     chain,
		quotedPairs: make(map[currency.Pair]struct{}),
		curves:      make(map[CurveKey]CurveConfig),
	}
}

// Conventions returns the pair ordering conventions.
func (c *Config) Conventions() *currency.Conventions { return c.conventions }

// RefData returns the reference data chain.
func (c *Config) RefData() *refdata.Chain { return c.refData }

// AddQuotedPair declares a pair as directly observable. The pair is stored in
// canonical order regardless of the order given.
func (c *Config) AddQuotedPair(pair currency.Pair) *Config {
	c.quotedPairs[c.conventions.Canonical(pair.Base, pair.Quote)] = struct{}{}
	return c
}

// IsQuotedPair reports whether the pair (in either direction) has a direct
// market quote.
func (c *Config) IsQuotedPair(pair currency.Pair) bool {
	_, ok := c.quotedPairs[c.conventions.Canonical(pair.Base, pair.Quote)]
	return ok
}

// AddCurve registers the node layout for a curve key.
func (c *Config) AddCurve(key CurveKey, cfg CurveConfig) *Config {
	c.curves[key] = cfg
	return c
}

// CurveConfig returns the node layout for a curve key.
func (c *Config) CurveConfig(key CurveKey) (CurveConfig, bool) {
	cfg, ok := c.curves[key]
	return cfg, ok
}

// FxQuoteTicker is the quote ticker naming scheme for directly quoted pairs.
func FxQuoteTicker(pair currency.Pair) string {
	return "FX:" + pair.String()
}
