package config

import (
	"fmt"

	"riskgrid/pkg/confkit"
	"riskgrid/pkg/currency"
	"riskgrid/pkg/marketdata"
	"riskgrid/pkg/refdata"
)

// BuildConventions assembles pair ordering conventions from the market data
// section, falling back to the built-in defaults when nothing is configured.
func (c *Config) BuildConventions() (*currency.Conventions, error) {
	md := c.MarketData.Value
	if md == nil || (len(md.PairTable) == 0 && len(md.PairPriority) == 0) {
		return currency.DefaultConventions(), nil
	}
	pairs := make([]currency.Pair, 0, len(md.PairTable))
	for _, raw := range md.PairTable {
		p, err := currency.ParsePair(raw)
		if err != nil {
			return nil, fmt.Errorf("config: pair table entry %q: %w", raw, err)
		}
		pairs = append(pairs, p)
	}
	priority := make([]currency.Currency, 0, len(md.PairPriority))
	for _, raw := range md.PairPriority {
		ccy, err := currency.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("config: pair priority entry %q: %w", raw, err)
		}
		priority = append(priority, ccy)
	}
	return currency.NewConventions(pairs, priority), nil
}

// BuildRefDataChain loads the configured reference data sources, resolved
// against the config base directory.
func (c *Config) BuildRefDataChain() (*refdata.Chain, error) {
	paths := make([]string, 0, len(c.RefDataSources))
	for _, p := range c.RefDataSources {
		paths = append(paths, confkit.ResolvePath(c.baseDir, p))
	}
	return refdata.LoadChain(paths...)
}

// BuildMarketDataConfig assembles the immutable market data configuration
// consulted by market data functions.
func (c *Config) BuildMarketDataConfig() (*marketdata.Config, error) {
	conv, err := c.BuildConventions()
	if err != nil {
		return nil, err
	}
	chain, err := c.BuildRefDataChain()
	if err != nil {
		return nil, err
	}
	mdCfg := marketdata.NewConfig(conv, chain)
	md := c.MarketData.Value
	if md == nil {
		return mdCfg, nil
	}
	for _, raw := range md.QuotedPairs {
		p, err := currency.ParsePair(raw)
		if err != nil {
			return nil, fmt.Errorf("config: quoted pair %q: %w", raw, err)
		}
		mdCfg.AddQuotedPair(p)
	}
	for _, curve := range md.Curves {
		ccy, err := currency.Parse(curve.Currency)
		if err != nil {
			return nil, fmt.Errorf("config: curve %s currency: %w", curve.Group, err)
		}
		mdCfg.AddCurve(
			marketdata.CurveKey{Group: curve.Group, Currency: ccy},
			marketdata.CurveConfig{Nodes: curve.Nodes},
		)
	}
	return mdCfg, nil
}

// BuildMappings assembles the feed mapping layer.
func (c *Config) BuildMappings() *marketdata.Mappings {
	feed := marketdata.Feed("")
	if md := c.MarketData.Value; md != nil {
		feed = marketdata.Feed(md.DefaultFeed)
	}
	return marketdata.NewMappings(feed)
}

// ScenarioDefinition returns the configured scenario set, defaulting to a
// single base scenario.
func (c *Config) ScenarioDefinition() marketdata.ScenarioDefinition {
	if c.Scenarios.Value != nil {
		return *c.Scenarios.Value
	}
	return marketdata.ScenarioDefinition{}
}
