package marketdata

import (
	"fmt"

	"riskgrid/pkg/currency"
	"riskgrid/pkg/result"
)

// FxRateFunction builds FX rate values. A directly quoted pair needs a single
// quote; an unquoted pair is derived via each leg's configured triangulation
// currency. Only single-hop triangulation is supported: if the legs do not
// share a triangulation target the pair has no rate path.
type FxRateFunction struct{}

// KeyType implements Function.
func (FxRateFunction) KeyType() Type { return TypeFxRate }

// Requirements implements Function.
func (FxRateFunction) Requirements(key Key, cfg *Config) (Requirements, error) {
	k, ok := key.(FxRateKey)
	if !ok {
		return Requirements{}, fmt.Errorf("marketdata: FxRateFunction got key %s", key.Name())
	}
	pair := cfg.Conventions().Canonical(k.Pair.Base, k.Pair.Quote)
	if pair.IsIdentity() {
		return Requirements{}, nil
	}
	if cfg.IsQuotedPair(pair) {
		return RequirementsOf(NewQuoteKey(FxQuoteTicker(pair))), nil
	}
	legs, _, err := triangulationLegs(pair, cfg)
	if err != nil {
		return Requirements{}, err
	}
	return RequirementsOf(legs...), nil
}

// Build implements Function.
func (FxRateFunction) Build(key Key, env *Environment, cfg *Config) (Box, error) {
	k, ok := key.(FxRateKey)
	if !ok {
		return Box{}, fmt.Errorf("marketdata: FxRateFunction got key %s", key.Name())
	}
	pair := cfg.Conventions().Canonical(k.Pair.Base, k.Pair.Quote)
	if pair.IsIdentity() {
		rate, err := currency.NewFxRate(pair, 1)
		if err != nil {
			return Box{}, err
		}
		return SharedBox(rate), nil
	}
	if cfg.IsQuotedPair(pair) {
		return buildQuotedRate(pair, env)
	}
	legs, via, err := triangulationLegs(pair, cfg)
	if err != nil {
		return Box{}, err
	}
	if len(legs) == 1 {
		return buildQuotedRate(pair, env)
	}
	return buildCrossRate(pair, legs, via, env)
}

// triangulationLegs determines the keys an unquoted pair derives from. One
// returned key means the pair itself is the quotable leg; two mean a cross
// via the shared triangulation currency.
func triangulationLegs(pair currency.Pair, cfg *Config) ([]Key, currency.Currency, error) {
	triBase := cfg.RefData().TriangulationCurrency(pair.Base)
	triQuote := cfg.RefData().TriangulationCurrency(pair.Quote)
	if triBase == pair.Quote || triQuote == pair.Base {
		return []Key{NewQuoteKey(FxQuoteTicker(pair))}, "", nil
	}
	if triBase == triQuote {
		via := triBase
		conv := cfg.Conventions()
		leg1 := FxRateKey{Pair: conv.Canonical(pair.Base, via)}
		leg2 := FxRateKey{Pair: conv.Canonical(via, pair.Quote)}
		return []Key{leg1, leg2}, via, nil
	}
	return nil, "", result.Failf(result.BuildFailure,
		"no FX rate path for %s: %s triangulates via %s but %s via %s",
		pair, pair.Base, triBase, pair.Quote, triQuote)
}

func buildQuotedRate(pair currency.Pair, env *Environment) (Box, error) {
	quoteKey := NewQuoteKey(FxQuoteTicker(pair))
	n := scenarioSpanOf(env, quoteKey)
	if n == 0 {
		v, err := env.Value(quoteKey, 0)
		if err != nil {
			return Box{}, err
		}
		rate, err := currency.NewFxRate(pair, v.(float64))
		if err != nil {
			return Box{}, err
		}
		return SharedBox(rate), nil
	}
	values := make([]any, n)
	for i := 0; i < n; i++ {
		v, err := env.Value(quoteKey, i)
		if err != nil {
			return Box{}, err
		}
		rate, err := currency.NewFxRate(pair, v.(float64))
		if err != nil {
			return Box{}, err
		}
		values[i] = rate
	}
	return ScenarioBox(values), nil
}

func buildCrossRate(pair currency.Pair, legs []Key, via currency.Currency, env *Environment) (Box, error) {
	n := scenarioSpanOf(env, legs...)
	cross := func(i int) (currency.FxRate, error) {
		v1, err := env.Value(legs[0], i)
		if err != nil {
			return currency.FxRate{}, err
		}
		v2, err := env.Value(legs[1], i)
		if err != nil {
			return currency.FxRate{}, err
		}
		derived, err := currency.Cross(v1.(currency.FxRate), v2.(currency.FxRate), via)
		if err != nil {
			return currency.FxRate{}, err
		}
		// Orient the derived rate to the requested canonical pair.
		r, err := derived.RateFor(pair.Base, pair.Quote)
		if err != nil {
			return currency.FxRate{}, err
		}
		return currency.NewFxRate(pair, r)
	}
	if n == 0 {
		rate, err := cross(0)
		if err != nil {
			return Box{}, err
		}
		return SharedBox(rate), nil
	}
	values := make([]any, n)
	for i := 0; i < n; i++ {
		rate, err := cross(i)
		if err != nil {
			return Box{}, err
		}
		values[i] = rate
	}
	return ScenarioBox(values), nil
}

// scenarioSpanOf returns the environment scenario count when any of the keys
// is scenario-dependent, 0 when all are shared.
func scenarioSpanOf(env *Environment, keys ...Key) int {
	for _, k := range keys {
		if b, ok := env.Box(k); ok && b.IsScenarioDependent() {
			return env.ScenarioCount()
		}
	}
	return 0
}
