package currency

import "fmt"

// FxRate is a single FX rate for an ordered pair: one unit of Pair.Base buys
// Rate units of Pair.Quote.
type FxRate struct {
	Pair Pair    `json:"pair"`
	Rate float64 `json:"rate"`
}

// NewFxRate constructs a rate, rejecting non-positive values and identity
// pairs with a rate other than one.
func NewFxRate(pair Pair, rate float64) (FxRate, error) {
	if rate <= 0 {
		return FxRate{}, fmt.Errorf("currency: fx rate for %s must be positive, got %v", pair, rate)
	}
	if pair.IsIdentity() && rate != 1 {
		return FxRate{}, fmt.Errorf("currency: identity pair %s requires rate 1, got %v", pair, rate)
	}
	return FxRate{Pair: pair, Rate: rate}, nil
}

// RateFor returns the rate converting from one currency of the pair to the
// other, inverting when the requested direction opposes the stored one.
func (r FxRate) RateFor(from, to Currency) (float64, error) {
	switch {
	case from == r.Pair.Base && to == r.Pair.Quote:
		return r.Rate, nil
	case from == r.Pair.Quote && to == r.Pair.Base:
		return 1 / r.Rate, nil
	case from == to && r.Pair.Contains(from):
		return 1, nil
	}
	return 0, fmt.Errorf("currency: rate %s does not cover %s->%s", r.Pair, from, to)
}

// Inverse returns the same rate expressed for the reversed pair.
func (r FxRate) Inverse() FxRate {
	return FxRate{Pair: r.Pair.Inverse(), Rate: 1 / r.Rate}
}

// Cross derives the rate between the non-shared currencies of two rates that
// share exactly one currency. For rates A/C and C/B the result is A/B with
// magnitude rate(A,C) * rate(C,B).
func Cross(a, b FxRate, via Currency) (FxRate, error) {
	if !a.Pair.Contains(via) || !b.Pair.Contains(via) {
		return FxRate{}, fmt.Errorf("currency: %s is not common to %s and %s", via, a.Pair, b.Pair)
	}
	from, err := a.Pair.Other(via)
	if err != nil {
		return FxRate{}, err
	}
	to, err := b.Pair.Other(via)
	if err != nil {
		return FxRate{}, err
	}
	if from == to {
		return FxRate{}, fmt.Errorf("currency: cross of %s and %s via %s is an identity", a.Pair, b.Pair, via)
	}
	leg1, err := a.RateFor(from, via)
	if err != nil {
		return FxRate{}, err
	}
	leg2, err := b.RateFor(via, to)
	if err != nil {
		return FxRate{}, err
	}
	return NewFxRate(NewPair(from, to), leg1*leg2)
}
