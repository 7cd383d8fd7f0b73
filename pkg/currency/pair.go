package currency

import (
	"fmt"
	"strings"
)

// Pair is an ordered currency pair. Base is the unit currency, Quote the
// currency a rate is expressed in: a EUR/USD rate of 1.10 means 1 EUR = 1.10 USD.
type Pair struct {
	Base  Currency `json:"base"`
	Quote Currency `json:"quote"`
}

// NewPair constructs a pair in the given order.
func NewPair(base, quote Currency) Pair {
	return Pair{Base: base, Quote: quote}
}

// ParsePair parses "EUR/USD" style notation.
func ParsePair(s string) (Pair, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return Pair{}, fmt.Errorf("currency: invalid pair %q", s)
	}
	base, err := Parse(parts[0])
	if err != nil {
		return Pair{}, err
	}
	quote, err := Parse(parts[1])
	if err != nil {
		return Pair{}, err
	}
	return Pair{Base: base, Quote: quote}, nil
}

// Inverse swaps base and quote.
func (p Pair) Inverse() Pair { return Pair{Base: p.Quote, Quote: p.Base} }

// Contains reports whether ccy is one leg of the pair.
func (p Pair) Contains(ccy Currency) bool { return p.Base == ccy || p.Quote == ccy }

// IsIdentity reports whether both legs are the same currency.
func (p Pair) IsIdentity() bool { return p.Base == p.Quote }

// Other returns the opposite leg to ccy.
func (p Pair) Other(ccy Currency) (Currency, error) {
	switch ccy {
	case p.Base:
		return p.Quote, nil
	case p.Quote:
		return p.Base, nil
	}
	return "", fmt.Errorf("currency: %s is not part of pair %s", ccy, p)
}

func (p Pair) String() string { return string(p.Base) + "/" + string(p.Quote) }

// Conventions determines the market-convention ordering of a currency pair.
// Ordering is resolved in three steps: an explicit pair table, then a
// priority-ordered currency list, then lexicographic ISO ordering. Each step
// is deterministic and direction independent, so any two currencies map to
// exactly one canonical pair however the request was phrased.
type Conventions struct {
	pairs    map[Pair]struct{}
	priority map[Currency]int
}

// NewConventions builds a Conventions from an explicit pair table and a
// priority list, highest priority first.
func NewConventions(pairs []Pair, priority []Currency) *Conventions {
	c := &Conventions{
		pairs:    make(map[Pair]struct{}, len(pairs)),
		priority: make(map[Currency]int, len(priority)),
	}
	for _, p := range pairs {
		c.pairs[p] = struct{}{}
	}
	for i, ccy := range priority {
		c.priority[ccy] = len(priority) - i
	}
	return c
}

// DefaultConventions covers the major market-convention pairs. The priority
// list follows the usual FX base-currency hierarchy.
func DefaultConventions() *Conventions {
	return NewConventions(
		[]Pair{
			{EUR, USD}, {EUR, GBP}, {EUR, CHF}, {EUR, JPY},
			{GBP, USD}, {GBP, CHF}, {GBP, JPY},
			{AUD, USD}, {NZD, USD},
			{USD, CAD}, {USD, CHF}, {USD, JPY}, {USD, KRW},
		},
		[]Currency{EUR, GBP, AUD, NZD, USD, CAD, CHF, JPY},
	)
}

// Canonical returns the market-convention pair for the two currencies.
func (c *Conventions) Canonical(a, b Currency) Pair {
	if _, ok := c.pairs[Pair{Base: a, Quote: b}]; ok {
		return Pair{Base: a, Quote: b}
	}
	if _, ok := c.pairs[Pair{Base: b, Quote: a}]; ok {
		return Pair{Base: b, Quote: a}
	}
	pa, pb := c.priority[a], c.priority[b]
	if pa > pb {
		return Pair{Base: a, Quote: b}
	}
	if pb > pa {
		return Pair{Base: b, Quote: a}
	}
	if a < b {
		return Pair{Base: a, Quote: b}
	}
	return Pair{Base: b, Quote: a}
}

// IsCanonical reports whether p is already in convention order.
func (c *Conventions) IsCanonical(p Pair) bool {
	return c.Canonical(p.Base, p.Quote) == p
}
