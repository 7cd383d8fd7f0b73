// Package marketdata models the market data needed by calculations: typed
// keys identifying individual pieces of data, requirements gathering, feed
// mappings, and an immutable scenario-indexed environment built by registered
// market data functions.
package marketdata

import (
	"riskgrid/pkg/currency"
)

// Type is the stable identifier of a key's kind. Functions register against
// a Type, so dispatch never inspects concrete key structs at runtime.
type Type string

const (
	// TypeQuote is an externally observable scalar quote.
	TypeQuote Type = "Quote"
	// TypeFixing is an observed index fixing.
	TypeFixing Type = "Fixing"
	// TypeFxRate is an FX rate, quoted directly or derived by triangulation.
	TypeFxRate Type = "FxRate"
	// TypeCurve is a discount curve derived from quoted rates.
	TypeCurve Type = "DiscountCurve"
)

// Key identifies one named piece of market data. Implementations are small
// comparable value structs so keys can index maps directly.
type Key interface {
	// Type returns the stable kind identifier.
	Type() Type
	// Name returns a stable, human-readable identity, unique per key.
	Name() string
	// Observable reports whether the value is sourced externally rather than
	// built by a market data function.
	Observable() bool
}

// QuoteKey identifies a single observable scalar quote.
type QuoteKey struct {
	Ticker string
	Field  string
}

// FieldMarketValue is the default quote field.
const FieldMarketValue = "MarketValue"

// NewQuoteKey constructs a QuoteKey with the default field.
func NewQuoteKey(ticker string) QuoteKey {
	return QuoteKey{Ticker: ticker, Field: FieldMarketValue}
}

func (k QuoteKey) Type() Type       { return TypeQuote }
func (k QuoteKey) Name() string     { return "Quote:" + k.Ticker + "/" + k.Field }
func (k QuoteKey) Observable() bool { return true }

// FixingKey identifies an observed index fixing.
type FixingKey struct {
	Index string
}

func (k FixingKey) Type() Type       { return TypeFixing }
func (k FixingKey) Name() string     { return "Fixing:" + k.Index }
func (k FixingKey) Observable() bool { return true }

// FxRateKey identifies the FX rate for a currency pair. Keys are expected to
// hold the market-convention pair; use CanonicalFxRateKey to normalise.
type FxRateKey struct {
	Pair currency.Pair
}

func (k FxRateKey) Type() Type       { return TypeFxRate }
func (k FxRateKey) Name() string     { return "FxRate:" + k.Pair.String() }
func (k FxRateKey) Observable() bool { return false }

// CanonicalFxRateKey returns the key for the convention-ordered pair of the
// two currencies.
func CanonicalFxRateKey(conv *currency.Conventions, a, b currency.Currency) FxRateKey {
	return FxRateKey{Pair: conv.Canonical(a, b)}
}

// CurveKey identifies a discount curve within a named curve group.
type CurveKey struct {
	Group    string
	Currency currency.Currency
}

func (k CurveKey) Type() Type       { return TypeCurve }
func (k CurveKey) Name() string     { return "Curve:" + k.Group + "/" + string(k.Currency) }
func (k CurveKey) Observable() bool { return false }

// Feed names the source a mapped observable is queried from.
type Feed string

const (
	// FeedNone marks keys that need no feed (derived data).
	FeedNone Feed = "None"
	// FeedNoMatch marks observables with no configured feed mapping. Build
	// turns these into MissingMarketData failures instead of aborting.
	FeedNoMatch Feed = "NoMatch"
)

// ID is a key bound to the feed resolved by the mapping layer.
type ID struct {
	Key  Key
	Feed Feed
}

// IsMissing reports whether the mapping layer found no feed for the key.
func (id ID) IsMissing() bool { return id.Feed == FeedNoMatch }

func (id ID) String() string { return string(id.Feed) + "/" + id.Key.Name() }
