package currency

import (
	"fmt"
	"strings"
)

// Currency is a three-letter ISO 4217 code.
type Currency string

// Commonly used currencies.
const (
	AUD Currency = "AUD"
	CAD Currency = "CAD"
	CHF Currency = "CHF"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
	KRW Currency = "KRW"
	NZD Currency = "NZD"
	USD Currency = "USD"
)

// Parse validates and normalises an ISO code.
func Parse(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if len(c) != 3 {
		return "", fmt.Errorf("currency: invalid ISO code %q", code)
	}
	return c, nil
}

func (c Currency) String() string { return string(c) }

// Amount is a monetary amount in a single currency.
type Amount struct {
	Currency Currency `json:"currency"`
	Value    float64  `json:"value"`
}

// NewAmount constructs an Amount.
func NewAmount(ccy Currency, value float64) Amount {
	return Amount{Currency: ccy, Value: value}
}

// Plus adds another amount in the same currency.
func (a Amount) Plus(other Amount) (Amount, error) {
	if a.Currency != other.Currency {
		return Amount{}, fmt.Errorf("currency: cannot add %s to %s", other.Currency, a.Currency)
	}
	return Amount{Currency: a.Currency, Value: a.Value + other.Value}, nil
}

// MultipliedBy scales the amount.
func (a Amount) MultipliedBy(factor float64) Amount {
	return Amount{Currency: a.Currency, Value: a.Value * factor}
}

// Negated flips the sign.
func (a Amount) Negated() Amount {
	return Amount{Currency: a.Currency, Value: -a.Value}
}

func (a Amount) String() string {
	return fmt.Sprintf("%s %.4f", a.Currency, a.Value)
}
