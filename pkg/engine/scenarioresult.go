package engine

import (
	"riskgrid/pkg/currency"
	"riskgrid/pkg/result"
)

// ScenarioResult holds one value per scenario, index aligned with the
// environment's scenario ordering. Immutable once produced.
type ScenarioResult interface {
	ScenarioCount() int
	At(i int) any
}

// DefaultScenarioResult is the plain, non-convertible variant.
type DefaultScenarioResult struct {
	values []any
}

// NewDefaultScenarioResult wraps per-scenario values as-is.
func NewDefaultScenarioResult(values []any) DefaultScenarioResult {
	return DefaultScenarioResult{values: append([]any(nil), values...)}
}

func (r DefaultScenarioResult) ScenarioCount() int { return len(r.values) }
func (r DefaultScenarioResult) At(i int) any       { return r.values[i] }

// CurrencyValuesArray is a scenario result of scalar monetary amounts sharing
// one currency: a currency tag plus one magnitude per scenario.
type CurrencyValuesArray struct {
	ccy    currency.Currency
	values []float64
}

// NewCurrencyValuesArray constructs the array.
func NewCurrencyValuesArray(ccy currency.Currency, values []float64) CurrencyValuesArray {
	return CurrencyValuesArray{ccy: ccy, values: append([]float64(nil), values...)}
}

// Currency returns the currency tag.
func (a CurrencyValuesArray) Currency() currency.Currency { return a.ccy }

// Values returns a copy of the magnitudes.
func (a CurrencyValuesArray) Values() []float64 {
	return append([]float64(nil), a.values...)
}

func (a CurrencyValuesArray) ScenarioCount() int { return len(a.values) }

func (a CurrencyValuesArray) At(i int) any {
	return currency.NewAmount(a.ccy, a.values[i])
}

// ConvertedTo converts every scenario's magnitude into the target currency
// using the index-aligned rates. Converting to the array's own currency is an
// identity and performs no rate lookup. Supplying no rates when conversion is
// needed is a ConversionUnavailable failure; a rate count differing from the
// scenario count is a ScenarioMismatch, never a truncation.
func (a CurrencyValuesArray) ConvertedTo(to currency.Currency, rates []float64) (CurrencyValuesArray, error) {
	if to == a.ccy {
		return NewCurrencyValuesArray(a.ccy, a.values), nil
	}
	if len(rates) == 0 {
		return CurrencyValuesArray{}, result.Failf(result.ConversionUnavailable,
			"no FX rates available to convert %s to %s", a.ccy, to)
	}
	if len(rates) != len(a.values) {
		return CurrencyValuesArray{}, result.Failf(result.ScenarioMismatch,
			"converting %s to %s: %d rates supplied for %d scenario values",
			a.ccy, to, len(rates), len(a.values))
	}
	converted := make([]float64, len(a.values))
	for i, v := range a.values {
		converted[i] = v * rates[i]
	}
	return NewCurrencyValuesArray(to, converted), nil
}

// FxConvertibleList is a scenario result of monetary amounts where each
// scenario's value converts individually, allowing mixed currencies.
type FxConvertibleList struct {
	values []currency.Amount
}

// NewFxConvertibleList wraps per-scenario amounts.
func NewFxConvertibleList(values []currency.Amount) FxConvertibleList {
	return FxConvertibleList{values: append([]currency.Amount(nil), values...)}
}

func (l FxConvertibleList) ScenarioCount() int { return len(l.values) }
func (l FxConvertibleList) At(i int) any       { return l.values[i] }

// RateLookup returns the rate converting from one currency to another for a
// given scenario index.
type RateLookup func(from, to currency.Currency, scenario int) (float64, error)

// ConvertedTo converts each scenario's amount into the target currency.
func (l FxConvertibleList) ConvertedTo(to currency.Currency, rates RateLookup) (CurrencyValuesArray, error) {
	converted := make([]float64, len(l.values))
	for i, v := range l.values {
		if v.Currency == to {
			converted[i] = v.Value
			continue
		}
		rate, err := rates(v.Currency, to, i)
		if err != nil {
			return CurrencyValuesArray{}, err
		}
		converted[i] = v.Value * rate
	}
	return NewCurrencyValuesArray(to, converted), nil
}

// Collect reduces per-scenario values into the right result variant. The
// convertibility check runs once here, at finalization: when conversion is
// requested and every value is a monetary amount, the result is convertible —
// a CurrencyValuesArray when all currencies agree, an FxConvertibleList
// otherwise. Anything else is wrapped as a plain DefaultScenarioResult.
func Collect(values []any, convertCurrencies bool) ScenarioResult {
	if !convertCurrencies {
		return NewDefaultScenarioResult(values)
	}
	amounts := make([]currency.Amount, len(values))
	sameCurrency := true
	for i, v := range values {
		amt, ok := v.(currency.Amount)
		if !ok {
			return NewDefaultScenarioResult(values)
		}
		amounts[i] = amt
		if i > 0 && amt.Currency != amounts[0].Currency {
			sameCurrency = false
		}
	}
	if len(amounts) > 0 && sameCurrency {
		magnitudes := make([]float64, len(amounts))
		for i, amt := range amounts {
			magnitudes[i] = amt.Value
		}
		return NewCurrencyValuesArray(amounts[0].Currency, magnitudes)
	}
	return NewFxConvertibleList(amounts)
}
