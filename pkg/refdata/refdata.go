// Package refdata provides static reference data (currency conventions, day
// counts, floating rate names) merged from a priority-ordered chain of YAML
// sources. Higher-priority sources win per entry; a source may also shut out
// lower-priority sources for a whole section.
package refdata

import (
	"fmt"
	"sort"
	"strings"

	"riskgrid/pkg/currency"
)

// Section names used for per-section exclusion.
const (
	SectionCurrencies        = "currencies"
	SectionDayCounts         = "dayCounts"
	SectionFloatingRateNames = "floatingRateNames"
)

// CurrencyInfo describes the conventions of one currency.
type CurrencyInfo struct {
	MinorUnitDigits       int               `yaml:"minorUnitDigits"`
	TriangulationCurrency currency.Currency `yaml:"triangulationCurrency"`
	Historic              bool              `yaml:"historic"`
}

// DayCount describes a day count convention by name.
type DayCount struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// FloatingRateName describes a floating rate index convention.
type FloatingRateName struct {
	Name      string `yaml:"name"`
	IndexKind string `yaml:"indexKind"` // ibor | overnight
	Currency  string `yaml:"currency"`
}

// Source is one layer of the reference data chain.
type Source struct {
	Name     string `yaml:"name"`
	Priority int    `yaml:"priority"`
	// ExcludeBelow lists sections for which lower-priority sources are ignored.
	ExcludeBelow      []string                    `yaml:"excludeBelow"`
	Currencies        map[string]CurrencyInfo     `yaml:"currencies"`
	DayCounts         map[string]DayCount         `yaml:"dayCounts"`
	FloatingRateNames map[string]FloatingRateName `yaml:"floatingRateNames"`
}

func (s *Source) excludesBelow(section string) bool {
	for _, e := range s.ExcludeBelow {
		if strings.EqualFold(e, section) {
			return true
		}
	}
	return false
}

// Chain is the merged view over all sources. Immutable once built.
type Chain struct {
	currencies        map[currency.Currency]CurrencyInfo
	dayCounts         map[string]DayCount
	floatingRateNames map[string]FloatingRateName
}

// NewChain merges sources by descending priority. Within equal priority the
// earlier source wins. An entry already claimed by a higher layer is never
// overwritten, and a layer that excludes a section stops the merge of that
// section for everything below it.
func NewChain(sources ...Source) *Chain {
	ordered := make([]Source, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	c := &Chain{
		currencies:        make(map[currency.Currency]CurrencyInfo),
		dayCounts:         make(map[string]DayCount),
		floatingRateNames: make(map[string]FloatingRateName),
	}
	ccyOpen, dcOpen, frnOpen := true, true, true
	for i := range ordered {
		src := &ordered[i]
		if ccyOpen {
			for code, info := range src.Currencies {
				key := currency.Currency(strings.ToUpper(code))
				if _, taken := c.currencies[key]; !taken {
					c.currencies[key] = info
				}
			}
			ccyOpen = !src.excludesBelow(SectionCurrencies)
		}
		if dcOpen {
			for name, dc := range src.DayCounts {
				if _, taken := c.dayCounts[name]; !taken {
					c.dayCounts[name] = dc
				}
			}
			dcOpen = !src.excludesBelow(SectionDayCounts)
		}
		if frnOpen {
			for name, frn := range src.FloatingRateNames {
				if _, taken := c.floatingRateNames[name]; !taken {
					c.floatingRateNames[name] = frn
				}
			}
			frnOpen = !src.excludesBelow(SectionFloatingRateNames)
		}
	}
	return c
}

// LookupCurrency returns conventions for an ISO code.
func (c *Chain) LookupCurrency(code currency.Currency) (CurrencyInfo, error) {
	info, ok := c.currencies[code]
	if !ok {
		return CurrencyInfo{}, fmt.Errorf("refdata: unknown currency %s", code)
	}
	return info, nil
}

// TriangulationCurrency returns the configured triangulation currency,
// defaulting to USD for currencies without an explicit entry.
func (c *Chain) TriangulationCurrency(code currency.Currency) currency.Currency {
	if info, ok := c.currencies[code]; ok && info.TriangulationCurrency != "" {
		return info.TriangulationCurrency
	}
	return currency.USD
}

// LookupDayCount returns a day count convention by name.
func (c *Chain) LookupDayCount(name string) (DayCount, error) {
	dc, ok := c.dayCounts[name]
	if !ok {
		return DayCount{}, fmt.Errorf("refdata: unknown day count %s", name)
	}
	return dc, nil
}

// LookupFloatingRateName returns a floating rate convention by name.
func (c *Chain) LookupFloatingRateName(name string) (FloatingRateName, error) {
	frn, ok := c.floatingRateNames[name]
	if !ok {
		return FloatingRateName{}, fmt.Errorf("refdata: unknown floating rate name %s", name)
	}
	return frn, nil
}

// Standard returns the built-in baseline source, always present at the lowest
// priority so user files only need to carry overrides.
func Standard() Source {
	return Source{
		Name:     "standard",
		Priority: -1,
		Currencies: map[string]CurrencyInfo{
			"USD": {MinorUnitDigits: 2, TriangulationCurrency: currency.USD},
			"EUR": {MinorUnitDigits: 2, TriangulationCurrency: currency.USD},
			"GBP": {MinorUnitDigits: 2, TriangulationCurrency: currency.USD},
			"CHF": {MinorUnitDigits: 2, TriangulationCurrency: currency.USD},
			"JPY": {MinorUnitDigits: 0, TriangulationCurrency: currency.USD},
			"AUD": {MinorUnitDigits: 2, TriangulationCurrency: currency.USD},
			"NZD": {MinorUnitDigits: 2, TriangulationCurrency: currency.USD},
			"CAD": {MinorUnitDigits: 2, TriangulationCurrency: currency.USD},
			"KRW": {MinorUnitDigits: 0, TriangulationCurrency: currency.USD},
		},
		DayCounts: map[string]DayCount{
			"Act/360":  {Name: "Act/360", Description: "actual days over 360"},
			"Act/365F": {Name: "Act/365F", Description: "actual days over fixed 365"},
			"30/360":   {Name: "30/360", Description: "30 day months over 360"},
		},
		FloatingRateNames: map[string]FloatingRateName{
			"USD-SOFR":       {Name: "USD-SOFR", IndexKind: "overnight", Currency: "USD"},
			"EUR-ESTR":       {Name: "EUR-ESTR", IndexKind: "overnight", Currency: "EUR"},
			"GBP-SONIA":      {Name: "GBP-SONIA", IndexKind: "overnight", Currency: "GBP"},
			"EUR-EURIBOR-3M": {Name: "EUR-EURIBOR-3M", IndexKind: "ibor", Currency: "EUR"},
		},
	}
}
