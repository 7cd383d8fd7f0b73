package marketdata

import (
	"fmt"
	"math"
	"sort"

	"riskgrid/pkg/currency"
)

// Curve is a zero-rate discount curve. Rates are continuously compounded and
// interpolated linearly in time; extrapolation is flat.
type Curve struct {
	Group    string
	Currency currency.Currency
	Times    []float64
	Zeros    []float64
}

// NewCurve constructs a curve, sorting nodes by time.
func NewCurve(key CurveKey, times, zeros []float64) (*Curve, error) {
	if len(times) == 0 || len(times) != len(zeros) {
		return nil, fmt.Errorf("marketdata: curve %s needs matching non-empty nodes, got %d times and %d rates",
			key.Name(), len(times), len(zeros))
	}
	idx := make([]int, len(times))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return times[idx[a]] < times[idx[b]] })
	st := make([]float64, len(times))
	sz := make([]float64, len(times))
	for i, j := range idx {
		st[i], sz[i] = times[j], zeros[j]
	}
	return &Curve{Group: key.Group, Currency: key.Currency, Times: st, Zeros: sz}, nil
}

// ZeroRate returns the interpolated zero rate at time t (in years).
func (c *Curve) ZeroRate(t float64) float64 {
	n := len(c.Times)
	if t <= c.Times[0] {
		return c.Zeros[0]
	}
	if t >= c.Times[n-1] {
		return c.Zeros[n-1]
	}
	i := sort.SearchFloat64s(c.Times, t)
	t0, t1 := c.Times[i-1], c.Times[i]
	z0, z1 := c.Zeros[i-1], c.Zeros[i]
	return z0 + (z1-z0)*(t-t0)/(t1-t0)
}

// DiscountFactor returns exp(-z(t) * t), 1 for non-positive t.
func (c *Curve) DiscountFactor(t float64) float64 {
	if t <= 0 {
		return 1
	}
	return math.Exp(-c.ZeroRate(t) * t)
}

// DiscountCurveFunction builds discount curves from the quoted zero rates of
// the nodes declared in the market data config.
type DiscountCurveFunction struct{}

// KeyType implements Function.
func (DiscountCurveFunction) KeyType() Type { return TypeCurve }

// Requirements implements Function.
func (DiscountCurveFunction) Requirements(key Key, cfg *Config) (Requirements, error) {
	k, ok := key.(CurveKey)
	if !ok {
		return Requirements{}, fmt.Errorf("marketdata: DiscountCurveFunction got key %s", key.Name())
	}
	curveCfg, ok := cfg.CurveConfig(k)
	if !ok {
		return Requirements{}, fmt.Errorf("marketdata: no curve configuration for %s", k.Name())
	}
	b := NewRequirementsBuilder()
	for _, node := range curveCfg.Nodes {
		b.Add(NewQuoteKey(node.Ticker))
	}
	return b.Build(), nil
}

// Build implements Function.
func (DiscountCurveFunction) Build(key Key, env *Environment, cfg *Config) (Box, error) {
	k, ok := key.(CurveKey)
	if !ok {
		return Box{}, fmt.Errorf("marketdata: DiscountCurveFunction got key %s", key.Name())
	}
	curveCfg, ok := cfg.CurveConfig(k)
	if !ok {
		return Box{}, fmt.Errorf("marketdata: no curve configuration for %s", k.Name())
	}
	nodeKeys := make([]Key, len(curveCfg.Nodes))
	times := make([]float64, len(curveCfg.Nodes))
	for i, node := range curveCfg.Nodes {
		nodeKeys[i] = NewQuoteKey(node.Ticker)
		times[i] = node.YearFraction
	}

	buildOne := func(scenario int) (*Curve, error) {
		zeros := make([]float64, len(nodeKeys))
		for i, nk := range nodeKeys {
			v, err := env.Value(nk, scenario)
			if err != nil {
				return nil, err
			}
			zeros[i] = v.(float64)
		}
		return NewCurve(k, times, zeros)
	}

	n := scenarioSpanOf(env, nodeKeys...)
	if n == 0 {
		curve, err := buildOne(0)
		if err != nil {
			return Box{}, err
		}
		return SharedBox(curve), nil
	}
	values := make([]any, n)
	for i := 0; i < n; i++ {
		curve, err := buildOne(i)
		if err != nil {
			return Box{}, err
		}
		values[i] = curve
	}
	return ScenarioBox(values), nil
}
