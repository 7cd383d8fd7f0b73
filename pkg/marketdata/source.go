package marketdata

import "context"

// ObservableSource supplies raw observable values (quotes, fixings) for
// mapped IDs. Implementations return a map holding an entry for every ID they
// could source; absent entries become MissingMarketData failures. A source
// error aborts the whole build, since nothing downstream can proceed.
type ObservableSource interface {
	Lookup(ctx context.Context, ids []ID) (map[ID]float64, error)
}

// StaticSource is an in-memory ObservableSource keyed by key name, used for
// tests and file-loaded data. The feed of an ID is ignored.
type StaticSource struct {
	values map[string]float64
}

// NewStaticSource constructs a source over a name-to-value map.
func NewStaticSource(values map[string]float64) *StaticSource {
	copied := make(map[string]float64, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &StaticSource{values: copied}
}

// Set adds or replaces one value.
func (s *StaticSource) Set(name string, v float64) *StaticSource {
	s.values[name] = v
	return s
}

// Lookup implements ObservableSource.
func (s *StaticSource) Lookup(_ context.Context, ids []ID) (map[ID]float64, error) {
	out := make(map[ID]float64, len(ids))
	for _, id := range ids {
		if v, ok := s.values[id.Key.Name()]; ok {
			out[id] = v
		}
	}
	return out, nil
}
