package marketdata

// Requirements is the set of keys a calculation needs, split into observable
// keys to source externally and derived keys needing a registered function.
// Key order is insertion order with duplicates removed, which keeps builds
// deterministic. Immutable once built.
type Requirements struct {
	observables []Key
	derived     []Key
}

// Observables returns the observable keys in insertion order.
func (r Requirements) Observables() []Key { return r.observables }

// Derived returns the derived keys in insertion order.
func (r Requirements) Derived() []Key { return r.derived }

// IsEmpty reports whether no keys are required, allowing the engine to skip
// the market data build entirely.
func (r Requirements) IsEmpty() bool {
	return len(r.observables) == 0 && len(r.derived) == 0
}

// Keys returns observables then derived keys, in order.
func (r Requirements) Keys() []Key {
	out := make([]Key, 0, len(r.observables)+len(r.derived))
	out = append(out, r.observables...)
	out = append(out, r.derived...)
	return out
}

// RequirementsBuilder accumulates keys, routing each on its Observable flag.
type RequirementsBuilder struct {
	seen        map[Key]struct{}
	observables []Key
	derived     []Key
}

// NewRequirementsBuilder returns an empty builder.
func NewRequirementsBuilder() *RequirementsBuilder {
	return &RequirementsBuilder{seen: make(map[Key]struct{})}
}

// Add appends keys not yet present.
func (b *RequirementsBuilder) Add(keys ...Key) *RequirementsBuilder {
	for _, k := range keys {
		if k == nil {
			continue
		}
		if _, dup := b.seen[k]; dup {
			continue
		}
		b.seen[k] = struct{}{}
		if k.Observable() {
			b.observables = append(b.observables, k)
		} else {
			b.derived = append(b.derived, k)
		}
	}
	return b
}

// Merge adds every key of other.
func (b *RequirementsBuilder) Merge(other Requirements) *RequirementsBuilder {
	b.Add(other.observables...)
	b.Add(other.derived...)
	return b
}

// Build finalises the requirements.
func (b *RequirementsBuilder) Build() Requirements {
	return Requirements{
		observables: append([]Key(nil), b.observables...),
		derived:     append([]Key(nil), b.derived...),
	}
}

// RequirementsOf is a convenience constructor from a flat key list.
func RequirementsOf(keys ...Key) Requirements {
	return NewRequirementsBuilder().Add(keys...).Build()
}

// MergeRequirements combines several requirement sets into one.
func MergeRequirements(reqs ...Requirements) Requirements {
	b := NewRequirementsBuilder()
	for _, r := range reqs {
		b.Merge(r)
	}
	return b.Build()
}
