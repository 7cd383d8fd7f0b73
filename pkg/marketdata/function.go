package marketdata

import "fmt"

// Function builds values for one key type from more primitive inputs. The
// registry is assembled once at startup and treated as immutable, so
// implementations must be stateless and safe for concurrent use.
type Function interface {
	// KeyType returns the key type the function is registered for.
	KeyType() Type
	// Requirements declares the keys needed before Build can run for the
	// given key. An error means no value can ever be built for the key
	// (e.g. no FX rate path exists); it is captured as a per-key failure.
	Requirements(key Key, cfg *Config) (Requirements, error)
	// Build constructs the value for the key. Dependencies declared by
	// Requirements are present in env. The returned box is either shared or
	// holds one value per scenario.
	Build(key Key, env *Environment, cfg *Config) (Box, error)
}

// Registry maps key types to their build functions. Immutable after creation.
type Registry struct {
	byType map[Type]Function
}

// NewRegistry constructs a registry, rejecting duplicate type registrations.
func NewRegistry(fns ...Function) (*Registry, error) {
	r := &Registry{byType: make(map[Type]Function, len(fns))}
	for _, fn := range fns {
		t := fn.KeyType()
		if _, dup := r.byType[t]; dup {
			return nil, fmt.Errorf("marketdata: duplicate function for key type %s", t)
		}
		r.byType[t] = fn
	}
	return r, nil
}

// MustNewRegistry is NewRegistry panicking on error, for startup wiring.
func MustNewRegistry(fns ...Function) *Registry {
	r, err := NewRegistry(fns...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the function registered for a key type.
func (r *Registry) Lookup(t Type) (Function, bool) {
	fn, ok := r.byType[t]
	return fn, ok
}

// StandardRegistry returns the built-in functions: FX rates with
// triangulation and zero-rate discount curves.
func StandardRegistry() *Registry {
	return MustNewRegistry(FxRateFunction{}, DiscountCurveFunction{})
}
