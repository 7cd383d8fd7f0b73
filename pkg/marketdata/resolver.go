package marketdata

import (
	"errors"

	"riskgrid/pkg/result"
)

// Resolved is the output of requirements resolution: the transitive closure of
// every key the request needs, mapped observables, missing mappings, and the
// topological build order for derived keys.
type Resolved struct {
	// Observables are mapped observable IDs to source externally.
	Observables []ID
	// Missing are observables with no configured feed mapping.
	Missing []ID
	// Layers orders derived keys so that a key appears strictly after all
	// derived keys it depends on. Keys within a layer are independent.
	Layers [][]Key
	// Deps records the direct requirements of each derived key.
	Deps map[Key][]Key
	// Failures holds keys that can never build: no registered function, the
	// function rejected the key, or the key sits on a dependency cycle.
	Failures map[Key]*result.Failure
}

// Keys returns every resolved key: observables, missing, then derived.
func (r *Resolved) Keys() []Key {
	out := make([]Key, 0, len(r.Observables)+len(r.Missing))
	for _, id := range r.Observables {
		out = append(out, id.Key)
	}
	for _, id := range r.Missing {
		out = append(out, id.Key)
	}
	for _, layer := range r.Layers {
		out = append(out, layer...)
	}
	for k := range r.Failures {
		out = append(out, k)
	}
	return out
}

// Resolver discovers the transitive market data requirements of a request.
// Resolution runs explicit rounds over a work queue until a fixed point: a
// derived key's own requirements are resolved in a later round, so building a
// key never reveals an unmet requirement.
type Resolver struct {
	Registry *Registry
	Mappings *Mappings
}

// Resolve expands the root requirements to a fixed point and computes the
// build order. Per-key problems (unknown type, no rate path, cycles) are
// captured in Resolved.Failures; only contract violations return an error.
func (r *Resolver) Resolve(root Requirements, cfg *Config) (*Resolved, error) {
	if r.Registry == nil {
		return nil, errors.New("marketdata: resolver requires a function registry")
	}
	if r.Mappings == nil {
		return nil, errors.New("marketdata: resolver requires mappings")
	}
	if cfg == nil {
		return nil, errors.New("marketdata: resolver requires a config")
	}

	res := &Resolved{
		Deps:     make(map[Key][]Key),
		Failures: make(map[Key]*result.Failure),
	}

	seenObs := make(map[Key]struct{})
	var obsOrder []Key
	addObservable := func(k Key) {
		if _, dup := seenObs[k]; dup {
			return
		}
		seenObs[k] = struct{}{}
		obsOrder = append(obsOrder, k)
	}

	seenDerived := make(map[Key]struct{})
	var derivedOrder []Key
	queue := make([]Key, 0)
	enqueue := func(k Key) {
		if _, dup := seenDerived[k]; dup {
			return
		}
		seenDerived[k] = struct{}{}
		derivedOrder = append(derivedOrder, k)
		queue = append(queue, k)
	}

	for _, k := range root.Observables() {
		addObservable(k)
	}
	for _, k := range root.Derived() {
		enqueue(k)
	}

	// Work-queue rounds: each round may reveal further derived keys, which
	// are themselves expanded until nothing new appears.
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]

		fn, ok := r.Registry.Lookup(k.Type())
		if !ok {
			res.Failures[k] = result.Failf(result.MissingMarketData,
				"no market data function registered for type %s (%s)", k.Type(), k.Name())
			continue
		}
		reqs, err := fn.Requirements(k, cfg)
		if err != nil {
			res.Failures[k] = result.AsFailure(err)
			continue
		}
		res.Deps[k] = reqs.Keys()
		for _, dep := range reqs.Observables() {
			addObservable(dep)
		}
		for _, dep := range reqs.Derived() {
			enqueue(dep)
		}
	}

	// Kahn layering over derived keys. Only healthy derived dependencies
	// gate ordering; observables are sourced before any layer runs and
	// failed dependencies surface as build failures on their dependents.
	indegree := make(map[Key]int)
	dependents := make(map[Key][]Key)
	for _, k := range derivedOrder {
		if _, bad := res.Failures[k]; bad {
			continue
		}
		indegree[k] = 0
	}
	for k := range indegree {
		for _, dep := range res.Deps[k] {
			if dep.Observable() {
				continue
			}
			if _, bad := res.Failures[dep]; bad {
				continue
			}
			indegree[k]++
			dependents[dep] = append(dependents[dep], k)
		}
	}

	frontier := make([]Key, 0)
	for _, k := range derivedOrder {
		if deg, ok := indegree[k]; ok && deg == 0 {
			frontier = append(frontier, k)
		}
	}
	placed := 0
	for len(frontier) > 0 {
		layer := frontier
		res.Layers = append(res.Layers, layer)
		placed += len(layer)
		var next []Key
		for _, k := range layer {
			for _, dep := range dependents[k] {
				indegree[dep]--
				if indegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		frontier = next
	}
	if placed < len(indegree) {
		for _, k := range derivedOrder {
			if deg, ok := indegree[k]; ok && deg > 0 {
				res.Failures[k] = result.Failf(result.ResolutionCycle,
					"dependency cycle involving %s", k.Name())
			}
		}
	}

	for _, k := range obsOrder {
		id := r.Mappings.Resolve(k)
		if id.IsMissing() {
			res.Missing = append(res.Missing, id)
		} else {
			res.Observables = append(res.Observables, id)
		}
	}
	return res, nil
}
