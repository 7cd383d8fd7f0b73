package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/mr"

	"riskgrid/pkg/result"
)

const defaultBuildWorkers = 8

// Builder resolves requirements and constructs the scenario environment.
// Observables are sourced first, then derived keys are built layer by layer
// in topological order; keys within a layer are independent and built in
// parallel on a bounded worker pool.
type Builder struct {
	Registry *Registry
	Mappings *Mappings
	Source   ObservableSource
	// Workers caps concurrent builds within a layer. Zero means the default.
	Workers int
}

// Build produces an immutable environment for the request. A single key
// failing to source or build never aborts the rest: the failure is recorded
// against that key and propagates only to keys depending on it.
func (b *Builder) Build(ctx context.Context, root Requirements, scen ScenarioDefinition,
	cfg *Config, dates ...time.Time) (*Environment, error) {

	if b.Source == nil {
		return nil, errors.New("marketdata: builder requires an observable source")
	}
	resolver := &Resolver{Registry: b.Registry, Mappings: b.Mappings}
	resolved, err := resolver.Resolve(root, cfg)
	if err != nil {
		return nil, err
	}
	return b.BuildResolved(ctx, resolved, scen, cfg, dates...)
}

// BuildResolved builds from already-resolved requirements.
func (b *Builder) BuildResolved(ctx context.Context, resolved *Resolved, scen ScenarioDefinition,
	cfg *Config, dates ...time.Time) (*Environment, error) {

	envb, err := NewEnvironmentBuilder(scen.ScenarioCount(), dates...)
	if err != nil {
		return nil, err
	}

	for k, f := range resolved.Failures {
		envb.SetFailure(k, f)
	}
	for _, id := range resolved.Missing {
		envb.SetFailure(id.Key, result.Failf(result.MissingMarketData,
			"no feed mapping configured for %s", id.Key.Name()))
	}

	if err := b.sourceObservables(ctx, envb, resolved.Observables, scen); err != nil {
		return nil, err
	}

	for li, layer := range resolved.Layers {
		if ctx.Err() != nil {
			// Do not schedule further layers; completed data stays valid.
			for _, rest := range resolved.Layers[li:] {
				for _, k := range rest {
					envb.SetFailure(k, result.Failf(result.BuildFailure,
						"build cancelled before %s was scheduled", k.Name()))
				}
			}
			break
		}
		b.buildLayer(envb, layer, resolved, cfg)
	}
	return envb.Build(), nil
}

func (b *Builder) sourceObservables(ctx context.Context, envb *EnvironmentBuilder,
	ids []ID, scen ScenarioDefinition) error {

	if len(ids) == 0 {
		return nil
	}
	values, err := b.Source.Lookup(ctx, ids)
	if err != nil {
		return fmt.Errorf("marketdata: source observables: %w", err)
	}
	for _, id := range ids {
		base, ok := values[id]
		if !ok {
			envb.SetFailure(id.Key, result.Failf(result.MissingMarketData,
				"feed %s returned no value for %s", id.Feed, id.Key.Name()))
			continue
		}
		if err := envb.Set(id.Key, scen.BoxFor(id.Key, base)); err != nil {
			return err
		}
	}
	return nil
}

type buildOutcome struct {
	box Box
	err error
}

func (b *Builder) buildLayer(envb *EnvironmentBuilder, layer []Key, resolved *Resolved, cfg *Config) {
	outcomes := make([]buildOutcome, len(layer))
	env := envb.Snapshot()
	workers := b.Workers
	if workers <= 0 {
		workers = defaultBuildWorkers
	}
	mr.ForEach(func(source chan<- int) {
		for i := range layer {
			source <- i
		}
	}, func(i int) {
		outcomes[i] = b.buildKey(layer[i], env, resolved, cfg)
	}, mr.WithWorkers(workers))

	for i, k := range layer {
		if outcomes[i].err != nil {
			logx.Errorf("marketdata: build %s failed: %v", k.Name(), outcomes[i].err)
			envb.SetFailure(k, result.AsFailure(outcomes[i].err))
			continue
		}
		if err := envb.Set(k, outcomes[i].box); err != nil {
			envb.SetFailure(k, result.AsFailure(err))
		}
	}
}

func (b *Builder) buildKey(k Key, env *Environment, resolved *Resolved, cfg *Config) buildOutcome {
	for _, dep := range resolved.Deps[k] {
		if f, failed := env.Failure(dep); failed {
			return buildOutcome{err: result.Failf(result.BuildFailure,
				"%s: dependency %s failed: %s", k.Name(), dep.Name(), f.Message)}
		}
	}
	fn, ok := b.Registry.Lookup(k.Type())
	if !ok {
		return buildOutcome{err: result.Failf(result.MissingMarketData,
			"no market data function registered for type %s", k.Type())}
	}
	box, err := fn.Build(k, env, cfg)
	if err != nil {
		return buildOutcome{err: err}
	}
	return buildOutcome{box: box}
}
