// Package valueops registers pass-through and environment-sampling node
// implementations for the primitive value types.
package valueops

import (
	"context"
	"time"

	"github.com/vectorlab/vectograph/internal/registry"
	"github.com/vectorlab/vectograph/internal/runtime"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// pass builds the identity node for one concrete type. A literal node in a
// document is sugar for its value wired through value.pass, which is also
// where the monomorphization story is easiest to see: one registry entry
// per concrete type.
func pass(ty cty.Type) runtime.Constructor {
	return func(inputs []runtime.Node) (runtime.Node, error) {
		if err := runtime.ExpectInputs("value.pass", inputs, 1); err != nil {
			return nil, err
		}
		in := inputs[0]
		return runtime.NodeFunc(func(ctx context.Context, callArg cty.Value) (cty.Value, error) {
			return runtime.EvalAs(ctx, in, callArg, ty)
		}), nil
	}
}

// now samples wall-clock time, reported as fractional seconds since the
// Unix epoch. If the evaluation context carries a Time it is used instead,
// so renders within one pass observe a single consistent instant.
func now(inputs []runtime.Node) (runtime.Node, error) {
	if err := runtime.ExpectInputs("time.now", inputs, 0); err != nil {
		return nil, err
	}
	return runtime.NodeFunc(func(ctx context.Context, callArg cty.Value) (cty.Value, error) {
		t := time.Now()
		if ec, ok := runtime.ContextFromValue(callArg); ok && ec != nil && !ec.Time.IsZero() {
			t = ec.Time
		}
		return cty.NumberFloatVal(float64(t.UnixNano()) / float64(time.Second)), nil
	}), nil
}

// Register registers the pass-through entries for the primitive types and
// the time sampler.
func (m *Module) Register(r *registry.Registry) {
	for _, ty := range []cty.Type{cty.Number, cty.String, cty.Bool} {
		r.Register("value.pass", registry.Implementation{
			Types:     registry.Signature(runtime.ContextType, ty, ty),
			Construct: pass(ty),
		})
	}
	r.Register("time.now", registry.Implementation{
		Types:           registry.Signature(runtime.ContextType, cty.Number),
		Construct:       now,
		SkipMemoization: true,
	})
}
