// Package textops registers the string manipulation node implementations.
package textops

import (
	"context"
	"fmt"
	"strings"

	"github.com/vectorlab/vectograph/internal/registry"
	"github.com/vectorlab/vectograph/internal/runtime"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

func stringOp(identifier string, op func(string) cty.Value) runtime.Constructor {
	return func(inputs []runtime.Node) (runtime.Node, error) {
		if err := runtime.ExpectInputs(identifier, inputs, 1); err != nil {
			return nil, err
		}
		in := inputs[0]
		return runtime.NodeFunc(func(ctx context.Context, callArg cty.Value) (cty.Value, error) {
			v, err := runtime.EvalAs(ctx, in, callArg, cty.String)
			if err != nil {
				return cty.NilVal, err
			}
			return op(v.AsString()), nil
		}), nil
	}
}

func repeat(inputs []runtime.Node) (runtime.Node, error) {
	if err := runtime.ExpectInputs("text.repeat", inputs, 2); err != nil {
		return nil, err
	}
	text, count := inputs[0], inputs[1]
	return runtime.NodeFunc(func(ctx context.Context, callArg cty.Value) (cty.Value, error) {
		s, err := runtime.EvalAs(ctx, text, callArg, cty.String)
		if err != nil {
			return cty.NilVal, err
		}
		n, err := runtime.EvalAs(ctx, count, callArg, cty.Number)
		if err != nil {
			return cty.NilVal, err
		}
		times, _ := n.AsBigFloat().Int64()
		if times < 0 {
			return cty.NilVal, fmt.Errorf("repeat count must not be negative, got %d", times)
		}
		return cty.StringVal(strings.Repeat(s.AsString(), int(times))), nil
	}), nil
}

// Register registers every text implementation.
func (m *Module) Register(r *registry.Registry) {
	unary := registry.Signature(runtime.ContextType, cty.String, cty.String)

	r.Register("text.uppercase", registry.Implementation{
		Types:     unary,
		Construct: stringOp("text.uppercase", func(s string) cty.Value { return cty.StringVal(strings.ToUpper(s)) }),
	})
	r.Register("text.lowercase", registry.Implementation{
		Types:     unary,
		Construct: stringOp("text.lowercase", func(s string) cty.Value { return cty.StringVal(strings.ToLower(s)) }),
	})
	r.Register("text.length", registry.Implementation{
		Types:     registry.Signature(runtime.ContextType, cty.Number, cty.String),
		Construct: stringOp("text.length", func(s string) cty.Value { return cty.NumberIntVal(int64(len(s))) }),
	})
	r.Register("text.repeat", registry.Implementation{
		Types:     registry.Signature(runtime.ContextType, cty.String, cty.String, cty.Number),
		Construct: repeat,
	})
}
