// Package mathops registers the arithmetic node implementations.
package mathops

import (
	"context"
	"fmt"
	"math/big"

	"github.com/vectorlab/vectograph/internal/registry"
	"github.com/vectorlab/vectograph/internal/runtime"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// binaryNumberOp adapts a big.Float operation into a two-input constructor.
func binaryNumberOp(identifier string, op func(out, a, b *big.Float) error) runtime.Constructor {
	return func(inputs []runtime.Node) (runtime.Node, error) {
		if err := runtime.ExpectInputs(identifier, inputs, 2); err != nil {
			return nil, err
		}
		lhs, rhs := inputs[0], inputs[1]
		return runtime.NodeFunc(func(ctx context.Context, callArg cty.Value) (cty.Value, error) {
			a, err := runtime.EvalAs(ctx, lhs, callArg, cty.Number)
			if err != nil {
				return cty.NilVal, err
			}
			b, err := runtime.EvalAs(ctx, rhs, callArg, cty.Number)
			if err != nil {
				return cty.NilVal, err
			}
			out := new(big.Float)
			if err := op(out, a.AsBigFloat(), b.AsBigFloat()); err != nil {
				return cty.NilVal, err
			}
			return cty.NumberVal(out), nil
		}), nil
	}
}

// unaryNumberOp adapts a big.Float operation into a one-input constructor.
func unaryNumberOp(identifier string, op func(out, a *big.Float)) runtime.Constructor {
	return func(inputs []runtime.Node) (runtime.Node, error) {
		if err := runtime.ExpectInputs(identifier, inputs, 1); err != nil {
			return nil, err
		}
		in := inputs[0]
		return runtime.NodeFunc(func(ctx context.Context, callArg cty.Value) (cty.Value, error) {
			a, err := runtime.EvalAs(ctx, in, callArg, cty.Number)
			if err != nil {
				return cty.NilVal, err
			}
			out := new(big.Float)
			op(out, a.AsBigFloat())
			return cty.NumberVal(out), nil
		}), nil
	}
}

// concatStrings is the string monomorphization of math.add.
func concatStrings(inputs []runtime.Node) (runtime.Node, error) {
	if err := runtime.ExpectInputs("math.add", inputs, 2); err != nil {
		return nil, err
	}
	lhs, rhs := inputs[0], inputs[1]
	return runtime.NodeFunc(func(ctx context.Context, callArg cty.Value) (cty.Value, error) {
		a, err := runtime.EvalAs(ctx, lhs, callArg, cty.String)
		if err != nil {
			return cty.NilVal, err
		}
		b, err := runtime.EvalAs(ctx, rhs, callArg, cty.String)
		if err != nil {
			return cty.NilVal, err
		}
		return cty.StringVal(a.AsString() + b.AsString()), nil
	}), nil
}

// Register registers every arithmetic implementation.
func (m *Module) Register(r *registry.Registry) {
	binary := registry.Signature(runtime.ContextType, cty.Number, cty.Number, cty.Number)
	unary := registry.Signature(runtime.ContextType, cty.Number, cty.Number)

	r.Register("math.add", registry.Implementation{
		Types: binary,
		Construct: binaryNumberOp("math.add", func(out, a, b *big.Float) error {
			out.Add(a, b)
			return nil
		}),
	})
	r.Register("math.add", registry.Implementation{
		Types:     registry.Signature(runtime.ContextType, cty.String, cty.String, cty.String),
		Construct: concatStrings,
	})
	r.Register("math.subtract", registry.Implementation{
		Types: binary,
		Construct: binaryNumberOp("math.subtract", func(out, a, b *big.Float) error {
			out.Sub(a, b)
			return nil
		}),
	})
	r.Register("math.multiply", registry.Implementation{
		Types: binary,
		Construct: binaryNumberOp("math.multiply", func(out, a, b *big.Float) error {
			out.Mul(a, b)
			return nil
		}),
	})
	r.Register("math.divide", registry.Implementation{
		Types: binary,
		Construct: binaryNumberOp("math.divide", func(out, a, b *big.Float) error {
			if b.Sign() == 0 {
				return fmt.Errorf("division by zero")
			}
			out.Quo(a, b)
			return nil
		}),
	})
	r.Register("math.double", registry.Implementation{
		Types: unary,
		Construct: unaryNumberOp("math.double", func(out, a *big.Float) {
			out.Add(a, a)
		}),
	})
	r.Register("math.negate", registry.Implementation{
		Types: unary,
		Construct: unaryNumberOp("math.negate", func(out, a *big.Float) {
			out.Neg(a)
		}),
	})
	r.Register("math.floor", registry.Implementation{
		Types: unary,
		Construct: unaryNumberOp("math.floor", func(out, a *big.Float) {
			i, _ := a.Int(nil)
			if a.Sign() < 0 && !a.IsInt() {
				i.Sub(i, big.NewInt(1))
			}
			out.SetInt(i)
		}),
	})
}
