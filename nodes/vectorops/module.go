// Package vectorops registers the vector shape node implementations.
package vectorops

import (
	"context"

	"github.com/vectorlab/vectograph/internal/registry"
	"github.com/vectorlab/vectograph/internal/runtime"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// numbers evaluates a fixed set of number dependencies.
func numbers(ctx context.Context, callArg cty.Value, nodes []runtime.Node) ([]float64, error) {
	out := make([]float64, len(nodes))
	for i, n := range nodes {
		v, err := runtime.EvalAs(ctx, n, callArg, cty.Number)
		if err != nil {
			return nil, err
		}
		out[i], _ = v.AsBigFloat().Float64()
	}
	return out, nil
}

func rectangle(inputs []runtime.Node) (runtime.Node, error) {
	if err := runtime.ExpectInputs("vector.rectangle", inputs, 4); err != nil {
		return nil, err
	}
	return runtime.NodeFunc(func(ctx context.Context, callArg cty.Value) (cty.Value, error) {
		args, err := numbers(ctx, callArg, inputs)
		if err != nil {
			return cty.NilVal, err
		}
		return ShapeValue(&Shape{Kind: KindRectangle, X: args[0], Y: args[1], Width: args[2], Height: args[3]}), nil
	}), nil
}

func circle(inputs []runtime.Node) (runtime.Node, error) {
	if err := runtime.ExpectInputs("vector.circle", inputs, 3); err != nil {
		return nil, err
	}
	return runtime.NodeFunc(func(ctx context.Context, callArg cty.Value) (cty.Value, error) {
		args, err := numbers(ctx, callArg, inputs)
		if err != nil {
			return cty.NilVal, err
		}
		return ShapeValue(&Shape{Kind: KindCircle, X: args[0], Y: args[1], Radius: args[2]}), nil
	}), nil
}

func translate(inputs []runtime.Node) (runtime.Node, error) {
	if err := runtime.ExpectInputs("vector.translate", inputs, 3); err != nil {
		return nil, err
	}
	shape, rest := inputs[0], inputs[1:]
	return runtime.NodeFunc(func(ctx context.Context, callArg cty.Value) (cty.Value, error) {
		sv, err := runtime.EvalAs(ctx, shape, callArg, ShapeType)
		if err != nil {
			return cty.NilVal, err
		}
		offsets, err := numbers(ctx, callArg, rest)
		if err != nil {
			return cty.NilVal, err
		}
		return ShapeValue(ShapeFromValue(sv).Translate(offsets[0], offsets[1])), nil
	}), nil
}

func scale(inputs []runtime.Node) (runtime.Node, error) {
	if err := runtime.ExpectInputs("vector.scale", inputs, 2); err != nil {
		return nil, err
	}
	shape, factor := inputs[0], inputs[1]
	return runtime.NodeFunc(func(ctx context.Context, callArg cty.Value) (cty.Value, error) {
		sv, err := runtime.EvalAs(ctx, shape, callArg, ShapeType)
		if err != nil {
			return cty.NilVal, err
		}
		fv, err := runtime.EvalAs(ctx, factor, callArg, cty.Number)
		if err != nil {
			return cty.NilVal, err
		}
		f, _ := fv.AsBigFloat().Float64()
		return ShapeValue(ShapeFromValue(sv).Scale(f)), nil
	}), nil
}

func strokeWidth(inputs []runtime.Node) (runtime.Node, error) {
	if err := runtime.ExpectInputs("vector.stroke_width", inputs, 2); err != nil {
		return nil, err
	}
	shape, width := inputs[0], inputs[1]
	return runtime.NodeFunc(func(ctx context.Context, callArg cty.Value) (cty.Value, error) {
		sv, err := runtime.EvalAs(ctx, shape, callArg, ShapeType)
		if err != nil {
			return cty.NilVal, err
		}
		wv, err := runtime.EvalAs(ctx, width, callArg, cty.Number)
		if err != nil {
			return cty.NilVal, err
		}
		w, _ := wv.AsBigFloat().Float64()
		return ShapeValue(ShapeFromValue(sv).WithStrokeWidth(w)), nil
	}), nil
}

// Register registers every shape implementation, plus the shape
// monomorphization of the pass-through instruction.
func (m *Module) Register(r *registry.Registry) {
	r.Register("vector.rectangle", registry.Implementation{
		Types:     registry.Signature(runtime.ContextType, ShapeType, cty.Number, cty.Number, cty.Number, cty.Number),
		Construct: rectangle,
	})
	r.Register("vector.circle", registry.Implementation{
		Types:     registry.Signature(runtime.ContextType, ShapeType, cty.Number, cty.Number, cty.Number),
		Construct: circle,
	})
	r.Register("vector.translate", registry.Implementation{
		Types:     registry.Signature(runtime.ContextType, ShapeType, ShapeType, cty.Number, cty.Number),
		Construct: translate,
	})
	r.Register("vector.scale", registry.Implementation{
		Types:     registry.Signature(runtime.ContextType, ShapeType, ShapeType, cty.Number),
		Construct: scale,
	})
	r.Register("vector.stroke_width", registry.Implementation{
		Types:     registry.Signature(runtime.ContextType, ShapeType, ShapeType, cty.Number),
		Construct: strokeWidth,
	})
	r.Register("value.pass", registry.Implementation{
		Types:     registry.Signature(runtime.ContextType, ShapeType, ShapeType),
		Construct: passShape,
	})
}

func passShape(inputs []runtime.Node) (runtime.Node, error) {
	if err := runtime.ExpectInputs("value.pass", inputs, 1); err != nil {
		return nil, err
	}
	in := inputs[0]
	return runtime.NodeFunc(func(ctx context.Context, callArg cty.Value) (cty.Value, error) {
		return runtime.EvalAs(ctx, in, callArg, ShapeType)
	}), nil
}
