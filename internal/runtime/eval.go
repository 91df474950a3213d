package runtime

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// EvalAs evaluates a dependency node and converts its output to the wanted
// type. Type resolution only selects implementations whose inputs are
// convertible, so a conversion failure here means the upstream node
// produced a value outside its resolved type.
func EvalAs(ctx context.Context, n Node, callArg cty.Value, want cty.Type) (cty.Value, error) {
	v, err := n.Evaluate(ctx, callArg)
	if err != nil {
		return cty.NilVal, err
	}
	out, err := convert.Convert(v, want)
	if err != nil {
		return cty.NilVal, fmt.Errorf("converting input to %s: %w", want.FriendlyName(), err)
	}
	return out, nil
}

// ExpectInputs validates a constructor's dependency count.
func ExpectInputs(identifier string, inputs []Node, want int) error {
	if len(inputs) != want {
		return fmt.Errorf("%s expects %d inputs, got %d", identifier, want, len(inputs))
	}
	return nil
}
