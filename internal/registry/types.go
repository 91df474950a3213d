package registry

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// NodeIOTypes is the concrete signature of one implementation: the type of
// the call argument the node is evaluated with, the ordered types of its
// construction inputs, and its return type. Registry signatures are always
// fully concrete; cty.DynamicPseudoType is not permitted here.
type NodeIOTypes struct {
	CallArg cty.Type
	Inputs  []cty.Type
	Return  cty.Type
}

// Signature is a convenience constructor for NodeIOTypes.
func Signature(callArg cty.Type, ret cty.Type, inputs ...cty.Type) NodeIOTypes {
	return NodeIOTypes{CallArg: callArg, Inputs: inputs, Return: ret}
}

// Equal reports whether two signatures are identical.
func (t NodeIOTypes) Equal(other NodeIOTypes) bool {
	if !t.CallArg.Equals(other.CallArg) || !t.Return.Equals(other.Return) {
		return false
	}
	if len(t.Inputs) != len(other.Inputs) {
		return false
	}
	for i, in := range t.Inputs {
		if !in.Equals(other.Inputs[i]) {
			return false
		}
	}
	return true
}

// String renders the signature the way diagnostics present it, for example
// "(number, number) -> number".
func (t NodeIOTypes) String() string {
	inputs := make([]string, len(t.Inputs))
	for i, in := range t.Inputs {
		inputs[i] = in.FriendlyName()
	}
	var ret string
	if t.Return != cty.NilType {
		ret = t.Return.FriendlyName()
	} else {
		ret = "none"
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(inputs, ", "), ret)
}
