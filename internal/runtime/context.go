package runtime

import (
	"reflect"
	"time"

	"github.com/zclconf/go-cty/cty"
)

// Footprint is the viewport region a render pass is asked to produce,
// in document space.
type Footprint struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// EvalContext is the immutable bundle threaded through one evaluation pass.
// It is injected once by the caller and passed opaquely from node to node
// as the call argument.
//
// Time is excluded from the memoization hash: a context that differs only
// by wall-clock time is considered the same effective input. Nodes that
// genuinely depend on time are registered with SkipMemoization instead.
type EvalContext struct {
	// Footprint is the viewport the evaluation renders into, if any.
	Footprint *Footprint
	// Index is the positional index supplied by iteration constructs.
	Index *int
	// Varargs is the payload supplied by iteration constructs.
	Varargs []cty.Value
	// Time is the wall-clock instant the evaluation was requested.
	Time time.Time
}

// WithIndex returns a copy of the context carrying the given positional
// index. The receiver is not modified.
func (ec *EvalContext) WithIndex(i int) *EvalContext {
	out := *ec
	out.Index = &i
	return &out
}

// ContextType is the capsule type carrying an *EvalContext through the
// cty value space. It is the call-argument type of every builtin
// implementation signature.
var ContextType = cty.Capsule("eval context", reflect.TypeOf(EvalContext{}))

// ContextValue wraps an evaluation context as a cty value so it can flow
// through the type-erased Evaluate capability.
func ContextValue(ec *EvalContext) cty.Value {
	return cty.CapsuleVal(ContextType, ec)
}

// ContextFromValue unwraps an evaluation context from a call argument.
// Returns false if the value does not carry a context.
func ContextFromValue(v cty.Value) (*EvalContext, bool) {
	if v == cty.NilVal || !v.Type().Equals(ContextType) {
		return nil, false
	}
	ec, ok := v.EncapsulatedValue().(*EvalContext)
	return ec, ok
}
