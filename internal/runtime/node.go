// Package runtime holds the executable counterpart of a compiled proto
// network: type-erased node instances, the memoization adapter that wraps
// them, and the DynamicExecutor that owns one built graph and evaluates it.
package runtime

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Node is the single capability every runtime node exposes: evaluate an
// erased input, produce an erased output. Concrete node types are hidden
// behind this interface once the builder has constructed them.
//
// Evaluate may block while waiting on external work. The engine never
// aborts a node mid-evaluation; callers that no longer want the result
// discard it.
type Node interface {
	Evaluate(ctx context.Context, callArg cty.Value) (cty.Value, error)
}

// Constructor builds one runtime node, receiving the already-constructed
// nodes for its dependencies. Constructors never see proto-level data.
type Constructor func(inputs []Node) (Node, error)

// Construction is the registry-selected recipe for building one node,
// recorded per node ID during type resolution.
type Construction struct {
	Identifier  string
	Constructor Constructor
	// SkipMemoization disables the memoization adapter for nodes with
	// externally observable effects, such as sampling wall-clock time.
	SkipMemoization bool
}

// NodeFunc adapts a plain function into a Node. Useful for node
// implementations without state of their own.
type NodeFunc func(ctx context.Context, callArg cty.Value) (cty.Value, error)

// Evaluate implements Node.
func (f NodeFunc) Evaluate(ctx context.Context, callArg cty.Value) (cty.Value, error) {
	return f(ctx, callArg)
}

// ValueNode produces a constant, ignoring its call argument. Hoisted
// literals from the document graph become value nodes.
type ValueNode struct {
	value cty.Value
}

// NewValueNode wraps a constant as a runtime node.
func NewValueNode(v cty.Value) *ValueNode {
	return &ValueNode{value: v}
}

// Evaluate implements Node.
func (n *ValueNode) Evaluate(context.Context, cty.Value) (cty.Value, error) {
	return n.value, nil
}

// Value returns the wrapped constant.
func (n *ValueNode) Value() cty.Value {
	return n.value
}
