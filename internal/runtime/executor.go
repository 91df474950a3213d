package runtime

import (
	"context"

	"github.com/vectorlab/vectograph/internal/ctxlog"
	"github.com/vectorlab/vectograph/internal/document"
	"github.com/vectorlab/vectograph/internal/proto"
	"github.com/zclconf/go-cty/cty"
)

// DynamicExecutor owns the complete runtime graph for one compiled document:
// every type-erased node plus the designated output. It is created by a
// successful compilation, replaced wholesale or incrementally patched by the
// next one, and dropped when the document closes.
//
// A live executor is never mutated; recompilation builds a new executor and
// the compiler swaps it in atomically, so an in-flight evaluation of the
// previous executor always completes against a consistent graph.
type DynamicExecutor struct {
	nodes   map[document.NodeID]Node
	output  document.NodeID
	rebuilt int
}

// Execute evaluates the root node with the supplied evaluation context.
// Runtime failures are surfaced as GraphErrors keyed by the failing node.
func (e *DynamicExecutor) Execute(ctx context.Context, ec *EvalContext) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	root, ok := e.nodes[e.output]
	if !ok {
		return cty.NilVal, proto.GraphErrors{{
			Node:   e.output,
			Kind:   proto.ErrEvaluation,
			Detail: "output node is not present in the built graph",
		}}
	}

	logger.Debug("Executing graph.", "output", e.output, "nodes", len(e.nodes))
	out, err := root.Evaluate(ctx, ContextValue(ec))
	if err != nil {
		if gerrs, ok := err.(proto.GraphErrors); ok {
			return cty.NilVal, gerrs
		}
		return cty.NilVal, proto.GraphErrors{{
			Node:   e.output,
			Kind:   proto.ErrEvaluation,
			Detail: err.Error(),
		}}
	}
	return out, nil
}

// Node returns the built runtime node for the given ID. The incremental
// recompiler uses this to carry unchanged nodes, caches included, into the
// next executor.
func (e *DynamicExecutor) Node(id document.NodeID) (Node, bool) {
	n, ok := e.nodes[id]
	return n, ok
}

// Output returns the ID of the designated output node.
func (e *DynamicExecutor) Output() document.NodeID {
	return e.output
}

// NodeCount returns the number of nodes in the built graph.
func (e *DynamicExecutor) NodeCount() int {
	return len(e.nodes)
}

// RebuiltCount returns how many nodes this compilation actually
// constructed, as opposed to reusing from the previous executor.
func (e *DynamicExecutor) RebuiltCount() int {
	return e.rebuilt
}
