package runtime

import (
	"context"

	"github.com/vectorlab/vectograph/internal/ctxlog"
	"github.com/vectorlab/vectograph/internal/document"
	"github.com/vectorlab/vectograph/internal/proto"
	"github.com/zclconf/go-cty/cty"
)

// tracedNode attributes runtime evaluation failures to the node that
// raised them, so execute errors reach the caller keyed by node ID.
type tracedNode struct {
	id         document.NodeID
	identifier string
	inner      Node
}

func (t *tracedNode) Evaluate(ctx context.Context, callArg cty.Value) (cty.Value, error) {
	out, err := t.inner.Evaluate(ctx, callArg)
	if err == nil {
		return out, nil
	}
	if _, ok := err.(proto.GraphErrors); ok {
		// Already attributed by a node further upstream.
		return cty.NilVal, err
	}
	return cty.NilVal, proto.GraphErrors{{
		Node:       t.id,
		Identifier: t.identifier,
		Kind:       proto.ErrEvaluation,
		Detail:     err.Error(),
	}}
}

// Build walks a type-resolved proto network in dependency order and
// constructs the runtime graph, invoking the registry-selected constructor
// for each instruction node with references to the already-built nodes for
// its dependencies.
//
// Nodes present in reuse are taken as-is instead of being rebuilt, which
// preserves their memoization caches; the incremental recompiler populates
// reuse with every node it proved unchanged.
//
// Build fails atomically: on any construction error no executor is
// returned, and the caller keeps whatever executor was previously valid.
func Build(ctx context.Context, network *proto.ProtoNetwork, constructions map[document.NodeID]Construction, reuse map[document.NodeID]Node) (*DynamicExecutor, proto.GraphErrors) {
	logger := ctxlog.FromContext(ctx)

	nodes := make(map[document.NodeID]Node, len(network.Entries))
	impure := impureNodes(network, constructions)
	var errs proto.GraphErrors
	rebuilt := 0

	for _, entry := range network.Entries {
		if prev, ok := reuse[entry.ID]; ok {
			nodes[entry.ID] = prev
			continue
		}
		built, err := buildNode(entry, nodes, constructions, impure[entry.ID])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		nodes[entry.ID] = built
		rebuilt++
	}

	if len(errs) > 0 {
		logger.Debug("Graph construction failed.", "errors", len(errs))
		return nil, errs
	}

	logger.Debug("Graph construction complete.", "nodes", len(nodes), "rebuilt", rebuilt, "reused", len(nodes)-rebuilt)
	return &DynamicExecutor{
		nodes:   nodes,
		output:  network.Output,
		rebuilt: rebuilt,
	}, nil
}

// impureNodes marks every node whose dependency chain contains a node
// that opted out of memoization. A memo key covers only the call
// argument, not upstream outputs, so caching a consumer of an impure
// node would freeze that node's first result; tainted nodes stay
// unwrapped and re-evaluate on every pass. Entries arrive in dependency
// order, so each node's inputs are classified before the node itself.
func impureNodes(network *proto.ProtoNetwork, constructions map[document.NodeID]Construction) map[document.NodeID]bool {
	impure := make(map[document.NodeID]bool)
	for _, entry := range network.Entries {
		if entry.Node.IsValue() {
			continue
		}
		if cons, ok := constructions[entry.ID]; ok && cons.SkipMemoization {
			impure[entry.ID] = true
			continue
		}
		for _, dep := range entry.Node.Inputs {
			if impure[dep] {
				impure[entry.ID] = true
				break
			}
		}
	}
	return impure
}

func buildNode(entry proto.Entry, nodes map[document.NodeID]Node, constructions map[document.NodeID]Construction, impure bool) (Node, *proto.GraphError) {
	if entry.Node.IsValue() {
		// Value nodes are their own cache; no memo adapter needed.
		return NewValueNode(entry.Node.Value), nil
	}

	cons, ok := constructions[entry.ID]
	if !ok {
		return nil, &proto.GraphError{
			Node:       entry.ID,
			Identifier: entry.Node.Identifier,
			Kind:       proto.ErrConstruction,
			Detail:     "no constructor was resolved for this node",
		}
	}

	inputs := make([]Node, len(entry.Node.Inputs))
	for i, dep := range entry.Node.Inputs {
		depNode, ok := nodes[dep]
		if !ok {
			return nil, &proto.GraphError{
				Node:       entry.ID,
				Identifier: entry.Node.Identifier,
				Kind:       proto.ErrConstruction,
				Detail:     "dependency " + dep.String() + " was not built",
			}
		}
		inputs[i] = depNode
	}

	inner, err := cons.Constructor(inputs)
	if err != nil {
		return nil, &proto.GraphError{
			Node:       entry.ID,
			Identifier: entry.Node.Identifier,
			Kind:       proto.ErrConstruction,
			Detail:     err.Error(),
		}
	}

	built := Node(&tracedNode{id: entry.ID, identifier: entry.Node.Identifier, inner: inner})
	if !impure {
		built = NewMemoNode(built)
	}
	return built, nil
}
