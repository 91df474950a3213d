// Package typing implements static type resolution of a flat proto network
// against the registry of concrete implementations.
//
// Resolution proceeds in dependency order, which the flattener guarantees:
// a node's input types are always known before the node itself is matched.
// Matching never stops at the first failure; every independent subgraph is
// resolved so the diagnostic set produced by one pass is as complete as
// possible.
package typing

import (
	"context"
	"fmt"
	"strings"

	"github.com/vectorlab/vectograph/internal/ctxlog"
	"github.com/vectorlab/vectograph/internal/document"
	"github.com/vectorlab/vectograph/internal/proto"
	"github.com/vectorlab/vectograph/internal/registry"
	"github.com/vectorlab/vectograph/internal/runtime"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Resolved is the output of one resolution pass: the inferred signature and
// selected constructor per node, plus every diagnostic found. Types are
// kept for the editor's input-widget hints; the executor builder consumes
// only Constructions.
type Resolved struct {
	Types         map[document.NodeID]registry.NodeIOTypes
	Constructions map[document.NodeID]runtime.Construction
	Errors        proto.GraphErrors
}

// OK reports whether resolution succeeded for every node.
func (r *Resolved) OK() bool {
	return len(r.Errors) == 0
}

// Resolve matches every instruction node of the network against the
// registry, selecting exactly one implementation per node or reporting why
// none could be chosen.
func Resolve(ctx context.Context, network *proto.ProtoNetwork, reg *registry.Registry) *Resolved {
	logger := ctxlog.FromContext(ctx)
	res := &Resolved{
		Types:         make(map[document.NodeID]registry.NodeIOTypes, len(network.Entries)),
		Constructions: make(map[document.NodeID]runtime.Construction, len(network.Entries)),
	}

	for _, entry := range network.Entries {
		if entry.Node.IsValue() {
			// A literal's return type is the type of the literal itself.
			res.Types[entry.ID] = registry.Signature(runtime.ContextType, entry.Node.Value.Type())
			continue
		}
		res.resolveNode(entry, reg)
	}

	logger.Debug("Type resolution finished.", "resolved", len(res.Types), "errors", len(res.Errors))
	return res
}

func (r *Resolved) resolveNode(entry proto.Entry, reg *registry.Registry) {
	id := entry.ID
	node := entry.Node

	inputs := make([]cty.Type, len(node.Inputs))
	for i, dep := range node.Inputs {
		depTypes, ok := r.Types[dep]
		if !ok {
			r.Errors = append(r.Errors, &proto.GraphError{
				Node:       id,
				Identifier: node.Identifier,
				Kind:       proto.ErrInputNodeNotFound,
				Detail:     fmt.Sprintf("input %d depends on %s, which failed to resolve", i, dep),
			})
			return
		}
		inputs[i] = depTypes.Return
	}

	impls := reg.Implementations(node.Identifier)
	if len(impls) == 0 {
		r.Errors = append(r.Errors, &proto.GraphError{
			Node:       id,
			Identifier: node.Identifier,
			Kind:       proto.ErrNoImplementations,
			Detail:     fmt.Sprintf("identifier %q is not registered", node.Identifier),
		})
		return
	}

	best, ambiguous, ok := match(impls, runtime.ContextType, inputs)
	if !ok {
		r.Errors = append(r.Errors, &proto.GraphError{
			Node:       id,
			Identifier: node.Identifier,
			Kind:       proto.ErrNoImplementations,
			Detail:     noMatchDetail(impls, inputs),
		})
		return
	}
	if len(ambiguous) > 1 {
		sigs := make([]string, len(ambiguous))
		for i, impl := range ambiguous {
			sigs[i] = impl.Types.String()
		}
		r.Errors = append(r.Errors, &proto.GraphError{
			Node:       id,
			Identifier: node.Identifier,
			Kind:       proto.ErrAmbiguousImplementations,
			Detail:     fmt.Sprintf("input types (%s) match multiple signatures with equal specificity: %s", typeList(inputs), strings.Join(sigs, " and ")),
		})
		return
	}

	r.Types[id] = best.Types
	r.Constructions[id] = runtime.Construction{
		Identifier:      node.Identifier,
		Constructor:     best.Construct,
		SkipMemoization: best.SkipMemoization,
	}
}

// match selects the most specific compatible implementation. Specificity is
// the number of inputs accepted exactly, without an implicit conversion; if
// several candidates tie at the best specificity, all of them are returned
// so the caller can report the ambiguity.
func match(impls []registry.Implementation, callArg cty.Type, inputs []cty.Type) (registry.Implementation, []registry.Implementation, bool) {
	bestScore := -1
	var best []registry.Implementation

	for _, impl := range impls {
		score, ok := compatibility(impl.Types, callArg, inputs)
		if !ok {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = []registry.Implementation{impl}
		} else if score == bestScore {
			best = append(best, impl)
		}
	}

	if len(best) == 0 {
		return registry.Implementation{}, nil, false
	}
	return best[0], best, true
}

// compatibility reports whether a signature accepts the given input types,
// and how many of them it accepts without conversion. A signature matches
// when every input type either equals the declared type or has a safe
// implicit conversion to it.
func compatibility(sig registry.NodeIOTypes, callArg cty.Type, inputs []cty.Type) (int, bool) {
	if !sig.CallArg.Equals(callArg) {
		return 0, false
	}
	if len(sig.Inputs) != len(inputs) {
		return 0, false
	}
	exact := 0
	for i, in := range inputs {
		want := sig.Inputs[i]
		if in.Equals(want) {
			exact++
			continue
		}
		if convert.GetConversion(in, want) == nil {
			return 0, false
		}
	}
	return exact, true
}

// noMatchDetail explains a failed match by naming the types the node is
// receiving and every signature that was tried, so the editor can show the
// full set of rejected candidates.
func noMatchDetail(impls []registry.Implementation, inputs []cty.Type) string {
	var b strings.Builder
	fmt.Fprintf(&b, "no implementation accepts input types (%s); tried", typeList(inputs))
	for i, impl := range impls {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, " %s", impl.Types)
	}
	return b.String()
}

func typeList(types []cty.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.FriendlyName()
	}
	return strings.Join(names, ", ")
}
