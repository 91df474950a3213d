package proto

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/vectorlab/vectograph/internal/ctxlog"
	"github.com/vectorlab/vectograph/internal/document"
)

// valueSalt separates the ID space of hoisted literal nodes from the ID
// space of instruction nodes.
const valueSalt uint64 = 0x76616c75654e6f64 // "valueNod"

// mix derives a stable 64-bit ID from its parts using FNV-1a. The same
// parts always produce the same ID, which is what makes re-flattening an
// unchanged network byte-stable.
func mix(parts ...uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(buf[:], p)
		h.Write(buf[:])
	}
	return h.Sum64()
}

// scope is one instantiation of a network during flattening: the network
// itself, the ID-space seed for nodes inside it, and the flat IDs the
// parent wired into the network's boundary inputs.
type scope struct {
	network *document.NodeNetwork
	seed    uint64
	root    bool
	// bindings maps boundary input position to the flat ID of whatever the
	// parent wired into that position.
	bindings []document.NodeID
	// out memoizes the flat output ID of each node in this scope.
	out map[document.NodeID]document.NodeID
	// visiting marks nodes on the current resolution stack, for detecting
	// reference cycles in the document graph.
	visiting map[document.NodeID]bool
	// failed marks nodes that already produced a structural error, so a
	// broken node shared by several dependents is reported once.
	failed map[document.NodeID]bool
}

type flattener struct {
	nodes map[document.NodeID]ProtoNode
	errs  GraphErrors
}

// Flatten recursively inlines every sub-network of root into one flat proto
// network. All structural errors found anywhere in the document are
// collected; if any are found, the returned network is nil.
func Flatten(ctx context.Context, root *document.NodeNetwork) (*ProtoNetwork, GraphErrors) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Flattening document network.", "nodes", root.Len(), "exports", len(root.Exports))

	f := &flattener{nodes: make(map[document.NodeID]ProtoNode)}

	sc := newScope(root, 0, true, nil)
	if len(root.Exports) == 0 {
		f.errorf(0, "", ErrMissingExport, "document root declares no exported output")
		return nil, f.errs
	}

	// Resolve every node in the root scope, not just the ones reachable
	// from the export, so one pass reports every structural error.
	for _, id := range root.IDs() {
		f.resolveOutput(sc, id)
	}

	output, ok := f.resolveOutput(sc, root.Exports[0])
	if !ok || len(f.errs) > 0 {
		logger.Debug("Flattening failed.", "errors", len(f.errs))
		return nil, f.errs
	}

	entries, errs := sortDependencies(f.nodes, output)
	if len(errs) > 0 {
		logger.Debug("Dependency ordering failed.", "errors", len(errs))
		return nil, errs
	}

	logger.Debug("Flattening complete.", "flat_nodes", len(entries), "output", output)
	return &ProtoNetwork{Entries: entries, Output: output}, nil
}

func newScope(network *document.NodeNetwork, seed uint64, root bool, bindings []document.NodeID) *scope {
	return &scope{
		network:  network,
		seed:     seed,
		root:     root,
		bindings: bindings,
		out:      make(map[document.NodeID]document.NodeID),
		visiting: make(map[document.NodeID]bool),
		failed:   make(map[document.NodeID]bool),
	}
}

func (f *flattener) errorf(id document.NodeID, identifier string, kind ErrorKind, format string, args ...any) {
	f.errs = append(f.errs, &GraphError{
		Node:       id,
		Identifier: identifier,
		Kind:       kind,
		Detail:     fmt.Sprintf(format, args...),
	})
}

// flatID mints the flat ID for a node in the given scope. Author-assigned
// IDs survive unchanged at the root so diagnostics and incremental diffing
// stay keyed by the IDs the editor knows; inlined nodes get IDs derived
// from their instantiation path.
func (sc *scope) flatID(id document.NodeID) document.NodeID {
	if sc.root {
		return id
	}
	return document.NodeID(mix(sc.seed, uint64(id)))
}

// resolveOutput returns the flat ID that produces the output of the given
// document node, inlining sub-networks on demand. Reports structural errors
// and returns ok=false if the node cannot be resolved.
func (f *flattener) resolveOutput(sc *scope, id document.NodeID) (document.NodeID, bool) {
	if flat, ok := sc.out[id]; ok {
		return flat, true
	}
	if sc.failed[id] {
		return 0, false
	}
	node, ok := sc.network.Node(id)
	if !ok {
		sc.failed[id] = true
		f.errorf(id, "", ErrDanglingReference, "dangling reference to %s", id)
		return 0, false
	}
	if sc.visiting[id] {
		sc.failed[id] = true
		f.errorf(id, node.Implementation.Proto, ErrCycle, "dependency chain includes the node itself")
		return 0, false
	}
	sc.visiting[id] = true
	defer delete(sc.visiting, id)

	owner := sc.flatID(id)

	inputs := make([]document.NodeID, len(node.Inputs))
	valid := true
	for i, in := range node.Inputs {
		flat, ok := f.resolveInput(sc, id, owner, i, in)
		if !ok {
			valid = false
			continue
		}
		inputs[i] = flat
	}
	if !valid {
		sc.failed[id] = true
		return 0, false
	}

	if node.Implementation.IsNetwork() {
		sub := node.Implementation.Network
		if len(sub.Exports) == 0 {
			sc.failed[id] = true
			f.errorf(id, "", ErrMissingExport, "sub-network declares no exported output")
			return 0, false
		}
		child := newScope(sub, mix(sc.seed, uint64(id)), false, inputs)
		// Resolve every node of the sub-network so errors inside unused
		// branches still surface.
		for _, subID := range sub.IDs() {
			f.resolveOutput(child, subID)
		}
		export, ok := f.resolveOutput(child, sub.Exports[0])
		if !ok {
			sc.failed[id] = true
			return 0, false
		}
		sc.out[id] = export
		return export, true
	}

	f.nodes[owner] = InstructionNode(node.Implementation.Proto, inputs...)
	sc.out[id] = owner
	return owner, true
}

// resolveInput resolves one input wire of a node to the flat ID producing
// its value, hoisting literals into dedicated value nodes.
func (f *flattener) resolveInput(sc *scope, id, owner document.NodeID, index int, in document.NodeInput) (document.NodeID, bool) {
	switch in.Kind {
	case document.InputValue, document.InputInline:
		vid := document.NodeID(mix(valueSalt, uint64(owner), uint64(index)))
		f.nodes[vid] = ValueNode(in.Value)
		return vid, true
	case document.InputNode:
		return f.resolveOutput(sc, in.Node)
	case document.InputNetwork:
		if in.Port < 0 || in.Port >= len(sc.bindings) {
			f.errorf(id, "", ErrDanglingReference, "network input %d is not wired by the parent", in.Port)
			return 0, false
		}
		return sc.bindings[in.Port], true
	default:
		f.errorf(id, "", ErrDanglingReference, "input %d has unknown kind %d", index, in.Kind)
		return 0, false
	}
}

// sortDependencies orders the flat node map into a dependency-ordered entry
// list reachable from output. Construction arguments always refer to
// earlier entries afterwards. Cycles and references to absent IDs are
// reported as structural errors.
func sortDependencies(nodes map[document.NodeID]ProtoNode, output document.NodeID) ([]Entry, GraphErrors) {
	const (
		white = iota // unvisited
		gray         // on the current DFS stack
		black        // emitted
	)
	color := make(map[document.NodeID]int, len(nodes))
	entries := make([]Entry, 0, len(nodes))
	var errs GraphErrors

	var visit func(id document.NodeID) bool
	visit = func(id document.NodeID) bool {
		switch color[id] {
		case black:
			return true
		case gray:
			errs = append(errs, &GraphError{Node: id, Kind: ErrCycle, Detail: "dependency chain includes the node itself"})
			return false
		}
		node, ok := nodes[id]
		if !ok {
			errs = append(errs, &GraphError{Node: id, Kind: ErrDanglingReference, Detail: fmt.Sprintf("dangling reference to %s", id)})
			return false
		}
		color[id] = gray
		for _, dep := range node.Inputs {
			if !visit(dep) {
				return false
			}
		}
		color[id] = black
		entries = append(entries, Entry{ID: id, Node: node})
		return true
	}

	visit(output)
	if len(errs) > 0 {
		return nil, errs
	}
	return entries, nil
}
