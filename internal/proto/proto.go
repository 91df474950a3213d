// Package proto defines the flat, post-inlining representation of a node
// graph and the flattener that produces it from a nested document network.
//
// A ProtoNetwork is the unit handed to type resolution and executable graph
// construction: an ordered list of instructions whose construction arguments
// are IDs of earlier instructions, plus a designated output. The flattener
// guarantees the list is in dependency order, acyclic, and reference-closed,
// or reports structural diagnostics for every violation it finds.
package proto

import (
	"fmt"

	"github.com/vectorlab/vectograph/internal/document"
	"github.com/zclconf/go-cty/cty"
)

// ProtoNode is one flat instruction. A node is either a value node, holding
// a literal the flattener hoisted out of an input slot, or an instruction
// node, naming a registry identifier and the IDs of its dependency nodes.
// Value nodes have an empty Identifier.
type ProtoNode struct {
	Identifier string
	Value      cty.Value
	Inputs     []document.NodeID
}

// ValueNode constructs a proto node that produces a constant.
func ValueNode(v cty.Value) ProtoNode {
	return ProtoNode{Value: v}
}

// InstructionNode constructs a proto node that invokes the named
// implementation with the given dependencies.
func InstructionNode(identifier string, inputs ...document.NodeID) ProtoNode {
	return ProtoNode{Identifier: identifier, Inputs: inputs}
}

// IsValue reports whether this node is a hoisted literal rather than an
// instruction.
func (p ProtoNode) IsValue() bool {
	return p.Identifier == ""
}

// Equal reports whether two proto nodes are identical by value: same
// identifier, same literal (compared raw, without conversions), and the
// same dependency IDs in the same order. This is the node-level unchanged
// test used by incremental recompilation.
func (p ProtoNode) Equal(other ProtoNode) bool {
	if p.Identifier != other.Identifier {
		return false
	}
	if len(p.Inputs) != len(other.Inputs) {
		return false
	}
	for i, in := range p.Inputs {
		if in != other.Inputs[i] {
			return false
		}
	}
	if p.IsValue() != other.IsValue() {
		return false
	}
	if p.IsValue() {
		return p.Value.RawEquals(other.Value)
	}
	return true
}

// Entry pairs a proto node with its stable ID.
type Entry struct {
	ID   document.NodeID
	Node ProtoNode
}

// ProtoNetwork is the complete flat graph: entries in dependency order plus
// the designated output node. Invariants after a successful Flatten: every
// referenced ID exists exactly once, no entry references a later entry, and
// every entry is reachable from Output.
type ProtoNetwork struct {
	Entries []Entry
	Output  document.NodeID
}

// Lookup returns the proto node stored under the given ID.
func (n *ProtoNetwork) Lookup(id document.NodeID) (ProtoNode, bool) {
	for _, e := range n.Entries {
		if e.ID == id {
			return e.Node, true
		}
	}
	return ProtoNode{}, false
}

// Index returns a map from node ID to proto node for repeated lookups.
func (n *ProtoNetwork) Index() map[document.NodeID]ProtoNode {
	idx := make(map[document.NodeID]ProtoNode, len(n.Entries))
	for _, e := range n.Entries {
		idx[e.ID] = e.Node
	}
	return idx
}

// String renders the network for debug logging.
func (n *ProtoNetwork) String() string {
	s := fmt.Sprintf("proto network (%d nodes, output %s)", len(n.Entries), n.Output)
	for _, e := range n.Entries {
		if e.Node.IsValue() {
			s += fmt.Sprintf("\n  %s = value %s", e.ID, e.Node.Value.GoString())
		} else {
			s += fmt.Sprintf("\n  %s = %s%v", e.ID, e.Node.Identifier, e.Node.Inputs)
		}
	}
	return s
}
