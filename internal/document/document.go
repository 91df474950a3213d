// Package document defines the author-facing intermediate representation of
// a node graph: a possibly nested tree of networks whose nodes carry typed
// inputs and either a primitive instruction or an embedded sub-network.
//
// The document graph is what the editor reads and writes. It is consumed by
// the flattener, which collapses all nesting into a single proto network.
package document

import (
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// NodeID is a stable, opaque identifier for a node. IDs are assigned by the
// author and preserved across edits so that incremental recompilation can
// match old and new nodes.
type NodeID uint64

// String implements fmt.Stringer so IDs read naturally in logs and errors.
func (id NodeID) String() string {
	return fmt.Sprintf("node %d", uint64(id))
}

// InputKind discriminates the variants of a NodeInput.
type InputKind int

const (
	// InputValue is a literal value supplied directly by the author.
	InputValue InputKind = iota
	// InputNode references the output of another node in the same network.
	InputNode
	// InputNetwork references one of the enclosing network's own boundary
	// inputs, identified by position.
	InputNetwork
	// InputInline is a short-circuit constant: a literal that bypasses the
	// network boundary entirely. It behaves like InputValue at flatten time
	// but is kept distinct so the editor can render it differently.
	InputInline
)

// NodeInput is one wire into a node. Exactly one variant is populated,
// selected by Kind.
type NodeInput struct {
	Kind  InputKind
	Value cty.Value // InputValue, InputInline
	Node  NodeID    // InputNode
	Port  int       // InputNetwork
}

// ValueInput wraps a literal value as a node input.
func ValueInput(v cty.Value) NodeInput {
	return NodeInput{Kind: InputValue, Value: v}
}

// NodeRef wires the output of another node into this input.
func NodeRef(id NodeID) NodeInput {
	return NodeInput{Kind: InputNode, Node: id}
}

// NetworkInput wires the enclosing network's boundary input at the given
// position into this input.
func NetworkInput(port int) NodeInput {
	return NodeInput{Kind: InputNetwork, Port: port}
}

// InlineValue wraps a short-circuit constant as a node input.
func InlineValue(v cty.Value) NodeInput {
	return NodeInput{Kind: InputInline, Value: v}
}

// Implementation describes what a node does. Exactly one field is set: a
// primitive instruction identifier (e.g. "math.add") or an embedded
// sub-network that the flattener will inline.
type Implementation struct {
	Proto   string
	Network *NodeNetwork
}

// IsNetwork reports whether this implementation is an embedded sub-network.
func (im Implementation) IsNetwork() bool {
	return im.Network != nil
}

// ProtoImplementation names a primitive instruction as an implementation.
func ProtoImplementation(identifier string) Implementation {
	return Implementation{Proto: identifier}
}

// NetworkImplementation embeds a sub-network as an implementation.
func NetworkImplementation(network *NodeNetwork) Implementation {
	return Implementation{Network: network}
}

// DocumentNode is one node of the document graph: an ordered sequence of
// inputs plus an implementation.
type DocumentNode struct {
	Inputs         []NodeInput
	Implementation Implementation
}

// NodeNetwork is an ordered mapping of NodeID to DocumentNode plus the
// network's exported outputs. A network is owned exclusively by its parent
// node (or the document root) until the flattener consumes it.
type NodeNetwork struct {
	nodes map[NodeID]*DocumentNode

	// Exports lists the node outputs this network exposes to its parent.
	// Export 0 is the network's primary output.
	Exports []NodeID
}

// NewNetwork returns an empty network.
func NewNetwork() *NodeNetwork {
	return &NodeNetwork{nodes: make(map[NodeID]*DocumentNode)}
}

// AddNode inserts a node under the given ID, replacing any previous node
// with the same ID.
func (n *NodeNetwork) AddNode(id NodeID, node *DocumentNode) {
	n.nodes[id] = node
}

// Node returns the node registered under the given ID, if any.
func (n *NodeNetwork) Node(id NodeID) (*DocumentNode, bool) {
	node, ok := n.nodes[id]
	return node, ok
}

// Len returns the number of nodes directly in this network, not counting
// nodes inside embedded sub-networks.
func (n *NodeNetwork) Len() int {
	return len(n.nodes)
}

// IDs returns the network's node IDs in ascending order. Deterministic
// iteration order is what makes flattening reproducible.
func (n *NodeNetwork) IDs() []NodeID {
	ids := make([]NodeID, 0, len(n.nodes))
	for id := range n.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
