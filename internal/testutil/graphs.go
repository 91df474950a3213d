package testutil

import (
	"github.com/vectorlab/vectograph/internal/document"
	"github.com/zclconf/go-cty/cty"
)

// Network builds a document network from a node table and export list.
func Network(exports []document.NodeID, nodes map[document.NodeID]*document.DocumentNode) *document.NodeNetwork {
	n := document.NewNetwork()
	for id, node := range nodes {
		n.AddNode(id, node)
	}
	n.Exports = exports
	return n
}

// Proto builds a document node backed by a primitive instruction.
func Proto(identifier string, inputs ...document.NodeInput) *document.DocumentNode {
	return &document.DocumentNode{
		Inputs:         inputs,
		Implementation: document.ProtoImplementation(identifier),
	}
}

// Nested builds a document node backed by an embedded sub-network.
func Nested(sub *document.NodeNetwork, inputs ...document.NodeInput) *document.DocumentNode {
	return &document.DocumentNode{
		Inputs:         inputs,
		Implementation: document.NetworkImplementation(sub),
	}
}

// Num wraps a float literal as a node input.
func Num(f float64) document.NodeInput {
	return document.ValueInput(cty.NumberFloatVal(f))
}

// Str wraps a string literal as a node input.
func Str(s string) document.NodeInput {
	return document.ValueInput(cty.StringVal(s))
}
