package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vectorlab/vectograph/internal/document"
	"github.com/vectorlab/vectograph/internal/proto"
	"github.com/zclconf/go-cty/cty"
)

func TestReusableNodes_DirtyPropagatesDownstream(t *testing.T) {
	prev := &proto.ProtoNetwork{
		Entries: []proto.Entry{
			{ID: 10, Node: proto.ValueNode(cty.NumberIntVal(1))},
			{ID: 11, Node: proto.ValueNode(cty.NumberIntVal(2))},
			{ID: 1, Node: proto.InstructionNode("math.double", 10)},
			{ID: 2, Node: proto.InstructionNode("math.double", 11)},
			{ID: 3, Node: proto.InstructionNode("math.add", 1, 2)},
		},
		Output: 3,
	}
	next := &proto.ProtoNetwork{
		Entries: []proto.Entry{
			{ID: 10, Node: proto.ValueNode(cty.NumberIntVal(1))},
			{ID: 11, Node: proto.ValueNode(cty.NumberIntVal(9))}, // edited literal
			{ID: 1, Node: proto.InstructionNode("math.double", 10)},
			{ID: 2, Node: proto.InstructionNode("math.double", 11)},
			{ID: 3, Node: proto.InstructionNode("math.add", 1, 2)},
		},
		Output: 3,
	}

	unchanged := reusableNodes(prev, next)

	assert.True(t, unchanged[10])
	assert.True(t, unchanged[1], "the untouched branch keeps its nodes")
	assert.False(t, unchanged[11], "the edited literal is dirty")
	assert.False(t, unchanged[2], "direct dependents of an edit are dirty")
	assert.False(t, unchanged[3], "dirt propagates transitively to the output")
}

func TestReusableNodes_IdenticalGraphReusesEverything(t *testing.T) {
	net := &proto.ProtoNetwork{
		Entries: []proto.Entry{
			{ID: 10, Node: proto.ValueNode(cty.NumberIntVal(1))},
			{ID: 1, Node: proto.InstructionNode("math.double", 10)},
		},
		Output: 1,
	}

	unchanged := reusableNodes(net, net)
	assert.Len(t, unchanged, 2)
}

func TestReusableNodes_NoPreviousGraph(t *testing.T) {
	net := &proto.ProtoNetwork{Entries: nil, Output: 0}
	assert.Nil(t, reusableNodes(nil, net))
}

func TestRemovedNodes(t *testing.T) {
	prev := &proto.ProtoNetwork{
		Entries: []proto.Entry{
			{ID: 5, Node: proto.ValueNode(cty.NumberIntVal(1))},
			{ID: 2, Node: proto.InstructionNode("math.double", 5)},
			{ID: 1, Node: proto.InstructionNode("math.double", 2)},
		},
		Output: 1,
	}
	next := &proto.ProtoNetwork{
		Entries: []proto.Entry{
			{ID: 5, Node: proto.ValueNode(cty.NumberIntVal(1))},
			{ID: 1, Node: proto.InstructionNode("math.double", 5)},
		},
		Output: 1,
	}

	assert.Equal(t, []document.NodeID{2}, removedNodes(prev, next))
	assert.Nil(t, removedNodes(nil, next))
	assert.Empty(t, removedNodes(next, next))
}

func TestRemovedNodes_SkipsHoistedLiterals(t *testing.T) {
	prev := &proto.ProtoNetwork{
		Entries: []proto.Entry{
			{ID: 5, Node: proto.ValueNode(cty.NumberIntVal(1))},
			{ID: 6, Node: proto.ValueNode(cty.NumberIntVal(2))},
			{ID: 2, Node: proto.InstructionNode("math.add", 5, 6)},
			{ID: 1, Node: proto.InstructionNode("math.double", 2)},
		},
		Output: 1,
	}
	next := &proto.ProtoNetwork{
		Entries: []proto.Entry{
			{ID: 5, Node: proto.ValueNode(cty.NumberIntVal(1))},
			{ID: 1, Node: proto.InstructionNode("math.double", 5)},
		},
		Output: 1,
	}

	// Node 6's literal vanished with its consumer, but its ID is a
	// flattener artifact the editor never saw.
	assert.Equal(t, []document.NodeID{2}, removedNodes(prev, next))
}
