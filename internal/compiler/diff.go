package compiler

import (
	"github.com/vectorlab/vectograph/internal/document"
	"github.com/vectorlab/vectograph/internal/proto"
)

// reusableNodes determines which nodes of the next flat graph can keep
// their already-built runtime counterparts. A node is unchanged when its ID
// exists in the previous graph with an identical instruction and identical
// construction arguments, and every node it depends on is itself unchanged.
// Anything downstream of an edit is therefore rebuilt, while untouched
// subgraphs keep their memoization caches.
//
// Entries are visited in dependency order, so each node's dependencies are
// classified before the node itself.
func reusableNodes(prev, next *proto.ProtoNetwork) map[document.NodeID]bool {
	if prev == nil {
		return nil
	}
	prevIndex := prev.Index()
	unchanged := make(map[document.NodeID]bool, len(next.Entries))

	for _, entry := range next.Entries {
		old, ok := prevIndex[entry.ID]
		if !ok || !old.Equal(entry.Node) {
			continue
		}
		clean := true
		for _, dep := range entry.Node.Inputs {
			if !unchanged[dep] {
				clean = false
				break
			}
		}
		if clean {
			unchanged[entry.ID] = true
		}
	}
	return unchanged
}

// removedNodes lists instruction node IDs present in the previous flat
// graph but absent from the next one. Hoisted literal nodes are skipped;
// their IDs are internal to the flattener and the editor never saw them.
// The runtime nodes are dropped with the previous executor once nothing
// references them.
func removedNodes(prev, next *proto.ProtoNetwork) []document.NodeID {
	if prev == nil {
		return nil
	}
	nextIndex := next.Index()
	var removed []document.NodeID
	for _, entry := range prev.Entries {
		if entry.Node.IsValue() {
			continue
		}
		if _, ok := nextIndex[entry.ID]; !ok {
			removed = append(removed, entry.ID)
		}
	}
	return sortedIDs(removed)
}
