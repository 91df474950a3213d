package compiler

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"
	"github.com/vectorlab/vectograph/internal/document"
	"github.com/vectorlab/vectograph/internal/proto"
	"github.com/vectorlab/vectograph/internal/registry"
)

// ResolvedTypesDelta describes what one (re)compilation changed: which
// nodes gained, lost, or changed their resolved type, which nodes newly
// failed or newly passed type resolution, and the current full diagnostic
// set. The editor consumes it once to refresh input-widget hints and
// error badges, then discards it.
type ResolvedTypesDelta struct {
	// CompilationID correlates this delta with log lines from the same
	// compilation.
	CompilationID uuid.UUID
	// Changed maps nodes whose resolved type differs from the previous
	// compilation to their new signature.
	Changed map[document.NodeID]registry.NodeIOTypes
	// NewlyResolved lists nodes that gained a resolved type.
	NewlyResolved []document.NodeID
	// NewlyFailed lists nodes that produced a resolution error this time
	// but not previously.
	NewlyFailed []document.NodeID
	// Removed lists nodes that existed in the previous flat graph and are
	// gone from this one.
	Removed []document.NodeID
	// Diagnostics is the complete per-node diagnostic set of this
	// compilation, not just the delta.
	Diagnostics proto.GraphErrors
	// Rebuilt and Reused count executable nodes constructed fresh versus
	// carried over from the previous executor.
	Rebuilt int
	Reused  int
}

// Empty reports whether the compilation changed nothing the editor needs
// to repaint: no type changes, no diagnostics changes, no removals.
func (d *ResolvedTypesDelta) Empty() bool {
	return len(d.Changed) == 0 && len(d.NewlyResolved) == 0 && len(d.NewlyFailed) == 0 &&
		len(d.Removed) == 0 && len(d.Diagnostics) == 0
}

// MarshalJSON renders the delta for transport to editor clients. Types are
// serialized in their diagnostic string form.
func (d *ResolvedTypesDelta) MarshalJSON() ([]byte, error) {
	type diag struct {
		Node   uint64 `json:"node"`
		Kind   string `json:"kind"`
		Detail string `json:"detail,omitempty"`
	}
	changed := make(map[uint64]string, len(d.Changed))
	for id, types := range d.Changed {
		changed[uint64(id)] = types.String()
	}
	diags := make([]diag, len(d.Diagnostics))
	for i, err := range d.Diagnostics {
		diags[i] = diag{Node: uint64(err.Node), Kind: err.Kind.String(), Detail: err.Detail}
	}
	return json.Marshal(struct {
		CompilationID string            `json:"compilation_id"`
		Changed       map[uint64]string `json:"changed,omitempty"`
		NewlyResolved []document.NodeID `json:"newly_resolved,omitempty"`
		NewlyFailed   []document.NodeID `json:"newly_failed,omitempty"`
		Removed       []document.NodeID `json:"removed,omitempty"`
		Diagnostics   []diag            `json:"diagnostics,omitempty"`
		Rebuilt       int               `json:"rebuilt"`
		Reused        int               `json:"reused"`
	}{
		CompilationID: d.CompilationID.String(),
		Changed:       changed,
		NewlyResolved: d.NewlyResolved,
		NewlyFailed:   d.NewlyFailed,
		Removed:       d.Removed,
		Diagnostics:   diags,
		Rebuilt:       d.Rebuilt,
		Reused:        d.Reused,
	})
}

func sortedIDs(ids []document.NodeID) []document.NodeID {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
