package proto

import (
	"fmt"
	"strings"

	"github.com/vectorlab/vectograph/internal/document"
)

// ErrorKind classifies a GraphError into the stages of compilation and
// execution that can produce it.
type ErrorKind int

const (
	// ErrDanglingReference is a structural error: an input references a
	// node ID that does not exist in scope.
	ErrDanglingReference ErrorKind = iota
	// ErrCycle is a structural error: a node's dependency chain includes
	// itself.
	ErrCycle
	// ErrMissingExport is a structural error: a sub-network declares no
	// exported output, or exports a node absent from the network.
	ErrMissingExport
	// ErrNoImplementations is a type-resolution error: the registry has no
	// entry for the node's identifier, or no signature accepts the types
	// the node is receiving.
	ErrNoImplementations
	// ErrAmbiguousImplementations is a type-resolution error: more than one
	// signature matches with equal specificity.
	ErrAmbiguousImplementations
	// ErrInputNodeNotFound is a type-resolution error: a dependency of the
	// node failed resolution, so the node's own types cannot be inferred.
	ErrInputNodeNotFound
	// ErrConstruction is raised when a registry constructor itself fails.
	ErrConstruction
	// ErrEvaluation is a runtime error raised while evaluating a node.
	ErrEvaluation
)

// String returns a short human-readable name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrDanglingReference:
		return "dangling reference"
	case ErrCycle:
		return "cycle"
	case ErrMissingExport:
		return "missing export"
	case ErrNoImplementations:
		return "no matching implementation"
	case ErrAmbiguousImplementations:
		return "ambiguous implementation"
	case ErrInputNodeNotFound:
		return "unresolved input"
	case ErrConstruction:
		return "construction failed"
	case ErrEvaluation:
		return "evaluation failed"
	default:
		return "unknown error"
	}
}

// GraphError is one diagnostic attached to one node. Errors carry the node's
// ID so the editor can highlight the offending node.
type GraphError struct {
	Node       document.NodeID
	Identifier string
	Kind       ErrorKind
	Detail     string
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Node, e.Kind)
	if e.Identifier != "" {
		fmt.Fprintf(&b, " (%s)", e.Identifier)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	return b.String()
}

// GraphErrors is a collection of per-node diagnostics. The compiler gathers
// every error it can find in one pass rather than stopping at the first, so
// the editor can highlight every broken node at once.
type GraphErrors []*GraphError

// Error implements the error interface by joining the individual messages.
func (e GraphErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// ForNode returns all diagnostics attached to the given node.
func (e GraphErrors) ForNode(id document.NodeID) GraphErrors {
	var out GraphErrors
	for _, err := range e {
		if err.Node == id {
			out = append(out, err)
		}
	}
	return out
}

// Nodes returns the set of node IDs that have at least one diagnostic.
func (e GraphErrors) Nodes() map[document.NodeID]struct{} {
	out := make(map[document.NodeID]struct{}, len(e))
	for _, err := range e {
		out[err.Node] = struct{}{}
	}
	return out
}
