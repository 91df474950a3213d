// Package registry provides the process-wide table mapping node identifiers
// to their concrete, monomorphized implementations.
//
// The registry is populated once at application startup by node modules and
// is read-only for the remainder of the process lifetime. Every entry is
// fully concrete: generic node declarations must be expanded into one entry
// per concrete signature before registration, which is what lets type
// resolution avoid runtime reflection entirely.
package registry

import (
	"fmt"
	"sort"

	"github.com/vectorlab/vectograph/internal/runtime"
)

// Implementation is one concrete entry for a node identifier: a fully
// monomorphized signature plus the constructor that builds the runtime
// node for it.
type Implementation struct {
	Types           NodeIOTypes
	Construct       runtime.Constructor
	SkipMemoization bool
}

// Registry holds every registered implementation for a single application
// instance, keyed by node identifier.
type Registry struct {
	impls map[string][]Implementation
}

// Module is the interface node packages implement to contribute their
// implementations to a registry.
type Module interface {
	Register(r *Registry)
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{impls: make(map[string][]Implementation)}
}

// NewWithModules creates a registry and registers every given module.
func NewWithModules(modules ...Module) *Registry {
	r := New()
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// Register adds an implementation for the given identifier. Registering
// the same signature twice for one identifier is a programmer error and
// panics, matching the duplicate-handler policy used at startup.
func (r *Registry) Register(identifier string, impl Implementation) {
	for _, existing := range r.impls[identifier] {
		if existing.Types.Equal(impl.Types) {
			panic(fmt.Sprintf("implementation %s with signature %s already registered", identifier, impl.Types))
		}
	}
	r.impls[identifier] = append(r.impls[identifier], impl)
}

// Implementations returns every registered implementation for the given
// identifier, in registration order.
func (r *Registry) Implementations(identifier string) []Implementation {
	return r.impls[identifier]
}

// Identifiers returns every registered identifier in sorted order.
func (r *Registry) Identifiers() []string {
	ids := make([]string, 0, len(r.impls))
	for id := range r.impls {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the total number of registered implementations.
func (r *Registry) Len() int {
	total := 0
	for _, impls := range r.impls {
		total += len(impls)
	}
	return total
}
