// Package compiler ties the compilation pipeline together: flatten the
// document graph, resolve types against the registry, build the executable
// graph, and on recompilation diff against the previous flat graph so
// unchanged nodes keep their built runtime instances and caches.
//
// The compiler is the authority over which executor is current. A
// compilation either fully succeeds, atomically replacing the executor, or
// fully fails, leaving the prior executor serving evaluations. Compilation
// may run while an evaluation of the previous executor is still in flight;
// live executors are never mutated.
package compiler

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vectorlab/vectograph/internal/ctxlog"
	"github.com/vectorlab/vectograph/internal/document"
	"github.com/vectorlab/vectograph/internal/proto"
	"github.com/vectorlab/vectograph/internal/registry"
	"github.com/vectorlab/vectograph/internal/runtime"
	"github.com/vectorlab/vectograph/internal/typing"
)

// Compiler compiles document graphs for one open document and tracks the
// state needed for incremental recompilation.
type Compiler struct {
	registry *registry.Registry

	mu sync.Mutex
	// executor and executorProto are the last successful build; executor
	// stays authoritative until a fully valid compilation replaces it.
	executor      *runtime.DynamicExecutor
	executorProto *proto.ProtoNetwork
	// lastTypes and lastErrNodes describe the most recent attempt, failed
	// or not, so consecutive deltas report changes rather than repeats.
	lastTypes    map[document.NodeID]registry.NodeIOTypes
	lastErrNodes map[document.NodeID]struct{}

	subscribers []chan *ResolvedTypesDelta
}

// New creates a compiler over the given read-only registry.
func New(reg *registry.Registry) *Compiler {
	return &Compiler{registry: reg}
}

// Executor returns the currently valid executor, or nil before the first
// successful compilation.
func (c *Compiler) Executor() *runtime.DynamicExecutor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.executor
}

// Subscribe returns a channel delivering the delta of each successful
// compilation, and a cancel func that removes the subscription and
// closes the channel. Slow consumers miss deltas rather than blocking
// the compiler.
func (c *Compiler) Subscribe() (<-chan *ResolvedTypesDelta, func()) {
	ch := make(chan *ResolvedTypesDelta, 8)
	c.mu.Lock()
	c.subscribers = append(c.subscribers, ch)
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, sub := range c.subscribers {
			if sub == ch {
				c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

// Compile flattens, type-resolves, and builds the given document graph.
//
// On success the new executor atomically replaces the previous one and the
// returned delta is also published to subscribers. On failure the previous
// executor remains valid, the error carries every diagnostic found, and
// the returned delta (when type resolution ran) reports newly failed
// nodes for the editor.
func (c *Compiler) Compile(ctx context.Context, doc *document.NodeNetwork) (*runtime.DynamicExecutor, *ResolvedTypesDelta, error) {
	compilationID := uuid.New()
	logger := ctxlog.FromContext(ctx).With("compilation_id", compilationID)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Compilation started.", "document_nodes", doc.Len())

	flat, errs := proto.Flatten(ctx, doc)
	if len(errs) > 0 {
		logger.Warn("Compilation failed during flattening.", "errors", len(errs))
		return nil, nil, errs
	}

	resolved := typing.Resolve(ctx, flat, c.registry)

	c.mu.Lock()
	defer c.mu.Unlock()

	delta := c.buildDelta(compilationID, flat, resolved)

	if !resolved.OK() {
		c.lastTypes = resolved.Types
		c.lastErrNodes = resolved.Errors.Nodes()
		logger.Warn("Compilation failed during type resolution.", "errors", len(resolved.Errors))
		return nil, delta, resolved.Errors
	}

	reuse := make(map[document.NodeID]runtime.Node)
	if c.executor != nil {
		for id := range reusableNodes(c.executorProto, flat) {
			if node, ok := c.executor.Node(id); ok {
				reuse[id] = node
			}
		}
	}

	executor, buildErrs := runtime.Build(ctx, flat, resolved.Constructions, reuse)
	if len(buildErrs) > 0 {
		c.lastTypes = resolved.Types
		c.lastErrNodes = buildErrs.Nodes()
		delta.Diagnostics = append(delta.Diagnostics, buildErrs...)
		logger.Warn("Compilation failed during graph construction.", "errors", len(buildErrs))
		return nil, delta, buildErrs
	}

	delta.Rebuilt = executor.RebuiltCount()
	delta.Reused = executor.NodeCount() - executor.RebuiltCount()

	c.executor = executor
	c.executorProto = flat
	c.lastTypes = resolved.Types
	c.lastErrNodes = nil

	c.publishLocked(delta)
	logger.Info("Compilation succeeded.",
		"nodes", executor.NodeCount(),
		"rebuilt", delta.Rebuilt,
		"reused", delta.Reused,
	)
	return executor, delta, nil
}

// buildDelta compares this attempt's resolution result against the
// previous attempt. Hoisted literal nodes are excluded; the editor only
// knows about instruction nodes.
func (c *Compiler) buildDelta(id uuid.UUID, flat *proto.ProtoNetwork, resolved *typing.Resolved) *ResolvedTypesDelta {
	delta := &ResolvedTypesDelta{
		CompilationID: id,
		Changed:       make(map[document.NodeID]registry.NodeIOTypes),
		Diagnostics:   resolved.Errors,
	}

	for _, entry := range flat.Entries {
		if entry.Node.IsValue() {
			continue
		}
		nodeID := entry.ID
		newTypes, resolvedNow := resolved.Types[nodeID]
		_, hadTypes := c.lastTypes[nodeID]
		_, hadErr := c.lastErrNodes[nodeID]

		if resolvedNow {
			switch {
			case !hadTypes && !hadErr:
				delta.NewlyResolved = append(delta.NewlyResolved, nodeID)
				delta.Changed[nodeID] = newTypes
			case hadErr && !hadTypes:
				delta.NewlyResolved = append(delta.NewlyResolved, nodeID)
				delta.Changed[nodeID] = newTypes
			case hadTypes && !c.lastTypes[nodeID].Equal(newTypes):
				delta.Changed[nodeID] = newTypes
			}
			continue
		}
		if !hadErr {
			delta.NewlyFailed = append(delta.NewlyFailed, nodeID)
		}
	}

	delta.NewlyResolved = sortedIDs(delta.NewlyResolved)
	delta.NewlyFailed = sortedIDs(delta.NewlyFailed)
	delta.Removed = removedNodes(c.executorProto, flat)
	return delta
}

// publishLocked sends the delta to every subscriber without blocking.
// Callers must hold c.mu.
func (c *Compiler) publishLocked(delta *ResolvedTypesDelta) {
	for _, ch := range c.subscribers {
		select {
		case ch <- delta:
		default:
		}
	}
}
