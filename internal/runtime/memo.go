package runtime

import (
	"context"
	"sync"

	"github.com/zclconf/go-cty/cty"
)

// MemoNode wraps a node with a single-entry memoization cache: only the
// most recent (input hash, output) pair is retained. Within one evaluation
// pass a node is invoked at most once per effective input, and across
// passes most nodes' effective inputs are unchanged, so one pair is enough.
// The hash covers the call argument only, so the builder never wraps a
// node whose dependency chain contains a memoization opt-out.
//
// The cache is the only mutable state in a built graph. It is guarded by a
// lock scoped to this node alone, so concurrent re-entrant evaluation of
// the same node is serialized per-node, not globally.
type MemoNode struct {
	inner Node

	mu     sync.Mutex
	valid  bool
	hash   uint64
	cached cty.Value
}

// NewMemoNode wraps inner with a memoization adapter.
func NewMemoNode(inner Node) *MemoNode {
	return &MemoNode{inner: inner}
}

// Evaluate implements Node. On a hash hit the cached value is returned
// without invoking the wrapped node; on a miss the wrapped node runs and
// its result replaces the cache. Errors are never cached.
func (m *MemoNode) Evaluate(ctx context.Context, callArg cty.Value) (cty.Value, error) {
	h := HashValue(callArg)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid && m.hash == h {
		return m.cached, nil
	}

	out, err := m.inner.Evaluate(ctx, callArg)
	if err != nil {
		return cty.NilVal, err
	}
	m.valid = true
	m.hash = h
	m.cached = out
	return out, nil
}

// Inner returns the wrapped node.
func (m *MemoNode) Inner() Node {
	return m.inner
}

// Invalidate drops the cached pair.
func (m *MemoNode) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.valid = false
	m.cached = cty.NilVal
}
