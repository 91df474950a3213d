package testutil

import (
	"context"
	"sync"

	"github.com/vectorlab/vectograph/internal/registry"
	"github.com/vectorlab/vectograph/internal/runtime"
	"github.com/zclconf/go-cty/cty"
)

// CountingModule registers instrumented node implementations that record
// how often their Evaluate is invoked. Memoization and reuse tests assert
// against these counters.
type CountingModule struct {
	mu    sync.Mutex
	calls map[string]int
}

// NewCountingModule creates a fresh counting module with zeroed counters.
func NewCountingModule() *CountingModule {
	return &CountingModule{calls: make(map[string]int)}
}

// Calls returns how many times the given identifier's Evaluate ran.
func (m *CountingModule) Calls(identifier string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[identifier]
}

func (m *CountingModule) record(identifier string) {
	m.mu.Lock()
	m.calls[identifier]++
	m.mu.Unlock()
}

// Register implements registry.Module.
//
// "test.probe" passes its single number input through, counting every
// evaluation. "test.tick" takes no inputs and returns an incrementing
// counter; it opts out of memoization, so repeated executions observe
// fresh values.
func (m *CountingModule) Register(r *registry.Registry) {
	r.Register("test.probe", registry.Implementation{
		Types: registry.Signature(runtime.ContextType, cty.Number, cty.Number),
		Construct: func(inputs []runtime.Node) (runtime.Node, error) {
			inner := inputs[0]
			return runtime.NodeFunc(func(ctx context.Context, callArg cty.Value) (cty.Value, error) {
				m.record("test.probe")
				return inner.Evaluate(ctx, callArg)
			}), nil
		},
	})

	r.Register("test.tick", registry.Implementation{
		Types:           registry.Signature(runtime.ContextType, cty.Number),
		SkipMemoization: true,
		Construct: func(inputs []runtime.Node) (runtime.Node, error) {
			return runtime.NodeFunc(func(ctx context.Context, callArg cty.Value) (cty.Value, error) {
				m.record("test.tick")
				return cty.NumberIntVal(int64(m.Calls("test.tick"))), nil
			}), nil
		},
	})
}
