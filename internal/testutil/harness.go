// Package testutil provides shared helpers for compiler and runtime tests:
// a compilation harness with an isolated registry and log capture, builders
// for document graphs, and instrumented node modules.
package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vectorlab/vectograph/internal/compiler"
	"github.com/vectorlab/vectograph/internal/ctxlog"
	"github.com/vectorlab/vectograph/internal/document"
	"github.com/vectorlab/vectograph/internal/registry"
	"github.com/vectorlab/vectograph/internal/runtime"
	"github.com/vectorlab/vectograph/nodes/mathops"
	"github.com/vectorlab/vectograph/nodes/textops"
	"github.com/vectorlab/vectograph/nodes/valueops"
	"github.com/vectorlab/vectograph/nodes/vectorops"
	"github.com/zclconf/go-cty/cty"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Harness bundles an isolated registry, compiler, and captured logs for
// one test.
type Harness struct {
	Registry *registry.Registry
	Compiler *compiler.Compiler
	Logs     *SafeBuffer
}

// CoreModules returns the builtin node module set used by the application.
func CoreModules() []registry.Module {
	return []registry.Module{
		&mathops.Module{},
		&textops.Module{},
		&valueops.Module{},
		&vectorops.Module{},
	}
}

// NewHarness creates a harness whose registry is populated from the given
// modules, defaulting to the builtin set when none are given.
func NewHarness(t *testing.T, modules ...registry.Module) *Harness {
	t.Helper()
	if len(modules) == 0 {
		modules = CoreModules()
	}
	reg := registry.NewWithModules(modules...)
	return &Harness{
		Registry: reg,
		Compiler: compiler.New(reg),
		Logs:     &SafeBuffer{},
	}
}

// Context returns a context carrying a debug logger that writes into the
// harness's log buffer.
func (h *Harness) Context() context.Context {
	logger := slog.New(slog.NewTextHandler(h.Logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger)
}

// MustCompile compiles the document and fails the test on any diagnostic.
func (h *Harness) MustCompile(t *testing.T, doc *document.NodeNetwork) (*runtime.DynamicExecutor, *compiler.ResolvedTypesDelta) {
	t.Helper()
	executor, delta, err := h.Compiler.Compile(h.Context(), doc)
	require.NoError(t, err, "compilation diagnostics:\n%s", h.Logs.String())
	require.NotNil(t, executor)
	return executor, delta
}

// MustExecute evaluates the executor's output with a fresh evaluation
// context and fails the test on any runtime error.
func (h *Harness) MustExecute(t *testing.T, executor *runtime.DynamicExecutor) cty.Value {
	t.Helper()
	result, err := executor.Execute(h.Context(), &runtime.EvalContext{Time: time.Now()})
	require.NoError(t, err)
	return result
}

// RequireNumber asserts that a result is a cty number equal to want.
func RequireNumber(t *testing.T, v cty.Value, want float64, msgAndArgs ...any) {
	t.Helper()
	require.True(t, v.Type().Equals(cty.Number), "expected number, got %s", v.Type().FriendlyName())
	got, _ := v.AsBigFloat().Float64()
	require.InDelta(t, want, got, 1e-6, msgAndArgs...)
}
