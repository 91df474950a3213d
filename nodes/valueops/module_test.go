package valueops_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vectorlab/vectograph/internal/document"
	"github.com/vectorlab/vectograph/internal/runtime"
	"github.com/vectorlab/vectograph/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

func TestPass(t *testing.T) {
	h := testutil.NewHarness(t)
	doc := testutil.Network([]document.NodeID{1}, map[document.NodeID]*document.DocumentNode{
		1: testutil.Proto("value.pass", document.ValueInput(cty.True)),
	})

	executor, _ := h.MustCompile(t, doc)
	out := h.MustExecute(t, executor)
	assert.True(t, out.RawEquals(cty.True))
}

func TestNow_UsesContextTime(t *testing.T) {
	h := testutil.NewHarness(t)
	doc := testutil.Network([]document.NodeID{1}, map[document.NodeID]*document.DocumentNode{
		1: testutil.Proto("time.now"),
	})
	executor, _ := h.MustCompile(t, doc)

	at := time.Unix(1700000000, 500000000)
	out, err := executor.Execute(h.Context(), &runtime.EvalContext{Time: at})
	require.NoError(t, err)
	testutil.RequireNumber(t, out, 1700000000.5)
}

func TestNow_SamplesFreshlyEachPass(t *testing.T) {
	h := testutil.NewHarness(t)
	doc := testutil.Network([]document.NodeID{1}, map[document.NodeID]*document.DocumentNode{
		1: testutil.Proto("time.now"),
	})
	executor, _ := h.MustCompile(t, doc)

	first, err := executor.Execute(h.Context(), &runtime.EvalContext{Time: time.Unix(100, 0)})
	require.NoError(t, err)
	second, err := executor.Execute(h.Context(), &runtime.EvalContext{Time: time.Unix(200, 0)})
	require.NoError(t, err)

	// The node opts out of memoization, so a context differing only by
	// time still produces a fresh sample.
	testutil.RequireNumber(t, first, 100)
	testutil.RequireNumber(t, second, 200)
}
