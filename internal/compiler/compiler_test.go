package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vectorlab/vectograph/internal/document"
	"github.com/vectorlab/vectograph/internal/proto"
	"github.com/vectorlab/vectograph/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

func TestCompile_ConstantThroughDouble(t *testing.T) {
	h := testutil.NewHarness(t)
	doc := testutil.Network([]document.NodeID{1}, map[document.NodeID]*document.DocumentNode{
		1: testutil.Proto("math.double", testutil.Num(5)),
	})

	executor, delta := h.MustCompile(t, doc)
	require.NotNil(t, delta)
	assert.Contains(t, delta.NewlyResolved, document.NodeID(1))

	result := h.MustExecute(t, executor)
	testutil.RequireNumber(t, result, 10)
}

func TestCompile_StructuralFailureKeepsPreviousExecutor(t *testing.T) {
	h := testutil.NewHarness(t)

	good := testutil.Network([]document.NodeID{1}, map[document.NodeID]*document.DocumentNode{
		1: testutil.Proto("math.double", testutil.Num(5)),
	})
	executor, _ := h.MustCompile(t, good)

	broken := testutil.Network([]document.NodeID{1}, map[document.NodeID]*document.DocumentNode{
		1: testutil.Proto("math.double", document.NodeRef(7)),
	})
	failedExec, delta, err := h.Compiler.Compile(h.Context(), broken)
	assert.Nil(t, failedExec)
	assert.Nil(t, delta, "structural failures abort before type resolution")
	require.Error(t, err)

	var gerrs proto.GraphErrors
	require.ErrorAs(t, err, &gerrs)
	require.Len(t, gerrs, 1)
	assert.Equal(t, proto.ErrDanglingReference, gerrs[0].Kind)
	assert.Equal(t, document.NodeID(7), gerrs[0].Node)

	// The previous executor is untouched and still serves evaluations.
	assert.Same(t, executor, h.Compiler.Executor())
	testutil.RequireNumber(t, h.MustExecute(t, executor), 10)
}

func TestCompile_TypeFailureReportsCandidates(t *testing.T) {
	h := testutil.NewHarness(t)
	doc := testutil.Network([]document.NodeID{1}, map[document.NodeID]*document.DocumentNode{
		1: testutil.Proto("math.subtract", testutil.Str("a"), testutil.Num(1)),
	})

	executor, delta, err := h.Compiler.Compile(h.Context(), doc)
	assert.Nil(t, executor)
	require.Error(t, err)

	require.NotNil(t, delta, "type failures still produce a delta for the editor")
	assert.Contains(t, delta.NewlyFailed, document.NodeID(1))

	var gerrs proto.GraphErrors
	require.ErrorAs(t, err, &gerrs)
	require.Len(t, gerrs, 1)
	assert.Equal(t, proto.ErrNoImplementations, gerrs[0].Kind)
	assert.Contains(t, gerrs[0].Detail, "string, number")
	assert.Contains(t, gerrs[0].Detail, "(number, number) -> number")
}

func TestCompile_OverloadMismatchNamesAllCandidates(t *testing.T) {
	h := testutil.NewHarness(t)
	// Neither math.add overload accepts a list input.
	doc := testutil.Network([]document.NodeID{1}, map[document.NodeID]*document.DocumentNode{
		1: testutil.Proto("math.add",
			document.ValueInput(cty.ListValEmpty(cty.Bool)), testutil.Num(1)),
	})

	_, _, err := h.Compiler.Compile(h.Context(), doc)
	require.Error(t, err)

	var gerrs proto.GraphErrors
	require.ErrorAs(t, err, &gerrs)
	require.Len(t, gerrs, 1)
	assert.Contains(t, gerrs[0].Detail, "(number, number) -> number")
	assert.Contains(t, gerrs[0].Detail, "(string, string) -> string")
}

func TestCompile_IdenticalRecompileIsEmpty(t *testing.T) {
	h := testutil.NewHarness(t)
	build := func() *document.NodeNetwork {
		return testutil.Network([]document.NodeID{2}, map[document.NodeID]*document.DocumentNode{
			1: testutil.Proto("math.double", testutil.Num(5)),
			2: testutil.Proto("math.negate", document.NodeRef(1)),
		})
	}

	first, _ := h.MustCompile(t, build())
	second, delta := h.MustCompile(t, build())

	assert.True(t, delta.Empty(), "an unchanged document produces an empty delta")
	assert.Equal(t, 0, delta.Rebuilt)
	assert.Equal(t, second.NodeCount(), delta.Reused)

	// Every runtime node is carried by reference.
	for _, id := range []document.NodeID{1, 2} {
		prev, ok := first.Node(id)
		require.True(t, ok)
		next, ok := second.Node(id)
		require.True(t, ok)
		assert.Same(t, prev, next)
	}
}

func TestCompile_LeafEditRebuildsOnlyDownstream(t *testing.T) {
	counting := testutil.NewCountingModule()
	modules := append(testutil.CoreModules(), counting)
	h := testutil.NewHarness(t, modules...)

	build := func(leaf float64) *document.NodeNetwork {
		return testutil.Network([]document.NodeID{3}, map[document.NodeID]*document.DocumentNode{
			1: testutil.Proto("test.probe", testutil.Num(5)),
			2: testutil.Proto("math.double", testutil.Num(leaf)),
			3: testutil.Proto("math.add", document.NodeRef(1), document.NodeRef(2)),
		})
	}

	first, _ := h.MustCompile(t, build(3))
	testutil.RequireNumber(t, h.MustExecute(t, first), 11)
	testutil.RequireNumber(t, h.MustExecute(t, first), 11)
	assert.Equal(t, 1, counting.Calls("test.probe"),
		"the memo serves the second pass without re-invoking the node")

	second, delta := h.MustCompile(t, build(4))
	testutil.RequireNumber(t, h.MustExecute(t, second), 13)

	// The probe branch was untouched: same runtime node, warm cache.
	prevProbe, _ := first.Node(1)
	nextProbe, ok := second.Node(1)
	require.True(t, ok)
	assert.Same(t, prevProbe, nextProbe)
	assert.Equal(t, 1, counting.Calls("test.probe"))

	// The edited literal, its pass-through, and the downstream add rebuild.
	assert.Equal(t, 3, delta.Rebuilt)
	assert.Equal(t, 2, delta.Reused)

	prevDouble, _ := first.Node(2)
	nextDouble, _ := second.Node(2)
	assert.NotSame(t, prevDouble, nextDouble)
}

func TestCompile_PublishesDeltasToSubscribers(t *testing.T) {
	h := testutil.NewHarness(t)
	deltas, cancel := h.Compiler.Subscribe()
	defer cancel()

	doc := testutil.Network([]document.NodeID{1}, map[document.NodeID]*document.DocumentNode{
		1: testutil.Proto("math.double", testutil.Num(5)),
	})
	_, compiled := h.MustCompile(t, doc)

	select {
	case delta := <-deltas:
		assert.Equal(t, compiled.CompilationID, delta.CompilationID)
		assert.Contains(t, delta.NewlyResolved, document.NodeID(1))
	default:
		t.Fatal("expected a published delta")
	}
}

func TestCompile_CancelledSubscriptionsStopReceiving(t *testing.T) {
	h := testutil.NewHarness(t)
	deltas, cancel := h.Compiler.Subscribe()
	kept, keptCancel := h.Compiler.Subscribe()
	defer keptCancel()

	cancel()
	_, open := <-deltas
	assert.False(t, open, "cancelling a subscription closes its channel")
	cancel() // repeated cancellation is a no-op

	doc := testutil.Network([]document.NodeID{1}, map[document.NodeID]*document.DocumentNode{
		1: testutil.Proto("math.double", testutil.Num(5)),
	})
	h.MustCompile(t, doc)

	select {
	case delta, ok := <-kept:
		require.True(t, ok)
		assert.NotNil(t, delta)
	default:
		t.Fatal("the remaining subscriber still receives deltas")
	}
}

func TestCompile_SkipMemoizationNodesReevaluate(t *testing.T) {
	counting := testutil.NewCountingModule()
	modules := append(testutil.CoreModules(), counting)
	h := testutil.NewHarness(t, modules...)

	doc := testutil.Network([]document.NodeID{1}, map[document.NodeID]*document.DocumentNode{
		1: testutil.Proto("test.tick"),
	})

	executor, _ := h.MustCompile(t, doc)
	h.MustExecute(t, executor)
	h.MustExecute(t, executor)
	assert.Equal(t, 2, counting.Calls("test.tick"),
		"nodes opting out of memoization run on every pass")
}

func TestCompile_MemoizedConsumersOfUnmemoizedNodesStayFresh(t *testing.T) {
	counting := testutil.NewCountingModule()
	modules := append(testutil.CoreModules(), counting)
	h := testutil.NewHarness(t, modules...)

	doc := testutil.Network([]document.NodeID{2}, map[document.NodeID]*document.DocumentNode{
		1: testutil.Proto("test.tick"),
		2: testutil.Proto("math.double", document.NodeRef(1)),
	})

	executor, _ := h.MustCompile(t, doc)
	testutil.RequireNumber(t, h.MustExecute(t, executor), 2)
	testutil.RequireNumber(t, h.MustExecute(t, executor), 4,
		"a consumer of an unmemoized node must not serve a stale cache")
	assert.Equal(t, 2, counting.Calls("test.tick"))
}
