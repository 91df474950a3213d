package mathops_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vectorlab/vectograph/internal/document"
	"github.com/vectorlab/vectograph/internal/proto"
	"github.com/vectorlab/vectograph/internal/runtime"
	"github.com/vectorlab/vectograph/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

func evalOp(t *testing.T, op string, inputs ...document.NodeInput) (cty.Value, error) {
	t.Helper()
	h := testutil.NewHarness(t)
	doc := testutil.Network([]document.NodeID{1}, map[document.NodeID]*document.DocumentNode{
		1: testutil.Proto(op, inputs...),
	})
	executor, _ := h.MustCompile(t, doc)
	return executor.Execute(h.Context(), &runtime.EvalContext{})
}

func TestArithmetic(t *testing.T) {
	cases := []struct {
		op   string
		a, b float64
		want float64
	}{
		{"math.add", 2, 3, 5},
		{"math.subtract", 10, 4, 6},
		{"math.multiply", 6, 7, 42},
		{"math.divide", 9, 2, 4.5},
	}

	for _, tc := range cases {
		t.Run(tc.op, func(t *testing.T) {
			out, err := evalOp(t, tc.op, testutil.Num(tc.a), testutil.Num(tc.b))
			require.NoError(t, err)
			testutil.RequireNumber(t, out, tc.want)
		})
	}
}

func TestAdd_StringOverloadConcatenates(t *testing.T) {
	out, err := evalOp(t, "math.add", testutil.Str("foo"), testutil.Str("bar"))
	require.NoError(t, err)
	require.True(t, out.Type().Equals(cty.String))
	assert.Equal(t, "foobar", out.AsString())
}

func TestDivide_ByZeroFailsAtTheNode(t *testing.T) {
	_, err := evalOp(t, "math.divide", testutil.Num(1), testutil.Num(0))
	require.Error(t, err)

	var gerrs proto.GraphErrors
	require.ErrorAs(t, err, &gerrs)
	require.Len(t, gerrs, 1)
	assert.Equal(t, document.NodeID(1), gerrs[0].Node)
	assert.Equal(t, proto.ErrEvaluation, gerrs[0].Kind)
	assert.Contains(t, gerrs[0].Detail, "division by zero")
}

func TestUnaryOps(t *testing.T) {
	cases := []struct {
		op   string
		in   float64
		want float64
	}{
		{"math.double", 5, 10},
		{"math.negate", 3, -3},
		{"math.floor", 2.7, 2},
		{"math.floor", -2.5, -3},
		{"math.floor", 4, 4},
	}

	for _, tc := range cases {
		t.Run(tc.op, func(t *testing.T) {
			out, err := evalOp(t, tc.op, testutil.Num(tc.in))
			require.NoError(t, err)
			testutil.RequireNumber(t, out, tc.want)
		})
	}
}
