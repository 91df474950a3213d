package hcldoc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vectorlab/vectograph/internal/document"
	"github.com/zclconf/go-cty/cty"
)

const sampleDoc = `
network {
  output = 2

  node {
    id    = 1
    value = 5
  }

  node {
    id = 2
    op = "math.double"
    input { node = 1 }
  }
}
`

func TestParse_SampleDocument(t *testing.T) {
	l := NewLoader()
	net, err := l.Parse(context.Background(), []byte(sampleDoc), "sample.vg.hcl")
	require.NoError(t, err)

	assert.Equal(t, []document.NodeID{2}, net.Exports)
	require.Equal(t, 2, net.Len())

	literal, ok := net.Node(1)
	require.True(t, ok)
	assert.Equal(t, "value.pass", literal.Implementation.Proto)
	require.Len(t, literal.Inputs, 1)
	assert.Equal(t, document.InputValue, literal.Inputs[0].Kind)
	assert.True(t, literal.Inputs[0].Value.RawEquals(cty.NumberIntVal(5)))

	double, ok := net.Node(2)
	require.True(t, ok)
	assert.Equal(t, "math.double", double.Implementation.Proto)
	require.Len(t, double.Inputs, 1)
	assert.Equal(t, document.InputNode, double.Inputs[0].Kind)
	assert.Equal(t, document.NodeID(1), double.Inputs[0].Node)
}

func TestParse_NestedNetwork(t *testing.T) {
	src := `
network {
  output = 1

  node {
    id = 1
    input { value = 3 }

    network {
      output = 1
      node {
        id = 1
        op = "math.double"
        input { port = 0 }
      }
    }
  }
}
`
	l := NewLoader()
	net, err := l.Parse(context.Background(), []byte(src), "nested.vg.hcl")
	require.NoError(t, err)

	outer, ok := net.Node(1)
	require.True(t, ok)
	require.True(t, outer.Implementation.IsNetwork())
	require.Len(t, outer.Inputs, 1)
	assert.Equal(t, document.InputValue, outer.Inputs[0].Kind)

	sub := outer.Implementation.Network
	assert.Equal(t, []document.NodeID{1}, sub.Exports)
	inner, ok := sub.Node(1)
	require.True(t, ok)
	require.Len(t, inner.Inputs, 1)
	assert.Equal(t, document.InputNetwork, inner.Inputs[0].Kind)
	assert.Equal(t, 0, inner.Inputs[0].Port)
}

func TestParse_Errors(t *testing.T) {
	l := NewLoader()
	ctx := context.Background()

	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "syntax error",
			src:  `network {`,
			want: "failed to parse",
		},
		{
			name: "no network block",
			src:  ``,
			want: "no network block",
		},
		{
			name: "two root networks",
			src: `
network { output = 1 }
network { output = 1 }
`,
			want: "more than one root network",
		},
		{
			name: "node with both op and value",
			src: `
network {
  output = 1
  node {
    id    = 1
    op    = "math.double"
    value = 5
  }
}
`,
			want: "exactly one of",
		},
		{
			name: "input with no variant",
			src: `
network {
  output = 1
  node {
    id = 1
    op = "math.double"
    input {}
  }
}
`,
			want: "exactly one of",
		},
		{
			name: "missing output",
			src: `
network {
  node {
    id    = 1
    value = 5
  }
}
`,
			want: "output",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := l.Parse(ctx, []byte(tc.src), tc.name+".vg.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.vg.hcl")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))

	l := NewLoader()
	net, err := l.LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, net.Len())

	_, err = l.LoadFile(context.Background(), filepath.Join(dir, "missing.vg.hcl"))
	assert.Error(t, err)
}
