package vectorops

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

// Kind distinguishes the primitive shapes the builtin nodes produce.
type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindCircle    Kind = "circle"
)

// Shape is a minimal vector primitive: enough geometry for graph nodes to
// construct and transform, leaving path math and rasterization to the
// rendering layer.
type Shape struct {
	Kind Kind
	// X and Y are the top-left corner for rectangles and the center for
	// circles.
	X, Y float64
	// Width and Height apply to rectangles.
	Width, Height float64
	// Radius applies to circles.
	Radius float64
	// StrokeWidth is the outline width, zero for unstroked shapes.
	StrokeWidth float64
}

// GraphHash implements runtime.Hasher so shapes participate in memoization
// keys by value rather than by pointer.
func (s *Shape) GraphHash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(s.Kind))
	for _, f := range []float64{s.X, s.Y, s.Width, s.Height, s.Radius, s.StrokeWidth} {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	return h.Sum64()
}

// Translate returns a copy of the shape moved by (dx, dy).
func (s *Shape) Translate(dx, dy float64) *Shape {
	out := *s
	out.X += dx
	out.Y += dy
	return &out
}

// Scale returns a copy of the shape scaled by factor about the origin.
// Stroke width is a styling property and does not scale with geometry.
func (s *Shape) Scale(factor float64) *Shape {
	out := *s
	out.X *= factor
	out.Y *= factor
	out.Width *= factor
	out.Height *= factor
	out.Radius *= factor
	return &out
}

// WithStrokeWidth returns a copy of the shape with the given outline width.
func (s *Shape) WithStrokeWidth(w float64) *Shape {
	out := *s
	out.StrokeWidth = w
	return &out
}

// ShapeType is the capsule type carrying shapes through the graph.
var ShapeType = cty.CapsuleWithOps("shape", reflect.TypeOf(Shape{}), &cty.CapsuleOps{
	RawEquals: func(a, b interface{}) bool {
		return *(a.(*Shape)) == *(b.(*Shape))
	},
})

// ShapeValue wraps a shape as a cty value.
func ShapeValue(s *Shape) cty.Value {
	return cty.CapsuleVal(ShapeType, s)
}

// ShapeFromValue unwraps a shape from a cty value.
func ShapeFromValue(v cty.Value) *Shape {
	return v.EncapsulatedValue().(*Shape)
}
