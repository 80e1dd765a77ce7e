package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceActiveAxes(t *testing.T) {
	a := NewVertex2D(0, 0, 0)
	b := NewVertex2D(1, 3, 4)
	assert.Equal(t, 5.0, Distance(a, b, [3]bool{true, true, true}))
	assert.Equal(t, 3.0, Distance(a, b, [3]bool{true, false, false}))
	assert.Equal(t, 4.0, Distance(a, b, [3]bool{false, true, false}))
}

func TestEdgeLengthAndMidpoint(t *testing.T) {
	a := NewVertex2D(0, 0, 0)
	b := NewVertex2D(1, 4, 0)
	e := &Edge{A: a, B: b}
	assert.Equal(t, 4.0, e.Length())
	mid := e.Midpoint()
	assert.Equal(t, [3]float64{2, 0, 0}, mid)
}

func TestTriangleAreaAndVertices(t *testing.T) {
	v0 := NewVertex2D(0, 0, 0)
	v1 := NewVertex2D(1, 4, 0)
	v2 := NewVertex2D(2, 0, 3)
	e0 := &Edge{A: v0, B: v1}
	e1 := &Edge{A: v1, B: v2}
	e2 := &Edge{A: v2, B: v0}
	tri := &Triangle{Edges: [3]*Edge{e0, e1, e2}}

	verts := tri.Vertices()
	assert.Equal(t, v0, verts[0])
	assert.Equal(t, v1, verts[1])
	assert.Equal(t, v2, verts[2])

	assert.InDelta(t, 6.0, tri.Area(), 1e-9)

	mean := tri.MeanValue(func(v *Vertex) float64 { return v.Coords[0] })
	assert.InDelta(t, (0.0+4.0+0.0)/3.0, mean, 1e-9)
}

func TestComputeBoundingBox(t *testing.T) {
	vs := []*Vertex{
		NewVertex2D(0, -1, 2),
		NewVertex2D(1, 3, -4),
		NewVertex2D(2, 0, 0),
	}
	bb := ComputeBoundingBox(vs)
	assert.Equal(t, [3]float64{-1, -4, 0}, bb.Min)
	assert.Equal(t, [3]float64{3, 2, 0}, bb.Max)
}

func TestTag(t *testing.T) {
	v := NewVertex3D(0, 1, 1, 1)
	assert.False(t, v.Tagged)
	v.Tag()
	assert.True(t, v.Tagged)
}

func TestDistanceSqrtNotNegative(t *testing.T) {
	a := NewVertex3D(0, 1, 2, 3)
	assert.Equal(t, 0.0, Distance(a, a, [3]bool{true, true, true}))
	assert.False(t, math.IsNaN(Distance(a, a, [3]bool{false, false, false})))
}
