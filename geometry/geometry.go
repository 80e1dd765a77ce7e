// Package geometry holds the low-level spatial primitives shared by the
// mesh and mapping packages: vertices, edges and triangles.
package geometry

import "math"

// Vertex is a point in 2-D or 3-D space carrying the bookkeeping a
// distributed mesh needs: a dense local ID, a global index stable once a
// VertexDistribution is fixed, ownership, and a tag bit used by the two-round
// mapping tag passes.
type Vertex struct {
	ID          int
	GlobalIndex int
	Owner       bool
	Tagged      bool
	Coords      [3]float64
	Dim         int
}

// NewVertex2D builds a 2-D vertex at the given local ID.
func NewVertex2D(id int, x, y float64) *Vertex {
	return &Vertex{ID: id, GlobalIndex: id, Owner: true, Dim: 2, Coords: [3]float64{x, y, 0}}
}

// NewVertex3D builds a 3-D vertex at the given local ID.
func NewVertex3D(id int, x, y, z float64) *Vertex {
	return &Vertex{ID: id, GlobalIndex: id, Owner: true, Dim: 3, Coords: [3]float64{x, y, z}}
}

// Tag marks the vertex as touched by a mapping's tag pass.
func (v *Vertex) Tag() { v.Tagged = true }

// Distance returns the Euclidean distance between two vertices, restricted
// to the axes for which active[d] is true. An all-false mask yields a
// distance of 0.
func Distance(a, b *Vertex, active [3]bool) float64 {
	var sum float64
	for d := 0; d < 3; d++ {
		if !active[d] {
			continue
		}
		diff := a.Coords[d] - b.Coords[d]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// Edge is an unordered pair of vertex references with a derived length.
type Edge struct {
	A, B *Vertex
}

// Length returns the Euclidean length of the edge.
func (e *Edge) Length() float64 {
	return Distance(e.A, e.B, [3]bool{true, true, true})
}

// Midpoint returns the edge's midpoint coordinates.
func (e *Edge) Midpoint() [3]float64 {
	var m [3]float64
	for d := 0; d < 3; d++ {
		m[d] = 0.5 * (e.A.Coords[d] + e.B.Coords[d])
	}
	return m
}

// Triangle is a flat triangle defined by its three bounding edges, with a
// derived area via the cross product of two of its sides.
type Triangle struct {
	Edges [3]*Edge
}

// Vertices extracts the triangle's three distinct corner vertices from its
// edges, in the same manner as the teacher's GetVertices: the first edge
// fixes two corners, and the remaining edge not sharing both endpoints with
// it supplies the third.
func (t *Triangle) Vertices() [3]*Vertex {
	var verts [3]*Vertex
	verts[0] = t.Edges[0].A
	verts[1] = t.Edges[0].B
	if t.Edges[1].A != verts[0] && t.Edges[1].A != verts[1] {
		verts[2] = t.Edges[1].A
	} else {
		verts[2] = t.Edges[1].B
	}
	return verts
}

// Area returns the flat-triangle area via the cross-product rule, projected
// onto the plane spanned by the triangle's own edges (correct for both 2-D
// and 3-D triangles).
func (t *Triangle) Area() float64 {
	v := t.Vertices()
	var u, w [3]float64
	for d := 0; d < 3; d++ {
		u[d] = v[1].Coords[d] - v[0].Coords[d]
		w[d] = v[2].Coords[d] - v[0].Coords[d]
	}
	cx := u[1]*w[2] - u[2]*w[1]
	cy := u[2]*w[0] - u[0]*w[2]
	cz := u[0]*w[1] - u[1]*w[0]
	return 0.5 * math.Sqrt(cx*cx+cy*cy+cz*cz)
}

// MeanValue returns the arithmetic mean of a value sampled at the triangle's
// three corners, used by the flat-triangle surface-integral rule.
func (t *Triangle) MeanValue(valueAt func(v *Vertex) float64) float64 {
	v := t.Vertices()
	return (valueAt(v[0]) + valueAt(v[1]) + valueAt(v[2])) / 3.0
}

// BoundingBox is an axis-aligned box, used by the RBF mapping's second tag
// round to bound which vertices a compact-support kernel could reach.
type BoundingBox struct {
	Min, Max [3]float64
}

// ComputeBoundingBox returns the axis-aligned bounding box of a vertex set.
func ComputeBoundingBox(vertices []*Vertex) BoundingBox {
	var bb BoundingBox
	if len(vertices) == 0 {
		return bb
	}
	bb.Min = vertices[0].Coords
	bb.Max = vertices[0].Coords
	for _, v := range vertices[1:] {
		for d := 0; d < 3; d++ {
			if v.Coords[d] < bb.Min[d] {
				bb.Min[d] = v.Coords[d]
			}
			if v.Coords[d] > bb.Max[d] {
				bb.Max[d] = v.Coords[d]
			}
		}
	}
	return bb
}
