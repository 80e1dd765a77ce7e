// Package mesh defines the mesh and data-channel types the mapping core
// consumes, and the vertex distribution that defines per-rank ownership and
// the canonical gather/scatter layout over a distributed mesh.
package mesh

import (
	"fmt"

	"github.com/arnegrim/meshmap/geometry"
)

// DataChannel is a dense vector of field values over a mesh's vertices,
// indexed so that component d of vertex i lives at i*Dimensions+d.
type DataChannel struct {
	ID         int
	Dimensions int
	Values     []float64
}

// NewDataChannel allocates a zeroed data channel for vertexCount vertices.
func NewDataChannel(id, vertexCount, dimensions int) *DataChannel {
	return &DataChannel{ID: id, Dimensions: dimensions, Values: make([]float64, vertexCount*dimensions)}
}

// VertexDistribution maps rank index to the ordered sequence of global
// vertex indices that rank holds. VertexDistribution[0] must order its
// entries identically to rank 0's own local vertex sequence, so that
// gatherscatter.Channel.Receive is the exact inverse of
// gatherscatter.Channel.Send for the coordinator.
type VertexDistribution [][]int

// GlobalVertexCount returns one past the largest global index appearing in
// the distribution, i.e. the size a global per-vertex buffer must have.
func (d VertexDistribution) GlobalVertexCount() int {
	max := -1
	for _, rank := range d {
		for _, g := range rank {
			if g > max {
				max = g
			}
		}
	}
	return max + 1
}

// Mesh is an ordered sequence of vertices, edges and triangles, with a
// dimensionality, an immutable name, and zero or more data channels keyed by
// integer ID.
type Mesh struct {
	name         string
	dimensions   int
	Vertices     []*geometry.Vertex
	Edges        []*geometry.Edge
	Triangles    []*geometry.Triangle
	data         map[int]*DataChannel
	distribution VertexDistribution
}

// New creates an empty mesh with the given immutable name and
// dimensionality (2 or 3).
func New(name string, dimensions int) *Mesh {
	if dimensions != 2 && dimensions != 3 {
		panic(fmt.Sprintf("mesh: dimensions must be 2 or 3, got %d", dimensions))
	}
	return &Mesh{name: name, dimensions: dimensions, data: make(map[int]*DataChannel)}
}

// Name returns the mesh's immutable name.
func (m *Mesh) Name() string { return m.name }

// Dimensions returns the mesh's spatial dimensionality.
func (m *Mesh) Dimensions() int { return m.dimensions }

// AddVertex appends a vertex, assigning it the next dense local ID.
func (m *Mesh) AddVertex(coords [3]float64) *geometry.Vertex {
	v := &geometry.Vertex{ID: len(m.Vertices), GlobalIndex: len(m.Vertices), Owner: true, Dim: m.dimensions, Coords: coords}
	m.Vertices = append(m.Vertices, v)
	return v
}

// AddEdge appends an edge between two vertices already in the mesh.
func (m *Mesh) AddEdge(a, b *geometry.Vertex) *geometry.Edge {
	e := &geometry.Edge{A: a, B: b}
	m.Edges = append(m.Edges, e)
	return e
}

// AddTriangle appends a triangle bounded by three edges already in the mesh.
func (m *Mesh) AddTriangle(e0, e1, e2 *geometry.Edge) *geometry.Triangle {
	t := &geometry.Triangle{Edges: [3]*geometry.Edge{e0, e1, e2}}
	m.Triangles = append(m.Triangles, t)
	return t
}

// SetData installs a data channel under the given ID, replacing one if it
// already exists.
func (m *Mesh) SetData(id int, d *DataChannel) { m.data[id] = d }

// Data returns the data channel with the given ID, panicking if absent —
// requesting an unbound data ID is a programming error.
func (m *Mesh) Data(id int) *DataChannel {
	d, ok := m.data[id]
	if !ok {
		panic(fmt.Sprintf("mesh %q: no data channel with id %d", m.name, id))
	}
	return d
}

// SetVertexDistribution installs the mesh's vertex distribution.
func (m *Mesh) SetVertexDistribution(d VertexDistribution) { m.distribution = d }

// VertexDistribution returns the mesh's vertex distribution.
func (m *Mesh) VertexDistribution() VertexDistribution { return m.distribution }

// GlobalNumberOfVertices returns the distribution's global vertex count, or
// the mesh's own local vertex count when no distribution has been set
// (the single-rank case).
func (m *Mesh) GlobalNumberOfVertices() int {
	if m.distribution == nil {
		return len(m.Vertices)
	}
	return m.distribution.GlobalVertexCount()
}

// ComputeBoundingBox returns the axis-aligned bounding box of the mesh's
// vertices, used by the RBF mapping's second tag round.
func (m *Mesh) ComputeBoundingBox() geometry.BoundingBox {
	return geometry.ComputeBoundingBox(m.Vertices)
}
