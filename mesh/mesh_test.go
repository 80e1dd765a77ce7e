package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPanicsOnBadDimensions(t *testing.T) {
	assert.Panics(t, func() { New("bad", 1) })
	assert.NotPanics(t, func() { New("ok2d", 2) })
	assert.NotPanics(t, func() { New("ok3d", 3) })
}

func TestAddVertexAssignsDenseIDs(t *testing.T) {
	m := New("m", 2)
	v0 := m.AddVertex([3]float64{0, 0, 0})
	v1 := m.AddVertex([3]float64{1, 0, 0})
	assert.Equal(t, 0, v0.ID)
	assert.Equal(t, 1, v1.ID)
	assert.Len(t, m.Vertices, 2)
}

func TestDataChannelRoundTrip(t *testing.T) {
	m := New("m", 2)
	m.AddVertex([3]float64{0, 0, 0})
	m.AddVertex([3]float64{1, 0, 0})

	d := NewDataChannel(7, len(m.Vertices), 2)
	d.Values[0], d.Values[1] = 1, 2
	m.SetData(7, d)

	got := m.Data(7)
	assert.Equal(t, d, got)
	assert.Panics(t, func() { m.Data(8) })
}

func TestVertexDistributionGlobalVertexCount(t *testing.T) {
	dist := VertexDistribution{{0, 1}, {2, 3, 4}}
	assert.Equal(t, 5, dist.GlobalVertexCount())

	var empty VertexDistribution
	assert.Equal(t, 0, empty.GlobalVertexCount())
}

func TestGlobalNumberOfVerticesFallsBackToLocal(t *testing.T) {
	m := New("m", 2)
	m.AddVertex([3]float64{0, 0, 0})
	m.AddVertex([3]float64{1, 0, 0})
	assert.Equal(t, 2, m.GlobalNumberOfVertices())

	m.SetVertexDistribution(VertexDistribution{{0, 1}, {2, 3, 4, 5}})
	assert.Equal(t, 6, m.GlobalNumberOfVertices())
}

func TestAddEdgeAndTriangle(t *testing.T) {
	m := New("m", 2)
	v0 := m.AddVertex([3]float64{0, 0, 0})
	v1 := m.AddVertex([3]float64{1, 0, 0})
	v2 := m.AddVertex([3]float64{0, 1, 0})
	e0 := m.AddEdge(v0, v1)
	e1 := m.AddEdge(v1, v2)
	e2 := m.AddEdge(v2, v0)
	tri := m.AddTriangle(e0, e1, e2)
	assert.Len(t, m.Edges, 3)
	assert.Len(t, m.Triangles, 1)
	assert.InDelta(t, 0.5, tri.Area(), 1e-9)
}
