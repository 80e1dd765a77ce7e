package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnegrim/meshmap/mesh"
)

func TestBuildVertexDistributionSingleRankIsIdentity(t *testing.T) {
	m := mesh.New("m", 2)
	m.AddVertex([3]float64{0, 0, 0})
	m.AddVertex([3]float64{1, 0, 0})
	m.AddVertex([3]float64{2, 0, 0})

	dist, err := BuildVertexDistribution(m, 1)
	require.NoError(t, err)
	require.Len(t, dist, 1)
	assert.Equal(t, []int{0, 1, 2}, dist[0])
}

func TestBuildVertexDistributionRejectsNonPositiveRanks(t *testing.T) {
	m := mesh.New("m", 2)
	_, err := BuildVertexDistribution(m, 0)
	assert.Error(t, err)
}

func TestBuildAdjacencyGraphDeduplicatesEdgesAndTriangleSides(t *testing.T) {
	m := mesh.New("m", 2)
	v0 := m.AddVertex([3]float64{0, 0, 0})
	v1 := m.AddVertex([3]float64{1, 0, 0})
	v2 := m.AddVertex([3]float64{0, 1, 0})
	e0 := m.AddEdge(v0, v1)
	e1 := m.AddEdge(v1, v2)
	e2 := m.AddEdge(v2, v0)
	m.AddTriangle(e0, e1, e2)

	xadj, adjncy := buildAdjacencyGraph(m)
	assert.Len(t, xadj, 4)
	// Each of the three vertices has exactly two neighbors, despite the
	// triangle's sides duplicating the mesh's own edges.
	assert.Equal(t, int32(2), xadj[1]-xadj[0])
	assert.Equal(t, int32(2), xadj[2]-xadj[1])
	assert.Equal(t, int32(2), xadj[3]-xadj[2])
	assert.Len(t, adjncy, 6)
}
