package spatialindex

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arnegrim/meshmap/geometry"
)

func TestQueryTieBreaksOnSmallestID(t *testing.T) {
	vertices := []*geometry.Vertex{
		geometry.NewVertex2D(0, 0, 0),
		geometry.NewVertex2D(1, 1, 0),
		geometry.NewVertex2D(2, 1, 1),
		geometry.NewVertex2D(3, 0, 1),
	}
	idx := Build(vertices)
	defer idx.Clear()

	nearest := idx.Query([3]float64{0.5, 0.0, 0}, 1)
	assert.Len(t, nearest, 1)
	assert.Equal(t, 0, nearest[0].ID)
}

func TestQueryDeadAxisIgnoresItInRanking(t *testing.T) {
	vertices := []*geometry.Vertex{
		geometry.NewVertex2D(0, 0, 1),
		geometry.NewVertex2D(1, 1, 1),
		geometry.NewVertex2D(2, 2, 1),
		geometry.NewVertex2D(3, 3, 1),
	}
	idx := BuildMasked(vertices, [3]bool{true, false, false})
	defer idx.Clear()

	nearest := idx.Query([3]float64{0, 3, 0}, 1)
	assert.Len(t, nearest, 1)
	assert.Equal(t, 0, nearest[0].ID)
}

func TestQueryKNearest(t *testing.T) {
	vertices := []*geometry.Vertex{
		geometry.NewVertex2D(0, 0, 0),
		geometry.NewVertex2D(1, 10, 0),
		geometry.NewVertex2D(2, 1, 0),
		geometry.NewVertex2D(3, 2, 0),
	}
	idx := Build(vertices)
	defer idx.Clear()

	nearest := idx.Query([3]float64{0, 0, 0}, 3)
	assert.Len(t, nearest, 3)
	ids := []int{nearest[0].ID, nearest[1].ID, nearest[2].ID}
	assert.Equal(t, []int{0, 2, 3}, ids)
}

func TestQueryEmptyIndex(t *testing.T) {
	idx := Build(nil)
	defer idx.Clear()
	assert.Nil(t, idx.Query([3]float64{0, 0, 0}, 1))
}
