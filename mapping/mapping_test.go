package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arnegrim/meshmap/mesh"
)

func TestConstraintString(t *testing.T) {
	assert.Equal(t, "consistent", Consistent.String())
	assert.Equal(t, "conservative", Conservative.String())
	assert.Equal(t, "scaled-consistent", ScaledConsistent.String())
	assert.Equal(t, "Constraint(7)", Constraint(7).String())
}

func buildLineMesh(values []float64) *mesh.Mesh {
	m := mesh.New("line", 2)
	for i := range values {
		m.AddVertex([3]float64{float64(i), 0, 0})
	}
	d := mesh.NewDataChannel(0, len(values), 1)
	copy(d.Values, values)
	m.SetData(0, d)
	return m
}

func TestCheckValueDimensionsPanicsOnMismatch(t *testing.T) {
	in := buildLineMesh([]float64{1, 2, 3})
	out := mesh.New("out", 2)
	out.AddVertex([3]float64{0, 0, 0})
	outData := mesh.NewDataChannel(0, 1, 2)
	out.SetData(0, outData)

	assert.Panics(t, func() { CheckValueDimensions(in, out, 0, 0) })
}

func TestCheckValueDimensionsOK(t *testing.T) {
	in := buildLineMesh([]float64{1, 2, 3})
	out := buildLineMesh([]float64{0, 0, 0})
	inData, outData := CheckValueDimensions(in, out, 0, 0)
	assert.Equal(t, 1, inData.Dimensions)
	assert.Equal(t, 1, outData.Dimensions)
}

func TestSurfaceIntegralTrapezoidal2D(t *testing.T) {
	m := mesh.New("square", 2)
	m.AddVertex([3]float64{0, 0, 0})
	m.AddVertex([3]float64{1, 0, 0})
	m.AddVertex([3]float64{1, 1, 0})
	m.AddVertex([3]float64{0, 1, 0})
	for i := 0; i < 4; i++ {
		m.AddEdge(m.Vertices[i], m.Vertices[(i+1)%4])
	}
	d := mesh.NewDataChannel(0, 4, 1)
	d.Values = []float64{1, 2, 2, 1}
	m.SetData(0, d)

	integral, err := SurfaceIntegral(m, d, 0, LocalReducer())
	assert.NoError(t, err)
	// Four unit edges, trapezoidal average of adjacent values: (1.5+2+1.5+1)=6.
	assert.InDelta(t, 6.0, integral, 1e-9)
}

func TestSurfaceIntegralSkipsUnownedPrimitives(t *testing.T) {
	m := mesh.New("halo", 2)
	owned := m.AddVertex([3]float64{0, 0, 0})
	notOwned := m.AddVertex([3]float64{1, 0, 0})
	notOwned.Owner = false
	m.AddEdge(owned, notOwned)
	m.AddEdge(notOwned, owned)

	d := mesh.NewDataChannel(0, 2, 1)
	d.Values = []float64{1, 3}
	m.SetData(0, d)

	integral, err := SurfaceIntegral(m, d, 0, LocalReducer())
	assert.NoError(t, err)
	// Only the edge whose first vertex (owned) is owned contributes.
	assert.InDelta(t, 2.0, integral, 1e-9)
}
