// Package nn implements nearest-neighbor mapping: an R-tree-driven index
// table used for pointwise copy (consistent) or accumulation (conservative).
package nn

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/arnegrim/meshmap/geometry"
	"github.com/arnegrim/meshmap/mapping"
	"github.com/arnegrim/meshmap/mesh"
	"github.com/arnegrim/meshmap/spatialindex"
)

// Mapping is the nearest-neighbor mapping family member. For Consistent, it
// indexes the input mesh and records, per output vertex, the local ID of
// its nearest input vertex. For Conservative it does the reverse: it
// indexes the output mesh and records, per input vertex, the local ID of
// its nearest output vertex.
type Mapping struct {
	constraint mapping.Constraint
	in, out    *mesh.Mesh

	vertexIndices []int
	accumulator   *sparse.CSR // conservative accumulation matrix, built once per ComputeMapping
	computed      bool
}

// New constructs a nearest-neighbor mapping. dimensions is accepted for
// symmetry with the RBF constructors but unused: NN has no dense state
// whose size depends on it.
func New(constraint mapping.Constraint, dimensions int) *Mapping {
	if constraint == mapping.ScaledConsistent {
		panic("mapping/nn: wrap with mapping.NewScaledConsistent instead of requesting ScaledConsistent directly")
	}
	return &Mapping{constraint: constraint}
}

func (m *Mapping) Constraint() mapping.Constraint { return m.constraint }

func (m *Mapping) SetMeshes(in, out *mesh.Mesh) { m.in, m.out = in, out }

// SetInputRequirement and SetOutputRequirement are accepted for interface
// conformance; NN only ever needs vertex data.
func (m *Mapping) SetInputRequirement(mapping.MeshRequirement)  {}
func (m *Mapping) SetOutputRequirement(mapping.MeshRequirement) {}

func (m *Mapping) HasComputedMapping() bool { return m.computed }

// ComputeMapping builds an R-tree over the opposite mesh, then for each
// vertex of the reference mesh records the local ID of its single nearest
// neighbor, ties broken by smallest local ID.
func (m *Mapping) ComputeMapping() error {
	if m.in == nil || m.out == nil {
		panic("mapping/nn: SetMeshes must be called before ComputeMapping")
	}

	if m.constraint == mapping.Consistent {
		idx := spatialindex.Build(m.in.Vertices)
		defer idx.Clear()
		m.vertexIndices = make([]int, len(m.out.Vertices))
		for i, v := range m.out.Vertices {
			nearest := idx.Query(v.Coords, 1)
			m.vertexIndices[i] = nearest[0].ID
		}
	} else {
		idx := spatialindex.Build(m.out.Vertices)
		defer idx.Clear()
		m.vertexIndices = make([]int, len(m.in.Vertices))
		for i, v := range m.in.Vertices {
			nearest := idx.Query(v.Coords, 1)
			m.vertexIndices[i] = nearest[0].ID
		}
	}

	m.accumulator = nil
	m.computed = true
	return nil
}

// Clear drops the mapping's index table, making hasComputedMapping false
// again.
func (m *Mapping) Clear() {
	m.vertexIndices = nil
	m.accumulator = nil
	m.computed = false
}

// Map performs the pointwise copy (consistent, overwriting) or accumulation
// (conservative, additive — outputValues must be zeroed by the caller before
// the first Map in a cycle) described by the mapping's index table.
func (m *Mapping) Map(inputDataID, outputDataID int) error {
	if !m.computed {
		panic("mapping/nn: Map called before ComputeMapping")
	}
	inData, outData := mapping.CheckValueDimensions(m.in, m.out, inputDataID, outputDataID)
	dim := inData.Dimensions

	if m.constraint == mapping.Consistent {
		for i, srcID := range m.vertexIndices {
			copy(outData.Values[i*dim:(i+1)*dim], inData.Values[srcID*dim:(srcID+1)*dim])
		}
		return nil
	}

	return m.mapConservative(inData, outData, dim)
}

// mapConservative accumulates input values into output values keyed by the
// index table, expressed as a sparse 0/1 assignment matrix built once and
// applied by matrix-vector product on every call.
func (m *Mapping) mapConservative(inData, outData *mesh.DataChannel, dim int) error {
	if m.accumulator == nil {
		m.accumulator = buildAccumulator(m.vertexIndices, dim, len(m.out.Vertices))
	}
	in := mat.NewVecDense(len(inData.Values), inData.Values)
	var contribution mat.VecDense
	contribution.MulVec(m.accumulator, in)
	for i := range outData.Values {
		outData.Values[i] += contribution.AtVec(i)
	}
	return nil
}

// buildAccumulator builds the (outVertexCount*dim) x (len(vertexIndices)*dim)
// sparse matrix S with S[vertexIndices[i]*dim+d][i*dim+d] = 1, so that
// outputValues += S * inputValues restates the conservative accumulation
// loop as a matrix-vector product.
func buildAccumulator(vertexIndices []int, dim, outVertexCount int) *sparse.CSR {
	dok := sparse.NewDOK(outVertexCount*dim, len(vertexIndices)*dim)
	for i, dst := range vertexIndices {
		for d := 0; d < dim; d++ {
			dok.Set(dst*dim+d, i*dim+d, 1)
		}
	}
	return dok.ToCSR()
}

// TagMeshFirstRound marks every vertex of the opposite-of-reference mesh
// whose local ID appears in the index table, then clears the mapping.
func (m *Mapping) TagMeshFirstRound() {
	if err := m.ComputeMapping(); err != nil {
		panic(fmt.Sprintf("mapping/nn: tag round computeMapping failed: %v", err))
	}

	tagged := make(map[int]bool, len(m.vertexIndices))
	for _, id := range m.vertexIndices {
		tagged[id] = true
	}

	var vertices []*geometry.Vertex
	if m.constraint == mapping.Consistent {
		vertices = m.in.Vertices
	} else {
		vertices = m.out.Vertices
	}
	for _, v := range vertices {
		if tagged[v.ID] {
			v.Tag()
		}
	}

	m.Clear()
}

// TagMeshSecondRound is a no-op for nearest-neighbor mapping.
func (m *Mapping) TagMeshSecondRound() {}
