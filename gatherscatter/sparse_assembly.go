package gatherscatter

import (
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// assemblyMatrix is the {0,1} gather matrix that restates a rank's
// contribution-into-global-buffer loop as a single matrix-vector product:
// global[g] += sum_i A[g][i]*local[i], where A has exactly one 1 per column
// i at row distribution[i]. Building it once per (distribution, valueDim)
// and reusing it across every Send avoids re-walking the distribution slice
// on the hot path, mirroring how the teacher turns repeated gather loops
// into an Index.Outer matrix build-once/apply-many.
type assemblyMatrix struct {
	csr *sparse.CSR
}

// buildAssemblyMatrix builds the flattened (globalVertexCount*valueDim) x
// (len(ids)*valueDim) assignment matrix for one rank's slice of a vertex
// distribution.
func buildAssemblyMatrix(ids []int, valueDim, globalVertexCount int) *assemblyMatrix {
	localSize := len(ids) * valueDim
	globalSize := globalVertexCount * valueDim

	dok := sparse.NewDOK(globalSize, localSize)
	for i, g := range ids {
		for d := 0; d < valueDim; d++ {
			dok.Set(g*valueDim+d, i*valueDim+d, 1)
		}
	}
	return &assemblyMatrix{csr: dok.ToCSR()}
}

// accumulateInto computes global += A*local and adds the result in place.
func (a *assemblyMatrix) accumulateInto(global, local []float64) {
	if len(local) == 0 {
		return
	}
	localVec := mat.NewVecDense(len(local), local)
	var contribution mat.VecDense
	contribution.MulVec(a.csr, localVec)
	for i := range global {
		global[i] += contribution.AtVec(i)
	}
}

// scatterFrom computes local = A^T * global, the fan-out inverse of
// accumulateInto, writing into the caller's buffer.
func (a *assemblyMatrix) scatterFrom(global []float64, local []float64) {
	if len(local) == 0 {
		return
	}
	globalVec := mat.NewVecDense(len(global), global)
	var result mat.VecDense
	result.MulVec(a.csr.T(), globalVec)
	for i := range local {
		local[i] = result.AtVec(i)
	}
}
