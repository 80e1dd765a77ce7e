package rbf

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/arnegrim/meshmap/basis"
	"github.com/arnegrim/meshmap/geometry"
	"github.com/arnegrim/meshmap/mapping"
	"github.com/arnegrim/meshmap/mesh"
)

// PGreedy is the reduced-rank RBF mapping: instead of factorizing the full
// n x n kernel matrix, it greedily selects up to MaxIter centers by
// maximizing the kernel's power function, maintaining a lower-triangular
// Newton-basis transform incrementally rather than refactorizing on every
// selection. Only the consistent constraint is implemented; conservative
// is a precondition failure.
type PGreedy struct {
	constraint mapping.Constraint
	Basis      basis.Function
	ActiveAxes [3]bool
	MaxIter    int     // default 1000 if zero
	Tolerance  float64 // default 1e-10 if zero

	in, out *mesh.Mesh

	greedyIDs  []int      // selected input vertex local IDs, in selection order
	l          *mat.Dense // K x K lower-triangular Newton-basis transform
	evalMatrix *mat.Dense // K x m, evalMatrix[k][j] = phi(dist(center_k, output_j))
	finalMaxP  float64
	computed   bool
}

// NewPGreedy constructs a P-Greedy RBF mapping. fn must have a finite,
// positive value at r=0. activeAxes must have at least one true entry.
func NewPGreedy(constraint mapping.Constraint, fn basis.Function, activeAxes [3]bool) *PGreedy {
	if constraint == mapping.ScaledConsistent {
		panic("mapping/rbf: wrap PGreedy with mapping.NewScaledConsistent instead of requesting ScaledConsistent directly")
	}
	if !activeAxes[0] && !activeAxes[1] && !activeAxes[2] {
		panic("mapping/rbf: at least one axis must be active")
	}
	if fn.Evaluate(0) <= 0 {
		panic("mapping/rbf: PGreedy requires a basis function with phi(0) finite and > 0")
	}
	return &PGreedy{constraint: constraint, Basis: fn, ActiveAxes: activeAxes, MaxIter: 1000, Tolerance: 1e-10}
}

func (g *PGreedy) Constraint() mapping.Constraint { return g.constraint }

func (g *PGreedy) SetMeshes(in, out *mesh.Mesh) { g.in, g.out = in, out }

func (g *PGreedy) SetInputRequirement(mapping.MeshRequirement)  {}
func (g *PGreedy) SetOutputRequirement(mapping.MeshRequirement) {}

func (g *PGreedy) HasComputedMapping() bool { return g.computed }

// GreedyIDs returns the selected input vertex local IDs, in selection order.
func (g *PGreedy) GreedyIDs() []int { return append([]int(nil), g.greedyIDs...) }

// FinalMaxP returns the power function's maximum value at the iteration the
// selection loop stopped on, for diagnostics and termination tests.
func (g *PGreedy) FinalMaxP() float64 { return g.finalMaxP }

func (g *PGreedy) distance(a, b *geometry.Vertex) float64 {
	return geometry.Distance(a, b, g.ActiveAxes)
}

// ComputeMapping runs the greedy selection loop: at each iteration it picks
// the input vertex with the largest power function value, folds its kernel
// column into the Newton basis via one new row of the triangular transform
// l, and deflates every other vertex's power function by the squared
// projection onto that new column. It stops when the maximum power function
// value drops below Tolerance or MaxIter centers have been selected,
// whichever comes first, then builds the center-by-output-vertex evaluation
// matrix used at Map time.
func (g *PGreedy) ComputeMapping() error {
	if g.in == nil || g.out == nil {
		panic("mapping/rbf: SetMeshes must be called before ComputeMapping")
	}

	n := len(g.in.Vertices)
	maxIter := g.MaxIter
	if maxIter <= 0 {
		maxIter = 1000
	}
	tol := g.Tolerance
	if tol <= 0 {
		tol = 1e-10
	}
	k := n
	if maxIter < k {
		k = maxIter
	}

	phi0 := g.Basis.Evaluate(0)
	p := make([]float64, n)
	for i := range p {
		p[i] = phi0
	}
	centerBits := make([]bool, n)

	var columns [][]float64 // columns[c][j] = Newton basis column c evaluated at input vertex j
	var rows [][]float64    // rows[c] has length c+1: the lower-triangular transform's row c
	var greedyIDs []int
	var maxP float64

	for iter := 0; iter < k; iter++ {
		i, pMax := argmax(p)
		maxP = pMax
		if pMax < tol {
			break
		}

		v := make([]float64, n)
		for j := 0; j < n; j++ {
			v[j] = g.Basis.Evaluate(g.distance(g.in.Vertices[i], g.in.Vertices[j]))
		}

		sqrtPMax := math.Sqrt(pMax)
		for j := 0; j < n; j++ {
			if centerBits[j] {
				continue
			}
			var proj float64
			for c := 0; c < iter; c++ {
				proj += columns[c][j] * columns[c][i]
			}
			v[j] -= proj
			v[j] /= sqrtPMax
			p[j] -= v[j] * v[j]
			if p[j] < 0 {
				p[j] = 0
			}
		}

		row := make([]float64, iter+1)
		for col := 0; col < iter; col++ {
			var s float64
			for c := col; c < iter; c++ {
				s += columns[c][i] * rows[c][col]
			}
			row[col] = -s
		}
		row[iter] = 1
		for col := 0; col <= iter; col++ {
			row[col] /= v[i]
		}

		centerBits[i] = true
		columns = append(columns, v)
		rows = append(rows, row)
		greedyIDs = append(greedyIDs, i)
	}

	numCenters := len(greedyIDs)
	m := len(g.out.Vertices)

	var l, evalMatrix *mat.Dense
	if numCenters > 0 {
		lRaw := make([]float64, numCenters*numCenters)
		l = mat.NewDense(numCenters, numCenters, lRaw)
		for r, row := range rows {
			for c, val := range row {
				l.Set(r, c, val)
			}
		}

		eRaw := make([]float64, numCenters*m)
		evalMatrix = mat.NewDense(numCenters, m, eRaw)
		for row, centerID := range greedyIDs {
			center := g.in.Vertices[centerID]
			for j := 0; j < m; j++ {
				evalMatrix.Set(row, j, g.Basis.Evaluate(g.distance(center, g.out.Vertices[j])))
			}
		}
	}

	g.greedyIDs = greedyIDs
	g.l = l
	g.evalMatrix = evalMatrix
	g.finalMaxP = maxP
	g.computed = true
	return nil
}

// argmax returns the index and value of the largest entry of p.
func argmax(p []float64) (int, float64) {
	best := 0
	for i := 1; i < len(p); i++ {
		if p[i] > p[best] {
			best = i
		}
	}
	return best, p[best]
}

func (g *PGreedy) Clear() {
	g.greedyIDs = nil
	g.l = nil
	g.evalMatrix = nil
	g.computed = false
}

func (g *PGreedy) Map(inputDataID, outputDataID int) error {
	if !g.computed {
		panic("mapping/rbf: Map called before ComputeMapping")
	}
	if g.constraint != mapping.Consistent {
		panic(fmt.Sprintf("mapping/rbf: PGreedy conservative solve is not implemented (constraint=%v)", g.constraint))
	}
	inData, outData := mapping.CheckValueDimensions(g.in, g.out, inputDataID, outputDataID)
	return g.solveConsistent(inData, outData, inData.Dimensions)
}

// solveConsistent predicts output values from the Newton-basis coefficients
// of the selected centers: alpha = l^T * (l * y), yOut = evalMatrix^T * alpha.
func (g *PGreedy) solveConsistent(inData, outData *mesh.DataChannel, dim int) error {
	k := len(g.greedyIDs)
	m := len(g.out.Vertices)
	for c := 0; c < dim; c++ {
		y := mat.NewVecDense(k, nil)
		for row, id := range g.greedyIDs {
			y.SetVec(row, inData.Values[id*dim+c])
		}
		var u mat.VecDense
		u.MulVec(g.l, y)
		var alpha mat.VecDense
		alpha.MulVec(g.l.T(), &u)
		var yOut mat.VecDense
		yOut.MulVec(g.evalMatrix.T(), &alpha)
		for j := 0; j < m; j++ {
			outData.Values[j*dim+c] = yOut.AtVec(j)
		}
	}
	return nil
}

// TagMeshFirstRound marks every input vertex selected as a reduced-basis
// center.
func (g *PGreedy) TagMeshFirstRound() {
	for _, id := range g.greedyIDs {
		g.in.Vertices[id].Tag()
	}
}

// TagMeshSecondRound is a no-op for non-compact kernels. For compact
// kernels it additionally marks any input vertex within the kernel's
// support radius of the output mesh's bounding box.
func (g *PGreedy) TagMeshSecondRound() {
	compact, ok := g.Basis.(basis.Compact)
	if !ok {
		return
	}
	radius := compact.SupportRadius()
	bb := g.out.ComputeBoundingBox()

	for _, v := range g.in.Vertices {
		if v.Tagged {
			continue
		}
		if withinRadiusOfBox(v, bb, radius, g.ActiveAxes) {
			v.Tag()
		}
	}
}
