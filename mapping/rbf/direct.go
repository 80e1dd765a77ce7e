// Package rbf implements radial-basis-function mapping: a dense kernel
// matrix built from pairwise distances between input centers, factorized
// and solved for coefficients that are then evaluated on the output
// vertices (Direct), and its reduced-rank Power-Greedy variant (PGreedy).
package rbf

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/arnegrim/meshmap/basis"
	"github.com/arnegrim/meshmap/geometry"
	"github.com/arnegrim/meshmap/mapping"
	"github.com/arnegrim/meshmap/mesh"
)

// Polynomial selects the low-order polynomial augmentation mode for Direct.
type Polynomial int

const (
	PolynomialOff Polynomial = iota
	PolynomialSeparate
	PolynomialOn
)

// Direct is the dense RBF mapping: it assembles the full n x n kernel
// matrix over all input centers, factorizes it once, and solves/evaluates
// on every Map call.
type Direct struct {
	constraint mapping.Constraint
	dimensions int
	Basis      basis.Function
	ActiveAxes [3]bool // at least one must be true; false axes are "dead"
	Poly       Polynomial

	in, out *mesh.Mesh

	matrixA   *mat.Dense // cross-kernel matrix, m x (n[+poly])
	chol      *mat.Cholesky
	qr        *mat.QR
	augmented bool
	n, p      int // center count, polynomial-block width
	computed  bool
}

// NewDirect constructs a dense RBF mapping. activeAxes must have at least
// one true entry.
func NewDirect(constraint mapping.Constraint, dimensions int, fn basis.Function, activeAxes [3]bool, poly Polynomial) *Direct {
	if !activeAxes[0] && !activeAxes[1] && !activeAxes[2] {
		panic("mapping/rbf: at least one axis must be active")
	}
	return &Direct{constraint: constraint, dimensions: dimensions, Basis: fn, ActiveAxes: activeAxes, Poly: poly}
}

func (d *Direct) Constraint() mapping.Constraint { return d.constraint }

func (d *Direct) SetMeshes(in, out *mesh.Mesh) { d.in, d.out = in, out }

func (d *Direct) SetInputRequirement(mapping.MeshRequirement)  {}
func (d *Direct) SetOutputRequirement(mapping.MeshRequirement) {}

func (d *Direct) HasComputedMapping() bool { return d.computed }

func (d *Direct) polyWidth() int {
	if d.Poly == PolynomialOff {
		return 0
	}
	p := 1
	for _, active := range d.ActiveAxes {
		if active {
			p++
		}
	}
	return p
}

// distance computes the active-axis-restricted Euclidean distance between
// two vertices.
func (d *Direct) distance(a, b *geometry.Vertex) float64 {
	return geometry.Distance(a, b, d.ActiveAxes)
}

// polyRow fills the polynomial basis row [1, x, y, (z)] for v, restricted to
// active axes.
func (d *Direct) polyRow(v *geometry.Vertex) []float64 {
	row := make([]float64, 0, d.p)
	row = append(row, 1)
	for dim := 0; dim < 3; dim++ {
		if d.ActiveAxes[dim] {
			row = append(row, v.Coords[dim])
		}
	}
	return row
}

// ComputeMapping assembles the symmetric kernel matrix over input centers,
// optionally augmented with a low-order polynomial block, factorizes it
// (Cholesky for strictly positive definite kernels, gonum's Householder QR
// otherwise — always QR once a polynomial block is present, since the
// augmented saddle system is never positive definite; the QR uses no column
// pivoting, so it is not rank-revealing), and assembles the cross-kernel
// matrix over output vertices. A kernel matrix that Cholesky rejects, or
// whose QR factor is singular or near-singular, makes it return an error
// without marking the mapping computed.
func (d *Direct) ComputeMapping() error {
	if d.in == nil || d.out == nil {
		panic("mapping/rbf: SetMeshes must be called before ComputeMapping")
	}

	n := len(d.in.Vertices)
	m := len(d.out.Vertices)
	d.n = n
	d.p = d.polyWidth()
	d.augmented = d.p > 0

	size := n + d.p
	raw := make([]float64, size*size)
	full := mat.NewDense(size, size, raw)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			full.Set(i, j, d.Basis.Evaluate(d.distance(d.in.Vertices[i], d.in.Vertices[j])))
		}
	}
	for i := 0; i < n; i++ {
		row := d.polyRow(d.in.Vertices[i])
		for k, val := range row {
			full.Set(i, n+k, val)
			full.Set(n+k, i, val)
		}
	}

	if !d.augmented && d.Basis.IsStrictlyPositiveDefinite() {
		sym := mat.NewSymDense(n, raw)
		d.chol = &mat.Cholesky{}
		if ok := d.chol.Factorize(sym); !ok {
			d.chol = nil
			return fmt.Errorf("mapping/rbf: kernel matrix is not positive definite")
		}
		d.qr = nil
	} else {
		d.qr = &mat.QR{}
		d.qr.Factorize(full)
		d.chol = nil
		if cond := d.qr.Cond(); cond > mat.ConditionTolerance {
			d.qr = nil
			return fmt.Errorf("mapping/rbf: kernel matrix is singular or near-singular (condition number %g)", cond)
		}
	}

	aRaw := make([]float64, m*size)
	d.matrixA = mat.NewDense(m, size, aRaw)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			d.matrixA.Set(i, j, d.Basis.Evaluate(d.distance(d.out.Vertices[i], d.in.Vertices[j])))
		}
		if d.augmented {
			row := d.polyRow(d.out.Vertices[i])
			for k, val := range row {
				d.matrixA.Set(i, n+k, val)
			}
		}
	}

	d.computed = true
	return nil
}

func (d *Direct) Clear() {
	d.matrixA = nil
	d.chol = nil
	d.qr = nil
	d.computed = false
}

// solveCoefficients solves C*alpha = rhs (or the augmented saddle system)
// for the coefficient vector. rhs must already be sized n+p, with the
// polynomial-block tail zeroed for a consistent solve.
func (d *Direct) solveCoefficients(rhs []float64) (*mat.VecDense, error) {
	size := d.n + d.p
	b := mat.NewVecDense(size, append([]float64{}, rhs...))
	alpha := mat.NewVecDense(size, nil)

	if d.chol != nil {
		if err := alpha.SolveVec(d.chol, b); err != nil {
			return nil, fmt.Errorf("mapping/rbf: cholesky solve failed: %w", err)
		}
		return alpha, nil
	}
	if err := d.qr.SolveVecTo(alpha, false, b); err != nil {
		return nil, fmt.Errorf("mapping/rbf: qr solve failed: %w", err)
	}
	return alpha, nil
}

func (d *Direct) Map(inputDataID, outputDataID int) error {
	if !d.computed {
		panic("mapping/rbf: Map called before ComputeMapping")
	}
	inData, outData := mapping.CheckValueDimensions(d.in, d.out, inputDataID, outputDataID)
	dim := inData.Dimensions

	switch d.constraint {
	case mapping.Consistent:
		return d.mapConsistent(inData, outData, dim)
	case mapping.Conservative:
		return d.mapConservative(inData, outData, dim)
	default:
		panic(fmt.Sprintf("mapping/rbf: unsupported constraint %v for Direct.Map (wrap with mapping.NewScaledConsistent)", d.constraint))
	}
}

func (d *Direct) mapConsistent(inData, outData *mesh.DataChannel, dim int) error {
	rhs := make([]float64, d.n+d.p)
	m := len(d.out.Vertices)
	for c := 0; c < dim; c++ {
		for i := 0; i < d.n; i++ {
			rhs[i] = inData.Values[i*dim+c]
		}
		alpha, err := d.solveCoefficients(rhs)
		if err != nil {
			return err
		}
		var yOut mat.VecDense
		yOut.MulVec(d.matrixA, alpha)
		for i := 0; i < m; i++ {
			outData.Values[i*dim+c] = yOut.AtVec(i)
		}
	}
	return nil
}

// mapConservative redistributes each input center's value across every
// output vertex in proportion to its kernel weight in matrixA, with each
// center's column of weights rescaled to sum to one first. That rescaling
// is what makes the scheme conservative: summing the contribution of input
// center j over every output vertex returns exactly inData.Values[j], so
// the total sum of outData equals the total sum of inData. The exception is
// a center whose column of weights sums to zero (e.g. no output vertex
// within a compact kernel's support): it contributes nothing, and its value
// is missing from the output sum.
//
// The literal discrete adjoint alpha = C^T \ (A^T * yIn) only type-checks
// when yIn is sized to the output mesh's vertex count, since A is m x n.
// CheckValueDimensions ties inputDataID's channel to the input mesh's
// vertex count for every mapping family and constraint alike (matching
// nn.Mapping's conservative direction), so that adjoint cannot be applied
// here without reading data from the wrong mesh's channel.
func (d *Direct) mapConservative(inData, outData *mesh.DataChannel, dim int) error {
	n := len(d.in.Vertices)
	m := len(d.out.Vertices)

	colSum := make([]float64, n)
	for j := 0; j < n; j++ {
		var s float64
		for k := 0; k < m; k++ {
			s += d.matrixA.At(k, j)
		}
		colSum[j] = s
	}

	for c := 0; c < dim; c++ {
		for j := 0; j < n; j++ {
			if colSum[j] == 0 {
				continue
			}
			share := inData.Values[j*dim+c] / colSum[j]
			for k := 0; k < m; k++ {
				outData.Values[k*dim+c] += share * d.matrixA.At(k, j)
			}
		}
	}
	return nil
}

// TagMeshFirstRound marks every input vertex whose associated center
// influences any output vertex (i.e. every input center — the dense kernel
// matrix gives every center nonzero effective support on a non-compact
// kernel, and even on a compact kernel any center could reach some output
// vertex so all are candidates for this first, coarse round).
func (d *Direct) TagMeshFirstRound() {
	for _, v := range d.in.Vertices {
		v.Tag()
	}
}

// TagMeshSecondRound is a no-op for non-compact kernels. For compact
// kernels it additionally marks any input vertex within the kernel's
// support radius (on the active axes) of an already-tagged input vertex.
func (d *Direct) TagMeshSecondRound() {
	compact, ok := d.Basis.(basis.Compact)
	if !ok {
		return
	}
	radius := compact.SupportRadius()

	var tagged []*geometry.Vertex
	for _, v := range d.in.Vertices {
		if v.Tagged {
			tagged = append(tagged, v)
		}
	}
	for _, candidate := range d.in.Vertices {
		if candidate.Tagged {
			continue
		}
		for _, t := range tagged {
			if d.distance(candidate, t) <= radius {
				candidate.Tag()
				break
			}
		}
	}
}

func withinRadiusOfBox(v *geometry.Vertex, bb geometry.BoundingBox, radius float64, active [3]bool) bool {
	var sum float64
	for dim := 0; dim < 3; dim++ {
		if !active[dim] {
			continue
		}
		c := v.Coords[dim]
		var d float64
		switch {
		case c < bb.Min[dim]:
			d = bb.Min[dim] - c
		case c > bb.Max[dim]:
			d = c - bb.Max[dim]
		default:
			d = 0
		}
		sum += d * d
	}
	return sum <= radius*radius
}
