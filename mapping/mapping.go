// Package mapping defines the constraint-tagged mapping contract shared by
// the nearest-neighbor and RBF mapping families, and the scaled-consistent
// decorator that composes any consistent mapping with a global rescaling.
package mapping

import (
	"fmt"

	"github.com/arnegrim/meshmap/mesh"
)

// Constraint selects how a mapping relates input and output fields.
type Constraint int

const (
	// Consistent interpolation reproduces the input field at output vertices.
	Consistent Constraint = iota
	// Conservative is the discrete adjoint of a consistent mapping; it
	// preserves global sums.
	Conservative
	// ScaledConsistent is consistent interpolation followed by a global
	// rescaling so the output surface integral matches the input's.
	ScaledConsistent
)

func (c Constraint) String() string {
	switch c {
	case Consistent:
		return "consistent"
	case Conservative:
		return "conservative"
	case ScaledConsistent:
		return "scaled-consistent"
	default:
		return fmt.Sprintf("Constraint(%d)", int(c))
	}
}

// MeshRequirement names what connectivity a mapping needs from its meshes.
type MeshRequirement int

const (
	RequireVertex MeshRequirement = iota
	RequireEdge
	RequireTriangle
)

// Mapping is the polymorphic boundary every mapping family implements:
// nearest-neighbor, RBF-direct and P-Greedy RBF. Composition (e.g.
// scaled-consistent) wraps a Mapping rather than duplicating its body.
type Mapping interface {
	Constraint() Constraint
	SetMeshes(in, out *mesh.Mesh)
	SetInputRequirement(MeshRequirement)
	SetOutputRequirement(MeshRequirement)
	ComputeMapping() error
	HasComputedMapping() bool
	Clear()
	Map(inputDataID, outputDataID int) error
	TagMeshFirstRound()
	TagMeshSecondRound()
}

// CheckValueDimensions panics if the input and output data channels
// disagree on value dimensionality or on size relative to their meshes —
// both are programming errors, not recoverable at this layer.
func CheckValueDimensions(in, out *mesh.Mesh, inputDataID, outputDataID int) (inData, outData *mesh.DataChannel) {
	inData = in.Data(inputDataID)
	outData = out.Data(outputDataID)
	if inData.Dimensions != outData.Dimensions {
		panic(fmt.Sprintf("mapping: value dimension mismatch, input=%d output=%d", inData.Dimensions, outData.Dimensions))
	}
	if len(inData.Values)/inData.Dimensions != len(in.Vertices) {
		panic(fmt.Sprintf("mapping: input data size %d inconsistent with %d vertices at dimension %d", len(inData.Values), len(in.Vertices), inData.Dimensions))
	}
	if len(outData.Values)/outData.Dimensions != len(out.Vertices) {
		panic(fmt.Sprintf("mapping: output data size %d inconsistent with %d vertices at dimension %d", len(outData.Values), len(out.Vertices), outData.Dimensions))
	}
	return inData, outData
}
