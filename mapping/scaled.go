package mapping

import (
	"fmt"

	"github.com/arnegrim/meshmap/mesh"
)

// ScaledConsistentMapping wraps a consistent Mapping with a post-map
// rescaling so the output field's surface integral matches the input
// field's, per component. It never allocates its own mapping state;
// ComputeMapping, Clear and the tag passes all delegate straight to the
// inner mapping.
type ScaledConsistentMapping struct {
	Inner   Mapping
	Reducer Reducer

	in, out *mesh.Mesh
}

// NewScaledConsistent wraps inner, which must itself be configured for the
// Consistent constraint.
func NewScaledConsistent(inner Mapping, reducer Reducer) *ScaledConsistentMapping {
	if inner.Constraint() != Consistent {
		panic("mapping: ScaledConsistentMapping must wrap a consistent mapping")
	}
	if reducer == nil {
		reducer = LocalReducer()
	}
	return &ScaledConsistentMapping{Inner: inner, Reducer: reducer}
}

func (s *ScaledConsistentMapping) Constraint() Constraint { return ScaledConsistent }

func (s *ScaledConsistentMapping) SetMeshes(in, out *mesh.Mesh) {
	s.in, s.out = in, out
	s.Inner.SetMeshes(in, out)
}

func (s *ScaledConsistentMapping) SetInputRequirement(r MeshRequirement) {
	s.Inner.SetInputRequirement(r)
}
func (s *ScaledConsistentMapping) SetOutputRequirement(r MeshRequirement) {
	s.Inner.SetOutputRequirement(r)
}
func (s *ScaledConsistentMapping) ComputeMapping() error    { return s.Inner.ComputeMapping() }
func (s *ScaledConsistentMapping) HasComputedMapping() bool { return s.Inner.HasComputedMapping() }
func (s *ScaledConsistentMapping) Clear()                   { s.Inner.Clear() }
func (s *ScaledConsistentMapping) TagMeshFirstRound()       { s.Inner.TagMeshFirstRound() }
func (s *ScaledConsistentMapping) TagMeshSecondRound()      { s.Inner.TagMeshSecondRound() }

// Map performs the inner consistent mapping, then rescales each value
// component of the output data channel so its surface integral equals the
// input channel's.
func (s *ScaledConsistentMapping) Map(inputDataID, outputDataID int) error {
	if err := s.Inner.Map(inputDataID, outputDataID); err != nil {
		return err
	}

	inData := s.in.Data(inputDataID)
	outData := s.out.Data(outputDataID)

	for d := 0; d < inData.Dimensions; d++ {
		inIntegral, err := SurfaceIntegral(s.in, inData, d, s.Reducer)
		if err != nil {
			return fmt.Errorf("mapping: scaled-consistent input integral: %w", err)
		}
		outIntegral, err := SurfaceIntegral(s.out, outData, d, s.Reducer)
		if err != nil {
			return fmt.Errorf("mapping: scaled-consistent output integral: %w", err)
		}
		if outIntegral == 0 {
			continue
		}
		scale := inIntegral / outIntegral
		for i := 0; i < len(s.out.Vertices); i++ {
			outData.Values[i*outData.Dimensions+d] *= scale
		}
	}
	return nil
}
