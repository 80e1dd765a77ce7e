// Package diagnostics provides small reporting helpers to sanity-check a
// mapping's result without re-deriving its math.
package diagnostics

import (
	"fmt"

	"github.com/arnegrim/meshmap/mapping"
	"github.com/arnegrim/meshmap/mesh"
)

// TaggedFraction returns the fraction of m's vertices marked by a mapping's
// tag passes, in [0,1]. A low fraction on a consistent mapping's input mesh
// usually means most input data is unused by the current output mesh.
func TaggedFraction(m *mesh.Mesh) float64 {
	if len(m.Vertices) == 0 {
		return 0
	}
	var tagged int
	for _, v := range m.Vertices {
		if v.Tagged {
			tagged++
		}
	}
	return float64(tagged) / float64(len(m.Vertices))
}

// SurfaceIntegralReport compares, component by component, the surface
// integral of an input data channel against an output data channel mapped
// from it, returning the per-component relative difference (or, for a
// component whose input integral is zero, the output integral). Intended for
// sanity-checking a scaled-consistent or conservative mapping, where the
// two integrals are expected to match closely.
func SurfaceIntegralReport(in *mesh.Mesh, inData *mesh.DataChannel, out *mesh.Mesh, outData *mesh.DataChannel, reducer mapping.Reducer) ([]float64, error) {
	if inData.Dimensions != outData.Dimensions {
		return nil, fmt.Errorf("diagnostics: dimension mismatch, input=%d output=%d", inData.Dimensions, outData.Dimensions)
	}

	relDiffs := make([]float64, inData.Dimensions)
	for d := 0; d < inData.Dimensions; d++ {
		inIntegral, err := mapping.SurfaceIntegral(in, inData, d, reducer)
		if err != nil {
			return nil, fmt.Errorf("diagnostics: input integral: %w", err)
		}
		outIntegral, err := mapping.SurfaceIntegral(out, outData, d, reducer)
		if err != nil {
			return nil, fmt.Errorf("diagnostics: output integral: %w", err)
		}
		if inIntegral == 0 {
			relDiffs[d] = outIntegral
			continue
		}
		relDiffs[d] = (outIntegral - inIntegral) / inIntegral
	}
	return relDiffs, nil
}
