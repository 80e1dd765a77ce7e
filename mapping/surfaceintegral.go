package mapping

import "github.com/arnegrim/meshmap/mesh"

// Reducer sums a local scalar across every rank holding a fragment of a
// distributed mesh. Single-rank callers pass a Reducer that returns its
// input unchanged.
type Reducer interface {
	SumAcrossRanks(local float64) (float64, error)
}

// localReducer is the trivial single-rank Reducer.
type localReducer struct{}

func (localReducer) SumAcrossRanks(local float64) (float64, error) { return local, nil }

// LocalReducer returns a Reducer for a single-rank (non-distributed) mesh.
func LocalReducer() Reducer { return localReducer{} }

// SurfaceIntegral computes the surface integral of one component of a data
// channel over a mesh's owned primitives: trapezoidal rule over edges for a
// 2-D mesh, flat-triangle mean-value rule over triangles for a 3-D mesh,
// reduced across ranks by sum.
func SurfaceIntegral(m *mesh.Mesh, data *mesh.DataChannel, component int, reducer Reducer) (float64, error) {
	valueAt := func(localID int) float64 {
		return data.Values[localID*data.Dimensions+component]
	}

	var local float64
	switch m.Dimensions() {
	case 2:
		// An edge is assigned to the rank owning its first vertex, so each
		// edge of a distributed mesh is integrated by exactly one rank.
		for _, e := range m.Edges {
			if !e.A.Owner {
				continue
			}
			local += e.Length() * 0.5 * (valueAt(e.A.ID) + valueAt(e.B.ID))
		}
	case 3:
		// Likewise a triangle is assigned to the rank owning its first
		// (per Vertices()) corner.
		for _, t := range m.Triangles {
			verts := t.Vertices()
			if !verts[0].Owner {
				continue
			}
			mean := (valueAt(verts[0].ID) + valueAt(verts[1].ID) + valueAt(verts[2].ID)) / 3.0
			local += t.Area() * mean
		}
	}

	return reducer.SumAcrossRanks(local)
}
