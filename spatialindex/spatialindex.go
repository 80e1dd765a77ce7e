// Package spatialindex provides nearest-K vertex lookup over a mesh's
// vertices, backed by an R-tree for coarse candidate pruning. The NN mapping
// builds one of these over whichever mesh plays the "opposite" role for its
// constraint inside ComputeMapping, and clears it before ComputeMapping
// returns.
package spatialindex

import (
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"

	"github.com/arnegrim/meshmap/geometry"
)

// indexedVertex adapts a mesh vertex's (x, y) footprint to the geom.Geom
// interface the R-tree indexes on. The R-tree only ever sees two of the
// vertex's coordinates; Index.Query falls back to the vertex's full
// coordinates (2-D or 3-D) once candidates are pulled out of the tree, so
// the third dimension is never lost, only deferred.
type indexedVertex struct {
	geom.Point
	vertex *geometry.Vertex
}

// minChildren, maxChildren follow the values used for the comparable
// per-cell spatial index in the reference grid code this package is
// grounded on.
const (
	minChildren = 25
	maxChildren = 50
)

// Index answers nearest-K queries over a fixed set of vertices. It is built
// once per computeMapping call and discarded by Clear.
type Index struct {
	tree     *rtree.Rtree
	vertices []*geometry.Vertex
	active   [3]bool
	bounds   geometry.BoundingBox
}

// Build constructs an index over the given vertices, ranking candidates by
// full 3-D Euclidean distance.
func Build(vertices []*geometry.Vertex) *Index {
	return BuildMasked(vertices, [3]bool{true, true, true})
}

// BuildMasked constructs an index that ranks candidates by distance
// restricted to the given active axes, so a dead axis contributes nothing
// to "nearest". The underlying R-tree still indexes the full (x, y)
// footprint; along a dead x or y axis, Query's search box spans the indexed
// set's full range, so no candidate is culled on that axis.
func BuildMasked(vertices []*geometry.Vertex, active [3]bool) *Index {
	idx := &Index{
		tree:     rtree.NewTree(minChildren, maxChildren),
		vertices: vertices,
		active:   active,
		bounds:   geometry.ComputeBoundingBox(vertices),
	}
	for _, v := range vertices {
		idx.tree.Insert(&indexedVertex{Point: geom.Point{X: v.Coords[0], Y: v.Coords[1]}, vertex: v})
	}
	return idx
}

// Clear drops the underlying tree; Build must be called again before the
// index is queried.
func (idx *Index) Clear() {
	idx.tree = nil
	idx.vertices = nil
}

type candidate struct {
	vertex *geometry.Vertex
	dist   float64
}

// Query returns the k vertices nearest to point (in the vertices' own
// dimensionality), ties broken by smallest local ID. It expands a search
// box around the query point, in R-tree-indexed (x, y) space, until the
// box's half-width exceeds the true distance to the current k-th best
// candidate — at which point no vertex outside the box could possibly be
// closer than what has already been found.
func (idx *Index) Query(point [3]float64, k int) []*geometry.Vertex {
	if k <= 0 || len(idx.vertices) == 0 {
		return nil
	}
	if k > len(idx.vertices) {
		k = len(idx.vertices)
	}

	radius := initialRadius(idx.vertices)
	var candidates []candidate
	for {
		minX, maxX := point[0]-radius, point[0]+radius
		minY, maxY := point[1]-radius, point[1]+radius
		// A dead axis contributes nothing to distance, so the search box must
		// not cull candidates along it: widen to the indexed set's full range.
		if !idx.active[0] {
			minX, maxX = idx.bounds.Min[0], idx.bounds.Max[0]
		}
		if !idx.active[1] {
			minY, maxY = idx.bounds.Min[1], idx.bounds.Max[1]
		}
		box := &geom.Bounds{
			Min: geom.Point{X: minX, Y: minY},
			Max: geom.Point{X: maxX, Y: maxY},
		}
		hits := idx.tree.SearchIntersect(box)
		candidates = candidates[:0]
		for _, h := range hits {
			iv := h.(*indexedVertex)
			d := maskedDistance(point, iv.vertex.Coords, idx.active)
			candidates = append(candidates, candidate{vertex: iv.vertex, dist: d})
		}
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].dist != candidates[j].dist {
				return candidates[i].dist < candidates[j].dist
			}
			return candidates[i].vertex.ID < candidates[j].vertex.ID
		})
		if len(candidates) >= k && (candidates[k-1].dist <= radius || len(hits) == len(idx.vertices)) {
			break
		}
		radius *= 2
	}

	result := make([]*geometry.Vertex, k)
	for i := 0; i < k; i++ {
		result[i] = candidates[i].vertex
	}
	return result
}

func maskedDistance(a, b [3]float64, active [3]bool) float64 {
	var sum float64
	for d := 0; d < 3; d++ {
		if !active[d] {
			continue
		}
		diff := a[d] - b[d]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// initialRadius picks a starting search box half-width proportional to the
// vertex set's own extent, so the common case (a handful of doublings) stays
// cheap even for meshes spanning very different scales.
func initialRadius(vertices []*geometry.Vertex) float64 {
	bb := geometry.ComputeBoundingBox(vertices)
	span := math.Max(bb.Max[0]-bb.Min[0], bb.Max[1]-bb.Min[1])
	if span <= 0 {
		return 1
	}
	return span / math.Sqrt(float64(len(vertices))+1)
}
