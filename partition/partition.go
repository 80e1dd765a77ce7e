// Package partition builds a mesh.VertexDistribution by partitioning a
// mesh's vertex-adjacency graph with METIS, as a default for callers that
// do not already own a distribution.
package partition

import (
	"fmt"
	"log"

	metis "github.com/notargets/go-metis"

	"github.com/arnegrim/meshmap/mesh"
)

// defaultImbalance is the allowed partition-size imbalance, matching the
// teacher's mesh partitioner default.
const defaultImbalance = 1.05

// BuildVertexDistribution partitions m's vertex-adjacency graph into nRanks
// parts with METIS (minimizing communication volume) and returns the
// resulting VertexDistribution: rank r's slice lists the global vertex
// indices METIS assigned to part r, in ascending order.
func BuildVertexDistribution(m *mesh.Mesh, nRanks int) (mesh.VertexDistribution, error) {
	if nRanks <= 0 {
		return nil, fmt.Errorf("partition: nRanks must be positive, got %d", nRanks)
	}
	n := len(m.Vertices)

	dist := make(mesh.VertexDistribution, nRanks)
	if nRanks == 1 || n == 0 {
		ids := make([]int, n)
		for i := range ids {
			ids[i] = i
		}
		dist[0] = ids
		return dist, nil
	}

	xadj, adjncy := buildAdjacencyGraph(m)

	opts := make([]int32, metis.NoOptions)
	if err := metis.SetDefaultOptions(opts); err != nil {
		return nil, fmt.Errorf("partition: setting METIS options: %w", err)
	}
	opts[metis.OptionObjType] = metis.ObjTypeVol
	ubvec := []float32{defaultImbalance}

	log.Printf("partition: partitioning %d vertices into %d ranks", n, nRanks)
	part, objval, err := metis.PartGraphKwayWeighted(xadj, adjncy, nil, nil, int32(nRanks), nil, ubvec, opts)
	if err != nil {
		return nil, fmt.Errorf("partition: METIS partitioning failed: %w", err)
	}
	log.Printf("partition: METIS objective value %d", objval)

	for v, r := range part {
		dist[int(r)] = append(dist[int(r)], v)
	}
	return dist, nil
}

// buildAdjacencyGraph builds a METIS CSR adjacency graph over mesh vertices
// from the mesh's edges and triangle boundaries, deduplicating multi-edges
// (a vertex pair connected by both an edge and a triangle side counts once).
func buildAdjacencyGraph(m *mesh.Mesh) (xadj, adjncy []int32) {
	n := len(m.Vertices)
	neighbors := make([]map[int]bool, n)
	for i := range neighbors {
		neighbors[i] = make(map[int]bool)
	}

	addEdge := func(a, b int) {
		if a == b {
			return
		}
		neighbors[a][b] = true
		neighbors[b][a] = true
	}
	for _, e := range m.Edges {
		addEdge(e.A.ID, e.B.ID)
	}
	for _, t := range m.Triangles {
		verts := t.Vertices()
		addEdge(verts[0].ID, verts[1].ID)
		addEdge(verts[1].ID, verts[2].ID)
		addEdge(verts[2].ID, verts[0].ID)
	}

	xadj = make([]int32, n+1)
	for i := 0; i < n; i++ {
		xadj[i+1] = xadj[i] + int32(len(neighbors[i]))
	}
	adjncy = make([]int32, xadj[n])
	for i := 0; i < n; i++ {
		idx := xadj[i]
		for nb := range neighbors[i] {
			adjncy[idx] = int32(nb)
			idx++
		}
	}
	return xadj, adjncy
}
