package simplify

import mmath "github.com/neurolabusc/simplifyjs/pkg/math"

// refresh rebuilds the vertex to triangle reference table. The first refresh
// (iteration 0) additionally classifies border vertices and computes
// quadrics, normals and edge errors from scratch. Later refreshes drop
// deleted triangles first; border flags are never reclassified.
func (m *mesh) refresh(iteration int) {
	if iteration > 0 {
		dst := 0
		for i := range m.triangles {
			if !m.triangles[i].deleted {
				m.triangles[dst] = m.triangles[i]
				dst++
			}
		}
		m.triangles = m.triangles[:dst]
	}

	m.rebuildRefs()

	if iteration != 0 {
		return
	}

	m.classifyBorders()
	m.computeQuadrics()
	for i := range m.triangles {
		m.updateErrors(&m.triangles[i])
	}
}

// rebuildRefs lays out each vertex's incident triangles as a contiguous
// window of refs, in vertex order.
func (m *mesh) rebuildRefs() {
	for i := range m.vertices {
		m.vertices[i].tstart = 0
		m.vertices[i].tcount = 0
	}
	for i := range m.triangles {
		for _, vi := range m.triangles[i].v {
			m.vertices[vi].tcount++
		}
	}
	tstart := 0
	for i := range m.vertices {
		v := &m.vertices[i]
		v.tstart = tstart
		tstart += v.tcount
		v.tcount = 0
	}

	if cap(m.refs) < tstart {
		m.refs = make([]ref, tstart)
	}
	m.refs = m.refs[:tstart]
	for i := range m.triangles {
		for j, vi := range m.triangles[i].v {
			v := &m.vertices[vi]
			m.refs[v.tstart+v.tcount] = ref{tid: i, tvertex: j}
			v.tcount++
		}
	}
}

// classifyBorders marks every vertex that ends an edge used by exactly one
// triangle. For each vertex, a neighbor seen only once across its incident
// triangles shares a single triangle with it.
func (m *mesh) classifyBorders() {
	for i := range m.vertices {
		m.vertices[i].border = false
	}

	var ids, counts []int
	for i := range m.vertices {
		v := &m.vertices[i]
		ids, counts = ids[:0], counts[:0]
		for k := 0; k < v.tcount; k++ {
			t := &m.triangles[m.refs[v.tstart+k].tid]
			for _, id := range t.v {
				found := false
				for n := range ids {
					if ids[n] == id {
						counts[n]++
						found = true
						break
					}
				}
				if !found {
					ids = append(ids, id)
					counts = append(counts, 1)
				}
			}
		}
		for n, c := range counts {
			if c == 1 {
				m.vertices[ids[n]].border = true
			}
		}
	}
}

// computeQuadrics resets every vertex quadric and accumulates the plane of
// each triangle into its three corners.
func (m *mesh) computeQuadrics() {
	for i := range m.vertices {
		m.vertices[i].q = mmath.Quadric{}
	}
	for i := range m.triangles {
		t := &m.triangles[i]
		p0 := &m.vertices[t.v[0]].p
		p1 := &m.vertices[t.v[1]].p
		p2 := &m.vertices[t.v[2]].p
		n, q := mmath.TrianglePlane(p0, p1, p2)
		t.n = n
		for _, vi := range t.v {
			v := &m.vertices[vi]
			v.q = v.q.Add(q)
		}
	}
}
