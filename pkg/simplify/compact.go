package simplify

// compact drops deleted triangles and unreferenced vertices and returns the
// surviving geometry as flat buffers with remapped indices.
func (m *mesh) compact() ([]float32, []uint32) {
	used := make([]bool, len(m.vertices))
	dst := 0
	for i := range m.triangles {
		t := m.triangles[i]
		if t.deleted {
			continue
		}
		m.triangles[dst] = t
		dst++
		for _, vi := range t.v {
			used[vi] = true
		}
	}
	m.triangles = m.triangles[:dst]

	remap := make([]int, len(m.vertices))
	dst = 0
	for i := range m.vertices {
		if !used[i] {
			continue
		}
		remap[i] = dst
		m.vertices[dst] = m.vertices[i]
		dst++
	}
	m.vertices = m.vertices[:dst]

	vs := make([]float32, 0, len(m.vertices)*3)
	for i := range m.vertices {
		p := m.vertices[i].p
		vs = append(vs, float32(p[0]), float32(p[1]), float32(p[2]))
	}
	ts := make([]uint32, 0, len(m.triangles)*3)
	for i := range m.triangles {
		for j, vi := range m.triangles[i].v {
			m.triangles[i].v[j] = remap[vi]
			ts = append(ts, uint32(remap[vi]))
		}
	}
	return vs, ts
}
