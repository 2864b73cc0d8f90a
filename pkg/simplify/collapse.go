package simplify

import (
	"math"

	"github.com/ungerik/go3d/float64/vec3"
)

const (
	// Edges from the new point closer to (anti)parallel than this make a sliver.
	maxEdgeAlignment = 0.999
	// Minimum agreement between a triangle's old and new normal.
	minNormalAgreement = 0.2
)

// flipped reports whether moving vertex i0 to p would flip or crush any of
// its incident triangles. Triangles that also use i1 collapse away with the
// edge; they are flagged in deleted, indexed by position in i0's refs window.
func (m *mesh) flipped(p vec3.T, i0, i1 int, deleted []bool) bool {
	v0 := &m.vertices[i0]
	for k := 0; k < v0.tcount; k++ {
		r := m.refs[v0.tstart+k]
		t := &m.triangles[r.tid]
		if t.deleted {
			continue
		}
		id1 := t.v[(r.tvertex+1)%3]
		id2 := t.v[(r.tvertex+2)%3]
		if id1 == i1 || id2 == i1 {
			deleted[k] = true
			continue
		}

		d1 := vec3.Sub(&m.vertices[id1].p, &p)
		d1.Normalize()
		d2 := vec3.Sub(&m.vertices[id2].p, &p)
		d2.Normalize()
		if math.Abs(vec3.Dot(&d1, &d2)) > maxEdgeAlignment {
			return true
		}
		n := vec3.Cross(&d1, &d2)
		n.Normalize()
		deleted[k] = false
		if vec3.Dot(&n, &t.n) < minNormalAgreement {
			return true
		}
	}
	return false
}

// retarget points the live triangles in v's refs window at i0, deleting the
// ones flagged by flipped. Surviving refs are appended to the table. It
// returns the number of triangles deleted.
func (m *mesh) retarget(i0 int, v *vertex, deleted []bool) int {
	removed := 0
	for k := 0; k < v.tcount; k++ {
		r := m.refs[v.tstart+k]
		t := &m.triangles[r.tid]
		if t.deleted {
			continue
		}
		if deleted[k] {
			t.deleted = true
			removed++
			continue
		}
		t.v[r.tvertex] = i0
		t.dirty = true
		m.updateErrors(t)
		m.refs = append(m.refs, r)
	}
	return removed
}

// collapse merges vertex i1 into i0, moving i0 to p. Both directions are
// validated first; if either fails nothing is changed and ok is false.
func (m *mesh) collapse(i0, i1 int, p vec3.T) (removed int, ok bool) {
	v0, v1 := &m.vertices[i0], &m.vertices[i1]

	m.deleted0 = scratch(m.deleted0, v0.tcount)
	m.deleted1 = scratch(m.deleted1, v1.tcount)
	if m.flipped(p, i0, i1, m.deleted0) {
		return 0, false
	}
	if m.flipped(p, i1, i0, m.deleted1) {
		return 0, false
	}

	v0.p = p
	v0.q = v1.q.Add(v0.q)

	tstart := len(m.refs)
	removed += m.retarget(i0, v0, m.deleted0)
	removed += m.retarget(i0, v1, m.deleted1)
	tcount := len(m.refs) - tstart

	if tcount <= v0.tcount {
		// Reuse the old window and give the appended tail back.
		copy(m.refs[v0.tstart:v0.tstart+tcount], m.refs[tstart:])
		m.refs = m.refs[:tstart]
	} else {
		v0.tstart = tstart
	}
	v0.tcount = tcount
	return removed, true
}
