// Package simplify reduces the triangle count of a mesh by iterative edge
// collapse driven by quadric error metrics.
package simplify

import (
	"math"

	"github.com/pkg/errors"
	"github.com/ungerik/go3d/float64/vec3"

	mmath "github.com/neurolabusc/simplifyjs/pkg/math"
)

// ErrInvalidInput is returned when the vertex or index buffers are malformed.
var ErrInvalidInput = errors.New("invalid mesh input")

// vertex is one entry of the vertex arena.
type vertex struct {
	p      vec3.T
	q      mmath.Quadric
	tstart int // offset into mesh.refs
	tcount int // number of incident triangles in the refs window
	border bool
}

// triangle is one entry of the triangle arena. Removal is logical until the
// next refresh or the final compaction.
type triangle struct {
	v       [3]int
	err     [4]float64 // per-edge error, then the minimum of the three
	n       vec3.T
	deleted bool
	dirty   bool
}

// ref records that a vertex is corner tvertex of triangle tid.
type ref struct {
	tid     int
	tvertex int
}

// mesh is the working state of one simplification run.
type mesh struct {
	vertices  []vertex
	triangles []triangle
	refs      []ref

	// Scratch space for the collapse validator, one flag per incident triangle.
	deleted0 []bool
	deleted1 []bool

	// Triangles dropped at load because two of their corners coincide.
	degenerate int
}

// newMesh validates the flat buffers and loads them into a fresh mesh.
// Nothing is mutated when validation fails.
func newMesh(vs []float32, ts []uint32) (*mesh, error) {
	if len(vs)%3 != 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "vertex buffer length %d is not a multiple of 3", len(vs))
	}
	if len(ts)%3 != 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "index buffer length %d is not a multiple of 3", len(ts))
	}
	nv := len(vs) / 3
	for i, f := range vs {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return nil, errors.Wrapf(ErrInvalidInput, "vertex %d has non-finite coordinate", i/3)
		}
	}
	for i, idx := range ts {
		if int(idx) >= nv {
			return nil, errors.Wrapf(ErrInvalidInput, "triangle %d references vertex %d of %d", i/3, idx, nv)
		}
	}

	m := &mesh{
		vertices:  make([]vertex, nv),
		triangles: make([]triangle, 0, len(ts)/3),
		refs:      make([]ref, 0, len(ts)),
	}
	for i := range m.vertices {
		m.vertices[i].p = vec3.T{float64(vs[i*3]), float64(vs[i*3+1]), float64(vs[i*3+2])}
	}
	for i := 0; i < len(ts); i += 3 {
		a, b, c := int(ts[i]), int(ts[i+1]), int(ts[i+2])
		if a == b || b == c || c == a {
			m.degenerate++
			continue
		}
		m.triangles = append(m.triangles, triangle{v: [3]int{a, b, c}})
	}
	return m, nil
}

// contraction returns the cost of collapsing edge (i0, i1) and the point the
// merged vertex would move to. Interior edges with a solvable quadric use the
// optimal point; otherwise the cheapest of the two endpoints and their
// midpoint is chosen, earlier candidates winning ties.
func (m *mesh) contraction(i0, i1 int) (float64, vec3.T) {
	v0, v1 := &m.vertices[i0], &m.vertices[i1]
	q := v0.q.Add(v1.q)

	if !v0.border && !v1.border {
		if p, ok := q.Optimum(); ok {
			return q.Error(&p), p
		}
	}

	mid := vec3.Add(&v0.p, &v1.p)
	mid.Scale(0.5)

	best, bestErr := v0.p, q.Error(&v0.p)
	if e := q.Error(&v1.p); e < bestErr {
		best, bestErr = v1.p, e
	}
	if e := q.Error(&mid); e < bestErr {
		best, bestErr = mid, e
	}
	return bestErr, best
}

// edgeError is contraction without the point.
func (m *mesh) edgeError(i0, i1 int) float64 {
	e, _ := m.contraction(i0, i1)
	return e
}

// updateErrors recomputes the three edge errors of t and their minimum.
func (m *mesh) updateErrors(t *triangle) {
	for j := 0; j < 3; j++ {
		t.err[j] = m.edgeError(t.v[j], t.v[(j+1)%3])
	}
	t.err[3] = math.Min(t.err[0], math.Min(t.err[1], t.err[2]))
}

// scratch returns buf resized to n and cleared.
func scratch(buf []bool, n int) []bool {
	if cap(buf) < n {
		return make([]bool, n)
	}
	buf = buf[:n]
	clear(buf)
	return buf
}
