// Package math provides the geometric primitives used by mesh simplification.
package math

import "github.com/ungerik/go3d/float64/vec3"

// Quadric is a symmetric 4x4 matrix stored as its 10 independent coefficients
// in row-major upper-triangle order:
//
//	q0 q1 q2 q3
//	   q4 q5 q6
//	      q7 q8
//	         q9
//
// It accumulates squared distances from a point to a set of planes.
type Quadric [10]float64

// PlaneQuadric returns the outer product of the plane [a b c d] with itself,
// where (a, b, c) is the unit normal and d = -n·p for a point p on the plane.
func PlaneQuadric(a, b, c, d float64) Quadric {
	return Quadric{
		a * a, a * b, a * c, a * d,
		b * b, b * c, b * d,
		c * c, c * d,
		d * d,
	}
}

// TrianglePlane returns the unit normal of triangle (p0, p1, p2) and the
// quadric of its supporting plane. A degenerate triangle yields a zero normal
// and a zero quadric.
func TrianglePlane(p0, p1, p2 *vec3.T) (vec3.T, Quadric) {
	e1 := vec3.Sub(p1, p0)
	e2 := vec3.Sub(p2, p0)
	n := vec3.Cross(&e1, &e2)
	n.Normalize()
	return n, PlaneQuadric(n[0], n[1], n[2], -vec3.Dot(&n, p0))
}

// Add returns q + other, coefficient-wise.
func (q Quadric) Add(other Quadric) Quadric {
	var r Quadric
	for i := range q {
		r[i] = q[i] + other[i]
	}
	return r
}

// Det returns the determinant of the 3x3 matrix whose entries are the
// coefficients at the given indices, listed row by row.
func (q Quadric) Det(a11, a12, a13, a21, a22, a23, a31, a32, a33 int) float64 {
	return q[a11]*q[a22]*q[a33] +
		q[a13]*q[a21]*q[a32] +
		q[a12]*q[a23]*q[a31] -
		q[a13]*q[a22]*q[a31] -
		q[a11]*q[a23]*q[a32] -
		q[a12]*q[a21]*q[a33]
}

// Error evaluates the quadratic form [x y z 1] Q [x y z 1]ᵀ.
func (q Quadric) Error(p *vec3.T) float64 {
	x, y, z := p[0], p[1], p[2]
	return q[0]*x*x + 2*q[1]*x*y + 2*q[2]*x*z + 2*q[3]*x +
		q[4]*y*y + 2*q[5]*y*z + 2*q[6]*y +
		q[7]*z*z + 2*q[8]*z +
		q[9]
}

// Optimum solves for the point minimizing the quadratic form using Cramer's
// rule on the upper-left 3x3 block. It reports false when that block is
// singular.
func (q Quadric) Optimum() (vec3.T, bool) {
	det := q.Det(0, 1, 2, 1, 4, 5, 2, 5, 7)
	if det == 0 {
		return vec3.Zero, false
	}
	return vec3.T{
		-1 / det * q.Det(1, 2, 3, 4, 5, 6, 5, 7, 8),
		1 / det * q.Det(0, 2, 3, 1, 5, 6, 2, 7, 8),
		-1 / det * q.Det(0, 1, 3, 1, 4, 6, 2, 5, 8),
	}, true
}
