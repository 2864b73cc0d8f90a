package simplify

import (
	"math"
	"testing"
)

// tetrahedron returns a unit corner tetrahedron with outward winding.
func tetrahedron() ([]float32, []uint32) {
	vs := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
	ts := []uint32{
		0, 2, 1,
		0, 1, 3,
		0, 3, 2,
		1, 2, 3,
	}
	return vs, ts
}

// octahedron returns a regular octahedron with outward winding. Vertex order
// is +x, -x, +y, -y, +z, -z.
func octahedron() ([]float32, []uint32) {
	vs := []float32{
		1, 0, 0,
		-1, 0, 0,
		0, 1, 0,
		0, -1, 0,
		0, 0, 1,
		0, 0, -1,
	}
	ts := []uint32{
		0, 2, 4,
		3, 4, 1,
		0, 5, 2,
		0, 4, 3,
		0, 3, 5,
		1, 4, 2,
		1, 2, 5,
		1, 5, 3,
	}
	return vs, ts
}

// grid returns a flat n x n quad grid in the z = 0 plane scaled by size,
// each cell split into two triangles.
func grid(n int, size float32) ([]float32, []uint32) {
	var vs []float32
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			vs = append(vs, float32(x)*size, float32(y)*size, 0)
		}
	}
	var ts []uint32
	row := uint32(n + 1)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			a := uint32(y)*row + uint32(x)
			b := a + 1
			c := a + row
			d := c + 1
			ts = append(ts, a, b, d, a, d, c)
		}
	}
	return vs, ts
}

func gridOf(n int, size float32) func() ([]float32, []uint32) {
	return func() ([]float32, []uint32) { return grid(n, size) }
}

// sphere returns a closed UV sphere of radius 1.
func sphere(stacks, slices int) ([]float32, []uint32) {
	vs := []float32{0, 0, 1}
	for i := 1; i < stacks; i++ {
		phi := math.Pi * float64(i) / float64(stacks)
		for j := 0; j < slices; j++ {
			theta := 2 * math.Pi * float64(j) / float64(slices)
			vs = append(vs,
				float32(math.Sin(phi)*math.Cos(theta)),
				float32(math.Sin(phi)*math.Sin(theta)),
				float32(math.Cos(phi)),
			)
		}
	}
	vs = append(vs, 0, 0, -1)
	south := uint32(len(vs)/3 - 1)

	ring := func(i, j int) uint32 {
		return uint32(1 + (i-1)*slices + j%slices)
	}
	var ts []uint32
	for j := 0; j < slices; j++ {
		ts = append(ts, 0, ring(1, j), ring(1, j+1))
	}
	for i := 1; i < stacks-1; i++ {
		for j := 0; j < slices; j++ {
			a, b := ring(i, j), ring(i, j+1)
			c, d := ring(i+1, j), ring(i+1, j+1)
			ts = append(ts, a, c, d, a, d, b)
		}
	}
	for j := 0; j < slices; j++ {
		ts = append(ts, south, ring(stacks-1, j+1), ring(stacks-1, j))
	}
	return vs, ts
}

// edgeUse counts how many triangles use each undirected edge.
func edgeUse(ts []uint32) map[[2]uint32]int {
	use := make(map[[2]uint32]int)
	for i := 0; i < len(ts); i += 3 {
		for j := 0; j < 3; j++ {
			a, b := ts[i+j], ts[i+(j+1)%3]
			if a > b {
				a, b = b, a
			}
			use[[2]uint32{a, b}]++
		}
	}
	return use
}

// checkResult verifies the structural guarantees every result must meet.
func checkResult(t *testing.T, res *Result, inVerts, inTris int) {
	t.Helper()
	if len(res.Vertices)%3 != 0 || len(res.Triangles)%3 != 0 {
		t.Fatalf("buffer lengths not multiples of 3: %d, %d", len(res.Vertices), len(res.Triangles))
	}
	nv := len(res.Vertices) / 3
	if nv > inVerts {
		t.Errorf("vertex count grew: %d > %d", nv, inVerts)
	}
	if n := len(res.Triangles) / 3; n > inTris {
		t.Errorf("triangle count grew: %d > %d", n, inTris)
	}
	used := make([]bool, nv)
	for i, idx := range res.Triangles {
		if int(idx) >= nv {
			t.Fatalf("index %d at %d out of range (%d vertices)", idx, i, nv)
		}
		used[idx] = true
	}
	for i, u := range used {
		if !u {
			t.Errorf("vertex %d is not referenced by any triangle", i)
		}
	}
	for i := 0; i < len(res.Triangles); i += 3 {
		a, b, c := res.Triangles[i], res.Triangles[i+1], res.Triangles[i+2]
		if a == b || b == c || c == a {
			t.Errorf("triangle %d is degenerate: %d %d %d", i/3, a, b, c)
		}
	}
}
