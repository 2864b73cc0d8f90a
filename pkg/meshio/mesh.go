// Package meshio reads and writes triangle meshes as flat vertex and index
// buffers.
package meshio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/ungerik/go3d/float64/vec3"

	mmath "github.com/neurolabusc/simplifyjs/pkg/math"
)

// Mesh format errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported mesh format")
	ErrTruncatedSTL      = errors.New("truncated STL data")
	ErrInvalidOBJ        = errors.New("invalid OBJ data")
)

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Vertices []float32 // x, y, z per vertex
	Indices  []uint32  // three vertex indices per triangle
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds returns the axis-aligned bounding box of all vertices.
func (m *Mesh) Bounds() mmath.Box {
	var b mmath.Box
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		b.Extend(vec3.T{float64(m.Vertices[i]), float64(m.Vertices[i+1]), float64(m.Vertices[i+2])})
	}
	return b
}

// EdgeStats counts edges used by exactly one triangle (border) and by more
// than two (non-manifold).
func (m *Mesh) EdgeStats() (border, nonManifold int) {
	use := make(map[[2]uint32]int, len(m.Indices))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		for j := 0; j < 3; j++ {
			a, b := m.Indices[i+j], m.Indices[i+(j+1)%3]
			if a > b {
				a, b = b, a
			}
			use[[2]uint32{a, b}]++
		}
	}
	for _, n := range use {
		switch {
		case n == 1:
			border++
		case n > 2:
			nonManifold++
		}
	}
	return border, nonManifold
}

// Load reads a mesh file, choosing the codec by extension.
func Load(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m *Mesh
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		m, err = ReadOBJ(f)
	case ".stl":
		m, err = ReadSTL(f)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return m, nil
}

// Save writes a mesh file, choosing the codec by extension. Parent
// directories are created as needed.
func Save(path string, m *Mesh) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".obj" && ext != ".stl" {
		return errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if ext == ".obj" {
		err = WriteOBJ(f, m)
	} else {
		err = WriteSTL(f, m)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "writing %s", path)
}
