package meshio

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/ungerik/go3d/float64/vec3"
)

// quad is a unit square split into two triangles.
func quad() *Mesh {
	return &Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
	}
}

func TestReadOBJ(t *testing.T) {
	src := `# comment
o square
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vn 0 0 1
f 1/1/1 2/1/1 3/1/1 4/1/1
f -4 -2 -1
`
	m, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	if m.VertexCount() != 4 {
		t.Errorf("VertexCount() = %d, want 4", m.VertexCount())
	}
	want := []uint32{0, 1, 2, 0, 2, 3, 0, 2, 3}
	if !slices.Equal(m.Indices, want) {
		t.Errorf("Indices = %v, want %v", m.Indices, want)
	}
}

func TestReadOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"short vertex", "v 1 2\n"},
		{"bad coordinate", "v 1 x 2\n"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadOBJ(strings.NewReader(tt.src))
			if !errors.Is(err, ErrInvalidOBJ) {
				t.Errorf("expected ErrInvalidOBJ, got %v", err)
			}
		})
	}
}

func TestWriteOBJ(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, quad()); err != nil {
		t.Fatalf("WriteOBJ: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "v 1 1 0\n") {
		t.Errorf("missing vertex line in:\n%s", out)
	}
	if !strings.Contains(out, "f 1 3 4\n") {
		t.Errorf("missing one-based face line in:\n%s", out)
	}

	m, err := ReadOBJ(&buf)
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	if !slices.Equal(m.Vertices, quad().Vertices) || !slices.Equal(m.Indices, quad().Indices) {
		t.Error("written OBJ does not read back to the same mesh")
	}
}

func TestBinarySTLWelds(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSTL(&buf, quad()); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}
	if buf.Len() != stlHeaderSize+4+2*stlRecordSize {
		t.Fatalf("binary STL size = %d", buf.Len())
	}

	m, err := ReadSTL(&buf)
	if err != nil {
		t.Fatalf("ReadSTL: %v", err)
	}
	if m.VertexCount() != 4 {
		t.Errorf("VertexCount() = %d, want 4 after welding", m.VertexCount())
	}
	if m.TriangleCount() != 2 {
		t.Errorf("TriangleCount() = %d, want 2", m.TriangleCount())
	}
}

func TestBinarySTLTruncated(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSTL(&buf, quad()); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}
	data := buf.Bytes()[:buf.Len()-10]
	if _, err := ReadSTL(bytes.NewReader(data)); !errors.Is(err, ErrTruncatedSTL) {
		t.Errorf("expected ErrTruncatedSTL, got %v", err)
	}
}

func TestASCIISTL(t *testing.T) {
	src := `solid tri
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 1 1 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 1 0
      vertex 0 1 0
    endloop
  endfacet
endsolid tri
`
	m, err := ReadSTL(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadSTL: %v", err)
	}
	if !slices.Equal(m.Vertices, quad().Vertices) {
		t.Errorf("Vertices = %v", m.Vertices)
	}
	if !slices.Equal(m.Indices, quad().Indices) {
		t.Errorf("Indices = %v", m.Indices)
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.obj", "nested/out.STL"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Save(path, quad()); err != nil {
				t.Fatalf("Save: %v", err)
			}
			m, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if m.TriangleCount() != 2 || m.VertexCount() != 4 {
				t.Errorf("loaded %d vertices, %d triangles", m.VertexCount(), m.TriangleCount())
			}
		})
	}
}

func TestUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mesh.ply")
	if err := Save(path, quad()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Save: expected ErrUnsupportedFormat, got %v", err)
	}
	if err := os.WriteFile(path, []byte("ply\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load: expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestEdgeStats(t *testing.T) {
	border, nonManifold := quad().EdgeStats()
	if border != 4 || nonManifold != 0 {
		t.Errorf("quad: border=%d nonManifold=%d, want 4 and 0", border, nonManifold)
	}

	fan := &Mesh{
		Vertices: make([]float32, 5*3),
		Indices:  []uint32{0, 1, 2, 0, 1, 3, 0, 1, 4},
	}
	if _, nonManifold := fan.EdgeStats(); nonManifold != 1 {
		t.Errorf("fan: nonManifold = %d, want 1", nonManifold)
	}
}

func TestBounds(t *testing.T) {
	b := quad().Bounds()
	if b.Min != (vec3.T{0, 0, 0}) || b.Max != (vec3.T{1, 1, 0}) {
		t.Errorf("Bounds() = %v..%v", b.Min, b.Max)
	}
	if !(&Mesh{}).Bounds().Empty() {
		t.Error("empty mesh should have empty bounds")
	}
}
