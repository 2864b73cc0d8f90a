package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ReadOBJ parses the geometry of a Wavefront OBJ file: "v" positions and "f"
// faces. Polygons are fan-triangulated. Texture and normal references in
// face corners and all other statements are ignored.
func ReadOBJ(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	var face []uint32

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, errors.Wrapf(ErrInvalidOBJ, "line %d: vertex needs 3 coordinates", line)
			}
			for _, s := range fields[1:4] {
				f, err := strconv.ParseFloat(s, 32)
				if err != nil {
					return nil, errors.Wrapf(ErrInvalidOBJ, "line %d: %v", line, err)
				}
				m.Vertices = append(m.Vertices, float32(f))
			}
		case "f":
			if len(fields) < 4 {
				return nil, errors.Wrapf(ErrInvalidOBJ, "line %d: face needs 3 corners", line)
			}
			face = face[:0]
			for _, s := range fields[1:] {
				idx, err := parseOBJIndex(s, m.VertexCount())
				if err != nil {
					return nil, errors.Wrapf(ErrInvalidOBJ, "line %d: %v", line, err)
				}
				face = append(face, idx)
			}
			for i := 1; i+1 < len(face); i++ {
				m.Indices = append(m.Indices, face[0], face[i], face[i+1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// parseOBJIndex resolves a face corner such as "7", "7/2/3" or "-1" to a
// zero-based vertex index.
func parseOBJIndex(s string, count int) (uint32, error) {
	if slash := strings.IndexByte(s, '/'); slash >= 0 {
		s = s[:slash]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case n > 0 && n <= count:
		return uint32(n - 1), nil
	case n < 0 && -n <= count:
		return uint32(count + n), nil
	default:
		return 0, fmt.Errorf("vertex index %d out of range (%d vertices)", n, count)
	}
}

// WriteOBJ writes vertices and triangles as OBJ "v" and "f" statements.
func WriteOBJ(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d vertices, %d triangles\n", m.VertexCount(), m.TriangleCount())
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		fmt.Fprintf(bw, "v %s %s %s\n",
			formatFloat(m.Vertices[i]), formatFloat(m.Vertices[i+1]), formatFloat(m.Vertices[i+2]))
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		fmt.Fprintf(bw, "f %d %d %d\n", m.Indices[i]+1, m.Indices[i+1]+1, m.Indices[i+2]+1)
	}
	return bw.Flush()
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
