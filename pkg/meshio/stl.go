package meshio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/ungerik/go3d/float64/vec3"
)

const (
	stlHeaderSize = 80
	stlRecordSize = 50 // normal, 3 corners, attribute byte count
)

// ReadSTL parses binary or ASCII STL. Corners with bit-identical positions
// are welded into shared vertices so the result is an indexed mesh.
func ReadSTL(r io.Reader) (*Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	w := newWelder()
	if isASCIISTL(data) {
		err = readASCIISTL(data, w)
	} else {
		err = readBinarySTL(data, w)
	}
	if err != nil {
		return nil, err
	}
	return w.mesh, nil
}

// isASCIISTL distinguishes ASCII from binary files, some of which also begin
// with "solid" in their header.
func isASCIISTL(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("solid")) {
		return false
	}
	if len(data) >= stlHeaderSize+4 {
		n := binary.LittleEndian.Uint32(data[stlHeaderSize:])
		if len(data) == stlHeaderSize+4+int(n)*stlRecordSize {
			return false
		}
	}
	return bytes.Contains(data, []byte("facet"))
}

func readBinarySTL(data []byte, w *welder) error {
	if len(data) < stlHeaderSize+4 {
		return ErrTruncatedSTL
	}
	n := int(binary.LittleEndian.Uint32(data[stlHeaderSize:]))
	body := data[stlHeaderSize+4:]
	if len(body) < n*stlRecordSize {
		return errors.Wrapf(ErrTruncatedSTL, "%d triangles declared, %d bytes present", n, len(body))
	}
	for i := 0; i < n; i++ {
		rec := body[i*stlRecordSize:]
		for c := 0; c < 3; c++ {
			off := 12 + c*12
			w.add([3]float32{
				math.Float32frombits(binary.LittleEndian.Uint32(rec[off:])),
				math.Float32frombits(binary.LittleEndian.Uint32(rec[off+4:])),
				math.Float32frombits(binary.LittleEndian.Uint32(rec[off+8:])),
			})
		}
	}
	return nil
}

func readASCIISTL(data []byte, w *welder) error {
	sc := bufio.NewScanner(bytes.NewReader(data))
	corners := 0
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || fields[0] != "vertex" {
			continue
		}
		if len(fields) < 4 {
			return errors.Errorf("STL vertex needs 3 coordinates: %q", sc.Text())
		}
		var p [3]float32
		for i := range p {
			f, err := strconv.ParseFloat(fields[i+1], 32)
			if err != nil {
				return errors.Wrap(err, "parsing STL vertex")
			}
			p[i] = float32(f)
		}
		w.add(p)
		corners++
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if corners%3 != 0 {
		return errors.Wrapf(ErrTruncatedSTL, "%d corners is not a whole number of facets", corners)
	}
	return nil
}

// welder maps positions to vertex indices while building a mesh.
type welder struct {
	mesh  *Mesh
	index map[[3]float32]uint32
}

func newWelder() *welder {
	return &welder{mesh: &Mesh{}, index: make(map[[3]float32]uint32)}
}

func (w *welder) add(p [3]float32) {
	idx, ok := w.index[p]
	if !ok {
		idx = uint32(w.mesh.VertexCount())
		w.index[p] = idx
		w.mesh.Vertices = append(w.mesh.Vertices, p[0], p[1], p[2])
	}
	w.mesh.Indices = append(w.mesh.Indices, idx)
}

// WriteSTL writes binary STL with facet normals computed from the corners.
func WriteSTL(out io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(out)
	header := make([]byte, stlHeaderSize)
	copy(header, "binary STL")
	if _, err := bw.Write(header); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(m.TriangleCount())); err != nil {
		return err
	}

	rec := make([]byte, stlRecordSize)
	for i := 0; i+2 < len(m.Indices); i += 3 {
		var p [3]vec3.T
		for c := range p {
			vi := m.Indices[i+c] * 3
			p[c] = vec3.T{float64(m.Vertices[vi]), float64(m.Vertices[vi+1]), float64(m.Vertices[vi+2])}
		}
		e1 := vec3.Sub(&p[1], &p[0])
		e2 := vec3.Sub(&p[2], &p[0])
		n := vec3.Cross(&e1, &e2)
		n.Normalize()

		putVec(rec[0:], n)
		for c := range p {
			putVec(rec[12+c*12:], p[c])
		}
		binary.LittleEndian.PutUint16(rec[48:], 0)
		if _, err := bw.Write(rec); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func putVec(b []byte, v vec3.T) {
	for i := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(float32(v[i])))
	}
}
