package kernel

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which design graph part this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// stlHeaderSize is the fixed header length of a binary STL file.
const stlHeaderSize = 80

// WriteSTL writes meshes as one binary STL file. Facet normals are
// recomputed from the vertex winding.
func WriteSTL(w io.Writer, header string, meshes ...*Mesh) error {
	var total uint32
	for _, m := range meshes {
		total += uint32(m.TriangleCount())
	}

	bw := bufio.NewWriter(w)
	var hdr [stlHeaderSize]byte
	copy(hdr[:], header)
	if _, err := bw.Write(hdr[:]); err != nil {
		return fmt.Errorf("kernel: write stl header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, total); err != nil {
		return fmt.Errorf("kernel: write stl count: %w", err)
	}

	var facet [12]float32
	for _, m := range meshes {
		for t := 0; t < m.TriangleCount(); t++ {
			var v [3][3]float32
			for j := 0; j < 3; j++ {
				idx := m.Indices[t*3+j]
				if int(idx)*3+2 >= len(m.Vertices) {
					return fmt.Errorf("kernel: mesh %q: index %d out of range", m.PartName, idx)
				}
				copy(v[j][:], m.Vertices[idx*3:idx*3+3])
			}
			n := facetNormal(v)
			copy(facet[0:3], n[:])
			copy(facet[3:6], v[0][:])
			copy(facet[6:9], v[1][:])
			copy(facet[9:12], v[2][:])
			if err := binary.Write(bw, binary.LittleEndian, facet); err != nil {
				return fmt.Errorf("kernel: write stl facet: %w", err)
			}
			if err := binary.Write(bw, binary.LittleEndian, uint16(0)); err != nil {
				return fmt.Errorf("kernel: write stl facet: %w", err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("kernel: write stl: %w", err)
	}
	return nil
}

func facetNormal(v [3][3]float32) [3]float32 {
	ax, ay, az := v[1][0]-v[0][0], v[1][1]-v[0][1], v[1][2]-v[0][2]
	bx, by, bz := v[2][0]-v[0][0], v[2][1]-v[0][1], v[2][2]-v[0][2]
	n := [3]float32{ay*bz - az*by, az*bx - ax*bz, ax*by - ay*bx}
	l := float32(math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])))
	if l == 0 {
		return [3]float32{}
	}
	return [3]float32{n[0] / l, n[1] / l, n[2] / l}
}
