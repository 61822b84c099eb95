package connectivity

import (
	"fmt"
	"os"

	"github.com/notargets/gocfd/DG3D/mesh/readers"

	"github.com/notargets/quadforest/geometry"
)

// ReadMeshFile builds a connectivity from a mesh file of quadrilaterals. Any
// format understood by gocfd's mesh readers is accepted.
func ReadMeshFile(meshfile string) (*Connectivity, error) {
	if _, err := os.Stat(meshfile); err != nil {
		return nil, fmt.Errorf("mesh file: %w", err)
	}
	msh, err := readers.ReadMeshFile(meshfile)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", meshfile, err)
	}
	conn, err := FromMesh(msh.Vertices, msh.EtoV)
	if err != nil {
		return nil, fmt.Errorf("mesh file %s: %w", meshfile, err)
	}
	return conn, nil
}

// FromMesh builds a connectivity from a vertex table and quadrilateral
// element-to-vertex lists. Elements listed clockwise are flipped to
// right-hand-rule order.
func FromMesh(vertices [][]float64, etov [][]int) (*Connectivity, error) {
	if len(vertices) == 0 || len(etov) == 0 {
		return nil, fmt.Errorf("%w: %d vertices, %d elements", ErrInvalidMesh, len(vertices), len(etov))
	}
	conn := New(int32(len(etov)), int32(len(vertices)))
	for i, v := range vertices {
		if len(v) < 2 || len(v) > 3 {
			return nil, fmt.Errorf("%w: vertex %d has %d coordinates", ErrInvalidMesh, i, len(v))
		}
		p := geometry.Point{X: v[0], Y: v[1]}
		if len(v) == 3 {
			p.Z = v[2]
		}
		conn.SetVertex(int32(i), p)
	}
	for k, ev := range etov {
		if len(ev) != NumCorners {
			return nil, fmt.Errorf("%w: element %d has %d vertices", ErrInvalidMesh, k, len(ev))
		}
		tv := [NumCorners]int32{}
		for c, v := range ev {
			if v < 0 || v >= len(vertices) {
				return nil, fmt.Errorf("%w: element %d references vertex %d", ErrInvalidMesh, k, v)
			}
			tv[c] = int32(v)
		}
		if conn.signedArea(tv) < 0 {
			tv[1], tv[3] = tv[3], tv[1]
		}
		copy(conn.TreeToVertex[NumCorners*k:], tv[:])
	}
	if err := conn.BuildFaceLinks(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMesh, err)
	}
	return conn, nil
}

// signedArea is the shoelace area of a quadrilateral projected onto the xy plane
func (c *Connectivity) signedArea(tv [NumCorners]int32) float64 {
	var area float64
	for k := 0; k < NumCorners; k++ {
		p, q := c.Vertex(tv[k]), c.Vertex(tv[(k+1)%NumCorners])
		area += p.X*q.Y - q.X*p.Y
	}
	return area / 2
}
