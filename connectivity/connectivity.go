package connectivity

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/quadforest/geometry"
)

const (
	// NumCorners is the number of corners of a quadtree's reference square
	NumCorners = 4
	// NumFaces is the number of faces of a quadtree's reference square
	NumFaces = 4
)

// Connectivity describes the coarse mesh a forest is built on: how trees are
// embedded in physical space and how their faces are glued together.
//
// Corners and faces of a tree use right-hand-rule order. Corner k runs
// counter clockwise from the lower left corner of the reference square, and
// face k joins corner k to corner k+1 (mod 4):
//
//	3 ---2--- 2
//	|         |
//	3         1
//	|         |
//	0 ---0--- 1
type Connectivity struct {
	NumTrees    int32
	NumVertices int32

	// TreeToVertex holds NumCorners global vertex indices per tree
	TreeToVertex []int32

	// Vertices is a [NumVertices × 3] matrix of physical coordinates
	Vertices *mat.Dense

	// TreeToTree and TreeToFace hold the face neighbor of each tree face. A
	// boundary face points back at itself. TreeToFace encodes the neighbor's
	// face as nf + NumFaces*orientation, where orientation 0 means the faces
	// run in opposite directions along the shared edge (the usual case for two
	// counter clockwise trees) and 1 means they run in the same direction.
	TreeToTree []int32
	TreeToFace []int8

	// Periods holds the translation vectors of a periodic domain
	Periods []geometry.Point
}

// New allocates a connectivity with every face set to boundary
func New(numTrees, numVertices int32) *Connectivity {
	if numTrees <= 0 || numVertices <= 0 {
		panic(fmt.Errorf("invalid dimensions: trees=%d, vertices=%d", numTrees, numVertices))
	}
	conn := &Connectivity{
		NumTrees:     numTrees,
		NumVertices:  numVertices,
		TreeToVertex: make([]int32, NumCorners*numTrees),
		Vertices:     mat.NewDense(int(numVertices), 3, nil),
		TreeToTree:   make([]int32, NumFaces*numTrees),
		TreeToFace:   make([]int8, NumFaces*numTrees),
	}
	conn.resetFaces()
	return conn
}

func (c *Connectivity) resetFaces() {
	for t := int32(0); t < c.NumTrees; t++ {
		for f := 0; f < NumFaces; f++ {
			c.TreeToTree[NumFaces*t+int32(f)] = t
			c.TreeToFace[NumFaces*t+int32(f)] = int8(f)
		}
	}
}

// SetVertex stores the coordinates of vertex v
func (c *Connectivity) SetVertex(v int32, p geometry.Point) {
	c.Vertices.SetRow(int(v), []float64{p.X, p.Y, p.Z})
}

// Vertex returns the coordinates of vertex v
func (c *Connectivity) Vertex(v int32) geometry.Point {
	row := c.Vertices.RawRowView(int(v))
	return geometry.Point{X: row[0], Y: row[1], Z: row[2]}
}

// TreeVertices returns the global vertex indices of tree t in right-hand-rule order
func (c *Connectivity) TreeVertices(t int32) (v [NumCorners]int32) {
	copy(v[:], c.TreeToVertex[NumCorners*t:NumCorners*(t+1)])
	return
}

// TreeCorners returns the physical corners of tree t in right-hand-rule order
func (c *Connectivity) TreeCorners(t int32) (corners [NumCorners]geometry.Point) {
	for k, v := range c.TreeVertices(t) {
		corners[k] = c.Vertex(v)
	}
	return
}

// PeriodicTranslations returns the translation vectors of a periodic domain
func (c *Connectivity) PeriodicTranslations() []geometry.Point {
	return c.Periods
}

// FaceNeighbor returns the tree and face across face f of tree t, along with
// the orientation of the gluing.
func (c *Connectivity) FaceNeighbor(t int32, f int) (nt int32, nf, orientation int) {
	code := int(c.TreeToFace[NumFaces*t+int32(f)])
	return c.TreeToTree[NumFaces*t+int32(f)], code % NumFaces, code / NumFaces
}

// IsBoundary reports whether face f of tree t lies on the domain boundary
func (c *Connectivity) IsBoundary(t int32, f int) bool {
	nt, nf, _ := c.FaceNeighbor(t, f)
	return nt == t && nf == f
}

// IsPeriodicLink reports whether the gluing across face f of tree t joins two
// faces that do not share their vertices, as happens on a periodic boundary.
func (c *Connectivity) IsPeriodicLink(t int32, f int) bool {
	if c.IsBoundary(t, f) {
		return false
	}
	nt, nf, o := c.FaceNeighbor(t, f)
	a, b := c.faceVertices(t, f)
	na, nb := c.faceVertices(nt, nf)
	if o == 0 {
		return a != nb || b != na
	}
	return a != na || b != nb
}

// faceVertices returns the vertices at the start and end of face f
func (c *Connectivity) faceVertices(t int32, f int) (a, b int32) {
	tv := c.TreeVertices(t)
	return tv[f], tv[(f+1)%NumCorners]
}

// SetFaceLink glues face f of tree t to face nf of tree nt in both directions
func (c *Connectivity) SetFaceLink(t int32, f int, nt int32, nf, orientation int) {
	c.TreeToTree[NumFaces*t+int32(f)] = nt
	c.TreeToFace[NumFaces*t+int32(f)] = int8(nf + NumFaces*orientation)
	c.TreeToTree[NumFaces*nt+int32(nf)] = t
	c.TreeToFace[NumFaces*nt+int32(nf)] = int8(f + NumFaces*orientation)
}

// String returns a summary of the connectivity
func (c *Connectivity) String() string {
	var sb strings.Builder
	boundary, periodic := 0, 0
	for t := int32(0); t < c.NumTrees; t++ {
		for f := 0; f < NumFaces; f++ {
			switch {
			case c.IsBoundary(t, f):
				boundary++
			case c.IsPeriodicLink(t, f):
				periodic++
			}
		}
	}
	sb.WriteString(fmt.Sprintf("Connectivity: %d trees, %d vertices\n", c.NumTrees, c.NumVertices))
	sb.WriteString(fmt.Sprintf("  Boundary faces: %d\n", boundary))
	sb.WriteString(fmt.Sprintf("  Periodic faces: %d\n", periodic))
	if len(c.Periods) > 0 {
		sb.WriteString(fmt.Sprintf("  Periods: %v\n", c.Periods))
	}
	return sb.String()
}
