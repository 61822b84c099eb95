package connectivity

import (
	"fmt"
)

// faceSignature identifies a tree face by its (sorted) pair of vertices
type faceSignature struct {
	v1, v2 int32
}

type faceRef struct {
	tree int32
	face int
}

// BuildFaceLinks derives TreeToTree/TreeToFace from shared vertices. Two
// faces referencing the same pair of vertices are glued; faces with no
// partner become boundary faces. Links that cannot be derived from vertices,
// such as periodic ones, must be added afterwards with SetFaceLink.
func (c *Connectivity) BuildFaceLinks() error {
	c.resetFaces()

	faceMap := make(map[faceSignature]faceRef)
	matched := make(map[faceSignature]bool)

	for t := int32(0); t < c.NumTrees; t++ {
		for f := 0; f < NumFaces; f++ {
			a, b := c.faceVertices(t, f)
			if a == b {
				return fmt.Errorf("tree %d face %d is degenerate (vertex %d)", t, f, a)
			}
			key := faceSignature{min(a, b), max(a, b)}

			existing, found := faceMap[key]
			if !found {
				faceMap[key] = faceRef{t, f}
				continue
			}
			if matched[key] {
				return fmt.Errorf("face {%d,%d} is shared by more than two trees", key.v1, key.v2)
			}
			matched[key] = true

			// Found matching face - connect them
			na, _ := c.faceVertices(existing.tree, existing.face)
			orientation := 0
			if a == na {
				orientation = 1
			}
			c.SetFaceLink(t, f, existing.tree, existing.face, orientation)
		}
	}
	return nil
}

// FacePosition returns the coordinate of a point along face f, measured from
// the face's first corner toward its second, for a point (x, y) of a tree
// whose reference square has side rootLen.
func FacePosition(f int, x, y, rootLen int64) int64 {
	switch f {
	case 0:
		return x
	case 1:
		return y
	case 2:
		return rootLen - x
	case 3:
		return rootLen - y
	default:
		panic(fmt.Errorf("invalid face %d", f))
	}
}

// FacePoint is the inverse of FacePosition: it returns the point at position
// s along face f.
func FacePoint(f int, s, rootLen int64) (x, y int64) {
	switch f {
	case 0:
		return s, 0
	case 1:
		return rootLen, s
	case 2:
		return rootLen - s, rootLen
	case 3:
		return 0, rootLen - s
	default:
		panic(fmt.Errorf("invalid face %d", f))
	}
}

// FacesOf returns the faces of the reference square that contain the point (x, y)
func FacesOf(x, y, rootLen int64) []int {
	faces := make([]int, 0, 2)
	if y == 0 {
		faces = append(faces, 0)
	}
	if x == rootLen {
		faces = append(faces, 1)
	}
	if y == rootLen {
		faces = append(faces, 2)
	}
	if x == 0 {
		faces = append(faces, 3)
	}
	return faces
}

// TransformAcrossFace maps the point (x, y) lying on face f of tree t to the
// equivalent point in the neighboring tree. It returns ok=false on boundary faces.
func (c *Connectivity) TransformAcrossFace(t int32, f int, x, y, rootLen int64) (nt int32, nx, ny int64, ok bool) {
	if c.IsBoundary(t, f) {
		return t, x, y, false
	}
	nt, nf, o := c.FaceNeighbor(t, f)
	s := FacePosition(f, x, y, rootLen)
	if o == 0 {
		s = rootLen - s
	}
	nx, ny = FacePoint(nf, s, rootLen)
	return nt, nx, ny, true
}
