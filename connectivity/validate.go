package connectivity

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validate checks the connectivity tables for consistency and returns every
// problem found.
func (c *Connectivity) Validate() (err error) {
	if got, want := len(c.TreeToVertex), int(NumCorners*c.NumTrees); got != want {
		return fmt.Errorf("TreeToVertex length %d does not match expected %d", got, want)
	}
	if got, want := len(c.TreeToTree), int(NumFaces*c.NumTrees); got != want {
		return fmt.Errorf("TreeToTree length %d does not match expected %d", got, want)
	}
	if got, want := len(c.TreeToFace), int(NumFaces*c.NumTrees); got != want {
		return fmt.Errorf("TreeToFace length %d does not match expected %d", got, want)
	}
	if r, cols := c.Vertices.Dims(); r != int(c.NumVertices) || cols != 3 {
		return fmt.Errorf("vertex table is %d×%d, expected %d×3", r, cols, c.NumVertices)
	}

	for t := int32(0); t < c.NumTrees; t++ {
		tv := c.TreeVertices(t)
		for k, v := range tv {
			if v < 0 || v >= c.NumVertices {
				err = multierr.Append(err, fmt.Errorf("tree %d corner %d: vertex %d out of range", t, k, v))
			}
			for l := k + 1; l < NumCorners; l++ {
				if tv[l] == v {
					err = multierr.Append(err, fmt.Errorf("tree %d repeats vertex %d", t, v))
				}
			}
		}
		for f := 0; f < NumFaces; f++ {
			nt, nf, o := c.FaceNeighbor(t, f)
			if nt < 0 || nt >= c.NumTrees || o > 1 || c.TreeToFace[NumFaces*t+int32(f)] < 0 {
				err = multierr.Append(err, fmt.Errorf("tree %d face %d: invalid link to tree %d face code %d",
					t, f, nt, c.TreeToFace[NumFaces*t+int32(f)]))
				continue
			}
			bt, bf, bo := c.FaceNeighbor(nt, nf)
			if bt != t || bf != f || bo != o {
				err = multierr.Append(err, fmt.Errorf("reciprocal face connectivity failed: tree %d face %d -> tree %d face %d -> tree %d face %d",
					t, f, nt, nf, bt, bf))
			}
		}
	}
	if len(c.Periods) == 0 {
		for t := int32(0); t < c.NumTrees; t++ {
			for f := 0; f < NumFaces; f++ {
				if c.IsPeriodicLink(t, f) {
					err = multierr.Append(err, fmt.Errorf("tree %d face %d is glued across unrelated vertices but no periods are set", t, f))
				}
			}
		}
	}
	return err
}
