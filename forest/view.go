package forest

import (
	"github.com/notargets/quadforest/connectivity"
)

// LocalView is the part of a forest owned by one rank: a contiguous run of
// the global quadrant sequence spanning trees FirstLocalTree..LastLocalTree.
// An empty rank has the range (-1, -2).
type LocalView struct {
	forest *Forest
	rank   int

	// global quadrant range [begin, end)
	begin, end int64

	firstLocalTree, lastLocalTree int32
}

// Rank returns the rank owning this view
func (v *LocalView) Rank() int { return v.rank }

// Connectivity returns the connectivity the forest is built on
func (v *LocalView) Connectivity() *connectivity.Connectivity { return v.forest.Conn }

// LocalTreeRange returns the first and last tree holding local quadrants
func (v *LocalView) LocalTreeRange() (first, last int32) {
	return v.firstLocalTree, v.lastLocalTree
}

// LocalNumQuadrants returns the number of quadrants owned by this rank
func (v *LocalView) LocalNumQuadrants() int {
	return int(v.end - v.begin)
}

// GlobalFirstQuadrant returns the global index of this rank's first quadrant
func (v *LocalView) GlobalFirstQuadrant() int64 { return v.begin }

// TreeQuadrants returns the local quadrants of tree t in Morton order. The
// slice aliases forest storage and must not be modified.
func (v *LocalView) TreeQuadrants(t int32) []Quadrant {
	if t < v.firstLocalTree || t > v.lastLocalTree {
		return nil
	}
	f := v.forest
	offset := f.GlobalFirstQuadrant[t]
	lo := max(v.begin, offset) - offset
	hi := min(v.end, f.GlobalFirstQuadrant[t+1]) - offset
	return f.Trees[t].Quadrants[lo:hi]
}

// TreeData returns the user data of the local quadrants of tree t, parallel
// to TreeQuadrants
func (v *LocalView) TreeData(t int32) []any {
	if t < v.firstLocalTree || t > v.lastLocalTree {
		return nil
	}
	f := v.forest
	offset := f.GlobalFirstQuadrant[t]
	lo := max(v.begin, offset) - offset
	hi := min(v.end, f.GlobalFirstQuadrant[t+1]) - offset
	return f.Trees[t].Data[lo:hi]
}
