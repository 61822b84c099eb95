package forest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/quadforest/connectivity"
)

type userData struct {
	tree int32
	sum  int64
}

func initSum(tree int32, q Quadrant) any {
	return userData{tree: tree, sum: int64(q.X) + int64(q.Y) + int64(q.Level)}
}

func refineTo(level int8) RefineFunc {
	return func(_ int32, q Quadrant) bool { return q.Level < level }
}

func TestNew(t *testing.T) {
	f := New(connectivity.NewStar(), 2, initSum)
	assert.Len(t, f.Trees, 6)
	assert.Equal(t, int64(6), f.GlobalNumQuadrants())
	for tr, tree := range f.Trees {
		assert.Equal(t, []Quadrant{{}}, tree.Quadrants)
		assert.Equal(t, userData{tree: int32(tr)}, tree.Data[0])
	}
	require.NoError(t, f.Layout.ValidateLayout())
	assert.Equal(t, 3, f.Layout.Partitions[0].NumElements)

	assert.Panics(t, func() { New(nil, 1, nil) })
	assert.Panics(t, func() { New(connectivity.NewUnitSquare(), 0, nil) })
}

func TestRefine_Uniform(t *testing.T) {
	f := New(connectivity.NewUnitSquare(), 1, initSum)
	f.Refine(true, refineTo(3))
	tree := f.Trees[0]
	require.Len(t, tree.Quadrants, 64)
	assert.Equal(t, int8(3), tree.MaxLevel)
	for i, q := range tree.Quadrants {
		assert.True(t, q.IsValid())
		assert.Equal(t, int8(3), q.Level)
		assert.Equal(t, int64(q.X)+int64(q.Y)+3, tree.Data[i].(userData).sum)
		if i > 0 {
			assert.Equal(t, -1, Compare(tree.Quadrants[i-1], q), "Morton order at %d", i)
		}
	}
}

func TestRefine_NonRecursive(t *testing.T) {
	f := New(connectivity.NewUnitSquare(), 1, nil)
	f.Refine(false, func(int32, Quadrant) bool { return true })
	assert.Len(t, f.Trees[0].Quadrants, 4)
	f.Refine(false, func(_ int32, q Quadrant) bool { return q.ChildID() == 3 })
	assert.Len(t, f.Trees[0].Quadrants, 7)
	assert.Nil(t, f.Trees[0].Data[0])
}

// quadrants sharing a face or a corner differ by at most one level
func assertBalanced(t *testing.T, tree Tree) {
	t.Helper()
	for i, a := range tree.Quadrants {
		for _, b := range tree.Quadrants[i+1:] {
			if !touches(a, b) {
				continue
			}
			d := int(a.Level) - int(b.Level)
			assert.True(t, d >= -1 && d <= 1, "%v and %v are not 2:1 balanced", a, b)
		}
	}
}

func touches(a, b Quadrant) bool {
	ax0, ay0 := int64(a.X), int64(a.Y)
	ax1, ay1 := ax0+int64(a.Len()), ay0+int64(a.Len())
	bx0, by0 := int64(b.X), int64(b.Y)
	bx1, by1 := bx0+int64(b.Len()), by0+int64(b.Len())
	return ax0 <= bx1 && bx0 <= ax1 && ay0 <= by1 && by0 <= ay1
}

func TestBalance(t *testing.T) {
	f := New(connectivity.NewUnitSquare(), 1, initSum)
	// the lower left level 1 quadrant goes down to level 4 while its three
	// siblings stay at level 1
	f.Refine(true, func(_ int32, q Quadrant) bool {
		return q.Level == 0 || (q.Level < 4 && q.X < RootLen/2 && q.Y < RootLen/2)
	})
	require.Len(t, f.Trees[0].Quadrants, 3+64)
	require.Equal(t, int8(4), f.Trees[0].MaxLevel)

	f.Balance()
	tree := f.Trees[0]
	// the coarse siblings must split to level 2 along the refined block and
	// further toward it
	assert.Greater(t, len(tree.Quadrants), 3+64)
	assert.Equal(t, int8(4), tree.MaxLevel)
	for _, q := range tree.Quadrants {
		assert.NotEqual(t, int8(1), q.Level, "%v still coarse", q)
	}
	assertBalanced(t, tree)
	for i, q := range tree.Quadrants {
		assert.True(t, q.IsValid())
		assert.Equal(t, int64(q.X)+int64(q.Y)+int64(q.Level), tree.Data[i].(userData).sum)
		if i > 0 {
			assert.Equal(t, -1, Compare(tree.Quadrants[i-1], q))
		}
	}
	assert.Equal(t, int64(len(tree.Quadrants)), f.GlobalNumQuadrants())

	// balancing is idempotent
	n := len(tree.Quadrants)
	f.Balance()
	assert.Len(t, f.Trees[0].Quadrants, n)
}

func TestBalance_GradedIsUnchanged(t *testing.T) {
	f := New(connectivity.NewUnitSquare(), 1, nil)
	// a cascade toward one corner is already 2:1 balanced
	f.Refine(true, func(_ int32, q Quadrant) bool {
		return q.Level < 6 && q.X == 0 && q.Y == 0
	})
	require.Len(t, f.Trees[0].Quadrants, 1+3*6)
	f.Balance()
	assert.Len(t, f.Trees[0].Quadrants, 1+3*6)
	assertBalanced(t, f.Trees[0])
}

func TestBalance_CornerNeighbors(t *testing.T) {
	f := New(connectivity.NewUnitSquare(), 1, nil)
	f.Refine(false, func(int32, Quadrant) bool { return true })
	// refine the lower left child down to level 3 at its upper right corner
	f.Refine(true, func(_ int32, q Quadrant) bool {
		return q.Level < 3 && q.X < RootLen/2 && q.Y < RootLen/2 &&
			(q.Level == 1 || q.ChildID() == 3)
	})
	f.Balance()
	assertBalanced(t, f.Trees[0])
	// the upper right level 1 quadrant touches a level 3 one across a corner
	for _, q := range f.Trees[0].Quadrants {
		assert.NotEqual(t, Quadrant{X: RootLen / 2, Y: RootLen / 2, Level: 1}, q)
	}
}

// leaves facing each other across a glued tree face differ by at most one level
func assertFacesBalanced(t *testing.T, f *Forest) {
	t.Helper()
	for tr := range f.Trees {
		for fc := 0; fc < connectivity.NumFaces; fc++ {
			if f.Conn.IsBoundary(int32(tr), fc) {
				continue
			}
			nt, nf, o := f.Conn.FaceNeighbor(int32(tr), fc)
			for _, a := range f.Trees[tr].Quadrants {
				lo, hi, ok := faceSpan(a, fc)
				if !ok {
					continue
				}
				if o == 0 {
					lo, hi = int64(RootLen)-hi, int64(RootLen)-lo
				}
				for _, b := range f.Trees[nt].Quadrants {
					blo, bhi, ok := faceSpan(b, nf)
					if !ok || blo >= hi || lo >= bhi {
						continue
					}
					d := int(a.Level) - int(b.Level)
					assert.True(t, d >= -1 && d <= 1, "tree %d %v and tree %d %v are not 2:1 balanced", tr, a, nt, b)
				}
			}
		}
	}
}

func TestFaceSpan(t *testing.T) {
	q := Quadrant{X: RootLen / 2, Y: 0, Level: 2}
	lo, hi, ok := faceSpan(q, 0)
	require.True(t, ok)
	assert.Equal(t, int64(RootLen/2), lo)
	assert.Equal(t, int64(RootLen/2+RootLen/4), hi)

	// face 2 runs from x = RootLen back to x = 0
	top := Quadrant{X: 0, Y: RootLen - RootLen/4, Level: 2}
	lo, hi, ok = faceSpan(top, 2)
	require.True(t, ok)
	assert.Equal(t, int64(RootLen-RootLen/4), lo)
	assert.Equal(t, int64(RootLen), hi)

	_, _, ok = faceSpan(q, 1)
	assert.False(t, ok)
	_, _, ok = faceSpan(q, 3)
	assert.False(t, ok)
}

func TestBalance_AcrossTreeFaces(t *testing.T) {
	f := New(connectivity.NewBrick(2, 1, false, false), 2, initSum)
	// tree 1 goes down to level 4 in the corner against its left face,
	// which is glued to the right face of the unrefined tree 0
	f.Refine(true, func(tree int32, q Quadrant) bool {
		return tree == 1 && q.Level < 4 && q.X == 0 && q.Y == 0
	})
	require.Len(t, f.Trees[0].Quadrants, 1)
	require.Equal(t, int8(4), f.Trees[1].MaxLevel)

	f.Balance()
	assert.Equal(t, int8(3), f.Trees[0].MaxLevel)
	for tr := range f.Trees {
		assertBalanced(t, f.Trees[tr])
		for i, q := range f.Trees[tr].Quadrants {
			assert.Equal(t, int64(q.X)+int64(q.Y)+int64(q.Level), f.Trees[tr].Data[i].(userData).sum)
			if i > 0 {
				assert.Equal(t, -1, Compare(f.Trees[tr].Quadrants[i-1], q))
			}
		}
	}
	assertFacesBalanced(t, f)
	assert.Equal(t, int64(len(f.Trees[0].Quadrants)+len(f.Trees[1].Quadrants)), f.GlobalNumQuadrants())
	require.NoError(t, f.Layout.ValidateLayout())

	n := f.GlobalNumQuadrants()
	f.Balance()
	assert.Equal(t, n, f.GlobalNumQuadrants())
}

func TestBalance_PeriodicFaces(t *testing.T) {
	f := New(connectivity.NewPeriodic(), 1, nil)
	// refine toward the lower right corner; the periodic link makes the
	// left edge its face neighbor
	f.Refine(true, func(_ int32, q Quadrant) bool {
		return q.Level < 4 && q.X+q.Len() == RootLen && q.Y == 0
	})
	f.Balance()
	assertBalanced(t, f.Trees[0])
	assertFacesBalanced(t, f)
	for _, q := range f.Trees[0].Quadrants {
		if q.X == 0 && q.Y == 0 {
			assert.GreaterOrEqual(t, q.Level, int8(3), "%v against the refined corner", q)
		}
	}
}

func TestPartitionAndRanks(t *testing.T) {
	f := New(connectivity.NewStar(), 3, initSum)
	f.Refine(true, refineTo(1))
	require.Equal(t, int64(24), f.GlobalNumQuadrants())

	total := 0
	for r := 0; r < 3; r++ {
		v := f.Rank(r)
		first, last := v.LocalTreeRange()
		assert.Equal(t, int32(2*r), first)
		assert.Equal(t, int32(2*r+1), last)
		assert.Equal(t, 8, v.LocalNumQuadrants())
		n := 0
		for tr := first; tr <= last; tr++ {
			n += len(v.TreeQuadrants(tr))
			assert.Len(t, v.TreeData(tr), len(v.TreeQuadrants(tr)))
		}
		assert.Equal(t, v.LocalNumQuadrants(), n)
		total += n
	}
	assert.Equal(t, 24, total)

	// partitions may split a tree between ranks
	require.NoError(t, f.Partition(func(tree int32, q Quadrant) int64 {
		if tree == 0 {
			return 10
		}
		return 1
	}))
	v := f.Rank(0)
	first, last := v.LocalTreeRange()
	assert.Equal(t, int32(0), first)
	assert.Equal(t, int32(0), last)
	assert.Less(t, v.LocalNumQuadrants(), 4)
	assert.Nil(t, v.TreeQuadrants(3))

	assert.Panics(t, func() { f.Rank(3) })
}

func TestEmptyRank(t *testing.T) {
	f := New(connectivity.NewUnitSquare(), 3, nil)
	// one quadrant, three ranks: a single rank owns it
	owners := 0
	for r := 0; r < 3; r++ {
		v := f.Rank(r)
		first, last := v.LocalTreeRange()
		if v.LocalNumQuadrants() == 0 {
			assert.Equal(t, int32(-1), first)
			assert.Equal(t, int32(-2), last)
			assert.Nil(t, v.TreeQuadrants(0))
			continue
		}
		owners++
	}
	assert.Equal(t, 1, owners)
}

func TestDestroy(t *testing.T) {
	f := New(connectivity.NewUnitSquare(), 1, nil)
	f.Destroy()
	assert.Panics(t, func() { f.Destroy() })
	assert.Panics(t, func() { f.Rank(0) })
	assert.Panics(t, func() { f.Balance() })
}

func TestString(t *testing.T) {
	f := New(connectivity.NewBrick(2, 1, false, false), 2, nil)
	f.Refine(true, refineTo(1))
	s := f.String()
	assert.Contains(t, s, "2 trees, 8 quadrants, 2 ranks")
	t.Log(s)
}
