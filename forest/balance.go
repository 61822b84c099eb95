package forest

import (
	"slices"

	"github.com/notargets/quadforest/connectivity"
)

// Balance refines the forest until no two quadrants of the same tree that
// share a face or a corner differ by more than one level, and no two
// quadrants facing each other across a glued tree face do either. New
// quadrants receive user data from the forest's InitFunc and the forest is
// repartitioned with uniform weights.
//
// Quadrants meeting only at a tree corner are not balanced against each other.
func (f *Forest) Balance() {
	f.checkAlive()
	for rounds := 1; ; rounds++ {
		for t := range f.Trees {
			f.balanceTree(int32(t))
		}
		if !f.balanceFaces() {
			f.logger.Debugw("balanced trees", "rounds", rounds)
			break
		}
	}
	f.updateOffsets()
	f.logger.Debugw("balanced forest", "quadrants", f.GlobalNumQuadrants())
	if err := f.Partition(nil); err != nil {
		panic(err)
	}
}

func (f *Forest) balanceTree(t int32) {
	tree := &f.Trees[t]

	data := make(map[Quadrant]any, len(tree.Quadrants))
	internal := make(map[Quadrant]bool)
	for i, q := range tree.Quadrants {
		data[q] = tree.Data[i]
		for a := q; a.Level > 0; {
			a = a.Parent()
			if internal[a] {
				break
			}
			internal[a] = true
		}
	}

	work := slices.Clone(tree.Quadrants)
	for len(work) > 0 {
		var next []Quadrant
		for _, q := range work {
			if _, leaf := data[q]; !leaf || !unbalanced(q, internal) {
				continue
			}
			delete(data, q)
			internal[q] = true
			children := q.Children()
			for _, c := range children {
				data[c] = f.initData(t, c)
			}
			// the children and the neighbors of q may now be too coarse
			next = append(next, children[:]...)
			next = append(next, neighborLeaves(q, data)...)
		}
		work = next
	}

	tree.Quadrants = tree.Quadrants[:0]
	for q := range data {
		tree.Quadrants = append(tree.Quadrants, q)
	}
	slices.SortFunc(tree.Quadrants, Compare)
	tree.Data = make([]any, len(tree.Quadrants))
	for i, q := range tree.Quadrants {
		tree.Data[i] = data[q]
	}
	tree.updateMaxLevel()
}

var neighborOffsets = [8][2]int32{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// sameSizeNeighbor returns the quadrant of q's size offset by (dx, dy)
// quadrant lengths, and false if it falls outside the root.
func sameSizeNeighbor(q Quadrant, dx, dy int32) (Quadrant, bool) {
	n := Quadrant{X: q.X + dx*q.Len(), Y: q.Y + dy*q.Len(), Level: q.Level}
	return n, n.X >= 0 && n.X < RootLen && n.Y >= 0 && n.Y < RootLen
}

// unbalanced reports whether a leaf q touches, across a face or a corner, a
// leaf more than one level finer. That is the case exactly when a child of
// a same-size neighbor, adjacent to q, has itself been split.
func unbalanced(q Quadrant, internal map[Quadrant]bool) bool {
	if q.Level+2 > MaxLevel {
		return false
	}
	for _, d := range neighborOffsets {
		n, ok := sameSizeNeighbor(q, d[0], d[1])
		if !ok || !internal[n] {
			continue
		}
		for _, c := range n.Children() {
			// child column/row facing q
			i, j := int32(c.ChildID()&1), int32(c.ChildID()>>1)
			if (d[0] == 1 && i != 0) || (d[0] == -1 && i != 1) ||
				(d[1] == 1 && j != 0) || (d[1] == -1 && j != 1) {
				continue
			}
			if internal[c] {
				return true
			}
		}
	}
	return false
}

// neighborLeaves returns the leaves containing the same-size neighbors of q
func neighborLeaves(q Quadrant, data map[Quadrant]any) []Quadrant {
	var leaves []Quadrant
	for _, d := range neighborOffsets {
		n, ok := sameSizeNeighbor(q, d[0], d[1])
		if !ok {
			continue
		}
		for a := n; ; a = a.Parent() {
			if _, leaf := data[a]; leaf {
				leaves = append(leaves, a)
				break
			}
			if a.Level == 0 {
				break
			}
		}
	}
	return leaves
}

// faceSpan returns the interval q covers along face fc of the root, in the
// face positions of connectivity.FacePosition, and false if q does not lie
// against that face.
func faceSpan(q Quadrant, fc int) (lo, hi int64, ok bool) {
	x0, y0 := q.Corner(0)
	x1, y1 := q.Corner(3)
	root := int64(RootLen)
	var ax, ay, bx, by int64
	switch fc {
	case 0:
		ok = y0 == 0
		ax, ay, bx, by = x0, 0, x1, 0
	case 1:
		ok = x1 == root
		ax, ay, bx, by = root, y0, root, y1
	case 2:
		ok = y1 == root
		ax, ay, bx, by = x0, root, x1, root
	case 3:
		ok = x0 == 0
		ax, ay, bx, by = 0, y0, 0, y1
	}
	if !ok {
		return 0, 0, false
	}
	lo = connectivity.FacePosition(fc, ax, ay, root)
	hi = connectivity.FacePosition(fc, bx, by, root)
	return min(lo, hi), max(lo, hi), true
}

type treeFace struct {
	tree int32
	face int
}

// balanceFaces splits every leaf lying against a glued tree face that is
// more than one level coarser than a leaf it overlaps on the other side. It
// reports whether anything was split.
func (f *Forest) balanceFaces() bool {
	against := make(map[treeFace][]Quadrant)
	for t, tree := range f.Trees {
		for fc := 0; fc < connectivity.NumFaces; fc++ {
			if f.Conn.IsBoundary(int32(t), fc) {
				continue
			}
			for _, q := range tree.Quadrants {
				if _, _, ok := faceSpan(q, fc); ok {
					against[treeFace{int32(t), fc}] = append(against[treeFace{int32(t), fc}], q)
				}
			}
		}
	}

	split := make([]map[Quadrant]bool, len(f.Trees))
	for tf, quads := range against {
		nt, nf, o := f.Conn.FaceNeighbor(tf.tree, tf.face)
		for _, q := range quads {
			if q.Level+2 > MaxLevel {
				continue
			}
			lo, hi, _ := faceSpan(q, tf.face)
			if o == 0 {
				lo, hi = int64(RootLen)-hi, int64(RootLen)-lo
			}
			for _, n := range against[treeFace{nt, nf}] {
				if n.Level <= q.Level+1 {
					continue
				}
				if nlo, nhi, _ := faceSpan(n, nf); nlo < hi && lo < nhi {
					if split[tf.tree] == nil {
						split[tf.tree] = make(map[Quadrant]bool)
					}
					split[tf.tree][q] = true
					break
				}
			}
		}
	}

	changed := false
	for t, marked := range split {
		if len(marked) == 0 {
			continue
		}
		changed = true
		tree := &f.Trees[t]
		quads := make([]Quadrant, 0, len(tree.Quadrants)+3*len(marked))
		data := make([]any, 0, cap(quads))
		for i, q := range tree.Quadrants {
			if !marked[q] {
				quads = append(quads, q)
				data = append(data, tree.Data[i])
				continue
			}
			for _, c := range q.Children() {
				quads = append(quads, c)
				data = append(data, f.initData(int32(t), c))
			}
		}
		tree.Quadrants, tree.Data = quads, data
		tree.updateMaxLevel()
	}
	return changed
}
