package forest

import (
	"fmt"

	"github.com/notargets/quadforest/connectivity"
)

// LocalVertexMap numbers the corners of a rank's quadrants. QuadToVertex
// holds NumCorners ids per local quadrant, flattened in tree, quadrant,
// corner order with corners in pixel order. Ids are dense in [0, UniqueCount).
type LocalVertexMap struct {
	UniqueCount  int32
	QuadToVertex []int32
}

// cornerKey identifies a point of a tree's reference square; coordinates
// range over [0, RootLen] inclusive.
type cornerKey struct {
	tree int32
	x, y int64
}

func (a cornerKey) less(b cornerKey) bool {
	if a.tree != b.tree {
		return a.tree < b.tree
	}
	if a.x != b.x {
		return a.x < b.x
	}
	return a.y < b.y
}

// OrderLocalVertices assigns an id to every corner of the local quadrants so
// that two corners share an id exactly when they are the same point of the
// forest. Points on tree boundaries are identified with their images in
// neighboring trees by following the connectivity's face links. Links across
// periodic boundaries are followed only when identifyPeriodic is set.
//
// Ids are handed out in order of first appearance.
func (v *LocalView) OrderLocalVertices(identifyPeriodic bool) (*LocalVertexMap, error) {
	lvm := &LocalVertexMap{
		QuadToVertex: make([]int32, 0, NumCorners*v.LocalNumQuadrants()),
	}
	ids := make(map[cornerKey]int32)
	canon := make(map[cornerKey]cornerKey)

	first, last := v.LocalTreeRange()
	for t := first; t <= last; t++ {
		for _, q := range v.TreeQuadrants(t) {
			if !q.IsValid() {
				return nil, fmt.Errorf("tree %d holds invalid quadrant %v", t, q)
			}
			for c := 0; c < NumCorners; c++ {
				x, y := q.Corner(c)
				key := v.canonicalCorner(cornerKey{t, x, y}, identifyPeriodic, canon)
				id, found := ids[key]
				if !found {
					id = lvm.UniqueCount
					ids[key] = id
					lvm.UniqueCount++
				}
				lvm.QuadToVertex = append(lvm.QuadToVertex, id)
			}
		}
	}
	return lvm, nil
}

// canonicalCorner returns the smallest key among all images of p. Interior
// points are their own image.
func (v *LocalView) canonicalCorner(p cornerKey, identifyPeriodic bool, cache map[cornerKey]cornerKey) cornerKey {
	root := int64(RootLen)
	if p.x > 0 && p.x < root && p.y > 0 && p.y < root {
		return p
	}
	if k, ok := cache[p]; ok {
		return k
	}

	conn := v.forest.Conn
	images := []cornerKey{p}
	for i := 0; i < len(images); i++ {
		img := images[i]
		for _, f := range connectivity.FacesOf(img.x, img.y, root) {
			if !identifyPeriodic && conn.IsPeriodicLink(img.tree, f) {
				continue
			}
			nt, nx, ny, ok := conn.TransformAcrossFace(img.tree, f, img.x, img.y, root)
			if !ok {
				continue
			}
			n := cornerKey{nt, nx, ny}
			if !containsKey(images, n) {
				images = append(images, n)
			}
		}
	}

	best := images[0]
	for _, img := range images[1:] {
		if img.less(best) {
			best = img
		}
	}
	for _, img := range images {
		cache[img] = best
	}
	return best
}

func containsKey(keys []cornerKey, k cornerKey) bool {
	for _, key := range keys {
		if key == k {
			return true
		}
	}
	return false
}
