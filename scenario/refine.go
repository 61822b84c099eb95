package scenario

import (
	"github.com/notargets/quadforest/forest"
)

// UserData is attached to every quadrant the forest creates
type UserData struct {
	Tree int32
	Sum  int64
}

// InitUserData records the owning tree and x + y + level
func InitUserData(tree int32, q forest.Quadrant) any {
	return UserData{
		Tree: tree,
		Sum:  int64(q.X) + int64(q.Y) + int64(q.Level),
	}
}

// RefinePredicate returns the refinement rule of the ordering test. Tree t is
// refined no deeper than level - t%3. Below that cap the upper right child of
// every level 1 quadrant is always refined, as is the quadrant sitting at the
// last level 2 offset in both directions; otherwise only quadrants in the
// leftmost level 2 column are refined.
func RefinePredicate(level int8) forest.RefineFunc {
	return func(tree int32, q forest.Quadrant) bool {
		switch {
		case q.Level >= level-int8(tree%3):
			return false
		case q.Level == 1 && q.ChildID() == 3:
			return true
		case q.X == forest.LastOffset(2) && q.Y == forest.LastOffset(2):
			return true
		case q.X >= forest.QuadrantLen(2):
			return false
		}
		return true
	}
}
