package forest

import (
	"fmt"
	"math/bits"
)

const (
	// MaxLevel is the deepest refinement level of a quadrant
	MaxLevel = 30
	// RootLen is the side length of a tree's reference square in integer units
	RootLen int32 = 1 << MaxLevel
	// NumChildren is the number of children of a quadrant
	NumChildren = 4
	// NumCorners is the number of corners of a quadrant
	NumCorners = 4
)

// Quadrant is a square cell of a tree's reference domain, identified by the
// integer coordinates of its lower left corner and its refinement level
type Quadrant struct {
	X, Y  int32
	Level int8
}

// QuadrantLen returns the side length of a quadrant at the given level
func QuadrantLen(level int8) int32 {
	return RootLen >> level
}

// LastOffset returns the largest coordinate of a quadrant at the given level
func LastOffset(level int8) int32 {
	return RootLen - QuadrantLen(level)
}

// Len returns the side length of q
func (q Quadrant) Len() int32 {
	return QuadrantLen(q.Level)
}

// IsValid reports whether q lies inside the root and is aligned to its size
func (q Quadrant) IsValid() bool {
	if q.Level < 0 || q.Level > MaxLevel {
		return false
	}
	if q.X < 0 || q.X >= RootLen || q.Y < 0 || q.Y >= RootLen {
		return false
	}
	mask := q.Len() - 1
	return q.X&mask == 0 && q.Y&mask == 0
}

// ChildID returns the position of q among its siblings, in pixel order
func (q Quadrant) ChildID() int {
	if q.Level == 0 {
		return 0
	}
	h := q.Len()
	id := 0
	if q.X&h != 0 {
		id |= 1
	}
	if q.Y&h != 0 {
		id |= 2
	}
	return id
}

// Children returns the four children of q in Morton order
func (q Quadrant) Children() (c [NumChildren]Quadrant) {
	if q.Level >= MaxLevel {
		panic(fmt.Errorf("cannot refine quadrant %v beyond level %d", q, MaxLevel))
	}
	h := QuadrantLen(q.Level + 1)
	for i := range c {
		c[i] = Quadrant{
			X:     q.X + int32(i&1)*h,
			Y:     q.Y + int32(i>>1)*h,
			Level: q.Level + 1,
		}
	}
	return
}

// Parent returns the quadrant one level coarser that contains q
func (q Quadrant) Parent() Quadrant {
	if q.Level == 0 {
		panic(fmt.Errorf("root quadrant has no parent"))
	}
	mask := ^QuadrantLen(q.Level-1) + 1
	return Quadrant{X: q.X & mask, Y: q.Y & mask, Level: q.Level - 1}
}

// IsAncestorOf reports whether q strictly contains r
func (q Quadrant) IsAncestorOf(r Quadrant) bool {
	if q.Level >= r.Level {
		return false
	}
	mask := ^(q.Len() - 1)
	return r.X&mask == q.X && r.Y&mask == q.Y
}

// Corner returns the integer coordinates of corner c of q in pixel order,
// corner i+2j at (X+i*Len, Y+j*Len). Coordinates may equal RootLen.
func (q Quadrant) Corner(c int) (x, y int64) {
	h := int64(q.Len())
	return int64(q.X) + int64(c&1)*h, int64(q.Y) + int64(c>>1)*h
}

func (q Quadrant) String() string {
	return fmt.Sprintf("(%d,%d)@%d", q.X, q.Y, q.Level)
}

// Compare orders quadrants along the Morton (z-order) curve. An ancestor
// sorts before its descendants.
func Compare(a, b Quadrant) int {
	exX := uint32(a.X ^ b.X)
	exY := uint32(a.Y ^ b.Y)
	switch {
	case exX == 0 && exY == 0:
		return cmpInt(int32(a.Level), int32(b.Level))
	case bits.Len32(exY) >= bits.Len32(exX):
		return cmpInt(a.Y, b.Y)
	default:
		return cmpInt(a.X, b.X)
	}
}

func cmpInt(a, b int32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
