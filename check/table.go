package check

import (
	"fmt"
	"slices"

	"github.com/notargets/quadforest/geometry"
)

// VertexTable holds one physical location per local vertex id
type VertexTable struct {
	Points  []geometry.Point
	written []bool

	// Periods are the translations under which two writes to the same id
	// are still considered to agree, and under which two ids holding
	// periodic images of one point are duplicates
	Periods []geometry.Point
	lattice *geometry.Lattice
}

// NewVertexTable allocates a table for n local vertex ids
func NewVertexTable(n int32, periods []geometry.Point) (*VertexTable, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d vertices", ErrTableSize, n)
	}
	lattice, err := geometry.NewLattice(periods)
	if err != nil {
		return nil, err
	}
	return &VertexTable{
		Points:  make([]geometry.Point, n),
		written: make([]bool, n),
		Periods: periods,
		lattice: lattice,
	}, nil
}

// Set records p as the location of id. The first write stores the point;
// later writes must agree with it within geometry.Eps, up to a periodic
// translation.
func (vt *VertexTable) Set(id int32, p geometry.Point) error {
	if id < 0 || int(id) >= len(vt.Points) {
		return fmt.Errorf("%w: id %d outside [0, %d)", ErrTableSize, id, len(vt.Points))
	}
	if !vt.written[id] {
		vt.Points[id] = p
		vt.written[id] = true
		return nil
	}
	if !geometry.EqualModulo(vt.Points[id], p, vt.Periods) {
		return fmt.Errorf("%w: vertex %d is both %v and %v", ErrInconsistentVertex, id, vt.Points[id], p)
	}
	return nil
}

// Unwritten returns the ids that never received a location
func (vt *VertexTable) Unwritten() (ids []int32) {
	for id, ok := range vt.written {
		if !ok {
			ids = append(ids, int32(id))
		}
	}
	return
}

// Reduced returns the locations with periodic images mapped to one
// representative. Without periods it is Points itself.
func (vt *VertexTable) Reduced() []geometry.Point {
	if vt.lattice == nil {
		return vt.Points
	}
	reduced := make([]geometry.Point, len(vt.Points))
	for i, p := range vt.Points {
		reduced[i] = vt.lattice.Reduce(p)
	}
	return reduced
}

// SortedOrder returns the ids ordered by the reduced location they hold
func (vt *VertexTable) SortedOrder() []int32 {
	return sortedOrder(vt.Reduced())
}

func sortedOrder(pts []geometry.Point) []int32 {
	order := make([]int32, len(pts))
	for i := range order {
		order[i] = int32(i)
	}
	slices.SortStableFunc(order, func(a, b int32) int {
		return geometry.Compare(pts[a], pts[b])
	})
	return order
}

// FindDuplicate sorts the reduced locations and scans neighbors for a pair of
// ids holding the same point or periodic images of the same point
func (vt *VertexTable) FindDuplicate() (a, b int32, found bool) {
	pts := vt.Reduced()
	order := sortedOrder(pts)
	for i := 0; i+1 < len(order); i++ {
		if geometry.Compare(pts[order[i]], pts[order[i+1]]) == 0 {
			return order[i], order[i+1], true
		}
	}
	return -1, -1, false
}
