package check

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/notargets/quadforest/forest"
	"github.com/notargets/quadforest/geometry"
)

// ForestView exposes the quadrants a process owns
type ForestView interface {
	LocalTreeRange() (first, last int32)
	TreeQuadrants(t int32) []forest.Quadrant
	LocalNumQuadrants() int
}

// ConnectivityView exposes the physical embedding of the trees
type ConnectivityView interface {
	TreeVertices(t int32) [4]int32
	Vertex(v int32) geometry.Point
	PeriodicTranslations() []geometry.Point
}

// VertexOrderer numbers the corners of the local quadrants
type VertexOrderer interface {
	OrderLocalVertices(identifyPeriodic bool) (*forest.LocalVertexMap, error)
}

// LocalForest is a forest view that can also number its own vertices
type LocalForest interface {
	ForestView
	VertexOrderer
}

// extentWarning is the coordinate magnitude past which the absolute
// tolerance of geometry.Eps stops being meaningful
const extentWarning = 100.0

// Report summarizes a successful check
type Report struct {
	LocalQuadrants int
	UniqueCount    int32
	// Locations holds the physical point of every local vertex id
	Locations []geometry.Point
}

// Checker verifies that a process's local vertex numbering agrees with the
// geometry: corners sharing an id are the same point, and distinct ids are
// distinct points.
type Checker struct {
	Forest  ForestView
	Conn    ConnectivityView
	Orderer VertexOrderer

	// IdentifyPeriodic is passed to the orderer
	IdentifyPeriodic bool

	logger *zap.SugaredLogger
}

// Option configures a Checker
type Option func(*Checker)

// WithLogger sets the logger used for diagnostics
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Checker) { c.logger = logger }
}

// WithIdentifyPeriodic overrides periodic identification, which is on by default
func WithIdentifyPeriodic(identify bool) Option {
	return func(c *Checker) { c.IdentifyPeriodic = identify }
}

// NewChecker creates a checker for a local forest over conn
func NewChecker(view LocalForest, conn ConnectivityView, opts ...Option) *Checker {
	c := &Checker{
		Forest:           view,
		Conn:             conn,
		Orderer:          view,
		IdentifyPeriodic: true,
		logger:           zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check runs the verification pass. It stops at the first violation.
func (c *Checker) Check() (*Report, error) {
	lvm, err := c.Orderer.OrderLocalVertices(c.IdentifyPeriodic)
	if err != nil {
		return nil, fmt.Errorf("ordering local vertices: %w", err)
	}
	numQuads := c.Forest.LocalNumQuadrants()
	if len(lvm.QuadToVertex) != forest.NumCorners*numQuads {
		return nil, fmt.Errorf("%w: %d corner ids for %d quadrants",
			ErrTableSize, len(lvm.QuadToVertex), numQuads)
	}

	var periods []geometry.Point
	if c.IdentifyPeriodic {
		periods = c.Conn.PeriodicTranslations()
	}
	table, err := NewVertexTable(lvm.UniqueCount, periods)
	if err != nil {
		return nil, err
	}

	const intsize = 1.0 / float64(forest.RootLen)
	first, last := c.Forest.LocalTreeRange()
	quadCount := 0
	for t := first; t <= last; t++ {
		var rhr [4]geometry.Point
		for k, v := range c.Conn.TreeVertices(t) {
			rhr[k] = c.Conn.Vertex(v)
		}
		pixel := geometry.PixelOrder(rhr)

		for _, q := range c.Forest.TreeQuadrants(t) {
			h := intsize * float64(q.Len())
			eta1 := intsize * float64(q.X)
			eta2 := intsize * float64(q.Y)
			corners := geometry.QuadrantCorners(pixel, eta1, eta2, h)
			for k, p := range corners {
				id := lvm.QuadToVertex[forest.NumCorners*quadCount+k]
				if err := table.Set(id, p); err != nil {
					return nil, fmt.Errorf("tree %d quadrant %v corner %d: %w", t, q, k, err)
				}
			}
			quadCount++
		}
	}
	if quadCount != numQuads {
		return nil, fmt.Errorf("%w: visited %d of %d local quadrants", ErrTableSize, quadCount, numQuads)
	}
	if unwritten := table.Unwritten(); len(unwritten) > 0 {
		return nil, fmt.Errorf("%w: %d ids never used, first %d", ErrTableSize, len(unwritten), unwritten[0])
	}
	if extent := geometry.Extent(table.Points); extent > extentWarning {
		c.logger.Warnw("coordinates exceed the normalized range of the absolute tolerance",
			"extent", extent, "eps", geometry.Eps)
	}

	if a, b, found := table.FindDuplicate(); found {
		return nil, fmt.Errorf("%w: vertices %d at %v and %d at %v coincide",
			ErrOrderingNotUnique, a, table.Points[a], b, table.Points[b])
	}

	c.logger.Debugw("local ordering verified", "quadrants", numQuads, "vertices", lvm.UniqueCount)
	return &Report{
		LocalQuadrants: numQuads,
		UniqueCount:    lvm.UniqueCount,
		Locations:      table.Points,
	}, nil
}

// Check verifies the local vertex numbering of view with periodic
// identification enabled
func Check(view LocalForest, conn ConnectivityView, opts ...Option) error {
	_, err := NewChecker(view, conn, opts...).Check()
	return err
}

// MustCheck is like Check but panics on a violation
func MustCheck(view LocalForest, conn ConnectivityView, opts ...Option) {
	if err := Check(view, conn, opts...); err != nil {
		panic(err)
	}
}
