package forest

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/notargets/quadforest/connectivity"
	"github.com/notargets/quadforest/partitions"
)

var ErrDestroyed = errors.New("forest has been destroyed")

// InitFunc produces the user data attached to a newly created quadrant
type InitFunc func(tree int32, q Quadrant) any

// RefineFunc decides whether a quadrant is replaced by its children
type RefineFunc func(tree int32, q Quadrant) bool

// WeightFunc returns the partition weight of a quadrant. It is called once per
// quadrant in global order.
type WeightFunc func(tree int32, q Quadrant) int64

// Tree holds the leaves of one tree in Morton order, with their user data
type Tree struct {
	Quadrants []Quadrant
	Data      []any
	MaxLevel  int8
}

// Forest is a collection of quadtrees over a connectivity, together with the
// ownership of its quadrants by a fixed number of ranks.
//
// The forest keeps every tree in memory; ranks are views onto contiguous
// runs of the global quadrant sequence (trees in order, Morton order within a
// tree).
type Forest struct {
	Conn     *connectivity.Connectivity
	Trees    []Tree
	NumRanks int

	// GlobalFirstQuadrant[t] is the global index of the first quadrant of tree t
	GlobalFirstQuadrant []int64
	Layout              *partitions.PartitionLayout

	initFn    InitFunc
	logger    *zap.SugaredLogger
	destroyed bool
}

// Option configures a Forest
type Option func(*Forest)

// WithLogger sets the logger used to report forest operations
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(f *Forest) { f.logger = logger }
}

// New creates a forest with one root quadrant per tree, block partitioned
// over numRanks ranks.
func New(conn *connectivity.Connectivity, numRanks int, initFn InitFunc, opts ...Option) *Forest {
	if conn == nil {
		panic(errors.New("nil connectivity"))
	}
	if numRanks < 1 {
		panic(fmt.Errorf("invalid rank count %d", numRanks))
	}
	f := &Forest{
		Conn:     conn,
		Trees:    make([]Tree, conn.NumTrees),
		NumRanks: numRanks,
		initFn:   initFn,
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(f)
	}
	for t := range f.Trees {
		root := Quadrant{}
		f.Trees[t] = Tree{
			Quadrants: []Quadrant{root},
			Data:      []any{f.initData(int32(t), root)},
		}
	}
	f.updateOffsets()
	if err := f.Partition(nil); err != nil {
		panic(err)
	}
	return f
}

func (f *Forest) initData(tree int32, q Quadrant) any {
	if f.initFn == nil {
		return nil
	}
	return f.initFn(tree, q)
}

func (f *Forest) checkAlive() {
	if f.destroyed {
		panic(ErrDestroyed)
	}
}

func (f *Forest) updateOffsets() {
	f.GlobalFirstQuadrant = make([]int64, len(f.Trees)+1)
	for t, tree := range f.Trees {
		f.GlobalFirstQuadrant[t+1] = f.GlobalFirstQuadrant[t] + int64(len(tree.Quadrants))
	}
}

// GlobalNumQuadrants returns the number of leaves over all trees
func (f *Forest) GlobalNumQuadrants() int64 {
	return f.GlobalFirstQuadrant[len(f.Trees)]
}

// Refine replaces every quadrant for which refineFn returns true by its
// children. When recursive is set the children are offered to refineFn
// again. New quadrants receive user data from the forest's InitFunc.
//
// Refinement changes quadrant counts, so the forest is repartitioned with
// uniform weights afterwards.
func (f *Forest) Refine(recursive bool, refineFn RefineFunc) {
	f.checkAlive()
	for t := range f.Trees {
		tree := &f.Trees[t]
		var (
			quads = make([]Quadrant, 0, len(tree.Quadrants))
			data  = make([]any, 0, len(tree.Quadrants))
		)
		var visit func(q Quadrant, d any, fresh bool)
		visit = func(q Quadrant, d any, fresh bool) {
			split := q.Level < MaxLevel && (recursive || !fresh) && refineFn(int32(t), q)
			if !split {
				quads = append(quads, q)
				data = append(data, d)
				return
			}
			for _, c := range q.Children() {
				visit(c, f.initData(int32(t), c), true)
			}
		}
		for i, q := range tree.Quadrants {
			visit(q, tree.Data[i], false)
		}
		tree.Quadrants, tree.Data = quads, data
		tree.updateMaxLevel()
	}
	f.updateOffsets()
	f.logger.Debugw("refined forest", "quadrants", f.GlobalNumQuadrants())
	if err := f.Partition(nil); err != nil {
		panic(err)
	}
}

func (tree *Tree) updateMaxLevel() {
	tree.MaxLevel = 0
	for _, q := range tree.Quadrants {
		tree.MaxLevel = max(tree.MaxLevel, q.Level)
	}
}

// Partition assigns contiguous runs of the global quadrant sequence to the
// ranks so that every rank carries about the same total weight. A nil
// weightFn gives every quadrant unit weight.
func (f *Forest) Partition(weightFn WeightFunc) error {
	f.checkAlive()
	pb := &partitions.PartitionBuilder{
		NumPartitions: f.NumRanks,
		Strategy:      partitions.BlockPartition,
		Weights:       make([]int64, f.GlobalNumQuadrants()),
	}
	if weightFn != nil {
		pb.Strategy = partitions.WeightedPartition
		i := 0
		for t, tree := range f.Trees {
			for _, q := range tree.Quadrants {
				pb.Weights[i] = weightFn(int32(t), q)
				i++
			}
		}
	}
	layout, err := pb.BuildPartitions()
	if err != nil {
		return fmt.Errorf("partitioning forest: %w", err)
	}
	f.Layout = layout
	f.logger.Debugw("partitioned forest", "strategy", pb.Strategy.String(),
		"stats", layout.PartitionStatistics().String())
	return nil
}

// Rank returns the view of the forest owned by rank r
func (f *Forest) Rank(r int) *LocalView {
	f.checkAlive()
	if r < 0 || r >= f.NumRanks {
		panic(fmt.Errorf("rank %d out of range [0, %d)", r, f.NumRanks))
	}
	part := f.Layout.Partitions[r]
	v := &LocalView{
		forest:         f,
		rank:           r,
		begin:          part.Begin,
		end:            part.End,
		firstLocalTree: -1,
		lastLocalTree:  -2,
	}
	if part.Begin == part.End {
		return v
	}
	// tree containing the first and the last owned quadrant
	v.firstLocalTree = f.treeOf(part.Begin)
	v.lastLocalTree = f.treeOf(part.End - 1)
	return v
}

// treeOf returns the tree holding global quadrant i. Trees are never empty.
func (f *Forest) treeOf(i int64) int32 {
	t, found := slices.BinarySearch(f.GlobalFirstQuadrant, i)
	if found {
		return int32(t)
	}
	return int32(t - 1)
}

// Destroy releases the forest's storage. The forest cannot be used afterwards.
func (f *Forest) Destroy() {
	f.checkAlive()
	f.Trees = nil
	f.GlobalFirstQuadrant = nil
	f.Layout = nil
	f.destroyed = true
}

// String returns a summary of the forest
func (f *Forest) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Forest: %d trees, %d quadrants, %d ranks\n",
		len(f.Trees), f.GlobalNumQuadrants(), f.NumRanks))
	for t, tree := range f.Trees {
		sb.WriteString(fmt.Sprintf("  tree %d: %d quadrants, max level %d\n",
			t, len(tree.Quadrants), tree.MaxLevel))
	}
	if f.Layout != nil {
		sb.WriteString(fmt.Sprintf("  %s\n", f.Layout.PartitionStatistics()))
	}
	return sb.String()
}
