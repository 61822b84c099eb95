package scenario

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/notargets/quadforest/check"
	"github.com/notargets/quadforest/connectivity"
	"github.com/notargets/quadforest/forest"
	"github.com/notargets/quadforest/partitions"
)

var ErrSkewedPartition = errors.New("skewed partition did not give one rank every quadrant")

// RankResult is the outcome of checking one rank
type RankResult struct {
	Rank           int
	LocalQuadrants int
	UniqueCount    int32
}

// Result is the outcome of one check pass within a scenario
type Result struct {
	Scenario  string
	Stage     string
	Quadrants int64
	Ranks     []RankResult
}

type scenario struct {
	description string
	needsMesh   bool
	run         func(r *Runner, ctx context.Context) error
}

var registry = map[string]scenario{
	"single": {
		description: "single unrefined tree",
		run:         (*Runner).runSingle,
	},
	"star": {
		description: "star refined, balanced and uniformly partitioned",
		run: func(r *Runner, ctx context.Context) error {
			return r.runRefined(ctx, "star", connectivity.NewStar(), false)
		},
	},
	"star-skewed": {
		description: "star repartitioned with a single nonzero weight",
		run: func(r *Runner, ctx context.Context) error {
			return r.runRefined(ctx, "star-skewed", connectivity.NewStar(), true)
		},
	},
	"periodic": {
		description: "periodic unit square with periodic identification",
		run: func(r *Runner, ctx context.Context) error {
			return r.runRefined(ctx, "periodic", connectivity.NewPeriodic(), false)
		},
	},
	"periodic-brick": {
		description: "3x2 brick periodic in both directions",
		run: func(r *Runner, ctx context.Context) error {
			return r.runRefined(ctx, "periodic-brick", connectivity.NewBrick(3, 2, true, true), false)
		},
	},
	"mesh": {
		description: "quadrilateral mesh read from a file",
		needsMesh:   true,
		run:         (*Runner).runMesh,
	},
}

// DefaultScenarios returns the sequence run when none is configured
func DefaultScenarios() []string {
	return []string{"single", "star", "star-skewed", "periodic"}
}

// Names returns every known scenario name, sorted
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Describe returns the one line description of a scenario
func Describe(name string) string {
	return registry[name].description
}

// Runner executes the configured scenarios in sequence
type Runner struct {
	Config  Config
	Results []Result

	logger *zap.SugaredLogger
}

// Option configures a Runner
type Option func(*Runner)

// WithLogger sets the logger used by the runner and the forests it builds
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner creates a runner for cfg
func NewRunner(cfg Config, opts ...Option) (*Runner, error) {
	if len(cfg.Scenarios) == 0 {
		cfg.Scenarios = DefaultScenarios()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		Config: cfg,
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run executes every configured scenario and stops at the first failure
func (r *Runner) Run(ctx context.Context) error {
	for _, name := range r.Config.Scenarios {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.logger.Infow("running scenario", "scenario", name, "description", Describe(name))
		if err := registry[name].run(r, ctx); err != nil {
			return fmt.Errorf("scenario %s: %w", name, err)
		}
	}
	return nil
}

func (r *Runner) runSingle(ctx context.Context) error {
	conn := connectivity.NewUnitSquare()
	f := forest.New(conn, r.Config.Ranks, InitUserData, forest.WithLogger(r.logger))
	defer f.Destroy()
	return r.checkRanks(ctx, "single", "unrefined", f)
}

func (r *Runner) runMesh(ctx context.Context) error {
	conn, err := connectivity.ReadMeshFile(r.Config.MeshFile)
	if err != nil {
		return err
	}
	if err := conn.Validate(); err != nil {
		return err
	}
	return r.runRefined(ctx, "mesh", conn, false)
}

// runRefined builds a forest on conn, refines it with RefinePredicate,
// balances it and checks every rank under a uniform partition. When skewed
// is set the forest is then repartitioned so that a single quadrant carries
// all the weight and checked again. With the default target, the last
// quadrant, that partition must hand every quadrant to one rank.
func (r *Runner) runRefined(ctx context.Context, name string, conn *connectivity.Connectivity, skewed bool) error {
	f := forest.New(conn, r.Config.Ranks, InitUserData, forest.WithLogger(r.logger))
	defer f.Destroy()

	f.Refine(true, RefinePredicate(r.Config.RefineLevel))
	f.Balance()
	weightOne := func(int32, forest.Quadrant) int64 { return partitions.WeightOne() }
	if err := f.Partition(weightOne); err != nil {
		return err
	}
	if err := r.checkRanks(ctx, name, "uniform", f); err != nil {
		return err
	}
	if !skewed {
		return nil
	}

	w := &partitions.WeightOnce{Target: r.Config.WeightTarget}
	if w.Target == LastQuadrant {
		w.Target = f.GlobalNumQuadrants() - 1
	}
	if w.Target >= f.GlobalNumQuadrants() {
		return fmt.Errorf("%w: weight target %d beyond %d quadrants",
			ErrInvalidConfig, w.Target, f.GlobalNumQuadrants())
	}
	if err := f.Partition(func(int32, forest.Quadrant) int64 { return w.Next() }); err != nil {
		return err
	}
	// weight on the last quadrant leaves nothing for ranks past the first
	if r.Config.WeightTarget == LastQuadrant && !ownsAll(f) {
		return fmt.Errorf("%w: target %d", ErrSkewedPartition, w.Target)
	}
	return r.checkRanks(ctx, name, "skewed", f)
}

func ownsAll(f *forest.Forest) bool {
	for rank := 0; rank < f.NumRanks; rank++ {
		if int64(f.Rank(rank).LocalNumQuadrants()) == f.GlobalNumQuadrants() {
			return true
		}
	}
	return false
}

// checkRanks verifies the local vertex ordering of every rank concurrently.
// The first failing rank cancels the others.
func (r *Runner) checkRanks(ctx context.Context, name, stage string, f *forest.Forest) error {
	res := Result{
		Scenario:  name,
		Stage:     stage,
		Quadrants: f.GlobalNumQuadrants(),
		Ranks:     make([]RankResult, f.NumRanks),
	}
	views := make([]*forest.LocalView, f.NumRanks)
	for rank := range views {
		views[rank] = f.Rank(rank)
	}

	g, gctx := errgroup.WithContext(ctx)
	for rank, view := range views {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			checker := check.NewChecker(view, f.Conn, check.WithLogger(r.logger.With("rank", rank)))
			report, err := checker.Check()
			if err != nil {
				return fmt.Errorf("%s rank %d: %w", stage, rank, err)
			}
			res.Ranks[rank] = RankResult{
				Rank:           rank,
				LocalQuadrants: report.LocalQuadrants,
				UniqueCount:    report.UniqueCount,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Errorw("check failed", "scenario", name, "stage", stage, "error", err)
		return err
	}
	r.logger.Infow("check passed", "scenario", name, "stage", stage,
		"quadrants", res.Quadrants, "ranks", f.NumRanks)
	r.Results = append(r.Results, res)
	return nil
}
