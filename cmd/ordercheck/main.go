// Package main runs the local vertex ordering checks over a configured
// sequence of forest scenarios.
package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/notargets/quadforest/scenario"
)

const (
	flagConfig       = "config"
	flagRanks        = "ranks"
	flagLevel        = "level"
	flagScenario     = "scenario"
	flagWeightTarget = "weight-target"
	flagMesh         = "mesh"
	flagDebug        = "debug"
)

func main() {
	var logger *zap.SugaredLogger
	app := newApp(&logger)
	if err := app.Run(os.Args); err != nil {
		// failures inside an action are already logged
		if logger == nil {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// newApp builds the command line application. Before creates the logger and
// stores it through logger unless one is already set.
func newApp(logger **zap.SugaredLogger) *cli.App {
	return &cli.App{
		Name:  "ordercheck",
		Usage: "verify that local vertex numberings of a partitioned quadtree forest are geometrically consistent",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load scenario configuration from `FILE`",
				EnvVars: []string{"QUADFOREST_CONFIG"},
			},
			&cli.IntFlag{
				Name:    flagRanks,
				Aliases: []string{"n"},
				Usage:   "number of simulated ranks",
				EnvVars: []string{"QUADFOREST_RANKS"},
			},
			&cli.IntFlag{
				Name:    flagLevel,
				Usage:   "maximum refinement level",
				EnvVars: []string{"QUADFOREST_LEVEL"},
			},
			&cli.StringSliceFlag{
				Name:    flagScenario,
				Aliases: []string{"s"},
				Usage:   "scenario to run, may be repeated",
				EnvVars: []string{"QUADFOREST_SCENARIOS"},
			},
			&cli.Int64Flag{
				Name:    flagWeightTarget,
				Usage:   "global index of the quadrant carrying the skewed weight, -1 for the last",
				EnvVars: []string{"QUADFOREST_WEIGHT_TARGET"},
			},
			&cli.StringFlag{
				Name:    flagMesh,
				Usage:   "quadrilateral mesh `FILE` for the mesh scenario",
				EnvVars: []string{"QUADFOREST_MESH"},
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
				EnvVars: []string{"QUADFOREST_DEBUG"},
			},
		},
		Before: func(c *cli.Context) error {
			if *logger != nil {
				return nil
			}
			var (
				zl  *zap.Logger
				err error
			)
			if c.Bool(flagDebug) {
				zl, err = zap.NewDevelopment()
			} else {
				zl, err = zap.NewProduction()
			}
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			*logger = zl.Sugar()
			return nil
		},
		After: func(c *cli.Context) error {
			if *logger != nil {
				//nolint:errcheck
				(*logger).Sync()
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			return logFailure(*logger, runAction(c, *logger))
		},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list the available scenarios",
				Action: func(c *cli.Context) error {
					defaults := map[string]bool{}
					for _, name := range scenario.DefaultScenarios() {
						defaults[name] = true
					}
					for _, name := range scenario.Names() {
						marker := " "
						if defaults[name] {
							marker = "*"
						}
						fmt.Fprintf(c.App.Writer, "%s %-16s %s\n", marker, name, scenario.Describe(name))
					}
					return nil
				},
			},
			{
				Name:  "config",
				Usage: "print the effective configuration as YAML",
				Action: func(c *cli.Context) error {
					return logFailure(*logger, printConfig(c))
				},
			},
		},
	}
}

// loadConfig starts from the defaults or the config file and applies the
// flags that were set explicitly
func loadConfig(c *cli.Context) (scenario.Config, error) {
	cfg := scenario.DefaultConfig()
	if path := c.String(flagConfig); path != "" {
		var err error
		if cfg, err = scenario.LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	if c.IsSet(flagRanks) {
		cfg.Ranks = c.Int(flagRanks)
	}
	if c.IsSet(flagLevel) {
		cfg.RefineLevel = int8(c.Int(flagLevel))
	}
	if c.IsSet(flagScenario) {
		cfg.Scenarios = c.StringSlice(flagScenario)
	}
	if c.IsSet(flagWeightTarget) {
		cfg.WeightTarget = c.Int64(flagWeightTarget)
	}
	if c.IsSet(flagMesh) {
		cfg.MeshFile = c.String(flagMesh)
	}
	return cfg, cfg.Validate()
}

func printConfig(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(data)
	return err
}

func logFailure(logger *zap.SugaredLogger, err error) error {
	if err != nil {
		logger.Errorw("ordering check failed", "error", err)
	}
	return err
}

func runAction(c *cli.Context, logger *zap.SugaredLogger) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	runner, err := scenario.NewRunner(cfg, scenario.WithLogger(logger))
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()
	if err := runner.Run(ctx); err != nil {
		return err
	}
	logger.Infow("all scenarios passed", "scenarios", cfg.Scenarios, "checks", len(runner.Results))
	return nil
}
