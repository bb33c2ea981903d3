package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/replicants/config"
	"github.com/pthm-cable/replicants/game"
)

// runOptions holds the flags of the run command.
type runOptions struct {
	configPath string
	seed       int64
	maxTicks   int32
	outputDir  string
	logStats   bool
	runs       int
	frameDT    float64
}

var runOpts runOptions

// runCmd runs one or more headless simulations
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation headless",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runSimulations(ctx, runOpts)
	},
}

func init() {
	runCmd.Flags().StringVar(&runOpts.configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	runCmd.Flags().Int64Var(&runOpts.seed, "seed", 0, "RNG seed (0 = time-based); run i uses seed+i")
	runCmd.Flags().Int32Var(&runOpts.maxTicks, "max-ticks", 0, "Stop after N fixed ticks (0 = until interrupted)")
	runCmd.Flags().StringVar(&runOpts.outputDir, "output-dir", "", "Output directory for CSV logs and config snapshot")
	runCmd.Flags().BoolVar(&runOpts.logStats, "log-stats", false, "Log window stats via slog")
	runCmd.Flags().IntVar(&runOpts.runs, "runs", 1, "Number of independent runs to execute concurrently")
	runCmd.Flags().Float64Var(&runOpts.frameDT, "frame-dt", 0, "Movement step in seconds (0 = use config)")
}

// runSimulations runs opts.runs games concurrently. The first failure
// cancels the others.
func runSimulations(ctx context.Context, opts runOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.runs < 1 {
		return fmt.Errorf("--runs must be at least 1")
	}

	baseSeed := opts.seed
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}
	frameDT := float32(opts.frameDT)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < opts.runs; i++ {
		seed := baseSeed + int64(i)
		outDir := opts.outputDir
		if outDir != "" && opts.runs > 1 {
			outDir = filepath.Join(outDir, fmt.Sprintf("run-%03d", i))
		}

		g.Go(func() error {
			sim, err := game.NewGame(cfg.Clone(), game.Options{
				Seed:      seed,
				LogStats:  opts.logStats,
				OutputDir: outDir,
			})
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			defer sim.Unload()

			slog.Info("starting headless simulation",
				"run", i,
				"seed", seed,
				"max_ticks", opts.maxTicks,
				"output_dir", outDir,
			)

			err = sim.RunTicks(gctx, opts.maxTicks, frameDT)
			sim.LogWorldState()
			if err != nil && ctx.Err() != nil {
				slog.Info("interrupted", "run", i, "tick", sim.Tick())
				return nil
			}
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			slog.Info("max ticks reached", "run", i, "tick", sim.Tick())
			return nil
		})
	}
	return g.Wait()
}
