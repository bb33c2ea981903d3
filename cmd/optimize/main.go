package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/replicants/config"
)

// formatDuration formats a duration as HhMMmSSs, or MmSSs when under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// tuneOptions holds the command line flags.
type tuneOptions struct {
	configPath string
	maxTicks   int32
	seeds      int
	maxEvals   int
	population int
	target     float64
	method     string
	outputDir  string
}

func main() {
	var opts tuneOptions

	cmd := &cobra.Command{
		Use:          "optimize",
		Short:        "Tune load throttle parameters toward a target population",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return tune(ctx, opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	cmd.Flags().Int32Var(&opts.maxTicks, "max-ticks", 15000, "Fixed ticks per run")
	cmd.Flags().IntVar(&opts.seeds, "seeds", 3, "Number of seeds per evaluation")
	cmd.Flags().IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	cmd.Flags().IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = auto)")
	cmd.Flags().Float64Var(&opts.target, "target", 100, "Target population per unit type")
	cmd.Flags().StringVar(&opts.method, "method", "cmaes", "Optimizer: cmaes or neldermead")
	cmd.Flags().StringVar(&opts.outputDir, "output", "", "Output directory for results")
	_ = cmd.MarkFlagRequired("output")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newMethod returns the gonum optimizer selected by name.
func newMethod(name string, dim, population int) (optimize.Method, error) {
	switch name {
	case "cmaes":
		if population == 0 {
			population = 4 + int(3.0*float64(dim)/2.0)
		}
		return &optimize.CmaEsChol{InitStepSize: 0.3, Population: population}, nil
	case "neldermead":
		return &optimize.NelderMead{SimplexSize: 0.3}, nil
	default:
		return nil, fmt.Errorf("unknown method %q (want cmaes or neldermead)", name)
	}
}

// tune runs the optimizer and writes the evaluation log and best config to
// opts.outputDir.
func tune(ctx context.Context, opts tuneOptions) error {
	if opts.target <= 0 {
		return errors.New("--target must be positive")
	}
	if opts.seeds < 1 {
		return errors.New("--seeds must be at least 1")
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	params := NewParamVector(baseCfg)
	dim := params.Dim()
	method, err := newMethod(opts.method, dim, opts.population)
	if err != nil {
		return err
	}

	evalSeeds := make([]int64, opts.seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, opts.maxTicks, evalSeeds, baseCfg, opts.target)

	logFile, err := os.Create(filepath.Join(opts.outputDir, "optimize_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()
	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "fitness", "mean_pop"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := logWriter.Write(header); err != nil {
		return fmt.Errorf("writing log header: %w", err)
	}

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(ctx, clamped)
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			row := []string{strconv.Itoa(evalCount), fmt.Sprintf("%.6f", fitness),
				fmt.Sprintf("%.2f", evaluator.LastMeanPopulation())}
			for _, v := range clamped {
				row = append(row, fmt.Sprintf("%.6f", v))
			}
			if err := logWriter.Write(row); err != nil {
				slog.Error("failed to write eval log", "error", err)
			}
			logWriter.Flush()

			elapsed := time.Since(startTime)
			remaining := time.Duration(opts.maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			slog.Info("eval",
				"n", evalCount,
				"of", opts.maxEvals,
				"fitness", fitness,
				"mean_pop", evaluator.LastMeanPopulation(),
				"best", bestFitness,
				"elapsed", formatDuration(elapsed),
				"eta", formatDuration(remaining),
			)
			return fitness
		},
	}

	slog.Info("starting optimization",
		"method", opts.method,
		"params", dim,
		"max_evals", opts.maxEvals,
		"seeds", opts.seeds,
		"ticks_per_run", opts.maxTicks,
		"target", opts.target,
	)

	settings := &optimize.Settings{FuncEvaluations: opts.maxEvals}
	result, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if bestParams == nil {
		if result == nil {
			return fmt.Errorf("optimizer produced no evaluations: %w", err)
		}
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	slog.Info("optimization complete",
		"evals", evalCount,
		"elapsed", formatDuration(time.Since(startTime)),
		"best_fitness", bestFitness,
	)
	for i, spec := range params.Specs {
		slog.Info("best parameter", "name", spec.Name, "path", spec.Path, "value", bestParams[i])
	}

	bestCfg := baseCfg.Clone()
	if err := params.ApplyToConfig(bestCfg, bestParams); err != nil {
		return err
	}
	configOutPath := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		return err
	}
	slog.Info("best config saved", "path", configOutPath)
	return nil
}
