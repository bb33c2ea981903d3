package main

import (
	"context"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/replicants/config"
	"github.com/pthm-cable/replicants/game"
	"github.com/pthm-cable/replicants/telemetry"
)

// extinctionPenalty is added per unit type that died out during a run.
const extinctionPenalty = 4.0

// FitnessEvaluator runs headless simulations and scores how closely every
// unit type's population tracks the target.
type FitnessEvaluator struct {
	params        *ParamVector
	maxTicks      int32
	warmupWindows int
	seeds         []int64
	baseConfig    *config.Config
	target        float64

	mu          sync.Mutex
	lastMeanPop float64 // mean population from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, target float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:        params,
		maxTicks:      maxTicks,
		warmupWindows: 1,
		seeds:         seeds,
		baseConfig:    baseCfg,
		target:        target,
	}
}

// LastMeanPopulation returns the mean population seen by the most recent
// evaluation.
func (fe *FitnessEvaluator) LastMeanPopulation() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMeanPop
}

// runResult holds the results from a single simulation run.
type runResult struct {
	meanPop []float64 // per type, averaged over post-warmup windows
	extinct int       // unit types with no live units at the end
}

// Evaluate computes fitness for raw parameter values (lower = better). Seeds
// run concurrently; the first failure cancels the rest and scores +Inf.
func (fe *FitnessEvaluator) Evaluate(ctx context.Context, x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		return math.Inf(1)
	}
	if err := cfg.Validate(); err != nil {
		return math.Inf(1)
	}

	results := make([]runResult, len(fe.seeds))
	g, gctx := errgroup.WithContext(ctx)
	for i, seed := range fe.seeds {
		g.Go(func() error {
			r, err := fe.runSimulation(gctx, cfg.Clone(), seed)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return math.Inf(1)
	}

	fitness, meanPop := fe.score(results)
	fe.mu.Lock()
	fe.lastMeanPop = meanPop
	fe.mu.Unlock()
	return fitness
}

// score averages squared relative deviation from the target over types and
// seeds, plus the extinction penalty.
func (fe *FitnessEvaluator) score(results []runResult) (fitness, meanPop float64) {
	var sum, popSum float64
	var n int
	for _, r := range results {
		for _, pop := range r.meanPop {
			dev := (pop - fe.target) / fe.target
			sum += dev * dev
			popSum += pop
			n++
		}
		sum += extinctionPenalty * float64(r.extinct)
	}
	if n == 0 {
		return math.Inf(1), 0
	}
	return sum / float64(len(results)), popSum / float64(n)
}

// runSimulation executes a single headless run, collecting window stats via
// the stats callback.
func (fe *FitnessEvaluator) runSimulation(ctx context.Context, cfg *config.Config, seed int64) (runResult, error) {
	numTypes := len(cfg.Units)
	sums := make([]float64, numTypes)
	windows := 0

	g, err := game.NewGame(cfg, game.Options{
		Seed: seed,
		StatsCallback: func(stats []telemetry.WindowStats) {
			windows++
			if windows <= fe.warmupWindows {
				return
			}
			for i, s := range stats {
				sums[i] += s.PopMean
			}
		},
	})
	if err != nil {
		return runResult{}, err
	}
	defer g.Unload()

	if err := g.RunTicks(ctx, fe.maxTicks, cfg.Derived.FrameDT32); err != nil {
		return runResult{}, err
	}

	result := runResult{meanPop: make([]float64, numTypes)}
	scored := windows - fe.warmupWindows
	for i, u := range cfg.Units {
		if scored > 0 {
			result.meanPop[i] = sums[i] / float64(scored)
		}
		if n, _ := g.LiveCount(u.Name); n == 0 {
			result.extinct++
		}
	}
	return result, nil
}
