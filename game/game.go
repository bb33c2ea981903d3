// Package game wires the ECS world, pools, spawners, systems and telemetry
// into one simulation context and steps it.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/replicants/components"
	"github.com/pthm-cable/replicants/config"
	"github.com/pthm-cable/replicants/systems"
	"github.com/pthm-cable/replicants/telemetry"
)

// Options configures a simulation run.
type Options struct {
	Seed          int64
	LogStats      bool                               // Log window and perf stats via slog
	OutputDir     string                             // CSV + config snapshot (empty = disabled)
	StatsCallback func(stats []telemetry.WindowStats) // Called on every window flush
}

// Game holds the complete simulation state. Everything a run touches hangs
// off this context; nothing is process-global, so independent games may run
// on separate goroutines.
type Game struct {
	cfg     *config.Config
	world   *ecs.World
	rng     *rand.Rand
	rngSeed int64

	arena    systems.Arena
	ids      systems.IDSequence
	pool     *systems.ObjectPool
	motion   *systems.Motion
	spawners *systems.SpawnerRegistry
	indexed  []*systems.Spawner // by unit type

	// Systems
	sysRegistry *systems.SystemRegistry
	movement    *systems.MovementSystem
	units       *systems.UnitSystem
	collision   *systems.CollisionSystem
	feed        *systems.ContactFeed

	// Telemetry
	overlay       *telemetry.Overlay
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func([]telemetry.WindowStats)

	// State
	tick        int32
	simTime     float32
	accumulator float32
	populations []int
}

// NewGame builds a simulation from cfg and spawns the initial population.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	if cfg == nil {
		return nil, fmt.Errorf("game: nil config")
	}

	g := &Game{
		cfg:           cfg,
		world:         ecs.NewWorld(),
		rng:           rand.New(rand.NewSource(opts.Seed)),
		rngSeed:       opts.Seed,
		sysRegistry:   systems.NewSystemRegistry(),
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
		populations:   make([]int, len(cfg.Units)),
	}
	clock := g.SimTime

	arena, err := systems.NewArena(
		float32(cfg.Arena.MinX), float32(cfg.Arena.MinZ),
		float32(cfg.Arena.MaxX), float32(cfg.Arena.MaxZ),
	)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	g.arena = arena

	protos := make([]systems.UnitPrototype, len(cfg.Units))
	labels := make([]string, len(cfg.Units))
	for i, u := range cfg.Units {
		behavior, ok := systems.ParseBehavior(u.Behavior)
		if !ok {
			return nil, fmt.Errorf("game: unit type %q: unknown behavior %q", u.Name, u.Behavior)
		}
		protos[i] = systems.UnitPrototype{
			Type:       components.UnitType(i),
			Name:       u.Name,
			Behavior:   behavior,
			Speed:      float32(u.Speed),
			HalfHeight: float32(u.HalfHeight),
			Radius:     float32(u.Radius),
			PoolSize:   u.PoolSize,
		}
		labels[i] = u.Name
	}

	g.overlay = telemetry.NewOverlay(cfg.Overlay.Enabled, float32(cfg.Overlay.LogDuration), clock)
	g.collector = telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Derived.DT32, labels)
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)

	g.pool = systems.NewObjectPool(g.world, protos, &g.ids, clock)
	g.motion = systems.NewMotion(g.world, arena, g.rng)

	spawners := make([]*systems.Spawner, 0, len(cfg.Spawners))
	for _, sc := range cfg.Spawners {
		idx, ok := cfg.Derived.UnitTypeIndex[sc.Type]
		if !ok {
			return nil, fmt.Errorf("game: spawner %q: %w", sc.Type, systems.ErrUnregisteredType)
		}
		spawners = append(spawners, systems.NewSpawner(systems.SpawnerOptions{
			Type:     components.UnitType(idx),
			Label:    sc.Type,
			Position: components.Vec3{X: float32(sc.X), Z: float32(sc.Z)},
			Throttle: systems.NewLoadThrottle(cfg.Units[idx].Throttle),
			Observer: g.overlay,
			Recorder: g.collector,
		}, g.pool, g.motion))
	}
	g.spawners, err = systems.NewSpawnerRegistry(spawners...)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	if err := g.spawners.Validate(len(cfg.Units)); err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	g.indexed = g.spawners.Indexed()

	g.movement = systems.NewMovementSystem(g.world, g.motion, float32(cfg.Sim.ArrivalEpsilon))
	g.units = systems.NewUnitSystem(g.world, g.indexed, g.rng, g.collector)
	g.collision = systems.NewCollisionSystem(g.world, g.pool, g.motion, g.indexed,
		systems.NewSpawnScheduler(), g.collector, clock)
	g.feed = systems.NewContactFeed(g.world, arena, float32(cfg.Sim.GridCellSize))

	g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		g.outputManager.Close()
		return nil, fmt.Errorf("game: %w", err)
	}

	g.spawnInitialPopulation()

	slog.Debug("game created",
		"seed", opts.Seed,
		"unit_types", len(cfg.Units),
		"spawners", len(spawners),
		"output_dir", g.outputManager.Dir(),
	)
	return g, nil
}

// Unload releases resources held by the game.
func (g *Game) Unload() {
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// Tick returns the number of fixed steps run so far.
func (g *Game) Tick() int32 {
	return g.tick
}

// SimTime returns elapsed simulation time in seconds.
func (g *Game) SimTime() float32 {
	return g.simTime
}

// Seed returns the RNG seed the game was created with.
func (g *Game) Seed() int64 {
	return g.rngSeed
}

// Config returns the configuration the game was built from.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Overlay returns the population overlay.
func (g *Game) Overlay() *telemetry.Overlay {
	return g.overlay
}

// Counts returns live counts by unit type name.
func (g *Game) Counts() map[string]int {
	return g.spawners.Counts()
}

// LiveCount returns the live count of unit type name.
func (g *Game) LiveCount(name string) (int, error) {
	idx, ok := g.cfg.Derived.UnitTypeIndex[name]
	if !ok {
		return 0, fmt.Errorf("%q: %w", name, systems.ErrUnregisteredType)
	}
	return g.indexed[idx].LiveCount(), nil
}

// SpawnAt spawns a unit of type name at point, as a player click would.
func (g *Game) SpawnAt(name string, x, z float32) (ecs.Entity, error) {
	idx, ok := g.cfg.Derived.UnitTypeIndex[name]
	if !ok {
		return ecs.Entity{}, fmt.Errorf("%q: %w", name, systems.ErrUnregisteredType)
	}
	return g.indexed[idx].SpawnUnit(components.Vec3{X: x, Z: z}), nil
}
