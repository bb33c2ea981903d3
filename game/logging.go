package game

import (
	"log/slog"

	"github.com/pthm-cable/replicants/components"
	"github.com/pthm-cable/replicants/telemetry"
)

// logPerfStats logs perf stats with one attribute per system, named from
// the system registry.
func (g *Game) logPerfStats(stats telemetry.PerfStats) {
	attrs := []any{
		"tick", g.tick,
		"avg_tick_us", stats.AvgTickDuration.Microseconds(),
		"ticks_per_sec", int(stats.TicksPerSecond),
	}
	for _, info := range g.sysRegistry.All() {
		if pct, ok := stats.PhasePct[info.ID]; ok {
			attrs = append(attrs, info.Name, float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer.
func (g *Game) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("seed", g.rngSeed),
		slog.Int("tick", int(g.tick)),
		slog.Float64("sim_time", float64(g.simTime)),
		slog.Uint64("last_spawn_id", g.ids.Last()),
		slog.Int("pending_spawns", g.collision.Scheduler().Len()),
	}
	for i, sp := range g.indexed {
		t := components.UnitType(i)
		attrs = append(attrs, slog.Group(sp.Label(),
			slog.Int("live", sp.LiveCount()),
			slog.Int("pool", g.pool.Len(t)),
		))
	}
	return slog.GroupValue(attrs...)
}

// LogWorldState logs a one-line summary of the simulation, then the
// population overlay when it has anything to show.
func (g *Game) LogWorldState() {
	slog.Info("world state", "game", g)
	g.logOverlay()
}

func (g *Game) logOverlay() {
	if !g.overlay.Visible() {
		return
	}
	slog.Info("overlay", "tick", g.tick, "panel", g.overlay.Render())
}
