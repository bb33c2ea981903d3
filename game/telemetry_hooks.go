package game

import (
	"log/slog"

	"github.com/pthm-cable/replicants/components"
	"github.com/pthm-cable/replicants/telemetry"
)

// flushTelemetry closes the stats window when it is due.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.typeSnapshots())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		for _, s := range stats {
			s.LogStats()
		}
		g.logPerfStats(perfStats)
		g.logOverlay()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, g.tick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// typeSnapshots captures per-type population and throttle output.
func (g *Game) typeSnapshots() []telemetry.TypeSnapshot {
	snaps := make([]telemetry.TypeSnapshot, len(g.indexed))
	for i, sp := range g.indexed {
		live := sp.LiveCount()
		cooldown, disableProb := sp.Throttle().Evaluate(live)
		snaps[i] = telemetry.TypeSnapshot{
			Population:  live,
			PoolSize:    g.pool.Len(components.UnitType(i)),
			Cooldown:    cooldown,
			DisableProb: disableProb,
		}
	}
	return snaps
}
