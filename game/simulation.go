package game

import (
	"context"

	"github.com/pthm-cable/replicants/telemetry"
)

// maxStepsPerUpdate caps the fixed steps one Update may run, so a stalled
// frame cannot spiral.
const maxStepsPerUpdate = 8

// Update advances the simulation by one variable frame: movement with
// frameDT, then as many fixed steps as the accumulated time allows.
func (g *Game) Update(frameDT float32) {
	g.perfCollector.RecordFrame()
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseMovement)
	g.movement.Update(frameDT)

	dt := g.cfg.Derived.DT32
	g.accumulator += frameDT
	steps := 0
	for g.accumulator >= dt && steps < maxStepsPerUpdate {
		g.accumulator -= dt
		g.fixedStep(dt)
		steps++
	}
	if steps == maxStepsPerUpdate {
		g.accumulator = 0
	}

	g.perfCollector.EndTick()
}

// fixedStep runs one fixed tick: cooldowns and suppression, due delayed
// spawns, contacts, then telemetry.
func (g *Game) fixedStep(dt float32) {
	g.tick++
	g.simTime += dt

	g.perfCollector.StartPhase(telemetry.PhaseUnits)
	g.units.FixedUpdate(dt)

	g.perfCollector.StartPhase(telemetry.PhaseScheduler)
	g.collision.FireDue(g.simTime)

	g.perfCollector.StartPhase(telemetry.PhaseContacts)
	contacts := g.feed.Collect()

	g.perfCollector.StartPhase(telemetry.PhaseCollision)
	g.collision.Handle(contacts)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	for i, sp := range g.indexed {
		g.populations[i] = sp.LiveCount()
	}
	g.collector.SamplePopulation(g.populations)
	g.overlay.Expire()
	g.flushTelemetry()
}

// RunTicks runs frames of frameDT until maxTicks fixed steps have run (0 =
// until ctx is done). Cancellation is checked between frames.
func (g *Game) RunTicks(ctx context.Context, maxTicks int32, frameDT float32) error {
	if frameDT <= 0 {
		frameDT = g.cfg.Derived.FrameDT32
	}
	for maxTicks <= 0 || g.tick < maxTicks {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.Update(frameDT)
	}
	return nil
}
