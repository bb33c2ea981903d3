package game

import (
	"github.com/pthm-cable/replicants/components"
)

// spawnInitialPopulation spawns each spawner's configured initial units,
// scattered within one unit diameter of the spawner.
func (g *Game) spawnInitialPopulation() {
	for _, sc := range g.cfg.Spawners {
		idx := g.cfg.Derived.UnitTypeIndex[sc.Type]
		sp := g.indexed[idx]
		spread := float32(g.cfg.Units[idx].Radius) * 2
		home := sp.Position()
		for i := 0; i < sc.Initial; i++ {
			point := components.Vec3{
				X: clampf(home.X+(g.rng.Float32()*2-1)*spread, g.arena.MinX, g.arena.MaxX),
				Z: clampf(home.Z+(g.rng.Float32()*2-1)*spread, g.arena.MinZ, g.arena.MaxZ),
			}
			sp.SpawnUnit(point)
		}
	}
}

// clampf returns v limited to [lo, hi].
func clampf(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
