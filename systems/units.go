package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/replicants/components"
)

// throttleState is the per-type throttle output for one fixed tick.
type throttleState struct {
	cooldown    float32
	disableProb float32
	engaged     bool
}

// UnitSystem runs the fixed-step part of the unit state machine: cooldown
// accumulation and the suppression roll.
type UnitSystem struct {
	filter   *ecs.Filter2[components.Unit, components.Active]
	spawners []*Spawner // indexed by unit type
	rng      Rand
	recorder Recorder

	states []throttleState
}

// NewUnitSystem creates the fixed-step unit system. spawners must be indexed
// by unit type (see SpawnerRegistry.Indexed).
func NewUnitSystem(w *ecs.World, spawners []*Spawner, rng Rand, recorder Recorder) *UnitSystem {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &UnitSystem{
		filter:   ecs.NewFilter2[components.Unit, components.Active](w),
		spawners: spawners,
		rng:      rng,
		recorder: recorder,
		states:   make([]throttleState, len(spawners)),
	}
}

// FixedUpdate advances cooldowns by dt and re-rolls suppression.
func (s *UnitSystem) FixedUpdate(dt float32) {
	// Throttle output depends only on the live count, so evaluate it once per type.
	for i, sp := range s.spawners {
		if sp == nil {
			continue
		}
		live := sp.LiveCount()
		th := sp.Throttle()
		cd, p := th.Evaluate(live)
		s.states[i] = throttleState{cooldown: cd, disableProb: p, engaged: th.Engaged(live)}
	}

	query := s.filter.Query()
	for query.Next() {
		unit, _ := query.Get()
		st := s.states[unit.Type]

		if unit.OnCooldown && !unit.SpawnPending {
			unit.CooldownTimer += dt
			if unit.CooldownTimer > st.cooldown {
				unit.OnCooldown = false
				unit.CooldownTimer = 0
			}
		}

		if !st.engaged {
			unit.SpawnSuppressed = false
			continue
		}
		unit.SpawnSuppressed = s.rng.Float32() < st.disableProb
		if unit.SpawnSuppressed {
			s.recorder.RecordSuppressed(unit.Type)
		}
	}
}
