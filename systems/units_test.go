package systems

import (
	"testing"
)

func TestFixedUpdateClearsCooldown(t *testing.T) {
	f := newFixture(t, fixtureOptions{throttle: defaultThrottle()})
	e := f.spawners[typeRed].SpawnAtHome() // live 1: cooldown = 0.5 + 4.5*0.1 = 0.95

	for i := 0; i < 9; i++ {
		f.units.FixedUpdate(0.1)
	}
	if !f.unitMap.Get(e).OnCooldown {
		t.Fatal("cooldown cleared before 0.95s")
	}
	f.units.FixedUpdate(0.1)
	u := f.unitMap.Get(e)
	if u.OnCooldown {
		t.Error("cooldown should clear once the timer exceeds 0.95s")
	}
	if u.CooldownTimer != 0 {
		t.Errorf("timer = %v, want reset to 0", u.CooldownTimer)
	}
}

func TestFixedUpdateSuppressionRoll(t *testing.T) {
	throttle := LoadThrottle{LowerLoadLimit: 1, UpperLoadLimit: 3, MinCooldown: 1, MaxCooldown: 1, MinDisableProb: 0, MaxDisableProb: 1}
	rng := &scriptedRand{vals: []float32{0.4, 0.6}}
	f := newFixture(t, fixtureOptions{throttle: throttle, rng: rng})

	e := f.spawners[typeRed].SpawnAtHome()
	f.units.FixedUpdate(0.01)
	if f.unitMap.Get(e).SpawnSuppressed {
		t.Fatal("suppressed while live count sits at the lower limit")
	}

	f.spawners[typeRed].SpawnAtHome() // live 2: probability 0.5
	rng.vals = []float32{0.4}
	f.units.FixedUpdate(0.01)
	first := f.unitMap.Get(e).SpawnSuppressed
	rng.vals = []float32{0.6}
	f.units.FixedUpdate(0.01)
	second := f.unitMap.Get(e).SpawnSuppressed
	if !first || second {
		t.Errorf("roll 0.4 < 0.5 should suppress, roll 0.6 should not: got %v, %v", first, second)
	}
	if f.recorder.suppressed == 0 {
		t.Error("suppression not recorded")
	}
}

func TestFixedUpdateClearsSuppressionBelowLimit(t *testing.T) {
	throttle := LoadThrottle{LowerLoadLimit: 5, UpperLoadLimit: 10, MaxDisableProb: 1}
	f := newFixture(t, fixtureOptions{throttle: throttle})
	e := f.spawners[typeBlue].SpawnAtHome()
	f.unitMap.Get(e).SpawnSuppressed = true

	f.units.FixedUpdate(0.01)

	if f.unitMap.Get(e).SpawnSuppressed {
		t.Error("suppression must clear while the throttle is disengaged")
	}
}
