package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadThrottleScenario(t *testing.T) {
	th := LoadThrottle{LowerLoadLimit: 0, UpperLoadLimit: 10, MinCooldown: 0.5, MaxCooldown: 5.0}
	assert.InDelta(t, 2.75, th.Cooldown(5), 1e-6)
}

func TestLoadThrottleEvaluate(t *testing.T) {
	th := LoadThrottle{
		LowerLoadLimit: 50,
		UpperLoadLimit: 150,
		MinCooldown:    1,
		MaxCooldown:    9,
		MinDisableProb: 0,
		MaxDisableProb: 0.5,
	}

	tests := []struct {
		name         string
		live         int
		wantCooldown float32
		wantProb     float32
	}{
		{"empty", 0, 1, 0},
		{"at lower limit", 50, 1, 0},
		{"midpoint", 100, 5, 0.25},
		{"at upper limit", 150, 9, 0.5},
		{"beyond upper limit clamps", 1000, 9, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, p := th.Evaluate(tt.live)
			assert.InDelta(t, tt.wantCooldown, c, 1e-6)
			assert.InDelta(t, tt.wantProb, p, 1e-6)
		})
	}
}

func TestLoadThrottleMonotonic(t *testing.T) {
	th := LoadThrottle{
		LowerLoadLimit: 10,
		UpperLoadLimit: 90,
		MinCooldown:    0.25,
		MaxCooldown:    12,
		MinDisableProb: 0.05,
		MaxDisableProb: 0.8,
	}
	prevC, prevP := th.Evaluate(th.LowerLoadLimit)
	for n := th.LowerLoadLimit + 1; n <= th.UpperLoadLimit; n++ {
		c, p := th.Evaluate(n)
		assert.GreaterOrEqual(t, c, prevC, "cooldown decreased at %d", n)
		assert.GreaterOrEqual(t, p, prevP, "disable probability decreased at %d", n)
		prevC, prevP = c, p
	}
}

func TestLoadThrottleDegenerateSpan(t *testing.T) {
	th := LoadThrottle{LowerLoadLimit: 20, UpperLoadLimit: 20, MinCooldown: 1, MaxCooldown: 3}
	assert.Equal(t, float32(1), th.Cooldown(20))
	assert.Equal(t, float32(3), th.Cooldown(21))
	assert.False(t, th.Engaged(20))
	assert.True(t, th.Engaged(21))
}
