package systems

import "github.com/pthm-cable/replicants/config"

// LoadThrottle maps a spawner's live count to a spawn cooldown and a
// spawn-suppression probability. Both are linearly interpolated between the
// lower and upper load limits and clamp outside them.
type LoadThrottle struct {
	LowerLoadLimit int
	UpperLoadLimit int
	MinCooldown    float32
	MaxCooldown    float32
	MinDisableProb float32
	MaxDisableProb float32
}

// NewLoadThrottle builds a throttle from unit type config.
func NewLoadThrottle(c config.ThrottleConfig) LoadThrottle {
	return LoadThrottle{
		LowerLoadLimit: c.LowerLoadLimit,
		UpperLoadLimit: c.UpperLoadLimit,
		MinCooldown:    float32(c.MinSpawnCooldown),
		MaxCooldown:    float32(c.MaxSpawnCooldown),
		MinDisableProb: float32(c.MinPercentDisabled),
		MaxDisableProb: float32(c.MaxPercentDisabled),
	}
}

// Ratio returns how far liveCount sits between the load limits, in [0, 1].
func (t LoadThrottle) Ratio(liveCount int) float32 {
	span := t.UpperLoadLimit - t.LowerLoadLimit
	if span <= 0 {
		if liveCount > t.LowerLoadLimit {
			return 1
		}
		return 0
	}
	return clamp01(float32(liveCount-t.LowerLoadLimit) / float32(span))
}

// Evaluate returns the spawn cooldown and disable probability for liveCount.
func (t LoadThrottle) Evaluate(liveCount int) (cooldown, disableProb float32) {
	r := t.Ratio(liveCount)
	return lerp(t.MinCooldown, t.MaxCooldown, r), lerp(t.MinDisableProb, t.MaxDisableProb, r)
}

// Cooldown returns only the spawn cooldown for liveCount.
func (t LoadThrottle) Cooldown(liveCount int) float32 {
	c, _ := t.Evaluate(liveCount)
	return c
}

// Engaged reports whether suppression rolls apply at liveCount.
func (t LoadThrottle) Engaged(liveCount int) bool {
	return liveCount > t.LowerLoadLimit
}
