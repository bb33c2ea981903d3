package systems

// Clamp and interpolation helpers

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps a float32 value to the [0, 1] range.
func clamp01(v float32) float32 {
	return clampFloat(v, 0, 1)
}

// lerp linearly interpolates from a to b by t.
func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// randRange returns a uniform value in [lo, hi).
func randRange(rng Rand, lo, hi float32) float32 {
	return lo + rng.Float32()*(hi-lo)
}

// Rand is the random source the systems draw from. *rand.Rand satisfies it;
// tests inject scripted sources.
type Rand interface {
	Float32() float32
}
