// Package tick implements the engine's wrap-aware tick arithmetic.
//
// A Tick is a 16-bit monotone counter advanced at a fixed server frequency.
// Every protocol timestamp in the engine is a Tick; comparisons between two
// ticks MUST go through Diff, never through raw < or > on the underlying
// uint16, because the counter wraps at 65536.
package tick

import "math"

// Tick is a wrapping 16-bit logical time step.
type Tick uint16

// Diff returns the signed distance from b to a: positive when a is newer
// than b, negative when a is older, zero when equal. Meaningful only within
// a half-range window of 2^15 ticks.
func Diff(a, b Tick) int16 {
	return int16(a - b)
}

// Newer reports whether a is strictly newer than b.
func Newer(a, b Tick) bool {
	return Diff(a, b) > 0
}

// NewerOrEqual reports whether a is newer than or equal to b.
func NewerOrEqual(a, b Tick) bool {
	return Diff(a, b) >= 0
}

// Clamp01 clamps t into [0, 1], used for the input header's lerpMsec field.
func Clamp01(t float32) float32 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Lerp interpolates between tick a and tick b by fraction t, clamped to
// [0, 1], rounding to the nearest tick. Used to compute a player's
// simulatedServerTick from its reported stateA/stateB/lerpMsec.
func Lerp(a, b Tick, t float32) Tick {
	t = Clamp01(t)
	delta := float64(Diff(b, a))
	return a + Tick(int16(math.Round(delta*float64(t))))
}
