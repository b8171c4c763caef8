// Package core holds the small vector type shared by synchronized fields
// that want tick-to-tick interpolation (position, velocity, ...). The wire
// format on synced fields is raw bytes per the descriptor's width; Vector3
// exists only so callers can decode/encode/interpolate such a field without
// hand-rolling float32 triplets everywhere.
package core

import "math"

// Vector3 is a 3-component float32 vector, matching the wire width (12
// bytes) of a synced Vector3 field.
type Vector3 struct {
	X, Y, Z float32
}

// NewVector3 constructs a Vector3.
func NewVector3(x, y, z float32) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Add adds two vectors.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub subtracts two vectors.
func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Mul scales the vector.
func (v Vector3) Mul(s float32) Vector3 {
	return Vector3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot computes the dot product.
func (v Vector3) Dot(o Vector3) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Magnitude returns the vector's length.
func (v Vector3) Magnitude() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Lerp linearly interpolates toward o by fraction t, clamped to [0, 1].
// Nothing in this module calls it; it is available to callers that decode
// an interpolatable Vector3 field from two snapshots.
func (v Vector3) Lerp(o Vector3, t float32) Vector3 {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return v.Add(o.Sub(v).Mul(t))
}
