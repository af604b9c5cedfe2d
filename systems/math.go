package systems

import "math"

// Vec2 is a point or direction in world space.
type Vec2 struct {
	X, Y float32
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float32 { return v.X*o.X + v.Y*o.Y }

// Cross returns the z component of v x o.
func (v Vec2) Cross(o Vec2) float32 { return v.X*o.Y - v.Y*o.X }

// LenSq returns the squared length of v.
func (v Vec2) LenSq() float32 { return v.X*v.X + v.Y*v.Y }

// Len returns the length of v.
func (v Vec2) Len() float32 { return float32(math.Sqrt(float64(v.LenSq()))) }

// Rotate returns v rotated counter-clockwise by angle radians.
func (v Vec2) Rotate(angle float32) Vec2 {
	s, c := sincos(angle)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Forward returns the unit vector an organ at the given angle faces.
// Local forward is -Y, so angle 0 faces (0, -1).
func Forward(angle float32) Vec2 {
	s, c := sincos(angle)
	return Vec2{s, -c}
}

// sincos returns sin and cos of a float32 angle.
func sincos(angle float32) (float32, float32) {
	s, c := math.Sincos(float64(angle))
	return float32(s), float32(c)
}

// clamp01 clamps a float32 value to the [0, 1] range.
func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// distanceSq returns the squared distance between two points.
func distanceSq(a, b Vec2) float32 {
	return a.Sub(b).LenSq()
}

// distance returns the Euclidean distance between two points.
func distance(a, b Vec2) float32 {
	return float32(math.Sqrt(float64(distanceSq(a, b))))
}
