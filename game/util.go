package game

import "math"

// normalizeAngle wraps angle to [-pi, pi] with single-step correction.
// Safe when angle changes are bounded (heading +/- a small offset).
func normalizeAngle(a float32) float32 {
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
