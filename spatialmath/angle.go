package spatialmath

import "math"

// WrapToPi returns the equivalent of angle in (-pi, pi].
func WrapToPi(angle float64) float64 {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return angle
	}
	wrapped := math.Mod(angle+math.Pi, 2*math.Pi)
	if wrapped <= 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}

// AngleDistance returns the signed shortest rotation that takes heading from onto heading to,
// wrapped into (-pi, pi]. A positive result is a counter-clockwise rotation.
func AngleDistance(from, to float64) float64 {
	return WrapToPi(to - from)
}
