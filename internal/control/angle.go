package control

import "math"

func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// NormalizeAngle maps degrees into (-180, 180].
func NormalizeAngle(deg float64) float64 {
	x := math.Mod(deg+180, 360)
	if x < 0 {
		x += 360
	}
	x -= 180
	if x <= -180 {
		x += 360
	}
	return x
}
