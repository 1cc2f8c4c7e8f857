package pysynrad

import "math"

// deg2rad and rad2deg mirror the conversion constants used throughout the
// teacher library's math helpers.
const (
	deg2rad = math.Pi / 180
	rad2deg = 1 / deg2rad
)

// Deg2rad converts an angle in degrees to radians.
func Deg2rad(a float64) float64 {
	return a * deg2rad
}

// Norm3 returns the Euclidean norm of a 3-vector given as (x, y, z).
func Norm3(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}

// Rotate2D rotates the point (x, y) by angle (radians, counter-clockwise)
// about the origin. Used to transform between the lab frame and a magnet's
// rolled frame (region roll angle) per the orbit stepper's magnet-frame
// projection.
func Rotate2D(x, y, angle float64) (xr, yr float64) {
	s, c := math.Sincos(angle)
	return c*x - s*y, s*x + c*y
}
