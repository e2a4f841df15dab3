/*package geom contains the vector and rotation routines used to orient
fractures.

Vectors are r3.Vector values from github.com/golang/geo. Rotations are 3x3
matrices built with Rodrigues' formula.
*/
package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

// Eps is the tolerance used when deciding whether two directions are
// parallel.
const Eps = 1e-9

// DegToRad converts degrees to radians.
const DegToRad = math.Pi / 180

// ZHat is the canonical fracture normal.
var ZHat = r3.Vector{X: 0, Y: 0, Z: 1}

// AngleBetween returns the angle in radians between a and b, computed as the
// inverse cosine of their normalized dot product. The cosine is clamped to
// [-1, 1] so that nearly (anti-)parallel vectors do not produce NaNs. The
// angle is zero if either vector has zero length.
func AngleBetween(a, b r3.Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}

	c := a.Dot(b) / (na * nb)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}

// SphericalToVector converts a polar angle theta (measured from +z) and an
// azimuth phi (measured from +x), both in degrees, to a unit vector.
func SphericalToVector(theta, phi float64) r3.Vector {
	t, p := theta*DegToRad, phi*DegToRad
	return r3.Vector{
		X: math.Sin(t) * math.Cos(p),
		Y: math.Sin(t) * math.Sin(p),
		Z: math.Cos(t),
	}
}

// ApproxEqual returns true if a and b differ by at most eps in every
// component.
func ApproxEqual(a, b r3.Vector, eps float64) bool {
	d := a.Sub(b)
	return math.Abs(d.X) <= eps && math.Abs(d.Y) <= eps && math.Abs(d.Z) <= eps
}
