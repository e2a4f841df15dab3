package geom

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/phil-mansfield/dfngen/math/mat"
)

// AxisAngle creates the 3D rotation matrix which rotates counter-clockwise
// by angle radians about axis. The axis does not need to be normalized.
func AxisAngle(axis r3.Vector, angle float64) *mat.Matrix {
	k := axis.Normalize()
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c

	// Rodrigues: R = I cos + (1 - cos) k k^T + sin [k]_x
	A := []float64{
		c + t*k.X*k.X, t*k.X*k.Y - s*k.Z, t*k.X*k.Z + s*k.Y,
		t*k.Y*k.X + s*k.Z, c + t*k.Y*k.Y, t*k.Y*k.Z - s*k.X,
		t*k.Z*k.X - s*k.Y, t*k.Z*k.Y + s*k.X, c + t*k.Z*k.Z,
	}

	return mat.NewMatrix(A, 3, 3)
}

// RotationBetween creates the rotation matrix which maps the direction of
// from onto the direction of to.
//
// When the two directions are anti-parallel the rotation axis is undefined,
// so a 180 degree rotation about an axis orthogonal to from is used instead.
// The axis is chosen deterministically by r3.Vector.Ortho.
func RotationBetween(from, to r3.Vector) *mat.Matrix {
	f, t := from.Normalize(), to.Normalize()

	axis := f.Cross(t)
	if axis.Norm() < Eps {
		if f.Dot(t) > 0 {
			return mat.Identity(3)
		}
		return AxisAngle(f.Ortho(), math.Pi)
	}
	return AxisAngle(axis, AngleBetween(f, t))
}

// Rotate applies the rotation matrix m to v.
func Rotate(m *mat.Matrix, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m.Vals[0]*v.X + m.Vals[1]*v.Y + m.Vals[2]*v.Z,
		Y: m.Vals[3]*v.X + m.Vals[4]*v.Y + m.Vals[5]*v.Z,
		Z: m.Vals[6]*v.X + m.Vals[7]*v.Y + m.Vals[8]*v.Z,
	}
}
