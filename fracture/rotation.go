package fracture

import (
	"github.com/golang/geo/r3"

	"github.com/phil-mansfield/dfngen/geom"
	"github.com/phil-mansfield/dfngen/math/mat"
)

// rotateAbout applies m to every vertex of p, using the polygon's center as
// the origin.
func rotateAbout(p *Polygon, m *mat.Matrix) {
	for i, v := range p.Vertices {
		p.Vertices[i] = geom.Rotate(m, v.Sub(p.Center)).Add(p.Center)
	}
}

// ApplyRotation2D rotates p counter-clockwise by angle radians about its own
// normal. The normal, center, and radii are unchanged.
func ApplyRotation2D(p *Polygon, angle float64) {
	rotateAbout(p, geom.AxisAngle(p.Normal, angle))
}

// ApplyRotation3D rotates p about its center so that its normal points along
// target. A target anti-parallel to the current normal results in a 180
// degree flip about a fixed axis in the polygon's plane.
func ApplyRotation3D(p *Polygon, target r3.Vector) {
	rotateAbout(p, geom.RotationBetween(p.Normal, target))
	p.Normal = target.Normalize()
}

// Orient applies ApplyRotation2D and then ApplyRotation3D in a single pass,
// composing the two rotations into one matrix.
func Orient(p *Polygon, angle float64, target r3.Vector) {
	m := geom.RotationBetween(p.Normal, target).Mult(geom.AxisAngle(p.Normal, angle))
	rotateAbout(p, m)
	p.Normal = target.Normalize()
}
