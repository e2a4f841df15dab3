/*package fracture contains the planar polygons which make up a fracture
network, along with the routines which build and orient them.

A polygon is created in a canonical frame (centered on the origin, lying in
the XY plane, with normal +z), rotated in-plane, rotated so that its normal
matches a sampled orientation, and then translated into the domain.
*/
package fracture

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/phil-mansfield/dfngen/geom"
)

// UserDefined is the family index given to fractures that were not drawn
// from a stochastic family.
const UserDefined = -1

// Face flags for the six faces of a box domain.
const (
	FaceNegX uint8 = 1 << iota
	FacePosX
	FaceNegY
	FacePosY
	FaceNegZ
	FacePosZ
)

// Polygon is a single planar fracture.
type Polygon struct {
	// ID is assigned when the fracture is accepted. It is -1 for candidates.
	ID     int
	Family int

	Vertices []r3.Vector
	Normal   r3.Vector
	Center   r3.Vector

	XRadius, YRadius float64
	Area             float64

	Group        int
	Aperture     float64
	Permeability float64
	// Faces is a bit mask of the domain faces the fracture touches.
	Faces uint8
}

// Radius returns the radius the fracture was drawn with.
func (p *Polygon) Radius() float64 { return p.XRadius }

// NewCanonical builds the canonical polygon for a shape with the given
// radius: centered on the origin in the XY plane with a normal of +z.
func NewCanonical(shape Shape, radius float64) *Polygon {
	n := shape.Vertices()
	yRadius := radius * shape.Aspect

	p := &Polygon{
		ID:       -1,
		Family:   UserDefined,
		Vertices: make([]r3.Vector, n),
		Normal:   geom.ZHat,
		XRadius:  radius,
		YRadius:  yRadius,
	}

	switch shape.Kind {
	case Rectangle:
		p.Vertices[0] = r3.Vector{X: radius, Y: yRadius}
		p.Vertices[1] = r3.Vector{X: -radius, Y: yRadius}
		p.Vertices[2] = r3.Vector{X: -radius, Y: -yRadius}
		p.Vertices[3] = r3.Vector{X: radius, Y: -yRadius}
	case RegularPolygon:
		// Offset by half a step so that the first edge is parallel to the
		// x-axis.
		step := 2 * math.Pi / float64(n)
		for i := range p.Vertices {
			theta := step*float64(i) + step/2
			p.Vertices[i] = r3.Vector{
				X: radius * math.Cos(theta), Y: yRadius * math.Sin(theta),
			}
		}
	case Ellipse:
		step := 2 * math.Pi / float64(n)
		for i := range p.Vertices {
			theta := step * float64(i)
			p.Vertices[i] = r3.Vector{
				X: radius * math.Cos(theta), Y: yRadius * math.Sin(theta),
			}
		}
	default:
		panic("Impossible")
	}

	p.Area = ComputeArea(p)
	return p
}

// ComputeArea returns the area of a planar polygon.
func ComputeArea(p *Polygon) float64 {
	var sum r3.Vector
	n := len(p.Vertices)
	for i := 0; i < n; i++ {
		sum = sum.Add(p.Vertices[i].Cross(p.Vertices[(i+1)%n]))
	}
	return sum.Norm() / 2
}

// Translate moves the polygon by t.
func Translate(p *Polygon, t r3.Vector) {
	for i := range p.Vertices {
		p.Vertices[i] = p.Vertices[i].Add(t)
	}
	p.Center = p.Center.Add(t)
}

// MoveTo translates the polygon so that its center lies at c.
func MoveTo(p *Polygon, c r3.Vector) { Translate(p, c.Sub(p.Center)) }

// EdgeLengths returns the lengths of the polygon's edges, starting with the
// edge between vertices 0 and 1.
func EdgeLengths(p *Polygon) []float64 {
	n := len(p.Vertices)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = p.Vertices[(i+1)%n].Sub(p.Vertices[i]).Norm()
	}
	return out
}

// Clone returns a deep copy of p.
func Clone(p *Polygon) *Polygon {
	q := *p
	q.Vertices = make([]r3.Vector, len(p.Vertices))
	copy(q.Vertices, p.Vertices)
	return &q
}

// BoundingRadius returns the distance from the polygon's center to its
// farthest vertex.
func BoundingRadius(p *Polygon) float64 {
	max := 0.0
	for _, v := range p.Vertices {
		max = math.Max(max, v.Sub(p.Center).Norm())
	}
	return max
}
