package insert

import (
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/phil-mansfield/dfngen/family"
	"github.com/phil-mansfield/dfngen/fracture"
	"github.com/phil-mansfield/dfngen/rand"
)

// Domain is an axis-aligned box.
type Domain struct {
	Min, Max r3.Vector
}

// NewCenteredDomain returns a box with the given side lengths centered on the
// origin.
func NewCenteredDomain(x, y, z float64) Domain {
	h := r3.Vector{X: x / 2, Y: y / 2, Z: z / 2}
	return Domain{Min: h.Mul(-1), Max: h}
}

// Validate returns an error if the box has no volume.
func (d Domain) Validate() error {
	if d.Max.X <= d.Min.X || d.Max.Y <= d.Min.Y || d.Max.Z <= d.Min.Z {
		return fmt.Errorf(
			"%w: domain [%v, %v] has non-positive side lengths.",
			family.ErrConfiguration, d.Min, d.Max,
		)
	}
	return nil
}

// Size returns the side lengths of the box.
func (d Domain) Size() r3.Vector { return d.Max.Sub(d.Min) }

// Volume returns the volume of the box.
func (d Domain) Volume() float64 {
	s := d.Size()
	return s.X * s.Y * s.Z
}

// Contains returns true if v lies inside the box or on its surface.
func (d Domain) Contains(v r3.Vector) bool {
	return v.X >= d.Min.X && v.X <= d.Max.X &&
		v.Y >= d.Min.Y && v.Y <= d.Max.Y &&
		v.Z >= d.Min.Z && v.Z <= d.Max.Z
}

// Grow returns the box expanded by margin on every side. Negative margins
// shrink it.
func (d Domain) Grow(margin float64) Domain {
	m := r3.Vector{X: margin, Y: margin, Z: margin}
	return Domain{Min: d.Min.Sub(m), Max: d.Max.Add(m)}
}

// SamplePoint returns a point distributed uniformly within the box.
func (d Domain) SamplePoint(g *rand.Generator) r3.Vector {
	return r3.Vector{
		X: g.Uniform(d.Min.X, d.Max.X),
		Y: g.Uniform(d.Min.Y, d.Max.Y),
		Z: g.Uniform(d.Min.Z, d.Max.Z),
	}
}

// Faces returns the bit mask of box faces which p reaches to within tol.
func (d Domain) Faces(p *fracture.Polygon, tol float64) uint8 {
	var faces uint8
	for _, v := range p.Vertices {
		if v.X <= d.Min.X+tol {
			faces |= fracture.FaceNegX
		}
		if v.X >= d.Max.X-tol {
			faces |= fracture.FacePosX
		}
		if v.Y <= d.Min.Y+tol {
			faces |= fracture.FaceNegY
		}
		if v.Y >= d.Max.Y-tol {
			faces |= fracture.FacePosY
		}
		if v.Z <= d.Min.Z+tol {
			faces |= fracture.FaceNegZ
		}
		if v.Z >= d.Max.Z-tol {
			faces |= fracture.FacePosZ
		}
	}
	return faces
}
