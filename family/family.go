/*package family implements fracture families and the sampler which decides
which family each insertion attempt draws from.

The sampler keeps a selection CDF over the active families. Families leave the
CDF when they are exhausted (their quota or fracture intensity target is met)
or demoted (too many consecutive rejections), and the remaining probabilities
are renormalized so that their ratios are unchanged.
*/
package family

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"github.com/phil-mansfield/dfngen/fracture"
	"github.com/phil-mansfield/dfngen/geom"
	"github.com/phil-mansfield/dfngen/rand"
)

// Orientation describes the distribution of fracture normals. Theta and Phi
// are the polar angle and azimuth of the mean normal in degrees. Kappa is
// the Fisher concentration; values <= 0 fix every normal to the mean.
type Orientation struct {
	Theta, Phi float64
	Kappa      float64
}

// Mean returns the mean normal as a unit vector.
func (o *Orientation) Mean() r3.Vector { return geom.SphericalToVector(o.Theta, o.Phi) }

// Fixed returns true if every normal equals the mean normal.
func (o *Orientation) Fixed() bool { return o.Kappa <= 0 }

// Family is a set of fractures which share a shape and size and orientation
// distributions. Only the sampler modifies the bookkeeping fields.
type Family struct {
	// Index is the family's position in the configuration. It never
	// changes, even after other families are removed.
	Index int
	Name  string

	Shape       fracture.Shape
	Radius      rand.Distribution
	Orientation Orientation

	// Weight is the relative probability of drawing from this family.
	Weight float64
	// Target is the number of fractures the family should contribute. Zero
	// means no quota.
	Target int
	// P32Target is the fracture intensity (area per volume) the family
	// should reach. Zero means no target.
	P32Target float64

	// Radii is the pre-generated radius pool, sorted from largest to
	// smallest.
	Radii []float64

	Accepted   int
	CurrentP32 float64
	// Clamped counts radii which were forced into the distribution's range
	// after running out of resampling attempts.
	Clamped int
}

// Record updates the family's bookkeeping after one of its fractures is
// accepted into a domain of the given volume.
func (f *Family) Record(area, volume float64) {
	f.Accepted++
	if volume > 0 {
		// Fractures have two faces.
		f.CurrentP32 += 2 * area / volume
	}
}

// Validate checks that the family's parameters are usable.
func (f *Family) Validate() error {
	if err := f.Shape.Validate(); err != nil {
		return fmt.Errorf("%w: family '%s': %v", ErrConfiguration, f.Name, err)
	} else if err := f.Radius.Validate(); err != nil {
		return fmt.Errorf("%w: family '%s': %v", ErrConfiguration, f.Name, err)
	} else if f.Weight < 0 || math.IsNaN(f.Weight) || math.IsInf(f.Weight, 0) {
		return fmt.Errorf(
			"%w: family '%s' has invalid weight %g.", ErrConfiguration, f.Name, f.Weight,
		)
	} else if f.Target < 0 {
		return fmt.Errorf(
			"%w: family '%s' has negative Target %d.", ErrConfiguration, f.Name, f.Target,
		)
	} else if f.P32Target < 0 {
		return fmt.Errorf(
			"%w: family '%s' has negative P32Target %g.", ErrConfiguration, f.Name, f.P32Target,
		)
	}
	return nil
}

// QuotaMet returns true once the family has placed all of its allotted
// fractures.
func (f *Family) QuotaMet() bool { return f.Target > 0 && f.Accepted >= f.Target }

// P32Met returns true once the family has reached its intensity target.
func (f *Family) P32Met() bool { return f.P32Target > 0 && f.CurrentP32 >= f.P32Target }

// AreaFactor returns the ratio between a fracture's area and the square of
// its radius.
func (f *Family) AreaFactor() float64 {
	return fracture.NewCanonical(f.Shape, 1).Area
}

// Validate checks a whole family set. The weights of the set must not sum to
// zero.
func Validate(fams []*Family) error {
	if len(fams) == 0 {
		return fmt.Errorf("%w: no families given.", ErrConfiguration)
	}

	total := 0.0
	for _, f := range fams {
		if err := f.Validate(); err != nil {
			return err
		}
		total += f.Weight
	}

	if total <= 0 {
		return fmt.Errorf("%w: family weights sum to zero.", ErrConfiguration)
	}
	return nil
}
