package family

import (
	"fmt"
	"io/ioutil"
	"log"
	"math"
	"sort"

	"github.com/golang/geo/r3"

	"github.com/phil-mansfield/dfngen/fracture"
	"github.com/phil-mansfield/dfngen/geom"
	"github.com/phil-mansfield/dfngen/rand"
)

// DefaultClampRetries is the number of times an out-of-range radius is
// redrawn before it is clamped.
const DefaultClampRetries = 1000

type status int

const (
	active status = iota
	suspended
	removed
)

// Options configures a Sampler.
type Options struct {
	// ClampRetries bounds the number of redraws for out-of-range radii.
	// Zero selects DefaultClampRetries.
	ClampRetries int
	// Logger receives warnings. Nil discards them.
	Logger *log.Logger
}

// Draw is the result of a single sampling step.
type Draw struct {
	Family int
	Radius float64
	Shape  fracture.Shape
}

// Sampler selects families and radii. It owns the selection CDF: cdf[i] is
// the cumulative probability of slot i, prob[i] the probability of slot i,
// and slots[i] the family index stored in that slot. Slots stay in family
// index order.
type Sampler struct {
	fams   []*Family
	status []status
	rng    *rand.Generator

	cdf, prob []float64
	slots     []int

	clampRetries int
	log          *log.Logger
}

// NewSampler validates fams and builds the initial selection CDF from their
// weights.
func NewSampler(fams []*Family, rng *rand.Generator, opts Options) (*Sampler, error) {
	if err := Validate(fams); err != nil {
		return nil, err
	}
	for i, f := range fams {
		if f.Index != i {
			return nil, fmt.Errorf(
				"%w: family '%s' has Index %d but is in position %d.",
				ErrConfiguration, f.Name, f.Index, i,
			)
		}
	}
	if opts.ClampRetries < 0 {
		return nil, fmt.Errorf(
			"%w: ClampRetries must be non-negative, but is %d.",
			ErrConfiguration, opts.ClampRetries,
		)
	} else if opts.ClampRetries == 0 {
		opts.ClampRetries = DefaultClampRetries
	}
	if opts.Logger == nil {
		opts.Logger = log.New(ioutil.Discard, "", 0)
	}

	s := &Sampler{
		fams:         fams,
		status:       make([]status, len(fams)),
		rng:          rng,
		clampRetries: opts.ClampRetries,
		log:          opts.Logger,
	}
	s.rebuild()
	return s, nil
}

// rebuild recomputes the CDF from the weights of every active family.
func (s *Sampler) rebuild() {
	s.slots = s.slots[:0]
	weights := []float64{}
	for i, f := range s.fams {
		if s.status[i] == active {
			s.slots = append(s.slots, i)
			weights = append(weights, f.Weight)
		}
	}

	s.cdf, s.prob = CreateCDF(weights)
	if s.cdf == nil {
		s.slots = s.slots[:0]
	}
}

// Families returns every family, including removed ones.
func (s *Sampler) Families() []*Family { return s.fams }

// Family returns the family with the given index.
func (s *Sampler) Family(idx int) *Family { return s.fams[idx] }

// Active returns true if the family can currently be selected.
func (s *Sampler) Active(idx int) bool { return s.slot(idx) >= 0 }

// Suspended returns true if the family was temporarily removed.
func (s *Sampler) Suspended(idx int) bool { return s.status[idx] == suspended }

// NumActive returns the number of selectable families.
func (s *Sampler) NumActive() int { return len(s.slots) }

// CDF returns a copy of the selection CDF, in family index order.
func (s *Sampler) CDF() []float64 { return append([]float64{}, s.cdf...) }

// Probabilities returns the selection probability of every family. Inactive
// families have probability zero.
func (s *Sampler) Probabilities() []float64 {
	out := make([]float64, len(s.fams))
	for i, idx := range s.slots {
		out[idx] = s.prob[i]
	}
	return out
}

func (s *Sampler) slot(idx int) int {
	i := sort.SearchInts(s.slots, idx)
	if i < len(s.slots) && s.slots[i] == idx {
		return i
	}
	return -1
}

// Remove permanently takes a family out of the selection pool. It returns
// false if the family was not active.
func (s *Sampler) Remove(idx int) bool {
	if s.status[idx] == suspended {
		s.status[idx] = removed
		return true
	}
	return s.take(idx, removed)
}

// Suspend temporarily takes a family out of the selection pool until the
// next call to Restore. It returns false if the family was not active.
func (s *Sampler) Suspend(idx int) bool { return s.take(idx, suspended) }

func (s *Sampler) take(idx int, st status) bool {
	i := s.slot(idx)
	if i < 0 {
		return false
	}

	s.status[idx] = st
	s.cdf, s.prob = AdjustCDF(s.cdf, s.prob, i)
	copy(s.slots[i:], s.slots[i+1:])
	s.slots = s.slots[:len(s.slots)-1]
	if len(s.cdf) == 0 {
		s.slots = s.slots[:0]
	}
	return true
}

// Restore returns every suspended family to the selection pool and rebuilds
// the CDF. It returns the number of restored families.
func (s *Sampler) Restore() int {
	n := 0
	for i := range s.status {
		if s.status[i] == suspended {
			s.status[i] = active
			n++
		}
	}
	if n > 0 {
		s.rebuild()
	}
	return n
}

// SelectFamily draws a family index from the selection CDF.
func (s *Sampler) SelectFamily() (int, error) {
	i := IndexFromProb(s.cdf, s.rng.Float64())
	if i < 0 {
		return -1, ErrExhaustedPool
	}
	return s.slots[i], nil
}

// Sample draws a family, a radius, and that family's shape. The radius comes
// from the family's radius pool while it lasts and from its distribution
// afterwards.
func (s *Sampler) Sample() (Draw, error) {
	idx, err := s.SelectFamily()
	if err != nil {
		return Draw{Family: -1}, err
	}

	f := s.fams[idx]
	return Draw{Family: idx, Radius: s.nextRadius(f), Shape: f.Shape}, nil
}

func (s *Sampler) nextRadius(f *Family) float64 {
	if len(f.Radii) > 0 {
		r := f.Radii[0]
		f.Radii = f.Radii[1:]
		return r
	}
	return s.drawRadius(f)
}

// drawRadius draws a radius from the family's distribution, redrawing values
// outside [Min, Max] up to clampRetries times before clamping.
func (s *Sampler) drawRadius(f *Family) float64 {
	r := f.Radius.Sample(s.rng)
	for i := 0; i < s.clampRetries && !f.Radius.InRange(r); i++ {
		r = f.Radius.Sample(s.rng)
	}

	if !f.Radius.InRange(r) {
		if f.Clamped == 0 {
			s.log.Printf(
				"Warning: family '%s' could not draw a radius in [%g, %g] "+
					"after %d attempts, clamping.",
				f.Name, f.Radius.Min, f.Radius.Max, s.clampRetries,
			)
		}
		f.Clamped++
		r = f.Radius.Clamp(r)
	}
	return r
}

// AddRadii appends count freshly drawn radii to a family's pool and keeps
// the pool sorted from largest to smallest.
func (s *Sampler) AddRadii(idx, count int) {
	f := s.fams[idx]
	for i := 0; i < count; i++ {
		f.Radii = append(f.Radii, s.drawRadius(f))
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(f.Radii)))
}

// AddRadiiToLists pre-generates ceil(fraction * n) radii for every family,
// where n is the family's Target if it has one and the current size of its
// pool otherwise.
func (s *Sampler) AddRadiiToLists(fraction float64) {
	if fraction <= 0 {
		return
	}
	for i, f := range s.fams {
		base := f.Target
		if base == 0 {
			base = len(f.Radii)
		}
		s.AddRadii(i, int(math.Ceil(fraction*float64(base))))
	}
}

// EstimateCounts splits a total fracture count between the families by
// probability, sets each family's Target to ceil(p * total), and fills the
// radius pools with that many radii.
func (s *Sampler) EstimateCounts(total int) {
	probs := s.Probabilities()
	for i, f := range s.fams {
		f.Target = int(math.Ceil(probs[i] * float64(total)))
		s.AddRadii(i, f.Target)
	}
}

// EstimateP32Counts fills the radius pool of every family with a P32 target
// with the radii needed to reach that target in a domain of the given
// volume, ignoring rejections. At most maxDraws radii are drawn per family.
// It returns the number of radii drawn for each family.
func (s *Sampler) EstimateP32Counts(volume float64, maxDraws int) []int {
	counts := make([]int, len(s.fams))
	for i, f := range s.fams {
		if f.P32Target <= 0 {
			continue
		}

		factor, p32 := f.AreaFactor(), 0.0
		for counts[i] < maxDraws && p32 < f.P32Target {
			r := s.drawRadius(f)
			f.Radii = append(f.Radii, r)
			p32 += 2 * factor * r * r / volume
			counts[i]++
		}
		if p32 < f.P32Target {
			s.log.Printf(
				"Warning: family '%s' needs more than %d fractures to reach "+
					"P32 = %g.", f.Name, maxDraws, f.P32Target,
			)
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(f.Radii)))
	}
	return counts
}

// SampleNormal draws a unit normal from the family's orientation
// distribution. Fisher-distributed normals are drawn around +z and then
// rotated onto the mean.
func (s *Sampler) SampleNormal(idx int) r3.Vector {
	o := &s.fams[idx].Orientation
	mean := o.Mean()
	if o.Fixed() {
		return mean
	}

	k := o.Kappa
	u := s.rng.Float64()
	arg := u + (1-u)*math.Exp(-2*k)
	w := -1.0
	if arg > 0 {
		w = 1 + math.Log(arg)/k
	}
	w = math.Max(-1, math.Min(1, w))

	phi := s.rng.UnitCircle()
	sin := math.Sqrt(1 - w*w)
	v := r3.Vector{X: sin * math.Cos(phi), Y: sin * math.Sin(phi), Z: w}

	return geom.Rotate(geom.RotationBetween(geom.ZHat, mean), v).Normalize()
}

// SampleAngle draws an in-plane rotation angle.
func (s *Sampler) SampleAngle() float64 { return s.rng.UnitCircle() }
