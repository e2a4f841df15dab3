/*package props assigns the hydraulic properties of accepted fractures.

Apertures are either constant, drawn independently of geometry, or correlated
with the fracture radius through a power law with bounded log-normal noise.
Permeabilities follow the cubic law unless an independent model is given.
*/
package props

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/phil-mansfield/dfngen/family"
	"github.com/phil-mansfield/dfngen/fracture"
	"github.com/phil-mansfield/dfngen/rand"
)

// ErrAssigned is returned when properties are assigned to the same fracture
// twice.
var ErrAssigned = errors.New("props: properties already assigned")

// DefaultNoiseBound is the number of standard deviations at which correlated
// aperture noise is clipped.
const DefaultNoiseBound = 3

type ApertureModel int

const (
	ConstantAperture ApertureModel = iota
	LogNormalAperture
	CorrelatedAperture
	EndApertureModel
)

var apertureNames = [EndApertureModel]string{"Constant", "LogNormal", "Correlated"}

func (m ApertureModel) String() string {
	if m < 0 || m >= EndApertureModel {
		return "Unknown"
	}
	return apertureNames[m]
}

type PermeabilityModel int

const (
	CubicLaw PermeabilityModel = iota
	ConstantPermeability
	LogNormalPermeability
	EndPermeabilityModel
)

var permeabilityNames = [EndPermeabilityModel]string{"CubicLaw", "Constant", "LogNormal"}

func (m PermeabilityModel) String() string {
	if m < 0 || m >= EndPermeabilityModel {
		return "Unknown"
	}
	return permeabilityNames[m]
}

// ParseApertureModel converts a (case-insensitive) configuration string into
// an ApertureModel.
func ParseApertureModel(s string) (ApertureModel, error) {
	for m := ApertureModel(0); m < EndApertureModel; m++ {
		if strings.EqualFold(apertureNames[m], strings.TrimSpace(s)) {
			return m, nil
		}
	}
	return EndApertureModel, fmt.Errorf(
		"Aperture model must be one of [%s], '%s' is not recognized.",
		strings.Join(apertureNames[:], " | "), s,
	)
}

// ParsePermeabilityModel converts a (case-insensitive) configuration string
// into a PermeabilityModel.
func ParsePermeabilityModel(s string) (PermeabilityModel, error) {
	for m := PermeabilityModel(0); m < EndPermeabilityModel; m++ {
		if strings.EqualFold(permeabilityNames[m], strings.TrimSpace(s)) {
			return m, nil
		}
	}
	return EndPermeabilityModel, fmt.Errorf(
		"Permeability model must be one of [%s], '%s' is not recognized.",
		strings.Join(permeabilityNames[:], " | "), s,
	)
}

// Aperture parameterizes an aperture model.
//
//   Constant:   Value.
//   LogNormal:  Mean and Sd of ln(aperture).
//   Correlated: A * r^B * exp(Sigma * z), with z ~ N(0, 1) clipped to
//               [-NoiseBound, NoiseBound].
type Aperture struct {
	Model      ApertureModel
	Value      float64
	Mean, Sd   float64
	A, B       float64
	Sigma      float64
	NoiseBound float64
}

// Permeability parameterizes a permeability model.
//
//   CubicLaw:  aperture^2 / 12.
//   Constant:  Value.
//   LogNormal: Mean and Sd of ln(permeability).
type Permeability struct {
	Model    PermeabilityModel
	Value    float64
	Mean, Sd float64
}

// Validate returns an error describing the first invalid parameter.
func (ap *Aperture) Validate() error {
	switch ap.Model {
	case ConstantAperture:
		if ap.Value <= 0 {
			return fmt.Errorf("%w: constant aperture must be positive, but is %g.",
				family.ErrConfiguration, ap.Value)
		}
	case LogNormalAperture:
		if ap.Sd < 0 {
			return fmt.Errorf("%w: log-normal aperture has negative Sd %g.",
				family.ErrConfiguration, ap.Sd)
		}
	case CorrelatedAperture:
		if ap.A <= 0 {
			return fmt.Errorf("%w: correlated aperture needs a positive A, but is %g.",
				family.ErrConfiguration, ap.A)
		} else if ap.Sigma < 0 {
			return fmt.Errorf("%w: correlated aperture has negative Sigma %g.",
				family.ErrConfiguration, ap.Sigma)
		} else if ap.NoiseBound < 0 {
			return fmt.Errorf("%w: correlated aperture has negative NoiseBound %g.",
				family.ErrConfiguration, ap.NoiseBound)
		}
	default:
		return fmt.Errorf("%w: unrecognized aperture model %d.",
			family.ErrConfiguration, ap.Model)
	}
	return nil
}

// Validate returns an error describing the first invalid parameter.
func (perm *Permeability) Validate() error {
	switch perm.Model {
	case CubicLaw:
	case ConstantPermeability:
		if perm.Value <= 0 {
			return fmt.Errorf("%w: constant permeability must be positive, but is %g.",
				family.ErrConfiguration, perm.Value)
		}
	case LogNormalPermeability:
		if perm.Sd < 0 {
			return fmt.Errorf("%w: log-normal permeability has negative Sd %g.",
				family.ErrConfiguration, perm.Sd)
		}
	default:
		return fmt.Errorf("%w: unrecognized permeability model %d.",
			family.ErrConfiguration, perm.Model)
	}
	return nil
}

// Assigner draws apertures and permeabilities for accepted fractures.
type Assigner struct {
	ap   Aperture
	perm Permeability
	rng  *rand.Generator
}

// NewAssigner validates both models and returns an Assigner drawing from rng.
// A zero NoiseBound in a correlated model selects DefaultNoiseBound.
func NewAssigner(ap Aperture, perm Permeability, rng *rand.Generator) (*Assigner, error) {
	if err := ap.Validate(); err != nil {
		return nil, err
	} else if err := perm.Validate(); err != nil {
		return nil, err
	}
	if ap.Model == CorrelatedAperture && ap.NoiseBound == 0 {
		ap.NoiseBound = DefaultNoiseBound
	}
	return &Assigner{ap: ap, perm: perm, rng: rng}, nil
}

// Aperture returns the aperture model in use.
func (a *Assigner) Aperture() Aperture { return a.ap }

// Permeability returns the permeability model in use.
func (a *Assigner) Permeability() Permeability { return a.perm }

// Noise draws the multiplicative noise of the correlated aperture model.
func (a *Assigner) Noise() float64 {
	if a.ap.Sigma == 0 {
		return 1
	}
	z := a.rng.Normal()
	z = math.Max(-a.ap.NoiseBound, math.Min(a.ap.NoiseBound, z))
	return math.Exp(a.ap.Sigma * z)
}

// AssignAperture draws an aperture for p, stores it, and returns it.
func (a *Assigner) AssignAperture(p *fracture.Polygon) float64 {
	switch a.ap.Model {
	case ConstantAperture:
		p.Aperture = a.ap.Value
	case LogNormalAperture:
		p.Aperture = a.rng.LogNormal(a.ap.Mean, a.ap.Sd)
	case CorrelatedAperture:
		p.Aperture = a.ap.A * math.Pow(p.Radius(), a.ap.B) * a.Noise()
	default:
		panic("Impossible")
	}
	return p.Aperture
}

// AssignPermeability computes or draws a permeability for p, stores it, and
// returns it. Under the cubic law p must already have an aperture.
func (a *Assigner) AssignPermeability(p *fracture.Polygon) float64 {
	switch a.perm.Model {
	case CubicLaw:
		p.Permeability = CubicLawPermeability(p.Aperture)
	case ConstantPermeability:
		p.Permeability = a.perm.Value
	case LogNormalPermeability:
		p.Permeability = a.rng.LogNormal(a.perm.Mean, a.perm.Sd)
	default:
		panic("Impossible")
	}
	return p.Permeability
}

// Assign gives an accepted fracture its aperture and then its permeability.
// It must be called once per fracture.
func (a *Assigner) Assign(p *fracture.Polygon) error {
	if p.Aperture != 0 || p.Permeability != 0 {
		return fmt.Errorf("%w: fracture %d", ErrAssigned, p.ID)
	}
	a.AssignAperture(p)
	a.AssignPermeability(p)
	return nil
}

// CubicLawPermeability returns the permeability of parallel plates separated
// by aperture b.
func CubicLawPermeability(b float64) float64 { return b * b / 12 }

// Transmissivity returns the cubic-law transmissivity of a fracture, b^3 / 12.
func Transmissivity(b float64) float64 { return b * b * b / 12 }
