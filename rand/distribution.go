package rand

import (
	"fmt"
	"math"
	"strings"
)

// Kind identifies a named distribution.
type Kind int

const (
	LogNormal Kind = iota
	PowerLaw
	Exponential
	Constant
	Uniform
	EndKind
)

var kindNames = [EndKind]string{
	"LogNormal", "PowerLaw", "Exponential", "Constant", "Uniform",
}

func (k Kind) String() string {
	if k < 0 || k >= EndKind {
		return "Unknown"
	}
	return kindNames[k]
}

// ParseKind converts a (case-insensitive) configuration string into a Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for k := Kind(0); k < EndKind; k++ {
		if strings.EqualFold(kindNames[k], s) {
			return k, nil
		}
	}
	return EndKind, fmt.Errorf(
		"Distribution must be one of [%s], '%s' is not recognized.",
		strings.Join(kindNames[:], " | "), s,
	)
}

// Distribution describes a distribution over positive values, such as
// fracture radii. Which fields are used depends on Kind:
//
//   LogNormal:   Mean and Sd of ln(x), clipped to [Min, Max].
//   PowerLaw:    Alpha, truncated to [Min, Max].
//   Exponential: Mean, truncated to [Min, Max].
//   Constant:    Value.
//   Uniform:     [Min, Max].
type Distribution struct {
	Kind     Kind
	Mean, Sd float64
	Alpha    float64
	Min, Max float64
	Value    float64
}

// Validate returns an error describing the first invalid parameter.
func (d *Distribution) Validate() error {
	switch d.Kind {
	case Constant:
		if d.Value <= 0 {
			return fmt.Errorf("Constant distribution needs a positive Value, but is %g.", d.Value)
		}
		return nil
	case LogNormal:
		if d.Sd < 0 {
			return fmt.Errorf("LogNormal distribution needs a non-negative Sd, but is %g.", d.Sd)
		}
	case PowerLaw:
		if d.Alpha <= 0 {
			return fmt.Errorf("PowerLaw distribution needs a positive Alpha, but is %g.", d.Alpha)
		}
	case Exponential:
		if d.Mean <= 0 {
			return fmt.Errorf("Exponential distribution needs a positive Mean, but is %g.", d.Mean)
		}
	case Uniform:
	default:
		return fmt.Errorf("Unrecognized distribution kind %d.", d.Kind)
	}

	if d.Min <= 0 {
		return fmt.Errorf("%s distribution needs a positive Min, but is %g.", d.Kind, d.Min)
	} else if d.Max < d.Min {
		return fmt.Errorf(
			"%s distribution has Max %g smaller than Min %g.", d.Kind, d.Max, d.Min,
		)
	}
	return nil
}

// Sample draws a single unclipped value. Only LogNormal can fall outside of
// [Min, Max].
func (d *Distribution) Sample(g *Generator) float64 {
	switch d.Kind {
	case LogNormal:
		return g.LogNormal(d.Mean, d.Sd)
	case PowerLaw:
		return g.TruncatedPowerLaw(d.Alpha, d.Min, d.Max)
	case Exponential:
		return g.TruncatedExponential(d.Mean, d.Min, d.Max)
	case Uniform:
		return g.Uniform(d.Min, d.Max)
	case Constant:
		return d.Value
	}
	panic(fmt.Sprintf("Unrecognized distribution kind %d.", d.Kind))
}

// InRange returns true if x lies within the clip range of the distribution.
func (d *Distribution) InRange(x float64) bool {
	if d.Kind == Constant {
		return true
	}
	return x >= d.Min && x <= d.Max
}

// Clamp forces x into [Min, Max].
func (d *Distribution) Clamp(x float64) float64 {
	if d.Kind == Constant {
		return x
	}
	return math.Max(d.Min, math.Min(d.Max, x))
}

// Bounds returns the smallest and largest values the distribution can
// produce.
func (d *Distribution) Bounds() (lo, hi float64) {
	if d.Kind == Constant {
		return d.Value, d.Value
	}
	return d.Min, d.Max
}

// Expected returns the mean of the distribution, ignoring truncation for the
// log-normal case. It is used for estimating fracture counts.
func (d *Distribution) Expected() float64 {
	switch d.Kind {
	case Constant:
		return d.Value
	case LogNormal:
		return math.Exp(d.Mean + d.Sd*d.Sd/2)
	case Uniform:
		return (d.Min + d.Max) / 2
	case Exponential:
		return d.Mean
	case PowerLaw:
		if d.Alpha == 1 {
			return d.Min * math.Log(d.Max/d.Min) / (1 - d.Min/d.Max)
		}
		a := d.Alpha
		norm := 1 - math.Pow(d.Min/d.Max, a)
		return a / (a - 1) * d.Min * (1 - math.Pow(d.Min/d.Max, a-1)) / norm
	}
	return 0
}
