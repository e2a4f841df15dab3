package io

import (
	"fmt"
	"sort"

	"github.com/golang/geo/r3"
	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/dfngen"
	"github.com/phil-mansfield/dfngen/family"
	"github.com/phil-mansfield/dfngen/fracture"
	"github.com/phil-mansfield/dfngen/geom"
	"github.com/phil-mansfield/dfngen/insert"
	"github.com/phil-mansfield/dfngen/output"
	"github.com/phil-mansfield/dfngen/props"
	"github.com/phil-mansfield/dfngen/rand"
)

const (
	ExampleGenerateFile = `[Generation]

#######################
# Required Parameters #
#######################

# Directory which output files will be written to.
Output = path/to/output/dir

# Must be one of [ Count | P32 ]. Under Count, each family stops once it has
# placed its share of Count fractures (or its own Target, if Count is not
# set). Under P32, each family stops once it reaches its P32Target.
StopCondition = Count
Count = 500

#######################
# Optional Parameters #
#######################

# Seed for the random number generator. 0 uses the current time, and the seed
# which was used is written to the report.
# Seed = 0
# Generator must be one of [ pcg64 | pcg32 ].
# Generator = pcg64

# Generation fails if fewer fractures than this are accepted.
# MinFractures = 0

# A rejected candidate is moved this many times before it is discarded.
# RejectsPerFracture = 10
# A family is demoted after this many discarded candidates in a row.
# MaxConsecutiveRejects = 1000
# If set, demoted families are restored when generation is resumed instead of
# being removed for good.
# DemotionResets = false

# Radius resampling attempts before an out-of-range radius is clamped.
# ClampRetries = 1000
# Fraction of extra radii pooled for each family before generation.
# RadiiListIncrease = 0.1

# Candidates smaller than MinRadius are rejected, and vertices may extend
# Margin past the domain boundaries (negative values keep fractures away from
# them).
# MinRadius = 0
# Margin = 0
# Set to false to skip intersection tests between fractures.
# Intersections = true

# Selection of the final network.
# KeepIsolated = false
# LargestClusterOnly = false
# KeepUserDefined = false
# RemoveFracturesLessThan = 0
# IDBase = 0
# Keep only clusters which connect all of the listed domain faces, chosen from
# -x +x -y +y -z +z. If no cluster does, the faces are ignored.
# BoundaryFaces = -x +x

# Whitespace-separated column files. RadiiFile lists "family radius" pairs
# which are pooled before any radius is drawn. IntersectionFile lists "A B"
# pairs of accepted fracture IDs which intersect.
# RadiiFile = path/to/radii.dat
# IntersectionFile = path/to/intersections.dat

# Output files which are useful for profiling and debugging.
# LogFile = log.out
# ProfileFile = prof.out

[Domain]
# Side lengths of the domain, which is centered on the origin.
X = 100
Y = 100
Z = 100

[Family "joints"]
# Shape must be one of [ Rectangle | Polygon | Ellipse ]. Polygon and Ellipse
# need Sides >= 3.
Shape = Ellipse
Sides = 8
Aspect = 1

# Distribution must be one of [ LogNormal | PowerLaw | Exponential |
# Constant | Uniform ]. LogNormal uses Mean and Sd of ln(r), PowerLaw uses
# Alpha, Exponential uses Mean, and Constant uses Value. Everything but
# Constant is restricted to [Min, Max].
Distribution = PowerLaw
Alpha = 2.6
Min = 1
Max = 15

# Mean normal in degrees, and the Fisher concentration. Kappa <= 0 fixes
# every normal to the mean.
Theta = 30
Phi = 45
Kappa = 20

# Relative probability of drawing from this family.
Weight = 1

# Target = 0
# P32Target = 0

[Aperture]
# Model must be one of [ Constant | LogNormal | Correlated ]. Correlated
# apertures are A * r^B * exp(Sigma * z) with z clipped to NoiseBound.
Model = Correlated
A = 1e-5
B = 0.5
# Sigma = 0
# NoiseBound = 3

[Permeability]
# Model must be one of [ CubicLaw | Constant | LogNormal ].
Model = CubicLaw`

	ExampleExclusionFile = `[Exclusion "borehole"]
# Candidates centered inside an exclusion box are rejected. Exclusion
# sections can be added to a Generate file.

# Location of lowermost corner:
X = -5
Y = -5
Z = -50

# Width of the box in each dimension:
XWidth = 10
YWidth = 10
ZWidth = 100`

	ExampleUserFractureFile = `[UserFracture "fault"]
# A deterministic fracture which is inserted before any stochastic ones.
# UserFracture sections can be added to a Generate file.

Shape = Rectangle
Radius = 20
Aspect = 0.5

# Center:
X = 0
Y = 0
Z = 0

# Normal:
NormalX = 1
NormalY = 0
NormalZ = 1

#######################
# Optional Parameters #
#######################

# In-plane rotation in degrees, applied before the normal is set.
# Angle = 0
# Sides = 8
# Set to true to skip the acceptance test.
# Force = false`
)

type GenerationConfig struct {
	// Required
	Output        string
	StopCondition string
	Count         int

	// Optional
	Seed      int64
	Generator string

	MinFractures          int
	RejectsPerFracture    int
	MaxConsecutiveRejects int
	DemotionResets        bool
	ClampRetries          int
	RadiiListIncrease     float64

	MinRadius     float64
	Margin        float64
	Intersections bool

	KeepIsolated            bool
	LargestClusterOnly      bool
	KeepUserDefined         bool
	RemoveFracturesLessThan float64
	IDBase                  int
	BoundaryFaces           string

	RadiiFile, IntersectionFile string
	LogFile, ProfileFile        string
}

func (con *GenerationConfig) ValidOutput() bool { return con.Output != "" }
func (con *GenerationConfig) ValidSeed() bool   { return con.Seed >= 0 }
func (con *GenerationConfig) ValidStopCondition() bool {
	_, err := dfngen.ParseStopCondition(con.StopCondition)
	return err == nil
}
func (con *GenerationConfig) ValidGenerator() bool {
	_, err := rand.ParseGeneratorType(con.Generator)
	return err == nil
}
func (con *GenerationConfig) ValidIDBase() bool {
	return con.IDBase == 0 || con.IDBase == 1
}
func (con *GenerationConfig) ValidBoundaryFaces() bool {
	_, err := output.ParseFaces(con.BoundaryFaces)
	return err == nil
}
func (con *GenerationConfig) ValidRadiiFile() bool        { return con.RadiiFile != "" }
func (con *GenerationConfig) ValidIntersectionFile() bool { return con.IntersectionFile != "" }
func (con *GenerationConfig) ValidLogFile() bool          { return con.LogFile != "" }
func (con *GenerationConfig) ValidProfileFile() bool      { return con.ProfileFile != "" }

type DomainConfig struct {
	X, Y, Z float64
}

func (con *DomainConfig) Domain() insert.Domain {
	return insert.NewCenteredDomain(con.X, con.Y, con.Z)
}

type FamilyConfig struct {
	// Required
	Shape        string
	Distribution string
	Weight       float64

	// Optional
	Sides  int
	Aspect float64

	Mean, Sd   float64
	Alpha      float64
	Min, Max   float64
	Value      float64
	Theta, Phi float64
	Kappa      float64

	Target    int
	P32Target float64
}

// Family converts the configuration into a family with the given name and
// index.
func (con *FamilyConfig) Family(name string, idx int) (*family.Family, error) {
	kind, err := fracture.ParseShapeKind(con.Shape)
	if err != nil {
		return nil, fmt.Errorf("%w: family '%s': %v", family.ErrConfiguration, name, err)
	}
	dist, err := rand.ParseKind(con.Distribution)
	if err != nil {
		return nil, fmt.Errorf("%w: family '%s': %v", family.ErrConfiguration, name, err)
	}

	aspect := con.Aspect
	if aspect == 0 {
		aspect = 1
	}

	f := &family.Family{
		Index: idx,
		Name:  name,
		Shape: fracture.Shape{Kind: kind, Sides: con.Sides, Aspect: aspect},
		Radius: rand.Distribution{
			Kind: dist, Mean: con.Mean, Sd: con.Sd, Alpha: con.Alpha,
			Min: con.Min, Max: con.Max, Value: con.Value,
		},
		Orientation: family.Orientation{Theta: con.Theta, Phi: con.Phi, Kappa: con.Kappa},
		Weight:      con.Weight,
		Target:      con.Target,
		P32Target:   con.P32Target,
	}
	return f, f.Validate()
}

type ApertureConfig struct {
	Model      string
	Value      float64
	Mean, Sd   float64
	A, B       float64
	Sigma      float64
	NoiseBound float64
}

func (con *ApertureConfig) Aperture() (props.Aperture, error) {
	m, err := props.ParseApertureModel(con.Model)
	if err != nil {
		return props.Aperture{}, fmt.Errorf("%w: %v", family.ErrConfiguration, err)
	}
	ap := props.Aperture{
		Model: m, Value: con.Value, Mean: con.Mean, Sd: con.Sd,
		A: con.A, B: con.B, Sigma: con.Sigma, NoiseBound: con.NoiseBound,
	}
	return ap, ap.Validate()
}

type PermeabilityConfig struct {
	Model    string
	Value    float64
	Mean, Sd float64
}

func (con *PermeabilityConfig) Permeability() (props.Permeability, error) {
	m, err := props.ParsePermeabilityModel(con.Model)
	if err != nil {
		return props.Permeability{}, fmt.Errorf("%w: %v", family.ErrConfiguration, err)
	}
	perm := props.Permeability{Model: m, Value: con.Value, Mean: con.Mean, Sd: con.Sd}
	return perm, perm.Validate()
}

type ExclusionConfig struct {
	X, Y, Z                float64
	XWidth, YWidth, ZWidth float64
}

func (con *ExclusionConfig) CheckInit(name string) error {
	if con.XWidth <= 0 || con.YWidth <= 0 || con.ZWidth <= 0 {
		return fmt.Errorf(
			"%w: Exclusion '%s' needs positive XWidth, YWidth, and ZWidth.",
			family.ErrConfiguration, name,
		)
	}
	return nil
}

func (con *ExclusionConfig) Box() insert.Domain {
	min := r3.Vector{X: con.X, Y: con.Y, Z: con.Z}
	return insert.Domain{
		Min: min,
		Max: min.Add(r3.Vector{X: con.XWidth, Y: con.YWidth, Z: con.ZWidth}),
	}
}

type UserFractureConfig struct {
	// Required
	Shape   string
	Radius  float64
	X, Y, Z float64

	NormalX, NormalY, NormalZ float64

	// Optional
	Aspect float64
	Sides  int
	Angle  float64
	Force  bool
}

// Polygon builds the fracture described by the configuration.
func (con *UserFractureConfig) Polygon(name string) (*fracture.Polygon, error) {
	kind, err := fracture.ParseShapeKind(con.Shape)
	if err != nil {
		return nil, fmt.Errorf("%w: UserFracture '%s': %v",
			family.ErrConfiguration, name, err)
	}
	aspect := con.Aspect
	if aspect == 0 {
		aspect = 1
	}
	shape := fracture.Shape{Kind: kind, Sides: con.Sides, Aspect: aspect}
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("%w: UserFracture '%s': %v",
			family.ErrConfiguration, name, err)
	}

	normal := r3.Vector{X: con.NormalX, Y: con.NormalY, Z: con.NormalZ}
	if con.Radius <= 0 {
		return nil, fmt.Errorf("%w: UserFracture '%s' needs a positive Radius.",
			family.ErrConfiguration, name)
	} else if normal.Norm() < geom.Eps {
		return nil, fmt.Errorf("%w: UserFracture '%s' needs a non-zero normal.",
			family.ErrConfiguration, name)
	}

	p := fracture.NewCanonical(shape, con.Radius)
	fracture.ApplyRotation2D(p, con.Angle*geom.DegToRad)
	fracture.ApplyRotation3D(p, normal)
	fracture.MoveTo(p, r3.Vector{X: con.X, Y: con.Y, Z: con.Z})
	return p, nil
}

type GenerateWrapper struct {
	Generation   GenerationConfig
	Domain       DomainConfig
	Aperture     ApertureConfig
	Permeability PermeabilityConfig

	Family       map[string]*FamilyConfig
	Exclusion    map[string]*ExclusionConfig
	UserFracture map[string]*UserFractureConfig
}

func DefaultGenerateWrapper() *GenerateWrapper {
	con := GenerationConfig{}
	con.Generator = rand.PCG64.String()
	con.StopCondition = dfngen.StopCount.String()
	con.RejectsPerFracture = dfngen.DefaultRejectsPerFracture
	con.MaxConsecutiveRejects = dfngen.DefaultMaxConsecutiveRejects
	con.ClampRetries = family.DefaultClampRetries
	con.RadiiListIncrease = dfngen.DefaultRadiiListIncrease
	con.Intersections = true

	return &GenerateWrapper{
		Generation:   con,
		Aperture:     ApertureConfig{Model: props.ConstantAperture.String()},
		Permeability: PermeabilityConfig{Model: props.CubicLaw.String()},
	}
}

// ReadGenerateConfig reads a Generate file and checks that it is valid.
func ReadGenerateConfig(fname string) (*GenerateWrapper, error) {
	wrap := DefaultGenerateWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, fmt.Errorf("%w: %v", family.ErrConfiguration, err)
	}
	return wrap, wrap.CheckInit()
}

// CheckInit returns an error describing the first invalid value. Shape and
// distribution parameters are checked when the families are built.
func (wrap *GenerateWrapper) CheckInit() error {
	con := &wrap.Generation
	switch {
	case !con.ValidOutput():
		return fmt.Errorf("%w: invalid/non-existent 'Output' value.", family.ErrConfiguration)
	case !con.ValidStopCondition():
		return fmt.Errorf("%w: invalid 'StopCondition' value '%s'.",
			family.ErrConfiguration, con.StopCondition)
	case !con.ValidGenerator():
		return fmt.Errorf("%w: invalid 'Generator' value '%s'.",
			family.ErrConfiguration, con.Generator)
	case !con.ValidSeed():
		return fmt.Errorf("%w: 'Seed' must be non-negative.", family.ErrConfiguration)
	case !con.ValidIDBase():
		return fmt.Errorf("%w: 'IDBase' must be 0 or 1.", family.ErrConfiguration)
	case !con.ValidBoundaryFaces():
		return fmt.Errorf("%w: invalid 'BoundaryFaces' value '%s'.",
			family.ErrConfiguration, con.BoundaryFaces)
	case len(wrap.Family) == 0:
		return fmt.Errorf("%w: no [Family] sections given.", family.ErrConfiguration)
	}

	if err := wrap.Domain.Domain().Validate(); err != nil {
		return err
	}
	for name, ex := range wrap.Exclusion {
		if err := ex.CheckInit(name); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Families builds the configured families, ordered by name.
func (wrap *GenerateWrapper) Families() ([]*family.Family, error) {
	names := sortedKeys(wrap.Family)

	fams := make([]*family.Family, len(names))
	for i, name := range names {
		f, err := wrap.Family[name].Family(name, i)
		if err != nil {
			return nil, err
		}
		fams[i] = f
	}
	return fams, nil
}

// UserFractures builds the configured user-defined fractures, ordered by
// name. force[i] is true if fracture i skips the acceptance test.
func (wrap *GenerateWrapper) UserFractures() (polys []*fracture.Polygon, force []bool, err error) {
	names := sortedKeys(wrap.UserFracture)

	for _, name := range names {
		con := wrap.UserFracture[name]
		p, err := con.Polygon(name)
		if err != nil {
			return nil, nil, err
		}
		polys = append(polys, p)
		force = append(force, con.Force)
	}
	return polys, force, nil
}

// Acceptor builds the acceptance test described by the configuration.
func (wrap *GenerateWrapper) Acceptor() *insert.DomainAcceptor {
	con := &wrap.Generation
	acc := &insert.DomainAcceptor{MinRadius: con.MinRadius, Margin: con.Margin}
	if con.Intersections {
		acc.Intersect = insert.RecordIntersections
	}

	names := sortedKeys(wrap.Exclusion)
	for _, name := range names {
		acc.Exclusions = append(acc.Exclusions, wrap.Exclusion[name].Box())
	}
	return acc
}

// Generator creates the random number generator. A Seed of 0 is replaced by
// one derived from the clock.
func (wrap *GenerateWrapper) Generator() *rand.Generator {
	typ, _ := rand.ParseGeneratorType(wrap.Generation.Generator)
	return rand.NewGenerator(typ, uint64(wrap.Generation.Seed))
}

// Options converts the configuration into session options.
func (wrap *GenerateWrapper) Options() dfngen.Options {
	con := &wrap.Generation
	opts := dfngen.DefaultOptions(wrap.Domain.Domain())
	opts.StopCondition, _ = dfngen.ParseStopCondition(con.StopCondition)
	opts.Count = con.Count
	opts.MinFractures = con.MinFractures
	opts.RejectsPerFracture = con.RejectsPerFracture
	opts.MaxConsecutiveRejects = con.MaxConsecutiveRejects
	opts.DemotionResets = con.DemotionResets
	opts.ClampRetries = con.ClampRetries
	opts.RadiiListIncrease = con.RadiiListIncrease
	return opts
}

// FinalizeOptions converts the configuration into final network selection
// options.
func (wrap *GenerateWrapper) FinalizeOptions() dfngen.FinalizeOptions {
	con := &wrap.Generation
	faces, _ := output.ParseFaces(con.BoundaryFaces)
	return dfngen.FinalizeOptions{
		Select: output.SelectOptions{
			KeepIsolated:    con.KeepIsolated,
			LargestOnly:     con.LargestClusterOnly,
			KeepUserDefined: con.KeepUserDefined,
			MinRadius:       con.RemoveFracturesLessThan,
			BoundaryFaces:   faces,
		},
		Base: con.IDBase,
	}
}
