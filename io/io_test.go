package io

import (
	"errors"
	"math"
	"os"
	"path"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/dfngen"
	"github.com/phil-mansfield/dfngen/cluster"
	"github.com/phil-mansfield/dfngen/family"
	"github.com/phil-mansfield/dfngen/fracture"
	"github.com/phil-mansfield/dfngen/output"
	"github.com/phil-mansfield/dfngen/props"
	"github.com/phil-mansfield/dfngen/rand"
)

func readString(t *testing.T, s string) *GenerateWrapper {
	wrap := DefaultGenerateWrapper()
	require.NoError(t, gcfg.ReadStringInto(wrap, s))
	return wrap
}

func TestExampleGenerateFile(t *testing.T) {
	wrap := readString(t, ExampleGenerateFile)
	require.NoError(t, wrap.CheckInit())

	fams, err := wrap.Families()
	require.NoError(t, err)
	require.Len(t, fams, 1)
	f := fams[0]
	assert.Equal(t, "joints", f.Name)
	assert.Equal(t, fracture.Ellipse, f.Shape.Kind)
	assert.Equal(t, rand.PowerLaw, f.Radius.Kind)
	assert.Equal(t, 2.6, f.Radius.Alpha)
	assert.Equal(t, 20.0, f.Orientation.Kappa)

	ap, err := wrap.Aperture.Aperture()
	require.NoError(t, err)
	assert.Equal(t, props.CorrelatedAperture, ap.Model)
	assert.Equal(t, 1e-5, ap.A)
	perm, err := wrap.Permeability.Permeability()
	require.NoError(t, err)
	assert.Equal(t, props.CubicLaw, perm.Model)

	opts := wrap.Options()
	assert.Equal(t, dfngen.StopCount, opts.StopCondition)
	assert.Equal(t, 500, opts.Count)
	assert.Equal(t, dfngen.DefaultRejectsPerFracture, opts.RejectsPerFracture)
	assert.Equal(t, 1e6, opts.Domain.Volume())

	acc := wrap.Acceptor()
	assert.NotNil(t, acc.Intersect)
	assert.Empty(t, acc.Exclusions)
	assert.Equal(t, rand.PCG64, wrap.Generator().Type())
	assert.Equal(t, 0, wrap.FinalizeOptions().Base)
	assert.Zero(t, wrap.FinalizeOptions().Select.BoundaryFaces)

	wrap = readString(t, "[Generation]\nOutput = o\nBoundaryFaces = -x +x\n")
	assert.Equal(t, fracture.FaceNegX|fracture.FacePosX,
		wrap.FinalizeOptions().Select.BoundaryFaces)
}

func TestExampleSectionFiles(t *testing.T) {
	wrap := readString(t, ExampleGenerateFile+"\n"+
		ExampleExclusionFile+"\n"+ExampleUserFractureFile)
	require.NoError(t, wrap.CheckInit())

	acc := wrap.Acceptor()
	require.Len(t, acc.Exclusions, 1)
	assert.Equal(t, r3.Vector{X: 5, Y: 5, Z: 50}, acc.Exclusions[0].Max)

	polys, force, err := wrap.UserFractures()
	require.NoError(t, err)
	require.Len(t, polys, 1)
	assert.Equal(t, []bool{false}, force)
	p := polys[0]
	s := 1 / math.Sqrt(2)
	assert.InDelta(t, s, p.Normal.X, 1e-12)
	assert.InDelta(t, s, p.Normal.Z, 1e-12)
	assert.InDelta(t, 20.0, p.XRadius, 1e-12)
	assert.InDelta(t, 10.0, p.YRadius, 1e-12)
	assert.InDelta(t, 800.0, p.Area, 1e-9)
	for _, v := range p.Vertices {
		assert.InDelta(t, 0, v.Sub(p.Center).Dot(p.Normal), 1e-9)
	}
}

func TestFamilyOrder(t *testing.T) {
	wrap := readString(t, `[Generation]
Output = out
Count = 10
[Domain]
X = 1
Y = 1
Z = 1
[Family "b"]
Shape = Rectangle
Distribution = Constant
Value = 1
Weight = 1
[Family "a"]
Shape = Polygon
Sides = 6
Distribution = LogNormal
Mean = 0
Sd = 0.5
Min = 0.5
Max = 3
Weight = 2`)
	require.NoError(t, wrap.CheckInit())

	fams, err := wrap.Families()
	require.NoError(t, err)
	require.Len(t, fams, 2)
	assert.Equal(t, "a", fams[0].Name)
	assert.Equal(t, 0, fams[0].Index)
	assert.Equal(t, "b", fams[1].Name)
	assert.Equal(t, 1, fams[1].Index)
	assert.Equal(t, 1.0, fams[1].Shape.Aspect)
}

func TestConfigErrors(t *testing.T) {
	domain := "[Domain]\nX = 1\nY = 1\nZ = 1\n"
	fam := "[Family \"a\"]\nShape = Rectangle\nDistribution = Constant\nValue = 1\nWeight = 1\n"
	valid := domain + fam
	table := []string{
		"[Generation]\nCount = 1\n" + valid,
		"[Generation]\nOutput = o\nStopCondition = Area\n" + valid,
		"[Generation]\nOutput = o\nGenerator = mt\n" + valid,
		"[Generation]\nOutput = o\nSeed = -3\n" + valid,
		"[Generation]\nOutput = o\nIDBase = 2\n" + valid,
		"[Generation]\nOutput = o\nBoundaryFaces = -x left\n" + valid,
		"[Generation]\nOutput = o\n" + domain,
		"[Generation]\nOutput = o\n[Domain]\nX = 1\nY = 1\n" + fam,
		"[Generation]\nOutput = o\n" + valid + "[Exclusion \"e\"]\nXWidth = 1\n",
	}

	for i, s := range table {
		wrap := readString(t, s)
		if err := wrap.CheckInit(); !errors.Is(err, family.ErrConfiguration) {
			t.Errorf("%d) CheckInit gave %v instead of a configuration error", i+1, err)
		}
	}

	fams := []string{
		"Shape = Hexagon\nDistribution = Constant\nValue = 1\nWeight = 1",
		"Shape = Rectangle\nDistribution = Gamma\nValue = 1\nWeight = 1",
		"Shape = Ellipse\nDistribution = Constant\nValue = 1\nWeight = 1",
		"Shape = Rectangle\nDistribution = PowerLaw\nAlpha = 2\nWeight = 1",
		"Shape = Rectangle\nDistribution = Constant\nValue = 1\nWeight = -1",
	}
	for i, s := range fams {
		wrap := readString(t, "[Family \"f\"]\n"+s)
		if _, err := wrap.Families(); !errors.Is(err, family.ErrConfiguration) {
			t.Errorf("%d) Families gave %v instead of a configuration error", i+1, err)
		}
	}

	wrap := readString(t, "[Aperture]\nModel = Wide\n[Permeability]\nModel = Constant")
	_, err := wrap.Aperture.Aperture()
	assert.True(t, errors.Is(err, family.ErrConfiguration))
	_, err = wrap.Permeability.Permeability()
	assert.True(t, errors.Is(err, family.ErrConfiguration))

	wrap = readString(t, "[UserFracture \"u\"]\nShape = Rectangle\nRadius = 1")
	_, _, err = wrap.UserFractures()
	assert.True(t, errors.Is(err, family.ErrConfiguration))
}

func writeFile(t *testing.T, s string) string {
	fname := path.Join(t.TempDir(), "table.dat")
	require.NoError(t, os.WriteFile(fname, []byte(s), 0644))
	return fname
}

func TestReadRadii(t *testing.T) {
	fams := []*family.Family{{Name: "a"}, {Name: "b"}}
	fname := writeFile(t, "0 1.5\n1 2\n0 3.25\n0 0.5\n")
	require.NoError(t, ReadRadii(fname, fams))
	assert.Equal(t, []float64{3.25, 1.5, 0.5}, fams[0].Radii)
	assert.Equal(t, []float64{2}, fams[1].Radii)

	fname = writeFile(t, "0 1\n2 1\n")
	assert.True(t, errors.Is(ReadRadii(fname, fams), family.ErrConfiguration))
	fname = writeFile(t, "0 -1\n")
	assert.True(t, errors.Is(ReadRadii(fname, fams), family.ErrConfiguration))
}

func TestReadIntersections(t *testing.T) {
	records, err := ReadIntersections(writeFile(t, "0 3\n2 1\n"))
	require.NoError(t, err)
	assert.Equal(t, []cluster.Record{{A: 0, B: 3}, {A: 2, B: 1}}, records)

	_, err = ReadIntersections(writeFile(t, "0 1.5\n"))
	assert.Error(t, err)
}

func TestWriteNetwork(t *testing.T) {
	p := fracture.NewCanonical(fracture.Shape{Kind: fracture.Rectangle, Aspect: 1}, 2)
	net := &dfngen.Network{
		Fractures:     []*fracture.Polygon{p},
		Intersections: []cluster.Record{{A: 0, B: 1}},
		Report: &output.Report{
			Session: "s", Seed: 3,
			Families: []output.FamilyReport{{Name: "a", Accepted: 1}},
		},
	}

	dir := path.Join(t.TempDir(), "out")
	require.NoError(t, WriteNetwork(dir, net))

	f, err := os.Open(path.Join(dir, ReportFile))
	require.NoError(t, err)
	defer f.Close()
	r, err := output.ReadReport(f)
	require.NoError(t, err)
	assert.Equal(t, net.Report, r)

	radii, err := os.ReadFile(path.Join(dir, RadiiFile))
	require.NoError(t, err)
	assert.Contains(t, string(radii), "2 2 -1")
	_, err = os.Stat(path.Join(dir, IntersectionsFile))
	assert.NoError(t, err)
	prop, err := os.ReadFile(path.Join(dir, PropertiesFile))
	require.NoError(t, err)
	assert.Contains(t, string(prop), "-1 -1 0 0 0 0")
}
