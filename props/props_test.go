package props

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/dfngen/family"
	"github.com/phil-mansfield/dfngen/fracture"
	"github.com/phil-mansfield/dfngen/rand"
)

func square(r float64) *fracture.Polygon {
	return fracture.NewCanonical(fracture.Shape{Kind: fracture.Rectangle, Aspect: 1}, r)
}

func TestCorrelatedAperture(t *testing.T) {
	ap := Aperture{Model: CorrelatedAperture, A: 1e-5, B: 0.5}
	a, err := NewAssigner(ap, Permeability{Model: CubicLaw}, rand.NewGenerator(rand.PCG64, 1))
	require.NoError(t, err)

	p := square(4)
	require.NoError(t, a.Assign(p))
	assert.InEpsilon(t, 2e-5, p.Aperture, 1e-12)
	assert.InEpsilon(t, p.Aperture*p.Aperture/12, p.Permeability, 1e-12)
}

func TestCorrelatedApertureNoise(t *testing.T) {
	ap := Aperture{Model: CorrelatedAperture, A: 1e-5, B: 0.5, Sigma: 0.4, NoiseBound: 2}
	a, err := NewAssigner(ap, Permeability{Model: CubicLaw}, rand.NewGenerator(rand.PCG64, 7))
	require.NoError(t, err)

	lo, hi := 2e-5*math.Exp(-0.8), 2e-5*math.Exp(0.8)
	logSum := 0.0
	const n = 20000
	for i := 0; i < n; i++ {
		p := square(4)
		require.NoError(t, a.Assign(p))
		require.True(t, p.Aperture >= lo*(1-1e-12) && p.Aperture <= hi*(1+1e-12))
		require.InEpsilon(t, CubicLawPermeability(p.Aperture), p.Permeability, 1e-12)
		logSum += math.Log(p.Aperture / 2e-5)
	}
	// The noise is symmetric in log space.
	assert.InDelta(t, 0, logSum/n, 0.01)
}

func TestIndependentModels(t *testing.T) {
	table := []struct {
		ap   Aperture
		perm Permeability
		a, k float64
	}{
		{Aperture{Model: ConstantAperture, Value: 1e-4}, Permeability{Model: CubicLaw},
			1e-4, 1e-8 / 12},
		{Aperture{Model: ConstantAperture, Value: 1e-4},
			Permeability{Model: ConstantPermeability, Value: 3e-12}, 1e-4, 3e-12},
		{Aperture{Model: LogNormalAperture, Mean: math.Log(2e-3)},
			Permeability{Model: LogNormalPermeability, Mean: math.Log(5e-11)}, 2e-3, 5e-11},
	}

	for i, test := range table {
		a, err := NewAssigner(test.ap, test.perm, rand.NewGenerator(rand.PCG32, 2))
		require.NoError(t, err)
		p := square(float64(i + 1))
		require.NoError(t, a.Assign(p))
		if math.Abs(p.Aperture-test.a) > 1e-12*test.a {
			t.Errorf("%d) aperture = %g instead of %g", i+1, p.Aperture, test.a)
		}
		if math.Abs(p.Permeability-test.k) > 1e-12*test.k {
			t.Errorf("%d) permeability = %g instead of %g", i+1, p.Permeability, test.k)
		}
	}
}

func TestAssignTwice(t *testing.T) {
	a, err := NewAssigner(Aperture{Model: ConstantAperture, Value: 1},
		Permeability{Model: CubicLaw}, rand.NewGenerator(rand.PCG64, 1))
	require.NoError(t, err)

	p := square(1)
	require.NoError(t, a.Assign(p))
	assert.True(t, errors.Is(a.Assign(p), ErrAssigned))
	assert.Equal(t, 1.0, p.Aperture)
}

func TestConfigurationErrors(t *testing.T) {
	table := []struct {
		ap   Aperture
		perm Permeability
	}{
		{Aperture{Model: ConstantAperture}, Permeability{}},
		{Aperture{Model: LogNormalAperture, Sd: -1}, Permeability{}},
		{Aperture{Model: CorrelatedAperture, A: 0}, Permeability{}},
		{Aperture{Model: CorrelatedAperture, A: 1, Sigma: -1}, Permeability{}},
		{Aperture{Model: EndApertureModel}, Permeability{}},
		{Aperture{Model: ConstantAperture, Value: 1}, Permeability{Model: ConstantPermeability}},
		{Aperture{Model: ConstantAperture, Value: 1}, Permeability{Model: EndPermeabilityModel}},
	}

	for i, test := range table {
		_, err := NewAssigner(test.ap, test.perm, rand.NewGenerator(rand.PCG64, 1))
		if !errors.Is(err, family.ErrConfiguration) {
			t.Errorf("%d) NewAssigner gave %v instead of a configuration error", i+1, err)
		}
	}
}

func TestParseModels(t *testing.T) {
	m, err := ParseApertureModel(" correlated")
	require.NoError(t, err)
	assert.Equal(t, CorrelatedAperture, m)
	_, err = ParseApertureModel("cubic")
	assert.Error(t, err)

	k, err := ParsePermeabilityModel("CUBICLAW")
	require.NoError(t, err)
	assert.Equal(t, CubicLaw, k)
	_, err = ParsePermeabilityModel("")
	assert.Error(t, err)

	assert.InEpsilon(t, 1e-9/12, Transmissivity(1e-3), 1e-12)
}
