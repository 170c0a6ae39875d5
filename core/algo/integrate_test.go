package algo

import (
	"testing"

	"github.com/huangsam/deadreck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrateStartsAtZero(t *testing.T) {
	series := schema.TimeSeries{{Time: 3.5, A: 4, B: 5, C: 6}, {Time: 4, A: 1, B: 1, C: 1}}
	out, err := Integrate(series)
	require.NoError(t, err)
	assert.Equal(t, schema.Sample3{Time: 3.5}, out[0])
}

func TestIntegrateZeroSeries(t *testing.T) {
	series := schema.TimeSeries{{Time: 0}, {Time: 0.3}, {Time: 1.1}, {Time: 2}}
	out, err := Integrate(series)
	require.NoError(t, err)
	assert.Equal(t, series, out)
}

func TestIntegrateConstantMatchesClosedForm(t *testing.T) {
	const dt = 0.25
	series := make(schema.TimeSeries, 9)
	for i := range series {
		series[i] = schema.Sample3{Time: 10 + float64(i)*dt, A: 2, B: -1, C: 0.5}
	}
	out, err := Integrate(series)
	require.NoError(t, err)
	require.Len(t, out, len(series))
	for i, s := range out {
		elapsed := series[i].Time - series[0].Time
		assert.Equal(t, series[i].Time, s.Time)
		assert.InDelta(t, 2*elapsed, s.A, tolerance)
		assert.InDelta(t, -1*elapsed, s.B, tolerance)
		assert.InDelta(t, 0.5*elapsed, s.C, tolerance)
	}
}

func TestIntegrateAxesAreIndependent(t *testing.T) {
	// Only X is non-zero: Z must stay zero.
	series := schema.TimeSeries{{Time: 0, A: 1}, {Time: 1, A: 3}, {Time: 2, A: 5}}
	out, err := Integrate(series)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 6}, out.Axis(0))
	assert.Equal(t, []float64{0, 0, 0}, out.Axis(2))
}

func TestIntegrateIrregularSteps(t *testing.T) {
	series := schema.TimeSeries{{Time: 0, B: 0}, {Time: 0.5, B: 2}, {Time: 2, B: 2}}
	out, err := Integrate(series)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, out[1].B, tolerance)
	assert.InDelta(t, 3.5, out[2].B, tolerance)
}

func TestIntegrateSingleSample(t *testing.T) {
	out, err := Integrate(schema.TimeSeries{{Time: 7, A: 1, B: 1, C: 1}})
	require.NoError(t, err)
	assert.Equal(t, schema.TimeSeries{{Time: 7}}, out)
}

func TestIntegrateEmpty(t *testing.T) {
	_, err := Integrate(nil)
	assert.ErrorIs(t, err, schema.ErrEmptySeries)

	_, _, err = DoubleIntegrate(schema.TimeSeries{})
	assert.ErrorIs(t, err, schema.ErrEmptySeries)
}

func TestDoubleIntegrateConstantAcceleration(t *testing.T) {
	series := make(schema.TimeSeries, 101)
	for i := range series {
		series[i] = schema.Sample3{Time: float64(i) * 0.01, A: 2}
	}
	velo, posi, err := DoubleIntegrate(series)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, velo.Last().A, 1e-9)
	// x = a t² / 2, trapezoid on a linear velocity is exact
	assert.InDelta(t, 1.0, posi.Last().A, 1e-9)
}

func TestDoubleIntegrateRestingScenario(t *testing.T) {
	acceNoG, err := MeanSubtraction{}.Compensate(restingAcce(), nil)
	require.NoError(t, err)
	velo, posi, err := DoubleIntegrate(acceNoG)
	require.NoError(t, err)
	for i := range acceNoG {
		assert.Equal(t, schema.Vec3{}, velo[i].Vec())
		assert.Equal(t, schema.Vec3{}, posi[i].Vec())
		assert.Equal(t, float64(i), posi[i].Time)
	}
}

func TestTotalIntegral(t *testing.T) {
	series := schema.TimeSeries{{Time: 0, A: 1, C: -1}, {Time: 1, A: 3, C: -1}, {Time: 3, A: 3, C: -1}}
	total, err := TotalIntegral(series)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, total.X, tolerance)
	assert.InDelta(t, -3.0, total.Z, tolerance)

	cumulative, err := Integrate(series)
	require.NoError(t, err)
	assert.Equal(t, cumulative.Last().Vec(), total)

	_, err = TotalIntegral(nil)
	assert.ErrorIs(t, err, schema.ErrEmptySeries)
}
