package algo

import (
	"testing"

	"github.com/huangsam/deadreck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restingAcce() schema.TimeSeries {
	return schema.TimeSeries{
		{Time: 0, C: 9.8},
		{Time: 1, C: 9.8},
		{Time: 2, C: 9.8},
	}
}

func TestNewCompensator(t *testing.T) {
	c, err := NewCompensator(schema.MeanStrategy, DefaultGravity)
	require.NoError(t, err)
	assert.Equal(t, schema.MeanStrategy, c.Name())

	c, err = NewCompensator(schema.RotationStrategy, DefaultGravity)
	require.NoError(t, err)
	assert.Equal(t, schema.RotationStrategy, c.Name())
	assert.Equal(t, DefaultGravity, c.(OrientationRotation).Gravity)

	_, err = NewCompensator("kalman", DefaultGravity)
	assert.Error(t, err)
}

func TestMeanSubtractionAtRest(t *testing.T) {
	out, err := MeanSubtraction{}.Compensate(restingAcce(), nil)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, s := range out {
		assert.Equal(t, float64(i), s.Time)
		assert.Equal(t, schema.Vec3{}, s.Vec())
	}
}

func TestMeanSubtractionIsIdempotent(t *testing.T) {
	acce := schema.TimeSeries{
		{Time: 0, A: 1, B: -3, C: 9.1},
		{Time: 0.5, A: 2.5, B: 0.2, C: 10.4},
		{Time: 1.3, A: -0.7, B: 4, C: 9.6},
		{Time: 2, A: 0.1, B: 1, C: 8.8},
	}
	once, err := MeanSubtraction{}.Compensate(acce, nil)
	require.NoError(t, err)
	twice, err := MeanSubtraction{}.Compensate(once, nil)
	require.NoError(t, err)

	require.Len(t, twice, len(once))
	for i := range once {
		assert.Equal(t, once[i].Time, twice[i].Time)
		assertVec(t, once[i].Vec(), twice[i].Vec())
	}
}

func TestMeanSubtractionDoesNotMutateInput(t *testing.T) {
	acce := restingAcce()
	_, err := MeanSubtraction{}.Compensate(acce, nil)
	require.NoError(t, err)
	assert.Equal(t, restingAcce(), acce)
}

func TestMeanSubtractionEmpty(t *testing.T) {
	_, err := MeanSubtraction{}.Compensate(nil, nil)
	assert.ErrorIs(t, err, schema.ErrEmptySeries)
}

func TestOrientationRotationAtRest(t *testing.T) {
	ahrs := schema.TimeSeries{{Time: 0}, {Time: 1.5}}
	out, err := OrientationRotation{Gravity: DefaultGravity}.Compensate(restingAcce(), ahrs)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, s := range out {
		assert.Equal(t, float64(i), s.Time)
		assert.Equal(t, schema.Vec3{}, s.Vec())
	}
}

func TestOrientationRotationUsesNearestOrientation(t *testing.T) {
	acce := schema.TimeSeries{{Time: 0, A: 1}, {Time: 1, A: 1}}
	ahrs := schema.TimeSeries{{Time: 0.1, C: 0}, {Time: 0.9, C: 90}}

	out, err := OrientationRotation{}.Compensate(acce, ahrs)
	require.NoError(t, err)
	assertVec(t, schema.Vec3{X: 1}, out[0].Vec())
	assertVec(t, schema.Vec3{Y: 1}, out[1].Vec())
}

func TestOrientationRotationMissingOrientation(t *testing.T) {
	_, err := OrientationRotation{Gravity: DefaultGravity}.Compensate(restingAcce(), nil)
	assert.ErrorIs(t, err, schema.ErrMissingAlignmentSource)

	_, err = OrientationRotation{Gravity: DefaultGravity}.Compensate(nil, schema.TimeSeries{{}})
	assert.ErrorIs(t, err, schema.ErrEmptySeries)
}

func TestMean(t *testing.T) {
	assert.Equal(t, schema.Vec3{}, Mean(nil))
	got := Mean(schema.TimeSeries{{A: 1, B: 2, C: 3}, {A: 3, B: 4, C: 5}})
	assert.Equal(t, schema.Vec3{X: 2, Y: 3, Z: 4}, got)
}
