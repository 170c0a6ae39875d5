package algo

import (
	"fmt"

	"github.com/huangsam/deadreck/schema"
)

// Compensator removes gravity from a raw acceleration series.
// Implementations keep every timestamp and the sample count of acce.
type Compensator interface {
	Name() schema.GravityStrategy
	Compensate(acce, orientation schema.TimeSeries) (schema.TimeSeries, error)
}

// MeanSubtraction subtracts the per-axis arithmetic mean of the whole series.
// It treats gravity as a constant body-frame bias and ignores orientation.
type MeanSubtraction struct{}

// OrientationRotation rotates every sample into the world frame using the
// nearest orientation sample, then subtracts Gravity.
type OrientationRotation struct {
	Gravity schema.Vec3
}

var (
	_ Compensator = MeanSubtraction{}
	_ Compensator = OrientationRotation{}
)

// NewCompensator returns the compensator for a strategy.
func NewCompensator(strategy schema.GravityStrategy, gravity schema.Vec3) (Compensator, error) {
	switch strategy {
	case schema.MeanStrategy:
		return MeanSubtraction{}, nil
	case schema.RotationStrategy:
		return OrientationRotation{Gravity: gravity}, nil
	default:
		return nil, fmt.Errorf("unknown gravity strategy %q", strategy)
	}
}

// Name returns schema.MeanStrategy.
func (MeanSubtraction) Name() schema.GravityStrategy { return schema.MeanStrategy }

// Compensate subtracts the mean vector from every sample.
func (MeanSubtraction) Compensate(acce, _ schema.TimeSeries) (schema.TimeSeries, error) {
	if acce.Empty() {
		return nil, schema.ErrEmptySeries
	}
	mean := Mean(acce)
	out := make(schema.TimeSeries, len(acce))
	for i, s := range acce {
		out[i] = schema.SampleAt(s.Time, s.Vec().Sub(mean))
	}
	return out, nil
}

// Name returns schema.RotationStrategy.
func (OrientationRotation) Name() schema.GravityStrategy { return schema.RotationStrategy }

// Compensate rotates and degravitizes every sample of acce.
func (o OrientationRotation) Compensate(acce, orientation schema.TimeSeries) (schema.TimeSeries, error) {
	if acce.Empty() {
		return nil, schema.ErrEmptySeries
	}
	if orientation.Empty() {
		return nil, schema.ErrMissingAlignmentSource
	}
	indices, err := AlignIndices(acce, orientation)
	if err != nil {
		return nil, err
	}
	out := make(schema.TimeSeries, len(acce))
	for i, s := range acce {
		ori := orientation[indices[i]]
		world := RotateAndDegravitize(s.Vec(), ori.Pitch(), ori.Roll(), ori.Yaw(), o.Gravity)
		out[i] = schema.SampleAt(s.Time, world)
	}
	return out, nil
}

// Mean returns the per-axis arithmetic mean of a series, or zero when empty.
func Mean(series schema.TimeSeries) schema.Vec3 {
	if series.Empty() {
		return schema.Vec3{}
	}
	var sum schema.Vec3
	for _, s := range series {
		sum = sum.Add(s.Vec())
	}
	return sum.Scale(1 / float64(len(series)))
}
