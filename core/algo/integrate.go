package algo

import (
	"fmt"

	"github.com/huangsam/deadreck/schema"
)

// Integrate returns the cumulative trapezoidal integral of a series over its
// own timestamps. The first output sample is zero at the first input time;
// each following sample adds (t[i]-t[i-1]) * (v[i]+v[i-1]) / 2 per axis.
// Repeated timestamps contribute nothing.
func Integrate(series schema.TimeSeries) (schema.TimeSeries, error) {
	if series.Empty() {
		return nil, schema.ErrEmptySeries
	}
	out := make(schema.TimeSeries, len(series))
	out[0] = schema.Sample3{Time: series[0].Time}
	acc := schema.Vec3{}
	for i := 1; i < len(series); i++ {
		dt := series[i].Time - series[i-1].Time
		area := series[i].Vec().Add(series[i-1].Vec()).Scale(dt / 2)
		acc = acc.Add(area)
		out[i] = schema.SampleAt(series[i].Time, acc)
	}
	return out, nil
}

// DoubleIntegrate integrates acceleration to velocity and velocity to position.
func DoubleIntegrate(acce schema.TimeSeries) (velo, posi schema.TimeSeries, err error) {
	velo, err = Integrate(acce)
	if err != nil {
		return nil, nil, fmt.Errorf("velocity: %w", err)
	}
	posi, err = Integrate(velo)
	if err != nil {
		return nil, nil, fmt.Errorf("position: %w", err)
	}
	return velo, posi, nil
}

// TotalIntegral returns the trapezoidal area under each axis over the whole series.
// It equals the last sample of Integrate.
func TotalIntegral(series schema.TimeSeries) (schema.Vec3, error) {
	if series.Empty() {
		return schema.Vec3{}, schema.ErrEmptySeries
	}
	var total schema.Vec3
	for i := 1; i < len(series); i++ {
		dt := series[i].Time - series[i-1].Time
		total = total.Add(series[i].Vec().Add(series[i-1].Vec()).Scale(dt / 2))
	}
	return total, nil
}
