// Package schema has configs, models and global variables for all parts of deadreck.
package schema

import "math"

// Sample3 is a single timestamped 3-component measurement.
// The meaning of A, B and C depends on the stream it belongs to: linear
// acceleration (m/s²), angular rate, magnetic field, orientation angles
// (pitch, roll, yaw in degrees) or a position fix.
type Sample3 struct {
	Time float64 `json:"time" yaml:"time"` // Seconds, non-decreasing within a series
	A    float64 `json:"a" yaml:"a"`
	B    float64 `json:"b" yaml:"b"`
	C    float64 `json:"c" yaml:"c"`
}

// Vec returns the measurement part of the sample as a vector.
func (s Sample3) Vec() Vec3 {
	return Vec3{X: s.A, Y: s.B, Z: s.C}
}

// Pitch returns the pitch angle of an orientation sample, in degrees.
func (s Sample3) Pitch() float64 { return s.A }

// Roll returns the roll angle of an orientation sample, in degrees.
func (s Sample3) Roll() float64 { return s.B }

// Yaw returns the yaw angle of an orientation sample, in degrees.
func (s Sample3) Yaw() float64 { return s.C }

// SampleAt builds a sample from a timestamp and a vector.
func SampleAt(t float64, v Vec3) Sample3 {
	return Sample3{Time: t, A: v.X, B: v.Y, C: v.Z}
}

// TimeSeries is an ordered sequence of samples sorted by Time ascending.
// Consumers only read a series; every transform returns a new one.
type TimeSeries []Sample3

// Len returns the number of samples.
func (ts TimeSeries) Len() int { return len(ts) }

// Empty reports whether the series has no samples.
func (ts TimeSeries) Empty() bool { return len(ts) == 0 }

// Times returns a fresh slice with the timestamps of every sample.
func (ts TimeSeries) Times() []float64 {
	times := make([]float64, len(ts))
	for i, s := range ts {
		times[i] = s.Time
	}
	return times
}

// Axis returns a fresh slice with one component of every sample (0=A, 1=B, 2=C).
func (ts TimeSeries) Axis(i int) []float64 {
	values := make([]float64, len(ts))
	for k, s := range ts {
		switch i {
		case 0:
			values[k] = s.A
		case 1:
			values[k] = s.B
		default:
			values[k] = s.C
		}
	}
	return values
}

// Clone returns a copy that shares no storage with the receiver.
func (ts TimeSeries) Clone() TimeSeries {
	if ts == nil {
		return nil
	}
	out := make(TimeSeries, len(ts))
	copy(out, ts)
	return out
}

// First returns the first sample. The series must not be empty.
func (ts TimeSeries) First() Sample3 { return ts[0] }

// Last returns the last sample. The series must not be empty.
func (ts TimeSeries) Last() Sample3 { return ts[len(ts)-1] }

// Duration returns the elapsed time between the first and last sample.
func (ts TimeSeries) Duration() float64 {
	if len(ts) < 2 {
		return 0
	}
	return ts.Last().Time - ts.First().Time
}

// Vec3 is a 3-vector in either the body or the world frame.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v * k.
func (v Vec3) Scale(k float64) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}
