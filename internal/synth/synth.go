// Package synth generates sensor logs with a known trajectory.
// It backs the benchmark and end-to-end tests of the pipeline.
package synth

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/huangsam/deadreck/core/algo"
	"github.com/huangsam/deadreck/schema"
)

// Options describes a device moving with constant world-frame acceleration
// while held at a fixed orientation.
type Options struct {
	Duration    float64     // Seconds of recording
	Rate        float64     // ACCE samples per second
	AhrsRate    float64     // AHRS samples per second, 0 means no AHRS stream
	PosiRate    float64     // POSI fixes per second, 0 means no POSI stream
	Accel       schema.Vec3 // World-frame acceleration, gravity excluded
	Orientation schema.Vec3 // Pitch, roll and yaw in degrees
	Gravity     float64
	Noise       float64 // Standard deviation of ACCE noise, m/s²
	Seed        uint64
}

// DefaultOptions returns a 20 second walk sampled at 50 Hz.
func DefaultOptions() Options {
	return Options{
		Duration:    20,
		Rate:        50,
		AhrsRate:    25,
		PosiRate:    1,
		Accel:       schema.Vec3{X: 0.2, Y: 0.1},
		Orientation: schema.Vec3{X: 5, Y: -3, Z: 30},
		Gravity:     9.8,
		Seed:        1,
	}
}

// Generate builds a sensor log whose compensated double integral matches its POSI stream.
func Generate(source string, opts Options) schema.SensorLog {
	log := schema.NewSensorLog(source)
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	// Body reading = R^T (a + g), the inverse of the rotation the pipeline applies.
	r := algo.RotationMatrix(opts.Orientation.X, opts.Orientation.Y, opts.Orientation.Z)
	body := algo.Rotate(r.Transpose(), opts.Accel.Add(algo.GravityVector(opts.Gravity)))

	log.Streams[schema.AccelerationStream] = sample(opts.Duration, opts.Rate, func(float64) schema.Vec3 {
		if opts.Noise == 0 {
			return body
		}
		return body.Add(schema.Vec3{
			X: rng.NormFloat64() * opts.Noise,
			Y: rng.NormFloat64() * opts.Noise,
			Z: rng.NormFloat64() * opts.Noise,
		})
	})
	if opts.AhrsRate > 0 {
		log.Streams[schema.OrientationStream] = sample(opts.Duration, opts.AhrsRate, func(float64) schema.Vec3 {
			return opts.Orientation
		})
	}
	if opts.PosiRate > 0 {
		log.Streams[schema.PositionStream] = sample(opts.Duration, opts.PosiRate, func(t float64) schema.Vec3 {
			return opts.Accel.Scale(t * t / 2)
		})
	}
	return log
}

func sample(duration, rate float64, at func(t float64) schema.Vec3) schema.TimeSeries {
	n := int(duration*rate) + 1
	ts := make(schema.TimeSeries, n)
	for i := range ts {
		t := float64(i) / rate
		ts[i] = schema.SampleAt(t, at(t))
	}
	return ts
}

// Write serializes a log in the semicolon-separated record format, streams in time order.
func Write(w io.Writer, log schema.SensorLog) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s synthetic log %s\n", schema.CommentPrefix, log.Source); err != nil {
		return err
	}
	for _, kind := range schema.AllStreamKinds {
		for i, s := range log.Streams[kind] {
			var err error
			if kind == schema.PositionStream {
				_, err = fmt.Fprintf(bw, "%s;%.4f;%d;%.6f;%.6f;%.6f\n", kind, s.Time, i, s.A, s.B, s.C)
			} else {
				_, err = fmt.Fprintf(bw, "%s;%.4f;%.4f;%.6f;%.6f;%.6f\n", kind, s.Time, s.Time, s.A, s.B, s.C)
			}
			if err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
