// Package algo holds the pure math of the dead-reckoning pipeline:
// nearest-timestamp alignment, body-to-world rotation, gravity removal,
// trapezoidal integration, window trimming and drift evaluation.
//
// Every function reads its input series and returns a new one. Nothing here
// keeps state between calls, so concurrent runs over independent series are safe.
//
// Orientation samples carry pitch, roll and yaw in degrees. The body-to-world
// rotation is composed as R = Rz(yaw) · Ry(roll) · Rx(pitch) (RotationOrder "ZYX"):
// yaw about Z, roll about Y, pitch about X, right-multiplied in that order.
package algo

import (
	"fmt"

	"github.com/huangsam/deadreck/schema"
)

// ValidateSorted returns schema.ErrUnsortedTime if any timestamp is lower
// than its predecessor. Equal timestamps are allowed.
func ValidateSorted(series schema.TimeSeries) error {
	for i := 1; i < len(series); i++ {
		if series[i].Time < series[i-1].Time {
			return fmt.Errorf("index %d (%g < %g): %w", i, series[i].Time, series[i-1].Time, schema.ErrUnsortedTime)
		}
	}
	return nil
}
