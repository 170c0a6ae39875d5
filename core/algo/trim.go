package algo

import (
	"sort"

	"github.com/huangsam/deadreck/schema"
)

// DropBefore returns the suffix of series starting at the first sample whose
// time is at least seconds. Non-positive seconds return a full copy.
func DropBefore(series schema.TimeSeries, seconds float64) (schema.TimeSeries, error) {
	if series.Empty() {
		return nil, schema.ErrEmptySeries
	}
	if seconds <= 0 {
		return series.Clone(), nil
	}
	idx := sort.Search(len(series), func(i int) bool {
		return series[i].Time >= seconds
	})
	if idx == len(series) {
		return nil, schema.ErrTrimExceedsRange
	}
	return series[idx:].Clone(), nil
}
