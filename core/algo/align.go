package algo

import (
	"math"
	"sort"

	"github.com/huangsam/deadreck/schema"
)

// FindNearest returns the index of the timestamp closest to query.
// times must be ascending. Ties go to the lower index, queries before the
// first timestamp clamp to 0 and queries past the last clamp to len-1.
func FindNearest(times []float64, query float64) (int, error) {
	if len(times) == 0 {
		return 0, schema.ErrEmptySeries
	}
	idx := sort.SearchFloat64s(times, query)
	if idx == 0 {
		return 0, nil
	}
	if idx == len(times) {
		return idx - 1, nil
	}
	if math.Abs(query-times[idx-1]) <= math.Abs(times[idx]-query) {
		return idx - 1, nil
	}
	return idx, nil
}

// AlignIndices maps every driver sample to the index of its nearest sample
// in source. The result has exactly one entry per driver sample.
func AlignIndices(driver, source schema.TimeSeries) ([]int, error) {
	if source.Empty() {
		return nil, schema.ErrEmptySeries
	}
	times := source.Times()
	indices := make([]int, len(driver))
	for i, s := range driver {
		idx, err := FindNearest(times, s.Time)
		if err != nil {
			return nil, err
		}
		indices[i] = idx
	}
	return indices, nil
}
