package algo

import (
	"fmt"
	"math"

	"github.com/huangsam/deadreck/schema"
)

// EarthRadius is the mean Earth radius in metres used for geodetic projection.
const EarthRadius = 6371000.0

// AnchorTruth shifts a truth series so that its first sample sits at the origin.
// Geodetic truth (A=latitude, B=longitude in degrees) is projected to local
// metres with an equirectangular approximation around the first fix:
// A becomes east and B becomes north. C is shifted but not projected.
func AnchorTruth(truth schema.TimeSeries, frame schema.TruthFrame) (schema.TimeSeries, error) {
	if truth.Empty() {
		return nil, schema.ErrEmptySeries
	}
	origin := truth.First()
	out := make(schema.TimeSeries, len(truth))
	switch frame {
	case schema.LocalFrame, "":
		for i, s := range truth {
			out[i] = schema.SampleAt(s.Time, s.Vec().Sub(origin.Vec()))
		}
	case schema.GeodeticFrame:
		cosLat := math.Cos(degToRad(origin.A))
		for i, s := range truth {
			east := degToRad(s.B-origin.B) * cosLat * EarthRadius
			north := degToRad(s.A-origin.A) * EarthRadius
			out[i] = schema.Sample3{Time: s.Time, A: east, B: north, C: s.C - origin.C}
		}
	default:
		return nil, fmt.Errorf("unknown truth frame %q", frame)
	}
	return out, nil
}

// EvaluateDrift compares an estimated position series with ground truth.
// Each estimate sample is matched to its nearest truth sample; estimates
// outside the truth window are compared against the clamped end fix.
// Errors are horizontal (A, B) distances in metres.
func EvaluateDrift(estimate, truth schema.TimeSeries, frame schema.TruthFrame) (schema.DriftReport, error) {
	if estimate.Empty() {
		return schema.DriftReport{}, fmt.Errorf("estimate: %w", schema.ErrEmptySeries)
	}
	anchored, err := AnchorTruth(truth, frame)
	if err != nil {
		return schema.DriftReport{}, fmt.Errorf("truth: %w", err)
	}
	indices, err := AlignIndices(estimate, anchored)
	if err != nil {
		return schema.DriftReport{}, err
	}

	report := schema.DriftReport{Samples: len(estimate)}
	var sumSq float64
	for i, s := range estimate {
		e := horizontal(s, anchored[indices[i]])
		sumSq += e * e
		report.MaxError = math.Max(report.MaxError, e)
		if i == len(estimate)-1 {
			report.FinalError = e
		}
	}
	report.RMSError = math.Sqrt(sumSq / float64(len(estimate)))
	report.TruthDistance = PathLength(anchored)
	report.EstimateDistance = PathLength(estimate)
	return report, nil
}

// PathLength returns the horizontal distance travelled along a series.
func PathLength(series schema.TimeSeries) float64 {
	var total float64
	for i := 1; i < len(series); i++ {
		total += horizontal(series[i], series[i-1])
	}
	return total
}

func horizontal(p, q schema.Sample3) float64 {
	return math.Hypot(p.A-q.A, p.B-q.B)
}
