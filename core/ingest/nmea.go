package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrianmo/go-nmea"
	"github.com/huangsam/deadreck/core/algo"
	"github.com/huangsam/deadreck/internal/contract"
	"github.com/huangsam/deadreck/schema"
	"github.com/sirupsen/logrus"
)

// NMEAExtension marks ground-truth files made of NMEA sentences.
const NMEAExtension = ".nmea"

const secondsPerDay = 24 * 60 * 60

// ParseNMEA reads GPS fixes from NMEA 0183 sentences into a geodetic POSI series.
// A is latitude, B is longitude (decimal degrees) and C is altitude in metres.
// Time is seconds since midnight UTC, carried across midnight rollovers.
// GGA fixes are used when present; otherwise valid RMC fixes are used.
func ParseNMEA(r io.Reader, source string) (schema.TimeSeries, error) {
	var gga, rmc schema.TimeSeries
	skipped := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$") {
			continue
		}
		sentence, err := nmea.Parse(line)
		if err != nil {
			skipped++
			continue
		}

		switch sentence.DataType() {
		case nmea.TypeGGA:
			m := sentence.(nmea.GGA)
			if m.FixQuality == nmea.Invalid || !m.Time.Valid {
				continue
			}
			gga = append(gga, schema.Sample3{Time: secondsOfDay(m.Time), A: m.Latitude, B: m.Longitude, C: m.Altitude})
		case nmea.TypeRMC:
			m := sentence.(nmea.RMC)
			if m.Validity != nmea.ValidRMC || !m.Time.Valid {
				continue
			}
			rmc = append(rmc, schema.Sample3{Time: secondsOfDay(m.Time), A: m.Latitude, B: m.Longitude})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	if skipped > 0 {
		contract.LogDebug("skipped malformed NMEA sentences", logrus.Fields{"source": source, "count": skipped})
	}

	fixes := gga
	if fixes.Empty() {
		fixes = rmc
	}
	if fixes.Empty() {
		return nil, fmt.Errorf("%s: no valid GGA or RMC fixes: %w", source, schema.ErrEmptySeries)
	}
	unwrapMidnight(fixes)
	if err := algo.ValidateSorted(fixes); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return fixes, nil
}

// ParseTruthFile loads a ground-truth series from either an NMEA file or the
// POSI stream of a sensor log, and reports the frame its coordinates are in.
// An empty frame means the coordinates follow the configured truth frame.
func ParseTruthFile(path string) (schema.TimeSeries, schema.TruthFrame, error) {
	if strings.EqualFold(filepath.Ext(path), NMEAExtension) {
		f, err := os.Open(path)
		if err != nil {
			return nil, "", err
		}
		defer func() { _ = f.Close() }()
		series, err := ParseNMEA(f, path)
		return series, schema.GeodeticFrame, err
	}

	log, err := ParseLogFile(path)
	if err != nil {
		return nil, "", err
	}
	if !log.Has(schema.PositionStream) {
		return nil, "", fmt.Errorf("%s has no %s records: %w", path, schema.PositionStream, schema.ErrEmptySeries)
	}
	return log.Posi(), "", nil
}

func secondsOfDay(t nmea.Time) float64 {
	return float64(t.Hour*3600+t.Minute*60+t.Second) + float64(t.Millisecond)/1000
}

// unwrapMidnight adds a day whenever the clock jumps back by more than half a day.
func unwrapMidnight(series schema.TimeSeries) {
	offset := 0.0
	for i := 1; i < len(series); i++ {
		if series[i].Time+offset < series[i-1].Time-secondsPerDay/2 {
			offset += secondsPerDay
		}
		series[i].Time += offset
	}
}
