// Package ingest turns sensor log files into typed time series.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/huangsam/deadreck/core/algo"
	"github.com/huangsam/deadreck/schema"
)

// Field positions of a log record. Field 2 is the sensor's own clock and is not used.
const (
	kindField = 0
	timeField = 1
	aField    = 3
	bField    = 4
	cField    = 5
)

// maxLineBytes bounds a single log record.
const maxLineBytes = 1 << 20

// ParseLog reads ';'-separated records from r into a SensorLog.
// Blank lines and lines starting with '%' are skipped, unknown record kinds
// are ignored. Each resulting stream must be time-sorted.
func ParseLog(r io.Reader, source string) (schema.SensorLog, error) {
	log := schema.NewSensorLog(source)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, schema.CommentPrefix) {
			continue
		}

		fields := strings.Split(line, schema.FieldSeparator)
		kind := schema.StreamKind(strings.TrimSpace(fields[kindField]))
		if _, ok := schema.ValidStreamKinds[kind]; !ok {
			continue
		}

		sample, err := parseRecord(kind, fields)
		if err != nil {
			return schema.SensorLog{}, fmt.Errorf("%s line %d: %s record: %w", source, lineNo, kind, err)
		}
		log.Streams[kind] = append(log.Streams[kind], sample)
	}
	if err := scanner.Err(); err != nil {
		return schema.SensorLog{}, fmt.Errorf("reading %s: %w", source, err)
	}

	for _, kind := range schema.AllStreamKinds {
		if err := algo.ValidateSorted(log.Streams[kind]); err != nil {
			return schema.SensorLog{}, fmt.Errorf("%s %s stream: %w", source, kind, err)
		}
	}
	return log, nil
}

// ParseLogFile opens and parses a log file.
func ParseLogFile(path string) (schema.SensorLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return schema.SensorLog{}, err
	}
	defer func() { _ = f.Close() }()
	return ParseLog(f, path)
}

// parseRecord builds a sample from the fields of one record.
// POSI carries two position fields plus an optional third; every other kind needs three.
func parseRecord(kind schema.StreamKind, fields []string) (schema.Sample3, error) {
	need := cField + 1
	if kind == schema.PositionStream {
		need = bField + 1
	}
	if len(fields) < need {
		return schema.Sample3{}, fmt.Errorf("expected at least %d fields, got %d", need, len(fields))
	}

	var s schema.Sample3
	var err error
	if s.Time, err = parseField(fields, timeField); err != nil {
		return s, err
	}
	if s.A, err = parseField(fields, aField); err != nil {
		return s, err
	}
	if s.B, err = parseField(fields, bField); err != nil {
		return s, err
	}
	if kind == schema.PositionStream && (len(fields) <= cField || strings.TrimSpace(fields[cField]) == "") {
		return s, nil
	}
	if s.C, err = parseField(fields, cField); err != nil {
		return s, err
	}
	return s, nil
}

func parseField(fields []string, i int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
	if err != nil {
		return 0, fmt.Errorf("field %d: %w", i, err)
	}
	return v, nil
}
