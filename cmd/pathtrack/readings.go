package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pathtrack/internal/session"
)

// readingFields is time_s plus seven xyz triples; control inputs follow.
const readingFields = 1 + 7*3

// tick is one recorded reading and its offset from the start of the log.
type tick struct {
	At      time.Duration
	Reading session.Reading
}

// readTicks parses a readings CSV. A first row whose first cell is not a
// number is treated as a header.
func readTicks(r io.Reader) ([]tick, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var ticks []tick
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read readings: %w", err)
		}
		if row == 1 && isHeader(rec) {
			continue
		}
		t, err := parseTick(rec)
		if err != nil {
			return nil, fmt.Errorf("readings row %d: %w", row, err)
		}
		if n := len(ticks); n > 0 && t.At < ticks[n-1].At {
			return nil, fmt.Errorf("readings row %d: time %v before previous %v", row, t.At, ticks[n-1].At)
		}
		ticks = append(ticks, t)
	}
	return ticks, nil
}

func isHeader(rec []string) bool {
	if len(rec) == 0 {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
	return err != nil
}

func parseTick(rec []string) (tick, error) {
	if len(rec) < readingFields {
		return tick{}, fmt.Errorf("expected at least %d fields, got %d", readingFields, len(rec))
	}
	vals := make([]float64, len(rec))
	for i, s := range rec {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return tick{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		vals[i] = v
	}
	if vals[0] < 0 {
		return tick{}, fmt.Errorf("negative time %v", vals[0])
	}

	vec := func(i int) r3.Vec {
		off := 1 + 3*i
		return r3.Vec{X: vals[off], Y: vals[off+1], Z: vals[off+2]}
	}
	return tick{
		At: time.Duration(vals[0] * float64(time.Second)),
		Reading: session.Reading{
			TrackPosition:   vec(0),
			CentreOfMass:    vec(1),
			XAxis:           vec(2),
			YAxis:           vec(3),
			ZAxis:           vec(4),
			LinearVelocity:  vec(5),
			AngularVelocity: vec(6),
			Controls:        vals[readingFields:],
		},
	}, nil
}
