package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Summary is the end-of-run report. Error statistics cover visited samples
// only and are zero when none were visited.
type Summary struct {
	TrajectoryError float64
	ElapsedSeconds  float64
	FinalIndex      int
	MaxIndex        int
	SuccessFraction float64
	Visited         int
	Samples         int // telemetry samples captured

	MeanError   float64
	MaxError    float64
	StdDevError float64
	P95Error    float64
}

// Summary computes the end-of-run report.
func (m *TrajectoryMetrics) Summary() Summary {
	s := Summary{
		TrajectoryError: m.TotalTrajectoryError(),
		ElapsedSeconds:  m.ElapsedSeconds(),
		FinalIndex:      m.finalIndex,
		MaxIndex:        m.maxIndex,
		SuccessFraction: m.SuccessFraction(),
		Visited:         m.nSeen,
		Samples:         m.series.Len(),
	}

	errs := make([]float64, 0, m.nSeen)
	for i, d := range m.best {
		if m.visited[i] {
			errs = append(errs, d)
		}
	}
	if len(errs) == 0 {
		return s
	}
	sort.Float64s(errs)
	s.MeanError = stat.Mean(errs, nil)
	s.MaxError = floats.Max(errs)
	if len(errs) > 1 {
		s.StdDevError = stat.StdDev(errs, nil)
	}
	s.P95Error = stat.Quantile(0.95, stat.Empirical, errs, nil)
	return s
}

// Line renders the two-line report printed at the end of a run.
func (s Summary) Line() string {
	return fmt.Sprintf("metrics: TrajectoryError, TrajectoryTime, FinalPoint, TotalPoints\ndata: %e,%e,%d,%d",
		s.TrajectoryError, s.ElapsedSeconds, s.FinalIndex, s.MaxIndex)
}

var csvHeader = []string{
	"elapsed_s",
	"pos_x", "pos_y", "pos_z",
	"com_x", "com_y", "com_z",
	"orient_x", "orient_y", "orient_z",
	"linvel_x", "linvel_y", "linvel_z",
	"angvel_x", "angvel_y", "angvel_z",
	"target_x", "target_y", "target_z",
	"control_effort",
}

// WriteCSV writes s as one CSV row per sample with a header row.
func WriteCSV(w io.Writer, s *Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, 0, len(csvHeader))
	for i := 0; i < s.Len(); i++ {
		t := s.Sample(i)
		row = row[:0]
		row = append(row, formatFloat(t.Elapsed))
		for _, v := range [...]r3.Vec{
			t.Position, t.CentreOfMass, t.Orientation,
			t.LinearVelocity, t.AngularVelocity, t.Target,
		} {
			row = append(row, formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z))
		}
		row = append(row, formatFloat(t.ControlEffort))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
