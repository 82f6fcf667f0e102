package main

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/pathtrack/internal/fsutil"
	"github.com/banshee-data/pathtrack/internal/metrics"
	"github.com/banshee-data/pathtrack/internal/monitoring"
	"github.com/banshee-data/pathtrack/internal/report"
)

type dumpOptions struct {
	InFile   string
	CSVFile  string
	PlotsDir string
	HTMLFile string
}

// captureStats summarises a decoded series.
type captureStats struct {
	Samples       int
	Duration      float64 // elapsed seconds at the last capture
	PathLength    float64 // polyline length through captured positions
	MeanEffort    float64
	MeanTargetGap float64
	MaxTargetGap  float64
}

func computeStats(s *metrics.Series) captureStats {
	st := captureStats{Samples: s.Len()}
	if st.Samples == 0 {
		return st
	}
	st.Duration = s.Elapsed[st.Samples-1]
	st.MeanEffort = stat.Mean(s.ControlEffort, nil)

	gaps := targetGaps(s)
	st.MeanTargetGap = stat.Mean(gaps, nil)
	st.MaxTargetGap = floats.Max(gaps)
	for i := 1; i < st.Samples; i++ {
		st.PathLength += r3.Norm(r3.Sub(s.Position[i], s.Position[i-1]))
	}
	return st
}

// targetGaps returns the distance from each captured position to its target.
func targetGaps(s *metrics.Series) []float64 {
	gaps := make([]float64, s.Len())
	for i := range gaps {
		gaps[i] = r3.Norm(r3.Sub(s.Position[i], s.Target[i]))
	}
	return gaps
}

func dump(fsys fsutil.FileSystem, opts dumpOptions, w io.Writer) error {
	f, err := fsys.Open(opts.InFile)
	if err != nil {
		return fmt.Errorf("open telemetry: %w", err)
	}
	series, err := metrics.Decode(f)
	f.Close()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "file: %s\n", opts.InFile)
	fmt.Fprintf(w, "buffers: position=%d centre_of_mass=%d orientation=%d linear_velocity=%d angular_velocity=%d target=%d control_effort=%d elapsed=%d\n",
		len(series.Position), len(series.CentreOfMass), len(series.Orientation), len(series.LinearVelocity),
		len(series.AngularVelocity), len(series.Target), len(series.ControlEffort), len(series.Elapsed))

	st := computeStats(series)
	fmt.Fprintf(w, "samples: %d\n", st.Samples)
	fmt.Fprintf(w, "duration_s: %g\n", st.Duration)
	fmt.Fprintf(w, "path_length_m: %g\n", st.PathLength)
	fmt.Fprintf(w, "mean_control_effort: %g\n", st.MeanEffort)
	fmt.Fprintf(w, "target_gap_m: mean=%g max=%g\n", st.MeanTargetGap, st.MaxTargetGap)

	if opts.CSVFile != "" {
		cf, err := fsys.Create(opts.CSVFile)
		if err != nil {
			return fmt.Errorf("create csv: %w", err)
		}
		if err := metrics.WriteCSV(cf, series); err != nil {
			cf.Close()
			return err
		}
		if err := cf.Close(); err != nil {
			return fmt.Errorf("close csv: %w", err)
		}
		monitoring.Logf("Wrote %d rows to %s", series.Len(), opts.CSVFile)
	}

	// The stream carries no curve, so the captured targets stand in for it.
	gaps := targetGaps(series)
	if opts.PlotsDir != "" {
		if _, err := report.SavePlots(fsys, opts.PlotsDir, series.Target, series, gaps); err != nil {
			return err
		}
	}
	if opts.HTMLFile != "" {
		hf, err := fsys.Create(opts.HTMLFile)
		if err != nil {
			return fmt.Errorf("create html report: %w", err)
		}
		if err := report.RenderHTML(hf, series.Target, series, gaps); err != nil {
			hf.Close()
			return err
		}
		if err := hf.Close(); err != nil {
			return fmt.Errorf("close html report: %w", err)
		}
	}
	return nil
}
