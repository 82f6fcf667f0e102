package main

import (
	"fmt"
	"time"

	"github.com/banshee-data/pathtrack/internal/config"
	"github.com/banshee-data/pathtrack/internal/db"
	"github.com/banshee-data/pathtrack/internal/fsutil"
	"github.com/banshee-data/pathtrack/internal/metrics"
	"github.com/banshee-data/pathtrack/internal/monitoring"
	"github.com/banshee-data/pathtrack/internal/path"
	"github.com/banshee-data/pathtrack/internal/report"
	"github.com/banshee-data/pathtrack/internal/session"
	"github.com/banshee-data/pathtrack/internal/timeutil"
)

// replayStart anchors replayed tick offsets on the mock clock.
var replayStart = time.Unix(0, 0).UTC()

type replayOptions struct {
	WaypointFile string
	ReadingsFile string
	OutputFile   string
	DatabasePath string // empty skips the run store
	PlotsDir     string
	HTMLFile     string
}

type replayResult struct {
	RunID      string
	Outcome    session.Outcome
	Ticks      int
	PathLength float64 // tessellated curve length, metres
	Summary    metrics.Summary
}

// replay runs a recorded readings log through a session over the waypoint
// curve and writes every requested output.
func replay(fsys fsutil.FileSystem, cfg *config.TuningConfig, opts replayOptions) (*replayResult, error) {
	curve, err := path.LoadFile(fsys, opts.WaypointFile, cfg.GetSubdivisions())
	if err != nil {
		return nil, err
	}
	res := &replayResult{PathLength: curve.ArcLength()}
	monitoring.Logf("Curve has %d segments, %d samples, %.2f m", curve.SegmentCount(), curve.SampleCount(), res.PathLength)

	rf, err := fsys.Open(opts.ReadingsFile)
	if err != nil {
		return nil, fmt.Errorf("open readings: %w", err)
	}
	ticks, err := readTicks(rf)
	rf.Close()
	if err != nil {
		return nil, err
	}
	monitoring.Logf("Replaying %d readings from %s", len(ticks), opts.ReadingsFile)

	out, err := fsys.Create(opts.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("create telemetry output: %w", err)
	}
	defer out.Close()

	clock := timeutil.NewMockClock(replayStart)
	sess, err := session.New(curve, session.ConfigFromTuning(cfg), clock, out)
	if err != nil {
		return nil, err
	}

	for _, t := range ticks {
		clock.Set(replayStart.Add(t.At))
		tr, err := sess.OnTick(t.Reading)
		res.Ticks++
		if err != nil {
			return nil, fmt.Errorf("tick %d: %w", res.Ticks, err)
		}
		if tr.Outcome != session.Running {
			break
		}
	}
	if !sess.Finished() {
		monitoring.Logf("Readings ended at progress %d of %d", sess.Progress(), curve.SampleCount()-1)
		if err := sess.Stop(); err != nil {
			return nil, err
		}
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("close telemetry output: %w", err)
	}
	monitoring.Logf("Wrote telemetry to %s", opts.OutputFile)

	res.Outcome = sess.Outcome()
	res.Summary = sess.Summary()
	m := sess.Metrics()
	series := m.Series()

	if opts.DatabasePath != "" {
		runID, err := storeRun(opts, curve, res, series)
		if err != nil {
			return nil, err
		}
		res.RunID = runID
	}

	if opts.PlotsDir != "" {
		if _, err := report.SavePlots(fsys, opts.PlotsDir, curve.Samples(), series, m.BestDistances()); err != nil {
			return nil, err
		}
	}

	if opts.HTMLFile != "" {
		f, err := fsys.Create(opts.HTMLFile)
		if err != nil {
			return nil, fmt.Errorf("create html report: %w", err)
		}
		if err := report.RenderHTML(f, curve.Samples(), series, m.BestDistances()); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("close html report: %w", err)
		}
	}
	return res, nil
}

func storeRun(opts replayOptions, curve *path.Curve, res *replayResult, series *metrics.Series) (string, error) {
	database, err := db.Open(opts.DatabasePath)
	if err != nil {
		return "", err
	}
	defer database.Close()

	store := db.NewRunStore(database)
	run := db.NewRun(opts.WaypointFile, curve.Subdivisions(), curve.SampleCount(), res.Outcome.String(), res.Summary)
	if err := store.Insert(run); err != nil {
		return "", err
	}
	if err := store.InsertSamples(run.RunID, series); err != nil {
		return "", err
	}
	monitoring.Logf("Stored run %s in %s", run.RunID, opts.DatabasePath)
	return run.RunID, nil
}
