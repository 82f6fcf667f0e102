package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pathtrack/internal/fsutil"
	"github.com/banshee-data/pathtrack/internal/metrics"
	"github.com/banshee-data/pathtrack/internal/monitoring"
	"github.com/banshee-data/pathtrack/internal/report"
)

func writeStream(t *testing.T, fsys *fsutil.MemoryFileSystem, name string) {
	t.Helper()
	m := metrics.New()
	m.Attach(3)
	for i := 0; i < 3; i++ {
		f := float64(i)
		m.RecordSample(metrics.TelemetrySample{
			Position:      r3.Vec{X: 3 * f, Y: 4 * f},
			Target:        r3.Vec{X: 3 * f, Y: 4*f + 1},
			ControlEffort: f,
			Elapsed:       0.5 * f,
		})
	}
	var buf bytes.Buffer
	require.NoError(t, m.Serialize(&buf))
	require.NoError(t, fsys.WriteFile(name, buf.Bytes(), 0644))
}

func TestDump(t *testing.T) {
	defer monitoring.Capture(new([]string))()

	fsys := fsutil.NewMemoryFileSystem()
	writeStream(t, fsys, "telemetry.bin")

	var out bytes.Buffer
	err := dump(fsys, dumpOptions{
		InFile:   "telemetry.bin",
		CSVFile:  "samples.csv",
		PlotsDir: "plots",
		HTMLFile: "run.html",
	}, &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "position=3 centre_of_mass=3")
	assert.Contains(t, text, "samples: 3\n")
	assert.Contains(t, text, "duration_s: 1\n")
	assert.Contains(t, text, "path_length_m: 10\n")
	assert.Contains(t, text, "mean_control_effort: 1\n")
	assert.Contains(t, text, "target_gap_m: mean=1 max=1\n")

	csvData, err := fsys.ReadFile("samples.csv")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(csvData)), "\n"), 4)

	assert.True(t, fsys.Exists(filepath.Join("plots", report.PathPlotFile)))
	assert.True(t, fsys.Exists(filepath.Join("plots", report.ErrorPlotFile)))
	assert.True(t, fsys.Exists("run.html"))
}

func TestDump_EmptyStream(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	var buf bytes.Buffer
	require.NoError(t, metrics.New().Serialize(&buf))
	require.NoError(t, fsys.WriteFile("empty.bin", buf.Bytes(), 0644))

	var out bytes.Buffer
	require.NoError(t, dump(fsys, dumpOptions{InFile: "empty.bin"}, &out))
	assert.Contains(t, out.String(), "samples: 0\n")
}

func TestDump_Errors(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile("bad.bin", []byte{1, 2, 3}, 0644))

	var out bytes.Buffer
	assert.Error(t, dump(fsys, dumpOptions{InFile: "missing.bin"}, &out))
	assert.Error(t, dump(fsys, dumpOptions{InFile: "bad.bin"}, &out))
}
