package metrics

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSummary(t *testing.T) {
	m := New()
	m.Attach(5)
	for i, d := range []float64{1, 3, 2} {
		_, err := m.UpdateTrajectoryError(i, d)
		require.NoError(t, err)
	}
	m.RecordSample(TelemetrySample{})
	m.Finalize(2, 4)

	s := m.Summary()
	assert.Equal(t, 6.0, s.TrajectoryError)
	assert.Equal(t, 3, s.Visited)
	assert.Equal(t, 1, s.Samples)
	assert.Equal(t, 2, s.FinalIndex)
	assert.Equal(t, 4, s.MaxIndex)
	assert.InDelta(t, 0.5, s.SuccessFraction, 1e-15)
	assert.InDelta(t, 2.0, s.MeanError, 1e-12)
	assert.Equal(t, 3.0, s.MaxError)
	assert.InDelta(t, 1.0, s.StdDevError, 1e-12)
	assert.Equal(t, 3.0, s.P95Error)
}

func TestSummary_NothingVisited(t *testing.T) {
	m := New()
	m.Attach(4)
	s := m.Summary()
	assert.Zero(t, s.TrajectoryError)
	assert.Zero(t, s.MeanError)
	assert.Zero(t, s.MaxError)
	assert.Zero(t, s.P95Error)
	assert.Equal(t, -1, s.FinalIndex)
}

func TestSummary_SingleVisit(t *testing.T) {
	m := New()
	m.Attach(2)
	_, err := m.UpdateTrajectoryError(1, 0.4)
	require.NoError(t, err)

	s := m.Summary()
	assert.Equal(t, 0.4, s.MeanError)
	assert.Zero(t, s.StdDevError)
}

func TestSummaryLine(t *testing.T) {
	s := Summary{TrajectoryError: 1.5, ElapsedSeconds: 2, FinalIndex: 9, MaxIndex: 10}
	assert.Equal(t,
		"metrics: TrajectoryError, TrajectoryTime, FinalPoint, TotalPoints\ndata: 1.500000e+00,2.000000e+00,9,10",
		s.Line())
}

func TestWriteCSV(t *testing.T) {
	s := &Series{}
	s.Append(TelemetrySample{
		Position:      r3.Vec{X: 1, Y: 2, Z: 3},
		Target:        r3.Vec{X: 4},
		ControlEffort: 0.5,
		Elapsed:       0.25,
	})
	s.Append(TelemetrySample{Elapsed: 0.5})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, s))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Len(t, rows[1], len(csvHeader))
	assert.Equal(t, []string{"0.25", "1", "2", "3"}, rows[1][:4])
	assert.Equal(t, "4", rows[1][16])
	assert.Equal(t, "0.5", rows[1][19])
	assert.Equal(t, "0.5", rows[2][0])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, &Series{}))
	assert.Equal(t, "elapsed_s,pos_x", buf.String()[:len("elapsed_s,pos_x")])
}
