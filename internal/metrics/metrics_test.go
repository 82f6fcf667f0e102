package metrics

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestUpdateTrajectoryError_Scenario(t *testing.T) {
	m := New()
	m.Attach(10)

	improved, err := m.UpdateTrajectoryError(3, 0.5)
	require.NoError(t, err)
	assert.True(t, improved, "first visit records")

	improved, err = m.UpdateTrajectoryError(3, 0.6)
	require.NoError(t, err)
	assert.False(t, improved, "worse distance ignored")

	improved, err = m.UpdateTrajectoryError(3, 0.2)
	require.NoError(t, err)
	assert.True(t, improved, "better distance replaces")

	best := m.BestDistances()
	assert.Equal(t, 0.2, best[3])
	assert.Equal(t, 1, m.VisitedCount())
	assert.True(t, m.Visited(3))
	assert.False(t, m.Visited(4))
	assert.InDelta(t, 0.2, m.TotalTrajectoryError(), 1e-15)
}

func TestUpdateTrajectoryError_ZeroDistanceIsRealBest(t *testing.T) {
	m := New()
	m.Attach(2)

	improved, err := m.UpdateTrajectoryError(0, 0)
	require.NoError(t, err)
	assert.True(t, improved)

	for _, d := range []float64{0, 0.1} {
		improved, err = m.UpdateTrajectoryError(0, d)
		require.NoError(t, err)
		assert.False(t, improved, "distance %v after exact hit", d)
	}
	assert.True(t, m.Visited(0))
}

func TestUpdateTrajectoryError_NonImprovingSequence(t *testing.T) {
	m := New()
	m.Attach(5)

	var trues int
	for _, d := range []float64{0.1, 0.2, 0.3, 0.4, 0.4} {
		improved, err := m.UpdateTrajectoryError(2, d)
		require.NoError(t, err)
		if improved {
			trues++
		}
	}
	assert.Equal(t, 1, trues)
}

func TestUpdateTrajectoryError_Errors(t *testing.T) {
	m := New()

	_, err := m.UpdateTrajectoryError(0, 1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange, "before Attach")

	m.Attach(3)
	for _, idx := range []int{-1, 3, 100} {
		_, err := m.UpdateTrajectoryError(idx, 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)

		var ie *IndexError
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, idx, ie.Index)
		assert.Equal(t, 3, ie.Attached)
	}

	for _, d := range []float64{math.NaN(), -0.5} {
		_, err := m.UpdateTrajectoryError(0, d)
		assert.ErrorIs(t, err, ErrInvalidDistance)
	}
	assert.Equal(t, 0, m.VisitedCount())
	assert.Equal(t, StateIdle, m.State())
}

func TestState(t *testing.T) {
	m := New()
	assert.Equal(t, StateIdle, m.State())
	assert.Equal(t, "idle", m.State().String())

	m.Attach(4)
	assert.Equal(t, StateIdle, m.State())

	_, err := m.UpdateTrajectoryError(0, 1)
	require.NoError(t, err)
	assert.Equal(t, StateRunning, m.State())
	assert.Equal(t, "running", m.State().String())

	m.Reset()
	assert.Equal(t, StateIdle, m.State())
	assert.Equal(t, "State(7)", State(7).String())
}

func TestElapsedSeconds(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	m := New()
	assert.Zero(t, m.ElapsedSeconds())

	m.MarkStart(start)
	assert.Zero(t, m.ElapsedSeconds(), "end not marked")

	m.MarkEnd(start.Add(2500 * time.Millisecond))
	assert.InDelta(t, 2.5, m.ElapsedSeconds(), 1e-12)

	m2 := New()
	m2.MarkEnd(start)
	assert.Zero(t, m2.ElapsedSeconds(), "start not marked")
}

func TestFinalizeAndSuccessFraction(t *testing.T) {
	m := New()
	assert.Equal(t, -1, m.FinalIndex())
	assert.Equal(t, -1, m.MaxIndex())
	assert.Zero(t, m.SuccessFraction())

	m.Finalize(5, 10)
	assert.Equal(t, 5, m.FinalIndex())
	assert.Equal(t, 10, m.MaxIndex())
	assert.InDelta(t, 0.5, m.SuccessFraction(), 1e-15)

	m.Finalize(0, 0)
	assert.Zero(t, m.SuccessFraction())
}

func TestRecordSampleAndSeries(t *testing.T) {
	m := New()
	m.Attach(3)
	m.RecordSample(TelemetrySample{Position: r3.Vec{X: 1}, ControlEffort: 0.5, Elapsed: 0.1})
	m.RecordSample(TelemetrySample{Position: r3.Vec{X: 2}, ControlEffort: 0.7, Elapsed: 0.2})

	assert.Equal(t, 2, m.SampleCount())

	s := m.Series()
	require.Equal(t, 2, s.Len())
	assert.Equal(t, r3.Vec{X: 2}, s.Sample(1).Position)

	// The snapshot is independent of later captures.
	m.RecordSample(TelemetrySample{})
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 3, m.SampleCount())
}

func TestResetThenAttachMatchesFresh(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	m := New()
	m.Attach(6)
	_, err := m.UpdateTrajectoryError(1, 0.3)
	require.NoError(t, err)
	m.RecordSample(TelemetrySample{Position: r3.Vec{X: 1, Y: 2, Z: 3}, Elapsed: 1})
	m.MarkStart(start)
	m.MarkEnd(start.Add(time.Second))
	m.Finalize(4, 5)

	m.Reset()
	assert.Equal(t, 6, m.AttachedCount(), "reset keeps size")
	assert.Zero(t, m.TotalTrajectoryError())
	assert.Zero(t, m.SampleCount())
	assert.Zero(t, m.ElapsedSeconds())
	assert.Equal(t, -1, m.FinalIndex())

	m.Attach(6)
	fresh := New()
	fresh.Attach(6)

	if diff := cmp.Diff(fresh, m, cmp.AllowUnexported(TrajectoryMetrics{})); diff != "" {
		t.Errorf("reset+attach mismatch (-fresh +got):\n%s", diff)
	}
}

func TestAttachNegativeCount(t *testing.T) {
	m := New()
	m.Attach(-3)
	assert.Zero(t, m.AttachedCount())
}

func TestOrientationFromAxes(t *testing.T) {
	got := OrientationFromAxes(
		r3.Vec{X: 0.9, Y: 0.1, Z: 0.2},
		r3.Vec{X: -0.3, Y: 0.8, Z: 0.4},
		r3.Vec{X: 0.05, Y: 0.6, Z: 0.7},
	)
	assert.Equal(t, r3.Vec{X: 0.9, Y: -0.3, Z: 0.05}, got)
}
