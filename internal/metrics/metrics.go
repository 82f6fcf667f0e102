package metrics

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrIndexOutOfRange is returned for a progress index outside the
	// attached sample range, including any index before Attach.
	ErrIndexOutOfRange = errors.New("metrics index out of range")
	// ErrInvalidDistance is returned for a NaN or negative tracking error.
	ErrInvalidDistance = errors.New("invalid tracking distance")
)

// IndexError reports an UpdateTrajectoryError index outside the attached
// range. It matches ErrIndexOutOfRange.
type IndexError struct {
	Index    int
	Attached int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("metrics index %d out of range: %d samples attached", e.Index, e.Attached)
}

func (e *IndexError) Is(target error) bool { return target == ErrIndexOutOfRange }

// State is the lifecycle state of a TrajectoryMetrics.
type State int

const (
	StateIdle    State = iota // freshly attached or reset
	StateRunning              // at least one tracking error recorded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// TrajectoryMetrics holds the best tracking error seen at each tessellated
// sample plus the telemetry captured whenever that error improved.
type TrajectoryMetrics struct {
	best    []float64
	visited []bool
	nSeen   int

	start time.Time
	end   time.Time

	finalIndex int
	maxIndex   int

	state  State
	series Series
}

// New returns an idle TrajectoryMetrics. Call Attach before updating it.
func New() *TrajectoryMetrics {
	return &TrajectoryMetrics{finalIndex: -1, maxIndex: -1}
}

// Attach sizes the best-distance record to sampleCount entries, all
// unvisited, and clears telemetry, timing and the final result.
func (m *TrajectoryMetrics) Attach(sampleCount int) {
	if sampleCount < 0 {
		sampleCount = 0
	}
	*m = TrajectoryMetrics{
		best:       make([]float64, sampleCount),
		visited:    make([]bool, sampleCount),
		finalIndex: -1,
		maxIndex:   -1,
	}
}

// UpdateTrajectoryError records distance as the tracking error at index if
// the entry has never been visited or distance is lower than its best. It
// reports whether the record improved; only then should the caller capture
// a telemetry sample.
func (m *TrajectoryMetrics) UpdateTrajectoryError(index int, distance float64) (bool, error) {
	if index < 0 || index >= len(m.best) {
		return false, &IndexError{Index: index, Attached: len(m.best)}
	}
	if math.IsNaN(distance) || distance < 0 {
		return false, fmt.Errorf("%w: %v", ErrInvalidDistance, distance)
	}

	if m.visited[index] && distance >= m.best[index] {
		return false, nil
	}
	if !m.visited[index] {
		m.visited[index] = true
		m.nSeen++
	}
	m.best[index] = distance
	m.state = StateRunning
	return true, nil
}

// RecordSample appends s to the telemetry buffers.
func (m *TrajectoryMetrics) RecordSample(s TelemetrySample) {
	m.series.Append(s)
}

// MarkStart records the start of the run.
func (m *TrajectoryMetrics) MarkStart(t time.Time) { m.start = t }

// MarkEnd records the end of the run.
func (m *TrajectoryMetrics) MarkEnd(t time.Time) { m.end = t }

// Finalize records the progress index the run finished at and the final
// index it was aiming for.
func (m *TrajectoryMetrics) Finalize(finalIndex, maxIndex int) {
	m.finalIndex = finalIndex
	m.maxIndex = maxIndex
}

// Reset clears the best-distance record (keeping its size), timing, the
// final result and telemetry, and returns to StateIdle.
func (m *TrajectoryMetrics) Reset() {
	clear(m.best)
	clear(m.visited)
	m.nSeen = 0
	m.start, m.end = time.Time{}, time.Time{}
	m.finalIndex, m.maxIndex = -1, -1
	m.state = StateIdle
	m.series = Series{}
}

// TotalTrajectoryError returns the sum of the best distances. Unvisited
// samples contribute nothing.
func (m *TrajectoryMetrics) TotalTrajectoryError() float64 {
	return floats.Sum(m.best)
}

// ElapsedSeconds returns the time between MarkStart and MarkEnd, or 0 if
// either was never called.
func (m *TrajectoryMetrics) ElapsedSeconds() float64 {
	if m.start.IsZero() || m.end.IsZero() {
		return 0
	}
	return m.end.Sub(m.start).Seconds()
}

// SuccessFraction returns finalIndex/maxIndex from Finalize, or 0 when no
// positive maximum was recorded.
func (m *TrajectoryMetrics) SuccessFraction() float64 {
	if m.maxIndex <= 0 {
		return 0
	}
	return float64(m.finalIndex) / float64(m.maxIndex)
}

// State returns the lifecycle state.
func (m *TrajectoryMetrics) State() State { return m.state }

// FinalIndex returns the index passed to Finalize, or -1.
func (m *TrajectoryMetrics) FinalIndex() int { return m.finalIndex }

// MaxIndex returns the maximum index passed to Finalize, or -1.
func (m *TrajectoryMetrics) MaxIndex() int { return m.maxIndex }

// AttachedCount returns the size of the best-distance record.
func (m *TrajectoryMetrics) AttachedCount() int { return len(m.best) }

// SampleCount returns the number of telemetry samples recorded.
func (m *TrajectoryMetrics) SampleCount() int { return m.series.Len() }

// BestDistances returns a copy of the best-distance record.
func (m *TrajectoryMetrics) BestDistances() []float64 {
	return append([]float64(nil), m.best...)
}

// Visited reports whether index has a recorded tracking error.
func (m *TrajectoryMetrics) Visited(index int) bool {
	return index >= 0 && index < len(m.visited) && m.visited[index]
}

// VisitedCount returns how many samples have a recorded tracking error.
func (m *TrajectoryMetrics) VisitedCount() int { return m.nSeen }

// Series returns a copy of the telemetry buffers.
func (m *TrajectoryMetrics) Series() *Series { return m.series.Clone() }

// Serialize writes the telemetry buffers to w in the fixed binary layout.
func (m *TrajectoryMetrics) Serialize(w io.Writer) error {
	_, err := m.series.WriteTo(w)
	return err
}
