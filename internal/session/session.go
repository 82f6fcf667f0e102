// Package session drives one path-following run: it feeds each control tick
// through the progress tracker and the metrics record, captures telemetry on
// improvement, and ends the run on goal, timeout or fall.
package session

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pathtrack/internal/config"
	"github.com/banshee-data/pathtrack/internal/metrics"
	"github.com/banshee-data/pathtrack/internal/monitoring"
	"github.com/banshee-data/pathtrack/internal/path"
	"github.com/banshee-data/pathtrack/internal/progress"
	"github.com/banshee-data/pathtrack/internal/timeutil"
)

// ErrFinished is returned by OnTick once the run has ended. Call Reset to
// start another run.
var ErrFinished = errors.New("session finished")

// ErrInvalidPosition is returned by OnTick for a track position with a NaN or
// infinite component. The tick leaves the session unchanged.
var ErrInvalidPosition = errors.New("invalid track position")

// Outcome is how a tick left the run.
type Outcome int

const (
	Running Outcome = iota
	GoalReached
	TimedOut
	Fell
	Stopped // ended by the host
)

func (o Outcome) String() string {
	switch o {
	case Running:
		return "running"
	case GoalReached:
		return "goal_reached"
	case TimedOut:
		return "timed_out"
	case Fell:
		return "fell"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Reading is the agent state observed on one control tick.
type Reading struct {
	// TrackPosition is the point tracked against the curve.
	TrackPosition   r3.Vec
	CentreOfMass    r3.Vec
	XAxis           r3.Vec
	YAxis           r3.Vec // body up axis
	ZAxis           r3.Vec
	LinearVelocity  r3.Vec
	AngularVelocity r3.Vec
	Controls        []float64
}

// Config holds the run parameters.
type Config struct {
	TargetSpeed    float64
	AdvanceTimeout time.Duration
	FailUpAxisZ    float64
	PlanarError    bool
}

// ConfigFromTuning builds a Config from tuning values, applying defaults.
func ConfigFromTuning(c *config.TuningConfig) Config {
	return Config{
		TargetSpeed:    c.GetTargetSpeed(),
		AdvanceTimeout: c.GetAdvanceTimeout(),
		FailUpAxisZ:    c.GetFailUpAxisZ(),
		PlanarError:    c.GetPlanarError(),
	}
}

// TickResult reports what one tick did.
type TickResult struct {
	Index          int
	Distance       float64
	Improved       bool
	Target         r3.Vec
	TargetVelocity r3.Vec
	Outcome        Outcome
}

// Session is one run over a curve. It is not safe for concurrent use.
type Session struct {
	curve   *path.Curve
	cfg     Config
	clock   timeutil.Clock
	sink    io.Writer
	tracker *progress.Tracker
	metrics *metrics.TrajectoryMetrics

	started     bool
	startTime   time.Time
	lastAdvance time.Time
	outcome     Outcome
	finished    bool
}

// New returns a session over curve. When the run ends its telemetry is
// serialized to sink; a nil sink skips serialization.
func New(curve *path.Curve, cfg Config, clock timeutil.Clock, sink io.Writer) (*Session, error) {
	if err := curve.Validate(); err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	s := &Session{
		curve:   curve,
		cfg:     cfg,
		clock:   clock,
		sink:    sink,
		tracker: progress.NewTracker(curve),
		metrics: metrics.New(),
	}
	s.metrics.Attach(curve.SampleCount())
	return s, nil
}

// OnTick processes one reading. When the returned Outcome is not Running
// the run has ended and its telemetry has been written.
func (s *Session) OnTick(r Reading) (TickResult, error) {
	if s.finished {
		return TickResult{Index: s.tracker.Index(), Outcome: s.outcome}, ErrFinished
	}
	if !finite(r.TrackPosition) {
		return TickResult{Index: s.tracker.Index()}, fmt.Errorf("%w: %v", ErrInvalidPosition, r.TrackPosition)
	}
	now := s.clock.Now()

	index, advanced, err := s.tracker.Update(r.TrackPosition)
	if err != nil {
		return TickResult{}, fmt.Errorf("update progress: %w", err)
	}
	if advanced {
		if !s.started {
			s.started = true
			s.startTime = now
		}
		s.lastAdvance = now
	}

	target := s.tracker.Target()
	res := TickResult{
		Index:          index,
		Distance:       s.distance(r.TrackPosition, target),
		Target:         target,
		TargetVelocity: s.curve.TargetVelocity(index, s.cfg.TargetSpeed),
	}

	res.Improved, err = s.metrics.UpdateTrajectoryError(index, res.Distance)
	if err != nil {
		return res, fmt.Errorf("update trajectory error: %w", err)
	}
	if res.Improved {
		s.metrics.RecordSample(metrics.TelemetrySample{
			Position:        r.TrackPosition,
			CentreOfMass:    r.CentreOfMass,
			Orientation:     metrics.OrientationFromAxes(r.XAxis, r.YAxis, r.ZAxis),
			LinearVelocity:  r.LinearVelocity,
			AngularVelocity: r.AngularVelocity,
			Target:          target,
			ControlEffort:   ControlEffort(r.Controls),
			Elapsed:         s.elapsed(now),
		})
	}

	res.Outcome = s.checkEnd(now, r)
	if res.Outcome != Running {
		if err := s.finish(now, res.Outcome); err != nil {
			return res, err
		}
	}
	return res, nil
}

func finite(v r3.Vec) bool {
	for _, c := range [...]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (s *Session) distance(pos, target r3.Vec) float64 {
	d := r3.Sub(pos, target)
	if s.cfg.PlanarError {
		d.Z = 0
	}
	return r3.Norm(d)
}

func (s *Session) elapsed(now time.Time) float64 {
	if !s.started {
		return 0
	}
	return now.Sub(s.startTime).Seconds()
}

func (s *Session) checkEnd(now time.Time, r Reading) Outcome {
	switch {
	case s.tracker.Done():
		return GoalReached
	case s.started && s.cfg.AdvanceTimeout > 0 && now.Sub(s.lastAdvance) > s.cfg.AdvanceTimeout:
		return TimedOut
	case r.YAxis.Z != 0 && r.YAxis.Z < s.cfg.FailUpAxisZ:
		// A zero up component means the body pose is not yet populated.
		return Fell
	default:
		return Running
	}
}

func (s *Session) finish(now time.Time, outcome Outcome) error {
	s.finished = true
	s.outcome = outcome

	start := s.startTime
	if !s.started {
		start = now
	}
	s.metrics.MarkStart(start)
	s.metrics.MarkEnd(now)
	s.metrics.Finalize(s.tracker.Index(), s.tracker.LastIndex())

	monitoring.Logf("Run ended: %s, %d telemetry samples", outcome, s.metrics.SampleCount())
	monitoring.Logf("%s", s.metrics.Summary().Line())

	if s.sink == nil {
		return nil
	}
	if err := s.metrics.Serialize(s.sink); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Stop ends a run that is still in progress, finalizing and serializing it
// as if an end condition had fired.
func (s *Session) Stop() error {
	if s.finished {
		return ErrFinished
	}
	return s.finish(s.clock.Now(), Stopped)
}

// Reset returns the tracker, metrics and timers to the state of a fresh
// session over the same curve.
func (s *Session) Reset() {
	s.tracker.Reset()
	s.metrics.Reset()
	s.metrics.Attach(s.curve.SampleCount())
	s.started = false
	s.startTime = time.Time{}
	s.lastAdvance = time.Time{}
	s.outcome = Running
	s.finished = false
}

// Progress returns the current progress index.
func (s *Session) Progress() int { return s.tracker.Index() }

// Outcome returns how the run ended, or Running.
func (s *Session) Outcome() Outcome { return s.outcome }

// Finished reports whether the run has ended.
func (s *Session) Finished() bool { return s.finished }

// Metrics returns the live metrics record.
func (s *Session) Metrics() *metrics.TrajectoryMetrics { return s.metrics }

// Summary returns the metrics summary.
func (s *Session) Summary() metrics.Summary { return s.metrics.Summary() }

// Curve returns the curve being followed.
func (s *Session) Curve() *path.Curve { return s.curve }

// ControlEffort is the mean absolute control input, or 0 with no inputs.
func ControlEffort(controls []float64) float64 {
	if len(controls) == 0 {
		return 0
	}
	return floats.Norm(controls, 1) / float64(len(controls))
}
