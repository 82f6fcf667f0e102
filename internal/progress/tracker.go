package progress

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrIndexOutOfRange is matched by every IndexError.
var ErrIndexOutOfRange = errors.New("progress index out of range")

// IndexError reports a progress index outside [0, Count-1], or a sample
// source too short to track (Count < 2).
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	if e.Count < 2 {
		return fmt.Sprintf("progress index %d: need at least 2 samples, have %d", e.Index, e.Count)
	}
	return fmt.Sprintf("progress index %d out of range [0, %d]", e.Index, e.Count-1)
}

func (e *IndexError) Is(target error) bool { return target == ErrIndexOutOfRange }

// SampleSource is a tessellated path. *path.Curve satisfies it.
type SampleSource interface {
	SampleCount() int
	SampleAt(i int) r3.Vec
}

// Advance walks forward from current while the distance from pos to the next
// sample does not increase, and returns the index where it stopped. The
// result is never less than current. A NaN distance stops the walk.
func Advance(samples SampleSource, current int, pos r3.Vec) (int, error) {
	n := samples.SampleCount()
	if n < 2 || current < 0 || current >= n {
		return current, &IndexError{Index: current, Count: n}
	}

	best := current
	bestDist := r3.Norm(r3.Sub(pos, samples.SampleAt(current)))
	for i := current + 1; i < n; i++ {
		d := r3.Norm(r3.Sub(pos, samples.SampleAt(i)))
		if !(d <= bestDist) {
			break
		}
		best, bestDist = i, d
	}
	return best, nil
}

// Tracker owns the progress index for one run. Renderers and other readers
// get the index through Index; only Update and Reset change it.
type Tracker struct {
	samples SampleSource
	index   int
}

// NewTracker returns a tracker at the start of samples.
func NewTracker(samples SampleSource) *Tracker {
	return &Tracker{samples: samples}
}

// Update advances the index towards pos. advanced reports whether the index
// moved on this call.
func (t *Tracker) Update(pos r3.Vec) (index int, advanced bool, err error) {
	next, err := Advance(t.samples, t.index, pos)
	if err != nil {
		return t.index, false, err
	}
	advanced = next != t.index
	t.index = next
	return next, advanced, nil
}

// Index returns the current progress index.
func (t *Tracker) Index() int { return t.index }

// LastIndex returns the index of the final sample, or -1 for an empty source.
func (t *Tracker) LastIndex() int { return t.samples.SampleCount() - 1 }

// Target returns the sample at the current index.
func (t *Tracker) Target() r3.Vec { return t.samples.SampleAt(t.index) }

// Done reports whether the index has reached the final sample.
func (t *Tracker) Done() bool {
	last := t.LastIndex()
	return last > 0 && t.index >= last
}

// Fraction returns the index as a fraction of the final index.
func (t *Tracker) Fraction() float64 {
	last := t.LastIndex()
	if last <= 0 {
		return 0
	}
	return float64(t.index) / float64(last)
}

// Reset moves the index back to the start of the path.
func (t *Tracker) Reset() { t.index = 0 }
