package metrics

import "gonum.org/v1/gonum/spatial/r3"

// TelemetrySample is one capture of the agent's kinematic state, taken when
// the tracking error at the current progress index improves.
type TelemetrySample struct {
	Position        r3.Vec
	CentreOfMass    r3.Vec
	Orientation     r3.Vec
	LinearVelocity  r3.Vec
	AngularVelocity r3.Vec
	Target          r3.Vec
	ControlEffort   float64
	Elapsed         float64 // seconds since the run started
}

// OrientationFromAxes packs the leading (X) component of each body axis
// into the single orientation record the stream carries.
func OrientationFromAxes(x, y, z r3.Vec) r3.Vec {
	return r3.Vec{X: x.X, Y: y.X, Z: z.X}
}

// Series holds telemetry as parallel buffers, one entry per sample, in the
// order they are written to the binary stream.
type Series struct {
	Position        []r3.Vec
	CentreOfMass    []r3.Vec
	Orientation     []r3.Vec
	LinearVelocity  []r3.Vec
	AngularVelocity []r3.Vec
	Target          []r3.Vec
	ControlEffort   []float64
	Elapsed         []float64
}

// Len returns the number of samples.
func (s *Series) Len() int { return len(s.Elapsed) }

// Append adds one sample to every buffer.
func (s *Series) Append(t TelemetrySample) {
	s.Position = append(s.Position, t.Position)
	s.CentreOfMass = append(s.CentreOfMass, t.CentreOfMass)
	s.Orientation = append(s.Orientation, t.Orientation)
	s.LinearVelocity = append(s.LinearVelocity, t.LinearVelocity)
	s.AngularVelocity = append(s.AngularVelocity, t.AngularVelocity)
	s.Target = append(s.Target, t.Target)
	s.ControlEffort = append(s.ControlEffort, t.ControlEffort)
	s.Elapsed = append(s.Elapsed, t.Elapsed)
}

// Sample returns sample i. It panics if i is out of range, like a slice index.
func (s *Series) Sample(i int) TelemetrySample {
	return TelemetrySample{
		Position:        s.Position[i],
		CentreOfMass:    s.CentreOfMass[i],
		Orientation:     s.Orientation[i],
		LinearVelocity:  s.LinearVelocity[i],
		AngularVelocity: s.AngularVelocity[i],
		Target:          s.Target[i],
		ControlEffort:   s.ControlEffort[i],
		Elapsed:         s.Elapsed[i],
	}
}

// Clone returns a deep copy.
func (s *Series) Clone() *Series {
	return &Series{
		Position:        cloneVecs(s.Position),
		CentreOfMass:    cloneVecs(s.CentreOfMass),
		Orientation:     cloneVecs(s.Orientation),
		LinearVelocity:  cloneVecs(s.LinearVelocity),
		AngularVelocity: cloneVecs(s.AngularVelocity),
		Target:          cloneVecs(s.Target),
		ControlEffort:   append([]float64(nil), s.ControlEffort...),
		Elapsed:         append([]float64(nil), s.Elapsed...),
	}
}

func cloneVecs(v []r3.Vec) []r3.Vec {
	return append([]r3.Vec(nil), v...)
}

// pointBuffers returns the six point buffers in stream order with their
// section names.
func (s *Series) pointBuffers() []pointBuffer {
	return []pointBuffer{
		{"position", &s.Position},
		{"centre_of_mass", &s.CentreOfMass},
		{"orientation", &s.Orientation},
		{"linear_velocity", &s.LinearVelocity},
		{"angular_velocity", &s.AngularVelocity},
		{"target", &s.Target},
	}
}

type pointBuffer struct {
	name string
	vecs *[]r3.Vec
}
