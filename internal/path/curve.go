package path

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a point or direction in the path's coordinate frame.
type Vec3 = r3.Vec

// DefaultSubdivisions is the number of parametric steps per segment used
// when no tuning value is supplied.
const DefaultSubdivisions = 50

// directionStep is the parametric offset used for the central difference in
// Direction.
const directionStep = 0.01

var (
	// ErrInvalidSubdivisions is returned by NewCurve for a subdivision count below 1.
	ErrInvalidSubdivisions = errors.New("subdivisions must be at least 1")
	// ErrTooFewWaypoints is returned by Validate and Load when the curve has no
	// segment.
	ErrTooFewWaypoints = errors.New("path needs at least two waypoints")
)

// Waypoint is an anchor the curve passes through plus its two tangent
// handles. Left shapes the curve arriving at the anchor, Right the curve
// leaving it.
type Waypoint struct {
	Anchor Vec3
	Left   Vec3
	Right  Vec3
}

// Curve is a piecewise cubic Bezier through an ordered list of waypoints,
// together with its cached tessellation. Waypoints are append-only.
type Curve struct {
	subdivisions int
	waypoints    []Waypoint
	samples      []Vec3
}

// NewCurve returns an empty curve that tessellates every segment into
// subdivisions+1 samples.
func NewCurve(subdivisions int) (*Curve, error) {
	if subdivisions < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidSubdivisions, subdivisions)
	}
	return &Curve{subdivisions: subdivisions}, nil
}

// AddWaypoint appends w. Once the curve has at least two waypoints, the newly
// completed segment is evaluated at subdivisions+1 evenly spaced parameters
// (both ends included) and the results appended to the tessellation.
func (c *Curve) AddWaypoint(w Waypoint) {
	c.waypoints = append(c.waypoints, w)
	m := len(c.waypoints)
	if m < 2 {
		return
	}

	segment := float64(m - 2)
	k := float64(c.subdivisions)
	for i := 0; i <= c.subdivisions; i++ {
		c.samples = append(c.samples, c.Evaluate(float64(i)/k+segment))
	}
}

// Evaluate returns the curve position at parameter t. The integer part of t
// selects the segment and the fractional part is the local Bezier parameter.
// Parameters at or past the last waypoint evaluate to the last anchor.
// Negative parameters are not meaningful and evaluate as t = 0.
func (c *Curve) Evaluate(t float64) Vec3 {
	m := len(c.waypoints)
	switch m {
	case 0:
		return Vec3{}
	case 1:
		return c.waypoints[0].Anchor
	}

	if t < 0 || math.IsNaN(t) {
		t = 0
	}
	whole, u := math.Modf(t)
	var i int
	if whole >= float64(m-1) {
		i, u = m-2, 1
	} else {
		i = int(whole)
	}

	from, to := c.waypoints[i], c.waypoints[i+1]
	return deCasteljau(from.Anchor, from.Right, to.Left, to.Anchor, u)
}

// deCasteljau evaluates the cubic Bezier p0..p3 at u by repeated linear
// interpolation: three lerps, then two, then one.
func deCasteljau(p0, p1, p2, p3 Vec3, u float64) Vec3 {
	a := lerp(p0, p1, u)
	b := lerp(p1, p2, u)
	c := lerp(p2, p3, u)

	d := lerp(a, b, u)
	e := lerp(b, c, u)

	return lerp(d, e, u)
}

// lerp is written as (1-u)a + ub so that u=0 and u=1 return the end points
// exactly.
func lerp(a, b Vec3, u float64) Vec3 {
	return r3.Add(r3.Scale(1-u, a), r3.Scale(u, b))
}

// Validate reports whether the curve has at least one segment to track.
func (c *Curve) Validate() error {
	if len(c.waypoints) < 2 {
		return fmt.Errorf("%w, got %d", ErrTooFewWaypoints, len(c.waypoints))
	}
	return nil
}

// Subdivisions returns the per-segment subdivision count.
func (c *Curve) Subdivisions() int { return c.subdivisions }

// WaypointCount returns the number of waypoints.
func (c *Curve) WaypointCount() int { return len(c.waypoints) }

// SegmentCount returns the number of Bezier segments.
func (c *Curve) SegmentCount() int {
	if len(c.waypoints) < 2 {
		return 0
	}
	return len(c.waypoints) - 1
}

// AnchorAt returns the anchor of waypoint i.
func (c *Curve) AnchorAt(i int) Vec3 { return c.waypoints[i].Anchor }

// LeftHandleAt returns the left handle of waypoint i.
func (c *Curve) LeftHandleAt(i int) Vec3 { return c.waypoints[i].Left }

// RightHandleAt returns the right handle of waypoint i.
func (c *Curve) RightHandleAt(i int) Vec3 { return c.waypoints[i].Right }

// SampleCount returns the number of tessellated samples, (m-1)*(k+1) for m
// waypoints and k subdivisions.
func (c *Curve) SampleCount() int { return len(c.samples) }

// SampleAt returns tessellated sample i.
func (c *Curve) SampleAt(i int) Vec3 { return c.samples[i] }

// Samples returns a copy of the tessellated samples in curve order.
func (c *Curve) Samples() []Vec3 { return slices.Clone(c.samples) }

// ParamAt maps a sample index back to an approximate curve parameter.
func (c *Curve) ParamAt(index int) float64 {
	if len(c.samples) == 0 || len(c.waypoints) < 2 {
		return 0
	}
	return float64(index) / float64(len(c.samples)) * float64(len(c.waypoints)-1)
}

// Direction returns the unit tangent of the curve at sample index, estimated
// by a central difference on the continuous curve. The first and last
// samples use the sample itself as the trailing or leading point. A
// degenerate tangent yields the zero vector.
func (c *Curve) Direction(index int) Vec3 {
	last := len(c.samples) - 1
	if last < 1 || index < 0 || index > last {
		return Vec3{}
	}

	here := c.samples[index]
	t := c.ParamAt(index)
	behind, ahead := here, here
	if index > 0 {
		behind = c.Evaluate(t - directionStep)
	}
	if index < last {
		ahead = c.Evaluate(t + directionStep)
	}

	d := r3.Sub(ahead, behind)
	n := r3.Norm(d)
	if n == 0 {
		return Vec3{}
	}
	return r3.Scale(1/n, d)
}

// TargetVelocity returns the velocity an agent at sample index should have
// to follow the curve at speed.
func (c *Curve) TargetVelocity(index int, speed float64) Vec3 {
	return r3.Scale(speed, c.Direction(index))
}

// ArcLength returns the length of the tessellated polyline.
func (c *Curve) ArcLength() float64 {
	var total float64
	for i := 1; i < len(c.samples); i++ {
		total += r3.Norm(r3.Sub(c.samples[i], c.samples[i-1]))
	}
	return total
}
