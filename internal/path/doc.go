// Package path owns the authored path an agent is asked to follow.
//
// Responsibilities: holding hand-authored waypoints (an anchor plus left and
// right tangent handles), evaluating the piecewise cubic Bezier curve through
// them, and caching a fixed-step tessellation of that curve for cheap
// nearest-sample queries at control-loop rates.
// Key types: Waypoint, Curve.
//
// The curve is parameterised by waypoint index: t in [i, i+1) evaluates
// segment i. Sample indices increase with t, not necessarily with arc
// length.
package path
