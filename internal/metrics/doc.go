// Package metrics accumulates tracking-error statistics and a kinematic
// time series for one path-following run.
//
// Responsibilities: the per-sample best-distance record, the parallel
// telemetry buffers captured whenever tracking error improves, run timing
// and success fraction, and the fixed little-endian binary stream those
// buffers are written to for offline analysis.
// Key types: TrajectoryMetrics, TelemetrySample, Series, Summary.
//
// Stream layout (no version header):
//
//	uint64 n                      number of telemetry samples
//	uint64 24                     bytes per point record (3 x float64)
//	n point records x 6           position, centre of mass, orientation,
//	                              linear velocity, angular velocity, target
//	n float64                     control effort
//	n float64                     elapsed seconds at capture
//
// TrajectoryMetrics is not safe for concurrent use; the host serialises
// access from its control loop.
package metrics
