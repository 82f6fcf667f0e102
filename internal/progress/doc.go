// Package progress tracks how far along a tessellated path an agent has
// travelled.
//
// Responsibilities: the forward-only nearest-sample scan (Advance) and the
// single owner of the progress index (Tracker). Progress never decreases
// except through an explicit Reset.
//
// The scan assumes the agent's distance to the path is locally unimodal
// around its true nearest sample and that it does not jump far between
// ticks. Cost per tick is proportional to the samples passed, not to the
// path length. An agent far from the remaining path can stop the scan at a
// local minimum; that is accepted behaviour.
package progress
