// Package prediction estimates where a moving subject will show up next.
//
// The estimator looks only at the two most recent observations of a track:
// it repeats the last step (same great-circle length, same planar bearing)
// from the last point and attaches an uncertainty radius chosen by a
// RadiusPolicy. With fewer than two observations there is nothing to
// extrapolate and the estimator reports no result instead of guessing.
//
// CircleBoundary turns a prediction into a closed ring of coordinates for
// display. Both operations are pure: callers own the observation sequence and
// pass a snapshot on every call.
package prediction
