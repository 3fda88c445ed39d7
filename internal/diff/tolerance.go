// Package diff accumulates per-cell deltas into a total L1 change and a
// bounded top-K contributor heap, then evaluates coverage against a
// threshold to decide REAL_CHANGE vs NO_REAL_CHANGE vs diffuse refusal.
package diff

import "math"

// ToleranceTracker applies a tolerance to a delta and tracks the maximum
// absolute delta observed, before zeroing for tolerance.
type ToleranceTracker struct {
	tolerance   float64
	maxAbsDelta float64
}

// NewToleranceTracker builds a tracker for the given tolerance (>= 0).
func NewToleranceTracker(tolerance float64) *ToleranceTracker {
	return &ToleranceTracker{tolerance: tolerance}
}

// Apply computes (delta, contribution) for new vs old: contribution is
// zeroed when the absolute delta falls within tolerance.
func (t *ToleranceTracker) Apply(old, new float64) (delta, contribution float64) {
	delta = new - old
	abs := math.Abs(delta)
	if abs > t.maxAbsDelta {
		t.maxAbsDelta = abs
	}
	if abs <= t.tolerance {
		return delta, 0
	}
	return delta, abs
}

// MaxAbsDelta returns the largest absolute delta observed so far.
func (t *ToleranceTracker) MaxAbsDelta() float64 { return t.maxAbsDelta }
