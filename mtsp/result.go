package mtsp

import (
	"math"
	"sync"
)

// Result is the thread-safe bounds and best-paths container shared by all
// workers. The upper bound only ever decreases (take-if-smaller), the
// lower bound only ever increases and is clamped to the upper bound, and
// the stored paths always correspond to the accepted upper bound.
type Result struct {
	mu         sync.Mutex
	lower      float64
	upper      float64
	paths      [][]int
	timeoutHit bool
}

// NewResult returns a result with the bounds at ∓∞ and no paths.
func NewResult() *Result {
	return &Result{lower: math.Inf(-1), upper: math.Inf(1)}
}

// LowerBound returns the current proven lower bound.
func (r *Result) LowerBound() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lower
}

// UpperBound returns the current incumbent value.
func (r *Result) UpperBound() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.upper
}

// Bounds returns both bounds atomically.
func (r *Result) Bounds() (lower, upper float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lower, r.upper
}

// HaveBoundsCrossed reports lower ≥ upper, the proof of optimality.
func (r *Result) HaveBoundsCrossed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lower >= r.upper
}

// IsTimeoutHit reports whether any worker hit the deadline.
func (r *Result) IsTimeoutHit() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.timeoutHit
}

// SetTimeoutHit latches the timeout flag.
func (r *Result) SetTimeoutHit() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.timeoutHit = true
}

// Paths returns a copy of the best paths found so far (nil before the
// first incumbent).
func (r *Result) Paths() [][]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.paths == nil {
		return nil
	}
	out := make([][]int, len(r.paths))
	for i, p := range r.paths {
		out[i] = append([]int(nil), p...)
	}

	return out
}

// UpdateUpperBound installs a new incumbent if it improves the current
// one; paths are taken over together with the bound.
func (r *Result) UpdateUpperBound(upper float64, paths [][]int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if upper < r.upper {
		r.upper = upper
		r.paths = paths
		if r.lower > r.upper {
			r.lower = r.upper
		}
	}
}

// UpdateLowerBound raises the lower bound toward lower, never past the
// upper bound and never downward.
func (r *Result) UpdateLowerBound(lower float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lower > r.lower {
		r.lower = math.Min(lower, r.upper)
	}
}
