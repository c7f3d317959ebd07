package gomoryhu

import "errors"

// Sentinel errors. Matched with errors.Is.
var (
	// ErrCapacityLength is returned when the capacity slice does not hold
	// exactly N·(N−1)/2 entries.
	ErrCapacityLength = errors.New("gomoryhu: capacity slice has wrong length")

	// ErrVertexOutOfRange is returned by Tree queries with vertices
	// outside [0, N).
	ErrVertexOutOfRange = errors.New("gomoryhu: vertex out of range")
)

// EdgeCallback receives one finished tree edge {u, v} with the value of
// the minimum u–v cut and the two sides of that cut as subsets of the
// original vertices (compU contains u, compV contains v; together they
// cover all N vertices). Returning true stops the builder early.
//
// The compU and compV slices alias builder-owned storage and are only
// valid for the duration of the call.
type EdgeCallback func(u, v int, cutSize float64, compU, compV []int) bool

// Index maps an unordered vertex pair to its position in the
// lower-triangular capacity layout used by Create and Build:
// for u > v the capacity of edge {u, v} lives at u·(u−1)/2 + v.
func Index(u, v int) int {
	if u < v {
		u, v = v, u
	}

	return u*(u-1)/2 + v
}

// capacityLen returns the expected capacity slice length for n vertices.
func capacityLen(n int) int { return n * (n - 1) / 2 }
