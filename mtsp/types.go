// Package mtsp: objective modes, options and defaults.
package mtsp

import (
	"runtime"
	"time"
)

// Epsilon is the integrality/violation tolerance used throughout the
// search. Weights are integral, so anything closer to an integer than
// this is that integer.
const Epsilon = 1e-10

// Mode selects the objective.
type Mode int

const (
	// SumObjective minimises the total weight over all agents.
	SumObjective Mode = iota

	// MaxObjective minimises the weight of the heaviest agent path
	// (min-max), via one auxiliary variable linked to every agent sum.
	MaxObjective
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == MaxObjective {
		return "Max"
	}

	return "Sum"
}

// Options configures BranchAndCutSolve. The zero value is not meaningful;
// start from DefaultOptions.
type Options struct {
	// Mode selects the Sum or Max objective. Default: SumObjective.
	Mode Mode

	// Workers is the number of parallel branch-and-cut workers, each with
	// its own LP clone. Default: runtime.NumCPU().
	Workers int

	// TimeLimit bounds wall-clock time. Zero means no limit. Hitting the
	// limit is reported on the Result, not as an error.
	TimeLimit time.Duration

	// EnableHeuristics seeds the upper bound with a precedence-aware
	// nearest-insertion tour (plus 2-opt) and exploits fractional LP
	// points into incumbents during the search. Disabling never affects
	// correctness, only how fast the gap closes. Default: true.
	EnableHeuristics bool
}

// DefaultOptions returns production defaults: Sum objective, one worker
// per CPU, no time limit, heuristics on.
func DefaultOptions() Options {
	return Options{
		Mode:             SumObjective,
		Workers:          runtime.NumCPU(),
		TimeLimit:        0,
		EnableHeuristics: true,
	}
}

// normalize fills in unusable fields.
func (o *Options) normalize() {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
}
