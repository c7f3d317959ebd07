package mtspvrp

import (
	"context"
	"errors"
	"math"

	"github.com/katalvlaran/mtspvrp/mtsp"
	"github.com/katalvlaran/mtspvrp/weights"
)

// Code is the solver result code, mirroring the flat C-style contract.
type Code int

const (
	// Solved: the bounds met; Solution.Paths is proven optimal.
	Solved Code = 0

	// Timeout: the time limit expired with a finite gap left; the bounds
	// and the best paths found so far are still reported.
	Timeout Code = 1

	// Infeasible: no finite upper bound was found, or the search stopped
	// before it proved a finite lower bound (then any paths found so far
	// are still reported); cyclic or incompatible precedences also land
	// here.
	Infeasible Code = 2

	// InvalidInputSize: the dimensions are inconsistent or unsupported
	// (requires A ≥ 1, N ≥ 2, 2A ≤ N and matching slice lengths).
	InvalidInputSize Code = 3

	// InvalidInputPointer: a required slice is nil.
	InvalidInputPointer Code = 4
)

// Options configures Solve; see mtsp.Options.
type Options = mtsp.Options

// Objective modes, re-exported for callers of the root API.
const (
	SumObjective = mtsp.SumObjective
	MaxObjective = mtsp.MaxObjective
)

// DefaultOptions returns the solver defaults.
func DefaultOptions() Options { return mtsp.DefaultOptions() }

// Solution carries the bounds and, when an incumbent exists, one path per
// agent in the caller's original node identifiers (cloned endpoints are
// mapped back).
type Solution struct {
	LowerBound float64
	UpperBound float64
	Paths      [][]int
}

// Flatten serialises the paths into the flat C-style layout: one
// concatenated node slice plus the per-agent start offsets into it.
func (s Solution) Flatten() (paths []int, offsets []int) {
	offsets = make([]int, len(s.Paths))
	for a, p := range s.Paths {
		offsets[a] = len(paths)
		paths = append(paths, p...)
	}

	return paths, offsets
}

// Solve runs the branch-and-cut solver on a flat instance description:
// row-major N×N weights (non-negative entries are arc lengths, −1 marks
// "column node must precede row node"), and one start and end node per
// agent. See SolveContext for cancellation.
func Solve(numberOfAgents, numberOfNodes int, startPositions, endPositions []int, weightsRowMajor []float64, opts Options) (Solution, Code) {
	return SolveContext(context.Background(), numberOfAgents, numberOfNodes,
		startPositions, endPositions, weightsRowMajor, opts)
}

// SolveContext is Solve with caller-controlled cancellation. Context
// cancellation is reported like an expired time limit: Solved when the
// bounds already met, Infeasible when either bound is still infinite,
// Timeout otherwise, always with the bounds reached so far.
func SolveContext(ctx context.Context, numberOfAgents, numberOfNodes int, startPositions, endPositions []int, weightsRowMajor []float64, opts Options) (Solution, Code) {
	if startPositions == nil || endPositions == nil || weightsRowMajor == nil {
		return Solution{}, InvalidInputPointer
	}
	if numberOfAgents < 1 || numberOfNodes < 2 || 2*numberOfAgents > numberOfNodes {
		return Solution{}, InvalidInputSize
	}
	if len(startPositions) != numberOfAgents || len(endPositions) != numberOfAgents ||
		len(weightsRowMajor) != numberOfNodes*numberOfNodes {
		return Solution{}, InvalidInputSize
	}

	raw := weights.NewMatrix(numberOfNodes)
	for i := 0; i < numberOfNodes; i++ {
		for j := 0; j < numberOfNodes; j++ {
			raw.Set(i, j, int64(math.Round(weightsRowMajor[i*numberOfNodes+j])))
		}
	}

	manager, err := weights.NewManager(raw, startPositions, endPositions)
	if err != nil {
		if errors.Is(err, weights.ErrShapeMismatch) {
			return Solution{}, InvalidInputSize
		}

		return Solution{}, Infeasible
	}

	model, err := mtsp.NewModel(manager, opts.Mode)
	if err != nil {
		return Solution{}, InvalidInputSize
	}

	result, runErr := model.BranchAndCutSolve(ctx, opts)

	lower, upper := result.Bounds()
	solution := Solution{LowerBound: lower, UpperBound: upper}
	if paths := result.Paths(); paths != nil {
		solution.Paths = manager.TransformPathsBack(paths)
	}

	switch {
	case math.IsInf(upper, 1) || math.IsInf(lower, -1):
		return solution, Infeasible
	case runErr != nil || result.IsTimeoutHit():
		if lower >= upper {
			return solution, Solved
		}

		return solution, Timeout
	case lower >= upper:
		return solution, Solved
	default:
		return solution, Timeout
	}
}
