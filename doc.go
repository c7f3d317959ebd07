// Package mtspvrp solves the multiple Traveling Salesman / Vehicle Routing
// Problem with precedence constraints (mTSP-VRP) to proven optimality.
//
// 🚀 What is mtspvrp?
//
//	A parallel branch-and-cut solver over an LP relaxation. Given A agents
//	with designated start and end nodes, a complete directed weighted graph
//	on N nodes, and a partial order on node visits ("i before j"), it
//	produces A node-disjoint paths covering every node exactly once while
//	minimising either the sum or the maximum of the per-agent path weights.
//	The solver returns a lower and an upper bound on the optimum together
//	with a feasible set of paths attaining the upper bound.
//
// ✨ Highlights
//
//   - Exact           — branch-and-cut with sub-tour, precedence (π, σ, π∧σ)
//     and 2-matching cutting planes separated from fractional LP points
//   - Parallel        — one LP clone per worker, a shared best-bound queue
//     and a constraint deque propagating cuts to every worker
//   - Deterministic   — integral bounds, fixed separation order, seedless
//
// Under the hood, the work is organized in focused subpackages:
//
//	lp/        — LP façade: variables, linear expression DSL, simplex solve
//	flow/      — Boykov–Kolmogorov max-flow with min-cut colouring
//	gomoryhu/  — Gomory–Hu tree construction via repeated max-flow
//	weights/   — input normalisation, endpoint cloning, precedence closure
//	mtsp/      — the branch-and-cut model, queue, separators and heuristics
//
// The root package exposes Solve, a single entry point mirroring the flat
// C-style contract: row-major weights, −1 entries for precedences, result
// codes for invalid input, infeasibility and timeout.
//
// Quick example:
//
//	weights := []float64{
//	    0, 1, 10, 10,
//	    10, 0, 1, 10,
//	    10, 10, 0, 1,
//	    1, 10, 10, 0,
//	}
//	sol, code := mtspvrp.Solve(1, 4, []int{0}, []int{0}, weights, mtspvrp.DefaultOptions())
//	// code == mtspvrp.Solved, sol.LowerBound == sol.UpperBound == 4
package mtspvrp
