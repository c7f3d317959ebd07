// Package mtsp contains the branch-and-cut engine of the mtsp-vrp solver.
//
// Model builds the LP relaxation over the X tensor — X(a, i, j) = 1 when
// agent a traverses arc i→j — with degree, start/end, ring and 2-cycle
// constraints, and a Sum or Max objective. BranchAndCutSolve runs the
// parallel search: every worker owns a clone of the initial LP and shares
//
//   - BranchAndCutQueue — a best-lower-bound priority queue that also
//     tracks the bounds of nodes currently being processed, so the global
//     lower bound never regresses while children are in flight,
//   - ConstraintDeque — the cut pipeline: a separated cut is appended once
//     and replayed into each worker's LP at its next pop,
//   - Result — the monotone bounds and best-paths container.
//
// A popped node is re-fixed, propagated (degree-implied zeros), solved,
// then either pruned, exploited into an incumbent, cut (Ucut, π, σ, π∧σ,
// 2-matching, in that order, first producer wins) or branched on the
// binary variable closest to ½.
//
// The package follows the usual engine-struct style: no state hides in
// closures, all buffers are explicit, and determinism is kept wherever the
// concurrency allows it.
package mtsp
