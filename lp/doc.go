// Package lp provides a small linear-programming façade used by the
// branch-and-cut solver: opaque column handles (Variable), a composable
// linear-expression DSL (Expression, Constraint) and a Model that owns one
// simplex instance.
//
// The simplex engine itself is external: Model keeps the formulation
// (column bounds, objective, CSR rows) in plain slices and converts it to
// the standard form expected by gonum's optimize/convex/lp on every Solve.
// Fixed columns are substituted out before the conversion and finite upper
// bounds become slack rows, so the engine only ever sees
//
//	minimise cᵀx  subject to  A·x = b, x ≥ 0.
//
// Models are clone-able (deep copy of the formulation) so that every
// branch-and-cut worker can solve independently; a mutex guards each model
// because bound updates, row additions and solution readout interleave.
//
// Bounds use math.Inf(±1) as the "unbounded" sentinel throughout.
package lp
