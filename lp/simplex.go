package lp

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// simplexTol is the pivot/feasibility tolerance handed to the engine.
const simplexTol = 1e-10

// dropTol decides when an eliminated (all-fixed) row or a tiny residual
// still counts as satisfied during presolve.
const dropTol = 1e-9

// stdKind classifies how one model column maps into standard form.
type stdKind uint8

const (
	stdFixed    stdKind = iota // lower == upper: substituted out
	stdShifted                 // finite lower: x = lower + x′, x′ ≥ 0
	stdMirrored                // lower = −Inf, finite upper: x = upper − x″
	stdFree                    // both infinite: x = x⁺ − x⁻
)

// colMap records the standard-form placement of one model column.
type colMap struct {
	kind stdKind
	base float64 // fixed value / lower (shifted) / upper (mirrored)
	pos  int     // std index of the (positive) part, −1 when substituted
	neg  int     // std index of the negative part (stdFree only)
}

// rowSense encodes the direction of an assembled standard-form row.
type rowSense int8

const (
	senseEq rowSense = iota
	senseLe          // a·x ≤ b: slack +1
	senseGe          // a·x ≥ b: surplus −1
)

// stdRow is one row before slack columns are materialized.
type stdRow struct {
	idx   []int
	coefs []float64
	b     float64
	sense rowSense
}

// solveLocked converts the formulation to gonum standard form, runs the
// simplex and maps the result back to per-column primal values. Must be
// called with m.mu held.
//
// Conversion steps:
//  1. Classify columns: fixed ones are substituted into row constants,
//     finite lower bounds shift, upper-only bounds mirror, free columns
//     split into a positive and a negative part.
//  2. Emit model rows with adjusted right-hand sides; a two-sided row with
//     distinct finite bounds becomes a ≤ and a ≥ pair.
//  3. Emit one ≤ row per shifted column with a finite upper bound.
//  4. Presolve: drop rows with no live columns (infeasible if violated),
//     drop never-referenced std columns (unbounded if they improve the
//     objective), then materialize slack columns and call the engine.
func (m *Model) solveLocked() (Status, []float64, float64) {
	maps := make([]colMap, len(m.cols))
	stdC := make([]float64, 0, len(m.cols))

	nextStd := 0
	for j, col := range m.cols {
		switch {
		case col.upper-col.lower <= 0:
			maps[j] = colMap{kind: stdFixed, base: col.lower, pos: -1, neg: -1}
		case !infinite(col.lower):
			maps[j] = colMap{kind: stdShifted, base: col.lower, pos: nextStd, neg: -1}
			stdC = append(stdC, col.objective)
			nextStd++
		case !infinite(col.upper):
			maps[j] = colMap{kind: stdMirrored, base: col.upper, pos: nextStd, neg: -1}
			stdC = append(stdC, -col.objective)
			nextStd++
		default:
			maps[j] = colMap{kind: stdFree, pos: nextStd, neg: nextStd + 1}
			stdC = append(stdC, col.objective, -col.objective)
			nextStd += 2
		}
	}

	stdRows := make([]stdRow, 0, len(m.rows)+len(m.cols))

	appendModelRow := func(r row, bound float64, sense rowSense) (feasible bool) {
		sr := stdRow{b: bound, sense: sense}
		for k, id := range r.vars {
			coef := r.coefs[k]
			if coef == 0 {
				continue
			}
			cm := maps[id]
			switch cm.kind {
			case stdFixed:
				sr.b -= coef * cm.base
			case stdShifted:
				sr.b -= coef * cm.base
				sr.idx = append(sr.idx, cm.pos)
				sr.coefs = append(sr.coefs, coef)
			case stdMirrored:
				sr.b -= coef * cm.base
				sr.idx = append(sr.idx, cm.pos)
				sr.coefs = append(sr.coefs, -coef)
			case stdFree:
				sr.idx = append(sr.idx, cm.pos, cm.neg)
				sr.coefs = append(sr.coefs, coef, -coef)
			}
		}
		if len(sr.idx) == 0 {
			// Fully substituted row: check it instead of emitting it.
			switch sense {
			case senseLe:
				return sr.b >= -dropTol
			case senseGe:
				return sr.b <= dropTol
			default:
				return math.Abs(sr.b) <= dropTol
			}
		}
		stdRows = append(stdRows, sr)

		return true
	}

	// Equality and range rows are emitted as a ≤/≥ pair: each row then
	// carries its own slack column, which keeps A at full row rank even
	// when the model rows are linearly dependent (the degree rows of a
	// tour formulation always are). One-shot simplex engines reject
	// rank-deficient equality systems as singular.
	for _, r := range m.rows {
		switch {
		case infinite(r.lower) && !infinite(r.upper):
			if !appendModelRow(r, r.upper, senseLe) {
				return StatusInfeasible, nil, 0
			}
		case infinite(r.upper) && !infinite(r.lower):
			if !appendModelRow(r, r.lower, senseGe) {
				return StatusInfeasible, nil, 0
			}
		default: // both bounds finite: equality or range
			if !appendModelRow(r, r.upper, senseLe) || !appendModelRow(r, r.lower, senseGe) {
				return StatusInfeasible, nil, 0
			}
		}
	}

	// Upper-bound rows for shifted columns: x′ ≤ upper − lower.
	for j, col := range m.cols {
		if maps[j].kind == stdShifted && !infinite(col.upper) {
			stdRows = append(stdRows, stdRow{
				idx:   []int{maps[j].pos},
				coefs: []float64{1},
				b:     col.upper - col.lower,
				sense: senseLe,
			})
		}
	}

	// Presolve: remove std columns that no row references. A referenced-by-
	// nothing column with a negative cost certifies unboundedness.
	referenced := make([]bool, nextStd)
	for _, sr := range stdRows {
		for _, p := range sr.idx {
			referenced[p] = true
		}
	}
	remap := make([]int, nextStd)
	kept := 0
	for p := 0; p < nextStd; p++ {
		if referenced[p] {
			remap[p] = kept
			kept++
			continue
		}
		if stdC[p] < 0 {
			return StatusUnbounded, nil, 0
		}
		remap[p] = -1
	}

	if len(stdRows) == 0 {
		// No live rows at all: every live column rests at 0 (cost ≥ 0 was
		// just certified), every model column sits at its base.
		return StatusOptimal, m.baseSolution(maps, nil, remap), m.objectiveOf(m.baseSolution(maps, nil, remap))
	}

	nSlack := 0
	for _, sr := range stdRows {
		if sr.sense != senseEq {
			nSlack++
		}
	}

	nCols := kept + nSlack
	c := make([]float64, nCols)
	for p := 0; p < nextStd; p++ {
		if remap[p] >= 0 {
			c[remap[p]] = stdC[p]
		}
	}

	a := mat.NewDense(len(stdRows), nCols, nil)
	b := make([]float64, len(stdRows))

	slack := kept
	for i, sr := range stdRows {
		for k, p := range sr.idx {
			if remap[p] >= 0 {
				a.Set(i, remap[p], a.At(i, remap[p])+sr.coefs[k])
			}
		}
		b[i] = sr.b
		switch sr.sense {
		case senseLe:
			a.Set(i, slack, 1)
			slack++
		case senseGe:
			a.Set(i, slack, -1)
			slack++
		}
	}

	_, optX, err := lp.Simplex(c, a, b, simplexTol, nil)
	switch {
	case err == nil:
		// fall through to solution extraction
	case errors.Is(err, lp.ErrInfeasible):
		return StatusInfeasible, nil, 0
	case errors.Is(err, lp.ErrUnbounded):
		return StatusUnbounded, nil, 0
	default:
		return StatusError, nil, 0
	}

	primal := m.baseSolution(maps, optX, remap)

	return StatusOptimal, primal, m.objectiveOf(primal)
}

// baseSolution maps a standard-form point (optX may be nil for the
// all-zero point) back onto the model columns.
func (m *Model) baseSolution(maps []colMap, optX []float64, remap []int) []float64 {
	at := func(p int) float64 {
		if p < 0 || optX == nil {
			return 0
		}
		if rp := remap[p]; rp >= 0 {
			return optX[rp]
		}

		return 0
	}

	primal := make([]float64, len(m.cols))
	for j := range m.cols {
		cm := maps[j]
		switch cm.kind {
		case stdFixed:
			primal[j] = cm.base
		case stdShifted:
			primal[j] = cm.base + at(cm.pos)
		case stdMirrored:
			primal[j] = cm.base - at(cm.pos)
		case stdFree:
			primal[j] = at(cm.pos) - at(cm.neg)
		}
	}

	return primal
}

// objectiveOf evaluates the model objective (with offset) at a primal point.
func (m *Model) objectiveOf(primal []float64) float64 {
	obj := m.objOffset
	for j, col := range m.cols {
		if col.objective != 0 {
			obj += col.objective * primal[j]
		}
	}

	return obj
}
