package lp

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// column holds the formulation state of one model column.
type column struct {
	lower     float64
	upper     float64
	objective float64
}

// row is one constraint in CSR-ish form: parallel vars/coefs plus bounds.
type row struct {
	lower float64
	upper float64
	vars  []int32
	coefs []float64
}

// Model owns one simplex formulation plus the binary variables created at
// construction time. Some operations mutate cached state (the primal
// vector, the last objective), so every public method locks m.mu; a model
// is safe for concurrent use but a solve excludes all other access.
type Model struct {
	mu sync.Mutex

	cols      []column
	rows      []row
	objOffset float64

	binaries int // the first `binaries` columns are the binary block

	primal    []float64
	objective float64
	hasSolution bool
}

// NewModel creates a model with numberOfBinaryVariables columns, each with
// bounds [0, 1] and objective coefficient 0. Returns ErrTooManyVariables
// when the requested size exceeds MaxVariables.
func NewModel(numberOfBinaryVariables int) (*Model, error) {
	if numberOfBinaryVariables < 0 || numberOfBinaryVariables > MaxVariables {
		return nil, fmt.Errorf("%w: %d columns requested", ErrTooManyVariables, numberOfBinaryVariables)
	}

	m := &Model{
		cols:   make([]column, numberOfBinaryVariables),
		primal: make([]float64, numberOfBinaryVariables),
	}
	for i := range m.cols {
		m.cols[i] = column{lower: 0, upper: 1}
	}
	m.binaries = numberOfBinaryVariables

	return m, nil
}

// Variables returns handles to the binary block in id order.
func (m *Model) Variables() []Variable {
	m.mu.Lock()
	defer m.mu.Unlock()

	vars := make([]Variable, m.binaries)
	for i := range vars {
		vars[i] = Variable{id: int32(i)}
	}

	return vars
}

// NumVariables returns the total number of columns (binary and added).
func (m *Model) NumVariables() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.cols)
}

// AddVariable appends one continuous column with the given bounds and
// returns its handle. Returns ErrTooManyVariables at the column cap.
func (m *Model) AddVariable(lower, upper float64) (Variable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.cols) >= MaxVariables {
		return Variable{}, ErrTooManyVariables
	}

	m.cols = append(m.cols, column{lower: lower, upper: upper})
	m.primal = append(m.primal, 0)
	m.hasSolution = false

	return Variable{id: int32(len(m.cols) - 1)}, nil
}

// SetObjectiveCoefficient sets the objective coefficient of v.
func (m *Model) SetObjectiveCoefficient(v Variable, coef float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cols[v.id].objective = coef
}

// SetObjective installs e as the model objective: per-column coefficients
// plus the constant term as the objective offset. Columns absent from e
// keep their current coefficient.
func (m *Model) SetObjective(e Expression) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, coef := range e.terms {
		m.cols[id].objective = coef
	}
	m.objOffset = e.constant
}

// SetObjectiveOffset sets the constant added to every objective value.
func (m *Model) SetObjectiveOffset(offset float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objOffset = offset
}

// AddConstraint appends a single row.
func (m *Model) AddConstraint(c Constraint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.addRowLocked(c)
}

// AddConstraints appends rows in order.
func (m *Model) AddConstraints(cs []Constraint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range cs {
		m.addRowLocked(c)
	}
}

func (m *Model) addRowLocked(c Constraint) {
	// The constraint owns its slices and is immutable; alias them.
	m.rows = append(m.rows, row{lower: c.lower, upper: c.upper, vars: c.vars, coefs: c.coefs})
	m.hasSolution = false
}

// NumConstraints returns the number of rows added so far.
func (m *Model) NumConstraints() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.rows)
}

// SetVariableBounds replaces the bounds of v. Fixing a binary variable at
// a branch-and-cut node is SetVariableBounds(v, x, x); unfixing restores
// [0, 1].
func (m *Model) SetVariableBounds(v Variable, lower, upper float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cols[v.id].lower = lower
	m.cols[v.id].upper = upper
}

// VariableBounds returns the current bounds of v.
func (m *Model) VariableBounds(v Variable) (lower, upper float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.cols[v.id]

	return col.lower, col.upper
}

// Value returns the primal value of v from the last optimal solve.
// Zero when the model has not been solved to optimality yet.
func (m *Model) Value(v Variable) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.primal[v.id]
}

// PrimalValues returns a copy of the full primal vector from the last
// optimal solve, indexed by column id.
func (m *Model) PrimalValues() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]float64(nil), m.primal...)
}

// ObjectiveValue returns the objective (including offset) from the last
// optimal solve.
func (m *Model) ObjectiveValue() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.objective
}

// Clone deep-copies the formulation so the copy can be solved
// independently; rows are shared structurally (they are immutable) while
// bounds, objective and solution state are duplicated.
func (m *Model) Clone() *Model {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := &Model{
		cols:        append([]column(nil), m.cols...),
		rows:        append([]row(nil), m.rows...),
		objOffset:   m.objOffset,
		binaries:    m.binaries,
		primal:      append([]float64(nil), m.primal...),
		objective:   m.objective,
		hasSolution: m.hasSolution,
	}

	return clone
}

// Solve runs the simplex engine on the current formulation. A zero
// deadline means no limit; a deadline in the past returns StatusTimeout
// without touching the engine. On StatusOptimal the primal vector and the
// objective value are updated; on every other status they are left as-is.
func (m *Model) Solve(deadline time.Time) Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !deadline.IsZero() && time.Now().After(deadline) {
		return StatusTimeout
	}

	status, primal, objective := m.solveLocked()
	if status == StatusOptimal {
		m.primal = primal
		m.objective = objective
		m.hasSolution = true
	}

	return status
}

// HasSolution reports whether the model currently caches an optimal
// solution consistent with its formulation.
func (m *Model) HasSolution() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.hasSolution
}

// infinite reports whether x is ±Inf.
func infinite(x float64) bool { return math.IsInf(x, 0) }
