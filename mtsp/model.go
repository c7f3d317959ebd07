package mtsp

import (
	"math"

	"github.com/katalvlaran/mtspvrp/lp"
	"github.com/katalvlaran/mtspvrp/weights"
)

// Model is the LP relaxation of one canonical mTSP-VRP instance: the
// X tensor of A·N² binary arc variables plus the structural rows. The
// embedded lp.Model is the template every worker clones.
type Model struct {
	manager *weights.Manager
	deps    *weights.DependencyGraph

	a, n int
	mode Mode

	lpModel *lp.Model
	vars    []lp.Variable // the X tensor, row-major (a, i, j)
	maxVar  lp.Variable   // the auxiliary z, MaxObjective only

	isStart []bool
	isEnd   []bool
}

// NewModel builds the initial formulation for the canonical instance held
// by manager:
//
//   - objective: Σ W(i,j)·X(a,i,j) (Sum) or an auxiliary z bounded below
//     by every agent sum (Max);
//   - X(a, i, i) = 0 — no self arcs;
//   - unit in- and out-degree of every node across all agents;
//   - per-agent unit out-degree at the start, unit in-degree at the end,
//     and, when A > 1 or the single agent's start and end differ, the
//     artificial ring arc end_a → start_{(a+1) mod A} fixed to 1;
//   - 2-cycle elimination Σ_a X(a,u,v) + X(a,v,u) ≤ 1 for u < v.
//
// Fails with lp.ErrTooManyVariables when A·N² exceeds the column cap.
func NewModel(manager *weights.Manager, mode Mode) (*Model, error) {
	a, n := manager.A(), manager.N()

	lpModel, err := lp.NewModel(a * n * n)
	if err != nil {
		return nil, err
	}

	m := &Model{
		manager: manager,
		deps:    manager.Dependencies(),
		a:       a,
		n:       n,
		mode:    mode,
		lpModel: lpModel,
		vars:    lpModel.Variables(),
		isStart: make([]bool, n),
		isEnd:   make([]bool, n),
	}
	for _, s := range manager.StartPositions() {
		m.isStart[s] = true
	}
	for _, e := range manager.EndPositions() {
		m.isEnd[e] = true
	}

	w := manager.W()

	switch mode {
	case MaxObjective:
		z, err := lpModel.AddVariable(math.Inf(-1), math.Inf(1))
		if err != nil {
			return nil, err
		}
		m.maxVar = z
		lpModel.SetObjectiveCoefficient(z, 1)

		for agent := 0; agent < a; agent++ {
			var sum lp.Expression
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					sum.AddTerm(m.X(agent, i, j), float64(w.At(i, j)))
				}
			}
			lpModel.AddConstraint(lp.LessEq(sum, lp.Term(z, 1)))
		}
	default:
		var objective lp.Expression
		for agent := 0; agent < a; agent++ {
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					objective.AddTerm(m.X(agent, i, j), float64(w.At(i, j)))
				}
			}
		}
		lpModel.SetObjective(objective)
	}

	// No self arcs: pinned through bounds. These variables never appear
	// in a node's fixed sets, so the workers' unfix step leaves the pins
	// alone.
	for agent := 0; agent < a; agent++ {
		for i := 0; i < n; i++ {
			lpModel.SetVariableBounds(m.X(agent, i, i), 0, 0)
		}
	}

	constraints := make([]lp.Constraint, 0, 2*n+3*a+n*(n-1)/2)

	// unit degree at every node, across agents
	for node := 0; node < n; node++ {
		var in, out lp.Expression
		for agent := 0; agent < a; agent++ {
			for i := 0; i < n; i++ {
				in.AddTerm(m.X(agent, i, node), 1)
				out.AddTerm(m.X(agent, node, i), 1)
			}
		}
		constraints = append(constraints,
			lp.Equal(in, lp.Constant(1)),
			lp.Equal(out, lp.Constant(1)))
	}

	// start, end and ring arcs per agent
	start, end := manager.StartPositions(), manager.EndPositions()
	for agent := 0; agent < a; agent++ {
		var outOfStart, intoEnd lp.Expression
		for i := 0; i < n; i++ {
			outOfStart.AddTerm(m.X(agent, start[agent], i), 1)
			intoEnd.AddTerm(m.X(agent, i, end[agent]), 1)
		}
		constraints = append(constraints,
			lp.Equal(outOfStart, lp.Constant(1)),
			lp.Equal(intoEnd, lp.Constant(1)))

		if a > 1 || start[0] != end[0] {
			ring := m.X(agent, end[agent], start[(agent+1)%a])
			constraints = append(constraints,
				lp.Equal(lp.Term(ring, 1), lp.Constant(1)))
		}
	}

	// 2-cycle elimination
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			var both lp.Expression
			for agent := 0; agent < a; agent++ {
				both.AddTerm(m.X(agent, u, v), 1)
				both.AddTerm(m.X(agent, v, u), 1)
			}
			constraints = append(constraints, lp.LessEq(both, lp.Constant(1)))
		}
	}

	lpModel.AddConstraints(constraints)

	return m, nil
}

// X returns the variable for agent traversing arc i→j.
func (m *Model) X(agent, i, j int) lp.Variable {
	return m.vars[agent*m.n*m.n+i*m.n+j]
}

// coords decomposes a binary variable back into (agent, i, j).
func (m *Model) coords(v lp.Variable) (agent, i, j int) {
	id := v.ID()
	agent = id / (m.n * m.n)
	rest := id % (m.n * m.n)

	return agent, rest / m.n, rest % m.n
}

// Manager returns the canonical instance the model was built from.
func (m *Model) Manager() *weights.Manager { return m.manager }

// Mode returns the objective mode.
func (m *Model) Mode() Mode { return m.mode }

// LP returns the template LP; workers clone it, tests may inspect it.
func (m *Model) LP() *lp.Model { return m.lpModel }

// xValues snapshots the X tensor primal values of a worker's LP as one
// row-major (A, N, N) slice.
func (m *Model) xValues(local *lp.Model) []float64 {
	return local.PrimalValues()[:m.a*m.n*m.n]
}
