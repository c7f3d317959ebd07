package mtsp

import (
	"github.com/katalvlaran/mtspvrp/flow"
	"github.com/katalvlaran/mtspvrp/gomoryhu"
	"github.com/katalvlaran/mtspvrp/lp"
)

// Separator discovers violated cutting planes in the fractional solution
// of one worker's LP. It snapshots the X tensor once; every family then
// works off that snapshot, so a separator run is consistent even while
// other workers keep solving.
//
// Families, in the order the worker tries them:
//
//	Ucut        — sub-tour cuts from the first Gomory–Hu edge below 2
//	Pi          — precedence cuts: node n cut off from the agent ends
//	              once its required predecessors are removed
//	Sigma       — symmetric: starts cut off from n without its successors
//	PiSigma     — both filters applied at once
//	TwoMatching — comb inequalities over fractional handles and teeth
type Separator struct {
	model  *Model
	values []float64 // X snapshot, row-major (a, i, j)
	eps    float64
}

// NewSeparator snapshots the current primal point of local.
func NewSeparator(model *Model, local *lp.Model) *Separator {
	return &Separator{
		model:  model,
		values: model.xValues(local),
		eps:    Epsilon,
	}
}

// value returns the snapshot entry for X(a, i, j).
func (s *Separator) value(agent, i, j int) float64 {
	n := s.model.n

	return s.values[agent*n*n+i*n+j]
}

// arcSum returns Σ_a X(a, u, v), clamped at 0 against LP noise.
func (s *Separator) arcSum(u, v int) float64 {
	sum := 0.0
	for agent := 0; agent < s.model.a; agent++ {
		sum += s.value(agent, u, v)
	}
	if sum < 0 {
		return 0
	}

	return sum
}

// Ucut separates one sub-tour elimination constraint: it builds the
// symmetrised support graph and walks the Gomory–Hu tree construction
// until the first edge with a cut below 2 appears; the cut sides S and
// S̄ then yield Σ_a Σ_{u,v on opposite sides} X(a,u,v) ≥ 2. Returns at
// most one cut (the builder stops early through the callback).
func (s *Separator) Ucut() ([]lp.Constraint, error) {
	n := s.model.n

	caps := make([]float64, n*(n-1)/2)
	for u := 1; u < n; u++ {
		for v := 0; v < u; v++ {
			caps[gomoryhu.Index(u, v)] = s.arcSum(u, v) + s.arcSum(v, u)
		}
	}

	var cuts []lp.Constraint
	err := gomoryhu.Create(n, caps, func(_, _ int, cutSize float64, compU, compV []int) bool {
		if cutSize >= 2-s.eps {
			return false
		}

		inU := make([]bool, n)
		for _, u := range compU {
			inU[u] = true
		}

		var sum lp.Expression
		for u := 0; u < n; u++ {
			for v := 0; v < n; v++ {
				if u != v && inU[u] != inU[v] {
					for agent := 0; agent < s.model.a; agent++ {
						sum.AddTerm(s.model.X(agent, u, v), 1)
					}
				}
			}
		}
		cuts = append(cuts, lp.GreaterEq(sum, lp.Constant(2)))

		return true
	})
	if err != nil {
		return nil, err
	}

	return cuts, nil
}

// Pi separates precedence cuts: for every non-end node n that has
// required predecessors, those predecessors are removed from the support
// graph; if the remaining flow from n to some agent end drops below 1,
// the crossing arcs of the resulting cut must sum to at least 1 (n's path
// to its end otherwise has to pass a predecessor, putting it after n).
func (s *Separator) Pi() ([]lp.Constraint, error) {
	var cuts []lp.Constraint

	for node := 0; node < s.model.n; node++ {
		if s.model.isEnd[node] || len(s.model.deps.Incoming(node)) == 0 {
			continue
		}

		filtered := make([]bool, s.model.n)
		for _, p := range s.model.deps.Incoming(node) {
			filtered[p] = true
		}

		for _, end := range s.model.manager.EndPositions() {
			if filtered[end] || end == node {
				continue
			}
			cut, err := s.cutConstraint(filtered, node, end)
			if err != nil {
				return nil, err
			}
			cuts = append(cuts, cut...)
		}
	}

	return cuts, nil
}

// Sigma is the successor-side mirror of Pi: required successors of n are
// removed and the flow from every agent start to n is examined.
func (s *Separator) Sigma() ([]lp.Constraint, error) {
	var cuts []lp.Constraint

	for node := 0; node < s.model.n; node++ {
		if s.model.isStart[node] || len(s.model.deps.Outgoing(node)) == 0 {
			continue
		}

		filtered := make([]bool, s.model.n)
		for _, succ := range s.model.deps.Outgoing(node) {
			filtered[succ] = true
		}

		for _, start := range s.model.manager.StartPositions() {
			if filtered[start] || start == node {
				continue
			}
			cut, err := s.cutConstraint(filtered, start, node)
			if err != nil {
				return nil, err
			}
			cuts = append(cuts, cut...)
		}
	}

	return cuts, nil
}

// PiSigma applies both filters at once: predecessors of n and successors
// of the agent end are removed before the n→end flow is examined.
func (s *Separator) PiSigma() ([]lp.Constraint, error) {
	var cuts []lp.Constraint

	for node := 0; node < s.model.n; node++ {
		if s.model.isEnd[node] || len(s.model.deps.Incoming(node)) == 0 {
			continue
		}

		for _, end := range s.model.manager.EndPositions() {
			if end == node {
				continue
			}

			filtered := make([]bool, s.model.n)
			for _, p := range s.model.deps.Incoming(node) {
				filtered[p] = true
			}
			for _, succ := range s.model.deps.Outgoing(end) {
				filtered[succ] = true
			}
			if filtered[node] || filtered[end] {
				continue
			}

			cut, err := s.cutConstraint(filtered, node, end)
			if err != nil {
				return nil, err
			}
			cuts = append(cuts, cut...)
		}
	}

	return cuts, nil
}

// cutConstraint runs a max-flow from source to sink on the support graph
// with the filtered vertices removed and, when the cut value is below 1,
// emits Σ_a Σ_{u black, v white} X(a,u,v) ≥ 1 over the surviving
// vertices.
func (s *Separator) cutConstraint(filtered []bool, source, sink int) ([]lp.Constraint, error) {
	n := s.model.n

	compact := make([]int, n)
	alive := make([]int, 0, n)
	for v := 0; v < n; v++ {
		if filtered[v] {
			compact[v] = -1
			continue
		}
		compact[v] = len(alive)
		alive = append(alive, v)
	}

	g := flow.NewGraph(len(alive))
	for _, u := range alive {
		for _, v := range alive {
			if u == v {
				continue
			}
			if c := s.arcSum(u, v); c >= s.eps {
				g.AddArc(compact[u], compact[v], c)
			}
		}
	}

	cutSize, sourceSide, err := flow.BoykovKolmogorov(g, compact[source], compact[sink], flow.Options{})
	if err != nil {
		return nil, err
	}
	if cutSize >= 1-s.eps {
		return nil, nil
	}

	var sum lp.Expression
	for _, u := range alive {
		if !sourceSide[compact[u]] {
			continue
		}
		for _, v := range alive {
			if u == v || sourceSide[compact[v]] {
				continue
			}
			for agent := 0; agent < s.model.a; agent++ {
				sum.AddTerm(s.model.X(agent, u, v), 1)
			}
		}
	}

	return []lp.Constraint{lp.GreaterEq(sum, lp.Constant(1))}, nil
}

// TwoMatching separates comb (2-matching) inequalities heuristically:
// handles are the connected components of the strictly fractional part of
// the symmetrised support, teeth are heavy disjoint edges leaving the
// handle. A handle H with k odd teeth admits at most |H| + (k−1)/2 total
// weight; anything above that is a violated comb.
func (s *Separator) TwoMatching() ([]lp.Constraint, error) {
	n := s.model.n

	sym := func(u, v int) float64 { return s.arcSum(u, v) + s.arcSum(v, u) }

	// Components of the fractional support.
	component := make([]int, n)
	for i := range component {
		component[i] = -1
	}
	numComponents := 0
	stack := make([]int, 0, n)
	for root := 0; root < n; root++ {
		if component[root] != -1 {
			continue
		}
		component[root] = numComponents
		stack = append(stack[:0], root)
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for v := 0; v < n; v++ {
				if v == u || component[v] != -1 {
					continue
				}
				if y := sym(u, v); y > s.eps && y < 1-s.eps {
					component[v] = numComponents
					stack = append(stack, v)
				}
			}
		}
		numComponents++
	}

	var cuts []lp.Constraint

	for comp := 0; comp < numComponents; comp++ {
		var handle []int
		inHandle := make([]bool, n)
		for v := 0; v < n; v++ {
			if component[v] == comp {
				handle = append(handle, v)
				inHandle[v] = true
			}
		}
		if len(handle) < 3 {
			continue
		}

		// Candidate teeth: heavy edges with exactly one endpoint inside,
		// picked greedily by weight, endpoint-disjoint.
		type tooth struct {
			u, v int
			y    float64
		}
		var candidates []tooth
		for _, u := range handle {
			for v := 0; v < n; v++ {
				if inHandle[v] {
					continue
				}
				if y := sym(u, v); y > 0.5 {
					candidates = append(candidates, tooth{u: u, v: v, y: y})
				}
			}
		}
		for i := 1; i < len(candidates); i++ { // insertion sort, descending y
			for j := i; j > 0 && candidates[j].y > candidates[j-1].y; j-- {
				candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
			}
		}
		used := make([]bool, n)
		var teeth []tooth
		for _, t := range candidates {
			if used[t.u] || used[t.v] {
				continue
			}
			used[t.u], used[t.v] = true, true
			teeth = append(teeth, t)
		}
		if len(teeth) < 3 {
			continue
		}
		if len(teeth)%2 == 0 { // keep k odd; drop the weakest
			teeth = teeth[:len(teeth)-1]
		}

		k := len(teeth)
		rhs := float64(len(handle)) + float64(k-1)/2

		lhs := 0.0
		for i, u := range handle {
			for _, v := range handle[i+1:] {
				lhs += sym(u, v)
			}
		}
		for _, t := range teeth {
			lhs += t.y
		}
		if lhs <= rhs+s.eps {
			continue
		}

		var sum lp.Expression
		addBoth := func(u, v int) {
			for agent := 0; agent < s.model.a; agent++ {
				sum.AddTerm(s.model.X(agent, u, v), 1)
				sum.AddTerm(s.model.X(agent, v, u), 1)
			}
		}
		for i, u := range handle {
			for _, v := range handle[i+1:] {
				addBoth(u, v)
			}
		}
		for _, t := range teeth {
			addBoth(t.u, t.v)
		}
		cuts = append(cuts, lp.LessEq(sum, lp.Constant(rhs)))
	}

	return cuts, nil
}
