package weights

// Manager holds the canonical instance: the (possibly grown) weight
// matrix, the rebound start/end positions, the clone→original map and the
// dependency view. Construction performs the whole normalisation pipeline;
// afterwards the manager is immutable and safe to share across workers.
type Manager struct {
	w          *Matrix
	start      []int
	end        []int
	toOriginal map[int]int
	deps       *DependencyGraph
	originalN  int
}

// NewManager canonicalises the instance. raw is cloned and the clone is
// grown; raw itself is left unchanged. start and end hold one node per
// agent.
//
// Steps (order matters):
//  1. Shape validation: len(start) == len(end) ≥ 1.
//  2. Endpoint cloning: a start or end node already used by any earlier
//     endpoint gets a cloned row/column appended and the agent rebound.
//  3. Diagonal zeroing and the zero-weight ring arcs
//     end_a → start_{(a+1) mod A}.
//  4. Transitive closure of the precedence relation
//     (ErrCyclicDependencies on a cycle).
//  5. Agent/component compatibility check (ErrIncompatibleDependencies).
func NewManager(raw *Matrix, start, end []int) (*Manager, error) {
	if len(start) == 0 || len(start) != len(end) {
		return nil, ErrShapeMismatch
	}
	for a := range start {
		if start[a] < 0 || start[a] >= raw.N() || end[a] < 0 || end[a] >= raw.N() {
			return nil, ErrShapeMismatch
		}
	}

	m := &Manager{
		w:          raw.Clone(),
		start:      append([]int(nil), start...),
		end:        append([]int(nil), end...),
		toOriginal: make(map[int]int),
		originalN:  raw.N(),
	}

	a := len(start)

	inUse := make(map[int]bool)
	for i := 0; i < a; i++ {
		if s := m.start[i]; inUse[s] {
			clone := m.w.appendClone(s)
			m.start[i] = clone
			m.toOriginal[clone] = s
		} else {
			inUse[s] = true
		}

		if e := m.end[i]; inUse[e] {
			clone := m.w.appendClone(e)
			m.end[i] = clone
			m.toOriginal[clone] = e
		} else {
			inUse[e] = true
		}
	}

	for n := 0; n < m.w.N(); n++ {
		m.w.Set(n, n, 0)
	}

	for i := 0; i < a; i++ {
		m.w.Set(m.end[i], m.start[(i+1)%a], 0)
	}

	if err := CloseTransitiveDependencies(m.w); err != nil {
		return nil, err
	}

	m.deps = NewDependencyGraph(m.w)

	if err := m.checkAgentCompatibility(); err != nil {
		return nil, err
	}

	return m, nil
}

// checkAgentCompatibility verifies that no connected component of the
// dependency relation (with each agent's start–end pair linked in) claims
// two agents: such a component cannot be split into node-disjoint paths.
func (m *Manager) checkAgentCompatibility() error {
	n := m.w.N()

	adjacent := make([][]int, n)
	link := func(u, v int) {
		adjacent[u] = append(adjacent[u], v)
		adjacent[v] = append(adjacent[v], u)
	}
	for _, arc := range m.deps.Arcs() {
		link(arc[0], arc[1])
	}
	for i := range m.start {
		link(m.start[i], m.end[i])
	}

	component := make([]int, n)
	for i := range component {
		component[i] = -1
	}
	numComponents := 0
	queue := make([]int, 0, n)
	for root := 0; root < n; root++ {
		if component[root] != -1 {
			continue
		}
		component[root] = numComponents
		queue = append(queue[:0], root)
		for len(queue) > 0 {
			u := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			for _, v := range adjacent[u] {
				if component[v] == -1 {
					component[v] = numComponents
					queue = append(queue, v)
				}
			}
		}
		numComponents++
	}

	claimed := make([]int, numComponents)
	for i := range claimed {
		claimed[i] = -1
	}
	for i := range m.start {
		c := component[m.start[i]]
		if claimed[c] != -1 {
			return ErrIncompatibleDependencies
		}
		claimed[c] = i
	}

	return nil
}

// W returns the canonical weight matrix. Callers must not mutate it.
func (m *Manager) W() *Matrix { return m.w }

// StartPositions returns the canonical per-agent start nodes.
func (m *Manager) StartPositions() []int { return m.start }

// EndPositions returns the canonical per-agent end nodes.
func (m *Manager) EndPositions() []int { return m.end }

// A returns the number of agents.
func (m *Manager) A() int { return len(m.start) }

// N returns the canonical node count (original plus clones).
func (m *Manager) N() int { return m.w.N() }

// OriginalN returns the node count before cloning.
func (m *Manager) OriginalN() int { return m.originalN }

// Dependencies returns the dependency view over the closed relation.
func (m *Manager) Dependencies() *DependencyGraph { return m.deps }

// HasDependencies reports whether any precedence arc exists.
func (m *Manager) HasDependencies() bool { return m.deps.HasDependencies() }

// ToOriginal resolves a canonical index to the caller's node id.
func (m *Manager) ToOriginal(i int) int {
	if orig, ok := m.toOriginal[i]; ok {
		return orig
	}

	return i
}

// TransformPathsBack rewrites every cloned index in paths to its original
// id, in place, and returns paths.
func (m *Manager) TransformPathsBack(paths [][]int) [][]int {
	for _, path := range paths {
		for i, node := range path {
			path[i] = m.ToOriginal(node)
		}
	}

	return paths
}

// TransformTensorBack folds an (A, N, N) canonical tensor back onto the
// original node set by summing clone contributions into their original
// rows and columns on the last two axes. x is row-major with stride N per
// row and N² per agent; the result uses OriginalN strides.
func (m *Manager) TransformTensorBack(x []float64) []float64 {
	a, n, orig := m.A(), m.N(), m.originalN

	out := make([]float64, a*orig*orig)
	for agent := 0; agent < a; agent++ {
		for i := 0; i < n; i++ {
			oi := m.ToOriginal(i)
			for j := 0; j < n; j++ {
				oj := m.ToOriginal(j)
				out[agent*orig*orig+oi*orig+oj] += x[agent*n*n+i*n+j]
			}
		}
	}

	return out
}
