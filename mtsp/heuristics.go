package mtsp

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/katalvlaran/mtspvrp/weights"
)

// Construction heuristics. They only warm the upper bound: a failure is
// reported, never fatal, and the branch-and-cut search stays correct
// without them.

// ErrNoFeasibleInsertion is returned when the insertion heuristic cannot
// place a node without crossing a precedence arc.
var ErrNoFeasibleInsertion = errors.New("mtsp: no feasible insertion position")

// NearestInsertion builds one feasible path per agent by cheapest
// insertion in precedence order.
//
// Steps:
//  1. Topologically sort the dependency DAG extended with one start→end
//     arc per agent; a cycle means start/end pins contradict the
//     precedences (ErrIncompatibleDependencies).
//  2. Every connected component of that relation is bound to at most one
//     agent (seeded by the agents' own start components).
//  3. Initialise paths as start→end and insert the remaining nodes in
//     topological order at the cheapest position that keeps them after
//     the last inserted node of their component, never crossing a
//     precedence sentinel arc.
//
// Returns the canonical-index paths and their total weight.
func NearestInsertion(manager *weights.Manager) ([][]int, int64, error) {
	a, n := manager.A(), manager.N()
	w := manager.W()
	deps := manager.Dependencies()
	start, end := manager.StartPositions(), manager.EndPositions()

	g := simple.NewDirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for _, arc := range deps.Arcs() {
		g.SetEdge(g.NewEdge(simple.Node(arc[0]), simple.Node(arc[1])))
	}
	for agent := 0; agent < a; agent++ {
		if start[agent] != end[agent] {
			g.SetEdge(g.NewEdge(simple.Node(start[agent]), simple.Node(end[agent])))
		}
	}

	order, err := topo.Sort(g)
	if err != nil {
		var cycles topo.Unorderable
		if errors.As(err, &cycles) {
			return nil, 0, fmt.Errorf("start/end pins contradict precedences: %w",
				weights.ErrIncompatibleDependencies)
		}

		return nil, 0, err
	}

	component, numComponents := undirectedComponents(n, deps, start, end)

	componentAgent := make([]int, numComponents)
	lastInserted := make([]int, numComponents)
	for i := range componentAgent {
		componentAgent[i] = -1
		lastInserted[i] = -1
	}
	for agent := 0; agent < a; agent++ {
		c := component[start[agent]]
		if componentAgent[c] != -1 && componentAgent[c] != agent {
			return nil, 0, weights.ErrIncompatibleDependencies
		}
		componentAgent[c] = agent
	}

	isEndpoint := make([]bool, n)
	for agent := 0; agent < a; agent++ {
		isEndpoint[start[agent]] = true
		isEndpoint[end[agent]] = true
	}

	paths := make([][]int, a)
	var cost int64
	for agent := 0; agent < a; agent++ {
		paths[agent] = []int{start[agent], end[agent]}
		cost += w.At(start[agent], end[agent])
	}

	arc := func(u, v int) (int64, bool) {
		value := w.At(u, v)

		return value, value != weights.Precedes
	}

	for _, node := range order {
		n0 := int(node.ID())
		if isEndpoint[n0] {
			continue
		}
		comp := component[n0]

		agentFirst, agentLast := 0, a-1
		if componentAgent[comp] != -1 {
			agentFirst, agentLast = componentAgent[comp], componentAgent[comp]
		}

		bestDelta := int64(0)
		bestAgent, bestPos := -1, -1
		for agent := agentFirst; agent <= agentLast; agent++ {
			path := paths[agent]

			low := 1
			if componentAgent[comp] == agent && lastInserted[comp] != -1 {
				for idx, existing := range path {
					if existing == lastInserted[comp] {
						low = idx + 1
						break
					}
				}
			}

			for i := low; i < len(path); i++ {
				oldW, okOld := arc(path[i-1], path[i])
				inW, okIn := arc(path[i-1], n0)
				outW, okOut := arc(n0, path[i])
				if !okOld || !okIn || !okOut {
					continue
				}
				delta := inW + outW - oldW
				if bestAgent == -1 || delta < bestDelta {
					bestDelta, bestAgent, bestPos = delta, agent, i
				}
			}
		}
		if bestAgent == -1 {
			return nil, 0, ErrNoFeasibleInsertion
		}

		path := paths[bestAgent]
		path = append(path, 0)
		copy(path[bestPos+1:], path[bestPos:])
		path[bestPos] = n0
		paths[bestAgent] = path

		cost += bestDelta
		componentAgent[comp] = bestAgent
		lastInserted[comp] = n0
	}

	return paths, cost, nil
}

// undirectedComponents labels nodes with the connected component of the
// dependency relation extended by the per-agent start–end links.
func undirectedComponents(n int, deps *weights.DependencyGraph, start, end []int) ([]int, int) {
	adjacent := make([][]int, n)
	link := func(u, v int) {
		adjacent[u] = append(adjacent[u], v)
		adjacent[v] = append(adjacent[v], u)
	}
	for _, arc := range deps.Arcs() {
		link(arc[0], arc[1])
	}
	for i := range start {
		if start[i] != end[i] {
			link(start[i], end[i])
		}
	}

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
			for _, v := range adjacent[u] {
				if component[v] == -1 {
					component[v] = numComponents
					stack = append(stack, v)
				}
			}
		}
		numComponents++
	}

	return component, numComponents
}

// TwoOptPaths improves each path by segment reversal, first-improvement,
// repeated until a full pass finds nothing. A reversal is admissible only
// when the segment contains no internal precedence arc (reversing would
// flip it) and none of the new arcs is a precedence sentinel.
func TwoOptPaths(paths [][]int, manager *weights.Manager) ([][]int, int64) {
	w := manager.W()
	deps := manager.Dependencies()

	arc := func(u, v int) (int64, bool) {
		value := w.At(u, v)

		return value, value != weights.Precedes
	}

	for _, path := range paths {
		improved := true
		for improved {
			improved = false
			for i := 1; i < len(path)-1 && !improved; i++ {
				for j := i + 1; j < len(path)-1; j++ {
					delta, ok := reversalDelta(path, i, j, arc)
					if !ok || delta >= 0 {
						continue
					}
					if segmentHasInternalArc(path[i:j+1], deps) {
						continue
					}
					for lo, hi := i, j; lo < hi; lo, hi = lo+1, hi-1 {
						path[lo], path[hi] = path[hi], path[lo]
					}
					improved = true
					break
				}
			}
		}
	}

	return paths, PathsCost(paths, manager)
}

// reversalDelta computes the cost change of reversing path[i..j],
// including the direction flip of every internal arc.
func reversalDelta(path []int, i, j int, arc func(u, v int) (int64, bool)) (int64, bool) {
	var oldCost, newCost int64

	add := func(total *int64, u, v int) bool {
		value, ok := arc(u, v)
		if ok {
			*total += value
		}

		return ok
	}

	if !add(&oldCost, path[i-1], path[i]) || !add(&oldCost, path[j], path[j+1]) {
		return 0, false
	}
	if !add(&newCost, path[i-1], path[j]) || !add(&newCost, path[i], path[j+1]) {
		return 0, false
	}
	for k := i; k < j; k++ {
		if !add(&oldCost, path[k], path[k+1]) {
			return 0, false
		}
		if !add(&newCost, path[k+1], path[k]) {
			return 0, false
		}
	}

	return newCost - oldCost, true
}

// segmentHasInternalArc reports whether any precedence arc links two
// nodes of the segment.
func segmentHasInternalArc(segment []int, deps *weights.DependencyGraph) bool {
	for x, u := range segment {
		for _, v := range segment[x+1:] {
			if deps.HasArc(u, v) || deps.HasArc(v, u) {
				return true
			}
		}
	}

	return false
}

// PathsCost sums arc weights per path and combines them by mode Sum; use
// PathsObjective for mode-aware evaluation.
func PathsCost(paths [][]int, manager *weights.Manager) int64 {
	w := manager.W()

	var total int64
	for _, path := range paths {
		for i := 1; i < len(path); i++ {
			total += w.At(path[i-1], path[i])
		}
	}

	return total
}

// PathsObjective evaluates paths under the given objective mode: the
// total weight for Sum, the heaviest path for Max.
func PathsObjective(paths [][]int, manager *weights.Manager, mode Mode) int64 {
	w := manager.W()

	if mode == SumObjective {
		return PathsCost(paths, manager)
	}

	var worst int64
	for i, path := range paths {
		var sum int64
		for k := 1; k < len(path); k++ {
			sum += w.At(path[k-1], path[k])
		}
		if i == 0 || sum > worst {
			worst = sum
		}
	}

	return worst
}

// pathsRespectDependencies verifies that every precedence arc (u before
// v) has u and v on the same path with u earlier.
func pathsRespectDependencies(paths [][]int, deps *weights.DependencyGraph) bool {
	agentOf := make(map[int]int)
	position := make(map[int]int)
	for agent, path := range paths {
		for idx, node := range path {
			agentOf[node] = agent
			position[node] = idx
		}
	}

	for _, arc := range deps.Arcs() {
		u, v := arc[0], arc[1]
		au, okU := agentOf[u]
		av, okV := agentOf[v]
		if !okU || !okV || au != av || position[u] >= position[v] {
			return false
		}
	}

	return true
}

// ExploitFractionalSolution tries to round the fractional X point of one
// LP solve into feasible paths: every agent greedily follows its heaviest
// admissible fractional arc (all required predecessors already visited),
// closing at its end node. Returns ok=false when the walk strands nodes
// or breaks a precedence; the caller just skips the incumbent update.
func (m *Model) ExploitFractionalSolution(values []float64) ([][]int, bool) {
	n := m.n
	start, end := m.manager.StartPositions(), m.manager.EndPositions()

	visited := make([]bool, n)
	for _, s := range start {
		visited[s] = true
	}
	for _, e := range end {
		visited[e] = true
	}

	paths := make([][]int, m.a)
	for agent := 0; agent < m.a; agent++ {
		path := []int{start[agent]}
		current := start[agent]

		for {
			best, bestValue := -1, Epsilon
			for j := 0; j < n; j++ {
				if visited[j] || m.isStart[j] || m.isEnd[j] {
					continue
				}
				if !m.predecessorsDone(j, visited) {
					continue
				}
				if v := values[agent*n*n+current*n+j]; v > bestValue {
					best, bestValue = j, v
				}
			}
			if best == -1 {
				break
			}
			visited[best] = true
			path = append(path, best)
			current = best
		}

		path = append(path, end[agent])
		paths[agent] = path
	}

	for j := 0; j < n; j++ {
		if !visited[j] {
			return nil, false
		}
	}
	if !pathsRespectDependencies(paths, m.deps) {
		return nil, false
	}

	return paths, true
}

// predecessorsDone reports whether every required predecessor of j is
// already placed.
func (m *Model) predecessorsDone(j int, visited []bool) bool {
	for _, p := range m.deps.Incoming(j) {
		if !visited[p] {
			return false
		}
	}

	return true
}
