package mtsp

import "math"

// createPaths walks an integral X tensor into per-agent node paths: from
// each agent's start, follow the unique outgoing arc with value 1 until
// the agent's end is reached. Returns ok=false when the tensor is not a
// clean set of paths (a guard; an accepted node has already passed the
// sub-tour separator).
func (m *Model) createPaths(values []float64) ([][]int, bool) {
	n := m.n
	start, end := m.manager.StartPositions(), m.manager.EndPositions()

	paths := make([][]int, m.a)
	for agent := 0; agent < m.a; agent++ {
		path := []int{start[agent]}

		current := start[agent]
		for steps := 0; current != end[agent]; steps++ {
			if steps > n {
				return nil, false
			}
			next := -1
			for j := 0; j < n; j++ {
				if math.Abs(values[agent*n*n+current*n+j]-1) < Epsilon {
					next = j
					break
				}
			}
			if next == -1 {
				return nil, false
			}
			path = append(path, next)
			current = next
		}
		paths[agent] = path
	}

	return paths, true
}

// findFractionalVariable picks the binary variable whose value is closest
// to ½, the classic most-fractional branching rule. Returns ok=false when
// the point is integral within Epsilon.
func (m *Model) findFractionalVariable(values []float64) (index int, ok bool) {
	best := -1
	bestDist := 1.0

	for i, v := range values {
		if v < Epsilon || v > 1-Epsilon {
			continue
		}
		if d := math.Abs(v - 0.5); d < bestDist {
			best, bestDist = i, d
			if bestDist < Epsilon {
				break
			}
		}
	}

	return best, best >= 0
}
