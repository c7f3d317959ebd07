package weights

// DependencyGraph is a neighbour-lookup view over the (closed) precedence
// relation of a weight matrix: the arc u→v exists iff W(v, u) == Precedes,
// i.e. "u must be visited before v". Build it once after closure; lookups
// are O(1) (HasArc) or O(1) slice handouts (Incoming/Outgoing).
type DependencyGraph struct {
	w        *Matrix
	incoming [][]int  // incoming[v] = required predecessors of v
	outgoing [][]int  // outgoing[u] = required successors of u
	arcs     [][2]int // every (u, v) arc, row-major discovery order
}

// NewDependencyGraph indexes the precedence arcs of w. The matrix is
// referenced, not copied; it must not change afterwards.
func NewDependencyGraph(w *Matrix) *DependencyGraph {
	n := w.N()
	d := &DependencyGraph{
		w:        w,
		incoming: make([][]int, n),
		outgoing: make([][]int, n),
	}

	for v := 0; v < n; v++ {
		for u := 0; u < n; u++ {
			if u != v && w.At(v, u) == Precedes {
				d.incoming[v] = append(d.incoming[v], u)
				d.outgoing[u] = append(d.outgoing[u], v)
				d.arcs = append(d.arcs, [2]int{u, v})
			}
		}
	}

	return d
}

// N returns the number of nodes.
func (d *DependencyGraph) N() int { return len(d.incoming) }

// HasArc reports whether u must precede v.
func (d *DependencyGraph) HasArc(u, v int) bool { return u != v && d.w.At(v, u) == Precedes }

// Incoming returns the required predecessors of v. Callers must not
// mutate the returned slice.
func (d *DependencyGraph) Incoming(v int) []int { return d.incoming[v] }

// Outgoing returns the required successors of u. Callers must not mutate
// the returned slice.
func (d *DependencyGraph) Outgoing(u int) []int { return d.outgoing[u] }

// Arcs returns every precedence arc (u, v) with u before v.
func (d *DependencyGraph) Arcs() [][2]int { return d.arcs }

// HasDependencies reports whether the relation is non-empty.
func (d *DependencyGraph) HasDependencies() bool { return len(d.arcs) > 0 }
