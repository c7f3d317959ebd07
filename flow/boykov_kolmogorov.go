package flow

// Boykov–Kolmogorov max-flow: two search trees S (rooted at the source)
// and T (rooted at the sink) grow toward each other; when they touch, the
// bridging path is augmented and the nodes whose parent arc saturated are
// re-adopted instead of rebuilding the trees from scratch.
//
// Steps per iteration:
//  1. grow    — expand the trees from active nodes until they meet (O(V²)).
//  2. augment — push the bottleneck along source→…→p→q→…→sink, collecting
//     orphans whose parent arc saturated.
//  3. adopt   — find each orphan a new parent within its tree (origin
//     verified back to a terminal) or free it and re-activate neighbours.
//
// Terminates when no active node remains; the source tree then equals the
// set of vertices reachable from the source in the residual graph, i.e.
// the source side of a minimum cut.

// tree labels for bkState.tree.
const (
	treeNone uint8 = iota
	treeS
	treeT
)

// bkState bundles the per-call working buffers.
type bkState struct {
	n      int
	eps    float64
	res    []float64 // residual capacities, res[u*n+v]
	tree   []uint8
	parent []int // parent in the search tree, −1 at roots and free nodes
	active []int // FIFO of potentially growable nodes
	orphan []int // LIFO of nodes to re-adopt
}

// BoykovKolmogorov computes the maximum flow from source to sink in g and
// returns the flow value together with the source side of an induced
// minimum cut (sourceSide[u] is true iff u ends up in the source tree).
// The input graph is not modified.
func BoykovKolmogorov(g *Graph, source, sink int, opts Options) (maxFlow float64, sourceSide []bool, err error) {
	opts.normalize()

	if source < 0 || source >= g.n {
		return 0, nil, ErrSourceNotFound
	}
	if sink < 0 || sink >= g.n {
		return 0, nil, ErrSinkNotFound
	}
	if source == sink {
		return 0, nil, ErrSourceIsSink
	}
	for u := 0; u < g.n; u++ {
		for v := 0; v < g.n; v++ {
			if c := g.cap[u*g.n+v]; c < 0 {
				return 0, nil, ArcError{From: u, To: v, Cap: c}
			}
		}
	}

	s := &bkState{
		n:      g.n,
		eps:    opts.Epsilon,
		res:    append([]float64(nil), g.cap...),
		tree:   make([]uint8, g.n),
		parent: make([]int, g.n),
		active: make([]int, 0, g.n),
	}
	for u := range s.parent {
		s.parent[u] = -1
	}
	s.tree[source] = treeS
	s.tree[sink] = treeT
	s.active = append(s.active, source, sink)

	for {
		p, q, found := s.grow()
		if !found {
			break
		}
		maxFlow += s.augment(p, q, source, sink)
		s.adopt(source, sink)
	}

	sourceSide = make([]bool, g.n)
	for u := range sourceSide {
		sourceSide[u] = s.tree[u] == treeS
	}

	return maxFlow, sourceSide, nil
}

// residualToward reports the usable residual capacity when the tree of p
// considers q: S-tree arcs point away from the source, T-tree arcs point
// toward the sink.
func (s *bkState) residualToward(p, q int) float64 {
	if s.tree[p] == treeS {
		return s.res[p*s.n+q]
	}

	return s.res[q*s.n+p]
}

// grow expands the trees from the active queue. Returns a bridging pair
// (p in S, q in T after normalization) or found=false when the queue
// drains, which terminates the algorithm.
func (s *bkState) grow() (int, int, bool) {
	for len(s.active) > 0 {
		p := s.active[0]
		if s.tree[p] == treeNone { // freed while queued
			s.active = s.active[1:]
			continue
		}
		for q := 0; q < s.n; q++ {
			if q == p || s.residualToward(p, q) <= s.eps {
				continue
			}
			switch s.tree[q] {
			case treeNone:
				s.tree[q] = s.tree[p]
				s.parent[q] = p
				s.active = append(s.active, q)
			case s.tree[p]:
				// same tree, nothing to do
			default:
				// Trees touch: orient the pair so p is on the source side.
				if s.tree[p] == treeS {
					return p, q, true
				}

				return q, p, true
			}
		}
		s.active = s.active[1:]
	}

	return 0, 0, false
}

// augment pushes the bottleneck along source→…→p →q→…→sink and returns
// the amount pushed. Parent arcs that saturate orphan their child node.
func (s *bkState) augment(p, q, source, sink int) float64 {
	bottleneck := s.res[p*s.n+q]

	for x := p; x != source; x = s.parent[x] {
		if r := s.res[s.parent[x]*s.n+x]; r < bottleneck {
			bottleneck = r
		}
	}
	for x := q; x != sink; x = s.parent[x] {
		if r := s.res[x*s.n+s.parent[x]]; r < bottleneck {
			bottleneck = r
		}
	}

	s.push(p, q, bottleneck)
	for x := p; x != source; {
		up := s.parent[x]
		s.push(up, x, bottleneck)
		if s.res[up*s.n+x] <= s.eps {
			s.parent[x] = -1
			s.orphan = append(s.orphan, x)
		}
		x = up
	}
	for x := q; x != sink; {
		down := s.parent[x]
		s.push(x, down, bottleneck)
		if s.res[x*s.n+down] <= s.eps {
			s.parent[x] = -1
			s.orphan = append(s.orphan, x)
		}
		x = down
	}

	return bottleneck
}

// push moves amount of flow along u→v in the residual graph.
func (s *bkState) push(u, v int, amount float64) {
	s.res[u*s.n+v] -= amount
	s.res[v*s.n+u] += amount
}

// rooted reports whether x's parent chain reaches the terminal of its
// tree. Orphaned ancestors (parent −1 without being the terminal) break
// the chain.
func (s *bkState) rooted(x, source, sink int) bool {
	for s.parent[x] != -1 {
		x = s.parent[x]
	}

	return x == source || x == sink
}

// adopt re-parents every orphan within its own tree, or frees it and
// re-activates the neighbours that may want to re-grow over it.
func (s *bkState) adopt(source, sink int) {
	for len(s.orphan) > 0 {
		x := s.orphan[len(s.orphan)-1]
		s.orphan = s.orphan[:len(s.orphan)-1]
		tx := s.tree[x]

		found := false
		for q := 0; q < s.n && !found; q++ {
			if q == x || s.tree[q] != tx {
				continue
			}
			if s.residualToward(q, x) <= s.eps { // arc must run q→x in tree direction
				continue
			}
			if s.rooted(q, source, sink) {
				s.parent[x] = q
				found = true
			}
		}
		if found {
			continue
		}

		// No parent available: free x, orphan its children, re-activate
		// same-tree neighbours that could reach it.
		for q := 0; q < s.n; q++ {
			if q == x || s.tree[q] != tx {
				continue
			}
			if s.parent[q] == x {
				s.parent[q] = -1
				s.orphan = append(s.orphan, q)
			}
			if s.residualToward(q, x) > s.eps {
				s.active = append(s.active, q)
			}
		}
		s.tree[x] = treeNone
	}
}
