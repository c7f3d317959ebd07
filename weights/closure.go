package weights

import (
	"errors"
	"math/bits"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// CloseTransitiveDependencies closes the precedence relation of w in
// place: whenever i must precede j and j must precede k, the entry
// W(k, i) is set to Precedes as well. Idempotent.
//
// Steps:
//  1. Build the dependency DAG: one arc u→v per W(v, u) == Precedes
//     ("u before v").
//  2. Topologically sort it; an unorderable graph means a precedence
//     cycle and fails with ErrCyclicDependencies.
//  3. Walk the order in reverse, unioning successor reachability sets, and
//     write every reachable pair back into w.
//
// Note that a closure entry overwrites whatever weight the arc carried:
// precedence dominates weight on that arc.
//
// Complexity: O(N²·N/64) for the bitset unions, O(N²) memory.
func CloseTransitiveDependencies(w *Matrix) error {
	n := w.N()

	g := simple.NewDirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	hasArcs := false
	for v := 0; v < n; v++ {
		for u := 0; u < n; u++ {
			if u != v && w.At(v, u) == Precedes {
				g.SetEdge(g.NewEdge(simple.Node(u), simple.Node(v)))
				hasArcs = true
			}
		}
	}
	if !hasArcs {
		return nil
	}

	sorted, err := topo.Sort(g)
	if err != nil {
		var cycles topo.Unorderable
		if errors.As(err, &cycles) {
			return ErrCyclicDependencies
		}

		return err
	}

	// reach[u] holds the successors of u in the closed relation.
	reach := make([]bitset, n)
	for i := range reach {
		reach[i] = newBitset(n)
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		u := int(sorted[i].ID())
		successors := g.From(sorted[i].ID())
		for successors.Next() {
			v := int(successors.Node().ID())
			reach[u].set(v)
			reach[u].union(reach[v])
		}
	}

	for u := 0; u < n; u++ {
		reach[u].forEach(func(v int) {
			w.Set(v, u, Precedes)
		})
	}

	return nil
}

// bitset is a fixed-size bit vector used for reachability unions.
type bitset []uint64

func newBitset(n int) bitset { return make(bitset, (n+63)/64) }

func (b bitset) set(i int) { b[i/64] |= 1 << (uint(i) % 64) }

func (b bitset) union(o bitset) {
	for i := range b {
		b[i] |= o[i]
	}
}

func (b bitset) forEach(fn func(i int)) {
	for w, word := range b {
		for word != 0 {
			fn(w*64 + bits.TrailingZeros64(word))
			word &= word - 1
		}
	}
}
