// Package gomoryhu_test checks the tree builder against hand-verified
// min-cut matrices, the callback contract (count, partition, early stop)
// and, property-based, against brute-force max-flow on random graphs.
package gomoryhu_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/katalvlaran/mtspvrp/flow"
	"github.com/katalvlaran/mtspvrp/gomoryhu"
)

// buildCaps assembles the lower-triangular capacity slice from an edge map.
func buildCaps(n int, edges map[[2]int]float64) []float64 {
	caps := make([]float64, n*(n-1)/2)
	for e, w := range edges {
		caps[gomoryhu.Index(e[0], e[1])] += w
	}

	return caps
}

// checkTree runs Create, validating every callback invocation against the
// expected min-cut matrix, then rebuilds the tree and cross-checks every
// pair via MinCut. This mirrors the reference harness for the original
// algorithm.
func checkTree(t *testing.T, n int, edges map[[2]int]float64, expected [][]float64) {
	t.Helper()

	caps := buildCaps(n, edges)

	calls := 0
	err := gomoryhu.Create(n, caps, func(u, v int, cutSize float64, compU, compV []int) bool {
		calls++

		require.NotEqual(t, u, v)
		require.Len(t, compU, n-len(compV))
		require.InDelta(t, expected[u][v], cutSize, 1e-9)
		require.Contains(t, compU, u)
		require.Contains(t, compV, v)

		return false
	})
	require.NoError(t, err)

	wantCalls := n - 1
	if n <= 1 {
		wantCalls = 0
	}
	require.Equal(t, wantCalls, calls, "callback invocation count")

	tree, err := gomoryhu.Build(n, caps)
	require.NoError(t, err)
	require.Len(t, tree.Edges(), wantCalls)

	for s := 0; s < n; s++ {
		for tt := 0; tt < n; tt++ {
			if s == tt {
				continue
			}
			cut, err := tree.MinCut(s, tt)
			require.NoError(t, err)
			require.InDelta(t, expected[s][tt], cut, 1e-9, "min cut %d-%d", s, tt)
		}
	}
}

func TestCreate_EmptyAndSingleNode(t *testing.T) {
	for _, n := range []int{0, 1} {
		err := gomoryhu.Create(n, nil, func(int, int, float64, []int, []int) bool {
			t.Fatalf("callback must not fire for n=%d", n)

			return false
		})
		require.NoError(t, err)
	}
}

func TestCreate_CapacityLength(t *testing.T) {
	err := gomoryhu.Create(3, make([]float64, 2), func(int, int, float64, []int, []int) bool { return false })
	require.ErrorIs(t, err, gomoryhu.ErrCapacityLength)
}

func TestCreate_TwoNodes(t *testing.T) {
	checkTree(t, 2,
		map[[2]int]float64{{0, 1}: 17},
		[][]float64{{0, 17}, {17, 0}})
}

func TestCreate_TwoNodesDisjoint(t *testing.T) {
	checkTree(t, 2, nil, [][]float64{{0, 0}, {0, 0}})
}

func TestCreate_FourNodesDisjoint(t *testing.T) {
	expected := [][]float64{
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	checkTree(t, 4, nil, expected)
}

func TestCreate_K3(t *testing.T) {
	edges := map[[2]int]float64{{0, 1}: 1, {0, 2}: 2, {1, 2}: 4}
	expected := [][]float64{
		{0, 3, 3},
		{3, 0, 5},
		{3, 5, 0},
	}
	checkTree(t, 3, edges, expected)
}

func TestCreate_K4(t *testing.T) {
	edges := map[[2]int]float64{
		{0, 1}: 1, {0, 2}: 2, {0, 3}: 4,
		{1, 2}: 4, {1, 3}: 5, {2, 3}: 2,
	}
	expected := [][]float64{
		{0, 7, 7, 7},
		{7, 0, 8, 10},
		{7, 8, 0, 8},
		{7, 10, 8, 0},
	}
	checkTree(t, 4, edges, expected)
}

func TestCreate_WikipediaExample(t *testing.T) {
	edges := map[[2]int]float64{
		{0, 1}: 1, {0, 2}: 7, {1, 3}: 3,
		{1, 4}: 2, {1, 2}: 1, {2, 4}: 4,
		{3, 4}: 1, {3, 5}: 6, {4, 5}: 2,
	}
	expected := [][]float64{
		{0, 6, 8, 6, 6, 6},
		{6, 0, 6, 6, 7, 6},
		{8, 6, 0, 6, 6, 6},
		{6, 6, 6, 0, 6, 8},
		{6, 7, 6, 6, 0, 6},
		{6, 6, 6, 8, 6, 0},
	}
	checkTree(t, 6, edges, expected)
}

func TestCreate_LectureExample(t *testing.T) {
	edges := map[[2]int]float64{
		{0, 1}: 2, {0, 2}: 4, {0, 6}: 1,
		{1, 2}: 6, {1, 3}: 11,
		{2, 4}: 9,
		{3, 4}: 7, {3, 6}: 2,
		{4, 5}: 9, {4, 6}: 3, {4, 7}: 1,
		{5, 7}: 8,
		{6, 7}: 9, {6, 8}: 4,
		{7, 8}: 3,
	}
	expected := [][]float64{
		{0, 7, 7, 7, 7, 7, 7, 7, 7},
		{7, 0, 17, 19, 17, 16, 15, 15, 7},
		{7, 17, 0, 17, 18, 16, 15, 15, 7},
		{7, 19, 17, 0, 17, 16, 15, 15, 7},
		{7, 17, 18, 17, 0, 16, 15, 15, 7},
		{7, 16, 16, 16, 16, 0, 15, 15, 7},
		{7, 15, 15, 15, 15, 15, 0, 18, 7},
		{7, 15, 15, 15, 15, 15, 18, 0, 7},
		{7, 7, 7, 7, 7, 7, 7, 7, 0},
	}
	checkTree(t, 9, edges, expected)
}

func TestCreate_TwoConnectedComponents(t *testing.T) {
	edges := map[[2]int]float64{{0, 1}: 1, {2, 3}: 1}
	expected := [][]float64{
		{0, 1, 0, 0},
		{1, 0, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
	}
	checkTree(t, 4, edges, expected)
}

// TestCreate_StoerWagnerRegression pins the behaviour that motivated the
// Boykov–Kolmogorov backend: on this 8-vertex bridge graph a long-standing
// Stoer–Wagner implementation bug reported the 0–4 cut as 7 instead of 6.
func TestCreate_StoerWagnerRegression(t *testing.T) {
	pairs := [][2]int{
		{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}, {4, 5},
		{4, 6}, {4, 7}, {5, 6}, {5, 7}, {6, 7}, {0, 4},
	}
	ws := []float64{3, 3, 3, 2, 2, 2, 3, 3, 3, 2, 2, 2, 6}

	edges := make(map[[2]int]float64, len(pairs))
	for i, p := range pairs {
		edges[p] = ws[i]
	}

	tree, err := gomoryhu.Build(8, buildCaps(8, edges))
	require.NoError(t, err)
	require.Len(t, tree.Edges(), 7)

	cut, err := tree.MinCut(0, 4)
	require.NoError(t, err)
	require.Equal(t, 6.0, cut, "the Stoer-Wagner bug produced 7 here")
}

func TestCreate_EarlyStop(t *testing.T) {
	edges := map[[2]int]float64{
		{0, 1}: 1, {0, 2}: 2, {0, 3}: 4,
		{1, 2}: 4, {1, 3}: 5, {2, 3}: 2,
	}

	calls := 0
	err := gomoryhu.Create(4, buildCaps(4, edges), func(int, int, float64, []int, []int) bool {
		calls++

		return true
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls, "builder must stop after the first stop request")
}

// bruteMinCut computes the s–t min cut directly with one max-flow on the
// full graph, the oracle for the property test.
func bruteMinCut(n int, caps []float64, s, tt int) float64 {
	g := flow.NewGraph(n)
	for u := 1; u < n; u++ {
		for v := 0; v < u; v++ {
			if c := caps[gomoryhu.Index(u, v)]; c > 0 {
				g.AddEdge(u, v, c)
			}
		}
	}
	value, _, _ := flow.BoykovKolmogorov(g, s, tt, flow.Options{})

	return value
}

// TestCreate_GomoryHuProperty: on random small graphs, the minimum edge
// weight along every s–t tree path equals the true s–t min cut.
func TestCreate_GomoryHuProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 7).Draw(rt, "n")
		caps := make([]float64, n*(n-1)/2)
		for i := range caps {
			caps[i] = float64(rapid.IntRange(0, 9).Draw(rt, "cap"))
		}

		tree, err := gomoryhu.Build(n, caps)
		if err != nil {
			rt.Fatalf("Build: %v", err)
		}
		if len(tree.Edges()) != n-1 {
			rt.Fatalf("tree has %d edges, want %d", len(tree.Edges()), n-1)
		}

		for s := 0; s < n; s++ {
			for u := s + 1; u < n; u++ {
				byTree, err := tree.MinCut(s, u)
				if err != nil {
					rt.Fatalf("MinCut: %v", err)
				}
				byFlow := bruteMinCut(n, caps, s, u)
				if diff := byTree - byFlow; diff > 1e-9 || diff < -1e-9 {
					rt.Fatalf("min cut %d-%d: tree %g, flow %g", s, u, byTree, byFlow)
				}
			}
		}
	})
}
