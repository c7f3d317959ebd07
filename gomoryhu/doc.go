// Package gomoryhu builds Gomory–Hu trees: weighted trees on the vertices
// of an undirected capacitated graph in which the minimum weight along the
// unique s–t path equals the s–t minimum cut of the original graph, for
// every vertex pair.
//
// The builder follows the classic Gomory–Hu contraction scheme. An
// intermediate tree of "contracted vertices" (sets of original vertices)
// starts as one vertex holding everything; each step removes one such
// vertex, contracts every remaining tree component of the forest into a
// single working-graph node, adds the vertex's own contents uncontracted,
// and runs one Boykov–Kolmogorov max-flow between two of those contents.
// The resulting cut splits the vertex in two, the incident tree edges are
// re-attached to whichever side holds their representative, and a new tree
// edge weighted with the cut value joins the halves. N−1 max-flows later
// every tree vertex is a singleton.
//
// Create reports each finished tree edge through a callback as soon as its
// max-flow completes, together with the two sides of the cut, and stops
// early when the callback asks it to — the mode the sub-tour separator
// uses, since the first cut below 2 is already a violated constraint.
// Build runs Create to completion and assembles a queryable Tree.
//
// The max-flow engine is deliberately Boykov–Kolmogorov on an explicit
// working graph rather than an off-the-shelf undirected min-cut: a known
// Stoer–Wagner regression (see the package tests) returns 7 instead of 6
// on an 8-vertex bridge graph.
//
// Vertices are the integers [0, N); input capacities are given in
// lower-triangular order, see Index. Complexity: N−1 max-flow calls, each
// O(V²·E) on the contracted working graph; memory O(N²) for the arena.
package gomoryhu
