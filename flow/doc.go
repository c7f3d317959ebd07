// Package flow implements the Boykov–Kolmogorov max-flow algorithm on
// small dense directed graphs.
//
// The package exists to serve the cutting-plane separators and the
// Gomory–Hu tree builder of the mtsp-vrp solver: both repeatedly ask for a
// minimum s–t cut of a support graph with at most a few hundred vertices,
// and both need the cut partition (the "colouring"), not just the flow
// value. Boykov–Kolmogorov maintains two search trees rooted at the source
// and the sink and reuses them between augmentations, which is exactly the
// access pattern these callers have; the source-side tree at termination
// is the minimum-cut source component.
//
// Graphs are dense index arenas: vertices are the integers [0, N) and the
// capacity matrix is one flat slice, so contraction-style callers can
// rebuild a working graph per call without pointer chasing.
//
//	g := flow.NewGraph(4)
//	g.AddArc(0, 1, 3)
//	g.AddArc(1, 3, 2)
//	...
//	value, sourceSide, err := flow.BoykovKolmogorov(g, 0, 3, flow.Options{})
//
// Complexity: O(E·V²·|C|) worst case as published; the dense neighbour
// scans make a single phase O(V²). All working buffers are allocated per
// call, so concurrent solves on distinct graphs are safe.
package flow
