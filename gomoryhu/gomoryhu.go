package gomoryhu

import (
	"github.com/katalvlaran/mtspvrp/flow"
)

// builder holds the arena state of one Create run. Tree vertices are
// indices into contracted/adj; they are created, never removed, and their
// contents shrink as splits move original vertices to new tree vertices.
type builder struct {
	n          int
	capacities []float64

	contracted [][]int           // tree vertex → original vertices it still holds
	adj        []map[int]float64 // tree adjacency with edge weights

	inputToWorking []int // original vertex → working-graph node, rebuilt per split
	component      []int // tree vertex → forest component id, rebuilt per split
	work           *flow.Graph
	partition      []int // scratch for the global black/white split reported to the callback
}

// Create builds the Gomory–Hu tree of the undirected graph on n vertices
// whose edge capacities are given in lower-triangular order (see Index).
// onNewEdge is invoked exactly n−1 times when n > 1, once per finished
// tree edge, unless a callback returns true to stop early. For n ≤ 1 the
// callback is never invoked.
//
// A disconnected input yields a tree whose cross-component edges carry
// weight 0, preserving the min-cut property.
func Create(n int, capacities []float64, onNewEdge EdgeCallback) error {
	if len(capacities) != capacityLen(n) {
		return ErrCapacityLength
	}
	if n <= 1 {
		return nil
	}

	all := make([]int, n)
	for i := range all {
		all[i] = i
	}

	b := &builder{
		n:              n,
		capacities:     capacities,
		contracted:     [][]int{all},
		adj:            []map[int]float64{make(map[int]float64)},
		inputToWorking: make([]int, n),
		component:      make([]int, 0, n),
		partition:      make([]int, n),
	}

	stack := []int{0}
	for len(stack) > 0 {
		splitNode := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		newNode, stop, err := b.split(splitNode, onNewEdge)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}

		if len(b.contracted[splitNode]) > 1 {
			stack = append(stack, splitNode)
		}
		if len(b.contracted[newNode]) > 1 {
			stack = append(stack, newNode)
		}
	}

	return nil
}

// split performs one Gomory–Hu step on splitNode: contract the rest of
// the tree, max-flow between two of splitNode's vertices, divide its
// contents along the cut and report the fresh tree edge.
func (b *builder) split(splitNode int, onNewEdge EdgeCallback) (newNode int, stop bool, err error) {
	// 1) Connected components of the tree with splitNode removed; each
	//    becomes one contracted working-graph node.
	numComponents := b.forestComponents(splitNode)

	contents := b.contracted[splitNode]
	workSize := numComponents + len(contents)

	// 2) Working-graph placement: components first, then splitNode's own
	//    vertices, uncontracted.
	for tv, comp := range b.component {
		if tv == splitNode {
			continue
		}
		for _, v := range b.contracted[tv] {
			b.inputToWorking[v] = comp
		}
	}
	for i, v := range contents {
		b.inputToWorking[v] = numComponents + i
	}

	// 3) Sum original capacities into the working graph, both directions:
	//    the max-flow routine takes a directed input.
	if b.work == nil || b.work.N() < workSize {
		b.work = flow.NewGraph(workSize)
	} else {
		b.work.Reset()
	}
	for u := 1; u < b.n; u++ {
		for v := 0; v < u; v++ {
			c := b.capacities[Index(u, v)]
			if c == 0 {
				continue
			}
			wu, wv := b.inputToWorking[u], b.inputToWorking[v]
			if wu != wv {
				b.work.AddEdge(wu, wv, c)
			}
		}
	}

	// 4) Min cut between two arbitrary vertices of splitNode.
	inputSource := contents[0]
	inputSink := contents[len(contents)-1]

	cutSize, sourceSide, err := flow.BoykovKolmogorov(
		b.work, b.inputToWorking[inputSource], b.inputToWorking[inputSink], flow.Options{})
	if err != nil {
		return 0, false, err
	}

	// 5) Split contents along the BK colouring: black (source side) moves
	//    to a new tree vertex, white stays.
	var black, white []int
	for _, v := range contents {
		if sourceSide[b.inputToWorking[v]] {
			black = append(black, v)
		} else {
			white = append(white, v)
		}
	}

	newNode = len(b.contracted)
	b.contracted = append(b.contracted, black)
	b.adj = append(b.adj, make(map[int]float64))
	b.contracted[splitNode] = white

	// 6) Re-attach the previously incident tree edges to whichever side
	//    holds a representative of their other endpoint.
	for neighbor, weight := range b.adj[splitNode] {
		sample := b.contracted[neighbor][0]
		if sourceSide[b.inputToWorking[sample]] {
			b.adj[newNode][neighbor] = weight
			b.adj[neighbor][newNode] = weight
			delete(b.adj[splitNode], neighbor)
			delete(b.adj[neighbor], splitNode)
		}
	}

	// 7) The new tree edge carries the cut value.
	b.adj[newNode][splitNode] = cutSize
	b.adj[splitNode][newNode] = cutSize

	// 8) Report the edge with the full cut partition of the original
	//    vertex set, source side first.
	cut := b.partition[:0]
	for v := 0; v < b.n; v++ {
		if sourceSide[b.inputToWorking[v]] {
			cut = append(cut, v)
		}
	}
	blackLen := len(cut)
	for v := 0; v < b.n; v++ {
		if !sourceSide[b.inputToWorking[v]] {
			cut = append(cut, v)
		}
	}

	stop = onNewEdge(inputSource, inputSink, cutSize, cut[:blackLen], cut[blackLen:])

	return newNode, stop, nil
}

// forestComponents labels every tree vertex except splitNode with the id
// of its connected component in the tree-minus-splitNode forest and
// returns the component count.
func (b *builder) forestComponents(splitNode int) int {
	b.component = b.component[:0]
	for range b.contracted {
		b.component = append(b.component, -1)
	}

	numComponents := 0
	queue := make([]int, 0, len(b.contracted))
	for root := range b.contracted {
		if root == splitNode || b.component[root] != -1 {
			continue
		}
		b.component[root] = numComponents
		queue = append(queue[:0], root)
		for len(queue) > 0 {
			tv := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			for next := range b.adj[tv] {
				if next != splitNode && b.component[next] == -1 {
					b.component[next] = numComponents
					queue = append(queue, next)
				}
			}
		}
		numComponents++
	}

	return numComponents
}
