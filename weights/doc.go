// Package weights normalises raw mTSP-VRP input into the canonical form
// the branch-and-cut model consumes, and maps results back.
//
// The raw input is an N×N signed weight matrix where a non-negative entry
// W(i, j) is the length of arc i→j and the sentinel −1 in W(j, i) states
// "i must be visited before j by the same agent", together with per-agent
// start and end nodes. Canonicalisation (Manager):
//
//  1. Start/end nodes shared between agents are cloned: the node's row and
//     column are appended to the matrix, the agent is rebound to the fresh
//     index and the clone→original mapping recorded.
//  2. Diagonals are zeroed and the artificial ring arcs
//     end_a → start_{(a+1) mod A} get weight 0, closing the agent paths
//     into one cycle the degree constraints can work with.
//  3. The precedence relation is transitively closed in place (−1 entries
//     added for every implied pair); a cyclic relation fails with
//     ErrCyclicDependencies.
//  4. Agents are matched to the connected components of the dependency
//     relation; two agents pinned to one component fail with
//     ErrIncompatibleDependencies.
//
// TransformPathsBack and TransformTensorBack restore the caller's node
// identifiers on output. DependencyGraph is the neighbour-lookup view over
// the closed relation used by the precedence separators and heuristics.
package weights
