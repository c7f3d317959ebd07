package mtsp

import (
	"container/heap"
	"fmt"
	"math"
	"sync"

	"github.com/katalvlaran/mtspvrp/lp"
)

// SData is one branch-and-cut node: the lower bound proved for it and the
// variables fixed on the way down. Produced by branching, consumed by a
// worker, discarded after processing.
type SData struct {
	LowerBound float64
	FixedTo0   []lp.Variable
	FixedTo1   []lp.Variable
}

// NodeDoneNotifier releases the claim a Pop installed: while it is alive,
// the popped node's lower bound keeps participating in the queue's global
// lower bound, covering the window in which derived children are not yet
// pushed. Done is idempotent; call it with defer so a panicking worker
// still releases its claim.
type NodeDoneNotifier struct {
	once  sync.Once
	queue *BranchAndCutQueue
	tid   int
}

// Done clears the claim and wakes waiting workers. Safe to call more
// than once; only the first call has an effect.
func (n *NodeDoneNotifier) Done() {
	n.once.Do(func() {
		n.queue.mu.Lock()
		n.queue.workedSet[n.tid] = false
		n.queue.mu.Unlock()
		n.queue.cond.Broadcast()
	})
}

// BranchAndCutQueue is the concurrent best-lower-bound work queue. It
// owns a min-heap of SData plus, per worker thread, the lower bound of
// the node that thread currently processes. The queue's global lower
// bound is the minimum over the heap root and every in-flight bound; as
// long as every push happens while the pushing worker still holds its
// notifier, that value never decreases (enforced: Push panics on a bound
// below the current global one).
type BranchAndCutQueue struct {
	mu   sync.Mutex
	cond *sync.Cond

	heap      sdataHeap
	worked    []float64
	workedSet []bool
	cleared   bool
	everPopped bool
}

// NewBranchAndCutQueue creates a queue for numThreads workers. Panics on
// a non-positive thread count (a wiring error, not a runtime condition).
func NewBranchAndCutQueue(numThreads int) *BranchAndCutQueue {
	if numThreads <= 0 {
		panic(fmt.Sprintf("mtsp: queue needs at least one thread, got %d", numThreads))
	}

	q := &BranchAndCutQueue{
		worked:    make([]float64, numThreads),
		workedSet: make([]bool, numThreads),
	}
	q.cond = sync.NewCond(&q.mu)

	return q
}

// GlobalLowerBound returns min(heap root, in-flight bounds): −∞ before
// any work began, +∞ once the queue has drained and nothing is in
// flight. Strictly non-decreasing over the life of the search.
func (q *BranchAndCutQueue) GlobalLowerBound() float64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.globalLowerBoundLocked()
}

func (q *BranchAndCutQueue) globalLowerBoundLocked() float64 {
	bound := math.Inf(1)
	if len(q.heap) > 0 {
		bound = q.heap[0].LowerBound
	}
	for tid, set := range q.workedSet {
		if set && q.worked[tid] < bound {
			bound = q.worked[tid]
		}
	}
	if math.IsInf(bound, 1) && !q.everPopped {
		return math.Inf(-1)
	}

	return bound
}

// Size returns the number of queued (not in-flight) nodes.
func (q *BranchAndCutQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.heap)
}

// WorkedCount returns the number of in-flight nodes.
func (q *BranchAndCutQueue) WorkedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	count := 0
	for _, set := range q.workedSet {
		if set {
			count++
		}
	}

	return count
}

// Pop blocks until a node is available, all work is done, or the queue is
// cleared. It returns nil exactly when the search is over for this
// worker: the queue was cleared, or the heap is empty with nothing in
// flight anywhere. On success it installs the node's bound as tid's
// in-flight bound and hands out the notifier that will release it.
func (q *BranchAndCutQueue) Pop(tid int) (*SData, *NodeDoneNotifier) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.checkThread(tid)

	for !q.cleared && len(q.heap) == 0 && q.anyWorkedLocked() {
		q.cond.Wait()
	}

	if q.cleared || len(q.heap) == 0 {
		return nil, nil
	}

	sdata := heap.Pop(&q.heap).(SData)
	q.worked[tid] = sdata.LowerBound
	q.workedSet[tid] = true
	q.everPopped = true

	return &sdata, &NodeDoneNotifier{queue: q, tid: tid}
}

// UpdateCurrentLowerBound raises tid's in-flight bound after its LP
// re-solve proved more. Requires an installed bound not above the new
// one; anything else is a bookkeeping bug and panics.
func (q *BranchAndCutQueue) UpdateCurrentLowerBound(tid int, newLowerBound float64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.checkThread(tid)
	if !q.workedSet[tid] {
		panic(fmt.Sprintf("mtsp: thread %d updates a lower bound without a popped node", tid))
	}
	if newLowerBound < q.worked[tid] {
		panic(fmt.Sprintf("mtsp: lower bound regression on thread %d: %g < %g",
			tid, newLowerBound, q.worked[tid]))
	}

	q.worked[tid] = newLowerBound
}

// Push enqueues one node. A cleared queue swallows pushes silently;
// otherwise the bound must not undercut the global lower bound.
func (q *BranchAndCutQueue) Push(lowerBound float64, fixedTo0, fixedTo1 []lp.Variable) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cleared {
		return
	}
	q.pushLocked(lowerBound, fixedTo0, fixedTo1)

	q.cond.Signal()
}

// PushBranch atomically enqueues the two children of a branching step:
// one with branchingVariable fixed to 0, one with it fixed to 1 plus the
// recursively implied zeros.
func (q *BranchAndCutQueue) PushBranch(
	lowerBound float64,
	fixedTo0, fixedTo1 []lp.Variable,
	branchingVariable lp.Variable,
	recursivelyFixedTo0 []lp.Variable,
) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cleared {
		return
	}

	childFixed0 := append(append([]lp.Variable(nil), fixedTo0...), branchingVariable)
	childFixed1 := append([]lp.Variable(nil), fixedTo1...)
	q.pushLocked(lowerBound, childFixed0, childFixed1)

	otherFixed0 := append(append([]lp.Variable(nil), fixedTo0...), recursivelyFixedTo0...)
	otherFixed1 := append(append([]lp.Variable(nil), fixedTo1...), branchingVariable)
	q.pushLocked(lowerBound, otherFixed0, otherFixed1)

	q.cond.Signal()
	q.cond.Signal()
}

func (q *BranchAndCutQueue) pushLocked(lowerBound float64, fixedTo0, fixedTo1 []lp.Variable) {
	if global := q.globalLowerBoundLocked(); lowerBound < global && !math.IsInf(global, 1) {
		panic(fmt.Sprintf("mtsp: push below the global lower bound: %g < %g", lowerBound, global))
	}

	heap.Push(&q.heap, SData{LowerBound: lowerBound, FixedTo0: fixedTo0, FixedTo1: fixedTo1})
}

// ClearAll drains the search: subsequent Pops return nil, subsequent
// Pushes are ignored; outstanding notifiers still fire normally.
// Idempotent.
func (q *BranchAndCutQueue) ClearAll() {
	q.mu.Lock()
	q.cleared = true
	q.mu.Unlock()

	q.cond.Broadcast()
}

func (q *BranchAndCutQueue) anyWorkedLocked() bool {
	for _, set := range q.workedSet {
		if set {
			return true
		}
	}

	return false
}

func (q *BranchAndCutQueue) checkThread(tid int) {
	if tid < 0 || tid >= len(q.workedSet) {
		panic(fmt.Sprintf("mtsp: thread id %d out of range [0, %d)", tid, len(q.workedSet)))
	}
}

// sdataHeap is a container/heap min-heap on SData.LowerBound.
type sdataHeap []SData

func (h sdataHeap) Len() int            { return len(h) }
func (h sdataHeap) Less(i, j int) bool  { return h[i].LowerBound < h[j].LowerBound }
func (h sdataHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *sdataHeap) Push(x interface{}) { *h = append(*h, x.(SData)) }
func (h *sdataHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]

	return x
}
