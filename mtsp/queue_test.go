// Package mtsp_test: the concurrent queue contract — in-flight bound
// accounting, monotone global lower bound, clear semantics, branching
// pushes and the notifier lifecycle (including panics).
package mtsp_test

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/mtspvrp/lp"
	"github.com/katalvlaran/mtspvrp/mtsp"
)

// testVars hands out distinct variable handles for queue payloads.
func testVars(t *testing.T, n int) []lp.Variable {
	t.Helper()

	m, err := lp.NewModel(n)
	require.NoError(t, err)

	return m.Variables()
}

func TestQueue_ConstructorValidation(t *testing.T) {
	require.Panics(t, func() { mtsp.NewBranchAndCutQueue(0) })
	require.Panics(t, func() { mtsp.NewBranchAndCutQueue(-3) })
}

func TestQueue_InitialState(t *testing.T) {
	q := mtsp.NewBranchAndCutQueue(1)

	require.True(t, math.IsInf(q.GlobalLowerBound(), -1), "no work began yet")
	require.Zero(t, q.Size())

	sdata, notifier := q.Pop(0)
	require.Nil(t, sdata)
	require.Nil(t, notifier)

	require.Panics(t, func() { q.Pop(1) }, "thread id out of range")
	require.Panics(t, func() { q.UpdateCurrentLowerBound(0, 13) }, "nothing popped")
}

func TestQueue_PushPopRoundTrip(t *testing.T) {
	vs := testVars(t, 6)
	q := mtsp.NewBranchAndCutQueue(1)

	fixed0 := []lp.Variable{vs[1], vs[2]}
	fixed1 := []lp.Variable{vs[3]}
	q.Push(12, fixed0, fixed1)

	require.Equal(t, 12.0, q.GlobalLowerBound())
	require.Panics(t, func() { q.Push(11, nil, nil) }, "push below the global bound")

	sdata, notifier := q.Pop(0)
	require.NotNil(t, sdata)
	require.Equal(t, 12.0, sdata.LowerBound)
	require.Equal(t, fixed0, sdata.FixedTo0)
	require.Equal(t, fixed1, sdata.FixedTo1)

	// The heap is empty but the node is in flight: the bound holds.
	require.Zero(t, q.Size())
	require.Equal(t, 1, q.WorkedCount())
	require.Equal(t, 12.0, q.GlobalLowerBound())

	// An improved child goes in; the global bound stays at the in-flight
	// bound until the notifier releases it.
	q.Push(13, sdata.FixedTo0, sdata.FixedTo1)
	require.Equal(t, 12.0, q.GlobalLowerBound())

	notifier.Done()
	require.Equal(t, 13.0, q.GlobalLowerBound())
	require.Zero(t, q.WorkedCount())
}

func TestQueue_UpdateCurrentLowerBound(t *testing.T) {
	q := mtsp.NewBranchAndCutQueue(1)
	q.Push(12, nil, nil)

	sdata, notifier := q.Pop(0)
	require.NotNil(t, sdata)
	defer notifier.Done()

	require.Panics(t, func() { q.UpdateCurrentLowerBound(0, 11) }, "bound regression")

	q.UpdateCurrentLowerBound(0, 14)
	require.Equal(t, 14.0, q.GlobalLowerBound())
}

func TestQueue_NotifierIdempotentAndPanicSafe(t *testing.T) {
	q := mtsp.NewBranchAndCutQueue(1)
	q.Push(1, nil, nil)

	func() {
		defer func() { _ = recover() }()

		sdata, notifier := q.Pop(0)
		require.NotNil(t, sdata)
		defer notifier.Done()
		defer notifier.Done() // double release is harmless

		panic("worker blows up mid-node")
	}()

	require.Zero(t, q.WorkedCount(), "the deferred notifier fired despite the panic")

	sdata, _ := q.Pop(0)
	require.Nil(t, sdata, "queue drained")
}

func TestQueue_ClearAll(t *testing.T) {
	q := mtsp.NewBranchAndCutQueue(1)
	q.Push(12, nil, nil)

	q.ClearAll()
	q.ClearAll() // idempotent

	sdata, _ := q.Pop(0)
	require.Nil(t, sdata)

	// Pushes after clearing are swallowed.
	q.Push(13, nil, nil)
	q.PushBranch(13, nil, nil, testVars(t, 1)[0], nil)
	sdata, _ = q.Pop(0)
	require.Nil(t, sdata)
}

func TestQueue_PushBranchChildren(t *testing.T) {
	vs := testVars(t, 8)
	q := mtsp.NewBranchAndCutQueue(1)

	fixed0 := []lp.Variable{vs[1], vs[2]}
	fixed1 := []lp.Variable{vs[4]}
	branching := vs[3]
	recursive := []lp.Variable{vs[5]}

	q.PushBranch(12, fixed0, fixed1, branching, recursive)
	require.Equal(t, 2, q.Size())
	require.Equal(t, 12.0, q.GlobalLowerBound())

	var children []*mtsp.SData
	for i := 0; i < 2; i++ {
		sdata, notifier := q.Pop(0)
		require.NotNil(t, sdata)
		children = append(children, sdata)
		notifier.Done()
	}
	sdata, _ := q.Pop(0)
	require.Nil(t, sdata)

	// One child pins the branching variable to 0, the other to 1 (the
	// latter carrying the recursively implied zeros). Heap order between
	// equal bounds is unspecified.
	zeroChild, oneChild := children[0], children[1]
	if len(zeroChild.FixedTo1) != len(fixed1) {
		zeroChild, oneChild = oneChild, zeroChild
	}

	require.Equal(t, append(append([]lp.Variable(nil), fixed0...), branching), zeroChild.FixedTo0)
	require.Equal(t, fixed1, zeroChild.FixedTo1)

	require.Equal(t, append(append([]lp.Variable(nil), fixed0...), recursive...), oneChild.FixedTo0)
	require.Equal(t, append(append([]lp.Variable(nil), fixed1...), branching), oneChild.FixedTo1)

	// The originals were copied, not aliased.
	require.Equal(t, []lp.Variable{vs[1], vs[2]}, fixed0)
	require.Equal(t, []lp.Variable{vs[4]}, fixed1)
}

func TestQueue_GlobalBoundMonotoneWhileDraining(t *testing.T) {
	q := mtsp.NewBranchAndCutQueue(1)
	for _, lb := range []float64{1, 3, 5, 9, 1, 3} {
		q.Push(lb, nil, nil)
	}

	previous := math.Inf(-1)
	for {
		sdata, notifier := q.Pop(0)
		if sdata == nil {
			break
		}
		require.GreaterOrEqual(t, sdata.LowerBound, previous, "min-heap order")
		previous = sdata.LowerBound

		bound := q.GlobalLowerBound()
		require.GreaterOrEqual(t, bound, previous-1e-12)
		notifier.Done()
	}

	require.True(t, math.IsInf(q.GlobalLowerBound(), 1), "+∞ once fully drained")
}

// TestQueue_PopBlocksWhileInFlight: a consumer waiting on an empty heap
// must not give up while another thread still works — its children may
// yet arrive.
func TestQueue_PopBlocksWhileInFlight(t *testing.T) {
	q := mtsp.NewBranchAndCutQueue(2)
	q.Push(5, nil, nil)

	sdata, notifier := q.Pop(0)
	require.NotNil(t, sdata)

	got := make(chan *mtsp.SData, 1)
	go func() {
		blocked, blockedNotifier := q.Pop(1)
		if blockedNotifier != nil {
			blockedNotifier.Done()
		}
		got <- blocked
	}()

	select {
	case <-got:
		t.Fatal("Pop returned while a node was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	// The in-flight worker pushes a child, then finishes: the blocked
	// consumer must receive the child.
	q.Push(6, nil, nil)
	notifier.Done()

	select {
	case child := <-got:
		require.NotNil(t, child)
		require.Equal(t, 6.0, child.LowerBound)
	case <-time.After(2 * time.Second):
		t.Fatal("blocked Pop never woke up")
	}
}

// TestQueue_ConcurrentWorkers drains a small artificial search tree from
// several goroutines, checking that the global bound never regresses.
func TestQueue_ConcurrentWorkers(t *testing.T) {
	const workers = 4

	q := mtsp.NewBranchAndCutQueue(workers)
	q.Push(0, nil, nil)

	var mu sync.Mutex
	lastBound := math.Inf(-1)
	observe := func() {
		mu.Lock()
		defer mu.Unlock()

		bound := q.GlobalLowerBound()
		if bound < lastBound-1e-9 {
			t.Errorf("global lower bound regressed: %g after %g", bound, lastBound)
		}
		if bound > lastBound {
			lastBound = bound
		}
	}

	var wg sync.WaitGroup
	for tid := 0; tid < workers; tid++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			for {
				sdata, notifier := q.Pop(tid)
				if sdata == nil {
					return
				}
				observe()
				if sdata.LowerBound < 6 { // branch a few levels deep
					q.Push(sdata.LowerBound+1, nil, nil)
					q.Push(sdata.LowerBound+2, nil, nil)
				}
				notifier.Done()
				observe()
			}
		}(tid)
	}
	wg.Wait()

	require.True(t, math.IsInf(q.GlobalLowerBound(), 1))
}
