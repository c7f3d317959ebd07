package mtsp

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/mtspvrp/lp"
)

// BranchAndCutSolve runs the parallel branch-and-cut search and returns
// the shared Result with the final bounds and the best paths (canonical
// indices; the caller maps them back through the weights.Manager).
//
// Orchestration:
//  1. Seed the upper bound with the nearest-insertion tour (plus 2-opt)
//     when heuristics are enabled.
//  2. Push the root node and start Options.Workers workers, each owning a
//     clone of the template LP.
//  3. Workers drain the queue (see worker.run); the search ends when the
//     queue is empty with nothing in flight, the bounds cross, the
//     deadline passes or ctx is cancelled.
//  4. The queue's final global lower bound (+∞ on a complete drain) is
//     folded into the result, clamped at the upper bound.
func (m *Model) BranchAndCutSolve(ctx context.Context, opts Options) (*Result, error) {
	opts.normalize()

	result := NewResult()

	if opts.EnableHeuristics {
		if paths, _, err := NearestInsertion(m.manager); err == nil {
			paths, _ = TwoOptPaths(paths, m.manager)
			if pathsRespectDependencies(paths, m.deps) {
				result.UpdateUpperBound(float64(PathsObjective(paths, m.manager, m.mode)), paths)
			}
		}
	}

	queue := NewBranchAndCutQueue(opts.Workers)
	deque := NewConstraintDeque(opts.Workers)
	queue.Push(math.Inf(-1), nil, nil)

	var deadline time.Time
	if opts.TimeLimit > 0 {
		deadline = time.Now().Add(opts.TimeLimit)
	}

	group, ctx := errgroup.WithContext(ctx)
	for tid := 0; tid < opts.Workers; tid++ {
		w := &worker{
			model:      m,
			local:      m.lpModel.Clone(),
			tid:        tid,
			queue:      queue,
			deque:      deque,
			result:     result,
			deadline:   deadline,
			heuristics: opts.EnableHeuristics,
		}
		group.Go(func() error { return w.run(ctx) })
	}
	err := group.Wait()

	result.UpdateLowerBound(queue.GlobalLowerBound())

	return result, err
}

// worker is one branch-and-cut thread: a thread id, a private LP clone
// and the shared coordination state.
type worker struct {
	model      *Model
	local      *lp.Model
	tid        int
	queue      *BranchAndCutQueue
	deque      *ConstraintDeque
	result     *Result
	deadline   time.Time
	heuristics bool

	// prevFixed remembers every variable this worker pinned at the node it
	// processed last, so the next node starts from clean [0, 1] bounds.
	prevFixed []lp.Variable
}

// run is the worker loop: pop → solve → exploit/cut/branch → repeat, until
// the queue hands out nil. Deadline and bound-crossing checks run once per
// iteration; both drain the queue for every worker via ClearAll.
func (w *worker) run(ctx context.Context) error {
	for {
		if w.pastDeadline() {
			w.result.SetTimeoutHit()
			w.queue.ClearAll()

			return nil
		}
		if err := ctx.Err(); err != nil {
			w.queue.ClearAll()

			return err
		}
		if w.result.HaveBoundsCrossed() {
			w.queue.ClearAll()

			return nil
		}

		sdata, notifier := w.queue.Pop(w.tid)
		if sdata == nil {
			return nil
		}

		w.processNode(sdata, notifier)
	}
}

func (w *worker) pastDeadline() bool {
	return !w.deadline.IsZero() && time.Now().After(w.deadline)
}

// processNode handles one popped node. The notifier is released when the
// node's children (if any) are already pushed, keeping the global lower
// bound covered throughout; the defer also fires on panic.
func (w *worker) processNode(sdata *SData, notifier *NodeDoneNotifier) {
	defer notifier.Done()

	// 1) Catch up on cuts separated by any worker since our last pop.
	w.deque.PopToModel(w.tid, w.local)

	// 2) Reset the previous node's pins, apply this node's.
	for _, v := range w.prevFixed {
		w.local.SetVariableBounds(v, 0, 1)
	}
	w.prevFixed = w.prevFixed[:0]

	fixedTo1 := make(map[int]bool, len(sdata.FixedTo1))
	for _, v := range sdata.FixedTo0 {
		w.local.SetVariableBounds(v, 0, 0)
		w.prevFixed = append(w.prevFixed, v)
	}
	for _, v := range sdata.FixedTo1 {
		w.local.SetVariableBounds(v, 1, 1)
		w.prevFixed = append(w.prevFixed, v)
		fixedTo1[v.ID()] = true
	}

	// 3) Degree propagation from the 1-pins; a contradiction prunes the
	//    node outright.
	recursivelyFixed0, conflict := w.propagate(sdata, fixedTo1)
	if conflict {
		return
	}
	for _, v := range recursivelyFixed0 {
		w.local.SetVariableBounds(v, 0, 0)
		w.prevFixed = append(w.prevFixed, v)
	}

	// 4) Solve the LP.
	switch w.local.Solve(w.deadline) {
	case lp.StatusOptimal:
		// continue below
	case lp.StatusTimeout:
		w.result.SetTimeoutHit()
		w.queue.ClearAll()

		return
	default:
		// Infeasible under the pins, or an engine failure: either way the
		// node is abandoned, the search stays sound.
		return
	}

	// 5) Integral weights: the true optimum below this node is at least
	//    the rounded-up objective.
	currentLowerBound := math.Ceil(w.local.ObjectiveValue() - Epsilon)
	if currentLowerBound < sdata.LowerBound {
		currentLowerBound = sdata.LowerBound
	}

	// 6) Publish and prune.
	w.queue.UpdateCurrentLowerBound(w.tid, currentLowerBound)
	w.result.UpdateLowerBound(w.queue.GlobalLowerBound())

	if currentLowerBound >= w.result.UpperBound() {
		return
	}

	values := w.model.xValues(w.local)

	// 7) Try to round the fractional point into an incumbent.
	if w.heuristics {
		if paths, ok := w.model.ExploitFractionalSolution(values); ok {
			paths, _ = TwoOptPaths(paths, w.model.manager)
			if pathsRespectDependencies(paths, w.model.deps) {
				w.result.UpdateUpperBound(
					float64(PathsObjective(paths, w.model.manager, w.model.mode)), paths)
			}
			if currentLowerBound >= w.result.UpperBound() {
				return
			}
		}
	}

	// 8) Separation: the first family that produces cuts wins. The cuts
	//    travel through the deque (PopToModel pulls our own cuts into our
	//    LP without duplication) and the node is re-enqueued unchanged.
	cuts := w.separate()
	if len(cuts) > 0 {
		w.deque.PushAll(cuts)
		w.deque.PopToModel(w.tid, w.local)
		w.queue.Push(currentLowerBound, sdata.FixedTo0, sdata.FixedTo1)

		return
	}

	// 9) Branch, or accept an integral point as the new incumbent.
	fractionalIndex, fractional := w.model.findFractionalVariable(values)
	if !fractional {
		if paths, ok := w.model.createPaths(values); ok {
			w.result.UpdateUpperBound(currentLowerBound, paths)
		}

		return
	}

	w.queue.PushBranch(
		currentLowerBound,
		sdata.FixedTo0, sdata.FixedTo1,
		w.model.vars[fractionalIndex],
		recursivelyFixed0)
}

// propagate derives the zeros implied by the node's 1-pins: a used arc
// (a, i, j) forbids every other arc out of i and into j for agent a and
// the same arc for every other agent. A derived zero colliding with a
// 1-pin proves the node infeasible.
func (w *worker) propagate(sdata *SData, fixedTo1 map[int]bool) ([]lp.Variable, bool) {
	m := w.model
	seen := make(map[int]bool)

	var derived []lp.Variable
	add := func(v lp.Variable) bool {
		id := v.ID()
		if fixedTo1[id] {
			return false
		}
		if !seen[id] {
			seen[id] = true
			derived = append(derived, v)
		}

		return true
	}

	for _, v := range sdata.FixedTo1 {
		agent, i, j := m.coords(v)
		for k := 0; k < m.n; k++ {
			if k != j && !add(m.X(agent, i, k)) {
				return nil, true
			}
			if k != i && !add(m.X(agent, k, j)) {
				return nil, true
			}
		}
		for other := 0; other < m.a; other++ {
			if other != agent && !add(m.X(other, i, j)) {
				return nil, true
			}
		}
	}

	return derived, false
}

// separate runs the cut families in their fixed order and returns the
// first non-empty batch. A family that fails with an error is skipped and
// the next one is tried; when no family yields cuts the node is branched.
func (w *worker) separate() []lp.Constraint {
	separator := NewSeparator(w.model, w.local)

	if cuts, err := separator.Ucut(); err == nil && len(cuts) > 0 {
		return cuts
	}
	if w.model.manager.HasDependencies() {
		if cuts, err := separator.Pi(); err == nil && len(cuts) > 0 {
			return cuts
		}
		if cuts, err := separator.Sigma(); err == nil && len(cuts) > 0 {
			return cuts
		}
		if cuts, err := separator.PiSigma(); err == nil && len(cuts) > 0 {
			return cuts
		}
	}
	if cuts, err := separator.TwoMatching(); err == nil && len(cuts) > 0 {
		return cuts
	}

	return nil
}
