package mtsp

import (
	"sync"

	"github.com/katalvlaran/mtspvrp/lp"
)

// ConstraintDeque fans separated cuts out to every worker's LP clone.
// Push appends; PopToModel replays everything a worker has not seen yet,
// in append order, then trims the prefix all workers have consumed.
// Constraints are never reordered, so all models see the same row
// sequence.
type ConstraintDeque struct {
	mu            sync.Mutex
	deque         []lp.Constraint
	readPositions []int
}

// NewConstraintDeque creates a deque with one read cursor per worker.
func NewConstraintDeque(numThreads int) *ConstraintDeque {
	return &ConstraintDeque{readPositions: make([]int, numThreads)}
}

// Push appends one cut.
func (d *ConstraintDeque) Push(constraint lp.Constraint) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.deque = append(d.deque, constraint)
}

// PushAll appends cuts in order.
func (d *ConstraintDeque) PushAll(constraints []lp.Constraint) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.deque = append(d.deque, constraints...)
}

// PopToModel adds every cut pushed since tid's last call into model and
// advances tid's cursor; afterwards the prefix consumed by all workers is
// dropped and the cursors shifted down.
func (d *ConstraintDeque) PopToModel(tid int, model *lp.Model) {
	d.mu.Lock()
	defer d.mu.Unlock()

	model.AddConstraints(d.deque[d.readPositions[tid]:])
	d.readPositions[tid] = len(d.deque)

	minRead := d.readPositions[0]
	for _, position := range d.readPositions[1:] {
		if position < minRead {
			minRead = position
		}
	}
	if minRead > 0 {
		d.deque = append(d.deque[:0], d.deque[minRead:]...)
		for i := range d.readPositions {
			d.readPositions[i] -= minRead
		}
	}
}
