package mtsp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/mtspvrp/lp"
	"github.com/katalvlaran/mtspvrp/mtsp"
)

// newCut builds a distinct one-variable constraint for deque tests.
func newCut(v lp.Variable, bound float64) lp.Constraint {
	return lp.LessEq(lp.Term(v, 1), lp.Constant(bound))
}

func TestConstraintDeque_PerThreadCursors(t *testing.T) {
	vs := testVars(t, 4)

	modelA, err := lp.NewModel(4)
	require.NoError(t, err)
	modelB, err := lp.NewModel(4)
	require.NoError(t, err)

	d := mtsp.NewConstraintDeque(2)

	d.Push(newCut(vs[0], 1))
	d.PopToModel(0, modelA)
	require.Equal(t, 1, modelA.NumConstraints())

	d.Push(newCut(vs[1], 1))
	d.PopToModel(0, modelA)
	require.Equal(t, 2, modelA.NumConstraints(), "only the new cut is replayed")

	// Thread 1 catches up on everything at once.
	d.PopToModel(1, modelB)
	require.Equal(t, 2, modelB.NumConstraints())

	// Both cursors at the end: the deque may trim, later cuts still flow.
	d.Push(newCut(vs[2], 1))
	d.PopToModel(0, modelA)
	d.PopToModel(1, modelB)
	require.Equal(t, 3, modelA.NumConstraints())
	require.Equal(t, 3, modelB.NumConstraints())

	// Replaying with nothing new is a no-op.
	d.PopToModel(0, modelA)
	require.Equal(t, 3, modelA.NumConstraints())
}

func TestConstraintDeque_PushAllKeepsOrder(t *testing.T) {
	vs := testVars(t, 3)

	model, err := lp.NewModel(3)
	require.NoError(t, err)

	d := mtsp.NewConstraintDeque(1)
	d.PushAll([]lp.Constraint{
		newCut(vs[0], 1),
		newCut(vs[1], 2),
		newCut(vs[2], 3),
	})
	d.PopToModel(0, model)
	require.Equal(t, 3, model.NumConstraints())
}
