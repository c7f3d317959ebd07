package weights_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/katalvlaran/mtspvrp/weights"
)

func TestCloseTransitiveDependencies_Chain(t *testing.T) {
	m := uniform(4, 2)
	m.Set(1, 0, weights.Precedes)
	m.Set(2, 1, weights.Precedes)
	m.Set(3, 2, weights.Precedes)

	require.NoError(t, weights.CloseTransitiveDependencies(m))

	// Every downstream pair is closed.
	require.Equal(t, weights.Precedes, m.At(2, 0))
	require.Equal(t, weights.Precedes, m.At(3, 0))
	require.Equal(t, weights.Precedes, m.At(3, 1))

	// Nothing points backwards.
	require.NotEqual(t, weights.Precedes, m.At(0, 3))
	require.NotEqual(t, weights.Precedes, m.At(1, 2))
}

func TestCloseTransitiveDependencies_OverwritesWeights(t *testing.T) {
	m := uniform(3, 5)
	m.Set(1, 0, weights.Precedes)
	m.Set(2, 1, weights.Precedes)
	require.Equal(t, int64(5), m.At(2, 0), "a real weight sits on the arc")

	require.NoError(t, weights.CloseTransitiveDependencies(m))
	require.Equal(t, weights.Precedes, m.At(2, 0), "precedence dominates the weight")
}

func TestCloseTransitiveDependencies_CycleFails(t *testing.T) {
	m := uniform(3, 1)
	m.Set(1, 0, weights.Precedes)
	m.Set(0, 1, weights.Precedes)

	require.ErrorIs(t, weights.CloseTransitiveDependencies(m), weights.ErrCyclicDependencies)
}

func TestCloseTransitiveDependencies_NoArcsNoop(t *testing.T) {
	m := uniform(3, 4)
	before := m.Clone()

	require.NoError(t, weights.CloseTransitiveDependencies(m))
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			require.Equal(t, before.At(i, j), m.At(i, j))
		}
	}
}

// TestCloseTransitiveDependencies_Idempotent: close(close(W)) == close(W)
// on random DAG-shaped inputs.
func TestCloseTransitiveDependencies_Idempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 8).Draw(rt, "n")

		m := weights.NewMatrix(n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i != j {
					m.Set(i, j, int64(rapid.IntRange(1, 9).Draw(rt, "w")))
				}
			}
		}
		// Arcs only from lower to higher indices: guaranteed acyclic.
		for j := 1; j < n; j++ {
			for i := 0; i < j; i++ {
				if rapid.Bool().Draw(rt, "arc") {
					m.Set(j, i, weights.Precedes)
				}
			}
		}

		if err := weights.CloseTransitiveDependencies(m); err != nil {
			rt.Fatalf("first closure: %v", err)
		}
		once := m.Clone()

		if err := weights.CloseTransitiveDependencies(m); err != nil {
			rt.Fatalf("second closure: %v", err)
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if once.At(i, j) != m.At(i, j) {
					rt.Fatalf("closure not idempotent at (%d, %d)", i, j)
				}
			}
		}

		// Closure property itself: reachable implies marked.
		for a := 0; a < n; a++ {
			for b := 0; b < n; b++ {
				for c := 0; c < n; c++ {
					if a == b || b == c || a == c {
						continue
					}
					if m.At(b, a) == weights.Precedes && m.At(c, b) == weights.Precedes {
						if m.At(c, a) != weights.Precedes {
							rt.Fatalf("missing closure: %d≺%d≺%d", a, b, c)
						}
					}
				}
			}
		}
	})
}
