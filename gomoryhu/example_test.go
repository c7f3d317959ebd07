package gomoryhu_test

import (
	"fmt"

	"github.com/katalvlaran/mtspvrp/gomoryhu"
)

// ExampleBuild constructs the Gomory–Hu tree of the triangle with edge
// capacities {0,1}=1, {0,2}=2, {1,2}=4 and queries two min cuts.
func ExampleBuild() {
	caps := make([]float64, 3)
	caps[gomoryhu.Index(0, 1)] = 1
	caps[gomoryhu.Index(0, 2)] = 2
	caps[gomoryhu.Index(1, 2)] = 4

	tree, err := gomoryhu.Build(3, caps)
	if err != nil {
		panic(err)
	}

	cut01, _ := tree.MinCut(0, 1)
	cut12, _ := tree.MinCut(1, 2)
	fmt.Println("min cut 0-1:", cut01)
	fmt.Println("min cut 1-2:", cut12)
	// Output:
	// min cut 0-1: 3
	// min cut 1-2: 5
}

// ExampleCreate_earlyStop shows the separator usage pattern: stop the
// builder at the first cut below a threshold.
func ExampleCreate_earlyStop() {
	caps := make([]float64, 6)
	caps[gomoryhu.Index(0, 1)] = 1.5
	caps[gomoryhu.Index(2, 3)] = 1.5
	caps[gomoryhu.Index(1, 2)] = 0.5

	err := gomoryhu.Create(4, caps, func(u, v int, cutSize float64, compU, compV []int) bool {
		if cutSize < 2 {
			fmt.Printf("violated cut %g between %v and %v\n", cutSize, compU, compV)

			return true // stop: one cut is enough
		}

		return false
	})
	if err != nil {
		panic(err)
	}
}
