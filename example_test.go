package mtspvrp_test

import (
	"fmt"

	"github.com/katalvlaran/mtspvrp"
)

// Example solves a single-agent instance whose only cheap tour is the
// directed ring 0→1→2→3→0.
func Example() {
	weights := []float64{
		0, 1, 10, 10,
		10, 0, 1, 10,
		10, 10, 0, 1,
		1, 10, 10, 0,
	}

	opts := mtspvrp.DefaultOptions()
	opts.Workers = 1

	solution, code := mtspvrp.Solve(1, 4, []int{0}, []int{0}, weights, opts)

	fmt.Println("code:", code)
	fmt.Println("optimum:", solution.UpperBound)
	fmt.Println("path:", solution.Paths[0])
	// Output:
	// code: 0
	// optimum: 4
	// path: [0 1 2 3 0]
}

// Example_precedence shows the −1 sentinel: node 3 must be visited
// before node 2 by the same agent.
func Example_precedence() {
	weights := []float64{
		0, 1, 1, 1, 1,
		1, 0, 1, 1, 1,
		1, 1, 0, -1, 1, // -1: "3 before 2"
		1, 1, 1, 0, 1,
		1, 1, 1, 1, 0,
	}

	opts := mtspvrp.DefaultOptions()
	opts.Workers = 1

	solution, code := mtspvrp.Solve(1, 5, []int{0}, []int{4}, weights, opts)

	fmt.Println("code:", code)
	fmt.Println("optimum:", solution.UpperBound)
	// Output:
	// code: 0
	// optimum: 4
}
