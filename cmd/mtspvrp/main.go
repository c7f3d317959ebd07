// Command mtspvrp solves one mTSP-VRP instance from a weight-matrix file.
//
// The file may be a plain whitespace-separated N×N grid, or a TSPLIB-style
// instance (.atsp/.sop) with a DIMENSION header and an
// EDGE_WEIGHT_SECTION in FULL_MATRIX layout. −1 entries denote
// precedences ("column node before row node"), as in SOP instances.
//
// Usage:
//
//	mtspvrp -agents 2 -start 0,0 -end 0,0 -mode sum -timeout 30s br17.atsp
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/katalvlaran/mtspvrp"
)

func main() {
	var (
		agents  = flag.Int("agents", 1, "number of agents")
		startCS = flag.String("start", "0", "comma-separated start node per agent")
		endCS   = flag.String("end", "0", "comma-separated end node per agent")
		mode    = flag.String("mode", "sum", "objective: sum or max")
		timeout = flag.Duration("timeout", 0, "time limit (0 = none)")
		workers = flag.Int("workers", 0, "worker threads (0 = all CPUs)")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mtspvrp [flags] <matrix-file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	n, matrix, err := readMatrix(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "mtspvrp: %v\n", err)
		os.Exit(1)
	}

	start, err := parseIntList(*startCS, *agents)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mtspvrp: -start: %v\n", err)
		os.Exit(2)
	}
	end, err := parseIntList(*endCS, *agents)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mtspvrp: -end: %v\n", err)
		os.Exit(2)
	}

	opts := mtspvrp.DefaultOptions()
	opts.TimeLimit = *timeout
	if *workers > 0 {
		opts.Workers = *workers
	}
	if strings.EqualFold(*mode, "max") {
		opts.Mode = mtspvrp.MaxObjective
	}

	began := time.Now()
	solution, code := mtspvrp.Solve(*agents, n, start, end, matrix, opts)
	elapsed := time.Since(began)

	switch code {
	case mtspvrp.Solved:
		fmt.Printf("solved in %v: optimum = %g\n", elapsed.Round(time.Millisecond), solution.UpperBound)
	case mtspvrp.Timeout:
		fmt.Printf("timeout after %v: bounds [%g, %g]\n",
			elapsed.Round(time.Millisecond), solution.LowerBound, solution.UpperBound)
	case mtspvrp.Infeasible:
		fmt.Println("infeasible")
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "mtspvrp: invalid input (code %d)\n", code)
		os.Exit(2)
	}

	for a, path := range solution.Paths {
		fields := make([]string, len(path))
		for i, node := range path {
			fields[i] = strconv.Itoa(node)
		}
		fmt.Printf("agent %d: %s\n", a, strings.Join(fields, " "))
	}
}

// readMatrix loads a plain grid or a TSPLIB FULL_MATRIX file and returns
// the dimension and the row-major weights.
func readMatrix(path string) (int, []float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, nil, err
	}
	defer file.Close()

	var (
		values    []float64
		dimension int
		inSection bool
		sawHeader bool
	)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1<<20), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "EOF" {
			continue
		}

		if key, value, ok := splitHeader(line); ok {
			sawHeader = true
			if key == "DIMENSION" {
				dimension, err = strconv.Atoi(value)
				if err != nil {
					return 0, nil, fmt.Errorf("bad DIMENSION %q", value)
				}
			}
			continue
		}
		if strings.HasPrefix(line, "EDGE_WEIGHT_SECTION") {
			inSection = true
			continue
		}
		if sawHeader && !inSection {
			continue
		}

		for _, field := range strings.Fields(line) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("bad weight %q", field)
			}
			values = append(values, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, nil, err
	}

	// SOP files put the dimension as the section's first number.
	if dimension > 0 && len(values) == dimension*dimension+1 && int(values[0]) == dimension {
		values = values[1:]
	}

	if dimension == 0 {
		for dimension*dimension < len(values) {
			dimension++
		}
	}
	if dimension*dimension != len(values) {
		return 0, nil, fmt.Errorf("matrix is %d values, not a %d×%d grid", len(values), dimension, dimension)
	}

	return dimension, values, nil
}

// splitHeader parses "KEY : value" TSPLIB header lines.
func splitHeader(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	if key == "" || strings.ContainsAny(key, "0123456789-.") {
		return "", "", false
	}

	return strings.ToUpper(key), strings.TrimSpace(line[idx+1:]), true
}

// parseIntList parses a comma-separated list of exactly count ints.
func parseIntList(s string, count int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != count {
		return nil, fmt.Errorf("want %d values, got %d", count, len(parts))
	}
	out := make([]int, count)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}
