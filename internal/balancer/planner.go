package balancer

import (
	"errors"
	"fmt"
	"math"
)

// MaxFanOut bounds accepted inputs so the searches stay trivially fast.
const MaxFanOut = math.MaxInt32

// ErrNotClean reports a size that is not expressible as 2^a*3^b.
var ErrNotClean = errors.New("size is not a clean 2^a*3^b fan-out")

// Layer is one rank of identical splitters in a layout.
type Layer struct {
	Arity     int // 2 or 3
	Splitters int // splitter count in this layer
}

// Plan describes a full splitter layout for a clean fan-out.
type Plan struct {
	Requested      int
	Size           int // next clean size >= Requested
	Layers         []Layer
	TotalSplitters int
}

// Outputs returns the number of belt ends the plan produces.
func (p Plan) Outputs() int {
	return p.Size
}

func validateFanOut(n int) error {
	if n <= 0 {
		return fmt.Errorf("fan-out must be a positive integer, got %d", n)
	}
	if n > MaxFanOut {
		return fmt.Errorf("fan-out %d exceeds the supported maximum %d", n, MaxFanOut)
	}
	return nil
}

// IsClean reports whether n is expressible as 2^a*3^b.
func IsClean(n int) bool {
	if n <= 0 {
		return false
	}
	for n%2 == 0 {
		n /= 2
	}
	for n%3 == 0 {
		n /= 3
	}
	return n == 1
}

// Factorize returns the exponents (a, b) with n = 2^a*3^b.
func Factorize(n int) (twos, threes int, err error) {
	if err := validateFanOut(n); err != nil {
		return 0, 0, err
	}
	for n%2 == 0 {
		n /= 2
		twos++
	}
	for n%3 == 0 {
		n /= 3
		threes++
	}
	if n != 1 {
		return 0, 0, ErrNotClean
	}
	return twos, threes, nil
}

// NextCleanSize returns the smallest clean size >= n. Every power of 3 up
// to the current best candidate is paired with the minimal power of 2
// that fills the remainder.
func NextCleanSize(n int) (int, error) {
	if err := validateFanOut(n); err != nil {
		return 0, err
	}

	best := 1
	for best < n {
		best *= 2
	}
	for p3 := 3; p3 < best; p3 *= 3 {
		candidate := p3
		for candidate < n {
			candidate *= 2
		}
		if candidate < best {
			best = candidate
		}
	}
	return best, nil
}

// PrevCleanSize returns the largest clean size <= n.
func PrevCleanSize(n int) (int, error) {
	if err := validateFanOut(n); err != nil {
		return 0, err
	}

	best := 1
	for p3 := 1; p3 <= n; p3 *= 3 {
		candidate := p3
		for candidate*2 <= n {
			candidate *= 2
		}
		if candidate > best {
			best = candidate
		}
		if p3 > n/3 {
			break
		}
	}
	return best, nil
}

// BuildPlan computes the cheapest splitter layout reaching the next clean
// size >= n. The search is exhaustive over orderings of the 2/3 factor
// multiset. The total is the sum of prefix products of the arities, so
// low-arity layers first always win, but the search keeps the
// minimization honest rather than hard-coding that observation.
func BuildPlan(n int) (Plan, error) {
	size, err := NextCleanSize(n)
	if err != nil {
		return Plan{}, err
	}
	twos, threes, err := Factorize(size)
	if err != nil {
		return Plan{}, err
	}

	search := &orderingSearch{memo: make(map[[2]int]searchResult)}
	arities := search.run(twos, threes)
	layers := make([]Layer, 0, len(arities))
	total := 0
	edges := 1
	for _, arity := range arities {
		layers = append(layers, Layer{Arity: arity, Splitters: edges})
		total += edges
		edges *= arity
	}

	return Plan{
		Requested:      n,
		Size:           size,
		Layers:         layers,
		TotalSplitters: total,
	}, nil
}

// orderingSearch exhaustively orders the 2/3 factor multiset, minimizing
// the total splitter count. States are memoized on the remaining factor
// counts; the layer cost scales linearly with the entry edge count, so a
// state's relative cost is independent of how it was reached.
type orderingSearch struct {
	memo map[[2]int]searchResult
}

type searchResult struct {
	first int // arity chosen at this state, 0 when done
	cost  int // total splitters from this state with one entry edge
}

func (s *orderingSearch) run(twos, threes int) []int {
	var arities []int
	for twos > 0 || threes > 0 {
		result := s.solve(twos, threes)
		arities = append(arities, result.first)
		if result.first == 2 {
			twos--
		} else {
			threes--
		}
	}
	return arities
}

func (s *orderingSearch) solve(twos, threes int) searchResult {
	if twos == 0 && threes == 0 {
		return searchResult{}
	}
	key := [2]int{twos, threes}
	if cached, ok := s.memo[key]; ok {
		return cached
	}

	best := searchResult{cost: math.MaxInt}
	if twos > 0 {
		rest := s.solve(twos-1, threes)
		if total := 1 + 2*rest.cost; total < best.cost {
			best = searchResult{first: 2, cost: total}
		}
	}
	if threes > 0 {
		rest := s.solve(twos, threes-1)
		// Ties break toward the 3-first ordering.
		if total := 1 + 3*rest.cost; total <= best.cost {
			best = searchResult{first: 3, cost: total}
		}
	}
	s.memo[key] = best
	return best
}
