package hptt

import "sort"

// SelectionMethod controls how many candidate loop orders (and, via
// selector.go, how many candidate parallelism strategies) CreatePlan is
// willing to consider before committing to a Plan. It mirrors the
// original engine's four selection tiers.
type SelectionMethod int

const (
	// Estimate takes the single heuristically-best loop order with no
	// timed trials; cheapest to plan, least likely to be optimal.
	Estimate SelectionMethod = iota
	// Measure times a small handful of heuristically-ranked candidates.
	Measure
	// Patient times a larger candidate pool within the timing budget.
	Patient
	// Crazy exhaustively enumerates loop orders when the outer-axis
	// count keeps d! within crazyPermutationCap, and otherwise behaves
	// like Patient.
	Crazy
)

func (m SelectionMethod) String() string {
	switch m {
	case Estimate:
		return "estimate"
	case Measure:
		return "measure"
	case Patient:
		return "patient"
	case Crazy:
		return "crazy"
	default:
		return "unknown"
	}
}

// crazyPermutationCap bounds exhaustive enumeration under Crazy to 8! =
// 40320, per the Open Question decision recorded in the design notes:
// above 8 outer axes, Crazy degrades to Patient's bounded sample
// rather than enumerating a factorial that would dominate planning time.
const crazyPermutationCap = 40320

// measureCandidateCap and patientCandidateCap bound how many loop orders
// Measure and Patient are willing to time.
const (
	measureCandidateCap = 8
	patientCandidateCap = 32
)

// strideMetric is the larger of an axis's A-side and B-side element
// stride, the cost loopCostHeuristic reasons about: an axis with a
// large stride on either operand causes a cache-line jump whenever its
// loop index advances.
func strideMetric(desc *Descriptor, axis int) int {
	a := desc.LDA[axis]
	b := desc.LDB[desc.Perm[axis]]
	if a > b {
		return a
	}
	return b
}

// loopCostHeuristic scores a candidate outer-axis order: each axis's
// stride metric is weighted by its position, with weight 1 at the end of
// order (next to the tile step) and four times more per level toward the
// start, so the outermost axis carries the heaviest weight. Lower is
// better.
func loopCostHeuristic(desc *Descriptor, order []int) float64 {
	cost := 0.0
	weight := 1.0
	for p := len(order) - 1; p >= 0; p-- {
		cost += weight * float64(strideMetric(desc, order[p]))
		weight *= 4
	}
	return cost
}

// heuristicOrder places axes by ascending stride metric closest to the
// tile step (end of the returned order) and descending stride metric
// outermost (start). It orders by sorting alone and does not evaluate
// loopCostHeuristic.
func heuristicOrder(desc *Descriptor, axes []int) []int {
	sorted := append([]int(nil), axes...)
	sort.Slice(sorted, func(i, j int) bool {
		return strideMetric(desc, sorted[i]) < strideMetric(desc, sorted[j])
	})
	order := make([]int, len(sorted))
	for i, a := range sorted {
		order[len(sorted)-1-i] = a
	}
	return order
}

// factorial returns n! for the small n (outer axis counts) this package
// ever deals with.
func factorial(n int) int {
	r := 1
	for i := 2; i <= n; i++ {
		r *= i
	}
	return r
}

// permutationsUpTo generates permutations of axes via Heap's algorithm,
// stopping once cap permutations have been produced (including the
// identity). Used to sample the search space for Measure/Patient/Crazy.
func permutationsUpTo(axes []int, cap int) [][]int {
	n := len(axes)
	a := append([]int(nil), axes...)
	result := make([][]int, 0, cap)
	result = append(result, append([]int(nil), a...))
	if len(result) >= cap {
		return result
	}

	c := make([]int, n)
	i := 0
	for i < n {
		if len(result) >= cap {
			break
		}
		if c[i] < i {
			if i%2 == 0 {
				a[0], a[i] = a[i], a[0]
			} else {
				a[c[i]], a[i] = a[i], a[c[i]]
			}
			result = append(result, append([]int(nil), a...))
			c[i]++
			i = 0
		} else {
			c[i] = 0
			i++
		}
	}
	return result
}

// candidateLoopOrders returns the outer-axis orders CreatePlan should
// consider under method, always leading with heuristicOrder so a timed
// search never does worse than the Estimate tier would have.
func candidateLoopOrders(desc *Descriptor, axes []int, method SelectionMethod) [][]int {
	if len(axes) <= 1 {
		return [][]int{append([]int(nil), axes...)}
	}

	best := heuristicOrder(desc, axes)
	if method == Estimate {
		return [][]int{best}
	}

	cap := measureCandidateCap
	switch method {
	case Patient:
		cap = patientCandidateCap
	case Crazy:
		if factorial(len(axes)) <= crazyPermutationCap {
			cap = factorial(len(axes))
		} else {
			cap = patientCandidateCap
		}
	}

	seen := map[string]bool{permKey(best): true}
	candidates := [][]int{best}
	for _, p := range permutationsUpTo(axes, cap) {
		if len(candidates) >= cap {
			break
		}
		k := permKey(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		candidates = append(candidates, p)
	}
	return candidates
}

func permKey(order []int) string {
	b := make([]byte, len(order))
	for i, v := range order {
		b[i] = byte('a' + v)
	}
	return string(b)
}
