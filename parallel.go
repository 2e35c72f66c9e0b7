package hptt

import "sort"

// loadBalanceFloors is the progressive-relaxation schedule (C7): start
// requiring each parallelized axis stay at least 80% balanced between
// its smallest and largest chunk, and back off in 5-point steps down to
// 50% if that leaves threads unassigned.
var loadBalanceFloors = []float64{0.80, 0.75, 0.70, 0.65, 0.60, 0.55, 0.50}

// assignParallelism distributes numThreads across axes (the outer loop
// nest, excluding the tile axes by construction) using a greedy
// prime-factorization strategy: each prime factor of numThreads is
// handed to whichever eligible axis has the most room left, where
// eligibility requires the axis to still satisfy S_k/(f*inc_k) >= 1 and
// the resulting per-axis chunk imbalance to clear the current floor. A
// prime that fits nowhere at the current floor is dropped, so the
// achieved thread count can be less than requested. Axis 0 and any
// other tile axis are never candidates because axes never contains them
// (outerAxes already excluded them).
func assignParallelism(desc *Descriptor, axes []int, numThreads int) (map[int]int, int) {
	factors := make(map[int]int, len(axes))
	for _, a := range axes {
		factors[a] = 1
	}
	if numThreads <= 1 || len(axes) == 0 {
		return factors, 1
	}

	primes := primeFactors(numThreads)

	var best map[int]int
	bestTotal := 1
	for _, floor := range loadBalanceFloors {
		trial := make(map[int]int, len(axes))
		for _, a := range axes {
			trial[a] = 1
		}
		for _, p := range primes {
			bestAxis := -1
			bestRoom := -1.0
			for _, a := range axes {
				newFactor := trial[a] * p
				size := desc.SizeA[a]
				if size/newFactor < 1 {
					continue
				}
				if axisBalance(size, newFactor) < floor {
					continue
				}
				room := float64(size) / float64(newFactor)
				if room > bestRoom {
					bestRoom = room
					bestAxis = a
				}
			}
			if bestAxis >= 0 {
				trial[bestAxis] *= p
			}
		}
		total := 1
		for _, f := range trial {
			total *= f
		}
		if total > bestTotal {
			bestTotal = total
			best = trial
		}
		if total == numThreads {
			break
		}
	}

	if best == nil {
		return factors, 1
	}
	return best, bestTotal
}

// axisBalance is minChunk/maxChunk for an axis of the given size split
// into factor near-equal pieces; 1.0 when it divides evenly.
func axisBalance(size, factor int) float64 {
	if factor <= 1 {
		return 1.0
	}
	minChunk := size / factor
	maxChunk := minChunk
	if size%factor != 0 {
		maxChunk = minChunk + 1
	}
	if maxChunk == 0 {
		return 0
	}
	return float64(minChunk) / float64(maxChunk)
}

// primeFactors returns n's prime factorization in descending order, so
// assignParallelism spends its largest, most constraining factors first
// while axes still have the most room to absorb them.
func primeFactors(n int) []int {
	var factors []int
	for d := 2; d*d <= n; d++ {
		for n%d == 0 {
			factors = append(factors, d)
			n /= d
		}
	}
	if n > 1 {
		factors = append(factors, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(factors)))
	return factors
}

// partitionAxis splits [0, size) into factor near-equal, contiguous
// ranges, front-loading the one-element remainder onto the first chunks.
func partitionAxis(size, factor int) []axisRange {
	ranges := make([]axisRange, factor)
	base := size / factor
	rem := size % factor
	start := 0
	for i := 0; i < factor; i++ {
		n := base
		if i < rem {
			n++
		}
		ranges[i] = axisRange{start: start, end: start + n}
		start += n
	}
	return ranges
}

// expandAssignments turns a per-axis parallelism factor map into the
// concrete list of per-worker axis-range restrictions, one entry per
// worker, via the cartesian product of each parallelized axis's chunks.
func expandAssignments(desc *Descriptor, axes []int, factors map[int]int) []map[int]axisRange {
	type dim struct {
		axis   int
		ranges []axisRange
	}
	var dims []dim
	for _, a := range axes {
		f := factors[a]
		if f <= 1 {
			continue
		}
		dims = append(dims, dim{axis: a, ranges: partitionAxis(desc.SizeA[a], f)})
	}
	if len(dims) == 0 {
		return []map[int]axisRange{{}}
	}

	result := []map[int]axisRange{{}}
	for _, d := range dims {
		next := make([]map[int]axisRange, 0, len(result)*len(d.ranges))
		for _, base := range result {
			for _, r := range d.ranges {
				m := make(map[int]axisRange, len(base)+1)
				for k, v := range base {
					m[k] = v
				}
				m[d.axis] = r
				next = append(next, m)
			}
		}
		result = next
	}
	return result
}
