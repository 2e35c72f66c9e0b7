package hptt

import (
	"fmt"
	"time"

	"github.com/gopherml/hptt/internal/workerpool"
)

// planCandidate bundles one fully-resolved (loop order, parallelism
// assignment) pair the selector can time or adopt outright.
type planCandidate struct {
	order      []int
	factors    map[int]int
	numWorkers int
}

// trialSampleDivisor is the fraction of the outermost range (or, absent
// any outer axis, of the tile's own row/length extent) a
// MEASURE/PATIENT/CRAZY trial actually executes before extrapolating:
// 1/8th, per the sampled-fraction-and-extrapolate timing methodology.
const trialSampleDivisor = 8

// selectPlan is C8: it turns a Descriptor, its tile step, the outer axis
// list, and a SelectionMethod into a single chosen planCandidate.
//
// Estimate takes the heuristically-best loop order with the best
// achievable parallelism assignment and stops there. The remaining
// tiers generate several candidate loop orders (loopsearch.go), assign
// parallelism to each, and time a sampled trial of each against the
// real a/b buffers within the process's timing budget, keeping whichever
// candidate extrapolates fastest. A trial that would consume B's content
// (beta != 0) snapshots and restores B around itself so the timing pass
// never changes what the eventual real Execute produces.
//
// The returned error is never fatal: per §7, a timing budget exhausted
// before every candidate is tried falls back to the best candidate timed
// so far (or the heuristic-best if none finished), it does not fail
// CreatePlan. The error is ErrPlanningTimeout, wrapped with which
// candidate the fallback landed on, purely so a verbose caller or test
// can observe via errors.Is that the fallback happened.
func selectPlan[T Numeric](desc *Descriptor, tile TileSpec, axes []int, a, b []T, alpha, beta T, numThreads int, method SelectionMethod) (planCandidate, error) {
	loopOrders := candidateLoopOrders(desc, axes, method)

	if method == Estimate {
		order := loopOrders[0]
		factors, workers := assignParallelism(desc, order, numThreads)
		return planCandidate{order: order, factors: factors, numWorkers: workers}, nil
	}

	candidates := make([]planCandidate, 0, len(loopOrders))
	for _, order := range loopOrders {
		factors, workers := assignParallelism(desc, order, numThreads)
		candidates = append(candidates, planCandidate{order: order, factors: factors, numWorkers: workers})
	}

	if len(a) == 0 || len(b) == 0 {
		// Nothing to time against; fall back to the first (heuristically
		// best) candidate rather than fabricate a timing.
		return candidates[0], nil
	}

	pool := workerpool.New(numThreads)
	defer pool.Close()

	var zero T
	betaIsZero := beta == zero

	deadline := time.Now().Add(getConfig().TimingBudget)
	best := candidates[0]
	bestElapsed := time.Duration(1<<63 - 1)

	for i, c := range candidates {
		if time.Now().After(deadline) {
			return best, fmt.Errorf("%w: exhausted budget after timing %d/%d candidates, using best found so far", ErrPlanningTimeout, i, len(candidates))
		}
		elapsed := timeTrial(desc, tile, c, a, b, alpha, beta, betaIsZero, pool)
		if elapsed < bestElapsed {
			bestElapsed = elapsed
			best = c
		}
	}
	return best, nil
}

// timeTrial estimates candidate c's full wall-clock cost by running only
// a sampled ~1/trialSampleDivisor fraction of its outermost iteration
// range and extrapolating the measured elapsed time by the ratio of full
// size to sampled size, so a single trial's actual runtime is bounded to
// roughly 1/trialSampleDivisor of the full candidate regardless of
// tensor size — this is what makes TimingBudget meaningful even for the
// very first, largest candidate, rather than only being checked between
// candidates. b's original content is restored afterward whenever beta
// makes the kernel read from b.
func timeTrial[T Numeric](desc *Descriptor, tile TileSpec, c planCandidate, a, b []T, alpha, beta T, betaIsZero bool, pool *workerpool.Pool) time.Duration {
	var snapshot []T
	if !betaIsZero {
		snapshot = make([]T, len(b))
		copy(snapshot, b)
	}

	start := time.Now()
	factor := runSampledTrial(desc, tile, c, a, b, alpha, beta, betaIsZero, pool)
	elapsed := time.Since(start)

	if !betaIsZero {
		copy(b, snapshot)
	}
	return time.Duration(float64(elapsed) * factor)
}

// runSampledTrial dispatches a truncated run of candidate c and returns
// the extrapolation factor (full size / sampled size) to scale the
// measured elapsed time back up to a full-run estimate.
//
// When c.order has an outer axis, the outermost axis (order[0]) is
// truncated to a 1/trialSampleDivisor-sized prefix on every worker's
// assigned range, preserving each worker's relative share of the other
// axes. When there is no outer axis (a bare 2D transpose, or one small
// enough that every axis besides the tile axes fused away), the tile's
// own row (or, in the constStride1 case, its contiguous run length) is
// truncated instead, since that is the outermost dimension actually
// iterated.
func runSampledTrial[T Numeric](desc *Descriptor, tile TileSpec, c planCandidate, a, b []T, alpha, beta T, betaIsZero bool, pool *workerpool.Pool) float64 {
	if len(c.order) == 0 {
		sampledTile, factor := sampleTile(tile)
		runRanges(desc, sampledTile, c.order, []map[int]axisRange{{}}, a, b, alpha, beta, betaIsZero, pool, true)
		return factor
	}

	axis := c.order[0]
	full := desc.SizeA[axis]
	sampled := full / trialSampleDivisor
	if sampled < 1 {
		sampled = 1
	}
	if sampled >= full {
		runPlan(desc, tile, c.order, c.factors, a, b, alpha, beta, betaIsZero, pool, true)
		return 1.0
	}

	ranges := expandAssignments(desc, c.order, c.factors)
	for _, r := range ranges {
		start, limit := 0, full
		if existing, ok := r[axis]; ok {
			start, limit = existing.start, existing.end
		}
		end := start + sampled
		if end > limit {
			end = limit
		}
		r[axis] = axisRange{start: start, end: end}
	}
	runRanges(desc, tile, c.order, ranges, a, b, alpha, beta, betaIsZero, pool, true)
	return float64(full) / float64(sampled)
}

// sampleTile returns a copy of tile with its outermost iterated extent
// (Length for the constStride1 kernel, Rows otherwise) shrunk to
// ~1/trialSampleDivisor of the original, plus the matching extrapolation
// factor.
func sampleTile(tile TileSpec) (TileSpec, float64) {
	if tile.ConstStride1 {
		sampled := tile.Length / trialSampleDivisor
		if sampled < 1 {
			sampled = 1
		}
		if sampled >= tile.Length {
			return tile, 1.0
		}
		shrunk := tile
		shrunk.Length = sampled
		return shrunk, float64(tile.Length) / float64(sampled)
	}
	sampled := tile.Rows / trialSampleDivisor
	if sampled < 1 {
		sampled = 1
	}
	if sampled >= tile.Rows {
		return tile, 1.0
	}
	shrunk := tile
	shrunk.Rows = sampled
	return shrunk, float64(tile.Rows) / float64(sampled)
}
