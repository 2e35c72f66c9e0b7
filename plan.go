package hptt

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/gopherml/hptt/internal/simd"
	"github.com/gopherml/hptt/internal/workerpool"
)

// naturalOrder returns {0, 1, ..., d-1}, the starting point candidate
// loop orders are derived from.
func naturalOrder(d int) []int {
	order := make([]int, d)
	for i := range order {
		order[i] = i
	}
	return order
}

// resolveNumThreads applies the precedence CreatePlan documents: an
// explicit positive argument wins, then the environment-derived
// default, then GOMAXPROCS.
func resolveNumThreads(requested int) int {
	if requested > 0 {
		return requested
	}
	if cfg := getConfig(); cfg.NumThreads > 0 {
		return cfg.NumThreads
	}
	return runtime.GOMAXPROCS(0)
}

// runPlan executes one (order, factors) candidate against a/b: it
// expands the parallelism assignment into per-worker axis ranges,
// builds each worker's ComputeNode chain, and dispatches them on pool.
// This is shared by the real Execute path and by the selector's timed
// trials, so a trial and the eventual real run always take the same
// code path.
func runPlan[T Numeric](desc *Descriptor, tile TileSpec, order []int, factors map[int]int, a, b []T, alpha, beta T, betaIsZero bool, pool *workerpool.Pool, spawnThreads bool) {
	runRanges(desc, tile, order, expandAssignments(desc, order, factors), a, b, alpha, beta, betaIsZero, pool, spawnThreads)
}

// runRanges is runPlan's body factored out to take an already-expanded
// per-worker range list directly, so the selector's timed trials can run
// a deliberately truncated subset of a candidate's iteration space
// without needing a second Descriptor.
//
// spawnThreads controls dispatch, not correctness of the result: when
// false, every worker's chain runs in sequence on the calling goroutine
// and pool is never touched (it may be nil), the C9 semantic for a
// caller that already runs inside its own thread team and does not want
// this package spawning workers underneath it. This is a distinct
// switch from workerpool.Pool's own closed-pool degrade-to-serial path;
// that one triggers on pool state, this one triggers on caller intent
// regardless of pool state.
func runRanges[T Numeric](desc *Descriptor, tile TileSpec, order []int, ranges []map[int]axisRange, a, b []T, alpha, beta T, betaIsZero bool, pool *workerpool.Pool, spawnThreads bool) {
	tasks := make([]func(), len(ranges))
	for i, r := range ranges {
		chain := buildChain(desc, order, r)
		tasks[i] = func() { walk(chain, tile, a, 0, b, 0, alpha, beta, betaIsZero) }
	}
	if !spawnThreads {
		for _, fn := range tasks {
			fn()
		}
		return
	}
	pool.RunAll(tasks)
}

// Handle is a created, ready-to-run transposition plan for one element
// type T, bound to a specific shape, permutation, and parallelism
// strategy. Its geometry (desc, tile, order, factors) is decided once by
// CreatePlan and never revisited except by SetNumThreads; SetInputPtr,
// SetOutputPtr, SetAlpha, and SetBeta let a caller reuse the same
// geometry decision across many buffers of identical shape.
type Handle[T Numeric] struct {
	desc  *Descriptor
	tile  TileSpec
	order []int

	factors    map[int]int
	numWorkers int
	numThreads int
	method     SelectionMethod

	alpha, beta T
	a, b        []T

	pool *workerpool.Pool
}

// CreatePlan is C9's entry point: it normalizes the requested shape
// (C2), derives the tile step (C5), and selects a loop order and
// parallelism strategy (C6/C7/C8) using the real a/b buffers for any
// timed trials the method requires. The returned Handle is immediately
// usable via Execute.
//
// outerSizeA and outerSizeB may be nil, meaning "no padding": outerSizeA
// defaults to sizeA, and outerSizeB defaults to the permuted sizeA.
func CreatePlan[T Numeric](sizeA, perm []int, alpha T, a []T, outerSizeA []int, beta T, b []T, outerSizeB []int, numThreads int, method SelectionMethod) (*Handle[T], error) {
	if outerSizeA == nil {
		outerSizeA = sizeA
	}
	if outerSizeB == nil {
		outerSizeB = defaultOuterSizeB(sizeA, perm)
	}

	desc, err := newDescriptor(sizeA, perm, outerSizeA, outerSizeB, a, b)
	if err != nil {
		return nil, err
	}

	if err := checkBufferLengths(desc, a, b); err != nil {
		return nil, err
	}

	tile := buildTileSpec(desc)
	traits := simd.TraitsFor[T]()
	tile.Micro, tile.Macro = traits.Micro, traits.Macro
	axes := outerAxes(desc, tile, naturalOrder(desc.Dim))
	numThreads = resolveNumThreads(numThreads)

	candidate, planErr := selectPlan(desc, tile, axes, a, b, alpha, beta, numThreads, method)
	if planErr != nil && getConfig().Verbose >= 1 {
		fmt.Fprintln(diagWriter, planErr)
	}

	h := &Handle[T]{
		desc:       desc,
		tile:       tile,
		order:      candidate.order,
		factors:    candidate.factors,
		numWorkers: candidate.numWorkers,
		numThreads: numThreads,
		method:     method,
		alpha:      alpha,
		beta:       beta,
		a:          a,
		b:          b,
	}

	if getConfig().Verbose >= 1 {
		fmt.Fprintln(diagWriter, h.String())
	}
	return h, nil
}

// defaultOuterSizeB computes the un-padded outer size of B from A's
// logical size and the permutation, without needing a Descriptor yet.
func defaultOuterSizeB(sizeA, perm []int) []int {
	d := len(sizeA)
	outer := make([]int, d)
	for k, p := range perm {
		if p < 0 || p >= d {
			// Deliberately not validated here: newDescriptor rejects a
			// malformed perm with ErrInvalidShape immediately after.
			continue
		}
		outer[p] = sizeA[k]
	}
	return outer
}

// checkBufferLengths guards against a buffer too short for the shape it
// claims to hold, since Go slices carry no independent bounds the
// micro-kernel could otherwise trust.
func checkBufferLengths[T Numeric](desc *Descriptor, a, b []T) error {
	if a == nil || b == nil {
		return nil // SetInputPtr/SetOutputPtr may supply these later.
	}
	needA := desc.LDA[desc.Dim-1] * desc.OuterA[desc.Dim-1]
	needB := desc.LDB[desc.Dim-1] * desc.OuterB[desc.Dim-1]
	if len(a) < needA {
		return fmt.Errorf("%w: input buffer has %d elements, shape needs %d", ErrInvalidShape, len(a), needA)
	}
	if len(b) < needB {
		return fmt.Errorf("%w: output buffer has %d elements, shape needs %d", ErrInvalidShape, len(b), needB)
	}
	return nil
}

func (h *Handle[T]) ensurePool() *workerpool.Pool {
	if h.pool == nil {
		h.pool = workerpool.New(h.numThreads)
	}
	return h.pool
}

// Execute runs the plan against the Handle's stored buffers and
// coefficients.
func (h *Handle[T]) Execute() error {
	if h.a == nil || h.b == nil {
		return fmt.Errorf("%w: Execute called before SetInputPtr/SetOutputPtr", ErrInvalidShape)
	}
	var zero T
	runPlan(h.desc, h.tile, h.order, h.factors, h.a, h.b, h.alpha, h.beta, h.beta == zero, h.ensurePool(), true)
	return nil
}

// ExecuteExpert is C9's expert entry point: it runs the plan's stored
// buffers and coefficients under caller-selected hot-path specializations
// instead of Execute's fixed defaults.
//
// betaIsZero lets a caller that knows β=0 at the call site skip Execute's
// own β==0 comparison and route straight to the store-only kernel path
// that never reads B, the same branch Execute takes automatically when
// β==0.
//
// spawnThreads=false is the documented "caller already runs inside a
// thread team" mode: the worker set for this plan's parallelism
// assignment runs serially, in order, on the calling goroutine, and the
// Handle's pool is never created or touched. spawnThreads=true behaves
// like Execute and dispatches through the pool.
//
// streamingStores requests the non-temporal-store variant of the store
// path. Portable Go has no non-temporal-store intrinsic to specialize
// into (unlike the SIMD-width dispatch in internal/simd, there is no
// scalar-vs-vector store instruction choice available here), so this
// flag is accepted for API parity with the four-variant design and has
// no observable effect; it is not silently dropped, only inert.
func (h *Handle[T]) ExecuteExpert(streamingStores, spawnThreads, betaIsZero bool) error {
	if h.a == nil || h.b == nil {
		return fmt.Errorf("%w: ExecuteExpert called before SetInputPtr/SetOutputPtr", ErrInvalidShape)
	}
	_ = streamingStores
	var pool *workerpool.Pool
	if spawnThreads {
		pool = h.ensurePool()
	}
	runPlan(h.desc, h.tile, h.order, h.factors, h.a, h.b, h.alpha, h.beta, betaIsZero, pool, spawnThreads)
	return nil
}

// ExecuteInto runs the plan's already-chosen geometry against caller
// supplied a/b, without touching the Handle's own stored state. It lets
// one Plan be replayed over many buffer pairs of identical shape without
// re-running CreatePlan, the scenario SetInputPtr/SetOutputPtr also
// serve for a single stored pair.
func (h *Handle[T]) ExecuteInto(a, b []T) error {
	if err := checkBufferLengths(h.desc, a, b); err != nil {
		return err
	}
	var zero T
	runPlan(h.desc, h.tile, h.order, h.factors, a, b, h.alpha, h.beta, h.beta == zero, h.ensurePool(), true)
	return nil
}

// SetInputPtr rebinds the plan's input buffer without re-planning.
func (h *Handle[T]) SetInputPtr(a []T) error {
	if err := checkBufferLengths(h.desc, a, h.b); err != nil {
		return err
	}
	h.a = a
	return nil
}

// SetOutputPtr rebinds the plan's output buffer without re-planning.
func (h *Handle[T]) SetOutputPtr(b []T) error {
	if err := checkBufferLengths(h.desc, h.a, b); err != nil {
		return err
	}
	h.b = b
	return nil
}

// SetAlpha updates the scaling coefficient applied to A.
func (h *Handle[T]) SetAlpha(alpha T) { h.alpha = alpha }

// SetBeta updates the scaling coefficient applied to B's prior content.
func (h *Handle[T]) SetBeta(beta T) { h.beta = beta }

// SetNumThreads changes the worker count without discarding the loop
// order search: it reuses the cached outer-axis order (the expensive
// part of planning under Measure/Patient/Crazy) and only re-runs C7's
// parallelism assignment against the new thread count. Any pool bound
// to the old thread count is closed and rebuilt lazily on next Execute.
func (h *Handle[T]) SetNumThreads(n int) {
	n = resolveNumThreads(n)
	if n == h.numThreads {
		return
	}
	factors, workers := assignParallelism(h.desc, h.order, n)
	h.factors = factors
	h.numWorkers = workers
	h.numThreads = n
	if h.pool != nil {
		h.pool.Close()
		h.pool = nil
	}
}

// Clone produces an independent Handle sharing this one's immutable
// geometry (shape, loop order, parallelism assignment) but with its own
// coefficients, buffers, and worker pool, mirroring the original
// engine's copy constructor. The clone creates its own pool lazily on
// its first Execute; that pool is independent of the original's and is
// closed only when SetNumThreads on the clone changes its thread count.
func (h *Handle[T]) Clone() *Handle[T] {
	return &Handle[T]{
		desc:       h.desc,
		tile:       h.tile,
		order:      h.order,
		factors:    h.factors,
		numWorkers: h.numWorkers,
		numThreads: h.numThreads,
		method:     h.method,
		alpha:      h.alpha,
		beta:       h.beta,
		a:          h.a,
		b:          h.b,
	}
}

// String renders a diagnostic summary of the chosen plan: dimension,
// loop order, per-axis parallelism factors, and worker count. Printed to
// stderr by CreatePlan when HPTT_VERBOSE >= 1.
func (h *Handle[T]) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "hptt plan: dim=%d method=%s numThreads=%d numWorkers=%d\n", h.desc.Dim, h.method, h.numThreads, h.numWorkers)
	fmt.Fprintf(&b, "  tileAxisA=%d tileAxisB=%d constStride1=%v\n", h.tile.TileAxisA, h.tile.TileAxisB, h.tile.ConstStride1)
	fmt.Fprintf(&b, "  loopOrder=%v\n", h.order)
	fmt.Fprintf(&b, "  parallelism=%v\n", h.factors)
	return b.String()
}
