package hptt

import "fmt"

// ComputeNode is one level of the nested loop a single worker executes
// over the "outer" axes: every A-axis other than the one or two tiled
// axes the terminal TileSpec absorbs into the micro-kernel call.
type ComputeNode struct {
	Start, End, Inc int // iterate i := Start; i < End; i += Inc over this axis
	LDA, LDB        int // per-step offset into A and B for this axis
	Next            *ComputeNode
}

// TileSpec describes the innermost tile step every leaf of the outer
// loop nest performs. It depends only on the permutation, so it is
// shared by every worker's chain rather than rebuilt per worker.
type TileSpec struct {
	// ConstStride1 is true when axis 0 is fixed by the permutation
	// (perm[0] == 0): axis 0 is then contiguous on both A and B, so the
	// tile step degenerates to a plain scale-add over a contiguous run
	// instead of a register transpose. Ground truth: original_source's
	// blocking_constStride1_ path.
	ConstStride1 bool

	// Length is used when ConstStride1: the contiguous run length.
	Length int

	// Rows, Cols, SrcStride, DstStride are used when !ConstStride1. Rows
	// walks TileAxisB (contiguous in B, strided by SrcStride in A); Cols
	// walks TileAxisA (contiguous in A, strided by DstStride in B).
	Rows, Cols           int
	SrcStride, DstStride int

	TileAxisA, TileAxisB int

	// Micro and Macro are the C1 element-traits register- and cache-tile
	// edges (simd.Traits[T].Micro/.Macro) the !ConstStride1 case tiles
	// down to. CreatePlan fills these in once T is known; buildTileSpec
	// itself has no T to derive them from.
	Micro, Macro int
}

// buildTileSpec derives the terminal tile description from a Descriptor.
// TileAxisA is always A's contiguous axis (axis 0); TileAxisB is A's axis
// that lands at B's contiguous axis 0, i.e. invPerm[0].
func buildTileSpec(desc *Descriptor) TileSpec {
	const tileAxisA = 0
	inv := desc.InvPerm()
	tileAxisB := inv[0]

	if tileAxisA == tileAxisB {
		return TileSpec{
			ConstStride1: true,
			Length:       desc.SizeA[0],
			TileAxisA:    tileAxisA,
			TileAxisB:    tileAxisB,
		}
	}

	return TileSpec{
		Rows:      desc.SizeA[tileAxisB],
		Cols:      desc.SizeA[tileAxisA],
		SrcStride: desc.LDA[tileAxisB],
		DstStride: desc.LDB[desc.Perm[tileAxisA]],
		TileAxisA: tileAxisA,
		TileAxisB: tileAxisB,
	}
}

// outerAxes returns the A-axes the loop nest iterates explicitly, in the
// given loop order, skipping whichever one or two axes TileSpec absorbs.
func outerAxes(desc *Descriptor, tile TileSpec, loopOrder []int) []int {
	axes := make([]int, 0, desc.Dim)
	for _, axis := range loopOrder {
		if axis == tile.TileAxisA || axis == tile.TileAxisB {
			continue
		}
		axes = append(axes, axis)
	}
	return axes
}

// axisRange restricts one outer axis to a sub-interval of its full
// extent; used to hand a worker its slice of a parallelized loop level.
type axisRange struct {
	start, end int
}

// buildChain constructs the ComputeNode chain for one worker. axes gives
// the outer loop nest in execution order (outermost first); ranges gives
// the [start,end) restriction for any axis a parallelism assignment has
// split across workers. Axes absent from ranges run their full extent.
//
// ranges is always internally computed by expandAssignments, never taken
// from caller input, so a range that falls outside its axis's bound
// indicates a bug in the parallelism assignment rather than a caller
// error; buildChain panics with ErrInternal wrapped rather than trying
// to continue with a range that could make workers write outside their
// disjoint partition of B.
func buildChain(desc *Descriptor, axes []int, ranges map[int]axisRange) *ComputeNode {
	var head, tail *ComputeNode
	for _, axis := range axes {
		n := &ComputeNode{
			Start: 0,
			End:   desc.SizeA[axis],
			Inc:   1,
			LDA:   desc.LDA[axis],
			LDB:   desc.LDB[desc.Perm[axis]],
		}
		if r, ok := ranges[axis]; ok {
			if r.start < 0 || r.end > desc.SizeA[axis] || r.start > r.end {
				panic(fmt.Errorf("%w: axis %d range [%d,%d) outside bound %d", ErrInternal, axis, r.start, r.end, desc.SizeA[axis]))
			}
			n.Start, n.End = r.start, r.end
		}
		if head == nil {
			head = n
		} else {
			tail.Next = n
		}
		tail = n
	}
	return head
}
