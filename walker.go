package hptt

import "github.com/gopherml/hptt/internal/simd"

// walk executes one worker's ComputeNode chain: it recurses one loop
// level per node, accumulating the running A/B offsets, and at the leaf
// (node == nil) hands off to the micro-kernel via runTile. This is the
// macro-kernel walker, C4: everything above the tile is plain nested
// iteration, and everything at the tile is delegated to simd.
func walk[T simd.Numeric](node *ComputeNode, tile TileSpec, a []T, aBase int, b []T, bBase int, alpha, beta T, betaIsZero bool) {
	if node == nil {
		runTile(tile, a, aBase, b, bBase, alpha, beta, betaIsZero)
		return
	}
	for i := node.Start; i < node.End; i += node.Inc {
		walk(node.Next, tile, a, aBase+i*node.LDA, b, bBase+i*node.LDB, alpha, beta, betaIsZero)
	}
}

// runTile invokes the appropriate simd primitive for one leaf of the
// outer loop nest: a contiguous scale-add in the constStride1 case, or
// the macro/micro tiled register-transpose (C3/C4) otherwise, driven by
// the Micro/Macro edges CreatePlan derived from simd.TraitsFor[T]().
func runTile[T simd.Numeric](tile TileSpec, a []T, aBase int, b []T, bBase int, alpha, beta T, betaIsZero bool) {
	if tile.ConstStride1 {
		simd.ScaleAddContiguous(a[aBase:aBase+tile.Length], b[bBase:bBase+tile.Length], tile.Length, alpha, beta, betaIsZero)
		return
	}
	srcLen := (tile.Rows-1)*tile.SrcStride + tile.Cols
	dstLen := (tile.Cols-1)*tile.DstStride + tile.Rows
	simd.TransposeTile(
		a[aBase:aBase+srcLen], tile.SrcStride,
		b[bBase:bBase+dstLen], tile.DstStride,
		tile.Rows, tile.Cols, tile.Micro, tile.Macro,
		alpha, beta, betaIsZero,
	)
}
