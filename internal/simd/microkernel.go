// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package simd

// TransposeTile applies B[j][i] = alpha*A[i][j] + beta*B[j][i] (or just
// alpha*A[i][j] when betaIsZero) over a rows x cols tile, where A is read
// with row stride srcStride and B is written with row stride dstStride.
//
// It is the two-level macro/micro-kernel: the rows x cols plane is first
// blocked into macro x macro cache tiles (a ragged remainder tile at
// either edge whenever rows or cols isn't a multiple of macro), and each
// cache tile is in turn blocked into micro x micro register tiles. macro
// and micro would ordinarily come from Traits[T].Macro/.Micro. A caller
// that passes macro <= 0 gets a single cache tile covering the whole
// plane, and one that passes micro <= 0 gets a single register tile per
// cache tile; with both, the whole plane is one register tile.
func TransposeTile[T Numeric](src []T, srcStride int, dst []T, dstStride int, rows, cols, micro, macro int, alpha, beta T, betaIsZero bool) {
	if macro <= 0 {
		macro = rows
		if cols > macro {
			macro = cols
		}
	}
	if macro <= 0 {
		macro = 1
	}
	for tr := 0; tr < rows; tr += macro {
		blockRows := macro
		if tr+blockRows > rows {
			blockRows = rows - tr
		}
		for tc := 0; tc < cols; tc += macro {
			blockCols := macro
			if tc+blockCols > cols {
				blockCols = cols - tc
			}
			transposeCacheTile(
				src[tr*srcStride+tc:], srcStride,
				dst[tc*dstStride+tr:], dstStride,
				blockRows, blockCols, micro,
				alpha, beta, betaIsZero,
			)
		}
	}
}

// transposeCacheTile is the C4 macro-kernel step for a single macro x
// macro (or ragged remainder) block: it walks the block in micro x micro
// register tiles, applying the C3 micro-kernel (M/m)^2 times per full
// cache tile, with a shrunk final tile along either edge whenever the
// cache tile's own extent isn't a multiple of micro.
func transposeCacheTile[T Numeric](src []T, srcStride int, dst []T, dstStride int, rows, cols, micro int, alpha, beta T, betaIsZero bool) {
	if micro <= 0 {
		micro = rows
		if cols > micro {
			micro = cols
		}
	}
	if micro <= 0 {
		micro = 1
	}
	for r := 0; r < rows; r += micro {
		blockRows := micro
		if r+blockRows > rows {
			blockRows = rows - r
		}
		for c := 0; c < cols; c += micro {
			blockCols := micro
			if c+blockCols > cols {
				blockCols = cols - c
			}
			transposeRegisterTile(
				src[r*srcStride+c:], srcStride,
				dst[c*dstStride+r:], dstStride,
				blockRows, blockCols,
				alpha, beta, betaIsZero,
			)
		}
	}
}

// transposeRegisterTile is the C3 micro-kernel applied to one register
// tile. A full square tile whose edge is a power of two runs the
// interleave butterfly (transposeSquare); anything ragged — a partial
// tile at a macro or micro edge, or a non-power-of-two micro — falls
// back to the direct scalar double loop, which every remainder in the
// engine bottoms out into regardless of Traits.Micro.
func transposeRegisterTile[T Numeric](src []T, srcStride int, dst []T, dstStride int, rows, cols int, alpha, beta T, betaIsZero bool) {
	if rows == cols && rows > 1 && rows&(rows-1) == 0 {
		transposeSquare(src, srcStride, 0, 0, dst, dstStride, 0, 0, rows, alpha, beta, betaIsZero)
		return
	}
	transposeScalar(src, srcStride, dst, dstStride, rows, cols, alpha, beta, betaIsZero)
}

// transposeScalar is the direct, always-correct scalar transpose used
// for ragged edge tiles and non-power-of-two register widths.
func transposeScalar[T Numeric](src []T, srcStride int, dst []T, dstStride int, rows, cols int, alpha, beta T, betaIsZero bool) {
	if betaIsZero {
		for i := 0; i < rows; i++ {
			srcRow := src[i*srcStride : i*srcStride+cols]
			for j := 0; j < cols; j++ {
				dst[j*dstStride+i] = Scale(alpha, srcRow[j])
			}
		}
		return
	}
	for i := 0; i < rows; i++ {
		srcRow := src[i*srcStride : i*srcStride+cols]
		for j := 0; j < cols; j++ {
			idx := j*dstStride + i
			dst[idx] = ScaleAdd(alpha, srcRow[j], beta, dst[idx])
		}
	}
}

// transposeSquare block-transposes an m x m register tile in place
// within src/dst (m a power of two, addressed at offset
// (srcRow,srcCol)/(dstRow,dstCol) with the enclosing strides) by
// recursively swapping its off-diagonal quadrants: if the tile is
// [[TL,TR],[BL,BR]] its transpose is [[TL',BL'],[TR',BR']]. Recursion
// bottoms out at m == 2, the interleave butterfly's base case.
func transposeSquare[T Numeric](src []T, srcStride, srcRow, srcCol int, dst []T, dstStride, dstRow, dstCol, m int, alpha, beta T, betaIsZero bool) {
	if m == 2 {
		transposeBase2(src, srcStride, srcRow, srcCol, dst, dstStride, dstRow, dstCol, alpha, beta, betaIsZero)
		return
	}
	h := m / 2
	transposeSquare(src, srcStride, srcRow, srcCol, dst, dstStride, dstRow, dstCol, h, alpha, beta, betaIsZero)
	transposeSquare(src, srcStride, srcRow, srcCol+h, dst, dstStride, dstRow+h, dstCol, h, alpha, beta, betaIsZero)
	transposeSquare(src, srcStride, srcRow+h, srcCol, dst, dstStride, dstRow, dstCol+h, h, alpha, beta, betaIsZero)
	transposeSquare(src, srcStride, srcRow+h, srcCol+h, dst, dstStride, dstRow+h, dstCol+h, h, alpha, beta, betaIsZero)
}

// transposeBase2 is the 2x2 base case of transposeSquare: one level of
// the InterleaveLower/InterleaveUpper butterfly, rather than four
// independent scalar assignments, produces both output columns.
func transposeBase2[T Numeric](src []T, srcStride, srcRow, srcCol int, dst []T, dstStride, dstRow, dstCol int, alpha, beta T, betaIsZero bool) {
	r0 := srcRow*srcStride + srcCol
	r1 := (srcRow+1)*srcStride + srcCol
	row0 := []T{src[r0], src[r0+1]}
	row1 := []T{src[r1], src[r1+1]}

	// col0 = {A[srcRow][srcCol], A[srcRow+1][srcCol]}, the values that
	// land in B's row dstRow; col1 is B's row dstRow+1.
	col0 := InterleaveLower(row0, row1)
	col1 := InterleaveUpper(row0, row1)

	d0 := dstRow*dstStride + dstCol
	d1 := (dstRow+1)*dstStride + dstCol
	if betaIsZero {
		dst[d0] = Scale(alpha, col0[0])
		dst[d0+1] = Scale(alpha, col0[1])
		dst[d1] = Scale(alpha, col1[0])
		dst[d1+1] = Scale(alpha, col1[1])
		return
	}
	dst[d0] = ScaleAdd(alpha, col0[0], beta, dst[d0])
	dst[d0+1] = ScaleAdd(alpha, col0[1], beta, dst[d0+1])
	dst[d1] = ScaleAdd(alpha, col1[0], beta, dst[d1])
	dst[d1+1] = ScaleAdd(alpha, col1[1], beta, dst[d1+1])
}

// InterleaveLower returns the elements of a and b interleaved starting
// with a's lower half, the even-indexed shuffle a butterfly transpose
// round applies at one level: out[2k] = a[k], out[2k+1] = b[k] for k in
// the first half of the lane range. transposeBase2 is its production
// call site; it stays a named primitive because it is the unit a real
// vector backend would swap in for that call.
func InterleaveLower[T Numeric](a, b []T) []T {
	n := len(a)
	out := make([]T, n)
	half := n / 2
	for k := 0; k < half; k++ {
		out[2*k] = a[k]
		out[2*k+1] = b[k]
	}
	return out
}

// InterleaveUpper is InterleaveLower over the upper half of the lane range.
func InterleaveUpper[T Numeric](a, b []T) []T {
	n := len(a)
	out := make([]T, n)
	half := n / 2
	for k := 0; k < half; k++ {
		out[2*k] = a[half+k]
		out[2*k+1] = b[half+k]
	}
	return out
}

// ScaleAddContiguous applies B[i] = alpha*A[i] + beta*B[i] element-wise
// over a contiguous run of n elements. This is the constStride1 kernel
// (C1's ConstStride1Blocking): used whenever axis 0 is fixed under the
// permutation, so both operands are contiguous along the innermost axis
// and no transpose shuffle is needed at all, only a fused scale-add.
func ScaleAddContiguous[T Numeric](src []T, dst []T, n int, alpha, beta T, betaIsZero bool) {
	if betaIsZero {
		for i := 0; i < n; i++ {
			dst[i] = Scale(alpha, src[i])
		}
		return
	}
	for i := 0; i < n; i++ {
		dst[i] = ScaleAdd(alpha, src[i], beta, dst[i])
	}
}
