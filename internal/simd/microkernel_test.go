package simd

import "testing"

func TestTransposeTileSquareBetaZero(t *testing.T) {
	// A is 3x3 row-major, contiguous. 3 isn't a power of two, so this
	// exercises the ragged-edge scalar fallback regardless of micro/macro.
	src := []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}
	dst := make([]float64, 9)
	TransposeTile(src, 3, dst, 3, 3, 3, 0, 0, 2.0, 0, true)

	want := []float64{
		2, 8, 14,
		4, 10, 16,
		6, 12, 18,
	}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
}

func TestTransposeTileRectangularWithBeta(t *testing.T) {
	// 2 rows x 3 cols source; transposed destination is 3 rows x 2 cols.
	src := []float64{
		1, 2, 3,
		4, 5, 6,
	}
	dst := []float64{
		100, 200,
		300, 400,
		500, 600,
	}
	TransposeTile(src, 3, dst, 2, 2, 3, 0, 0, 1.0, 1.0, false)

	want := []float64{
		1 + 100, 4 + 200,
		2 + 300, 5 + 400,
		3 + 500, 6 + 600,
	}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
}

func TestTransposeTilePowerOfTwoTilingMatchesScalar(t *testing.T) {
	// 8x8, tiled as two 4x4 macro tiles per side of two 2x2 micro tiles
	// each, must match a plain scalar transpose exactly.
	const n = 8
	src := make([]float64, n*n)
	for i := range src {
		src[i] = float64(i + 1)
	}

	gotTiled := make([]float64, n*n)
	TransposeTile(src, n, gotTiled, n, n, n, 2, 4, 1.5, 0, true)

	wantScalar := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			wantScalar[j*n+i] = 1.5 * src[i*n+j]
		}
	}

	for i := range wantScalar {
		if gotTiled[i] != wantScalar[i] {
			t.Fatalf("tiled transpose mismatch at %d: got %v, want %v", i, gotTiled, wantScalar)
		}
	}
}

func TestTransposeTileRaggedMacroRemainder(t *testing.T) {
	// 6x6 with a macro edge of 4 forces a 4+2 ragged split on both axes.
	const n = 6
	src := make([]float64, n*n)
	for i := range src {
		src[i] = float64(i + 1)
	}

	got := make([]float64, n*n)
	dst := make([]float64, n*n)
	for i := range dst {
		dst[i] = float64(100 + i)
	}
	copy(got, dst)
	TransposeTile(src, n, got, n, n, n, 2, 4, 1.0, 1.0, false)

	want := make([]float64, n*n)
	copy(want, dst)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			idx := j*n + i
			want[idx] = src[i*n+j] + want[idx]
		}
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ragged remainder mismatch at %d: got %v, want %v", i, got, want)
		}
	}
}

func TestScaleAddContiguous(t *testing.T) {
	src := []float64{1, 2, 3, 4}
	dst := []float64{10, 20, 30, 40}
	ScaleAddContiguous(src, dst, 4, 2.0, 0.5, false)

	want := []float64{2*1 + 0.5*10, 2*2 + 0.5*20, 2*3 + 0.5*30, 2*4 + 0.5*40}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
}

func TestScaleAddContiguousBetaZero(t *testing.T) {
	src := []float64{1, 2, 3}
	dst := []float64{99, 99, 99}
	ScaleAddContiguous(src, dst, 3, 3.0, 0, true)

	want := []float64{3, 6, 9}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
}

func TestInterleaveLowerUpper(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{10, 20, 30, 40}

	lower := InterleaveLower(a, b)
	wantLower := []float64{1, 10, 2, 20}
	for i := range wantLower {
		if lower[i] != wantLower[i] {
			t.Fatalf("InterleaveLower = %v, want %v", lower, wantLower)
		}
	}

	upper := InterleaveUpper(a, b)
	wantUpper := []float64{3, 30, 4, 40}
	for i := range wantUpper {
		if upper[i] != wantUpper[i] {
			t.Fatalf("InterleaveUpper = %v, want %v", upper, wantUpper)
		}
	}
}
