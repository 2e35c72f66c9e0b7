package hptt

import "testing"

func TestBuildTileSpecConstStride1WhenAxis0Fixed(t *testing.T) {
	d, err := newDescriptor([]int{4, 5, 6}, []int{0, 2, 1}, []int{4, 5, 6}, []int{4, 6, 5}, []float64(nil), []float64(nil))
	if err != nil {
		t.Fatal(err)
	}
	tile := buildTileSpec(d)
	if !tile.ConstStride1 {
		t.Fatal("expected ConstStride1 when perm[0] == 0")
	}
	if tile.Length != d.SizeA[0] {
		t.Fatalf("Length = %d, want %d", tile.Length, d.SizeA[0])
	}
}

func TestBuildTileSpecRectangularWhenAxis0Moves(t *testing.T) {
	d, err := newDescriptor([]int{4, 5, 6}, []int{2, 0, 1}, []int{4, 5, 6}, []int{6, 6, 4}, []float64(nil), []float64(nil))
	if err != nil {
		t.Fatal(err)
	}
	tile := buildTileSpec(d)
	if tile.ConstStride1 {
		t.Fatal("did not expect ConstStride1 when perm[0] != 0")
	}
	if tile.TileAxisA != 0 {
		t.Fatalf("TileAxisA = %d, want 0", tile.TileAxisA)
	}
	inv := d.InvPerm()
	if tile.TileAxisB != inv[0] {
		t.Fatalf("TileAxisB = %d, want %d", tile.TileAxisB, inv[0])
	}
	if tile.Rows != d.SizeA[tile.TileAxisB] || tile.Cols != d.SizeA[tile.TileAxisA] {
		t.Fatalf("Rows/Cols = %d/%d, want %d/%d", tile.Rows, tile.Cols, d.SizeA[tile.TileAxisB], d.SizeA[tile.TileAxisA])
	}
}

func TestOuterAxesExcludesTileAxes(t *testing.T) {
	d, err := newDescriptor([]int{2, 3, 4, 5}, []int{3, 1, 0, 2}, []int{2, 3, 4, 5}, []int{4, 3, 5, 2}, []float64(nil), []float64(nil))
	if err != nil {
		t.Fatal(err)
	}
	tile := buildTileSpec(d)
	axes := outerAxes(d, tile, naturalOrder(d.Dim))
	for _, a := range axes {
		if a == tile.TileAxisA || a == tile.TileAxisB {
			t.Fatalf("outerAxes leaked a tile axis: %d", a)
		}
	}
	if len(axes) != d.Dim-2 {
		t.Fatalf("len(axes) = %d, want %d", len(axes), d.Dim-2)
	}
}

func TestBuildChainNilForPure2DTranspose(t *testing.T) {
	d, err := newDescriptor([]int{6, 4}, []int{1, 0}, []int{6, 4}, []int{4, 6}, []float64(nil), []float64(nil))
	if err != nil {
		t.Fatal(err)
	}
	tile := buildTileSpec(d)
	axes := outerAxes(d, tile, naturalOrder(d.Dim))
	if len(axes) != 0 {
		t.Fatalf("2D transpose should leave no outer axes, got %v", axes)
	}
	chain := buildChain(d, axes, nil)
	if chain != nil {
		t.Fatal("expected a nil chain (immediate tile step) for a pure 2D transpose")
	}
}
