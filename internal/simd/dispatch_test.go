package simd

import "testing"

func TestCurrentWidthIsAPowerOfTwoAtLeast16(t *testing.T) {
	w := CurrentWidth()
	if w < 16 {
		t.Fatalf("CurrentWidth() = %d, want >= 16", w)
	}
	if w&(w-1) != 0 {
		t.Fatalf("CurrentWidth() = %d, want a power of two", w)
	}
}

func TestDispatchLevelStringIsNonEmpty(t *testing.T) {
	if CurrentLevel().String() == "" {
		t.Fatal("DispatchLevel.String() returned empty for the detected level")
	}
	if DispatchLevel(99).String() != "unknown" {
		t.Fatal("expected \"unknown\" for an out-of-range DispatchLevel")
	}
}
