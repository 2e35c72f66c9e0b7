package hptt

import "testing"

func TestPrimeFactors(t *testing.T) {
	cases := map[int][]int{
		1:  {},
		2:  {2},
		12: {3, 2, 2},
		17: {17},
		30: {5, 3, 2},
	}
	for n, want := range cases {
		got := primeFactors(n)
		if len(got) != len(want) {
			t.Fatalf("primeFactors(%d) = %v, want %v", n, got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("primeFactors(%d) = %v, want %v", n, got, want)
			}
		}
	}
}

func TestAssignParallelismNeverExceedsAxisSize(t *testing.T) {
	desc := &Descriptor{Dim: 2, SizeA: []int{5, 100}, Perm: []int{0, 1}}
	factors, workers := assignParallelism(desc, []int{0, 1}, 16)
	if factors[0] > desc.SizeA[0] {
		t.Fatalf("axis 0 factor %d exceeds its size %d", factors[0], desc.SizeA[0])
	}
	if workers != factors[0]*factors[1] {
		t.Fatalf("workers=%d != product of factors %v", workers, factors)
	}
}

func TestAssignParallelismSingleThread(t *testing.T) {
	desc := &Descriptor{Dim: 2, SizeA: []int{10, 10}, Perm: []int{0, 1}}
	factors, workers := assignParallelism(desc, []int{0, 1}, 1)
	if workers != 1 {
		t.Fatalf("workers = %d, want 1", workers)
	}
	for _, f := range factors {
		if f != 1 {
			t.Fatalf("factors = %v, want all 1s", factors)
		}
	}
}

func TestAssignParallelismNoAxesIsSerial(t *testing.T) {
	desc := &Descriptor{Dim: 2, SizeA: []int{10, 10}, Perm: []int{1, 0}}
	factors, workers := assignParallelism(desc, nil, 8)
	if workers != 1 || len(factors) != 0 {
		t.Fatalf("expected serial fallback with no parallelizable axes, got workers=%d factors=%v", workers, factors)
	}
}

func TestPartitionAxisCoversFullRange(t *testing.T) {
	ranges := partitionAxis(17, 4)
	if len(ranges) != 4 {
		t.Fatalf("len(ranges) = %d, want 4", len(ranges))
	}
	total := 0
	prevEnd := 0
	for _, r := range ranges {
		if r.start != prevEnd {
			t.Fatalf("gap in partition: start=%d, prevEnd=%d", r.start, prevEnd)
		}
		total += r.end - r.start
		prevEnd = r.end
	}
	if total != 17 || prevEnd != 17 {
		t.Fatalf("partition does not cover [0,17): total=%d, end=%d", total, prevEnd)
	}
}

func TestExpandAssignmentsCartesianProduct(t *testing.T) {
	desc := &Descriptor{Dim: 2, SizeA: []int{4, 6}, Perm: []int{0, 1}}
	assignments := expandAssignments(desc, []int{0, 1}, map[int]int{0: 2, 1: 3})
	if len(assignments) != 6 {
		t.Fatalf("len(assignments) = %d, want 6", len(assignments))
	}
	seen := map[string]bool{}
	for _, a := range assignments {
		key := ""
		for _, axis := range []int{0, 1} {
			r := a[axis]
			key += string(rune('0'+r.start)) + "-" + string(rune('0'+r.end)) + "|"
		}
		seen[key] = true
	}
	if len(seen) != 6 {
		t.Fatalf("expected 6 distinct axis-range combinations, got %d", len(seen))
	}
}
