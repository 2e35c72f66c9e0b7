package hptt

import "testing"

func TestHeuristicOrderPutsSmallestStrideLast(t *testing.T) {
	desc := &Descriptor{
		Dim:  4,
		Perm: []int{0, 1, 2, 3},
		LDA:  []int{1, 10, 100, 1000},
		LDB:  []int{1, 10, 100, 1000},
	}
	order := heuristicOrder(desc, []int{1, 2, 3})
	if order[len(order)-1] != 1 {
		t.Fatalf("order = %v, want axis 1 (smallest stride) last", order)
	}
	if order[0] != 3 {
		t.Fatalf("order = %v, want axis 3 (largest stride) first", order)
	}
}

func TestCandidateLoopOrdersEstimateReturnsOne(t *testing.T) {
	desc := &Descriptor{
		Dim:  4,
		Perm: []int{0, 1, 2, 3},
		LDA:  []int{1, 4, 16, 64},
		LDB:  []int{1, 4, 16, 64},
	}
	candidates := candidateLoopOrders(desc, []int{1, 2, 3}, Estimate)
	if len(candidates) != 1 {
		t.Fatalf("len(candidates) = %d, want 1 for Estimate", len(candidates))
	}
}

func TestCandidateLoopOrdersMeasureBoundedAndDistinct(t *testing.T) {
	desc := &Descriptor{
		Dim:  5,
		Perm: []int{0, 1, 2, 3, 4},
		LDA:  []int{1, 4, 16, 64, 256},
		LDB:  []int{1, 4, 16, 64, 256},
	}
	axes := []int{1, 2, 3, 4}
	candidates := candidateLoopOrders(desc, axes, Measure)
	if len(candidates) == 0 || len(candidates) > measureCandidateCap {
		t.Fatalf("len(candidates) = %d, want (0, %d]", len(candidates), measureCandidateCap)
	}
	seen := map[string]bool{}
	for _, c := range candidates {
		k := permKey(c)
		if seen[k] {
			t.Fatalf("duplicate candidate %v", c)
		}
		seen[k] = true
		if len(c) != len(axes) {
			t.Fatalf("candidate %v has wrong length", c)
		}
	}
}

func TestCandidateLoopOrdersCrazyExhaustiveForSmallRank(t *testing.T) {
	desc := &Descriptor{
		Dim:  3,
		Perm: []int{0, 1, 2},
		LDA:  []int{1, 3, 9},
		LDB:  []int{1, 3, 9},
	}
	axes := []int{0, 1, 2}
	candidates := candidateLoopOrders(desc, axes, Crazy)
	if len(candidates) != factorial(3) {
		t.Fatalf("Crazy with 3 axes gave %d candidates, want %d", len(candidates), factorial(3))
	}
}

func TestSingleAxisAlwaysOneCandidate(t *testing.T) {
	desc := &Descriptor{Dim: 2, Perm: []int{0, 1}, LDA: []int{1, 5}, LDB: []int{1, 5}}
	for _, m := range []SelectionMethod{Estimate, Measure, Patient, Crazy} {
		candidates := candidateLoopOrders(desc, []int{1}, m)
		if len(candidates) != 1 {
			t.Fatalf("method %s: len(candidates) = %d, want 1 for a single axis", m, len(candidates))
		}
	}
}
