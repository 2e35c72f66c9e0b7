package hptt

import (
	"fmt"
	"unsafe"
)

// Descriptor is the normalized, type-agnostic shape description a Plan is
// built from (C2 in the design). It knows nothing about element type or
// buffer pointers; CreatePlan layers those on top once a Descriptor has
// been validated and fused.
type Descriptor struct {
	Dim int

	SizeA  []int
	Perm   []int
	OuterA []int
	OuterB []int

	LDA []int
	LDB []int
}

// InvPerm returns π⁻¹: InvPerm[j] is the A-axis that lands at B-axis j.
func (d *Descriptor) InvPerm() []int {
	inv := make([]int, d.Dim)
	for k, p := range d.Perm {
		inv[p] = k
	}
	return inv
}

// SizeB returns B's logical sizes, S_B[k] = S_A[π⁻¹[k]].
func (d *Descriptor) SizeB() []int {
	inv := d.InvPerm()
	sizeB := make([]int, d.Dim)
	for k, a := range inv {
		sizeB[k] = d.SizeA[a]
	}
	return sizeB
}

// newDescriptor validates (sizeA, perm, outerA, outerB) against a and b's
// footprints, fuses fusible adjacent axes, and computes leading
// dimensions. It is the sole entry point into C2 and is used by
// CreatePlan for every element type.
func newDescriptor[T any](sizeA, perm, outerA, outerB []int, a, b []T) (*Descriptor, error) {
	if err := validateShape(sizeA, perm, outerA, outerB, aliasedBuffers(a, b)); err != nil {
		return nil, err
	}

	fsA, fPerm, foA, foB := fuseAll(sizeA, perm, outerA, outerB)

	d := &Descriptor{
		Dim:    len(fsA),
		SizeA:  fsA,
		Perm:   fPerm,
		OuterA: foA,
		OuterB: foB,
	}
	d.LDA = leadingDims(d.OuterA)
	d.LDB = leadingDims(d.OuterB)
	return d, nil
}

// validateShape rejects with ErrInvalidShape per §4.2/§7: rank < 1, a
// permutation that isn't a bijection on {0..d), or an outer size smaller
// than the logical size on either operand. It also rejects when
// aliasedBuffers reports A and B as overlapping, the fourth §4.2
// rejection condition, with an error that matches both ErrInvalidShape
// and ErrUnsupportedLayout under errors.Is: the micro-kernel
// reads and writes its tile concurrently across workers and has no
// scatter/gather path that would make an overlapping A/B safe.
func validateShape(sizeA, perm, outerA, outerB []int, aliased bool) error {
	d := len(sizeA)
	if d < 1 {
		return fmt.Errorf("%w: rank %d must be >= 1", ErrInvalidShape, d)
	}
	if len(perm) != d || len(outerA) != d || len(outerB) != d {
		return fmt.Errorf("%w: sizeA/perm/outerA/outerB must all have length %d", ErrInvalidShape, d)
	}

	seen := make([]bool, d)
	for _, p := range perm {
		if p < 0 || p >= d || seen[p] {
			return fmt.Errorf("%w: perm %v is not a permutation of 0..%d", ErrInvalidShape, perm, d-1)
		}
		seen[p] = true
	}

	for k := 0; k < d; k++ {
		if sizeA[k] < 1 {
			return fmt.Errorf("%w: sizeA[%d]=%d must be >= 1", ErrInvalidShape, k, sizeA[k])
		}
		if outerA[k] < sizeA[k] {
			return fmt.Errorf("%w: outerA[%d]=%d < sizeA[%d]=%d", ErrInvalidShape, k, outerA[k], k, sizeA[k])
		}
	}

	inv := make([]int, d)
	for k, p := range perm {
		inv[p] = k
	}
	for j := 0; j < d; j++ {
		sizeBj := sizeA[inv[j]]
		if outerB[j] < sizeBj {
			return fmt.Errorf("%w: outerB[%d]=%d < sizeB[%d]=%d", ErrInvalidShape, j, outerB[j], j, sizeBj)
		}
	}

	if aliased {
		return fmt.Errorf("%w: %w: input and output buffers alias with overlapping extents", ErrInvalidShape, ErrUnsupportedLayout)
	}
	return nil
}

// aliasedBuffers is the best-effort A/B aliasing check §4.2 asks for:
// true when a and b share underlying storage and their occupied byte
// ranges overlap. A nil or empty buffer can never alias, which is what
// lets CreatePlan call this before SetInputPtr/SetOutputPtr have
// supplied real buffers.
func aliasedBuffers[T any](a, b []T) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	pa := uintptr(unsafe.Pointer(unsafe.SliceData(a)))
	pb := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	var zero T
	size := unsafe.Sizeof(zero)
	ea := pa + uintptr(len(a))*size
	eb := pb + uintptr(len(b))*size
	return pa < eb && pb < ea
}

// leadingDims computes lda (or ldb) as prefix products of outer sizes,
// with lda[0] = 1: element stride to advance one step along an axis.
func leadingDims(outer []int) []int {
	d := len(outer)
	lda := make([]int, d)
	if d == 0 {
		return lda
	}
	lda[0] = 1
	for k := 1; k < d; k++ {
		lda[k] = lda[k-1] * outer[k-1]
	}
	return lda
}

// fuseOnce coalesces the highest-index fusible adjacent pair (k, k+1),
// per §4.2's policy of fusing the highest-index pair first so the
// unit-stride axis retains position 0 when possible. A pair is fusible
// when it is consecutively permuted (perm[k]+1 == perm[k+1]) and carries
// no padding on the inner side of either operand.
func fuseOnce(sizeA, perm, outerA, outerB []int) (newSizeA, newPerm, newOuterA, newOuterB []int, fused bool) {
	d := len(sizeA)
	for k := d - 2; k >= 0; k-- {
		if perm[k]+1 != perm[k+1] {
			continue
		}
		if outerA[k] != sizeA[k] {
			continue
		}
		bInner := perm[k]
		if outerB[bInner] != sizeA[k] {
			continue
		}

		sizeA2 := make([]int, d-1)
		outerA2 := make([]int, d-1)
		perm2 := make([]int, d-1)
		copy(sizeA2[:k], sizeA[:k])
		copy(outerA2[:k], outerA[:k])
		copy(perm2[:k], perm[:k])

		sizeA2[k] = sizeA[k] * sizeA[k+1]
		outerA2[k] = sizeA[k] * outerA[k+1]
		perm2[k] = perm[k]

		copy(sizeA2[k+1:], sizeA[k+2:])
		copy(outerA2[k+1:], outerA[k+2:])
		copy(perm2[k+1:], perm[k+2:])

		for i := range perm2 {
			if perm2[i] > bInner {
				perm2[i]--
			}
		}

		outerB2 := make([]int, d-1)
		copy(outerB2[:bInner], outerB[:bInner])
		outerB2[bInner] = sizeA[k] * outerB[bInner+1]
		copy(outerB2[bInner+1:], outerB[bInner+2:])

		return sizeA2, perm2, outerA2, outerB2, true
	}
	return sizeA, perm, outerA, outerB, false
}

// fuseAll repeatedly applies fuseOnce until no fusible pair remains.
// Fusing always shrinks d by one and terminates because d >= 1 is a
// fixed point (a single axis has no adjacent pair to fuse).
func fuseAll(sizeA, perm, outerA, outerB []int) (newSizeA, newPerm, newOuterA, newOuterB []int) {
	newSizeA, newPerm, newOuterA, newOuterB = sizeA, perm, outerA, outerB
	for {
		var fused bool
		newSizeA, newPerm, newOuterA, newOuterB, fused = fuseOnce(newSizeA, newPerm, newOuterA, newOuterB)
		if !fused {
			return
		}
	}
}
