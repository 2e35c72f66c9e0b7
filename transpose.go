// Package hptt implements out-of-place, multi-threaded tensor
// transposition: B[perm(i)] = alpha*A[i] + beta*B[perm(i)] for an
// arbitrary-rank permutation, following the design of the HPTT engine.
//
// A caller normalizes a shape and permutation once via CreatePlan, which
// picks a loop order and a thread/parallelism assignment (optionally
// timing a few candidates against the real buffers), and then calls
// Execute as many times as needed. SetInputPtr/SetOutputPtr/SetAlpha/
// SetBeta let a Handle be reused across many buffers of identical shape
// without repeating the planning search.
package hptt

import (
	"os"

	"github.com/gopherml/hptt/internal/simd"
)

// Numeric is the closed set of element types CreatePlan accepts: single
// and double precision real and complex, matching the explicit template
// instantiations of the original engine.
type Numeric = simd.Numeric

// diagWriter is where CreatePlan prints a Handle's diagnostic summary
// when HPTT_VERBOSE >= 1. A package variable rather than a parameter,
// matching env.go's process-wide, environment-driven configuration.
var diagWriter = os.Stderr

// CreatePlanFloat32 is a non-generic convenience wrapper over
// CreatePlan for float32 call sites that would otherwise need an
// explicit type argument.
func CreatePlanFloat32(sizeA, perm []int, alpha float32, a []float32, outerSizeA []int, beta float32, b []float32, outerSizeB []int, numThreads int, method SelectionMethod) (*Handle[float32], error) {
	return CreatePlan(sizeA, perm, alpha, a, outerSizeA, beta, b, outerSizeB, numThreads, method)
}

// CreatePlanFloat64 is the float64 counterpart of CreatePlanFloat32.
func CreatePlanFloat64(sizeA, perm []int, alpha float64, a []float64, outerSizeA []int, beta float64, b []float64, outerSizeB []int, numThreads int, method SelectionMethod) (*Handle[float64], error) {
	return CreatePlan(sizeA, perm, alpha, a, outerSizeA, beta, b, outerSizeB, numThreads, method)
}

// CreatePlanComplex64 is the complex64 counterpart of CreatePlanFloat32.
func CreatePlanComplex64(sizeA, perm []int, alpha complex64, a []complex64, outerSizeA []int, beta complex64, b []complex64, outerSizeB []int, numThreads int, method SelectionMethod) (*Handle[complex64], error) {
	return CreatePlan(sizeA, perm, alpha, a, outerSizeA, beta, b, outerSizeB, numThreads, method)
}

// CreatePlanComplex128 is the complex128 counterpart of CreatePlanFloat32.
func CreatePlanComplex128(sizeA, perm []int, alpha complex128, a []complex128, outerSizeA []int, beta complex128, b []complex128, outerSizeB []int, numThreads int, method SelectionMethod) (*Handle[complex128], error) {
	return CreatePlan(sizeA, perm, alpha, a, outerSizeA, beta, b, outerSizeB, numThreads, method)
}
