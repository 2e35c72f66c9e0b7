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

import "unsafe"

// DispatchLevel names the SIMD width class assumed for tile sizing.
// It never selects an actual instruction encoding in this build — see
// the package doc comment — but keeps the same vocabulary a true
// dispatching SIMD library would use.
type DispatchLevel int

const (
	// DispatchScalar means no wide-vector feature was detected; tiles are
	// sized for a 128-bit (16 byte) baseline width.
	DispatchScalar DispatchLevel = iota

	// DispatchAVX2 assumes 256-bit (32 byte) vectors.
	DispatchAVX2

	// DispatchAVX512 assumes 512-bit (64 byte) vectors.
	DispatchAVX512

	// DispatchNEON assumes 128-bit (16 byte) vectors.
	DispatchNEON
)

// String returns a human-readable name for the dispatch level.
func (d DispatchLevel) String() string {
	switch d {
	case DispatchScalar:
		return "scalar"
	case DispatchAVX2:
		return "avx2"
	case DispatchAVX512:
		return "avx512"
	case DispatchNEON:
		return "neon"
	default:
		return "unknown"
	}
}

// currentLevel is the detected width class for this runtime.
// Set by init() in dispatch_*.go files.
var currentLevel DispatchLevel

// currentWidth is the assumed vector width in bytes for the current level.
// Set by init() in dispatch_*.go files.
var currentWidth int

// CurrentLevel returns the detected width class.
func CurrentLevel() DispatchLevel {
	return currentLevel
}

// CurrentWidth returns the assumed vector width in bytes.
func CurrentWidth() int {
	return currentWidth
}

// MaxLanes returns the number of T values that fit in one vector at the
// current width, i.e. L in the element-traits design (C1).
func MaxLanes[T Numeric]() int {
	var dummy T
	elementSize := int(unsafe.Sizeof(dummy))
	if elementSize == 0 {
		return 0
	}
	// A complex value already stores two reals; a "lane" for a complex
	// element type is one complex value, so this falls out of sizeof
	// naturally without a special case.
	return currentWidth / elementSize
}
