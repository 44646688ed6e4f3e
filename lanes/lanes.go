// Copyright (c) 2023 The Decred developers.

// Package lanes provides the vector word types that every multi-lane hash
// context in this module is written against, along with the lane-wise
// arithmetic and the interleaving helpers that move independent byte
// buffers in and out of them.
//
// A vector word of width K holds word i of K independent messages, one per
// lane:
//
//	buffer 0: |w0 w1 w2 ...|         V[0] = |w0.0 w0.1 ... w0.K-1|
//	buffer 1: |w0 w1 w2 ...|   ==>   V[1] = |w1.0 w1.1 ... w1.K-1|
//	...                              ...
//
// All arithmetic is modular and applied independently to each lane.
package lanes

import (
	"math/bits"
)

// Vec32 is the set of vector words made of 32-bit lanes.
type Vec32 interface {
	~[1]uint32 | ~[2]uint32 | ~[4]uint32 | ~[8]uint32 | ~[16]uint32
}

// Vec64 is the set of vector words made of 64-bit lanes.
type Vec64 interface {
	~[1]uint64 | ~[2]uint64 | ~[4]uint64 | ~[8]uint64 | ~[16]uint64
}

// Vector words for each supported lane count.
type (
	V1x32  [1]uint32
	V2x32  [2]uint32
	V4x32  [4]uint32
	V8x32  [8]uint32
	V16x32 [16]uint32

	V1x64  [1]uint64
	V2x64  [2]uint64
	V4x64  [4]uint64
	V8x64  [8]uint64
	V16x64 [16]uint64
)

// Widths lists the supported lane counts in ascending order.
var Widths = []int{1, 2, 4, 8, 16}

// Count32 returns the number of lanes in V.
func Count32[V Vec32]() int {
	var v V
	return len(v)
}

// Count64 returns the number of lanes in V.
func Count64[V Vec64]() int {
	var v V
	return len(v)
}

// Splat32 returns a vector with x in every lane.
func Splat32[V Vec32](x uint32) V {
	var v V
	for i := range len(v) {
		v[i] = x
	}
	return v
}

// Add32 returns a+b.
func Add32[V Vec32](a, b V) V {
	for i := range len(a) {
		a[i] += b[i]
	}
	return a
}

// Sub32 returns a-b.
func Sub32[V Vec32](a, b V) V {
	for i := range len(a) {
		a[i] -= b[i]
	}
	return a
}

// AddScalar32 returns a+x.
func AddScalar32[V Vec32](a V, x uint32) V {
	for i := range len(a) {
		a[i] += x
	}
	return a
}

// Xor32 returns a^b.
func Xor32[V Vec32](a, b V) V {
	for i := range len(a) {
		a[i] ^= b[i]
	}
	return a
}

// XorScalar32 returns a^x.
func XorScalar32[V Vec32](a V, x uint32) V {
	for i := range len(a) {
		a[i] ^= x
	}
	return a
}

// And32 returns a&b.
func And32[V Vec32](a, b V) V {
	for i := range len(a) {
		a[i] &= b[i]
	}
	return a
}

// Or32 returns a|b.
func Or32[V Vec32](a, b V) V {
	for i := range len(a) {
		a[i] |= b[i]
	}
	return a
}

// AndNot32 returns a&^b.
func AndNot32[V Vec32](a, b V) V {
	for i := range len(a) {
		a[i] &^= b[i]
	}
	return a
}

// Not32 returns ^a.
func Not32[V Vec32](a V) V {
	for i := range len(a) {
		a[i] = ^a[i]
	}
	return a
}

// RotL32 rotates every lane left by n bits.
func RotL32[V Vec32](a V, n int) V {
	for i := range len(a) {
		a[i] = bits.RotateLeft32(a[i], n)
	}
	return a
}

// RotR32 rotates every lane right by n bits.
func RotR32[V Vec32](a V, n int) V {
	for i := range len(a) {
		a[i] = bits.RotateLeft32(a[i], -n)
	}
	return a
}

// Shl32 shifts every lane left by n bits.
func Shl32[V Vec32](a V, n uint) V {
	for i := range len(a) {
		a[i] <<= n
	}
	return a
}

// Shr32 shifts every lane right by n bits.
func Shr32[V Vec32](a V, n uint) V {
	for i := range len(a) {
		a[i] >>= n
	}
	return a
}

// Splat64 returns a vector with x in every lane.
func Splat64[V Vec64](x uint64) V {
	var v V
	for i := range len(v) {
		v[i] = x
	}
	return v
}

// Add64 returns a+b.
func Add64[V Vec64](a, b V) V {
	for i := range len(a) {
		a[i] += b[i]
	}
	return a
}

// Xor64 returns a^b.
func Xor64[V Vec64](a, b V) V {
	for i := range len(a) {
		a[i] ^= b[i]
	}
	return a
}

// XorScalar64 returns a^x.
func XorScalar64[V Vec64](a V, x uint64) V {
	for i := range len(a) {
		a[i] ^= x
	}
	return a
}

// And64 returns a&b.
func And64[V Vec64](a, b V) V {
	for i := range len(a) {
		a[i] &= b[i]
	}
	return a
}

// Or64 returns a|b.
func Or64[V Vec64](a, b V) V {
	for i := range len(a) {
		a[i] |= b[i]
	}
	return a
}

// RotR64 rotates every lane right by n bits.
func RotR64[V Vec64](a V, n int) V {
	for i := range len(a) {
		a[i] = bits.RotateLeft64(a[i], -n)
	}
	return a
}

// Widen32 returns a 64-bit vector whose lanes hold the zero-extended lanes
// of a.  Both vectors must have the same lane count.
func Widen32[W Vec64, V Vec32](a V) W {
	var w W
	if len(w) != len(a) {
		panic("lanes: lane count mismatch")
	}
	for i := range len(a) {
		w[i] = uint64(a[i])
	}
	return w
}
