// Copyright (c) 2023 The Decred developers.

// Package simd implements the SIMD-512 hash function over interleaved
// lanes.
//
// Each 1024-bit block is expanded by a number theoretic transform into
// 256 words that key 32 Feistel-like steps over four 256-bit registers,
// followed by four feed-forward steps keyed by the previous chaining value.
package simd

import (
	"encoding/binary"

	"github.com/decred/cpuminer/lanes"
)

const (
	// Size is the size of a SIMD-512 digest in bytes.
	Size = 64

	// BlockSize is the block size of SIMD-512 in bytes.
	BlockSize = 128

	blockWords = BlockSize / 4
	stateWords = 32
)

var iv = [stateWords]uint32{
	0x0ba16b95, 0x72f999ad, 0x9fecc2ae, 0xba3264fc,
	0x5e894929, 0x8e9f30e5, 0x2f1daa37, 0xf0f2c558,
	0xac506643, 0xa90635a5, 0xe25b878b, 0xaab7878f,
	0x88817f7a, 0x0a02892b, 0x559a7550, 0x598f657e,
	0x7eef60a1, 0x6b70e3e8, 0x9c1714d1, 0xb958e2a8,
	0xab02675e, 0xed1c014f, 0xcd8d65bb, 0xfdb7a257,
	0x09254899, 0xd699c7bc, 0x9019b6dc, 0x2b9022e4,
	0x8fa14956, 0x21bf9bd3, 0xb94d0943, 0x6ffddc22,
}

// Rotation pairs of the four rounds; step q of a round rotates by
// rotations[r][q] and rotations[r][(q+1)%4].
var rotations = [4][4]int{
	{3, 23, 17, 27},
	{28, 19, 22, 7},
	{29, 9, 15, 5},
	{4, 13, 10, 25},
}

var feedRotations = [4][2]int{{4, 13}, {13, 10}, {10, 25}, {25, 4}}

// permutations selects the register word each step adds back in.
var permutations = [7]int{1, 6, 2, 3, 5, 7, 4}

type register[V lanes.Vec32] [8]V

func choose[V lanes.Vec32](x, y, z V) V {
	return lanes.Xor32(lanes.And32(lanes.Xor32(y, z), x), z)
}

func majority[V lanes.Vec32](x, y, z V) V {
	return lanes.Or32(lanes.And32(x, y), lanes.And32(lanes.Or32(x, y), z))
}

// step is one Feistel step over the registers a, b, c, d.
func step[V lanes.Vec32](s *[4]register[V], w *register[V], f func(x, y, z V) V, r, rs, k int) {
	a, b, c, d := &s[0], &s[1], &s[2], &s[3]
	var ra, na register[V]
	for n := range ra {
		ra[n] = lanes.RotL32(a[n], r)
	}
	p := permutations[k%len(permutations)]
	for n := range na {
		t := lanes.Add32(lanes.Add32(d[n], w[n]), f(a[n], b[n], c[n]))
		na[n] = lanes.Add32(lanes.RotL32(t, rs), ra[n^p])
	}
	*s = [4]register[V]{na, ra, *b, *c}
}

// expandLanes runs the message expansion for every lane of m.
func expandLanes[V lanes.Vec32](m *[blockWords]V, final bool) [32]register[V] {
	var w [32]register[V]
	var msg [BlockSize]byte
	for l := range len(m[0]) {
		for i := range m {
			binary.LittleEndian.PutUint32(msg[4*i:], m[i][l])
		}
		lw := expand(&msg, final)
		for s := range lw {
			for j := range lw[s] {
				w[s][j][l] = lw[s][j]
			}
		}
	}
	return w
}

// compress absorbs one block of little-endian message words.
func compress[V lanes.Vec32](h *[stateWords]V, m *[blockWords]V, final bool) {
	w := expandLanes(m, final)

	var s [4]register[V]
	for i := range h {
		s[i/8][i%8] = lanes.Xor32(h[i], m[i])
	}

	k := 0
	for _, rot := range rotations {
		for _, f := range [2]func(x, y, z V) V{choose[V], majority[V]} {
			for q := 0; q < 4; q++ {
				step(&s, &w[k], f, rot[q], rot[(q+1)%4], k)
				k++
			}
		}
	}

	for q, rot := range feedRotations {
		var ff register[V]
		copy(ff[:], h[8*q:])
		step(&s, &ff, choose[V], rot[0], rot[1], k)
		k++
	}

	for i := range h {
		h[i] = s[i/8][i%8]
	}
}
