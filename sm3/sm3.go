// Copyright (c) 2023 The Decred developers.

// Package sm3 implements the SM3 hash function over interleaved lanes.
package sm3

import (
	"math/bits"

	"github.com/decred/cpuminer/lanes"
)

const (
	// Size is the size of an SM3 digest in bytes.
	Size = 32

	// BlockSize is the block size of SM3 in bytes.
	BlockSize = 64

	blockWords = BlockSize / 4
	steps      = 64
)

var iv = [8]uint32{
	0x7380166f, 0x4914b2b9, 0x172442d7, 0xda8a0600,
	0xa96f30bc, 0x163138aa, 0xe38dee4d, 0xb0fb0e4e,
}

// stepConst[j] is T_j rotated left by j mod 32.
var stepConst = func() (t [steps]uint32) {
	for j := range t {
		c := uint32(0x79cc4519)
		if j >= 16 {
			c = 0x7a879d8a
		}
		t[j] = bits.RotateLeft32(c, j%32)
	}
	return t
}()

func p0[V lanes.Vec32](x V) V {
	return lanes.Xor32(lanes.Xor32(x, lanes.RotL32(x, 9)), lanes.RotL32(x, 17))
}

func p1[V lanes.Vec32](x V) V {
	return lanes.Xor32(lanes.Xor32(x, lanes.RotL32(x, 15)), lanes.RotL32(x, 23))
}

func ff[V lanes.Vec32](j int, a, b, c V) V {
	if j < 16 {
		return lanes.Xor32(lanes.Xor32(a, b), c)
	}
	return lanes.Or32(lanes.Or32(lanes.And32(a, b), lanes.And32(b, c)), lanes.And32(a, c))
}

func gg[V lanes.Vec32](j int, e, f, g V) V {
	if j < 16 {
		return lanes.Xor32(lanes.Xor32(e, f), g)
	}
	return lanes.Or32(lanes.And32(e, f), lanes.AndNot32(g, e))
}

// expand fills w[16:] from the sixteen message words in w[:16].
func expand[V lanes.Vec32](w *[steps + 4]V) {
	for i := blockWords; i < len(w); i++ {
		t := lanes.Xor32(lanes.Xor32(w[i-16], w[i-9]), lanes.RotL32(w[i-3], 15))
		w[i] = lanes.Xor32(lanes.Xor32(p1(t), lanes.RotL32(w[i-13], 7)), w[i-6])
	}
}

// compress absorbs one block of big-endian message words.
func compress[V lanes.Vec32](h *[8]V, m *[blockWords]V) {
	var w [steps + 4]V
	copy(w[:], m[:])
	expand(&w)

	a, b, c, d, e, f, g, hh := h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7]
	for j := 0; j < steps; j++ {
		x := lanes.RotL32(a, 12)
		ss1 := lanes.RotL32(lanes.AddScalar32(lanes.Add32(x, e), stepConst[j]), 7)
		ss2 := lanes.Xor32(ss1, x)
		tt1 := lanes.Add32(lanes.Add32(ff(j, a, b, c), d), lanes.Add32(ss2, lanes.Xor32(w[j], w[j+4])))
		tt2 := lanes.Add32(lanes.Add32(gg(j, e, f, g), hh), lanes.Add32(ss1, w[j]))

		d, c, b, a = c, lanes.RotL32(b, 9), a, tt1
		hh, g, f, e = g, lanes.RotL32(f, 19), e, p0(tt2)
	}

	for i, x := range [8]V{a, b, c, d, e, f, g, hh} {
		h[i] = lanes.Xor32(h[i], x)
	}
}
