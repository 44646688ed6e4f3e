// Copyright (c) 2023 The Decred developers.

package blake256

import (
	"github.com/decred/cpuminer/lanes"
)

// g is the quarter round function that each round applies to the 4x4
// internal state.  mx and my are the message words of the step already
// combined with their round constants.
func g[V lanes.Vec32](v *[16]V, a, b, c, d int, mx, my V) {
	v[a] = lanes.Add32(lanes.Add32(v[a], v[b]), mx)
	v[d] = lanes.RotR32(lanes.Xor32(v[d], v[a]), 16)
	v[c] = lanes.Add32(v[c], v[d])
	v[b] = lanes.RotR32(lanes.Xor32(v[b], v[c]), 12)
	v[a] = lanes.Add32(lanes.Add32(v[a], v[b]), my)
	v[d] = lanes.RotR32(lanes.Xor32(v[d], v[a]), 8)
	v[c] = lanes.Add32(v[c], v[d])
	v[b] = lanes.RotR32(lanes.Xor32(v[b], v[c]), 7)
}

// initState loads the 16-word working array for a compression:
//
//	|v0  v1  v2  v3 |   |h0    h1    h2    h3   |
//	|v4  v5  v6  v7 |   |h4    h5    h6    h7   |
//	|v8  v9  v10 v11| = |c0    c1    c2    c3   |
//	|v12 v13 v14 v15|   |t0^c4 t0^c5 t1^c6 t1^c7|
//
// where t0 and t1 are the low and high words of the bit counter.
func initState[V lanes.Vec32](v *[16]V, h *[8]V, t0, t1 uint32) {
	copy(v[:8], h[:])
	for i := 0; i < 4; i++ {
		v[8+i] = lanes.Splat32[V](c[i])
	}
	v[12] = lanes.Splat32[V](t0 ^ c[4])
	v[13] = lanes.Splat32[V](t0 ^ c[5])
	v[14] = lanes.Splat32[V](t1 ^ c[6])
	v[15] = lanes.Splat32[V](t1 ^ c[7])
}

// round applies one full round: G to each column and then to each
// diagonal, with message words selected by sigma[r mod 10].
func round[V lanes.Vec32](v *[16]V, m *[16]V, r int) {
	s := &sigma[r%10]
	for i, x := range columns {
		mx := lanes.XorScalar32(m[s[2*i]], c[s[2*i+1]])
		my := lanes.XorScalar32(m[s[2*i+1]], c[s[2*i]])
		g(v, x[0], x[1], x[2], x[3], mx, my)
	}
}

// feedForward folds the working array back into the chaining value.
func feedForward[V lanes.Vec32](h *[8]V, v *[16]V) {
	for i := 0; i < 8; i++ {
		h[i] = lanes.Xor32(h[i], lanes.Xor32(v[i], v[i+8]))
	}
}

// compress is the general BLAKE-256 compression function.  It recomputes
// the message schedule every round and makes no assumptions about the
// contents of the block.
func compress[V lanes.Vec32](h *[8]V, m *[16]V, t0, t1 uint32, rounds int) {
	var v [16]V
	initState(&v, h, t0, t1)
	for r := 0; r < rounds; r++ {
		round(&v, m, r)
	}
	feedForward(h, &v)
}
