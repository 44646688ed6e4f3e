// Copyright (c) 2023 The Decred developers.

package blake512

import (
	"github.com/decred/cpuminer/lanes"
)

func g[V lanes.Vec64](v *[16]V, a, b, c, d int, mx, my V) {
	v[a] = lanes.Add64(lanes.Add64(v[a], v[b]), mx)
	v[d] = lanes.RotR64(lanes.Xor64(v[d], v[a]), 32)
	v[c] = lanes.Add64(v[c], v[d])
	v[b] = lanes.RotR64(lanes.Xor64(v[b], v[c]), 25)
	v[a] = lanes.Add64(lanes.Add64(v[a], v[b]), my)
	v[d] = lanes.RotR64(lanes.Xor64(v[d], v[a]), 16)
	v[c] = lanes.Add64(v[c], v[d])
	v[b] = lanes.RotR64(lanes.Xor64(v[b], v[c]), 11)
}

func initState[V lanes.Vec64](v *[16]V, h *[8]V, t0, t1 uint64) {
	copy(v[:8], h[:])
	for i := 0; i < 4; i++ {
		v[8+i] = lanes.Splat64[V](c[i])
	}
	v[12] = lanes.Splat64[V](t0 ^ c[4])
	v[13] = lanes.Splat64[V](t0 ^ c[5])
	v[14] = lanes.Splat64[V](t1 ^ c[6])
	v[15] = lanes.Splat64[V](t1 ^ c[7])
}

func round[V lanes.Vec64](v *[16]V, m *[16]V, r int) {
	s := &sigma[r%10]
	for i, x := range columns {
		mx := lanes.XorScalar64(m[s[2*i]], c[s[2*i+1]])
		my := lanes.XorScalar64(m[s[2*i+1]], c[s[2*i]])
		g(v, x[0], x[1], x[2], x[3], mx, my)
	}
}

func feedForward[V lanes.Vec64](h *[8]V, v *[16]V) {
	for i := 0; i < 8; i++ {
		h[i] = lanes.Xor64(h[i], lanes.Xor64(v[i], v[i+8]))
	}
}

// compress is the general BLAKE-512 compression function.
func compress[V lanes.Vec64](h *[8]V, m *[16]V, t0, t1 uint64) {
	var v [16]V
	initState(&v, h, t0, t1)
	for r := 0; r < Rounds; r++ {
		round(&v, m, r)
	}
	feedForward(h, &v)
}
