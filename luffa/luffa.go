// Copyright (c) 2023 The Decred developers.

// Package luffa implements the Luffa-512 hash function over interleaved
// lanes.
//
// The 1280-bit state is five 256-bit sub-states.  Each 256-bit message
// block is mixed into all five by the message injection function and every
// sub-state is then permuted by its own tweaked eight-step permutation.
package luffa

import (
	"github.com/decred/cpuminer/lanes"
)

const (
	// Size is the size of a Luffa-512 digest in bytes.
	Size = 64

	// BlockSize is the block size of Luffa-512 in bytes.
	BlockSize = 32

	blockWords = BlockSize / 4
	subStates  = 5
	steps      = 8
)

type state[V lanes.Vec32] [subStates][blockWords]V

// mulTwo multiplies a 256-bit word by x in GF(2^8)[x] as defined by Luffa.
func mulTwo[V lanes.Vec32](s [blockWords]V) [blockWords]V {
	t := s[7]
	return [blockWords]V{
		t, lanes.Xor32(s[0], t), s[1], lanes.Xor32(s[2], t),
		lanes.Xor32(s[3], t), s[4], s[5], s[6],
	}
}

func xorWords[V lanes.Vec32](a, b [blockWords]V) [blockWords]V {
	for i := range a {
		a[i] = lanes.Xor32(a[i], b[i])
	}
	return a
}

// inject is the message injection function MI.
func inject[V lanes.Vec32](v *state[V], m [blockWords]V) {
	a := mulTwo(xorWords(xorWords(xorWords(v[0], v[1]), xorWords(v[2], v[3])), v[4]))
	for j := range v {
		v[j] = xorWords(v[j], a)
	}

	old := *v
	for j := range v {
		v[j] = xorWords(mulTwo(old[j]), old[(j+1)%subStates])
	}
	old = *v
	for j := range v {
		v[j] = xorWords(mulTwo(old[j]), old[(j+subStates-1)%subStates])
	}

	for j := range v {
		v[j] = xorWords(v[j], m)
		m = mulTwo(m)
	}
}

func subCrumb[V lanes.Vec32](a0, a1, a2, a3 V) (V, V, V, V) {
	tmp := a0
	a0 = lanes.Or32(a0, a1)
	a2 = lanes.Xor32(a2, a3)
	a1 = lanes.Not32(a1)
	a0 = lanes.Xor32(a0, a3)
	a3 = lanes.And32(a3, tmp)
	a1 = lanes.Xor32(a1, a3)
	a3 = lanes.Xor32(a3, a2)
	a2 = lanes.And32(a2, a0)
	a0 = lanes.Not32(a0)
	a2 = lanes.Xor32(a2, a1)
	a1 = lanes.Or32(a1, a3)
	tmp = lanes.Xor32(tmp, a1)
	a3 = lanes.Xor32(a3, a2)
	a2 = lanes.And32(a2, a1)
	a1 = lanes.Xor32(a1, a0)
	return tmp, a1, a2, a3
}

func mixWord[V lanes.Vec32](u, v V) (V, V) {
	v = lanes.Xor32(v, u)
	u = lanes.Xor32(lanes.RotL32(u, 2), v)
	v = lanes.Xor32(lanes.RotL32(v, 14), u)
	u = lanes.Xor32(lanes.RotL32(u, 10), v)
	v = lanes.RotL32(v, 1)
	return u, v
}

// permute is the step function applied to sub-state j, preceded by its
// tweak (rotating the upper four words left by j bits).
func permute[V lanes.Vec32](x *[blockWords]V, j int) {
	for i := 4; i < 8; i++ {
		x[i] = lanes.RotL32(x[i], j)
	}
	for s := 0; s < steps; s++ {
		x[0], x[1], x[2], x[3] = subCrumb(x[0], x[1], x[2], x[3])
		x[5], x[6], x[7], x[4] = subCrumb(x[5], x[6], x[7], x[4])
		for k := 0; k < 4; k++ {
			x[k], x[k+4] = mixWord(x[k], x[k+4])
		}
		x[0] = lanes.XorScalar32(x[0], rc0[j][s])
		x[4] = lanes.XorScalar32(x[4], rc4[j][s])
	}
}

// round absorbs one message block.
func round[V lanes.Vec32](v *state[V], m [blockWords]V) {
	inject(v, m)
	for j := range v {
		permute(&v[j], j)
	}
}

// Context is a streaming Luffa-512 state over the lanes of V, consuming
// interleaved big-endian message words.
type Context[V lanes.Vec32] struct {
	v   state[V]
	buf [blockWords]V
	ptr int
}

// New returns an initialized context.
func New[V lanes.Vec32]() *Context[V] {
	ctx := &Context[V]{}
	ctx.Reset()
	return ctx
}

// Reset returns the context to its initial state.
func (ctx *Context[V]) Reset() {
	for j := range ctx.v {
		for i := range ctx.v[j] {
			ctx.v[j][i] = lanes.Splat32[V](iv[j][i])
		}
	}
	ctx.ptr = 0
}

// Update absorbs message words.
func (ctx *Context[V]) Update(words []V) {
	for len(words) > 0 {
		n := copy(ctx.buf[ctx.ptr:], words)
		ctx.ptr += n
		words = words[n:]
		if ctx.ptr == blockWords {
			round(&ctx.v, ctx.buf)
			ctx.ptr = 0
		}
	}
}

// Sum returns the digest words of the words written so far without
// changing the context.
func (ctx *Context[V]) Sum() [16]V {
	var last V
	return ctx.SumPartial(last, 0)
}

// SumPartial returns the digest words of the words written so far followed
// by the first n (0-3) bytes of last.
func (ctx *Context[V]) SumPartial(last V, n int) [16]V {
	var zero V
	v := ctx.v
	buf := ctx.buf
	buf[ctx.ptr] = lanes.PadBE32(last, n, 0x80)
	for i := ctx.ptr + 1; i < blockWords; i++ {
		buf[i] = zero
	}
	round(&v, buf)

	// Two blank rounds, each yielding 256 bits of output.
	var out [16]V
	for k := 0; k < 2; k++ {
		round(&v, [blockWords]V{})
		for i := 0; i < blockWords; i++ {
			w := v[0][i]
			for j := 1; j < subStates; j++ {
				w = lanes.Xor32(w, v[j][i])
			}
			out[blockWords*k+i] = w
		}
	}
	return out
}

// Full hashes the message words in one call.
func Full[V lanes.Vec32](words []V) [16]V {
	ctx := New[V]()
	ctx.Update(words)
	return ctx.Sum()
}
