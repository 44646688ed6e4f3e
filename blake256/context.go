// Copyright (c) 2023 The Decred developers.

package blake256

import (
	"github.com/decred/cpuminer/lanes"
)

// Context is a streaming BLAKE-256 state over the lanes of V.  Input is
// consumed as interleaved big-endian message words, one word per lane per
// element.
type Context[V lanes.Vec32] struct {
	h      [8]V
	buf    [BlockWords]V
	ptr    int
	t0, t1 uint32
	rounds int
}

// New returns a context for standard 14-round BLAKE-256.
func New[V lanes.Vec32]() *Context[V] {
	return NewRounds[V](Rounds)
}

// NewRounds returns a context that runs the given number of rounds per
// compression.
func NewRounds[V lanes.Vec32](rounds int) *Context[V] {
	ctx := &Context[V]{rounds: rounds}
	ctx.Reset()
	return ctx
}

// Reset returns the context to its initial state.
func (ctx *Context[V]) Reset() {
	for i := range ctx.h {
		ctx.h[i] = lanes.Splat32[V](iv[i])
	}
	ctx.ptr = 0
	ctx.t0, ctx.t1 = 0, 0
}

// Update absorbs message words, compressing every block that fills up.
func (ctx *Context[V]) Update(words []V) {
	for len(words) > 0 {
		n := copy(ctx.buf[ctx.ptr:], words)
		ctx.ptr += n
		words = words[n:]
		if ctx.ptr == BlockWords {
			ctx.t0 += BlockSize * 8
			if ctx.t0 < BlockSize*8 {
				ctx.t1++
			}
			compress(&ctx.h, &ctx.buf, ctx.t0, ctx.t1, ctx.rounds)
			ctx.ptr = 0
		}
	}
}

// Sum returns the digest of the words written so far without changing the
// context.
func (ctx *Context[V]) Sum() [8]V {
	var last V
	return ctx.SumPartial(last, 0)
}

// SumPartial returns the digest of the words written so far followed by
// the first n (0-3) bytes of last, without changing the context.
func (ctx *Context[V]) SumPartial(last V, n int) [8]V {
	d := *ctx
	d.close(last, n)
	return d.h
}

func (ctx *Context[V]) close(last V, n int) {
	var zero V
	nbytes := 4*ctx.ptr + n
	bits := uint32(nbytes) * 8
	t0, t1 := ctx.t0+bits, ctx.t1
	if t0 < bits {
		t1++
	}

	ctx.buf[ctx.ptr] = lanes.PadBE32(last, n, 0x80)
	for i := ctx.ptr + 1; i < BlockWords; i++ {
		ctx.buf[i] = zero
	}

	// The final-bit, the 64-bit length and the terminator need 9 bytes.
	// When they do not fit, the padded block is compressed on its own
	// and the length goes into a block holding no message bits.
	if nbytes > BlockSize-9 {
		compress(&ctx.h, &ctx.buf, t0, t1, ctx.rounds)
		ctx.buf = [BlockWords]V{}
		ctx.appendLength(t0, t1)
		compress(&ctx.h, &ctx.buf, 0, 0, ctx.rounds)
		return
	}

	ctx.appendLength(t0, t1)
	if nbytes == 0 {
		t0, t1 = 0, 0
	}
	compress(&ctx.h, &ctx.buf, t0, t1, ctx.rounds)
}

func (ctx *Context[V]) appendLength(t0, t1 uint32) {
	ctx.buf[13] = lanes.Or32(ctx.buf[13], lanes.Splat32[V](1))
	ctx.buf[14] = lanes.Splat32[V](t1)
	ctx.buf[15] = lanes.Splat32[V](t0)
}

// Full hashes the message words in one call.
func Full[V lanes.Vec32](words []V, rounds int) [8]V {
	ctx := NewRounds[V](rounds)
	ctx.Update(words)
	return ctx.Sum()
}
