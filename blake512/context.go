// Copyright (c) 2023 The Decred developers.

package blake512

import (
	"github.com/decred/cpuminer/lanes"
)

// Context is a streaming BLAKE-512 state over the lanes of V, consuming
// interleaved big-endian 64-bit message words.
type Context[V lanes.Vec64] struct {
	h      [8]V
	buf    [BlockWords]V
	ptr    int
	t0, t1 uint64
}

// New returns an initialized context.
func New[V lanes.Vec64]() *Context[V] {
	ctx := &Context[V]{}
	ctx.Reset()
	return ctx
}

// Reset returns the context to its initial state.
func (ctx *Context[V]) Reset() {
	for i := range ctx.h {
		ctx.h[i] = lanes.Splat64[V](iv[i])
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
			compress(&ctx.h, &ctx.buf, ctx.t0, ctx.t1)
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
// the first n (0-7) bytes of last.
func (ctx *Context[V]) SumPartial(last V, n int) [8]V {
	d := *ctx
	d.close(last, n)
	return d.h
}

func (ctx *Context[V]) close(last V, n int) {
	var zero V
	nbytes := 8*ctx.ptr + n
	bits := uint64(nbytes) * 8
	t0, t1 := ctx.t0+bits, ctx.t1
	if t0 < bits {
		t1++
	}

	ctx.buf[ctx.ptr] = lanes.PadBE64(last, n, 0x80)
	for i := ctx.ptr + 1; i < BlockWords; i++ {
		ctx.buf[i] = zero
	}

	// Terminator, final bit and the 128-bit length take 17 bytes.
	if nbytes > BlockSize-17 {
		compress(&ctx.h, &ctx.buf, t0, t1)
		ctx.buf = [BlockWords]V{}
		ctx.appendLength(t0, t1)
		compress(&ctx.h, &ctx.buf, 0, 0)
		return
	}

	ctx.appendLength(t0, t1)
	if nbytes == 0 {
		t0, t1 = 0, 0
	}
	compress(&ctx.h, &ctx.buf, t0, t1)
}

func (ctx *Context[V]) appendLength(t0, t1 uint64) {
	ctx.buf[13] = lanes.Or64(ctx.buf[13], lanes.Splat64[V](1))
	ctx.buf[14] = lanes.Splat64[V](t1)
	ctx.buf[15] = lanes.Splat64[V](t0)
}

// Full hashes the message words in one call.
func Full[V lanes.Vec64](words []V) [8]V {
	ctx := New[V]()
	ctx.Update(words)
	return ctx.Sum()
}
