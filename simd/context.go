// Copyright (c) 2023 The Decred developers.

package simd

import (
	"github.com/decred/cpuminer/lanes"
)

// Context is a streaming SIMD-512 state over the lanes of V, consuming
// interleaved little-endian 32-bit message words.
type Context[V lanes.Vec32] struct {
	h      [stateWords]V
	buf    [blockWords]V
	ptr    int
	blocks uint64
}

// New returns an initialized context.
func New[V lanes.Vec32]() *Context[V] {
	ctx := &Context[V]{}
	ctx.Reset()
	return ctx
}

// Reset returns the context to its initial state.
func (ctx *Context[V]) Reset() {
	for i := range ctx.h {
		ctx.h[i] = lanes.Splat32[V](iv[i])
	}
	ctx.ptr = 0
	ctx.blocks = 0
}

// Update absorbs message words, compressing every block that fills up.
func (ctx *Context[V]) Update(words []V) {
	for len(words) > 0 {
		n := copy(ctx.buf[ctx.ptr:], words)
		ctx.ptr += n
		words = words[n:]
		if ctx.ptr == blockWords {
			compress(&ctx.h, &ctx.buf, false)
			ctx.blocks++
			ctx.ptr = 0
		}
	}
}

// Sum returns the digest of the words written so far without changing the
// context.
func (ctx *Context[V]) Sum() [16]V {
	var last V
	return ctx.SumPartial(last, 0)
}

// SumPartial returns the digest of the words written so far followed by
// the first n (0-3) bytes of last.
func (ctx *Context[V]) SumPartial(last V, n int) [16]V {
	d := *ctx
	d.close(last, n)
	return [16]V(d.h[:16])
}

// close zero pads a trailing partial block and then compresses a final
// block holding only the 64-bit message length in bits.
func (ctx *Context[V]) close(last V, n int) {
	var zero V
	nbytes := 4*ctx.ptr + n
	if nbytes > 0 {
		ctx.buf[ctx.ptr] = lanes.PadLE32(last, n, 0)
		for i := ctx.ptr + 1; i < blockWords; i++ {
			ctx.buf[i] = zero
		}
		compress(&ctx.h, &ctx.buf, false)
	}

	bitLen := (ctx.blocks*BlockSize + uint64(nbytes)) * 8
	ctx.buf = [blockWords]V{}
	ctx.buf[0] = lanes.Splat32[V](uint32(bitLen))
	ctx.buf[1] = lanes.Splat32[V](uint32(bitLen >> 32))
	compress(&ctx.h, &ctx.buf, true)
}

// Full hashes the message words in one call.
func Full[V lanes.Vec32](words []V) [16]V {
	ctx := New[V]()
	ctx.Update(words)
	return ctx.Sum()
}
