// Copyright (c) 2023 The Decred developers.

package sm3

import (
	"github.com/decred/cpuminer/lanes"
)

// Context is a streaming SM3 state over the lanes of V, consuming
// interleaved big-endian 32-bit message words.
type Context[V lanes.Vec32] struct {
	h   [8]V
	buf [blockWords]V
	ptr int

	// blocks counts the compressed blocks.  The 64-bit bit length only
	// needs it at close.
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
			compress(&ctx.h, &ctx.buf)
			ctx.blocks++
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
// the first n (0-3) bytes of last.
func (ctx *Context[V]) SumPartial(last V, n int) [8]V {
	d := *ctx
	d.close(last, n)
	return d.h
}

func (ctx *Context[V]) close(last V, n int) {
	var zero V
	nbytes := 4*ctx.ptr + n
	bitLen := ctx.blocks*BlockSize*8 + uint64(nbytes)*8

	ctx.buf[ctx.ptr] = lanes.PadBE32(last, n, 0x80)
	for i := ctx.ptr + 1; i < blockWords; i++ {
		ctx.buf[i] = zero
	}
	// The terminator and the 64-bit length take nine bytes.
	if nbytes > BlockSize-9 {
		compress(&ctx.h, &ctx.buf)
		ctx.buf = [blockWords]V{}
	}
	ctx.buf[blockWords-2] = lanes.Splat32[V](uint32(bitLen >> 32))
	ctx.buf[blockWords-1] = lanes.Splat32[V](uint32(bitLen))
	compress(&ctx.h, &ctx.buf)
}

// Full hashes the message words in one call.
func Full[V lanes.Vec32](words []V) [8]V {
	ctx := New[V]()
	ctx.Update(words)
	return ctx.Sum()
}
