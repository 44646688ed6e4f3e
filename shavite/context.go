// Copyright (c) 2023 The Decred developers.

package shavite

import (
	"github.com/decred/cpuminer/lanes"
)

// Context is a streaming SHAvite-512 state over the lanes of V, consuming
// interleaved little-endian 32-bit message words.
type Context[V lanes.Vec32] struct {
	h   [16]V
	buf [blockWords]V
	ptr int
	cnt [4]uint32
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
	ctx.cnt = [4]uint32{}
}

// addBits adds n to the 128-bit bit counter.
func addBits(cnt *[4]uint32, n uint32) {
	for i := range cnt {
		cnt[i] += n
		if cnt[i] >= n {
			return
		}
		n = 1
	}
}

// Update absorbs message words, compressing every block that fills up.
func (ctx *Context[V]) Update(words []V) {
	for len(words) > 0 {
		n := copy(ctx.buf[ctx.ptr:], words)
		ctx.ptr += n
		words = words[n:]
		if ctx.ptr == blockWords {
			addBits(&ctx.cnt, BlockSize*8)
			compress(&ctx.h, &ctx.buf, ctx.cnt)
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
	return d.h
}

// The final block carries the 128-bit bit count at bytes 110..125 and the
// digest size in 16-bit little endian at bytes 126..127.  Blocks that
// hold no message bits are compressed with a zero counter.
const lengthOffset = 110

func (ctx *Context[V]) close(last V, n int) {
	var zero V
	nbytes := 4*ctx.ptr + n
	addBits(&ctx.cnt, uint32(nbytes)*8)
	cnt := ctx.cnt

	ctx.buf[ctx.ptr] = lanes.PadLE32(last, n, 0x80)
	for i := ctx.ptr + 1; i < blockWords; i++ {
		ctx.buf[i] = zero
	}

	switch {
	case nbytes == 0:
		cnt = [4]uint32{}
	case nbytes >= lengthOffset:
		compress(&ctx.h, &ctx.buf, cnt)
		ctx.buf = [blockWords]V{}
		cnt = [4]uint32{}
	}
	ctx.appendLength()
	compress(&ctx.h, &ctx.buf, cnt)
}

func (ctx *Context[V]) appendLength() {
	c := &ctx.cnt
	ctx.buf[27] = lanes.Or32(ctx.buf[27], lanes.Splat32[V](c[0]<<16))
	ctx.buf[28] = lanes.Splat32[V](c[0]>>16 | c[1]<<16)
	ctx.buf[29] = lanes.Splat32[V](c[1]>>16 | c[2]<<16)
	ctx.buf[30] = lanes.Splat32[V](c[2]>>16 | c[3]<<16)
	ctx.buf[31] = lanes.Splat32[V](c[3]>>16 | (Size*8/256)<<24)
}

// Full hashes the message words in one call.
func Full[V lanes.Vec32](words []V) [16]V {
	ctx := New[V]()
	ctx.Update(words)
	return ctx.Sum()
}
