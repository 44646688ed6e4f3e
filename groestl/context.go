// Copyright (c) 2023 The Decred developers.

// Package groestl implements the Grøstl-256 and Grøstl-512 hash functions
// over interleaved lanes.
package groestl

import (
	"github.com/decred/cpuminer/lanes"
)

const (
	// Size256 and Size512 are the digest sizes in bytes.
	Size256 = 32
	Size512 = 64

	// BlockSize256 and BlockSize512 are the block sizes in bytes.
	BlockSize256 = 64
	BlockSize512 = 128

	shortCols   = 8
	longCols    = 16
	maxCols     = longCols
	shortRounds = 10
	longRounds  = 14
)

// Context is a streaming Grøstl state over the lanes of V, consuming
// interleaved big-endian 64-bit message words.
type Context[V lanes.Vec64] struct {
	h      [maxCols]V
	buf    [maxCols]V
	ptr    int
	blocks uint64
	cols   int
	rounds int
	size   int
}

// New256 returns a Grøstl-256 context.
func New256[V lanes.Vec64]() *Context[V] {
	ctx := &Context[V]{cols: shortCols, rounds: shortRounds, size: Size256}
	ctx.Reset()
	return ctx
}

// New512 returns a Grøstl-512 context.
func New512[V lanes.Vec64]() *Context[V] {
	ctx := &Context[V]{cols: longCols, rounds: longRounds, size: Size512}
	ctx.Reset()
	return ctx
}

// Size returns the digest size in bytes.
func (ctx *Context[V]) Size() int { return ctx.size }

// BlockSize returns the block size in bytes.
func (ctx *Context[V]) BlockSize() int { return 8 * ctx.cols }

// Reset returns the context to its initial state.
func (ctx *Context[V]) Reset() {
	ctx.h = [maxCols]V{}
	ctx.h[ctx.cols-1] = lanes.Splat64[V](uint64(ctx.size) * 8)
	ctx.ptr = 0
	ctx.blocks = 0
}

// Update absorbs message words, compressing every block that fills up.
func (ctx *Context[V]) Update(words []V) {
	for len(words) > 0 {
		n := copy(ctx.buf[ctx.ptr:ctx.cols], words)
		ctx.ptr += n
		words = words[n:]
		if ctx.ptr == ctx.cols {
			compress(&ctx.h, &ctx.buf, ctx.cols, ctx.rounds)
			ctx.blocks++
			ctx.ptr = 0
		}
	}
}

// Sum returns the digest words (4 or 8) of the words written so far
// without changing the context.
func (ctx *Context[V]) Sum() []V {
	var last V
	return ctx.SumPartial(last, 0)
}

// SumPartial returns the digest words of the words written so far
// followed by the first n (0-7) bytes of last.
func (ctx *Context[V]) SumPartial(last V, n int) []V {
	d := *ctx
	return d.close(last, n)
}

func (ctx *Context[V]) close(last V, n int) []V {
	var zero V
	nbytes := 8*ctx.ptr + n

	ctx.buf[ctx.ptr] = lanes.PadBE64(last, n, 0x80)
	for i := ctx.ptr + 1; i < ctx.cols; i++ {
		ctx.buf[i] = zero
	}

	// The block count fills the last word of the final block.
	count := ctx.blocks + 1
	if nbytes > 8*ctx.cols-9 {
		count++
		compress(&ctx.h, &ctx.buf, ctx.cols, ctx.rounds)
		ctx.buf = [maxCols]V{}
	}
	ctx.buf[ctx.cols-1] = lanes.Splat64[V](count)
	compress(&ctx.h, &ctx.buf, ctx.cols, ctx.rounds)

	outputTransform(&ctx.h, ctx.cols, ctx.rounds)
	out := make([]V, ctx.size/8)
	copy(out, ctx.h[ctx.cols-len(out):ctx.cols])
	return out
}

// Full256 returns the Grøstl-256 digest words of the message words.
func Full256[V lanes.Vec64](words []V) []V {
	ctx := New256[V]()
	ctx.Update(words)
	return ctx.Sum()
}

// Full512 returns the Grøstl-512 digest words of the message words.
func Full512[V lanes.Vec64](words []V) []V {
	ctx := New512[V]()
	ctx.Update(words)
	return ctx.Sum()
}
