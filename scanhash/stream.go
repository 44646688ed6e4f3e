// Copyright (c) 2023 The Decred developers.

package scanhash

import (
	"encoding/binary"
	"math/bits"

	"github.com/decred/cpuminer/groestl"
	"github.com/decred/cpuminer/lanes"
	"github.com/decred/cpuminer/luffa"
	"github.com/decred/cpuminer/shavite"
	"github.com/decred/cpuminer/simd"
	"github.com/decred/cpuminer/sm3"
	"github.com/decred/cpuminer/work"
)

// A splitter absorbs the whole blocks of the header that precede the
// nonce once per job and returns the function that hashes the remaining
// words for each batch.
type splitter[V any] func(prefix []V) func(suffix []V) []V

func luffaSplit[V lanes.Vec32](prefix []V) func([]V) []V {
	ctx := luffa.New[V]()
	ctx.Update(prefix)
	return func(suffix []V) []V {
		c := *ctx
		c.Update(suffix)
		h := c.Sum()
		return h[:]
	}
}

func shaviteSplit[V lanes.Vec32](prefix []V) func([]V) []V {
	ctx := shavite.New[V]()
	ctx.Update(prefix)
	return func(suffix []V) []V {
		c := *ctx
		c.Update(suffix)
		h := c.Sum()
		return h[:]
	}
}

func simdSplit[V lanes.Vec32](prefix []V) func([]V) []V {
	ctx := simd.New[V]()
	ctx.Update(prefix)
	return func(suffix []V) []V {
		c := *ctx
		c.Update(suffix)
		h := c.Sum()
		return h[:]
	}
}

func sm3Split[V lanes.Vec32](prefix []V) func([]V) []V {
	ctx := sm3.New[V]()
	ctx.Update(prefix)
	return func(suffix []V) []V {
		c := *ctx
		c.Update(suffix)
		h := c.Sum()
		return h[:]
	}
}

func groestlSplit[V lanes.Vec64](newCtx func() *groestl.Context[V]) splitter[V] {
	return func(prefix []V) func([]V) []V {
		ctx := newCtx()
		ctx.Update(prefix)
		return func(suffix []V) []V {
			c := *ctx
			c.Update(suffix)
			return c.Sum()
		}
	}
}

// stream32 hashes the header through a streaming context over 32-bit
// words.  The nonce is the last header word.
type stream32[V lanes.Vec32] struct {
	order    binary.ByteOrder
	split    splitter[V]
	size     int
	prefix   int
	prepared bool
	job      uint64
	tail     []V
	finish   func([]V) []V
}

func newStream32[V lanes.Vec32](order binary.ByteOrder, blockSize int, split splitter[V], size int) *stream32[V] {
	const nonceWord = work.NonceOffset / 4
	blockWords := blockSize / 4
	return &stream32[V]{
		order:  order,
		split:  split,
		size:   size,
		prefix: nonceWord - nonceWord%blockWords,
	}
}

func (s *stream32[V]) Lanes() int { return lanes.Count32[V]() }

func (s *stream32[V]) Prepare(job *work.Job) {
	words := job.Header.Words32(s.order)
	all := make([]V, len(words))
	for i, w := range words {
		all[i] = lanes.Splat32[V](w)
	}
	s.finish = s.split(all[:s.prefix])
	s.tail = all[s.prefix:]
	s.job = job.ID
	s.prepared = true
}

func (s *stream32[V]) HashBatch(jobID uint64, first uint32, out [][]byte) error {
	if !s.prepared || s.job != jobID {
		return ErrStaleMidstate
	}
	nonce := nonces32[V](first)
	if s.order == binary.LittleEndian {
		for l := range len(nonce) {
			nonce[l] = bits.ReverseBytes32(nonce[l])
		}
	}
	s.tail[len(s.tail)-1] = nonce
	h := s.finish(s.tail)
	writeLanes32(s.order, h[:s.size/4], out)
	return nil
}

// stream64 is the 64-bit word counterpart of stream32.  The nonce is the
// low half of the last big-endian header word.
type stream64[V lanes.Vec64] struct {
	split    splitter[V]
	size     int
	prefix   int
	prepared bool
	job      uint64
	high     uint64
	tail     []V
	finish   func([]V) []V
}

func newStream64[V lanes.Vec64](blockSize int, split splitter[V], size int) *stream64[V] {
	const nonceWord = work.NonceOffset / 8
	blockWords := blockSize / 8
	return &stream64[V]{
		split:  split,
		size:   size,
		prefix: nonceWord - nonceWord%blockWords,
	}
}

func (s *stream64[V]) Lanes() int { return lanes.Count64[V]() }

func (s *stream64[V]) Prepare(job *work.Job) {
	words := job.Header.Words64()
	all := make([]V, len(words))
	for i, w := range words {
		all[i] = lanes.Splat64[V](w)
	}
	s.high = words[len(words)-1] &^ 0xffffffff
	s.finish = s.split(all[:s.prefix])
	s.tail = all[s.prefix:]
	s.job = job.ID
	s.prepared = true
}

func (s *stream64[V]) HashBatch(jobID uint64, first uint32, out [][]byte) error {
	if !s.prepared || s.job != jobID {
		return ErrStaleMidstate
	}
	s.tail[len(s.tail)-1] = lanes.Or64(lanes.Splat64[V](s.high), nonces64[V](first))
	h := s.finish(s.tail)
	writeLanes64(h[:s.size/8], out)
	return nil
}
