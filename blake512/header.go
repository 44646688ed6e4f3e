// Copyright (c) 2023 The Decred developers.

package blake512

import (
	"encoding/binary"

	"github.com/decred/cpuminer/lanes"
)

// HeaderSize is the size of the mining header hashed by the nonce search.
const HeaderSize = 80

// An 80-byte header fits in a single BLAKE-512 block:
//
//	m0 ... m8   header bytes 0..71
//	m9          header bytes 72..75 in the high half, nonce in the low half
//	m10         0x8000000000000000 (terminator)
//	m11 m12     0
//	m13         1 (final bit)
//	m14 m15     bit length, 0 and 640
//
// compressed from the IV with a counter of 640 bits.
const (
	headerBits = HeaderSize * 8
	nonceWord  = 9
	freeWords  = 10
)

var headerPad = [BlockWords]uint64{
	10: 0x8000000000000000,
	13: 1,
	15: headerBits,
}

var padTerms = func() (t [10][BlockWords]uint64) {
	for r := range sigma {
		s := &sigma[r]
		for k := range s {
			t[r][k] = headerPad[s[k]] ^ c[s[k^1]]
		}
	}
	return t
}()

// HeaderBlock holds the ten header words of an 80-byte header for every
// lane.  The low 32 bits of the last word are the nonce and are replaced
// by the nonce supplied when hashing; the padding words are implied.
type HeaderBlock[V lanes.Vec64] [freeWords]V

// NewHeaderBlock returns the header words of an 80-byte header shared by
// all lanes.
func NewHeaderBlock[V lanes.Vec64](header []byte) HeaderBlock[V] {
	var b HeaderBlock[V]
	for i := range b {
		b[i] = lanes.Splat64[V](binary.BigEndian.Uint64(header[8*i:]))
	}
	b[nonceWord] = lanes.And64(b[nonceWord], lanes.Splat64[V](0xffffffff00000000))
	return b
}

// withNonce returns the message words with each lane's nonce, held in the
// low 32 bits of nonce, placed into word 9.
func (b *HeaderBlock[V]) withNonce(nonce V) [freeWords]V {
	m := [freeWords]V(*b)
	m[nonceWord] = lanes.Or64(m[nonceWord], lanes.And64(nonce, lanes.Splat64[V](0xffffffff)))
	return m
}

func headerTerm[V lanes.Vec64](m *[freeWords]V, r, k int) V {
	s := &sigma[r%10]
	if x := s[k]; x < freeWords {
		return lanes.XorScalar64(m[x], c[s[k^1]])
	}
	return lanes.Splat64[V](padTerms[r%10][k])
}

func headerRound[V lanes.Vec64](v *[16]V, m *[freeWords]V, r int) {
	for i, x := range columns {
		g(v, x[0], x[1], x[2], x[3], headerTerm(m, r, 2*i), headerTerm(m, r, 2*i+1))
	}
}

func headerIV[V lanes.Vec64]() [8]V {
	var h [8]V
	for i := range h {
		h[i] = lanes.Splat64[V](iv[i])
	}
	return h
}

// HashHeader hashes the 80-byte header with one nonce per lane using the
// short-cut compression that skips the fixed padding words.
func HashHeader[V lanes.Vec64](block HeaderBlock[V], nonce V) [8]V {
	m := block.withNonce(nonce)
	h := headerIV[V]()
	var v [16]V
	initState(&v, &h, headerBits, 0)
	for r := 0; r < Rounds; r++ {
		headerRound(&v, &m, r)
	}
	feedForward(&h, &v)
	return h
}

// Midstate is the header compression state after every step of round 0
// that does not read the nonce, tagged with the job it belongs to.
type Midstate[V lanes.Vec64] struct {
	job   uint64
	block HeaderBlock[V]
	v     [16]V
}

// Prehash runs the nonce-independent part of round 0: the four column
// steps, the first half of the first diagonal step and the v0 += v5 that
// opens its second half.
func Prehash[V lanes.Vec64](job uint64, block HeaderBlock[V]) Midstate[V] {
	ms := Midstate[V]{job: job, block: block}
	h := headerIV[V]()
	v := &ms.v
	initState(v, &h, headerBits, 0)

	var zero V
	m := block.withNonce(zero)
	for i := 0; i < 4; i++ {
		x := columns[i]
		g(v, x[0], x[1], x[2], x[3], headerTerm(&m, 0, 2*i), headerTerm(&m, 0, 2*i+1))
	}

	v[0] = lanes.Add64(lanes.Add64(v[0], v[5]), headerTerm(&m, 0, 8))
	v[15] = lanes.RotR64(lanes.Xor64(v[15], v[0]), 32)
	v[10] = lanes.Add64(v[10], v[15])
	v[5] = lanes.RotR64(lanes.Xor64(v[5], v[10]), 25)
	v[0] = lanes.Add64(v[0], v[5])
	return ms
}

// PrehashHeader computes the midstate of an 80-byte header shared by all
// lanes.
func PrehashHeader[V lanes.Vec64](job uint64, header []byte) Midstate[V] {
	return Prehash(job, NewHeaderBlock[V](header))
}

// Job returns the identifier of the job the midstate was computed for.
func (ms *Midstate[V]) Job() uint64 {
	return ms.job
}

// Final completes the compression for one nonce per lane, held in the low
// 32 bits of each lane of nonce.
func (ms *Midstate[V]) Final(nonce V) [8]V {
	v := ms.v
	m := ms.block.withNonce(nonce)

	v[0] = lanes.Add64(v[0], headerTerm(&m, 0, 9))
	v[15] = lanes.RotR64(lanes.Xor64(v[15], v[0]), 16)
	v[10] = lanes.Add64(v[10], v[15])
	v[5] = lanes.RotR64(lanes.Xor64(v[5], v[10]), 11)

	for i := 5; i < 8; i++ {
		x := columns[i]
		g(&v, x[0], x[1], x[2], x[3], headerTerm(&m, 0, 2*i), headerTerm(&m, 0, 2*i+1))
	}
	for r := 1; r < Rounds; r++ {
		headerRound(&v, &m, r)
	}

	h := headerIV[V]()
	feedForward(&h, &v)
	return h
}
