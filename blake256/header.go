// Copyright (c) 2023 The Decred developers.

package blake256

import (
	"encoding/binary"

	"github.com/decred/cpuminer/lanes"
)

// HeaderSize is the size of the mining header hashed by the nonce search.
const HeaderSize = 80

// The second block of an 80-byte header is fully determined except for
// its first four words:
//
//	m0  m1  m2    header bytes 64..75 (HeaderTail)
//	m3            nonce, header bytes 76..79
//	m4            0x80000000 (terminator)
//	m5  ... m12   0
//	m13           0x00000001 (final bit)
//	m14 m15       bit length, 0 and 640
//
// and it is compressed with a counter of 640 bits.
const (
	headerBits = HeaderSize * 8
	nonceWord  = 3
)

var headerPad = [BlockWords]uint32{
	4:  0x80000000,
	13: 0x00000001,
	15: headerBits,
}

// padTerms[r][k] is the message term k of round r (the word sigma[r][k]
// XORed with the constant sigma[r][k^1]) for every term that reads one of
// the fixed padding words.  Entries for m0..m3 are unused.
var padTerms = func() (t [10][BlockWords]uint32) {
	for r := range sigma {
		s := &sigma[r]
		for k := range s {
			t[r][k] = headerPad[s[k]] ^ c[s[k^1]]
		}
	}
	return t
}()

// HeaderTail holds the three free words of the second block of an 80-byte
// header (bytes 64..75) for every lane.  The nonce word and the padding
// that follow are implied, so a HeaderTail cannot describe a block whose
// padding words are not the fixed 80-byte header padding.
type HeaderTail[V lanes.Vec32] [3]V

// NewHeaderTail returns the tail words of an 80-byte header shared by all
// lanes.  Only header bytes 64..75 are read.
func NewHeaderTail[V lanes.Vec32](header []byte) HeaderTail[V] {
	var tail HeaderTail[V]
	for i := range tail {
		tail[i] = lanes.Splat32[V](binary.BigEndian.Uint32(header[64+4*i:]))
	}
	return tail
}

// Midhash returns the chaining value after the first 64 bytes of an
// 80-byte header shared by all lanes.
func Midhash[V lanes.Vec32](header []byte, rounds int) [8]V {
	var h [8]V
	var m [BlockWords]V
	for i := range iv {
		h[i] = lanes.Splat32[V](iv[i])
	}
	for i := range m {
		m[i] = lanes.Splat32[V](binary.BigEndian.Uint32(header[4*i:]))
	}
	compress(&h, &m, BlockSize*8, 0, rounds)
	return h
}

// headerTerm returns message term k of round r for the second header
// block.  Terms reading a padding word come from padTerms.
func headerTerm[V lanes.Vec32](m *[4]V, r, k int) V {
	s := &sigma[r%10]
	if x := s[k]; x <= nonceWord {
		return lanes.XorScalar32(m[x], c[s[k^1]])
	}
	return lanes.Splat32[V](padTerms[r%10][k])
}

func headerRound[V lanes.Vec32](v *[16]V, m *[4]V, r int) {
	for i, x := range columns {
		g(v, x[0], x[1], x[2], x[3], headerTerm(m, r, 2*i), headerTerm(m, r, 2*i+1))
	}
}

// compressHeaderTail is the short-cut compression of the second block of
// an 80-byte header.  It produces the same chaining value as compress on
// the fully padded block while only XORing the four variable words.
func compressHeaderTail[V lanes.Vec32](h *[8]V, tail *HeaderTail[V], nonce V, rounds int) {
	m := [4]V{tail[0], tail[1], tail[2], nonce}
	var v [16]V
	initState(&v, h, headerBits, 0)
	for r := 0; r < rounds; r++ {
		headerRound(&v, &m, r)
	}
	feedForward(h, &v)
}

// HashHeader returns the digest of an 80-byte header given the chaining
// value after its first block, its tail words and one nonce per lane.
func HashHeader[V lanes.Vec32](midhash [8]V, tail HeaderTail[V], nonce V, rounds int) [8]V {
	compressHeaderTail(&midhash, &tail, nonce, rounds)
	return midhash
}

// Midstate is the state of the second header block compression after
// every step of round 0 that does not read the nonce.  It belongs to the
// job it was computed for and is only valid with that job's header.
type Midstate[V lanes.Vec32] struct {
	job     uint64
	rounds  int
	midhash [8]V
	tail    HeaderTail[V]
	v       [16]V
}

// Prehash runs the nonce-independent part of round 0 of the second header
// block.
//
// In round 0 the message schedule is the identity, so the steps touching
// m3 are the second half of G1 (v1, v5, v9, v13) and everything that
// follows from it.  Prehash runs G0, G2 and G3 in full, the first half of
// G1 plus the v1 += v5 of its second half, and adds the constant message
// term of the first diagonal step into v0.
func Prehash[V lanes.Vec32](job uint64, midhash [8]V, tail HeaderTail[V], rounds int) Midstate[V] {
	ms := Midstate[V]{
		job:     job,
		rounds:  rounds,
		midhash: midhash,
		tail:    tail,
	}
	v := &ms.v
	initState(v, &midhash, headerBits, 0)

	m := [4]V{tail[0], tail[1], tail[2]}
	g(v, 0, 4, 8, 12, headerTerm(&m, 0, 0), headerTerm(&m, 0, 1))
	g(v, 2, 6, 10, 14, headerTerm(&m, 0, 4), headerTerm(&m, 0, 5))
	g(v, 3, 7, 11, 15, headerTerm(&m, 0, 6), headerTerm(&m, 0, 7))

	v[1] = lanes.Add32(lanes.Add32(v[1], v[5]), headerTerm(&m, 0, 2))
	v[13] = lanes.RotR32(lanes.Xor32(v[13], v[1]), 16)
	v[9] = lanes.Add32(v[9], v[13])
	v[5] = lanes.RotR32(lanes.Xor32(v[5], v[9]), 12)
	v[1] = lanes.Add32(v[1], v[5])

	v[0] = lanes.Add32(v[0], headerTerm(&m, 0, 8))
	return ms
}

// PrehashHeader computes the midstate of an 80-byte header shared by all
// lanes.  The nonce bytes of the header are ignored.
func PrehashHeader[V lanes.Vec32](job uint64, header []byte, rounds int) Midstate[V] {
	return Prehash(job, Midhash[V](header, rounds), NewHeaderTail[V](header), rounds)
}

// Job returns the identifier of the job the midstate was computed for.
func (ms *Midstate[V]) Job() uint64 {
	return ms.job
}

// Rounds returns the round count the midstate was computed with.
func (ms *Midstate[V]) Rounds() int {
	return ms.rounds
}

// Final completes the compression for one nonce per lane and returns the
// digest words.
func (ms *Midstate[V]) Final(nonce V) [8]V {
	v := ms.v
	m := [4]V{ms.tail[0], ms.tail[1], ms.tail[2], nonce}

	// Rest of G1.
	v[1] = lanes.Add32(v[1], headerTerm(&m, 0, 3))
	v[13] = lanes.RotR32(lanes.Xor32(v[13], v[1]), 8)
	v[9] = lanes.Add32(v[9], v[13])
	v[5] = lanes.RotR32(lanes.Xor32(v[5], v[9]), 7)

	// G4, whose first message term is already in v0.
	v[0] = lanes.Add32(v[0], v[5])
	v[15] = lanes.RotR32(lanes.Xor32(v[15], v[0]), 16)
	v[10] = lanes.Add32(v[10], v[15])
	v[5] = lanes.RotR32(lanes.Xor32(v[5], v[10]), 12)
	v[0] = lanes.Add32(lanes.Add32(v[0], v[5]), headerTerm(&m, 0, 9))
	v[15] = lanes.RotR32(lanes.Xor32(v[15], v[0]), 8)
	v[10] = lanes.Add32(v[10], v[15])
	v[5] = lanes.RotR32(lanes.Xor32(v[5], v[10]), 7)

	for i := 5; i < 8; i++ {
		x := columns[i]
		g(&v, x[0], x[1], x[2], x[3], headerTerm(&m, 0, 2*i), headerTerm(&m, 0, 2*i+1))
	}
	for r := 1; r < ms.rounds; r++ {
		headerRound(&v, &m, r)
	}

	h := ms.midhash
	feedForward(&h, &v)
	return h
}
