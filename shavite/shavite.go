// Copyright (c) 2023 The Decred developers.

// Package shavite implements the SHAvite-3 512-bit hash function over
// interleaved lanes.
//
// The compression function is a four-branch Feistel network of AES rounds
// keyed by a message expansion that alternates nonlinear (AES based) and
// linear steps and mixes in the 128-bit bit counter.
package shavite

import (
	"github.com/decred/cpuminer/internal/softaes"
	"github.com/decred/cpuminer/lanes"
)

const (
	// Size is the size of a SHAvite-512 digest in bytes.
	Size = 64

	// BlockSize is the block size of SHAvite-512 in bytes.
	BlockSize = 128

	blockWords = BlockSize / 4
)

var iv = [16]uint32{
	0x72fccdd8, 0x79ca4727, 0x128a077b, 0x40d55aec,
	0xd1901a06, 0x430ae307, 0xb29f5cd1, 0xdf07fbfc,
	0x8e45d73d, 0x681ab538, 0xbde86578, 0xdd577e47,
	0xe275eade, 0x502d9fcd, 0xb9357178, 0x022a4b9a,
}

// quad is a 128-bit value as four little-endian words per lane.
type quad[V lanes.Vec32] [4]V

func (a quad[V]) xor(b quad[V]) quad[V] {
	for i := range a {
		a[i] = lanes.Xor32(a[i], b[i])
	}
	return a
}

// aes applies one keyless AES round to every lane.
func (a quad[V]) aes() quad[V] {
	for l := range len(a[0]) {
		a[0][l], a[1][l], a[2][l], a[3][l] = softaes.Round(a[0][l], a[1][l], a[2][l], a[3][l])
	}
	return a
}

// rotate moves every word down one position.
func (a quad[V]) rotate() quad[V] {
	return quad[V]{a[1], a[2], a[3], a[0]}
}

// mixQuads returns the upper three words of b followed by the lowest word
// of a.
func mixQuads[V lanes.Vec32](a, b quad[V]) quad[V] {
	return quad[V]{b[1], b[2], b[3], a[0]}
}

func scalarQuad[V lanes.Vec32](w0, w1, w2, w3 uint32) quad[V] {
	return quad[V]{
		lanes.Splat32[V](w0), lanes.Splat32[V](w1),
		lanes.Splat32[V](w2), lanes.Splat32[V](w3),
	}
}

// keySchedule holds the current eight round key quads.
type keySchedule[V lanes.Vec32] [8]quad[V]

// chain runs four AES rounds of the Feistel function F keyed by the first
// (lo) or last (hi) four round keys.
func (k *keySchedule[V]) chain(x quad[V], hi bool) quad[V] {
	ks := k[:4]
	if hi {
		ks = k[4:]
	}
	for _, key := range ks {
		x = x.xor(key).aes()
	}
	return x
}

// nonlinear is the AES based expansion step.  When inject is in range the
// counter quad is XORed into that key as soon as it is produced.
func (k *keySchedule[V]) nonlinear(inject int, cnt quad[V]) {
	for i := range k {
		k[i] = k[i].aes().rotate().xor(k[(i+7)%8])
		if i == inject {
			k[i] = k[i].xor(cnt)
		}
	}
}

func (k *keySchedule[V]) linear() {
	for i := range k {
		k[i] = k[i].xor(mixQuads(k[(i+7)%8], k[(i+6)%8]))
	}
}

// compress absorbs one block with the given bit counter.
func compress[V lanes.Vec32](h *[16]V, m *[blockWords]V, cnt [4]uint32) {
	var p [4]quad[V]
	for i := range p {
		copy(p[i][:], h[4*i:])
	}
	var k keySchedule[V]
	for i := range k {
		copy(k[i][:], m[4*i:])
	}
	c0, c1, c2, c3 := cnt[0], cnt[1], cnt[2], cnt[3]

	p[0] = p[0].xor(k.chain(p[1], false))
	p[2] = p[2].xor(k.chain(p[3], true))

	injections := [3]struct {
		key int
		cnt quad[V]
	}{
		{0, scalarQuad[V](c0, c1, c2, ^c3)},
		{1, scalarQuad[V](c3, c2, c1, ^c0)},
		{7, scalarQuad[V](c2, c3, c0, ^c1)},
	}
	for _, inj := range injections {
		k.nonlinear(inj.key, inj.cnt)
		p[3] = p[3].xor(k.chain(p[0], false))
		p[1] = p[1].xor(k.chain(p[2], true))

		k.linear()
		p[2] = p[2].xor(k.chain(p[3], false))
		p[0] = p[0].xor(k.chain(p[1], true))

		k.nonlinear(-1, quad[V]{})
		p[1] = p[1].xor(k.chain(p[2], false))
		p[3] = p[3].xor(k.chain(p[0], true))

		k.linear()
		p[0] = p[0].xor(k.chain(p[1], false))
		p[2] = p[2].xor(k.chain(p[3], true))
	}

	k.nonlinear(6, scalarQuad[V](c1, c0, c3, ^c2))
	p[3] = p[3].xor(k.chain(p[0], false))
	p[1] = p[1].xor(k.chain(p[2], true))

	for i, q := range [4]quad[V]{p[2], p[3], p[0], p[1]} {
		for j := range q {
			h[4*i+j] = lanes.Xor32(h[4*i+j], q[j])
		}
	}
}
