// Copyright (c) 2023 The Decred developers.

// Package softaes provides table-driven AES building blocks shared by the
// AES-based hash primitives: the S-box, GF(2^8) multiplication and a single
// encryption round over little-endian column words.
package softaes

import (
	"math/bits"
)

// poly is x^8 + x^4 + x^3 + x + 1.
const poly = 1<<8 | 1<<4 | 1<<3 | 1<<1 | 1<<0

// Mul multiplies a and b as GF(2) polynomials modulo poly.
func Mul(a, b byte) byte {
	i := uint32(a)
	var s uint32
	for j := b; j != 0; j >>= 1 {
		if j&1 != 0 {
			s ^= i
		}
		i <<= 1
		if i&0x100 != 0 {
			i ^= poly
		}
	}
	return byte(s)
}

// SBox is the AES substitution table (FIPS-197 figure 7).
var SBox = func() (sbox [256]byte) {
	var p, q uint8 = 1, 1
	for {
		// p *= 3
		if p&0x80 != 0 {
			p ^= (p << 1) ^ 0x1b
		} else {
			p ^= p << 1
		}

		// q /= 3
		q ^= q << 1
		q ^= q << 2
		q ^= q << 4
		if q&0x80 != 0 {
			q ^= 0x09
		}

		sbox[p] = q ^ bits.RotateLeft8(q, 1) ^ bits.RotateLeft8(q, 2) ^
			bits.RotateLeft8(q, 3) ^ bits.RotateLeft8(q, 4) ^ 0x63

		if p == 1 {
			break
		}
	}

	// 0 has no inverse.
	sbox[0] = 0x63
	return sbox
}()

// te holds SubBytes followed by MixColumns for each input row, as
// little-endian column words.
var te = func() (te [4][256]uint32) {
	for i := range 256 {
		s := SBox[i]
		w := uint32(Mul(s, 2)) | uint32(s)<<8 | uint32(s)<<16 | uint32(Mul(s, 3))<<24
		for j := range 4 {
			te[j][i] = w
			w = bits.RotateLeft32(w, 8)
		}
	}
	return te
}()

// Round applies one AES encryption round (SubBytes, ShiftRows, MixColumns)
// with an all-zero round key to the 128-bit block held in four
// little-endian column words.
func Round(s0, s1, s2, s3 uint32) (uint32, uint32, uint32, uint32) {
	return te[0][uint8(s0)] ^ te[1][uint8(s1>>8)] ^ te[2][uint8(s2>>16)] ^ te[3][uint8(s3>>24)],
		te[0][uint8(s1)] ^ te[1][uint8(s2>>8)] ^ te[2][uint8(s3>>16)] ^ te[3][uint8(s0>>24)],
		te[0][uint8(s2)] ^ te[1][uint8(s3>>8)] ^ te[2][uint8(s0>>16)] ^ te[3][uint8(s1>>24)],
		te[0][uint8(s3)] ^ te[1][uint8(s0>>8)] ^ te[2][uint8(s1>>16)] ^ te[3][uint8(s2>>24)]
}
