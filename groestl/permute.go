// Copyright (c) 2023 The Decred developers.

package groestl

import (
	"github.com/decred/cpuminer/internal/softaes"
	"github.com/decred/cpuminer/lanes"
)

// The state is a matrix of 8 rows and 8 (short) or 16 (long) columns.
// Each column is held in one 64-bit word with row 0 in the most
// significant byte, so message bytes map onto columns as big-endian words.

// Shift offsets of each row for the P and Q permutations.
var (
	shiftShortP = [8]int{0, 1, 2, 3, 4, 5, 6, 7}
	shiftShortQ = [8]int{1, 3, 5, 7, 0, 2, 4, 6}
	shiftLongP  = [8]int{0, 1, 2, 3, 4, 5, 6, 11}
	shiftLongQ  = [8]int{1, 3, 5, 11, 0, 2, 4, 6}
)

// mixTable[q][b] is the column produced by MixBytes from a column holding
// SubBytes(b) in row q and zeros elsewhere.  The circulant matrix has first
// row (2, 2, 3, 4, 5, 3, 5, 7).
var mixTable = func() (t [8][256]uint64) {
	coef := [8]byte{2, 2, 3, 4, 5, 3, 5, 7}
	for q := 0; q < 8; q++ {
		for b := 0; b < 256; b++ {
			s := softaes.SBox[b]
			var col uint64
			for r := 0; r < 8; r++ {
				col |= uint64(softaes.Mul(s, coef[(q-r)&7])) << (56 - 8*r)
			}
			t[q][b] = col
		}
	}
	return t
}()

// permute applies the P or Q permutation to the first cols columns of x.
func permute[V lanes.Vec64](x *[maxCols]V, cols, rounds int, q bool) {
	shift := &shiftShortP
	switch {
	case cols == longCols && q:
		shift = &shiftLongQ
	case cols == longCols:
		shift = &shiftLongP
	case q:
		shift = &shiftShortQ
	}

	for r := 0; r < rounds; r++ {
		// AddRoundConstant.
		for i := 0; i < cols; i++ {
			k := uint64(i<<4 ^ r)
			if q {
				x[i] = lanes.XorScalar64(x[i], ^k)
			} else {
				x[i] = lanes.XorScalar64(x[i], k<<56)
			}
		}

		// SubBytes, ShiftBytes and MixBytes.
		var y [maxCols]V
		for l := range len(x[0]) {
			for i := 0; i < cols; i++ {
				var col uint64
				for row := 0; row < 8; row++ {
					b := byte(x[(i+shift[row])%cols][l] >> (56 - 8*row))
					col ^= mixTable[row][b]
				}
				y[i][l] = col
			}
		}
		*x = y
	}
}

// compress absorbs one block: h ^= P(h ^ m) ^ Q(m).
func compress[V lanes.Vec64](h *[maxCols]V, m *[maxCols]V, cols, rounds int) {
	var p, q [maxCols]V
	for i := 0; i < cols; i++ {
		p[i] = lanes.Xor64(h[i], m[i])
		q[i] = m[i]
	}
	permute(&p, cols, rounds, false)
	permute(&q, cols, rounds, true)
	for i := 0; i < cols; i++ {
		h[i] = lanes.Xor64(h[i], lanes.Xor64(p[i], q[i]))
	}
}

// outputTransform computes h ^ P(h).
func outputTransform[V lanes.Vec64](h *[maxCols]V, cols, rounds int) {
	p := *h
	permute(&p, cols, rounds, false)
	for i := 0; i < cols; i++ {
		h[i] = lanes.Xor64(h[i], p[i])
	}
}
