// Copyright (c) 2023 The Decred developers.

package lanes

import (
	"encoding/binary"
)

// Interleave32 packs the buffers, one per lane, into interleaved 32-bit
// vector words decoded with the given byte order.  Every buffer must have
// the same length, a multiple of 4, and there must be exactly one buffer
// per lane.
func Interleave32[V Vec32](order binary.ByteOrder, bufs ...[]byte) []V {
	n := checkBuffers(bufs, Count32[V](), 4)
	words := make([]V, n/4)
	for l, buf := range bufs {
		for w := range words {
			words[w][l] = order.Uint32(buf[4*w:])
		}
	}
	return words
}

// Deinterleave32 is the inverse of Interleave32.
func Deinterleave32[V Vec32](order binary.ByteOrder, words []V) [][]byte {
	bufs := make([][]byte, Count32[V]())
	for l := range bufs {
		bufs[l] = ExtractLane32(order, words, l)
	}
	return bufs
}

// ExtractLane32 returns the bytes held in one lane of the vector words.
func ExtractLane32[V Vec32](order binary.ByteOrder, words []V, lane int) []byte {
	buf := make([]byte, 4*len(words))
	for w := range words {
		order.PutUint32(buf[4*w:], words[w][lane])
	}
	return buf
}

// InsertLane32 overwrites one lane of the vector words with buf, which
// must be 4*len(words) bytes long.
func InsertLane32[V Vec32](order binary.ByteOrder, words []V, lane int, buf []byte) {
	if len(buf) != 4*len(words) {
		panic("lanes: buffer length does not match vector words")
	}
	for w := range words {
		words[w][lane] = order.Uint32(buf[4*w:])
	}
}

// Interleave64 packs the buffers, one per lane, into interleaved 64-bit
// vector words decoded with the given byte order.  Every buffer must have
// the same length, a multiple of 8, and there must be exactly one buffer
// per lane.
func Interleave64[V Vec64](order binary.ByteOrder, bufs ...[]byte) []V {
	n := checkBuffers(bufs, Count64[V](), 8)
	words := make([]V, n/8)
	for l, buf := range bufs {
		for w := range words {
			words[w][l] = order.Uint64(buf[8*w:])
		}
	}
	return words
}

// Deinterleave64 is the inverse of Interleave64.
func Deinterleave64[V Vec64](order binary.ByteOrder, words []V) [][]byte {
	bufs := make([][]byte, Count64[V]())
	for l := range bufs {
		bufs[l] = ExtractLane64(order, words, l)
	}
	return bufs
}

// ExtractLane64 returns the bytes held in one lane of the vector words.
func ExtractLane64[V Vec64](order binary.ByteOrder, words []V, lane int) []byte {
	buf := make([]byte, 8*len(words))
	for w := range words {
		order.PutUint64(buf[8*w:], words[w][lane])
	}
	return buf
}

// InsertLane64 overwrites one lane of the vector words with buf, which
// must be 8*len(words) bytes long.
func InsertLane64[V Vec64](order binary.ByteOrder, words []V, lane int, buf []byte) {
	if len(buf) != 8*len(words) {
		panic("lanes: buffer length does not match vector words")
	}
	for w := range words {
		words[w][lane] = order.Uint64(buf[8*w:])
	}
}

func checkBuffers(bufs [][]byte, count, size int) int {
	if len(bufs) != count {
		panic("lanes: buffer count does not match lane count")
	}
	n := len(bufs[0])
	if n%size != 0 {
		panic("lanes: buffer length is not a whole number of words")
	}
	for _, buf := range bufs[1:] {
		if len(buf) != n {
			panic("lanes: buffers differ in length")
		}
	}
	return n
}

// PadBE32 keeps the first n (0-3) bytes of every big-endian lane, appends
// the pad byte after them and clears the rest of the word.
func PadBE32[V Vec32](w V, n int, pad byte) V {
	shift := uint(32 - 8*n)
	for i := range len(w) {
		var keep uint32
		if n > 0 {
			keep = w[i] >> shift << shift
		}
		w[i] = keep | uint32(pad)<<(shift-8)
	}
	return w
}

// PadLE32 is the little-endian counterpart of PadBE32.
func PadLE32[V Vec32](w V, n int, pad byte) V {
	shift := uint(8 * n)
	mask := uint32(1)<<shift - 1
	for i := range len(w) {
		w[i] = w[i]&mask | uint32(pad)<<shift
	}
	return w
}

// PadBE64 keeps the first n (0-7) bytes of every big-endian lane, appends
// the pad byte after them and clears the rest of the word.
func PadBE64[V Vec64](w V, n int, pad byte) V {
	shift := uint(64 - 8*n)
	for i := range len(w) {
		var keep uint64
		if n > 0 {
			keep = w[i] >> shift << shift
		}
		w[i] = keep | uint64(pad)<<(shift-8)
	}
	return w
}

// PadLE64 is the little-endian counterpart of PadBE64.
func PadLE64[V Vec64](w V, n int, pad byte) V {
	shift := uint(8 * n)
	mask := uint64(1)<<shift - 1
	for i := range len(w) {
		w[i] = w[i]&mask | uint64(pad)<<shift
	}
	return w
}
