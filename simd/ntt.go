// Copyright (c) 2023 The Decred developers.

package simd

// The message expansion is a 256-point number theoretic transform over
// Z/257 with 41 as the primitive 256th root of unity.  It runs on one lane
// at a time; the byte-wise arithmetic does not map onto 32-bit lanes.
const (
	prime = 257
	root  = 41
)

var (
	// rootPow[i] is 41^i mod 257.
	rootPow = func() (t [256]int32) {
		t[0] = 1
		for i := 1; i < len(t); i++ {
			t[i] = t[i-1] * root % prime
		}
		return t
	}()

	bitReverse = func() (t [256]uint8) {
		for i := range t {
			var r uint8
			for b := 0; b < 8; b++ {
				r |= uint8(i>>b&1) << (7 - b)
			}
			t[i] = r
		}
		return t
	}()
)

// ntt evaluates the message polynomial, with the tweak terms x^255 (and
// x^253 for the final block) added, at every power of the root.  Results
// are centred into [-128, 128].
func ntt(msg *[BlockSize]byte, final bool) [256]int32 {
	var a [256]int32
	for i, b := range msg {
		a[i] = int32(b)
	}
	a[255]++
	if final {
		a[253]++
	}

	var y [256]int32
	for i := range y {
		y[i] = a[bitReverse[i]]
	}
	for size := 2; size <= len(y); size <<= 1 {
		half, stride := size/2, len(y)/size
		for start := 0; start < len(y); start += size {
			for k := 0; k < half; k++ {
				u := y[start+k]
				v := y[start+k+half] * rootPow[stride*k] % prime
				y[start+k] = (u + v) % prime
				y[start+k+half] = (u - v + prime) % prime
			}
		}
	}
	for i, v := range y {
		if v > prime/2 {
			y[i] = v - prime
		}
	}
	return y
}

// wordOrder permutes the 32 groups of eight expanded words into the order
// the steps consume them.
var wordOrder = [32]int{
	4, 6, 0, 2, 7, 5, 3, 1,
	15, 11, 12, 8, 9, 13, 10, 14,
	17, 18, 23, 20, 22, 21, 16, 19,
	30, 24, 25, 31, 27, 29, 28, 26,
}

func pack(lo, hi, mul int32) uint32 {
	return uint32(lo*mul)&0xffff | uint32(hi*mul)<<16
}

// expand turns one lane's message block into the 32x8 step words.  The
// first sixteen steps pair neighbouring transform outputs and scale them
// by 185, the last sixteen pair outputs 128 apart and scale by 233.
func expand(msg *[BlockSize]byte, final bool) (w [32][8]uint32) {
	y := ntt(msg, final)
	for s := range w {
		p := 16 * wordOrder[s]
		for j := range w[s] {
			switch {
			case s < 16:
				w[s][j] = pack(y[p+2*j], y[p+2*j+1], 185)
			case s < 24:
				w[s][j] = pack(y[p+2*j-256], y[p+2*j-128], 233)
			default:
				w[s][j] = pack(y[p+2*j-383], y[p+2*j-255], 233)
			}
		}
	}
	return w
}
