// Copyright (c) 2023 The Decred developers.

package blake256

import (
	"bytes"
	"encoding/binary"
	"math/big"
	"math/rand"
	"testing"

	"github.com/sclevine/spec"
	"github.com/stretchr/testify/require"

	"github.com/decred/cpuminer/lanes"
)

// headerWords returns the 20 big-endian words of an 80-byte header with
// the nonce word replaced by one nonce per lane.
func headerWords[V lanes.Vec32](header []byte, nonce V) []V {
	words := make([]V, HeaderSize/4)
	for i := range words {
		words[i] = lanes.Splat32[V](binary.BigEndian.Uint32(header[4*i:]))
	}
	words[19] = nonce
	return words
}

func TestZeroHeader(t *testing.T) {
	tests := []struct {
		nonce uint32
		r14   string
		r8    string
	}{
		{0,
			"0c7b159452328517463db487df5e39b71322afaf14ed562ce9d18d7d9051b305",
			"1beb6d9960f931790caf8b8dde245415f19d7efc1a55952f5d83aaa1cf6d8ce0"},
		{1,
			"f49c81169a3abff58a1e6c1a349f5eeb15ce271b644517b98d3ce8b0cbdcc610",
			"5147797e116abca76027e4ccb52d153d020d2a7f3cf3f34321f651adcbed0bb9"},
		{0xffffffff,
			"cd10c2f7f58de42f895b601876a961a7df11ed05eed94ce57ea7c2d07a87b33d",
			"07df5aba6807726296d197d1bf82be86a0a887a5f9a07031f59ce5e8a6a42b03"},
	}
	for _, test := range tests {
		var header [HeaderSize]byte
		binary.BigEndian.PutUint32(header[76:], test.nonce)

		for _, variant := range []struct {
			rounds int
			want   string
		}{{Rounds, test.r14}, {Rounds8, test.r8}} {
			want := mustHex(t, variant.want)

			full := SumRounds(header[:], variant.rounds)
			if !bytes.Equal(full[:], want) {
				t.Errorf("nonce %#x r%d: SumRounds = %x, want %x", test.nonce,
					variant.rounds, full, want)
			}

			nonces := lanes.Splat32[lanes.V4x32](test.nonce)
			ms := PrehashHeader[lanes.V4x32](7, header[:], variant.rounds)
			h := ms.Final(nonces)
			for l, got := range lanes.Deinterleave32(binary.BigEndian, h[:]) {
				if !bytes.Equal(got, want) {
					t.Errorf("nonce %#x r%d lane %d: Final = %x, want %x",
						test.nonce, variant.rounds, l, got, want)
				}
			}
		}
	}
}

func testPrehashFinal[V lanes.Vec32](t *testing.T, rng *rand.Rand, header []byte, rounds, count int) {
	k := lanes.Count32[V]()
	midhash := Midhash[V](header, rounds)
	tail := NewHeaderTail[V](header)
	ms := Prehash(42, midhash, tail, rounds)
	require.Equal(t, uint64(42), ms.Job())
	require.Equal(t, rounds, ms.Rounds())

	for done := 0; done < count; done += k {
		var nonce V
		for l := range k {
			nonce[l] = rng.Uint32()
		}
		got := ms.Final(nonce)
		require.Equal(t, Full(headerWords(header, nonce), rounds), got)
		require.Equal(t, HashHeader(midhash, tail, nonce, rounds), got)
	}
}

func TestPrehashFinal(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	header := make([]byte, HeaderSize)
	rng.Read(header)

	const count = 10000
	for _, rounds := range []int{Rounds, Rounds8} {
		testPrehashFinal[lanes.V1x32](t, rng, header, rounds, count)
		testPrehashFinal[lanes.V4x32](t, rng, header, rounds, count)
		testPrehashFinal[lanes.V16x32](t, rng, header, rounds, count)
	}
	testPrehashFinal[lanes.V2x32](t, rng, header, Rounds, 1000)
	testPrehashFinal[lanes.V8x32](t, rng, header, Rounds, 1000)
}

// The short-cut path must agree with the general compression on the fully
// padded second header block.
func TestHeaderTailMatchesGeneral(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 500; i++ {
		var h [8]lanes.V8x32
		var tail HeaderTail[lanes.V8x32]
		var nonce lanes.V8x32
		for j := range h {
			for l := range h[j] {
				h[j][l] = rng.Uint32()
			}
		}
		for j := range tail {
			for l := range tail[j] {
				tail[j][l] = rng.Uint32()
			}
		}
		for l := range nonce {
			nonce[l] = rng.Uint32()
		}

		var m [BlockWords]lanes.V8x32
		copy(m[:3], tail[:])
		m[nonceWord] = nonce
		for j := nonceWord + 1; j < BlockWords; j++ {
			m[j] = lanes.Splat32[lanes.V8x32](headerPad[j])
		}

		rounds := Rounds
		if i%2 == 1 {
			rounds = Rounds8
		}
		general := h
		compress(&general, &m, headerBits, 0, rounds)
		short := h
		compressHeaderTail(&short, &tail, nonce, rounds)
		require.Equal(t, general, short, "iteration %d", i)
	}
}

// refSum hashes msg with an explicit big-integer bit counter that starts at
// start bits, reducing it to the 64 bits BLAKE-256 mixes in only when a
// block is compressed.
func refSum(start *big.Int, msg []byte) [Size]byte {
	mod := new(big.Int).Lsh(big.NewInt(1), 64)
	split := func(x *big.Int) (uint32, uint32) {
		x = new(big.Int).Mod(x, mod)
		lo := new(big.Int).And(x, big.NewInt(0xffffffff))
		return uint32(lo.Uint64()), uint32(new(big.Int).Rsh(x, 32).Uint64())
	}

	total := new(big.Int).Add(start, big.NewInt(int64(len(msg))*8))
	padded := append(append([]byte{}, msg...), 0x80)
	for len(padded)%BlockSize != BlockSize-8 {
		padded = append(padded, 0)
	}
	padded[len(padded)-1] |= 0x01
	lo, hi := split(total)
	padded = binary.BigEndian.AppendUint32(padded, hi)
	padded = binary.BigEndian.AppendUint32(padded, lo)

	var h [8]lanes.V1x32
	for i := range h {
		h[i][0] = iv[i]
	}
	for off := 0; off < len(padded); off += BlockSize {
		var m [BlockWords]lanes.V1x32
		for i := range m {
			m[i][0] = binary.BigEndian.Uint32(padded[off+4*i:])
		}
		var t0, t1 uint32
		if off < len(msg) {
			end := len(msg)
			if off+BlockSize < end {
				end = off + BlockSize
			}
			t0, t1 = split(new(big.Int).Add(start, big.NewInt(int64(end)*8)))
		}
		compress(&h, &m, t0, t1, Rounds)
	}

	var out [Size]byte
	for i := range h {
		binary.BigEndian.PutUint32(out[4*i:], h[i][0])
	}
	return out
}

func TestCounterOverflow(t *testing.T) {
	starts := []*big.Int{
		new(big.Int).SetUint64(1<<32 - 512),
		new(big.Int).SetUint64(1<<32 - 1024),
		new(big.Int).SetUint64(1<<33 - 512),
		new(big.Int).SetUint64(1<<64 - 1024),
		new(big.Int).SetUint64(1<<64 - 512),
	}
	for _, start := range starts {
		for n := 0; n <= 2*BlockSize+1; n++ {
			msg := pattern(n)

			d := NewDigest()
			d.ctx.t0 = uint32(start.Uint64())
			d.ctx.t1 = uint32(start.Uint64() >> 32)
			d.Write(msg)
			got := d.Sum(nil)

			want := refSum(start, msg)
			if !bytes.Equal(got, want[:]) {
				t.Fatalf("start %v length %d: got %x, want %x", start, n, got, want)
			}
		}
	}
}

func TestContextLifecycle(t *testing.T) {
	spec.Run(t, "Context", func(t *testing.T, when spec.G, it spec.S) {
		var ctx *Context[lanes.V4x32]
		words := lanes.Interleave32[lanes.V4x32](binary.BigEndian,
			pattern(96), pattern(96), pattern(96), pattern(96))

		it.Before(func() {
			ctx = New[lanes.V4x32]()
		})

		when("empty", func() {
			it("hashes the empty message", func() {
				want := Sum256(nil)
				h := ctx.Sum()
				require.Equal(t, want[:], lanes.ExtractLane32(binary.BigEndian, h[:], 3))
			})
		})

		when("accumulating", func() {
			it.Before(func() {
				ctx.Update(words[:5])
			})

			it("leaves the context untouched on Sum", func() {
				first := ctx.Sum()
				require.Equal(t, first, ctx.Sum())
				ctx.Update(words[5:])
				require.Equal(t, Full(words, Rounds), ctx.Sum())
			})

			it("returns to the initial state on Reset", func() {
				ctx.Reset()
				require.Equal(t, New[lanes.V4x32]().Sum(), ctx.Sum())
			})

			it("closes with a partial word", func() {
				want := Sum256(pattern(22))
				var last lanes.V4x32
				for l := range last {
					last[l] = binary.BigEndian.Uint32(pattern(24)[20:])
				}
				h := ctx.SumPartial(last, 2)
				require.Equal(t, want[:], lanes.ExtractLane32(binary.BigEndian, h[:], 0))
			})
		})
	})
}
