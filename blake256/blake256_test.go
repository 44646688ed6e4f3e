// Copyright (c) 2023 The Decred developers.

package blake256

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/rand"
	"testing"

	dcrblake256 "github.com/decred/dcrd/crypto/blake256"
	hex "github.com/tmthrgd/go-hex"

	"github.com/decred/cpuminer/lanes"
)

// pattern returns n bytes counting up from zero.
func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

// hashLanes hashes one equal-length message per lane through a wide
// context and returns the per-lane digests.
func hashLanes[V lanes.Vec32](msgs [][]byte, rounds int) [][]byte {
	n := len(msgs[0])
	full := make([][]byte, len(msgs))
	tails := make([][]byte, len(msgs))
	for i, msg := range msgs {
		full[i] = msg[:n&^3]
		tails[i] = make([]byte, 4)
		copy(tails[i], msg[n&^3:])
	}
	ctx := NewRounds[V](rounds)
	ctx.Update(lanes.Interleave32[V](binary.BigEndian, full...))
	last := lanes.Interleave32[V](binary.BigEndian, tails...)[0]
	h := ctx.SumPartial(last, n&3)
	return lanes.Deinterleave32(binary.BigEndian, h[:])
}

func checkAllLanes[V lanes.Vec32](t *testing.T, msg []byte, rounds int, want []byte) {
	t.Helper()
	msgs := make([][]byte, lanes.Count32[V]())
	for i := range msgs {
		msgs[i] = msg
	}
	for l, got := range hashLanes[V](msgs, rounds) {
		if !bytes.Equal(got, want) {
			t.Errorf("%d lanes, lane %d: got %x, want %x", len(msgs), l, got, want)
		}
	}
}

var vectors = []struct {
	rounds int
	n      int
	want   string
}{
	{14, 0, "716f6e863f744b9ac22c97ec7b76ea5f5908bc5b2f67c61510bfc4751384ea7a"},
	{14, 1, "0ce8d4ef4dd7cd8d62dfded9d4edb0a774ae6a41929a74da23109e8f11139c87"},
	{14, 55, "d7ec78bc615d99e41d371cf6401449969144b5f789bde014a9aeafd8987257f2"},
	{14, 56, "26ca422697c9fabc642129b1a5669be07fb0a3c31f14f1c7859e048ad5958e44"},
	{14, 63, "cfce445066d35322557b432540bd2f0af4caf9f426568236d9944426a5df792a"},
	{14, 64, "4432b2c1e983b0c326583516920f3949c2acf5d85a99353601228cab40c867bc"},
	{14, 65, "106cdd00dc14e257b1130d026b9fcc2c5ecbaae08fec13af0002ad6054c7bbd5"},
	{14, 128, "70a7b33d6d251c06757362fa717d0b19ceb0ebdccf48300a98156b5bb6b8c9a5"},
	{8, 0, "5aca53d736759ea025a31d76c31bc18933f480416e200a935a89fc31d3964998"},
	{8, 1, "fa61f911c6aaacffaed2fcd7fbed6596035ecc70a9d1b8bf6c610bdea3227f95"},
	{8, 63, "16c79edd265308cd1a99ad19e21e0a39c0a047c8a95ce0dba88a838fddf1766e"},
	{8, 64, "b4d6a578160aa99aea3e613fc9c135bf846478f18419d49e28dfbe57e6ca1b92"},
	{8, 65, "fafd01b80b4e7af2ff32cb396038824ec6880300d9a15b9d17fe4fd1af6e5a70"},
}

func TestVectors(t *testing.T) {
	for _, test := range vectors {
		t.Run(fmt.Sprintf("r%d/%d", test.rounds, test.n), func(t *testing.T) {
			msg := pattern(test.n)
			want := mustHex(t, test.want)

			got := SumRounds(msg, test.rounds)
			if !bytes.Equal(got[:], want) {
				t.Errorf("SumRounds = %x, want %x", got, want)
			}

			checkAllLanes[lanes.V1x32](t, msg, test.rounds, want)
			checkAllLanes[lanes.V2x32](t, msg, test.rounds, want)
			checkAllLanes[lanes.V4x32](t, msg, test.rounds, want)
			checkAllLanes[lanes.V8x32](t, msg, test.rounds, want)
			checkAllLanes[lanes.V16x32](t, msg, test.rounds, want)
		})
	}
}

func TestZeroBytes(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "0ce8d4ef4dd7cd8d62dfded9d4edb0a774ae6a41929a74da23109e8f11139c87"},
		{72, "d419bad32d504fb7d44d460c42c5593fe544fa4c135dec31e21bd9abdcc22d41"},
	}
	for _, test := range tests {
		got := Sum256(make([]byte, test.n))
		if hex.EncodeToString(got[:]) != test.want {
			t.Errorf("Sum256(%d zero bytes) = %x, want %s", test.n, got, test.want)
		}
	}
}

// The 14-round variant is standard BLAKE-256, so every length around the
// block boundaries must agree with the dcrd implementation.
func TestMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for n := 0; n <= 200; n++ {
		msg := make([]byte, n)
		rng.Read(msg)
		want := dcrblake256.Sum256(msg)
		if got := Sum256(msg); got != want {
			t.Fatalf("length %d: got %x, want %x", n, got, want)
		}
		checkAllLanes[lanes.V4x32](t, msg, Rounds, want[:])
	}
}

func testLaneIndependence[V lanes.Vec32](t *testing.T) {
	rng := rand.New(rand.NewSource(int64(lanes.Count32[V]())))
	for _, n := range []int{0, 1, 3, 55, 56, 63, 64, 65, 130} {
		for _, rounds := range []int{Rounds, Rounds8} {
			msgs := make([][]byte, lanes.Count32[V]())
			for i := range msgs {
				msgs[i] = make([]byte, n)
				rng.Read(msgs[i])
			}
			for l, got := range hashLanes[V](msgs, rounds) {
				want := SumRounds(msgs[l], rounds)
				if !bytes.Equal(got, want[:]) {
					t.Errorf("n=%d r=%d lane %d: got %x, want %x", n, rounds, l, got, want)
				}
			}
		}
	}
}

func TestLaneIndependence(t *testing.T) {
	t.Run("1", testLaneIndependence[lanes.V1x32])
	t.Run("2", testLaneIndependence[lanes.V2x32])
	t.Run("4", testLaneIndependence[lanes.V4x32])
	t.Run("8", testLaneIndependence[lanes.V8x32])
	t.Run("16", testLaneIndependence[lanes.V16x32])
}

func TestStreaming(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	// Word-granular wide context.
	for i := 0; i < 50; i++ {
		nwords := rng.Intn(3*BlockWords + 1)
		buf := make([]byte, 4*nwords)
		rng.Read(buf)
		words := lanes.Interleave32[lanes.V2x32](binary.BigEndian, buf, buf)
		want := Full(words, Rounds)

		ctx := New[lanes.V2x32]()
		for rest := words; len(rest) > 0; {
			k := rng.Intn(len(rest) + 1)
			ctx.Update(rest[:k])
			rest = rest[k:]
		}
		if got := ctx.Sum(); got != want {
			t.Fatalf("%d words: streamed digest differs", nwords)
		}
	}

	// Byte-granular digest.
	for i := 0; i < 50; i++ {
		msg := make([]byte, rng.Intn(200))
		rng.Read(msg)
		want := Sum256(msg)

		d := NewDigest()
		for rest := msg; len(rest) > 0; {
			k := rng.Intn(len(rest) + 1)
			d.Write(rest[:k])
			rest = rest[k:]
		}
		if got := d.Sum(nil); !bytes.Equal(got, want[:]) {
			t.Fatalf("%d bytes: got %x, want %x", len(msg), got, want)
		}
	}
}

func TestSumDoesNotFinalize(t *testing.T) {
	d := NewDigest()
	d.Write(pattern(30))
	first := d.Sum(nil)
	if second := d.Sum(nil); !bytes.Equal(first, second) {
		t.Fatalf("second Sum differs: %x != %x", second, first)
	}
	d.Write(pattern(65)[30:])
	want := Sum256(pattern(65))
	if got := d.Sum(nil); !bytes.Equal(got, want[:]) {
		t.Fatalf("Write after Sum: got %x, want %x", got, want)
	}
}
