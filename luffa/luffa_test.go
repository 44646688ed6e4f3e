// Copyright (c) 2023 The Decred developers.

package luffa

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	hex "github.com/tmthrgd/go-hex"

	"github.com/decred/cpuminer/lanes"
)

func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func hashLanes[V lanes.Vec32](msgs [][]byte) [][]byte {
	n := len(msgs[0])
	full := make([][]byte, len(msgs))
	tails := make([][]byte, len(msgs))
	for i, msg := range msgs {
		full[i] = msg[:n&^3]
		tails[i] = make([]byte, 4)
		copy(tails[i], msg[n&^3:])
	}
	ctx := New[V]()
	ctx.Update(lanes.Interleave32[V](binary.BigEndian, full...))
	h := ctx.SumPartial(lanes.Interleave32[V](binary.BigEndian, tails...)[0], n&3)
	return lanes.Deinterleave32(binary.BigEndian, h[:])
}

func checkAllLanes[V lanes.Vec32](t *testing.T, msg, want []byte) {
	t.Helper()
	msgs := make([][]byte, lanes.Count32[V]())
	for i := range msgs {
		msgs[i] = msg
	}
	for l, got := range hashLanes[V](msgs) {
		require.Equal(t, want, got, "%d lanes, lane %d", len(msgs), l)
	}
}

func TestVectors(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "6e7de4501189b3ca58f3ac114916654bbcd4922024b4cc1cd764acfe8ab4b7805df133eab345ffdb1c414564c924f48e0a301824e2ac4c34bd4efde2e43da90e"},
		{1, "3eae4880e6389eeadcb9ad3946ef2f76c30610962c693956a6f2f41b96553cfe7b3557c407b3cdf76b7ffe310655fc24248d7fe420fee5f40c9343eeb0861211"},
		{31, "5cd7cb52be1d6a7a0d036cc796c503aa26a514623654847662a2c87ed8b359b4e01deb12d757de27b90cfdfd2ab30397a3e8b94a47c4568f2ba7ab9a1d3aa8bb"},
		{32, "c8e6cb0384faf1af2f56ffedd9bd9c1e5cb63fd234068563f7caf91899e3ea602779f5c055d7ab5355ccaedb25f2d86796852ee80a0c1efbfb01fd85094518df"},
		{33, "886a25ebe16470d0c48bcf4705580764f58acf97c6845c358152f9e89d84691b8c2e53bbc2bd3cd2a971a319330e319732131f3922465f435c91a8c6aba0fba2"},
		{80, "5224f8bc8335d5ea30e9aaa415eafb14b49f13921b5aaa085b5c9eb2ba4e6805dfb17b7816b24b027c8c8b4a1b4efbde2da2359cc7907e348fb1c8e547d52f24"},
	}
	for _, test := range tests {
		t.Run(fmt.Sprint(test.n), func(t *testing.T) {
			msg := pattern(test.n)
			want, err := hex.DecodeString(test.want)
			require.NoError(t, err)

			got := Sum512(msg)
			require.Equal(t, want, got[:])

			checkAllLanes[lanes.V1x32](t, msg, want)
			checkAllLanes[lanes.V2x32](t, msg, want)
			checkAllLanes[lanes.V4x32](t, msg, want)
			checkAllLanes[lanes.V8x32](t, msg, want)
			checkAllLanes[lanes.V16x32](t, msg, want)
		})
	}
}

func testLaneIndependence[V lanes.Vec32](t *testing.T) {
	rng := rand.New(rand.NewSource(int64(lanes.Count32[V]())))
	for _, n := range []int{0, 2, 31, 32, 33, 80, 100} {
		msgs := make([][]byte, lanes.Count32[V]())
		for i := range msgs {
			msgs[i] = make([]byte, n)
			rng.Read(msgs[i])
		}
		for l, got := range hashLanes[V](msgs) {
			want := Sum512(msgs[l])
			require.Equal(t, want[:], got, "n=%d lane %d", n, l)
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
	rng := rand.New(rand.NewSource(8))
	for i := 0; i < 40; i++ {
		nwords := rng.Intn(4*blockWords + 1)
		buf := make([]byte, 4*nwords)
		rng.Read(buf)
		words := lanes.Interleave32[lanes.V4x32](binary.BigEndian, buf, buf, buf, buf)
		want := Full(words)

		ctx := New[lanes.V4x32]()
		for rest := words; len(rest) > 0; {
			k := rng.Intn(len(rest) + 1)
			ctx.Update(rest[:k])
			rest = rest[k:]
		}
		require.Equal(t, want, ctx.Sum(), "%d words", nwords)

		d := NewDigest()
		for rest := buf; len(rest) > 0; {
			k := rng.Intn(len(rest) + 1)
			d.Write(rest[:k])
			rest = rest[k:]
		}
		require.Equal(t, lanes.ExtractLane32(binary.BigEndian, want[:], 2), d.Sum(nil))
	}
}
