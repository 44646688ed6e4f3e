// Copyright (c) 2023 The Decred developers.

package groestl

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

func hashLanes[V lanes.Vec64](newCtx func() *Context[V], msgs [][]byte) [][]byte {
	n := len(msgs[0])
	full := make([][]byte, len(msgs))
	tails := make([][]byte, len(msgs))
	for i, msg := range msgs {
		full[i] = msg[:n&^7]
		tails[i] = make([]byte, 8)
		copy(tails[i], msg[n&^7:])
	}
	ctx := newCtx()
	ctx.Update(lanes.Interleave64[V](binary.BigEndian, full...))
	h := ctx.SumPartial(lanes.Interleave64[V](binary.BigEndian, tails...)[0], n&7)
	return lanes.Deinterleave64(binary.BigEndian, h)
}

func checkAllLanes[V lanes.Vec64](t *testing.T, long bool, msg, want []byte) {
	t.Helper()
	newCtx := New256[V]
	if long {
		newCtx = New512[V]
	}
	msgs := make([][]byte, lanes.Count64[V]())
	for i := range msgs {
		msgs[i] = msg
	}
	for l, got := range hashLanes(newCtx, msgs) {
		require.Equal(t, want, got, "%d lanes, lane %d", len(msgs), l)
	}
}

var vectors = []struct {
	long bool
	n    int
	want string
}{
	{false, 0, "1a52d11d550039be16107f9c58db9ebcc417f16f736adb2502567119f0083467"},
	{false, 1, "df8f8538535754c4a00d36288c389d5eaa56bcddd7f1862e60175fbbcbafb4ea"},
	{false, 55, "a2bbd209981d8e092deb8909433a9fc40c63738e1a5ba2d80f30d691205d422e"},
	{false, 56, "373a1ecc579afc93bf0fe2140f57dab5aa57bd43a265b5c3c615732cd420dbf5"},
	{false, 63, "03843d92c44a2b28c27105e6c3597cd5e9a1aebbda2001a0e25ad85a4b392ecf"},
	{false, 64, "aa3f0b70ae7e022644ed5bd29af4f66e2e9ebd10ef98bf50cd4680ac5ef1aaf4"},
	{false, 65, "b2f93ea152c7c399ff4d3d764c6685001181f968556214068dbe7809a930c319"},
	{true, 0, "6d3ad29d279110eef3adbd66de2a0345a77baede1557f5d099fce0c03d6dc2ba8e6d4a6633dfbd66053c20faa87d1a11f39a7fbe4a6c2f009801370308fc4ad8"},
	{true, 1, "38d30ca3433d2a93b32e154c3691ce90e53812a64a879ef872e3eb42f6e5e3210ecf90c7b7925223776791251c3c68194d65ed0fab1c8e0e0db735ff521e5af0"},
	{true, 119, "b37602eb3cb6226e83ce18695d15f19f7e01afff69f4a76103afb789d073a757fc6d97242e80ee92e0953d8617174375ae5227581c1630098e3048bc5bfdfc5a"},
	{true, 120, "5cfc13a05459f11cab784846d953da0b7c3eda4855db918da20993665b7e7260cb3711782f402c04b49a03f70414246d56217e97e261cef8f0c225fd124cb971"},
	{true, 127, "f61cea93f8dcb9f48a78f14c990cf4690735495d1e6685acc86ab4f56f39f808b3b2266120cd897a933e758aa40c81fef2d895eff52fe235b2025f4a7c910241"},
	{true, 128, "70b56b15a86cd65b19f4afe78f7b408b72287947cc0d28ba4189573fbe033cf9a3298127b460778feecca5794407539acc267b27732e4fbc21bc96fcf9f2f17a"},
	{true, 129, "a13f2cfec593ca4d55c3f19a60e5b0b5835e240df0d4e98d8abd84e422c861601e4b3a0f88d1409f8b8399774ccd6a3f7ed2081592274f66c8542815ab0db63e"},
}

func TestVectors(t *testing.T) {
	for _, test := range vectors {
		bits := 256
		if test.long {
			bits = 512
		}
		t.Run(fmt.Sprintf("%d/%d", bits, test.n), func(t *testing.T) {
			msg := pattern(test.n)
			want, err := hex.DecodeString(test.want)
			require.NoError(t, err)

			if test.long {
				got := Sum512(msg)
				require.Equal(t, want, got[:])
			} else {
				got := Sum256(msg)
				require.Equal(t, want, got[:])
			}

			checkAllLanes[lanes.V1x64](t, test.long, msg, want)
			checkAllLanes[lanes.V2x64](t, test.long, msg, want)
			checkAllLanes[lanes.V4x64](t, test.long, msg, want)
			checkAllLanes[lanes.V8x64](t, test.long, msg, want)
			checkAllLanes[lanes.V16x64](t, test.long, msg, want)
		})
	}
}

func TestQuickBrownFox(t *testing.T) {
	got := Sum256([]byte("The quick brown fox jumps over the lazy dog"))
	require.Equal(t, "8c7ad62eb26a21297bc39c2d7293b4bd4d3399fa8afab29e970471739e28b301",
		hex.EncodeToString(got[:]))
}

func testLaneIndependence[V lanes.Vec64](t *testing.T) {
	rng := rand.New(rand.NewSource(int64(lanes.Count64[V]())))
	for _, n := range []int{0, 3, 55, 56, 64, 119, 120, 200} {
		msgs := make([][]byte, lanes.Count64[V]())
		for i := range msgs {
			msgs[i] = make([]byte, n)
			rng.Read(msgs[i])
		}
		for l, got := range hashLanes(New256[V], msgs) {
			want := Sum256(msgs[l])
			require.Equal(t, want[:], got, "256 n=%d lane %d", n, l)
		}
		for l, got := range hashLanes(New512[V], msgs) {
			want := Sum512(msgs[l])
			require.Equal(t, want[:], got, "512 n=%d lane %d", n, l)
		}
	}
}

func TestLaneIndependence(t *testing.T) {
	t.Run("1", testLaneIndependence[lanes.V1x64])
	t.Run("2", testLaneIndependence[lanes.V2x64])
	t.Run("4", testLaneIndependence[lanes.V4x64])
	t.Run("8", testLaneIndependence[lanes.V8x64])
	t.Run("16", testLaneIndependence[lanes.V16x64])
}

func TestStreaming(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 40; i++ {
		msg := make([]byte, rng.Intn(3*BlockSize512))
		rng.Read(msg)
		want := Sum512(msg)

		d := NewDigest512()
		for rest := msg; len(rest) > 0; {
			k := rng.Intn(len(rest) + 1)
			d.Write(rest[:k])
			rest = rest[k:]
		}
		require.Equal(t, want[:], d.Sum(nil), "length %d", len(msg))
		d.Reset()
		d.Write(msg)
		require.Equal(t, want[:], d.Sum(nil), "length %d after Reset", len(msg))
	}
}
