// Copyright (c) 2023 The Decred developers.

package shavite

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	hex "github.com/tmthrgd/go-hex"
	"lukechampine.com/uint128"

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
	ctx.Update(lanes.Interleave32[V](binary.LittleEndian, full...))
	h := ctx.SumPartial(lanes.Interleave32[V](binary.LittleEndian, tails...)[0], n&3)
	return lanes.Deinterleave32(binary.LittleEndian, h[:])
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
		{0, "a485c1b2578459d1efc5dddd840bb0b4a650ac82fe68f58c4442ccda747da006b2d1dc6b4a4eb7d84ff91e1f466fef429d259acd995dddcad16fa545c7a6e5ba"},
		{1, "b9eb26bb393c45440430bbd31e312e21be388067f50ad14a5c4a3389aaaec4ffd89bf79efe9864453f0a0531d8f9307c45bb4fca1eeb5ebb7706416341d46c00"},
		{109, "f15ba9e180000e0210987125d1e57a4f66922066702b4656c023d0523c67957bc413648a926d36199d05f010b9d321712c96d4d734ad1341f26e018e066a6d2c"},
		{110, "9b0423c254644e4be9898fadfb526dc5e48e2110aa2671c070c61ef03773c8eb1b55a51d4c7c250f3397a3d196b718c4b5f0e74a697e1962af0b3ba363acb47e"},
		{127, "fba739b636fb4be81248e1cea093491080680769f80e946ff70f2de5614849cd76c7c18bcbc640d8f93b9af3b0649bbf3daccd268097e996873d3899d4ff1513"},
		{128, "c67b6b19a26556a6f5eb1545816d393e494c236d9fe36685e182238daa026429dfc549caeb34d9ea959da1daf189bc16839430750902b5b6db4bf9b9daba0b56"},
		{129, "30f9b09a07af8244d69a4baab83559e6c0b324e59802a2e08b6bec00bd77386edca55f45f6080d0ad4c989469165334c3be8715e8e60b14670f114b9856ec4c6"},
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
	for _, n := range []int{0, 2, 80, 109, 110, 128, 250} {
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
		msg := make([]byte, rng.Intn(3*BlockSize))
		rng.Read(msg)
		want := Sum512(msg)

		d := NewDigest()
		for rest := msg; len(rest) > 0; {
			k := rng.Intn(len(rest) + 1)
			d.Write(rest[:k])
			rest = rest[k:]
		}
		require.Equal(t, want[:], d.Sum(nil), "length %d", len(msg))
	}
}

func counterWords(c uint128.Uint128) [4]uint32 {
	return [4]uint32{uint32(c.Lo), uint32(c.Lo >> 32), uint32(c.Hi), uint32(c.Hi >> 32)}
}

func compressBytes(h *[16]lanes.V1x32, block []byte, cnt uint128.Uint128) {
	var m [blockWords]lanes.V1x32
	for i := range m {
		m[i][0] = binary.LittleEndian.Uint32(block[4*i:])
	}
	compress(h, &m, counterWords(cnt))
}

// refSum hashes msg with a 128-bit bit counter that starts at start.
func refSum(start uint128.Uint128, msg []byte) [Size]byte {
	var h [16]lanes.V1x32
	for i := range h {
		h[i][0] = iv[i]
	}
	cnt := start
	for ; len(msg) >= BlockSize; msg = msg[BlockSize:] {
		cnt = cnt.AddWrap64(BlockSize * 8)
		compressBytes(&h, msg[:BlockSize], cnt)
	}
	cnt = cnt.AddWrap64(uint64(len(msg)) * 8)

	block := make([]byte, BlockSize)
	copy(block, msg)
	block[len(msg)] = 0x80
	blockCnt := cnt
	if len(msg) == 0 {
		blockCnt = uint128.Zero
	}
	if len(msg) >= lengthOffset {
		compressBytes(&h, block, cnt)
		block = make([]byte, BlockSize)
		blockCnt = uint128.Zero
	}
	binary.LittleEndian.PutUint64(block[lengthOffset:], cnt.Lo)
	binary.LittleEndian.PutUint64(block[lengthOffset+8:], cnt.Hi)
	block[BlockSize-1] = 2
	compressBytes(&h, block, blockCnt)

	var out [Size]byte
	for i := range h {
		binary.LittleEndian.PutUint32(out[4*i:], h[i][0])
	}
	return out
}

func TestCounterOverflow(t *testing.T) {
	starts := []uint128.Uint128{
		uint128.From64(1<<32 - 1024),
		uint128.From64(1<<64 - 2048),
		uint128.New(1<<64-1024, 1<<32-1),
		uint128.Max.Sub64(1023),
	}
	for _, start := range starts {
		for n := 0; n <= 2*BlockSize+1; n++ {
			msg := pattern(n)

			d := NewDigest()
			d.ctx.cnt = counterWords(start)
			d.Write(msg)

			want := refSum(start, msg)
			require.Equal(t, want[:], d.Sum(nil), "start %v length %d", start, n)
		}
	}
}

func TestZeroCounterMatchesReference(t *testing.T) {
	for _, n := range []int{0, 1, 109, 110, 128, 129} {
		msg := pattern(n)
		want := refSum(uint128.Zero, msg)
		got := Sum512(msg)
		require.Equal(t, want, got, "length %d", n)
	}
}
