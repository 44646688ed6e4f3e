// Copyright (c) 2023 The Decred developers.

package scanhash

import (
	"encoding/binary"
	"fmt"

	"github.com/decred/cpuminer/blake256"
	"github.com/decred/cpuminer/blake512"
	"github.com/decred/cpuminer/groestl"
	"github.com/decred/cpuminer/lanes"
	"github.com/decred/cpuminer/luffa"
	"github.com/decred/cpuminer/shavite"
	"github.com/decred/cpuminer/simd"
	"github.com/decred/cpuminer/sm3"
	"github.com/decred/cpuminer/work"
)

// Hasher hashes a job header for a batch of consecutive nonces, one per
// lane.  A Hasher is owned by a single worker.
type Hasher interface {
	// Lanes returns the number of nonces hashed per batch.
	Lanes() int

	// Prepare computes the nonce-independent state for job.
	Prepare(job *work.Job)

	// HashBatch writes the digest of the prepared header with nonce
	// first+l into out[l] for every lane l.  It returns ErrStaleMidstate
	// when the hasher was not prepared for jobID.
	HashBatch(jobID uint64, first uint32, out [][]byte) error
}

// New returns a hasher for algo processing width nonces per batch.
func New(algo Algorithm, width int) (Hasher, error) {
	if !algo.valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownAlgorithm, algo)
	}
	switch width {
	case 1:
		return newHasher[lanes.V1x32, lanes.V1x64](algo), nil
	case 2:
		return newHasher[lanes.V2x32, lanes.V2x64](algo), nil
	case 4:
		return newHasher[lanes.V4x32, lanes.V4x64](algo), nil
	case 8:
		return newHasher[lanes.V8x32, lanes.V8x64](algo), nil
	case 16:
		return newHasher[lanes.V16x32, lanes.V16x64](algo), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedLanes, width)
}

func newHasher[V32 lanes.Vec32, V64 lanes.Vec64](algo Algorithm) Hasher {
	switch algo {
	case Blake256:
		return &blake256Hasher[V32]{rounds: blake256.Rounds}
	case Blakecoin:
		return &blake256Hasher[V32]{rounds: blake256.Rounds8}
	case Blake512:
		return &blake512Hasher[V64]{}
	case Groestl:
		return newStream64[V64](groestl.BlockSize512, groestlSplit(groestl.New512[V64]), groestl.Size512)
	case Groestl256:
		return newStream64[V64](groestl.BlockSize256, groestlSplit(groestl.New256[V64]), groestl.Size256)
	case Luffa:
		return newStream32[V32](binary.BigEndian, luffa.BlockSize, luffaSplit[V32], luffa.Size)
	case Shavite:
		return newStream32[V32](binary.LittleEndian, shavite.BlockSize, shaviteSplit[V32], shavite.Size)
	case SIMD:
		return newStream32[V32](binary.LittleEndian, simd.BlockSize, simdSplit[V32], simd.Size)
	case SM3:
		return newStream32[V32](binary.BigEndian, sm3.BlockSize, sm3Split[V32], sm3.Size)
	}
	panic(fmt.Sprintf("no hasher for %v", algo))
}

// nonces32 returns first, first+1, ... in consecutive lanes.
func nonces32[V lanes.Vec32](first uint32) V {
	var n V
	for l := range len(n) {
		n[l] = first + uint32(l)
	}
	return n
}

func nonces64[V lanes.Vec64](first uint32) V {
	var n V
	for l := range len(n) {
		n[l] = uint64(first + uint32(l))
	}
	return n
}

// blake256Hasher searches with the BLAKE-256 header midstate.
type blake256Hasher[V lanes.Vec32] struct {
	rounds   int
	prepared bool
	ms       blake256.Midstate[V]
}

func (h *blake256Hasher[V]) Lanes() int { return lanes.Count32[V]() }

func (h *blake256Hasher[V]) Prepare(job *work.Job) {
	h.ms = blake256.PrehashHeader[V](job.ID, job.Header[:], h.rounds)
	h.prepared = true
}

func (h *blake256Hasher[V]) HashBatch(jobID uint64, first uint32, out [][]byte) error {
	if !h.prepared || h.ms.Job() != jobID {
		return ErrStaleMidstate
	}
	d := h.ms.Final(nonces32[V](first))
	writeLanes32(binary.BigEndian, d[:], out)
	return nil
}

// blake512Hasher searches with the BLAKE-512 header midstate.
type blake512Hasher[V lanes.Vec64] struct {
	prepared bool
	ms       blake512.Midstate[V]
}

func (h *blake512Hasher[V]) Lanes() int { return lanes.Count64[V]() }

func (h *blake512Hasher[V]) Prepare(job *work.Job) {
	h.ms = blake512.PrehashHeader[V](job.ID, job.Header[:])
	h.prepared = true
}

func (h *blake512Hasher[V]) HashBatch(jobID uint64, first uint32, out [][]byte) error {
	if !h.prepared || h.ms.Job() != jobID {
		return ErrStaleMidstate
	}
	d := h.ms.Final(nonces64[V](first))
	writeLanes64(d[:], out)
	return nil
}

func writeLanes32[V lanes.Vec32](order binary.ByteOrder, words []V, out [][]byte) {
	for i, w := range words {
		for l := range len(w) {
			order.PutUint32(out[l][4*i:], w[l])
		}
	}
}

func writeLanes64[V lanes.Vec64](words []V, out [][]byte) {
	for i, w := range words {
		for l := range len(w) {
			binary.BigEndian.PutUint64(out[l][8*i:], w[l])
		}
	}
}
