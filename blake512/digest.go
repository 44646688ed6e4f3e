// Copyright (c) 2023 The Decred developers.

package blake512

import (
	"encoding/binary"
	"hash"

	"github.com/decred/cpuminer/lanes"
)

// Digest is a byte-oriented single-lane BLAKE-512 implementing hash.Hash.
type Digest struct {
	ctx Context[lanes.V1x64]
	x   [8]byte
	nx  int
}

var _ hash.Hash = (*Digest)(nil)

// NewDigest returns a new BLAKE-512 hash.Hash.
func NewDigest() *Digest {
	d := &Digest{}
	d.Reset()
	return d
}

// Reset resets the hash to its initial state.
func (d *Digest) Reset() {
	d.ctx.Reset()
	d.nx = 0
}

// Size returns the digest size in bytes.
func (d *Digest) Size() int { return Size }

// BlockSize returns the block size in bytes.
func (d *Digest) BlockSize() int { return BlockSize }

// Write absorbs p.  It never returns an error.
func (d *Digest) Write(p []byte) (int, error) {
	n := len(p)
	if d.nx > 0 {
		c := copy(d.x[d.nx:], p)
		d.nx += c
		p = p[c:]
		if d.nx < 8 {
			return n, nil
		}
		d.ctx.Update([]lanes.V1x64{{binary.BigEndian.Uint64(d.x[:])}})
		d.nx = 0
	}
	var words [BlockWords]lanes.V1x64
	for len(p) >= 8 {
		k := 0
		for ; k < BlockWords && len(p) >= 8; k++ {
			words[k][0] = binary.BigEndian.Uint64(p)
			p = p[8:]
		}
		d.ctx.Update(words[:k])
	}
	d.nx = copy(d.x[:], p)
	return n, nil
}

// Sum appends the current digest to b without changing the hash state.
func (d *Digest) Sum(b []byte) []byte {
	var tail [8]byte
	copy(tail[:], d.x[:d.nx])
	h := d.ctx.SumPartial(lanes.V1x64{binary.BigEndian.Uint64(tail[:])}, d.nx)
	for _, w := range h {
		b = binary.BigEndian.AppendUint64(b, w[0])
	}
	return b
}

// Sum512 returns the BLAKE-512 digest of data.
func Sum512(data []byte) [Size]byte {
	d := NewDigest()
	d.Write(data)
	var out [Size]byte
	d.Sum(out[:0])
	return out
}
