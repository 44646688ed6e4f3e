// Copyright (c) 2023 The Decred developers.

package blake256

import (
	"encoding/binary"
	"hash"

	"github.com/decred/cpuminer/lanes"
)

// Digest is a byte-oriented single-lane BLAKE-256 implementing hash.Hash.
type Digest struct {
	ctx Context[lanes.V1x32]
	x   [4]byte
	nx  int
}

var _ hash.Hash = (*Digest)(nil)

// NewDigest returns a new 14-round BLAKE-256 hash.Hash.
func NewDigest() *Digest {
	return NewDigestRounds(Rounds)
}

// NewDigestRounds returns a new BLAKE-256 hash.Hash with the given number
// of rounds.
func NewDigestRounds(rounds int) *Digest {
	d := &Digest{}
	d.ctx.rounds = rounds
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
		if d.nx < 4 {
			return n, nil
		}
		d.ctx.Update([]lanes.V1x32{{binary.BigEndian.Uint32(d.x[:])}})
		d.nx = 0
	}
	if len(p) >= 4 {
		var words [BlockWords]lanes.V1x32
		for len(p) >= 4 {
			k := 0
			for ; k < BlockWords && len(p) >= 4; k++ {
				words[k][0] = binary.BigEndian.Uint32(p)
				p = p[4:]
			}
			d.ctx.Update(words[:k])
		}
	}
	d.nx = copy(d.x[:], p)
	return n, nil
}

// Sum appends the current digest to b without changing the hash state.
func (d *Digest) Sum(b []byte) []byte {
	var tail [4]byte
	copy(tail[:], d.x[:d.nx])
	last := lanes.V1x32{binary.BigEndian.Uint32(tail[:])}
	h := d.ctx.SumPartial(last, d.nx)
	for _, w := range h {
		b = binary.BigEndian.AppendUint32(b, w[0])
	}
	return b
}

// Sum256 returns the 14-round BLAKE-256 digest of data.
func Sum256(data []byte) [Size]byte {
	return SumRounds(data, Rounds)
}

// SumRounds returns the BLAKE-256 digest of data using the given number of
// rounds.
func SumRounds(data []byte, rounds int) [Size]byte {
	d := NewDigestRounds(rounds)
	d.Write(data)
	var out [Size]byte
	d.Sum(out[:0])
	return out
}
