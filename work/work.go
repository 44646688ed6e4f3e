// Copyright (c) 2016-2023 The Decred developers.

// Package work defines the mining job handed to the nonce search: an
// 80-byte block header with a big-endian nonce in its last four bytes and
// the target its digest must not exceed.
package work

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/blockchain/standalone/v2"
	"github.com/decred/dcrd/chaincfg/chainhash"
	hex "github.com/tmthrgd/go-hex"
)

const (
	// HeaderSize is the size of a serialized block header.
	HeaderSize = 80

	// NonceOffset is the byte offset of the big-endian nonce.
	NonceOffset = HeaderSize - 4
)

// ErrHeaderLength is returned when a serialized header is not exactly
// HeaderSize bytes.
var ErrHeaderLength = errors.New("block header must be 80 bytes")

// Header is a serialized block header.
type Header [HeaderSize]byte

// HeaderFromBytes copies a serialized header.
func HeaderFromBytes(b []byte) (Header, error) {
	var h Header
	if len(b) != HeaderSize {
		return h, fmt.Errorf("%w: got %d", ErrHeaderLength, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// HeaderFromHex decodes a hex serialized header.
func HeaderFromHex(s string) (Header, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Header{}, fmt.Errorf("invalid header hex: %w", err)
	}
	return HeaderFromBytes(b)
}

// Nonce returns the header nonce.
func (h *Header) Nonce() uint32 {
	return binary.BigEndian.Uint32(h[NonceOffset:])
}

// SetNonce sets the header nonce.
func (h *Header) SetNonce(nonce uint32) {
	binary.BigEndian.PutUint32(h[NonceOffset:], nonce)
}

// WithNonce returns a copy of the header carrying nonce.
func (h Header) WithNonce(nonce uint32) Header {
	h.SetNonce(nonce)
	return h
}

// Words32 returns the header as twenty 32-bit words in the given order.
func (h *Header) Words32(order binary.ByteOrder) [HeaderSize / 4]uint32 {
	var w [HeaderSize / 4]uint32
	for i := range w {
		w[i] = order.Uint32(h[4*i:])
	}
	return w
}

// Words64 returns the header as ten big-endian 64-bit words.
func (h *Header) Words64() [HeaderSize / 8]uint64 {
	var w [HeaderSize / 8]uint64
	for i := range w {
		w[i] = binary.BigEndian.Uint64(h[8*i:])
	}
	return w
}

// String returns the hex encoding of the header.
func (h Header) String() string {
	return hex.EncodeToString(h[:])
}

// Job is one unit of work.  The ID changes whenever the header changes so
// that state derived from an older header can be detected as stale.
type Job struct {
	ID     uint64
	Header Header
	Target *big.Int
}

// NewJob returns a job for header that accepts digests at or below target.
func NewJob(id uint64, header Header, target *big.Int) *Job {
	return &Job{ID: id, Header: header, Target: new(big.Int).Set(target)}
}

// DigestValue interprets the first 32 bytes of a digest as a little-endian
// 256-bit integer, the way block hashes are compared to targets.
func DigestValue(digest []byte) *big.Int {
	var h chainhash.Hash
	copy(h[:], digest)
	return standalone.HashToBig(&h)
}

// Meets reports whether digest is at or below the job target.
func (j *Job) Meets(digest []byte) bool {
	return DigestValue(digest).Cmp(j.Target) <= 0
}
