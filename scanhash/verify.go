// Copyright (c) 2023 The Decred developers.

package scanhash

import (
	"fmt"

	dcrblake256 "github.com/decred/dcrd/crypto/blake256"

	"github.com/decred/cpuminer/blake256"
	"github.com/decred/cpuminer/blake512"
	"github.com/decred/cpuminer/groestl"
	"github.com/decred/cpuminer/luffa"
	"github.com/decred/cpuminer/shavite"
	"github.com/decred/cpuminer/simd"
	"github.com/decred/cpuminer/sm3"
	"github.com/decred/cpuminer/work"
)

// Verify recomputes the digest of header with the byte-oriented single
// lane implementation of algo.  BLAKE-256 shares are checked against the
// dcrd implementation.
func Verify(algo Algorithm, header *work.Header) ([]byte, error) {
	switch algo {
	case Blake256:
		h := dcrblake256.Sum256(header[:])
		return h[:], nil
	case Blakecoin:
		h := blake256.SumRounds(header[:], blake256.Rounds8)
		return h[:], nil
	case Blake512:
		h := blake512.Sum512(header[:])
		return h[:], nil
	case Groestl:
		h := groestl.Sum512(header[:])
		return h[:], nil
	case Groestl256:
		h := groestl.Sum256(header[:])
		return h[:], nil
	case Luffa:
		h := luffa.Sum512(header[:])
		return h[:], nil
	case Shavite:
		h := shavite.Sum512(header[:])
		return h[:], nil
	case SIMD:
		h := simd.Sum512(header[:])
		return h[:], nil
	case SM3:
		h := sm3.Sum(header[:])
		return h[:], nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownAlgorithm, algo)
}
