// Copyright (c) 2016-2023 The Decred developers.

package util

import (
	"fmt"
	"math"
	"math/big"
)

// maxTarget is the largest value a 256-bit digest can take.
var maxTarget = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// RevHash reverses a hash in string format.
func RevHash(hash string) string {
	rev := []rune(hash)
	for i := 0; i <= len(rev)/2-2; i += 2 {
		opp := len(rev) - 2 - i
		rev[i], rev[opp] = rev[opp], rev[i]
		rev[i+1], rev[opp+1] = rev[opp+1], rev[i+1]
	}

	return string(rev)
}

// DiffToTarget converts a difficulty into a target.  Fractional
// difficulties below one give targets above the proof of work limit, which
// CPU mining of low difficulty shares relies on.  Targets are capped at the
// largest 256-bit value.
func DiffToTarget(diff float64, powLimit *big.Int) (*big.Int, error) {
	if diff <= 0 || math.IsNaN(diff) || math.IsInf(diff, 0) {
		return nil, fmt.Errorf("invalid difficulty %v (must be positive "+
			"and finite)", diff)
	}

	t := new(big.Float).SetInt(powLimit)
	t.Quo(t, big.NewFloat(diff))
	target, _ := t.Int(nil)
	if target.Cmp(maxTarget) > 0 {
		target.Set(maxTarget)
	}

	return target, nil
}

// RolloverExtraNonce rolls over the extraNonce if it goes over 0x00FFFFFF many
// hashes, since the first byte is reserved for the ID.
func RolloverExtraNonce(v *uint32) {
	if *v&0x00FFFFFF == 0x00FFFFFF {
		*v = *v & 0xFF000000
	} else {
		*v++
	}
}

// FormatHashRate sets the units properly when displaying a hashrate.
func FormatHashRate(h float64) string {
	const unit = 1000
	if h < unit {
		return fmt.Sprintf("%.0f h/s", h)
	}
	div, exp := float64(unit), 0
	for n := h / unit; n >= unit && exp < 6; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %ch/s", h/div, "kMGTPEZ"[exp])
}
