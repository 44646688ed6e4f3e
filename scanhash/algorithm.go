// Copyright (c) 2023 The Decred developers.

package scanhash

import (
	"fmt"
	"strings"
)

// Algorithm identifies the hash function a nonce search runs.
type Algorithm int

const (
	Blake256 Algorithm = iota
	Blakecoin
	Blake512
	Groestl
	Groestl256
	Luffa
	Shavite
	SIMD
	SM3

	numAlgorithms
)

var algorithmNames = [numAlgorithms]string{
	Blake256:   "blake256",
	Blakecoin:  "blakecoin",
	Blake512:   "blake512",
	Groestl:    "groestl",
	Groestl256: "groestl256",
	Luffa:      "luffa",
	Shavite:    "shavite",
	SIMD:       "simd",
	SM3:        "sm3",
}

var digestSizes = [numAlgorithms]int{
	Blake256:   32,
	Blakecoin:  32,
	Blake512:   64,
	Groestl:    64,
	Groestl256: 32,
	Luffa:      64,
	Shavite:    64,
	SIMD:       64,
	SM3:        32,
}

// Algorithms returns every supported algorithm.
func Algorithms() []Algorithm {
	algos := make([]Algorithm, numAlgorithms)
	for i := range algos {
		algos[i] = Algorithm(i)
	}
	return algos
}

func (a Algorithm) valid() bool {
	return a >= 0 && a < numAlgorithms
}

// String returns the algorithm name used on the command line.
func (a Algorithm) String() string {
	if !a.valid() {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
	return algorithmNames[a]
}

// DigestSize returns the digest size of the algorithm in bytes.
func (a Algorithm) DigestSize() int {
	if !a.valid() {
		return 0
	}
	return digestSizes[a]
}

// ParseAlgorithm returns the algorithm with the given name.
func ParseAlgorithm(name string) (Algorithm, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range algorithmNames {
		if n == name {
			return Algorithm(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// MarshalFlag implements flags.Marshaler.
func (a Algorithm) MarshalFlag() (string, error) {
	return a.String(), nil
}

// UnmarshalFlag implements flags.Unmarshaler.
func (a *Algorithm) UnmarshalFlag(value string) error {
	algo, err := ParseAlgorithm(value)
	if err != nil {
		return err
	}
	*a = algo
	return nil
}
