// Copyright (c) 2023 The Decred developers.

package scanhash

import (
	"bytes"
	"context"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/slog"

	"github.com/decred/cpuminer/work"
)

// Share is a nonce whose digest met the job target.
type Share struct {
	JobID  uint64
	Nonce  uint32
	Digest []byte
}

// Scanner drives a Hasher over nonce ranges.  Like the hasher it wraps, a
// scanner belongs to one worker.
type Scanner struct {
	algo   Algorithm
	hasher Hasher
	out    [][]byte
	job    uint64
	ready  bool
}

// NewScanner returns a scanner for algo hashing width nonces per batch.
func NewScanner(algo Algorithm, width int) (*Scanner, error) {
	h, err := New(algo, width)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, h.Lanes())
	for i := range out {
		out[i] = make([]byte, algo.DigestSize())
	}
	return &Scanner{algo: algo, hasher: h, out: out}, nil
}

// Algorithm returns the algorithm the scanner runs.
func (s *Scanner) Algorithm() Algorithm { return s.algo }

// Lanes returns the number of nonces hashed per batch.
func (s *Scanner) Lanes() int { return s.hasher.Lanes() }

// Scan hashes the header of job for every nonce in [start, end] and returns
// the shares found and the number of hashes computed.  The context is
// checked every batches batches; on cancellation the shares found so far
// are returned along with the context error.
func (s *Scanner) Scan(ctx context.Context, job *work.Job, start, end uint32, batches int) ([]Share, uint64, error) {
	if !s.ready || s.job != job.ID {
		s.hasher.Prepare(job)
		s.job, s.ready = job.ID, true
		log.Debugf("Prepared %v midstate for job %d", s.algo, job.ID)
		if log.Level() <= slog.LevelTrace {
			log.Tracef("Job %d: %v", job.ID, spew.Sdump(job))
		}
	}
	if batches < 1 {
		batches = 1
	}

	var shares []Share
	var hashes uint64
	k := uint64(s.hasher.Lanes())
	last := uint64(end)
	for n, batch := uint64(start), 0; n <= last; n, batch = n+k, batch+1 {
		if batch%batches == 0 && batch > 0 {
			if err := ctx.Err(); err != nil {
				return shares, hashes, err
			}
		}
		if err := s.hasher.HashBatch(job.ID, uint32(n), s.out); err != nil {
			return shares, hashes, err
		}
		for l, digest := range s.out {
			nonce := n + uint64(l)
			if nonce > last {
				break
			}
			hashes++
			if !job.Meets(digest) {
				continue
			}
			share := Share{
				JobID:  job.ID,
				Nonce:  uint32(nonce),
				Digest: bytes.Clone(digest),
			}
			log.Debugf("Job %d: nonce %08x meets target", job.ID, share.Nonce)
			shares = append(shares, share)
		}
	}
	return shares, hashes, nil
}

// Check recomputes the digest of a share with Verify and confirms it
// matches the digest found by the search and still meets the target.
func Check(algo Algorithm, job *work.Job, share Share) error {
	header := job.Header.WithNonce(share.Nonce)
	digest, err := Verify(algo, &header)
	if err != nil {
		return err
	}
	if !bytes.Equal(digest, share.Digest) {
		return fmt.Errorf("nonce %08x: lane digest %x does not match %x",
			share.Nonce, share.Digest, digest)
	}
	if !job.Meets(digest) {
		return fmt.Errorf("nonce %08x: digest %x above target", share.Nonce, digest)
	}
	return nil
}
