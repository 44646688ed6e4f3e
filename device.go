// Copyright (c) 2016-2023 The Decred developers.

package main

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/decred/cpuminer/scanhash"
	"github.com/decred/cpuminer/util"
)

// Worker is one mining thread.  It owns its scanner, and with it every
// context and midstate the scanner holds.
type Worker struct {
	index   int
	scanner *scanhash.Scanner
	batches int
	started time.Time

	// The following variables must only be used atomically.
	hashes atomic.Uint64
	shares atomic.Uint64
}

func newWorker(index int, algo scanhash.Algorithm, width int) (*Worker, error) {
	s, err := scanhash.NewScanner(algo, width)
	if err != nil {
		return nil, err
	}
	return &Worker{index: index, scanner: s, batches: 1}, nil
}

// nonceRange returns the slice of the 32-bit nonce space searched by worker
// index out of count.
func nonceRange(index, count int) (start, end uint32) {
	span := (uint64(1) << 32) / uint64(count)
	first := uint64(index) * span
	last := first + span - 1
	if index == count-1 {
		last = 1<<32 - 1
	}
	return uint32(first), uint32(last)
}

// Run searches the worker's nonce range of the current job, moving on when
// the miner publishes a new job or the range is exhausted, until ctx is
// done.
func (w *Worker) Run(ctx context.Context, m *Miner) error {
	start, end := nonceRange(w.index, len(m.workers))
	chunk := uint64(w.batches * w.scanner.Lanes())
	minrLog.Debugf("Worker #%d: nonces %08x-%08x, %d nonces per check",
		w.index, start, end, chunk)

	for {
		job := m.currentJob()
		exhausted := true
		for n := uint64(start); n <= uint64(end); n += chunk {
			if ctx.Err() != nil {
				return nil
			}
			if m.currentJob() != job {
				exhausted = false
				break
			}

			last := min(n+chunk-1, uint64(end))
			shares, hashes, err := w.scanner.Scan(ctx, job, uint32(n), uint32(last), w.batches)
			w.hashes.Add(hashes)
			hashesTotal.WithLabelValues(w.scanner.Algorithm().String()).Add(float64(hashes))
			for _, share := range shares {
				w.shares.Add(1)
				m.submit(ctx, job, share)
			}
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				return err
			}
		}
		if exhausted {
			m.rollJob(job)
		}
	}
}

// HashRate returns the average hash rate since the worker started.
func (w *Worker) HashRate() float64 {
	elapsed := time.Since(w.started).Seconds()
	if w.started.IsZero() || elapsed <= 0 {
		return 0
	}
	return float64(w.hashes.Load()) / elapsed
}

// PrintStats logs the worker's hash rate and share count.
func (w *Worker) PrintStats() {
	rate := w.HashRate()
	workerHashRate.WithLabelValues(workerLabel(w.index)).Set(rate)
	minrLog.Infof("Worker #%d (%v x%d) reporting average hash rate %v, %v shares",
		w.index,
		w.scanner.Algorithm(),
		w.scanner.Lanes(),
		util.FormatHashRate(rate),
		w.shares.Load())
}
