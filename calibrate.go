// Copyright (c) 2016-2023 The Decred developers.

package main

import (
	"context"
	"math"
	"math/big"
	"time"

	"github.com/decred/cpuminer/work"
)

// maxBatches bounds calibration so a check interval never spans more than
// 2^24 nonces at sixteen lanes.
const maxBatches = 1 << 20

// getBatchExecutionTime returns how long the worker takes to hash the given
// number of batches.
func (w *Worker) getBatchExecutionTime(job *work.Job, batches int) (time.Duration, error) {
	last := uint32(batches*w.scanner.Lanes() - 1)
	currentTime := time.Now()
	_, _, err := w.scanner.Scan(context.Background(), job, 0, last, batches)
	if err != nil {
		return 0, err
	}

	elapsedTime := time.Since(currentTime)
	minrLog.Tracef("Worker #%d: %d batches took %v", w.index, batches,
		elapsedTime)

	return elapsedTime, nil
}

// calcBatchesForMilliseconds calculates the number of batches the worker
// hashes between cancellation checks to take about ms milliseconds.
func (w *Worker) calcBatchesForMilliseconds(header work.Header, ms int) (int, error) {
	// Job zero is never handed out, so the real job always gets a fresh
	// midstate.
	job := work.NewJob(0, header, new(big.Int))

	batches := 1 << 4
	timeToAchieve := time.Duration(ms) * time.Millisecond
	for {
		execTime, err := w.getBatchExecutionTime(job, batches)
		if err != nil {
			return 0, err
		}

		// If we fail to go above the desired execution time, double
		// the batch count and try again.
		if execTime < timeToAchieve && batches < maxBatches {
			batches <<= 1
			continue
		}

		// We're passed the desired execution time, so now calculate
		// what the ideal batch count should be.
		adj := float64(batches) * (float64(timeToAchieve) / float64(execTime))
		batches = int(math.Ceil(adj))
		break
	}

	return min(max(batches, 1), maxBatches), nil
}
