// Copyright (c) 2023 The Decred developers.

package main

import (
	"context"
	"encoding/binary"
	"io"
	"math/big"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/decred/cpuminer/scanhash"
	"github.com/decred/cpuminer/work"
)

func testMiner(t *testing.T, algo scanhash.Algorithm, threads, width int, target *big.Int) *Miner {
	t.Helper()
	cfg = &config{Benchmark: true}
	m := &Miner{algo: algo, shares: make(chan foundShare, 10), started: time.Now()}
	m.job.Store(work.NewJob(1, randomHeader(), target))
	for i := 0; i < threads; i++ {
		w, err := newWorker(i, algo, width)
		require.NoError(t, err)
		w.batches = 4
		w.started = m.started
		m.workers = append(m.workers, w)
	}
	return m
}

func TestNonceRange(t *testing.T) {
	for _, count := range []int{1, 3, 8} {
		next := uint64(0)
		for i := 0; i < count; i++ {
			start, end := nonceRange(i, count)
			require.Equal(t, next, uint64(start), "count %d worker %d", count, i)
			require.LessOrEqual(t, start, end)
			next = uint64(end) + 1
		}
		require.Equal(t, uint64(1)<<32, next, "count %d", count)
	}
}

func TestRollJob(t *testing.T) {
	m := testMiner(t, scanhash.Blake256, 1, 1, new(big.Int))
	old := m.currentJob()
	old.Header.SetNonce(1234)
	binary.BigEndian.PutUint32(old.Header[extraNonceOffset:], 0x01000005)

	m.rollJob(old)
	job := m.currentJob()
	require.Equal(t, old.ID+1, job.ID)
	require.Equal(t, uint32(0), job.Header.Nonce())
	require.Equal(t, uint32(0x01000006), binary.BigEndian.Uint32(job.Header[extraNonceOffset:]))
	require.Equal(t, old.Header[:extraNonceOffset], job.Header[:extraNonceOffset])

	// A worker still holding the old job must not roll again.
	m.rollJob(old)
	require.Equal(t, job, m.currentJob())
}

func TestMinerFindsShares(t *testing.T) {
	target := new(big.Int).Lsh(big.NewInt(1), 250)
	m := testMiner(t, scanhash.Blake256, 2, 4, target)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.NoError(t, m.Run(ctx))

	valid, invalid, total, hashes := m.Status()
	require.NotZero(t, hashes)
	require.Zero(t, invalid)
	require.Equal(t, valid, total)
	require.NotZero(t, m.workers[0].hashes.Load())
	require.NotZero(t, m.workers[1].hashes.Load())
}

func TestProcessShareRejectsLaneError(t *testing.T) {
	m := testMiner(t, scanhash.SM3, 1, 1, new(big.Int).Lsh(big.NewInt(1), 255))
	job := m.currentJob()
	m.processShare(foundShare{job: job, share: scanhash.Share{
		JobID:  job.ID,
		Nonce:  1,
		Digest: make([]byte, 32),
	}})
	valid, invalid, _, _ := m.Status()
	require.Zero(t, valid)
	require.Equal(t, uint64(1), invalid)
}

func TestCalibrate(t *testing.T) {
	m := testMiner(t, scanhash.Luffa, 1, 2, new(big.Int))
	batches, err := m.workers[0].calcBatchesForMilliseconds(work.Header{}, 5)
	require.NoError(t, err)
	require.GreaterOrEqual(t, batches, 1)
	require.LessOrEqual(t, batches, maxBatches)
}

func TestMonitor(t *testing.T) {
	m := testMiner(t, scanhash.Groestl, 3, 2, new(big.Int))
	m.workers[1].hashes.Add(500)
	hashesTotal.WithLabelValues("groestl").Add(500)
	mux := newMonitorMux(m)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/status", nil))
	require.Equal(t, 200, rec.Code)

	var status MinerStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, "groestl", status.Algorithm)
	require.Equal(t, uint64(500), status.Hashes)
	require.Equal(t, uint64(1), status.JobID)
	require.Len(t, status.Workers, 3)
	require.Equal(t, 2, status.Workers[1].Lanes)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), `cpuminer_scan_hashes_total{algorithm="groestl"}`))
}
