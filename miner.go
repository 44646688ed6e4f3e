// Copyright (c) 2016-2023 The Decred developers.

package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/slog"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/decred/cpuminer/scanhash"
	"github.com/decred/cpuminer/util"
	"github.com/decred/cpuminer/work"
)

// extraNonceOffset is the header word rolled when a job's nonce space is
// exhausted.
const extraNonceOffset = work.NonceOffset - 4

// foundShare is a share along with the job it was found for.
type foundShare struct {
	job   *work.Job
	share scanhash.Share
}

type Miner struct {
	// The following variables must only be used atomically.
	validShares   atomic.Uint64
	invalidShares atomic.Uint64

	algo    scanhash.Algorithm
	started time.Time
	workers []*Worker
	shares  chan foundShare

	jobMtx sync.Mutex
	job    atomic.Pointer[work.Job]
}

// randomHeader returns a header of random bytes with a zero nonce.
func randomHeader() work.Header {
	var h work.Header
	rand.Read(h[:work.NonceOffset])
	return h
}

// NewMiner creates the workers and calibrates how many batches each hashes
// between cancellation checks.
func NewMiner(cfg *config) (*Miner, error) {
	m := &Miner{
		algo:   cfg.Algo,
		shares: make(chan foundShare, 10),
	}
	m.job.Store(work.NewJob(1, cfg.header, cfg.target))

	for i := 0; i < cfg.Threads; i++ {
		w, err := newWorker(i, cfg.Algo, cfg.Lanes)
		if err != nil {
			return nil, err
		}
		m.workers = append(m.workers, w)
	}
	if len(m.workers) == 0 {
		return nil, fmt.Errorf("no workers started")
	}

	batches, err := m.workers[0].calcBatchesForMilliseconds(cfg.header, cfg.BatchMS)
	if err != nil {
		return nil, fmt.Errorf("unable to calibrate batch count: %w", err)
	}
	m.started = time.Now()
	for _, w := range m.workers {
		w.batches = batches
		w.started = m.started
	}
	minrLog.Infof("Started %d %v workers with %d lanes, %s nonces per check",
		len(m.workers), cfg.Algo, cfg.Lanes,
		humanize.Comma(int64(batches*cfg.Lanes)))

	return m, nil
}

func (m *Miner) currentJob() *work.Job {
	return m.job.Load()
}

// rollJob replaces the job once its nonce space is exhausted by rolling the
// extra nonce in the header.  Callers holding a stale job are ignored.
func (m *Miner) rollJob(old *work.Job) {
	m.jobMtx.Lock()
	defer m.jobMtx.Unlock()
	if m.job.Load() != old {
		return
	}

	header := old.Header
	extraNonce := binary.BigEndian.Uint32(header[extraNonceOffset:])
	util.RolloverExtraNonce(&extraNonce)
	binary.BigEndian.PutUint32(header[extraNonceOffset:], extraNonce)
	header.SetNonce(0)

	job := work.NewJob(old.ID+1, header, old.Target)
	m.job.Store(job)
	minrLog.Debugf("Nonce space of job %d exhausted, new job %d extra nonce %08x",
		old.ID, job.ID, extraNonce)
}

// submit hands a share to the submit thread.
func (m *Miner) submit(ctx context.Context, job *work.Job, share scanhash.Share) {
	select {
	case m.shares <- foundShare{job: job, share: share}:
	case <-ctx.Done():
	}
}

func (m *Miner) workSubmitThread(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case found := <-m.shares:
			m.processShare(found)
		}
	}
}

// processShare recomputes a share with the single lane digest, counting
// any mismatch as a lane error.
func (m *Miner) processShare(found foundShare) {
	if minrLog.Level() <= slog.LevelTrace {
		minrLog.Tracef("Share: %v", spew.Sdump(found.share))
	}

	var hash chainhash.Hash
	copy(hash[:], found.share.Digest)

	err := scanhash.Check(m.algo, found.job, found.share)
	if err != nil {
		m.invalidShares.Add(1)
		sharesTotal.WithLabelValues(m.algo.String(), "invalid").Inc()
		minrLog.Errorf("Lane error on job %d: %v", found.job.ID, err)
		return
	}

	m.validShares.Add(1)
	sharesTotal.WithLabelValues(m.algo.String(), "valid").Inc()
	minrLog.Infof("Found share on job %d: nonce %08x hash %v", found.job.ID,
		found.share.Nonce, hash)
}

func (m *Miner) printStatsThread(ctx context.Context) {
	t := time.NewTicker(time.Second * 5)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		valid, invalid, total, hashes := m.Status()
		if !cfg.Benchmark {
			minrLog.Infof("Global stats: Accepted: %v, Rejected: %v, Total: %v",
				valid, invalid, total)
		}
		minrLog.Infof("Global hash rate %v, %s hashes since %s",
			util.FormatHashRate(m.HashRate()), humanize.Comma(int64(hashes)),
			humanize.Time(m.started))

		for _, w := range m.workers {
			w.PrintStats()
		}
	}
}

// Run mines until ctx is done or a worker fails.
func (m *Miner) Run(ctx context.Context) error {
	if cfg.Benchmark {
		minrLog.Warn("Running in BENCHMARK mode! No real mining taking place!")
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, w := range m.workers {
		w := w
		g.Go(func() error {
			return w.Run(ctx, m)
		})
	}
	g.Go(func() error {
		m.workSubmitThread(ctx)
		return nil
	})
	g.Go(func() error {
		m.printStatsThread(ctx)
		return nil
	})

	return g.Wait()
}

// Status returns the accepted, rejected and total share counts and the
// number of hashes computed.
func (m *Miner) Status() (uint64, uint64, uint64, uint64) {
	valid := m.validShares.Load()
	rejected := m.invalidShares.Load()
	var hashes uint64
	for _, w := range m.workers {
		hashes += w.hashes.Load()
	}
	return valid, rejected, valid + rejected, hashes
}

// HashRate returns the combined average hash rate of all workers.
func (m *Miner) HashRate() float64 {
	var rate float64
	for _, w := range m.workers {
		rate += w.HashRate()
	}
	return rate
}

func workerLabel(index int) string {
	return strconv.Itoa(index)
}
