// Copyright (c) 2016-2023 The Decred developers.

package main

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/decred/cpuminer/util"
)

var (
	hashesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cpuminer",
			Subsystem: "scan",
			Name:      "hashes_total",
			Help:      "Number of nonces hashed",
		},
		[]string{"algorithm"})
	sharesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cpuminer",
			Subsystem: "scan",
			Name:      "shares_total",
			Help:      "Number of shares found, by whether the single lane digest confirmed them",
		},
		[]string{"algorithm", "result"})
	workerHashRate = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "cpuminer",
			Subsystem: "worker",
			Name:      "hash_rate",
			Help:      "Average hashes per second of a worker",
		},
		[]string{"worker"})
)

func init() {
	prometheus.MustRegister(hashesTotal, sharesTotal, workerHashRate)
}

type MinerStatus struct {
	Algorithm     string  `json:"algorithm"`
	ValidShares   uint64  `json:"validShares"`
	InvalidShares uint64  `json:"invalidShares"`
	TotalShares   uint64  `json:"totalShares"`
	Hashes        uint64  `json:"hashes"`
	HashRate      float64 `json:"hashRate"`
	JobID         uint64  `json:"jobID"`
	Started       int64   `json:"started"`
	Uptime        int64   `json:"uptime"`

	Workers []*WorkerStatus `json:"workers"`
}

type WorkerStatus struct {
	Index   int `json:"index"`
	Lanes   int `json:"lanes"`
	Batches int `json:"batches"`

	Hashes            uint64  `json:"hashes"`
	Shares            uint64  `json:"shares"`
	HashRate          float64 `json:"hashRate"`
	HashRateFormatted string  `json:"hashRateFormatted"`
}

// newMonitorMux returns the handler serving /status and /metrics for m.
func newMonitorMux(m *Miner) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, req *http.Request) {
		getMinerStatus(m, w, req)
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// RunMonitor serves the status API on every configured listener.
func RunMonitor(m *Miner) {
	mux := newMonitorMux(m)
	for _, addr := range cfg.APIListeners {
		addr := addr
		go func() {
			mainLog.Infof("Monitor listening on %s", addr)
			err := http.ListenAndServe(addr, mux)
			if err != nil {
				mainLog.Warnf("Unable to create monitor: %v", err)
			}
		}()
	}
}

func minerStatus(m *Miner) *MinerStatus {
	valid, invalid, total, hashes := m.Status()
	ms := &MinerStatus{
		Algorithm:     m.algo.String(),
		ValidShares:   valid,
		InvalidShares: invalid,
		TotalShares:   total,
		Hashes:        hashes,
		HashRate:      m.HashRate(),
		JobID:         m.currentJob().ID,
		Started:       m.started.Unix(),
		Uptime:        int64(time.Since(m.started).Seconds()),
	}

	for _, w := range m.workers {
		rate := w.HashRate()
		ms.Workers = append(ms.Workers, &WorkerStatus{
			Index:             w.index,
			Lanes:             w.scanner.Lanes(),
			Batches:           w.batches,
			Hashes:            w.hashes.Load(),
			Shares:            w.shares.Load(),
			HashRate:          rate,
			HashRateFormatted: util.FormatHashRate(rate),
		})
	}
	return ms
}

func getMinerStatus(m *Miner, w http.ResponseWriter, req *http.Request) {
	w.Header().Add("Content-Type", "application/json")
	json.NewEncoder(w).Encode(minerStatus(m))
}
