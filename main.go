// Copyright (c) 2016-2023 The Decred developers.

package main

import (
	"context"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"
	"time"

	"golang.org/x/sys/cpu"
)

var (
	cfg *config
)

// shutdownListener returns a context that is canceled on SIGINT or SIGTERM,
// or once the configured mining duration has elapsed.
func shutdownListener() (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	if cfg.Duration > 0 {
		tctx, tcancel := context.WithTimeout(ctx, cfg.Duration)
		return tctx, func() {
			tcancel()
			cancel()
		}
	}
	return ctx, cancel
}

func cpuminerMain() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	tcfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = tcfg
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	// Show version at startup.
	mainLog.Infof("Version %s (Go version %s %s/%s)", version(),
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
	mainLog.Infof("CPU: AES %v, AVX2 %v, AVX-512 %v, ASIMD %v",
		cpu.X86.HasAES || cpu.ARM64.HasAES, cpu.X86.HasAVX2,
		cpu.X86.HasAVX512F, cpu.ARM64.HasASIMD)

	// Enable http profiling server if requested.
	if cfg.Profile != "" {
		go func() {
			listenAddr := net.JoinHostPort("", cfg.Profile)
			mainLog.Infof("Creating profiling server "+
				"listening on %s", listenAddr)
			profileRedirect := http.RedirectHandler("/debug/pprof",
				http.StatusSeeOther)
			http.Handle("/", profileRedirect)
			err := http.ListenAndServe(listenAddr, nil)
			if err != nil {
				mainLog.Errorf("Unable to create profiler: %v", err)
				os.Exit(1)
			}
		}()
	}

	// Write cpu profile if requested.
	if cfg.CPUProfile != "" {
		f, err := os.Create(cfg.CPUProfile)
		if err != nil {
			mainLog.Errorf("Unable to create cpu profile: %v", err)
			return err
		}
		pprof.StartCPUProfile(f)
		defer f.Close()
		defer pprof.StopCPUProfile()
	}

	// Write mem profile if requested.
	if cfg.MemProfile != "" {
		f, err := os.Create(cfg.MemProfile)
		if err != nil {
			mainLog.Errorf("Unable to create mem profile: %v", err)
			return err
		}
		timer := time.NewTimer(time.Minute * 20) // 20 minutes
		go func() {
			<-timer.C
			pprof.WriteHeapProfile(f)
			f.Close()
		}()
	}

	mainLog.Infof("Mining header %v", cfg.header)
	mainLog.Debugf("Share target %064x", cfg.target)

	m, err := NewMiner(cfg)
	if err != nil {
		mainLog.Criticalf("Error initializing miner: %v", err)
		return err
	}

	if len(cfg.APIListeners) != 0 {
		RunMonitor(m)
	}

	ctx, cancel := shutdownListener()
	defer cancel()

	if err := m.Run(ctx); err != nil {
		mainLog.Errorf("Mining stopped: %v", err)
		return err
	}

	valid, invalid, _, hashes := m.Status()
	mainLog.Infof("Shutdown complete: %d hashes, %d shares, %d lane errors",
		hashes, valid, invalid)
	return nil
}

func main() {
	// Use all processor cores.
	runtime.GOMAXPROCS(runtime.NumCPU())

	// Work around defer not working after os.Exit()
	if err := cpuminerMain(); err != nil {
		os.Exit(1)
	}
}
