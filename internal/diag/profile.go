// internal/diag/profile.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package diag holds the CLI-facing profiling/diagnostics helpers that
// don't belong in the resolution pipeline itself: CPU/heap pprof capture
// and a CPU-utilization watchdog, both lifted from the teacher's own
// cmd/vice flags.
package diag

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/skyplan/fplcore/internal/logging"
)

// Profiler owns the open CPU/heap profile files started by CreateProfiler.
type Profiler struct {
	cpu, mem *os.File
}

// CreateProfiler starts a CPU profile (if cpuPath is non-empty) and opens
// a heap profile destination (if memPath is non-empty), installing a
// SIGINT handler that flushes both before the process exits so a
// ctrl-c'd run still leaves a usable profile on disk.
func CreateProfiler(cpuPath, memPath string) (Profiler, error) {
	p := Profiler{}

	absPath := func(path string) string {
		if path != "" && !filepath.IsAbs(path) {
			if cwd, err := os.Getwd(); err == nil {
				return filepath.Join(cwd, path)
			}
		}
		return path
	}
	cpuPath, memPath = absPath(cpuPath), absPath(memPath)

	var err error
	if cpuPath != "" {
		if p.cpu, err = os.Create(cpuPath); err != nil {
			return Profiler{}, fmt.Errorf("%s: creating CPU profile: %w", cpuPath, err)
		} else if err = pprof.StartCPUProfile(p.cpu); err != nil {
			p.cpu.Close()
			return Profiler{}, fmt.Errorf("starting CPU profile: %w", err)
		}
	}
	if memPath != "" {
		if p.mem, err = os.Create(memPath); err != nil {
			return Profiler{}, fmt.Errorf("%s: creating memory profile: %w", memPath, err)
		}
	}

	if p.cpu != nil || p.mem != nil {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		go func() {
			<-sig
			p.Cleanup()
			os.Exit(0)
		}()
	}

	return p, nil
}

// Cleanup flushes and closes whichever profiles are open.
func (p *Profiler) Cleanup() {
	if p.cpu != nil {
		pprof.StopCPUProfile()
		p.cpu.Close()
		p.cpu = nil
	}
	if p.mem != nil {
		if err := pprof.WriteHeapProfile(p.mem); err != nil {
			fmt.Fprintf(os.Stderr, "unable to write memory profile: %v\n", err)
		}
		p.mem.Close()
		p.mem = nil
	}
}

// MonitorCPUUsage launches a goroutine that logs a warning if system-wide
// CPU utilization stays above limit percent for 10 consecutive one-second
// samples, the way the teacher's simulator watches for a wedged server
// loop. Here it's a diagnostic for someone feeding a pathologically large
// nav database or route through the CLI.
func MonitorCPUUsage(limit int, lg *logging.Logger) {
	const nhist = 10
	var history []float64
	go func() {
		t := time.Tick(1 * time.Second)
		for range t {
			usage, err := cpu.Percent(0, false)
			if err != nil || len(usage) == 0 {
				continue
			}
			history = append(history, usage[0])
			if len(history) > nhist {
				history = history[1:]
			}
			if len(history) == nhist && minFloat64(history) > float64(limit) {
				lg.Warn("sustained high CPU utilization", "limit", limit, "samples", history)
			}
		}
	}()
}

func minFloat64(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
