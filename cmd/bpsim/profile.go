package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/tebeka/atexit"
)

// profiler writes CPU and heap profiles around a command.
type profiler struct {
	cpuPath string
	memPath string
	cpuFile *os.File
}

func (p *profiler) start() error {
	if p.cpuPath == "" {
		return nil
	}

	f, err := os.Create(p.cpuPath)
	if err != nil {
		return fmt.Errorf("failed to create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to start CPU profile: %w", err)
	}
	p.cpuFile = f

	atexit.Register(p.stopCPU)

	return nil
}

func (p *profiler) stopCPU() {
	if p.cpuFile == nil {
		return
	}
	pprof.StopCPUProfile()
	_ = p.cpuFile.Close()
	p.cpuFile = nil
}

func (p *profiler) stop() error {
	p.stopCPU()

	if p.memPath == "" {
		return nil
	}

	f, err := os.Create(p.memPath)
	if err != nil {
		return fmt.Errorf("failed to create memory profile: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}

	return nil
}
