// Package profiling writes CPU, heap and execution trace profiles of an
// annotation session for offline analysis with go tool pprof and go tool
// trace.
package profiling

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"sync"
)

// ErrRunning is returned by Start when a session is already being profiled.
var ErrRunning = errors.New("profiler already running")

// ErrNotRunning is returned by Stop without a matching Start.
var ErrNotRunning = errors.New("profiler not running")

// Config selects the profiles to write. An empty path disables that profile.
type Config struct {
	// CPUProfilePath receives the CPU profile covering Start to Stop.
	CPUProfilePath string
	// MemProfilePath receives a heap profile taken at Stop.
	MemProfilePath string
	// TracePath receives the execution trace covering Start to Stop.
	TracePath string
}

// Enabled reports whether any profile is requested.
func (c Config) Enabled() bool {
	return c.CPUProfilePath != "" || c.MemProfilePath != "" || c.TracePath != ""
}

// Profiler records the profiles of one Config.
type Profiler struct {
	config Config

	mu      sync.Mutex
	running bool
	cpu     *os.File
	trace   *os.File
}

// New creates a stopped profiler.
func New(config Config) *Profiler {
	return &Profiler{config: config}
}

// Start begins the CPU profile and the execution trace. If either cannot be
// started, nothing is left running.
func (p *Profiler) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrRunning
	}

	if path := p.config.CPUProfilePath; path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("start CPU profile: %w", err)
		}
		p.cpu = f
	}

	if path := p.config.TracePath; path != "" {
		f, err := os.Create(path)
		if err == nil {
			err = trace.Start(f)
			if err != nil {
				f.Close()
			}
		}
		if err != nil {
			p.stopCPU()
			return fmt.Errorf("start trace: %w", err)
		}
		p.trace = f
	}

	p.running = true
	return nil
}

// Stop ends the CPU profile and trace and writes the heap profile. Every
// profile is finished even when an earlier one fails; the errors are
// joined.
func (p *Profiler) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return ErrNotRunning
	}
	p.running = false

	var errs []error
	if p.trace != nil {
		trace.Stop()
		if err := p.trace.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close trace: %w", err))
		}
		p.trace = nil
	}
	if err := p.stopCPU(); err != nil {
		errs = append(errs, err)
	}
	if path := p.config.MemProfilePath; path != "" {
		if err := WriteHeapProfile(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Profiler) stopCPU() error {
	if p.cpu == nil {
		return nil
	}
	pprof.StopCPUProfile()
	err := p.cpu.Close()
	p.cpu = nil
	if err != nil {
		return fmt.Errorf("close CPU profile: %w", err)
	}
	return nil
}

// IsRunning reports whether Start has been called without Stop.
func (p *Profiler) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// WriteHeapProfile writes a heap profile to path after a garbage
// collection.
func WriteHeapProfile(path string) error {
	runtime.GC()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create heap profile: %w", err)
	}
	defer f.Close()

	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("write heap profile: %w", err)
	}
	return nil
}
