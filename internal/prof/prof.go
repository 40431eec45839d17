// Package prof wraps runtime/pprof for the --cpuprofile and --memprofile
// command flags.
package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

// Options names the output files. Empty paths disable that profile.
type Options struct {
	CPU string
	Mem string
}

// Profiler is an active profiling session.
type Profiler struct {
	cpu *os.File
	mem string
}

// Start begins CPU profiling if requested. A nil Profiler is returned when
// nothing was requested; Stop on it is a no-op.
func Start(opts Options) (*Profiler, error) {
	if opts.CPU == "" && opts.Mem == "" {
		return nil, nil
	}
	p := &Profiler{mem: opts.Mem}
	if opts.CPU != "" {
		f, err := os.Create(opts.CPU)
		if err != nil {
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		p.cpu = f
	}
	return p, nil
}

// Stop ends CPU profiling and writes the heap profile.
func (p *Profiler) Stop() error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.cpu != nil {
		pprof.StopCPUProfile()
		errs = append(errs, p.cpu.Close())
		p.cpu = nil
	}
	if p.mem != "" {
		errs = append(errs, writeMem(p.mem))
		p.mem = ""
	}
	return errors.Join(errs...)
}

func writeMem(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}
