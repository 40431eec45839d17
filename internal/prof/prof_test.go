package prof

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStartNothingRequested(t *testing.T) {
	p, err := Start(Options{})
	if err != nil || p != nil {
		t.Fatalf("expected no profiler, got %v %v", p, err)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("stop on nil: %v", err)
	}
}

func TestProfilesWritten(t *testing.T) {
	dir := t.TempDir()
	opts := Options{CPU: filepath.Join(dir, "cpu.pprof"), Mem: filepath.Join(dir, "mem.pprof")}
	p, err := Start(opts)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	for _, path := range []string{opts.CPU, opts.Mem} {
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Fatalf("%s not written: %v", path, err)
		}
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}

func TestStartBadPath(t *testing.T) {
	if _, err := Start(Options{CPU: filepath.Join(t.TempDir(), "missing", "cpu.pprof")}); err == nil {
		t.Fatalf("expected an error")
	}
}
