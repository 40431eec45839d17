// Package analysis is the reference project-analysis engine behind the ember
// language server: a line-oriented checker, formatter and symbol index for
// .em sources.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"fortio.org/safecast"
	"go.uber.org/zap"

	"ember/internal/diag"
	"ember/internal/feedback"
	"ember/internal/project"
	"ember/internal/source"
)

const maxUint32 = ^uint32(0)

// Options configures a new Engine.
type Options struct {
	// Root is where manifest discovery starts.
	Root string
	// CacheDir overrides the disk cache location. Ignored with NoCache.
	CacheDir string
	NoCache  bool
	// Jobs bounds parallel file checks during full analysis; <= 0 means GOMAXPROCS.
	Jobs   int
	Logger *zap.Logger
	// Progress, if set, receives per-file events during full analysis.
	Progress ProgressSink
}

// fileState is the last analysis of one file.
type fileState struct {
	file  *source.File
	decls []Decl
	diags []diag.Diagnostic
}

// Engine holds one loaded project. It is not safe for concurrent use; the
// language server drives it from a single goroutine.
type Engine struct {
	manifest *project.Manifest
	cache    *DiskCache
	logger   *zap.Logger
	jobs     int
	progress ProgressSink

	docs  map[string]string // open editor buffers by absolute path
	files map[string]*fileState
	book  *bookkeeper
}

// New loads the project configuration above opts.Root and returns a fresh
// engine with no analysis state.
func New(opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	manifest, err := project.LoadOrDefault(opts.Root)
	if err != nil {
		return nil, err
	}
	var cache *DiskCache
	if !opts.NoCache {
		cache, err = OpenDiskCache(opts.CacheDir, "ember")
		if err != nil {
			logger.Warn("analysis cache unavailable", zap.Error(err))
			cache = nil
		}
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	logger.Info("engine created",
		zap.String("root", manifest.Root),
		zap.String("manifest", manifest.Path),
		zap.Bool("cache", cache != nil))
	return &Engine{
		manifest: manifest,
		cache:    cache,
		logger:   logger,
		jobs:     jobs,
		progress: opts.Progress,
		docs:     make(map[string]string),
		files:    make(map[string]*fileState),
		book:     newBookkeeper(),
	}, nil
}

// Manifest returns the configuration the engine was built with.
func (e *Engine) Manifest() *project.Manifest {
	return e.manifest
}

// FileCount returns how many files the last analysis knows about.
func (e *Engine) FileCount() int {
	return len(e.files)
}

// RunFullAnalysis checks every source file of the project, overlaying open
// buffers, and replaces all per-file state.
func (e *Engine) RunFullAnalysis(ctx context.Context) feedback.Feedback {
	var fb feedback.Feedback

	paths, err := e.sourceFiles()
	if err != nil {
		fb.AppendMessage(diag.LevelError, "Could not list project files", err.Error())
		return fb
	}
	for _, path := range paths {
		e.emit(Event{File: path, Status: StatusQueued})
	}
	start := time.Now()
	results, err := e.analyzeParallel(ctx, paths)
	if err != nil {
		e.emit(Event{Status: StatusError, Err: err, Elapsed: time.Since(start)})
		fb.AppendMessage(diag.LevelError, "Analysis interrupted", err.Error())
		return fb
	}
	e.emit(Event{Status: StatusDone, Elapsed: time.Since(start)})

	files := make(map[string]*fileState, len(results))
	seen := make(map[string]struct{}, len(results))
	for _, res := range results {
		if res.err != nil {
			fb.AppendMessage(diag.LevelWarning, "Could not read "+res.path, res.err.Error())
			continue
		}
		files[res.path] = res.state
		seen[res.path] = struct{}{}
		e.book.record(&fb, res.path, res.state.diags)
	}
	e.book.sweep(&fb, seen)
	e.book.primed = true
	e.files = files

	e.logger.Debug("full analysis done",
		zap.Int("files", len(files)),
		zap.Int("dirty", len(e.book.dirty)))
	return fb
}

// openBuffer records an editor buffer and re-checks its file.
func (e *Engine) openBuffer(path, text string) feedback.Feedback {
	if !e.isSource(path) {
		return feedback.None()
	}
	e.docs[path] = text
	return e.reanalyze(path)
}

// changeBuffer replaces an editor buffer and re-checks its file.
func (e *Engine) changeBuffer(path, text string) feedback.Feedback {
	if !e.isSource(path) {
		return feedback.None()
	}
	e.docs[path] = text
	return e.reanalyze(path)
}

// saveBuffer refreshes the buffer when the client sent its text and
// re-checks the whole project, since other files may depend on the saved one.
func (e *Engine) saveBuffer(ctx context.Context, path string, text *string) feedback.Feedback {
	if !e.isSource(path) {
		return feedback.None()
	}
	if text != nil {
		e.docs[path] = *text
	}
	return e.RunFullAnalysis(ctx)
}

// closeBuffer drops the buffer and falls back to the file on disk.
func (e *Engine) closeBuffer(path string) feedback.Feedback {
	if _, ok := e.docs[path]; !ok {
		return feedback.None()
	}
	delete(e.docs, path)
	return e.reanalyze(path)
}

func (e *Engine) reanalyze(path string) feedback.Feedback {
	var fb feedback.Feedback
	state, err := e.analyzeFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			delete(e.files, path)
			e.book.forget(&fb, path)
			return fb
		}
		fb.AppendMessage(diag.LevelWarning, "Could not read "+path, err.Error())
		return fb
	}
	e.files[path] = state
	e.book.record(&fb, path, state.diags)
	return fb
}

// load returns the current text of path: the open buffer if any, otherwise
// the file on disk.
func (e *Engine) load(path string) (*source.File, error) {
	if text, ok := e.docs[path]; ok {
		return source.NewFile(path, []byte(text)), nil
	}
	return source.Load(path)
}

func (e *Engine) analyzeFile(path string) (*fileState, error) {
	file, err := e.load(path)
	if err != nil {
		return nil, err
	}
	decls := scanDecls(file)
	lint := e.manifest.Config.Lint

	key := project.Combine(project.Digest(file.Hash), e.manifest.Config.LintFingerprint())
	var payload DiskPayload
	if ok, err := e.cache.Get(key, &payload); err == nil && ok {
		return &fileState{file: file, decls: decls, diags: fromCached(path, file.Content, payload.Diagnostics)}, nil
	} else if err != nil {
		e.logger.Debug("cache read failed", zap.String("path", path), zap.Error(err))
	}

	diags := checkFile(file, decls, lint)
	if err := e.cache.Put(key, &DiskPayload{Path: path, Diagnostics: toCached(diags)}); err != nil {
		e.logger.Debug("cache write failed", zap.String("path", path), zap.Error(err))
	}
	return &fileState{file: file, decls: decls, diags: diags}, nil
}

func (e *Engine) isSource(path string) bool {
	return path != "" && strings.EqualFold(filepath.Ext(path), e.manifest.Config.Project.Extension)
}

// sourceFiles lists project files under the configured source directories,
// plus open buffers under the root that are not on disk yet.
func (e *Engine) sourceFiles() ([]string, error) {
	set := make(map[string]struct{})
	for _, dir := range e.manifest.SourceDirs() {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) && path == dir {
					return nil
				}
				return err
			}
			if d.IsDir() {
				if path != dir && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if e.isSource(path) {
				set[path] = struct{}{}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", dir, err)
		}
	}
	for path := range e.docs {
		if within(e.manifest.Root, path) {
			set[path] = struct{}{}
		}
	}
	paths := make([]string, 0, len(set))
	for path := range set {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

// lookup returns the analyzed state of path, analyzing it on demand.
func (e *Engine) lookup(path string) (*fileState, error) {
	if state, ok := e.files[path]; ok {
		return state, nil
	}
	state, err := e.analyzeFile(path)
	if err != nil {
		return nil, err
	}
	e.files[path] = state
	return state, nil
}

func within(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}
