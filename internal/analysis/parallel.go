package analysis

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"ember/internal/diag"
)

type fileResult struct {
	path  string
	state *fileState
	err   error
}

// analyzeParallel checks paths concurrently. Results keep the order of paths;
// read errors are reported per file, only cancellation fails the whole run.
func (e *Engine) analyzeParallel(ctx context.Context, paths []string) ([]fileResult, error) {
	results := make([]fileResult, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(e.jobs, len(paths)))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			e.emit(Event{File: path, Status: StatusChecking})
			start := time.Now()
			state, err := e.analyzeFile(path)
			// each goroutine owns results[i]
			results[i] = fileResult{path: path, state: state, err: err}
			e.emit(Event{File: path, Status: fileStatus(state, err), Err: err, Elapsed: time.Since(start)})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func fileStatus(state *fileState, err error) Status {
	if err != nil {
		return StatusError
	}
	for _, d := range state.diags {
		if d.Level == diag.LevelError {
			return StatusError
		}
	}
	return StatusDone
}
