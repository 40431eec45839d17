package analysis

import (
	"ember/internal/diag"
	"ember/internal/feedback"
)

// bookkeeper remembers which files the client is currently showing
// diagnostics for, so that a file that becomes clean gets an explicit empty
// entry instead of being left stale.
type bookkeeper struct {
	dirty map[string]struct{}
	// primed is false until the first full analysis. That analysis clears
	// every clean file, since a new engine cannot know what an earlier one
	// published.
	primed bool
}

func newBookkeeper() *bookkeeper {
	return &bookkeeper{dirty: make(map[string]struct{})}
}

// record adds path's current diagnostics to fb.
func (b *bookkeeper) record(fb *feedback.Feedback, path string, list []diag.Diagnostic) {
	if len(list) > 0 {
		fb.SetDiagnostics(path, list)
		b.dirty[path] = struct{}{}
		return
	}
	if _, ok := b.dirty[path]; ok || !b.primed {
		fb.Clear(path)
		delete(b.dirty, path)
	}
}

// forget clears path if it had diagnostics; used when a file disappears.
func (b *bookkeeper) forget(fb *feedback.Feedback, path string) {
	if _, ok := b.dirty[path]; ok {
		fb.Clear(path)
		delete(b.dirty, path)
	}
}

// sweep clears every dirty file not in seen.
func (b *bookkeeper) sweep(fb *feedback.Feedback, seen map[string]struct{}) {
	for path := range b.dirty {
		if _, ok := seen[path]; !ok {
			fb.Clear(path)
			delete(b.dirty, path)
		}
	}
}
