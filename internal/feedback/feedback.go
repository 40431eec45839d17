// Package feedback holds the side channel every engine operation returns next
// to its primary result: per-file diagnostics and free-standing user messages.
package feedback

import (
	"sort"

	"ember/internal/diag"
)

// Feedback is returned alongside every engine result.
//
// A path present in Diagnostics is the complete diagnostic set for that file
// in this publish cycle; an empty slice means "this file is now clean".
// Paths that are absent say nothing about the file.
type Feedback struct {
	Diagnostics map[string][]diag.Diagnostic
	Messages    []diag.Diagnostic
}

// None returns an empty Feedback.
func None() Feedback {
	return Feedback{}
}

// Empty reports whether f carries nothing to publish.
func (f Feedback) Empty() bool {
	return len(f.Diagnostics) == 0 && len(f.Messages) == 0
}

// SetDiagnostics records the complete diagnostic set for path, replacing any
// set recorded earlier. A nil list is stored as an empty one.
func (f *Feedback) SetDiagnostics(path string, list []diag.Diagnostic) {
	if f.Diagnostics == nil {
		f.Diagnostics = make(map[string][]diag.Diagnostic)
	}
	if list == nil {
		list = []diag.Diagnostic{}
	}
	f.Diagnostics[path] = list
}

// Clear records that path has no diagnostics.
func (f *Feedback) Clear(path string) {
	f.SetDiagnostics(path, nil)
}

// AppendDiagnostic adds d to the set of its file when it has a location and
// to Messages otherwise.
func (f *Feedback) AppendDiagnostic(d diag.Diagnostic) {
	if d.Location == nil || d.Location.Path == "" {
		f.Messages = append(f.Messages, d)
		return
	}
	if f.Diagnostics == nil {
		f.Diagnostics = make(map[string][]diag.Diagnostic)
	}
	path := d.Location.Path
	f.Diagnostics[path] = append(f.Diagnostics[path], d)
}

// AppendMessage adds an unlocated user message.
func (f *Feedback) AppendMessage(level diag.Level, title, text string) {
	f.Messages = append(f.Messages, diag.Diagnostic{Level: level, Title: title, Text: text})
}

// Merge folds other into f. A path in other replaces the set for the same
// path in f; messages are appended in order.
func (f *Feedback) Merge(other Feedback) {
	for path, list := range other.Diagnostics {
		f.SetDiagnostics(path, list)
	}
	f.Messages = append(f.Messages, other.Messages...)
}

// Paths returns the diagnostic keys in sorted order.
func (f Feedback) Paths() []string {
	paths := make([]string, 0, len(f.Diagnostics))
	for path := range f.Diagnostics {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
