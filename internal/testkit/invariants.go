// Package testkit holds assertions shared by analysis tests.
package testkit

import (
	"fmt"

	"ember/internal/diag"
)

// CheckDiagnosticSpans runs the span invariants every engine result must
// hold for the file at path:
// 1) each diagnostic has a location on path
// 2) each span lies within its source text
// 3) diagnostics are ordered by span start
func CheckDiagnosticSpans(path string, list []diag.Diagnostic) error {
	var prev uint32
	for i, d := range list {
		loc := d.Location
		if loc == nil {
			return fmt.Errorf("diagnostic %d (%q) has no location", i, d.Title)
		}
		if loc.Path != path {
			return fmt.Errorf("diagnostic %d (%q) points to %s, want %s", i, d.Title, loc.Path, path)
		}
		if loc.Span.Start > loc.Span.End {
			return fmt.Errorf("diagnostic %d (%q) has inverted span %+v", i, d.Title, loc.Span)
		}
		if int(loc.Span.End) > len(loc.Src) {
			return fmt.Errorf("diagnostic %d (%q) span %+v exceeds source length %d", i, d.Title, loc.Span, len(loc.Src))
		}
		if loc.Span.Start < prev {
			return fmt.Errorf("diagnostic %d (%q) starts at %d, before the previous one at %d", i, d.Title, loc.Span.Start, prev)
		}
		prev = loc.Span.Start
	}
	return nil
}
