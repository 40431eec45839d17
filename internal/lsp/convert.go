package lsp

import (
	"go.lsp.dev/protocol"

	"ember/internal/diag"
	"ember/internal/feedback"
	"ember/internal/source"
)

const diagnosticSource = "ember"

// convertResponse folds an engine result into a response payload and the
// feedback to publish. An engine error yields a null payload and a
// diagnostic describing the error.
func convertResponse(result any, fb feedback.Feedback, err error) (any, feedback.Feedback) {
	if err != nil {
		fb.AppendDiagnostic(diag.FromError(err))
		return nil, fb
	}
	return result, fb
}

// indexer reuses the line index of the last translated source text, since
// every diagnostic of a file usually shares one.
type indexer struct {
	src  string
	file *source.File
}

func (ix *indexer) index(loc *diag.Location) *source.File {
	if ix.file == nil || ix.src != loc.Src || ix.file.Path != loc.Path {
		ix.src = loc.Src
		ix.file = source.Index(loc.Path, loc.Src)
	}
	return ix.file
}

// diagnosticToProtocol returns the editor form of d: nothing when d cannot be
// placed in a file, otherwise the diagnostic itself followed by its hint as a
// separate hint-severity entry.
func diagnosticToProtocol(d diag.Diagnostic, ix *indexer) []protocol.Diagnostic {
	loc := d.Location
	if loc == nil || !spanFits(loc.Span, loc.Src) {
		return nil
	}
	severity, ok := protocolSeverity(d.Level)
	if !ok {
		return nil
	}
	rng := RangeForSpan(ix.index(loc), loc.Span)
	out := []protocol.Diagnostic{{
		Range:    rng,
		Severity: severity,
		Source:   diagnosticSource,
		Message:  d.Message(),
	}}
	if d.Hint != "" {
		out = append(out, protocol.Diagnostic{
			Range:    rng,
			Severity: protocol.DiagnosticSeverityHint,
			Source:   diagnosticSource,
			Message:  d.Hint,
		})
	}
	return out
}

func protocolSeverity(level diag.Level) (protocol.DiagnosticSeverity, bool) {
	switch level {
	case diag.LevelError:
		return protocol.DiagnosticSeverityError, true
	case diag.LevelWarning:
		return protocol.DiagnosticSeverityWarning, true
	}
	return 0, false
}

func messageType(level diag.Level) (protocol.MessageType, bool) {
	switch level {
	case diag.LevelError:
		return protocol.MessageTypeError, true
	case diag.LevelWarning:
		return protocol.MessageTypeWarning, true
	}
	return 0, false
}
