package diagfmt

import (
	"io"

	"github.com/segmentio/encoding/json"

	"ember/internal/feedback"
)

// LocationJSON is a position in a file for JSON output. Lines and columns
// are 1-based; columns count characters.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line"`
	StartCol  uint32 `json:"start_col"`
	EndLine   uint32 `json:"end_line"`
	EndCol    uint32 `json:"end_col"`
}

// DiagnosticJSON is one diagnostic in JSON output.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Title    string       `json:"title"`
	Message  string       `json:"message,omitempty"`
	Hint     string       `json:"hint,omitempty"`
	Location LocationJSON `json:"location"`
}

// MessageJSON is a free-standing message in JSON output.
type MessageJSON struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// DiagnosticsOutput is the root of JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Messages    []MessageJSON    `json:"messages,omitempty"`
	Count       int              `json:"count"`
	Errors      int              `json:"errors"`
	Warnings    int              `json:"warnings"`
}

// BuildDiagnosticsOutput assembles the JSON document without serializing it.
func BuildDiagnosticsOutput(fb feedback.Feedback, opts JSONOpts) DiagnosticsOutput {
	items := collect(fb, opts.Max)
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, len(items))}
	var counts Counts
	for _, it := range items {
		counts.add(it.d.Level)
		loc := it.d.Location
		out.Diagnostics = append(out.Diagnostics, DiagnosticJSON{
			Severity: levelLabel(it.d.Level),
			Title:    it.d.Title,
			Message:  it.d.Text,
			Hint:     it.d.Hint,
			Location: LocationJSON{
				File:      formatPath(loc.Path, opts.Root, opts.PathMode),
				StartByte: loc.Span.Start,
				EndByte:   loc.Span.End,
				StartLine: it.start.Line,
				StartCol:  it.start.Col,
				EndLine:   it.end.Line,
				EndCol:    it.end.Col,
			},
		})
	}
	for _, m := range fb.Messages {
		out.Messages = append(out.Messages, MessageJSON{Severity: levelLabel(m.Level), Message: m.Message()})
	}
	out.Count = len(out.Diagnostics)
	out.Errors = counts.Errors
	out.Warnings = counts.Warnings
	return out
}

// JSON writes fb as an indented DiagnosticsOutput document.
func JSON(w io.Writer, fb feedback.Feedback, opts JSONOpts) (Counts, error) {
	out := BuildDiagnosticsOutput(fb, opts)
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return Counts{}, err
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return Counts{}, err
	}
	return Counts{Errors: out.Errors, Warnings: out.Warnings}, nil
}
