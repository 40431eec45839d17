package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/segmentio/encoding/json"

	"ember/internal/diag"
	"ember/internal/feedback"
)

func sample() feedback.Feedback {
	src := "fn main() {\n\tlet naïve = (1\n}\n"
	var fb feedback.Feedback
	fb.SetDiagnostics("/home/user/project/src/main.em", []diag.Diagnostic{{
		Level: diag.LevelError,
		Title: "Unclosed `(`",
		Text:  "This delimiter is never closed.",
		Hint:  "add a matching `)`",
		Location: &diag.Location{
			Path: "/home/user/project/src/main.em",
			Src:  src,
			Span: diag.Span{Start: 26, End: 27},
		},
	}})
	fb.SetDiagnostics("/home/user/project/a.em", []diag.Diagnostic{{
		Level: diag.LevelWarning,
		Title: "Line too long",
		Location: &diag.Location{
			Path: "/home/user/project/a.em",
			Src:  "let abcdef = 1\n",
			Span: diag.Span{Start: 4, End: 10},
		},
	}, {
		Level: diag.LevelWarning,
		Title: "no location",
	}})
	fb.Clear("/home/user/project/clean.em")
	fb.AppendMessage(diag.LevelWarning, "Could not read x.em", "permission denied")
	return fb
}

func TestPrettyLayout(t *testing.T) {
	var buf bytes.Buffer
	counts := Pretty(&buf, sample(), PrettyOpts{Root: "/home/user/project"})
	if counts != (Counts{Errors: 1, Warnings: 1}) {
		t.Fatalf("unexpected counts %+v", counts)
	}
	want := "" +
		"a.em:1:5: warning: Line too long\n" +
		" 1 | let abcdef = 1\n" +
		"   |     ^~~~~~\n" +
		"\n" +
		"src/main.em:2:14: error: Unclosed `(`\n" +
		"  This delimiter is never closed.\n" +
		" 2 |     let naïve = (1\n" +
		"   |                 ^\n" +
		"  hint: add a matching `)`\n" +
		"\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyPathModes(t *testing.T) {
	cases := []struct {
		mode PathMode
		want string
	}{
		{PathModeAbsolute, "/home/user/project/src/main.em:2:14:"},
		{PathModeRelative, "src/main.em:2:14:"},
		{PathModeBasename, "main.em:2:14:"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		Pretty(&buf, sample(), PrettyOpts{Root: "/home/user/project", PathMode: tc.mode})
		if !strings.Contains(buf.String(), tc.want) {
			t.Fatalf("mode %d: output misses %q:\n%s", tc.mode, tc.want, buf.String())
		}
	}
}

func TestPrettyMax(t *testing.T) {
	var buf bytes.Buffer
	counts := Pretty(&buf, sample(), PrettyOpts{Max: 1})
	if counts.Errors+counts.Warnings != 1 {
		t.Fatalf("expected one rendered diagnostic, got %+v", counts)
	}
}

func TestMessages(t *testing.T) {
	var buf bytes.Buffer
	Messages(&buf, sample(), false)
	if got := buf.String(); got != "warning: Could not read x.em: permission denied\n" {
		t.Fatalf("unexpected messages %q", got)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	counts, err := JSON(&buf, sample(), JSONOpts{Root: "/home/user/project"})
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if counts != (Counts{Errors: 1, Warnings: 1}) {
		t.Fatalf("unexpected counts %+v", counts)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 2 || len(out.Messages) != 1 {
		t.Fatalf("unexpected document %+v", out)
	}
	d := out.Diagnostics[1]
	if d.Severity != "error" || d.Location.File != "src/main.em" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if d.Location.StartLine != 2 || d.Location.StartCol != 14 || d.Location.EndCol != 15 {
		t.Fatalf("unexpected location %+v", d.Location)
	}
}

func TestSummary(t *testing.T) {
	cases := []struct {
		c     Counts
		files int
		want  string
	}{
		{Counts{}, 1, "no problems in 1 file"},
		{Counts{Errors: 2, Warnings: 1}, 3, "2 errors, 1 warning in 3 files"},
		{Counts{Warnings: 4}, 2, "0 errors, 4 warnings in 2 files"},
	}
	for _, tc := range cases {
		if got := Summary(tc.c, tc.files, false); got != tc.want {
			t.Fatalf("Summary(%+v, %d) = %q, want %q", tc.c, tc.files, got, tc.want)
		}
	}
}

func TestExpandTabs(t *testing.T) {
	if got := expandTabs("a\tb\t\tc", 4); got != "a   b       c" {
		t.Fatalf("got %q", got)
	}
}
