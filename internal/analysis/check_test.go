package analysis

import (
	"strings"
	"testing"

	"ember/internal/diag"
	"ember/internal/project"
	"ember/internal/source"
	"ember/internal/testkit"
)

func check(t *testing.T, src string, lint project.LintSection) []diag.Diagnostic {
	t.Helper()
	file := source.NewFile("/ws/a.em", []byte(src))
	return checkFile(file, scanDecls(file), lint)
}

func titles(list []diag.Diagnostic) string {
	out := make([]string, 0, len(list))
	for _, d := range list {
		out = append(out, d.Title)
	}
	return strings.Join(out, "|")
}

func TestCheckFile(t *testing.T) {
	noLint := project.LintSection{}
	cases := []struct {
		name string
		src  string
		lint project.LintSection
		want string
	}{
		{"clean", "fn main() {\n  let x = [1, 2]\n}\n", noLint, ""},
		{"unclosed paren", "fn main( {\n}\n", noLint, "Unclosed `(`"},
		{"stray closer", "let x = 1)\n", noLint, "Unexpected `)`"},
		{"mismatched closer", "let x = (1]\n", noLint, "Unclosed `(`|Unexpected `]`"},
		{"delimiters in strings and comments", "let s = \"(\" // )\n", noLint, ""},
		{"unterminated string", "let s = \"abc\nlet t = 1\n", noLint, "Unterminated string"},
		{"escaped quote", "let s = \"a\\\"b\"\n", noLint, ""},
		{"duplicate", "fn a() {}\nlet b = 1\nfn a() {}\n", noLint, "Duplicate definition"},
		{"long line", "let x = 123456\n", project.LintSection{MaxLineLength: 10}, "Line too long"},
		{"trailing whitespace", "let x = 1  \n", project.LintSection{TrailingWhitespace: true}, "Trailing whitespace"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := check(t, tc.src, tc.lint)
			if titles(got) != tc.want {
				t.Fatalf("got %q, want %q", titles(got), tc.want)
			}
			if err := testkit.CheckDiagnosticSpans("/ws/a.em", got); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestCheckSpans(t *testing.T) {
	got := check(t, "let x = 1  \nfn f( {}\n", project.LintSection{TrailingWhitespace: true})
	if len(got) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d: %s", len(got), titles(got))
	}
	ws := got[0]
	if ws.Level != diag.LevelWarning || ws.Location.Span != (diag.Span{Start: 9, End: 11}) {
		t.Fatalf("unexpected whitespace diagnostic %+v", ws.Location.Span)
	}
	if ws.Hint != "run the formatter" {
		t.Fatalf("unexpected hint %q", ws.Hint)
	}
	paren := got[1]
	if paren.Level != diag.LevelError || paren.Location.Span != (diag.Span{Start: 16, End: 17}) {
		t.Fatalf("unexpected paren diagnostic %+v", paren.Location.Span)
	}
	if paren.Location.Path != "/ws/a.em" || paren.Location.Src == "" {
		t.Fatalf("location must carry path and source")
	}
}

func TestCheckDuplicateMentionsFirstLine(t *testing.T) {
	got := check(t, "fn a() {}\n\nfn a() {}\n", project.LintSection{})
	if len(got) != 1 || !strings.Contains(got[0].Text, "line 1") {
		t.Fatalf("unexpected duplicate diagnostic %+v", got)
	}
	if got[0].Location.Span != (diag.Span{Start: 14, End: 15}) {
		t.Fatalf("duplicate must point at the second name, got %+v", got[0].Location.Span)
	}
}

func TestLongLineCountsRunes(t *testing.T) {
	got := check(t, "let é = 1\n", project.LintSection{MaxLineLength: 9})
	if len(got) != 0 {
		t.Fatalf("9 runes must fit a limit of 9, got %s", titles(got))
	}
}

func TestCheckCapsDiagnostics(t *testing.T) {
	src := strings.Repeat(")\n", maxDiagnosticsPerFile+10)
	if got := check(t, src, project.LintSection{}); len(got) != maxDiagnosticsPerFile {
		t.Fatalf("expected %d diagnostics, got %d", maxDiagnosticsPerFile, len(got))
	}
}

func TestSyntaxErrorsIgnoreLint(t *testing.T) {
	file := source.NewFile("/ws/a.em", []byte("let x = 1   \n"))
	if errs := syntaxErrors(file); len(errs) != 0 {
		t.Fatalf("lint findings are not syntax errors: %s", titles(errs))
	}
}
