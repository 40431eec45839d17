package analysis

import (
	"testing"

	"ember/internal/diag"
	"ember/internal/source"
)

func TestScanDecls(t *testing.T) {
	src := "fn main() {\n  let count = 1\n}\npub type Point {}\nlet\n// fn hidden\nfnord x\nlet 9bad = 1\n"
	file := source.NewFile("/ws/a.em", []byte(src))
	decls := scanDecls(file)
	want := []struct {
		name string
		kind DeclKind
		line int
	}{
		{"main", DeclFunction, 0},
		{"count", DeclVariable, 1},
		{"Point", DeclType, 3},
	}
	if len(decls) != len(want) {
		t.Fatalf("expected %d decls, got %+v", len(want), decls)
	}
	for i, w := range want {
		d := decls[i]
		if d.Name != w.name || d.Kind != w.kind || d.Line != w.line {
			t.Fatalf("decl %d: got %+v, want %+v", i, d, w)
		}
		if file.Content[d.Span.Start:d.Span.End] != w.name {
			t.Fatalf("decl %d: span covers %q", i, file.Content[d.Span.Start:d.Span.End])
		}
	}
}

func TestScanDeclsNormalizesNames(t *testing.T) {
	// e followed by a combining acute accent
	file := source.NewFile("/ws/a.em", []byte("let cafe\u0301 = 1\n"))
	decls := scanDecls(file)
	if len(decls) != 1 || decls[0].Name != "caf\u00e9" {
		t.Fatalf("expected the NFC name, got %+v", decls)
	}
}

func TestIdentAt(t *testing.T) {
	file := source.NewFile("/ws/a.em", []byte("let total = sum(a_1, 2)\n"))
	cases := []struct {
		offset uint32
		name   string
		span   diag.Span
		ok     bool
	}{
		{4, "total", diag.Span{Start: 4, End: 9}, true},
		{9, "total", diag.Span{Start: 4, End: 9}, true},
		{13, "sum", diag.Span{Start: 12, End: 15}, true},
		{17, "a_1", diag.Span{Start: 16, End: 19}, true},
		{21, "", diag.Span{}, false},
		{10, "", diag.Span{}, false},
		{500, "", diag.Span{}, false},
	}
	for _, tc := range cases {
		name, span, ok := identAt(file, tc.offset)
		if name != tc.name || span != tc.span || ok != tc.ok {
			t.Fatalf("offset %d: got (%q, %+v, %v), want (%q, %+v, %v)", tc.offset, name, span, ok, tc.name, tc.span, tc.ok)
		}
	}
}
