package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewFileNormalizesCRLFAndBOM(t *testing.T) {
	f := NewFile("a.em", []byte("\xEF\xBB\xBFone\r\ntwo\r\n"))
	if f.Content != "one\ntwo\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if len(f.LineIdx) != 2 || f.LineIdx[0] != 3 || f.LineIdx[1] != 7 {
		t.Fatalf("unexpected line index %v", f.LineIdx)
	}
	if f.LineCount() != 3 {
		t.Fatalf("expected 3 lines, got %d", f.LineCount())
	}
}

func TestLineAccessors(t *testing.T) {
	f := NewFile("a.em", []byte("alpha\nbeta\ngamma"))
	cases := []struct {
		line int
		want string
	}{
		{0, "alpha"},
		{1, "beta"},
		{2, "gamma"},
		{3, ""},
		{-1, ""},
	}
	for _, tc := range cases {
		if got := f.Line(tc.line); got != tc.want {
			t.Fatalf("line %d: expected %q, got %q", tc.line, tc.want, got)
		}
	}
	if got := f.LineOf(7); got != 1 {
		t.Fatalf("expected offset 7 on line 1, got %d", got)
	}
	if got := f.LineOf(5); got != 0 {
		t.Fatalf("expected newline offset on line 0, got %d", got)
	}
}

func TestPositionRoundTripUTF16(t *testing.T) {
	// "é" is two bytes and one UTF-16 unit, "😀" is four bytes and two units.
	f := NewFile("a.em", []byte("let x = \"é😀\"\nfn y"))
	closing := uint32(len("let x = \"é😀"))
	pos := f.Position(closing)
	if pos.Line != 0 || pos.Character != 12 {
		t.Fatalf("unexpected position %+v", pos)
	}
	if off := f.Offset(pos); off != closing {
		t.Fatalf("expected offset %d, got %d", closing, off)
	}

	second := f.Offset(Position{Line: 1, Character: 3})
	if f.Content[second:] != "y" {
		t.Fatalf("unexpected offset %d", second)
	}
}

func TestOffsetClamps(t *testing.T) {
	f := NewFile("a.em", []byte("ab\ncd"))
	if off := f.Offset(Position{Line: 0, Character: 99}); off != 2 {
		t.Fatalf("expected clamp to line end, got %d", off)
	}
	if off := f.Offset(Position{Line: 9, Character: 0}); off != f.Len() {
		t.Fatalf("expected clamp to content end, got %d", off)
	}
	if off := f.Offset(Position{Line: -1, Character: 0}); off != 0 {
		t.Fatalf("expected zero for negative line, got %d", off)
	}
}

func TestLineCol(t *testing.T) {
	f := NewFile("a.em", []byte("ab\ncd"))
	lc := f.LineCol(4)
	if lc.Line != 2 || lc.Col != 2 {
		t.Fatalf("unexpected line/col %+v", lc)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.em")
	if err := os.WriteFile(path, []byte("fn main\r\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Content != "fn main\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.em")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestIndexKeepsContent(t *testing.T) {
	f := Index("a.em", "one\r\ntwo")
	if f.Content != "one\r\ntwo" {
		t.Fatalf("content rewritten: %q", f.Content)
	}
	if f.LineCount() != 2 || f.LineStart(1) != 5 {
		t.Fatalf("unexpected line layout: count=%d start=%d", f.LineCount(), f.LineStart(1))
	}
}
