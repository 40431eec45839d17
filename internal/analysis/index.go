package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"ember/internal/diag"
	"ember/internal/source"
)

// DeclKind classifies a top-level or local declaration.
type DeclKind uint8

const (
	DeclFunction DeclKind = iota
	DeclVariable
	DeclType
)

func (k DeclKind) keyword() string {
	switch k {
	case DeclFunction:
		return "fn"
	case DeclVariable:
		return "let"
	case DeclType:
		return "type"
	}
	return ""
}

var declKeywords = []DeclKind{DeclFunction, DeclVariable, DeclType}

// keywords offered by completion.
var keywords = []string{"else", "fn", "if", "let", "match", "pub", "return", "type"}

// Decl is a named declaration found in a file.
type Decl struct {
	Name string // NFC-normalized
	Kind DeclKind
	Line int // zero-based
	Span diag.Span
}

// scanDecls finds `fn NAME`, `let NAME` and `type NAME` at the start of a
// line, optionally preceded by `pub`.
func scanDecls(file *source.File) []Decl {
	var decls []Decl
	for line := 0; line < file.LineCount(); line++ {
		text := file.Line(line)
		start := file.LineStart(line)

		rest := strings.TrimLeft(text, " \t")
		offset := len(text) - len(rest)
		if after, ok := cutKeyword(rest, "pub"); ok {
			offset += len(rest) - len(after)
			rest = after
		}
		for _, kind := range declKeywords {
			after, ok := cutKeyword(rest, kind.keyword())
			if !ok {
				continue
			}
			name := leadingIdent(after)
			if name == "" {
				break
			}
			nameStart := start + safeUint32(offset+len(rest)-len(after))
			decls = append(decls, Decl{
				Name: norm.NFC.String(name),
				Kind: kind,
				Line: line,
				Span: diag.Span{Start: nameStart, End: nameStart + safeUint32(len(name))},
			})
			break
		}
	}
	return decls
}

// cutKeyword strips kw and the blanks after it. kw must be followed by at
// least one blank.
func cutKeyword(s, kw string) (string, bool) {
	if !strings.HasPrefix(s, kw) || len(s) == len(kw) {
		return s, false
	}
	if s[len(kw)] != ' ' && s[len(kw)] != '\t' {
		return s, false
	}
	return strings.TrimLeft(s[len(kw):], " \t"), true
}

// isIdentRune accepts combining marks so decomposed spellings stay one
// identifier until NFC folds them.
func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func leadingIdent(s string) string {
	end := 0
	for i, r := range s {
		if !isIdentRune(r) {
			break
		}
		if i == 0 && unicode.IsDigit(r) {
			return ""
		}
		end = i + utf8.RuneLen(r)
	}
	return s[:end]
}

// identAt returns the identifier touching offset and its span.
func identAt(file *source.File, offset uint32) (string, diag.Span, bool) {
	content := file.Content
	if offset > file.Len() {
		return "", diag.Span{}, false
	}
	start := int(offset)
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(content[:start])
		if !isIdentRune(r) {
			break
		}
		start -= size
	}
	end := int(offset)
	for end < len(content) {
		r, size := utf8.DecodeRuneInString(content[end:])
		if !isIdentRune(r) {
			break
		}
		end += size
	}
	if start == end {
		return "", diag.Span{}, false
	}
	name := content[start:end]
	if first, _ := utf8.DecodeRuneInString(name); unicode.IsDigit(first) {
		return "", diag.Span{}, false
	}
	return norm.NFC.String(name), diag.Span{Start: safeUint32(start), End: safeUint32(end)}, true
}
