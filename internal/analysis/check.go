package analysis

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"ember/internal/diag"
	"ember/internal/project"
	"ember/internal/source"
)

const maxDiagnosticsPerFile = 50

var closerFor = map[byte]byte{'(': ')', '[': ']', '{': '}'}

type openDelim struct {
	char   byte
	offset uint32
}

// checker collects diagnostics for one file.
type checker struct {
	file  *source.File
	lint  project.LintSection
	diags []diag.Diagnostic
}

// checkFile runs every check over file and returns the findings ordered by
// position.
func checkFile(file *source.File, decls []Decl, lint project.LintSection) []diag.Diagnostic {
	c := &checker{file: file, lint: lint}
	c.checkSyntax()
	c.checkDuplicates(decls)
	c.checkLines()
	sort.SliceStable(c.diags, func(i, j int) bool {
		return c.diags[i].Location.Span.Start < c.diags[j].Location.Span.Start
	})
	if len(c.diags) > maxDiagnosticsPerFile {
		c.diags = c.diags[:maxDiagnosticsPerFile]
	}
	return c.diags
}

// syntaxErrors returns only the delimiter and string literal errors, which
// make a file unsafe to format.
func syntaxErrors(file *source.File) []diag.Diagnostic {
	c := &checker{file: file}
	c.checkSyntax()
	return c.diags
}

func (c *checker) add(level diag.Level, title, text, hint string, span diag.Span) {
	c.diags = append(c.diags, diag.Diagnostic{
		Level: level,
		Title: title,
		Text:  text,
		Hint:  hint,
		Location: &diag.Location{
			Path: c.file.Path,
			Src:  c.file.Content,
			Span: span,
		},
	})
}

// checkSyntax matches delimiters outside string literals and line comments
// and reports string literals left open at the end of a line.
func (c *checker) checkSyntax() {
	content := c.file.Content
	var stack []openDelim
	for i := 0; i < len(content); i++ {
		ch := content[i]
		switch ch {
		case '/':
			if i+1 < len(content) && content[i+1] == '/' {
				for i < len(content) && content[i] != '\n' {
					i++
				}
			}
		case '"':
			start := i
			i++
			for i < len(content) && content[i] != '"' && content[i] != '\n' {
				if content[i] == '\\' && i+1 < len(content) && content[i+1] != '\n' {
					i++
				}
				i++
			}
			if i >= len(content) || content[i] == '\n' {
				c.add(diag.LevelError, "Unterminated string",
					"This string literal is not closed before the end of the line.",
					"add a closing `\"`",
					diag.Span{Start: safeUint32(start), End: safeUint32(i)})
			}
		case '(', '[', '{':
			stack = append(stack, openDelim{char: ch, offset: safeUint32(i)})
		case ')', ']', '}':
			if len(stack) == 0 || closerFor[stack[len(stack)-1].char] != ch {
				text := fmt.Sprintf("There is no open delimiter for this `%c`.", ch)
				if len(stack) > 0 {
					top := stack[len(stack)-1]
					text = fmt.Sprintf("Expected `%c` to close the `%c` on line %d.",
						closerFor[top.char], top.char, c.file.LineCol(top.offset).Line)
				}
				c.add(diag.LevelError, fmt.Sprintf("Unexpected `%c`", ch), text, "",
					diag.Span{Start: safeUint32(i), End: safeUint32(i + 1)})
				continue
			}
			stack = stack[:len(stack)-1]
		}
	}
	for _, open := range stack {
		c.add(diag.LevelError, fmt.Sprintf("Unclosed `%c`", open.char),
			"This delimiter is never closed.",
			fmt.Sprintf("add a matching `%c`", closerFor[open.char]),
			diag.Span{Start: open.offset, End: open.offset + 1})
	}
}

func (c *checker) checkDuplicates(decls []Decl) {
	first := make(map[string]Decl, len(decls))
	for _, d := range decls {
		prev, seen := first[d.Name]
		if !seen {
			first[d.Name] = d
			continue
		}
		c.add(diag.LevelError, "Duplicate definition",
			fmt.Sprintf("`%s` was already defined on line %d.", d.Name, prev.Line+1),
			"rename one of the definitions",
			d.Span)
	}
}

func (c *checker) checkLines() {
	for line := 0; line < c.file.LineCount(); line++ {
		text := c.file.Line(line)
		start := c.file.LineStart(line)

		if limit := c.lint.MaxLineLength; limit > 0 {
			if n := utf8.RuneCountInString(text); n > limit {
				cut := 0
				for i := 0; i < limit; i++ {
					_, size := utf8.DecodeRuneInString(text[cut:])
					cut += size
				}
				c.add(diag.LevelWarning, "Line too long",
					fmt.Sprintf("This line is %d characters long; the limit is %d.", n, limit),
					"",
					diag.Span{Start: start + safeUint32(cut), End: start + safeUint32(len(text))})
			}
		}

		if c.lint.TrailingWhitespace {
			trimmed := strings.TrimRight(text, " \t")
			if len(trimmed) < len(text) {
				c.add(diag.LevelWarning, "Trailing whitespace",
					"This line ends with whitespace.",
					"run the formatter",
					diag.Span{Start: start + safeUint32(len(trimmed)), End: start + safeUint32(len(text))})
			}
		}
	}
}
