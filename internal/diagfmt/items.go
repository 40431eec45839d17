package diagfmt

import (
	"unicode/utf8"

	"ember/internal/diag"
	"ember/internal/feedback"
	"ember/internal/source"
)

// item is one located diagnostic resolved against its source text.
type item struct {
	d     diag.Diagnostic
	file  *source.File
	start source.LineCol // Col in runes
	end   source.LineCol
}

// collect flattens fb into file order, then diagnostic order. Diagnostics
// without a usable location are skipped; messages are not included.
func collect(fb feedback.Feedback, limit int) []item {
	var items []item
	for _, path := range fb.Paths() {
		var file *source.File
		for _, d := range fb.Diagnostics[path] {
			if limit > 0 && len(items) >= limit {
				return items
			}
			loc := d.Location
			if loc == nil || loc.Span.Start > loc.Span.End || int(loc.Span.End) > len(loc.Src) {
				continue
			}
			if file == nil || file.Content != loc.Src {
				file = source.Index(loc.Path, loc.Src)
			}
			items = append(items, item{
				d:     d,
				file:  file,
				start: runeLineCol(file, loc.Span.Start),
				end:   runeLineCol(file, loc.Span.End),
			})
		}
	}
	return items
}

func runeLineCol(file *source.File, offset uint32) source.LineCol {
	lc := file.LineCol(offset)
	start := file.LineStart(int(lc.Line) - 1)
	prefix := file.Content[start : start+lc.Col-1]
	lc.Col = uint32(utf8.RuneCountInString(prefix)) + 1
	return lc
}
