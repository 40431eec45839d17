package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"ember/internal/diag"
	"ember/internal/feedback"
)

// Pretty writes diagnostics in human-readable form, one block per
// diagnostic:
//
//	<path>:<line>:<col>: <level>: <title>
//	  <text>
//	   3 | let x = (
//	     |         ^
//	  hint: <hint>
//
// Files are visited in path order. It returns the counts it rendered.
func Pretty(w io.Writer, fb feedback.Feedback, opts PrettyOpts) Counts {
	pal := newPalette(opts.Color)
	tab := opts.TabWidth
	if tab <= 0 {
		tab = 4
	}
	var counts Counts
	for _, it := range collect(fb, opts.Max) {
		counts.add(it.d.Level)
		loc := it.d.Location
		path := formatPath(loc.Path, opts.Root, opts.PathMode)

		fmt.Fprintf(w, "%s %s %s\n",
			pal.path.Sprintf("%s:%d:%d:", path, it.start.Line, it.start.Col),
			pal.level(it.d.Level).Sprint(levelLabel(it.d.Level)+":"),
			pal.title.Sprint(it.d.Title))
		if text := strings.TrimSpace(it.d.Text); text != "" {
			fmt.Fprintf(w, "  %s\n", text)
		}

		lineIdx := int(it.start.Line) - 1
		line := it.file.Line(lineIdx)
		gutter := fmt.Sprintf("%d", it.start.Line)
		pad := strings.Repeat(" ", len(gutter))
		fmt.Fprintf(w, " %s %s %s\n", pal.gutter.Sprint(gutter), pal.gutter.Sprint("|"), expandTabs(line, tab))

		lineStart := it.file.LineStart(lineIdx)
		lineLen := uint32(len(line))
		startByte := min(loc.Span.Start-lineStart, lineLen)
		endByte := lineLen
		if it.end.Line == it.start.Line {
			endByte = min(loc.Span.End-lineStart, lineLen)
		}
		indent := runewidth.StringWidth(expandTabs(line[:startByte], tab))
		width := runewidth.StringWidth(expandTabs(line[startByte:endByte], tab))
		if width == 0 {
			width = 1
		}
		marker := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(w, " %s %s %s%s\n", pad, pal.gutter.Sprint("|"), strings.Repeat(" ", indent), pal.level(it.d.Level).Sprint(marker))

		if hint := strings.TrimSpace(it.d.Hint); hint != "" {
			fmt.Fprintf(w, "  %s %s\n", pal.hint.Sprint("hint:"), hint)
		}
		fmt.Fprintln(w)
	}
	return counts
}

// Messages writes free-standing messages, one per line.
func Messages(w io.Writer, fb feedback.Feedback, useColor bool) {
	pal := newPalette(useColor)
	for _, m := range fb.Messages {
		msg := strings.TrimSpace(m.Title)
		if text := strings.TrimSpace(m.Text); text != "" {
			msg += ": " + text
		}
		fmt.Fprintf(w, "%s %s\n", pal.level(m.Level).Sprint(levelLabel(m.Level)+":"), msg)
	}
}

func levelLabel(l diag.Level) string {
	return strings.ToLower(l.String())
}

// expandTabs replaces every tab with spaces up to the next tab stop.
func expandTabs(s string, width int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := width - col%width
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}

type palette struct {
	path, title, gutter, hint *color.Color
	errorColor, warnColor     *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:       color.New(color.Bold),
		title:      color.New(color.Bold),
		gutter:     color.New(color.FgBlue),
		hint:       color.New(color.FgCyan, color.Bold),
		errorColor: color.New(color.FgRed, color.Bold),
		warnColor:  color.New(color.FgYellow, color.Bold),
	}
	for _, c := range []*color.Color{p.path, p.title, p.gutter, p.hint, p.errorColor, p.warnColor} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) level(l diag.Level) *color.Color {
	if l == diag.LevelError {
		return p.errorColor
	}
	return p.warnColor
}
