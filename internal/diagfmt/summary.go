package diagfmt

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"ember/internal/diag"
)

// Counts tallies rendered diagnostics by level.
type Counts struct {
	Errors   int
	Warnings int
}

func (c *Counts) add(l diag.Level) {
	if l == diag.LevelError {
		c.Errors++
		return
	}
	c.Warnings++
}

// Summary renders a one-line result such as "2 errors, 1 warning in 3 files".
// Styling is applied only when useColor is set.
func Summary(c Counts, files int, useColor bool) string {
	text := fmt.Sprintf("%s, %s in %s", plural(c.Errors, "error"), plural(c.Warnings, "warning"), plural(files, "file"))
	if c.Errors == 0 && c.Warnings == 0 {
		text = fmt.Sprintf("no problems in %s", plural(files, "file"))
	}
	if !useColor {
		return text
	}
	style := lipgloss.NewStyle().Bold(true)
	switch {
	case c.Errors > 0:
		style = style.Foreground(lipgloss.Color("1"))
	case c.Warnings > 0:
		style = style.Foreground(lipgloss.Color("3"))
	default:
		style = style.Foreground(lipgloss.Color("2"))
	}
	return style.Render(text)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
