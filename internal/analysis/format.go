package analysis

import "strings"

// formatSource normalizes layout: leading tabs become indentWidth spaces,
// trailing blanks are trimmed, blank runs collapse to one line, and the file
// ends with exactly one newline. Empty input stays empty.
func formatSource(src string, indentWidth int) string {
	lines := strings.Split(src, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.TrimRight(expandLeadingTabs(line, indentWidth), " \t")
		if line == "" {
			blank++
			if blank > 1 || len(out) == 0 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}

func expandLeadingTabs(line string, indentWidth int) string {
	n := 0
	for n < len(line) && (line[n] == '\t' || line[n] == ' ') {
		n++
	}
	if !strings.Contains(line[:n], "\t") {
		return line
	}
	width := 0
	for _, ch := range line[:n] {
		if ch == '\t' {
			width += indentWidth
		} else {
			width++
		}
	}
	return strings.Repeat(" ", width) + line[n:]
}
