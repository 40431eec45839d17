package source

import (
	"crypto/sha256"
	"os"
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"
)

// File captures the content of a single source file with a newline index.
type File struct {
	Path    string
	Content string
	LineIdx []uint32 // byte offsets of every '\n'
	Hash    [32]byte
}

// Position is a zero-based line and UTF-16 character offset, the way editors
// address text.
type Position struct {
	Line      int
	Character int
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, in bytes
}

const maxUint32 = ^uint32(0)

// NewFile normalizes BOM/CRLF in content and indexes its lines.
func NewFile(path string, content []byte) *File {
	content, _ = removeBOM(content)
	content, _ = normalizeCRLF(content)
	return &File{
		Path:    normalizePath(path),
		Content: string(content),
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
	}
}

// Index wraps already normalized content without copying or rewriting it, so
// byte offsets computed against content stay valid.
func Index(path, content string) *File {
	return &File{
		Path:    normalizePath(path),
		Content: content,
		LineIdx: buildLineIndex([]byte(content)),
		Hash:    sha256.Sum256([]byte(content)),
	}
}

// Load reads a file from disk and calls NewFile.
func Load(path string) (*File, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewFile(path, content), nil
}

// Len returns the content length in bytes.
func (f *File) Len() uint32 {
	return safeUint32(len(f.Content))
}

// LineCount returns the number of lines, counting a trailing partial line.
func (f *File) LineCount() int {
	return len(f.LineIdx) + 1
}

// LineStart returns the byte offset where the zero-based line begins.
func (f *File) LineStart(line int) uint32 {
	switch {
	case line <= 0:
		return 0
	case line > len(f.LineIdx):
		return f.Len()
	default:
		return f.LineIdx[line-1] + 1
	}
}

// LineEnd returns the byte offset of the newline ending the zero-based line,
// or the content length for the last line.
func (f *File) LineEnd(line int) uint32 {
	if line < 0 {
		return 0
	}
	if line < len(f.LineIdx) {
		return f.LineIdx[line]
	}
	return f.Len()
}

// Line returns the text of the zero-based line without its newline.
func (f *File) Line(line int) string {
	if line < 0 || line >= f.LineCount() {
		return ""
	}
	return f.Content[f.LineStart(line):f.LineEnd(line)]
}

// LineOf returns the zero-based line containing offset.
func (f *File) LineOf(offset uint32) int {
	if offset > f.Len() {
		offset = f.Len()
	}
	return sort.Search(len(f.LineIdx), func(i int) bool { return f.LineIdx[i] >= offset })
}

// Offset converts an editor position into a byte offset. Positions past the
// end of a line clamp to the line end; lines past the end clamp to the
// content length.
func (f *File) Offset(pos Position) uint32 {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	if pos.Line >= f.LineCount() {
		return f.Len()
	}
	off := f.LineStart(pos.Line)
	lineEnd := f.LineEnd(pos.Line)
	units := 0
	for off < lineEnd {
		r, size := utf8.DecodeRuneInString(f.Content[off:lineEnd])
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if units+need > pos.Character {
			break
		}
		units += need
		off += safeUint32(size)
		if units == pos.Character {
			break
		}
	}
	return off
}

// Position converts a byte offset into an editor position.
func (f *File) Position(offset uint32) Position {
	if offset > f.Len() {
		offset = f.Len()
	}
	line := f.LineOf(offset)
	lineStart := f.LineStart(line)
	if lineStart > offset {
		lineStart = offset
	}
	units := 0
	for off := lineStart; off < offset; {
		r, size := utf8.DecodeRuneInString(f.Content[off:offset])
		if off+safeUint32(size) > offset {
			break
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		off += safeUint32(size)
	}
	return Position{Line: line, Character: units}
}

// LineCol converts a byte offset into a 1-based line/column pair.
func (f *File) LineCol(offset uint32) LineCol {
	if offset > f.Len() {
		offset = f.Len()
	}
	line := f.LineOf(offset)
	return LineCol{
		Line: safeUint32(line + 1),
		Col:  offset - f.LineStart(line) + 1,
	}
}

func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}
