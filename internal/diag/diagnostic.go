package diag

import (
	"errors"
	"strings"
)

// Span is a half-open byte range into Location.Src.
type Span struct {
	Start uint32 // inclusive
	End   uint32 // exclusive
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

// Location ties a diagnostic to a file. Src is the text the span refers to,
// which may be an unsaved editor buffer rather than the file on disk.
type Location struct {
	Path string
	Src  string
	Span Span
}

type Diagnostic struct {
	Level    Level
	Title    string
	Text     string
	Hint     string
	Location *Location
}

// Message renders the title and text as one block of text.
func (d Diagnostic) Message() string {
	title := strings.TrimSpace(d.Title)
	text := strings.TrimSpace(d.Text)
	switch {
	case title == "":
		return text
	case text == "":
		return title
	}
	return title + "\n\n" + text
}

// Error carries a Diagnostic through an error return.
type Error struct {
	Diagnostic Diagnostic
}

func (e *Error) Error() string {
	return e.Diagnostic.Message()
}

// NewError builds an error-level *Error.
func NewError(title, text string, loc *Location) *Error {
	return &Error{Diagnostic: Diagnostic{
		Level:    LevelError,
		Title:    title,
		Text:     text,
		Location: loc,
	}}
}

// FromError converts any error into a Diagnostic. Errors wrapping *Error keep
// their location; everything else becomes an unlocated error message.
func FromError(err error) Diagnostic {
	if err == nil {
		return Diagnostic{}
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Diagnostic
	}
	return Diagnostic{
		Level: LevelError,
		Title: "Internal error",
		Text:  err.Error(),
	}
}
