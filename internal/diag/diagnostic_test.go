package diag

import (
	"errors"
	"fmt"
	"testing"
)

func TestMessageJoinsTitleAndText(t *testing.T) {
	cases := []struct {
		d    Diagnostic
		want string
	}{
		{Diagnostic{Title: "Syntax error", Text: "unexpected }"}, "Syntax error\n\nunexpected }"},
		{Diagnostic{Title: "Syntax error"}, "Syntax error"},
		{Diagnostic{Text: " only text "}, "only text"},
	}
	for _, tc := range cases {
		if got := tc.d.Message(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestFromErrorKeepsLocation(t *testing.T) {
	loc := &Location{Path: "/p/a.em", Src: "fn (", Span: Span{Start: 3, End: 4}}
	err := fmt.Errorf("format: %w", NewError("Syntax error", "unclosed (", loc))

	d := FromError(err)
	if d.Location != loc {
		t.Fatalf("expected location to survive wrapping, got %+v", d.Location)
	}
	if d.Level != LevelError || d.Title != "Syntax error" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}

func TestFromErrorPlainError(t *testing.T) {
	d := FromError(errors.New("disk on fire"))
	if d.Location != nil {
		t.Fatal("expected no location")
	}
	if d.Level != LevelError || d.Text != "disk on fire" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if (FromError(nil) != Diagnostic{}) {
		t.Fatal("expected zero diagnostic for nil error")
	}
}

func TestLevelString(t *testing.T) {
	if LevelError.String() != "ERROR" || LevelWarning.String() != "WARNING" {
		t.Fatal("unexpected level names")
	}
	if Level(9).String() != "UNKNOWN" {
		t.Fatal("expected UNKNOWN for out of range level")
	}
}
