package analysis

import "testing"

func TestFormatSource(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only blanks", "\n\n  \n", ""},
		{"already formatted", "fn main() {\n  let x = 1\n}\n", "fn main() {\n  let x = 1\n}\n"},
		{"adds final newline", "let x = 1", "let x = 1\n"},
		{"trims trailing blanks", "let x = 1  \t\n", "let x = 1\n"},
		{"expands leading tabs", "fn f() {\n\tlet x = 1\n\t\tlet y = 2\n}\n", "fn f() {\n  let x = 1\n    let y = 2\n}\n"},
		{"keeps inner tabs", "let x =\t1\n", "let x =\t1\n"},
		{"collapses blank runs", "let a = 1\n\n\n\nlet b = 2\n", "let a = 1\n\nlet b = 2\n"},
		{"drops leading and trailing blank lines", "\n\nlet a = 1\n\n\n", "let a = 1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatSource(tc.in, 2); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatSourceIsIdempotent(t *testing.T) {
	in := "\tfn f() {  \n\n\n\t\tlet x = 1\n}"
	once := formatSource(in, 4)
	if twice := formatSource(once, 4); twice != once {
		t.Fatalf("formatting twice changed the result: %q -> %q", once, twice)
	}
}

func TestExpandLeadingTabsMixed(t *testing.T) {
	if got := expandLeadingTabs(" \tx", 4); got != "     x" {
		t.Fatalf("got %q", got)
	}
}
