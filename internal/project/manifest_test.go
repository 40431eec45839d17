package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadFindsManifestAbove(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[project]
name = "demo"
sources = ["src"]

[lint]
max_line_length = 80
`)
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	m, err := Load(nested)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Root != root {
		t.Fatalf("expected root %q, got %q", root, m.Root)
	}
	if m.Config.Project.Name != "demo" {
		t.Fatalf("unexpected name %q", m.Config.Project.Name)
	}
	if m.Config.Lint.MaxLineLength != 80 {
		t.Fatalf("expected max_line_length 80, got %d", m.Config.Lint.MaxLineLength)
	}
	if !m.Config.Lint.TrailingWhitespace {
		t.Fatal("expected trailing whitespace default to stay on")
	}
	if m.Config.Format.IndentWidth != defaultIndentWidth || m.Config.Project.Extension != ".em" {
		t.Fatalf("expected defaults, got %+v", m.Config)
	}
	dirs := m.SourceDirs()
	if len(dirs) != 1 || dirs[0] != filepath.Join(root, "src") {
		t.Fatalf("unexpected source dirs %v", dirs)
	}
}

func TestLoadMissingManifest(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir); !errors.Is(err, ErrManifestMissing) {
		t.Fatalf("expected ErrManifestMissing, got %v", err)
	}
	m, err := LoadOrDefault(dir)
	if err != nil {
		t.Fatalf("load or default: %v", err)
	}
	if m.Path != "" || m.Root != dir {
		t.Fatalf("unexpected default manifest %+v", m)
	}
	if m.Config.Project.Name != filepath.Base(dir) {
		t.Fatalf("expected name from directory, got %q", m.Config.Project.Name)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"no project", "[lint]\nmax_line_length = 10\n", "missing [project]"},
		{"no name", "[project]\nsources = [\".\"]\n", "missing [project].name"},
		{"bad toml", "[project\n", "failed to parse TOML"},
		{"unknown key", "[project]\nname = \"x\"\ncolour = true\n", "unknown key"},
		{"absolute source", "[project]\nname = \"x\"\nsources = [\"/abs\"]\n", "must be relative"},
		{"escaping source", "[project]\nname = \"x\"\nsources = [\"../up\"]\n", "inside the project"},
		{"bad extension", "[project]\nname = \"x\"\nextension = \"em\"\n", "extension"},
		{"bad indent", "[project]\nname = \"x\"\n[format]\nindent_width = 0\n", "indent_width"},
		{"negative max", "[project]\nname = \"x\"\n[lint]\nmax_line_length = -1\n", "max_line_length"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tc.content)
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %v", tc.want, err)
			}
		})
	}
}

func TestLintFingerprintTracksLintSettings(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	if a.LintFingerprint() != b.LintFingerprint() {
		t.Fatal("expected equal fingerprints for equal configs")
	}
	b.Format.IndentWidth = 8
	if a.LintFingerprint() != b.LintFingerprint() {
		t.Fatal("format settings must not change the lint fingerprint")
	}
	b.Lint.MaxLineLength = 3
	if a.LintFingerprint() == b.LintFingerprint() {
		t.Fatal("expected fingerprint to change with lint settings")
	}
}

func TestCombineIsOrderSensitive(t *testing.T) {
	var x, y Digest
	x[0] = 1
	y[0] = 2
	if Combine(x, y) == Combine(y, x) {
		t.Fatal("expected order to matter")
	}
}
