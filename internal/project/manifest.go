package project

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrManifestMissing reports that no ember.toml exists above the start directory.
var ErrManifestMissing = errors.New("no " + ManifestName + " found")

const (
	defaultExtension     = ".em"
	defaultIndentWidth   = 2
	defaultMaxLineLength = 100
)

// Manifest is a loaded project configuration.
type Manifest struct {
	Path   string // empty when running on defaults
	Root   string
	Config Config
}

type Config struct {
	Project ProjectSection `toml:"project"`
	Lint    LintSection    `toml:"lint"`
	Format  FormatSection  `toml:"format"`
}

type ProjectSection struct {
	Name      string   `toml:"name"`
	Sources   []string `toml:"sources"`
	Extension string   `toml:"extension"`
}

type LintSection struct {
	// MaxLineLength of zero disables the check.
	MaxLineLength      int  `toml:"max_line_length"`
	TrailingWhitespace bool `toml:"trailing_whitespace"`
}

type FormatSection struct {
	IndentWidth int `toml:"indent_width"`
}

// DefaultConfig is used for keys the manifest leaves out and for directories
// without a manifest.
func DefaultConfig() Config {
	return Config{
		Project: ProjectSection{
			Sources:   []string{"."},
			Extension: defaultExtension,
		},
		Lint: LintSection{
			MaxLineLength:      defaultMaxLineLength,
			TrailingWhitespace: true,
		},
		Format: FormatSection{
			IndentWidth: defaultIndentWidth,
		},
	}
}

// Load finds ember.toml above startDir and parses it. It returns
// ErrManifestMissing when there is none.
func Load(startDir string) (*Manifest, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrManifestMissing
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, nil
}

// LoadOrDefault behaves like Load but falls back to DefaultConfig rooted at
// startDir when no manifest exists.
func LoadOrDefault(startDir string) (*Manifest, error) {
	m, err := Load(startDir)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, ErrManifestMissing) {
		return nil, err
	}
	if startDir == "" {
		startDir = "."
	}
	root, absErr := filepath.Abs(startDir)
	if absErr != nil {
		return nil, fmt.Errorf("failed to resolve start directory: %w", absErr)
	}
	cfg := DefaultConfig()
	cfg.Project.Name = filepath.Base(root)
	return &Manifest{Root: root, Config: cfg}, nil
}

// LoadConfig parses a manifest file and fills in defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("project") {
		return Config{}, fmt.Errorf("%s: missing [project]", path)
	}
	if !meta.IsDefined("project", "name") || strings.TrimSpace(cfg.Project.Name) == "" {
		return Config{}, fmt.Errorf("%s: missing [project].name", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0].String())
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Project.Sources) == 0 {
		c.Project.Sources = []string{"."}
	}
	for _, src := range c.Project.Sources {
		if filepath.IsAbs(src) {
			return fmt.Errorf("[project].sources must be relative, got %q", src)
		}
		if strings.HasPrefix(filepath.ToSlash(filepath.Clean(src)), "../") {
			return fmt.Errorf("[project].sources must stay inside the project, got %q", src)
		}
	}
	if !strings.HasPrefix(c.Project.Extension, ".") || len(c.Project.Extension) < 2 {
		return fmt.Errorf("[project].extension must look like \".em\", got %q", c.Project.Extension)
	}
	if c.Lint.MaxLineLength < 0 {
		return fmt.Errorf("[lint].max_line_length must not be negative")
	}
	if c.Format.IndentWidth < 1 || c.Format.IndentWidth > 16 {
		return fmt.Errorf("[format].indent_width must be between 1 and 16, got %d", c.Format.IndentWidth)
	}
	return nil
}

// SourceDirs returns the absolute source directories of the project.
func (m *Manifest) SourceDirs() []string {
	dirs := make([]string, 0, len(m.Config.Project.Sources))
	for _, src := range m.Config.Project.Sources {
		dirs = append(dirs, filepath.Join(m.Root, filepath.FromSlash(src)))
	}
	return dirs
}

// LintFingerprint identifies the settings that influence per-file analysis
// results, so cached results are discarded when they change.
func (c Config) LintFingerprint() Digest {
	key := fmt.Sprintf("ext=%s;max=%d;trail=%t", c.Project.Extension, c.Lint.MaxLineLength, c.Lint.TrailingWhitespace)
	return sha256.Sum256([]byte(key))
}
