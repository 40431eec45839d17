package analysis

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"ember/internal/diag"
	"ember/internal/project"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores per-file analysis results on disk, keyed by a digest of
// the file content and the lint settings. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the cached result of checking one file.
type DiskPayload struct {
	Schema      uint16
	Path        string
	Diagnostics []CachedDiagnostic
}

// CachedDiagnostic is a diag.Diagnostic without its source text.
type CachedDiagnostic struct {
	Level uint8
	Title string
	Text  string
	Hint  string
	Start uint32
	End   uint32
}

// OpenDiskCache opens the cache in dir, or under $XDG_CACHE_HOME/<app> when
// dir is empty.
func OpenDiskCache(dir, app string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "files", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	payload.Schema = diskCacheSchemaVersion
	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload. Entries written with another schema
// version are reported as misses.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "files"))
}

func toCached(list []diag.Diagnostic) []CachedDiagnostic {
	out := make([]CachedDiagnostic, 0, len(list))
	for _, d := range list {
		cd := CachedDiagnostic{
			Level: uint8(d.Level),
			Title: d.Title,
			Text:  d.Text,
			Hint:  d.Hint,
		}
		if d.Location != nil {
			cd.Start = d.Location.Span.Start
			cd.End = d.Location.Span.End
		}
		out = append(out, cd)
	}
	return out
}

func fromCached(path, src string, list []CachedDiagnostic) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(list))
	for _, cd := range list {
		out = append(out, diag.Diagnostic{
			Level: diag.Level(cd.Level),
			Title: cd.Title,
			Text:  cd.Text,
			Hint:  cd.Hint,
			Location: &diag.Location{
				Path: path,
				Src:  src,
				Span: diag.Span{Start: cd.Start, End: cd.End},
			},
		})
	}
	return out
}
