package lsp

import (
	"net/url"
	"path/filepath"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// URIToPath maps a file URI to an absolute filesystem path. Non-file schemes
// and malformed URIs map to "".
func URIToPath(doc protocol.DocumentURI) string {
	raw := string(doc)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "" && parsed.Scheme != uri.FileScheme {
		return ""
	}
	path := parsed.Path
	if parsed.Scheme == "" {
		path = raw
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	path = filepath.FromSlash(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path
}

// PathToURI is the inverse of URIToPath.
func PathToURI(path string) protocol.DocumentURI {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return protocol.DocumentURI(uri.File(path))
}
