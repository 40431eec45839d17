// Package diag defines the diagnostic model shared by the analysis engine and
// the language server.
//
// Diagnostic is the central record:
//
//   - Level: Error or Warning.
//   - Title and Text: short headline and longer explanation.
//   - Hint: optional suggestion; editors show it as a separate hint entry.
//   - Location: optional file path, source text and byte span. Diagnostics
//     without a location are user messages rather than file findings.
//
// Package diag does not perform any formatting or IO. Translation to the
// editor protocol lives in internal/lsp, terminal rendering in cmd/ember.
package diag
