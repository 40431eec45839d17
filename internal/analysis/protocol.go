package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"ember/internal/diag"
	"ember/internal/feedback"
	"ember/internal/lsp"
	"ember/internal/source"
)

var _ lsp.Engine = (*Engine)(nil)

// Factory returns an lsp.EngineFactory that builds a fresh Engine from opts
// each time the project configuration changes.
func Factory(opts Options) lsp.EngineFactory {
	return func(ctx context.Context) (lsp.Engine, error) {
		e, err := New(opts)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
}

func (e *Engine) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) feedback.Feedback {
	return e.openBuffer(lsp.URIToPath(params.TextDocument.URI), params.TextDocument.Text)
}

// DidChange expects full document sync: the last change carries the whole
// text.
func (e *Engine) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) feedback.Feedback {
	if len(params.ContentChanges) == 0 {
		return feedback.None()
	}
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	return e.changeBuffer(lsp.URIToPath(params.TextDocument.URI), text)
}

func (e *Engine) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) feedback.Feedback {
	var text *string
	if params.Text != "" {
		text = &params.Text
	}
	return e.saveBuffer(ctx, lsp.URIToPath(params.TextDocument.URI), text)
}

func (e *Engine) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) feedback.Feedback {
	return e.closeBuffer(lsp.URIToPath(params.TextDocument.URI))
}

// Format rewrites the whole document. Files with unbalanced delimiters or
// open strings are refused, since the layout rules cannot be applied safely.
func (e *Engine) Format(ctx context.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, feedback.Feedback, error) {
	path := lsp.URIToPath(params.TextDocument.URI)
	if !e.isSource(path) {
		return []protocol.TextEdit{}, feedback.None(), nil
	}
	file, err := e.load(path)
	if err != nil {
		return nil, feedback.None(), fmt.Errorf("format %s: %w", path, err)
	}
	if errs := syntaxErrors(file); len(errs) > 0 {
		first := errs[0]
		return nil, feedback.None(), diag.NewError(
			"Cannot format this file",
			first.Title+". Fix this syntax error before formatting.",
			first.Location)
	}
	formatted := formatSource(file.Content, e.manifest.Config.Format.IndentWidth)
	if formatted == file.Content {
		return []protocol.TextEdit{}, feedback.None(), nil
	}
	return []protocol.TextEdit{{
		Range:   lsp.RangeForSpan(file, diag.Span{Start: 0, End: file.Len()}),
		NewText: formatted,
	}}, feedback.None(), nil
}

func (e *Engine) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, feedback.Feedback, error) {
	name, rng, file, ok := e.identUnder(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, feedback.None(), nil
	}
	decl, declFile, found := e.findDecl(file.Path, name)
	if !found {
		return nil, feedback.None(), nil
	}
	where := declFile.Path
	if rel, err := filepath.Rel(e.manifest.Root, declFile.Path); err == nil && within(e.manifest.Root, declFile.Path) {
		where = rel
	}
	var b strings.Builder
	b.WriteString("```ember\n")
	b.WriteString(strings.TrimSpace(declFile.Line(decl.Line)))
	b.WriteString("\n```\n\n")
	fmt.Fprintf(&b, "Defined in `%s:%d`", filepath.ToSlash(where), decl.Line+1)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: b.String()},
		Range:    &rng,
	}, feedback.None(), nil
}

func (e *Engine) GotoDefinition(ctx context.Context, params *protocol.DefinitionParams) (*protocol.Location, feedback.Feedback, error) {
	name, _, file, ok := e.identUnder(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, feedback.None(), nil
	}
	decl, declFile, found := e.findDecl(file.Path, name)
	if !found {
		return nil, feedback.None(), nil
	}
	return &protocol.Location{
		URI:   lsp.PathToURI(declFile.Path),
		Range: lsp.RangeForSpan(declFile, decl.Span),
	}, feedback.None(), nil
}

// Completion offers keywords and every name declared in the project. Names
// are NFC-normalized when scanned, so equal spellings collapse to one item.
func (e *Engine) Completion(ctx context.Context, params *protocol.CompletionParams) ([]protocol.CompletionItem, feedback.Feedback, error) {
	kinds := make(map[string]protocol.CompletionItemKind)
	for _, kw := range keywords {
		kinds[kw] = protocol.CompletionItemKindKeyword
	}
	if path := lsp.URIToPath(params.TextDocument.URI); e.isSource(path) {
		if _, err := e.lookup(path); err != nil {
			e.logger.Debug("completion without current file", zap.String("path", path), zap.Error(err))
		}
	}
	for _, state := range e.files {
		for _, d := range state.decls {
			if _, ok := kinds[d.Name]; !ok {
				kinds[d.Name] = completionKind(d.Kind)
			}
		}
	}
	labels := make([]string, 0, len(kinds))
	for label := range kinds {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	items := make([]protocol.CompletionItem, 0, len(labels))
	for _, label := range labels {
		items = append(items, protocol.CompletionItem{Label: label, Kind: kinds[label]})
	}
	return items, feedback.None(), nil
}

func completionKind(k DeclKind) protocol.CompletionItemKind {
	switch k {
	case DeclFunction:
		return protocol.CompletionItemKindFunction
	case DeclType:
		return protocol.CompletionItemKindStruct
	}
	return protocol.CompletionItemKindVariable
}

// identUnder resolves the identifier at pos in the document.
func (e *Engine) identUnder(doc protocol.DocumentURI, pos protocol.Position) (string, protocol.Range, *source.File, bool) {
	path := lsp.URIToPath(doc)
	if !e.isSource(path) {
		return "", protocol.Range{}, nil, false
	}
	state, err := e.lookup(path)
	if err != nil {
		e.logger.Debug("document unavailable", zap.String("path", path), zap.Error(err))
		return "", protocol.Range{}, nil, false
	}
	offset := state.file.Offset(lsp.SourcePosition(pos))
	name, span, ok := identAt(state.file, offset)
	if !ok {
		return "", protocol.Range{}, nil, false
	}
	return name, lsp.RangeForSpan(state.file, span), state.file, true
}

// findDecl looks for name in path first, then in the other analyzed files
// in path order.
func (e *Engine) findDecl(path, name string) (Decl, *source.File, bool) {
	if state, ok := e.files[path]; ok {
		for _, d := range state.decls {
			if d.Name == name {
				return d, state.file, true
			}
		}
	}
	others := make([]string, 0, len(e.files))
	for p := range e.files {
		if p != path {
			others = append(others, p)
		}
	}
	sort.Strings(others)
	for _, p := range others {
		state := e.files[p]
		for _, d := range state.decls {
			if d.Name == name {
				return d, state.file, true
			}
		}
	}
	return Decl{}, nil, false
}
