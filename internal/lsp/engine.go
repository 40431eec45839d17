package lsp

import (
	"context"

	"go.lsp.dev/protocol"

	"ember/internal/feedback"
)

// Engine is the analysis backend the session drives. Request methods return
// their result together with feedback to publish; a non-nil error replaces
// the result with a diagnostic.
type Engine interface {
	Format(ctx context.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, feedback.Feedback, error)
	Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, feedback.Feedback, error)
	GotoDefinition(ctx context.Context, params *protocol.DefinitionParams) (*protocol.Location, feedback.Feedback, error)
	Completion(ctx context.Context, params *protocol.CompletionParams) ([]protocol.CompletionItem, feedback.Feedback, error)

	DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) feedback.Feedback
	DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) feedback.Feedback
	DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) feedback.Feedback
	DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) feedback.Feedback

	// RunFullAnalysis checks the whole project. Called once per engine.
	RunFullAnalysis(ctx context.Context) feedback.Feedback
}

// EngineFactory builds an engine from the project configuration on disk.
type EngineFactory func(ctx context.Context) (Engine, error)
