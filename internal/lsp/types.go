package lsp

// Server-side capability types are kept minimal: only what the server
// advertises is modelled.

type initializeResult struct {
	Capabilities serverCapabilities `json:"capabilities"`
	ServerInfo   *serverInfo        `json:"serverInfo,omitempty"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type serverCapabilities struct {
	TextDocumentSync           textDocumentSyncOptions `json:"textDocumentSync"`
	HoverProvider              bool                    `json:"hoverProvider"`
	DefinitionProvider         bool                    `json:"definitionProvider"`
	CompletionProvider         *completionOptions      `json:"completionProvider,omitempty"`
	DocumentFormattingProvider bool                    `json:"documentFormattingProvider"`
}

type textDocumentSyncOptions struct {
	OpenClose bool         `json:"openClose"`
	Change    int          `json:"change"`
	Save      *saveOptions `json:"save,omitempty"`
}

type saveOptions struct {
	IncludeText bool `json:"includeText"`
}

type completionOptions struct {
	TriggerCharacters []string `json:"triggerCharacters,omitempty"`
}

// textDocumentSyncFull: clients send the whole document on every change.
const textDocumentSyncFull = 1

func defaultServerCapabilities() serverCapabilities {
	return serverCapabilities{
		TextDocumentSync: textDocumentSyncOptions{
			OpenClose: true,
			Change:    textDocumentSyncFull,
			Save:      &saveOptions{IncludeText: true},
		},
		HoverProvider:              true,
		DefinitionProvider:         true,
		CompletionProvider:         &completionOptions{TriggerCharacters: []string{"."}},
		DocumentFormattingProvider: true,
	}
}
