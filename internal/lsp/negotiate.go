package lsp

import (
	"context"
	"fmt"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"ember/internal/project"
)

const (
	compilingProgressToken = "compiling-ember"
	progressTokenRequestID = "create-compiling-progress-token"
	watchManifestID        = "watch-ember-toml"
	watchManifestRequestID = 1
)

// negotiate reserves the progress token and, when the client can register
// watchers dynamically, asks it to watch the project manifest. The replies
// arrive later as responses and are not waited for.
func (s *Session) negotiate(ctx context.Context) error {
	params := protocol.WorkDoneProgressCreateParams{
		Token: *protocol.NewProgressToken(compilingProgressToken),
	}
	if err := sendCall(ctx, s.transport, jsonrpc2.NewStringID(progressTokenRequestID), methodProgressCreate, &params); err != nil {
		return fmt.Errorf("reserve progress token: %w", err)
	}

	if !supportsWatchedFiles(s.capabilities) {
		s.logger.Warn("client cannot watch files; project reload on config change is disabled",
			zap.String("manifest", project.ManifestName))
		return nil
	}
	if err := sendCall(ctx, s.transport, jsonrpc2.NewNumberID(watchManifestRequestID), methodRegisterCapability, manifestWatchRegistration()); err != nil {
		return fmt.Errorf("register manifest watcher: %w", err)
	}
	return nil
}

func supportsWatchedFiles(caps protocol.ClientCapabilities) bool {
	ws := caps.Workspace
	return ws != nil && ws.DidChangeWatchedFiles != nil && ws.DidChangeWatchedFiles.DynamicRegistration
}

func manifestWatchRegistration() protocol.RegistrationParams {
	return protocol.RegistrationParams{
		Registrations: []protocol.Registration{{
			ID:     watchManifestID,
			Method: methodDidChangeWatchedFiles,
			RegisterOptions: protocol.DidChangeWatchedFilesRegistrationOptions{
				Watchers: []protocol.FileSystemWatcher{{
					GlobPattern: project.ManifestName,
					Kind:        protocol.WatchKindChange,
				}},
			},
		}},
	}
}
