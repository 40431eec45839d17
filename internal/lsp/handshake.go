package lsp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// ErrExitWithoutShutdown signals an "exit" that was not preceded by a
// shutdown request.
var ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")

// HandshakeOptions configures Initialize.
type HandshakeOptions struct {
	ServerName    string
	ServerVersion string
	Logger        *zap.Logger
}

// Initialize waits for the client's initialize request, answers it with the
// server capabilities and returns the client's parameters. Requests that
// arrive first are answered with "server not initialized"; notifications are
// dropped except exit, which aborts with ErrExitWithoutShutdown.
func Initialize(ctx context.Context, t Transport, opts HandshakeOptions) (*protocol.InitializeParams, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	for {
		msg, err := t.Receive(ctx)
		if err != nil {
			return nil, fmt.Errorf("await initialize: %w", err)
		}
		switch m := msg.(type) {
		case *jsonrpc2.Call:
			if m.Method() != methodInitialize {
				logger.Warn("request before initialize", zap.String("method", m.Method()))
				if err := sendError(ctx, t, m.ID(), codeServerNotInitialized, "server not initialized"); err != nil {
					return nil, err
				}
				continue
			}
			var params protocol.InitializeParams
			if len(m.Params()) > 0 {
				if err := decodeParams(m.Method(), m.Params(), &params); err != nil {
					if err := sendError(ctx, t, m.ID(), jsonrpc2.InvalidParams, err.Error()); err != nil {
						return nil, err
					}
					continue
				}
			}
			result := initializeResult{Capabilities: defaultServerCapabilities()}
			if opts.ServerName != "" {
				result.ServerInfo = &serverInfo{Name: opts.ServerName, Version: opts.ServerVersion}
			}
			if err := sendResult(ctx, t, m.ID(), result); err != nil {
				return nil, fmt.Errorf("respond to initialize: %w", err)
			}
			fields := []zap.Field{zap.String("root", WorkspaceRoot(&params))}
			if params.ClientInfo != nil {
				fields = append(fields, zap.String("client", params.ClientInfo.Name))
			}
			logger.Info("initialized", fields...)
			return &params, nil

		case *jsonrpc2.Notification:
			if m.Method() == methodExit {
				return nil, ErrExitWithoutShutdown
			}
			logger.Debug("notification before initialize", zap.String("method", m.Method()))
		}
	}
}

// AwaitExit reads until the exit notification or end of input after a
// shutdown. Requests in between are refused.
func AwaitExit(ctx context.Context, t Transport, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for {
		msg, err := t.Receive(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("await exit: %w", err)
		}
		switch m := msg.(type) {
		case *jsonrpc2.Notification:
			if m.Method() == methodExit {
				return nil
			}
		case *jsonrpc2.Call:
			logger.Warn("request after shutdown", zap.String("method", m.Method()))
			if err := sendError(ctx, t, m.ID(), jsonrpc2.InvalidRequest, "server is shutting down"); err != nil {
				return err
			}
		}
	}
}

// WorkspaceRoot picks the project directory from the initialize parameters:
// rootUri, then rootPath, then the first workspace folder.
func WorkspaceRoot(params *protocol.InitializeParams) string {
	if params == nil {
		return ""
	}
	root := ""
	if params.RootURI != "" {
		root = URIToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = URIToPath(protocol.DocumentURI(params.WorkspaceFolders[0].URI))
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	return root
}
