package lsp

import (
	"context"
	"fmt"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"ember/internal/diag"
	"ember/internal/feedback"
)

// next tells the loop whether to keep reading.
type next uint8

const (
	nextContinue next = iota
	nextStop
)

// route handles one inbound message. A *messageError concerns only that
// message; any other error ends the session.
func (s *Session) route(ctx context.Context, in inbound) (next, error) {
	switch m := in.(type) {
	case request:
		return s.handleRequest(ctx, m)
	case notification:
		return nextContinue, s.handleNotification(ctx, m)
	}
	return nextContinue, nil
}

func (s *Session) handleRequest(ctx context.Context, req request) (next, error) {
	var (
		payload any
		fb      feedback.Feedback
	)
	switch req.kind {
	case requestShutdown:
		s.shutdown = true
		if err := sendResult(ctx, s.transport, req.id, nil); err != nil {
			return nextStop, fmt.Errorf("respond to %s: %w", req.method, err)
		}
		return nextStop, nil

	case requestFormat:
		var params protocol.DocumentFormattingParams
		if err := decodeParams(req.method, req.params, &params); err != nil {
			return nextContinue, err
		}
		edits, efb, err := s.engine.Format(ctx, &params)
		payload, fb = convertResponse(edits, efb, err)

	case requestHover:
		var params protocol.HoverParams
		if err := decodeParams(req.method, req.params, &params); err != nil {
			return nextContinue, err
		}
		hover, efb, err := s.engine.Hover(ctx, &params)
		payload, fb = convertResponse(hover, efb, err)

	case requestDefinition:
		var params protocol.DefinitionParams
		if err := decodeParams(req.method, req.params, &params); err != nil {
			return nextContinue, err
		}
		loc, efb, err := s.engine.GotoDefinition(ctx, &params)
		payload, fb = convertResponse(loc, efb, err)

	case requestCompletion:
		var params protocol.CompletionParams
		if err := decodeParams(req.method, req.params, &params); err != nil {
			return nextContinue, err
		}
		items, efb, err := s.engine.Completion(ctx, &params)
		payload, fb = convertResponse(items, efb, err)

	default:
		return nextContinue, &messageError{
			code:    jsonrpc2.MethodNotFound,
			message: fmt.Sprintf("method not found: %s", req.method),
		}
	}

	if err := s.publisher.feedback(ctx, fb); err != nil {
		return nextStop, err
	}
	if err := sendResult(ctx, s.transport, req.id, payload); err != nil {
		return nextStop, fmt.Errorf("respond to %s: %w", req.method, err)
	}
	return nextContinue, nil
}

func (s *Session) handleNotification(ctx context.Context, n notification) error {
	var fb feedback.Feedback
	switch n.kind {
	case notificationDidOpen:
		var params protocol.DidOpenTextDocumentParams
		if err := decodeParams(n.method, n.params, &params); err != nil {
			return err
		}
		fb = s.engine.DidOpen(ctx, &params)

	case notificationDidSave:
		var params protocol.DidSaveTextDocumentParams
		if err := decodeParams(n.method, n.params, &params); err != nil {
			return err
		}
		fb = s.engine.DidSave(ctx, &params)

	case notificationDidClose:
		var params protocol.DidCloseTextDocumentParams
		if err := decodeParams(n.method, n.params, &params); err != nil {
			return err
		}
		fb = s.engine.DidClose(ctx, &params)

	case notificationDidChange:
		var params protocol.DidChangeTextDocumentParams
		if err := decodeParams(n.method, n.params, &params); err != nil {
			return err
		}
		fb = s.engine.DidChange(ctx, &params)

	case notificationWatchedFilesChanged:
		fb = s.rebuildEngine(ctx)

	default:
		s.logger.Debug("ignoring notification", zap.String("method", n.method))
		return nil
	}
	return s.publisher.feedback(ctx, fb)
}

// rebuildEngine replaces the engine with one built from the current project
// configuration and runs its first full analysis. On failure the current
// engine stays in place.
func (s *Session) rebuildEngine(ctx context.Context) feedback.Feedback {
	s.logger.Info("project configuration changed, rebuilding engine")
	engine, err := s.newEngine(ctx)
	if err != nil {
		s.logger.Error("engine rebuild failed", zap.Error(err))
		var fb feedback.Feedback
		fb.AppendMessage(diag.LevelError, "Could not reload the project configuration", err.Error())
		return fb
	}
	s.engine = engine
	return s.engine.RunFullAnalysis(ctx)
}

// reject applies the per-message failure policy: requests get an error
// response, notifications are dropped.
func (s *Session) reject(ctx context.Context, in inbound, merr *messageError) error {
	switch m := in.(type) {
	case request:
		s.logger.Warn("request rejected",
			zap.String("method", m.method),
			zap.Int32("code", int32(merr.code)),
			zap.Error(merr))
		if err := sendError(ctx, s.transport, m.id, merr.code, merr.message); err != nil {
			return fmt.Errorf("respond to %s: %w", m.method, err)
		}
	case notification:
		s.logger.Warn("notification dropped", zap.String("method", m.method), zap.Error(merr))
	}
	return nil
}
