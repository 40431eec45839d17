package lsp

import (
	"context"
	"fmt"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"ember/internal/diag"
	"ember/internal/feedback"
)

// publisher turns Feedback into client notifications.
type publisher struct {
	transport Transport
	logger    *zap.Logger
}

// feedback publishes diagnostics first, then messages.
func (p *publisher) feedback(ctx context.Context, fb feedback.Feedback) error {
	if err := p.diagnostics(ctx, fb); err != nil {
		return err
	}
	return p.messages(ctx, fb.Messages)
}

// diagnostics sends one publishDiagnostics per path in fb, each replacing
// the client's set for that file. Paths not in fb are left untouched.
func (p *publisher) diagnostics(ctx context.Context, fb feedback.Feedback) error {
	var ix indexer
	for _, path := range fb.Paths() {
		list := fb.Diagnostics[path]
		out := make([]protocol.Diagnostic, 0, len(list))
		for _, d := range list {
			out = append(out, diagnosticToProtocol(d, &ix)...)
		}
		if dropped := len(list) - countPrimary(out); dropped > 0 {
			p.logger.Debug("diagnostics not representable", zap.String("path", path), zap.Int("dropped", dropped))
		}
		params := protocol.PublishDiagnosticsParams{
			URI:         PathToURI(path),
			Diagnostics: out,
		}
		if err := sendNotification(ctx, p.transport, methodPublishDiagnostics, params); err != nil {
			return fmt.Errorf("publish diagnostics for %s: %w", path, err)
		}
	}
	return nil
}

// messages sends one showMessage per entry, in order.
func (p *publisher) messages(ctx context.Context, list []diag.Diagnostic) error {
	for _, m := range list {
		typ, ok := messageType(m.Level)
		if !ok {
			typ = protocol.MessageTypeInfo
		}
		params := protocol.ShowMessageParams{Type: typ, Message: m.Message()}
		if err := sendNotification(ctx, p.transport, methodShowMessage, params); err != nil {
			return fmt.Errorf("show message: %w", err)
		}
	}
	return nil
}

func countPrimary(list []protocol.Diagnostic) int {
	n := 0
	for _, d := range list {
		if d.Severity != protocol.DiagnosticSeverityHint {
			n++
		}
	}
	return n
}
