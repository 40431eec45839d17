package lsp

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/segmentio/encoding/json"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"ember/internal/diag"
	"ember/internal/feedback"
)

// memTransport replays queued client messages and records what the server
// sends. Receive returns io.EOF once the queue is drained.
type memTransport struct {
	in      []jsonrpc2.Message
	sent    []jsonrpc2.Message
	sendErr error
	// onReceive runs before each message is handed out, with the number of
	// messages sent so far.
	onReceive func(sent int)
}

func (m *memTransport) Receive(ctx context.Context) (jsonrpc2.Message, error) {
	if len(m.in) == 0 {
		return nil, io.EOF
	}
	if m.onReceive != nil {
		m.onReceive(len(m.sent))
	}
	msg := m.in[0]
	m.in = m.in[1:]
	return msg, nil
}

func (m *memTransport) Send(ctx context.Context, msg jsonrpc2.Message) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *memTransport) notifications(method string) []*jsonrpc2.Notification {
	var out []*jsonrpc2.Notification
	for _, msg := range m.sent {
		if n, ok := msg.(*jsonrpc2.Notification); ok && n.Method() == method {
			out = append(out, n)
		}
	}
	return out
}

func (m *memTransport) calls(method string) []*jsonrpc2.Call {
	var out []*jsonrpc2.Call
	for _, msg := range m.sent {
		if c, ok := msg.(*jsonrpc2.Call); ok && c.Method() == method {
			out = append(out, c)
		}
	}
	return out
}

func (m *memTransport) responses() []*jsonrpc2.Response {
	var out []*jsonrpc2.Response
	for _, msg := range m.sent {
		if r, ok := msg.(*jsonrpc2.Response); ok {
			out = append(out, r)
		}
	}
	return out
}

func mustCall(t *testing.T, id int32, method string, params any) *jsonrpc2.Call {
	t.Helper()
	call, err := jsonrpc2.NewCall(jsonrpc2.NewNumberID(id), method, params)
	if err != nil {
		t.Fatalf("build call %s: %v", method, err)
	}
	return call
}

func mustNotify(t *testing.T, method string, params any) *jsonrpc2.Notification {
	t.Helper()
	n, err := jsonrpc2.NewNotification(method, params)
	if err != nil {
		t.Fatalf("build notification %s: %v", method, err)
	}
	return n
}

// rawMessage decodes a wire message, for params the typed builders cannot
// produce.
func rawMessage(t *testing.T, text string) jsonrpc2.Message {
	t.Helper()
	msg, err := jsonrpc2.DecodeMessage([]byte(text))
	if err != nil {
		t.Fatalf("decode %s: %v", text, err)
	}
	return msg
}

func decodePublish(t *testing.T, n *jsonrpc2.Notification) protocol.PublishDiagnosticsParams {
	t.Helper()
	var params protocol.PublishDiagnosticsParams
	if err := json.Unmarshal(n.Params(), &params); err != nil {
		t.Fatalf("decode publishDiagnostics: %v", err)
	}
	return params
}

func decodeShowMessage(t *testing.T, n *jsonrpc2.Notification) protocol.ShowMessageParams {
	t.Helper()
	var params protocol.ShowMessageParams
	if err := json.Unmarshal(n.Params(), &params); err != nil {
		t.Fatalf("decode showMessage: %v", err)
	}
	return params
}

func errorCode(t *testing.T, r *jsonrpc2.Response) jsonrpc2.Code {
	t.Helper()
	var rpcErr *jsonrpc2.Error
	if !errors.As(r.Err(), &rpcErr) {
		t.Fatalf("response %v carries no error: %v", r.ID(), r.Err())
	}
	return rpcErr.Code
}

// fakeEngine returns scripted feedback and records the order of calls.
type fakeEngine struct {
	name  string
	calls []string

	full      feedback.Feedback
	open      feedback.Feedback
	change    feedback.Feedback
	save      feedback.Feedback
	closed    feedback.Feedback
	hover     *protocol.Hover
	hoverErr  error
	formatErr error
	edits     []protocol.TextEdit
	reqFB     feedback.Feedback

	lastOpen *protocol.DidOpenTextDocumentParams
}

func (f *fakeEngine) record(op string) {
	f.calls = append(f.calls, op)
}

func (f *fakeEngine) Format(ctx context.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, feedback.Feedback, error) {
	f.record("format")
	return f.edits, f.reqFB, f.formatErr
}

func (f *fakeEngine) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, feedback.Feedback, error) {
	f.record("hover")
	return f.hover, f.reqFB, f.hoverErr
}

func (f *fakeEngine) GotoDefinition(ctx context.Context, params *protocol.DefinitionParams) (*protocol.Location, feedback.Feedback, error) {
	f.record("definition")
	return nil, f.reqFB, nil
}

func (f *fakeEngine) Completion(ctx context.Context, params *protocol.CompletionParams) ([]protocol.CompletionItem, feedback.Feedback, error) {
	f.record("completion")
	return []protocol.CompletionItem{{Label: "fn"}}, f.reqFB, nil
}

func (f *fakeEngine) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) feedback.Feedback {
	f.record("didOpen")
	f.lastOpen = params
	return f.open
}

func (f *fakeEngine) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) feedback.Feedback {
	f.record("didSave")
	return f.save
}

func (f *fakeEngine) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) feedback.Feedback {
	f.record("didClose")
	return f.closed
}

func (f *fakeEngine) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) feedback.Feedback {
	f.record("didChange")
	return f.change
}

func (f *fakeEngine) RunFullAnalysis(ctx context.Context) feedback.Feedback {
	f.record("full")
	return f.full
}

// factoryOf hands out engines in order and fails once they run out.
func factoryOf(engines ...*fakeEngine) (EngineFactory, *int) {
	built := 0
	return func(ctx context.Context) (Engine, error) {
		if built >= len(engines) {
			return nil, errors.New("manifest is broken")
		}
		e := engines[built]
		built++
		return e, nil
	}, &built
}

func located(path, src string, start, end uint32, level diag.Level, title string) diag.Diagnostic {
	return diag.Diagnostic{
		Level: level,
		Title: title,
		Location: &diag.Location{
			Path: path,
			Src:  src,
			Span: diag.Span{Start: start, End: end},
		},
	}
}

func watchCapabilities(t *testing.T, dynamic bool) protocol.ClientCapabilities {
	t.Helper()
	raw := `{"workspace":{"didChangeWatchedFiles":{"dynamicRegistration":false}}}`
	if dynamic {
		raw = `{"workspace":{"didChangeWatchedFiles":{"dynamicRegistration":true}}}`
	}
	var caps protocol.ClientCapabilities
	if err := json.Unmarshal([]byte(raw), &caps); err != nil {
		t.Fatalf("decode capabilities: %v", err)
	}
	return caps
}

func newTestSession(t *testing.T, transport *memTransport, caps protocol.ClientCapabilities, engines ...*fakeEngine) *Session {
	t.Helper()
	factory, _ := factoryOf(engines...)
	s, err := NewSession(context.Background(), transport, caps, factory, SessionOptions{})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}
