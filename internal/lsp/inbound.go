package lsp

import (
	"bytes"
	"fmt"

	"github.com/segmentio/encoding/json"
	"go.lsp.dev/jsonrpc2"
)

const (
	methodInitialize            = "initialize"
	methodInitialized           = "initialized"
	methodShutdown              = "shutdown"
	methodExit                  = "exit"
	methodFormatting            = "textDocument/formatting"
	methodHover                 = "textDocument/hover"
	methodDefinition            = "textDocument/definition"
	methodCompletion            = "textDocument/completion"
	methodDidOpen               = "textDocument/didOpen"
	methodDidSave               = "textDocument/didSave"
	methodDidClose              = "textDocument/didClose"
	methodDidChange             = "textDocument/didChange"
	methodDidChangeWatchedFiles = "workspace/didChangeWatchedFiles"
	methodPublishDiagnostics    = "textDocument/publishDiagnostics"
	methodShowMessage           = "window/showMessage"
	methodProgressCreate        = "window/workDoneProgress/create"
	methodRegisterCapability    = "client/registerCapability"
)

// codeServerNotInitialized is the LSP error for requests sent before
// initialize.
const codeServerNotInitialized jsonrpc2.Code = -32002

type requestKind uint8

const (
	requestUnknown requestKind = iota
	requestShutdown
	requestFormat
	requestHover
	requestDefinition
	requestCompletion
)

var requestKinds = map[string]requestKind{
	methodShutdown:   requestShutdown,
	methodFormatting: requestFormat,
	methodHover:      requestHover,
	methodDefinition: requestDefinition,
	methodCompletion: requestCompletion,
}

type notificationKind uint8

const (
	notificationIgnored notificationKind = iota
	notificationDidOpen
	notificationDidSave
	notificationDidClose
	notificationDidChange
	notificationWatchedFilesChanged
)

var notificationKinds = map[string]notificationKind{
	methodDidOpen:               notificationDidOpen,
	methodDidSave:               notificationDidSave,
	methodDidClose:              notificationDidClose,
	methodDidChange:             notificationDidChange,
	methodDidChangeWatchedFiles: notificationWatchedFilesChanged,
}

// inbound is a classified client message: request, notification or response.
type inbound interface {
	isInbound()
}

type request struct {
	id     jsonrpc2.ID
	kind   requestKind
	method string
	params []byte
}

type notification struct {
	kind   notificationKind
	method string
	params []byte
}

// response is a reply to one of our own requests; its content is not used.
type response struct {
	id jsonrpc2.ID
}

func (request) isInbound()      {}
func (notification) isInbound() {}
func (response) isInbound()     {}

func classify(msg jsonrpc2.Message) inbound {
	switch m := msg.(type) {
	case *jsonrpc2.Call:
		return request{id: m.ID(), kind: requestKinds[m.Method()], method: m.Method(), params: m.Params()}
	case *jsonrpc2.Notification:
		return notification{kind: notificationKinds[m.Method()], method: m.Method(), params: m.Params()}
	case *jsonrpc2.Response:
		return response{id: m.ID()}
	}
	return response{}
}

// decodeParams fills v from raw request or notification params.
func decodeParams(method string, raw []byte, v any) error {
	if len(raw) == 0 {
		return &messageError{code: jsonrpc2.InvalidParams, message: fmt.Sprintf("%s: missing params", method)}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(v); err != nil {
		return &messageError{
			code:    jsonrpc2.InvalidParams,
			message: fmt.Sprintf("%s: invalid params: %v", method, err),
			err:     err,
		}
	}
	return nil
}

// messageError fails a single message without ending the session. Requests
// are answered with code; notifications are dropped.
type messageError struct {
	code    jsonrpc2.Code
	message string
	err     error
}

func (e *messageError) Error() string {
	return e.message
}

func (e *messageError) Unwrap() error {
	return e.err
}
