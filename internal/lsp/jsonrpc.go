package lsp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/segmentio/encoding/json"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/zap"
)

// Transport moves whole JSON-RPC messages between the server and one client.
type Transport interface {
	// Receive blocks until the next message arrives. io.EOF means the client
	// closed the stream.
	Receive(ctx context.Context) (jsonrpc2.Message, error)
	Send(ctx context.Context, msg jsonrpc2.Message) error
}

// Conn is a Transport over a byte stream using Content-Length framing.
type Conn struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex
	logger *zap.Logger
}

// NewConn frames messages over in and out, typically stdin and stdout.
func NewConn(in io.Reader, out io.Writer, logger *zap.Logger) *Conn {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Conn{
		in:     bufio.NewReader(in),
		out:    bufio.NewWriter(out),
		logger: logger,
	}
}

// Receive returns the next decodable message. Frames that are not valid
// JSON-RPC are logged and skipped.
func (c *Conn) Receive(ctx context.Context) (jsonrpc2.Message, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		payload, err := readMessage(c.in)
		if err != nil {
			return nil, err
		}
		msg, err := jsonrpc2.DecodeMessage(payload)
		if err != nil {
			c.logger.Warn("skipping malformed message", zap.Error(err), zap.Int("bytes", len(payload)))
			continue
		}
		return msg, nil
	}
}

// Send encodes and flushes msg. It is safe for concurrent use.
func (c *Conn) Send(ctx context.Context, msg jsonrpc2.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if err := writeMessage(c.out, payload); err != nil {
		return err
	}
	return c.out.Flush()
}

func readMessage(r *bufio.Reader) ([]byte, error) {
	contentLength := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "Content-Length") {
			value := strings.TrimSpace(parts[1])
			length, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
			contentLength = length
		}
	}
	if contentLength < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}
	payload := make([]byte, contentLength)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func writeMessage(w io.Writer, payload []byte) error {
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(payload))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func sendResult(ctx context.Context, t Transport, id jsonrpc2.ID, result any) error {
	resp, err := jsonrpc2.NewResponse(id, result, nil)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return t.Send(ctx, resp)
}

func sendError(ctx context.Context, t Transport, id jsonrpc2.ID, code jsonrpc2.Code, message string) error {
	resp, err := jsonrpc2.NewResponse(id, nil, jsonrpc2.NewError(code, message))
	if err != nil {
		return fmt.Errorf("encode error response: %w", err)
	}
	return t.Send(ctx, resp)
}

func sendNotification(ctx context.Context, t Transport, method string, params any) error {
	n, err := jsonrpc2.NewNotification(method, params)
	if err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}
	return t.Send(ctx, n)
}

func sendCall(ctx context.Context, t Transport, id jsonrpc2.ID, method string, params any) error {
	call, err := jsonrpc2.NewCall(id, method, params)
	if err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}
	return t.Send(ctx, call)
}
