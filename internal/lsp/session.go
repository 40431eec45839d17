// Package lsp adapts an analysis Engine to the Language Server Protocol. It
// routes client messages to engine operations and publishes the resulting
// feedback as diagnostics and messages.
package lsp

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// State is the lifecycle stage of a Session.
type State uint8

const (
	StateStarting State = iota
	StateReady
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// SessionOptions configures a Session.
type SessionOptions struct {
	Logger *zap.Logger
}

// Session serves one client after the initialize handshake. It owns the
// engine and handles one message at a time.
type Session struct {
	transport    Transport
	capabilities protocol.ClientCapabilities
	newEngine    EngineFactory
	engine       Engine
	publisher    *publisher
	logger       *zap.Logger
	state        State
	shutdown     bool
}

// NewSession builds the first engine with factory. A factory error is
// returned as is; there is nothing to serve without an engine.
func NewSession(ctx context.Context, transport Transport, caps protocol.ClientCapabilities, factory EngineFactory, opts SessionOptions) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	engine, err := factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	return &Session{
		transport:    transport,
		capabilities: caps,
		newEngine:    factory,
		engine:       engine,
		publisher:    &publisher{transport: transport, logger: logger},
		logger:       logger,
		state:        StateStarting,
	}, nil
}

// State returns the current lifecycle stage.
func (s *Session) State() State {
	return s.state
}

// ShutdownRequested reports whether Run stopped because of a shutdown
// request, in which case the caller should wait for exit.
func (s *Session) ShutdownRequested() bool {
	return s.shutdown
}

// Run negotiates capabilities, publishes the initial analysis and then
// serves messages until shutdown or end of input. It returns nil in both
// cases and an error only when the session cannot continue.
func (s *Session) Run(ctx context.Context) error {
	if s.state != StateStarting {
		return fmt.Errorf("session already %s", s.state)
	}
	if err := s.start(ctx); err != nil {
		s.state = StateTerminated
		return err
	}
	s.state = StateReady
	s.logger.Info("session ready")

	for s.state == StateReady {
		msg, err := s.transport.Receive(ctx)
		if err != nil {
			s.state = StateTerminated
			if errors.Is(err, io.EOF) {
				s.logger.Info("client closed the connection")
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}

		in := classify(msg)
		step, err := s.route(ctx, in)
		var merr *messageError
		if errors.As(err, &merr) {
			if err := s.reject(ctx, in, merr); err != nil {
				s.state = StateTerminated
				return err
			}
			continue
		}
		if err != nil {
			s.state = StateTerminated
			return err
		}
		if step == nextStop {
			s.state = StateTerminated
			s.logger.Info("shutdown requested")
		}
	}
	return nil
}

func (s *Session) start(ctx context.Context) error {
	if err := s.negotiate(ctx); err != nil {
		return err
	}
	return s.publisher.feedback(ctx, s.engine.RunFullAnalysis(ctx))
}
