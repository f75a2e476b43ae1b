// Package chat sends one-shot messages to a hosted chat model under a fixed system instruction.
package chat

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/minhyannv/docqa-go/pkg/llm"
	loggerpkg "github.com/minhyannv/docqa-go/pkg/logger"
)

// ErrEmptyMessage is returned for blank user input.
var ErrEmptyMessage = errors.New("message is required")

// Session holds the system instruction. It keeps no conversation history:
// every request is exactly [system, user].
type Session struct {
	completer    llm.Completer
	systemPrompt string
	logger       loggerpkg.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger injects a logger.
func WithLogger(l loggerpkg.Logger) Option {
	return func(s *Session) {
		s.logger = loggerpkg.OrNop(l)
	}
}

// NewSession builds a session around completer.
func NewSession(completer llm.Completer, systemPrompt string, opts ...Option) (*Session, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	systemPrompt = strings.TrimSpace(systemPrompt)
	if systemPrompt == "" {
		return nil, errors.New("system prompt is empty")
	}
	s := &Session{
		completer:    completer,
		systemPrompt: systemPrompt,
		logger:       loggerpkg.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// SystemPrompt returns the fixed system instruction.
func (s *Session) SystemPrompt() string { return s.systemPrompt }

func (s *Session) prompt(message string) (llm.Prompt, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return llm.Prompt{}, ErrEmptyMessage
	}
	s.logger.Debug("chat: sending message", map[string]any{"bytes": len(message)})
	return llm.Prompt{System: s.systemPrompt, User: message}, nil
}

// Reply sends message and returns the model's reply.
func (s *Session) Reply(ctx context.Context, message string) (string, error) {
	p, err := s.prompt(message)
	if err != nil {
		return "", err
	}
	reply, err := s.completer.Complete(ctx, p)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// Stream writes the reply to w while it is generated and returns it trimmed, like Reply. The completer must
// implement llm.StreamCompleter; otherwise the full reply is written at once.
func (s *Session) Stream(ctx context.Context, message string, w io.Writer) (string, error) {
	p, err := s.prompt(message)
	if err != nil {
		return "", err
	}
	sc, ok := s.completer.(llm.StreamCompleter)
	if !ok {
		reply, err := s.completer.Complete(ctx, p)
		if err != nil {
			return "", err
		}
		_, _ = io.WriteString(w, reply)
		return strings.TrimSpace(reply), nil
	}
	reply, err := sc.CompleteStream(ctx, p, w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}
