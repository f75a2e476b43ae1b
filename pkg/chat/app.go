package chat

import (
	"context"
	"fmt"
	"io"

	configpkg "github.com/minhyannv/docqa-go/pkg/config"
	"github.com/minhyannv/docqa-go/pkg/llm"
	loggerpkg "github.com/minhyannv/docqa-go/pkg/logger"
	"github.com/minhyannv/docqa-go/pkg/repl"
)

// AppOption configures optional runtime dependencies for App.
type AppOption func(*appDeps)

type appDeps struct {
	logger    loggerpkg.Logger
	completer llm.Completer
}

// WithAppLogger injects a logger dependency.
func WithAppLogger(l loggerpkg.Logger) AppOption {
	return func(d *appDeps) {
		d.logger = l
	}
}

// WithCompleter replaces the provider's completer.
func WithCompleter(c llm.Completer) AppOption {
	return func(d *appDeps) {
		d.completer = c
	}
}

// App is the direct chat program.
type App struct {
	config  configpkg.Config
	session *Session
	logger  loggerpkg.Logger
}

// NewApp validates the credential and builds the session.
func NewApp(ctx context.Context, cfg configpkg.Config, opts ...AppOption) (*App, error) {
	cfg = configpkg.Normalize(cfg)
	deps := appDeps{logger: loggerpkg.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}
	deps.logger = loggerpkg.OrNop(deps.logger)

	if err := cfg.RequireCredential(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	providerName := "injected"
	if deps.completer == nil {
		provider, err := llm.New(ctx, cfg, deps.logger)
		if err != nil {
			return nil, fmt.Errorf("create %s client: %w", cfg.Provider, err)
		}
		deps.completer = provider
		providerName = provider.Name()
	}

	session, err := NewSession(deps.completer, cfg.SystemPrompt, WithLogger(deps.logger))
	if err != nil {
		return nil, err
	}
	deps.logger.Debug("chat init", map[string]any{
		"provider":      providerName,
		"model":         cfg.Model,
		"stream":        cfg.Stream,
		"system_prompt": session.SystemPrompt(),
	})
	return &App{config: cfg, session: session, logger: deps.logger}, nil
}

// Run chats until "exit" or end of input.
func (a *App) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	turn := a.session.Reply
	if a.config.Stream {
		turn = func(ctx context.Context, message string) (string, error) {
			return a.session.Stream(ctx, message, out)
		}
	}
	return repl.Run(ctx, in, out, repl.Options{
		Welcome: []string{
			"The API key has been successfully retrieved. Starting the chat.",
			"To exit, type 'exit'",
			"",
		},
		UserLabel:      "User: ",
		AssistantLabel: "AI: ",
		Goodbye:        "Ending the chat",
		ErrorHint:      repl.CreditHint,
		Streamed:       a.config.Stream,
		Logger:         a.logger,
	}, turn)
}
