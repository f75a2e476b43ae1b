package docqa

import (
	"github.com/minhyannv/docqa-go/pkg/llm"
	loggerpkg "github.com/minhyannv/docqa-go/pkg/logger"
)

// Option configures optional runtime dependencies for App.
type Option func(*appDeps)

type appDeps struct {
	logger    loggerpkg.Logger
	embedder  llm.Embedder
	completer llm.Completer
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(d *appDeps) {
		d.logger = l
	}
}

// WithEmbedder replaces the provider's embedder.
func WithEmbedder(e llm.Embedder) Option {
	return func(d *appDeps) {
		d.embedder = e
	}
}

// WithCompleter replaces the provider's completer.
func WithCompleter(c llm.Completer) Option {
	return func(d *appDeps) {
		d.completer = c
	}
}
