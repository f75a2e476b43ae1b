// Package llm adapts hosted model APIs to the small interfaces the programs need.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minhyannv/docqa-go/pkg/config"
	loggerpkg "github.com/minhyannv/docqa-go/pkg/logger"
)

// Prompt is one stateless request: a system instruction and a single user message.
type Prompt struct {
	System string
	User   string
}

// Embedder turns texts into vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer returns the model's reply to a prompt.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// StreamCompleter writes reply deltas to w as they arrive and returns the full reply.
type StreamCompleter interface {
	CompleteStream(ctx context.Context, p Prompt, w io.Writer) (string, error)
}

// Provider is a hosted backend offering both embeddings and completions.
type Provider interface {
	Embedder
	Completer
	StreamCompleter
	Name() string
}

var (
	errEmptyChoices = errors.New("empty completion choices")
	errEmptyText    = errors.New("model returned empty text")
)

// New builds the provider selected by cfg.Provider. The credential must already be validated.
func New(ctx context.Context, cfg config.Config, log loggerpkg.Logger) (Provider, error) {
	log = loggerpkg.OrNop(log)
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAI(cfg, log), nil
	case config.ProviderGemini:
		return NewGemini(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

// checkVectors verifies an embedding response lines up with its inputs.
func checkVectors(vectors [][]float32, want int) error {
	if len(vectors) != want {
		return fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), want)
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("empty embedding at index %d", i)
		}
	}
	return nil
}

func trimmedInputs(texts []string) ([]string, error) {
	out := make([]string, len(texts))
	for i, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			return nil, fmt.Errorf("empty text for embedding at index %d", i)
		}
		out[i] = t
	}
	return out, nil
}
