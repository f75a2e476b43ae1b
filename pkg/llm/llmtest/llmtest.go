// Package llmtest provides in-memory collaborators for tests.
package llmtest

import (
	"context"
	"errors"
	"hash/fnv"
	"io"
	"strings"
	"sync"
	"unicode"

	"github.com/minhyannv/docqa-go/pkg/llm"
)

// Dim is the vector size produced by Embedder.
const Dim = 256

// Embedder hashes words into a bag-of-words vector, so texts sharing words score higher.
type Embedder struct {
	mu    sync.Mutex
	Calls int
	Texts []string
	Err   error
	// FailOnCall makes the n-th call (1-based) return Err; zero fails every call when Err is set.
	FailOnCall int
}

func (e *Embedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Calls++
	if e.Err != nil && (e.FailOnCall == 0 || e.FailOnCall == e.Calls) {
		return nil, e.Err
	}
	e.Texts = append(e.Texts, texts...)

	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = Vector(t)
	}
	return out, nil
}

// Vector is the embedding Embedder returns for text.
func Vector(text string) []float32 {
	v := make([]float32, Dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%Dim]++
	}
	if len(words) == 0 {
		v[0] = 1
	}
	return v
}

// Completer records every prompt and answers with Reply (or Err).
type Completer struct {
	mu      sync.Mutex
	Prompts []llm.Prompt
	Reply   string
	Err     error
	// Respond, when set, overrides Reply and Err.
	Respond func(p llm.Prompt) (string, error)
}

func (c *Completer) Complete(_ context.Context, p llm.Prompt) (string, error) {
	c.mu.Lock()
	c.Prompts = append(c.Prompts, p)
	respond := c.Respond
	reply, err := c.Reply, c.Err
	c.mu.Unlock()

	if respond != nil {
		return respond(p)
	}
	return reply, err
}

// CompleteStream writes the reply in two parts to exercise incremental output.
func (c *Completer) CompleteStream(ctx context.Context, p llm.Prompt, w io.Writer) (string, error) {
	reply, err := c.Complete(ctx, p)
	if err != nil {
		return "", err
	}
	half := len(reply) / 2
	_, _ = io.WriteString(w, reply[:half])
	_, _ = io.WriteString(w, reply[half:])
	return reply, nil
}

// Count returns the number of prompts received.
func (c *Completer) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Prompts)
}

// Provider bundles Embedder and Completer.
type Provider struct {
	*Embedder
	*Completer
}

// NewProvider returns a provider with fresh fakes answering reply.
func NewProvider(reply string) *Provider {
	return &Provider{Embedder: &Embedder{}, Completer: &Completer{Reply: reply}}
}

func (p *Provider) Name() string { return "fake" }

// ErrQuota mimics a collaborator refusing work.
var ErrQuota = errors.New("insufficient_quota: You exceeded your current quota")

var _ llm.Provider = (*Provider)(nil)
