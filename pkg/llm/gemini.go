package llm

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minhyannv/docqa-go/pkg/config"
	loggerpkg "github.com/minhyannv/docqa-go/pkg/logger"
	"google.golang.org/genai"
)

// Gemini talks to the Gemini API through the genai SDK.
type Gemini struct {
	client         *genai.Client
	model          string
	embeddingModel string
	logger         loggerpkg.Logger
}

// NewGemini builds a Gemini adapter. No request is made until first use.
func NewGemini(ctx context.Context, cfg config.Config, log loggerpkg.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY or GOOGLE_API_KEY is not set", config.ErrMissingCredential)
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{
		client:         c,
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		logger:         loggerpkg.OrNop(log),
	}, nil
}

func (g *Gemini) Name() string { return config.ProviderGemini }

func (g *Gemini) generateConfig(p Prompt) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if p.System != "" {
		cfg.SystemInstruction = genai.Text(p.System)[0]
	}
	return cfg
}

// Complete sends one GenerateContent request.
func (g *Gemini) Complete(ctx context.Context, p Prompt) (string, error) {
	g.logger.Debug("gemini: generate content", map[string]any{
		"model":      g.model,
		"user_bytes": len(p.User),
	})
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(p.User), g.generateConfig(p))
	if err != nil {
		return "", fmt.Errorf("gemini generateContent: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("empty response from gemini")
	}
	txt := strings.TrimSpace(resp.Text())
	if txt == "" {
		return "", errEmptyText
	}
	return txt, nil
}

// CompleteStream streams partial text to w and returns the joined reply.
func (g *Gemini) CompleteStream(ctx context.Context, p Prompt, w io.Writer) (string, error) {
	if w == nil {
		w = io.Discard
	}
	var sb strings.Builder
	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, genai.Text(p.User), g.generateConfig(p)) {
		if err != nil {
			return "", fmt.Errorf("gemini stream: %w", err)
		}
		if resp == nil {
			continue
		}
		part := resp.Text()
		if part == "" {
			continue
		}
		sb.WriteString(part)
		_, _ = io.WriteString(w, part)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", errEmptyText
	}
	return sb.String(), nil
}

// Embed requests one embedding per text in a single EmbedContent call.
func (g *Gemini) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	inputs, err := trimmedInputs(texts)
	if err != nil {
		return nil, err
	}

	contents := make([]*genai.Content, 0, len(inputs))
	for _, t := range inputs {
		contents = append(contents, genai.Text(t)...)
	}

	g.logger.Debug("gemini: embedding batch", map[string]any{
		"model": g.embeddingModel,
		"count": len(inputs),
	})
	resp, err := g.client.Models.EmbedContent(ctx, g.embeddingModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}

	vectors := make([][]float32, 0, len(resp.Embeddings))
	for _, e := range resp.Embeddings {
		if e == nil {
			vectors = append(vectors, nil)
			continue
		}
		vectors = append(vectors, e.Values)
	}
	if err := checkVectors(vectors, len(inputs)); err != nil {
		return nil, err
	}
	return vectors, nil
}

var _ Provider = (*Gemini)(nil)
