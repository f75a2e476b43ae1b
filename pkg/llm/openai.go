package llm

import (
	"context"
	"errors"
	"io"

	"github.com/minhyannv/docqa-go/pkg/config"
	loggerpkg "github.com/minhyannv/docqa-go/pkg/logger"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI talks to the OpenAI chat completion and embedding endpoints.
type OpenAI struct {
	client         openai.Client
	model          string
	embeddingModel string
	logger         loggerpkg.Logger
}

// NewOpenAI builds an adapter from cfg. Extra request options are appended last.
func NewOpenAI(cfg config.Config, log loggerpkg.Logger, extra ...option.RequestOption) *OpenAI {
	return &OpenAI{
		client:         newOpenAIClient(cfg, extra...),
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		logger:         loggerpkg.OrNop(log),
	}
}

func newOpenAIClient(cfg config.Config, extra ...option.RequestOption) openai.Client {
	opts := []option.RequestOption{}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	opts = append(opts, extra...)
	return openai.NewClient(opts...)
}

func (o *OpenAI) Name() string { return config.ProviderOpenAI }

func (o *OpenAI) params(p Prompt) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if p.System != "" {
		messages = append(messages, openai.SystemMessage(p.System))
	}
	messages = append(messages, openai.UserMessage(p.User))
	return openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: messages,
	}
}

// Complete sends one non-streaming chat completion request.
func (o *OpenAI) Complete(ctx context.Context, p Prompt) (string, error) {
	o.logger.Debug("openai: sending chat completion", map[string]any{
		"model":       o.model,
		"user_bytes":  len(p.User),
		"system_size": len(p.System),
	})
	completion, err := o.client.Chat.Completions.New(ctx, o.params(p))
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errEmptyChoices
	}
	o.logger.Debug("openai: chat completion received", map[string]any{
		"choices":       len(completion.Choices),
		"finish_reason": completion.Choices[0].FinishReason,
	})
	return completion.Choices[0].Message.Content, nil
}

// CompleteStream streams content deltas to w and returns the accumulated reply.
func (o *OpenAI) CompleteStream(ctx context.Context, p Prompt, w io.Writer) (string, error) {
	if w == nil {
		w = io.Discard
	}
	o.logger.Debug("openai: sending streaming chat completion", map[string]any{"model": o.model})

	stream := o.client.Chat.Completions.NewStreaming(ctx, o.params(p))
	defer stream.Close()

	acc := openai.ChatCompletionAccumulator{}
	chunks := 0
	for stream.Next() {
		chunk := stream.Current()
		chunks++
		if !acc.AddChunk(chunk) {
			return "", errors.New("failed to accumulate stream")
		}
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			_, _ = io.WriteString(w, chunk.Choices[0].Delta.Content)
		}
	}
	if err := stream.Err(); err != nil {
		return "", err
	}
	if len(acc.Choices) == 0 {
		return "", errors.New("empty streamed completion choices")
	}
	o.logger.Debug("openai: stream completed", map[string]any{"chunks": chunks})
	return acc.Choices[0].Message.Content, nil
}

// Embed requests embeddings for all texts in a single call.
func (o *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	inputs, err := trimmedInputs(texts)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("openai: embedding batch", map[string]any{
		"model": o.embeddingModel,
		"count": len(inputs),
	})
	resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(o.embeddingModel),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
	})
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(inputs))
	for _, item := range resp.Data {
		if item.Index < 0 || int(item.Index) >= len(vectors) {
			continue
		}
		vec := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			vec[i] = float32(v)
		}
		vectors[item.Index] = vec
	}
	if err := checkVectors(vectors, len(inputs)); err != nil {
		return nil, err
	}
	return vectors, nil
}

var _ Provider = (*OpenAI)(nil)
