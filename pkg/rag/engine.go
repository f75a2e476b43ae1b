// Package rag answers questions from an index of local documents.
package rag

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/minhyannv/docqa-go/pkg/documents"
	"github.com/minhyannv/docqa-go/pkg/index"
	"github.com/minhyannv/docqa-go/pkg/llm"
	loggerpkg "github.com/minhyannv/docqa-go/pkg/logger"
)

// ErrEmptyQuestion is returned by Ask for blank input.
var ErrEmptyQuestion = errors.New("question is required")

const (
	maxChunkChars = 2000
	noContextText = "I could not find anything relevant to that question in the indexed documents."
)

// Source identifies a chunk used to answer a question.
type Source struct {
	Path  string
	Title string
	Score float64
}

// Answer is the model's reply and the excerpts it was given.
type Answer struct {
	Text    string
	Sources []Source
}

// Options configures an Engine.
type Options struct {
	TopK   int
	Build  index.BuildOptions
	Logger loggerpkg.Logger
}

// Engine embeds a question, retrieves the closest chunks and asks the model to answer from them.
type Engine struct {
	index     *index.Index
	embedder  llm.Embedder
	completer llm.Completer
	topK      int
	build     index.BuildOptions
	logger    loggerpkg.Logger
}

// NewEngine wraps a built index.
func NewEngine(idx *index.Index, embedder llm.Embedder, completer llm.Completer, opts Options) *Engine {
	if opts.TopK <= 0 {
		opts.TopK = 2
	}
	log := loggerpkg.OrNop(opts.Logger)
	if opts.Build.Logger == nil {
		opts.Build.Logger = log
	}
	return &Engine{
		index:     idx,
		embedder:  embedder,
		completer: completer,
		topK:      opts.TopK,
		build:     opts.Build,
		logger:    log,
	}
}

// Index returns the index currently answering queries.
func (e *Engine) Index() *index.Index { return e.index }

// Rebuild replaces the index with one built from docs. On failure the old index stays in place.
func (e *Engine) Rebuild(ctx context.Context, docs []documents.Document) error {
	idx, err := index.Build(ctx, docs, e.embedder, e.build)
	if err != nil {
		return err
	}
	e.index = idx
	e.logger.Info("index rebuilt", map[string]any{
		"documents": idx.Documents(),
		"chunks":    idx.Len(),
	})
	return nil
}

// Ask makes exactly one embedding call and, when context is found, one completion call.
func (e *Engine) Ask(ctx context.Context, question string) (Answer, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return Answer{}, ErrEmptyQuestion
	}
	if e.index == nil {
		return Answer{}, errors.New("index is not built")
	}

	vectors, err := e.embedder.Embed(ctx, []string{q})
	if err != nil {
		return Answer{}, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) != 1 {
		return Answer{}, fmt.Errorf("embed question: got %d vectors", len(vectors))
	}

	results, err := e.index.Search(vectors[0], e.topK)
	if err != nil {
		return Answer{}, fmt.Errorf("search index: %w", err)
	}
	e.logger.Debug("rag: retrieved chunks", map[string]any{"count": len(results)})
	if len(results) == 0 {
		return Answer{Text: noContextText}, nil
	}

	text, err := e.completer.Complete(ctx, buildPrompt(q, results))
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	sources := make([]Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, Source{
			Path:  r.Chunk.Source,
			Title: r.Chunk.Title,
			Score: r.Score,
		})
	}
	return Answer{Text: strings.TrimSpace(text), Sources: sources}, nil
}

func buildPrompt(question string, results []index.Result) llm.Prompt {
	var sys strings.Builder
	sys.WriteString("You answer questions using only the context excerpts provided by the user. ")
	sys.WriteString("If the answer is not in the context, say that the documents do not contain it. ")
	sys.WriteString("Do not use prior knowledge and do not invent facts. ")
	sys.WriteString(languageInstruction(question))

	var user strings.Builder
	user.WriteString("Context information is below.\n---------------------\n")
	for i, r := range results {
		fmt.Fprintf(&user, "[%d] source=%s", i+1, r.Chunk.Source)
		if r.Chunk.Title != "" {
			fmt.Fprintf(&user, " title=%s", oneLine(r.Chunk.Title))
		}
		for _, k := range sortedKeys(r.Chunk.Metadata) {
			fmt.Fprintf(&user, " %s=%s", k, oneLine(r.Chunk.Metadata[k]))
		}
		user.WriteString("\n")
		user.WriteString(trimBody(r.Chunk.Content, maxChunkChars))
		user.WriteString("\n\n")
	}
	user.WriteString("---------------------\n")
	user.WriteString("Given the context information and not prior knowledge, answer the query.\n")
	user.WriteString("Query: ")
	user.WriteString(question)
	user.WriteString("\nAnswer:")

	return llm.Prompt{System: sys.String(), User: user.String()}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 160 {
		return string(r[:160]) + "..."
	}
	return s
}

func trimBody(s string, max int) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > max {
		return string(r[:max]) + "..."
	}
	return s
}
