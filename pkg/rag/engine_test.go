package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/minhyannv/docqa-go/pkg/documents"
	"github.com/minhyannv/docqa-go/pkg/index"
	"github.com/minhyannv/docqa-go/pkg/llm"
	"github.com/minhyannv/docqa-go/pkg/llm/llmtest"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, reply string) (*Engine, *llmtest.Embedder, *llmtest.Completer) {
	t.Helper()
	docs := []documents.Document{
		{ID: "d1", Path: "billing/refunds.md", Title: "Refunds", Content: "Refunds are processed within five business days."},
		{ID: "d2", Path: "shipping.txt", Title: "shipping", Content: "Orders ship from the warehouse every weekday morning."},
	}
	embedder := &llmtest.Embedder{}
	idx, err := index.Build(context.Background(), docs, embedder, index.BuildOptions{})
	require.NoError(t, err)

	completer := &llmtest.Completer{Reply: reply}
	return NewEngine(idx, embedder, completer, Options{TopK: 1}), embedder, completer
}

func TestAskUsesRetrievedContext(t *testing.T) {
	engine, embedder, completer := newTestEngine(t, "  Five business days.  ")
	callsBefore := embedder.Calls

	answer, err := engine.Ask(context.Background(), "How long do refunds take?")
	require.NoError(t, err)
	require.Equal(t, "Five business days.", answer.Text)
	require.Len(t, answer.Sources, 1)
	require.Equal(t, "billing/refunds.md", answer.Sources[0].Path)

	require.Equal(t, callsBefore+1, embedder.Calls, "one embedding call per question")
	require.Equal(t, 1, completer.Count(), "one completion call per question")

	prompt := completer.Prompts[0]
	require.Contains(t, prompt.User, "Refunds are processed within five business days.")
	require.Contains(t, prompt.User, "Query: How long do refunds take?")
	require.NotContains(t, prompt.User, "warehouse", "only top-k chunks are sent")
	require.Contains(t, prompt.System, "only the context")
}

func TestAskRejectsBlankQuestion(t *testing.T) {
	engine, _, completer := newTestEngine(t, "x")
	_, err := engine.Ask(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyQuestion)
	require.Zero(t, completer.Count())
}

func TestAskPropagatesCompleterError(t *testing.T) {
	engine, _, completer := newTestEngine(t, "")
	completer.Err = llmtest.ErrQuota

	_, err := engine.Ask(context.Background(), "refunds?")
	require.ErrorIs(t, err, llmtest.ErrQuota)
}

func TestAskTurnsAreIndependent(t *testing.T) {
	engine, _, completer := newTestEngine(t, "ok")

	_, err := engine.Ask(context.Background(), "first question about refunds")
	require.NoError(t, err)
	_, err = engine.Ask(context.Background(), "second question about shipping")
	require.NoError(t, err)

	require.Len(t, completer.Prompts, 2)
	require.NotContains(t, completer.Prompts[1].User, "first question")
}

func TestRebuildKeepsOldIndexOnFailure(t *testing.T) {
	engine, embedder, _ := newTestEngine(t, "ok")
	old := engine.Index()

	embedder.Err = llmtest.ErrQuota
	err := engine.Rebuild(context.Background(), []documents.Document{{ID: "n", Path: "new.txt", Content: "new text"}})
	require.Error(t, err)
	require.Same(t, old, engine.Index())

	embedder.Err = nil
	require.ErrorIs(t, engine.Rebuild(context.Background(), nil), index.ErrNoDocuments)

	require.NoError(t, engine.Rebuild(context.Background(), []documents.Document{{ID: "n", Path: "new.txt", Content: "new text"}}))
	require.NotSame(t, old, engine.Index())
	require.Equal(t, 1, engine.Index().Documents())
}

func TestBuildPromptTrimsLongChunks(t *testing.T) {
	long := strings.Repeat("가", maxChunkChars+50)
	p := buildPrompt("질문", []index.Result{{Chunk: index.Chunk{Source: "a.txt", Content: long}}})
	require.Contains(t, p.User, strings.Repeat("가", maxChunkChars)+"...")
	require.NotContains(t, p.User, strings.Repeat("가", maxChunkChars+1))
}

func TestLanguageInstruction(t *testing.T) {
	require.Equal(t, "Answer in Korean.", languageInstruction("이 문서에서 환불 정책은 어떻게 되어 있나요?"))
	require.Equal(t, "Answer in the same language as the question.", languageInstruction("??"))
}

var _ llm.Completer = (*llmtest.Completer)(nil)

func TestBuildPromptIncludesMetadata(t *testing.T) {
	chunk := index.Chunk{
		Source:   "guide.md",
		Title:    "Install Guide",
		Content:  "Run the installer.",
		Metadata: map[string]string{"version": "2", "tags": "setup, linux"},
	}
	p := buildPrompt("How do I install?", []index.Result{{Chunk: chunk}})
	require.Contains(t, p.User, "[1] source=guide.md title=Install Guide tags=setup, linux version=2\n")
}
