package chat

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/minhyannv/docqa-go/pkg/llm"
	"github.com/minhyannv/docqa-go/pkg/llm/llmtest"
)

func TestNewSessionRequiresSystemPrompt(t *testing.T) {
	if _, err := NewSession(&llmtest.Completer{}, "   "); err == nil {
		t.Fatal("expected error for empty system prompt")
	}
	if _, err := NewSession(nil, "sys"); err == nil {
		t.Fatal("expected error for nil completer")
	}
}

// TestReplySendsOnlySystemAndLatestMessage checks that no history leaks into later requests.
func TestReplySendsOnlySystemAndLatestMessage(t *testing.T) {
	completer := &llmtest.Completer{Respond: func(p llm.Prompt) (string, error) {
		return "echo: " + p.User, nil
	}}
	s, err := NewSession(completer, "You are a helpful assistant.")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	if _, err := s.Reply(context.Background(), "my name is Kim"); err != nil {
		t.Fatalf("first reply: %v", err)
	}
	reply, err := s.Reply(context.Background(), "  what is my name?  ")
	if err != nil {
		t.Fatalf("second reply: %v", err)
	}
	if reply != "echo: what is my name?" {
		t.Fatalf("unexpected reply %q", reply)
	}

	if len(completer.Prompts) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(completer.Prompts))
	}
	second := completer.Prompts[1]
	want := llm.Prompt{System: "You are a helpful assistant.", User: "what is my name?"}
	if second != want {
		t.Fatalf("unexpected second prompt: %+v", second)
	}
}

func TestReplyBlankMessageMakesNoRequest(t *testing.T) {
	completer := &llmtest.Completer{Reply: "x"}
	s, _ := NewSession(completer, "sys")
	if _, err := s.Reply(context.Background(), " "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if completer.Count() != 0 {
		t.Fatalf("expected no requests, got %d", completer.Count())
	}
}

func TestReplyPropagatesError(t *testing.T) {
	s, _ := NewSession(&llmtest.Completer{Err: llmtest.ErrQuota}, "sys")
	if _, err := s.Reply(context.Background(), "hi"); !errors.Is(err, llmtest.ErrQuota) {
		t.Fatalf("expected quota error, got %v", err)
	}
}

func TestStreamWritesReply(t *testing.T) {
	s, _ := NewSession(&llmtest.Completer{Reply: "streamed reply"}, "sys")
	var buf bytes.Buffer
	reply, err := s.Stream(context.Background(), "hi", &buf)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if reply != "streamed reply" || buf.String() != "streamed reply" {
		t.Fatalf("unexpected stream output: reply=%q written=%q", reply, buf.String())
	}
}

type completeOnly struct{ reply string }

func (c completeOnly) Complete(context.Context, llm.Prompt) (string, error) { return c.reply, nil }

func TestStreamFallsBackToComplete(t *testing.T) {
	s, _ := NewSession(completeOnly{reply: "whole"}, "sys")
	var buf bytes.Buffer
	if _, err := s.Stream(context.Background(), "hi", &buf); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if buf.String() != "whole" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

// TestStreamTrimsLikeReply returns the same text in both chat modes.
func TestStreamTrimsLikeReply(t *testing.T) {
	s, _ := NewSession(&llmtest.Completer{Reply: "  padded reply \n"}, "sys")
	var buf bytes.Buffer
	streamed, err := s.Stream(context.Background(), "hi", &buf)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	replied, err := s.Reply(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if streamed != "padded reply" || streamed != replied {
		t.Fatalf("modes disagree: stream=%q reply=%q", streamed, replied)
	}

	fallback, _ := NewSession(completeOnly{reply: " whole "}, "sys")
	if got, _ := fallback.Stream(context.Background(), "hi", &bytes.Buffer{}); got != "whole" {
		t.Fatalf("unexpected fallback reply %q", got)
	}
}
