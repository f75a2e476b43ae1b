package repl

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

type recorder struct {
	inputs []string
	fail   map[string]error
}

func (r *recorder) turn(_ context.Context, input string) (string, error) {
	r.inputs = append(r.inputs, input)
	if err := r.fail[input]; err != nil {
		return "", err
	}
	return "answer to " + input, nil
}

func TestIsExit(t *testing.T) {
	for _, in := range []string{"exit", "Exit", "EXIT", "  eXiT  "} {
		if !IsExit(in) {
			t.Fatalf("expected %q to exit", in)
		}
	}
	for _, in := range []string{"", "exit now", "quit", "/exit"} {
		if IsExit(in) {
			t.Fatalf("expected %q not to exit", in)
		}
	}
}

// TestRunExitStopsBeforeDispatch ensures nothing after "exit" is processed.
func TestRunExitStopsBeforeDispatch(t *testing.T) {
	r := &recorder{}
	var out bytes.Buffer

	err := Run(context.Background(), strings.NewReader("hello\nEXIT\nafter exit\n"), &out, Options{}, r.turn)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(r.inputs) != 1 || r.inputs[0] != "hello" {
		t.Fatalf("expected only one dispatched turn, got %#v", r.inputs)
	}
	if !strings.Contains(out.String(), "AI: answer to hello\n") {
		t.Fatalf("missing reply in output:\n%s", out.String())
	}
	if !strings.HasSuffix(out.String(), "Goodbye!\n") {
		t.Fatalf("expected goodbye at the end:\n%s", out.String())
	}
}

// TestRunImmediateExitMakesNoCalls covers the exit keyword as the first input.
func TestRunImmediateExitMakesNoCalls(t *testing.T) {
	r := &recorder{}
	if err := Run(context.Background(), strings.NewReader("Exit\n"), &bytes.Buffer{}, Options{}, r.turn); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(r.inputs) != 0 {
		t.Fatalf("expected no turns, got %#v", r.inputs)
	}
}

// TestRunOneTurnPerLine dispatches each non-empty line exactly once and skips blanks.
func TestRunOneTurnPerLine(t *testing.T) {
	r := &recorder{}
	var out bytes.Buffer
	in := "first\n\n   \nsecond\n"

	if err := Run(context.Background(), strings.NewReader(in), &out, Options{AssistantLabel: "AI (RAG): "}, r.turn); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Join(r.inputs, "|") != "first|second" {
		t.Fatalf("unexpected turns %#v", r.inputs)
	}
	if strings.Count(out.String(), "AI (RAG): ") != 2 {
		t.Fatalf("expected two replies:\n%s", out.String())
	}
}

// TestRunEOFEndsLikeExit treats end of input as a normal exit.
func TestRunEOFEndsLikeExit(t *testing.T) {
	r := &recorder{}
	var out bytes.Buffer
	if err := Run(context.Background(), strings.NewReader("only"), &out, Options{Goodbye: "Ending the chat"}, r.turn); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(r.inputs) != 1 {
		t.Fatalf("expected one turn, got %d", len(r.inputs))
	}
	if !strings.HasSuffix(out.String(), "Ending the chat\n") {
		t.Fatalf("expected goodbye:\n%s", out.String())
	}
}

// TestRunContinuesAfterTurnError keeps the session alive after a failed request.
func TestRunContinuesAfterTurnError(t *testing.T) {
	r := &recorder{fail: map[string]error{"bad": errors.New("quota exceeded")}}
	var out bytes.Buffer
	opts := Options{ErrorHint: "Check your API key and credit."}

	if err := Run(context.Background(), strings.NewReader("bad\ngood\nexit\n"), &out, opts, r.turn); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Join(r.inputs, "|") != "bad|good" {
		t.Fatalf("expected both turns dispatched, got %#v", r.inputs)
	}
	text := out.String()
	if strings.Count(text, "Error: quota exceeded") != 1 {
		t.Fatalf("expected error printed once:\n%s", text)
	}
	if !strings.Contains(text, "Check your API key and credit.") {
		t.Fatalf("expected hint:\n%s", text)
	}
	if !strings.Contains(text, "AI: answer to good") {
		t.Fatalf("expected loop to continue after error:\n%s", text)
	}
}

func TestRunStreamedPrintsLabelOnly(t *testing.T) {
	var out bytes.Buffer
	turn := func(_ context.Context, input string) (string, error) {
		out.WriteString("streamed")
		return "streamed", nil
	}
	if err := Run(context.Background(), strings.NewReader("hi\nexit\n"), &out, Options{Streamed: true}, turn); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Count(out.String(), "streamed") != 1 {
		t.Fatalf("reply should not be printed twice:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "AI: streamed\n") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestRunRequiresInputAndTurn(t *testing.T) {
	if err := Run(context.Background(), nil, nil, Options{}, func(context.Context, string) (string, error) { return "", nil }); err == nil {
		t.Fatal("expected error for nil input")
	}
	if err := Run(context.Background(), strings.NewReader(""), nil, Options{}, nil); err == nil {
		t.Fatal("expected error for nil turn")
	}
}

func TestReportFailurePrintsBlock(t *testing.T) {
	var out bytes.Buffer
	ReportFailure(&out, errors.New("embed chunks 0-3: 401 Unauthorized"), CreditHint)
	want := "\n--- Error occurred ---\nerror message: embed chunks 0-3: 401 Unauthorized\n" + CreditHint + "\n"
	if out.String() != want {
		t.Fatalf("unexpected block:\n%q", out.String())
	}

	out.Reset()
	ReportFailure(&out, nil, CreditHint)
	if out.Len() != 0 {
		t.Fatalf("nil error should print nothing, got %q", out.String())
	}
}
