// Package repl runs the line-oriented console loop shared by both programs.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	loggerpkg "github.com/minhyannv/docqa-go/pkg/logger"
)

const (
	exitCommand   = "exit"
	maxInputBytes = 1024 * 1024
)

// TurnFunc handles one line of user input and returns the text to print.
type TurnFunc func(ctx context.Context, input string) (string, error)

// Options configures the loop's console text.
type Options struct {
	Welcome        []string
	UserLabel      string
	AssistantLabel string
	Goodbye        string
	// ErrorHint is printed after a failed turn.
	ErrorHint string
	// Streamed means the turn writes its own reply to out; the loop only prints the label.
	Streamed bool
	Logger   loggerpkg.Logger
}

func (o Options) withDefaults() Options {
	if o.UserLabel == "" {
		o.UserLabel = "You: "
	}
	if o.AssistantLabel == "" {
		o.AssistantLabel = "AI: "
	}
	if o.Goodbye == "" {
		o.Goodbye = "Goodbye!"
	}
	o.Logger = loggerpkg.OrNop(o.Logger)
	return o
}

// IsExit reports whether input is the exit command, in any letter case.
func IsExit(input string) bool {
	return strings.EqualFold(strings.TrimSpace(input), exitCommand)
}

// Run reads lines from in until "exit" or end of input. Each non-empty line other
// than "exit" triggers exactly one turn; a failed turn is reported and the loop continues.
func Run(ctx context.Context, in io.Reader, out io.Writer, opts Options, turn TurnFunc) error {
	if in == nil {
		return fmt.Errorf("input reader is required")
	}
	if turn == nil {
		return fmt.Errorf("turn handler is required")
	}
	if out == nil {
		out = io.Discard
	}
	if ctx == nil {
		ctx = context.Background()
	}
	opts = opts.withDefaults()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxInputBytes)

	for _, line := range opts.Welcome {
		_, _ = fmt.Fprintln(out, line)
	}

	turns := 0
	for {
		_, _ = fmt.Fprint(out, opts.UserLabel)
		if !scanner.Scan() {
			// End of input is treated like "exit".
			_, _ = fmt.Fprintln(out)
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if IsExit(input) {
			break
		}

		turns++
		opts.Logger.Debug("repl: turn start", map[string]any{"turn": turns, "bytes": len(input)})

		if opts.Streamed {
			_, _ = fmt.Fprint(out, opts.AssistantLabel)
		}
		reply, err := turn(ctx, input)
		if err != nil {
			if opts.Streamed {
				_, _ = fmt.Fprintln(out)
			}
			opts.Logger.Debug("repl: turn failed", map[string]any{"turn": turns, "error": err.Error()})
			_, _ = fmt.Fprintf(out, "Error: %v\n", err)
			if opts.ErrorHint != "" {
				_, _ = fmt.Fprintln(out, opts.ErrorHint)
			}
			_, _ = fmt.Fprintln(out)
			continue
		}

		if opts.Streamed {
			_, _ = fmt.Fprint(out, "\n\n")
		} else {
			_, _ = fmt.Fprintf(out, "%s%s\n\n", opts.AssistantLabel, reply)
		}
	}

	_, _ = fmt.Fprintln(out, opts.Goodbye)

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
