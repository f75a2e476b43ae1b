package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func fixedLogger(buf *bytes.Buffer, min Level) writerLogger {
	return writerLogger{
		w:   buf,
		min: min,
		now: func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
}

// TestWriterLoggerFiltersBelowMinimum ensures debug lines are dropped at info level.
func TestWriterLoggerFiltersBelowMinimum(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, LevelInfo)

	l.Debug("hidden", nil)
	l.Info("index built", map[string]any{"chunks": 3})

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered:\n%s", out)
	}
	want := "2024-01-02T03:04:05Z INFO  index built obj={\"chunks\":3}\n"
	if out != want {
		t.Fatalf("unexpected output:\nwant %q\ngot  %q", want, out)
	}
}

// TestWriterLoggerFallsBackOnMarshalError keeps the line when obj is not JSON-encodable.
func TestWriterLoggerFallsBackOnMarshalError(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, LevelDebug)

	l.Warn("bad obj", map[string]any{"ch": make(chan int)})
	if !strings.Contains(buf.String(), "WARN  bad obj obj=") {
		t.Fatalf("expected fallback formatting, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"loud":    LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOrNop(t *testing.T) {
	if _, ok := OrNop(nil).(NopLogger); !ok {
		t.Fatal("expected NopLogger for nil input")
	}
}

// TestForLevel checks the configured level and that verbose overrides it.
func TestForLevel(t *testing.T) {
	var buf bytes.Buffer
	ForLevel(&buf, "warn", false).Info("dropped", nil)
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	ForLevel(&buf, "warn", false).Warn("kept", nil)
	if !strings.Contains(buf.String(), "WARN  kept") {
		t.Fatalf("expected warn line, got %q", buf.String())
	}

	buf.Reset()
	ForLevel(&buf, "error", true).Debug("verbose wins", nil)
	if !strings.Contains(buf.String(), "DEBUG verbose wins") {
		t.Fatalf("expected debug line with verbose, got %q", buf.String())
	}
}
