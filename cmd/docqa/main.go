// Package main runs the document Q&A console program.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/minhyannv/docqa-go/pkg/docqa"
	loggerpkg "github.com/minhyannv/docqa-go/pkg/logger"
	"github.com/minhyannv/docqa-go/pkg/repl"
)

// main is the program entry point.
func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, in io.Reader, out, errOut io.Writer) int {
	cfg, err := parseCLIConfig(args, errOut)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}

	appLogger := loggerpkg.ForLevel(errOut, cfg.LogLevel, cfg.Verbose)
	ctx := context.Background()
	app, err := docqa.New(ctx, cfg, docqa.WithLogger(appLogger))
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, "API key found.")

	if err := app.Run(ctx, in, out); err != nil {
		repl.ReportFailure(out, err, repl.CreditHint)
		return 1
	}
	return 0
}
