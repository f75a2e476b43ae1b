package main

import (
	"flag"
	"io"

	configpkg "github.com/minhyannv/docqa-go/pkg/config"
)

// parseCLIConfig loads .env, flags and environment into runtime config.
func parseCLIConfig(args []string, errOut io.Writer) (configpkg.Config, error) {
	configpkg.LoadDotEnv()

	defaults := configpkg.DefaultConfig()
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	fs.SetOutput(errOut)

	system := fs.String("system", defaults.SystemPrompt, "System instruction sent with every message")
	stream := fs.Bool("stream", defaults.Stream, "Stream assistant output")
	verbose := fs.Bool("verbose", defaults.Verbose, "Verbose debug logging")
	if err := fs.Parse(args); err != nil {
		return configpkg.Config{}, err
	}

	cfg := defaults
	cfg.SystemPrompt = *system
	cfg.Stream = *stream
	cfg.Verbose = *verbose
	return configpkg.FromEnv(cfg), nil
}
