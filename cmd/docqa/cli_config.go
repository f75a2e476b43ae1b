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
	fs := flag.NewFlagSet("docqa", flag.ContinueOnError)
	fs.SetOutput(errOut)

	dataDir := fs.String("data_dir", defaults.DataDir, "Directory of documents to index (read recursively)")
	topK := fs.Int("top_k", defaults.TopK, "Number of chunks retrieved per question")
	chunkSize := fs.Int("chunk_size", defaults.ChunkSize, "Chunk size in characters")
	chunkOverlap := fs.Int("chunk_overlap", defaults.ChunkOverlap, "Characters shared by neighbouring chunks")
	watch := fs.Bool("watch", defaults.Watch, "Rebuild the index when files in data_dir change")
	showSources := fs.Bool("show_sources", defaults.ShowSources, "Print the source files behind each answer")
	verbose := fs.Bool("verbose", defaults.Verbose, "Verbose debug logging")
	if err := fs.Parse(args); err != nil {
		return configpkg.Config{}, err
	}

	cfg := defaults
	cfg.DataDir = *dataDir
	cfg.TopK = *topK
	cfg.ChunkSize = *chunkSize
	cfg.ChunkOverlap = *chunkOverlap
	cfg.Watch = *watch
	cfg.ShowSources = *showSources
	cfg.Verbose = *verbose
	return configpkg.FromEnv(cfg), nil
}
