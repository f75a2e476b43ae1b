// Package docqa wires ingestion, indexing and the query loop into the document Q&A program.
package docqa

import (
	"context"
	"fmt"
	"io"
	"strings"

	configpkg "github.com/minhyannv/docqa-go/pkg/config"
	"github.com/minhyannv/docqa-go/pkg/documents"
	"github.com/minhyannv/docqa-go/pkg/index"
	"github.com/minhyannv/docqa-go/pkg/llm"
	loggerpkg "github.com/minhyannv/docqa-go/pkg/logger"
	"github.com/minhyannv/docqa-go/pkg/rag"
	"github.com/minhyannv/docqa-go/pkg/repl"
)

// App holds the runtime state of the document Q&A program.
type App struct {
	config    configpkg.Config
	embedder  llm.Embedder
	completer llm.Completer
	logger    loggerpkg.Logger
}

// New validates the credential and prepares the model collaborators.
// No file or network I/O happens before the credential check passes.
func New(ctx context.Context, cfg configpkg.Config, opts ...Option) (*App, error) {
	cfg = configpkg.Normalize(cfg)
	deps := appDeps{logger: loggerpkg.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}
	deps.logger = loggerpkg.OrNop(deps.logger)

	if err := cfg.RequireCredential(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	providerName := "injected"
	if deps.embedder == nil || deps.completer == nil {
		provider, err := llm.New(ctx, cfg, deps.logger)
		if err != nil {
			return nil, fmt.Errorf("create %s client: %w", cfg.Provider, err)
		}
		providerName = provider.Name()
		if deps.embedder == nil {
			deps.embedder = provider
		}
		if deps.completer == nil {
			deps.completer = provider
		}
	}

	deps.logger.Debug("docqa init", map[string]any{
		"provider":        providerName,
		"model":           cfg.Model,
		"embedding_model": cfg.EmbeddingModel,
		"data_dir":        cfg.DataDir,
		"top_k":           cfg.TopK,
		"chunk_size":      cfg.ChunkSize,
		"chunk_overlap":   cfg.ChunkOverlap,
	})

	return &App{
		config:    cfg,
		embedder:  deps.embedder,
		completer: deps.completer,
		logger:    deps.logger,
	}, nil
}

// Run loads the data directory, builds the index and answers questions read from in.
// An empty data directory prints a warning and returns nil without starting the loop.
func (a *App) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if ctx == nil {
		ctx = context.Background()
	}

	_, _ = fmt.Fprintf(out, "Loading documents from %s...\n", a.config.DataDir)
	docs, err := documents.LoadDir(ctx, a.config.DataDir, documents.LoadOptions{Logger: a.logger})
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	if len(docs) == 0 {
		printNoDocuments(out, a.config.DataDir)
		return nil
	}
	_, _ = fmt.Fprintf(out, "Loaded %d document(s).\n", len(docs))

	_, _ = fmt.Fprintln(out, "Building the index. This can take a while for many documents...")
	build := index.BuildOptions{
		Splitter: index.Splitter{Size: a.config.ChunkSize, Overlap: a.config.ChunkOverlap},
		Logger:   a.logger,
	}
	idx, err := index.Build(ctx, docs, a.embedder, build)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Index ready: %d chunk(s) from %d document(s).\n", idx.Len(), idx.Documents())

	engine := rag.NewEngine(idx, a.embedder, a.completer, rag.Options{
		TopK:   a.config.TopK,
		Build:  build,
		Logger: a.logger,
	})

	var watcher *documents.Watcher
	if a.config.Watch {
		watcher, err = documents.NewWatcher(a.config.DataDir, a.logger)
		if err != nil {
			a.logger.Warn("watch disabled", map[string]any{"error": err.Error()})
			_, _ = fmt.Fprintf(out, "Warning: cannot watch %s: %v\n", a.config.DataDir, err)
		} else {
			defer func() { _ = watcher.Close() }()
		}
	}

	turn := func(ctx context.Context, question string) (string, error) {
		if watcher != nil && watcher.Changed() {
			a.reload(ctx, out, engine)
		}
		answer, err := engine.Ask(ctx, question)
		if err != nil {
			return "", err
		}
		return a.formatAnswer(answer), nil
	}

	return repl.Run(ctx, in, out, repl.Options{
		Welcome: []string{
			"",
			"--- The RAG chatbot is ready ---",
			fmt.Sprintf("Ask questions about the documents in %s.", a.config.DataDir),
			"To exit, type 'exit'.",
			"",
		},
		UserLabel:      "You: ",
		AssistantLabel: "AI (RAG): ",
		Goodbye:        "Shutting down the chatbot.",
		ErrorHint:      repl.CreditHint,
		Logger:         a.logger,
	}, turn)
}

// reload re-reads the data directory and swaps in a new index. The old index stays on any failure.
func (a *App) reload(ctx context.Context, out io.Writer, engine *rag.Engine) {
	_, _ = fmt.Fprintln(out, "Documents changed, rebuilding the index...")
	docs, err := documents.LoadDir(ctx, a.config.DataDir, documents.LoadOptions{Logger: a.logger})
	if err == nil && len(docs) == 0 {
		err = index.ErrNoDocuments
	}
	if err == nil {
		err = engine.Rebuild(ctx, docs)
	}
	if err != nil {
		a.logger.Warn("rebuild failed", map[string]any{"error": err.Error()})
		_, _ = fmt.Fprintf(out, "Rebuild failed, keeping the previous index: %v\n", err)
		return
	}
	idx := engine.Index()
	_, _ = fmt.Fprintf(out, "Index rebuilt: %d chunk(s) from %d document(s).\n", idx.Len(), idx.Documents())
}

func (a *App) formatAnswer(answer rag.Answer) string {
	if !a.config.ShowSources || len(answer.Sources) == 0 {
		return answer.Text
	}
	var b strings.Builder
	b.WriteString(answer.Text)
	b.WriteString("\nSources:")
	for i, s := range answer.Sources {
		fmt.Fprintf(&b, "\n  [%d] %s (score %.3f)", i+1, s.Path, s.Score)
		if s.Title != "" {
			fmt.Fprintf(&b, " %s", s.Title)
		}
	}
	return b.String()
}

func printNoDocuments(out io.Writer, dir string) {
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "--- Warning ---")
	_, _ = fmt.Fprintf(out, "No readable documents found in %s!\n", dir)
	_, _ = fmt.Fprintln(out, "Add PDF or TXT files to that folder to try the RAG chatbot.")
	_, _ = fmt.Fprintf(out, "Formats: %s, plus any other plain-text file.\n", strings.Join(documents.SupportedExtensions(), " "))
	_, _ = fmt.Fprintln(out, "---------------")
	_, _ = fmt.Fprintln(out)
}
