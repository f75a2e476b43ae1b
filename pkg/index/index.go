// Package index builds an in-memory vector index over documents and answers
// nearest-neighbour queries by exact cosine similarity.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/minhyannv/docqa-go/pkg/documents"
	"github.com/minhyannv/docqa-go/pkg/llm"
	loggerpkg "github.com/minhyannv/docqa-go/pkg/logger"
)

// ErrNoDocuments is returned by Build for an empty document collection.
var ErrNoDocuments = errors.New("no documents to index")

const defaultBatchSize = 64

// Chunk is one embedded window of a document.
type Chunk struct {
	ID         string
	DocumentID string
	Source     string
	Title      string
	Index      int
	Content    string
	Metadata   map[string]string
	Embedding  []float32
}

// Result is a chunk returned by Search together with its cosine similarity.
type Result struct {
	Chunk Chunk
	Score float64
}

// BuildOptions controls Build.
type BuildOptions struct {
	Splitter  Splitter
	BatchSize int
	Logger    loggerpkg.Logger
}

// Index is immutable once built and owned by a single session.
type Index struct {
	chunks    []Chunk
	norms     []float64
	dim       int
	documents int
}

// Build chunks every document, embeds all chunks and returns the finished index.
// Any embedder failure aborts the build; no partial index is returned.
func Build(ctx context.Context, docs []documents.Document, embedder llm.Embedder, opts BuildOptions) (*Index, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	log := loggerpkg.OrNop(opts.Logger)
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	var chunks []Chunk
	for _, doc := range docs {
		for i, text := range opts.Splitter.Split(doc.Content) {
			chunks = append(chunks, Chunk{
				ID:         chunkID(doc.ID, i),
				DocumentID: doc.ID,
				Source:     doc.Path,
				Title:      doc.Title,
				Index:      i,
				Content:    text,
				Metadata:   doc.Metadata,
			})
		}
	}
	if len(chunks) == 0 {
		return nil, ErrNoDocuments
	}
	log.Debug("index: chunked documents", map[string]any{
		"documents": len(docs),
		"chunks":    len(chunks),
	})

	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("embed chunks %d-%d: got %d vectors for %d texts", start, end-1, len(vectors), len(texts))
		}
		for i, v := range vectors {
			chunks[start+i].Embedding = v
		}
		log.Debug("index: embedded batch", map[string]any{"from": start, "to": end})
	}

	idx := &Index{
		chunks:    chunks,
		norms:     make([]float64, len(chunks)),
		documents: len(docs),
	}
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			return nil, fmt.Errorf("chunk %s has an empty embedding", c.ID)
		}
		if idx.dim == 0 {
			idx.dim = len(c.Embedding)
		} else if len(c.Embedding) != idx.dim {
			return nil, fmt.Errorf("chunk %s: embedding dimension %d, want %d", c.ID, len(c.Embedding), idx.dim)
		}
		idx.norms[i] = norm(c.Embedding)
	}
	return idx, nil
}

// Len returns the number of chunks.
func (x *Index) Len() int { return len(x.chunks) }

// Documents returns the number of documents the index was built from.
func (x *Index) Documents() int { return x.documents }

// Search returns at most k chunks ordered by descending similarity to query.
// Equal scores keep index order.
func (x *Index) Search(query []float32, k int) ([]Result, error) {
	if len(query) != x.dim {
		return nil, fmt.Errorf("query dimension %d, index dimension %d", len(query), x.dim)
	}
	if k <= 0 {
		return nil, nil
	}
	qn := norm(query)

	results := make([]Result, len(x.chunks))
	for i, c := range x.chunks {
		results[i] = Result{Chunk: c, Score: cosine(query, qn, c.Embedding, x.norms[i])}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func cosine(a []float32, an float64, b []float32, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (an * bn)
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func chunkID(docID string, i int) string {
	hash := sha256.Sum256([]byte(docID + "#" + strconv.Itoa(i)))
	return hex.EncodeToString(hash[:8])
}
