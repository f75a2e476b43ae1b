// Package documents reads a directory tree into an ordered collection of text documents.
package documents

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	loggerpkg "github.com/minhyannv/docqa-go/pkg/logger"
)

// Document is the extracted text of one source file.
type Document struct {
	ID       string
	Path     string
	Name     string
	Title    string
	Content  string
	// Metadata holds front matter fields other than title.
	Metadata map[string]string
}

// LoadOptions controls LoadDir.
type LoadOptions struct {
	Logger loggerpkg.Logger
}

// LoadDir reads every text file under dir, recursively, ordered by path.
// Files with a dedicated reader use it; other files are read as plain text unless they look binary.
// An empty result is not an error.
func LoadDir(ctx context.Context, dir string, opts LoadOptions) ([]Document, error) {
	log := loggerpkg.OrNop(opts.Logger)

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("data directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data directory %s: not a directory", dir)
	}
	// WalkDir does not descend into a symlinked root, so walk the resolved directory.
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	var docs []Document
	err = filepath.WalkDir(realRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != realRoot && isHidden(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			target, ok := resolveInside(realRoot, path)
			if !ok {
				log.Warn("skipping symlink outside data directory", map[string]any{"path": path})
				return nil
			}
			ti, err := os.Stat(target)
			if err != nil || !ti.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}

		reader, ok := readerFor(path)
		if !ok {
			log.Debug("skipping unsupported file", map[string]any{"path": path})
			return nil
		}

		doc, err := loadFile(realRoot, path, reader)
		if errors.Is(err, errBinaryFile) {
			log.Debug("skipping binary file", map[string]any{"path": path})
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if doc.Content == "" {
			log.Debug("skipping empty document", map[string]any{"path": path})
			return nil
		}
		log.Debug("document loaded", map[string]any{
			"path":  doc.Path,
			"bytes": len(doc.Content),
		})
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Path < docs[j].Path
	})
	return docs, nil
}

func loadFile(root, path string, reader readFunc) (Document, error) {
	text, meta, err := reader(path)
	if err != nil {
		return Document{}, err
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	title := meta["title"]
	if title == "" {
		title = filenameToTitle(path)
	}
	var extra map[string]string
	for k, v := range meta {
		if k == "title" || v == "" {
			continue
		}
		if extra == nil {
			extra = make(map[string]string, len(meta))
		}
		extra[k] = v
	}
	return Document{
		ID:       generateDocID(rel),
		Path:     rel,
		Name:     filepath.Base(path),
		Title:    title,
		Content:  strings.TrimSpace(sanitizeUTF8(text)),
		Metadata: extra,
	}, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func filenameToTitle(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return strings.TrimSpace(base)
}

// generateDocID derives a stable ID from the path relative to the data directory.
func generateDocID(rel string) string {
	hash := sha256.Sum256([]byte(rel))
	return hex.EncodeToString(hash[:8])
}
