package documents

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dslipak/pdf"
	"golang.org/x/net/html"
)

// readFunc extracts text and optional metadata from one file.
type readFunc func(path string) (string, map[string]string, error)

var readers = map[string]readFunc{
	".txt":      readPlain,
	".text":     readPlain,
	".log":      readPlain,
	".csv":      readPlain,
	".json":     readPlain,
	".yaml":     readPlain,
	".yml":      readPlain,
	".md":       readMarkdown,
	".markdown": readMarkdown,
	".html":     readHTML,
	".htm":      readHTML,
	".pdf":      readPDF,
}

// binaryExts are never read, even as a plain-text fallback.
var binaryExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".webp": true, ".ico": true,
	".zip": true, ".gz": true, ".tgz": true, ".tar": true, ".7z": true, ".rar": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true, ".o": true, ".a": true,
	".mp3": true, ".mp4": true, ".wav": true, ".mov": true, ".avi": true,
	".doc": true, ".docx": true, ".xls": true, ".xlsx": true, ".ppt": true, ".pptx": true,
	".db": true, ".sqlite": true, ".woff": true, ".woff2": true, ".ttf": true,
}

// errBinaryFile marks a fallback read of content that is not text.
var errBinaryFile = errors.New("binary content")

// readerFor picks the reader for path. Unlisted extensions, including none, fall back to readText.
func readerFor(path string) (readFunc, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if r, ok := readers[ext]; ok {
		return r, true
	}
	if binaryExts[ext] {
		return nil, false
	}
	return readText, true
}

// SupportedExtensions lists the extensions with a dedicated reader, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(readers))
	for ext := range readers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// readText reads a file of unknown type, rejecting content that holds NUL bytes or is not UTF-8.
func readText(path string) (string, map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	if bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data) {
		return "", nil, errBinaryFile
	}
	return string(data), nil, nil
}

func readPlain(path string) (string, map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	return string(data), nil, nil
}

func readMarkdown(path string) (string, map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	meta, body := splitFrontMatter(string(data))
	return body, meta, nil
}

func readHTML(path string) (string, map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	text, title, err := extractHTMLText(string(data))
	if err != nil {
		return "", nil, err
	}
	var meta map[string]string
	if title != "" {
		meta = map[string]string{"title": title}
	}
	return text, meta, nil
}

// extractHTMLText returns the visible text of a page, one text node per line, and its <title>.
func extractHTMLText(htmlStr string) (string, string, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return "", "", err
	}

	var b strings.Builder
	var title string
	var walk func(*html.Node, bool)
	walk = func(n *html.Node, skip bool) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				skip = true
			case "title":
				if n.FirstChild != nil && title == "" {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				skip = true
			}
		}
		if n.Type == html.TextNode && !skip {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, skip)
		}
	}
	walk(doc, false)

	return strings.TrimSpace(b.String()), title, nil
}

func readPDF(path string) (text string, meta map[string]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", nil, err
	}

	// The pdf package panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			text, meta, err = "", nil, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return "", nil, fmt.Errorf("parse pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", nil, fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return buf.String(), nil, nil
}

// sanitizeUTF8 drops bytes that are not valid UTF-8.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			s = s[1:]
			continue
		}
		b.WriteRune(r)
		s = s[size:]
	}
	return b.String()
}
