package index

import (
	"strings"
	"unicode"
)

// Splitter cuts text into overlapping windows measured in runes.
type Splitter struct {
	Size    int
	Overlap int
}

// DefaultSplitter mirrors the defaults of the docqa flags.
var DefaultSplitter = Splitter{Size: 1024, Overlap: 20}

func (s Splitter) normalized() (size, overlap int) {
	size, overlap = s.Size, s.Overlap
	if size <= 0 {
		size = DefaultSplitter.Size
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 10
	}
	return size, overlap
}

// Split returns the chunks of text. A window ends at the last whitespace in its
// second half when there is one, so words are not cut in the middle.
func (s Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	size, overlap := s.normalized()
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			end = len(runes)
		} else if cut := lastSpace(runes[start:end]); cut > size/2 {
			end = start + cut
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end >= len(runes) {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return -1
}
