package index

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitShortTextIsOneChunk(t *testing.T) {
	require.Equal(t, []string{"hello world"}, Splitter{Size: 50}.Split("  hello world \n"))
	require.Nil(t, Splitter{Size: 50}.Split("   "))
}

func TestSplitBreaksAtWhitespace(t *testing.T) {
	text := strings.Repeat("word ", 30)
	chunks := Splitter{Size: 23, Overlap: 0}.Split(text)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		for _, w := range strings.Fields(c) {
			require.Equal(t, "word", w, "words must not be cut: %q", c)
		}
	}
}

func TestSplitOverlapRepeatsTail(t *testing.T) {
	text := "aaaa bbbb cccc dddd eeee ffff gggg"
	chunks := Splitter{Size: 15, Overlap: 5}.Split(text)
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1])
		require.Contains(t, chunks[i], prev[len(prev)-1], "chunk %d should overlap its predecessor", i)
	}
}

func TestSplitCountsRunesNotBytes(t *testing.T) {
	text := strings.Repeat("문서", 30)
	chunks := Splitter{Size: 20, Overlap: 0}.Split(text)
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		require.Equal(t, 20, len([]rune(c)))
	}
}

func TestSplitRepairsBadOverlap(t *testing.T) {
	chunks := Splitter{Size: 10, Overlap: 50}.Split(strings.Repeat("x", 35))
	require.Len(t, chunks, 4)
}
