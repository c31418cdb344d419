package chunker

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	ws := make([]string, n)
	for i := range ws {
		ws[i] = fmt.Sprintf("w%03d", i)
	}
	return strings.Join(ws, " ")
}

func TestChunkEmpty(t *testing.T) {
	assert.Empty(t, New().Chunk("", DefaultOptions()))
	assert.Empty(t, New().Chunk("   \n\n  ", DefaultOptions()))
}

func TestChunkShortTextIsSingleChunk(t *testing.T) {
	text := "Artículo 1. La ley es igual para todos.\n\nArtículo 2. Nadie está por encima de la ley."
	chunks := New().Chunk(text, DefaultOptions())

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 0, chunks[0].Start)
}

func TestChunkRecursiveRespectsSizeAndOverlap(t *testing.T) {
	opts := ChunkOptions{ChunkSize: 50, ChunkOverlap: 10, Strategy: "recursive"}
	chunks := New().Chunk(words(100), opts)

	require.Greater(t, len(chunks), 1)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Content), 50)
		assert.GreaterOrEqual(t, c.Start, 0)
	}
	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1].Content)
		last := prev[len(prev)-1]
		assert.True(t, strings.HasPrefix(chunks[i].Content, prev[len(prev)-2]+" "+last),
			"chunk %d should start with the tail of chunk %d", i, i-1)
	}
}

func TestChunkDefaultWindow(t *testing.T) {
	chunks := New().Chunk(words(2000), DefaultOptions())

	require.Greater(t, len(chunks), 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Content), 2050)
	}
}

func TestChunkPrefersParagraphBoundaries(t *testing.T) {
	para := strings.Repeat("x", 30)
	text := para + "\n\n" + para + "\n\n" + para
	chunks := New().Chunk(text, ChunkOptions{ChunkSize: 64, ChunkOverlap: 0})

	require.Len(t, chunks, 2)
	assert.Equal(t, para+"\n\n"+para, chunks[0].Content)
	assert.Equal(t, para, chunks[1].Content)
}

func TestChunkFixedCountsRunes(t *testing.T) {
	text := strings.Repeat("ñ", 25)
	chunks := New().Chunk(text, ChunkOptions{ChunkSize: 10, ChunkOverlap: 2, Strategy: "fixed"})

	require.Len(t, chunks, 3)
	assert.Equal(t, 10, utf8.RuneCountInString(chunks[0].Content))
	assert.Equal(t, 10, utf8.RuneCountInString(chunks[1].Content))
	assert.Equal(t, 9, utf8.RuneCountInString(chunks[2].Content))
}
