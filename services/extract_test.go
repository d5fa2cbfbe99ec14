package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText_Short(t *testing.T) {
	chunks := ChunkText("un texto corto", 100, 20)
	require.Len(t, chunks, 1)
	assert.Equal(t, "un texto corto", chunks[0])
}

func TestChunkText_Empty(t *testing.T) {
	assert.Nil(t, ChunkText("", 100, 20))
	assert.Nil(t, ChunkText("   \n\t ", 100, 20))
}

func TestChunkText_SplitsWithOverlap(t *testing.T) {
	text := strings.Repeat("palabra ", 500) // ~4000 runas
	chunks := ChunkText(text, 1000, 200)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 1000)
		assert.NotEmpty(t, chunk)
	}

	// Con solapamiento, el final de un fragmento reaparece al inicio del siguiente
	tail := chunks[0][len(chunks[0])-50:]
	assert.Contains(t, chunks[1], strings.TrimSpace(tail[:20]))
}

func TestChunkText_PrefersParagraphBreaks(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString(strings.Repeat("x", 80))
		b.WriteString("\n\n")
	}
	chunks := ChunkText(b.String(), 500, 100)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks[:len(chunks)-1] {
		// Cada corte cae en un límite de párrafo, nunca parte una línea
		assert.True(t, strings.HasSuffix(chunk, strings.Repeat("x", 80)),
			"el fragmento no termina en un párrafo completo: %q", chunk[len(chunk)-20:])
	}
}

func TestChunkText_AlwaysAdvances(t *testing.T) {
	// Solapamiento mayor que el tamaño del fragmento no debe colgar el bucle
	text := strings.Repeat("a", 5000)
	chunks := ChunkText(text, 100, 500)
	assert.NotEmpty(t, chunks)
}
