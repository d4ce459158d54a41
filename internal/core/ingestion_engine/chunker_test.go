package ingestion_engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielokoye-py/Notestack/internal/core"
)

func TestChunkWindowsAndOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 40) // 400 chars
	chunks, err := Chunk(text, 150, 30)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 150)
	}
	// Consecutive full windows share exactly the overlap suffix/prefix.
	for i := 0; i < len(chunks)-1; i++ {
		cur := []rune(chunks[i])
		next := []rune(chunks[i+1])
		if len(cur) == 150 {
			assert.Equal(t, string(cur[len(cur)-30:]), string(next[:30]),
				"chunks %d and %d do not overlap by 30 runes", i, i+1)
		}
	}
}

func TestChunkStepAdvancesBySizeMinusOverlap(t *testing.T) {
	text := strings.Repeat("x", 1000)
	chunks, err := Chunk(text, 300, 100)
	require.NoError(t, err)

	// Starts at 0, 200, 400, 600, 800; last window is 200 runes.
	require.Len(t, chunks, 5)
	assert.Len(t, chunks[4], 200)
}

func TestChunkFinalShortWindowKept(t *testing.T) {
	// 160 chars with size 100, overlap 20: windows [0,100) and [80,160).
	text := strings.Repeat("y", 160)
	chunks, err := Chunk(text, 100, 20)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[1], 80)
}

func TestChunkDropsShortFragments(t *testing.T) {
	// Second window is 10 chars, below MinChunkLength.
	text := strings.Repeat("z", 100)
	chunks, err := Chunk(text, 90, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Len(t, chunks[0], 90)
}

func TestChunkWhitespaceWindowDropped(t *testing.T) {
	text := strings.Repeat("a", 60) + strings.Repeat(" ", 200)
	chunks, err := Chunk(text, 60, 0)
	require.NoError(t, err)
	// Only the first window survives trimming; pure-whitespace windows go.
	require.Len(t, chunks, 1)
	assert.Equal(t, strings.Repeat("a", 60), chunks[0])
}

func TestChunkEmptyInput(t *testing.T) {
	chunks, err := Chunk("", 1500, 200)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkConfigurationErrors(t *testing.T) {
	cases := []struct {
		name          string
		size, overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 100, -1},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Chunk("some text", tc.size, tc.overlap)
			var cfgErr *core.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestChunkDeterministic(t *testing.T) {
	text := strings.Repeat("deterministic input ", 100)
	a, err := Chunk(text, 150, 30)
	require.NoError(t, err)
	b, err := Chunk(text, 150, 30)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestChunkMinLengthCountsRunes(t *testing.T) {
	// The threshold counts runes, so multibyte text gets the same cutoff as
	// ASCII: 49 CJK runes (147 bytes) are still below MinChunkLength.
	short := strings.Repeat("字", MinChunkLength-1)
	chunks, err := Chunk(short, 100, 0)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	exact := strings.Repeat("字", MinChunkLength)
	chunks, err = Chunk(exact, 100, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, exact, chunks[0])

	// Same cutoff for ASCII.
	chunks, err = Chunk(strings.Repeat("a", MinChunkLength-1), 100, 0)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkMultibyteRunesNotSplit(t *testing.T) {
	text := strings.Repeat("日本語のテキスト", 30) // 240 runes
	chunks, err := Chunk(text, 100, 20)
	require.NoError(t, err)
	for _, c := range chunks {
		assert.True(t, strings.ContainsRune("日本語のテキスト", []rune(c)[0]))
		assert.LessOrEqual(t, len([]rune(c)), 100)
	}
}
