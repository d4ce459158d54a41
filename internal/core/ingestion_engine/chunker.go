package ingestion_engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/danielokoye-py/Notestack/internal/core"
)

// MinChunkLength is the smallest trimmed window that becomes a chunk. Shorter
// trailing fragments are noise for retrieval and are dropped before embedding.
const MinChunkLength = 50

// Chunk splits text into overlapping fixed-size windows. The window start
// advances by size-overlap each step, so consecutive windows share exactly
// overlap characters; the final window may be shorter than size. Windows whose
// trimmed length is below MinChunkLength are discarded. Pure and
// deterministic: identical input and parameters always yield identical output.
//
// Empty input yields an empty sequence. overlap >= size would make no
// progress and is a configuration error, as are a non-positive size and a
// negative overlap.
func Chunk(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, &core.ConfigurationError{Reason: fmt.Sprintf("chunk size must be positive, got %d", size)}
	}
	if overlap < 0 {
		return nil, &core.ConfigurationError{Reason: fmt.Sprintf("chunk overlap must not be negative, got %d", overlap)}
	}
	if overlap >= size {
		return nil, &core.ConfigurationError{Reason: fmt.Sprintf("chunk overlap %d must be smaller than size %d", overlap, size)}
	}

	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	step := size - overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		window := string(runes[start:end])
		// Rune count, not byte length: the threshold must treat multibyte
		// text the same as ASCII.
		if utf8.RuneCountInString(strings.TrimSpace(window)) >= MinChunkLength {
			chunks = append(chunks, window)
		}
	}
	return chunks, nil
}
