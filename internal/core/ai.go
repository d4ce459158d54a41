package core

import "context"

// EmbeddingProvider turns chunk texts into fixed-length vectors. Result order
// matches input order; len(out) == len(texts) on success.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider is an opaque text-in/text-out generation function.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// PageExtractor turns raw PDF bytes into ordered per-page plain text. A page
// with no extractable text yields an empty string, never a missing slot, so
// 1-based page numbering stays aligned downstream.
type PageExtractor interface {
	ExtractPages(data []byte) ([]string, error)
}
