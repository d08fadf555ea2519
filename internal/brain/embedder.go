package brain

import (
	"context"
	"fmt"
	"strings"

	"github.com/QuackbackIO/quackback-sub007/common/llm"
)

// maxEmbeddingRunes keeps inputs well under the embedding model's token limit.
const maxEmbeddingRunes = 6000

// Embedder adapts an llm.EmbeddingClient to the pipeline's Embedder.
type Embedder struct {
	client llm.EmbeddingClient
}

func NewEmbedder(client llm.EmbeddingClient) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}
	if runes := []rune(text); len(runes) > maxEmbeddingRunes {
		text = string(runes[:maxEmbeddingRunes])
	}

	vec, err := e.client.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}
	return vec, nil
}
