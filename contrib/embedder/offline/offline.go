// Package offline provides a deterministic embedder for environments without
// API access. Vectors are hashed bag-of-words projections: identical texts
// always embed identically, and texts sharing words land near each other.
// It is a degraded stand-in, not a semantic model.
package offline

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/coursemate/coursemate/vector"
)

// OfflineEmbedder implements vector.Embedder without network access.
type OfflineEmbedder struct {
	dimension int
}

// New creates an OfflineEmbedder with the given dimension.
func New(dimension int) *OfflineEmbedder {
	if dimension <= 0 {
		dimension = 64
	}
	return &OfflineEmbedder{dimension: dimension}
}

// Dimension returns the number of embedding dimensions.
func (e *OfflineEmbedder) Dimension() int {
	return e.dimension
}

// Embed hashes each word of the text into a bucket and normalizes the result.
func (e *OfflineEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimension)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[int(h.Sum32())%e.dimension]++
	}
	return vector.Normalize(vec), nil
}

// EmbedBatch embeds each text independently.
func (e *OfflineEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}
