package vector

import (
	"context"
	"errors"
	"math"

	"github.com/coursemate/coursemate/passage"
)

// ErrSimilarityUnavailable signals that the store cannot rank by vector
// similarity (missing extension, index, or procedure). Callers fall back to
// an unranked filtered scan.
var ErrSimilarityUnavailable = errors.New("similarity search unavailable")

// Filter scopes a content store query to a course and, optionally, a content
// category.
type Filter struct {
	CourseID    string
	ContentType passage.ContentType // empty means both categories
}

// Match is a passage returned from a similarity search with its score in [0,1].
type Match struct {
	Passage passage.Passage
	Score   float64
}

// ContentStore persists course-content passages with precomputed embeddings.
// The question-answering core only ever reads from it; writes happen during
// course-material ingestion.
type ContentStore interface {
	// AddPassage stores a passage with its embedding. New rows only; an
	// existing ID is an error.
	AddPassage(ctx context.Context, p passage.Passage) error

	// SimilaritySearch returns up to limit passages under the filter ranked
	// by descending similarity to the query vector. Returns
	// ErrSimilarityUnavailable when ranking is not provisioned.
	SimilaritySearch(ctx context.Context, queryVector []float32, filter Filter, limit int) ([]Match, error)

	// ScanFilter returns up to limit passages under the filter with no
	// ranking. It is the degraded path when similarity search is unavailable.
	ScanFilter(ctx context.Context, filter Filter, limit int) ([]passage.Passage, error)

	// Count returns the number of stored passages under the filter.
	Count(ctx context.Context, filter Filter) (int, error)
}

// Embedder converts text to a fixed-dimension vector.
type Embedder interface {
	// Embed converts text to a vector embedding
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts multiple texts to embeddings
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension return number of embedding dimensions
	Dimension() int
}

// CosineSimilarity calculates the cosine similarity between two vectors
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := 0; i < len(a); i++ {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Normalize scales the vector to unit length (L2 norm).
func Normalize(vec []float32) []float32 {
	if len(vec) == 0 {
		return vec
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}
