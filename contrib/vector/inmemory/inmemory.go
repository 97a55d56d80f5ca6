package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	coursemateerrors "github.com/coursemate/coursemate/errors"
	"github.com/coursemate/coursemate/passage"
	"github.com/coursemate/coursemate/vector"
)

// InMemoryContentStore implements vector.ContentStore using in-memory storage.
// Ranking uses cosine similarity mapped into [0,1].
type InMemoryContentStore struct {
	passages map[string]passage.Passage
	ranked   bool
	mu       sync.RWMutex
}

// Option configures the store.
type Option func(*InMemoryContentStore)

// WithoutSimilaritySearch disables ranking so the store behaves like a
// deployment with no vector index provisioned. Used to exercise the scan
// fallback.
func WithoutSimilaritySearch() Option {
	return func(s *InMemoryContentStore) {
		s.ranked = false
	}
}

// NewInMemoryContentStore creates a new in-memory content store
func NewInMemoryContentStore(opts ...Option) *InMemoryContentStore {
	s := &InMemoryContentStore{
		passages: make(map[string]passage.Passage),
		ranked:   true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// AddPassage stores a passage with its embedding.
func (s *InMemoryContentStore) AddPassage(ctx context.Context, p passage.Passage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		return fmt.Errorf("passage ID cannot be empty")
	}
	if !p.ContentType.Valid() {
		return fmt.Errorf("invalid content type %q", p.ContentType)
	}
	if _, exists := s.passages[p.ID]; exists {
		// Embeddings are immutable once stored; re-ingestion must use new IDs.
		return fmt.Errorf("passage %s: %w", p.ID, coursemateerrors.ErrAlreadyExists)
	}

	s.passages[p.ID] = p.Clone()
	return nil
}

// SimilaritySearch finds passages similar to the query vector under the filter.
func (s *InMemoryContentStore) SimilaritySearch(ctx context.Context, queryVector []float32, filter vector.Filter, limit int) ([]vector.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ranked {
		return nil, vector.ErrSimilarityUnavailable
	}
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}
	if limit <= 0 {
		limit = 10
	}

	matches := make([]vector.Match, 0, len(s.passages))
	for _, p := range s.passages {
		if !matchesFilter(p, filter) {
			continue
		}
		if len(p.Embedding) != len(queryVector) {
			continue
		}

		// Cosine similarity lands in [-1,1]; shift into [0,1] so scores
		// compose with the confidence thresholds.
		similarity := (vector.CosineSimilarity(queryVector, p.Embedding) + 1) / 2
		matches = append(matches, vector.Match{
			Passage: p.Clone(),
			Score:   similarity,
		})
	}

	// Sort by similarity (highest first)
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// ScanFilter returns passages under the filter with no ranking.
func (s *InMemoryContentStore) ScanFilter(ctx context.Context, filter vector.Filter, limit int) ([]passage.Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	ids := make([]string, 0, len(s.passages))
	for id, p := range s.passages {
		if matchesFilter(p, filter) {
			ids = append(ids, id)
		}
	}
	// Deterministic order for a store backed by a map.
	sort.Strings(ids)

	out := make([]passage.Passage, 0, limit)
	for _, id := range ids {
		out = append(out, s.passages[id].Clone())
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Count returns the number of stored passages under the filter.
func (s *InMemoryContentStore) Count(ctx context.Context, filter vector.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, p := range s.passages {
		if matchesFilter(p, filter) {
			count++
		}
	}
	return count, nil
}

func matchesFilter(p passage.Passage, filter vector.Filter) bool {
	if filter.CourseID != "" && p.CourseID != filter.CourseID {
		return false
	}
	if filter.ContentType != "" && p.ContentType != filter.ContentType {
		return false
	}
	return true
}
