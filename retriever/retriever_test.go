package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/coursemate/coursemate/passage"
	"github.com/coursemate/coursemate/vector"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1, 0, 0}, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		vec, err := s.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (s *stubEmbedder) Dimension() int { return 3 }

type stubStore struct {
	matches     []vector.Match
	searchErr   error
	scanned     []passage.Passage
	scanErr     error
	lastLimit   int
	lastFilter  vector.Filter
	scanCalled  bool
	searchCalls int
}

func (s *stubStore) AddPassage(_ context.Context, _ passage.Passage) error { return nil }

func (s *stubStore) SimilaritySearch(_ context.Context, _ []float32, filter vector.Filter, limit int) ([]vector.Match, error) {
	s.searchCalls++
	s.lastLimit = limit
	s.lastFilter = filter
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.matches, nil
}

func (s *stubStore) ScanFilter(_ context.Context, filter vector.Filter, _ int) ([]passage.Passage, error) {
	s.scanCalled = true
	s.lastFilter = filter
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	return s.scanned, nil
}

func (s *stubStore) Count(_ context.Context, _ vector.Filter) (int, error) {
	return len(s.scanned), nil
}

func match(id string, score float64) vector.Match {
	return vector.Match{Passage: passage.Passage{ID: id, Content: id}, Score: score}
}

func TestRetrieveFiltersAndTrims(t *testing.T) {
	store := &stubStore{matches: []vector.Match{
		match("a", 0.95),
		match("b", 0.80),
		match("c", 0.70),
		match("d", 0.40),
	}}
	engine := New(store, &stubEmbedder{})

	results, err := engine.Retrieve(context.Background(), "when is the exam", "cs101",
		WithLimit(2),
		WithScoreThreshold(0.7),
		WithContentType(passage.ContentTypePolicy),
	)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Retrieve() returned %d passages, want 2", len(results))
	}
	if results[0].Passage.ID != "a" || results[1].Passage.ID != "b" {
		t.Errorf("unexpected result order: %v, %v", results[0].Passage.ID, results[1].Passage.ID)
	}
	for _, r := range results {
		if r.Score < 0.7 {
			t.Errorf("passage %s scored %v below threshold", r.Passage.ID, r.Score)
		}
	}

	// Candidates are over-fetched to survive threshold filtering.
	if store.lastLimit != 4 {
		t.Errorf("store limit = %d, want 4", store.lastLimit)
	}
	if store.lastFilter.CourseID != "cs101" || store.lastFilter.ContentType != passage.ContentTypePolicy {
		t.Errorf("filter not forwarded: %+v", store.lastFilter)
	}
}

func TestRetrieveKeepsScoresAtThreshold(t *testing.T) {
	store := &stubStore{matches: []vector.Match{match("edge", 0.7)}}
	engine := New(store, &stubEmbedder{})

	results, err := engine.Retrieve(context.Background(), "q", "cs101", WithScoreThreshold(0.7))
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("passage scoring exactly at threshold was dropped")
	}
}

func TestRetrieveEmptyResult(t *testing.T) {
	engine := New(&stubStore{}, &stubEmbedder{})
	results, err := engine.Retrieve(context.Background(), "q", "cs101")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Retrieve() = %d passages, want 0", len(results))
	}
}

func TestRetrieveEmbedError(t *testing.T) {
	engine := New(&stubStore{}, &stubEmbedder{err: errors.New("quota exceeded")})

	_, err := engine.Retrieve(context.Background(), "q", "cs101")
	var retErr *RetrievalError
	if !errors.As(err, &retErr) {
		t.Fatalf("Retrieve() error = %v, want *RetrievalError", err)
	}
	if retErr.Op != "embed query" {
		t.Errorf("Op = %q, want %q", retErr.Op, "embed query")
	}
}

func TestRetrieveSearchError(t *testing.T) {
	store := &stubStore{searchErr: errors.New("connection reset")}
	engine := New(store, &stubEmbedder{})

	_, err := engine.Retrieve(context.Background(), "q", "cs101")
	var retErr *RetrievalError
	if !errors.As(err, &retErr) {
		t.Fatalf("Retrieve() error = %v, want *RetrievalError", err)
	}
	if retErr.Op != "similarity search" {
		t.Errorf("Op = %q, want %q", retErr.Op, "similarity search")
	}
}

func TestRetrieveScanFallback(t *testing.T) {
	store := &stubStore{
		searchErr: vector.ErrSimilarityUnavailable,
		scanned:   []passage.Passage{{ID: "p1"}, {ID: "p2"}},
	}
	engine := New(store, &stubEmbedder{})

	results, err := engine.Retrieve(context.Background(), "q", "cs101", WithScoreThreshold(0.5))
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if !store.scanCalled {
		t.Fatal("scan fallback not used")
	}
	if len(results) != 2 {
		t.Fatalf("Retrieve() = %d passages, want 2", len(results))
	}
	for _, r := range results {
		if r.Score != UnrankedScore {
			t.Errorf("fallback score = %v, want %v", r.Score, UnrankedScore)
		}
	}
}

func TestRetrieveScanFallbackRespectsThreshold(t *testing.T) {
	store := &stubStore{
		searchErr: vector.ErrSimilarityUnavailable,
		scanned:   []passage.Passage{{ID: "p1"}},
	}
	engine := New(store, &stubEmbedder{})

	// With a threshold above the placeholder score the fallback cannot
	// produce passing passages, so it short-circuits to empty.
	results, err := engine.Retrieve(context.Background(), "q", "cs101", WithScoreThreshold(0.7))
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if store.scanCalled {
		t.Error("scan ran despite threshold above placeholder score")
	}
	if len(results) != 0 {
		t.Errorf("Retrieve() = %d passages, want 0", len(results))
	}
}

func TestRetrieveScanFallbackError(t *testing.T) {
	store := &stubStore{
		searchErr: vector.ErrSimilarityUnavailable,
		scanErr:   errors.New("table missing"),
	}
	engine := New(store, &stubEmbedder{})

	_, err := engine.Retrieve(context.Background(), "q", "cs101")
	var retErr *RetrievalError
	if !errors.As(err, &retErr) {
		t.Fatalf("Retrieve() error = %v, want *RetrievalError", err)
	}
	if retErr.Op != "scan fallback" {
		t.Errorf("Op = %q, want %q", retErr.Op, "scan fallback")
	}
}
