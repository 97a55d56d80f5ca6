package offline

import (
	"context"
	"testing"

	"github.com/coursemate/coursemate/vector"
)

func TestEmbedDeterministic(t *testing.T) {
	e := New(32)
	ctx := context.Background()

	a, err := e.Embed(ctx, "When is the midterm exam?")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	b, err := e.Embed(ctx, "When is the midterm exam?")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if vector.CosineSimilarity(a, b) != 1 {
		t.Error("identical texts produced different embeddings")
	}
	if len(a) != 32 {
		t.Errorf("dimension = %d, want 32", len(a))
	}
}

func TestEmbedSharedWordsScoreHigher(t *testing.T) {
	e := New(64)
	ctx := context.Background()

	query, _ := e.Embed(ctx, "midterm exam date")
	related, _ := e.Embed(ctx, "the midterm exam is in november")
	unrelated, _ := e.Embed(ctx, "recursion calls itself repeatedly")

	if vector.CosineSimilarity(query, related) <= vector.CosineSimilarity(query, unrelated) {
		t.Error("related text did not score above unrelated text")
	}
}

func TestEmbedBatch(t *testing.T) {
	e := New(16)
	out, err := e.EmbedBatch(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("EmbedBatch() = %d vectors, want 2", len(out))
	}
	if e.Dimension() != 16 {
		t.Errorf("Dimension() = %d, want 16", e.Dimension())
	}
}
