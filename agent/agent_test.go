package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/coursemate/coursemate/llm"
	"github.com/coursemate/coursemate/passage"
	"github.com/coursemate/coursemate/retriever"
	"github.com/coursemate/coursemate/vector"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1, 0}, nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (s *stubEmbedder) Dimension() int { return 2 }

type stubStore struct {
	matches   []vector.Match
	searchErr error
	scanned   []passage.Passage
}

func (s *stubStore) AddPassage(_ context.Context, _ passage.Passage) error { return nil }

func (s *stubStore) SimilaritySearch(_ context.Context, _ []float32, _ vector.Filter, _ int) ([]vector.Match, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.matches, nil
}

func (s *stubStore) ScanFilter(_ context.Context, _ vector.Filter, _ int) ([]passage.Passage, error) {
	return s.scanned, nil
}

func (s *stubStore) Count(_ context.Context, _ vector.Filter) (int, error) {
	return len(s.matches), nil
}

type stubLLM struct {
	text       string
	err        error
	lastPrompt string
	lastSystem string
}

func (s *stubLLM) Complete(_ context.Context, req *llm.Request) (*llm.Response, error) {
	s.lastPrompt = req.Prompt
	s.lastSystem = req.SystemPrompt
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Text: s.text}, nil
}

// wordCounter is a cheap TokenCounter for budget tests.
type wordCounter struct{}

func (wordCounter) CountTokens(text string) int { return len(strings.Fields(text)) }

func policyMatch(id, content string, score float64) vector.Match {
	return vector.Match{
		Passage: passage.Passage{ID: id, Content: content, ContentType: passage.ContentTypePolicy},
		Score:   score,
	}
}

func newEngine(store vector.ContentStore) *retriever.Engine {
	return retriever.New(store, &stubEmbedder{})
}

func TestAnswerSynthesizesWithCitations(t *testing.T) {
	store := &stubStore{matches: []vector.Match{
		policyMatch("p1", "The midterm exam is on November 18 in room 204.", 0.92),
		policyMatch("p2", "Midterm grading is posted within one week.", 0.85),
	}}
	client := &stubLLM{text: "The midterm exam is on November 18."}
	a := NewPolicyAgent(newEngine(store), client)

	resp := a.Answer(context.Background(), "When is the midterm?", "cs101")

	if resp.ShouldEscalate {
		t.Fatalf("ShouldEscalate = true, want confident answer, got %q", resp.Response)
	}
	if resp.Response != "The midterm exam is on November 18." {
		t.Errorf("Response = %q", resp.Response)
	}
	if len(resp.Citations) != 2 {
		t.Errorf("citations = %d, want 2", len(resp.Citations))
	}
	if want := (0.92 + 0.85) / 2; resp.Confidence != want {
		t.Errorf("Confidence = %v, want %v", resp.Confidence, want)
	}
	if !strings.Contains(client.lastPrompt, "November 18") {
		t.Error("retrieved content missing from synthesis prompt")
	}
	if !strings.Contains(client.lastPrompt, "When is the midterm?") {
		t.Error("query missing from synthesis prompt")
	}
	if client.lastSystem == "" {
		t.Error("system prompt not set")
	}
}

func TestAnswerEmptyRetrievalEscalates(t *testing.T) {
	a := NewPolicyAgent(newEngine(&stubStore{}), &stubLLM{text: "unused"})

	resp := a.Answer(context.Background(), "When is the final?", "cs101")

	if !resp.ShouldEscalate {
		t.Fatal("ShouldEscalate = false, want true")
	}
	if resp.Response != MsgNoInformation {
		t.Errorf("Response = %q, want %q", resp.Response, MsgNoInformation)
	}
	if resp.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", resp.Confidence)
	}
	if len(resp.Citations) != 0 {
		t.Errorf("citations = %d, want 0", len(resp.Citations))
	}
}

func TestAnswerSubThresholdPassagesFilteredOut(t *testing.T) {
	// Candidates below the agent's threshold are dropped at retrieval, so
	// only the strong passage reaches synthesis and the weak one never
	// appears in citations.
	store := &stubStore{matches: []vector.Match{
		policyMatch("p1", "The final exam is on December 12.", 0.88),
		policyMatch("p2", "something barely related", 0.40),
	}}
	client := &stubLLM{text: "The final exam is on December 12."}
	a := NewPolicyAgent(newEngine(store), client)

	resp := a.Answer(context.Background(), "When is the final?", "cs101")

	if resp.ShouldEscalate {
		t.Fatalf("ShouldEscalate = true, got %q", resp.Response)
	}
	if len(resp.Citations) != 1 {
		t.Fatalf("citations = %d, want 1", len(resp.Citations))
	}
	if resp.Confidence != 0.88 {
		t.Errorf("Confidence = %v, want 0.88", resp.Confidence)
	}
	if strings.Contains(client.lastPrompt, "barely related") {
		t.Error("sub-threshold passage leaked into the prompt")
	}
}

func TestAnswerScanFallbackOffline(t *testing.T) {
	// With similarity search unavailable, the extractive agent answers from
	// the unranked scan at the placeholder confidence.
	store := &stubStore{
		searchErr: vector.ErrSimilarityUnavailable,
		scanned: []passage.Passage{
			{ID: "p1", Content: "The midterm exam is on November 18.", ContentType: passage.ContentTypePolicy},
		},
	}
	a := NewPolicyAgent(newEngine(store), nil, WithExtractiveAnswers())

	resp := a.Answer(context.Background(), "When is the midterm?", "cs101")

	if resp.ShouldEscalate {
		t.Fatalf("ShouldEscalate = true, got %q", resp.Response)
	}
	if !strings.Contains(resp.Response, "November 18") {
		t.Errorf("Response = %q, want extracted sentence", resp.Response)
	}
	if resp.Confidence != retriever.UnrankedScore {
		t.Errorf("Confidence = %v, want placeholder %v", resp.Confidence, retriever.UnrankedScore)
	}
}

func TestAnswerRefusalEscalates(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "plain refusal", text: "I don't know"},
		{name: "refusal inside prose", text: "Sorry, that is not in the context I was given."},
		{name: "empty response", text: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubStore{matches: []vector.Match{
				policyMatch("p1", "The syllabus covers grading.", 0.9),
			}}
			a := NewPolicyAgent(newEngine(store), &stubLLM{text: tt.text})

			resp := a.Answer(context.Background(), "When is the final?", "cs101")

			if !resp.ShouldEscalate {
				t.Fatal("ShouldEscalate = false, want true")
			}
			if resp.Response != MsgNoInformation {
				t.Errorf("Response = %q, want %q", resp.Response, MsgNoInformation)
			}
			if len(resp.Citations) != 0 {
				t.Error("refused answer must not carry citations")
			}
		})
	}
}

func TestAnswerGenerationErrorEscalates(t *testing.T) {
	store := &stubStore{matches: []vector.Match{
		policyMatch("p1", "The final exam is in December.", 0.9),
	}}
	a := NewPolicyAgent(newEngine(store), &stubLLM{err: errors.New("rate limited")})

	resp := a.Answer(context.Background(), "When is the final?", "cs101")

	if !resp.ShouldEscalate {
		t.Fatal("ShouldEscalate = false, want true")
	}
	if resp.Response != MsgInternalError {
		t.Errorf("Response = %q, want %q", resp.Response, MsgInternalError)
	}
}

func TestAnswerRetrievalErrorEscalates(t *testing.T) {
	engine := retriever.New(&stubStore{}, &stubEmbedder{err: errors.New("embedder down")})
	a := NewPolicyAgent(engine, &stubLLM{text: "unused"})

	resp := a.Answer(context.Background(), "When is the final?", "cs101")

	if !resp.ShouldEscalate {
		t.Fatal("ShouldEscalate = false, want true")
	}
	if resp.Response != MsgInternalError {
		t.Errorf("Response = %q, want %q", resp.Response, MsgInternalError)
	}
}

func TestAnswerExtractive(t *testing.T) {
	store := &stubStore{matches: []vector.Match{
		policyMatch("p1", "The midterm exam is on November 18. Bring a calculator.", 0.6),
	}}
	a := NewPolicyAgent(newEngine(store), nil, WithExtractiveAnswers())

	resp := a.Answer(context.Background(), "When is the midterm?", "cs101")

	if resp.ShouldEscalate {
		t.Fatalf("ShouldEscalate = true, got %q", resp.Response)
	}
	if !strings.Contains(resp.Response, "November 18") {
		t.Errorf("Response = %q, want sentence containing the date", resp.Response)
	}
	if len(resp.Citations) != 1 {
		t.Errorf("citations = %d, want 1", len(resp.Citations))
	}
}

func TestAnswerExtractiveNoMatchEscalates(t *testing.T) {
	store := &stubStore{matches: []vector.Match{
		policyMatch("p1", "Unrelated administrative text.", 0.6),
	}}
	a := NewPolicyAgent(newEngine(store), nil, WithExtractiveAnswers())

	resp := a.Answer(context.Background(), "When is the midterm?", "cs101")

	if !resp.ShouldEscalate {
		t.Fatal("ShouldEscalate = false, want true")
	}
	if resp.Response != MsgNoInformation {
		t.Errorf("Response = %q, want %q", resp.Response, MsgNoInformation)
	}
}

func TestAnswerContextTokenBudget(t *testing.T) {
	week1, week2 := 1, 2
	store := &stubStore{matches: []vector.Match{
		{Passage: passage.Passage{ID: "p1", Content: "The midterm exam is on November 18.", WeekNumber: &week1}, Score: 0.9},
		{Passage: passage.Passage{ID: "p2", Content: strings.Repeat("filler ", 50) + "midterm", WeekNumber: &week2}, Score: 0.8},
	}}
	client := &stubLLM{text: "The midterm exam is on November 18."}
	a := NewPolicyAgent(newEngine(store), client, WithContextTokenBudget(10, wordCounter{}))

	resp := a.Answer(context.Background(), "When is the midterm?", "cs101")

	if resp.ShouldEscalate {
		t.Fatalf("ShouldEscalate = true, got %q", resp.Response)
	}
	// Only the top passage fits the budget; citations must match the
	// context actually shown to the provider.
	if len(resp.Citations) != 1 {
		t.Fatalf("citations = %d, want 1", len(resp.Citations))
	}
	if resp.Citations[0].Source != "Syllabus Week 1" {
		t.Errorf("citation source = %q, want top passage", resp.Citations[0].Source)
	}
	if strings.Contains(client.lastPrompt, "filler") {
		t.Error("over-budget passage leaked into the prompt")
	}
}

func TestConceptAgentCategory(t *testing.T) {
	a := NewConceptAgent(newEngine(&stubStore{}), &stubLLM{})
	if a.ContentType() != passage.ContentTypeConcept {
		t.Errorf("ContentType() = %v, want concept", a.ContentType())
	}
}
