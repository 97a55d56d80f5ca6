package agent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/coursemate/coursemate/citation"
	"github.com/coursemate/coursemate/llm"
	"github.com/coursemate/coursemate/passage"
	"github.com/coursemate/coursemate/pkg/logging"
	"github.com/coursemate/coursemate/prompt"
	"github.com/coursemate/coursemate/retriever"
)

const (
	// DefaultScoreThreshold gates retrieval confidence with live embeddings.
	DefaultScoreThreshold = 0.7

	// OfflineScoreThreshold is the relaxed gate used with deterministic
	// embeddings, whose scores are coarser than a live provider's.
	OfflineScoreThreshold = 0.5

	defaultRetrievalLimit = 5
)

// Fixed responses for the escalation branches. The surrounding application
// appends the escalation receipt; the agent only states why it is deferring.
const (
	MsgNoInformation = "I couldn't find enough information in the course materials to answer your question."
	MsgNotConfident  = "I'm not confident the course materials I found answer your question reliably."
	MsgInternalError = "I encountered an error while answering your question."
)

// refusalMarkers are scanned case-insensitively in generated text. A hit means
// the provider could not answer from the supplied context, so the answer is
// discarded and the question escalates. This is a documented heuristic
// boundary, not a type-safe contract.
var refusalMarkers = []string{"i don't know", "not in the context", "escalate"}

// Response is the transient result of one answer() invocation. The caller
// decides whether to create an escalation record when ShouldEscalate is set.
type Response struct {
	Response       string
	Citations      []citation.Citation
	Confidence     float64
	ShouldEscalate bool
}

// TokenCounter counts prompt tokens for context budgeting.
type TokenCounter interface {
	CountTokens(text string) int
}

// Config controls one agent's retrieval and synthesis behaviour.
type Config struct {
	ScoreThreshold     float64
	RetrievalLimit     int
	Extractive         bool         // answer from context without a completion call
	ContextTokenBudget int          // 0 means unlimited
	Tokenizer          TokenCounter // required when ContextTokenBudget > 0
}

// Option customizes agent construction.
type Option func(*Config)

// WithScoreThreshold overrides the retrieval confidence gate.
func WithScoreThreshold(threshold float64) Option {
	return func(cfg *Config) {
		if threshold > 0 {
			cfg.ScoreThreshold = threshold
		}
	}
}

// WithRetrievalLimit overrides how many passages are retrieved.
func WithRetrievalLimit(limit int) Option {
	return func(cfg *Config) {
		if limit > 0 {
			cfg.RetrievalLimit = limit
		}
	}
}

// WithExtractiveAnswers switches the agent to the deterministic path: answers
// are extracted from the retrieved context without calling the completion
// provider, and the score threshold relaxes to the offline default.
func WithExtractiveAnswers() Option {
	return func(cfg *Config) {
		cfg.Extractive = true
		cfg.ScoreThreshold = OfflineScoreThreshold
	}
}

// WithContextTokenBudget caps the synthesized context block. Passages are
// appended whole until the budget would be exceeded; the top passage is always
// included.
func WithContextTokenBudget(budget int, counter TokenCounter) Option {
	return func(cfg *Config) {
		if budget > 0 && counter != nil {
			cfg.ContextTokenBudget = budget
			cfg.Tokenizer = counter
		}
	}
}

// Agent answers questions for one content category. Policy and concept agents
// share the algorithm and differ only in category and system instructions.
// Agents are stateless between calls; concurrent Answer invocations need no
// coordination.
type Agent struct {
	contentType  passage.ContentType
	systemPrompt string
	retriever    *retriever.Engine
	client       llm.Client
	cfg          Config
	logger       *slog.Logger
}

// NewPolicyAgent answers course-logistics questions from policy passages.
func NewPolicyAgent(engine *retriever.Engine, client llm.Client, opts ...Option) *Agent {
	return newAgent(passage.ContentTypePolicy, prompt.PolicySystem, engine, client, opts)
}

// NewConceptAgent answers course-material questions from concept passages.
func NewConceptAgent(engine *retriever.Engine, client llm.Client, opts ...Option) *Agent {
	return newAgent(passage.ContentTypeConcept, prompt.ConceptSystem, engine, client, opts)
}

func newAgent(ct passage.ContentType, system string, engine *retriever.Engine, client llm.Client, opts []Option) *Agent {
	cfg := Config{
		ScoreThreshold: DefaultScoreThreshold,
		RetrievalLimit: defaultRetrievalLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Agent{
		contentType:  ct,
		systemPrompt: system,
		retriever:    engine,
		client:       client,
		cfg:          cfg,
		logger:       logging.WithComponent("agent").With("content_type", string(ct)),
	}
}

// ContentType returns the category this agent owns.
func (a *Agent) ContentType() passage.ContentType {
	return a.contentType
}

// Answer retrieves passages for the query, gates on aggregate confidence, and
// either synthesizes a cited answer or signals escalation. It never returns an
// error: any internal failure degrades to the safe default of human review.
func (a *Agent) Answer(ctx context.Context, query, courseID string) *Response {
	retrieved, err := a.retriever.Retrieve(ctx, query, courseID,
		retriever.WithContentType(a.contentType),
		retriever.WithLimit(a.cfg.RetrievalLimit),
		retriever.WithScoreThreshold(a.cfg.ScoreThreshold),
	)
	if err != nil {
		a.logger.Error("retrieval failed, escalating", "error", err, "course_id", courseID)
		return &Response{Response: MsgInternalError, Citations: []citation.Citation{}, ShouldEscalate: true}
	}

	if len(retrieved) == 0 {
		a.logger.Info("no passages retrieved, escalating", "course_id", courseID)
		return &Response{Response: MsgNoInformation, Citations: []citation.Citation{}, ShouldEscalate: true}
	}

	avgScore := meanScore(retrieved)
	if avgScore < a.cfg.ScoreThreshold {
		a.logger.Info("retrieval confidence below threshold, escalating",
			"avg_score", avgScore,
			"threshold", a.cfg.ScoreThreshold,
		)
		return &Response{Response: MsgNotConfident, Citations: []citation.Citation{}, Confidence: avgScore, ShouldEscalate: true}
	}

	included, contextBlock := a.buildContext(retrieved)

	var text string
	var ok bool
	if a.cfg.Extractive {
		text, ok = extractAnswer(query, contextBlock)
	} else {
		text, ok, err = a.generate(ctx, query, contextBlock)
		if err != nil {
			a.logger.Error("generation failed, escalating", "error", err)
			return &Response{Response: MsgInternalError, Citations: []citation.Citation{}, ShouldEscalate: true}
		}
	}
	if !ok {
		// Generated text is discarded: a refusal is not an answer.
		return &Response{Response: MsgNoInformation, Citations: []citation.Citation{}, Confidence: avgScore, ShouldEscalate: true}
	}

	return &Response{
		Response:   text,
		Citations:  citation.Build(included),
		Confidence: avgScore,
	}
}

func (a *Agent) generate(ctx context.Context, query, contextBlock string) (string, bool, error) {
	rendered, err := prompt.Synthesis.Render(map[string]interface{}{
		"Context": contextBlock,
		"Query":   query,
	})
	if err != nil {
		return "", false, err
	}
	resp, err := a.client.Complete(ctx, &llm.Request{
		Prompt:       rendered,
		SystemPrompt: a.systemPrompt,
	})
	if err != nil {
		return "", false, err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" || isRefusal(text) {
		return "", false, nil
	}
	return text, true, nil
}

// buildContext concatenates passages into one context block, each prefixed
// with its source label. With a token budget configured, passages are dropped
// from the tail once the budget would be exceeded.
func (a *Agent) buildContext(retrieved []passage.Retrieved) ([]passage.Retrieved, string) {
	builder := prompt.NewBuilder()
	included := make([]passage.Retrieved, 0, len(retrieved))
	used := 0
	for _, r := range retrieved {
		section := "[" + r.Passage.SourceLabel() + "]\n" + r.Passage.Content + "\n\n"
		if a.cfg.ContextTokenBudget > 0 && len(included) > 0 {
			cost := a.cfg.Tokenizer.CountTokens(section)
			if used+cost > a.cfg.ContextTokenBudget {
				break
			}
			used += cost
		} else if a.cfg.ContextTokenBudget > 0 {
			used = a.cfg.Tokenizer.CountTokens(section)
		}
		builder.Add(section)
		included = append(included, r)
	}
	return included, strings.TrimSpace(builder.Build())
}

func isRefusal(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range refusalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func meanScore(retrieved []passage.Retrieved) float64 {
	var sum float64
	for _, r := range retrieved {
		sum += r.Score
	}
	return sum / float64(len(retrieved))
}
