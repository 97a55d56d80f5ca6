package retriever

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/coursemate/coursemate/passage"
	"github.com/coursemate/coursemate/pkg/logging"
	"github.com/coursemate/coursemate/vector"
)

// UnrankedScore is assigned to every passage returned by the scan fallback.
// Callers must treat it as "unranked, moderate confidence", not a measured
// similarity.
const UnrankedScore = 0.5

// RetrievalError wraps a store or embedding failure. It is distinct from an
// empty result set, which is a valid nil-error outcome.
type RetrievalError struct {
	Op  string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval %s: %v", e.Op, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Config controls retrieval behaviour.
type Config struct {
	Limit          int
	ScoreThreshold float64 // 0 disables threshold filtering
	ContentType    passage.ContentType
}

// Option customizes a single retrieval call.
type Option func(*Config)

// WithLimit sets the maximum number of passages returned.
func WithLimit(limit int) Option {
	return func(cfg *Config) {
		if limit > 0 {
			cfg.Limit = limit
		}
	}
}

// WithScoreThreshold discards candidates scoring below the threshold.
func WithScoreThreshold(threshold float64) Option {
	return func(cfg *Config) {
		cfg.ScoreThreshold = threshold
	}
}

// WithContentType scopes retrieval to one content category.
func WithContentType(ct passage.ContentType) Option {
	return func(cfg *Config) {
		cfg.ContentType = ct
	}
}

// Engine embeds queries and runs filtered similarity searches against the
// content store. It holds no mutable state, so concurrent Retrieve calls need
// no coordination.
type Engine struct {
	store    vector.ContentStore
	embedder vector.Embedder
	logger   *slog.Logger
}

// New creates a retrieval engine.
func New(store vector.ContentStore, emb vector.Embedder) *Engine {
	return &Engine{
		store:    store,
		embedder: emb,
		logger:   logging.WithComponent("retriever"),
	}
}

// Retrieve returns the most relevant passages for the query within a course,
// sorted by descending score. It requests twice the limit from the store so
// threshold filtering still leaves enough candidates, then trims to the limit.
// When the store cannot rank, it degrades to an unranked scan with a fixed
// placeholder score.
func (e *Engine) Retrieve(ctx context.Context, query, courseID string, opts ...Option) ([]passage.Retrieved, error) {
	cfg := Config{Limit: 5}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	filter := vector.Filter{CourseID: courseID, ContentType: cfg.ContentType}

	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &RetrievalError{Op: "embed query", Err: err}
	}

	matches, err := e.store.SimilaritySearch(ctx, queryVec, filter, cfg.Limit*2)
	if errors.Is(err, vector.ErrSimilarityUnavailable) {
		return e.scanFallback(ctx, filter, cfg)
	}
	if err != nil {
		return nil, &RetrievalError{Op: "similarity search", Err: err}
	}

	results := make([]passage.Retrieved, 0, cfg.Limit)
	for _, match := range matches {
		if cfg.ScoreThreshold > 0 && match.Score < cfg.ScoreThreshold {
			continue
		}
		results = append(results, passage.Retrieved{Passage: match.Passage, Score: match.Score})
		if len(results) == cfg.Limit {
			break
		}
	}
	return results, nil
}

// scanFallback is the explicit degraded mode used when similarity search is
// not provisioned: a plain filtered fetch with every passage scored at
// UnrankedScore.
func (e *Engine) scanFallback(ctx context.Context, filter vector.Filter, cfg Config) ([]passage.Retrieved, error) {
	e.logger.Warn("similarity search unavailable, falling back to unranked scan",
		"course_id", filter.CourseID,
		"content_type", string(filter.ContentType),
	)
	if cfg.ScoreThreshold > UnrankedScore {
		// The placeholder score can never clear the threshold.
		return nil, nil
	}
	passages, err := e.store.ScanFilter(ctx, filter, cfg.Limit)
	if err != nil {
		return nil, &RetrievalError{Op: "scan fallback", Err: err}
	}
	results := make([]passage.Retrieved, 0, len(passages))
	for _, p := range passages {
		results = append(results, passage.Retrieved{Passage: p, Score: UnrankedScore})
	}
	return results, nil
}
