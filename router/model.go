package router

import (
	"context"
	"log/slog"
	"strings"

	"github.com/coursemate/coursemate/llm"
	"github.com/coursemate/coursemate/pkg/logging"
	"github.com/coursemate/coursemate/prompt"
)

// routeTokens is the fixed match order for parsing the provider response.
// The order only makes parsing deterministic; a well-behaved provider returns
// a single token anyway.
var routeTokens = []Route{RouteEscalate, RoutePolicy, RouteConcept}

// ModelClassifier asks a completion provider for the route and parses the
// single-token answer. Every provider failure falls back silently to the
// keyword classifier; Classify never surfaces an error from the model path.
type ModelClassifier struct {
	client   llm.Client
	fallback *KeywordClassifier
	logger   *slog.Logger
}

// NewModelClassifier creates a model-based classifier backed by the keyword
// classifier for failure recovery.
func NewModelClassifier(client llm.Client) *ModelClassifier {
	return &ModelClassifier{
		client:   client,
		fallback: NewKeywordClassifier(),
		logger:   logging.WithComponent("router"),
	}
}

// Classify sends the classification prompt to the provider and maps the
// response text onto a route.
func (c *ModelClassifier) Classify(ctx context.Context, query string) (Decision, error) {
	if c.client == nil {
		return c.fallback.Classify(ctx, query)
	}

	rendered, err := prompt.Classification.Render(map[string]interface{}{"Query": query})
	if err != nil {
		c.logger.Warn("classification prompt render failed, using keyword fallback", "error", err)
		return c.fallback.Classify(ctx, query)
	}

	resp, err := c.client.Complete(ctx, &llm.Request{Prompt: rendered})
	if err != nil {
		c.logger.Warn("model classification failed, using keyword fallback", "error", err)
		return c.fallback.Classify(ctx, query)
	}

	return parseDecision(resp.Text), nil
}

// parseDecision maps raw provider output onto a route. An exact token match
// earns higher confidence than a substring hit; unparseable output defaults
// to POLICY so the question still reaches the agent's confidence gate.
func parseDecision(raw string) Decision {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	for _, route := range routeTokens {
		if cleaned == string(route) {
			return Decision{Route: route, Confidence: 0.9, Reason: "model classification"}
		}
	}
	for _, route := range routeTokens {
		if strings.Contains(cleaned, string(route)) {
			return Decision{Route: route, Confidence: 0.7, Reason: "model classification (partial match)"}
		}
	}
	return Decision{
		Route:      RoutePolicy,
		Confidence: 0.65,
		Reason:     "could not parse model response, defaulting to policy",
	}
}
