// Package pipeline exposes the single entry point the surrounding
// application calls for every student question: classify, answer from course
// material, or record an escalation for the instructor.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/coursemate/coursemate/agent"
	"github.com/coursemate/coursemate/cache"
	"github.com/coursemate/coursemate/citation"
	"github.com/coursemate/coursemate/escalation"
	"github.com/coursemate/coursemate/middleware"
	"github.com/coursemate/coursemate/pkg/logging"
	"github.com/coursemate/coursemate/pkg/telemetry"
	"github.com/coursemate/coursemate/router"
)

// Config wires the pipeline's collaborators. All dependencies are injected at
// construction; there is no package-level state.
type Config struct {
	Router       router.Classifier
	PolicyAgent  *agent.Agent
	ConceptAgent *agent.Agent
	Escalations  *escalation.Handler
	Cache        cache.AnswerCache       // optional
	Middlewares  []middleware.Middleware // optional, run in order around handling
}

// Pipeline composes router, agents, and escalation handler into the
// handleQuestion contract. Each call is independent and stateless; concurrent
// questions need no coordination.
type Pipeline struct {
	cfg    Config
	chain  *middleware.Chain
	logger *slog.Logger
	tracer trace.Tracer
}

// New creates a pipeline. Router, both agents, and the escalation handler are
// required.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Router == nil {
		return nil, fmt.Errorf("router is required")
	}
	if cfg.PolicyAgent == nil || cfg.ConceptAgent == nil {
		return nil, fmt.Errorf("both policy and concept agents are required")
	}
	if cfg.Escalations == nil {
		return nil, fmt.Errorf("escalation handler is required")
	}
	return &Pipeline{
		cfg:    cfg,
		chain:  middleware.NewChain(cfg.Middlewares...),
		logger: logging.WithComponent("pipeline"),
		tracer: otel.Tracer("coursemate/pipeline"),
	}, nil
}

// HandleQuestion answers one student question. The returned error covers
// request-level failures only (validation, rate limiting, escalation
// persistence); an answerable-but-uncertain question comes back as a
// non-error response with ShouldEscalate set and the escalation already
// recorded.
func (p *Pipeline) HandleQuestion(ctx context.Context, query, courseID, studentID string) (*agent.Response, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.handle_question",
		trace.WithAttributes(attribute.String("course.id", courseID)),
	)

	mctx := middleware.NewContext(ctx, query, courseID, studentID)
	err := p.chain.Execute(mctx, func(mctx *middleware.Context) error {
		resp, err := p.handle(mctx.Context(), mctx.Query, mctx.CourseID, mctx.StudentID)
		mctx.Response = resp
		return err
	})
	telemetry.End(span, err)
	if err != nil {
		return nil, err
	}
	return mctx.Response, nil
}

func (p *Pipeline) handle(ctx context.Context, query, courseID, studentID string) (*agent.Response, error) {
	key := cache.Key(courseID, query)
	if cached := p.cacheLookup(ctx, key); cached != nil {
		return cached, nil
	}

	decision, err := p.cfg.Router.Classify(ctx, query)
	if err != nil {
		// Classifiers recover internally; an error here means an injected
		// strategy misbehaved. Route to a human rather than guess.
		p.logger.Warn("classifier returned error, escalating", "error", err)
		decision = router.Decision{Route: router.RouteEscalate, Reason: "classifier failure"}
	}
	p.logger.Info("question classified",
		"course_id", courseID,
		"route", string(decision.Route),
		"confidence", decision.Confidence,
		"reason", decision.Reason,
	)

	switch decision.Route {
	case router.RouteEscalate:
		receipt, err := p.cfg.Escalations.Create(ctx, query, courseID, studentID, "")
		if err != nil {
			return nil, err
		}
		return &agent.Response{
			Response:       receipt.Message,
			Citations:      []citation.Citation{},
			Confidence:     decision.Confidence,
			ShouldEscalate: true,
		}, nil
	case router.RouteConcept:
		return p.answer(ctx, p.cfg.ConceptAgent, query, courseID, studentID, key)
	default:
		return p.answer(ctx, p.cfg.PolicyAgent, query, courseID, studentID, key)
	}
}

// answer runs one agent and, when it signals escalation, records the
// escalation and appends the receipt to the agent's fixed message.
func (p *Pipeline) answer(ctx context.Context, a *agent.Agent, query, courseID, studentID, cacheKey string) (*agent.Response, error) {
	resp := a.Answer(ctx, query, courseID)
	if resp.ShouldEscalate {
		receipt, err := p.cfg.Escalations.Create(ctx, query, courseID, studentID, a.ContentType())
		if err != nil {
			return nil, err
		}
		resp.Response = strings.TrimSpace(resp.Response) + " " + receipt.Message
		return resp, nil
	}

	p.cacheStore(ctx, cacheKey, resp)
	return resp, nil
}

func (p *Pipeline) cacheLookup(ctx context.Context, key string) *agent.Response {
	if p.cfg.Cache == nil {
		return nil
	}
	resp, err := p.cfg.Cache.Get(ctx, key)
	if err != nil {
		// Cache trouble must never block an answer.
		p.logger.Warn("answer cache lookup failed", "error", err)
		return nil
	}
	return resp
}

func (p *Pipeline) cacheStore(ctx context.Context, key string, resp *agent.Response) {
	if p.cfg.Cache == nil {
		return
	}
	if err := p.cfg.Cache.Set(ctx, key, resp); err != nil {
		p.logger.Warn("answer cache store failed", "error", err)
	}
}

// Route exposes classification without answering; the surrounding
// application uses it to preview routing in the review UI.
func (p *Pipeline) Route(ctx context.Context, query string) router.Decision {
	decision, err := p.cfg.Router.Classify(ctx, query)
	if err != nil {
		return router.Decision{Route: router.RouteEscalate, Reason: "classifier failure"}
	}
	return decision
}
