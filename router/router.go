package router

import "context"

// Route is the classification outcome for an incoming question.
type Route string

const (
	RoutePolicy   Route = "POLICY"
	RouteConcept  Route = "CONCEPT"
	RouteEscalate Route = "ESCALATE"
)

// Decision is the transient result of classifying one question. It is never
// persisted, only logged.
type Decision struct {
	Route      Route
	Confidence float64
	Reason     string
}

// Classifier routes a raw question to a handling route. Implementations must
// resolve uncertainty toward a safe route rather than returning an error; the
// Classify error exists for callers that inject failing test doubles.
type Classifier interface {
	Classify(ctx context.Context, query string) (Decision, error)
}
