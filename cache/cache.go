// Package cache stores successful answers keyed by course and normalized
// question text. Escalated responses are never cached: a repeated question
// that needs a human must reach one again.
package cache

import (
	"context"
	"strings"

	"github.com/coursemate/coursemate/agent"
)

// AnswerCache is an optional read-through cache in front of the answer
// pipeline.
type AnswerCache interface {
	// Get returns the cached response for the key, or nil on a miss. A miss
	// is not an error.
	Get(ctx context.Context, key string) (*agent.Response, error)

	// Set stores a response under the key.
	Set(ctx context.Context, key string, resp *agent.Response) error
}

// Key builds a cache key from a course and a question. Normalization is
// deliberately light: lowercase and collapsed whitespace, no stemming.
func Key(courseID, query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return courseID + ":" + normalized
}
