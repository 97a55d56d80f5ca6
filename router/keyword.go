package router

import (
	"context"
	"strings"
)

// Keyword lists evaluated in fixed priority order. Escalation keywords are
// checked first: a personal or emergency phrase anywhere in the question must
// never be answered automatically, even when policy keywords co-occur.
var (
	escalateKeywords = []string{
		"sick", "sickness", "illness", "emergency", "personal", "death", "died",
		"funeral", "hospital", "conflict", "urgent", "crisis", "accommodation",
		"mental health", "family",
	}
	policyKeywords = []string{
		"deadline", "due date", "grading", "grade", "grades", "attendance",
		"exam date", "exam", "exams", "midterm", "final", "late policy", "late",
		"extension", "syllabus", "office hours", "submission", "policy",
		"when is", "schedule",
	}
	conceptKeywords = []string{
		"explain", "how does", "how do", "what is", "define", "definition",
		"algorithm", "recursion", "example", "why does", "difference between",
		"concept", "understand",
	}
)

// KeywordClassifier routes questions with ordered keyword lists. It is fully
// deterministic and needs no provider credentials, which makes it both the
// offline mode and the fallback when model classification fails.
type KeywordClassifier struct{}

// NewKeywordClassifier creates a keyword-based classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Classify evaluates the keyword lists in priority order: escalate, then
// policy, then concept. An unmatched question defaults to POLICY at low
// confidence so it still reaches the confidence gate downstream.
func (c *KeywordClassifier) Classify(ctx context.Context, query string) (Decision, error) {
	lower := strings.ToLower(query)

	if kw, ok := firstMatch(lower, escalateKeywords); ok {
		return Decision{
			Route:      RouteEscalate,
			Confidence: 0.9,
			Reason:     "escalation keyword: " + kw,
		}, nil
	}
	if kw, ok := firstMatch(lower, policyKeywords); ok {
		return Decision{
			Route:      RoutePolicy,
			Confidence: 0.85,
			Reason:     "policy keyword: " + kw,
		}, nil
	}
	if kw, ok := firstMatch(lower, conceptKeywords); ok {
		return Decision{
			Route:      RouteConcept,
			Confidence: 0.85,
			Reason:     "concept keyword: " + kw,
		}, nil
	}

	return Decision{
		Route:      RoutePolicy,
		Confidence: 0.6,
		Reason:     "no keyword matched, defaulting to policy",
	}, nil
}

func firstMatch(lower string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if containsKeyword(lower, kw) {
			return kw, true
		}
	}
	return "", false
}

// containsKeyword matches single-word keywords on word boundaries so that
// short entries like "died" or "late" cannot fire inside unrelated words
// ("studied", "lately"). Phrases keep plain substring matching.
func containsKeyword(lower, kw string) bool {
	if strings.Contains(kw, " ") {
		return strings.Contains(lower, kw)
	}
	for offset := 0; ; {
		i := strings.Index(lower[offset:], kw)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(kw)
		if (start == 0 || !isWordByte(lower[start-1])) &&
			(end == len(lower) || !isWordByte(lower[end])) {
			return true
		}
		offset = start + 1
	}
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
