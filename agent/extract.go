package agent

import "strings"

// Deterministic extractive answering: locate a query keyword in the combined
// context and return the sentence containing it. This exists so the
// retrieval, confidence, and escalation logic can be exercised without a
// completion provider, which is both non-deterministic and expensive.

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"when": {}, "what": {}, "where": {}, "who": {}, "how": {}, "why": {},
	"does": {}, "do": {}, "did": {}, "will": {}, "would": {}, "can": {},
	"could": {}, "should": {}, "for": {}, "and": {}, "our": {}, "this": {},
	"that": {}, "with": {}, "about": {}, "there": {}, "have": {}, "has": {},
}

// extractAnswer returns the first context sentence containing a significant
// query keyword. The second return is false when no sentence matches.
func extractAnswer(query, contextBlock string) (string, bool) {
	keywords := significantWords(query)
	if len(keywords) == 0 {
		return "", false
	}

	for _, sentence := range splitSentences(contextBlock) {
		lower := strings.ToLower(sentence)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return sentence, true
			}
		}
	}
	return "", false
}

func significantWords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.Trim(f, ".,;:!?\"'()")
		if len(w) < 3 {
			continue
		}
		if _, skip := stopwords[w]; skip {
			continue
		}
		words = append(words, w)
	}
	return words
}

// splitSentences breaks the context block on terminal punctuation and line
// boundaries. Source-label lines ("[Syllabus ...]") come through as their own
// segments and are skipped by the keyword scan only if nothing else matches
// first, which is acceptable for this heuristic path.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}
	for _, r := range text {
		switch r {
		case '.', '!', '?', '\n':
			if r != '\n' {
				current.WriteRune(r)
			}
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return sentences
}
