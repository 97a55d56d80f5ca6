// Package offline provides a deterministic completion provider for
// environments without API access. It answers synthesis prompts by quoting
// the first context sentence that shares a keyword with the question, and
// refuses when no sentence matches. Useful for demos and smoke tests where
// live providers are unavailable.
package offline

import (
	"context"
	"strings"

	"github.com/coursemate/coursemate/llm"
)

const refusal = "I don't know"

// Provider implements llm.Client without network access.
type Provider struct {
	canned map[string]string
}

// Option customizes the provider.
type Option func(*Provider)

// WithCannedResponse registers a fixed response returned whenever the prompt
// contains the given substring. Matching is case-insensitive.
func WithCannedResponse(promptContains, response string) Option {
	return func(p *Provider) {
		p.canned[strings.ToLower(promptContains)] = response
	}
}

// New creates an offline Provider.
func New(opts ...Option) *Provider {
	p := &Provider{canned: make(map[string]string)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Complete implements llm.Client.
func (p *Provider) Complete(_ context.Context, req *llm.Request) (*llm.Response, error) {
	lower := strings.ToLower(req.Prompt)
	for needle, response := range p.canned {
		if strings.Contains(lower, needle) {
			return &llm.Response{Text: response}, nil
		}
	}

	contextBlock, question, ok := splitPrompt(req.Prompt)
	if !ok {
		return &llm.Response{Text: refusal}, nil
	}
	if answer, found := quoteSentence(question, contextBlock); found {
		return &llm.Response{Text: answer}, nil
	}
	return &llm.Response{Text: refusal}, nil
}

// splitPrompt separates the context material from the trailing question in a
// synthesis prompt. Prompts without a "Question:" line are not answerable.
func splitPrompt(prompt string) (contextBlock, question string, ok bool) {
	idx := strings.LastIndex(prompt, "Question:")
	if idx < 0 {
		return "", "", false
	}
	question = prompt[idx+len("Question:"):]
	if cut := strings.Index(question, "Answer:"); cut >= 0 {
		question = question[:cut]
	}
	return prompt[:idx], strings.TrimSpace(question), true
}

// quoteSentence returns the first context sentence sharing a keyword with the
// question.
func quoteSentence(question, contextBlock string) (string, bool) {
	keywords := keywordsOf(question)
	if len(keywords) == 0 {
		return "", false
	}
	for _, sentence := range sentencesOf(contextBlock) {
		lower := strings.ToLower(sentence)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return sentence, true
			}
		}
	}
	return "", false
}

var skipwords = map[string]struct{}{
	"the": {}, "and": {}, "what": {}, "when": {}, "where": {}, "how": {},
	"why": {}, "does": {}, "are": {}, "for": {}, "our": {}, "this": {},
	"that": {}, "will": {}, "can": {}, "about": {},
}

func keywordsOf(question string) []string {
	fields := strings.Fields(strings.ToLower(question))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.Trim(f, ".,;:!?\"'()")
		if len(w) < 3 {
			continue
		}
		if _, skip := skipwords[w]; skip {
			continue
		}
		words = append(words, w)
	}
	return words
}

func sentencesOf(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		for _, s := range strings.FieldsFunc(line, func(r rune) bool {
			return r == '.' || r == '!' || r == '?'
		}) {
			s = strings.TrimSpace(s)
			if s != "" && !strings.HasPrefix(s, "[") {
				out = append(out, s+".")
			}
		}
	}
	return out
}
