// Package citation maps retrieved passages to the user-facing source
// references shown under an answer. It is pure: no network or persistence
// access.
package citation

import (
	"unicode/utf8"

	"github.com/coursemate/coursemate/passage"
)

// excerptLimit caps the quoted content of a citation.
const excerptLimit = 200

// Citation is a user-facing reference back to the passage backing an answer.
type Citation struct {
	Source  string
	Page    *int
	Content string
}

// Build derives one citation per retrieved passage, preserving order.
func Build(passages []passage.Retrieved) []Citation {
	citations := make([]Citation, 0, len(passages))
	for _, r := range passages {
		citations = append(citations, Citation{
			Source:  r.Passage.SourceLabel(),
			Page:    r.Passage.PageNumber,
			Content: excerpt(r.Passage.Content),
		})
	}
	return citations
}

func excerpt(content string) string {
	if len(content) <= excerptLimit {
		return content
	}
	// Back off to a rune boundary so the cut never splits a multi-byte
	// character.
	cut := excerptLimit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "..."
}
