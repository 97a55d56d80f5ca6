package passage

import (
	"strconv"
	"strings"
)

// ContentType partitions course content into the categories the answering
// agents own.
type ContentType string

const (
	ContentTypePolicy  ContentType = "policy"
	ContentTypeConcept ContentType = "concept"
)

// Valid reports whether the content type is one of the known categories.
func (c ContentType) Valid() bool {
	return c == ContentTypePolicy || c == ContentTypeConcept
}

// Passage is a retrievable unit of course content. Passages belong to exactly
// one course and one content type; embeddings are immutable once stored, so
// re-ingestion creates new rows rather than mutating existing ones.
type Passage struct {
	ID          string
	Content     string
	CourseID    string
	ContentType ContentType
	PageNumber  *int
	WeekNumber  *int
	Topic       string
	Embedding   []float32
}

// Clone returns a deep copy so callers never alias stored state.
func (p Passage) Clone() Passage {
	clone := p
	if p.PageNumber != nil {
		v := *p.PageNumber
		clone.PageNumber = &v
	}
	if p.WeekNumber != nil {
		v := *p.WeekNumber
		clone.WeekNumber = &v
	}
	if len(p.Embedding) > 0 {
		clone.Embedding = make([]float32, len(p.Embedding))
		copy(clone.Embedding, p.Embedding)
	}
	return clone
}

// Retrieved pairs a passage with the similarity score assigned at query time.
// It is owned by the retrieval call that produced it and is never persisted.
type Retrieved struct {
	Passage Passage
	Score   float64
}

// SourceLabel builds the human-readable label used in context blocks and
// citations: "Syllabus" plus optional week and topic qualifiers.
func (p Passage) SourceLabel() string {
	label := "Syllabus"
	if p.WeekNumber != nil {
		label += " Week " + strconv.Itoa(*p.WeekNumber)
	}
	if topic := strings.TrimSpace(p.Topic); topic != "" {
		label += " - " + topic
	}
	return label
}
