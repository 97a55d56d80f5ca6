package escalation

import (
	"context"
	"time"

	"github.com/coursemate/coursemate/passage"
)

// Status tracks an escalation through human review. The core only ever
// inserts pending records; the transition to resolved happens in the
// instructor review flow.
type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

// Escalation is a persisted request for instructor review of a question the
// system could not safely answer.
type Escalation struct {
	ID         string
	CourseID   string
	StudentID  string
	Query      string
	Category   passage.ContentType // empty when the router escalated directly
	Status     Status
	Response   string
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

// Store persists escalation records. The core inserts and reads; it never
// updates status.
type Store interface {
	// Insert persists a new escalation.
	Insert(ctx context.Context, esc *Escalation) error

	// Get retrieves an escalation by ID.
	Get(ctx context.Context, id string) (*Escalation, error)

	// ListByCourse lists a course's escalations, optionally filtered by
	// status (empty status means all).
	ListByCourse(ctx context.Context, courseID string, status Status) ([]*Escalation, error)
}

// ProfileDirectory resolves student display names for confirmation messages.
// Lookups are best effort; a missing profile never fails an escalation.
type ProfileDirectory interface {
	DisplayName(ctx context.Context, studentID string) (string, error)
}
