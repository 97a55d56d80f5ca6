package escalation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/coursemate/coursemate/passage"
	"github.com/coursemate/coursemate/pkg/logging"
)

// refCodeLen is the length of the reference code quoted back to the student.
const refCodeLen = 8

// Receipt confirms a recorded escalation.
type Receipt struct {
	EscalationID string
	Message      string
}

// Handler records escalations. It is the terminal path for every question the
// agents cannot answer, so a persistence failure here is fatal to the
// request: a student must never believe a question reached the instructor
// when it did not.
type Handler struct {
	store    Store
	profiles ProfileDirectory
	logger   *slog.Logger
}

// NewHandler creates an escalation handler. profiles may be nil; confirmation
// messages then omit the student's name.
func NewHandler(store Store, profiles ProfileDirectory) *Handler {
	return &Handler{
		store:    store,
		profiles: profiles,
		logger:   logging.WithComponent("escalation"),
	}
}

// Create inserts one pending escalation and returns a confirmation receipt.
// Repeated calls for the same question create separate records; no
// deduplication is attempted.
func (h *Handler) Create(ctx context.Context, query, courseID, studentID string, category passage.ContentType) (*Receipt, error) {
	esc := &Escalation{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		StudentID: studentID,
		Query:     query,
		Category:  category,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.store.Insert(ctx, esc); err != nil {
		h.logger.Error("failed to persist escalation", "error", err, "course_id", courseID)
		return nil, fmt.Errorf("insert escalation: %w", err)
	}

	name := h.lookupName(ctx, studentID)
	refCode := esc.ID
	if len(refCode) > refCodeLen {
		refCode = refCode[:refCodeLen]
	}

	message := fmt.Sprintf(
		"Your question has been sent to the instructor for review. Reference code: %s.",
		refCode,
	)
	if name != "" {
		message = fmt.Sprintf(
			"Thanks %s, your question has been sent to the instructor for review. Reference code: %s.",
			name, refCode,
		)
	}

	h.logger.Info("escalation recorded",
		"escalation_id", esc.ID,
		"course_id", courseID,
		"category", string(category),
	)
	return &Receipt{EscalationID: esc.ID, Message: message}, nil
}

func (h *Handler) lookupName(ctx context.Context, studentID string) string {
	if h.profiles == nil {
		return ""
	}
	name, err := h.profiles.DisplayName(ctx, studentID)
	if err != nil {
		h.logger.Warn("profile lookup failed", "error", err, "student_id", studentID)
		return ""
	}
	return name
}
