package validator

import (
	"fmt"
	"strings"

	"github.com/coursemate/coursemate/middleware"
)

// DefaultMaxQueryLength bounds question size; longer input is almost always
// pasted content rather than a question.
const DefaultMaxQueryLength = 2000

// QuestionValidator rejects empty and oversized questions before they reach
// the pipeline.
type QuestionValidator struct {
	maxLength int
}

// NewQuestionValidator creates a question validation middleware. maxLength of
// 0 uses the default.
func NewQuestionValidator(maxLength int) *QuestionValidator {
	if maxLength <= 0 {
		maxLength = DefaultMaxQueryLength
	}
	return &QuestionValidator{maxLength: maxLength}
}

// Name returns the middleware name
func (m *QuestionValidator) Name() string {
	return "QuestionValidator"
}

// Execute validates the question
func (m *QuestionValidator) Execute(ctx *middleware.Context, next middleware.Handler) error {
	query := strings.TrimSpace(ctx.Query)
	if query == "" {
		return fmt.Errorf("%w: question cannot be empty", middleware.ErrInvalidQuestion)
	}
	if len(query) > m.maxLength {
		return fmt.Errorf("%w: question exceeds %d characters", middleware.ErrInvalidQuestion, m.maxLength)
	}
	if ctx.CourseID == "" {
		return fmt.Errorf("%w: course ID is required", middleware.ErrInvalidQuestion)
	}
	ctx.Query = query
	return next(ctx)
}
