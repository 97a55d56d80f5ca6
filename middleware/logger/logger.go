package logger

import (
	"log/slog"

	"github.com/coursemate/coursemate/middleware"
	"github.com/coursemate/coursemate/pkg/logging"
)

// QuestionLogger logs each handled question and its outcome.
type QuestionLogger struct {
	logger *slog.Logger
}

// NewQuestionLogger creates a question logging middleware
func NewQuestionLogger() *QuestionLogger {
	return &QuestionLogger{logger: logging.WithComponent("question_log")}
}

// Name returns the middleware name
func (m *QuestionLogger) Name() string {
	return "QuestionLogger"
}

// Execute logs the question before handling and the outcome after.
func (m *QuestionLogger) Execute(ctx *middleware.Context, next middleware.Handler) error {
	m.logger.Info("question received",
		"course_id", ctx.CourseID,
		"student_id", ctx.StudentID,
		"query_length", len(ctx.Query),
	)

	err := next(ctx)

	switch {
	case err != nil:
		m.logger.Error("question handling failed", "course_id", ctx.CourseID, "error", err)
	case ctx.Response != nil:
		fields := []any{
			"course_id", ctx.CourseID,
			"escalated", ctx.Response.ShouldEscalate,
			"confidence", ctx.Response.Confidence,
			"citations", len(ctx.Response.Citations),
		}
		if remaining, ok := ctx.Metadata["rate_remaining"]; ok {
			fields = append(fields, "rate_remaining", remaining)
		}
		m.logger.Info("question handled", fields...)
	}
	return err
}
