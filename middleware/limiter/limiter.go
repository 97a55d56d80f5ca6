package limiter

import (
	"sync"
	"time"

	"github.com/coursemate/coursemate/middleware"
)

// StudentRateLimiter bounds how many questions one student may ask per
// window. Counters reset lazily when the window rolls over.
type StudentRateLimiter struct {
	maxRequests int
	window      time.Duration
	now         func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	count       int
	windowStart time.Time
}

// NewStudentRateLimiter creates a per-student rate limiting middleware.
func NewStudentRateLimiter(maxRequests int, window time.Duration) *StudentRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &StudentRateLimiter{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		buckets:     make(map[string]*bucket),
	}
}

// Name returns the middleware name
func (m *StudentRateLimiter) Name() string {
	return "StudentRateLimiter"
}

// Execute checks the student's request budget for the current window. The
// remaining budget is published on the context metadata for downstream
// middlewares.
func (m *StudentRateLimiter) Execute(ctx *middleware.Context, next middleware.Handler) error {
	remaining, ok := m.allow(ctx.StudentID)
	if !ok {
		return middleware.ErrRateLimitExceeded
	}
	ctx.Metadata["rate_remaining"] = remaining
	return next(ctx)
}

func (m *StudentRateLimiter) allow(studentID string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.buckets[studentID]
	if !ok || now.Sub(b.windowStart) >= m.window {
		m.buckets[studentID] = &bucket{count: 1, windowStart: now}
		return m.maxRequests - 1, true
	}
	if b.count >= m.maxRequests {
		return 0, false
	}
	b.count++
	return m.maxRequests - b.count, true
}

// Reset clears all counters; mainly useful for tests.
func (m *StudentRateLimiter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buckets = make(map[string]*bucket)
}
