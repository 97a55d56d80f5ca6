package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	coursemateerrors "github.com/coursemate/coursemate/errors"
	"github.com/coursemate/coursemate/escalation"
)

// InMemoryStore implements escalation.Store using in-memory storage
type InMemoryStore struct {
	escalations map[string]*escalation.Escalation
	mu          sync.RWMutex
}

// NewInMemoryStore creates a new in-memory escalation store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		escalations: make(map[string]*escalation.Escalation),
	}
}

// Insert persists a new escalation record.
func (s *InMemoryStore) Insert(ctx context.Context, esc *escalation.Escalation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if esc == nil {
		return fmt.Errorf("escalation cannot be nil")
	}
	if esc.ID == "" {
		return fmt.Errorf("escalation ID cannot be empty")
	}
	if _, exists := s.escalations[esc.ID]; exists {
		return fmt.Errorf("escalation %s: %w", esc.ID, coursemateerrors.ErrAlreadyExists)
	}

	clone := *esc
	s.escalations[esc.ID] = &clone
	return nil
}

// Get retrieves an escalation by ID.
func (s *InMemoryStore) Get(ctx context.Context, id string) (*escalation.Escalation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	esc, exists := s.escalations[id]
	if !exists {
		return nil, fmt.Errorf("escalation %s: %w", id, coursemateerrors.ErrNotFound)
	}
	clone := *esc
	return &clone, nil
}

// ListByCourse lists escalations for a course, newest first.
func (s *InMemoryStore) ListByCourse(ctx context.Context, courseID string, status escalation.Status) ([]*escalation.Escalation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*escalation.Escalation
	for _, esc := range s.escalations {
		if esc.CourseID != courseID {
			continue
		}
		if status != "" && esc.Status != status {
			continue
		}
		clone := *esc
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Count returns the number of stored escalations.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.escalations)
}
