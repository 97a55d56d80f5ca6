package store

import (
	"context"
	"errors"
	"testing"
	"time"

	coursemateerrors "github.com/coursemate/coursemate/errors"
	"github.com/coursemate/coursemate/escalation"
)

func pending(id, courseID string, createdAt time.Time) *escalation.Escalation {
	return &escalation.Escalation{
		ID:        id,
		CourseID:  courseID,
		StudentID: "s1",
		Query:     "q",
		Status:    escalation.StatusPending,
		CreatedAt: createdAt,
	}
}

func TestInMemoryStoreInsertAndGet(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	esc := pending("e1", "cs101", time.Now())
	if err := s.Insert(ctx, esc); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := s.Get(ctx, "e1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.CourseID != "cs101" || got.Status != escalation.StatusPending {
		t.Errorf("Get() = %+v", got)
	}

	// Returned records are copies.
	got.Status = escalation.StatusResolved
	again, _ := s.Get(ctx, "e1")
	if again.Status != escalation.StatusPending {
		t.Error("Get() returned aliased record")
	}
}

func TestInMemoryStoreDuplicateInsert(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	if err := s.Insert(ctx, pending("e1", "cs101", time.Now())); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	err := s.Insert(ctx, pending("e1", "cs101", time.Now()))
	if !errors.Is(err, coursemateerrors.ErrAlreadyExists) {
		t.Errorf("duplicate Insert() error = %v, want ErrAlreadyExists", err)
	}
}

func TestInMemoryStoreGetMissing(t *testing.T) {
	s := NewInMemoryStore()
	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, coursemateerrors.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestInMemoryStoreListByCourse(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	base := time.Now()

	older := pending("e1", "cs101", base.Add(-time.Hour))
	newer := pending("e2", "cs101", base)
	resolved := pending("e3", "cs101", base.Add(-time.Minute))
	resolved.Status = escalation.StatusResolved
	other := pending("e4", "cs999", base)

	for _, esc := range []*escalation.Escalation{older, newer, resolved, other} {
		if err := s.Insert(ctx, esc); err != nil {
			t.Fatalf("Insert(%s) error = %v", esc.ID, err)
		}
	}

	all, err := s.ListByCourse(ctx, "cs101", "")
	if err != nil {
		t.Fatalf("ListByCourse() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListByCourse() = %d records, want 3", len(all))
	}
	if all[0].ID != "e2" {
		t.Errorf("ListByCourse() not sorted newest first: %s", all[0].ID)
	}

	pendingOnly, err := s.ListByCourse(ctx, "cs101", escalation.StatusPending)
	if err != nil {
		t.Fatalf("ListByCourse() error = %v", err)
	}
	if len(pendingOnly) != 2 {
		t.Errorf("pending filter returned %d records, want 2", len(pendingOnly))
	}
}
