package citation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/coursemate/coursemate/passage"
)

func TestBuildOnePerPassage(t *testing.T) {
	week := 4
	page := 12
	retrieved := []passage.Retrieved{
		{Passage: passage.Passage{Content: "The midterm is on November 18.", WeekNumber: &week, Topic: "Exams", PageNumber: &page}, Score: 0.9},
		{Passage: passage.Passage{Content: "Late work loses 10% per day."}, Score: 0.8},
	}

	citations := Build(retrieved)
	if len(citations) != 2 {
		t.Fatalf("Build() returned %d citations, want 2", len(citations))
	}
	if citations[0].Source != "Syllabus Week 4 - Exams" {
		t.Errorf("Source = %q, want %q", citations[0].Source, "Syllabus Week 4 - Exams")
	}
	if citations[0].Page == nil || *citations[0].Page != 12 {
		t.Errorf("Page not carried through")
	}
	if citations[0].Content != "The midterm is on November 18." {
		t.Errorf("short content should be quoted verbatim, got %q", citations[0].Content)
	}
	if citations[1].Source != "Syllabus" {
		t.Errorf("Source = %q, want %q", citations[1].Source, "Syllabus")
	}
}

func TestBuildTruncatesLongContent(t *testing.T) {
	long := strings.Repeat("a", 500)
	citations := Build([]passage.Retrieved{{Passage: passage.Passage{Content: long}}})

	got := citations[0].Content
	if len(got) != 203 {
		t.Errorf("excerpt length = %d, want 203", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("excerpt missing ellipsis suffix: %q", got[len(got)-10:])
	}
}

func TestBuildTruncatesOnRuneBoundary(t *testing.T) {
	// 100 three-byte runes; the 200-byte cut lands mid-rune and must back
	// off to byte 198.
	long := strings.Repeat("世", 100)
	citations := Build([]passage.Retrieved{{Passage: passage.Passage{Content: long}}})

	got := citations[0].Content
	if !utf8.ValidString(got) {
		t.Fatalf("excerpt is not valid UTF-8: %q", got)
	}
	if len(got) != 198+3 {
		t.Errorf("excerpt length = %d, want 201", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("excerpt missing ellipsis suffix")
	}
	if !strings.HasPrefix(long, strings.TrimSuffix(got, "...")) {
		t.Errorf("excerpt is not a prefix of the content")
	}
}

func TestBuildEmpty(t *testing.T) {
	citations := Build(nil)
	if citations == nil {
		t.Fatal("Build(nil) = nil, want empty slice")
	}
	if len(citations) != 0 {
		t.Errorf("Build(nil) returned %d citations, want 0", len(citations))
	}
}
