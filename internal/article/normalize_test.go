package article

import (
	"errors"
	"strings"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func fixedClock() time.Time {
	return time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
}

func TestNormalizeFillsDefaults(t *testing.T) {
	n := NewNormalizer(NormalizerConfig{Clock: fixedClock})

	meta, err := n.Normalize(Metadata{Title: "  Intro  "}, "some short body")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if meta.Title != "Intro" {
		t.Fatalf("expected trimmed title, got %q", meta.Title)
	}
	if meta.Date != "2026-08-30" {
		t.Fatalf("expected current date default, got %q", meta.Date)
	}
	if meta.Category != DefaultCategory {
		t.Fatalf("expected default category, got %q", meta.Category)
	}
	if meta.ReadTime != 1 {
		t.Fatalf("expected read time floor of 1, got %d", meta.ReadTime)
	}
	if meta.Tags == nil || len(meta.Tags) != 0 {
		t.Fatalf("expected empty tag list, got %#v", meta.Tags)
	}
}

func TestNormalizePreservesCallerValues(t *testing.T) {
	n := NewNormalizer(NormalizerConfig{Clock: fixedClock})

	in := Metadata{
		Title:    "Intro",
		Date:     "2025-01-02",
		Category: "技术",
		Tags:     []string{"go", "blog"},
		ReadTime: 7,
		Excerpt:  "hand written",
	}
	meta, err := n.Normalize(in, "content")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if meta.Date != "2025-01-02" || meta.Category != "技术" || meta.ReadTime != 7 {
		t.Fatalf("caller values overwritten: %#v", meta)
	}
	if len(meta.Tags) != 2 || meta.Tags[0] != "go" || meta.Tags[1] != "blog" {
		t.Fatalf("tag order not preserved: %#v", meta.Tags)
	}
	if meta.Excerpt != "hand written" {
		t.Fatalf("excerpt overwritten: %q", meta.Excerpt)
	}
}

func TestNormalizeRejectsMissingFields(t *testing.T) {
	n := NewNormalizer(NormalizerConfig{Clock: fixedClock})

	cases := []struct {
		name  string
		title string
		body  string
		field string
	}{
		{"empty title", "", "body", "title"},
		{"whitespace title", "   ", "body", "title"},
		{"empty body", "Intro", "", "content"},
	}

	for _, tc := range cases {
		_, err := n.Normalize(Metadata{Title: tc.title}, tc.body)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		var verrs validation.Errors
		if !errors.As(err, &verrs) {
			t.Fatalf("%s: expected validation.Errors, got %T", tc.name, err)
		}
		if _, ok := verrs[tc.field]; !ok {
			t.Fatalf("%s: expected %q field error, got %v", tc.name, tc.field, verrs)
		}
	}
}

func TestEstimateReadTime(t *testing.T) {
	if got := EstimateReadTime("", 200); got != 0 {
		t.Fatalf("empty body: got %d", got)
	}
	if got := EstimateReadTime("one two three", 200); got != 1 {
		t.Fatalf("short body: got %d", got)
	}
	long := strings.Repeat("word ", 401)
	if got := EstimateReadTime(long, 200); got != 3 {
		t.Fatalf("401 words at 200wpm: got %d, want 3", got)
	}
}

func TestDefaultExcerpt(t *testing.T) {
	if got := DefaultExcerpt("short body"); got != "short body" {
		t.Fatalf("short body: %q", got)
	}
	long := strings.Repeat("字", 250)
	got := DefaultExcerpt(long)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
	if len([]rune(got)) != 203 {
		t.Fatalf("expected 200 runes plus ellipsis, got %d", len([]rune(got)))
	}
}
