package article

import (
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"Hello, World! 你好", "hello-world-你好"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"snake_case_words", "snake-case-words"},
		{"Multiple   spaces -- and  hyphens", "multiple-spaces-and-hyphens"},
		{"--edges--", "edges"},
		{"Go 1.24 发布了", "go-124-发布了"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := Slugify(tc.title); got != tc.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestSlugifyIdempotentUnderWhitespaceNormalization(t *testing.T) {
	titles := []string{"Hello   World", "\tHello World\n", "Hello \t World"}
	want := Slugify("Hello World")
	for _, title := range titles {
		if got := Slugify(title); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", title, got, want)
		}
	}
	for _, title := range titles {
		if got := Slugify(Slugify(title)); got != want {
			t.Fatalf("Slugify not idempotent for %q: got %q", title, got)
		}
	}
}

func TestTimestampedFilename(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 4, 5, 123000000, time.UTC)
	got := TimestampedFilename("hello-world", now)
	want := "hello-world-2026-08-30T12-04-05-123Z.md"
	if got != want {
		t.Fatalf("TimestampedFilename = %q, want %q", got, want)
	}
}

func TestFilenameAndStem(t *testing.T) {
	if got := Filename("intro"); got != "intro.md" {
		t.Fatalf("Filename = %q", got)
	}
	if got := Stem("intro.md"); got != "intro" {
		t.Fatalf("Stem = %q", got)
	}
}
