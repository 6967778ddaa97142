package markdown

import (
	"strings"
	"testing"
)

func TestRenderBasicMarkdown(t *testing.T) {
	r := NewRenderer(Options{})

	out, err := r.Render([]byte("# Title\n\nSome **bold** text."))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "<strong>bold</strong>") {
		t.Fatalf("unexpected output: %s", html)
	}
}

func TestRenderGFMTable(t *testing.T) {
	r := NewRenderer(Options{})

	out, err := r.Render([]byte("| a | b |\n| - | - |\n| 1 | 2 |"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "<table>") {
		t.Fatalf("expected GFM table, got: %s", out)
	}
}

func TestRenderHardWraps(t *testing.T) {
	soft := NewRenderer(Options{})
	hard := NewRenderer(Options{HardWraps: true})

	src := []byte("line one\nline two")
	softOut, err := soft.Render(src)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	hardOut, err := hard.Render(src)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(string(softOut), "<br") {
		t.Fatalf("soft wrap output should not contain <br>: %s", softOut)
	}
	if !strings.Contains(string(hardOut), "<br") {
		t.Fatalf("hard wrap output should contain <br>: %s", hardOut)
	}
}
