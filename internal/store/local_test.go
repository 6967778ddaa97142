package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newLocalStore(t *testing.T) *Local {
	t.Helper()
	s, err := NewLocal(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return s
}

func TestLocalCreateAndRead(t *testing.T) {
	s := newLocalStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, "blogs/技术/intro.md", []byte("hello"), "add intro"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	file, err := s.Read(ctx, "blogs/技术/intro.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(file.Content) != "hello" {
		t.Fatalf("unexpected content %q", file.Content)
	}
	if file.Size != 5 {
		t.Fatalf("unexpected size %d", file.Size)
	}
}

func TestLocalReadMissing(t *testing.T) {
	s := newLocalStore(t)

	_, err := s.Read(context.Background(), "missing.md")
	if !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestLocalUpdateRequiresExistingFile(t *testing.T) {
	s := newLocalStore(t)
	ctx := context.Background()

	err := s.Update(ctx, "blogs/missing.md", []byte("x"), "update", "")
	if !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	if err := s.Create(ctx, "blogs/post.md", []byte("v1"), ""); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Update(ctx, "blogs/post.md", []byte("v2"), "", ""); err != nil {
		t.Fatalf("Update: %v", err)
	}
	file, err := s.Read(ctx, "blogs/post.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(file.Content) != "v2" {
		t.Fatalf("expected replaced content, got %q", file.Content)
	}
}

func TestLocalDelete(t *testing.T) {
	s := newLocalStore(t)
	ctx := context.Background()

	if err := s.Delete(ctx, "nope.md", ""); !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	if err := s.Create(ctx, "post.md", []byte("x"), ""); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Delete(ctx, "post.md", ""); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read(ctx, "post.md"); !IsNotFound(err) {
		t.Fatalf("expected file gone, got %v", err)
	}
}

func TestLocalListFiltersMarkdown(t *testing.T) {
	s := newLocalStore(t)
	ctx := context.Background()

	for _, name := range []string{"a.md", "b.md", "notes.txt"} {
		if err := s.Create(ctx, "blogs/"+name, []byte("x"), ""); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}
	if err := s.Create(ctx, "blogs/drafts/c.md", []byte("x"), ""); err != nil {
		t.Fatalf("Create draft: %v", err)
	}

	entries, err := s.List(ctx, "blogs")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 markdown files, got %d: %#v", len(entries), entries)
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name) != ".md" {
			t.Fatalf("unexpected entry %q", entry.Name)
		}
	}
}

func TestLocalListMissingDirectoryIsEmpty(t *testing.T) {
	s := newLocalStore(t)

	entries, err := s.List(context.Background(), "never-written")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty listing, got %#v", entries)
	}
}

func TestLocalRejectsEscapingPaths(t *testing.T) {
	s := newLocalStore(t)

	if err := s.Create(context.Background(), "../outside.md", []byte("x"), ""); err == nil {
		t.Fatalf("expected traversal rejection")
	}
}

func TestLocalExists(t *testing.T) {
	s := newLocalStore(t)
	ctx := context.Background()

	ok, err := s.Exists(ctx, "blogs")
	if err != nil || ok {
		t.Fatalf("expected missing dir, got ok=%v err=%v", ok, err)
	}
	if err := s.Create(ctx, "blogs/a.md", []byte("x"), ""); err != nil {
		t.Fatalf("Create: %v", err)
	}
	ok, err = s.Exists(ctx, "blogs")
	if err != nil || !ok {
		t.Fatalf("expected dir present, got ok=%v err=%v", ok, err)
	}
}

func TestLocalWriteCreatesParentDirectories(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocal(root, nil)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	if err := s.Create(context.Background(), "a/b/c/post.md", []byte("x"), ""); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "a", "b", "c", "post.md")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
}
