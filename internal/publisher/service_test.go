package publisher

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Allenwdk/OxygenBlog/internal/article"
	"github.com/Allenwdk/OxygenBlog/internal/frontmatter"
	"github.com/Allenwdk/OxygenBlog/internal/history"
	"github.com/Allenwdk/OxygenBlog/internal/store"
	"github.com/Allenwdk/OxygenBlog/pkg/interfaces"
)

type memFile struct {
	content  []byte
	revision string
}

// memStore is an in-memory ContentStore with GitHub-like revision handling.
type memStore struct {
	mu         sync.Mutex
	files      map[string]memFile
	revSeq     int
	ensured    []string
	dispatched []string
	failCreate map[string]error
}

func newMemStore() *memStore {
	return &memStore{files: map[string]memFile{}, failCreate: map[string]error{}}
}

func (m *memStore) nextRev() string {
	m.revSeq++
	return fmt.Sprintf("rev-%d", m.revSeq)
}

func (m *memStore) Create(_ context.Context, path string, content []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failCreate[path]; ok {
		return err
	}
	if _, ok := m.files[path]; ok {
		return &store.RevisionConflictError{Path: path, Message: "already exists"}
	}
	m.files[path] = memFile{content: append([]byte(nil), content...), revision: m.nextRev()}
	return nil
}

func (m *memStore) Read(_ context.Context, path string) (*interfaces.StoredFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.files[path]
	if !ok {
		return nil, &store.NotFoundError{Path: path}
	}
	return &interfaces.StoredFile{
		Path:     path,
		Content:  append([]byte(nil), file.content...),
		Revision: file.revision,
		Size:     int64(len(file.content)),
	}, nil
}

func (m *memStore) Update(_ context.Context, path string, content []byte, _ string, revision string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.files[path]
	if !ok {
		return &store.NotFoundError{Path: path}
	}
	if revision != file.revision {
		return &store.RevisionConflictError{Path: path, Message: "revision mismatch"}
	}
	m.files[path] = memFile{content: append([]byte(nil), content...), revision: m.nextRev()}
	return nil
}

func (m *memStore) Delete(_ context.Context, path string, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; !ok {
		return &store.NotFoundError{Path: path}
	}
	delete(m.files, path)
	return nil
}

func (m *memStore) List(_ context.Context, dir string) ([]interfaces.StoreEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.Trim(dir, "/") + "/"
	var entries []interfaces.StoreEntry
	for path, file := range m.files {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := strings.TrimPrefix(path, prefix)
		if strings.Contains(rest, "/") || !strings.HasSuffix(rest, ".md") {
			continue
		}
		entries = append(entries, interfaces.StoreEntry{
			Path:     path,
			Name:     rest,
			Size:     int64(len(file.content)),
			Revision: file.revision,
		})
	}
	return entries, nil
}

func (m *memStore) Exists(_ context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok, nil
}

func (m *memStore) EnsureDirectory(_ context.Context, dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensured = append(m.ensured, dir)
	return nil
}

func (m *memStore) DispatchWorkflow(_ context.Context, workflowID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatched = append(m.dispatched, workflowID)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestService(t *testing.T, ms *memStore, recorder history.Recorder) *Service {
	t.Helper()
	svc, err := NewService(ServiceConfig{
		Store:   ms,
		History: recorder,
		Clock:   fixedClock(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)),
		Backend: "memory",
	})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestServicePublish(t *testing.T) {
	ms := newMemStore()
	recorder := history.NewMemoryRecorder()
	svc := newTestService(t, ms, recorder)

	result, err := svc.Publish(context.Background(), Request{
		Metadata: article.Metadata{Title: "Hello, World! 你好", Tags: []string{"go"}},
		Content:  "# Hello\n\nBody text.",
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if result.Filename != "hello-world-你好.md" {
		t.Errorf("filename = %q", result.Filename)
	}
	if result.Path != "src/content/blogs/hello-world-你好.md" {
		t.Errorf("path = %q", result.Path)
	}
	if result.URL != "/blogs/hello-world-你好" {
		t.Errorf("url = %q", result.URL)
	}

	stored, err := ms.Read(context.Background(), result.Path)
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	meta, _, body, err := frontmatter.Decode(stored.Content)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if meta.Draft {
		t.Error("published article still marked draft")
	}
	if meta.Slug != "hello-world-你好" {
		t.Errorf("stored slug = %q", meta.Slug)
	}
	if meta.PublishedAt != "2026-08-30T12:00:00.000Z" {
		t.Errorf("publishedAt = %q", meta.PublishedAt)
	}
	if meta.Category != article.DefaultCategory {
		t.Errorf("category = %q", meta.Category)
	}
	if body != "# Hello\n\nBody text." {
		t.Errorf("body = %q", body)
	}

	events, err := recorder.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(events) != 1 || events[0].Operation != history.OperationPublish || !events[0].Success {
		t.Errorf("unexpected history events: %+v", events)
	}
}

func TestServicePublishValidation(t *testing.T) {
	svc := newTestService(t, newMemStore(), nil)

	_, err := svc.Publish(context.Background(), Request{Content: "body"})
	var errs validation.Errors
	if !errorsAs(err, &errs) {
		t.Fatalf("Publish() error = %v, want validation.Errors", err)
	}
	if _, ok := errs["title"]; !ok {
		t.Errorf("missing title error: %v", errs)
	}

	_, err = svc.Publish(context.Background(), Request{
		Metadata: article.Metadata{Title: "!!!"},
		Content:  "body",
	})
	if !errorsAs(err, &errs) {
		t.Fatalf("Publish() error = %v, want validation.Errors", err)
	}
	if _, ok := errs["title"]; !ok {
		t.Errorf("missing empty-slug error: %v", errs)
	}
}

func TestServicePublishCollision(t *testing.T) {
	ms := newMemStore()
	svc := newTestService(t, ms, nil)
	ctx := context.Background()

	first, err := svc.Publish(ctx, Request{
		Metadata: article.Metadata{Title: "My Post"},
		Content:  "first body",
	})
	if err != nil {
		t.Fatalf("first Publish() error = %v", err)
	}

	second, err := svc.Publish(ctx, Request{
		Metadata: article.Metadata{Title: "My Post"},
		Content:  "second body",
	})
	if err != nil {
		t.Fatalf("second Publish() error = %v", err)
	}
	if second.Filename == first.Filename {
		t.Fatalf("collision not resolved: both landed at %q", second.Filename)
	}
	if second.Filename != "my-post-2026-08-30T12-00-00-000Z.md" {
		t.Errorf("suffixed filename = %q", second.Filename)
	}

	// The original file is untouched.
	stored, err := ms.Read(ctx, first.Path)
	if err != nil {
		t.Fatalf("first file missing after collision: %v", err)
	}
	if _, _, body, _ := frontmatter.Decode(stored.Content); body != "first body" {
		t.Errorf("first body overwritten: %q", body)
	}
}

func TestServicePublishCollisionViaStoredSlug(t *testing.T) {
	ms := newMemStore()
	svc := newTestService(t, ms, nil)
	ctx := context.Background()

	// A previous disambiguation left only a timestamp-suffixed file whose
	// frontmatter still owns the plain slug.
	doc := frontmatter.Encode("earlier body", article.Metadata{
		Title:    "My Post",
		Date:     "2025-01-01",
		Category: "tech",
		Tags:     []string{},
		ReadTime: 1,
		Excerpt:  "earlier",
		Slug:     "my-post",
	}, nil)
	if err := ms.Create(ctx, "src/content/blogs/my-post-2025-01-01T00-00-00-000Z.md", doc, "seed"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := svc.Publish(ctx, Request{
		Metadata: article.Metadata{Title: "My Post"},
		Content:  "new body",
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if result.Filename == "my-post.md" {
		t.Error("stored-slug collision not detected")
	}
}

func TestServiceSaveDraftAndPromote(t *testing.T) {
	ms := newMemStore()
	svc := newTestService(t, ms, nil)
	ctx := context.Background()

	draft, err := svc.SaveDraft(ctx, Request{
		Metadata: article.Metadata{Title: "Work in Progress"},
		Content:  "draft body",
	})
	if err != nil {
		t.Fatalf("SaveDraft() error = %v", err)
	}
	if !strings.HasPrefix(draft.Path, "src/content/blogs/drafts/") {
		t.Errorf("draft path = %q", draft.Path)
	}

	stored, err := ms.Read(ctx, draft.Path)
	if err != nil {
		t.Fatalf("draft missing: %v", err)
	}
	meta, _, _, err := frontmatter.Decode(stored.Content)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !meta.Draft {
		t.Error("draft not marked draft=true")
	}
	if meta.CreatedAt == "" {
		t.Error("draft missing createdAt")
	}

	// Drafts never appear in the published listing.
	published, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(published) != 0 {
		t.Errorf("drafts leaked into published listing: %+v", published)
	}

	result, err := svc.PromoteDraft(ctx, draft.Filename)
	if err != nil {
		t.Fatalf("PromoteDraft() error = %v", err)
	}
	if result.Filename != "work-in-progress.md" {
		t.Errorf("promoted filename = %q", result.Filename)
	}
	if exists, _ := ms.Exists(ctx, draft.Path); exists {
		t.Error("draft still present after promotion")
	}

	stored, err = ms.Read(ctx, result.Path)
	if err != nil {
		t.Fatalf("promoted file missing: %v", err)
	}
	meta, _, _, _ = frontmatter.Decode(stored.Content)
	if meta.Draft {
		t.Error("promoted article still marked draft")
	}
	if meta.PublishedAt == "" {
		t.Error("promoted article missing publishedAt")
	}
}

func TestServiceUpdate(t *testing.T) {
	ms := newMemStore()
	svc := newTestService(t, ms, nil)
	ctx := context.Background()

	original, err := svc.Publish(ctx, Request{
		Metadata: article.Metadata{Title: "Stable Slug"},
		Content:  "v1",
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	updated, err := svc.Update(ctx, UpdateRequest{
		Filename: original.Filename,
		Metadata: article.Metadata{Title: "Renamed Entirely", Category: "tech"},
		Content:  "v2",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Slug != "stable-slug" {
		t.Errorf("slug changed on update: %q", updated.Slug)
	}

	stored, _ := ms.Read(ctx, original.Path)
	meta, _, body, err := frontmatter.Decode(stored.Content)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if body != "v2" {
		t.Errorf("body = %q", body)
	}
	if meta.Title != "Renamed Entirely" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Slug != "stable-slug" {
		t.Errorf("stored slug = %q", meta.Slug)
	}
	if meta.PublishedAt != "2026-08-30T12:00:00.000Z" {
		t.Errorf("publishedAt not preserved: %q", meta.PublishedAt)
	}
	if meta.UpdatedAt == "" {
		t.Error("updatedAt not set")
	}
}

func TestServiceUpdateMissingFile(t *testing.T) {
	svc := newTestService(t, newMemStore(), nil)

	_, err := svc.Update(context.Background(), UpdateRequest{
		Filename: "nope.md",
		Metadata: article.Metadata{Title: "X"},
		Content:  "body",
	})
	if !store.IsNotFound(err) {
		t.Fatalf("Update() error = %v, want not found", err)
	}
}

func TestServiceDelete(t *testing.T) {
	ms := newMemStore()
	svc := newTestService(t, ms, nil)
	ctx := context.Background()

	result, err := svc.Publish(ctx, Request{
		Metadata: article.Metadata{Title: "Ephemeral"},
		Content:  "body",
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := svc.Delete(ctx, result.Filename); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if exists, _ := ms.Exists(ctx, result.Path); exists {
		t.Error("file still present after delete")
	}
	if err := svc.Delete(ctx, result.Filename); !store.IsNotFound(err) {
		t.Errorf("second Delete() error = %v, want not found", err)
	}
}

func TestServiceListBackfillsDefaults(t *testing.T) {
	ms := newMemStore()
	svc := newTestService(t, ms, nil)
	ctx := context.Background()

	// Minimal legacy file: frontmatter present but mostly empty.
	raw := []byte("---\ntitle: \"\"\n---\n\nSome body text for the excerpt.")
	if err := ms.Create(ctx, "src/content/blogs/legacy-post.md", raw, "seed"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Unparsable file is skipped, not fatal.
	if err := ms.Create(ctx, "src/content/blogs/broken.md", []byte("no frontmatter here"), "seed"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	summaries, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("List() returned %d summaries, want 1", len(summaries))
	}
	got := summaries[0]
	if got.Title != "legacy-post" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Date != "2026-08-30" {
		t.Errorf("date = %q, want plain date", got.Date)
	}
	if got.Category != article.DefaultCategory {
		t.Errorf("category = %q", got.Category)
	}
	if got.Excerpt != "Some body text for the excerpt." {
		t.Errorf("excerpt = %q", got.Excerpt)
	}
	if got.ReadTime < 1 {
		t.Errorf("readTime = %d", got.ReadTime)
	}
	if got.Slug != "legacy-post" {
		t.Errorf("slug = %q", got.Slug)
	}
	if got.Tags == nil {
		t.Error("tags is nil")
	}
}

func TestServicePublishStoreFailureRecorded(t *testing.T) {
	ms := newMemStore()
	ms.failCreate["src/content/blogs/doomed.md"] = &store.TransportError{Status: 502, Message: "bad gateway"}
	recorder := history.NewMemoryRecorder()
	svc := newTestService(t, ms, recorder)

	_, err := svc.Publish(context.Background(), Request{
		Metadata: article.Metadata{Title: "Doomed"},
		Content:  "body",
	})
	if err == nil {
		t.Fatal("Publish() succeeded, want error")
	}
	if !strings.Contains(err.Error(), "doomed.md") {
		t.Errorf("error does not name target file: %v", err)
	}

	events, _ := recorder.Recent(context.Background(), 10)
	if len(events) != 1 || events[0].Success {
		t.Errorf("expected one failure event, got %+v", events)
	}
}

func errorsAs(err error, target *validation.Errors) bool {
	if err == nil {
		return false
	}
	errs, ok := err.(validation.Errors)
	if ok {
		*target = errs
	}
	return ok
}
